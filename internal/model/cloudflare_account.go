package model

// CloudflareAccountStatus represents Cloudflare account status
type CloudflareAccountStatus string

const (
	CloudflareAccountStatusActive   CloudflareAccountStatus = "active"
	CloudflareAccountStatusInactive CloudflareAccountStatus = "inactive"
)

// CloudflareAccount holds the credential used to talk to the Cloudflare API.
// APIKey may be a Global API Key (paired with Email) or an API Token.
// The credential is never serialized back to clients.
type CloudflareAccount struct {
	BaseModel
	Name            string                  `gorm:"type:varchar(128);not null" json:"name"`
	Email           string                  `gorm:"type:varchar(128)" json:"email"`
	APIKey          string                  `gorm:"type:varchar(512);not null" json:"-"`
	ProviderAccount string                  `gorm:"type:varchar(128)" json:"account_id"`
	Status          CloudflareAccountStatus `gorm:"type:enum('active','inactive');default:'active'" json:"status"`
}

// TableName specifies the table name for CloudflareAccount model
func (CloudflareAccount) TableName() string {
	return "cloudflare_accounts"
}
