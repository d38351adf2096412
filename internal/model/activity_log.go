package model

// Activity log actions
const (
	ActivityActionCreate      = "create"
	ActivityActionUpdate      = "update"
	ActivityActionDelete      = "delete"
	ActivityActionImport      = "import"
	ActivityActionSync        = "sync_from_cloudflare"
	ActivityActionPush        = "push_to_cloudflare"
	ActivityActionApplyPreset = "apply_preset"
	ActivityActionToggleProxy = "toggle_proxy"
)

// ActivityLog is an immutable append-only record of a mutating operation.
// Rows are written best-effort and never updated or deleted.
type ActivityLog struct {
	BaseModel
	EntityType string `gorm:"type:varchar(32);index;not null" json:"entity_type"`
	EntityID   int    `gorm:"index;not null" json:"entity_id"`
	EntityName string `gorm:"type:varchar(255)" json:"entity_name"`
	Action     string `gorm:"type:varchar(32);not null" json:"action"`
	Details    string `gorm:"type:varchar(512)" json:"details"`
	UserID     int    `gorm:"index" json:"user_id"`
}

// TableName specifies the table name for ActivityLog model
func (ActivityLog) TableName() string {
	return "activity_logs"
}
