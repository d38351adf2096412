package model

// Preset represents a reusable named template of DNS records
type Preset struct {
	BaseModel
	Name        string `gorm:"type:varchar(128);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:varchar(255)" json:"description"`
}

// TableName specifies the table name for Preset model
func (Preset) TableName() string {
	return "presets"
}

// PresetRecord represents one template record inside a preset.
// Name may be "@" (apex) or "*" (wildcard); both are resolved against the
// concrete domain at apply time. Other names are used verbatim as relative
// subdomain labels.
type PresetRecord struct {
	BaseModel
	PresetID int           `gorm:"index;not null" json:"preset_id"`
	Type     DNSRecordType `gorm:"type:enum('A','AAAA','CNAME','MX','TXT','NS','SRV');not null" json:"record_type"`
	Name     string        `gorm:"type:varchar(255);not null" json:"name"`
	Content  string        `gorm:"type:varchar(2048);not null" json:"content"`
	TTL      int           `gorm:"default:1" json:"ttl"`
	Priority *int          `json:"priority"`
	Proxied  bool          `gorm:"type:tinyint;default:0" json:"proxied"`
}

// TableName specifies the table name for PresetRecord model
func (PresetRecord) TableName() string {
	return "preset_records"
}
