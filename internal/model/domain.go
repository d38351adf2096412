package model

import (
	"time"

	"gorm.io/datatypes"
)

// DomainStatus represents domain status as reported by the provider
type DomainStatus string

const (
	DomainStatusActive   DomainStatus = "active"
	DomainStatusPending  DomainStatus = "pending"
	DomainStatusInactive DomainStatus = "inactive"
)

// Domain represents a managed domain/zone
type Domain struct {
	BaseModel
	Name             string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	AccountID        int            `gorm:"index;not null" json:"cloudflare_account_id"`
	ZoneID           string         `gorm:"type:varchar(128);index:idx_domains_zone_id" json:"cloudflare_zone_id"`
	Status           DomainStatus   `gorm:"type:enum('active','pending','inactive');default:'active'" json:"status"`
	RegistrationDate string         `gorm:"type:varchar(32)" json:"registration_date"`
	Registrar        string         `gorm:"type:varchar(128)" json:"domain_provider"`
	Contact          string         `gorm:"type:varchar(64)" json:"contact"`
	PresetID         *int           `gorm:"index" json:"preset_id"`
	NameServers      datatypes.JSON `gorm:"type:json" json:"name_servers"`
	// PulledAt is set after the first successful pull from the provider.
	// Push only prunes remote records once a baseline pull has happened.
	PulledAt *time.Time `json:"pulled_at"`
}

// TableName specifies the table name for Domain model
func (Domain) TableName() string {
	return "domains"
}
