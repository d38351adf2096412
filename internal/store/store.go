package store

import (
	"errors"
	"fmt"
	"time"

	"dns_manager/internal/model"

	"gorm.io/gorm"
)

// Store owns the locally persisted DNS records and their owning entities.
// No network access happens here.
type Store struct {
	db *gorm.DB
}

// New creates a new Store
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// ListByDomain returns all records of a domain in creation order
func (s *Store) ListByDomain(domainID int) ([]model.DNSRecord, error) {
	var records []model.DNSRecord
	err := s.db.
		Where("domain_id = ?", domainID).
		Order("id ASC").
		Find(&records).Error
	return records, err
}

// GetRecord fetches one record scoped to a domain
func (s *Store) GetRecord(domainID, recordID int) (*model.DNSRecord, error) {
	var record model.DNSRecord
	err := s.db.Where("id = ? AND domain_id = ?", recordID, domainID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("record %d: %w", recordID, ErrNotFound)
		}
		return nil, err
	}
	return &record, nil
}

// Upsert validates and persists a record, enforcing matching-key uniqueness
// within the domain. A zero ID creates; a non-zero ID updates.
func (s *Store) Upsert(rec *model.DNSRecord) error {
	if err := ValidateRecord(rec); err != nil {
		return err
	}

	var count int64
	q := s.db.Model(&model.DNSRecord{}).
		Where("domain_id = ? AND type = ? AND name = ? AND content = ?",
			rec.DomainID, rec.Type, rec.Name, rec.Content)
	if rec.ID != 0 {
		q = q.Where("id <> ?", rec.ID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateKey
	}

	return s.db.Save(rec).Error
}

// Delete removes one record scoped to a domain
func (s *Store) Delete(domainID, recordID int) error {
	result := s.db.
		Where("id = ? AND domain_id = ?", recordID, domainID).
		Delete(&model.DNSRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("record %d: %w", recordID, ErrNotFound)
	}
	return nil
}

// ReplaceAll atomically replaces the full record set of a domain.
// Either all records are replaced or none are; concurrent readers never
// observe a partially replaced set.
func (s *Store) ReplaceAll(domainID int, records []model.DNSRecord) error {
	for i := range records {
		records[i].DomainID = domainID
		if err := ValidateRecord(&records[i]); err != nil {
			return err
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("domain_id = ?", domainID).Delete(&model.DNSRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear records: %w", err)
		}
		for i := range records {
			records[i].ID = 0
			if err := tx.Create(&records[i]).Error; err != nil {
				return fmt.Errorf("failed to insert record: %w", err)
			}
		}
		return nil
	})
}

// SetRemoteID stores the provider-assigned id against a local record
func (s *Store) SetRemoteID(recordID int, remoteID string) error {
	return s.db.Model(&model.DNSRecord{}).
		Where("id = ?", recordID).
		Update("remote_id", remoteID).Error
}

// SetProxied flips the proxied flag of a local record
func (s *Store) SetProxied(recordID int, proxied bool) error {
	return s.db.Model(&model.DNSRecord{}).
		Where("id = ?", recordID).
		Update("proxied", proxied).Error
}

// UpdateRemoteFields overwrites the provider-owned fields of a local record
// in place during pull
func (s *Store) UpdateRemoteFields(recordID int, ttl int, priority *int, proxied bool, remoteID string) error {
	return s.db.Model(&model.DNSRecord{}).
		Where("id = ?", recordID).
		Updates(map[string]interface{}{
			"ttl":       ttl,
			"priority":  priority,
			"proxied":   proxied,
			"remote_id": remoteID,
		}).Error
}

// CountByDomain returns the number of records a domain holds
func (s *Store) CountByDomain(domainID int) (int64, error) {
	var count int64
	err := s.db.Model(&model.DNSRecord{}).
		Where("domain_id = ?", domainID).
		Count(&count).Error
	return count, err
}

// GetDomain fetches a domain by id
func (s *Store) GetDomain(domainID int) (*model.Domain, error) {
	var domain model.Domain
	if err := s.db.First(&domain, domainID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("domain %d: %w", domainID, ErrNotFound)
		}
		return nil, err
	}
	return &domain, nil
}

// GetAccount fetches a Cloudflare account by id
func (s *Store) GetAccount(accountID int) (*model.CloudflareAccount, error) {
	var account model.CloudflareAccount
	if err := s.db.First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cloudflare account %d: %w", accountID, ErrNotFound)
		}
		return nil, err
	}
	return &account, nil
}

// SetZoneID stores the resolved provider zone id on a domain
func (s *Store) SetZoneID(domainID int, zoneID string) error {
	return s.db.Model(&model.Domain{}).
		Where("id = ?", domainID).
		Update("zone_id", zoneID).Error
}

// MarkPulled records that a baseline pull has completed for the domain
func (s *Store) MarkPulled(domainID int, at time.Time) error {
	return s.db.Model(&model.Domain{}).
		Where("id = ?", domainID).
		Update("pulled_at", &at).Error
}

// GetPreset fetches a preset by id
func (s *Store) GetPreset(presetID int) (*model.Preset, error) {
	var preset model.Preset
	if err := s.db.First(&preset, presetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("preset %d: %w", presetID, ErrNotFound)
		}
		return nil, err
	}
	return &preset, nil
}

// ListPresetRecords returns a preset's template records in creation order
func (s *Store) ListPresetRecords(presetID int) ([]model.PresetRecord, error) {
	var records []model.PresetRecord
	err := s.db.
		Where("preset_id = ?", presetID).
		Order("id ASC").
		Find(&records).Error
	return records, err
}

// SetDomainPreset records which preset was last applied to the domain
func (s *Store) SetDomainPreset(domainID, presetID int) error {
	return s.db.Model(&model.Domain{}).
		Where("id = ?", domainID).
		Update("preset_id", presetID).Error
}
