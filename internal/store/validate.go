package store

import (
	"fmt"

	"dns_manager/internal/model"
)

// ValidateRecord checks a record's shape before it is persisted.
// MX requires a priority; proxied is only meaningful for A/AAAA/CNAME.
func ValidateRecord(rec *model.DNSRecord) error {
	if !rec.Type.Valid() {
		return fmt.Errorf("%w: unsupported record type %q", ErrInvalidRecord, rec.Type)
	}
	if rec.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRecord)
	}
	if rec.Content == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidRecord)
	}
	if rec.Type == model.DNSRecordTypeMX && rec.Priority == nil {
		return fmt.Errorf("%w: MX record requires a priority", ErrInvalidRecord)
	}
	if rec.Proxied && !rec.Type.Proxyable() {
		return fmt.Errorf("%w: %s records cannot be proxied", ErrInvalidRecord, rec.Type)
	}
	if rec.TTL < 1 {
		return fmt.Errorf("%w: ttl must be >= 1", ErrInvalidRecord)
	}
	return nil
}
