package store

import (
	"errors"
	"testing"

	"dns_manager/internal/model"
)

func intPtr(v int) *int { return &v }

func TestValidateRecord(t *testing.T) {
	tests := []struct {
		name    string
		record  model.DNSRecord
		wantErr bool
	}{
		{
			name:   "valid A record",
			record: model.DNSRecord{DomainID: 1, Type: model.DNSRecordTypeA, Name: "www", Content: "1.2.3.4", TTL: 1},
		},
		{
			name:   "valid proxied CNAME",
			record: model.DNSRecord{DomainID: 1, Type: model.DNSRecordTypeCNAME, Name: "app", Content: "target.example.com", TTL: 300, Proxied: true},
		},
		{
			name:   "valid MX with priority",
			record: model.DNSRecord{DomainID: 1, Type: model.DNSRecordTypeMX, Name: "@", Content: "mail.example.com", TTL: 3600, Priority: intPtr(10)},
		},
		{
			name:    "MX without priority",
			record:  model.DNSRecord{DomainID: 1, Type: model.DNSRecordTypeMX, Name: "@", Content: "mail.example.com", TTL: 3600},
			wantErr: true,
		},
		{
			name:    "proxied TXT",
			record:  model.DNSRecord{DomainID: 1, Type: model.DNSRecordTypeTXT, Name: "@", Content: "v=spf1 -all", TTL: 1, Proxied: true},
			wantErr: true,
		},
		{
			name:    "unsupported type",
			record:  model.DNSRecord{DomainID: 1, Type: "CAA", Name: "@", Content: "x", TTL: 1},
			wantErr: true,
		},
		{
			name:    "empty name",
			record:  model.DNSRecord{DomainID: 1, Type: model.DNSRecordTypeA, Name: "", Content: "1.2.3.4", TTL: 1},
			wantErr: true,
		},
		{
			name:    "empty content",
			record:  model.DNSRecord{DomainID: 1, Type: model.DNSRecordTypeA, Name: "www", Content: "", TTL: 1},
			wantErr: true,
		},
		{
			name:    "zero ttl",
			record:  model.DNSRecord{DomainID: 1, Type: model.DNSRecordTypeA, Name: "www", Content: "1.2.3.4", TTL: 0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecord(&tt.record)
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
			if tt.wantErr && err != nil && !errors.Is(err, ErrInvalidRecord) {
				t.Errorf("error should wrap ErrInvalidRecord, got %v", err)
			}
		})
	}
}
