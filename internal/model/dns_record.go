package model

// DNSRecordType represents DNS record type
type DNSRecordType string

const (
	DNSRecordTypeA     DNSRecordType = "A"
	DNSRecordTypeAAAA  DNSRecordType = "AAAA"
	DNSRecordTypeCNAME DNSRecordType = "CNAME"
	DNSRecordTypeMX    DNSRecordType = "MX"
	DNSRecordTypeTXT   DNSRecordType = "TXT"
	DNSRecordTypeNS    DNSRecordType = "NS"
	DNSRecordTypeSRV   DNSRecordType = "SRV"
)

// TTLAuto is the TTL value Cloudflare interprets as "automatic"
const TTLAuto = 1

// DNSRecord represents one DNS resource record scoped to a domain.
// Name is stored relative to the zone ("@" for the apex); RemoteID is empty
// until the record has been pushed to the provider.
// Within one domain the tuple (type, name, content) is unique and is the
// matching key used to correlate local and remote records.
type DNSRecord struct {
	BaseModel
	DomainID int           `gorm:"uniqueIndex:idx_records_matching_key;not null" json:"domain_id"`
	Type     DNSRecordType `gorm:"type:enum('A','AAAA','CNAME','MX','TXT','NS','SRV');uniqueIndex:idx_records_matching_key;not null" json:"record_type"`
	Name     string        `gorm:"type:varchar(255);uniqueIndex:idx_records_matching_key;not null" json:"name"`
	Content  string        `gorm:"type:varchar(2048);uniqueIndex:idx_records_matching_key,length:255;not null" json:"content"`
	TTL      int           `gorm:"default:1" json:"ttl"`
	Priority *int          `json:"priority"`
	Proxied  bool          `gorm:"type:tinyint;default:0" json:"proxied"`
	RemoteID string        `gorm:"type:varchar(128);index" json:"cloudflare_record_id"`
}

// TableName specifies the table name for DNSRecord model
func (DNSRecord) TableName() string {
	return "dns_records"
}

// Proxyable reports whether the record type supports the Cloudflare proxy
func (t DNSRecordType) Proxyable() bool {
	switch t {
	case DNSRecordTypeA, DNSRecordTypeAAAA, DNSRecordTypeCNAME:
		return true
	default:
		return false
	}
}

// Valid reports whether the record type is one the manager supports
func (t DNSRecordType) Valid() bool {
	switch t {
	case DNSRecordTypeA, DNSRecordTypeAAAA, DNSRecordTypeCNAME,
		DNSRecordTypeMX, DNSRecordTypeTXT, DNSRecordTypeNS, DNSRecordTypeSRV:
		return true
	default:
		return false
	}
}
