package reconcile

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"dns_manager/internal/cloudflare"
	"dns_manager/internal/model"
)

// memStore is an in-memory RecordStore/DomainStore/PresetStore for engine tests
type memStore struct {
	mu            sync.Mutex
	nextID        int
	records       map[int]model.DNSRecord
	domains       map[int]model.Domain
	accounts      map[int]model.CloudflareAccount
	presets       map[int]model.Preset
	presetRecords map[int][]model.PresetRecord
}

func newMemStore() *memStore {
	return &memStore{
		records:       make(map[int]model.DNSRecord),
		domains:       make(map[int]model.Domain),
		accounts:      make(map[int]model.CloudflareAccount),
		presets:       make(map[int]model.Preset),
		presetRecords: make(map[int][]model.PresetRecord),
	}
}

func (s *memStore) addDomain(d model.Domain) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	d.ID = s.nextID
	s.domains[d.ID] = d
	return d.ID
}

func (s *memStore) addAccount(a model.CloudflareAccount) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	a.ID = s.nextID
	s.accounts[a.ID] = a
	return a.ID
}

func (s *memStore) addPreset(p model.Preset, records []model.PresetRecord) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p.ID = s.nextID
	s.presets[p.ID] = p
	s.presetRecords[p.ID] = records
	return p.ID
}

func (s *memStore) ListByDomain(domainID int) ([]model.DNSRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.DNSRecord
	for _, r := range s.records {
		if r.DomainID == domainID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) GetRecord(domainID, recordID int) (*model.DNSRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[recordID]
	if !ok || r.DomainID != domainID {
		return nil, fmt.Errorf("record %d not found", recordID)
	}
	return &r, nil
}

func (s *memStore) Upsert(rec *model.DNSRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.records {
		if existing.ID != rec.ID && existing.DomainID == rec.DomainID &&
			existing.Type == rec.Type && existing.Name == rec.Name && existing.Content == rec.Content {
			return fmt.Errorf("duplicate matching key")
		}
	}
	if rec.ID == 0 {
		s.nextID++
		rec.ID = s.nextID
	}
	s.records[rec.ID] = *rec
	return nil
}

func (s *memStore) Delete(domainID, recordID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[recordID]
	if !ok || r.DomainID != domainID {
		return fmt.Errorf("record %d not found", recordID)
	}
	delete(s.records, recordID)
	return nil
}

func (s *memStore) ReplaceAll(domainID int, records []model.DNSRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.records {
		if r.DomainID == domainID {
			delete(s.records, id)
		}
	}
	for i := range records {
		s.nextID++
		records[i].ID = s.nextID
		records[i].DomainID = domainID
		s.records[records[i].ID] = records[i]
	}
	return nil
}

func (s *memStore) SetRemoteID(recordID int, remoteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.records[recordID]
	r.RemoteID = remoteID
	s.records[recordID] = r
	return nil
}

func (s *memStore) SetProxied(recordID int, proxied bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.records[recordID]
	r.Proxied = proxied
	s.records[recordID] = r
	return nil
}

func (s *memStore) UpdateRemoteFields(recordID int, ttl int, priority *int, proxied bool, remoteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.records[recordID]
	r.TTL = ttl
	r.Priority = priority
	r.Proxied = proxied
	r.RemoteID = remoteID
	s.records[recordID] = r
	return nil
}

func (s *memStore) GetDomain(domainID int) (*model.Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.domains[domainID]
	if !ok {
		return nil, fmt.Errorf("domain %d not found", domainID)
	}
	return &d, nil
}

func (s *memStore) GetAccount(accountID int) (*model.CloudflareAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account %d not found", accountID)
	}
	return &a, nil
}

func (s *memStore) SetZoneID(domainID int, zoneID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.domains[domainID]
	d.ZoneID = zoneID
	s.domains[domainID] = d
	return nil
}

func (s *memStore) MarkPulled(domainID int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.domains[domainID]
	d.PulledAt = &at
	s.domains[domainID] = d
	return nil
}

func (s *memStore) GetPreset(presetID int) (*model.Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.presets[presetID]
	if !ok {
		return nil, fmt.Errorf("preset %d not found", presetID)
	}
	return &p, nil
}

func (s *memStore) ListPresetRecords(presetID int) ([]model.PresetRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presetRecords[presetID], nil
}

func (s *memStore) SetDomainPreset(domainID, presetID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.domains[domainID]
	d.PresetID = &presetID
	s.domains[domainID] = d
	return nil
}

// fakeAPI simulates the provider side of one account, with failure
// injection for push isolation tests
type fakeAPI struct {
	mu     sync.Mutex
	zones  []cloudflare.Zone
	remote map[string][]cloudflare.Record
	nextID int

	failCreateByContent map[string]error
	failUpdateByID      map[string]error
	transientListFails  int
	listStarted         chan struct{}
	listRelease         chan struct{}
}

func newFakeAPI(zones ...cloudflare.Zone) *fakeAPI {
	return &fakeAPI{
		zones:               zones,
		remote:              make(map[string][]cloudflare.Record),
		failCreateByContent: make(map[string]error),
		failUpdateByID:      make(map[string]error),
	}
}

func (f *fakeAPI) seed(zoneID string, records ...cloudflare.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range records {
		if records[i].ID == "" {
			f.nextID++
			records[i].ID = fmt.Sprintf("cf-%d", f.nextID)
		}
	}
	f.remote[zoneID] = append(f.remote[zoneID], records...)
}

func (f *fakeAPI) recordCount(zoneID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.remote[zoneID])
}

func (f *fakeAPI) ListZones(ctx context.Context) ([]cloudflare.Zone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]cloudflare.Zone(nil), f.zones...), nil
}

func (f *fakeAPI) ListRecords(ctx context.Context, zoneID string) ([]cloudflare.Record, error) {
	if f.listStarted != nil {
		f.listStarted <- struct{}{}
		<-f.listRelease
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.transientListFails > 0 {
		f.transientListFails--
		return nil, &cloudflare.ProviderError{StatusCode: 502, Message: "bad gateway"}
	}
	return append([]cloudflare.Record(nil), f.remote[zoneID]...), nil
}

func (f *fakeAPI) CreateRecord(ctx context.Context, zoneID string, record cloudflare.RecordInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failCreateByContent[record.Content]; ok {
		return "", err
	}
	f.nextID++
	id := fmt.Sprintf("cf-%d", f.nextID)
	f.remote[zoneID] = append(f.remote[zoneID], cloudflare.Record{
		ID:       id,
		Type:     record.Type,
		Name:     record.Name,
		Content:  record.Content,
		TTL:      record.TTL,
		Priority: record.Priority,
		Proxied:  record.Proxied,
	})
	return id, nil
}

func (f *fakeAPI) UpdateRecord(ctx context.Context, zoneID, recordID string, record cloudflare.RecordInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failUpdateByID[recordID]; ok {
		return err
	}
	for i, r := range f.remote[zoneID] {
		if r.ID == recordID {
			f.remote[zoneID][i].TTL = record.TTL
			f.remote[zoneID][i].Priority = record.Priority
			f.remote[zoneID][i].Proxied = record.Proxied
			return nil
		}
	}
	return cloudflare.ErrRecordGone
}

func (f *fakeAPI) DeleteRecord(ctx context.Context, zoneID, recordID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.remote[zoneID] {
		if r.ID == recordID {
			f.remote[zoneID] = append(f.remote[zoneID][:i], f.remote[zoneID][i+1:]...)
			return nil
		}
	}
	return cloudflare.ErrRecordGone
}

func (f *fakeAPI) VerifyCredentials(ctx context.Context) (*cloudflare.VerifyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.zones))
	for _, z := range f.zones {
		names = append(names, z.Name)
	}
	return &cloudflare.VerifyResult{OK: true, Zones: names}, nil
}
