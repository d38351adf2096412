package reconcile

import (
	"context"
	"testing"
	"time"

	"dns_manager/internal/cloudflare"
	"dns_manager/internal/model"
)

func TestApplyPresetReplacesEverything(t *testing.T) {
	st, api, eng, domainID := newTestEnv(t)
	applier := NewApplier(eng, st)

	// Prior state: one record already pushed, one local draft. Apply must
	// wipe both, drafts included.
	api.seed("zone1", cloudflare.Record{ID: "cf-old", Type: "A", Name: "legacy.example.com", Content: "5.5.5.5", TTL: 1})
	pushed := &model.DNSRecord{DomainID: domainID, Type: model.DNSRecordTypeA, Name: "legacy", Content: "5.5.5.5", TTL: 1, RemoteID: "cf-old"}
	draft := &model.DNSRecord{DomainID: domainID, Type: model.DNSRecordTypeTXT, Name: "scratch", Content: "temp", TTL: 1}
	for _, r := range []*model.DNSRecord{pushed, draft} {
		if err := st.Upsert(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := st.MarkPulled(domainID, time.Now()); err != nil {
		t.Fatal(err)
	}

	presetID := st.addPreset(model.Preset{Name: "web-basic"}, []model.PresetRecord{
		{Type: model.DNSRecordTypeA, Name: "@", Content: "203.0.113.10", TTL: 1, Proxied: true},
		{Type: model.DNSRecordTypeCNAME, Name: "www", Content: "example.com", TTL: 1, Proxied: true},
		{Type: model.DNSRecordTypeMX, Name: "@", Content: "mail.example.com", TTL: 3600, Priority: intPtr(10)},
	})

	result, err := applier.ApplyPreset(context.Background(), domainID, presetID)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if result.RecordsApplied != 3 {
		t.Errorf("RecordsApplied = %d, want 3", result.RecordsApplied)
	}
	if result.Push == nil || result.Push.Created != 3 || result.Push.Deleted != 1 {
		t.Errorf("push after apply = %+v; want 3 creates and the legacy delete", result.Push)
	}

	records, _ := st.ListByDomain(domainID)
	if len(records) != 3 {
		t.Fatalf("expected exactly the preset records, got %d", len(records))
	}
	for _, r := range records {
		if r.Name == "legacy" || r.Name == "scratch" {
			t.Errorf("pre-apply record %q survived", r.Name)
		}
		if r.RemoteID == "" {
			t.Errorf("applied record %s %q not pushed", r.Type, r.Name)
		}
	}
	if api.recordCount("zone1") != 3 {
		t.Errorf("remote zone has %d records, want 3", api.recordCount("zone1"))
	}

	d, _ := st.GetDomain(domainID)
	if d.PresetID == nil || *d.PresetID != presetID {
		t.Error("domain preset link not recorded")
	}
}

func TestApplyPresetResolvesPlaceholders(t *testing.T) {
	st, api, eng, domainID := newTestEnv(t)
	applier := NewApplier(eng, st)

	presetID := st.addPreset(model.Preset{Name: "placeholders"}, []model.PresetRecord{
		{Type: model.DNSRecordTypeA, Name: "@", Content: "203.0.113.1", TTL: 1},
		{Type: model.DNSRecordTypeCNAME, Name: "*", Content: "example.com", TTL: 1},
		{Type: model.DNSRecordTypeA, Name: "", Content: "203.0.113.2", TTL: 1},
	})

	if _, err := applier.ApplyPreset(context.Background(), domainID, presetID); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	records, _ := st.ListByDomain(domainID)
	names := make(map[string]bool, len(records))
	for _, r := range records {
		names[r.Name] = true
	}
	// Empty template names collapse to the apex placeholder.
	for _, want := range []string{"@", "*"} {
		if !names[want] {
			t.Errorf("missing stored relative name %q in %v", want, names)
		}
	}

	remote, _ := api.ListRecords(context.Background(), "zone1")
	fqdns := make(map[string]bool, len(remote))
	for _, r := range remote {
		fqdns[r.Name] = true
	}
	for _, want := range []string{"example.com", "*.example.com"} {
		if !fqdns[want] {
			t.Errorf("missing remote FQDN %q in %v", want, fqdns)
		}
	}
}

func TestApplyPresetRunsUnderDomainLock(t *testing.T) {
	st, api, eng, domainID := newTestEnv(t)
	applier := NewApplier(eng, st)

	presetID := st.addPreset(model.Preset{Name: "minimal"}, []model.PresetRecord{
		{Type: model.DNSRecordTypeA, Name: "@", Content: "203.0.113.1", TTL: 1},
	})

	api.listStarted = make(chan struct{})
	api.listRelease = make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := applier.ApplyPreset(context.Background(), domainID, presetID)
		done <- err
	}()

	<-api.listStarted
	if _, err := eng.Pull(context.Background(), domainID); err != ErrBusy {
		t.Errorf("pull during apply should hit ErrBusy, got %v", err)
	}
	close(api.listRelease)
	if err := <-done; err != nil {
		t.Fatalf("apply failed: %v", err)
	}
}

func TestApplyPresetSurfacesPushErrorWithPartialResult(t *testing.T) {
	st, api, eng, domainID := newTestEnv(t)
	applier := NewApplier(eng, st)

	presetID := st.addPreset(model.Preset{Name: "broken"}, []model.PresetRecord{
		{Type: model.DNSRecordTypeA, Name: "@", Content: "203.0.113.1", TTL: 1},
	})
	api.failCreateByContent["203.0.113.1"] = &cloudflare.AuthError{Message: "key disabled"}

	result, err := applier.ApplyPreset(context.Background(), domainID, presetID)
	if !cloudflare.IsAuthError(err) {
		t.Fatalf("expected surfaced auth error, got %v", err)
	}
	if result == nil || result.RecordsApplied != 1 {
		t.Fatalf("partial result should report the local replace, got %+v", result)
	}

	// Local replace already happened; the domain is authoritative and the
	// next successful push reconciles.
	records, _ := st.ListByDomain(domainID)
	if len(records) != 1 || records[0].Content != "203.0.113.1" {
		t.Errorf("local preset state missing after failed push: %+v", records)
	}
}
