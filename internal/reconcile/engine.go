package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dns_manager/internal/activity"
	"dns_manager/internal/cloudflare"
	"dns_manager/internal/dnsname"
	"dns_manager/internal/model"

	"github.com/sirupsen/logrus"
)

// RecordStore is the persistence surface the engine needs for DNS records
type RecordStore interface {
	ListByDomain(domainID int) ([]model.DNSRecord, error)
	GetRecord(domainID, recordID int) (*model.DNSRecord, error)
	Upsert(rec *model.DNSRecord) error
	Delete(domainID, recordID int) error
	ReplaceAll(domainID int, records []model.DNSRecord) error
	SetRemoteID(recordID int, remoteID string) error
	SetProxied(recordID int, proxied bool) error
	UpdateRemoteFields(recordID int, ttl int, priority *int, proxied bool, remoteID string) error
}

// DomainStore is the persistence surface the engine needs for domains and
// provider accounts
type DomainStore interface {
	GetDomain(domainID int) (*model.Domain, error)
	GetAccount(accountID int) (*model.CloudflareAccount, error)
	SetZoneID(domainID int, zoneID string) error
	MarkPulled(domainID int, at time.Time) error
}

// ZoneAPI is the provider client surface the engine drives. All calls
// reflect current remote truth; the engine never caches responses.
type ZoneAPI interface {
	ListZones(ctx context.Context) ([]cloudflare.Zone, error)
	ListRecords(ctx context.Context, zoneID string) ([]cloudflare.Record, error)
	CreateRecord(ctx context.Context, zoneID string, record cloudflare.RecordInput) (string, error)
	UpdateRecord(ctx context.Context, zoneID, recordID string, record cloudflare.RecordInput) error
	DeleteRecord(ctx context.Context, zoneID, recordID string) error
	VerifyCredentials(ctx context.Context) (*cloudflare.VerifyResult, error)
}

// ClientFactory builds a ZoneAPI for one account credential
type ClientFactory func(account *model.CloudflareAccount) ZoneAPI

// Config holds the dependencies for the reconciliation engine
type Config struct {
	Records   RecordStore
	Domains   DomainStore
	NewClient ClientFactory
	Audit     activity.Logger
	Logger    *logrus.Entry

	// MaxAttempts bounds retries of transient provider failures per call
	// (default 3). BackoffBase is the first retry delay, doubled per
	// attempt (default 500ms).
	MaxAttempts int
	BackoffBase time.Duration
}

// Engine computes and applies diffs between the local record store and the
// provider's remote zone state, in both directions. At most one operation
// runs per domain at a time.
type Engine struct {
	records     RecordStore
	domains     DomainStore
	newClient   ClientFactory
	audit       activity.Logger
	logger      *logrus.Entry
	locks       *lockTable
	maxAttempts int
	backoffBase time.Duration
}

// New creates a reconciliation engine
func New(cfg Config) *Engine {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 500 * time.Millisecond
	}
	if cfg.Audit == nil {
		cfg.Audit = activity.Nop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Engine{
		records:     cfg.Records,
		domains:     cfg.Domains,
		newClient:   cfg.NewClient,
		audit:       cfg.Audit,
		logger:      cfg.Logger.WithField("component", "reconcile-engine"),
		locks:       newLockTable(),
		maxAttempts: cfg.MaxAttempts,
		backoffBase: cfg.BackoffBase,
	}
}

// PullResult summarizes a sync-from-provider operation
type PullResult struct {
	Merged  int `json:"merged"`
	Created int `json:"created"`
	Deleted int `json:"deleted"`
}

// PushFailure describes one record operation that failed during push
type PushFailure struct {
	Op      string `json:"op"`
	Type    string `json:"record_type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Reason  string `json:"reason"`
}

// PushResult summarizes a push-to-provider operation. Failed lists each
// record operation that did not succeed; the remaining counts reflect what
// actually completed, so a re-run after partial failure is safe.
type PushResult struct {
	Created        int           `json:"created"`
	Updated        int           `json:"updated"`
	Deleted        int           `json:"deleted"`
	SkippedDeletes int           `json:"skipped_deletes"`
	Failed         []PushFailure `json:"failed"`
}

// ToggleResult summarizes a proxy toggle
type ToggleResult struct {
	NewState bool `json:"proxied"`
	Pushed   bool `json:"pushed"`
}

// matchKey is the (type, name, content) tuple correlating local and remote
// records. Remote ids are opaque and unknown until first synced, so the
// tuple is the identity; the remote id is only a cached pointer.
type matchKey struct {
	typ     string
	name    string
	content string
}

func keyFor(typ, relName, content string) matchKey {
	return matchKey{
		typ:     strings.ToUpper(typ),
		name:    strings.ToLower(relName),
		content: content,
	}
}

func localKey(rec *model.DNSRecord) matchKey {
	return keyFor(string(rec.Type), rec.Name, rec.Content)
}

// Pull imports remote zone state into the local store. Matched records are
// updated in place, unknown remote records are inserted, and local records
// that were pushed before but vanished remotely are deleted. Local drafts
// (no remote id) are never touched: pull must not discard work the
// operator has not pushed yet.
func (e *Engine) Pull(ctx context.Context, domainID int) (*PullResult, error) {
	if err := e.locks.acquire(domainID); err != nil {
		return nil, err
	}
	defer e.locks.release(domainID)

	return e.pull(ctx, domainID)
}

func (e *Engine) pull(ctx context.Context, domainID int) (*PullResult, error) {
	domain, api, zoneID, err := e.resolve(ctx, domainID)
	if err != nil {
		return nil, err
	}

	var remote []cloudflare.Record
	err = e.withRetry(ctx, func() error {
		var listErr error
		remote, listErr = api.ListRecords(ctx, zoneID)
		return listErr
	})
	if err != nil {
		return nil, err
	}

	locals, err := e.records.ListByDomain(domainID)
	if err != nil {
		return nil, err
	}

	localByKey := make(map[matchKey]*model.DNSRecord, len(locals))
	for i := range locals {
		localByKey[localKey(&locals[i])] = &locals[i]
	}

	result := &PullResult{}
	seen := make(map[matchKey]bool, len(remote))

	for _, r := range remote {
		if !model.DNSRecordType(r.Type).Valid() {
			continue
		}
		rel := dnsname.Relative(r.Name, domain.Name)
		k := keyFor(r.Type, rel, r.Content)
		seen[k] = true

		if local, ok := localByKey[k]; ok {
			if err := e.records.UpdateRemoteFields(local.ID, r.TTL, r.Priority, r.Proxied, r.ID); err != nil {
				return nil, err
			}
			result.Merged++
			continue
		}

		rec := &model.DNSRecord{
			DomainID: domainID,
			Type:     model.DNSRecordType(r.Type),
			Name:     rel,
			Content:  r.Content,
			TTL:      r.TTL,
			Priority: r.Priority,
			Proxied:  r.Proxied,
			RemoteID: r.ID,
		}
		if err := e.records.Upsert(rec); err != nil {
			e.logger.Warnf("pull: skipping remote record %s %s: %v", r.Type, r.Name, err)
			continue
		}
		result.Created++
	}

	for i := range locals {
		local := &locals[i]
		if local.RemoteID == "" {
			continue
		}
		if seen[localKey(local)] {
			continue
		}
		if err := e.records.Delete(domainID, local.ID); err != nil {
			return nil, err
		}
		result.Deleted++
	}

	if err := e.domains.MarkPulled(domainID, time.Now()); err != nil {
		return nil, err
	}

	e.logger.WithField("domain", domain.Name).
		Infof("pull done: merged=%d created=%d deleted=%d", result.Merged, result.Created, result.Deleted)
	e.audit.Log("domain", domainID, domain.Name, model.ActivityActionSync,
		fmt.Sprintf("Merged %d, created %d, deleted %d records", result.Merged, result.Created, result.Deleted))

	return result, nil
}

// Push exports local state to the remote zone via a three-way diff keyed by
// (type, name, content): unmatched locals are created, drifted matches are
// updated, and remote records unmatched locally are deleted once a baseline
// pull has happened. Per-record failures are collected and never abort the
// remaining operations; auth failures abort immediately since nothing
// downstream can succeed.
func (e *Engine) Push(ctx context.Context, domainID int) (*PushResult, error) {
	if err := e.locks.acquire(domainID); err != nil {
		return nil, err
	}
	defer e.locks.release(domainID)

	return e.push(ctx, domainID)
}

func (e *Engine) push(ctx context.Context, domainID int) (*PushResult, error) {
	domain, api, zoneID, err := e.resolve(ctx, domainID)
	if err != nil {
		return nil, err
	}

	var remote []cloudflare.Record
	err = e.withRetry(ctx, func() error {
		var listErr error
		remote, listErr = api.ListRecords(ctx, zoneID)
		return listErr
	})
	if err != nil {
		return nil, err
	}

	locals, err := e.records.ListByDomain(domainID)
	if err != nil {
		return nil, err
	}

	remoteByKey := make(map[matchKey]*cloudflare.Record, len(remote))
	for i := range remote {
		r := &remote[i]
		k := keyFor(r.Type, dnsname.Relative(r.Name, domain.Name), r.Content)
		if _, dup := remoteByKey[k]; !dup {
			remoteByKey[k] = r
		}
	}

	result := &PushResult{Failed: []PushFailure{}}
	matched := make(map[string]bool, len(locals))

	for i := range locals {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		local := &locals[i]
		remoteRec := remoteByKey[localKey(local)]

		if remoteRec == nil {
			// No remote record holds this tuple. A stale remote id (the
			// record vanished upstream since the last pull) is recreated:
			// local state is authoritative.
			var newID string
			err := e.withRetry(ctx, func() error {
				var createErr error
				newID, createErr = api.CreateRecord(ctx, zoneID, e.recordInput(local, domain.Name, local.Proxied))
				return createErr
			})
			if err != nil {
				if abortErr := e.recordFailure(result, "create", local, err); abortErr != nil {
					return result, abortErr
				}
				continue
			}
			if err := e.records.SetRemoteID(local.ID, newID); err != nil {
				return result, err
			}
			result.Created++
			continue
		}

		matched[remoteRec.ID] = true
		if local.RemoteID != remoteRec.ID {
			if err := e.records.SetRemoteID(local.ID, remoteRec.ID); err != nil {
				return result, err
			}
		}

		// content/type/name define the key and cannot drift; only the
		// mutable fields are compared.
		if !drifted(local, remoteRec) {
			continue
		}
		err := e.withRetry(ctx, func() error {
			return api.UpdateRecord(ctx, zoneID, remoteRec.ID, e.recordInput(local, domain.Name, local.Proxied))
		})
		if err != nil {
			if abortErr := e.recordFailure(result, "update", local, err); abortErr != nil {
				return result, abortErr
			}
			continue
		}
		result.Updated++
	}

	for i := range remote {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		r := &remote[i]
		if matched[r.ID] {
			continue
		}
		// Record types the manager does not handle stay remote-only; pull
		// never imported them, so pruning them here would be a destructive
		// surprise.
		if !model.DNSRecordType(r.Type).Valid() {
			continue
		}
		if domain.PulledAt == nil {
			result.SkippedDeletes++
			continue
		}
		err := e.withRetry(ctx, func() error {
			return api.DeleteRecord(ctx, zoneID, r.ID)
		})
		if err != nil && !errors.Is(err, cloudflare.ErrRecordGone) {
			failure := PushFailure{
				Op:      "delete",
				Type:    r.Type,
				Name:    dnsname.Relative(r.Name, domain.Name),
				Content: r.Content,
				Reason:  err.Error(),
			}
			result.Failed = append(result.Failed, failure)
			if cloudflare.IsAuthError(err) {
				return result, err
			}
			continue
		}
		result.Deleted++
	}

	if result.SkippedDeletes > 0 {
		e.logger.WithField("domain", domain.Name).
			Warnf("push: skipped %d remote deletes, domain has no baseline pull", result.SkippedDeletes)
	}
	e.logger.WithField("domain", domain.Name).
		Infof("push done: created=%d updated=%d deleted=%d failed=%d",
			result.Created, result.Updated, result.Deleted, len(result.Failed))
	e.audit.Log("domain", domainID, domain.Name, model.ActivityActionPush,
		fmt.Sprintf("Created %d, updated %d, deleted %d, failed %d", result.Created, result.Updated, result.Deleted, len(result.Failed)))

	return result, nil
}

// ToggleProxy flips the proxied flag of one record, persists it locally and
// pushes a single-record update when the record already has a remote id.
// Non-proxyable types are rejected before any state change.
func (e *Engine) ToggleProxy(ctx context.Context, domainID, recordID int) (*ToggleResult, error) {
	if err := e.locks.acquire(domainID); err != nil {
		return nil, err
	}
	defer e.locks.release(domainID)

	record, err := e.records.GetRecord(domainID, recordID)
	if err != nil {
		return nil, err
	}
	if !record.Type.Proxyable() {
		return nil, fmt.Errorf("%w: only A, AAAA and CNAME records can be proxied, got %s", ErrInvalidOperation, record.Type)
	}

	domain, err := e.domains.GetDomain(domainID)
	if err != nil {
		return nil, err
	}

	newState := !record.Proxied
	if err := e.records.SetProxied(record.ID, newState); err != nil {
		return nil, err
	}
	result := &ToggleResult{NewState: newState}

	if record.RemoteID != "" && domain.ZoneID != "" {
		account, err := e.domains.GetAccount(domain.AccountID)
		if err != nil {
			return result, err
		}
		api := e.newClient(account)
		err = e.withRetry(ctx, func() error {
			return api.UpdateRecord(ctx, domain.ZoneID, record.RemoteID, e.recordInput(record, domain.Name, newState))
		})
		if err != nil {
			// The local flip stands; the next full push reconciles it.
			return result, err
		}
		result.Pushed = true
	}

	e.audit.Log("dns_record", recordID, fmt.Sprintf("%s %s", record.Type, record.Name),
		model.ActivityActionToggleProxy, fmt.Sprintf("Proxied: %t", newState))

	return result, nil
}

// TestConnection verifies an account credential without mutating anything
func (e *Engine) TestConnection(ctx context.Context, accountID int) (*cloudflare.VerifyResult, error) {
	account, err := e.domains.GetAccount(accountID)
	if err != nil {
		return nil, err
	}
	return e.newClient(account).VerifyCredentials(ctx)
}

// resolve loads the domain, builds its account client and ensures the
// provider zone id is known, matching the domain name against the account's
// zone list (case-insensitive) on first use.
func (e *Engine) resolve(ctx context.Context, domainID int) (*model.Domain, ZoneAPI, string, error) {
	domain, err := e.domains.GetDomain(domainID)
	if err != nil {
		return nil, nil, "", err
	}
	account, err := e.domains.GetAccount(domain.AccountID)
	if err != nil {
		return nil, nil, "", err
	}
	api := e.newClient(account)

	if domain.ZoneID != "" {
		return domain, api, domain.ZoneID, nil
	}

	var zones []cloudflare.Zone
	err = e.withRetry(ctx, func() error {
		var listErr error
		zones, listErr = api.ListZones(ctx)
		return listErr
	})
	if err != nil {
		return nil, nil, "", err
	}

	for _, z := range zones {
		if dnsname.EqualFold(z.Name, domain.Name) {
			if err := e.domains.SetZoneID(domainID, z.ID); err != nil {
				return nil, nil, "", err
			}
			domain.ZoneID = z.ID
			return domain, api, z.ID, nil
		}
	}
	return nil, nil, "", fmt.Errorf("%w: %s", ErrZoneNotResolved, domain.Name)
}

// recordFailure files one per-record push failure. It returns a non-nil
// error only when the whole operation must abort (auth failure or caller
// cancellation).
func (e *Engine) recordFailure(result *PushResult, op string, rec *model.DNSRecord, err error) error {
	result.Failed = append(result.Failed, PushFailure{
		Op:      op,
		Type:    string(rec.Type),
		Name:    rec.Name,
		Content: rec.Content,
		Reason:  err.Error(),
	})
	e.logger.Warnf("push: %s failed for %s %s: %v", op, rec.Type, rec.Name, err)
	if cloudflare.IsAuthError(err) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// recordInput builds the provider payload for a local record
func (e *Engine) recordInput(rec *model.DNSRecord, zone string, proxied bool) cloudflare.RecordInput {
	return cloudflare.RecordInput{
		Type:     string(rec.Type),
		Name:     dnsname.ToFQDN(rec.Name, zone),
		Content:  rec.Content,
		TTL:      rec.TTL,
		Priority: rec.Priority,
		Proxied:  proxied,
	}
}

// drifted reports whether the mutable fields of a local record differ from
// the remote snapshot
func drifted(local *model.DNSRecord, remote *cloudflare.Record) bool {
	if local.TTL != remote.TTL {
		return true
	}
	if local.Proxied != remote.Proxied {
		return true
	}
	if (local.Priority == nil) != (remote.Priority == nil) {
		return true
	}
	if local.Priority != nil && remote.Priority != nil && *local.Priority != *remote.Priority {
		return true
	}
	return false
}

// withRetry runs op, retrying transient provider failures with exponential
// backoff. Auth and 4xx failures propagate immediately.
func (e *Engine) withRetry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := e.backoffBase * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err = op()
		if err == nil || !cloudflare.IsRetryable(err) {
			return err
		}
	}
	return err
}
