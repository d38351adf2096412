package reconcile

import (
	"context"
	"fmt"

	"dns_manager/internal/model"
)

// PresetStore is the persistence surface the applier needs for templates
type PresetStore interface {
	GetPreset(presetID int) (*model.Preset, error)
	ListPresetRecords(presetID int) ([]model.PresetRecord, error)
	SetDomainPreset(domainID, presetID int) error
}

// Applier expands a preset's template records against a concrete domain and
// replaces the domain's record set with the result, then pushes so the
// remote zone matches. The replace is deliberately destructive: unlike
// pull, it discards all prior records, drafts included.
type Applier struct {
	engine  *Engine
	presets PresetStore
}

// NewApplier creates a preset applier backed by the given engine
func NewApplier(engine *Engine, presets PresetStore) *Applier {
	return &Applier{engine: engine, presets: presets}
}

// ApplyResult summarizes a preset application
type ApplyResult struct {
	RecordsApplied int         `json:"records_applied"`
	Push           *PushResult `json:"push_result"`
}

// ApplyPreset replaces the domain's records with the preset's resolved
// templates and pushes. The whole operation runs under the domain's
// reconciliation lock. If the push partially fails the local state remains
// the new preset state; local is authoritative post-apply.
func (a *Applier) ApplyPreset(ctx context.Context, domainID, presetID int) (*ApplyResult, error) {
	e := a.engine
	if err := e.locks.acquire(domainID); err != nil {
		return nil, err
	}
	defer e.locks.release(domainID)

	domain, err := e.domains.GetDomain(domainID)
	if err != nil {
		return nil, err
	}
	preset, err := a.presets.GetPreset(presetID)
	if err != nil {
		return nil, err
	}
	templates, err := a.presets.ListPresetRecords(presetID)
	if err != nil {
		return nil, err
	}

	records := make([]model.DNSRecord, 0, len(templates))
	for _, tpl := range templates {
		records = append(records, model.DNSRecord{
			DomainID: domainID,
			Type:     tpl.Type,
			Name:     resolveTemplateName(tpl.Name),
			Content:  tpl.Content,
			TTL:      tpl.TTL,
			Priority: tpl.Priority,
			Proxied:  tpl.Proxied,
		})
	}

	if err := e.records.ReplaceAll(domainID, records); err != nil {
		return nil, err
	}
	if err := a.presets.SetDomainPreset(domainID, presetID); err != nil {
		return nil, err
	}

	e.audit.Log("domain", domainID, domain.Name, model.ActivityActionApplyPreset,
		fmt.Sprintf("Applied preset %q with %d records", preset.Name, len(records)))

	pushResult, err := e.push(ctx, domainID)
	if err != nil {
		// Local state is already the preset state; surface the push error
		// together with whatever completed.
		return &ApplyResult{RecordsApplied: len(records), Push: pushResult}, err
	}

	return &ApplyResult{RecordsApplied: len(records), Push: pushResult}, nil
}

// resolveTemplateName maps a template record name to its stored relative
// form. "@" and "*" are kept as-is (apex and wildcard are already relative
// placeholders); other names are used verbatim as relative labels.
func resolveTemplateName(name string) string {
	if name == "" {
		return "@"
	}
	return name
}
