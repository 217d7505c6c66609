package synchronizer

import (
	"github.com/goliatone/go-cms-autotranslate/internal/reconcile"
	"github.com/google/uuid"
)

// Trigger names the entry point that produced a report.
type Trigger string

const (
	TriggerAdopted   Trigger = "adopted"
	TriggerPublished Trigger = "published"
	TriggerManual    Trigger = "manual"
)

// Outcome is the per-preset result of a pass.
type Outcome string

const (
	OutcomeReconciled Outcome = "reconciled"
	OutcomeRemoved    Outcome = "removed"
	OutcomeSkipped    Outcome = "skipped"
)

// Reasons a whole pass or a single preset was skipped.
const (
	ReasonDisabled         = "disabled"
	ReasonReentrant        = "reentrant"
	ReasonWorkspaceNotLive = "workspace_not_live"
	ReasonNodeTypeDisabled = "node_type_disabled"
	ReasonNotDefaultPreset = "not_default_preset"
	ReasonStrategyMismatch = "strategy_mismatch"
	ReasonSourcePreset     = "source_preset"
	ReasonTargetMissing    = "target_missing"
	ReasonNoSyncTargets    = "no_sync_targets"
	ReasonReconcileSkipped = "reconcile_skipped"
)

// PresetReport records what happened to one target preset.
type PresetReport struct {
	Preset  string
	Outcome Outcome
	Reason  string
	Result  *reconcile.Result
}

// Report summarises a synchronization pass.
type Report struct {
	Trigger Trigger
	NodeID  uuid.UUID
	Source  string
	Skipped bool
	Reason  string
	Presets []PresetReport
}

// Outcomes maps each preset to its outcome.
func (r *Report) Outcomes() map[string]Outcome {
	if r == nil {
		return map[string]Outcome{}
	}
	out := make(map[string]Outcome, len(r.Presets))
	for _, preset := range r.Presets {
		out[preset.Preset] = preset.Outcome
	}
	return out
}

// Preset returns the report for name.
func (r *Report) Preset(name string) (PresetReport, bool) {
	if r == nil {
		return PresetReport{}, false
	}
	for _, preset := range r.Presets {
		if preset.Preset == name {
			return preset, true
		}
	}
	return PresetReport{}, false
}

func (r *Report) skip(reason string) *Report {
	r.Skipped = true
	r.Reason = reason
	return r
}

func (r *Report) add(preset string, outcome Outcome, reason string, result *reconcile.Result) {
	r.Presets = append(r.Presets, PresetReport{
		Preset:  preset,
		Outcome: outcome,
		Reason:  reason,
		Result:  result,
	})
}
