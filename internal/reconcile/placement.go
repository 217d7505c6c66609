package reconcile

import (
	"context"
	"errors"

	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

// PlacementOutcome enumerates structural placement results.
type PlacementOutcome string

const (
	PlacementUnchanged PlacementOutcome = "unchanged"
	PlacementMoved     PlacementOutcome = "moved"
	PlacementSkipped   PlacementOutcome = "skipped"
)

// Placement skip reasons.
const (
	PlacementReasonParentMissing = "parent_variant_missing"
	PlacementReasonConflict      = "target_location_occupied"
	PlacementReasonInvalid       = "invalid_reference"
)

// Placement records how the target variant's parent was reconciled.
type Placement struct {
	Outcome PlacementOutcome
	Reason  string
	Err     error
}

func (r *Reconciler) place(ctx context.Context, req Request) (Placement, error) {
	sourceParent, err := req.Source.Parent(ctx)
	if err != nil {
		if errors.Is(err, interfaces.ErrNodeNotFound) {
			return Placement{Outcome: PlacementSkipped, Reason: PlacementReasonParentMissing, Err: err}, nil
		}
		return Placement{}, err
	}
	if sourceParent == nil {
		return Placement{Outcome: PlacementUnchanged}, nil
	}

	targetParent, err := req.Target.Parent(ctx)
	if err != nil && !errors.Is(err, interfaces.ErrNodeNotFound) {
		return Placement{}, err
	}
	if targetParent != nil && req.Target.ParentPath() == req.Source.ParentPath() {
		return Placement{Outcome: PlacementUnchanged}, nil
	}

	parentVariant, err := req.TargetContext.FindByIdentifier(ctx, sourceParent.Identifier())
	if err != nil {
		if errors.Is(err, interfaces.ErrNodeNotFound) {
			return Placement{Outcome: PlacementSkipped, Reason: PlacementReasonParentMissing, Err: err}, nil
		}
		return Placement{}, err
	}

	if err := req.Target.MoveInto(ctx, parentVariant); err != nil {
		switch {
		case errors.Is(err, interfaces.ErrNodeExists):
			return Placement{Outcome: PlacementSkipped, Reason: PlacementReasonConflict, Err: err}, nil
		case errors.Is(err, interfaces.ErrInvalidReference), errors.Is(err, interfaces.ErrNodeNotFound):
			return Placement{Outcome: PlacementSkipped, Reason: PlacementReasonInvalid, Err: err}, nil
		default:
			return Placement{}, err
		}
	}
	return Placement{Outcome: PlacementMoved}, nil
}
