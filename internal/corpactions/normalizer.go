// Package corpactions converts share counts and prices between points in an
// entity's split history. Everything here is pure: no clocks, no I/O, safe
// for concurrent use across entities.
package corpactions

import (
	"errors"
	"fmt"
	"time"

	"github.com/datwatch/verifier/internal/models"
)

// Basis names the point in split history a value is expressed in.
type Basis string

const (
	// BasisCurrent is present-day terms: all splits up to now applied.
	BasisCurrent Basis = "current"
	// BasisHistorical is the value as it would have read at the as-of date.
	BasisHistorical Basis = "historical"
)

// Kind distinguishes quantities that scale with splits from per-unit prices.
type Kind string

const (
	KindShares Kind = "shares"
	KindPrice  Kind = "price"
)

// ErrFutureAsOf is returned when the as-of date lies after the target basis
// date; the action window is undefined in that direction.
var ErrFutureAsOf = errors.New("corpactions: as-of date is after the target basis date")

// Result carries the converted value and what was applied to get there.
type Result struct {
	Value          float64
	AppliedRatio   float64
	ActionsApplied int
}

// ParseBasis validates a basis string, defaulting empty to current.
func ParseBasis(s string) (Basis, error) {
	switch Basis(s) {
	case BasisCurrent, "":
		return BasisCurrent, nil
	case BasisHistorical:
		return BasisHistorical, nil
	}
	return "", fmt.Errorf("corpactions: unknown basis %q", s)
}

// ParseKind validates a kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindShares:
		return KindShares, nil
	case KindPrice:
		return KindPrice, nil
	}
	return "", fmt.Errorf("corpactions: unknown kind %q", s)
}

// Normalize converts value, reported as of asOf, onto the requested basis
// given the entity's corporate actions. actions must be sorted ascending by
// effective date; the caller owns that invariant.
//
// The action window is (asOf, now]: every split that took effect after the
// fact was observed and on or before the target basis date. The cumulative
// ratio R multiplies share counts and divides prices when converting to the
// current basis, so price × shares is invariant under normalization. The
// historical direction applies the exact inverse over the same window.
func Normalize(value float64, actions []models.CorporateAction, asOf time.Time, now time.Time, basis Basis, kind Kind) (Result, error) {
	if asOf.After(now) {
		return Result{}, ErrFutureAsOf
	}

	ratio := 1.0
	applied := 0
	for _, a := range actions {
		if !a.EffectiveDate.After(asOf) {
			continue
		}
		if a.EffectiveDate.After(now) {
			continue
		}
		if a.Ratio <= 0 || a.Ratio == 1 {
			return Result{}, fmt.Errorf("corpactions: action for %s effective %s has invalid ratio %v",
				a.EntityID, a.EffectiveDate.Format("2006-01-02"), a.Ratio)
		}
		ratio *= a.Ratio
		applied++
	}

	out := value
	switch {
	case basis == BasisCurrent && kind == KindShares:
		out = value * ratio
	case basis == BasisCurrent && kind == KindPrice:
		out = value / ratio
	case basis == BasisHistorical && kind == KindShares:
		out = value / ratio
	case basis == BasisHistorical && kind == KindPrice:
		out = value * ratio
	default:
		return Result{}, fmt.Errorf("corpactions: unsupported basis/kind pair %q/%q", basis, kind)
	}

	return Result{Value: out, AppliedRatio: ratio, ActionsApplied: applied}, nil
}
