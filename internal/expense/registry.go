package expense

import (
	"fmt"
	"math/rand/v2"
)

// SplitRegistry owns one instance of each split strategy and points at the
// currently active one. A fresh registry starts on EqualSplit, and Reset
// always restores it.
type SplitRegistry struct {
	equal  *EqualSplit
	parts  *PartsSplit
	shares *SharesSplit
	active SplitStrategy
}

// NewSplitRegistry builds the three strategies for the given roster. The rng
// drives the rounding tie-breaks in EqualSplit and SharesSplit; pass nil to
// seed one from the process-wide source.
func NewSplitRegistry(roster []UserID, rng *rand.Rand) *SplitRegistry {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	r := &SplitRegistry{
		equal:  NewEqualSplit(roster, rng),
		parts:  NewPartsSplit(roster),
		shares: NewSharesSplit(roster, rng),
	}
	r.active = r.equal
	return r
}

// Active returns the currently active strategy.
func (r *SplitRegistry) Active() SplitStrategy { return r.active }

// Equal returns the registry's EqualSplit instance.
func (r *SplitRegistry) Equal() *EqualSplit { return r.equal }

// Parts returns the registry's PartsSplit instance.
func (r *SplitRegistry) Parts() *PartsSplit { return r.parts }

// Shares returns the registry's SharesSplit instance.
func (r *SplitRegistry) Shares() *SharesSplit { return r.shares }

// SetActive makes s the active strategy. It must be one of the three
// instances this registry owns; anything else is rejected.
func (r *SplitRegistry) SetActive(s SplitStrategy) error {
	switch s {
	case SplitStrategy(r.equal), SplitStrategy(r.parts), SplitStrategy(r.shares):
		r.active = s
		return nil
	default:
		return ErrUnregisteredSplit
	}
}

// ByKind returns the owned strategy for the given kind.
func (r *SplitRegistry) ByKind(kind SplitKind) (SplitStrategy, error) {
	switch kind {
	case SplitEqual:
		return r.equal, nil
	case SplitParts:
		return r.parts, nil
	case SplitShares:
		return r.shares, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnregisteredSplit, kind)
	}
}

// Reset resets all three strategies and restores EqualSplit as active.
func (r *SplitRegistry) Reset() {
	r.equal.Reset()
	r.parts.Reset()
	r.shares.Reset()
	r.active = r.equal
}
