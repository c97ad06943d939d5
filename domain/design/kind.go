package design

import (
	"fmt"
	"strings"

	"godoe/domain/core"
)

// Kind names a classical design used during the optimization phase.
type Kind string

const (
	FullFactorial2 Kind = "fullfactorial2levels"
	FullFactorial3 Kind = "fullfactorial3levels"
	PlackettBurman Kind = "placketburman"
	BoxBehnken     Kind = "boxbehnken"
	CCC            Kind = "ccc"
	CCF            Kind = "ccf"
	CCI            Kind = "cci"
)

// Kinds lists every supported optimization design.
var Kinds = []Kind{FullFactorial2, FullFactorial3, PlackettBurman, BoxBehnken, CCC, CCF, CCI}

// ParseKind resolves a design type name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnsupportedDesign, s)
}

// Phase is the campaign stage that decides which design NewDesign produces.
type Phase string

const (
	PhaseScreening    Phase = "screening"
	PhaseOptimization Phase = "optimization"
)

// ParsePhase validates a phase name.
func ParsePhase(s string) (Phase, error) {
	switch p := Phase(strings.ToLower(s)); p {
	case PhaseScreening, PhaseOptimization:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownPhase, s)
}

// EdgeAction decides what happens to design points outside the hard bounds.
type EdgeAction string

const (
	EdgeDistort EdgeAction = "distort"
	// EdgeShrink is accepted by configuration but has no implementation.
	EdgeShrink EdgeAction = "shrink"
)

// ModelSelection picks how the surrogate fitter chooses model terms.
type ModelSelection string

const (
	SelectBrute  ModelSelection = "brute"
	SelectGreedy ModelSelection = "greedy"
	SelectManual ModelSelection = "manual"
)

// Folds is the cross-validation scheme: a positive fold count, or LeaveOneOut.
type Folds int

// LeaveOneOut uses one fold per observation.
const LeaveOneOut Folds = -1

// ParseFolds accepts "loo" or a positive integer.
func ParseFolds(s string) (Folds, error) {
	if strings.EqualFold(s, "loo") {
		return LeaveOneOut, nil
	}
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil || n <= 0 || fmt.Sprint(n) != strings.TrimSpace(s) {
		return 0, fmt.Errorf("%w: n_folds must be 'loo' or a positive integer, got %q", core.ErrInvalidKnob, s)
	}
	return Folds(n), nil
}

// For resolves the number of folds for n observations.
func (f Folds) For(n int) int {
	if f == LeaveOneOut || int(f) > n {
		return n
	}
	return int(f)
}

func (f Folds) String() string {
	if f == LeaveOneOut {
		return "loo"
	}
	return fmt.Sprint(int(f))
}
