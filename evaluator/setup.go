package evaluator

import "fmt"

// EvalType is the method used to evaluate a decision.
type EvalType int

const (
	EvalNone EvalType = iota
	EvalEval
	EvalRollout
)

func (e EvalType) String() string {
	switch e {
	case EvalEval:
		return "eval"
	case EvalRollout:
		return "rollout"
	}
	return "none"
}

// EvalContext describes a static evaluation.
type EvalContext struct {
	Cubeful       bool    `json:"cubeful" yaml:"cubeful"`
	Plies         int     `json:"plies" yaml:"plies"`
	Prune         bool    `json:"prune" yaml:"prune"`
	Deterministic bool    `json:"deterministic" yaml:"deterministic"`
	Noise         float64 `json:"noise" yaml:"noise"`
}

// RolloutContext describes a rollout. Rollouts are never started by the
// analysis code but stored rollout results are honoured.
type RolloutContext struct {
	Trials     int `json:"trials" yaml:"trials"`
	Truncation int `json:"truncation" yaml:"truncation"`
}

// EvalSetup records how thoroughly a decision was evaluated.
type EvalSetup struct {
	Type    EvalType       `json:"type" yaml:"type"`
	Eval    EvalContext    `json:"eval" yaml:"eval"`
	Rollout RolloutContext `json:"rollout" yaml:"rollout"`
}

func (e EvalSetup) String() string {
	switch e.Type {
	case EvalEval:
		s := fmt.Sprintf("%d-ply", e.Eval.Plies)
		if e.Eval.Cubeful {
			s += " cubeful"
		} else {
			s += " cubeless"
		}
		if e.Eval.Prune {
			s += " prune"
		}
		if e.Eval.Noise > 0 {
			s += fmt.Sprintf(" noise %.3f", e.Eval.Noise)
		}
		return s
	case EvalRollout:
		return fmt.Sprintf("rollout %d trials", e.Rollout.Trials)
	}
	return "none"
}

func cmpInt(a, b int) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	}
	return 0
}

// CompareSetups orders evaluation setups by thoroughness. It returns a
// positive number if a is more thorough than b, negative if less, and 0
// if they are equivalent. Any rollout beats any evaluation.
func CompareSetups(a, b EvalSetup) int {
	if c := cmpInt(int(a.Type), int(b.Type)); c != 0 {
		return c
	}
	switch a.Type {
	case EvalEval:
		if c := cmpInt(a.Eval.Plies, b.Eval.Plies); c != 0 {
			return c
		}
		// less noise is more thorough
		if a.Eval.Noise != b.Eval.Noise {
			if a.Eval.Noise < b.Eval.Noise {
				return 1
			}
			return -1
		}
		// unpruned searches look at more moves
		if a.Eval.Prune != b.Eval.Prune {
			if b.Eval.Prune {
				return 1
			}
			return -1
		}
	case EvalRollout:
		return cmpInt(a.Rollout.Trials, b.Rollout.Trials)
	}
	return 0
}

// Comparator orders evaluation setups; see CompareSetups.
type Comparator func(a, b EvalSetup) int
