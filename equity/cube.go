package equity

// Indexes into CubeDecision.
const (
	OutputOptimal = iota
	OutputNoDouble
	OutputTake
	OutputDrop
	NumCubeOutputs
)

// CubeDecision holds normalised cubeful equities of the doubler for each
// cube action, plus the equity of the optimal action.
type CubeDecision [NumCubeOutputs]float64

// CubeAction is the proper cube action in a position.
type CubeAction int

const (
	NoDouble CubeAction = iota
	DoubleTake
	DoublePass
	TooGood
	NotAvailable
)

func (c CubeAction) String() string {
	switch c {
	case NoDouble:
		return "No double"
	case DoubleTake:
		return "Double, take"
	case DoublePass:
		return "Double, pass"
	case TooGood:
		return "Too good to double"
	}
	return "Cube not available"
}

// FindCubeDecision combines the no-double and double/take cubeful equities
// from a cube evaluation with the double/pass equity. Both inputs are
// normalised equities for ci.Move.
func FindCubeDecision(noDouble, doubleTake float64, ci CubeInfo) (CubeDecision, CubeAction) {
	var cd CubeDecision
	canDouble, dp := ci.GetDPEq()
	if ci.MatchTo > 0 {
		dp = ci.MWC2Eq(dp)
	}
	cd[OutputNoDouble] = noDouble
	cd[OutputTake] = doubleTake
	cd[OutputDrop] = dp

	if !canDouble {
		cd[OutputOptimal] = noDouble
		return cd, NotAvailable
	}
	if doubleTake >= noDouble && dp >= noDouble {
		cd[OutputOptimal] = min(doubleTake, dp)
		if doubleTake >= dp {
			return cd, DoublePass
		}
		return cd, DoubleTake
	}
	cd[OutputOptimal] = noDouble
	if dp < noDouble {
		return cd, TooGood
	}
	return cd, NoDouble
}
