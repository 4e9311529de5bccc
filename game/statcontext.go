package game

// StatContext accumulates per-player analysis statistics. Every [2]
// dimension is indexed by player. Error and luck sums have a second
// dimension: [0] is in normalised equity, [1] in money (cube-scaled) or
// match winning chance. Errors are stored as positive losses.
type StatContext struct {
	MovesAnalysed bool `json:"moves-analysed"`
	LuckAnalysed  bool `json:"luck-analysed"`
	CubeAnalysed  bool `json:"cube-analysed"`

	TotalMoves    [2]int                `json:"total-moves"`
	UnforcedMoves [2]int                `json:"unforced-moves"`
	Moves         [2][NumSkillTypes]int `json:"moves"`

	LuckCounts [2][NumLuckTypes]int `json:"luck-counts"`
	Luck       [2][2]float64        `json:"luck"`

	TotalCube [2]int `json:"total-cube"`
	Doubles   [2]int `json:"doubles"`
	Takes     [2]int `json:"takes"`
	Passes    [2]int `json:"passes"`

	// DP is near the take point, TG near the too-good point.
	MissedDoubleDP [2]int `json:"missed-double-dp"`
	MissedDoubleTG [2]int `json:"missed-double-tg"`
	WrongDoubleDP  [2]int `json:"wrong-double-dp"`
	WrongDoubleTG  [2]int `json:"wrong-double-tg"`
	WrongTake      [2]int `json:"wrong-take"`
	WrongPass      [2]int `json:"wrong-pass"`

	ErrorCheckerplay    [2][2]float64 `json:"error-checkerplay"`
	ErrorMissedDoubleDP [2][2]float64 `json:"error-missed-double-dp"`
	ErrorMissedDoubleTG [2][2]float64 `json:"error-missed-double-tg"`
	ErrorWrongDoubleDP  [2][2]float64 `json:"error-wrong-double-dp"`
	ErrorWrongDoubleTG  [2][2]float64 `json:"error-wrong-double-tg"`
	ErrorWrongTake      [2][2]float64 `json:"error-wrong-take"`
	ErrorWrongPass      [2][2]float64 `json:"error-wrong-pass"`
}

// Reset zeroes every counter, sum and flag.
func (sc *StatContext) Reset() {
	*sc = StatContext{}
}

func addInts(dst *[2]int, src [2]int) {
	dst[0] += src[0]
	dst[1] += src[1]
}

func addSums(dst *[2][2]float64, src [2][2]float64) {
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			dst[i][j] += src[i][j]
		}
	}
}

// Add adds every counter and sum of src into sc and ORs the flags. It may
// be called repeatedly to build a match total from game totals.
func (sc *StatContext) Add(src *StatContext) {
	sc.MovesAnalysed = sc.MovesAnalysed || src.MovesAnalysed
	sc.LuckAnalysed = sc.LuckAnalysed || src.LuckAnalysed
	sc.CubeAnalysed = sc.CubeAnalysed || src.CubeAnalysed

	for i := 0; i < 2; i++ {
		sc.TotalMoves[i] += src.TotalMoves[i]
		sc.UnforcedMoves[i] += src.UnforcedMoves[i]
		for j := range sc.Moves[i] {
			sc.Moves[i][j] += src.Moves[i][j]
		}
		for j := range sc.LuckCounts[i] {
			sc.LuckCounts[i][j] += src.LuckCounts[i][j]
		}
	}
	addSums(&sc.Luck, src.Luck)

	addInts(&sc.TotalCube, src.TotalCube)
	addInts(&sc.Doubles, src.Doubles)
	addInts(&sc.Takes, src.Takes)
	addInts(&sc.Passes, src.Passes)

	addInts(&sc.MissedDoubleDP, src.MissedDoubleDP)
	addInts(&sc.MissedDoubleTG, src.MissedDoubleTG)
	addInts(&sc.WrongDoubleDP, src.WrongDoubleDP)
	addInts(&sc.WrongDoubleTG, src.WrongDoubleTG)
	addInts(&sc.WrongTake, src.WrongTake)
	addInts(&sc.WrongPass, src.WrongPass)

	addSums(&sc.ErrorCheckerplay, src.ErrorCheckerplay)
	addSums(&sc.ErrorMissedDoubleDP, src.ErrorMissedDoubleDP)
	addSums(&sc.ErrorMissedDoubleTG, src.ErrorMissedDoubleTG)
	addSums(&sc.ErrorWrongDoubleDP, src.ErrorWrongDoubleDP)
	addSums(&sc.ErrorWrongDoubleTG, src.ErrorWrongDoubleTG)
	addSums(&sc.ErrorWrongTake, src.ErrorWrongTake)
	addSums(&sc.ErrorWrongPass, src.ErrorWrongPass)
}

// CubeErrors returns the sum of the six cube error categories for player
// in unit (0 normalised, 1 money or MWC).
func (sc *StatContext) CubeErrors(player, unit int) float64 {
	return sc.ErrorMissedDoubleDP[player][unit] +
		sc.ErrorMissedDoubleTG[player][unit] +
		sc.ErrorWrongDoubleDP[player][unit] +
		sc.ErrorWrongDoubleTG[player][unit] +
		sc.ErrorWrongTake[player][unit] +
		sc.ErrorWrongPass[player][unit]
}

// Empty reports whether no analysis category produced statistics.
func (sc *StatContext) Empty() bool {
	return !sc.MovesAnalysed && !sc.LuckAnalysed && !sc.CubeAnalysed
}
