package gameanalysis

import (
	"math"

	"github.com/domino14/bgstats/game"
)

// SkillThresholds are the equity losses at which a decision is marked.
// All three are positive and VeryBad > Bad > Doubtful.
type SkillThresholds struct {
	VeryBad  float64
	Bad      float64
	Doubtful float64
}

// LuckThresholds are the luck values at which a roll is marked. All four
// are positive; Bad and VeryBad are applied to negative luck.
type LuckThresholds struct {
	VeryGood float64
	Good     float64
	Bad      float64
	VeryBad  float64
}

// Skill classifies a signed equity difference. Negative values are
// losses; boundaries fall into the worse category.
func (t SkillThresholds) Skill(v float64) game.SkillType {
	switch {
	case v <= -t.VeryBad:
		return game.SkillVeryBad
	case v <= -t.Bad:
		return game.SkillBad
	case v <= -t.Doubtful:
		return game.SkillDoubtful
	}
	return game.SkillNone
}

// Luck classifies a luck value.
func (t LuckThresholds) Luck(v float64) game.LuckType {
	switch {
	case v >= t.VeryGood:
		return game.LuckVeryGood
	case v >= t.Good:
		return game.LuckGood
	case v <= -t.VeryBad:
		return game.LuckVeryBad
	case v <= -t.Bad:
		return game.LuckBad
	}
	return game.LuckNone
}

// Rating is a named playing strength.
type Rating int

const (
	RatingBeginner Rating = iota
	RatingNovice
	RatingIntermediate
	RatingAdvanced
	RatingExpert
	RatingWorldClass
	RatingExtraTerrestrial
	RatingNA
)

var ratingNames = [...]string{
	"Beginner", "Novice", "Intermediate", "Advanced", "Expert",
	"World class", "Extra-terrestrial", "N/A",
}

// ratingThresholds[r] is the error rate a player must stay under to be
// rated r.
var ratingThresholds = [...]float64{1e38, .030, .025, .020, .015, .010, .005}

func (r Rating) String() string {
	if r < 0 || int(r) >= len(ratingNames) {
		return ratingNames[RatingNA]
	}
	return ratingNames[r]
}

// GetRating maps an average error per decision to a rating. Undefined
// rates (no decisions) rate as N/A.
func GetRating(errorRate float64) Rating {
	if math.IsNaN(errorRate) || math.IsInf(errorRate, 0) {
		return RatingNA
	}
	for r := RatingExtraTerrestrial; r >= RatingBeginner; r-- {
		if errorRate < ratingThresholds[r] {
			return r
		}
	}
	return RatingNA
}

// LuckRating describes a player's average luck per move.
type LuckRating int

const (
	LuckRatingGoToBed LuckRating = iota
	LuckRatingBadDice
	LuckRatingUnlucky
	LuckRatingNone
	LuckRatingGoodDice
	LuckRatingLasVegas
)

var luckRatingNames = [...]string{
	"Go to bed", "Bad dice, man!", "Unlucky", "None", "Good dice, man!", "Go to Las Vegas",
}

func (r LuckRating) String() string {
	if r < 0 || int(r) >= len(luckRatingNames) {
		return "N/A"
	}
	return luckRatingNames[r]
}

// GetLuckRating maps luck per move to a rating.
func GetLuckRating(luckRate float64) LuckRating {
	switch {
	case luckRate < -0.10:
		return LuckRatingGoToBed
	case luckRate < -0.06:
		return LuckRatingBadDice
	case luckRate < -0.02:
		return LuckRatingUnlucky
	case luckRate < 0.02:
		return LuckRatingNone
	case luckRate < 0.06:
		return LuckRatingGoodDice
	}
	return LuckRatingLasVegas
}
