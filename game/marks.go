package game

// SkillType marks how good a decision was.
type SkillType int

const (
	SkillVeryBad SkillType = iota
	SkillBad
	SkillDoubtful
	SkillNone
	SkillInteresting
	SkillGood
	SkillVeryGood
	NumSkillTypes
)

func (s SkillType) String() string {
	switch s {
	case SkillVeryBad:
		return "very bad"
	case SkillBad:
		return "bad"
	case SkillDoubtful:
		return "doubtful"
	case SkillNone:
		return "unmarked"
	case SkillInteresting:
		return "interesting"
	case SkillGood:
		return "good"
	case SkillVeryGood:
		return "very good"
	}
	return "unknown"
}

// Bad reports whether the mark is an error of any size.
func (s SkillType) Bad() bool {
	return s < SkillNone
}

// LuckType marks how lucky a roll was.
type LuckType int

const (
	LuckVeryBad LuckType = iota
	LuckBad
	LuckNone
	LuckGood
	LuckVeryGood
	NumLuckTypes
)

func (l LuckType) String() string {
	switch l {
	case LuckVeryBad:
		return "very unlucky"
	case LuckBad:
		return "unlucky"
	case LuckNone:
		return "unmarked"
	case LuckGood:
		return "lucky"
	case LuckVeryGood:
		return "very lucky"
	}
	return "unknown"
}
