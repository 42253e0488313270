package enums

// BetType identifies the market shape by its stable integer ID.
type BetType int

const (
	BetTypeUnknown        BetType = 0
	BetTypeTwoWay         BetType = 1 // winner, no draw possible
	BetTypeThreeWay       BetType = 2 // 1X2
	BetTypeHandicap       BetType = 3
	BetTypeTotal          BetType = 4 // over/under
	BetTypeFirstSetWinner BetType = 5
	BetTypeBothToScore    BetType = 6
)

type betTypeInfo struct {
	label    string
	outcomes int
}

var betTypes = map[BetType]betTypeInfo{
	BetTypeTwoWay:         {"Match Winner", 2},
	BetTypeThreeWay:       {"1X2", 3},
	BetTypeHandicap:       {"Handicap", 2},
	BetTypeTotal:          {"Total", 2},
	BetTypeFirstSetWinner: {"First Set Winner", 2},
	BetTypeBothToScore:    {"Both Teams To Score", 2},
}

// Outcomes returns how many outcome slots this market shape uses (2 or 3).
// Returns 0 for unknown bet types so invalid quotes fail validation.
func (b BetType) Outcomes() int {
	return betTypes[b].outcomes
}

// Label returns a human-readable market name for notifications.
func (b BetType) Label() string {
	if info, ok := betTypes[b]; ok {
		return info.label
	}
	return "Unknown Market"
}

// IsValid checks if the bet type is supported.
func (b BetType) IsValid() bool {
	_, ok := betTypes[b]
	return ok
}

// HasLine reports whether the market carries a line value (margin).
func (b BetType) HasLine() bool {
	return b == BetTypeHandicap || b == BetTypeTotal
}

// OutcomeLabel names outcome slot i (0-based) for this market shape.
func (b BetType) OutcomeLabel(i int) string {
	switch b {
	case BetTypeThreeWay:
		switch i {
		case 0:
			return "1"
		case 1:
			return "X"
		case 2:
			return "2"
		}
	case BetTypeTotal:
		switch i {
		case 0:
			return "Over"
		case 1:
			return "Under"
		}
	case BetTypeBothToScore:
		switch i {
		case 0:
			return "Yes"
		case 1:
			return "No"
		}
	default:
		switch i {
		case 0:
			return "1"
		case 1:
			return "2"
		}
	}
	return "?"
}
