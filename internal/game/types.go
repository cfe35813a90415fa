package game

import "errors"

// Mark is the content of one board cell
type Mark int8

const (
	Empty Mark = iota
	PlayerA
	PlayerB
)

// Board dimensions
const (
	Rows          = 6
	Columns       = 7
	ConnectLength = 4
	Cells         = Rows * Columns
)

// MaxPlayers is the number of seats at one board
const MaxPlayers = 2

// Symbol returns the single-character rendering of a mark
func (m Mark) Symbol() string {
	switch m {
	case PlayerA:
		return "X"
	case PlayerB:
		return "O"
	default:
		return "."
	}
}

func (m Mark) String() string {
	switch m {
	case PlayerA:
		return "PlayerA"
	case PlayerB:
		return "PlayerB"
	default:
		return "Empty"
	}
}

// MarkForSlot returns the mark played by the given seat: slot 0 drops PlayerA, slot 1 PlayerB.
func MarkForSlot(slot int) Mark {
	if slot == 1 {
		return PlayerB
	}
	return PlayerA
}

var (
	ErrColumnOutOfRange = errors.New("column out of range")
	ErrColumnFull       = errors.New("column is full")
	ErrInvalidMark      = errors.New("invalid mark")
)
