package game

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// place writes marks directly, bypassing gravity, for win-detection fixtures
func place(b *Board, mark Mark, cells ...[2]int) {
	for _, c := range cells {
		b.cells[c[0]][c[1]] = mark
		b.moves++
	}
}

func TestDropGravity(t *testing.T) {
	b := NewBoard()
	for i := 0; i < Rows; i++ {
		row, err := b.Drop(3, MarkForSlot(i%2))
		if err != nil {
			t.Fatalf("drop %d: %v", i, err)
		}
		if want := Rows - 1 - i; row != want {
			t.Errorf("drop %d landed in row %d, want %d", i, row, want)
		}
	}
	if b.Moves() != Rows {
		t.Errorf("Moves() = %d, want %d", b.Moves(), Rows)
	}
}

func TestDropColumnFull(t *testing.T) {
	b := NewBoard()
	for i := 0; i < Rows; i++ {
		if _, err := b.Drop(0, PlayerA); err != nil {
			t.Fatalf("drop %d: %v", i, err)
		}
	}
	before := *b

	_, err := b.Drop(0, PlayerB)
	if !errors.Is(err, ErrColumnFull) {
		t.Fatalf("7th drop error = %v, want ErrColumnFull", err)
	}
	if diff := cmp.Diff(before, *b, cmp.AllowUnexported(Board{})); diff != "" {
		t.Errorf("failed drop mutated board (-before +after):\n%s", diff)
	}
}

func TestDropColumnOutOfRange(t *testing.T) {
	b := NewBoard()
	for _, col := range []int{-1, Columns, 100} {
		if _, err := b.Drop(col, PlayerA); !errors.Is(err, ErrColumnOutOfRange) {
			t.Errorf("Drop(%d) error = %v, want ErrColumnOutOfRange", col, err)
		}
	}
	if b.Moves() != 0 {
		t.Errorf("board mutated by rejected drops")
	}
}

func TestDropInvalidMark(t *testing.T) {
	b := NewBoard()
	if _, err := b.Drop(0, Empty); !errors.Is(err, ErrInvalidMark) {
		t.Errorf("Drop(Empty) error = %v", err)
	}
}

func TestHasWinner(t *testing.T) {
	tests := []struct {
		name  string
		cells [][2]int
		want  bool
	}{
		{"empty", nil, false},
		{"horizontal bottom left", [][2]int{{5, 0}, {5, 1}, {5, 2}, {5, 3}}, true},
		{"horizontal top right", [][2]int{{0, 3}, {0, 4}, {0, 5}, {0, 6}}, true},
		{"horizontal three", [][2]int{{5, 0}, {5, 1}, {5, 2}}, false},
		{"horizontal gap", [][2]int{{5, 0}, {5, 1}, {5, 3}, {5, 4}}, false},
		{"vertical", [][2]int{{2, 6}, {3, 6}, {4, 6}, {5, 6}}, true},
		{"vertical top", [][2]int{{0, 0}, {1, 0}, {2, 0}, {3, 0}}, true},
		{"diagonal down-right", [][2]int{{2, 0}, {3, 1}, {4, 2}, {5, 3}}, true},
		{"diagonal down-left", [][2]int{{2, 6}, {3, 5}, {4, 4}, {5, 3}}, true},
		{"diagonal corner", [][2]int{{0, 3}, {1, 4}, {2, 5}, {3, 6}}, true},
		// these would connect if the grid wrapped around its right edge
		{"no horizontal wrap", [][2]int{{4, 5}, {4, 6}, {5, 0}, {5, 1}}, false},
		{"no diagonal wrap", [][2]int{{2, 5}, {3, 6}, {4, 0}, {5, 1}}, false},
		{"no vertical wrap", [][2]int{{4, 2}, {5, 2}, {0, 2}, {1, 2}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoard()
			place(b, PlayerA, tt.cells...)
			if got := b.HasWinner(PlayerA); got != tt.want {
				t.Errorf("HasWinner(PlayerA) = %v, want %v\n%s", got, tt.want, b.Render())
			}
			if b.HasWinner(PlayerB) {
				t.Errorf("HasWinner(PlayerB) = true on a board without B pieces")
			}
		})
	}
}

func TestHasWinnerMixedRun(t *testing.T) {
	b := NewBoard()
	place(b, PlayerA, [2]int{5, 0}, [2]int{5, 1}, [2]int{5, 3})
	place(b, PlayerB, [2]int{5, 2})
	if b.HasWinner(PlayerA) || b.HasWinner(PlayerB) {
		t.Errorf("interrupted run reported as a win")
	}
	if b.HasWinner(Empty) {
		t.Errorf("Empty can never win")
	}
}

func TestVerticalWinThroughDrops(t *testing.T) {
	b := NewBoard()
	for i := 0; i < 3; i++ {
		b.Drop(0, PlayerA)
		b.Drop(1, PlayerB)
		if b.HasWinner(PlayerA) {
			t.Fatalf("win reported after %d pieces", i+1)
		}
	}
	b.Drop(0, PlayerA)
	if !b.HasWinner(PlayerA) {
		t.Errorf("expected vertical win\n%s", b.Render())
	}
}

func TestFullBoardWithoutWinner(t *testing.T) {
	// column pattern AABBAAB repeated with the pair order flipped every row
	// never yields four in a row in any direction
	b := NewBoard()
	pattern := []Mark{PlayerA, PlayerA, PlayerB, PlayerB, PlayerA, PlayerA, PlayerB}
	for row := Rows - 1; row >= 0; row-- {
		flip := (Rows-1-row)%2 == 1
		for col := 0; col < Columns; col++ {
			m := pattern[col]
			if flip {
				if m == PlayerA {
					m = PlayerB
				} else {
					m = PlayerA
				}
			}
			if _, err := b.Drop(col, m); err != nil {
				t.Fatalf("drop: %v", err)
			}
		}
	}
	if !b.Full() {
		t.Fatalf("board not full after %d moves", b.Moves())
	}
	if b.HasWinner(PlayerA) || b.HasWinner(PlayerB) {
		t.Errorf("fixture unexpectedly contains a win\n%s", b.Render())
	}
}

func TestReset(t *testing.T) {
	b := NewBoard()
	b.Drop(2, PlayerB)
	b.Reset()
	if b.Moves() != 0 || b.Cell(Rows-1, 2) != Empty {
		t.Errorf("Reset left pieces behind")
	}
}

func TestRender(t *testing.T) {
	b := NewBoard()
	b.Drop(0, PlayerA)
	b.Drop(6, PlayerB)

	want := strings.Join([]string{
		" 0 1 2 3 4 5 6 ",
		"|.|.|.|.|.|.|.|",
		"|.|.|.|.|.|.|.|",
		"|.|.|.|.|.|.|.|",
		"|.|.|.|.|.|.|.|",
		"|.|.|.|.|.|.|.|",
		"|X|.|.|.|.|.|O|",
		"+-+-+-+-+-+-+-+",
	}, "\n")
	if diff := cmp.Diff(want, b.Render()); diff != "" {
		t.Errorf("Render mismatch (-want +got):\n%s", diff)
	}
}
