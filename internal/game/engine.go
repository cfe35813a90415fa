// Package game implements the connect-four rules: gravity drops, win and draw detection
package game

import (
	"fmt"
	"strings"
)

// Board is a Rows x Columns grid. Row 0 is the top row; pieces settle toward row Rows-1.
type Board struct {
	cells [Rows][Columns]Mark
	moves int
}

// directions scanned for a run: horizontal, vertical, diagonal down-right, diagonal down-left
var directions = [4][2]int{
	{0, 1},
	{1, 0},
	{1, 1},
	{1, -1},
}

// NewBoard returns an empty board
func NewBoard() *Board {
	return &Board{}
}

// Reset empties every cell
func (b *Board) Reset() {
	*b = Board{}
}

// Cell returns the mark at row, col. Out-of-range coordinates read as Empty.
func (b *Board) Cell(row, col int) Mark {
	if !inBounds(row, col) {
		return Empty
	}
	return b.cells[row][col]
}

// Moves returns the number of pieces on the board
func (b *Board) Moves() int {
	return b.moves
}

// Full reports whether every cell is occupied
func (b *Board) Full() bool {
	return b.moves == Cells
}

// Drop places mark in the lowest empty cell of column and returns the row it landed in.
// A failed drop leaves the board untouched.
func (b *Board) Drop(column int, mark Mark) (int, error) {
	if mark != PlayerA && mark != PlayerB {
		return -1, ErrInvalidMark
	}
	if column < 0 || column >= Columns {
		return -1, fmt.Errorf("%w: %d not in [0,%d)", ErrColumnOutOfRange, column, Columns)
	}
	if b.cells[0][column] != Empty {
		return -1, fmt.Errorf("%w: column %d", ErrColumnFull, column)
	}

	for row := Rows - 1; row >= 0; row-- {
		if b.cells[row][column] == Empty {
			b.cells[row][column] = mark
			b.moves++
			return row, nil
		}
	}
	// unreachable: the top cell was empty
	return -1, ErrColumnFull
}

// HasWinner reports whether mark has ConnectLength contiguous cells in any direction
func (b *Board) HasWinner(mark Mark) bool {
	if mark == Empty {
		return false
	}
	for row := 0; row < Rows; row++ {
		for col := 0; col < Columns; col++ {
			if b.cells[row][col] != mark {
				continue
			}
			for _, d := range directions {
				if b.runFrom(row, col, d[0], d[1], mark) {
					return true
				}
			}
		}
	}
	return false
}

func (b *Board) runFrom(row, col, dr, dc int, mark Mark) bool {
	for i := 0; i < ConnectLength; i++ {
		r, c := row+i*dr, col+i*dc
		if !inBounds(r, c) || b.cells[r][c] != mark {
			return false
		}
	}
	return true
}

func inBounds(row, col int) bool {
	return row >= 0 && row < Rows && col >= 0 && col < Columns
}

// Render draws the board with column indices above it
func (b *Board) Render() string {
	var sb strings.Builder

	sb.WriteString(" ")
	for col := 0; col < Columns; col++ {
		fmt.Fprintf(&sb, "%d ", col)
	}
	sb.WriteString("\n")

	for row := 0; row < Rows; row++ {
		sb.WriteString("|")
		for col := 0; col < Columns; col++ {
			sb.WriteString(b.cells[row][col].Symbol())
			sb.WriteString("|")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("+")
	sb.WriteString(strings.Repeat("-+", Columns))
	return sb.String()
}
