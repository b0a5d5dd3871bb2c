// Package board implements the chess board representation using bitboards:
// magic attack tables, Zobrist keys, a make/unmake position state machine and
// a mode-parameterized move generator.
package board

import "fmt"

// Square represents a square on the chess board (0-63).
// Uses Little-Endian Rank-File Mapping: A1=0, H1=7, A8=56, H8=63.
type Square uint8

// Square constants for all 64 squares.
const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	NoSquare Square = 64
)

// SquareNB is the number of real squares.
const SquareNB = 64

// Files and ranks, 0-indexed.
const (
	FileA = iota
	FileB
	FileC
	FileD
	FileE
	FileF
	FileG
	FileH
)

const (
	Rank1 = iota
	Rank2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
)

// SquareFromInt converts an integer to a Square, returning NoSquare when i is
// outside 0-63.
func SquareFromInt(i int) Square {
	if i < 0 || i >= SquareNB {
		return NoSquare
	}
	return Square(i)
}

// NewSquare creates a square from file and rank (0-indexed).
func NewSquare(file, rank int) Square {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare
	}
	return Square(rank*8 + file)
}

// File returns the file (column) of the square (0-7, where 0=a, 7=h).
func (sq Square) File() int {
	return int(sq) & 7
}

// Rank returns the rank (row) of the square (0-7, where 0=1, 7=8).
func (sq Square) Rank() int {
	return int(sq) >> 3
}

// IsValid returns true if the square is a valid board square (0-63).
func (sq Square) IsValid() bool {
	return sq < NoSquare
}

// Add steps the square in direction d. The result is NoSquare when it falls
// off the 0-63 range; wrapping across the a/h files is not detected here, use
// Tables.SafeDestination for that.
func (sq Square) Add(d Direction) Square {
	return SquareFromInt(int(sq) + int(d))
}

// RelativeSquare flips the square vertically for Black.
func (sq Square) RelativeSquare(c Color) Square {
	return sq ^ Square(56*int(c))
}

// RelativeRank returns the rank from a given color's perspective.
// For White, rank 0 is the 1st rank; for Black, rank 0 is the 8th rank.
func (sq Square) RelativeRank(c Color) int {
	return sq.Rank() ^ (int(c) * 7)
}

// String returns the algebraic notation for the square (e.g., "e4").
func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+sq.File(), '1'+sq.Rank())
}

// ParseSquare parses algebraic notation (e.g., "e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}

	file := int(s[0]) - 'a'
	rank := int(s[1]) - '1'

	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}

	return NewSquare(file, rank), nil
}

// Direction is a square offset for one step on the board.
type Direction int8

const (
	North     Direction = 8
	East      Direction = 1
	South     Direction = -North
	West      Direction = -East
	NorthEast Direction = North + East
	NorthWest Direction = North + West
	SouthEast Direction = South + East
	SouthWest Direction = South + West
)

// PawnPush returns the forward direction for pawns of color c.
func PawnPush(c Color) Direction {
	if c == White {
		return North
	}
	return South
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// FileDistance returns the number of files between two squares.
func FileDistance(a, b Square) int {
	return absInt(a.File() - b.File())
}

// RankDistance returns the number of ranks between two squares.
func RankDistance(a, b Square) int {
	return absInt(a.Rank() - b.Rank())
}
