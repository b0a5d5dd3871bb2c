package board

import "fmt"

// Tables holds every precomputed attack and geometry table. A Tables value is
// immutable once NewTables returns and may be shared by any number of
// goroutines.
type Tables struct {
	squareDistance [SquareNB][SquareNB]uint8
	pseudoAttacks  [PieceTypeNB][SquareNB]Bitboard // Empty-board attacks
	pawnAttacks    [ColorNB][SquareNB]Bitboard     // [Color][Square]

	// Between and Line bitboards for pins/checks
	betweenBB [SquareNB][SquareNB]Bitboard // Squares strictly between two squares
	lineBB    [SquareNB][SquareNB]Bitboard // Full line through two squares (including endpoints)

	rookMagics   [SquareNB]Magic
	bishopMagics [SquareNB]Magic
	rookTable    []Bitboard
	bishopTable  []Bitboard
}

var (
	kingSteps   = [8]Direction{-9, -8, -7, -1, 1, 7, 8, 9}
	knightSteps = [8]Direction{-17, -15, -10, -6, 6, 10, 15, 17}
)

// NewTables builds the attack tables. Construction is deterministic.
func NewTables() *Tables {
	t := &Tables{
		rookTable:   make([]Bitboard, rookTableSize),
		bishopTable: make([]Bitboard, bishopTableSize),
	}

	for s1 := A1; s1 <= H8; s1++ {
		for s2 := A1; s2 <= H8; s2++ {
			t.squareDistance[s1][s2] = uint8(max(FileDistance(s1, s2), RankDistance(s1, s2)))
		}
	}

	t.initMagics(Rook, t.rookTable, &t.rookMagics)
	t.initMagics(Bishop, t.bishopTable, &t.bishopMagics)

	for s1 := A1; s1 <= H8; s1++ {
		t.pawnAttacks[White][s1] = PawnAttacksBB(White, SquareBB(s1))
		t.pawnAttacks[Black][s1] = PawnAttacksBB(Black, SquareBB(s1))

		for _, step := range kingSteps {
			t.pseudoAttacks[King][s1] |= SquareBB(t.SafeDestination(s1, step))
		}
		for _, step := range knightSteps {
			t.pseudoAttacks[Knight][s1] |= SquareBB(t.SafeDestination(s1, step))
		}

		t.pseudoAttacks[Bishop][s1] = t.Attacks(Bishop, s1, Empty)
		t.pseudoAttacks[Rook][s1] = t.Attacks(Rook, s1, Empty)
		t.pseudoAttacks[Queen][s1] = t.pseudoAttacks[Bishop][s1] | t.pseudoAttacks[Rook][s1]

		for _, pt := range [2]PieceType{Bishop, Rook} {
			for s2 := A1; s2 <= H8; s2++ {
				if !t.pseudoAttacks[pt][s1].Has(s2) {
					continue
				}
				t.lineBB[s1][s2] = (t.Attacks(pt, s1, Empty) & t.Attacks(pt, s2, Empty)) | SquareBB(s1) | SquareBB(s2)
				t.betweenBB[s1][s2] = t.Attacks(pt, s1, SquareBB(s2)) & t.Attacks(pt, s2, SquareBB(s1))
			}
		}
	}

	return t
}

// Distance returns the Chebyshev distance between two squares.
func (t *Tables) Distance(s1, s2 Square) int {
	return int(t.squareDistance[s1][s2])
}

// SafeDestination returns sq stepped by d, or NoSquare when the step leaves
// the board or wraps around a file edge.
func (t *Tables) SafeDestination(sq Square, d Direction) Square {
	to := sq.Add(d)
	if to == NoSquare || t.Distance(sq, to) > 2 {
		return NoSquare
	}
	return to
}

// PseudoAttacks returns the empty-board attacks of pt from sq.
func (t *Tables) PseudoAttacks(pt PieceType, sq Square) Bitboard {
	return t.pseudoAttacks[pt][sq]
}

// PawnAttacks returns the pawn attack bitboard for a square and color.
func (t *Tables) PawnAttacks(c Color, sq Square) Bitboard {
	return t.pawnAttacks[c][sq]
}

// Attacks returns the attacks of a pt on sq given the occupancy. Pawns need a
// color and are rejected; use PawnAttacks.
func (t *Tables) Attacks(pt PieceType, sq Square, occupied Bitboard) Bitboard {
	switch pt {
	case Bishop:
		return t.bishopTable[t.bishopMagics[sq].Index(occupied)]
	case Rook:
		return t.rookTable[t.rookMagics[sq].Index(occupied)]
	case Queen:
		return t.Attacks(Bishop, sq, occupied) | t.Attacks(Rook, sq, occupied)
	case Knight, King:
		return t.pseudoAttacks[pt][sq]
	}
	panic(fmt.Sprintf("board: no attack table for piece type %v", pt))
}

// Between returns the bitboard of squares strictly between two squares.
// Returns empty if squares are not aligned (not on same rank, file, or diagonal).
func (t *Tables) Between(s1, s2 Square) Bitboard {
	return t.betweenBB[s1][s2]
}

// Line returns the bitboard of the full line through two squares.
// Returns empty if squares are not aligned.
func (t *Tables) Line(s1, s2 Square) Bitboard {
	return t.lineBB[s1][s2]
}

// Aligned returns true if three squares are on the same line.
func (t *Tables) Aligned(s1, s2, s3 Square) bool {
	return t.lineBB[s1][s2].Has(s3)
}
