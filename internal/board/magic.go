package board

// Magic bitboard implementation for sliding piece attacks.
// Magic numbers are searched at startup from fixed seeds, so the tables are
// identical on every run.

// Magic holds the magic bitboard data for a single square.
type Magic struct {
	Mask   Bitboard // Relevant occupancy mask (excludes edges)
	Magic  uint64   // Magic multiplier
	Shift  uint     // Bits to shift right
	Offset int      // Index of the square's first entry in the packed table
}

// Index returns the packed table slot for the given occupancy.
func (m *Magic) Index(occupied Bitboard) int {
	return m.Offset + int((uint64(occupied&m.Mask)*m.Magic)>>m.Shift)
}

const (
	rookTableSize   = 0x19000
	bishopTableSize = 0x1480
)

// Per-rank seeds that find a full set of magics quickly.
var magicSeeds = [8]uint64{728, 10316, 55013, 32803, 12281, 15100, 16645, 255}

var (
	rookDirections   = [4]Direction{North, South, East, West}
	bishopDirections = [4]Direction{NorthEast, SouthEast, SouthWest, NorthWest}
)

// slidingAttack casts rays from sq until the board edge or the first
// occupied square, which is included.
func (t *Tables) slidingAttack(pt PieceType, sq Square, occupied Bitboard) Bitboard {
	dirs := rookDirections
	if pt == Bishop {
		dirs = bishopDirections
	}

	attacks := Empty
	for _, d := range dirs {
		s := sq
		for t.SafeDestination(s, d) != NoSquare {
			s = s.Add(d)
			attacks |= SquareBB(s)
			if occupied.Has(s) {
				break
			}
		}
	}
	return attacks
}

// initMagics fills magics and table for pt (Rook or Bishop).
func (t *Tables) initMagics(pt PieceType, table []Bitboard, magics *[SquareNB]Magic) {
	var (
		occupancy [4096]Bitboard
		reference [4096]Bitboard
		epoch     [4096]int
		cnt       int
		size      int
	)

	for sq := A1; sq <= H8; sq++ {
		// Board edges are not part of the relevant occupancy unless the
		// piece stands on them.
		edges := ((Rank1BB | Rank8BB) &^ RankBB(sq.Rank())) | ((FileABB | FileHBB) &^ FileBB(sq.File()))

		m := &magics[sq]
		m.Mask = t.slidingAttack(pt, sq, Empty) &^ edges
		m.Shift = uint(64 - m.Mask.PopCount())
		if sq == A1 {
			m.Offset = 0
		} else {
			m.Offset = magics[sq-1].Offset + size
		}

		// Carry-rippler over every subset of the mask.
		size = 0
		b := Empty
		for {
			occupancy[size] = b
			reference[size] = t.slidingAttack(pt, sq, b)
			size++
			b = (b - m.Mask) & m.Mask
			if b == 0 {
				break
			}
		}

		rng := newPRNG(magicSeeds[sq.Rank()])

		// Try candidates until every subset maps to a slot holding its own
		// attack set. Slots are stamped with the attempt number so the table
		// never needs clearing between attempts.
		for i := 0; i < size; {
			for m.Magic = 0; Bitboard((m.Magic*uint64(m.Mask))>>56).PopCount() < 6; {
				m.Magic = rng.sparse()
			}

			cnt++
			for i = 0; i < size; i++ {
				idx := m.Index(occupancy[i])
				if epoch[idx-m.Offset] < cnt {
					epoch[idx-m.Offset] = cnt
					table[idx] = reference[i]
				} else if table[idx] != reference[i] {
					break
				}
			}
		}
	}
}
