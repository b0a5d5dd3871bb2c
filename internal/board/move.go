package board

import "fmt"

// Move encodes a chess move in 16 bits:
// bits 0-5:   to square (0-63)
// bits 6-11:  from square (0-63)
// bits 12-13: promotion piece type - Knight (0=Knight, 1=Bishop, 2=Rook, 3=Queen)
// bits 14-15: move type (0=normal, 1=promotion, 2=en passant, 3=castling)
//
// Castling is stored as king origin to castling rook square.
type Move uint16

// MoveType is the two high bits of a Move.
type MoveType uint16

const (
	Normal    MoveType = 0 << 14
	Promotion MoveType = 1 << 14
	EnPassant MoveType = 2 << 14
	Castling  MoveType = 3 << 14
)

const (
	// NoMove is the zero move.
	NoMove Move = 0
	// NullMove passes the turn. It encodes b1b1, which no real move can.
	NullMove Move = 65
)

// MaxMoves bounds the number of moves in any legal chess position.
const MaxMoves = 256

// NewMove creates a normal move.
func NewMove(from, to Square) Move {
	return Move(from)<<6 | Move(to)
}

// NewPromotion creates a promotion move.
func NewPromotion(from, to Square, promo PieceType) Move {
	return Move(Promotion) | Move(promo-Knight)<<12 | Move(from)<<6 | Move(to)
}

// NewEnPassant creates an en passant capture move.
func NewEnPassant(from, to Square) Move {
	return Move(EnPassant) | Move(from)<<6 | Move(to)
}

// NewCastling creates a castling move from the king square to the rook square.
func NewCastling(kingFrom, rookFrom Square) Move {
	return Move(Castling) | Move(kingFrom)<<6 | Move(rookFrom)
}

// From returns the origin square.
func (m Move) From() Square {
	return Square((m >> 6) & 0x3F)
}

// To returns the destination square. For castling this is the rook square.
func (m Move) To() Square {
	return Square(m & 0x3F)
}

// Type returns the move type.
func (m Move) Type() MoveType {
	return MoveType(m) & (3 << 14)
}

// PromotionType returns the promotion piece type. Only meaningful for
// promotions.
func (m Move) PromotionType() PieceType {
	return PieceType((m>>12)&3) + Knight
}

// IsOK reports whether m is neither NoMove nor NullMove.
func (m Move) IsOK() bool {
	return m != NoMove && m != NullMove && m.From() != m.To()
}

// String returns the UCI format of the move (e.g., "e2e4", "e7e8q", "e1g1").
func (m Move) String() string {
	if m == NoMove || m == NullMove {
		return "0000"
	}

	from, to := m.From(), m.To()
	if m.Type() == Castling {
		file := FileC
		if to > from {
			file = FileG
		}
		to = NewSquare(file, from.Rank())
	}

	s := from.String() + to.String()
	if m.Type() == Promotion {
		s += string("nbrq"[m.PromotionType()-Knight])
	}
	return s
}

// ParseMove finds the legal move of pos whose UCI form is s.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 || len(s) > 5 {
		return NoMove, fmt.Errorf("invalid move string: %q", s)
	}
	ml := pos.GenerateLegalMoves()
	for _, m := range ml.Slice() {
		if m.String() == s {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("illegal move: %q", s)
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [MaxMoves]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set sets the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// truncate drops every move from index n on.
func (ml *MoveList) truncate(n int) {
	ml.count = n
}
