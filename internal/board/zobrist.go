package board

// Zobrist hash keys for position hashing.
// Uses PRNG with fixed seed for reproducibility.

const zobristSeed = 1070372

// Keys holds every Zobrist key. A Keys value is immutable once built and is
// shared by all positions.
type Keys struct {
	psq       [PieceNB][SquareNB]uint64
	enPassant [8]uint64               // One per file
	castling  [CastlingRightNB]uint64 // All 16 castling combinations
	side      uint64                  // XOR when black to move
	noPawns   uint64
}

// xorshift64* generator used for both Zobrist keys and magic candidates.
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	if seed == 0 {
		panic("board: prng seed must be non-zero")
	}
	return &prng{state: seed}
}

func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 2685821657736338717
}

// sparse returns a number with roughly 1/8th of its bits set.
func (p *prng) sparse() uint64 {
	return p.next() & p.next() & p.next()
}

// NewKeys draws a fresh key set from the fixed seed. The draw order is part
// of the hash format: pieces, en passant files, castling rights, side, then
// the no-pawns key.
func NewKeys() *Keys {
	k := &Keys{}
	rng := newPRNG(zobristSeed)

	for pc := range k.psq {
		for sq := range k.psq[pc] {
			k.psq[pc][sq] = rng.next()
		}
	}
	for file := range k.enPassant {
		k.enPassant[file] = rng.next()
	}
	for cr := range k.castling {
		k.castling[cr] = rng.next()
	}
	k.side = rng.next()
	k.noPawns = rng.next()
	return k
}

// Piece returns the key for piece pc on square sq.
func (k *Keys) Piece(pc Piece, sq Square) uint64 {
	return k.psq[pc][sq]
}

// EnPassant returns the key for an en passant square on the given file.
func (k *Keys) EnPassant(file int) uint64 {
	return k.enPassant[file]
}

// Castling returns the key for a set of castling rights.
func (k *Keys) Castling(cr CastlingRights) uint64 {
	return k.castling[cr]
}

// Side returns the key XORed in when Black is to move.
func (k *Keys) Side() uint64 {
	return k.side
}

// NoPawns returns the pawn key of a position without pawns.
func (k *Keys) NoPawns() uint64 {
	return k.noPawns
}
