package board

import (
	"fmt"
	"strings"
)

// DebugChecks runs Validate after every DoMove and UndoMove and panics on the
// first inconsistency. Set it before any position is shared between
// goroutines.
var DebugChecks bool

// Position represents a complete chess position together with the stack of
// states reached from its root. A Position is owned by a single goroutine;
// use Clone to hand a copy to another worker.
type Position struct {
	tables *Tables
	keys   *Keys

	board      [SquareNB]Piece
	byType     [PieceTypeNB]Bitboard // index AllPieces holds every piece
	byColor    [ColorNB]Bitboard
	pieceCount [PieceNB]int

	castlingRightsMask [SquareNB]CastlingRights
	castlingRookSquare [CastlingRightNB]Square
	castlingPath       [CastlingRightNB]Bitboard

	gamePly    int
	rootPly    int
	sideToMove Color

	// states[len-1] is the current state; states[0] is the root set up by
	// SetState.
	states []StateInfo
}

// NewPosition returns an empty position using the process-wide tables. It
// panics if Init has not run.
func NewPosition() *Position {
	return NewPositionWith(AttackTables(), ZobristKeys())
}

// NewPositionWith returns an empty position using the given tables and keys.
func NewPositionWith(t *Tables, k *Keys) *Position {
	if t == nil || k == nil {
		panic("board: NewPositionWith needs tables and keys")
	}
	p := &Position{tables: t, keys: k}
	for i := range p.castlingRookSquare {
		p.castlingRookSquare[i] = NoSquare
	}
	p.states = make([]StateInfo, 1, 64)
	p.states[0].epSquare = NoSquare
	return p
}

// Clone returns an independent copy of the position. Only the immutable
// tables and keys are shared.
func (p *Position) Clone() *Position {
	c := *p
	c.states = append(make([]StateInfo, 0, cap(p.states)), p.states...)
	return &c
}

func (p *Position) st() *StateInfo {
	return &p.states[len(p.states)-1]
}

// Tables returns the attack tables the position was built with.
func (p *Position) Tables() *Tables { return p.tables }

// Keys returns the Zobrist keys the position was built with.
func (p *Position) Keys() *Keys { return p.keys }

// PutPiece places pc on the empty square sq. Keys are not updated; callers
// outside DoMove finish their setup with SetState.
func (p *Position) PutPiece(pc Piece, sq Square) {
	if !pc.IsValid() || !sq.IsValid() || p.board[sq] != NoPiece {
		panic(fmt.Sprintf("board: cannot put %q on %v", pc, sq))
	}
	b := SquareBB(sq)
	p.board[sq] = pc
	p.byType[AllPieces] |= b
	p.byType[pc.Type()] |= b
	p.byColor[pc.Color()] |= b
	p.pieceCount[pc]++
}

// RemovePiece clears the occupied square sq.
func (p *Position) RemovePiece(sq Square) {
	pc := p.board[sq]
	if pc == NoPiece {
		panic(fmt.Sprintf("board: no piece to remove on %v", sq))
	}
	b := SquareBB(sq)
	p.byType[AllPieces] ^= b
	p.byType[pc.Type()] ^= b
	p.byColor[pc.Color()] ^= b
	p.board[sq] = NoPiece
	p.pieceCount[pc]--
}

// MovePiece relocates the piece on from to the empty square to.
func (p *Position) MovePiece(from, to Square) {
	pc := p.board[from]
	if pc == NoPiece || p.board[to] != NoPiece {
		panic(fmt.Sprintf("board: cannot move %v to %v", from, to))
	}
	fromTo := SquareBB(from) | SquareBB(to)
	p.byType[AllPieces] ^= fromTo
	p.byType[pc.Type()] ^= fromTo
	p.byColor[pc.Color()] ^= fromTo
	p.board[from] = NoPiece
	p.board[to] = pc
}

// SetSideToMove sets the side to move.
func (p *Position) SetSideToMove(c Color) {
	p.sideToMove = c
}

// SetCastlingRight grants c the right to castle with the rook on rfrom. The
// king of c must already be on the board.
func (p *Position) SetCastlingRight(c Color, rfrom Square) {
	kfrom := p.KingSquare(c)
	if kfrom == NoSquare || p.board[rfrom] != MakePiece(c, Rook) {
		panic(fmt.Sprintf("board: no castling for %v with rook %v", c, rfrom))
	}

	kingSide := kfrom < rfrom
	side := QueenSide
	if kingSide {
		side = KingSide
	}
	cr := c.Castling(side)

	p.st().castlingRights |= cr
	p.castlingRightsMask[kfrom] |= cr
	p.castlingRightsMask[rfrom] |= cr
	p.castlingRookSquare[cr] = rfrom

	kto, rto := castlingTargets(c, kingSide)
	t := p.tables
	p.castlingPath[cr] = (t.Between(rfrom, rto) | t.Between(kfrom, kto) | SquareBB(rto) | SquareBB(kto)) &^
		(SquareBB(kfrom) | SquareBB(rfrom))
}

// SetEnPassant sets the en passant target square. NoSquare clears it.
func (p *Position) SetEnPassant(sq Square) {
	p.st().epSquare = sq
}

// SetRule50 sets the halfmove clock.
func (p *Position) SetRule50(n int) {
	p.st().rule50 = n
}

// SetGamePly sets the number of plies played before the root.
func (p *Position) SetGamePly(n int) {
	p.gamePly = n
	p.rootPly = n
}

// SetState recomputes every key, material sum and check field from scratch
// and makes the current placement the root of the state stack.
func (p *Position) SetState() {
	if p.KingSquare(White) == NoSquare || p.KingSquare(Black) == NoSquare {
		panic("board: SetState needs both kings on the board")
	}

	top := p.st()
	root := StateInfo{
		castlingRights: top.castlingRights,
		rule50:         top.rule50,
		epSquare:       top.epSquare,
		capturedPiece:  NoPiece,
	}
	p.states = append(p.states[:0], root)
	p.rootPly = p.gamePly

	st := p.st()
	p.computeKeys(st)
	st.checkersBB = p.AttackersTo(p.KingSquare(p.sideToMove), p.Pieces()) & p.byColor[p.sideToMove.Other()]
	p.setCheckInfo(st)
}

// computeKeys fills the hash keys and material sums of st from the board,
// using the side to move and st's castling rights and en passant square.
func (p *Position) computeKeys(st *StateInfo) {
	k := p.keys
	st.key = 0
	st.pawnKey = k.noPawns
	st.materialKey = 0
	st.majorPieceKey = 0
	st.minorPieceKey = 0
	st.nonPawnKey = [ColorNB]uint64{}
	st.nonPawnMaterial = [ColorNB]int{}

	for b := p.Pieces(); b != 0; {
		s := b.PopLSB()
		pc := p.board[s]
		st.key ^= k.psq[pc][s]

		if pc.Type() == Pawn {
			st.pawnKey ^= k.psq[pc][s]
			continue
		}
		st.nonPawnKey[pc.Color()] ^= k.psq[pc][s]
		st.nonPawnMaterial[pc.Color()] += PieceValue[pc.Type()]
		switch pc.Type() {
		case King:
			st.majorPieceKey ^= k.psq[pc][s]
			st.minorPieceKey ^= k.psq[pc][s]
		case Rook, Queen:
			st.majorPieceKey ^= k.psq[pc][s]
		default:
			st.minorPieceKey ^= k.psq[pc][s]
		}
	}

	if st.epSquare != NoSquare {
		st.key ^= k.enPassant[st.epSquare.File()]
	}
	if p.sideToMove == Black {
		st.key ^= k.side
	}
	st.key ^= k.castling[st.castlingRights]

	for _, pc := range AllPieceValues {
		for cnt := 0; cnt < p.pieceCount[pc]; cnt++ {
			st.materialKey ^= k.psq[pc][cnt]
		}
	}
}

// setCheckInfo computes the blockers and pinners of both kings and the
// squares from which each piece type would check the opponent's king.
func (p *Position) setCheckInfo(st *StateInfo) {
	p.updateSliderBlockers(st, White)
	p.updateSliderBlockers(st, Black)

	t := p.tables
	them := p.sideToMove.Other()
	ksq := p.KingSquare(them)
	occ := p.Pieces()

	st.checkSquares[Pawn] = t.PawnAttacks(them, ksq)
	st.checkSquares[Knight] = t.PseudoAttacks(Knight, ksq)
	st.checkSquares[Bishop] = t.Attacks(Bishop, ksq, occ)
	st.checkSquares[Rook] = t.Attacks(Rook, ksq, occ)
	st.checkSquares[Queen] = st.checkSquares[Bishop] | st.checkSquares[Rook]
	st.checkSquares[King] = 0
}

// updateSliderBlockers finds the pieces of either color that alone stand
// between an enemy slider and the king of c. Our own such pieces are pinned
// and the slider is recorded as a pinner.
func (p *Position) updateSliderBlockers(st *StateInfo, c Color) {
	t := p.tables
	them := c.Other()
	ksq := p.KingSquare(c)

	st.blockersForKing[c] = 0
	st.pinners[them] = 0

	snipers := ((t.PseudoAttacks(Rook, ksq) & p.PiecesByType(Queen, Rook)) |
		(t.PseudoAttacks(Bishop, ksq) & p.PiecesByType(Queen, Bishop))) & p.byColor[them]
	occ := p.Pieces() ^ snipers

	for snipers != 0 {
		sniperSq := snipers.PopLSB()
		b := t.Between(ksq, sniperSq) & occ

		if b != 0 && !b.MoreThanOne() {
			st.blockersForKing[c] |= b
			if b&p.byColor[c] != 0 {
				st.pinners[them] |= SquareBB(sniperSq)
			}
		}
	}
}

// castlingTargets returns the king and rook destinations for a castling move.
func castlingTargets(c Color, kingSide bool) (kto, rto Square) {
	if kingSide {
		return G1.RelativeSquare(c), F1.RelativeSquare(c)
	}
	return C1.RelativeSquare(c), D1.RelativeSquare(c)
}

// SideToMove returns the side to move.
func (p *Position) SideToMove() Color { return p.sideToMove }

// PieceOn returns the piece on sq, or NoPiece.
func (p *Position) PieceOn(sq Square) Piece { return p.board[sq] }

// Empty reports whether sq is unoccupied.
func (p *Position) Empty(sq Square) bool { return p.board[sq] == NoPiece }

// MovedPiece returns the piece standing on the origin square of m.
func (p *Position) MovedPiece(m Move) Piece { return p.board[m.From()] }

// Pieces returns every occupied square.
func (p *Position) Pieces() Bitboard { return p.byType[AllPieces] }

// PiecesByType returns the pieces of both colors of any of the given types.
func (p *Position) PiecesByType(pts ...PieceType) Bitboard {
	b := Empty
	for _, pt := range pts {
		b |= p.byType[pt]
	}
	return b
}

// PiecesByColor returns the pieces of color c.
func (p *Position) PiecesByColor(c Color) Bitboard { return p.byColor[c] }

// PiecesOf returns the pieces of color c of any of the given types, or all
// pieces of c when no type is given.
func (p *Position) PiecesOf(c Color, pts ...PieceType) Bitboard {
	if len(pts) == 0 {
		return p.byColor[c]
	}
	return p.byColor[c] & p.PiecesByType(pts...)
}

// KingSquare returns the square of c's king, or NoSquare without one.
func (p *Position) KingSquare(c Color) Square {
	return (p.byType[King] & p.byColor[c]).LSB()
}

// Count returns the number of pieces pc on the board.
func (p *Position) Count(pc Piece) int { return p.pieceCount[pc] }

// Checkers returns the pieces giving check to the side to move.
func (p *Position) Checkers() Bitboard { return p.st().checkersBB }

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool { return p.st().checkersBB != 0 }

// BlockersForKing returns the pieces of both colors shielding c's king from
// an enemy slider.
func (p *Position) BlockersForKing(c Color) Bitboard { return p.st().blockersForKing[c] }

// Pinners returns the sliders of color c pinning a piece to the enemy king.
func (p *Position) Pinners(c Color) Bitboard { return p.st().pinners[c] }

// CheckSquares returns the squares from which a piece of type pt of the side
// to move would give check.
func (p *Position) CheckSquares(pt PieceType) Bitboard { return p.st().checkSquares[pt] }

// AttackersTo returns a bitboard of all pieces attacking a square under the
// given occupancy.
func (p *Position) AttackersTo(sq Square, occupied Bitboard) Bitboard {
	t := p.tables
	return (t.PawnAttacks(Black, sq) & p.PiecesOf(White, Pawn)) |
		(t.PawnAttacks(White, sq) & p.PiecesOf(Black, Pawn)) |
		(t.PseudoAttacks(Knight, sq) & p.byType[Knight]) |
		(t.Attacks(Rook, sq, occupied) & p.PiecesByType(Rook, Queen)) |
		(t.Attacks(Bishop, sq, occupied) & p.PiecesByType(Bishop, Queen)) |
		(t.PseudoAttacks(King, sq) & p.byType[King])
}

// AttackersToColor returns the pieces of color c attacking sq.
func (p *Position) AttackersToColor(sq Square, c Color) Bitboard {
	return p.AttackersTo(sq, p.Pieces()) & p.byColor[c]
}

// Key returns the Zobrist hash of the position.
func (p *Position) Key() uint64 { return p.st().key }

// PawnKey returns the hash of the pawn structure.
func (p *Position) PawnKey() uint64 { return p.st().pawnKey }

// MaterialKey returns the hash of the material configuration.
func (p *Position) MaterialKey() uint64 { return p.st().materialKey }

// MajorPieceKey returns the hash of rooks, queens and kings.
func (p *Position) MajorPieceKey() uint64 { return p.st().majorPieceKey }

// MinorPieceKey returns the hash of knights, bishops and kings.
func (p *Position) MinorPieceKey() uint64 { return p.st().minorPieceKey }

// NonPawnKey returns the hash of c's pieces other than pawns.
func (p *Position) NonPawnKey(c Color) uint64 { return p.st().nonPawnKey[c] }

// NonPawnMaterial returns the material value of c's pieces other than pawns.
func (p *Position) NonPawnMaterial(c Color) int { return p.st().nonPawnMaterial[c] }

// CastlingRights returns the castling rights still available.
func (p *Position) CastlingRights() CastlingRights { return p.st().castlingRights }

// CanCastle reports whether any of cr is still available.
func (p *Position) CanCastle(cr CastlingRights) bool { return p.st().castlingRights&cr != 0 }

// CastlingImpeded reports whether a piece stands on the path of castling cr.
func (p *Position) CastlingImpeded(cr CastlingRights) bool {
	return p.Pieces()&p.castlingPath[cr] != 0
}

// CastlingRookSquare returns the home square of the rook used by castling cr.
func (p *Position) CastlingRookSquare(cr CastlingRights) Square { return p.castlingRookSquare[cr] }

// EPSquare returns the en passant target square, or NoSquare.
func (p *Position) EPSquare() Square { return p.st().epSquare }

// Rule50 returns the halfmove clock.
func (p *Position) Rule50() int { return p.st().rule50 }

// GamePly returns the number of plies since the start of the game.
func (p *Position) GamePly() int { return p.gamePly }

// PliesFromNull returns the plies since the last null move or the root.
func (p *Position) PliesFromNull() int { return p.st().pliesFromNull }

// CapturedPiece returns the piece captured by the last move.
func (p *Position) CapturedPiece() Piece { return p.st().capturedPiece }

// Repetition returns the distance in plies to the previous occurrence of the
// current position, negated if that occurrence was itself a repetition, or 0.
func (p *Position) Repetition() int { return p.st().repetition }

// StateDepth returns the number of moves applied since the root.
func (p *Position) StateDepth() int { return len(p.states) - 1 }

// DoMove applies a pseudo-legal move. The caller must have checked legality.
func (p *Position) DoMove(m Move) {
	if !m.IsOK() {
		panic(fmt.Sprintf("board: DoMove with malformed move %v", m))
	}

	t, k := p.tables, p.keys
	us := p.sideToMove
	them := us.Other()
	from, to := m.From(), m.To()
	pc := p.board[from]
	if pc == NoPiece || pc.Color() != us {
		panic(fmt.Sprintf("board: DoMove %v moves %q with %v to play", m, pc, us))
	}

	key := p.st().key ^ k.side
	p.states = append(p.states, p.st().carry())
	st := p.st()

	p.gamePly++
	st.rule50++
	st.pliesFromNull++

	captured := p.board[to]
	if m.Type() == EnPassant {
		captured = MakePiece(them, Pawn)
	}

	if m.Type() == Castling {
		if pc != MakePiece(us, King) || captured != MakePiece(us, Rook) {
			panic(fmt.Sprintf("board: DoMove castling %v without king and rook", m))
		}
		var rfrom, rto Square
		to, rfrom, rto = p.doCastling(us, from, to, true)

		key ^= k.psq[captured][rfrom] ^ k.psq[captured][rto]
		st.nonPawnKey[us] ^= k.psq[captured][rfrom] ^ k.psq[captured][rto]
		st.majorPieceKey ^= k.psq[captured][rfrom] ^ k.psq[captured][rto]
		captured = NoPiece
	}

	if captured != NoPiece {
		if captured.Type() == King {
			panic(fmt.Sprintf("board: DoMove %v captures a king", m))
		}
		capsq := to
		if captured.Type() == Pawn {
			if m.Type() == EnPassant {
				capsq = to.Add(-PawnPush(us))
				if pc.Type() != Pawn || to != st.epSquare || p.board[capsq] != captured {
					panic(fmt.Sprintf("board: DoMove bad en passant %v", m))
				}
			}
			st.pawnKey ^= k.psq[captured][capsq]
		} else {
			st.nonPawnMaterial[them] -= PieceValue[captured.Type()]
			st.nonPawnKey[them] ^= k.psq[captured][capsq]
			if captured.Type() >= Rook {
				st.majorPieceKey ^= k.psq[captured][capsq]
			} else {
				st.minorPieceKey ^= k.psq[captured][capsq]
			}
		}

		p.RemovePiece(capsq)
		key ^= k.psq[captured][capsq]
		st.materialKey ^= k.psq[captured][p.pieceCount[captured]]
		st.rule50 = 0
	}

	key ^= k.psq[pc][from] ^ k.psq[pc][to]

	if st.epSquare != NoSquare {
		key ^= k.enPassant[st.epSquare.File()]
		st.epSquare = NoSquare
	}

	if st.castlingRights != 0 {
		if cr := st.castlingRights & (p.castlingRightsMask[from] | p.castlingRightsMask[to]); cr != 0 {
			key ^= k.castling[st.castlingRights]
			st.castlingRights &^= cr
			key ^= k.castling[st.castlingRights]
		}
	}

	if m.Type() != Castling {
		p.MovePiece(from, to)
	}

	if pc.Type() == Pawn {
		if int(to)^int(from) == 16 {
			// Only record the en passant square when a capture is possible.
			ep := to.Add(-PawnPush(us))
			if t.PawnAttacks(us, ep)&p.PiecesOf(them, Pawn) != 0 {
				st.epSquare = ep
				key ^= k.enPassant[ep.File()]
			}
		} else if m.Type() == Promotion {
			promo := MakePiece(us, m.PromotionType())
			if promo.Type() == Pawn || promo.Type() == King {
				panic(fmt.Sprintf("board: DoMove bad promotion %v", m))
			}

			p.RemovePiece(to)
			p.PutPiece(promo, to)

			key ^= k.psq[pc][to] ^ k.psq[promo][to]
			st.pawnKey ^= k.psq[pc][to]
			st.materialKey ^= k.psq[promo][p.pieceCount[promo]-1] ^ k.psq[pc][p.pieceCount[pc]]
			st.nonPawnMaterial[us] += PieceValue[promo.Type()]
			st.nonPawnKey[us] ^= k.psq[promo][to]
			if promo.Type() >= Rook {
				st.majorPieceKey ^= k.psq[promo][to]
			} else {
				st.minorPieceKey ^= k.psq[promo][to]
			}
		}

		st.pawnKey ^= k.psq[pc][from] ^ k.psq[pc][to]
		st.rule50 = 0
	} else {
		st.nonPawnKey[us] ^= k.psq[pc][from] ^ k.psq[pc][to]
		switch pc.Type() {
		case King:
			st.majorPieceKey ^= k.psq[pc][from] ^ k.psq[pc][to]
			st.minorPieceKey ^= k.psq[pc][from] ^ k.psq[pc][to]
		case Rook, Queen:
			st.majorPieceKey ^= k.psq[pc][from] ^ k.psq[pc][to]
		default:
			st.minorPieceKey ^= k.psq[pc][from] ^ k.psq[pc][to]
		}
	}

	st.capturedPiece = captured
	st.key = key
	st.checkersBB = p.AttackersTo(p.KingSquare(them), p.Pieces()) & p.byColor[us]

	p.sideToMove = them
	p.setCheckInfo(st)
	p.updateRepetition()

	if DebugChecks {
		p.mustValidate("DoMove", m)
	}
}

// updateRepetition scans back through the reversible plies for an earlier
// occurrence of the current key.
func (p *Position) updateRepetition() {
	top := len(p.states) - 1
	st := &p.states[top]
	st.repetition = 0

	end := min(st.rule50, st.pliesFromNull)
	for i := 4; i <= end && i <= top; i += 2 {
		prev := &p.states[top-i]
		if prev.key == st.key {
			if prev.repetition != 0 {
				st.repetition = -i
			} else {
				st.repetition = i
			}
			return
		}
	}
}

// UndoMove takes back m, which must be the last move applied.
func (p *Position) UndoMove(m Move) {
	if len(p.states) <= 1 {
		panic("board: UndoMove with no move to undo")
	}

	p.sideToMove = p.sideToMove.Other()
	us := p.sideToMove
	from, to := m.From(), m.To()
	st := p.st()

	if m.Type() == Promotion {
		if p.board[to].Type() != m.PromotionType() {
			panic(fmt.Sprintf("board: UndoMove %v does not match the board", m))
		}
		p.RemovePiece(to)
		p.PutPiece(MakePiece(us, Pawn), to)
	}

	if m.Type() == Castling {
		p.doCastling(us, from, to, false)
	} else {
		p.MovePiece(to, from)

		if st.capturedPiece != NoPiece {
			capsq := to
			if m.Type() == EnPassant {
				capsq = to.Add(-PawnPush(us))
			}
			p.PutPiece(st.capturedPiece, capsq)
		}
	}

	p.states = p.states[:len(p.states)-1]
	p.gamePly--

	if DebugChecks {
		p.mustValidate("UndoMove", m)
	}
}

// doCastling relocates king and rook for a castling move from the king
// square from to the rook square to, or reverts it when do is false. It
// returns the king destination and the rook's origin and destination.
func (p *Position) doCastling(us Color, from, to Square, do bool) (kto, rfrom, rto Square) {
	kingSide := to > from
	rfrom = to
	kto, rto = castlingTargets(us, kingSide)

	// Remove both pieces first since the squares can overlap.
	king, rook := MakePiece(us, King), MakePiece(us, Rook)
	if do {
		p.RemovePiece(from)
		p.RemovePiece(rfrom)
		p.PutPiece(king, kto)
		p.PutPiece(rook, rto)
	} else {
		p.RemovePiece(kto)
		p.RemovePiece(rto)
		p.PutPiece(king, from)
		p.PutPiece(rook, rfrom)
	}
	return kto, rfrom, rto
}

// DoNullMove passes the turn. It must not be called while in check.
func (p *Position) DoNullMove() {
	if p.InCheck() {
		panic("board: DoNullMove while in check")
	}

	p.states = append(p.states, *p.st())
	st := p.st()
	k := p.keys

	if st.epSquare != NoSquare {
		st.key ^= k.enPassant[st.epSquare.File()]
		st.epSquare = NoSquare
	}

	st.key ^= k.side
	st.rule50++
	st.pliesFromNull = 0
	st.capturedPiece = NoPiece

	p.gamePly++
	p.sideToMove = p.sideToMove.Other()
	p.setCheckInfo(st)
	st.repetition = 0
}

// UndoNullMove takes back the last DoNullMove.
func (p *Position) UndoNullMove() {
	if len(p.states) <= 1 {
		panic("board: UndoNullMove with no move to undo")
	}
	p.states = p.states[:len(p.states)-1]
	p.gamePly--
	p.sideToMove = p.sideToMove.Other()
}

// Legal reports whether a pseudo-legal move leaves the mover's king safe.
func (p *Position) Legal(m Move) bool {
	t := p.tables
	us := p.sideToMove
	them := us.Other()
	from, to := m.From(), m.To()
	ksq := p.KingSquare(us)

	// En passant can expose the king along the rank of both pawns or a
	// diagonal, so test the slider attacks with both pawns removed.
	if m.Type() == EnPassant {
		capsq := to.Add(-PawnPush(us))
		occ := (p.Pieces() ^ SquareBB(from) ^ SquareBB(capsq)) | SquareBB(to)

		return t.Attacks(Rook, ksq, occ)&p.PiecesOf(them, Queen, Rook) == 0 &&
			t.Attacks(Bishop, ksq, occ)&p.PiecesOf(them, Queen, Bishop) == 0
	}

	if m.Type() == Castling {
		kto, _ := castlingTargets(us, to > from)
		step := East
		if kto > from {
			step = West
		}
		for s := kto; s != from; s = s.Add(step) {
			if p.AttackersTo(s, p.Pieces())&p.byColor[them] != 0 {
				return false
			}
		}
		// The castling rook may itself be shielding the king.
		return !p.st().blockersForKing[us].Has(to)
	}

	if p.board[from].Type() == King {
		return p.AttackersTo(to, p.Pieces()^SquareBB(from))&p.byColor[them] == 0
	}

	return !p.st().blockersForKing[us].Has(from) || t.Aligned(from, to, ksq)
}

// PseudoLegal reports whether m, which may come from an unreliable source
// such as a hash table, could have been generated in this position.
func (p *Position) PseudoLegal(m Move) bool {
	t := p.tables
	us := p.sideToMove
	them := us.Other()
	from, to := m.From(), m.To()
	pc := p.MovedPiece(m)

	if !m.IsOK() {
		return false
	}

	if m.Type() != Normal {
		ml := NewMoveList()
		if p.InCheck() {
			p.Generate(Evasions, ml)
		} else {
			p.Generate(NonEvasions, ml)
		}
		return ml.Contains(m)
	}

	if m.PromotionType() != Knight {
		return false
	}

	if pc == NoPiece || pc.Color() != us {
		return false
	}

	if p.byColor[us].Has(to) {
		return false
	}

	if pc.Type() == Pawn {
		// Moves to the last rank are promotions and were handled above.
		if (Rank1BB | Rank8BB).Has(to) {
			return false
		}
		push := PawnPush(us)
		capture := (t.PawnAttacks(us, from) & p.byColor[them]).Has(to)
		single := from.Add(push) == to && p.Empty(to)
		double := from.Add(2*push) == to && from.RelativeRank(us) == Rank2 &&
			p.Empty(to) && p.Empty(to.Add(-push))
		if !capture && !single && !double {
			return false
		}
	} else if !t.Attacks(pc.Type(), from, p.Pieces()).Has(to) {
		return false
	}

	if checkers := p.Checkers(); checkers != 0 {
		if pc.Type() != King {
			// Double check: only a king move can help.
			if checkers.MoreThanOne() {
				return false
			}
			if !(t.Between(p.KingSquare(us), checkers.LSB()) | checkers).Has(to) {
				return false
			}
		} else if p.AttackersTo(to, p.Pieces()^SquareBB(from))&p.byColor[them] != 0 {
			return false
		}
	}

	return true
}

// GivesCheck reports whether a pseudo-legal move checks the opponent.
func (p *Position) GivesCheck(m Move) bool {
	t := p.tables
	st := p.st()
	us := p.sideToMove
	from, to := m.From(), m.To()
	ksq := p.KingSquare(us.Other())

	if st.checkSquares[p.board[from].Type()].Has(to) {
		return true
	}

	if st.blockersForKing[us.Other()].Has(from) {
		return !t.Aligned(from, to, ksq) || m.Type() == Castling
	}

	switch m.Type() {
	case Normal:
		return false

	case Promotion:
		return t.Attacks(m.PromotionType(), to, p.Pieces()^SquareBB(from)).Has(ksq)

	case EnPassant:
		capsq := NewSquare(to.File(), from.Rank())
		b := (p.Pieces() ^ SquareBB(from) ^ SquareBB(capsq)) | SquareBB(to)

		return t.Attacks(Rook, ksq, b)&p.PiecesOf(us, Queen, Rook) != 0 ||
			t.Attacks(Bishop, ksq, b)&p.PiecesOf(us, Queen, Bishop) != 0

	default:
		_, rto := castlingTargets(us, to > from)
		return st.checkSquares[Rook].Has(rto)
	}
}

// IsDraw reports a draw by the fifty-move rule or by a repetition that
// occurred after the search root, ply plies ago at most.
func (p *Position) IsDraw(ply int) bool {
	st := p.st()
	if st.rule50 > 99 && (!p.InCheck() || p.HasLegalMoves()) {
		return true
	}
	return st.repetition != 0 && st.repetition < ply
}

// HasRepeated reports whether any position since the last irreversible move
// repeats an earlier one.
func (p *Position) HasRepeated() bool {
	idx := len(p.states) - 1
	end := min(p.st().rule50, p.st().pliesFromNull)
	for ; end >= 4 && idx >= 0; end-- {
		if p.states[idx].repetition != 0 {
			return true
		}
		idx--
	}
	return false
}

func (p *Position) mustValidate(op string, m Move) {
	if err := p.Validate(); err != nil {
		panic(fmt.Sprintf("board: %s %v: %v", op, m, err))
	}
}

// Validate audits the position: bitboards against the board array, piece
// counts, kings, en passant and castling data, every incremental key against
// a recomputation, the check fields, and the depth of the state stack.
func (p *Position) Validate() error {
	if p.sideToMove >= ColorNB {
		return fmt.Errorf("invalid side to move %d", p.sideToMove)
	}
	for c := White; c <= Black; c++ {
		if n := p.PiecesOf(c, King).PopCount(); n != 1 {
			return fmt.Errorf("%v has %d kings", c, n)
		}
	}

	if p.byColor[White]&p.byColor[Black] != 0 {
		return fmt.Errorf("color bitboards overlap")
	}
	if p.byColor[White]|p.byColor[Black] != p.Pieces() {
		return fmt.Errorf("color bitboards do not cover the occupancy")
	}
	union := Empty
	for pt := Pawn; pt <= King; pt++ {
		if union&p.byType[pt] != 0 {
			return fmt.Errorf("%v bitboard overlaps another type", pt)
		}
		union |= p.byType[pt]
	}
	if union != p.Pieces() {
		return fmt.Errorf("type bitboards do not cover the occupancy")
	}
	if p.PiecesByType(Pawn)&(Rank1BB|Rank8BB) != 0 {
		return fmt.Errorf("pawn on the first or last rank")
	}

	var counts [PieceNB]int
	for sq := A1; sq <= H8; sq++ {
		pc := p.board[sq]
		if pc == NoPiece {
			if p.Pieces().Has(sq) {
				return fmt.Errorf("%v is occupied but empty on the board", sq)
			}
			continue
		}
		if !p.byType[pc.Type()].Has(sq) || !p.byColor[pc.Color()].Has(sq) {
			return fmt.Errorf("%q on %v missing from the bitboards", pc, sq)
		}
		counts[pc]++
	}
	if counts != p.pieceCount {
		return fmt.Errorf("piece counts out of date")
	}

	st := p.st()
	us, them := p.sideToMove, p.sideToMove.Other()

	if p.AttackersToColor(p.KingSquare(them), us) != 0 {
		return fmt.Errorf("side not to move is in check")
	}
	if want := p.AttackersToColor(p.KingSquare(us), them); st.checkersBB != want {
		return fmt.Errorf("checkers %#x, want %#x", uint64(st.checkersBB), uint64(want))
	}
	if ep := st.epSquare; ep != NoSquare && ep.RelativeRank(us) != Rank6 {
		return fmt.Errorf("en passant square %v on the wrong rank", ep)
	}

	for _, cr := range [4]CastlingRights{WhiteOO, WhiteOOO, BlackOO, BlackOOO} {
		if !p.CanCastle(cr) {
			continue
		}
		c := White
		if cr&BlackCastling != 0 {
			c = Black
		}
		rsq := p.castlingRookSquare[cr]
		if rsq == NoSquare || p.board[rsq] != MakePiece(c, Rook) ||
			p.castlingRightsMask[rsq]&cr != cr || p.castlingRightsMask[p.KingSquare(c)]&cr != cr {
			return fmt.Errorf("castling right %v is inconsistent", cr)
		}
	}

	fresh := StateInfo{castlingRights: st.castlingRights, epSquare: st.epSquare}
	p.computeKeys(&fresh)
	switch {
	case fresh.key != st.key:
		return fmt.Errorf("key %#x, want %#x", st.key, fresh.key)
	case fresh.pawnKey != st.pawnKey:
		return fmt.Errorf("pawn key %#x, want %#x", st.pawnKey, fresh.pawnKey)
	case fresh.materialKey != st.materialKey:
		return fmt.Errorf("material key %#x, want %#x", st.materialKey, fresh.materialKey)
	case fresh.majorPieceKey != st.majorPieceKey:
		return fmt.Errorf("major piece key %#x, want %#x", st.majorPieceKey, fresh.majorPieceKey)
	case fresh.minorPieceKey != st.minorPieceKey:
		return fmt.Errorf("minor piece key %#x, want %#x", st.minorPieceKey, fresh.minorPieceKey)
	case fresh.nonPawnKey != st.nonPawnKey:
		return fmt.Errorf("non-pawn keys %#x, want %#x", st.nonPawnKey, fresh.nonPawnKey)
	case fresh.nonPawnMaterial != st.nonPawnMaterial:
		return fmt.Errorf("non-pawn material %v, want %v", st.nonPawnMaterial, fresh.nonPawnMaterial)
	}

	if depth := len(p.states) - 1; depth != p.gamePly-p.rootPly {
		return fmt.Errorf("state stack depth %d, want %d", depth, p.gamePly-p.rootPly)
	}
	return nil
}

// String returns a diagram of the position with its key and state.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			piece := p.board[NewSquare(file, rank)]
			if piece == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(piece.String() + " ")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.sideToMove)
	fmt.Fprintf(&sb, "Castling: %s\n", p.CastlingRights())
	fmt.Fprintf(&sb, "En passant: %s\n", p.EPSquare())
	fmt.Fprintf(&sb, "Rule 50: %d\n", p.Rule50())
	fmt.Fprintf(&sb, "Game ply: %d\n", p.gamePly)
	fmt.Fprintf(&sb, "Key: %016X\n", p.Key())
	sb.WriteString("Checkers:")
	for _, sq := range p.Checkers().Squares() {
		sb.WriteString(" " + sq.String())
	}
	sb.WriteString("\n")
	return sb.String()
}
