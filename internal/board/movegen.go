package board

import "fmt"

// GenType selects which class of moves Generate produces.
type GenType uint8

const (
	// Captures generates captures and queen promotions, plus under-promotions
	// that capture.
	Captures GenType = iota
	// Quiets generates non-captures without queen promotions, plus quiet
	// under-promotions and castling.
	Quiets
	// QuietChecks generates non-capturing moves that give check.
	QuietChecks
	// Evasions generates pseudo-legal replies to a check.
	Evasions
	// NonEvasions generates every pseudo-legal move when not in check.
	NonEvasions
	// Legal generates every legal move.
	Legal
)

func (gt GenType) String() string {
	switch gt {
	case Captures:
		return "captures"
	case Quiets:
		return "quiets"
	case QuietChecks:
		return "quiet checks"
	case Evasions:
		return "evasions"
	case NonEvasions:
		return "non-evasions"
	case Legal:
		return "legal"
	default:
		return fmt.Sprintf("GenType(%d)", uint8(gt))
	}
}

// Generate appends the moves of class gt to ml. Evasions may only be asked
// for in check, and the other pseudo-legal classes only when not in check.
func (p *Position) Generate(gt GenType, ml *MoveList) {
	if gt == Legal {
		p.generateLegal(ml)
		return
	}
	if gt > Legal {
		panic(fmt.Sprintf("board: unknown generation type %d", gt))
	}
	if (gt == Evasions) != p.InCheck() {
		panic(fmt.Sprintf("board: cannot generate %v with checkers %#x", gt, uint64(p.Checkers())))
	}
	p.generateAll(gt, ml)
}

// GenerateLegalMoves returns every legal move in the position.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generateLegal(ml)
	return ml
}

// HasLegalMoves reports whether the side to move has any legal move.
func (p *Position) HasLegalMoves() bool {
	return p.GenerateLegalMoves().Len() > 0
}

// IsCheckmate returns true if the side to move is checkmated.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the side to move is stalemated.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// generateLegal filters the pseudo-legal moves. Only moves of pinned pieces,
// king moves and en passant captures can be illegal here, so the others skip
// the Legal test.
func (p *Position) generateLegal(ml *MoveList) {
	us := p.sideToMove
	pinned := p.st().blockersForKing[us] & p.byColor[us]
	ksq := p.KingSquare(us)

	start := ml.Len()
	if p.InCheck() {
		p.generateAll(Evasions, ml)
	} else {
		p.generateAll(NonEvasions, ml)
	}

	n := start
	for i := start; i < ml.Len(); i++ {
		m := ml.Get(i)
		if (pinned.Has(m.From()) || m.From() == ksq || m.Type() == EnPassant) && !p.Legal(m) {
			continue
		}
		ml.Set(n, m)
		n++
	}
	ml.truncate(n)
}

func (p *Position) generateAll(gt GenType, ml *MoveList) {
	t := p.tables
	us := p.sideToMove
	them := us.Other()
	ksq := p.KingSquare(us)
	checkers := p.Checkers()

	// Only the king can move out of a double check.
	if gt != Evasions || !checkers.MoreThanOne() {
		var target Bitboard
		switch gt {
		case Evasions:
			target = t.Between(ksq, checkers.LSB()) | checkers
		case NonEvasions:
			target = ^p.byColor[us]
		case Captures:
			target = p.byColor[them]
		default:
			target = ^p.Pieces()
		}

		p.generatePawnMoves(gt, target, ml)
		for _, pt := range [4]PieceType{Knight, Bishop, Rook, Queen} {
			p.generatePieceMoves(gt, pt, target, ml)
		}

		if gt == QuietChecks && !p.st().blockersForKing[them].Has(ksq) {
			return
		}
		p.generateKingMoves(gt, target, ml)
		return
	}

	p.generateKingMoves(gt, ^p.byColor[us], ml)
}

func (p *Position) generateKingMoves(gt GenType, target Bitboard, ml *MoveList) {
	t := p.tables
	us := p.sideToMove
	ksq := p.KingSquare(us)

	b := t.PseudoAttacks(King, ksq)
	if gt == Evasions {
		b &^= p.byColor[us]
	} else {
		b &= target
	}
	if gt == QuietChecks {
		// King moves that stay on a line through the enemy king cannot
		// uncover a check.
		b &^= t.PseudoAttacks(Queen, p.KingSquare(us.Other()))
	}
	for b != 0 {
		ml.Add(NewMove(ksq, b.PopLSB()))
	}

	if (gt == Quiets || gt == NonEvasions) && p.CanCastle(us.Castling(AnyCastling)) {
		for _, cr := range [2]CastlingRights{us.Castling(KingSide), us.Castling(QueenSide)} {
			if !p.CastlingImpeded(cr) && p.CanCastle(cr) {
				ml.Add(NewCastling(ksq, p.CastlingRookSquare(cr)))
			}
		}
	}
}

func (p *Position) generatePieceMoves(gt GenType, pt PieceType, target Bitboard, ml *MoveList) {
	t := p.tables
	us := p.sideToMove
	st := p.st()

	for bb := p.PiecesOf(us, pt); bb != 0; {
		from := bb.PopLSB()
		b := t.Attacks(pt, from, p.Pieces()) & target

		// To check, either move a blocker freely or make a direct check.
		if gt == QuietChecks && (pt == Queen || !st.blockersForKing[us.Other()].Has(from)) {
			b &= st.checkSquares[pt]
		}

		for b != 0 {
			ml.Add(NewMove(from, b.PopLSB()))
		}
	}
}

func (p *Position) generatePawnMoves(gt GenType, target Bitboard, ml *MoveList) {
	t := p.tables
	us := p.sideToMove
	them := us.Other()

	rank7, rank3 := Rank7BB, Rank3BB
	up, upRight, upLeft := North, NorthEast, NorthWest
	if us == Black {
		rank7, rank3 = Rank2BB, Rank6BB
		up, upRight, upLeft = South, SouthWest, SouthEast
	}

	emptySquares := ^p.Pieces()
	enemies := p.byColor[them]
	if gt == Evasions {
		enemies = p.Checkers()
	}

	pawns := p.PiecesOf(us, Pawn)
	pawnsOn7 := pawns & rank7
	pawnsNotOn7 := pawns &^ rank7

	// Single and double pawn pushes, no promotions
	if gt != Captures {
		b1 := Shift(pawnsNotOn7, up) & emptySquares
		b2 := Shift(b1&rank3, up) & emptySquares

		if gt == Evasions {
			b1 &= target
			b2 &= target
		}

		if gt == QuietChecks {
			// Push to a checking square, or push a blocker off a line to
			// the enemy king without staying on the king's file.
			ksq := p.KingSquare(them)
			dcCandidatePawns := p.st().blockersForKing[them] &^ FileBB(ksq.File())
			b1 &= t.PawnAttacks(them, ksq) | Shift(dcCandidatePawns, up)
			b2 &= t.PawnAttacks(them, ksq) | Shift(dcCandidatePawns, up+up)
		}

		for b1 != 0 {
			to := b1.PopLSB()
			ml.Add(NewMove(to.Add(-up), to))
		}
		for b2 != 0 {
			to := b2.PopLSB()
			ml.Add(NewMove(to.Add(-up-up), to))
		}
	}

	// Promotions and underpromotions
	if pawnsOn7 != 0 {
		b1 := Shift(pawnsOn7, upRight) & enemies
		b2 := Shift(pawnsOn7, upLeft) & enemies
		b3 := Shift(pawnsOn7, up) & emptySquares

		if gt == Evasions {
			b3 &= target
		}

		for b1 != 0 {
			addPromotions(gt, upRight, true, b1.PopLSB(), ml)
		}
		for b2 != 0 {
			addPromotions(gt, upLeft, true, b2.PopLSB(), ml)
		}
		for b3 != 0 {
			addPromotions(gt, up, false, b3.PopLSB(), ml)
		}
	}

	// Standard and en passant captures
	if gt == Captures || gt == Evasions || gt == NonEvasions {
		b1 := Shift(pawnsNotOn7, upRight) & enemies
		b2 := Shift(pawnsNotOn7, upLeft) & enemies

		for b1 != 0 {
			to := b1.PopLSB()
			ml.Add(NewMove(to.Add(-upRight), to))
		}
		for b2 != 0 {
			to := b2.PopLSB()
			ml.Add(NewMove(to.Add(-upLeft), to))
		}

		if ep := p.EPSquare(); ep != NoSquare {
			// An en passant capture cannot resolve a discovered check.
			if gt == Evasions && target.Has(ep.Add(up)) {
				return
			}
			for b := pawnsNotOn7 & t.PawnAttacks(them, ep); b != 0; {
				ml.Add(NewEnPassant(b.PopLSB(), ep))
			}
		}
	}
}

// addPromotions adds the promotions onto to that belong to class gt. Queen
// promotions count as captures; underpromotions follow the capture or quiet
// class of the move itself.
func addPromotions(gt GenType, d Direction, enemy bool, to Square, ml *MoveList) {
	from := to.Add(-d)
	all := gt == Evasions || gt == NonEvasions

	if gt == Captures || all {
		ml.Add(NewPromotion(from, to, Queen))
	}
	if (gt == Captures && enemy) || (gt == Quiets && !enemy) || all {
		ml.Add(NewPromotion(from, to, Rook))
		ml.Add(NewPromotion(from, to, Bishop))
		ml.Add(NewPromotion(from, to, Knight))
	}
}
