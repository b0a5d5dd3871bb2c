// Package fen reads and writes positions in Forsyth-Edwards Notation,
// including the X-FEN castling letters used for non-standard rook squares.
package fen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/AbdelrahmanAbdelhalim/RustyRaven/internal/board"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrInvalidFEN indicates a malformed or impossible FEN string.
var ErrInvalidFEN = errors.New("invalid FEN")

// Parse builds a position from a FEN string using the process-wide tables.
// board.Init must have run.
func Parse(s string) (*board.Position, error) {
	return ParseWith(s, board.AttackTables(), board.ZobristKeys())
}

// ParseWith builds a position from a FEN string using the given tables.
// The halfmove clock and fullmove number are optional.
func ParseWith(s string, t *board.Tables, k *board.Keys) (*board.Position, error) {
	parts := strings.Fields(s)
	if len(parts) < 4 {
		return nil, fmt.Errorf("need at least 4 fields, got %d: %w", len(parts), ErrInvalidFEN)
	}

	pos := board.NewPositionWith(t, k)

	// Parse piece placement (field 0)
	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}

	// Parse side to move (field 1)
	switch parts[1] {
	case "w":
		pos.SetSideToMove(board.White)
	case "b":
		pos.SetSideToMove(board.Black)
	default:
		return nil, fmt.Errorf("invalid side to move: %s: %w", parts[1], ErrInvalidFEN)
	}

	// Parse castling rights (field 2)
	if err := parseCastlingRights(pos, parts[2]); err != nil {
		return nil, err
	}

	// Parse en passant square (field 3)
	if parts[3] != "-" {
		sq, err := board.ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid en passant square: %s: %w", parts[3], ErrInvalidFEN)
		}
		if enPassantPossible(pos, sq) {
			pos.SetEnPassant(sq)
		}
	}

	// Parse half-move clock (field 4, optional)
	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil || hmc < 0 {
			return nil, fmt.Errorf("invalid half-move clock: %s: %w", parts[4], ErrInvalidFEN)
		}
		pos.SetRule50(hmc)
	}

	// Parse full-move number (field 5, optional)
	fullMove := 1
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil {
			return nil, fmt.Errorf("invalid full-move number: %s: %w", parts[5], ErrInvalidFEN)
		}
		fullMove = fmn
	}
	ply := max(2*(fullMove-1), 0)
	if pos.SideToMove() == board.Black {
		ply++
	}
	pos.SetGamePly(ply)

	pos.SetState()
	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidFEN)
	}
	return pos, nil
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(pos *board.Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("need 8 ranks, got %d: %w", len(ranks), ErrInvalidFEN)
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("too many squares in rank %d: %w", rank+1, ErrInvalidFEN)
			}

			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}

			piece := board.PieceFromChar(byte(c))
			if piece == board.NoPiece {
				return fmt.Errorf("invalid piece character: %c: %w", c, ErrInvalidFEN)
			}
			pos.PutPiece(piece, board.NewSquare(file, rank))
			file++
		}

		if file != 8 {
			return fmt.Errorf("invalid number of squares in rank %d: got %d: %w", rank+1, file, ErrInvalidFEN)
		}
	}

	for _, c := range [2]board.Color{board.White, board.Black} {
		if n := pos.PiecesOf(c, board.King).PopCount(); n != 1 {
			return fmt.Errorf("%v has %d kings: %w", c, n, ErrInvalidFEN)
		}
	}
	if pos.PiecesByType(board.Pawn)&(board.Rank1BB|board.Rank8BB) != 0 {
		return fmt.Errorf("pawn on the first or last rank: %w", ErrInvalidFEN)
	}

	return nil
}

// parseCastlingRights parses the castling rights section of a FEN string.
// K and Q pick the outermost rook on that wing; A-H name the rook file.
func parseCastlingRights(pos *board.Position, castling string) error {
	if castling == "-" {
		return nil
	}

	for _, c := range castling {
		color := board.White
		if c >= 'a' && c <= 'z' {
			color = board.Black
		}
		rook := board.MakePiece(color, board.Rook)
		ksq := pos.KingSquare(color)
		backRank := board.A1.RelativeSquare(color).Rank()

		if ksq.Rank() != backRank {
			return fmt.Errorf("castling right %c without a king on the back rank: %w", c, ErrInvalidFEN)
		}

		rsq := board.NoSquare
		switch upper := c &^ 0x20; {
		case upper == 'K':
			for f := board.FileH; f > ksq.File(); f-- {
				if sq := board.NewSquare(f, backRank); pos.PieceOn(sq) == rook {
					rsq = sq
					break
				}
			}
		case upper == 'Q':
			for f := board.FileA; f < ksq.File(); f++ {
				if sq := board.NewSquare(f, backRank); pos.PieceOn(sq) == rook {
					rsq = sq
					break
				}
			}
		case upper >= 'A' && upper <= 'H':
			if sq := board.NewSquare(int(upper-'A'), backRank); pos.PieceOn(sq) == rook && sq != ksq {
				rsq = sq
			}
		default:
			return fmt.Errorf("invalid castling character: %c: %w", c, ErrInvalidFEN)
		}

		if rsq == board.NoSquare {
			return fmt.Errorf("castling right %c without a rook: %w", c, ErrInvalidFEN)
		}
		pos.SetCastlingRight(color, rsq)
	}

	return nil
}

// enPassantPossible reports whether the side to move could capture on ep:
// one of its pawns attacks ep, the enemy pawn that just moved stands in
// front of it, and ep and the square behind it are empty.
func enPassantPossible(pos *board.Position, ep board.Square) bool {
	us := pos.SideToMove()
	them := us.Other()
	t := pos.Tables()

	if ep.RelativeRank(us) != board.Rank6 {
		return false
	}
	behind := ep.Add(board.PawnPush(us))
	return t.PawnAttacks(them, ep)&pos.PiecesOf(us, board.Pawn) != 0 &&
		pos.PiecesOf(them, board.Pawn).Has(ep.Add(board.PawnPush(them))) &&
		pos.Empty(ep) && pos.Empty(behind)
}

// Format returns the FEN representation of the position.
func Format(p *board.Position) string {
	var sb strings.Builder

	// Piece placement
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.PieceOn(board.NewSquare(file, rank))
			if piece == board.NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	// Side to move
	sb.WriteByte(' ')
	if p.SideToMove() == board.White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	// Castling rights
	sb.WriteByte(' ')
	sb.WriteString(formatCastling(p))

	// En passant
	sb.WriteByte(' ')
	sb.WriteString(p.EPSquare().String())

	// Half-move clock and full-move number
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.Rule50()))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(1 + (p.GamePly()-int(p.SideToMove()))/2))

	return sb.String()
}

// formatCastling writes KQkq for rooks on the corner squares and the rook
// file letter otherwise.
func formatCastling(p *board.Position) string {
	if !p.CanCastle(board.AnyCastling) {
		return "-"
	}

	var sb strings.Builder
	for _, cr := range [4]board.CastlingRights{board.WhiteOO, board.WhiteOOO, board.BlackOO, board.BlackOOO} {
		if !p.CanCastle(cr) {
			continue
		}
		var c byte
		switch rsq := p.CastlingRookSquare(cr); {
		case cr&board.KingSide != 0 && rsq.File() == board.FileH:
			c = 'K'
		case cr&board.QueenSide != 0 && rsq.File() == board.FileA:
			c = 'Q'
		default:
			c = byte('A' + rsq.File())
		}
		if cr&board.BlackCastling != 0 {
			c |= 0x20
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
