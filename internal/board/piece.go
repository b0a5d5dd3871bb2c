package board

// Color represents the color of a piece or player.
type Color uint8

const (
	White Color = iota
	Black
	ColorNB = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// PieceType represents the type of a chess piece.
// AllPieces shares the zero value with NoPieceType; it indexes the
// all-pieces bitboard in Position.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
	PieceTypeNB PieceType = 8

	AllPieces PieceType = 0
)

// String returns the piece type name.
func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// IsValid reports whether pt is one of the six real piece types.
func (pt PieceType) IsValid() bool {
	return pt >= Pawn && pt <= King
}

// PieceValue is the middlegame material value of each piece type, used for
// the non-pawn material sums. Kings carry no material.
var PieceValue = [PieceTypeNB]int{0, 208, 781, 825, 1276, 2538, 0, 0}

// Piece combines PieceType and Color into a single value.
// Encoded as: pieceType | color<<3, so White pieces are 1-6 and Black 9-14.
type Piece uint8

const (
	NoPiece     Piece = 0
	WhitePawn   Piece = Piece(Pawn)
	WhiteKnight Piece = Piece(Knight)
	WhiteBishop Piece = Piece(Bishop)
	WhiteRook   Piece = Piece(Rook)
	WhiteQueen  Piece = Piece(Queen)
	WhiteKing   Piece = Piece(King)
	BlackPawn   Piece = Piece(Pawn) | 8
	BlackKnight Piece = Piece(Knight) | 8
	BlackBishop Piece = Piece(Bishop) | 8
	BlackRook   Piece = Piece(Rook) | 8
	BlackQueen  Piece = Piece(Queen) | 8
	BlackKing   Piece = Piece(King) | 8
	PieceNB     Piece = 16
)

// AllPieceValues lists the twelve real pieces in index order.
var AllPieceValues = [12]Piece{
	WhitePawn, WhiteKnight, WhiteBishop, WhiteRook, WhiteQueen, WhiteKing,
	BlackPawn, BlackKnight, BlackBishop, BlackRook, BlackQueen, BlackKing,
}

// MakePiece creates a Piece from Color and PieceType. Invalid input yields
// NoPiece.
func MakePiece(c Color, pt PieceType) Piece {
	if c >= ColorNB || !pt.IsValid() {
		return NoPiece
	}
	return Piece(pt) | Piece(c)<<3
}

// IsValid reports whether p is one of the twelve real pieces.
func (p Piece) IsValid() bool {
	return p < PieceNB && PieceType(p&7).IsValid()
}

// Type returns the PieceType of the piece.
func (p Piece) Type() PieceType {
	return PieceType(p & 7)
}

// Color returns the Color of the piece. Only meaningful for real pieces.
func (p Piece) Color() Color {
	return Color(p >> 3 & 1)
}

// String returns the FEN character for the piece.
// Uppercase for white, lowercase for black.
func (p Piece) String() string {
	if !p.IsValid() {
		return " "
	}
	return string(pieceChars[p])
}

const pieceChars = " PNBRQK  pnbrqk "

// PieceFromChar converts a FEN character to a Piece.
func PieceFromChar(c byte) Piece {
	for i := 0; i < len(pieceChars); i++ {
		if pieceChars[i] == c && c != ' ' {
			return Piece(i)
		}
	}
	return NoPiece
}

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	NoCastling CastlingRights = 0
	WhiteOO    CastlingRights = 1
	WhiteOOO   CastlingRights = 2
	BlackOO    CastlingRights = 4
	BlackOOO   CastlingRights = 8

	KingSide      = WhiteOO | BlackOO
	QueenSide     = WhiteOOO | BlackOOO
	WhiteCastling = WhiteOO | WhiteOOO
	BlackCastling = BlackOO | BlackOOO
	AnyCastling   = WhiteCastling | BlackCastling

	CastlingRightNB = 16
)

// Castling restricts cr to the rights of color c.
func (c Color) Castling(cr CastlingRights) CastlingRights {
	if c == White {
		return cr & WhiteCastling
	}
	return cr & BlackCastling
}

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteOO != 0 {
		s += "K"
	}
	if cr&WhiteOOO != 0 {
		s += "Q"
	}
	if cr&BlackOO != 0 {
		s += "k"
	}
	if cr&BlackOOO != 0 {
		s += "q"
	}
	return s
}
