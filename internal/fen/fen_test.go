package fen

import (
	"errors"
	"os"
	"testing"

	"github.com/AbdelrahmanAbdelhalim/RustyRaven/internal/board"
)

func TestMain(m *testing.M) {
	board.Init()
	os.Exit(m.Run())
}

func TestRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
		"rnbqkbnr/pppp1ppp/8/8/3Pp3/8/PPP1PPPP/RNBQKBNR b KQkq d3 0 2",
		"4k3/8/8/8/8/8/8/1R2K1R1 w GB - 0 1",
		"1r2k1r1/8/8/8/8/8/8/4K3 b gb - 12 40",
	}

	for _, f := range fens {
		t.Run(f, func(t *testing.T) {
			pos, err := Parse(f)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got := Format(pos); got != f {
				t.Errorf("Format = %q, want %q", got, f)
			}
		})
	}
}

func TestParseFields(t *testing.T) {
	pos, err := Parse("rnbqkbnr/pppp1ppp/8/8/3Pp3/8/PPP1PPPP/RNBQKBNR b KQkq d3 7 2")
	if err != nil {
		t.Fatal(err)
	}

	if pos.SideToMove() != board.Black {
		t.Error("side to move should be black")
	}
	if pos.EPSquare() != board.D3 {
		t.Errorf("ep square = %v, want d3", pos.EPSquare())
	}
	if pos.Rule50() != 7 {
		t.Errorf("rule50 = %d, want 7", pos.Rule50())
	}
	if pos.GamePly() != 3 {
		t.Errorf("game ply = %d, want 3", pos.GamePly())
	}
	if pos.CastlingRights() != board.AnyCastling {
		t.Errorf("castling = %v, want KQkq", pos.CastlingRights())
	}
	if pos.CastlingRookSquare(board.BlackOOO) != board.A8 {
		t.Errorf("black queen-side rook on %v", pos.CastlingRookSquare(board.BlackOOO))
	}
}

func TestParseOptionalCounters(t *testing.T) {
	pos, err := Parse("4k3/8/8/8/8/8/8/4K3 b - -")
	if err != nil {
		t.Fatal(err)
	}
	if pos.Rule50() != 0 || pos.GamePly() != 1 {
		t.Errorf("rule50 %d ply %d, want 0 and 1", pos.Rule50(), pos.GamePly())
	}
	if got := Format(pos); got != "4k3/8/8/8/8/8/8/4K3 b - - 0 1" {
		t.Errorf("Format = %q", got)
	}
}

func TestEnPassantDroppedWhenNotCapturable(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"no capturing pawn", "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"},
		{"wrong rank", "4k3/8/8/8/8/8/8/4K3 w - e3 0 1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := Parse(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			if pos.EPSquare() != board.NoSquare {
				t.Errorf("ep square = %v, want none", pos.EPSquare())
			}
			without, err := Parse(tc.fen[:len(tc.fen)-len("e3 0 1")] + "- 0 1")
			if err != nil {
				t.Fatal(err)
			}
			if pos.Key() != without.Key() {
				t.Error("a dropped ep square still changed the key")
			}
		})
	}
}

func TestOuterRookForStandardLetters(t *testing.T) {
	// Two rooks on the king side: K names the outer one.
	pos, err := Parse("4k3/8/8/8/8/8/8/4KRR1 w K - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if sq := pos.CastlingRookSquare(board.WhiteOO); sq != board.G1 {
		t.Errorf("K picked rook on %v, want g1", sq)
	}
	if got := Format(pos); got != "4k3/8/8/8/8/8/8/4KRR1 w G - 0 1" {
		t.Errorf("Format = %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"empty", ""},
		{"too few fields", "8/8/8/8/8/8/8/8 w"},
		{"seven ranks", "8/8/8/8/8/8/8 w - - 0 1"},
		{"long rank", "rnbqkbnrr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"short rank", "rnbqkbn/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"bad piece", "rnbqkbnx/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"no white king", "4k3/8/8/8/8/8/8/8 w - - 0 1"},
		{"two black kings", "3kk3/8/8/8/8/8/8/4K3 w - - 0 1"},
		{"pawn on last rank", "P3k3/8/8/8/8/8/8/4K3 w - - 0 1"},
		{"bad side", "4k3/8/8/8/8/8/8/4K3 x - - 0 1"},
		{"bad castling letter", "4k3/8/8/8/8/8/8/R3K3 w Z - 0 1"},
		{"castling without rook", "4k3/8/8/8/8/8/8/4K3 w K - 0 1"},
		{"castling king off back rank", "4k3/8/8/8/8/8/4K3/R7 w Q - 0 1"},
		{"bad ep square", "4k3/8/8/8/8/8/8/4K3 w - z9 0 1"},
		{"bad halfmove", "4k3/8/8/8/8/8/8/4K3 w - - x 1"},
		{"negative halfmove", "4k3/8/8/8/8/8/8/4K3 w - - -1 1"},
		{"bad fullmove", "4k3/8/8/8/8/8/8/4K3 w - - 0 y"},
		{"side not to move in check", "4k3/4R3/8/8/8/8/8/4K3 w - - 0 1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.fen)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, ErrInvalidFEN) {
				t.Errorf("error %v does not wrap ErrInvalidFEN", err)
			}
		})
	}
}

func TestParseWith(t *testing.T) {
	tb, keys := board.NewTables(), board.NewKeys()
	pos, err := ParseWith(StartFEN, tb, keys)
	if err != nil {
		t.Fatal(err)
	}
	if pos.Tables() != tb || pos.Keys() != keys {
		t.Error("ParseWith did not use the given tables")
	}

	std, _ := Parse(StartFEN)
	if pos.Key() != std.Key() {
		t.Error("keys built from the same seed should agree")
	}
}
