package board_test

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/AbdelrahmanAbdelhalim/RustyRaven/internal/board"
	"github.com/AbdelrahmanAbdelhalim/RustyRaven/internal/fen"
)

// snapshot holds everything DoMove and UndoMove are expected to restore.
type snapshot struct {
	FEN             string
	Key             uint64
	PawnKey         uint64
	MaterialKey     uint64
	MajorKey        uint64
	MinorKey        uint64
	NonPawnKey      [2]uint64
	NonPawnMaterial [2]int
	Checkers        board.Bitboard
	Blockers        [2]board.Bitboard
	Pinners         [2]board.Bitboard
	Castling        board.CastlingRights
	EP              board.Square
	Rule50          int
	GamePly         int
	PliesFromNull   int
	Repetition      int
	Captured        board.Piece
	Depth           int
}

func takeSnapshot(p *board.Position) snapshot {
	return snapshot{
		FEN:             fen.Format(p),
		Key:             p.Key(),
		PawnKey:         p.PawnKey(),
		MaterialKey:     p.MaterialKey(),
		MajorKey:        p.MajorPieceKey(),
		MinorKey:        p.MinorPieceKey(),
		NonPawnKey:      [2]uint64{p.NonPawnKey(board.White), p.NonPawnKey(board.Black)},
		NonPawnMaterial: [2]int{p.NonPawnMaterial(board.White), p.NonPawnMaterial(board.Black)},
		Checkers:        p.Checkers(),
		Blockers:        [2]board.Bitboard{p.BlockersForKing(board.White), p.BlockersForKing(board.Black)},
		Pinners:         [2]board.Bitboard{p.Pinners(board.White), p.Pinners(board.Black)},
		Castling:        p.CastlingRights(),
		EP:              p.EPSquare(),
		Rule50:          p.Rule50(),
		GamePly:         p.GamePly(),
		PliesFromNull:   p.PliesFromNull(),
		Repetition:      p.Repetition(),
		Captured:        p.CapturedPiece(),
		Depth:           p.StateDepth(),
	}
}

// walk plays every legal move to the given depth and checks the position
// after each DoMove and UndoMove.
func walk(t *testing.T, pos *board.Position, depth int) {
	t.Helper()
	if depth == 0 {
		return
	}

	for _, m := range pos.GenerateLegalMoves().Slice() {
		before := takeSnapshot(pos)
		check := pos.GivesCheck(m)

		pos.DoMove(m)
		if err := pos.Validate(); err != nil {
			t.Fatalf("after %v: %v\n%v", m, err, pos)
		}
		if pos.InCheck() != check {
			t.Fatalf("GivesCheck(%v) = %v, but InCheck() = %v after the move\n%v", m, check, pos.InCheck(), pos)
		}
		if pos.StateDepth() != before.Depth+1 || pos.GamePly() != before.GamePly+1 {
			t.Fatalf("after %v: depth %d ply %d", m, pos.StateDepth(), pos.GamePly())
		}

		// The incremental key must agree with a fresh parse.
		s := fen.Format(pos)
		fresh, err := fen.Parse(s)
		if err != nil {
			t.Fatalf("after %v: re-parse %q: %v", m, s, err)
		}
		if fresh.Key() != pos.Key() || fresh.MaterialKey() != pos.MaterialKey() || fresh.PawnKey() != pos.PawnKey() {
			t.Fatalf("after %v: keys differ from a fresh parse of %q", m, s)
		}

		walk(t, pos, depth-1)

		pos.UndoMove(m)
		if diff := cmp.Diff(before, takeSnapshot(pos)); diff != "" {
			t.Fatalf("UndoMove(%v) mismatch (-want +got):\n%s", m, diff)
		}
	}
}

func TestDoUndoRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		depth int
	}{
		{"start", fen.StartFEN, 3},
		{"kiwipete", kiwipete, 2},
		{"position3", position3, 3},
		{"position4", position4, 2},
		{"position5", position5, 2},
		{"ep pin", epPin, 3},
		{"x-fen", "4k3/8/8/8/8/8/8/1R2K1R1 w GB - 0 1", 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			depth := tc.depth
			if testing.Short() {
				depth = 1
			}
			walk(t, mustParse(t, tc.fen), depth)
		})
	}
}

func TestDebugChecks(t *testing.T) {
	board.DebugChecks = true
	defer func() { board.DebugChecks = false }()

	pos := mustParse(t, kiwipete)
	for _, m := range pos.GenerateLegalMoves().Slice() {
		pos.DoMove(m)
		pos.UndoMove(m)
	}
}

func TestClone(t *testing.T) {
	pos := mustParse(t, fen.StartFEN)
	want := takeSnapshot(pos)

	c := pos.Clone()
	c.DoMove(board.NewMove(board.E2, board.E4))

	if diff := cmp.Diff(want, takeSnapshot(pos)); diff != "" {
		t.Errorf("move on clone changed the original (-want +got):\n%s", diff)
	}
	if c.PieceOn(board.E4) != board.WhitePawn || c.StateDepth() != 1 {
		t.Errorf("clone did not play e2e4:%v", c)
	}
}

func TestPseudoLegalAndLegal(t *testing.T) {
	fens := []string{
		fen.StartFEN,
		kiwipete,
		position4,
		position5,
		epPin,
		"4k3/8/8/3B4/8/5n2/8/r3K3 w - - 0 1",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
	}

	for _, f := range fens {
		t.Run(f, func(t *testing.T) {
			pos := mustParse(t, f)
			legal := pos.GenerateLegalMoves()

			for i := 0; i < 1<<16; i++ {
				m := board.Move(i)
				got := pos.PseudoLegal(m) && pos.Legal(m)
				if want := legal.Contains(m); got != want {
					t.Errorf("move %v (%#04x): PseudoLegal && Legal = %v, in legal list = %v", m, i, got, want)
				}
			}
		})
	}
}

func TestDoubleCheckAllowsOnlyKingMoves(t *testing.T) {
	pos := mustParse(t, "4k3/8/8/3B4/8/5n2/8/r3K3 w - - 0 1")

	if n := pos.Checkers().PopCount(); n != 2 {
		t.Fatalf("got %d checkers, want 2", n)
	}

	capture := board.NewMove(board.D5, board.F3)
	if pos.PseudoLegal(capture) {
		t.Error("capturing one of two checkers should be rejected")
	}

	ml := pos.GenerateLegalMoves()
	if ml.Len() == 0 {
		t.Fatal("king should have escapes")
	}
	for _, m := range ml.Slice() {
		if m.From() != board.E1 {
			t.Errorf("non-king move %v in double check", m)
		}
	}
}

func TestEnPassantDiscoveredCheck(t *testing.T) {
	pos := mustParse(t, epPin)

	if pos.EPSquare() != board.D3 {
		t.Fatalf("ep square = %v, want d3", pos.EPSquare())
	}
	m := board.NewEnPassant(board.E4, board.D3)
	if !pos.PseudoLegal(m) {
		t.Error("e4d3 should be pseudo-legal")
	}
	if pos.Legal(m) {
		t.Error("e4d3 exposes the king on the fourth rank")
	}
	if pos.GenerateLegalMoves().Contains(m) {
		t.Error("e4d3 in the legal move list")
	}
}

func TestGivesCheckDiscovered(t *testing.T) {
	// Moving the bishop off the e-file uncovers the rook.
	pos := mustParse(t, "4k3/8/8/8/4B3/8/8/4RK2 w - - 0 1")

	tests := []struct {
		m    board.Move
		want bool
	}{
		{board.NewMove(board.E4, board.D5), true},
		{board.NewMove(board.E4, board.C6), true},
		{board.NewMove(board.F1, board.G1), false},
		{board.NewMove(board.E1, board.E2), false},
	}
	for _, tc := range tests {
		if got := pos.GivesCheck(tc.m); got != tc.want {
			t.Errorf("GivesCheck(%v) = %v, want %v", tc.m, got, tc.want)
		}
	}
}

func TestRepetition(t *testing.T) {
	pos := mustParse(t, fen.StartFEN)
	cycle := []board.Move{
		board.NewMove(board.G1, board.F3),
		board.NewMove(board.G8, board.F6),
		board.NewMove(board.F3, board.G1),
		board.NewMove(board.F6, board.G8),
	}

	for i, m := range cycle {
		if pos.HasRepeated() {
			t.Fatalf("HasRepeated before ply %d", i)
		}
		pos.DoMove(m)
	}
	if r := pos.Repetition(); r != 4 {
		t.Fatalf("Repetition() = %d, want 4", r)
	}
	if !pos.HasRepeated() {
		t.Error("HasRepeated() = false after one cycle")
	}
	if pos.IsDraw(4) {
		t.Error("a repetition at the root distance is not a draw yet")
	}
	if !pos.IsDraw(5) {
		t.Error("IsDraw(5) = false after one cycle")
	}

	for _, m := range cycle {
		pos.DoMove(m)
	}
	if r := pos.Repetition(); r != -4 {
		t.Fatalf("Repetition() = %d after two cycles, want -4", r)
	}
	if !pos.IsDraw(0) {
		t.Error("threefold repetition should be a draw at any ply")
	}

	// A pawn move resets the window.
	pos.DoMove(board.NewMove(board.E2, board.E4))
	if pos.Repetition() != 0 || pos.HasRepeated() {
		t.Error("repetition survived an irreversible move")
	}
}

func TestNullMove(t *testing.T) {
	pos := mustParse(t, kiwipete)
	before := takeSnapshot(pos)

	pos.DoNullMove()
	if pos.Key() != before.Key^pos.Keys().Side() {
		t.Error("null move should only flip the side key")
	}
	if pos.SideToMove() != board.Black || pos.PliesFromNull() != 0 || pos.Rule50() != before.Rule50+1 {
		t.Errorf("null move state: side %v plies %d rule50 %d", pos.SideToMove(), pos.PliesFromNull(), pos.Rule50())
	}
	if err := pos.Validate(); err != nil {
		t.Fatal(err)
	}

	pos.UndoNullMove()
	if diff := cmp.Diff(before, takeSnapshot(pos)); diff != "" {
		t.Errorf("UndoNullMove mismatch (-want +got):\n%s", diff)
	}
}

func TestNullMoveClearsEnPassant(t *testing.T) {
	pos := mustParse(t, "rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3")
	key := pos.Key()

	pos.DoNullMove()
	if pos.EPSquare() != board.NoSquare {
		t.Error("null move kept the en passant square")
	}
	if want := key ^ pos.Keys().Side() ^ pos.Keys().EnPassant(board.FileF); pos.Key() != want {
		t.Error("null move key mismatch")
	}
}

func TestNullMoveInCheckPanics(t *testing.T) {
	pos := mustParse(t, "R6k/6pp/8/8/8/8/8/K7 b - - 0 1")

	defer func() {
		if recover() == nil {
			t.Error("DoNullMove in check should panic")
		}
	}()
	pos.DoNullMove()
}

func TestFiftyMoveRule(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want bool
	}{
		{"clock at 100", "4k3/8/8/8/8/8/8/R3K3 w - - 100 80", true},
		{"clock at 99", "4k3/8/8/8/8/8/8/R3K3 w - - 99 80", false},
		{"mate beats the clock", "R6k/6pp/8/8/8/8/8/K7 b - - 100 80", false},
		{"check with escapes", "6Rk/8/8/8/8/8/8/K7 b - - 100 80", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := mustParse(t, tc.fen).IsDraw(0); got != tc.want {
				t.Errorf("IsDraw(0) = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestGameEnd(t *testing.T) {
	tests := []struct {
		name      string
		fen       string
		checkmate bool
		stalemate bool
	}{
		{"back rank mate", "R6k/6pp/8/8/8/8/8/K7 b - - 0 1", true, false},
		{"check with capture", "6Rk/8/8/8/8/8/8/K7 b - - 0 1", false, false},
		{"stalemate", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", false, true},
		{"start", fen.StartFEN, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustParse(t, tc.fen)
			if got := pos.IsCheckmate(); got != tc.checkmate {
				t.Errorf("IsCheckmate() = %v, want %v", got, tc.checkmate)
			}
			if got := pos.IsStalemate(); got != tc.stalemate {
				t.Errorf("IsStalemate() = %v, want %v", got, tc.stalemate)
			}
		})
	}
}

func sortedMoves(ms []board.Move) []board.Move {
	out := append([]board.Move(nil), ms...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestGenerateClassesPartition(t *testing.T) {
	for _, f := range []string{fen.StartFEN, kiwipete, position3, position4, position5, "rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3"} {
		t.Run(f, func(t *testing.T) {
			pos := mustParse(t, f)
			if pos.InCheck() {
				t.Skip("position is in check")
			}

			all, captures, quiets, checks := board.NewMoveList(), board.NewMoveList(), board.NewMoveList(), board.NewMoveList()
			pos.Generate(board.NonEvasions, all)
			pos.Generate(board.Captures, captures)
			pos.Generate(board.Quiets, quiets)
			pos.Generate(board.QuietChecks, checks)

			union := append(append([]board.Move(nil), captures.Slice()...), quiets.Slice()...)
			if diff := cmp.Diff(sortedMoves(all.Slice()), sortedMoves(union)); diff != "" {
				t.Errorf("captures + quiets != non-evasions (-want +got):\n%s", diff)
			}

			for _, m := range checks.Slice() {
				if !quiets.Contains(m) {
					t.Errorf("quiet check %v missing from quiets", m)
				}
				if !pos.GivesCheck(m) {
					t.Errorf("quiet check %v does not give check", m)
				}
			}
		})
	}
}

func TestGenerateEvasions(t *testing.T) {
	// The bishop on b4 checks along c3 and d2.
	pos := mustParse(t, "4k3/8/8/8/1b6/8/2P1P3/4K3 w - - 0 1")
	if !pos.InCheck() {
		t.Fatal("white should be in check")
	}

	ml := board.NewMoveList()
	pos.Generate(board.Evasions, ml)
	if ml.Contains(board.NewMove(board.E2, board.E3)) {
		t.Error("evasions contain e2e3, which does not address the check")
	}
	if !ml.Contains(board.NewMove(board.E1, board.F1)) {
		t.Error("king step missing from evasions")
	}

	var blocks []board.Move
	for _, m := range ml.Slice() {
		if m.From() != board.E1 {
			blocks = append(blocks, m)
		}
	}
	if diff := cmp.Diff([]board.Move{board.NewMove(board.C2, board.C3)}, blocks); diff != "" {
		t.Errorf("non-king evasions (-want +got):\n%s", diff)
	}
}

func TestGenerateWrongClassPanics(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		gt   board.GenType
	}{
		{"evasions without check", fen.StartFEN, board.Evasions},
		{"quiets in check", "R6k/6pp/8/8/8/8/8/K7 b - - 0 1", board.Quiets},
		{"unknown class", fen.StartFEN, board.GenType(42)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustParse(t, tc.fen)
			defer func() {
				if recover() == nil {
					t.Errorf("Generate(%v) should panic", tc.gt)
				}
			}()
			pos.Generate(tc.gt, board.NewMoveList())
		})
	}
}

func TestParseMove(t *testing.T) {
	pos := mustParse(t, position4)

	tests := []struct {
		s    string
		want board.Move
	}{
		{"g1h1", board.NewMove(board.G1, board.H1)},
		{"c4c5", board.NewMove(board.C4, board.C5)},
	}
	for _, tc := range tests {
		got, err := board.ParseMove(tc.s, pos)
		if err != nil || got != tc.want {
			t.Errorf("ParseMove(%q) = %v, %v; want %v", tc.s, got, err, tc.want)
		}
	}

	promo := mustParse(t, "8/1P2k3/8/8/8/8/8/4K3 w - - 0 1")
	if m, err := board.ParseMove("b7b8n", promo); err != nil || m != board.NewPromotion(board.B7, board.B8, board.Knight) {
		t.Errorf("ParseMove(b7b8n) = %v, %v", m, err)
	}

	castle := mustParse(t, kiwipete)
	if m, err := board.ParseMove("e1g1", castle); err != nil || m != board.NewCastling(board.E1, board.H1) {
		t.Errorf("ParseMove(e1g1) = %v, %v", m, err)
	}

	for _, s := range []string{"e2e5", "e2", "a1a1a1"} {
		if _, err := board.ParseMove(s, castle); err == nil {
			t.Errorf("ParseMove(%q) should fail", s)
		}
	}
}

func TestDoMovePanicsOnWrongSide(t *testing.T) {
	pos := mustParse(t, fen.StartFEN)

	defer func() {
		if recover() == nil {
			t.Error("DoMove with a black piece on white's turn should panic")
		}
	}()
	pos.DoMove(board.NewMove(board.E7, board.E5))
}

func TestUndoMoveOnEmptyStackPanics(t *testing.T) {
	pos := mustParse(t, fen.StartFEN)

	defer func() {
		if recover() == nil {
			t.Error("UndoMove at the root should panic")
		}
	}()
	pos.UndoMove(board.NewMove(board.E2, board.E4))
}

func BenchmarkGenerateLegalMoves(b *testing.B) {
	pos := mustParse(b, kiwipete)
	ml := board.NewMoveList()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ml.Clear()
		pos.Generate(board.Legal, ml)
	}
}

func BenchmarkDoUndoMove(b *testing.B) {
	pos := mustParse(b, kiwipete)
	moves := pos.GenerateLegalMoves().Slice()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m := moves[i%len(moves)]
		pos.DoMove(m)
		pos.UndoMove(m)
	}
}
