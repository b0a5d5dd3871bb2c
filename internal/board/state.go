package board

// StateInfo holds the per-ply state that cannot be recovered when a move is
// undone. The first group is carried forward into the next ply by DoMove and
// updated incrementally; the second group is recomputed for every ply.
type StateInfo struct {
	materialKey     uint64
	pawnKey         uint64
	majorPieceKey   uint64
	minorPieceKey   uint64
	nonPawnKey      [ColorNB]uint64
	nonPawnMaterial [ColorNB]int
	castlingRights  CastlingRights
	rule50          int
	pliesFromNull   int
	epSquare        Square

	key             uint64
	checkersBB      Bitboard
	blockersForKing [ColorNB]Bitboard
	pinners         [ColorNB]Bitboard
	checkSquares    [PieceTypeNB]Bitboard
	capturedPiece   Piece
	repetition      int
}

// carry returns a new state with only the carried-forward fields of st.
func (st *StateInfo) carry() StateInfo {
	return StateInfo{
		materialKey:     st.materialKey,
		pawnKey:         st.pawnKey,
		majorPieceKey:   st.majorPieceKey,
		minorPieceKey:   st.minorPieceKey,
		nonPawnKey:      st.nonPawnKey,
		nonPawnMaterial: st.nonPawnMaterial,
		castlingRights:  st.castlingRights,
		rule50:          st.rule50,
		pliesFromNull:   st.pliesFromNull,
		epSquare:        st.epSquare,
	}
}
