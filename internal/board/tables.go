package board

import (
	"sync"
	"sync/atomic"
)

var (
	tablesOnce sync.Once
	keysOnce   sync.Once

	publishedTables atomic.Pointer[Tables]
	publishedKeys   atomic.Pointer[Keys]
)

// InitBitboards builds the process-wide attack tables. Safe to call more
// than once and from several goroutines.
func InitBitboards() {
	tablesOnce.Do(func() {
		publishedTables.Store(NewTables())
	})
}

// InitZobrist builds the process-wide Zobrist keys.
func InitZobrist() {
	keysOnce.Do(func() {
		publishedKeys.Store(NewKeys())
	})
}

// Init runs InitBitboards and InitZobrist.
func Init() {
	InitBitboards()
	InitZobrist()
}

// AttackTables returns the tables published by InitBitboards. It panics if
// they have not been built.
func AttackTables() *Tables {
	t := publishedTables.Load()
	if t == nil {
		panic("board: attack tables used before InitBitboards")
	}
	return t
}

// ZobristKeys returns the keys published by InitZobrist. It panics if they
// have not been built.
func ZobristKeys() *Keys {
	k := publishedKeys.Load()
	if k == nil {
		panic("board: zobrist keys used before InitZobrist")
	}
	return k
}
