package engine

import (
	"testing"

	"github.com/tmijieux/tistouchess/internal/board"
)

func TestTableStoreProbe(t *testing.T) {
	tt := NewTable(1024)

	key := uint64(0xDEADBEEFCAFE)
	move := board.NewMove(board.E2, board.E4)
	tt.Store(key, 5, 42, BoundExact, move)

	entry, ok := tt.Probe(key)
	if !ok {
		t.Fatal("probe missed a stored key")
	}
	if entry.Depth != 5 || entry.Score != 42 || entry.Bound != BoundExact {
		t.Errorf("entry = %+v", entry)
	}
	if entry.From != board.E2 || entry.To != board.E4 || entry.Promo != board.NoPieceType {
		t.Errorf("best move fields = %v %v %v", entry.From, entry.To, entry.Promo)
	}

	if _, ok := tt.Probe(key + 1024); ok {
		t.Error("probe hit on a different key mapping to the same bucket")
	}
	if tt.Conflicts() != 1 {
		t.Errorf("conflicts = %d, want 1", tt.Conflicts())
	}
}

func TestTableDepthPreferredReplacement(t *testing.T) {
	tt := NewTable(64)
	key := uint64(7)

	tt.Store(key, 6, 100, BoundExact, board.NoMove)

	// Shallower results never displace deeper ones, same key or not.
	tt.Store(key, 3, -5, BoundLower, board.NoMove)
	if entry, _ := tt.Probe(key); entry.Depth != 6 || entry.Score != 100 {
		t.Errorf("shallow store displaced deeper entry: %+v", entry)
	}
	other := key + 64 // same bucket
	tt.Store(other, 4, 1, BoundUpper, board.NoMove)
	if entry, _ := tt.Probe(key); entry.Depth != 6 {
		t.Errorf("shallow store of another key displaced deeper entry: %+v", entry)
	}

	// A strictly deeper result replaces.
	tt.Store(other, 9, 7, BoundUpper, board.NoMove)
	entry, ok := tt.Probe(other)
	if !ok || entry.Depth != 9 || entry.Score != 7 {
		t.Errorf("deeper store did not replace: %+v ok=%v", entry, ok)
	}
}

func TestTablePromotionMove(t *testing.T) {
	tt := NewTable(16)
	key := uint64(3)
	tt.Store(key, 2, 0, BoundExact, board.NewPromotion(board.A7, board.A8, board.Queen))
	entry, ok := tt.Probe(key)
	if !ok || entry.Promo != board.Queen {
		t.Errorf("promotion piece lost: %+v ok=%v", entry, ok)
	}
}

func TestTableClear(t *testing.T) {
	tt := NewTable(16)
	tt.Store(5, 2, 1, BoundExact, board.NoMove)
	tt.Clear()
	if _, ok := tt.Probe(5); ok {
		t.Error("probe hit after clear")
	}
}
