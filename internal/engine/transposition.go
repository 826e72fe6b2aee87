package engine

import "github.com/tmijieux/tistouchess/internal/board"

// Bound classifies a stored score relative to the window it was
// searched with.
type Bound uint8

const (
	BoundNone  Bound = iota
	BoundExact       // score raised alpha without a cutoff
	BoundLower       // beta cutoff, score is a lower bound
	BoundUpper       // fail-low, score is an upper bound
)

// DefaultTableSize is the default bucket count of the transposition
// table. Capacity is a constructor parameter, not a constant of the
// design.
const DefaultTableSize = 1_000_000

// TableEntry is one transposition-table bucket. The full 64-bit key is
// kept so a hit is always an exact position match; the best move is
// stored as bare coordinates and rebuilt against the live board.
type TableEntry struct {
	Key    uint64
	Score  int32
	Depth  int16
	Bound  Bound
	From   board.Square
	To     board.Square
	Promo  board.PieceType
}

// Table is a fixed-size direct-mapped transposition table. Buckets are
// addressed by key mod capacity; replacement is depth-preferred: a
// bucket is overwritten only when empty or when the incoming entry was
// searched strictly deeper.
type Table struct {
	entries []TableEntry
	probes  uint64
	hits    uint64
	stale   uint64
}

// NewTable allocates a table with the given bucket count.
func NewTable(capacity int) *Table {
	if capacity <= 0 {
		capacity = DefaultTableSize
	}
	return &Table{entries: make([]TableEntry, capacity)}
}

// Probe looks up key. A stale bucket (occupied by a different key)
// bumps the conflict counter and reads as a miss.
func (t *Table) Probe(key uint64) (TableEntry, bool) {
	t.probes++
	e := t.entries[key%uint64(len(t.entries))]
	if e.Key == key {
		t.hits++
		return e, true
	}
	if e.Key != 0 {
		t.stale++
	}
	return TableEntry{}, false
}

// Store writes an entry for key, subject to the replacement policy.
func (t *Table) Store(key uint64, depth, score int, bound Bound, best board.Move) {
	e := &t.entries[key%uint64(len(t.entries))]
	if e.Key != 0 && depth <= int(e.Depth) {
		return
	}
	e.Key = key
	e.Score = int32(score)
	e.Depth = int16(depth)
	e.Bound = bound
	if best == board.NoMove {
		e.From, e.To, e.Promo = board.NoSquare, board.NoSquare, board.NoPieceType
	} else {
		e.From, e.To = best.From(), best.To()
		if best.IsPromotion() {
			e.Promo = best.Promotion()
		} else {
			e.Promo = board.NoPieceType
		}
	}
}

// Clear empties every bucket and resets the counters.
func (t *Table) Clear() {
	for i := range t.entries {
		t.entries[i] = TableEntry{}
	}
	t.probes, t.hits, t.stale = 0, 0, 0
}

// Capacity returns the bucket count.
func (t *Table) Capacity() int { return len(t.entries) }

// Hits returns the number of successful probes.
func (t *Table) Hits() uint64 { return t.hits }

// Conflicts returns the number of probes that found a different key.
func (t *Table) Conflicts() uint64 { return t.stale }
