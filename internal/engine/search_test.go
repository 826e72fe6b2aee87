package engine

import (
	"testing"
	"time"

	"github.com/tmijieux/tistouchess/internal/board"
)

// searchFixed runs a synchronous fixed-depth search and returns the
// best move with the last completed iteration's score.
func searchFixed(t *testing.T, e *Engine, fen string, depth int) (board.Move, int) {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatal(err)
	}

	lastScore := 0
	e.OnInfo = func(info SearchInfo) { lastScore = info.Score }

	res, err := e.Search(pos, GoParams{Depth: depth})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Found {
		t.Fatalf("no move found on %q at depth %d", fen, depth)
	}
	return res.Best, lastScore
}

func TestSearchStartPositionDepth1(t *testing.T) {
	move, score := searchFixed(t, New(0), board.StartFEN, 1)
	if move == board.NoMove {
		t.Fatal("no best move")
	}
	if score < -50 || score > 50 {
		t.Errorf("depth-1 score %d outside [-50, 50]", score)
	}
}

func TestSearchFindsMateInOne(t *testing.T) {
	move, score := searchFixed(t, New(0), "7k/5ppp/8/8/8/8/5PPP/R6K w - - 0 1", 2)
	if want := board.NewMove(board.A1, board.A8); move != want {
		t.Errorf("best move = %v, want %v", move, want)
	}
	if score < 19000 {
		t.Errorf("mate score = %d, want >= 19000", score)
	}
}

func TestSearchFindsBackRankMateForBlack(t *testing.T) {
	move, score := searchFixed(t, New(0), "r6k/5ppp/8/8/8/8/5PPP/7K b - - 0 1", 2)
	if want := board.NewMove(board.A8, board.A1); move != want {
		t.Errorf("best move = %v, want %v", move, want)
	}
	if score < 19000 {
		t.Errorf("mate score = %d, want >= 19000", score)
	}
}

// Queen sacrifice leading to a forced mate in three.
func TestSearchFindsMateInThree(t *testing.T) {
	if testing.Short() {
		t.Skip("deep search in short mode")
	}
	_, score := searchFixed(t, New(0), "r4rk1/ppq2Np1/1n1pb3/2p4p/8/3B2Q1/PPPB2PP/5RK1 w - - 0 1", 6)
	if score < 19975 {
		t.Errorf("score = %d, want >= 19975 (mate in three)", score)
	}
}

func TestSearchDeterministic(t *testing.T) {
	fen := "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

	e1 := New(0)
	m1, s1 := searchFixed(t, e1, fen, 4)
	e2 := New(0)
	m2, s2 := searchFixed(t, e2, fen, 4)

	if m1 != m2 || s1 != s2 {
		t.Errorf("two identical searches disagree: %v/%d vs %v/%d", m1, s1, m2, s2)
	}
}

func TestSearchRespectsMoveTime(t *testing.T) {
	e := New(0)
	pos := board.NewPosition()

	start := time.Now()
	res, err := e.Search(pos, GoParams{Depth: 64, MoveTime: 50})
	elapsed := time.Since(start)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Found {
		t.Error("timed search should still report a best move")
	}
	if elapsed > 200*time.Millisecond {
		t.Errorf("search took %v, budget was 50ms", elapsed)
	}
}

func TestSearchStopResponsiveness(t *testing.T) {
	e := New(0)
	pos := board.NewPosition()

	done := make(chan SearchResult, 1)
	if err := e.StartSearch(pos, GoParams{Depth: 20}, func(r SearchResult) { done <- r }); err != nil {
		t.Fatal(err)
	}

	time.Sleep(100 * time.Millisecond)
	start := time.Now()
	e.Stop()
	stopTime := time.Since(start)

	select {
	case res := <-done:
		if !res.Found {
			t.Error("interrupted search should keep the last completed iteration's move")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("no result after stop")
	}
	if stopTime > 500*time.Millisecond {
		t.Errorf("stop took %v", stopTime)
	}
}

func TestSearchRejectsConcurrentStart(t *testing.T) {
	e := New(0)
	pos := board.NewPosition()

	done := make(chan SearchResult, 1)
	if err := e.StartSearch(pos, GoParams{Depth: 20}, func(r SearchResult) { done <- r }); err != nil {
		t.Fatal(err)
	}
	defer func() {
		e.Stop()
		<-done
	}()

	if err := e.StartSearch(pos, GoParams{Depth: 1}, nil); err != ErrEngineBusy {
		t.Errorf("second start returned %v, want ErrEngineBusy", err)
	}
}

func TestSearchStalemateFindsNoMove(t *testing.T) {
	// Black to move is stalemated.
	pos, err := board.ParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	e := New(0)
	res, err := e.Search(pos, GoParams{Depth: 3})
	if err != nil {
		t.Fatal(err)
	}
	if res.Found {
		t.Errorf("stalemated side has no move, got %v", res.Best)
	}
}

func TestPerftCountersPerDepth(t *testing.T) {
	pos := board.NewPosition()
	counters := make([]uint64, 3)
	leaves := Perft(pos, 3, 3, counters)

	if leaves != 8902 {
		t.Errorf("perft(3) leaves = %d, want 8902", leaves)
	}
	if counters[0] != 20 {
		t.Errorf("counters[0] = %d, want 20", counters[0])
	}
	if counters[1] != 400 {
		t.Errorf("counters[1] = %d, want 400", counters[1])
	}
	if counters[2] != 8902 {
		t.Errorf("counters[2] = %d, want 8902", counters[2])
	}
}

func TestMateDistance(t *testing.T) {
	cases := []struct {
		score int
		want  int
	}{
		{mateValue - 5, 1},     // mate at ply 1: one move
		{mateValue - 15, 2},    // mate at ply 3
		{mateValue - 25, 3},    // mate at ply 5
		{-(mateValue - 10), -1}, // mated at ply 2
	}
	for _, tc := range cases {
		if got := MateDistance(tc.score); got != tc.want {
			t.Errorf("MateDistance(%d) = %d, want %d", tc.score, got, tc.want)
		}
	}
}
