package uci

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tmijieux/tistouchess/internal/board"
	"github.com/tmijieux/tistouchess/internal/engine"
)

// syncBuffer collects engine output across goroutines.
type syncBuffer struct {
	mu sync.Mutex
	sb strings.Builder
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.String()
}

func newTestUCI() (*UCI, *syncBuffer) {
	buf := &syncBuffer{}
	u := New(engine.New(4096), nil)
	u.out = buf
	return u, buf
}

func waitFor(t *testing.T, buf *syncBuffer, substr string, timeout time.Duration) string {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if out := buf.String(); strings.Contains(out, substr) {
			return out
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("output %q never appeared; got:\n%s", substr, buf.String())
	return ""
}

func TestHandshake(t *testing.T) {
	u, buf := newTestUCI()
	u.Handle("uci")
	u.Handle("isready")
	out := buf.String()
	for _, want := range []string{"id name tistouchess", "uciok", "readyok"} {
		if !strings.Contains(out, want) {
			t.Errorf("handshake output misses %q:\n%s", want, out)
		}
	}
}

func TestPositionWithMoves(t *testing.T) {
	u, _ := newTestUCI()
	u.Handle("position startpos moves e2e4 e7e5 g1f3")
	want := "rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2"
	if got := u.position.ToFEN(); got != want {
		t.Errorf("position after moves:\n got %s\nwant %s", got, want)
	}
}

func TestPositionFEN(t *testing.T) {
	u, _ := newTestUCI()
	fen := "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	u.Handle("position fen " + fen)
	if got := u.position.ToFEN(); got != fen {
		t.Errorf("position fen:\n got %s\nwant %s", got, fen)
	}
}

func TestPositionInvalidFEN(t *testing.T) {
	u, buf := newTestUCI()
	before := u.position.ToFEN()
	u.Handle("position fen not/a/fen w - - 0 1")
	if !strings.Contains(buf.String(), "invalid FEN") {
		t.Errorf("expected an invalid FEN diagnostic, got:\n%s", buf.String())
	}
	if u.position.ToFEN() != before {
		t.Error("invalid FEN must leave the position untouched")
	}
}

func TestGoDepthEmitsBestmove(t *testing.T) {
	u, buf := newTestUCI()
	u.Handle("position startpos")
	u.Handle("go depth 2")
	out := waitFor(t, buf, "bestmove", 5*time.Second)
	if !strings.Contains(out, "info depth 1") || !strings.Contains(out, "score cp") {
		t.Errorf("missing info lines:\n%s", out)
	}
	if n := strings.Count(out, "bestmove"); n != 1 {
		t.Errorf("bestmove emitted %d times", n)
	}
}

func TestGoMateScoreReported(t *testing.T) {
	u, buf := newTestUCI()
	u.Handle("position fen 7k/5ppp/8/8/8/8/5PPP/R6K w - - 0 1")
	u.Handle("go depth 2")
	out := waitFor(t, buf, "bestmove", 5*time.Second)
	if !strings.Contains(out, "bestmove a1a8") {
		t.Errorf("expected bestmove a1a8:\n%s", out)
	}
	if !strings.Contains(out, "score mate 1") {
		t.Errorf("expected score mate 1:\n%s", out)
	}
}

func TestStopEmitsBestmove(t *testing.T) {
	u, buf := newTestUCI()
	u.Handle("position startpos")
	u.Handle("go depth 30")
	time.Sleep(100 * time.Millisecond)
	u.Handle("stop")
	waitFor(t, buf, "bestmove", time.Second)
}

func TestGoWhileSearchingReportsBusy(t *testing.T) {
	u, buf := newTestUCI()
	u.Handle("position startpos")
	u.Handle("go depth 30")
	u.Handle("go depth 1")
	if !strings.Contains(waitFor(t, buf, "already running", time.Second), "already running") {
		t.Error("second go should report the engine busy")
	}
	u.Handle("stop")
	waitFor(t, buf, "bestmove", time.Second)
}

func TestParseGoParams(t *testing.T) {
	p := parseGoParams(strings.Fields("depth 9 movetime 1500 wtime 60000 btime 55000 winc 100 binc 200 movestogo 24"))
	want := engine.GoParams{
		Depth: 9, MoveTime: 1500,
		WTime: 60000, BTime: 55000,
		WInc: 100, BInc: 200,
		MovesToGo: 24,
	}
	if p != want {
		t.Errorf("parseGoParams = %+v, want %+v", p, want)
	}

	if p := parseGoParams(strings.Fields("infinite")); !p.Infinite {
		t.Error("infinite flag not parsed")
	}
}

func TestParseMovePromotion(t *testing.T) {
	u, _ := newTestUCI()
	u.Handle("position fen 7k/P7/8/8/8/8/8/7K w - - 0 1")
	m := u.parseMove("a7a8q")
	if m == board.NoMove || !m.IsPromotion() || m.Promotion() != board.Queen {
		t.Errorf("a7a8q parsed as %v", m)
	}
	if m := u.parseMove("a7a8"); m != board.NoMove {
		t.Errorf("bare a7a8 should not match a promotion move, got %v", m)
	}
}
