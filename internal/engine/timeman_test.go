package engine

import (
	"testing"

	"github.com/tmijieux/tistouchess/internal/board"
)

func TestAllocateTime(t *testing.T) {
	start := board.NewPosition()
	black, err := board.ParseFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	if err != nil {
		t.Fatal(err)
	}
	lateGame, err := board.ParseFEN("8/7R/2p1k3/p3P2P/1p6/1P1r4/1KP4r/8 b - - 0 55")
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name   string
		pos    *board.Position
		params GoParams
		want   int64
	}{
		{"movetime wins", start, GoParams{MoveTime: 750, WTime: 60000}, 750},
		{"infinite is unbounded", start, GoParams{Infinite: true, WTime: 60000}, 0},
		{"no clock is unbounded", start, GoParams{Depth: 5}, 0},
		{"movestogo split", start, GoParams{WTime: 60000, MovesToGo: 30}, 2000},
		{"expected length split", start, GoParams{WTime: 59000}, 1000}, // 59000 / (60-1)
		{"black uses btime", black, GoParams{WTime: 90000, BTime: 30000, MovesToGo: 30}, 1000},
		{"late game floor", lateGame, GoParams{BTime: 5000}, 500}, // 5000 / max(60-55, 10)
		{"cap leaves slack", start, GoParams{WTime: 1000, MovesToGo: 1}, 800},
		{"cap floor", start, GoParams{WTime: 100, MovesToGo: 1}, 15},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := allocateTime(tc.params, tc.pos); got != tc.want {
				t.Errorf("allocateTime = %d, want %d", got, tc.want)
			}
		})
	}
}
