package board

import "testing"

func TestCheckmateDetection(t *testing.T) {
	cases := []struct {
		name string
		fen  string
		mate bool
	}{
		{"fool's mate", "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", true},
		{"back rank mate", "R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1", true},
		{"check but escapable", "rnbqkbnr/ppp1pppp/8/1B1p4/4P3/8/PPPP1PPP/RNBQK1NR b KQkq - 1 2", false},
		{"starting position", StartFEN, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			if got := pos.IsCheckmate(); got != tc.mate {
				t.Errorf("IsCheckmate = %v, want %v", got, tc.mate)
			}
		})
	}
}

func TestStalemateDetection(t *testing.T) {
	pos, err := ParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if !pos.IsStalemate() {
		t.Error("cornered king with no moves and no check is stalemate")
	}
	if pos.IsCheckmate() {
		t.Error("stalemate is not checkmate")
	}
	if pos.GenerateLegalMoves().Len() != 0 {
		t.Error("stalemated side should have no legal moves")
	}
}

func TestLegalMovesContain(t *testing.T) {
	pos := NewPosition()
	legal := pos.GenerateLegalMoves()
	if legal.Len() != 20 {
		t.Fatalf("start position has %d legal moves, want 20", legal.Len())
	}
	if !legal.Contains(NewMove(E2, E4)) {
		t.Error("e2e4 missing from the legal moves")
	}
	if legal.Contains(NewMove(E1, E2)) {
		t.Error("e1e2 is not legal in the start position")
	}
}
