package engine

import (
	"slices"

	"github.com/tmijieux/tistouchess/internal/board"
)

// Ordering score bands. Within a band, the stable sort preserves
// generator order.
const (
	scoreHashMove   = 100_000_000
	scorePVMove     = 90_000_000
	scoreCapture    = 1_000_000 // plus MVV-LVA, which may be negative
	scoreMateKiller = 900_000
	scoreKiller     = 800_000
)

// searchMove is a move plus its per-frame search metadata: the ordering
// score, and the legality mark that lets a later pass skip moves an
// earlier pass already proved illegal.
type searchMove struct {
	move         board.Move
	score        int
	legal        bool
	legalChecked bool
}

// killerMove remembers a quiet move that produced a beta cutoff at some
// ply, with mate killers flagged so they sort first.
type killerMove struct {
	move board.Move
	mate bool
}

// maxKillersPerPly bounds each ply's killer list; oldest entries fall
// off first.
const maxKillersPerPly = 10

func (e *Engine) isKiller(ply int, m board.Move) bool {
	for _, k := range e.killers[ply] {
		if k.move == m {
			return true
		}
	}
	return false
}

func (e *Engine) pushKiller(ply int, m board.Move, mate bool) {
	if e.isKiller(ply, m) {
		return
	}
	e.killers[ply] = append(e.killers[ply], killerMove{move: m, mate: mate})
	if len(e.killers[ply]) > maxKillersPerPly {
		e.killers[ply] = e.killers[ply][1:]
	}
}

// mvvLVA scores a capture as 10*victim - attacker so the most valuable
// victim comes first and, among equal victims, the cheapest attacker.
func mvvLVA(p *board.Position, m board.Move) int {
	victim := 0
	if m.IsEnPassant() {
		victim = board.PieceValue[board.Pawn]
	} else if captured := p.PieceAt(m.To()); captured != board.NoPiece {
		victim = captured.Value()
	}
	return 10*victim - p.PieceAt(m.From()).Value()
}

// scoreMoves builds the scored move list for one search frame: hash
// move first, then the previous iteration's PV move at this ply, then
// captures by MVV-LVA, then mate killers and killers, then the
// remaining quiet moves in generator order.
func (e *Engine) scoreMoves(p *board.Position, ml *board.MoveList, ply int, previousPV []board.Move, hashMove board.Move) []searchMove {
	moves := make([]searchMove, ml.Len())
	var pvMove board.Move
	if ply < len(previousPV) {
		pvMove = previousPV[ply]
	}

	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		score := 0
		switch {
		case m == hashMove:
			score = scoreHashMove
		case m == pvMove:
			score = scorePVMove
		case m.IsCapture(p) || m.IsPromotion():
			score = scoreCapture + mvvLVA(p, m)
		default:
			for idx, k := range e.killers[ply] {
				if k.move == m {
					if k.mate {
						score = scoreMateKiller - idx
					} else {
						score = scoreKiller - idx
					}
					break
				}
			}
		}
		moves[i] = searchMove{move: m, score: score}
	}
	sortByScore(moves)
	return moves
}

// scoreCaptures orders quiescence moves by MVV-LVA alone.
func scoreCaptures(p *board.Position, ml *board.MoveList) []searchMove {
	moves := make([]searchMove, ml.Len())
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		moves[i] = searchMove{move: m, score: mvvLVA(p, m)}
	}
	sortByScore(moves)
	return moves
}

// sortByScore stable-sorts descending by score.
func sortByScore(moves []searchMove) {
	slices.SortStableFunc(moves, func(a, b searchMove) int {
		return b.score - a.score
	})
}
