package engine

import (
	"math"

	"github.com/tmijieux/tistouchess/internal/board"
)

// Score constants. Mate scores are offset by the depth at which the
// mate is delivered so that shorter mates score higher.
const (
	scoreInfinite = 999999
	mateValue     = 20000
	matePerPly    = 5
)

// mateScore is the score of the side to move being mated at the given
// ply.
func mateScore(ply int) int {
	return -mateValue + matePerPly*ply
}

// IsMateScore reports whether an absolute score can only come from a
// forced mate line.
func IsMateScore(score int) bool {
	if score < 0 {
		score = -score
	}
	return score >= mateValue-matePerPly*128
}

// MateDistance converts a mate score to full moves until mate,
// negative when the side to move is being mated.
func MateDistance(score int) int {
	if score > 0 {
		plies := (mateValue - score) / matePerPly
		return (plies + 1) / 2
	}
	plies := (mateValue + score) / matePerPly
	return -(plies + 1) / 2
}

// quiesce runs the capture-only search below the nominal horizon.
// Fail-hard: returns alpha or beta when the true score falls outside
// the window.
func (e *Engine) quiesce(p *board.Position, color, alpha, beta, ply int) int {
	if e.stopRequired.Load() {
		return beta
	}

	standPat := color * Evaluate(p)
	if standPat+4000 < alpha {
		return alpha
	}
	e.qnodes++
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	var ml board.MoveList
	p.GenerateCaptures(&ml)
	moves := scoreCaptures(p, &ml)

	mover := p.SideToMove
	numLegal := 0
	for i := range moves {
		m := moves[i].move

		captureValue := 0
		if m.IsEnPassant() {
			captureValue = board.PieceValue[board.Pawn]
		} else if captured := p.PieceAt(m.To()); captured != board.NoPiece {
			captureValue = captured.Value()
		}

		undo := p.MakeMove(m)
		if p.KingChecked(mover) {
			p.UnmakeMove(m, undo)
			moves[i].legalChecked = true
			continue
		}
		moves[i].legalChecked = true
		moves[i].legal = true
		numLegal++

		// Delta pruning. The list is in MVV-LVA order (10*victim -
		// attacker), which mostly follows falling victim value; the
		// first move whose victim plus margin cannot lift alpha ends
		// the node, and the moves after it are not tried.
		delta := 975
		if m.IsPromotion() {
			delta += 775
		}
		if captureValue+delta < alpha {
			p.UnmakeMove(m, undo)
			return alpha
		}

		val := -e.quiesce(p, -color, -beta, -alpha, ply+1)
		p.UnmakeMove(m, undo)

		if val >= beta {
			return beta
		}
		if val > alpha {
			alpha = val
		}
	}

	if numLegal == 0 && p.InCheck() {
		return mateScore(ply)
	}
	return alpha
}

// negamax is the alpha-beta search. color is +1 for White, -1 for
// Black; scores are always from the mover's perspective. parentPV
// receives the best line found below this node; previousPV is the last
// completed iteration's line, used for ordering. root carries the
// persistent root move list across iterative-deepening passes and is
// nil below the root.
func (e *Engine) negamax(
	p *board.Position,
	maxDepth, remaining, ply int,
	color int,
	alpha, beta int,
	parentPV *[]board.Move,
	previousPV []board.Move,
	root *[]searchMove,
) int {
	if e.stopRequired.Load() {
		return beta
	}

	mover := p.SideToMove
	key := p.Hash

	var hashMove board.Move
	if entry, ok := e.tt.Probe(key); ok {
		hashMove = p.MoveFromSquares(entry.From, entry.To, entry.Promo)
		if int(entry.Depth) >= remaining {
			score := int(entry.Score)
			switch entry.Bound {
			case BoundExact:
				if hashMove != board.NoMove {
					*parentPV = append((*parentPV)[:0], hashMove)
				}
				if score >= beta {
					return beta
				}
				if score <= alpha {
					return alpha
				}
				return score
			case BoundLower:
				if score >= beta {
					return beta
				}
				if score >= alpha {
					alpha = score
				}
			case BoundUpper:
				if score <= alpha {
					return alpha
				}
			}
		}
	}

	if remaining == 0 {
		return e.quiesce(p, color, alpha, beta, ply)
	}
	e.nodes++
	currentPV := make([]board.Move, 0, remaining)

	var moves []searchMove
	atRoot := ply == 0 && root != nil
	if atRoot && len(*root) > 0 {
		moves = *root
	} else {
		var ml board.MoveList
		p.GeneratePseudoLegalMoves(&ml)
		moves = e.scoreMoves(p, &ml, ply, previousPV, hashMove)
		if atRoot {
			*root = moves
		}
	}

	var (
		numLegal    int
		cutoff      bool
		raisedAlpha bool
		nullWindow  bool
		bestMove    board.Move
		bestVal     = math.MinInt32
	)

	for i := range moves {
		m := &moves[i]
		if m.legalChecked && !m.legal {
			continue
		}

		undo := p.MakeMove(m.move)
		if p.KingChecked(mover) {
			p.UnmakeMove(m.move, undo)
			m.legalChecked = true
			m.legal = false
			m.score = math.MinInt32
			continue
		}
		m.legalChecked = true
		m.legal = true
		numLegal++

		var val int
		if nullWindow && remaining >= 2 {
			// Probe with a null window first; on a fail inside the
			// window, re-search with a progressively wider lower bound
			// (1/8, 1/4, 1/2 of the window, then the full window).
			val = -e.negamax(p, maxDepth, remaining-1, ply+1, -color,
				-alpha-1, -alpha, &currentPV, previousPV, nil)
			if val > alpha && val < beta {
				lower := -alpha - 1
				window := beta - alpha
				for k := 0; val > alpha && val < beta && lower > -beta && k <= 3; k++ {
					if k < 3 {
						step := ceilDiv(window, 8>>k)
						lower = min(-alpha-step, lower-1)
					} else {
						lower = -beta
					}
					val = -e.negamax(p, maxDepth, remaining-1, ply+1, -color,
						lower, -alpha, &currentPV, previousPV, nil)
				}
			}
		} else {
			val = -e.negamax(p, maxDepth, remaining-1, ply+1, -color,
				-beta, -alpha, &currentPV, previousPV, nil)
		}
		p.UnmakeMove(m.move, undo)

		m.score = val
		if val > bestVal {
			bestVal = val
			bestMove = m.move
		}

		if val >= beta {
			alpha = beta
			if e.stopRequired.Load() {
				return beta
			}
			bestMove = m.move
			cutoff = true
			if !m.move.IsCapture(p) && !e.isKiller(ply, m.move) {
				mate := val >= mateValue-matePerPly*(maxDepth+1)
				e.pushKiller(ply, m.move, mate)
			}
			break
		}
		if val > alpha {
			alpha = val
			bestMove = m.move
			*parentPV = append((*parentPV)[:0], m.move)
			*parentPV = append(*parentPV, currentPV...)
			raisedAlpha = true
			nullWindow = true
		}
	}

	bound := BoundUpper
	if cutoff {
		bound = BoundLower
	} else if raisedAlpha {
		bound = BoundExact
	}
	e.tt.Store(key, remaining, alpha, bound, bestMove)

	if numLegal == 0 {
		if p.KingChecked(mover) {
			return mateScore(ply)
		}
		return 0
	}

	if atRoot {
		sortByScore(moves)
		*root = moves
	}
	return alpha
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
