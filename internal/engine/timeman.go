package engine

import "github.com/tmijieux/tistouchess/internal/board"

// GoParams carries the search constraints of a UCI "go" command.
// Durations are in milliseconds, zero meaning absent.
type GoParams struct {
	Depth     int
	MoveTime  int64
	WTime     int64
	BTime     int64
	WInc      int64
	BInc      int64
	MovesToGo int
	Infinite  bool
}

// allocateTime turns the go parameters into a wall-clock budget in
// milliseconds, 0 meaning unbounded. An explicit movetime wins; with a
// clock, the base time is split over movestogo when given, otherwise
// over the expected remaining game length, and the result is capped so
// a reply always leaves the engine before the flag falls.
func allocateTime(p GoParams, pos *board.Position) int64 {
	if p.Infinite {
		return 0
	}
	if p.MoveTime > 0 {
		return p.MoveTime
	}
	base := p.WTime
	if pos.SideToMove == board.Black {
		base = p.BTime
	}
	if base <= 0 {
		return 0
	}

	var budget int64
	if p.MovesToGo > 0 {
		budget = base / int64(p.MovesToGo)
	} else {
		wanted := 60 - pos.FullMove()
		if wanted < 10 {
			wanted = 10
		}
		budget = base / int64(wanted)
	}

	// Keep 200ms of slack to finish the iteration and answer, but
	// never budget below 15ms.
	limit := base - 200
	if limit < 15 {
		limit = 15
	}
	if budget > limit {
		budget = limit
	}
	return budget
}
