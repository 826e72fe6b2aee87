// Package uci speaks the Universal Chess Interface over stdin/stdout.
package uci

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tmijieux/tistouchess/internal/board"
	"github.com/tmijieux/tistouchess/internal/engine"
	"github.com/tmijieux/tistouchess/internal/storage"
)

// ttEntriesPerMB converts the UCI Hash option (MB) to a bucket count.
const ttEntriesPerMB = 32 * 1024

// UCI dispatches protocol commands to the engine. The store is
// optional; when present it persists the Hash option and accumulates
// search statistics across sessions.
type UCI struct {
	engine   *engine.Engine
	position *board.Position
	store    *storage.Store

	out io.Writer
}

// New builds a protocol handler around an engine and an optional
// persistent store.
func New(eng *engine.Engine, store *storage.Store) *UCI {
	u := &UCI{
		engine:   eng,
		position: board.NewPosition(),
		store:    store,
		out:      os.Stdout,
	}
	eng.OnInfo = u.sendInfo
	return u
}

// Run reads commands from r until quit or EOF.
func (u *UCI) Run(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if !u.Handle(strings.TrimSpace(scanner.Text())) {
			return
		}
	}
}

// Handle executes one command line; it returns false on quit.
func (u *UCI) Handle(line string) bool {
	if line == "" {
		return true
	}
	parts := strings.Fields(line)
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "uci":
		u.send("id name tistouchess")
		u.send("id author tmijieux")
		u.send("option name Hash type spin default 32 min 1 max 1024")
		u.send("uciok")
	case "isready":
		u.send("readyok")
	case "ucinewgame":
		u.engine.Stop()
		u.engine.NewGame()
		u.position = board.NewPosition()
	case "position":
		u.handlePosition(args)
	case "go":
		u.handleGo(args)
	case "stop":
		u.engine.Stop()
	case "setoption":
		u.handleSetOption(args)
	case "d":
		u.send("%s", u.position.String())
	case "perft":
		u.handlePerft(args)
	case "quit":
		u.engine.Stop()
		return false
	}
	return true
}

func (u *UCI) send(format string, args ...any) {
	fmt.Fprintf(u.out, format+"\n", args...)
}

// handlePosition applies "position [startpos|fen <fen>] [moves ...]".
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	movesAt := len(args)
	for i, a := range args {
		if a == "moves" {
			movesAt = i
			break
		}
	}

	switch args[0] {
	case "startpos":
		u.position = board.NewPosition()
	case "fen":
		pos, err := board.ParseFEN(strings.Join(args[1:movesAt], " "))
		if err != nil {
			u.send("info string %v", err)
			return
		}
		u.position = pos
	default:
		return
	}

	for _, moveStr := range args[min(movesAt+1, len(args)):] {
		m := u.parseMove(moveStr)
		if m == board.NoMove {
			u.send("info string illegal move %s", moveStr)
			return
		}
		u.position.MakeMove(m)
	}
}

// parseMove resolves a coordinate-notation move against the current
// position's legal moves.
func (u *UCI) parseMove(s string) board.Move {
	if len(s) < 4 {
		return board.NoMove
	}
	from, err := board.ParseSquare(s[0:2])
	if err != nil {
		return board.NoMove
	}
	to, err := board.ParseSquare(s[2:4])
	if err != nil {
		return board.NoMove
	}
	promo := board.NoPieceType
	if len(s) >= 5 {
		switch s[4] {
		case 'q':
			promo = board.Queen
		case 'r':
			promo = board.Rook
		case 'b':
			promo = board.Bishop
		case 'n':
			promo = board.Knight
		default:
			return board.NoMove
		}
	}

	legal := u.position.GenerateLegalMoves()
	for i := 0; i < legal.Len(); i++ {
		m := legal.Get(i)
		if m.From() != from || m.To() != to {
			continue
		}
		if promo != board.NoPieceType {
			if m.IsPromotion() && m.Promotion() == promo {
				return m
			}
		} else if !m.IsPromotion() {
			return m
		}
	}
	return board.NoMove
}

// handleGo parses the limits and launches the background search. The
// bestmove reply is emitted by the completion callback.
func (u *UCI) handleGo(args []string) {
	params := parseGoParams(args)
	pos := *u.position

	err := u.engine.StartSearch(&pos, params, func(res engine.SearchResult) {
		if res.Found {
			u.send("bestmove %s", res.Best)
		} else {
			// Search never completed depth 1: fall back to any legal
			// move so the GUI always gets an answer.
			legal := pos.GenerateLegalMoves()
			if legal.Len() > 0 {
				u.send("bestmove %s", legal.Get(0))
			} else {
				u.send("bestmove 0000")
			}
		}
		u.recordSearch(res)
	})
	if err != nil {
		u.send("info string %v", err)
	}
}

func parseGoParams(args []string) engine.GoParams {
	var p engine.GoParams
	intArg := func(i int) int64 {
		if i >= len(args) {
			return 0
		}
		v, err := strconv.ParseInt(args[i], 10, 64)
		if err != nil {
			return 0
		}
		return v
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			p.Depth = int(intArg(i + 1))
			i++
		case "movetime":
			p.MoveTime = intArg(i + 1)
			i++
		case "wtime":
			p.WTime = intArg(i + 1)
			i++
		case "btime":
			p.BTime = intArg(i + 1)
			i++
		case "winc":
			p.WInc = intArg(i + 1)
			i++
		case "binc":
			p.BInc = intArg(i + 1)
			i++
		case "movestogo":
			p.MovesToGo = int(intArg(i + 1))
			i++
		case "infinite":
			p.Infinite = true
		}
	}
	return p
}

// sendInfo prints one iteration report as a UCI info line.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "info depth %d", info.Depth)
	if engine.IsMateScore(info.Score) {
		fmt.Fprintf(&sb, " score mate %d", engine.MateDistance(info.Score))
	} else {
		fmt.Fprintf(&sb, " score cp %d", info.Score)
	}
	fmt.Fprintf(&sb, " nodes %d nps %d", info.Nodes, info.NPS)
	if len(info.PV) > 0 {
		sb.WriteString(" pv")
		for _, m := range info.PV {
			sb.WriteByte(' ')
			sb.WriteString(m.String())
		}
	}
	fmt.Fprintf(&sb, " time %d", info.Time.Milliseconds())
	u.send("%s", sb.String())
}

// handleSetOption understands "setoption name <name> value <value>".
func (u *UCI) handleSetOption(args []string) {
	var name, value string
	field := (*string)(nil)
	for _, a := range args {
		switch a {
		case "name":
			field = &name
		case "value":
			field = &value
		default:
			if field != nil {
				if *field != "" {
					*field += " "
				}
				*field += a
			}
		}
	}

	switch strings.ToLower(name) {
	case "hash":
		mb, err := strconv.Atoi(value)
		if err != nil || mb < 1 {
			u.send("info string bad Hash value %q", value)
			return
		}
		if u.engine.IsRunning() {
			u.send("info string cannot resize hash during search")
			return
		}
		u.engine.ResizeTable(mb * ttEntriesPerMB)
		u.saveOptions(mb)
	}
}

func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil && d > 0 {
			depth = d
		}
	}
	pos := *u.position
	start := time.Now()
	counters := make([]uint64, depth)
	nodes := engine.Perft(&pos, depth, depth, counters)
	elapsed := time.Since(start)

	for i, n := range counters {
		u.send("info string perft depth %d legal moves %d", i+1, n)
	}
	u.send("info string perft nodes %d time %dms", nodes, elapsed.Milliseconds())
}

// recordSearch folds a finished search into the persistent statistics.
func (u *UCI) recordSearch(res engine.SearchResult) {
	if u.store == nil {
		return
	}
	if err := u.store.RecordSearch(res.Nodes, res.Elapsed); err != nil {
		log.Printf("storage: record search: %v", err)
	}
}

// saveOptions persists the new hash size alongside the other stored
// options.
func (u *UCI) saveOptions(hashMB int) {
	if u.store == nil {
		return
	}
	opts, err := u.store.LoadOptions()
	if err != nil {
		opts = storage.DefaultOptions()
	}
	opts.HashMB = hashMB
	if err := u.store.SaveOptions(opts); err != nil {
		log.Printf("storage: save options: %v", err)
	}
}
