package board

import (
	"fmt"
	"strings"
)

// CastlingRights is a 4-bit set of the remaining castling options.
type CastlingRights uint8

const (
	CastleWhiteKing CastlingRights = 1 << iota
	CastleWhiteQueen
	CastleBlackKing
	CastleBlackQueen

	CastleNone CastlingRights = 0
	CastleAll  CastlingRights = CastleWhiteKing | CastleWhiteQueen | CastleBlackKing | CastleBlackQueen
)

// String returns the FEN castling field.
func (cr CastlingRights) String() string {
	if cr == CastleNone {
		return "-"
	}
	var sb strings.Builder
	if cr&CastleWhiteKing != 0 {
		sb.WriteByte('K')
	}
	if cr&CastleWhiteQueen != 0 {
		sb.WriteByte('Q')
	}
	if cr&CastleBlackKing != 0 {
		sb.WriteByte('k')
	}
	if cr&CastleBlackQueen != 0 {
		sb.WriteByte('q')
	}
	return sb.String()
}

// DebugChecks enables the defensive assertions that the release build
// omits: MakeMove panics when handed a move whose piece color does not
// match the side to move.
var DebugChecks = false

// Position is a complete chess position. All fields are plain values so
// a Position can be compared and copied with the built-in operators.
//
// KingSquare, Checked and Hash are derived state kept current by every
// mutation; they exist so the search never recomputes them from scratch.
type Position struct {
	Pieces      [2][6]Bitboard // by color and piece type
	Occupied    [2]Bitboard    // union per color
	AllOccupied Bitboard

	SideToMove Color
	Castling   CastlingRights
	EnPassant  Square // capture target square, NoSquare if none
	HalfMove   int    // fifty-move-rule clock
	Ply        int    // half-moves played since the initial position

	Hash uint64

	KingSquare [2]Square
	Checked    [2]bool
}

// Undo captures the irreversible state of a position immediately before
// a move is made. UnmakeMove restores it wholesale, then reverses the
// piece motion.
type Undo struct {
	Captured  Piece
	Castling  CastlingRights
	EnPassant Square
	HalfMove  int
	Hash      uint64
	Checked   [2]bool
}

// NullUndo is the snapshot for a null move.
type NullUndo struct {
	EnPassant Square
	HalfMove  int
	Hash      uint64
}

// FullMove returns the FEN full-move number.
func (p *Position) FullMove() int {
	return p.Ply/2 + 1
}

// PieceAt returns the piece on sq, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece {
	bb := SquareBB(sq)
	if p.AllOccupied&bb == 0 {
		return NoPiece
	}
	c := White
	if p.Occupied[Black]&bb != 0 {
		c = Black
	}
	for pt := Pawn; pt <= King; pt++ {
		if p.Pieces[c][pt]&bb != 0 {
			return NewPiece(pt, c)
		}
	}
	return NoPiece
}

// IsEmpty reports whether sq holds no piece.
func (p *Position) IsEmpty(sq Square) bool {
	return p.AllOccupied&SquareBB(sq) == 0
}

// setPiece puts a piece on an empty square. Hash is not touched.
func (p *Position) setPiece(piece Piece, sq Square) {
	c, pt := piece.Color(), piece.Type()
	bb := SquareBB(sq)
	p.Pieces[c][pt] |= bb
	p.Occupied[c] |= bb
	p.AllOccupied |= bb
	if pt == King {
		p.KingSquare[c] = sq
	}
}

// removePiece clears a square and returns what was there.
func (p *Position) removePiece(sq Square) Piece {
	piece := p.PieceAt(sq)
	if piece == NoPiece {
		return NoPiece
	}
	bb := SquareBB(sq)
	p.Pieces[piece.Color()][piece.Type()] &^= bb
	p.Occupied[piece.Color()] &^= bb
	p.AllOccupied &^= bb
	return piece
}

// movePiece relocates the piece on from to the empty square to.
func (p *Position) movePiece(from, to Square) {
	piece := p.PieceAt(from)
	c, pt := piece.Color(), piece.Type()
	span := SquareBB(from) | SquareBB(to)
	p.Pieces[c][pt] ^= span
	p.Occupied[c] ^= span
	p.AllOccupied ^= span
	if pt == King {
		p.KingSquare[c] = to
	}
}

// updateChecked recomputes both check flags from the cached king squares.
func (p *Position) updateChecked() {
	p.Checked[White] = p.IsSquareAttacked(p.KingSquare[White], Black)
	p.Checked[Black] = p.IsSquareAttacked(p.KingSquare[Black], White)
}

// KingChecked reports whether the king of c is attacked.
func (p *Position) KingChecked(c Color) bool {
	return p.Checked[c]
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool {
	return p.Checked[p.SideToMove]
}

// MakeMove applies a pseudo-legal move and returns the snapshot needed
// to reverse it. The caller is responsible for rejecting moves that
// leave the mover's own king in check (test KingChecked after making).
//
// Effects, in order: hash out of the side, old castling rights and old
// en-passant file; piece motion with its hash updates (capture, en
// passant, promotion, rook relocation on castling); castling rights;
// en-passant state; side to move; fifty-move clock; ply; check flags.
func (p *Position) MakeMove(m Move) Undo {
	undo := Undo{
		Captured:  NoPiece,
		Castling:  p.Castling,
		EnPassant: p.EnPassant,
		HalfMove:  p.HalfMove,
		Hash:      p.Hash,
		Checked:   p.Checked,
	}

	us := p.SideToMove
	them := us.Other()
	from, to := m.From(), m.To()
	piece := p.PieceAt(from)
	if DebugChecks && (piece == NoPiece || piece.Color() != us) {
		panic(fmt.Sprintf("make %v: piece %v does not belong to %v", m, piece, us))
	}
	pt := piece.Type()

	p.Hash ^= zobristSide
	p.Hash ^= zobristCastling[p.Castling]
	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEPFile[p.EnPassant.File()]
	}
	p.EnPassant = NoSquare

	// Captures come off the board before the mover lands.
	if m.IsEnPassant() {
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		undo.Captured = p.removePiece(capSq)
		p.Hash ^= zobristPiece[them][Pawn][capSq]
	} else if captured := p.PieceAt(to); captured != NoPiece {
		undo.Captured = captured
		p.removePiece(to)
		p.Hash ^= zobristPiece[them][captured.Type()][to]
	}

	p.movePiece(from, to)
	p.Hash ^= zobristPiece[us][pt][from]
	p.Hash ^= zobristPiece[us][pt][to]

	if m.IsPromotion() {
		promo := m.Promotion()
		p.Pieces[us][Pawn] &^= SquareBB(to)
		p.Pieces[us][promo] |= SquareBB(to)
		p.Hash ^= zobristPiece[us][Pawn][to]
		p.Hash ^= zobristPiece[us][promo][to]
	}

	if m.IsCastling() {
		rookFrom, rookTo := castlingRookSquares(from, to)
		p.movePiece(rookFrom, rookTo)
		p.Hash ^= zobristPiece[us][Rook][rookFrom]
		p.Hash ^= zobristPiece[us][Rook][rookTo]
	}

	// Any king or rook activity on its home square kills the matching
	// right, whether by moving or by being captured.
	if pt == King {
		if us == White {
			p.Castling &^= CastleWhiteKing | CastleWhiteQueen
		} else {
			p.Castling &^= CastleBlackKing | CastleBlackQueen
		}
	}
	if from == A1 || to == A1 {
		p.Castling &^= CastleWhiteQueen
	}
	if from == H1 || to == H1 {
		p.Castling &^= CastleWhiteKing
	}
	if from == A8 || to == A8 {
		p.Castling &^= CastleBlackQueen
	}
	if from == H8 || to == H8 {
		p.Castling &^= CastleBlackKing
	}
	p.Hash ^= zobristCastling[p.Castling]

	if pt == Pawn && (int(to)-int(from) == 16 || int(from)-int(to) == 16) {
		p.EnPassant = Square((int(from) + int(to)) / 2)
		p.Hash ^= zobristEPFile[p.EnPassant.File()]
	}

	p.SideToMove = them

	if pt == Pawn || undo.Captured != NoPiece {
		p.HalfMove = 0
	} else {
		p.HalfMove++
	}
	p.Ply++

	p.updateChecked()
	return undo
}

// UnmakeMove restores the position exactly as it was before MakeMove:
// the snapshot comes back in one assignment, then the piece motion is
// reversed.
func (p *Position) UnmakeMove(m Move, undo Undo) {
	us := p.SideToMove.Other()
	them := p.SideToMove

	p.Castling = undo.Castling
	p.EnPassant = undo.EnPassant
	p.HalfMove = undo.HalfMove
	p.Hash = undo.Hash
	p.Checked = undo.Checked
	p.SideToMove = us
	p.Ply--

	from, to := m.From(), m.To()
	if m.IsPromotion() {
		p.removePiece(to)
		p.setPiece(NewPiece(Pawn, us), from)
	} else {
		p.movePiece(to, from)
	}

	if m.IsEnPassant() {
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		p.setPiece(NewPiece(Pawn, them), capSq)
	} else if undo.Captured != NoPiece {
		p.setPiece(undo.Captured, to)
	}

	if m.IsCastling() {
		rookFrom, rookTo := castlingRookSquares(from, to)
		p.movePiece(rookTo, rookFrom)
	}
}

// castlingRookSquares maps a castling king move to its rook's motion:
// king to the g-file sends the h-rook to f, king to the c-file sends
// the a-rook to d.
func castlingRookSquares(kingFrom, kingTo Square) (rookFrom, rookTo Square) {
	rank := kingFrom.Rank()
	if kingTo.File() == 6 {
		return NewSquare(7, rank), NewSquare(5, rank)
	}
	return NewSquare(0, rank), NewSquare(3, rank)
}

// MakeNullMove passes the turn: flips the side, clears any en-passant
// file and advances the ply, updating the hash for exactly those
// changes. Check flags are untouched since no piece moved.
func (p *Position) MakeNullMove() NullUndo {
	undo := NullUndo{
		EnPassant: p.EnPassant,
		HalfMove:  p.HalfMove,
		Hash:      p.Hash,
	}
	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEPFile[p.EnPassant.File()]
		p.EnPassant = NoSquare
	}
	p.SideToMove = p.SideToMove.Other()
	p.Hash ^= zobristSide
	p.Ply++
	return undo
}

// UnmakeNullMove reverses MakeNullMove.
func (p *Position) UnmakeNullMove(undo NullUndo) {
	p.EnPassant = undo.EnPassant
	p.HalfMove = undo.HalfMove
	p.Hash = undo.Hash
	p.SideToMove = p.SideToMove.Other()
	p.Ply--
}

// MoveFromSquares reconstructs a full Move from bare coordinates by
// inspecting the board, classifying castling, en passant and promotion.
// Returns NoMove when no piece of the side to move sits on from.
func (p *Position) MoveFromSquares(from, to Square, promo PieceType) Move {
	if !from.IsValid() || !to.IsValid() {
		return NoMove
	}
	piece := p.PieceAt(from)
	if piece == NoPiece || piece.Color() != p.SideToMove {
		return NoMove
	}
	if promo != NoPieceType && promo != Pawn {
		return NewPromotion(from, to, promo)
	}
	switch piece.Type() {
	case King:
		d := int(to) - int(from)
		if d == 2 || d == -2 {
			return NewCastling(from, to)
		}
	case Pawn:
		if to == p.EnPassant && p.EnPassant != NoSquare {
			return NewEnPassant(from, to)
		}
	}
	return NewMove(from, to)
}

// Validate checks the structural invariants of the position: one king
// per side, cached king squares and check flags in agreement with the
// board, legal piece counts and hash consistency. Meant for tests and
// debugging, not the hot path.
func (p *Position) Validate() error {
	for c := White; c <= Black; c++ {
		if n := p.Pieces[c][King].PopCount(); n != 1 {
			return fmt.Errorf("%v has %d kings", c, n)
		}
		if p.KingSquare[c] != p.Pieces[c][King].LSB() {
			return fmt.Errorf("%v king square cache %v disagrees with board %v",
				c, p.KingSquare[c], p.Pieces[c][King].LSB())
		}
		limits := [5]int{8, 10, 10, 10, 9} // pawn, knight, bishop, rook, queen
		for pt := Pawn; pt <= Queen; pt++ {
			if n := p.Pieces[c][pt].PopCount(); n > limits[pt] {
				return fmt.Errorf("%v has %d pieces of type %d", c, n, pt)
			}
		}
		want := p.IsSquareAttacked(p.KingSquare[c], c.Other())
		if p.Checked[c] != want {
			return fmt.Errorf("%v check flag %v, board says %v", c, p.Checked[c], want)
		}
	}
	if h := p.ComputeHash(); h != p.Hash {
		return fmt.Errorf("incremental hash %016x differs from full hash %016x", p.Hash, h)
	}
	return nil
}

// String renders the position as a diagram plus its state fields.
func (p *Position) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			sb.WriteString(p.PieceAt(NewSquare(file, rank)).String())
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("   a b c d e f g h\n")
	fmt.Fprintf(&sb, "fen: %s\nhash: %016x\n", p.ToFEN(), p.Hash)
	return sb.String()
}
