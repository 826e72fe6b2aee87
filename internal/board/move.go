package board

import "fmt"

// Move encodes one chess move in 16 bits:
//
//	bits 0-5   source square
//	bits 6-11  destination square
//	bits 12-13 promotion piece (0=Knight .. 3=Queen)
//	bits 14-15 kind (normal, promotion, en passant, castling)
type Move uint16

const (
	kindNormal    uint16 = 0 << 14
	kindPromotion uint16 = 1 << 14
	kindEnPassant uint16 = 2 << 14
	kindCastling  uint16 = 3 << 14
)

// NoMove is the zero move, used where no move applies.
const NoMove Move = 0

// NewMove builds a plain move.
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

// NewPromotion builds a promotion move.
func NewPromotion(from, to Square, promo PieceType) Move {
	return Move(from) | Move(to)<<6 | Move(promo-Knight)<<12 | Move(kindPromotion)
}

// NewEnPassant builds an en-passant capture.
func NewEnPassant(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(kindEnPassant)
}

// NewCastling builds a castling move, expressed as the king's motion.
func NewCastling(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(kindCastling)
}

// From returns the source square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Promotion returns the promotion piece type; only meaningful when
// IsPromotion is true.
func (m Move) Promotion() PieceType {
	return PieceType((m>>12)&3) + Knight
}

func (m Move) kind() uint16      { return uint16(m) & 0xC000 }
func (m Move) IsPromotion() bool { return m.kind() == kindPromotion }
func (m Move) IsEnPassant() bool { return m.kind() == kindEnPassant }
func (m Move) IsCastling() bool  { return m.kind() == kindCastling }

// IsCapture reports whether the move captures a piece on the given
// position. Must be asked before the move is made.
func (m Move) IsCapture(p *Position) bool {
	return m.IsEnPassant() || !p.IsEmpty(m.To())
}

// String renders the move in UCI coordinate notation ("e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string("nbrq"[m.Promotion()-Knight])
	}
	return s
}

// MoveList is a fixed-capacity move buffer; generation never allocates.
type MoveList struct {
	moves [256]Move
	count int
}

// Add appends a move.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves held.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Slice returns a view of the stored moves.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// Contains reports whether m is in the list.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

func (ml *MoveList) String() string {
	s := ""
	for i := 0; i < ml.count; i++ {
		if i > 0 {
			s += " "
		}
		s += ml.moves[i].String()
	}
	return fmt.Sprintf("[%s]", s)
}
