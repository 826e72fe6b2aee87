package board

// Pseudo-legal move generation. Moves may leave the mover's own king in
// check; the search, perft and GenerateLegalMoves all establish
// legality the same way, by making the move and testing KingChecked.
// Castling is the exception: transit squares are verified here because
// the king-in-check test after the move would not catch them.

// GeneratePseudoLegalMoves appends every pseudo-legal move for the side
// to move into ml.
func (p *Position) GeneratePseudoLegalMoves(ml *MoveList) {
	us := p.SideToMove
	occupied := p.AllOccupied
	enemies := p.Occupied[us.Other()]

	p.generatePawnMoves(ml, us, enemies, occupied, false)
	p.generatePieceMoves(ml, us, ^p.Occupied[us], occupied)
	p.generateCastlingMoves(ml, us)
}

// GenerateCaptures appends pseudo-legal captures plus promotion pushes
// (all four promotion pieces), the forcing moves quiescence explores.
func (p *Position) GenerateCaptures(ml *MoveList) {
	us := p.SideToMove
	occupied := p.AllOccupied
	enemies := p.Occupied[us.Other()]

	p.generatePawnMoves(ml, us, enemies, occupied, true)
	p.generatePieceMoves(ml, us, enemies, occupied)
}

// generatePieceMoves emits knight, bishop, rook, queen and king moves
// whose destinations fall inside targets.
func (p *Position) generatePieceMoves(ml *MoveList, us Color, targets, occupied Bitboard) {
	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		addTargets(ml, from, KnightAttacks(from)&targets)
	}
	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		addTargets(ml, from, BishopAttacks(from, occupied)&targets)
	}
	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		addTargets(ml, from, RookAttacks(from, occupied)&targets)
	}
	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		addTargets(ml, from, QueenAttacks(from, occupied)&targets)
	}
	from := p.KingSquare[us]
	addTargets(ml, from, KingAttacks(from)&targets)
}

func addTargets(ml *MoveList, from Square, targets Bitboard) {
	for targets != 0 {
		ml.Add(NewMove(from, targets.PopLSB()))
	}
}

// generatePawnMoves emits pawn pushes, captures, promotions and en
// passant. With capturesOnly set, quiet pushes are limited to
// promotions.
func (p *Position) generatePawnMoves(ml *MoveList, us Color, enemies, occupied Bitboard, capturesOnly bool) {
	pawns := p.Pieces[us][Pawn]
	empty := ^occupied

	var push1, push2, capL, capR, promoRank Bitboard
	var forward int
	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3BB).North() & empty
		capL = pawns.NorthWest() & enemies
		capR = pawns.NorthEast() & enemies
		promoRank = Rank8BB
		forward = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6BB).South() & empty
		capL = pawns.SouthWest() & enemies
		capR = pawns.SouthEast() & enemies
		promoRank = Rank1BB
		forward = -8
	}

	if !capturesOnly {
		quiet := push1 &^ promoRank
		for quiet != 0 {
			to := quiet.PopLSB()
			ml.Add(NewMove(Square(int(to)-forward), to))
		}
		for push2 != 0 {
			to := push2.PopLSB()
			ml.Add(NewMove(Square(int(to)-2*forward), to))
		}
	}

	plainL := capL &^ promoRank
	for plainL != 0 {
		to := plainL.PopLSB()
		ml.Add(NewMove(Square(int(to)-forward+1), to))
	}
	plainR := capR &^ promoRank
	for plainR != 0 {
		to := plainR.PopLSB()
		ml.Add(NewMove(Square(int(to)-forward-1), to))
	}

	promoPush := push1 & promoRank
	for promoPush != 0 {
		to := promoPush.PopLSB()
		addPromotions(ml, Square(int(to)-forward), to)
	}
	promoL := capL & promoRank
	for promoL != 0 {
		to := promoL.PopLSB()
		addPromotions(ml, Square(int(to)-forward+1), to)
	}
	promoR := capR & promoRank
	for promoR != 0 {
		to := promoR.PopLSB()
		addPromotions(ml, Square(int(to)-forward-1), to)
	}

	if p.EnPassant != NoSquare {
		// Pawns that attack the en-passant square may capture onto it.
		attackers := PawnAttacks(p.EnPassant, us.Other()) & pawns
		for attackers != 0 {
			ml.Add(NewEnPassant(attackers.PopLSB(), p.EnPassant))
		}
	}
}

func addPromotions(ml *MoveList, from, to Square) {
	ml.Add(NewPromotion(from, to, Queen))
	ml.Add(NewPromotion(from, to, Rook))
	ml.Add(NewPromotion(from, to, Bishop))
	ml.Add(NewPromotion(from, to, Knight))
}

// generateCastlingMoves emits castling when the right survives, the
// path is clear and neither the king's square nor its transit squares
// are attacked.
func (p *Position) generateCastlingMoves(ml *MoveList, us Color) {
	them := us.Other()
	rank := 0
	kingSide, queenSide := CastleWhiteKing, CastleWhiteQueen
	if us == Black {
		rank = 7
		kingSide, queenSide = CastleBlackKing, CastleBlackQueen
	}
	e := NewSquare(4, rank)

	if p.Castling&kingSide != 0 {
		f, g := NewSquare(5, rank), NewSquare(6, rank)
		if p.AllOccupied&(SquareBB(f)|SquareBB(g)) == 0 &&
			!p.IsSquareAttacked(e, them) &&
			!p.IsSquareAttacked(f, them) &&
			!p.IsSquareAttacked(g, them) {
			ml.Add(NewCastling(e, g))
		}
	}
	if p.Castling&queenSide != 0 {
		b, c, d := NewSquare(1, rank), NewSquare(2, rank), NewSquare(3, rank)
		if p.AllOccupied&(SquareBB(b)|SquareBB(c)|SquareBB(d)) == 0 &&
			!p.IsSquareAttacked(e, them) &&
			!p.IsSquareAttacked(d, them) &&
			!p.IsSquareAttacked(c, them) {
			ml.Add(NewCastling(e, c))
		}
	}
}

// GenerateLegalMoves returns the fully legal moves, filtering the
// pseudo-legal set through make/unmake.
func (p *Position) GenerateLegalMoves() *MoveList {
	var pseudo MoveList
	p.GeneratePseudoLegalMoves(&pseudo)

	legal := &MoveList{}
	us := p.SideToMove
	for i := 0; i < pseudo.Len(); i++ {
		m := pseudo.Get(i)
		undo := p.MakeMove(m)
		if !p.KingChecked(us) {
			legal.Add(m)
		}
		p.UnmakeMove(m, undo)
	}
	return legal
}

// HasLegalMoves reports whether the side to move has any legal reply.
func (p *Position) HasLegalMoves() bool {
	var pseudo MoveList
	p.GeneratePseudoLegalMoves(&pseudo)

	us := p.SideToMove
	for i := 0; i < pseudo.Len(); i++ {
		m := pseudo.Get(i)
		undo := p.MakeMove(m)
		ok := !p.KingChecked(us)
		p.UnmakeMove(m, undo)
		if ok {
			return true
		}
	}
	return false
}

// IsCheckmate reports whether the side to move is mated.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate reports whether the side to move is stalemated.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}
