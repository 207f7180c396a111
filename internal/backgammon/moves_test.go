package backgammon

import "testing"

func TestInitialBoardCounts(t *testing.T) {
	b := InitialBoard()
	if got := b.CheckersOnBoard(White); got != TotalCheckers {
		t.Fatalf("white checkers = %d, want 15", got)
	}
	if got := b.CheckersOnBoard(Black); got != TotalCheckers {
		t.Fatalf("black checkers = %d, want 15", got)
	}
	if b.PipCount(White) != 167 || b.PipCount(Black) != 167 {
		t.Fatalf("pip counts = %d/%d, want 167/167", b.PipCount(White), b.PipCount(Black))
	}
}

func TestOpeningMovesForBothSides(t *testing.T) {
	moves := LegalFirstMoves(InitialBoard(), White, []int{1, 2})
	if !hasMove(moves, 24, 23) {
		t.Fatalf("expected white 24/23 in %v", moves)
	}
	moves = LegalFirstMoves(InitialBoard(), Black, []int{1, 2})
	if !hasMove(moves, 1, 2) {
		t.Fatalf("expected black 1->2 in %v", moves)
	}
}

func TestBlockedPointIsNotOffered(t *testing.T) {
	moves := LegalFirstMoves(InitialBoard(), White, []int{5, 6})
	if hasMove(moves, 24, 19) {
		t.Fatalf("24/19 lands on a black point: %v", moves)
	}
}

func TestBarMustBeEnteredFirst(t *testing.T) {
	b := makeBoard(map[int]int{0: 1, 6: 5, 13: 5, 8: 3, 24: 1}, -1, -1)
	seqs := MoveSequences(b, White, []int{3, 5})
	if len(seqs) == 0 {
		t.Fatal("expected at least one sequence")
	}
	entered := false
	for _, seq := range seqs {
		if len(seq) > 0 && seq[0].From != WhiteBar {
			t.Fatalf("sequence does not start from the bar: %v", seq)
		}
		if len(seq) > 0 && seq[0].To == 22 && seq[0].Die == 3 {
			entered = true
		}
	}
	if !entered {
		t.Fatal("expected bar entry on 22 with a 3")
	}
}

func TestBlackBarEntry(t *testing.T) {
	b := makeBoard(map[int]int{25: -1, 19: -5, 17: -3, 12: -5, 1: -1}, -1, -1)
	moves := LegalFirstMoves(b, Black, []int{3, 5})
	if !hasMove(moves, BlackBar, 3) {
		t.Fatalf("expected bar entry on 3 in %v", moves)
	}
}

func TestBearOffRequiresAllHome(t *testing.T) {
	b := makeBoard(map[int]int{1: 1, 7: 1, 24: -15}, -1, -1)
	moves := LegalFirstMoves(b, White, []int{1, 2})
	if hasMove(moves, 1, WhiteOffPoint) {
		t.Fatalf("bear-off offered with a checker on 7: %v", moves)
	}
}

func TestOverBearing(t *testing.T) {
	cases := []struct {
		name  string
		board Board
		p     Player
		from  int
		to    int
		legal bool
	}{
		{"white from highest point", makeBoard(map[int]int{2: 1, 24: -15}, -1, -1), White, 2, WhiteOffPoint, true},
		{"white with higher checker", makeBoard(map[int]int{2: 1, 5: 1, 24: -15}, -1, -1), White, 2, WhiteOffPoint, false},
		{"black from highest point", makeBoard(map[int]int{23: -1, 1: 15}, -1, -1), Black, 23, BlackOffPoint, true},
		{"black with farther checker", makeBoard(map[int]int{23: -1, 20: -1, 1: 15}, -1, -1), Black, 23, BlackOffPoint, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := singleMoveTarget(tc.board, tc.p, tc.from, 6)
			if ok != tc.legal {
				t.Fatalf("legal = %v, want %v", ok, tc.legal)
			}
		})
	}
}

func TestHigherDieRule(t *testing.T) {
	b := makeBoard(map[int]int{13: 1, 10: -2, 5: -2, 19: -11}, 14, 0)
	seqs := MoveSequences(b, White, []int{3, 5})
	if len(seqs) == 0 {
		t.Fatal("expected a sequence")
	}
	for _, seq := range seqs {
		if len(seq) != 1 || seq[0].Die != 5 {
			t.Fatalf("expected only the 5 to be playable, got %v", seq)
		}
	}
}

func TestDoublesUsage(t *testing.T) {
	if got := longest(MoveSequences(InitialBoard(), White, []int{1, 1, 1, 1})); got != 4 {
		t.Fatalf("longest sequence with 1-1 = %d, want 4", got)
	}

	b := makeBoard(map[int]int{6: 2, 1: -2, 2: -2, 3: -2, 4: -2, 5: -2, 24: -5}, 13, 0)
	if got := longest(MoveSequences(b, White, []int{1, 1, 1, 1})); got != 0 {
		t.Fatalf("longest sequence with 1-1 = %d, want 0", got)
	}
	if got := longest(MoveSequences(b, White, []int{6, 6, 6, 6})); got != 2 {
		t.Fatalf("longest sequence with 6-6 = %d, want 2", got)
	}
}

func TestHitSendsBlotToBar(t *testing.T) {
	b := makeBoard(map[int]int{13: 1, 10: -1}, -1, -1)
	out := ApplySingleMove(b, White, 13, 10)
	if out.Points[10] != 1 || out.Points[BlackBar] != -1 {
		t.Fatalf("unexpected board after hit: %v", out.Points)
	}
	if b.Points[10] != -1 {
		t.Fatal("ApplySingleMove mutated its input")
	}

	b = makeBoard(map[int]int{5: 1, 2: -1}, -1, -1)
	out = ApplySingleMove(b, Black, 2, 5)
	if out.Points[5] != -1 || out.Points[WhiteBar] != 1 {
		t.Fatalf("unexpected board after black hit: %v", out.Points)
	}
}

func TestFormatMove(t *testing.T) {
	if got := FormatMove(Move{From: 13, To: 7, Die: 6}, White); got != "13/7" {
		t.Fatalf("FormatMove = %q, want 13/7", got)
	}
	if got := FormatMove(Move{From: BlackBar, To: 3, Die: 3}, Black); got != "bar/22" {
		t.Fatalf("FormatMove = %q, want bar/22", got)
	}
	if got := FormatMove(Move{From: 2, To: WhiteOffPoint, Die: 2}, White); got != "2/off" {
		t.Fatalf("FormatMove = %q, want 2/off", got)
	}
	rec := TurnRecord{Player: White, Dice: [2]int{3, 1}, Moves: []Move{{From: 8, To: 5, Die: 3}, {From: 6, To: 5, Die: 1}}}
	if got := FormatTurn(rec); got != "31: 8/5 6/5" {
		t.Fatalf("FormatTurn = %q", got)
	}
}
