package orderbook

import "github.com/shopspring/decimal"

// Level is a single price/volume rung of a book ladder.
type Level struct {
	Price  decimal.Decimal
	Amount decimal.Decimal
}

// sortedSide is a price-ordered ladder: bids are kept descending (best bid
// first), asks ascending (best ask first). Depth here is expected to stay
// in the low thousands of levels, so a sorted slice with binary-search
// insertion is simpler and fast enough than a tree or skip list.
type sortedSide struct {
	levels []Level
	desc   bool
}

func newSortedSide(desc bool) sortedSide {
	return sortedSide{desc: desc}
}

func (s *sortedSide) less(a, b decimal.Decimal) bool {
	if s.desc {
		return a.GreaterThan(b)
	}
	return a.LessThan(b)
}

// find returns the index of price if present, and whether it was found.
func (s *sortedSide) find(price decimal.Decimal) (int, bool) {
	lo, hi := 0, len(s.levels)
	for lo < hi {
		mid := (lo + hi) / 2
		switch {
		case s.levels[mid].Price.Equal(price):
			return mid, true
		case s.less(s.levels[mid].Price, price):
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return lo, false
}

// set inserts or updates price/amount, or removes the level when amount is
// zero (or negative, which should never happen on a well-formed venue feed
// but is treated identically to zero rather than left as a dangling level).
func (s *sortedSide) set(price, amount decimal.Decimal) {
	idx, found := s.find(price)
	if amount.Sign() <= 0 {
		if found {
			s.levels = append(s.levels[:idx], s.levels[idx+1:]...)
		}
		return
	}
	if found {
		s.levels[idx].Amount = amount
		return
	}
	s.levels = append(s.levels, Level{})
	copy(s.levels[idx+1:], s.levels[idx:])
	s.levels[idx] = Level{Price: price, Amount: amount}
}

func (s *sortedSide) load(levels []Level) {
	cp := make([]Level, 0, len(levels))
	for _, l := range levels {
		if l.Amount.Sign() > 0 {
			cp = append(cp, l)
		}
	}
	s.levels = cp
	if s.desc {
		sortLevels(s.levels, func(a, b Level) bool { return a.Price.GreaterThan(b.Price) })
	} else {
		sortLevels(s.levels, func(a, b Level) bool { return a.Price.LessThan(b.Price) })
	}
}

func sortLevels(levels []Level, less func(a, b Level) bool) {
	// insertion sort: snapshots are small (REST depth responses are capped,
	// typically <=5000 levels) and usually arrive nearly sorted already.
	for i := 1; i < len(levels); i++ {
		for j := i; j > 0 && less(levels[j], levels[j-1]); j-- {
			levels[j], levels[j-1] = levels[j-1], levels[j]
		}
	}
}

func (s *sortedSide) best() (Level, bool) {
	if len(s.levels) == 0 {
		return Level{}, false
	}
	return s.levels[0], true
}

func (s *sortedSide) clone() []Level {
	out := make([]Level, len(s.levels))
	copy(out, s.levels)
	return out
}
