package model

// MedalType identifies one of the three medal denominations.
type MedalType string

const (
	MedalGold   MedalType = "gold"
	MedalSilver MedalType = "silver"
	MedalBronze MedalType = "bronze"
)

// Valid reports whether t is one of the three known denominations.
func (t MedalType) Valid() bool {
	switch t {
	case MedalGold, MedalSilver, MedalBronze:
		return true
	}
	return false
}

// Medals is a three-denomination amount. It is used both for balances
// (always non-negative) and for deltas (may be negative per denomination).
type Medals struct {
	Gold   int `json:"gold" validate:"gte=0"`
	Silver int `json:"silver" validate:"gte=0"`
	Bronze int `json:"bronze" validate:"gte=0"`
}

// Add returns m + o per denomination.
func (m Medals) Add(o Medals) Medals {
	return Medals{
		Gold:   m.Gold + o.Gold,
		Silver: m.Silver + o.Silver,
		Bronze: m.Bronze + o.Bronze,
	}
}

// Neg returns the negation of m, used to turn a cost into a debit delta.
func (m Medals) Neg() Medals {
	return Medals{Gold: -m.Gold, Silver: -m.Silver, Bronze: -m.Bronze}
}

// Negative reports whether any denomination is below zero.
func (m Medals) Negative() bool {
	return m.Gold < 0 || m.Silver < 0 || m.Bronze < 0
}

// Delta builds a single-denomination delta of the given amount.
func Delta(t MedalType, amount int) Medals {
	switch t {
	case MedalGold:
		return Medals{Gold: amount}
	case MedalSilver:
		return Medals{Silver: amount}
	case MedalBronze:
		return Medals{Bronze: amount}
	}
	return Medals{}
}
