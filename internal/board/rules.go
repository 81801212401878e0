package board

import "strings"

// Rules gates the optional parts of chess. Variant and practice modes
// switch them off independently.
type Rules struct {
	CastleAllowed        bool `json:"castle_allowed"`
	CheckAllowed         bool `json:"check_allowed"`
	EnPassantAllowed     bool `json:"en_passant_allowed"`
	PawnPromotionAllowed bool `json:"pawn_promotion_allowed"`
}

// DefaultRules returns standard chess with every rule enabled.
func DefaultRules() Rules {
	return Rules{
		CastleAllowed:        true,
		CheckAllowed:         true,
		EnPassantAllowed:     true,
		PawnPromotionAllowed: true,
	}
}

// RuleNames lists the toggle names accepted by Set, in display order.
var RuleNames = []string{"castle", "check", "enpassant", "promotion"}

// Get returns the toggle with the given name.
func (r Rules) Get(name string) (bool, bool) {
	switch strings.ToLower(name) {
	case "castle", "castling":
		return r.CastleAllowed, true
	case "check":
		return r.CheckAllowed, true
	case "enpassant", "ep":
		return r.EnPassantAllowed, true
	case "promotion", "promote":
		return r.PawnPromotionAllowed, true
	}
	return false, false
}

// Set returns a copy of r with the named toggle changed. The second result
// is false when the name is unknown.
func (r Rules) Set(name string, on bool) (Rules, bool) {
	switch strings.ToLower(name) {
	case "castle", "castling":
		r.CastleAllowed = on
	case "check":
		r.CheckAllowed = on
	case "enpassant", "ep":
		r.EnPassantAllowed = on
	case "promotion", "promote":
		r.PawnPromotionAllowed = on
	default:
		return r, false
	}
	return r, true
}

// String lists the toggles, e.g. "castle=on check=off enpassant=on promotion=on".
func (r Rules) String() string {
	parts := make([]string, 0, len(RuleNames))
	for _, name := range RuleNames {
		on, _ := r.Get(name)
		state := "off"
		if on {
			state = "on"
		}
		parts = append(parts, name+"="+state)
	}
	return strings.Join(parts, " ")
}
