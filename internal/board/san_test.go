package board

import "testing"

func TestSAN(t *testing.T) {
	rules := DefaultRules()
	tests := []struct {
		fen  string
		uci  string
		want string
	}{
		{StartFEN, "e2e4", "e4"},
		{StartFEN, "g1f3", "Nf3"},
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1g1", "O-O"},
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1c1", "O-O-O"},
		{"4k3/8/8/3Pp3/8/8/8/4K3 w - e6 0 1", "d5e6", "dxe6"},
		{"3r4/4P3/8/8/8/8/8/k3K3 w - - 0 1", "e7d8q", "exd8=Q"},
		{"4k3/8/8/8/8/8/8/R4RK1 w - - 0 1", "a1d1", "Rad1"},
		{"6k1/5ppp/8/8/8/8/8/R3K3 w - - 0 1", "a1a8", "Ra8#"},
		{"4k3/8/8/8/8/8/8/R3K3 w - - 0 1", "a1a8", "Ra8+"},
	}

	for _, tc := range tests {
		pos := mustParse(t, tc.fen)
		m, ok := FindMove(LegalMovesAll(&pos, pos.SideToMove, rules), tc.uci)
		if !ok {
			t.Fatalf("%s not legal in %s", tc.uci, tc.fen)
		}
		if got := m.SAN(&pos, rules); got != tc.want {
			t.Errorf("SAN(%s) = %q, want %q", tc.uci, got, tc.want)
		}

		back, err := ParseSAN(tc.want, &pos, rules)
		if err != nil {
			t.Errorf("ParseSAN(%q): %v", tc.want, err)
		} else if back != m {
			t.Errorf("ParseSAN(%q) = %v, want %v", tc.want, back, m)
		}
	}
}

func TestParseSANRejects(t *testing.T) {
	pos := NewPosition()
	for _, s := range []string{"e5", "Nf4", "O-O", "Qx", "Kz9"} {
		if _, err := ParseSAN(s, &pos, DefaultRules()); err == nil {
			t.Errorf("ParseSAN(%q) should fail", s)
		}
	}
}
