package api

import "testing"

func TestSanitizeTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Quarterly Results Overview", "Quarterly Results Overview"},
		{"Case Study: Migrating a Monolith", "Case Study_ Migrating a Monolith"},
		{`a/b\c*d?e"f<g>h|i`, "a_b_c_d_e_f_g_h_i"},
		{"  padded  ", "padded"},
		{"with\nnewline", "withnewline"},
	}
	for _, c := range cases {
		if got := sanitizeTitle(c.in); got != c.want {
			t.Errorf("sanitizeTitle(%q): expected %q, got %q", c.in, c.want, got)
		}
	}
}

func TestSanitizeTitle_LengthCap(t *testing.T) {
	long := ""
	for i := 0; i < 50; i++ {
		long += "title"
	}
	out := sanitizeTitle(long)
	if len(out) > 120 {
		t.Errorf("expected capped length, got %d", len(out))
	}
}

func TestDeckFilename(t *testing.T) {
	if got := deckFilename("Digital Transformation"); got != "Digital Transformation.pptx" {
		t.Errorf("unexpected filename %q", got)
	}
	if got := deckFilename("\x01\x02"); got != "presentation.pptx" {
		t.Errorf("expected fallback name, got %q", got)
	}
	if got := deckFilename(""); got != "presentation.pptx" {
		t.Errorf("expected fallback name for empty title, got %q", got)
	}
}
