package genre

import "testing"

func TestExtract(t *testing.T) {
	cases := []struct {
		query string
		want  string
	}{
		{"Suggest the best science fiction book", "science fiction"},
		{"I want a scary ghost story", "horror"},
		{"recommend a good detective novel", "mystery"},
		{"something romantic for the weekend", "romance"},
		{"A funny book, please!", "comedy"},
		{"the life of a famous physicist", "biography"},
		{"give me a book about ethics", "philosophy"},
		{"any good book at all", DefaultLabel},
		{"", DefaultLabel},
	}

	for _, c := range cases {
		got := Extract(c.query)
		if got != c.want {
			t.Errorf("Extract(%q) = %q, want %q", c.query, got, c.want)
		}
	}
}

func TestExtractStripsPunctuation(t *testing.T) {
	// Punctuation must not block a match on the surrounding words.
	got := Extract("Horror!!! (the really scary kind)")
	if got != "horror" {
		t.Errorf("Extract with punctuation = %q, want %q", got, "horror")
	}
}

func TestExtractFirstMatchWins(t *testing.T) {
	// "science fiction" precedes "fantasy" in the table.
	got := Extract("science fiction with some fantasy elements")
	if got != "science fiction" {
		t.Errorf("Extract = %q, want %q", got, "science fiction")
	}
}

func TestLabels(t *testing.T) {
	labels := Labels()
	if len(labels) != 16 {
		t.Fatalf("expected 16 canonical labels, got %d", len(labels))
	}
	if labels[0] != "science fiction" {
		t.Errorf("first label = %q, want %q", labels[0], "science fiction")
	}
}
