package content

import (
	"strings"
	"testing"
)

func TestNormalizeHTML(t *testing.T) {
	t.Parallel()

	raw := `<html><head><style>p{color:red}</style></head><body>
<nav><a href="/">Home</a></nav>
<article><h1>Council approves budget</h1><p>The council voted <strong>7-2</strong> on Monday.</p>
<script>track()</script></article>
<footer>Subscribe</footer></body></html>`

	got, err := NewNormalizer(0).Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	for _, want := range []string{"# Council approves budget", "**7-2**"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in:\n%s", want, got)
		}
	}
	for _, unwanted := range []string{"track()", "Subscribe", "Home", "color:red"} {
		if strings.Contains(got, unwanted) {
			t.Fatalf("noise %q left in:\n%s", unwanted, got)
		}
	}
}

func TestNormalizePlainText(t *testing.T) {
	t.Parallel()

	got, err := NewNormalizer(0).Normalize("  First paragraph.\r\n\r\n\r\n\r\nSecond 3 < 4.  ")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got != "First paragraph.\n\nSecond 3 < 4." {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestNormalizeTruncates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"short", "abcdefgh", "abcdefgh"},
		{"long", strings.Repeat("x", 10), "xxxxxxxx..."},
		{"rune boundary", "abcdefgñ", "abcdefg..."},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := NewNormalizer(2).Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
