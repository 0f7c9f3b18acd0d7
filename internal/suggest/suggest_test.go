package suggest

import (
	"testing"
)

func TestBestTypo(t *testing.T) {
	candidates := []string{"SalesDataset", "ServiceDataset", "Currency"}

	cases := []struct {
		query string
		want  string
	}{
		{"SalesDatset", "SalesDataset"},
		{"salesdataset", "SalesDataset"},
		{"ServiceDatasett", "ServiceDataset"},
		{"Curency", "Currency"},
	}
	for _, tc := range cases {
		got, ok := Best(candidates, tc.query)
		if !ok {
			t.Errorf("Best(%q) found nothing, want %q", tc.query, tc.want)
			continue
		}
		if got != tc.want {
			t.Errorf("Best(%q) = %q, want %q", tc.query, got, tc.want)
		}
	}
}

func TestBestExtraCharacter(t *testing.T) {
	// fzf needs every pattern rune in the text, so "fooo" vs "foo" only
	// matches with the roles swapped.
	got, ok := Best([]string{"foo"}, "fooo")
	if !ok || got != "foo" {
		t.Fatalf("Best(fooo) = %q ok=%v, want foo", got, ok)
	}
}

func TestBestRejectsDistantNames(t *testing.T) {
	cases := []struct {
		candidates []string
		query      string
	}{
		{[]string{"Currency"}, "zz"},
		{[]string{"a"}, "completely-different"},
		{nil, "anything"},
		{[]string{"Currency"}, ""},
	}
	for _, tc := range cases {
		if got, ok := Best(tc.candidates, tc.query); ok {
			t.Errorf("Best(%v, %q) = %q, want no match", tc.candidates, tc.query, got)
		}
	}
}

func TestClosestOrderingAndLimit(t *testing.T) {
	candidates := []string{"alpha", "alphabet", "beta"}

	got := Closest(candidates, "alpha", 2)
	if len(got) == 0 || got[0] != "alpha" {
		t.Fatalf("Closest = %v, want exact match first", got)
	}
	if len(got) > 2 {
		t.Fatalf("Closest returned %d results, limit was 2", len(got))
	}

	if got := Closest(candidates, "alpha", 0); got != nil {
		t.Fatalf("Closest with limit 0 = %v, want nil", got)
	}
}
