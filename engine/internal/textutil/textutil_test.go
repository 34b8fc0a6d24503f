package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripHTML(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "hello world", "hello world"},
		{"strips script", "<p>hi</p><script>alert(1)</script>", "hi"},
		{"strips style", "<style>.x{}</style><p>hi</p>", "hi"},
		{"decodes entities", "Caf&eacute; &amp; Bar", "Café & Bar"},
		{"preserves paragraphs", "<p>First</p><p>Second</p>", "First\n\nSecond"},
		{"collapses whitespace", "<p>a   \n\n  b</p>", "a b"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, StripHTML(tc.in))
		})
	}
}

func TestParseDate(t *testing.T) {
	if _, ok := ParseDate(""); ok {
		t.Fatal("expected empty string to fail")
	}
	if _, ok := ParseDate("not-a-date"); ok {
		t.Fatal("expected garbage to fail")
	}
	tm, ok := ParseDate("2024-03-01T10:00:00Z")
	require.True(t, ok)
	require.Equal(t, 2024, tm.Year())

	tm2, ok := ParseDate("2024-03-01")
	require.True(t, ok)
	require.Equal(t, 3, int(tm2.Month()))
}

func TestNormalizeForDeduplication(t *testing.T) {
	require.Equal(t, "senior backend engineer @ acme inc", NormalizeForDeduplication("Senior Backend-Engineer!! @ Acme, Inc."))
	require.Equal(t, "", NormalizeForDeduplication("   "))
}
