package idgen

import "testing"

func TestApplyCase(t *testing.T) {
	tests := []struct {
		in   string
		c    Case
		want string
	}{
		{"AbC123", CaseUpper, "ABC123"},
		{"AbC123", CaseLower, "abc123"},
		{"AbC123", CaseMixed, "AbC123"},
	}
	for _, tt := range tests {
		if got := applyCase(tt.in, tt.c); got != tt.want {
			t.Errorf("applyCase(%q, %q) = %q, want %q", tt.in, tt.c, got, tt.want)
		}
	}
}

func TestInsertSeparators(t *testing.T) {
	tests := []struct {
		name    string
		content string
		sep     string
		stride  int
		want    string
	}{
		{"even chunks", "abcdefgh", "-", 4, "abcd-efgh"},
		{"short tail", "abcdefghij", "-", 4, "abcd-efgh-ij"},
		{"content shorter than stride", "abc", "-", 4, "abc"},
		{"no separator", "abcdefgh", "", 4, "abcdefgh"},
		{"zero stride", "abcdefgh", "-", 0, "abcdefgh"},
		{"multichar separator", "abcdef", "::", 2, "ab::cd::ef"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := insertSeparators(tt.content, tt.sep, tt.stride); got != tt.want {
				t.Errorf("insertSeparators = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapAndStripWrap(t *testing.T) {
	tests := []struct {
		name           string
		prefix, suffix string
		sep            string
	}{
		{"prefix only no sep", "USER", "", ""},
		{"prefix with sep", "TXN", "", "-"},
		{"suffix only", "", "PROD", "-"},
		{"both", "AK", "EU", "_"},
		{"neither", "", "", "-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := wrap("CONTENT", tt.prefix, tt.suffix, tt.sep)
			got, ok := stripWrap(wrapped, tt.prefix, tt.suffix, tt.sep)
			if !ok {
				t.Fatalf("stripWrap(%q) failed", wrapped)
			}
			if got != "CONTENT" {
				t.Errorf("stripWrap(%q) = %q, want CONTENT", wrapped, got)
			}
		})
	}
}

func TestStripWrap_RejectsWrongFraming(t *testing.T) {
	if _, ok := stripWrap("OTHER-CONTENT", "USER", "", "-"); ok {
		t.Error("stripWrap accepted a wrong prefix")
	}
	if _, ok := stripWrap("CONTENT-X", "", "SUFFIX", "-"); ok {
		t.Error("stripWrap accepted a wrong suffix")
	}
}

func TestStripSeparators_InvertsInsertion(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		sep       string
		stride    int
		wantCount int
	}{
		{"plain", "abcdefghijklmno", "-", 4, 3},
		{"exact multiple", "abcdefgh", "-", 4, 1},
		{"shorter than stride", "abc", "-", 4, 0},
		{"multichar separator", "abcdef", "::", 2, 2},
		// The separator character may legally occur inside the content; only
		// stride-boundary occurrences are separators.
		{"separator inside content", "ab0cd0ef", "0", 4, 1},
		{"separator at chunk edge", "abc0defg", "0", 4, 1},
		{"all separator chars", "000000", "0", 4, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sepd := insertSeparators(tt.content, tt.sep, tt.stride)
			got, count, ok := stripSeparators(sepd, tt.sep, tt.stride)
			if !ok {
				t.Fatalf("stripSeparators(%q) failed", sepd)
			}
			if got != tt.content {
				t.Errorf("stripSeparators(%q) = %q, want %q", sepd, got, tt.content)
			}
			if count != tt.wantCount {
				t.Errorf("separator count = %d, want %d", count, tt.wantCount)
			}
		})
	}
}

func TestStripSeparators_RejectsMisalignedBoundaries(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"wrong character at boundary", "abcdXefgh"},
		{"missing separator", "abcdefghi"},
		{"trailing separator", "abcd-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, ok := stripSeparators(tt.body, "-", 4); ok {
				t.Errorf("stripSeparators(%q) accepted a misaligned body", tt.body)
			}
		})
	}
}
