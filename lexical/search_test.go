package lexical

import "testing"

func TestSanitizePGroongaQuery(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"東京 タワー", "東京 タワー"},
		{"東京; DROP TABLE", "東京 DROP TABLE"},
		{"  multiple   spaces  ", "multiple spaces"},
		{"2024年", "2024年"},
		{"", ""},
	}
	for _, c := range cases {
		got := sanitizePGroongaQuery(c.in)
		if got != c.want {
			t.Errorf("sanitizePGroongaQuery(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizePGroongaScore(t *testing.T) {
	if got := normalizePGroongaScore(0, 1); got != 0 {
		t.Errorf("zero raw score should normalize to 0, got %v", got)
	}
	if got := normalizePGroongaScore(-5, 1); got != 0 {
		t.Errorf("negative raw score should normalize to 0, got %v", got)
	}
	got := normalizePGroongaScore(3, 1)
	if got <= 0 || got >= 1 {
		t.Errorf("normalized score should be in (0,1), got %v", got)
	}
	higher := normalizePGroongaScore(100, 1)
	if higher <= got {
		t.Errorf("higher raw score should normalize higher: %v <= %v", higher, got)
	}
}

func TestBuildSearchWhere_NoFilters(t *testing.T) {
	where, args := buildSearchWhere(SearchOptions{})
	if where == "" {
		t.Fatal("expected non-empty WHERE clause")
	}
	if len(args) != 0 {
		t.Errorf("expected no args for unfiltered options, got %v", args)
	}
}

func TestBuildSearchWhere_AllFilters(t *testing.T) {
	from := "2024-01-01"
	to := "2024-12-31"
	where, args := buildSearchWhere(SearchOptions{
		DocumentIDs: []int64{1, 2},
		TagIDs:      []int64{3},
		DateFrom:    &from,
		DateTo:      &to,
	})
	if args["document_ids"] == nil || args["tag_ids"] == nil || args["date_from"] == nil || args["date_to"] == nil {
		t.Fatalf("expected all filter args to be set, got %v", args)
	}
	for _, token := range []string{"document_id", "tag_ids", "date_from", "date_to"} {
		if !containsToken(where, token) {
			t.Errorf("expected WHERE clause to reference %q, got %q", token, where)
		}
	}
}

func containsToken(s, token string) bool {
	for i := 0; i+len(token) <= len(s); i++ {
		if s[i:i+len(token)] == token {
			return true
		}
	}
	return false
}

func TestIsTransliterationCandidate(t *testing.T) {
	for _, lang := range []string{"ja", "ko", "ar", "JA"} {
		if !isTransliterationCandidate(lang) {
			t.Errorf("expected %q to be a transliteration candidate", lang)
		}
	}
	for _, lang := range []string{"en", "es", ""} {
		if isTransliterationCandidate(lang) {
			t.Errorf("expected %q to not be a transliteration candidate", lang)
		}
	}
}
