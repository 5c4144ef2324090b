package retrieval

import "testing"

func makeHits(ids ...int64) []RankedHit {
	out := make([]RankedHit, len(ids))
	for i, id := range ids {
		out[i] = RankedHit{SectionID: id}
	}
	return out
}

func TestPaginate_Defaults(t *testing.T) {
	hits := makeHits(1, 2, 3, 4, 5)
	got := paginate(hits, 1, 5, 5)
	if len(got) != 5 {
		t.Fatalf("expected all 5 hits on page 1, got %d", len(got))
	}
}

func TestPaginate_SecondPage(t *testing.T) {
	hits := makeHits(1, 2, 3, 4, 5, 6, 7, 8)
	got := paginate(hits, 2, 3, 10)
	want := []int64{4, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("expected %d hits, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].SectionID != id {
			t.Errorf("position %d: expected %d, got %d", i, id, got[i].SectionID)
		}
	}
}

func TestPaginate_TrimsToLimitAfterPaging(t *testing.T) {
	hits := makeHits(1, 2, 3, 4, 5)
	got := paginate(hits, 1, 5, 2)
	if len(got) != 2 {
		t.Fatalf("expected page trimmed to limit 2, got %d", len(got))
	}
	if got[0].SectionID != 1 || got[1].SectionID != 2 {
		t.Errorf("unexpected trimmed page contents: %v", got)
	}
}

func TestPaginate_OutOfRangePageIsEmpty(t *testing.T) {
	hits := makeHits(1, 2, 3)
	got := paginate(hits, 5, 3, 10)
	if len(got) != 0 {
		t.Errorf("expected empty page for out-of-range page number, got %v", got)
	}
}

func TestRetrievalPoolSize(t *testing.T) {
	cases := []struct {
		limit int
		want  int
	}{
		{1, 64},
		{10, 64},
		{64, 64},
		{65, 128},
		{100, 128},
	}
	for _, c := range cases {
		if got := retrievalPoolSize(c.limit); got != c.want {
			t.Errorf("retrievalPoolSize(%d) = %d, want %d", c.limit, got, c.want)
		}
	}
}

func TestSearchOptionsWithDefaults(t *testing.T) {
	o := SearchOptions{}.withDefaults()
	if o.SearchType != SearchHybrid {
		t.Errorf("expected default search type hybrid, got %v", o.SearchType)
	}
	if o.Limit != 10 {
		t.Errorf("expected default limit 10, got %d", o.Limit)
	}
	if got := o.alpha(); got != 0.7 {
		t.Errorf("expected default alpha 0.7, got %v", got)
	}
	if o.RRFK != 60 {
		t.Errorf("expected default rrf_k 60, got %d", o.RRFK)
	}
	if o.Page != 1 {
		t.Errorf("expected default page 1, got %d", o.Page)
	}
	if o.PerPage != o.Limit {
		t.Errorf("expected default per_page == limit, got %d", o.PerPage)
	}
}

func TestSearchOptionsClampsLimit(t *testing.T) {
	o := SearchOptions{Limit: 500}.withDefaults()
	if o.Limit != 100 {
		t.Errorf("expected limit clamped to 100, got %d", o.Limit)
	}
}

func TestSearchOptionsAlpha_ExplicitZeroIsLexicalOnly(t *testing.T) {
	zero := float32(0)
	o := SearchOptions{Alpha: &zero}.withDefaults()
	if got := o.alpha(); got != 0 {
		t.Errorf("expected explicit alpha=0 preserved (lexical-only ordering), got %v", got)
	}
}

func TestSearchOptionsAlpha_ExplicitOneIsVectorOnly(t *testing.T) {
	one := float32(1)
	o := SearchOptions{Alpha: &one}.withDefaults()
	if got := o.alpha(); got != 1 {
		t.Errorf("expected explicit alpha=1 preserved, got %v", got)
	}
}

func TestSearchOptionsAlpha_ClampsOutOfRange(t *testing.T) {
	tooHigh := float32(1.5)
	o := SearchOptions{Alpha: &tooHigh}.withDefaults()
	if got := o.alpha(); got != 1 {
		t.Errorf("expected alpha clamped to 1, got %v", got)
	}
}
