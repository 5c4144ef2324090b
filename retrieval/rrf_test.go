package retrieval

import "testing"

const (
	sectionA int64 = 1
	sectionB int64 = 2
	sectionC int64 = 3
	sectionD int64 = 4
)

// TestFuse_S3 reproduces spec.md S3 literally.
func TestFuse_S3(t *testing.T) {
	vectorIDs := []int64{sectionA, sectionB, sectionC}
	textIDs := []int64{sectionB, sectionC, sectionD}

	got := Fuse(vectorIDs, textIDs, 0.5, 60)
	want := []int64{sectionB, sectionC, sectionA, sectionD}

	if len(got) != len(want) {
		t.Fatalf("expected %d fused hits, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].SectionID != id {
			t.Errorf("position %d: expected section %d, got %d", i, id, got[i].SectionID)
		}
	}

	approxEqual := func(a, b float32) bool {
		diff := a - b
		if diff < 0 {
			diff = -diff
		}
		return diff < 0.0001
	}
	if !approxEqual(got[0].Score, 0.016261) {
		t.Errorf("expected section B score ~0.016261, got %v", got[0].Score)
	}
	if !approxEqual(got[3].Score, 0.007937) {
		t.Errorf("expected section D score ~0.007937, got %v", got[3].Score)
	}
}

func TestFuse_AlphaZeroIsLexicalOrder(t *testing.T) {
	vectorIDs := []int64{sectionC, sectionA, sectionB}
	textIDs := []int64{sectionA, sectionB, sectionC}

	got := Fuse(vectorIDs, textIDs, 0, 60)
	want := []int64{sectionA, sectionB, sectionC}
	for i, id := range want {
		if got[i].SectionID != id {
			t.Errorf("alpha=0 position %d: expected %d, got %d", i, id, got[i].SectionID)
		}
	}
}

func TestFuse_AlphaOneIsVectorOrder(t *testing.T) {
	vectorIDs := []int64{sectionA, sectionB, sectionC}
	textIDs := []int64{sectionC, sectionA, sectionB}

	got := Fuse(vectorIDs, textIDs, 1, 60)
	want := []int64{sectionA, sectionB, sectionC}
	for i, id := range want {
		if got[i].SectionID != id {
			t.Errorf("alpha=1 position %d: expected %d, got %d", i, id, got[i].SectionID)
		}
	}
}

func TestFuse_NoDuplicateSectionIDs(t *testing.T) {
	got := Fuse([]int64{sectionA, sectionB}, []int64{sectionB, sectionA}, 0.5, 60)
	if len(got) != 2 {
		t.Fatalf("expected 2 distinct sections, got %d", len(got))
	}
	seen := map[int64]bool{}
	for _, h := range got {
		if seen[h.SectionID] {
			t.Fatalf("duplicate section id %d in fused output", h.SectionID)
		}
		seen[h.SectionID] = true
	}
}

func TestClampAlpha(t *testing.T) {
	cases := []struct{ in, want float32 }{
		{-1, 0}, {0, 0}, {0.5, 0.5}, {1, 1}, {2, 1},
	}
	for _, c := range cases {
		if got := ClampAlpha(c.in); got != c.want {
			t.Errorf("ClampAlpha(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
