package chunk

import "testing"

func TestChunk_DocTitleAndIntro(t *testing.T) {
	md := "# Title\n\nintro\n\n## A\n\nbody A\n\n## B\n\nbody B"
	got := Chunk(md, Options{Target: 2000})

	if len(got) != 2 {
		t.Fatalf("expected 2 sections, got %d: %+v", len(got), got)
	}
	if got[0].Title != "A" || got[0].Content != "intro\n\nbody A" {
		t.Fatalf("section 0 mismatch: %+v", got[0])
	}
	if got[1].Title != "B" || got[1].Content != "body B" {
		t.Fatalf("section 1 mismatch: %+v", got[1])
	}
}

func TestChunk_NoHeadingsFallsBackToSizeSplit(t *testing.T) {
	md := "This is a long sentence without headings. It just keeps going on and on. "
	got := Chunk(md, Options{Target: 60, Overlap: 5})
	if len(got) == 0 {
		t.Fatalf("expected at least one chunk")
	}
	for _, s := range got {
		if s.Title == "" {
			t.Fatalf("expected synthesized title, got empty for content %q", s.Content)
		}
	}
}

func TestChunk_OversizedSectionIsSplitWithPartSuffix(t *testing.T) {
	body := ""
	for i := 0; i < 40; i++ {
		body += "Sentence number filler text goes here. "
	}
	md := "# Doc\n\n## Big\n\n" + body
	got := Chunk(md, Options{Target: 100, Overlap: 10})

	if len(got) < 2 {
		t.Fatalf("expected the oversized section to split into multiple parts, got %d", len(got))
	}
	if got[0].Title != "Big" {
		t.Fatalf("expected first part title 'Big', got %q", got[0].Title)
	}
	if got[1].Title != "Big (Part 2)" {
		t.Fatalf("expected second part title 'Big (Part 2)', got %q", got[1].Title)
	}
}

func TestChunk_ShortTrailingFragmentDiscarded(t *testing.T) {
	md := "ok"
	got := Chunk(md, Options{Target: 2000})
	if len(got) != 0 {
		t.Fatalf("expected short fragment under 50 chars to be discarded, got %+v", got)
	}
}

func TestChunk_H1NotFirstLineIsRegularHeading(t *testing.T) {
	md := "intro text here\n\n# Title\n\nbody"
	got := Chunk(md, Options{Target: 2000})
	if len(got) != 1 {
		t.Fatalf("expected 1 section, got %d: %+v", len(got), got)
	}
	if got[0].Title != "Title" {
		t.Fatalf("expected heading to act as a normal chunk boundary, got %+v", got[0])
	}
}
