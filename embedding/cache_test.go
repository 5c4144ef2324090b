package embedding

import "testing"

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache("m", 2)
	c.Put("a", []float32{1})
	c.Put("b", []float32{2})
	c.Put("c", []float32{3})

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected 'a' to have been evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatal("expected 'b' to still be cached")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("expected 'c' to still be cached")
	}
}

func TestCache_GetTouchRefreshesRecency(t *testing.T) {
	c := NewCache("m", 2)
	c.Put("a", []float32{1})
	c.Put("b", []float32{2})
	c.Get("a") // a is now more recent than b
	c.Put("c", []float32{3})

	if _, ok := c.Get("b"); ok {
		t.Fatal("expected 'b' to have been evicted instead of 'a'")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected 'a' to survive due to recent Get")
	}
}

func TestCache_DistinctModelsDoNotCollide(t *testing.T) {
	c1 := NewCache("model-a", 10)
	c2 := NewCache("model-b", 10)
	c1.Put("text", []float32{1, 2, 3})
	if _, ok := c2.Get("text"); ok {
		t.Fatal("expected no cross-model cache hit")
	}
}
