package vectorindex

import (
	"strings"
	"testing"

	"github.com/corpusdb/retrievalcore/pg"
)

func TestBuildWhere_NoFilters(t *testing.T) {
	where, args, err := buildWhere(Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if where != "WHERE e.vector IS NOT NULL" {
		t.Fatalf("unexpected where clause: %q", where)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args, got %v", args)
	}
}

func TestBuildWhere_DocumentAndTagFilters(t *testing.T) {
	where, args, err := buildWhere(Options{DocumentIDs: []int64{1, 2}, TagIDs: []int64{9}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(where, "document_id = ANY") {
		t.Fatalf("expected document filter in where clause: %q", where)
	}
	if !strings.Contains(where, "section_tags") {
		t.Fatalf("expected tag filter in where clause: %q", where)
	}
	if args["document_ids"] == nil || args["tag_ids"] == nil {
		t.Fatalf("expected bound args for filters, got %v", args)
	}
}

func TestSearch_RejectsEmptyVector(t *testing.T) {
	// A non-nil executor (never called) so the empty-vector check is the one
	// that rejects the call, not the executor check ahead of it.
	var exec pg.Executor = struct{ pg.Executor }{}
	_, err := Search(nil, exec, nil, Options{Limit: 10})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "queryVector") {
		t.Fatalf("expected the empty-vector validation error, got %v", err)
	}
}
