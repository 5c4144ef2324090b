// Package lexical implements the Lexical Index Manager (spec.md §4.5, C5):
// per-section weighted lexical vectors keyed by language, and the search
// and cleanup operations over them.
package lexical

import (
	"context"
	"fmt"
	"strings"

	"github.com/corpusdb/retrievalcore/internal/textnormalize"
	"github.com/corpusdb/retrievalcore/lang"
	"github.com/corpusdb/retrievalcore/pg"
)

// Section is the input shape for Maintain.
type Section struct {
	ID       int64
	Language string
	Title    string
	Content  string
}

// Maintain computes and upserts the LexicalVector row for one section,
// per spec.md §4.5's three-step algorithm.
func Maintain(ctx context.Context, exec pg.Executor, registry *lang.Registry, s Section) error {
	if exec == nil {
		return argErr("Maintain", "executor is required")
	}
	if registry == nil {
		return argErr("Maintain", "registry is required")
	}
	if s.ID <= 0 {
		return argErr("Maintain", "section id is required")
	}

	cfg := registry.Lookup(s.Language)
	regconfig := tsearchConfigName(cfg.Name)

	title := textnormalize.NFKC(s.Title)
	content := strings.TrimSpace(s.Content)

	// CJK/Arabic languages mapped to the "simple" fallback config gain a
	// transliterated shadow document so romanized query forms still match
	// native-script content that Postgres' "simple" config cannot segment.
	var fallback string
	if cfg.Name == "simple" && isTransliterationCandidate(s.Language) {
		fallback = textnormalize.Heavy(s.Content)
	}

	sql := fmt.Sprintf(`
		INSERT INTO lexical_vectors (section_id, language, raw_title, raw_content, title_vec, content_vec, combined_vec, updated_at)
		VALUES (
			$1, $2, $3, $4,
			setweight(to_tsvector(%[1]s, coalesce($3, '')), 'A'),
			setweight(to_tsvector(%[1]s, coalesce($4, '')), 'B') || setweight(to_tsvector(%[1]s, coalesce($5, '')), 'D'),
			setweight(to_tsvector(%[1]s, coalesce($3, '')), 'A') ||
				setweight(to_tsvector(%[1]s, coalesce($4, '')), 'B') ||
				setweight(to_tsvector(%[1]s, coalesce($5, '')), 'D'),
			now()
		)
		ON CONFLICT (section_id) DO UPDATE SET
			language     = EXCLUDED.language,
			raw_title    = EXCLUDED.raw_title,
			raw_content  = EXCLUDED.raw_content,
			title_vec    = EXCLUDED.title_vec,
			content_vec  = EXCLUDED.content_vec,
			combined_vec = EXCLUDED.combined_vec,
			updated_at   = now()
	`, regconfig)

	if _, err := exec.Exec(ctx, sql, s.ID, s.Language, title, content, fallback); err != nil {
		return searchErr("Maintain", err)
	}
	return nil
}

// RebuildForDocument recomputes every section's lexical row for a
// document, used after a rare document-language change.
func RebuildForDocument(ctx context.Context, exec pg.Executor, registry *lang.Registry, documentID int64, language string) error {
	if exec == nil {
		return argErr("RebuildForDocument", "executor is required")
	}
	sections, err := pg.SectionsByDocument(ctx, exec, documentID)
	if err != nil {
		return searchErr("RebuildForDocument", err)
	}
	for _, sec := range sections {
		s := Section{ID: sec.ID, Language: language, Title: sec.Title, Content: sec.Content}
		if err := Maintain(ctx, exec, registry, s); err != nil {
			return err
		}
	}
	return nil
}

// RemoveOrphaned deletes lexical rows whose section no longer exists.
func RemoveOrphaned(ctx context.Context, exec pg.Executor) (int64, error) {
	if exec == nil {
		return 0, argErr("RemoveOrphaned", "executor is required")
	}
	ct, err := exec.Exec(ctx, `
		DELETE FROM lexical_vectors lv WHERE NOT EXISTS (SELECT 1 FROM sections s WHERE s.id = lv.section_id)
	`)
	if err != nil {
		return 0, searchErr("RemoveOrphaned", err)
	}
	return ct.RowsAffected(), nil
}

// tsearchConfigName quotes a registry config name for interpolation as a
// regconfig literal inside to_tsvector(...). Custom configs (e.g.
// "jieba", if the store has it installed as a text search configuration)
// pass through the same as Postgres' built-ins.
func tsearchConfigName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func isTransliterationCandidate(language string) bool {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "ja", "ko", "ar":
		return true
	default:
		return false
	}
}
