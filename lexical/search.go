package lexical

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/corpusdb/retrievalcore/internal/langscript"
	"github.com/corpusdb/retrievalcore/lang"
	"github.com/corpusdb/retrievalcore/pg"
	"github.com/corpusdb/retrievalcore/query"
)

// Hit is one lexical search result (spec.md §4.5 step 5).
type Hit struct {
	SectionID int64
	Language  string
	RankScore float32
	Highlight string
}

// SearchOptions configures Search.
type SearchOptions struct {
	LanguageOverride string
	Limit            int
	DocumentIDs      []int64
	TagIDs           []int64
	DateFrom         *string
	DateTo           *string
}

// Search runs the lexical channel's five-step algorithm (spec.md §4.5).
func Search(ctx context.Context, exec pg.Executor, registry *lang.Registry, queryText string, opts SearchOptions) ([]Hit, error) {
	if exec == nil {
		return nil, argErr("Search", "executor is required")
	}
	if registry == nil {
		return nil, argErr("Search", "registry is required")
	}
	if strings.TrimSpace(queryText) == "" {
		return nil, argErr("Search", "query text is required")
	}
	if opts.Limit <= 0 {
		return nil, nil
	}

	language := opts.LanguageOverride
	if strings.TrimSpace(language) == "" {
		language = query.DetectLanguage(queryText)
	}
	cfg := registry.Lookup(language)
	regconfig := tsearchConfigName(cfg.Name)

	parsed, err := query.Parse(queryText, query.Options{})
	if err != nil {
		return nil, searchErr("Search", err)
	}
	lexicalQuery, err := query.EmitLexicalQuery(parsed, cfg.Name)
	if err != nil {
		return nil, searchErr("Search", err)
	}
	tsQuery := toTSQuery(lexicalQuery, cfg.Name, regconfig)

	if langscript.ContainsCJK(queryText) {
		return searchCJK(ctx, exec, language, queryText, opts)
	}

	where, args := buildSearchWhere(opts)
	args["language"] = language

	sql := fmt.Sprintf(`
		SELECT lv.section_id, lv.language,
		       ts_rank_cd(lv.combined_vec, (%s))::float4 AS rank,
		       left(coalesce(s.content, ''), 240) AS snippet
		FROM lexical_vectors lv
		JOIN sections s ON s.id = lv.section_id
		%s
		  AND lv.language = @language
		  AND lv.combined_vec @@ (%s)
		ORDER BY rank DESC
		LIMIT @limit
	`, tsQuery, where, tsQuery)
	args["limit"] = opts.Limit

	rows, err := exec.Query(ctx, sql, args)
	if err != nil {
		return nil, searchErr("Search", err)
	}
	defer rows.Close()

	var out []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.SectionID, &h.Language, &h.RankScore, &h.Highlight); err != nil {
			return nil, searchErr("Search", err)
		}
		out = append(out, h)
	}
	return out, searchErrOrNil("Search", rows.Err())
}

// toTSQuery translates EmitLexicalQuery's store-native pseudo-syntax
// (plain_query(config,'text') / phrase_query(config,'text'), joined by
// && / || / prefixed by !!) into a real tsquery expression Postgres can
// execute: the leaf calls become plainto_tsquery/phraseto_tsquery against
// a properly quoted regconfig literal, while &&, ||, and !! pass through
// unchanged since they are themselves valid tsquery-combining operators.
// bareConfig must be the exact, unquoted config name that was passed to
// EmitLexicalQuery, so every leaf call's config argument is replaced.
func toTSQuery(lexicalQuery, bareConfig, quotedConfig string) string {
	q := strings.ReplaceAll(lexicalQuery, "plain_query("+bareConfig+",", "plainto_tsquery("+quotedConfig+",")
	q = strings.ReplaceAll(q, "phrase_query("+bareConfig+",", "phraseto_tsquery("+quotedConfig+",")
	return q
}

// searchCJK dispatches to PGroonga's native-script channel (spec.md's
// supplemented "CJK dual lexical channel") for queries whose script mix
// indicates Postgres' tsvector tokenization would under-segment.
func searchCJK(ctx context.Context, exec pg.Executor, language, queryText string, opts SearchOptions) ([]Hit, error) {
	where, args := buildSearchWhere(opts)
	args["language"] = language
	args["q"] = sanitizePGroongaQuery(queryText)

	sql := fmt.Sprintf(`
		SELECT lv.section_id, lv.language,
		       pgroonga_score(lv.tableoid, lv.ctid)::float4 AS raw_score,
		       left(coalesce(s.content, ''), 240) AS snippet
		FROM lexical_vectors lv
		JOIN sections s ON s.id = lv.section_id
		%s
		  AND lv.language = @language
		  AND lv.raw_content &@~ @q
		ORDER BY raw_score DESC
		LIMIT @limit
	`, where)
	args["limit"] = opts.Limit

	rows, err := exec.Query(ctx, sql, args)
	if err != nil {
		return nil, searchErr("searchCJK", err)
	}
	defer rows.Close()

	var out []Hit
	for rows.Next() {
		var h Hit
		var raw float32
		if err := rows.Scan(&h.SectionID, &h.Language, &raw, &h.Highlight); err != nil {
			return nil, searchErr("searchCJK", err)
		}
		h.RankScore = normalizePGroongaScore(raw, 1)
		out = append(out, h)
	}
	return out, searchErrOrNil("searchCJK", rows.Err())
}

func normalizePGroongaScore(raw, k float32) float32 {
	if raw <= 0 {
		return 0
	}
	if k <= 0 {
		k = 1
	}
	return raw / (raw + k)
}

func sanitizePGroongaQuery(q string) string {
	q = strings.TrimSpace(q)
	var b strings.Builder
	lastSpace := false
	for _, r := range q {
		if langscript.Classify(r) != langscript.ScriptOther || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(strings.Join(strings.Fields(b.String()), " "))
}

func buildSearchWhere(opts SearchOptions) (string, pgx.NamedArgs) {
	where := "WHERE lv.combined_vec IS NOT NULL"
	args := pgx.NamedArgs{}
	if len(opts.DocumentIDs) > 0 {
		where += " AND s.document_id = ANY(@document_ids::bigint[])"
		args["document_ids"] = opts.DocumentIDs
	}
	if len(opts.TagIDs) > 0 {
		where += ` AND EXISTS (
			SELECT 1 FROM section_tags st WHERE st.section_id = s.id AND st.tag_id = ANY(@tag_ids::bigint[])
		)`
		args["tag_ids"] = opts.TagIDs
	}
	if opts.DateFrom != nil && strings.TrimSpace(*opts.DateFrom) != "" {
		where += ` AND EXISTS (SELECT 1 FROM documents d WHERE d.id = s.document_id AND d.published_at >= @date_from)`
		args["date_from"] = *opts.DateFrom
	}
	if opts.DateTo != nil && strings.TrimSpace(*opts.DateTo) != "" {
		where += ` AND EXISTS (SELECT 1 FROM documents d WHERE d.id = s.document_id AND d.published_at <= @date_to)`
		args["date_to"] = *opts.DateTo
	}
	return where, args
}

func searchErrOrNil(op string, err error) error {
	if err == nil {
		return nil
	}
	return searchErr(op, err)
}
