package pg

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jackc/pgx/v5"
)

// UpsertDocumentByURL creates a Document or updates the existing row with
// the same URL, per spec.md §3 ("Created by ingestion; mutated only by
// re-ingest of the same URL"). Returns the document id.
func UpsertDocumentByURL(ctx context.Context, exec Executor, d Document) (int64, error) {
	if exec == nil {
		return 0, validationErr("UpsertDocumentByURL", "executor is required")
	}
	if strings.TrimSpace(d.URL) == "" {
		return 0, validationErr("UpsertDocumentByURL", "url is required")
	}
	if strings.TrimSpace(d.Title) == "" {
		return 0, validationErr("UpsertDocumentByURL", "title is required")
	}
	meta, err := json.Marshal(d.Metadata)
	if err != nil {
		return 0, validationErr("UpsertDocumentByURL", "metadata must be JSON-serializable")
	}

	language := strings.ToLower(strings.TrimSpace(d.Language))
	if language == "" {
		language = "en"
	}

	var id int64
	err2 := exec.QueryRow(ctx, `
		INSERT INTO documents (title, url, author, published_at, language, description, download_state, metadata)
		VALUES (@title, @url, @author, @published_at, @language, @description, @download_state, @metadata)
		ON CONFLICT (url) DO UPDATE SET
			title          = EXCLUDED.title,
			author         = EXCLUDED.author,
			published_at   = EXCLUDED.published_at,
			language       = EXCLUDED.language,
			description    = EXCLUDED.description,
			download_state = EXCLUDED.download_state,
			metadata       = EXCLUDED.metadata,
			updated_at     = now()
		RETURNING id
	`, pgx.NamedArgs{
		"title":          d.Title,
		"url":            d.URL,
		"author":         d.Author,
		"published_at":   d.PublishedAt,
		"language":       language,
		"description":    d.Description,
		"download_state": int(d.DownloadState),
		"metadata":       meta,
	}).Scan(&id)
	if err2 != nil {
		return 0, dbErr("UpsertDocumentByURL", err2)
	}
	return id, nil
}

// SetDocumentDownloadState transitions a document's ingestion lifecycle
// state (spec.md §4.7 step 2/8).
func SetDocumentDownloadState(ctx context.Context, exec Executor, documentID int64, state DownloadState) error {
	if exec == nil {
		return validationErr("SetDocumentDownloadState", "executor is required")
	}
	ct, err := exec.Exec(ctx, `
		UPDATE documents SET download_state = $1, updated_at = now() WHERE id = $2
	`, int(state), documentID)
	if err != nil {
		return dbErr("SetDocumentDownloadState", err)
	}
	if ct.RowsAffected() == 0 {
		return notFoundErr("SetDocumentDownloadState", nil)
	}
	return nil
}

// GetDocument fetches a Document by id.
func GetDocument(ctx context.Context, exec Executor, id int64) (*Document, error) {
	if exec == nil {
		return nil, validationErr("GetDocument", "executor is required")
	}
	var d Document
	var metaRaw []byte
	var state int
	err := exec.QueryRow(ctx, `
		SELECT id, title, coalesce(url, ''), coalesce(author, ''), published_at,
		       language, coalesce(description, ''), download_state, metadata, created_at, updated_at
		FROM documents WHERE id = $1
	`, id).Scan(&d.ID, &d.Title, &d.URL, &d.Author, &d.PublishedAt, &d.Language, &d.Description, &state, &metaRaw, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, notFoundErr("GetDocument", err)
		}
		return nil, dbErr("GetDocument", err)
	}
	d.DownloadState = DownloadState(state)
	if len(metaRaw) > 0 {
		if err := json.Unmarshal(metaRaw, &d.Metadata); err != nil {
			return nil, dbErr("GetDocument", err)
		}
	}
	return &d, nil
}

// DocumentsByIDs fetches documents by id, keyed by id, for bulk enrichment
// of search results (spec.md §4.8 step 6).
func DocumentsByIDs(ctx context.Context, exec Executor, ids []int64) (map[int64]Document, error) {
	if exec == nil {
		return nil, validationErr("DocumentsByIDs", "executor is required")
	}
	out := make(map[int64]Document)
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := exec.Query(ctx, `
		SELECT id, title, coalesce(url, ''), coalesce(author, ''), published_at,
		       language, coalesce(description, ''), download_state, metadata, created_at, updated_at
		FROM documents WHERE id = ANY($1::bigint[])
	`, ids)
	if err != nil {
		return nil, dbErr("DocumentsByIDs", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d Document
		var metaRaw []byte
		var state int
		if err := rows.Scan(&d.ID, &d.Title, &d.URL, &d.Author, &d.PublishedAt, &d.Language, &d.Description, &state, &metaRaw, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, dbErr("DocumentsByIDs", err)
		}
		d.DownloadState = DownloadState(state)
		if len(metaRaw) > 0 {
			if err := json.Unmarshal(metaRaw, &d.Metadata); err != nil {
				return nil, dbErr("DocumentsByIDs", err)
			}
		}
		out[d.ID] = d
	}
	return out, dbErrOrNil("DocumentsByIDs", rows.Err())
}

// DeleteDocument removes a document; sections, embeddings, and lexical
// vectors cascade per spec.md §3.
func DeleteDocument(ctx context.Context, exec Executor, id int64) error {
	if exec == nil {
		return validationErr("DeleteDocument", "executor is required")
	}
	ct, err := exec.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return dbErr("DeleteDocument", err)
	}
	if ct.RowsAffected() == 0 {
		return notFoundErr("DeleteDocument", nil)
	}
	return nil
}
