package pg

import "context"

// NewSection is the caller-supplied shape for ReplaceSections: everything
// needed to insert one row, before ids exist.
type NewSection struct {
	SectionNumber int
	Title         string
	Content       string
}

// ReplaceSections deletes every existing Section for documentID and
// inserts the given ordered set, returning the new rows with their
// assigned ids. Embedding and LexicalVector rows for the old sections
// cascade-delete automatically (I4). Callers that also need the new
// section's embeddings and lexical vectors visible atomically with the
// replace (I5) must run ReplaceSections and those subsequent writes
// against the same pgx.Tx.
func ReplaceSections(ctx context.Context, exec Executor, documentID int64, sections []NewSection) ([]Section, error) {
	if exec == nil {
		return nil, validationErr("ReplaceSections", "executor is required")
	}
	if documentID <= 0 {
		return nil, validationErr("ReplaceSections", "documentID is required")
	}

	if _, err := exec.Exec(ctx, `DELETE FROM sections WHERE document_id = $1`, documentID); err != nil {
		return nil, dbErr("ReplaceSections", err)
	}

	out := make([]Section, 0, len(sections))
	for _, ns := range sections {
		var row Section
		err := exec.QueryRow(ctx, `
			INSERT INTO sections (document_id, section_number, title, content)
			VALUES ($1, $2, $3, $4)
			RETURNING id, document_id, section_number, coalesce(title, ''), content, created_at, updated_at
		`, documentID, ns.SectionNumber, ns.Title, ns.Content).Scan(
			&row.ID, &row.DocumentID, &row.SectionNumber, &row.Title, &row.Content, &row.CreatedAt, &row.UpdatedAt,
		)
		if err != nil {
			return nil, dbErr("ReplaceSections", err)
		}
		out = append(out, row)
	}
	return out, nil
}

// SectionsByDocument lists a document's sections in order.
func SectionsByDocument(ctx context.Context, exec Executor, documentID int64) ([]Section, error) {
	if exec == nil {
		return nil, validationErr("SectionsByDocument", "executor is required")
	}
	rows, err := exec.Query(ctx, `
		SELECT id, document_id, section_number, coalesce(title, ''), content, created_at, updated_at
		FROM sections WHERE document_id = $1 ORDER BY section_number ASC
	`, documentID)
	if err != nil {
		return nil, dbErr("SectionsByDocument", err)
	}
	defer rows.Close()

	var out []Section
	for rows.Next() {
		var s Section
		if err := rows.Scan(&s.ID, &s.DocumentID, &s.SectionNumber, &s.Title, &s.Content, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, dbErr("SectionsByDocument", err)
		}
		out = append(out, s)
	}
	return out, dbErrOrNil("SectionsByDocument", rows.Err())
}

// SectionsByIDs fetches sections by id, in no particular order — callers
// that need a specific order (e.g. a fused rank list) re-order by id
// themselves.
func SectionsByIDs(ctx context.Context, exec Executor, ids []int64) ([]Section, error) {
	if exec == nil {
		return nil, validationErr("SectionsByIDs", "executor is required")
	}
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := exec.Query(ctx, `
		SELECT id, document_id, section_number, coalesce(title, ''), content, created_at, updated_at
		FROM sections WHERE id = ANY($1::bigint[])
	`, ids)
	if err != nil {
		return nil, dbErr("SectionsByIDs", err)
	}
	defer rows.Close()

	var out []Section
	for rows.Next() {
		var s Section
		if err := rows.Scan(&s.ID, &s.DocumentID, &s.SectionNumber, &s.Title, &s.Content, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, dbErr("SectionsByIDs", err)
		}
		out = append(out, s)
	}
	return out, dbErrOrNil("SectionsByIDs", rows.Err())
}

// SectionsMissingEmbeddings lists sections with no embedding row, oldest
// first, for the background backfill loop (spec.md §5 supplemented
// "background embedding/lexical backfill").
func SectionsMissingEmbeddings(ctx context.Context, exec Executor, limit int) ([]Section, error) {
	if exec == nil {
		return nil, validationErr("SectionsMissingEmbeddings", "executor is required")
	}
	if limit <= 0 {
		limit = 250
	}
	rows, err := exec.Query(ctx, `
		SELECT s.id, s.document_id, s.section_number, coalesce(s.title, ''), s.content, s.created_at, s.updated_at
		FROM sections s
		WHERE NOT EXISTS (SELECT 1 FROM embeddings e WHERE e.section_id = s.id)
		ORDER BY s.created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, dbErr("SectionsMissingEmbeddings", err)
	}
	defer rows.Close()

	var out []Section
	for rows.Next() {
		var s Section
		if err := rows.Scan(&s.ID, &s.DocumentID, &s.SectionNumber, &s.Title, &s.Content, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, dbErr("SectionsMissingEmbeddings", err)
		}
		out = append(out, s)
	}
	return out, dbErrOrNil("SectionsMissingEmbeddings", rows.Err())
}

func dbErrOrNil(op string, err error) error {
	if err == nil {
		return nil
	}
	return dbErr(op, err)
}
