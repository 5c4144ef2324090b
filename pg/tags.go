package pg

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
)

// UpsertTag creates a tag by name or returns the existing row's id.
func UpsertTag(ctx context.Context, exec Executor, name string, parentID *int64) (int64, error) {
	if exec == nil {
		return 0, validationErr("UpsertTag", "executor is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, validationErr("UpsertTag", "name is required")
	}
	var id int64
	err := exec.QueryRow(ctx, `
		INSERT INTO tags (name, parent_id) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name, parentID).Scan(&id)
	if err != nil {
		return 0, dbErr("UpsertTag", err)
	}
	return id, nil
}

// MoveTag reparents a tag, rejecting any move that would introduce a
// cycle in the tag forest (a tag cannot become its own ancestor).
func MoveTag(ctx context.Context, exec Executor, tagID int64, newParentID *int64) error {
	if exec == nil {
		return validationErr("MoveTag", "executor is required")
	}
	if newParentID != nil {
		if *newParentID == tagID {
			return validationErr("MoveTag", "a tag cannot be its own parent")
		}
		ancestors, err := tagAncestorIDs(ctx, exec, *newParentID)
		if err != nil {
			return err
		}
		for _, a := range ancestors {
			if a == tagID {
				return validationErr("MoveTag", "move would introduce a cycle")
			}
		}
	}
	ct, err := exec.Exec(ctx, `UPDATE tags SET parent_id = $1 WHERE id = $2`, newParentID, tagID)
	if err != nil {
		return dbErr("MoveTag", err)
	}
	if ct.RowsAffected() == 0 {
		return notFoundErr("MoveTag", nil)
	}
	return nil
}

func tagAncestorIDs(ctx context.Context, exec Executor, tagID int64) ([]int64, error) {
	var out []int64
	cur := tagID
	for i := 0; i < 1000; i++ {
		var parent *int64
		err := exec.QueryRow(ctx, `SELECT parent_id FROM tags WHERE id = $1`, cur).Scan(&parent)
		if err != nil {
			if err == pgx.ErrNoRows {
				return out, nil
			}
			return nil, dbErr("tagAncestorIDs", err)
		}
		if parent == nil {
			return out, nil
		}
		out = append(out, *parent)
		cur = *parent
	}
	return out, dbErr("tagAncestorIDs", pgx.ErrTxClosed)
}

// LinkSectionTag attaches a tag to a section, idempotently.
func LinkSectionTag(ctx context.Context, exec Executor, sectionID, tagID int64) error {
	if exec == nil {
		return validationErr("LinkSectionTag", "executor is required")
	}
	_, err := exec.Exec(ctx, `
		INSERT INTO section_tags (section_id, tag_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, sectionID, tagID)
	if err != nil {
		return dbErr("LinkSectionTag", err)
	}
	return nil
}

// TagPath materializes the " > "-joined ancestor path for a tag, per
// spec.md §6's "tag path separator" bit-exact format.
func TagPath(ctx context.Context, exec Executor, tagID int64) (string, error) {
	if exec == nil {
		return "", validationErr("TagPath", "executor is required")
	}
	var name string
	if err := exec.QueryRow(ctx, `SELECT name FROM tags WHERE id = $1`, tagID).Scan(&name); err != nil {
		if err == pgx.ErrNoRows {
			return "", notFoundErr("TagPath", err)
		}
		return "", dbErr("TagPath", err)
	}
	ancestors, err := tagAncestorIDs(ctx, exec, tagID)
	if err != nil {
		return "", err
	}
	parts := []string{name}
	for i := 0; i < len(ancestors); i++ {
		var aname string
		if err := exec.QueryRow(ctx, `SELECT name FROM tags WHERE id = $1`, ancestors[i]).Scan(&aname); err != nil {
			return "", dbErr("TagPath", err)
		}
		parts = append([]string{aname}, parts...)
	}
	return strings.Join(parts, " > "), nil
}
