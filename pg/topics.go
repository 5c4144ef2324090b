package pg

import (
	"context"
	"strings"
)

// CreateTopic inserts a ResearchTopic.
func CreateTopic(ctx context.Context, exec Executor, name, description string) (int64, error) {
	if exec == nil {
		return 0, validationErr("CreateTopic", "executor is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, validationErr("CreateTopic", "name is required")
	}
	var id int64
	err := exec.QueryRow(ctx, `
		INSERT INTO research_topics (name, description) VALUES ($1, $2)
		RETURNING id
	`, name, description).Scan(&id)
	if err != nil {
		return 0, dbErr("CreateTopic", err)
	}
	return id, nil
}

// UpdateTopic updates a ResearchTopic's name/description.
func UpdateTopic(ctx context.Context, exec Executor, id int64, name, description string) error {
	if exec == nil {
		return validationErr("UpdateTopic", "executor is required")
	}
	ct, err := exec.Exec(ctx, `
		UPDATE research_topics SET name = $1, description = $2 WHERE id = $3
	`, name, description, id)
	if err != nil {
		return dbErr("UpdateTopic", err)
	}
	if ct.RowsAffected() == 0 {
		return notFoundErr("UpdateTopic", nil)
	}
	return nil
}

// DeleteTopic removes a ResearchTopic; join rows cascade.
func DeleteTopic(ctx context.Context, exec Executor, id int64) error {
	if exec == nil {
		return validationErr("DeleteTopic", "executor is required")
	}
	ct, err := exec.Exec(ctx, `DELETE FROM research_topics WHERE id = $1`, id)
	if err != nil {
		return dbErr("DeleteTopic", err)
	}
	if ct.RowsAffected() == 0 {
		return notFoundErr("DeleteTopic", nil)
	}
	return nil
}

// ListTopics returns every ResearchTopic ordered by name.
func ListTopics(ctx context.Context, exec Executor) ([]ResearchTopic, error) {
	if exec == nil {
		return nil, validationErr("ListTopics", "executor is required")
	}
	rows, err := exec.Query(ctx, `SELECT id, name, coalesce(description, '') FROM research_topics ORDER BY name ASC`)
	if err != nil {
		return nil, dbErr("ListTopics", err)
	}
	defer rows.Close()
	var out []ResearchTopic
	for rows.Next() {
		var t ResearchTopic
		if err := rows.Scan(&t.ID, &t.Name, &t.Description); err != nil {
			return nil, dbErr("ListTopics", err)
		}
		out = append(out, t)
	}
	return out, dbErrOrNil("ListTopics", rows.Err())
}

// AddSectionToTopic links a section into a topic.
func AddSectionToTopic(ctx context.Context, exec Executor, topicID, sectionID int64) error {
	if exec == nil {
		return validationErr("AddSectionToTopic", "executor is required")
	}
	_, err := exec.Exec(ctx, `
		INSERT INTO research_topic_sections (topic_id, section_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, topicID, sectionID)
	if err != nil {
		return dbErr("AddSectionToTopic", err)
	}
	return nil
}

// RemoveSectionFromTopic unlinks a section from a topic.
func RemoveSectionFromTopic(ctx context.Context, exec Executor, topicID, sectionID int64) error {
	if exec == nil {
		return validationErr("RemoveSectionFromTopic", "executor is required")
	}
	_, err := exec.Exec(ctx, `
		DELETE FROM research_topic_sections WHERE topic_id = $1 AND section_id = $2
	`, topicID, sectionID)
	if err != nil {
		return dbErr("RemoveSectionFromTopic", err)
	}
	return nil
}

// RecommendTopics suggests topics for a section based on shared tags,
// ranked by the number of the section's tags each topic is linked to.
func RecommendTopics(ctx context.Context, exec Executor, sectionID int64, limit int) ([]ResearchTopic, error) {
	if exec == nil {
		return nil, validationErr("RecommendTopics", "executor is required")
	}
	if limit <= 0 {
		limit = 5
	}
	rows, err := exec.Query(ctx, `
		SELECT rt.id, rt.name, coalesce(rt.description, ''), count(*) AS overlap
		FROM research_topic_tags rtt
		JOIN research_topics rt ON rt.id = rtt.topic_id
		JOIN section_tags st ON st.tag_id = rtt.tag_id
		WHERE st.section_id = $1
		GROUP BY rt.id, rt.name, rt.description
		ORDER BY overlap DESC, rt.name ASC
		LIMIT $2
	`, sectionID, limit)
	if err != nil {
		return nil, dbErr("RecommendTopics", err)
	}
	defer rows.Close()
	var out []ResearchTopic
	for rows.Next() {
		var t ResearchTopic
		var overlap int
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &overlap); err != nil {
			return nil, dbErr("RecommendTopics", err)
		}
		out = append(out, t)
	}
	return out, dbErrOrNil("RecommendTopics", rows.Err())
}
