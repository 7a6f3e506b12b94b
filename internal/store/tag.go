package store

import (
	"context"
	"database/sql"

	"github.com/devflow-qa/apiserver/types"
)

// TagRepository handles persistence for tags, their question links and
// their followers.
type TagRepository struct {
	db *sql.DB
}

func NewTagRepository(db *sql.DB) *TagRepository {
	return &TagRepository{db: db}
}

const selectTag = `
	SELECT t.id, t.name, t.description, t.created_at,
		(SELECT COUNT(*) FROM question_tags qt WHERE qt.tag_id = t.id) AS question_count,
		(SELECT COUNT(*) FROM tag_followers tf WHERE tf.tag_id = t.id) AS follower_count
	FROM tags t`

// List returns one page of tags with their question and follower
// counts, newest first. Count-based has-next-page.
func (r *TagRepository) List(ctx context.Context, page Pagination) ([]types.Tag, bool, error) {
	rows, err := r.db.QueryContext(ctx,
		selectTag+" ORDER BY t.created_at DESC, t.id DESC LIMIT $1 OFFSET $2",
		page.Limit(), page.Offset())
	if err != nil {
		return nil, false, err
	}
	tags, err := scanTags(rows)
	if err != nil {
		return nil, false, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags`).Scan(&total); err != nil {
		return nil, false, err
	}
	return tags, hasNextByCount(total, page.Offset(), len(tags)), nil
}

func (r *TagRepository) Get(ctx context.Context, id int64) (types.Tag, error) {
	rows, err := r.db.QueryContext(ctx, selectTag+" WHERE t.id = $1", id)
	if err != nil {
		return types.Tag{}, err
	}
	tags, err := scanTags(rows)
	if err != nil {
		return types.Tag{}, err
	}
	if len(tags) == 0 {
		return types.Tag{}, ErrNotFound
	}
	return tags[0], nil
}

// QuestionsForTag returns the questions carrying the tag, each with
// its own author and tags populated in turn (two levels deep).
func (r *TagRepository) QuestionsForTag(ctx context.Context, tagID int64) ([]types.Question, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tags WHERE id = $1)`, tagID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	query := selectQuestion + `
		JOIN question_tags qt ON qt.question_id = q.id
		WHERE qt.tag_id = $1
		ORDER BY q.created_at DESC, q.id DESC`
	rows, err := r.db.QueryContext(ctx, query, tagID)
	if err != nil {
		return nil, err
	}
	questions, err := scanQuestions(rows)
	if err != nil {
		return nil, err
	}

	if err := populateQuestions(ctx, r.db, questions, populateOptions{authors: true, tags: true}); err != nil {
		return nil, err
	}
	return questions, nil
}

// Follow adds the user to the tag's follower set. Following a tag
// twice is a no-op.
func (r *TagRepository) Follow(ctx context.Context, tagID, userID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tag_followers (tag_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		tagID, userID)
	return translateError(err)
}

func (r *TagRepository) Unfollow(ctx context.Context, tagID, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM tag_followers WHERE tag_id = $1 AND user_id = $2`, tagID, userID)
	return err
}

// upsertTags finds or creates a tag per name, case-insensitively, and
// links the question to it. Each name resolves in a single atomic
// statement, so two concurrent requests with the same name in
// different casings converge on one tag. Returns the tag ids in input
// order. Runs on the question-create transaction.
func upsertTags(ctx context.Context, tx *sql.Tx, questionID int64, names []string) ([]int64, error) {
	// The no-op DO UPDATE makes RETURNING yield the id on conflict too.
	const upsertQuery = `
		INSERT INTO tags (name)
		VALUES ($1)
		ON CONFLICT (lower(name)) DO UPDATE SET name = tags.name
		RETURNING id`

	// ON CONFLICT DO NOTHING guards against appending the same
	// question to a tag twice.
	const linkQuery = `
		INSERT INTO question_tags (question_id, tag_id, position)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`

	ids := make([]int64, 0, len(names))
	for position, name := range names {
		var tagID int64
		if err := tx.QueryRowContext(ctx, upsertQuery, name).Scan(&tagID); err != nil {
			return nil, translateError(err)
		}
		if _, err := tx.ExecContext(ctx, linkQuery, questionID, tagID, position); err != nil {
			return nil, translateError(err)
		}
		ids = append(ids, tagID)
	}
	return ids, nil
}

func scanTags(rows *sql.Rows) ([]types.Tag, error) {
	defer rows.Close()

	var tags []types.Tag
	for rows.Next() {
		var tag types.Tag
		if err := rows.Scan(
			&tag.ID,
			&tag.Name,
			&tag.Description,
			&tag.CreatedAt,
			&tag.QuestionCount,
			&tag.FollowerCount,
		); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []types.Tag{}
	}
	return tags, nil
}
