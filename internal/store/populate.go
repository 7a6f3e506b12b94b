package store

import (
	"context"
	"database/sql"

	"github.com/devflow-qa/apiserver/types"
	"github.com/lib/pq"
)

// populateOptions selects which question relations get expanded.
// Listings differ in fan-out: the home listing wants everything, the
// tag view only authors and tags, profile tabs only authors and tags.
type populateOptions struct {
	authors bool
	tags    bool
	voters  bool
	answers bool
}

func populateAll() populateOptions {
	return populateOptions{authors: true, tags: true, voters: true, answers: true}
}

// populateQuestions expands reference fields on the given questions
// in place, one batched query per relation kind.
func populateQuestions(ctx context.Context, db *sql.DB, questions []types.Question, opts populateOptions) error {
	if len(questions) == 0 {
		return nil
	}

	ids := make([]int64, len(questions))
	byID := make(map[int64]*types.Question, len(questions))
	for i := range questions {
		ids[i] = questions[i].ID
		byID[questions[i].ID] = &questions[i]
	}

	if opts.authors {
		if err := attachQuestionAuthors(ctx, db, questions); err != nil {
			return err
		}
	}
	if opts.tags {
		if err := attachQuestionTags(ctx, db, ids, byID); err != nil {
			return err
		}
	}
	if opts.voters {
		if err := attachQuestionVoters(ctx, db, ids, byID); err != nil {
			return err
		}
	}
	if opts.answers {
		if err := attachQuestionAnswers(ctx, db, ids, byID); err != nil {
			return err
		}
	}
	return nil
}

func attachQuestionAuthors(ctx context.Context, db *sql.DB, questions []types.Question) error {
	authorIDs := make([]int64, 0, len(questions))
	seen := make(map[int64]bool, len(questions))
	for i := range questions {
		if !seen[questions[i].AuthorID] {
			seen[questions[i].AuthorID] = true
			authorIDs = append(authorIDs, questions[i].AuthorID)
		}
	}

	refs, err := loadUserRefs(ctx, db, authorIDs)
	if err != nil {
		return err
	}
	for i := range questions {
		if ref, ok := refs[questions[i].AuthorID]; ok {
			author := ref
			questions[i].Author = &author
		}
	}
	return nil
}

// loadUserRefs fetches the projected author subset for the given user
// ids, keyed by id.
func loadUserRefs(ctx context.Context, db *sql.DB, userIDs []int64) (map[int64]types.UserRef, error) {
	if len(userIDs) == 0 {
		return map[int64]types.UserRef{}, nil
	}

	const query = `
		SELECT id, external_id, name, picture
		FROM users
		WHERE id = ANY($1)`
	rows, err := db.QueryContext(ctx, query, pq.Array(userIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := make(map[int64]types.UserRef, len(userIDs))
	for rows.Next() {
		var ref types.UserRef
		if err := rows.Scan(&ref.ID, &ref.ExternalID, &ref.Name, &ref.Picture); err != nil {
			return nil, err
		}
		refs[ref.ID] = ref
	}
	return refs, rows.Err()
}

func attachQuestionTags(ctx context.Context, db *sql.DB, ids []int64, byID map[int64]*types.Question) error {
	const query = `
		SELECT qt.question_id, t.id, t.name
		FROM question_tags qt
		JOIN tags t ON t.id = qt.tag_id
		WHERE qt.question_id = ANY($1)
		ORDER BY qt.question_id, qt.position`
	rows, err := db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var questionID int64
		var ref types.TagRef
		if err := rows.Scan(&questionID, &ref.ID, &ref.Name); err != nil {
			return err
		}
		if q, ok := byID[questionID]; ok {
			q.Tags = append(q.Tags, ref)
		}
	}
	return rows.Err()
}

func attachQuestionVoters(ctx context.Context, db *sql.DB, ids []int64, byID map[int64]*types.Question) error {
	const query = `
		SELECT v.question_id, v.value, u.id, u.external_id, u.name, u.picture
		FROM question_votes v
		JOIN users u ON u.id = v.user_id
		WHERE v.question_id = ANY($1)
		ORDER BY v.question_id, v.created_at`
	rows, err := db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var questionID int64
		var value int
		var ref types.UserRef
		if err := rows.Scan(&questionID, &value, &ref.ID, &ref.ExternalID, &ref.Name, &ref.Picture); err != nil {
			return err
		}
		q, ok := byID[questionID]
		if !ok {
			continue
		}
		if value > 0 {
			q.UpVoters = append(q.UpVoters, ref)
		} else {
			q.DownVoters = append(q.DownVoters, ref)
		}
	}
	return rows.Err()
}

func attachQuestionAnswers(ctx context.Context, db *sql.DB, ids []int64, byID map[int64]*types.Question) error {
	const query = `
		SELECT a.id, a.question_id, a.author_id, a.content, a.created_at, a.updated_at
		FROM answers a
		WHERE a.question_id = ANY($1)
		ORDER BY a.question_id, a.created_at`
	rows, err := db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var answer types.Answer
		if err := rows.Scan(
			&answer.ID,
			&answer.QuestionID,
			&answer.AuthorID,
			&answer.Content,
			&answer.CreatedAt,
			&answer.UpdatedAt,
		); err != nil {
			return err
		}
		if q, ok := byID[answer.QuestionID]; ok {
			q.Answers = append(q.Answers, answer)
		}
	}
	return rows.Err()
}
