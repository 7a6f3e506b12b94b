package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/devflow-qa/apiserver/types"
	"github.com/lib/pq"
)

// AnswerRepository handles persistence for answers and their votes.
type AnswerRepository struct {
	db *sql.DB
}

func NewAnswerRepository(db *sql.DB) *AnswerRepository {
	return &AnswerRepository{db: db}
}

const selectAnswer = `
	SELECT a.id, a.question_id, a.author_id, a.content, a.created_at, a.updated_at,
		(SELECT COUNT(*) FROM answer_votes v WHERE v.answer_id = a.id AND v.value = 1) AS upvote_count
	FROM answers a`

func answerOrder(sort types.AnswerSort) string {
	switch sort {
	case types.AnswerSortLowestUpvotes:
		return "upvote_count ASC, a.created_at DESC"
	case types.AnswerSortRecent:
		return "a.created_at DESC, a.id DESC"
	case types.AnswerSortOld:
		return "a.created_at ASC, a.id ASC"
	default:
		return "upvote_count DESC, a.created_at DESC"
	}
}

// ListByQuestion returns all answers under the question in the
// requested order, with authors and voter sets populated.
func (r *AnswerRepository) ListByQuestion(ctx context.Context, questionID int64, sort types.AnswerSort) ([]types.Answer, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM questions WHERE id = $1)`, questionID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := r.db.QueryContext(ctx,
		selectAnswer+" WHERE a.question_id = $1 ORDER BY "+answerOrder(sort), questionID)
	if err != nil {
		return nil, err
	}
	answers, err := scanAnswers(rows)
	if err != nil {
		return nil, err
	}

	if err := r.populate(ctx, answers, true, false); err != nil {
		return nil, err
	}
	return answers, nil
}

// Create inserts an answer under the question.
func (r *AnswerRepository) Create(ctx context.Context, questionID, authorID int64, content string) (types.Answer, error) {
	const query = `
		INSERT INTO answers (question_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`
	answer := types.Answer{
		QuestionID: questionID,
		AuthorID:   authorID,
		Content:    content,
	}
	if err := r.db.QueryRowContext(ctx, query, questionID, authorID, content).Scan(
		&answer.ID,
		&answer.CreatedAt,
		&answer.UpdatedAt,
	); err != nil {
		return types.Answer{}, translateError(err)
	}

	answers := []types.Answer{answer}
	if err := r.populate(ctx, answers, false, false); err != nil {
		return types.Answer{}, err
	}
	return answers[0], nil
}

// SetVote mirrors QuestionRepository.SetVote for answers.
func (r *AnswerRepository) SetVote(ctx context.Context, answerID, userID int64, value int) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM answers WHERE id = $1)`, answerID).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrNotFound
	}

	var prev int
	err = tx.QueryRowContext(ctx,
		`SELECT value FROM answer_votes WHERE answer_id = $1 AND user_id = $2 FOR UPDATE`,
		answerID, userID).Scan(&prev)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	if value == 0 {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM answer_votes WHERE answer_id = $1 AND user_id = $2`,
			answerID, userID)
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO answer_votes (answer_id, user_id, value)
			VALUES ($1, $2, $3)
			ON CONFLICT (answer_id, user_id) DO UPDATE SET value = EXCLUDED.value`,
			answerID, userID, value)
	}
	if err != nil {
		return 0, translateError(err)
	}

	return prev, tx.Commit()
}

// Author returns who wrote the answer. Used when deriving reputation
// deltas from votes.
func (r *AnswerRepository) Author(ctx context.Context, answerID int64) (int64, error) {
	var authorID int64
	err := r.db.QueryRowContext(ctx,
		`SELECT author_id FROM answers WHERE id = $1`, answerID).Scan(&authorID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return authorID, err
}

// ListByAuthor pages through one user's answers for the profile view,
// each with its author and parent question summary populated.
func (r *AnswerRepository) ListByAuthor(ctx context.Context, authorID int64, page Pagination) ([]types.Answer, bool, error) {
	rows, err := r.db.QueryContext(ctx,
		selectAnswer+` WHERE a.author_id = $1
		ORDER BY a.created_at DESC, upvote_count DESC
		LIMIT $2 OFFSET $3`,
		authorID, page.Limit(), page.Offset())
	if err != nil {
		return nil, false, err
	}
	answers, err := scanAnswers(rows)
	if err != nil {
		return nil, false, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM answers WHERE author_id = $1`, authorID).Scan(&total); err != nil {
		return nil, false, err
	}

	if err := r.populate(ctx, answers, true, true); err != nil {
		return nil, false, err
	}
	return answers, hasNextByCount(total, page.Offset(), len(answers)), nil
}

// CountByAuthor counts answers the user has written.
func (r *AnswerRepository) CountByAuthor(ctx context.Context, authorID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM answers WHERE author_id = $1`, authorID).Scan(&count)
	return count, err
}

// SumUpvotesByAuthor totals the up-votes received across all of the
// user's answers. Zero matching rows is zero, not an error.
func (r *AnswerRepository) SumUpvotesByAuthor(ctx context.Context, authorID int64) (int64, error) {
	const query = `
		SELECT COUNT(*)
		FROM answer_votes v
		JOIN answers a ON a.id = v.answer_id
		WHERE a.author_id = $1 AND v.value = 1`
	var total int64
	err := r.db.QueryRowContext(ctx, query, authorID).Scan(&total)
	return total, err
}

// populate expands authors and voter sets, and optionally the parent
// question summaries, over a batch of answers.
func (r *AnswerRepository) populate(ctx context.Context, answers []types.Answer, voters, questions bool) error {
	if len(answers) == 0 {
		return nil
	}

	ids := make([]int64, len(answers))
	authorIDs := make([]int64, 0, len(answers))
	seen := make(map[int64]bool, len(answers))
	byID := make(map[int64]*types.Answer, len(answers))
	for i := range answers {
		ids[i] = answers[i].ID
		byID[answers[i].ID] = &answers[i]
		if !seen[answers[i].AuthorID] {
			seen[answers[i].AuthorID] = true
			authorIDs = append(authorIDs, answers[i].AuthorID)
		}
	}

	refs, err := loadUserRefs(ctx, r.db, authorIDs)
	if err != nil {
		return err
	}
	for i := range answers {
		if ref, ok := refs[answers[i].AuthorID]; ok {
			author := ref
			answers[i].Author = &author
		}
	}

	if voters {
		if err := r.attachVoters(ctx, ids, byID); err != nil {
			return err
		}
	}
	if questions {
		if err := r.attachQuestionSummaries(ctx, answers); err != nil {
			return err
		}
	}
	return nil
}

func (r *AnswerRepository) attachVoters(ctx context.Context, ids []int64, byID map[int64]*types.Answer) error {
	const query = `
		SELECT v.answer_id, v.value, u.id, u.external_id, u.name, u.picture
		FROM answer_votes v
		JOIN users u ON u.id = v.user_id
		WHERE v.answer_id = ANY($1)
		ORDER BY v.answer_id, v.created_at`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var answerID int64
		var value int
		var ref types.UserRef
		if err := rows.Scan(&answerID, &value, &ref.ID, &ref.ExternalID, &ref.Name, &ref.Picture); err != nil {
			return err
		}
		answer, ok := byID[answerID]
		if !ok {
			continue
		}
		if value > 0 {
			answer.UpVoters = append(answer.UpVoters, ref)
		} else {
			answer.DownVoters = append(answer.DownVoters, ref)
		}
	}
	return rows.Err()
}

func (r *AnswerRepository) attachQuestionSummaries(ctx context.Context, answers []types.Answer) error {
	questionIDs := make([]int64, 0, len(answers))
	seen := make(map[int64]bool, len(answers))
	for i := range answers {
		if !seen[answers[i].QuestionID] {
			seen[answers[i].QuestionID] = true
			questionIDs = append(questionIDs, answers[i].QuestionID)
		}
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title FROM questions WHERE id = ANY($1)`, pq.Array(questionIDs))
	if err != nil {
		return err
	}
	defer rows.Close()

	summaries := make(map[int64]types.QuestionSummary, len(questionIDs))
	for rows.Next() {
		var summary types.QuestionSummary
		if err := rows.Scan(&summary.ID, &summary.Title); err != nil {
			return err
		}
		summaries[summary.ID] = summary
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range answers {
		if summary, ok := summaries[answers[i].QuestionID]; ok {
			s := summary
			answers[i].Question = &s
		}
	}
	return nil
}

func scanAnswers(rows *sql.Rows) ([]types.Answer, error) {
	defer rows.Close()

	var answers []types.Answer
	for rows.Next() {
		var answer types.Answer
		var upvoteCount int
		if err := rows.Scan(
			&answer.ID,
			&answer.QuestionID,
			&answer.AuthorID,
			&answer.Content,
			&answer.CreatedAt,
			&answer.UpdatedAt,
			&upvoteCount,
		); err != nil {
			return nil, err
		}
		answers = append(answers, answer)
	}
	return answers, rows.Err()
}
