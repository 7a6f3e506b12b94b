package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/devflow-qa/apiserver/types"
)

// QuestionRepository handles persistence for questions, their votes
// and their view counters.
type QuestionRepository struct {
	db *sql.DB
}

func NewQuestionRepository(db *sql.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// QuestionQuery describes a filtered, sorted page of questions.
type QuestionQuery struct {
	Search string
	Sort   types.QuestionSort
	Page   Pagination
}

// selectQuestion carries the computed answer and up-vote counts along
// with every row so sorts can order by them.
const selectQuestion = `
	SELECT q.id, q.author_id, q.title, q.content, q.views, q.created_at, q.updated_at,
		(SELECT COUNT(*) FROM answers a WHERE a.question_id = q.id) AS answer_count,
		(SELECT COUNT(*) FROM question_votes v WHERE v.question_id = q.id AND v.value = 1) AS upvote_count
	FROM questions q`

// likeEscaper neutralizes the LIKE metacharacters so a search term
// matches literally. Postgres treats backslash as the escape
// character by default.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// questionSearchConds builds the free-text filter: a case-insensitive
// substring match against title or content. argPos is the positional
// parameter number the search term will occupy.
func questionSearchConds(search string, argPos int) ([]string, []any) {
	search = strings.TrimSpace(search)
	if search == "" {
		return nil, nil
	}
	cond := fmt.Sprintf("(q.title ILIKE '%%' || $%d || '%%' OR q.content ILIKE '%%' || $%d || '%%')", argPos, argPos)
	return []string{cond}, []any{escapeLike(search)}
}

// questionOrder maps a sort key to its ORDER BY expression. Unanswered
// filters rather than sorts, so it shares the default ordering.
func questionOrder(sort types.QuestionSort) string {
	switch sort {
	case types.QuestionSortFrequent:
		return "q.views DESC, q.id DESC"
	case types.QuestionSortRecommended:
		return "upvote_count DESC, q.created_at DESC"
	default:
		return "q.created_at DESC, q.id DESC"
	}
}

// List returns one page of questions matching the query, fully
// populated, plus whether more matching rows exist beyond the window.
// Has-next-page uses the count strategy: a companion COUNT over the
// same filter.
func (r *QuestionRepository) List(ctx context.Context, query QuestionQuery) ([]types.Question, bool, error) {
	conds, args := questionSearchConds(query.Search, 1)
	if query.Sort == types.QuestionSortUnanswered {
		conds = append(conds, "NOT EXISTS (SELECT 1 FROM answers a WHERE a.question_id = q.id)")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	listQuery := fmt.Sprintf("%s%s ORDER BY %s LIMIT $%d OFFSET $%d",
		selectQuestion, where, questionOrder(query.Sort), len(args)+1, len(args)+2)
	listArgs := append(append([]any{}, args...), query.Page.Limit(), query.Page.Offset())

	rows, err := r.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, false, err
	}
	questions, err := scanQuestions(rows)
	if err != nil {
		return nil, false, err
	}

	countQuery := "SELECT COUNT(*) FROM questions q" + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, false, err
	}

	if err := populateQuestions(ctx, r.db, questions, populateAll()); err != nil {
		return nil, false, err
	}

	return questions, hasNextByCount(total, query.Page.Offset(), len(questions)), nil
}

// Get returns a single question with author, tags, voters and answers
// populated.
func (r *QuestionRepository) Get(ctx context.Context, id int64) (types.Question, error) {
	rows, err := r.db.QueryContext(ctx, selectQuestion+" WHERE q.id = $1", id)
	if err != nil {
		return types.Question{}, err
	}
	questions, err := scanQuestions(rows)
	if err != nil {
		return types.Question{}, err
	}
	if len(questions) == 0 {
		return types.Question{}, ErrNotFound
	}

	if err := populateQuestions(ctx, r.db, questions, populateAll()); err != nil {
		return types.Question{}, err
	}
	return questions[0], nil
}

// Create inserts the question and upserts its tags in one transaction,
// so a failure partway leaves nothing behind.
func (r *QuestionRepository) Create(ctx context.Context, authorID int64, title, content string, tagNames []string) (types.Question, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Question{}, err
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO questions (author_id, title, content)
		VALUES ($1, $2, $3)
		RETURNING id, views, created_at, updated_at`
	question := types.Question{
		AuthorID: authorID,
		Title:    title,
		Content:  content,
	}
	if err := tx.QueryRowContext(ctx, query, authorID, title, content).Scan(
		&question.ID,
		&question.Views,
		&question.CreatedAt,
		&question.UpdatedAt,
	); err != nil {
		return types.Question{}, translateError(err)
	}

	if _, err := upsertTags(ctx, tx, question.ID, tagNames); err != nil {
		return types.Question{}, err
	}

	if err := tx.Commit(); err != nil {
		return types.Question{}, err
	}

	questions := []types.Question{question}
	if err := populateQuestions(ctx, r.db, questions, populateOptions{authors: true, tags: true}); err != nil {
		return types.Question{}, err
	}
	return questions[0], nil
}

// Update edits title and content. Tags are immutable after creation.
func (r *QuestionRepository) Update(ctx context.Context, id int64, title, content string) (types.Question, error) {
	const query = `
		UPDATE questions
		SET title = $1,
			content = $2,
			updated_at = now()
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, title, content, id)
	if err != nil {
		return types.Question{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Question{}, err
	}
	if affected == 0 {
		return types.Question{}, ErrNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes the question. Answers, votes, tag links and saved
// references go with it through the schema's cascades, so no tag is
// left pointing at a dead question.
func (r *QuestionRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViews bumps the view counter by one.
func (r *QuestionRepository) IncrementViews(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE questions SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetVote records the user's vote on the question: +1, -1, or 0 to
// clear. A vote replaces any prior vote by the same user, so up- and
// down-vote states stay mutually exclusive. Returns the prior value so
// callers can derive reputation deltas.
func (r *QuestionRepository) SetVote(ctx context.Context, questionID, userID int64, value int) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM questions WHERE id = $1)`, questionID).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrNotFound
	}

	var prev int
	err = tx.QueryRowContext(ctx,
		`SELECT value FROM question_votes WHERE question_id = $1 AND user_id = $2 FOR UPDATE`,
		questionID, userID).Scan(&prev)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	if value == 0 {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM question_votes WHERE question_id = $1 AND user_id = $2`,
			questionID, userID)
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO question_votes (question_id, user_id, value)
			VALUES ($1, $2, $3)
			ON CONFLICT (question_id, user_id) DO UPDATE SET value = EXCLUDED.value`,
			questionID, userID, value)
	}
	if err != nil {
		return 0, translateError(err)
	}

	return prev, tx.Commit()
}

// Author returns who posted the question. Used when deriving
// reputation deltas from votes.
func (r *QuestionRepository) Author(ctx context.Context, id int64) (int64, error) {
	var authorID int64
	err := r.db.QueryRowContext(ctx,
		`SELECT author_id FROM questions WHERE id = $1`, id).Scan(&authorID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return authorID, err
}

// ListHot returns the top questions by views, up-vote count breaking
// ties.
func (r *QuestionRepository) ListHot(ctx context.Context, limit int) ([]types.QuestionSummary, error) {
	const query = `
		SELECT q.id, q.title
		FROM questions q
		LEFT JOIN (
			SELECT question_id, COUNT(*) AS upvotes
			FROM question_votes
			WHERE value = 1
			GROUP BY question_id
		) v ON v.question_id = q.id
		ORDER BY q.views DESC, COALESCE(v.upvotes, 0) DESC, q.id
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]types.QuestionSummary, 0, limit)
	for rows.Next() {
		var summary types.QuestionSummary
		if err := rows.Scan(&summary.ID, &summary.Title); err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// ListByAuthor pages through one user's questions for the profile
// view, authors and tags populated. Count-based has-next-page.
func (r *QuestionRepository) ListByAuthor(ctx context.Context, authorID int64, page Pagination) ([]types.Question, bool, error) {
	listQuery := selectQuestion + `
		WHERE q.author_id = $1
		ORDER BY q.created_at DESC, q.views DESC, upvote_count DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, listQuery, authorID, page.Limit(), page.Offset())
	if err != nil {
		return nil, false, err
	}
	questions, err := scanQuestions(rows)
	if err != nil {
		return nil, false, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM questions WHERE author_id = $1`, authorID).Scan(&total); err != nil {
		return nil, false, err
	}

	if err := populateQuestions(ctx, r.db, questions, populateOptions{authors: true, tags: true}); err != nil {
		return nil, false, err
	}
	return questions, hasNextByCount(total, page.Offset(), len(questions)), nil
}

// CountByAuthor counts questions the user has posted.
func (r *QuestionRepository) CountByAuthor(ctx context.Context, authorID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM questions WHERE author_id = $1`, authorID).Scan(&count)
	return count, err
}

// SumUpvotesByAuthor totals the up-votes received across all of the
// user's questions. Zero matching rows is zero, not an error.
func (r *QuestionRepository) SumUpvotesByAuthor(ctx context.Context, authorID int64) (int64, error) {
	const query = `
		SELECT COUNT(*)
		FROM question_votes v
		JOIN questions q ON q.id = v.question_id
		WHERE q.author_id = $1 AND v.value = 1`
	var total int64
	err := r.db.QueryRowContext(ctx, query, authorID).Scan(&total)
	return total, err
}

// SumViewsByAuthor totals the views across all of the user's
// questions.
func (r *QuestionRepository) SumViewsByAuthor(ctx context.Context, authorID int64) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(views), 0) FROM questions WHERE author_id = $1`, authorID).Scan(&total)
	return total, err
}

// scanQuestions drains rows produced by selectQuestion. The computed
// upvote_count column exists for ordering and is discarded here; voter
// sets come from population.
func scanQuestions(rows *sql.Rows) ([]types.Question, error) {
	defer rows.Close()

	var questions []types.Question
	for rows.Next() {
		var question types.Question
		var upvoteCount int
		if err := rows.Scan(
			&question.ID,
			&question.AuthorID,
			&question.Title,
			&question.Content,
			&question.Views,
			&question.CreatedAt,
			&question.UpdatedAt,
			&question.AnswerCount,
			&upvoteCount,
		); err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	return questions, rows.Err()
}
