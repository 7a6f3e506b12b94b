package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/devflow-qa/apiserver/types"
)

// UserRepository handles persistence for users and their saved
// questions.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const selectUser = `
	SELECT id, external_id, name, username, email, picture, bio, portfolio,
		location, reputation, password_hash, joined_at, updated_at
	FROM users`

// UserQuery describes a filtered, sorted page of users.
type UserQuery struct {
	Search string
	Sort   types.UserSort
	Page   Pagination
}

// userSearchConds builds the free-text filter: a case-insensitive
// substring match against name, username, location or bio.
func userSearchConds(search string) ([]string, []any) {
	search = strings.TrimSpace(search)
	if search == "" {
		return nil, nil
	}
	cond := `(name ILIKE '%' || $1 || '%'
		OR username ILIKE '%' || $1 || '%'
		OR location ILIKE '%' || $1 || '%'
		OR bio ILIKE '%' || $1 || '%')`
	return []string{cond}, []any{escapeLike(search)}
}

func userOrder(sort types.UserSort) string {
	switch sort {
	case types.UserSortOldUsers:
		return "joined_at ASC, id ASC"
	case types.UserSortTopContributors:
		return "reputation DESC, id"
	default:
		return "joined_at DESC, id DESC"
	}
}

// List returns one page of users matching the query plus whether more
// matching rows exist. Count-based has-next-page.
func (r *UserRepository) List(ctx context.Context, query UserQuery) ([]types.User, bool, error) {
	conds, args := userSearchConds(query.Search)

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	listQuery := fmt.Sprintf("%s%s ORDER BY %s LIMIT $%d OFFSET $%d",
		selectUser, where, userOrder(query.Sort), len(args)+1, len(args)+2)
	listArgs := append(append([]any{}, args...), query.Page.Limit(), query.Page.Offset())

	rows, err := r.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, false, err
	}
	users, err := scanUsers(rows)
	if err != nil {
		return nil, false, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users"+where, args...).Scan(&total); err != nil {
		return nil, false, err
	}
	return users, hasNextByCount(total, query.Page.Offset(), len(users)), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (types.User, error) {
	return r.getOne(ctx, selectUser+" WHERE id = $1", id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return r.getOne(ctx, selectUser+" WHERE username = $1", username)
}

func (r *UserRepository) GetByExternalID(ctx context.Context, externalID string) (types.User, error) {
	return r.getOne(ctx, selectUser+" WHERE external_id = $1 AND external_id <> ''", externalID)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (types.User, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return types.User{}, err
	}
	users, err := scanUsers(rows)
	if err != nil {
		return types.User{}, err
	}
	if len(users) == 0 {
		return types.User{}, ErrNotFound
	}
	return users[0], nil
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	const query = `
		INSERT INTO users (external_id, name, username, email, picture, bio, portfolio, location, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, reputation, joined_at, updated_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.ExternalID,
		user.Name,
		user.Username,
		user.Email,
		user.Picture,
		user.Bio,
		user.Portfolio,
		user.Location,
		user.PasswordHash,
	).Scan(&user.ID, &user.Reputation, &user.JoinedAt, &user.UpdatedAt); err != nil {
		return types.User{}, translateError(err)
	}
	return user, nil
}

// UpsertByExternalID creates or refreshes the account the identity
// provider announced. The single-statement upsert keeps concurrent
// webhook deliveries for the same subject from racing.
func (r *UserRepository) UpsertByExternalID(ctx context.Context, user types.User) (types.User, error) {
	const query = `
		INSERT INTO users (external_id, name, username, email, picture)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (external_id) WHERE external_id <> '' DO UPDATE
		SET name = EXCLUDED.name,
			username = EXCLUDED.username,
			email = EXCLUDED.email,
			picture = EXCLUDED.picture,
			updated_at = now()
		RETURNING id, reputation, joined_at, updated_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.ExternalID,
		user.Name,
		user.Username,
		user.Email,
		user.Picture,
	).Scan(&user.ID, &user.Reputation, &user.JoinedAt, &user.UpdatedAt); err != nil {
		return types.User{}, translateError(err)
	}
	return user, nil
}

// Update edits the profile fields a user may change themselves.
func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	const query = `
		UPDATE users
		SET name = $1,
			username = $2,
			bio = $3,
			portfolio = $4,
			location = $5,
			updated_at = now()
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		user.Name,
		user.Username,
		user.Bio,
		user.Portfolio,
		user.Location,
		user.ID,
	)
	if err != nil {
		return types.User{}, translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.User{}, err
	}
	if affected == 0 {
		return types.User{}, ErrNotFound
	}
	return r.GetByID(ctx, user.ID)
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
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

func (r *UserRepository) DeleteByExternalID(ctx context.Context, externalID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE external_id = $1 AND external_id <> ''`, externalID)
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

// ApplyReputationDeltas adjusts two accounts' reputation in a single
// statement, so a redelivered event can never land one delta without
// the other. Rows missing from users (deleted accounts) are skipped.
func (r *UserRepository) ApplyReputationDeltas(ctx context.Context, authorID int64, authorDelta int, voterID int64, voterDelta int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET reputation = reputation + CASE id WHEN $1 THEN $2::int ELSE $4::int END,
		    updated_at = now()
		WHERE id IN ($1, $3)`,
		authorID, authorDelta, voterID, voterDelta)
	return err
}

// SetPicture points the user's avatar at a new object-storage key.
func (r *UserRepository) SetPicture(ctx context.Context, id int64, picture string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET picture = $1, updated_at = now() WHERE id = $2`,
		picture, id)
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

// SaveQuestion adds the question to the user's saved set. Saving twice
// is a no-op.
func (r *UserRepository) SaveQuestion(ctx context.Context, userID, questionID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO saved_questions (user_id, question_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		userID, questionID)
	return translateError(err)
}

func (r *UserRepository) UnsaveQuestion(ctx context.Context, userID, questionID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM saved_questions WHERE user_id = $1 AND question_id = $2`,
		userID, questionID)
	return err
}

// SavedQuery describes a filtered, sorted page over one user's saved
// questions.
type SavedQuery struct {
	Search string
	Sort   types.SavedSort
	Page   Pagination
}

func savedOrder(sort types.SavedSort) string {
	switch sort {
	case types.SavedSortOldest:
		return "q.created_at ASC, q.id ASC"
	case types.SavedSortMostViewed:
		return "q.views DESC, q.id DESC"
	case types.SavedSortHighestUpvotes:
		return "upvote_count DESC, q.created_at DESC"
	case types.SavedSortLowestUpvotes:
		return "upvote_count ASC, q.created_at DESC"
	default:
		return "q.created_at DESC, q.id DESC"
	}
}

// ListSaved pages through the user's saved questions. The search, sort
// and page window apply to the saved subset, not the user row, and
// every returned question is fully populated. Has-next-page uses the
// over-fetch strategy: one extra row is requested, and a full
// over-read means another page exists.
func (r *UserRepository) ListSaved(ctx context.Context, userID int64, query SavedQuery) ([]types.Question, bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, ErrNotFound
	}

	conds := []string{"sq.user_id = $1"}
	args := []any{userID}
	searchConds, searchArgs := questionSearchConds(query.Search, 2)
	conds = append(conds, searchConds...)
	args = append(args, searchArgs...)

	limit := query.Page.Limit()
	listQuery := fmt.Sprintf(`%s
		JOIN saved_questions sq ON sq.question_id = q.id
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		selectQuestion, strings.Join(conds, " AND "), savedOrder(query.Sort),
		len(args)+1, len(args)+2)
	args = append(args, limit+1, query.Page.Offset())

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, false, err
	}
	questions, err := scanQuestions(rows)
	if err != nil {
		return nil, false, err
	}

	questions, hasNext := trimOverfetch(questions, limit)
	if err := populateQuestions(ctx, r.db, questions, populateAll()); err != nil {
		return nil, false, err
	}
	return questions, hasNext, nil
}

func scanUsers(rows *sql.Rows) ([]types.User, error) {
	defer rows.Close()

	var users []types.User
	for rows.Next() {
		var user types.User
		if err := rows.Scan(
			&user.ID,
			&user.ExternalID,
			&user.Name,
			&user.Username,
			&user.Email,
			&user.Picture,
			&user.Bio,
			&user.Portfolio,
			&user.Location,
			&user.Reputation,
			&user.PasswordHash,
			&user.JoinedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
