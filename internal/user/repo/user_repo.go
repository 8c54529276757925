package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-identity-go/internal/user/entity"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)

const uniqueViolation = "23505"

// UserRepo provides data access for the users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// ExistsByUsername reports whether a row already uses username.
func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM users WHERE username=$1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, q, username); err != nil {
		return false, err
	}
	return exists, nil
}

// ExistsByEmail reports whether a row already uses email (case-insensitive, citext).
func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM users WHERE email=$1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, q, email); err != nil {
		return false, err
	}
	return exists, nil
}

// CreateUser inserts a new user row and returns its id. A unique-constraint
// race on username or email surfaces as ErrDuplicateUsername/ErrDuplicateEmail.
func (r *UserRepo) CreateUser(ctx context.Context, u *entity.User) (int64, error) {
	const q = `INSERT INTO users (id,username,email,password_hash,name,surname,fone,active,created_at,updated_at,activated_at)
		  VALUES (:id,:username,:email,:password_hash,:name,:surname,:fone,:active,:created_at,:updated_at,:activated_at) RETURNING id`
	params := map[string]any{
		"id":            u.ID,
		"username":      u.Username,
		"email":         u.Email,
		"password_hash": u.PasswordHash,
		"name":          u.Name,
		"surname":       u.Surname,
		"fone":          u.Fone,
		"active":        u.Active,
		"created_at":    u.CreatedAt,
		"updated_at":    u.UpdatedAt,
		"activated_at":  u.ActivatedAt,
	}
	rows, err := r.db.NamedQueryContext(ctx, q, params)
	if err != nil {
		return 0, mapConstraint(err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&u.ID); err != nil {
			return 0, err
		}
		return u.ID, nil
	}
	if err := rows.Err(); err != nil {
		return 0, mapConstraint(err)
	}
	return 0, errors.New("no id returned")
}

// GetCredentialsForLogin returns the id and hash for username or ErrNotFound.
func (r *UserRepo) GetCredentialsForLogin(ctx context.Context, username string) (*entity.Credentials, error) {
	const q = `SELECT id, password_hash FROM users WHERE username=$1`
	var c entity.Credentials
	if err := r.db.GetContext(ctx, &c, q, username); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// GetCredentialsByID returns the id and hash for id or ErrNotFound.
func (r *UserRepo) GetCredentialsByID(ctx context.Context, id int64) (*entity.Credentials, error) {
	const q = `SELECT id, password_hash FROM users WHERE id=$1`
	var c entity.Credentials
	if err := r.db.GetContext(ctx, &c, q, id); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// FetchProfile returns the non-secret projection of a user.
func (r *UserRepo) FetchProfile(ctx context.Context, id int64) (*entity.Profile, error) {
	const q = `SELECT username, name, surname, email, fone, created_at, updated_at, active, activated_at
		FROM users WHERE id=$1`
	var p entity.Profile
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// UpdateProfile writes the provided fields only and bumps updated_at.
func (r *UserRepo) UpdateProfile(ctx context.Context, id int64, upd entity.ProfileUpdate) error {
	const q = `UPDATE users SET name=COALESCE($2,name), surname=COALESCE($3,surname), fone=COALESCE($4,fone), updated_at=NOW()
		WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, id, upd.Name, upd.Surname, upd.Fone)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// UpdatePassword replaces the stored hash and bumps updated_at.
func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	const q = `UPDATE users SET password_hash=$2, updated_at=NOW() WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, id, hash)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// DeleteUser permanently removes the row.
func (r *UserRepo) DeleteUser(ctx context.Context, id int64) error {
	const q = `DELETE FROM users WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func mapConstraint(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}
	switch pqErr.Constraint {
	case "users_username_key":
		return ErrDuplicateUsername
	case "users_email_key":
		return ErrDuplicateEmail
	default:
		return fmt.Errorf("unique violation on %s: %w", pqErr.Constraint, err)
	}
}
