package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"conferencesessions/internal/domain"
)

const userColumns = `id, email, password_hash, salt, name, passport_uuid, identity_commitment, created_at, updated_at`

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (email, password_hash, salt, name, passport_uuid, identity_commitment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		nullString(u.Email), nullString(u.PasswordHash), nullString(u.Salt), u.Name,
		nullString(u.PassportUUID), nullString(u.IdentityCommitment), u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil {
		if pqCode(err) == uniqueViolation {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByPassportUUID(ctx context.Context, passportUUID string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE passport_uuid = $1`, passportUUID)
}

func (r *userRepository) LinkPassport(ctx context.Context, userID, passportUUID, identityCommitment string) error {
	query := `
		UPDATE users
		SET passport_uuid = $1, identity_commitment = $2, updated_at = NOW()
		WHERE id = $3
	`
	result, err := r.DB.ExecContext(ctx, query, passportUUID, identityCommitment, userID)
	if err != nil {
		if pqCode(err) == uniqueViolation {
			return fmt.Errorf("%w: passport already linked to another account", domain.ErrConflict)
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) AssignRole(ctx context.Context, userID, roleID string) error {
	query := `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role_id) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, query, userID, roleID)
	return err
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	u := &domain.User{}
	var email, hash, salt, passportUUID, commitment sql.NullString
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &email, &hash, &salt, &u.Name, &passportUUID, &commitment, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	u.Email = email.String
	u.PasswordHash = hash.String
	u.Salt = salt.String
	u.PassportUUID = passportUUID.String
	u.IdentityCommitment = commitment.String
	return u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
