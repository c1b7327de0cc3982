// Package user provides the concrete SQL-based implementation of the
// user domain repository.
package user

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/StoryHiveHQ/storyhive-go/internal/domain/user"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/persistence/database"
	"github.com/StoryHiveHQ/storyhive-go/pkg/config"
)

// SQLUserRepository is the SQL-based implementation of the user Repository.
type SQLUserRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLUserRepository creates a new instance of the repository.
func NewSQLUserRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLUserRepository {
	return &SQLUserRepository{
		db:     db,
		logger: logger,
	}
}

// FindByID retrieves a User by its unique identifier.
func (r *SQLUserRepository) FindByID(id string) (*user.User, error) {
	const query = `
		SELECT id, email, username, password_hash, bio, avatar_path, points, level, created_at
		FROM users
		WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Loading user by ID", "id", id)

	row := r.db.QueryRow(query, id)
	u, err := r.scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Database().Debug("User not found by ID", "id", id)
			return nil, nil
		}
		r.logger.Database().Error("Failed to load user by ID", "error", err.Error(), "id", id)
		return nil, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery("SELECT ... FROM users WHERE id = ?", duration)
	}
	return u, nil
}

// FindByEmail retrieves a User by email address.
func (r *SQLUserRepository) FindByEmail(email string) (*user.User, error) {
	const query = `
		SELECT id, email, username, password_hash, bio, avatar_path, points, level, created_at
		FROM users
		WHERE email = ?`

	start := time.Now()
	r.logger.Database().Debug("Loading user by email")

	row := r.db.QueryRow(query, email)
	u, err := r.scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Database().Error("Failed to load user by email", "error", err.Error())
		return nil, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery("SELECT ... FROM users WHERE email = ?", duration)
	}
	return u, nil
}

// FindByUsername retrieves a User by username.
func (r *SQLUserRepository) FindByUsername(username string) (*user.User, error) {
	const query = `
		SELECT id, email, username, password_hash, bio, avatar_path, points, level, created_at
		FROM users
		WHERE username = ?`

	start := time.Now()
	r.logger.Database().Debug("Loading user by username", "username", username)

	row := r.db.QueryRow(query, username)
	u, err := r.scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Database().Error("Failed to load user by username", "error", err.Error(), "username", username)
		return nil, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery("SELECT ... FROM users WHERE username = ?", duration)
	}
	return u, nil
}

// Store persists a new User.
func (r *SQLUserRepository) Store(u *user.User) error {
	const query = `
		INSERT INTO users (id, email, username, password_hash, bio, avatar_path, points, level, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Storing user", "id", u.ID, "username", u.Username)

	_, err := r.db.Exec(query, u.ID, u.Email, u.Username, u.PasswordHash, u.Bio, u.AvatarPath, u.Points, u.Level, u.CreatedAt)
	if err != nil {
		r.logger.Database().Error("Failed to store user", "error", err.Error(), "id", u.ID)
		return fmt.Errorf("failed to store user: %w", err)
	}

	r.logger.Database().Info("User stored", "id", u.ID, "username", u.Username, "duration", time.Since(start))
	return nil
}

// Update persists mutable profile fields of an existing User.
func (r *SQLUserRepository) Update(u *user.User) error {
	const query = `
		UPDATE users
		SET email = ?, username = ?, password_hash = ?, bio = ?, avatar_path = ?
		WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Updating user", "id", u.ID)

	result, err := r.db.Exec(query, u.Email, u.Username, u.PasswordHash, u.Bio, u.AvatarPath, u.ID)
	if err != nil {
		r.logger.Database().Error("Failed to update user", "error", err.Error(), "id", u.ID)
		return fmt.Errorf("failed to update user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return user.ErrNotFound
	}

	r.logger.Database().Info("User updated", "id", u.ID, "duration", time.Since(start))
	return nil
}

// AdjustPoints applies a point delta atomically with a zero floor and
// returns the resulting balance. The single UPDATE does the read-modify-write
// inside the engine, so concurrent deltas serialize without lost updates.
func (r *SQLUserRepository) AdjustPoints(id string, delta int) (int, error) {
	const updateQuery = `
		UPDATE users
		SET points = MAX(0, points + ?)
		WHERE id = ?`
	const selectQuery = `SELECT points FROM users WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Adjusting user points", "id", id, "delta", delta)

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin points transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(updateQuery, delta, id)
	if err != nil {
		r.logger.Database().Error("Failed to adjust points", "error", err.Error(), "id", id, "delta", delta)
		return 0, fmt.Errorf("failed to adjust points: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, user.ErrNotFound
	}

	var balance int
	if err := tx.QueryRow(selectQuery, id).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to read points balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit points transaction: %w", err)
	}

	duration := time.Since(start)
	r.logger.Database().Info("User points adjusted", "id", id, "delta", delta, "balance", balance, "duration", duration)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery("UPDATE users SET points = MAX(0, points + ?) WHERE id = ?", duration)
	}
	return balance, nil
}

// SetLevel records the denormalized level column.
func (r *SQLUserRepository) SetLevel(id, level string) error {
	const query = `UPDATE users SET level = ? WHERE id = ?`

	result, err := r.db.Exec(query, level, id)
	if err != nil {
		r.logger.Database().Error("Failed to set user level", "error", err.Error(), "id", id, "level", level)
		return fmt.Errorf("failed to set level: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return user.ErrNotFound
	}
	return nil
}

// scanUser scans a user row from a *sql.Row.
func (r *SQLUserRepository) scanUser(row *sql.Row) (*user.User, error) {
	var u user.User
	var avatarPath sql.NullString
	var createdAt time.Time

	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Bio, &avatarPath, &u.Points, &u.Level, &createdAt)
	if err != nil {
		return nil, err
	}

	if avatarPath.Valid {
		u.AvatarPath = &avatarPath.String
	}
	u.CreatedAt = createdAt
	return &u, nil
}
