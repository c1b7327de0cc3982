// Package engagement provides the concrete SQL-based implementations of the
// reaction and achievement repositories.
package engagement

import (
	"fmt"
	"time"

	"github.com/StoryHiveHQ/storyhive-go/internal/domain/engagement"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/persistence/database"
	"github.com/StoryHiveHQ/storyhive-go/pkg/config"
)

// SQLReactionRepository is the SQL-based implementation of the ReactionRepository.
type SQLReactionRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLReactionRepository creates a new instance of the repository.
func NewSQLReactionRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLReactionRepository {
	return &SQLReactionRepository{
		db:     db,
		logger: logger,
	}
}

// countTable maps a target type onto the table carrying its denormalized
// like counter.
func countTable(targetType string) (string, error) {
	switch targetType {
	case engagement.TargetStory:
		return "stories", nil
	case engagement.TargetComment:
		return "comments", nil
	default:
		return "", fmt.Errorf("unknown reaction target type: %s", targetType)
	}
}

// Toggle flips the (target, reactor) reaction row and recomputes the
// denormalized like count from the reaction set, all inside one transaction.
// The count is always COUNT(*) over the set, never an increment, so the
// counter can never drift from the rows.
func (r *SQLReactionRepository) Toggle(target engagement.Target, reactorID string) (bool, int, error) {
	table, err := countTable(target.Type)
	if err != nil {
		return false, 0, err
	}

	start := time.Now()
	r.logger.Database().Debug("Toggling reaction", "target", target.Key(), "reactorId", reactorID)

	tx, err := r.db.Begin()
	if err != nil {
		return false, 0, fmt.Errorf("failed to begin reaction transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM reactions WHERE target_id = ? AND target_type = ? AND reactor_id = ?)`,
		target.ID, target.Type, reactorID,
	).Scan(&exists)
	if err != nil {
		return false, 0, fmt.Errorf("failed to check reaction existence: %w", err)
	}

	if exists {
		_, err = tx.Exec(
			`DELETE FROM reactions WHERE target_id = ? AND target_type = ? AND reactor_id = ?`,
			target.ID, target.Type, reactorID,
		)
	} else {
		_, err = tx.Exec(
			`INSERT OR IGNORE INTO reactions (target_id, target_type, reactor_id, created_at) VALUES (?, ?, ?, ?)`,
			target.ID, target.Type, reactorID, time.Now().UTC(),
		)
	}
	if err != nil {
		return false, 0, fmt.Errorf("failed to toggle reaction: %w", err)
	}

	var count int
	err = tx.QueryRow(
		`SELECT COUNT(*) FROM reactions WHERE target_id = ? AND target_type = ?`,
		target.ID, target.Type,
	).Scan(&count)
	if err != nil {
		return false, 0, fmt.Errorf("failed to recompute reaction count: %w", err)
	}

	query := fmt.Sprintf(`UPDATE %s SET like_count = ? WHERE id = ?`, table)
	if _, err := tx.Exec(query, count, target.ID); err != nil {
		return false, 0, fmt.Errorf("failed to write like count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("failed to commit reaction transaction: %w", err)
	}

	liked := !exists
	duration := time.Since(start)
	r.logger.Database().Info("Reaction toggled", "target", target.Key(), "liked", liked, "count", count, "duration", duration)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery("REACTION_TOGGLE "+target.Key(), duration)
	}
	return liked, count, nil
}

// Exists reports whether a reactor currently likes a target.
func (r *SQLReactionRepository) Exists(target engagement.Target, reactorID string) (bool, error) {
	const query = `
		SELECT EXISTS(SELECT 1 FROM reactions WHERE target_id = ? AND target_type = ? AND reactor_id = ?)`

	var exists bool
	err := r.db.QueryRow(query, target.ID, target.Type, reactorID).Scan(&exists)
	if err != nil {
		r.logger.Database().Error("Failed to check reaction", "error", err.Error(), "target", target.Key())
		return false, err
	}
	return exists, nil
}

// Count returns the cardinality of a target's reaction set.
func (r *SQLReactionRepository) Count(target engagement.Target) (int, error) {
	const query = `SELECT COUNT(*) FROM reactions WHERE target_id = ? AND target_type = ?`

	var count int
	err := r.db.QueryRow(query, target.ID, target.Type).Scan(&count)
	if err != nil {
		r.logger.Database().Error("Failed to count reactions", "error", err.Error(), "target", target.Key())
		return 0, err
	}
	return count, nil
}

// FindReactors lists the members who currently like a target.
func (r *SQLReactionRepository) FindReactors(target engagement.Target) ([]string, error) {
	const query = `
		SELECT reactor_id FROM reactions
		WHERE target_id = ? AND target_type = ?
		ORDER BY created_at ASC`

	rows, err := r.db.Query(query, target.ID, target.Type)
	if err != nil {
		r.logger.Database().Error("Failed to load reactors", "error", err.Error(), "target", target.Key())
		return nil, err
	}
	defer rows.Close()

	var reactors []string
	for rows.Next() {
		var reactorID string
		if err := rows.Scan(&reactorID); err != nil {
			return nil, err
		}
		reactors = append(reactors, reactorID)
	}
	return reactors, rows.Err()
}
