package engagement

import (
	"fmt"
	"time"

	"github.com/StoryHiveHQ/storyhive-go/internal/domain/engagement"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/persistence/database"
)

// SQLAchievementRepository is the SQL-based implementation of the AchievementRepository.
type SQLAchievementRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLAchievementRepository creates a new instance of the repository.
func NewSQLAchievementRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLAchievementRepository {
	return &SQLAchievementRepository{
		db:     db,
		logger: logger,
	}
}

// Unlock creates the unlock row if no row exists for the (user, achievement)
// pair. INSERT OR IGNORE against the unique index makes concurrent unlock
// attempts race-safe: exactly one caller observes a created row.
func (r *SQLAchievementRepository) Unlock(u *engagement.Unlock) (bool, error) {
	const query = `
		INSERT OR IGNORE INTO achievements (user_id, achievement_id, bonus, unlocked_at)
		VALUES (?, ?, ?, ?)`

	start := time.Now()
	result, err := r.db.Exec(query, u.UserID, u.AchievementID, u.Bonus, u.UnlockedAt)
	if err != nil {
		r.logger.Database().Error("Failed to unlock achievement", "error", err.Error(),
			"userId", u.UserID, "achievementId", u.AchievementID)
		return false, fmt.Errorf("failed to unlock achievement: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	created := affected > 0
	if created {
		r.logger.Database().Info("Achievement unlocked", "userId", u.UserID,
			"achievementId", u.AchievementID, "duration", time.Since(start))
	} else {
		r.logger.Database().Debug("Achievement already unlocked", "userId", u.UserID,
			"achievementId", u.AchievementID)
	}
	return created, nil
}

// FindByUserID retrieves all unlocks for a member, oldest-first.
func (r *SQLAchievementRepository) FindByUserID(userID string) ([]*engagement.Unlock, error) {
	const query = `
		SELECT user_id, achievement_id, bonus, unlocked_at
		FROM achievements
		WHERE user_id = ?
		ORDER BY unlocked_at ASC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		r.logger.Database().Error("Failed to load achievements", "error", err.Error(), "userId", userID)
		return nil, err
	}
	defer rows.Close()

	var unlocks []*engagement.Unlock
	for rows.Next() {
		var u engagement.Unlock
		if err := rows.Scan(&u.UserID, &u.AchievementID, &u.Bonus, &u.UnlockedAt); err != nil {
			return nil, err
		}
		unlocks = append(unlocks, &u)
	}
	return unlocks, rows.Err()
}

// Has reports whether a member already holds an achievement.
func (r *SQLAchievementRepository) Has(userID, achievementID string) (bool, error) {
	const query = `
		SELECT EXISTS(SELECT 1 FROM achievements WHERE user_id = ? AND achievement_id = ?)`

	var exists bool
	err := r.db.QueryRow(query, userID, achievementID).Scan(&exists)
	if err != nil {
		r.logger.Database().Error("Failed to check achievement", "error", err.Error(),
			"userId", userID, "achievementId", achievementID)
		return false, err
	}
	return exists, nil
}
