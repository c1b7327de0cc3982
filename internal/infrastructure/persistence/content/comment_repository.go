package content

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/StoryHiveHQ/storyhive-go/internal/domain/content"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/persistence/database"
	"github.com/StoryHiveHQ/storyhive-go/pkg/config"
)

// SQLCommentRepository is the SQL-based implementation of the CommentRepository.
type SQLCommentRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLCommentRepository creates a new instance of the repository.
func NewSQLCommentRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLCommentRepository {
	return &SQLCommentRepository{
		db:     db,
		logger: logger,
	}
}

// FindByID retrieves a Comment by its unique identifier.
func (r *SQLCommentRepository) FindByID(id string) (*content.Comment, error) {
	const query = `
		SELECT id, story_id, author_id, body, like_count, created_at
		FROM comments
		WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Loading comment by ID", "id", id)

	var c content.Comment
	err := r.db.QueryRow(query, id).Scan(&c.ID, &c.StoryID, &c.AuthorID, &c.Body, &c.LikeCount, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Database().Error("Failed to load comment by ID", "error", err.Error(), "id", id)
		return nil, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery("SELECT ... FROM comments WHERE id = ?", duration)
	}
	return &c, nil
}

// FindByStoryID retrieves all comments under a story, oldest-first.
func (r *SQLCommentRepository) FindByStoryID(storyID string) ([]*content.Comment, error) {
	const query = `
		SELECT id, story_id, author_id, body, like_count, created_at
		FROM comments
		WHERE story_id = ?
		ORDER BY created_at ASC`

	start := time.Now()
	rows, err := r.db.Query(query, storyID)
	if err != nil {
		r.logger.Database().Error("Failed to load comments by story", "error", err.Error(), "storyId", storyID)
		return nil, err
	}
	defer rows.Close()

	var comments []*content.Comment
	for rows.Next() {
		var c content.Comment
		if err := rows.Scan(&c.ID, &c.StoryID, &c.AuthorID, &c.Body, &c.LikeCount, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery("SELECT ... FROM comments WHERE story_id = ?", duration)
	}
	return comments, nil
}

// CountByAuthorID counts comments posted by one author.
func (r *SQLCommentRepository) CountByAuthorID(authorID string) (int, error) {
	const query = `SELECT COUNT(*) FROM comments WHERE author_id = ?`

	var count int
	if err := r.db.QueryRow(query, authorID).Scan(&count); err != nil {
		r.logger.Database().Error("Failed to count comments by author", "error", err.Error(), "authorId", authorID)
		return 0, err
	}
	return count, nil
}

// Store persists a new Comment.
func (r *SQLCommentRepository) Store(c *content.Comment) error {
	const query = `
		INSERT INTO comments (id, story_id, author_id, body, like_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Storing comment", "id", c.ID, "storyId", c.StoryID)

	_, err := r.db.Exec(query, c.ID, c.StoryID, c.AuthorID, c.Body, c.LikeCount, c.CreatedAt)
	if err != nil {
		r.logger.Database().Error("Failed to store comment", "error", err.Error(), "id", c.ID)
		return fmt.Errorf("failed to store comment: %w", err)
	}

	r.logger.Database().Info("Comment stored", "id", c.ID, "storyId", c.StoryID, "duration", time.Since(start))
	return nil
}

// Delete removes a Comment and its reactions.
func (r *SQLCommentRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM reactions WHERE target_id = ? AND target_type = 'comment'`, id); err != nil {
		return fmt.Errorf("failed to delete comment reactions: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return content.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete transaction: %w", err)
	}

	r.logger.Database().Info("Comment deleted", "id", id)
	return nil
}
