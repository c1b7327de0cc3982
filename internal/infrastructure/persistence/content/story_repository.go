// Package content provides the concrete SQL-based implementations of the
// story and comment repositories.
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

// SQLStoryRepository is the SQL-based implementation of the StoryRepository.
type SQLStoryRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLStoryRepository creates a new instance of the repository.
func NewSQLStoryRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLStoryRepository {
	return &SQLStoryRepository{
		db:     db,
		logger: logger,
	}
}

const storyColumns = `id, author_id, title, slug, body, cover_path, like_count, view_count, created_at, updated_at`

// FindByID retrieves a Story by its unique identifier.
func (r *SQLStoryRepository) FindByID(id string) (*content.Story, error) {
	const query = `
		SELECT id, author_id, title, slug, body, cover_path, like_count, view_count, created_at, updated_at
		FROM stories
		WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Loading story by ID", "id", id)

	row := r.db.QueryRow(query, id)
	story, err := r.scanStory(row)
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Database().Debug("Story not found by ID", "id", id)
			return nil, nil
		}
		r.logger.Database().Error("Failed to load story by ID", "error", err.Error(), "id", id)
		return nil, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery("SELECT "+storyColumns+" FROM stories WHERE id = ?", duration)
	}
	return story, nil
}

// FindBySlug retrieves a Story by its slug.
func (r *SQLStoryRepository) FindBySlug(slug string) (*content.Story, error) {
	const query = `
		SELECT id, author_id, title, slug, body, cover_path, like_count, view_count, created_at, updated_at
		FROM stories
		WHERE slug = ?`

	start := time.Now()
	r.logger.Database().Debug("Loading story by slug", "slug", slug)

	row := r.db.QueryRow(query, slug)
	story, err := r.scanStory(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Database().Error("Failed to load story by slug", "error", err.Error(), "slug", slug)
		return nil, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery("SELECT "+storyColumns+" FROM stories WHERE slug = ?", duration)
	}
	return story, nil
}

// FindAll retrieves stories newest-first with pagination.
func (r *SQLStoryRepository) FindAll(limit, offset int) ([]*content.Story, error) {
	const query = `
		SELECT id, author_id, title, slug, body, cover_path, like_count, view_count, created_at, updated_at
		FROM stories
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	start := time.Now()
	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		r.logger.Database().Error("Failed to list stories", "error", err.Error())
		return nil, err
	}
	defer rows.Close()

	stories, err := r.scanStories(rows)
	if err != nil {
		return nil, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery("SELECT "+storyColumns+" FROM stories ORDER BY created_at DESC", duration)
	}
	return stories, nil
}

// FindByAuthorID retrieves all stories by one author, newest-first.
func (r *SQLStoryRepository) FindByAuthorID(authorID string) ([]*content.Story, error) {
	const query = `
		SELECT id, author_id, title, slug, body, cover_path, like_count, view_count, created_at, updated_at
		FROM stories
		WHERE author_id = ?
		ORDER BY created_at DESC`

	rows, err := r.db.Query(query, authorID)
	if err != nil {
		r.logger.Database().Error("Failed to load stories by author", "error", err.Error(), "authorId", authorID)
		return nil, err
	}
	defer rows.Close()

	return r.scanStories(rows)
}

// CountByAuthorID counts stories published by one author.
func (r *SQLStoryRepository) CountByAuthorID(authorID string) (int, error) {
	const query = `SELECT COUNT(*) FROM stories WHERE author_id = ?`

	var count int
	if err := r.db.QueryRow(query, authorID).Scan(&count); err != nil {
		r.logger.Database().Error("Failed to count stories by author", "error", err.Error(), "authorId", authorID)
		return 0, err
	}
	return count, nil
}

// TotalLikesByAuthorID sums like counts across an author's stories.
func (r *SQLStoryRepository) TotalLikesByAuthorID(authorID string) (int, error) {
	const query = `SELECT COALESCE(SUM(like_count), 0) FROM stories WHERE author_id = ?`

	var total int
	if err := r.db.QueryRow(query, authorID).Scan(&total); err != nil {
		r.logger.Database().Error("Failed to sum story likes by author", "error", err.Error(), "authorId", authorID)
		return 0, err
	}
	return total, nil
}

// Store persists a new Story.
func (r *SQLStoryRepository) Store(story *content.Story) error {
	const query = `
		INSERT INTO stories (id, author_id, title, slug, body, cover_path, like_count, view_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Storing story", "id", story.ID, "slug", story.Slug)

	_, err := r.db.Exec(query, story.ID, story.AuthorID, story.Title, story.Slug, story.Body,
		story.CoverPath, story.LikeCount, story.ViewCount, story.CreatedAt)
	if err != nil {
		r.logger.Database().Error("Failed to store story", "error", err.Error(), "id", story.ID)
		return fmt.Errorf("failed to store story: %w", err)
	}

	r.logger.Database().Info("Story stored", "id", story.ID, "slug", story.Slug, "duration", time.Since(start))
	return nil
}

// Update persists mutable fields of an existing Story.
func (r *SQLStoryRepository) Update(story *content.Story) error {
	const query = `
		UPDATE stories
		SET title = ?, slug = ?, body = ?, cover_path = ?, updated_at = ?
		WHERE id = ?`

	now := time.Now().UTC()
	result, err := r.db.Exec(query, story.Title, story.Slug, story.Body, story.CoverPath, now, story.ID)
	if err != nil {
		r.logger.Database().Error("Failed to update story", "error", err.Error(), "id", story.ID)
		return fmt.Errorf("failed to update story: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return content.ErrNotFound
	}

	story.UpdatedAt = &now
	return nil
}

// Delete removes a Story and its dependent rows.
func (r *SQLStoryRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM reactions WHERE target_id = ? AND target_type = 'story'`, id); err != nil {
		return fmt.Errorf("failed to delete story reactions: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM comments WHERE story_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete story comments: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM stories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete story: %w", err)
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

	r.logger.Database().Info("Story deleted", "id", id)
	return nil
}

// IncrementViewCount bumps the denormalized view counter atomically and
// returns the new total.
func (r *SQLStoryRepository) IncrementViewCount(id string) (int, error) {
	const updateQuery = `UPDATE stories SET view_count = view_count + 1 WHERE id = ?`
	const selectQuery = `SELECT view_count FROM stories WHERE id = ?`

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin view count transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(updateQuery, id)
	if err != nil {
		return 0, fmt.Errorf("failed to increment view count: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, content.ErrNotFound
	}

	var count int
	if err := tx.QueryRow(selectQuery, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to read view count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit view count transaction: %w", err)
	}
	return count, nil
}

// scanStory scans a story row from a *sql.Row.
func (r *SQLStoryRepository) scanStory(row *sql.Row) (*content.Story, error) {
	var story content.Story
	var coverPath sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(&story.ID, &story.AuthorID, &story.Title, &story.Slug, &story.Body,
		&coverPath, &story.LikeCount, &story.ViewCount, &story.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if coverPath.Valid {
		story.CoverPath = &coverPath.String
	}
	if updatedAt.Valid {
		story.UpdatedAt = &updatedAt.Time
	}
	return &story, nil
}

// scanStories scans story rows from a *sql.Rows.
func (r *SQLStoryRepository) scanStories(rows *sql.Rows) ([]*content.Story, error) {
	var stories []*content.Story
	for rows.Next() {
		var story content.Story
		var coverPath sql.NullString
		var updatedAt sql.NullTime

		err := rows.Scan(&story.ID, &story.AuthorID, &story.Title, &story.Slug, &story.Body,
			&coverPath, &story.LikeCount, &story.ViewCount, &story.CreatedAt, &updatedAt)
		if err != nil {
			return nil, err
		}

		if coverPath.Valid {
			story.CoverPath = &coverPath.String
		}
		if updatedAt.Valid {
			story.UpdatedAt = &updatedAt.Time
		}
		stories = append(stories, &story)
	}
	return stories, rows.Err()
}
