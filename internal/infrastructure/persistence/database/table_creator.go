package database

import (
	"fmt"
)

// TableCreator handles creation of the StoryHive database schema.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

// CreateSchema executes all necessary queries to build the database tables and indexes.
func (tc *TableCreator) CreateSchema(db *DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS users (id TEXT PRIMARY KEY, email TEXT NOT NULL UNIQUE, username TEXT NOT NULL UNIQUE, password_hash TEXT NOT NULL, bio TEXT NOT NULL DEFAULT '', avatar_path TEXT, points INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0), level TEXT NOT NULL DEFAULT 'beginner', created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS stories (id TEXT PRIMARY KEY, author_id TEXT NOT NULL REFERENCES users(id), title TEXT NOT NULL, slug TEXT NOT NULL UNIQUE, body TEXT NOT NULL, cover_path TEXT, like_count INTEGER NOT NULL DEFAULT 0, view_count INTEGER NOT NULL DEFAULT 0, created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, updated_at TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS comments (id TEXT PRIMARY KEY, story_id TEXT NOT NULL REFERENCES stories(id), author_id TEXT NOT NULL REFERENCES users(id), body TEXT NOT NULL, like_count INTEGER NOT NULL DEFAULT 0, created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS reactions (target_id TEXT NOT NULL, target_type TEXT NOT NULL, reactor_id TEXT NOT NULL REFERENCES users(id), created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, UNIQUE(target_id, target_type, reactor_id))`,
	`CREATE TABLE IF NOT EXISTS achievements (user_id TEXT NOT NULL REFERENCES users(id), achievement_id TEXT NOT NULL, bonus INTEGER NOT NULL DEFAULT 0, unlocked_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, UNIQUE(user_id, achievement_id))`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_stories_slug ON stories(slug)`,
	`CREATE INDEX IF NOT EXISTS idx_stories_author_id ON stories(author_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_story_id ON comments(story_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_author_id ON comments(author_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reactions_target ON reactions(target_id, target_type)`,
	`CREATE INDEX IF NOT EXISTS idx_reactions_reactor ON reactions(reactor_id)`,
	`CREATE INDEX IF NOT EXISTS idx_achievements_user_id ON achievements(user_id)`,
}
