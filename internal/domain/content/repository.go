package content

// StoryRepository defines the operations for persisting Story entities.
type StoryRepository interface {
	FindByID(id string) (*Story, error)
	FindBySlug(slug string) (*Story, error)
	FindAll(limit, offset int) ([]*Story, error)
	FindByAuthorID(authorID string) ([]*Story, error)
	CountByAuthorID(authorID string) (int, error)
	Store(story *Story) error
	Update(story *Story) error
	Delete(id string) error

	// IncrementViewCount bumps the denormalized view counter atomically
	// and returns the new total.
	IncrementViewCount(id string) (int, error)

	// TotalLikesByAuthorID sums like counts across an author's stories.
	TotalLikesByAuthorID(authorID string) (int, error)
}

// CommentRepository defines the operations for persisting Comment entities.
type CommentRepository interface {
	FindByID(id string) (*Comment, error)
	FindByStoryID(storyID string) ([]*Comment, error)
	CountByAuthorID(authorID string) (int, error)
	Store(comment *Comment) error
	Delete(id string) error
}
