// Package engagement defines the event model, achievement rule table, and
// repository interfaces for the reputation subsystem.
package engagement

import "time"

// EventKind enumerates the engagement events the achievement engine
// understands. The set is closed; dispatch switches exhaustively over it.
type EventKind string

const (
	EventStoryPublished EventKind = "story_published"
	EventStoryLiked     EventKind = "story_liked"
	EventCommentPosted  EventKind = "comment_posted"
	EventCommentLiked   EventKind = "comment_liked"
	EventStoryViewed    EventKind = "story_viewed"
	EventLevelChanged   EventKind = "level_changed"
)

// Event is one engagement occurrence attributed to a member. UserID is the
// member whose reputation the event affects (the content owner for likes and
// views, not the reactor).
type Event struct {
	Kind      EventKind `json:"kind"`
	UserID    string    `json:"userId"`
	ActorID   string    `json:"actorId,omitempty"`
	StoryID   string    `json:"storyId,omitempty"`
	CommentID string    `json:"commentId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Stats is the per-member snapshot the rule table evaluates against. Counts
// are read at dispatch time; level fields are only set for level-change
// events.
type Stats struct {
	StoryCount          int
	AggregateStoryLikes int
	CommentCount        int
	StoryViewCount      int
	PreviousLevel       string
	CurrentLevel        string
}

// Unlock is one earned achievement. The (UserID, AchievementID) pair is
// unique in storage; insert-if-absent is the idempotency boundary.
type Unlock struct {
	UserID        string    `json:"userId"`
	AchievementID string    `json:"achievementId"`
	Bonus         int       `json:"bonus"`
	UnlockedAt    time.Time `json:"unlockedAt"`
}

// LevelChange records a tier transition caused by a point movement.
type LevelChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Result summarizes what one engagement operation did to a member's
// reputation.
type Result struct {
	PointsDelta int          `json:"pointsDelta"`
	NewBalance  int          `json:"newBalance"`
	Unlocked    []*Unlock    `json:"unlocked,omitempty"`
	LevelChange *LevelChange `json:"levelChange,omitempty"`
	ViewCounted bool         `json:"viewCounted,omitempty"`
}

// Reaction target types.
const (
	TargetStory   = "story"
	TargetComment = "comment"
)

// Target identifies a likeable piece of content.
type Target struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Key returns the canonical lock/storage key for a target.
func (t Target) Key() string {
	return t.Type + ":" + t.ID
}

// Reaction is one member's like on one target. At most one row exists per
// (target, reactor) pair; the reaction set is the source of truth for
// like counts.
type Reaction struct {
	TargetID   string    `json:"targetId"`
	TargetType string    `json:"targetType"`
	ReactorID  string    `json:"reactorId"`
	CreatedAt  time.Time `json:"createdAt"`
}
