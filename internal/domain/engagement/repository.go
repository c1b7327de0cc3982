package engagement

// ReactionRepository defines the operations for persisting Reaction entities.
type ReactionRepository interface {
	// Toggle inserts the reaction if absent or deletes it if present, then
	// recomputes the target's denormalized like count from the reaction
	// set, all inside one transaction. Returns whether the reaction now
	// exists and the recomputed count.
	Toggle(target Target, reactorID string) (liked bool, count int, err error)

	Exists(target Target, reactorID string) (bool, error)
	Count(target Target) (int, error)
	FindReactors(target Target) ([]string, error)
}

// AchievementRepository defines the operations for persisting Unlock rows.
type AchievementRepository interface {
	// Unlock creates the row if no unlock exists for the (user,
	// achievement) pair. Returns true only when this call created it.
	Unlock(u *Unlock) (bool, error)

	FindByUserID(userID string) ([]*Unlock, error)
	Has(userID, achievementID string) (bool, error)
}
