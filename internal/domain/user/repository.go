package user

// Repository defines the operations for persisting User entities.
// Implementations must make AdjustPoints an atomic read-modify-write so
// concurrent deltas never lose updates, and must floor balances at zero.
type Repository interface {
	FindByID(id string) (*User, error)
	FindByEmail(email string) (*User, error)
	FindByUsername(username string) (*User, error)
	Store(u *User) error
	Update(u *User) error

	// AdjustPoints applies delta atomically, clamps the result at zero,
	// and returns the new balance. Returns ErrNotFound for unknown ids.
	AdjustPoints(id string, delta int) (int, error)

	// SetLevel records the denormalized level column.
	SetLevel(id, level string) error
}
