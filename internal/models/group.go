package models

// Group is a reusable roster of people who share expenses. Its members form
// the roster handed to an expense draft's split strategies.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g. "Roommates").
	Name string

	// Members is the list of member user IDs.
	Members []string

	// CreatedBy is the user who created the group.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}
