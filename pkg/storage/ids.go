package storage

import "github.com/google/uuid"

// newID generates a new primary key for entities whose id is a
// client-assigned string (every PowerPulse entity).
func newID() string {
	return uuid.New().String()
}
