// Package database provides test helpers for wiring a real PostgreSQL
// database (via testcontainers, or CI_DATABASE_URL in CI) for integration
// tests across the module.
package database

import (
	"testing"

	"github.com/gl4d3/powerpulse/pkg/database"
	"github.com/gl4d3/powerpulse/test/util"
)

// NewTestClient creates a test database client backed by a fresh schema on
// the shared test container (or CI_DATABASE_URL). The schema and
// connections are cleaned up automatically when the test ends.
func NewTestClient(t *testing.T) *database.Client {
	entClient, db := util.SetupTestDatabase(t)
	client := database.NewClientFromEnt(entClient, db)

	t.Cleanup(func() {
		client.Close()
	})

	return client
}
