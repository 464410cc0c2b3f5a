//go:build integration

package integration

import (
	"log"
	"os"
	"testing"

	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/config"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-testhelpers"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
	_ "time/tzdata"
)

// Global test-level variables
var (
	h      *testhelpers.TestHelper
	owner  models.Actor
	renter models.Actor
	admin  models.Actor
)

// TestMain sets up a single TestHelper for all integration tests in this package.
func TestMain(m *testing.M) {
	utils.InitLogger(config.AppName)

	// TestMain runs before any test, so the helper gets a bare testing.T.
	t := &testing.T{}
	h = testhelpers.NewTestHelper(t)

	owner = testhelpers.NewActor(models.RoleOwner)
	renter = testhelpers.NewActor(models.RoleTenant)
	admin = testhelpers.NewActor(models.RoleAdmin)

	log.Printf("tenancy-service integration tests: DB connected, baseURL=%s, env=%s", h.BaseURL, os.Getenv("ENV"))

	os.Exit(m.Run())
}
