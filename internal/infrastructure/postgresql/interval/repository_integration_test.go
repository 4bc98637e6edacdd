package interval

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/muhammadchandra19/moex-history-service/pkg/daterange"
	"github.com/muhammadchandra19/moex-history-service/pkg/errors"
	"github.com/muhammadchandra19/moex-history-service/pkg/logger"
	"github.com/muhammadchandra19/moex-history-service/pkg/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RepositoryTestSuite struct {
	suite.Suite
	helper *postgresql.TestHelper
	repo   IntervalRepository
	ctx    context.Context
}

// SetupSuite runs once before all tests
func (suite *RepositoryTestSuite) SetupSuite() {
	suite.ctx = context.Background()

	// Get absolute path to migrations
	migrationsPath, err := filepath.Abs("../migrations")
	require.NoError(suite.T(), err)

	// Create test helper with actual migrations
	config := &postgresql.TestContainerConfig{
		Image:            "postgres:15-alpine",
		Database:         "history_test_db",
		Username:         "history_test_user",
		Password:         "history_test_pass",
		MigrationsPath:   migrationsPath,
		MigrationPattern: "*.up.sql", // Only run UP migrations
		StartupTimeout:   3 * time.Minute,
	}

	suite.helper = postgresql.NewTestHelperWithConfig(suite.T(), config)

	logger, err := logger.NewLogger()
	require.NoError(suite.T(), err)
	suite.repo = NewRepository(suite.helper.GetClient(), logger)
}

// SetupTest runs before each test
func (suite *RepositoryTestSuite) SetupTest() {
	suite.helper.CleanupTables()
}

func (suite *RepositoryTestSuite) scope(secID string) ScopeKey {
	return ScopeKey{
		Engine:  "stock",
		Market:  "shares",
		Session: 3,
		SecID:   secID,
	}
}

func (suite *RepositoryTestSuite) window(from, till string) daterange.Range {
	rng, err := daterange.Parse(from, till)
	require.NoError(suite.T(), err)
	return rng
}

// Test Create and the unique constraint on the exact range
func (suite *RepositoryTestSuite) TestCreate() {
	key := suite.scope("SBER")
	rng := suite.window("2024-01-01", "2024-01-31")

	id, err := suite.repo.Create(suite.ctx, key, rng, StatusPending)
	require.NoError(suite.T(), err)
	assert.Greater(suite.T(), id, int64(0))

	stored, err := suite.repo.GetByID(suite.ctx, id)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), key, stored.Key)
	assert.Equal(suite.T(), rng, stored.Range)
	assert.Equal(suite.T(), StatusPending, stored.Status)
	assert.False(suite.T(), stored.CreatedAt.IsZero())

	// Same scope and exact range loses the claim
	_, err = suite.repo.Create(suite.ctx, key, rng, StatusPending)
	require.Error(suite.T(), err)
	assert.Equal(suite.T(), errors.IntervalClaimed, errors.CodeOf(err))

	// Different range in the same scope is fine
	_, err = suite.repo.Create(suite.ctx, key, suite.window("2024-02-01", "2024-02-29"), StatusPending)
	assert.NoError(suite.T(), err)

	// Same range in a different scope is fine
	_, err = suite.repo.Create(suite.ctx, suite.scope("GAZP"), rng, StatusPending)
	assert.NoError(suite.T(), err)
}

// Test GetByRange after losing a claim
func (suite *RepositoryTestSuite) TestGetByRange() {
	key := suite.scope("SBER")
	rng := suite.window("2024-01-01", "2024-01-31")

	id, err := suite.repo.Create(suite.ctx, key, rng, StatusPending)
	require.NoError(suite.T(), err)

	stored, err := suite.repo.GetByRange(suite.ctx, key, rng)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), id, stored.ID)

	// The winner may roll back before the loser looks it up
	require.NoError(suite.T(), suite.repo.Delete(suite.ctx, id))

	_, err = suite.repo.GetByRange(suite.ctx, key, rng)
	require.Error(suite.T(), err)
	assert.Equal(suite.T(), errors.GeneralNotFoundError, errors.CodeOf(err))
}

// Test ListOverlapping ordering and scope isolation
func (suite *RepositoryTestSuite) TestListOverlapping() {
	key := suite.scope("SBER")

	jan, err := suite.repo.Create(suite.ctx, key, suite.window("2024-01-01", "2024-01-31"), StatusComplete)
	require.NoError(suite.T(), err)
	mar, err := suite.repo.Create(suite.ctx, key, suite.window("2024-03-01", "2024-03-31"), StatusPending)
	require.NoError(suite.T(), err)

	// Other scopes must not leak into the result
	_, err = suite.repo.Create(suite.ctx, suite.scope("GAZP"), suite.window("2024-01-01", "2024-12-31"), StatusComplete)
	require.NoError(suite.T(), err)

	tests := []struct {
		name        string
		window      daterange.Range
		expectedIDs []int64
	}{
		{
			name:        "window covering both",
			window:      suite.window("2024-01-15", "2024-03-15"),
			expectedIDs: []int64{jan, mar},
		},
		{
			name:        "window touching one",
			window:      suite.window("2024-01-31", "2024-02-15"),
			expectedIDs: []int64{jan},
		},
		{
			name:        "window in the gap",
			window:      suite.window("2024-02-01", "2024-02-29"),
			expectedIDs: []int64{},
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			intervals, err := suite.repo.ListOverlapping(suite.ctx, key, tt.window)
			require.NoError(suite.T(), err)

			ids := make([]int64, 0, len(intervals))
			for _, iv := range intervals {
				ids = append(ids, iv.ID)
			}
			assert.Equal(suite.T(), tt.expectedIDs, ids)
		})
	}
}

// Test ListStatuses and SetComplete together, the way the wait path uses them
func (suite *RepositoryTestSuite) TestListStatuses() {
	key := suite.scope("SBER")

	first, err := suite.repo.Create(suite.ctx, key, suite.window("2024-01-01", "2024-01-31"), StatusPending)
	require.NoError(suite.T(), err)
	second, err := suite.repo.Create(suite.ctx, key, suite.window("2024-02-01", "2024-02-29"), StatusPending)
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), suite.repo.SetComplete(suite.ctx, first))
	require.NoError(suite.T(), suite.repo.Delete(suite.ctx, second))

	statuses, err := suite.repo.ListStatuses(suite.ctx, []int64{first, second})
	require.NoError(suite.T(), err)

	// Deleted ids are absent, not errored
	assert.Equal(suite.T(), map[int64]Status{first: StatusComplete}, statuses)
}

// Test Delete of an id that never existed
func (suite *RepositoryTestSuite) TestDelete() {
	err := suite.repo.Delete(suite.ctx, 123456)
	assert.NoError(suite.T(), err)
}

// Run the test suite
func TestRepositoryIntegration(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
