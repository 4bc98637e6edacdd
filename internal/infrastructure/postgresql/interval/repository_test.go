package interval

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/muhammadchandra19/moex-history-service/pkg/daterange"
	"github.com/muhammadchandra19/moex-history-service/pkg/errors"
	mockLogger "github.com/muhammadchandra19/moex-history-service/pkg/logger/mock"
	mockPg "github.com/muhammadchandra19/moex-history-service/pkg/postgresql/mock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

var testKey = ScopeKey{
	Engine:  "stock",
	Market:  "shares",
	Session: 3,
	SecID:   "SBER",
}

func mustRange(t *testing.T, start, end string) daterange.Range {
	t.Helper()
	r, err := daterange.Parse(start, end)
	assert.NoError(t, err)
	return r
}

func TestRepository_Create(t *testing.T) {
	ctx := context.Background()
	query := `INSERT INTO fetch_intervals (engine, market, session, secid, start_date, end_date, status) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	testCases := []struct {
		name     string
		mockFn   func(mockpg *mockPg.MockPostgreSQLClient, mockLog *mockLogger.MockInterface, rng daterange.Range)
		assertFn func(t *testing.T, id int64, err error)
	}{
		{
			name: "success",
			mockFn: func(mockpg *mockPg.MockPostgreSQLClient, mockLog *mockLogger.MockInterface, rng daterange.Range) {
				row := mockPg.NewMockRow(gomock.NewController(t))
				row.EXPECT().Scan(gomock.Any()).DoAndReturn(func(dest ...any) error {
					*dest[0].(*int64) = 42
					return nil
				})

				mockpg.EXPECT().
					QueryRow(ctx, query,
						testKey.Engine,
						testKey.Market,
						testKey.Session,
						testKey.SecID,
						rng.Start,
						rng.End,
						StatusPending,
					).Return(row)

				mockLog.EXPECT().InfoContext(ctx, "Registered fetch interval",
					gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())
			},
			assertFn: func(t *testing.T, id int64, err error) {
				assert.NoError(t, err)
				assert.Equal(t, int64(42), id)
			},
		},
		{
			name: "unique violation maps to interval_claimed",
			mockFn: func(mockpg *mockPg.MockPostgreSQLClient, mockLog *mockLogger.MockInterface, rng daterange.Range) {
				row := mockPg.NewMockRow(gomock.NewController(t))
				row.EXPECT().Scan(gomock.Any()).Return(&pgconn.PgError{Code: "23505"})

				mockpg.EXPECT().
					QueryRow(ctx, query,
						testKey.Engine,
						testKey.Market,
						testKey.Session,
						testKey.SecID,
						rng.Start,
						rng.End,
						StatusPending,
					).Return(row)
			},
			assertFn: func(t *testing.T, id int64, err error) {
				assert.Error(t, err)
				assert.True(t, errors.ErrorCodeEquals(err, errors.IntervalClaimed))
			},
		},
		{
			name: "other failure maps to persistence_error",
			mockFn: func(mockpg *mockPg.MockPostgreSQLClient, mockLog *mockLogger.MockInterface, rng daterange.Range) {
				row := mockPg.NewMockRow(gomock.NewController(t))
				row.EXPECT().Scan(gomock.Any()).Return(&pgconn.PgError{Code: "57014"})

				mockpg.EXPECT().
					QueryRow(ctx, query,
						testKey.Engine,
						testKey.Market,
						testKey.Session,
						testKey.SecID,
						rng.Start,
						rng.End,
						StatusPending,
					).Return(row)
			},
			assertFn: func(t *testing.T, id int64, err error) {
				assert.Error(t, err)
				assert.True(t, errors.ErrorCodeEquals(err, errors.PersistenceError))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			pg := mockPg.NewMockPostgreSQLClient(ctrl)
			log := mockLogger.NewMockInterface(ctrl)

			repo := NewRepository(pg, log)

			rng := mustRange(t, "2024-01-01", "2024-01-31")
			tc.mockFn(pg, log, rng)

			id, err := repo.Create(ctx, testKey, rng, StatusPending)
			tc.assertFn(t, id, err)
		})
	}
}

func TestRepository_ListOverlapping(t *testing.T) {
	ctx := context.Background()
	query := `SELECT id, engine, market, session, secid, start_date, end_date, status, created_at FROM fetch_intervals WHERE engine = $1 AND market = $2 AND session = $3 AND secid = $4 AND start_date <= $6 AND end_date >= $5 ORDER BY start_date`

	now := time.Now()

	testCases := []struct {
		name     string
		mockFn   func(ctrl *gomock.Controller, mockpg *mockPg.MockPostgreSQLClient, rng daterange.Range)
		assertFn func(t *testing.T, intervals []*FetchInterval, err error)
	}{
		{
			name: "success",
			mockFn: func(ctrl *gomock.Controller, mockpg *mockPg.MockPostgreSQLClient, rng daterange.Range) {
				rows := mockPg.NewMockRowsInterface(ctrl)
				gomock.InOrder(
					rows.EXPECT().Next().Return(true),
					rows.EXPECT().Next().Return(false),
				)
				rows.EXPECT().Scan(
					gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
					gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
				).DoAndReturn(func(dest ...any) error {
					*dest[0].(*int64) = 7
					*dest[1].(*string) = testKey.Engine
					*dest[2].(*string) = testKey.Market
					*dest[3].(*int16) = testKey.Session
					*dest[4].(*string) = testKey.SecID
					*dest[5].(*time.Time) = rng.Start
					*dest[6].(*time.Time) = rng.End
					*dest[7].(*Status) = StatusComplete
					*dest[8].(*time.Time) = now
					return nil
				})
				rows.EXPECT().Err().Return(nil)
				rows.EXPECT().Close()

				mockpg.EXPECT().
					Query(ctx, query,
						testKey.Engine,
						testKey.Market,
						testKey.Session,
						testKey.SecID,
						rng.Start,
						rng.End,
					).Return(rows, nil)
			},
			assertFn: func(t *testing.T, intervals []*FetchInterval, err error) {
				assert.NoError(t, err)
				assert.Len(t, intervals, 1)
				assert.Equal(t, int64(7), intervals[0].ID)
				assert.Equal(t, StatusComplete, intervals[0].Status)
				assert.Equal(t, testKey, intervals[0].Key)
			},
		},
		{
			name: "empty scope",
			mockFn: func(ctrl *gomock.Controller, mockpg *mockPg.MockPostgreSQLClient, rng daterange.Range) {
				rows := mockPg.NewMockRowsInterface(ctrl)
				rows.EXPECT().Next().Return(false)
				rows.EXPECT().Err().Return(nil)
				rows.EXPECT().Close()

				mockpg.EXPECT().
					Query(ctx, query,
						testKey.Engine,
						testKey.Market,
						testKey.Session,
						testKey.SecID,
						rng.Start,
						rng.End,
					).Return(rows, nil)
			},
			assertFn: func(t *testing.T, intervals []*FetchInterval, err error) {
				assert.NoError(t, err)
				assert.Empty(t, intervals)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			pg := mockPg.NewMockPostgreSQLClient(ctrl)
			log := mockLogger.NewMockInterface(ctrl)

			repo := NewRepository(pg, log)

			rng := mustRange(t, "2024-01-01", "2024-01-31")
			tc.mockFn(ctrl, pg, rng)

			intervals, err := repo.ListOverlapping(ctx, testKey, rng)
			tc.assertFn(t, intervals, err)
		})
	}
}

func TestRepository_ListStatuses(t *testing.T) {
	ctx := context.Background()
	query := `SELECT id, status FROM fetch_intervals WHERE id = ANY($1)`

	t.Run("missing ids are absent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		pg := mockPg.NewMockPostgreSQLClient(ctrl)
		log := mockLogger.NewMockInterface(ctrl)

		rows := mockPg.NewMockRowsInterface(ctrl)
		gomock.InOrder(
			rows.EXPECT().Next().Return(true),
			rows.EXPECT().Next().Return(false),
		)
		rows.EXPECT().Scan(gomock.Any(), gomock.Any()).DoAndReturn(func(dest ...any) error {
			*dest[0].(*int64) = 1
			*dest[1].(*Status) = StatusComplete
			return nil
		})
		rows.EXPECT().Err().Return(nil)
		rows.EXPECT().Close()

		pg.EXPECT().Query(ctx, query, []int64{1, 2}).Return(rows, nil)

		repo := NewRepository(pg, log)

		statuses, err := repo.ListStatuses(ctx, []int64{1, 2})
		assert.NoError(t, err)
		assert.Equal(t, map[int64]Status{1: StatusComplete}, statuses)
	})
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	query := `DELETE FROM fetch_intervals WHERE id = $1`

	t.Run("already gone is not an error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		pg := mockPg.NewMockPostgreSQLClient(ctrl)
		log := mockLogger.NewMockInterface(ctrl)

		pg.EXPECT().Exec(ctx, query, int64(9)).Return(pgconn.CommandTag{}, nil)

		repo := NewRepository(pg, log)

		assert.NoError(t, repo.Delete(ctx, int64(9)))
	})
}
