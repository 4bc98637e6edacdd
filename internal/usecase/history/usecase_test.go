package history

import (
	"context"
	"testing"
	"time"

	fetcherMock "github.com/muhammadchandra19/moex-history-service/internal/infrastructure/moex/mock"
	"github.com/muhammadchandra19/moex-history-service/internal/infrastructure/postgresql/interval"
	intervalMock "github.com/muhammadchandra19/moex-history-service/internal/infrastructure/postgresql/interval/mock"
	"github.com/muhammadchandra19/moex-history-service/internal/infrastructure/postgresql/securityhistory"
	historyMock "github.com/muhammadchandra19/moex-history-service/internal/infrastructure/postgresql/securityhistory/mock"
	"github.com/muhammadchandra19/moex-history-service/pkg/config"
	"github.com/muhammadchandra19/moex-history-service/pkg/daterange"
	"github.com/muhammadchandra19/moex-history-service/pkg/errors"
	mockLogger "github.com/muhammadchandra19/moex-history-service/pkg/logger/mock"
	mockPg "github.com/muhammadchandra19/moex-history-service/pkg/postgresql/mock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

var usecaseTestKey = interval.ScopeKey{
	Engine:  "stock",
	Market:  "shares",
	Session: 3,
	SecID:   "SBER",
}

type usecaseMocks struct {
	intervals *intervalMock.MockIntervalRepository
	history   *historyMock.MockHistoryRepository
	fetcher   *fetcherMock.MockHistoryFetcher
	pg        *mockPg.MockPostgreSQLClient
	tx        *mockPg.MockTx
	logger    *mockLogger.MockInterface
}

func newUsecase(ctrl *gomock.Controller) (*Usecase, usecaseMocks) {
	m := usecaseMocks{
		intervals: intervalMock.NewMockIntervalRepository(ctrl),
		history:   historyMock.NewMockHistoryRepository(ctrl),
		fetcher:   fetcherMock.NewMockHistoryFetcher(ctrl),
		pg:        mockPg.NewMockPostgreSQLClient(ctrl),
		tx:        mockPg.NewMockTx(ctrl),
		logger:    mockLogger.NewMockInterface(ctrl),
	}

	u := NewUsecase(m.intervals, m.history, m.fetcher, m.pg, m.logger, config.SyncConfig{
		WaitAttempts: 5,
		WaitBackoff:  time.Millisecond,
	})

	return u, m
}

// expectTx wires one successful Begin/Commit pair around a claimed fetch.
func expectTx(m usecaseMocks, times int) {
	m.pg.EXPECT().Begin(gomock.Any()).Return(m.tx, nil).Times(times)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil).Times(times)
}

func historyRows(t *testing.T, dates ...string) []*securityhistory.Row {
	t.Helper()
	rows := make([]*securityhistory.Row, 0, len(dates))
	for _, date := range dates {
		day, err := daterange.ParseDate(date)
		assert.NoError(t, err)
		rows = append(rows, &securityhistory.Row{
			BoardID:        "TQBR",
			TradeDate:      day,
			SecID:          usecaseTestKey.SecID,
			NumTrades:      10,
			TradingSession: usecaseTestKey.Session,
		})
	}
	return rows
}

func TestUsecase_GetDaysHistory_FetchesWholeWindow(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	u, m := newUsecase(ctrl)

	window := rangeOf(t, "2024-01-09", "2024-01-10")
	rows := historyRows(t, "2024-01-09", "2024-01-10")

	m.intervals.EXPECT().ListOverlapping(ctx, usecaseTestKey, window).Return([]*interval.FetchInterval{}, nil)
	m.intervals.EXPECT().Create(ctx, usecaseTestKey, window, interval.StatusPending).Return(int64(11), nil)
	m.fetcher.EXPECT().FetchRange(gomock.Any(), usecaseTestKey, window).Return(rows, nil)

	expectTx(m, 1)
	m.history.EXPECT().StoreBatch(gomock.Any(), rows).Return(nil)
	m.intervals.EXPECT().SetComplete(gomock.Any(), int64(11)).Return(nil)

	m.history.EXPECT().ListByWindow(ctx, usecaseTestKey.SecID, usecaseTestKey.Session, window).Return(rows, nil)

	result, err := u.GetDaysHistory(ctx, usecaseTestKey, window)
	assert.NoError(t, err)
	assert.Equal(t, rows, result)
}

func TestUsecase_GetDaysHistory_FullyCoveredReadsStorage(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	u, m := newUsecase(ctrl)

	window := rangeOf(t, "2024-01-09", "2024-01-10")
	rows := historyRows(t, "2024-01-09", "2024-01-10")

	m.intervals.EXPECT().ListOverlapping(ctx, usecaseTestKey, window).Return([]*interval.FetchInterval{
		complete(t, 1, "2024-01-01", "2024-01-31"),
	}, nil)
	m.history.EXPECT().ListByWindow(ctx, usecaseTestKey.SecID, usecaseTestKey.Session, window).Return(rows, nil)

	result, err := u.GetDaysHistory(ctx, usecaseTestKey, window)
	assert.NoError(t, err)
	assert.Equal(t, rows, result)
}

func TestUsecase_GetDaysHistory_FetchesOnlyGaps(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	u, m := newUsecase(ctrl)

	window := rangeOf(t, "2024-01-01", "2024-01-31")
	head := rangeOf(t, "2024-01-01", "2024-01-09")
	tail := rangeOf(t, "2024-01-16", "2024-01-31")

	m.intervals.EXPECT().ListOverlapping(ctx, usecaseTestKey, window).Return([]*interval.FetchInterval{
		complete(t, 1, "2024-01-10", "2024-01-15"),
	}, nil)
	m.intervals.EXPECT().Create(ctx, usecaseTestKey, head, interval.StatusPending).Return(int64(21), nil)
	m.intervals.EXPECT().Create(ctx, usecaseTestKey, tail, interval.StatusPending).Return(int64(22), nil)

	m.fetcher.EXPECT().FetchRange(gomock.Any(), usecaseTestKey, head).Return(historyRows(t, "2024-01-09"), nil)
	m.fetcher.EXPECT().FetchRange(gomock.Any(), usecaseTestKey, tail).Return(historyRows(t, "2024-01-16"), nil)

	expectTx(m, 2)
	m.history.EXPECT().StoreBatch(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	m.intervals.EXPECT().SetComplete(gomock.Any(), int64(21)).Return(nil)
	m.intervals.EXPECT().SetComplete(gomock.Any(), int64(22)).Return(nil)

	stored := historyRows(t, "2024-01-09", "2024-01-10", "2024-01-16")
	m.history.EXPECT().ListByWindow(ctx, usecaseTestKey.SecID, usecaseTestKey.Session, window).Return(stored, nil)

	result, err := u.GetDaysHistory(ctx, usecaseTestKey, window)
	assert.NoError(t, err)
	assert.Equal(t, stored, result)
}

func TestUsecase_GetDaysHistory_WaitsForForeignPending(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	u, m := newUsecase(ctrl)

	window := rangeOf(t, "2024-01-09", "2024-01-10")
	rows := historyRows(t, "2024-01-09", "2024-01-10")

	m.intervals.EXPECT().ListOverlapping(ctx, usecaseTestKey, window).Return([]*interval.FetchInterval{
		pending(t, 5, "2024-01-01", "2024-01-31"),
	}, nil)

	// Still pending on the first poll, complete on the second.
	gomock.InOrder(
		m.intervals.EXPECT().ListStatuses(gomock.Any(), []int64{5}).Return(map[int64]interval.Status{5: interval.StatusPending}, nil),
		m.intervals.EXPECT().ListStatuses(gomock.Any(), []int64{5}).Return(map[int64]interval.Status{5: interval.StatusComplete}, nil),
	)

	m.history.EXPECT().ListByWindow(ctx, usecaseTestKey.SecID, usecaseTestKey.Session, window).Return(rows, nil)

	result, err := u.GetDaysHistory(ctx, usecaseTestKey, window)
	assert.NoError(t, err)
	assert.Equal(t, rows, result)
}

func TestUsecase_GetDaysHistory_WaitBudgetExhausted(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	u, m := newUsecase(ctrl)

	window := rangeOf(t, "2024-01-09", "2024-01-10")

	m.intervals.EXPECT().ListOverlapping(ctx, usecaseTestKey, window).Return([]*interval.FetchInterval{
		pending(t, 5, "2024-01-01", "2024-01-31"),
	}, nil)

	m.intervals.EXPECT().
		ListStatuses(gomock.Any(), []int64{5}).
		Return(map[int64]interval.Status{5: interval.StatusPending}, nil).
		Times(5)

	m.logger.EXPECT().WarnContext(gomock.Any(), "Gave up waiting for foreign intervals", gomock.Any(), gomock.Any())

	result, err := u.GetDaysHistory(ctx, usecaseTestKey, window)
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.ErrorCodeEquals(err, errors.CoordinationTimeout))
}

func TestUsecase_GetDaysHistory_RollsBackOnUpstreamFailure(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	u, m := newUsecase(ctrl)

	window := rangeOf(t, "2024-01-09", "2024-01-10")

	m.intervals.EXPECT().ListOverlapping(ctx, usecaseTestKey, window).Return([]*interval.FetchInterval{}, nil)
	m.intervals.EXPECT().Create(ctx, usecaseTestKey, window, interval.StatusPending).Return(int64(31), nil)

	m.fetcher.EXPECT().
		FetchRange(gomock.Any(), usecaseTestKey, window).
		Return(nil, errors.TracerWithCode("ISS responded 502", errors.UpstreamError))

	// The claimed interval must be released so the range stays fetchable.
	m.intervals.EXPECT().Delete(gomock.Any(), int64(31)).Return(nil)

	result, err := u.GetDaysHistory(ctx, usecaseTestKey, window)
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.ErrorCodeEquals(err, errors.UpstreamError))
}

func TestUsecase_GetDaysHistory_KeepsCompletedClaimsOnPartialFailure(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	u, m := newUsecase(ctrl)

	window := rangeOf(t, "2024-01-01", "2024-01-31")
	head := rangeOf(t, "2024-01-01", "2024-01-09")
	tail := rangeOf(t, "2024-01-16", "2024-01-31")

	m.intervals.EXPECT().ListOverlapping(ctx, usecaseTestKey, window).Return([]*interval.FetchInterval{
		complete(t, 1, "2024-01-10", "2024-01-15"),
	}, nil)
	m.intervals.EXPECT().Create(ctx, usecaseTestKey, head, interval.StatusPending).Return(int64(41), nil)
	m.intervals.EXPECT().Create(ctx, usecaseTestKey, tail, interval.StatusPending).Return(int64(42), nil)

	// The head range lands, the tail range fails upstream.
	m.fetcher.EXPECT().FetchRange(gomock.Any(), usecaseTestKey, head).Return(historyRows(t, "2024-01-09"), nil)
	m.fetcher.EXPECT().
		FetchRange(gomock.Any(), usecaseTestKey, tail).
		Return(nil, errors.TracerWithCode("ISS responded 502", errors.UpstreamError))

	m.pg.EXPECT().Begin(gomock.Any()).Return(m.tx, nil).MaxTimes(1)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil).MaxTimes(1)
	m.history.EXPECT().StoreBatch(gomock.Any(), gomock.Any()).Return(nil).MaxTimes(1)
	m.intervals.EXPECT().SetComplete(gomock.Any(), int64(41)).Return(nil).MaxTimes(1)

	// Only claims that never completed are rolled back.
	m.intervals.EXPECT().Delete(gomock.Any(), int64(42)).Return(nil)
	m.intervals.EXPECT().Delete(gomock.Any(), int64(41)).Return(nil).MaxTimes(1)

	result, err := u.GetDaysHistory(ctx, usecaseTestKey, window)
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.ErrorCodeEquals(err, errors.UpstreamError))
}

func TestUsecase_GetDaysHistory_LostClaimFallsBackToWaiting(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	u, m := newUsecase(ctrl)

	window := rangeOf(t, "2024-01-09", "2024-01-10")
	rows := historyRows(t, "2024-01-09", "2024-01-10")

	m.intervals.EXPECT().ListOverlapping(ctx, usecaseTestKey, window).Return([]*interval.FetchInterval{}, nil)
	m.intervals.EXPECT().
		Create(ctx, usecaseTestKey, window, interval.StatusPending).
		Return(int64(0), errors.TracerWithCode("interval already claimed", errors.IntervalClaimed))

	m.intervals.EXPECT().GetByRange(ctx, usecaseTestKey, window).Return(pending(t, 77, "2024-01-09", "2024-01-10"), nil)
	m.intervals.EXPECT().ListStatuses(gomock.Any(), []int64{77}).Return(map[int64]interval.Status{77: interval.StatusComplete}, nil)

	m.history.EXPECT().ListByWindow(ctx, usecaseTestKey.SecID, usecaseTestKey.Session, window).Return(rows, nil)

	result, err := u.GetDaysHistory(ctx, usecaseTestKey, window)
	assert.NoError(t, err)
	assert.Equal(t, rows, result)
}

func TestUsecase_GetDaysHistory_EmptyResultIsNotFound(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	u, m := newUsecase(ctrl)

	window := rangeOf(t, "2024-01-09", "2024-01-10")

	m.intervals.EXPECT().ListOverlapping(ctx, usecaseTestKey, window).Return([]*interval.FetchInterval{
		complete(t, 1, "2024-01-01", "2024-01-31"),
	}, nil)
	m.history.EXPECT().ListByWindow(ctx, usecaseTestKey.SecID, usecaseTestKey.Session, window).Return([]*securityhistory.Row{}, nil)

	result, err := u.GetDaysHistory(ctx, usecaseTestKey, window)
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.ErrorCodeEquals(err, errors.HistoryNotFound))
}

func TestUsecase_GetDaysHistory_WaitTimeoutCancelsOwnFetches(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	u, m := newUsecase(ctrl)

	window := rangeOf(t, "2024-01-01", "2024-01-31")
	tail := rangeOf(t, "2024-01-16", "2024-01-31")

	m.intervals.EXPECT().ListOverlapping(ctx, usecaseTestKey, window).Return([]*interval.FetchInterval{
		pending(t, 5, "2024-01-01", "2024-01-15"),
	}, nil)
	m.intervals.EXPECT().Create(ctx, usecaseTestKey, tail, interval.StatusPending).Return(int64(61), nil)

	// The fetch blocks until the exhausted wait cancels the group.
	fetchCancelled := make(chan struct{})
	m.fetcher.EXPECT().
		FetchRange(gomock.Any(), usecaseTestKey, tail).
		DoAndReturn(func(fetchCtx context.Context, _ interval.ScopeKey, _ daterange.Range) ([]*securityhistory.Row, error) {
			<-fetchCtx.Done()
			close(fetchCancelled)
			return nil, errors.TracerFromError(fetchCtx.Err())
		})

	m.intervals.EXPECT().
		ListStatuses(gomock.Any(), []int64{5}).
		Return(map[int64]interval.Status{5: interval.StatusPending}, nil).
		Times(5)

	m.logger.EXPECT().WarnContext(gomock.Any(), "Gave up waiting for foreign intervals", gomock.Any(), gomock.Any())

	// The never-completed claim is released.
	m.intervals.EXPECT().Delete(gomock.Any(), int64(61)).Return(nil)

	result, err := u.GetDaysHistory(ctx, usecaseTestKey, window)
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.ErrorCodeEquals(err, errors.CoordinationTimeout))

	select {
	case <-fetchCancelled:
	default:
		t.Fatal("in-flight fetch was not cancelled by the wait timeout")
	}
}

func TestUsecase_GetDaysHistory_WaitAttemptsHaveFloorOfOne(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, m := newUsecase(ctrl)

	u := NewUsecase(m.intervals, m.history, m.fetcher, m.pg, m.logger, config.SyncConfig{
		WaitAttempts: 0,
		WaitBackoff:  time.Millisecond,
	})

	window := rangeOf(t, "2024-01-09", "2024-01-10")
	rows := historyRows(t, "2024-01-09", "2024-01-10")

	m.intervals.EXPECT().ListOverlapping(ctx, usecaseTestKey, window).Return([]*interval.FetchInterval{
		pending(t, 5, "2024-01-01", "2024-01-31"),
	}, nil)

	// Zero configured attempts still poll once.
	m.intervals.EXPECT().
		ListStatuses(gomock.Any(), []int64{5}).
		Return(map[int64]interval.Status{5: interval.StatusComplete}, nil)

	m.history.EXPECT().ListByWindow(ctx, usecaseTestKey.SecID, usecaseTestKey.Session, window).Return(rows, nil)

	result, err := u.GetDaysHistory(ctx, usecaseTestKey, window)
	assert.NoError(t, err)
	assert.Equal(t, rows, result)
}
