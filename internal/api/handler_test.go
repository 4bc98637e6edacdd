package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	historyMock "github.com/muhammadchandra19/moex-history-service/internal/domain/history/mock"
	"github.com/muhammadchandra19/moex-history-service/internal/infrastructure/postgresql/interval"
	"github.com/muhammadchandra19/moex-history-service/internal/infrastructure/postgresql/securityhistory"
	"github.com/muhammadchandra19/moex-history-service/pkg/config"
	"github.com/muhammadchandra19/moex-history-service/pkg/daterange"
	"github.com/muhammadchandra19/moex-history-service/pkg/errors"
	mockLogger "github.com/muhammadchandra19/moex-history-service/pkg/logger/mock"
	"github.com/muhammadchandra19/moex-history-service/pkg/postgresql"
	mockPg "github.com/muhammadchandra19/moex-history-service/pkg/postgresql/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestServer(t *testing.T) (*Server, *historyMock.MockUsecase, *mockLogger.MockInterface) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	usecase := historyMock.NewMockUsecase(ctrl)
	log := mockLogger.NewMockInterface(ctrl)
	db := mockPg.NewMockPostgreSQLClient(ctrl)

	server := NewServer(config.AppConfig{Environment: "test", Port: 8080}, log, usecase, db)

	return server, usecase, log
}

func postDaysHistory(t *testing.T, server *Server, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/history/security_by_days", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	server.buildRouter().ServeHTTP(recorder, req)

	return recorder
}

func validBody() map[string]any {
	return map[string]any{
		"engine":    "stock",
		"market":    "shares",
		"secid":     "SBER",
		"from_date": "2024-01-09",
		"to_date":   "2024-01-10",
	}
}

func errorCode(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	return payload.Error.Code
}

func TestHandleDaysHistory_Success(t *testing.T) {
	server, usecase, _ := newTestServer(t)

	window, err := daterange.Parse("2024-01-09", "2024-01-10")
	require.NoError(t, err)

	day, err := daterange.ParseDate("2024-01-09")
	require.NoError(t, err)

	expectedKey := interval.ScopeKey{Engine: "stock", Market: "shares", Session: 3, SecID: "SBER"}

	usecase.EXPECT().
		GetDaysHistory(gomock.Any(), expectedKey, window).
		Return([]*securityhistory.Row{
			{BoardID: "TQBR", TradeDate: day, SecID: "SBER", NumTrades: 10, TradingSession: 3},
		}, nil)

	recorder := postDaysHistory(t, server, validBody())

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))

	var payload struct {
		History []map[string]any `json:"history"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	require.Len(t, payload.History, 1)
	assert.Equal(t, "TQBR", payload.History[0]["BOARDID"])
	assert.Equal(t, "SBER", payload.History[0]["SECID"])
}

func TestHandleDaysHistory_ExplicitSession(t *testing.T) {
	server, usecase, _ := newTestServer(t)

	window, err := daterange.Parse("2024-01-09", "2024-01-10")
	require.NoError(t, err)

	expectedKey := interval.ScopeKey{Engine: "stock", Market: "shares", Session: 1, SecID: "SBER"}

	usecase.EXPECT().
		GetDaysHistory(gomock.Any(), expectedKey, window).
		Return([]*securityhistory.Row{{BoardID: "TQBR", SecID: "SBER"}}, nil)

	body := validBody()
	body["session"] = 1

	recorder := postDaysHistory(t, server, body)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestHandleDaysHistory_Validation(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(body map[string]any)
	}{
		{
			name:   "missing secid",
			mutate: func(body map[string]any) { delete(body, "secid") },
		},
		{
			name:   "session out of range",
			mutate: func(body map[string]any) { body["session"] = 4 },
		},
		{
			name:   "malformed date",
			mutate: func(body map[string]any) { body["from_date"] = "09.01.2024" },
		},
		{
			name: "to before from",
			mutate: func(body map[string]any) {
				body["from_date"] = "2024-01-10"
				body["to_date"] = "2024-01-09"
			},
		},
		{
			name: "before the history epoch",
			mutate: func(body map[string]any) {
				body["from_date"] = "2014-12-30"
				body["to_date"] = "2015-01-10"
			},
		},
		{
			name: "window longer than 366 days",
			mutate: func(body map[string]any) {
				body["from_date"] = "2023-01-01"
				body["to_date"] = "2024-06-01"
			},
		},
		{
			name: "to date not finished yet",
			mutate: func(body map[string]any) {
				body["from_date"] = daterange.Today().Format(daterange.DateFormat)
				body["to_date"] = daterange.Today().AddDate(0, 0, 1).Format(daterange.DateFormat)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server, _, log := newTestServer(t)
			log.EXPECT().WarnContext(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

			body := validBody()
			tc.mutate(body)

			recorder := postDaysHistory(t, server, body)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Equal(t, string(errors.ValidationError), errorCode(t, recorder))
		})
	}
}

func TestHandleDaysHistory_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   errors.ErrorCode
	}{
		{
			name:       "history not found",
			err:        errors.TracerWithCode("no history", errors.HistoryNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   errors.HistoryNotFound,
		},
		{
			name:       "upstream failure",
			err:        errors.TracerWithCode("ISS responded 502", errors.UpstreamError),
			wantStatus: http.StatusBadGateway,
			wantCode:   errors.UpstreamError,
		},
		{
			name:       "coordination timeout",
			err:        errors.TracerWithCode("intervals still pending", errors.CoordinationTimeout),
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   errors.CoordinationTimeout,
		},
		{
			name:       "persistence failure",
			err:        errors.TracerWithCode("connection refused", errors.PersistenceError),
			wantStatus: http.StatusInternalServerError,
			wantCode:   errors.PersistenceError,
		},
		{
			name:       "untagged failure",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   errors.GeneralInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server, usecase, log := newTestServer(t)

			usecase.EXPECT().
				GetDaysHistory(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, tc.err)

			if tc.wantStatus >= http.StatusInternalServerError {
				log.EXPECT().ErrorContext(gomock.Any(), gomock.Any())
			} else {
				log.EXPECT().WarnContext(gomock.Any(), gomock.Any(), gomock.Any())
			}

			recorder := postDaysHistory(t, server, validBody())
			assert.Equal(t, tc.wantStatus, recorder.Code)
			assert.Equal(t, string(tc.wantCode), errorCode(t, recorder))
		})
	}
}

func TestHandleHealthz(t *testing.T) {
	testCases := []struct {
		name       string
		health     *postgresql.HealthCheck
		wantStatus int
	}{
		{
			name: "store reachable",
			health: &postgresql.HealthCheck{
				Status:       "healthy",
				DatabaseName: "history_db",
				Version:      "PostgreSQL 15.4",
				ActiveConns:  2,
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "store unreachable",
			health: &postgresql.HealthCheck{
				Status: "unhealthy",
				Error:  "ping failed: connection refused",
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			t.Cleanup(ctrl.Finish)

			db := mockPg.NewMockPostgreSQLClient(ctrl)
			db.EXPECT().CheckHealth(gomock.Any()).Return(tc.health)

			server := NewServer(
				config.AppConfig{Environment: "test", Port: 8080},
				mockLogger.NewMockInterface(ctrl),
				historyMock.NewMockUsecase(ctrl),
				db,
			)

			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			recorder := httptest.NewRecorder()
			server.buildRouter().ServeHTTP(recorder, req)

			assert.Equal(t, tc.wantStatus, recorder.Code)

			var payload postgresql.HealthCheck
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
			assert.Equal(t, tc.health.Status, payload.Status)
			assert.Equal(t, tc.health.Error, payload.Error)
		})
	}
}
