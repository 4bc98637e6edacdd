package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/muhammadchandra19/moex-history-service/internal/infrastructure/postgresql/interval"
	"github.com/muhammadchandra19/moex-history-service/pkg/daterange"
	"github.com/muhammadchandra19/moex-history-service/pkg/errors"
	"github.com/muhammadchandra19/moex-history-service/pkg/logger"
)

// historyEpoch is the first trade date the ISS history endpoint serves
// session-level data for.
var historyEpoch = time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)

// maxWindowDays bounds a single request window.
const maxWindowDays = 366

const defaultSession int16 = 3

type daysHistoryRequest struct {
	Engine   string `json:"engine" binding:"required,max=45"`
	Market   string `json:"market" binding:"required,max=45"`
	Session  *int16 `json:"session" binding:"omitempty,gte=0,lte=3"`
	SecID    string `json:"secid" binding:"required,max=150"`
	FromDate string `json:"from_date" binding:"required"`
	ToDate   string `json:"to_date" binding:"required"`
}

func (r daysHistoryRequest) window() (daterange.Range, error) {
	window, err := daterange.Parse(r.FromDate, r.ToDate)
	if err != nil {
		return daterange.Range{}, errors.TracerWithCode(err.Error(), errors.ValidationError)
	}

	if window.Start.Before(historyEpoch) {
		return daterange.Range{}, errors.TracerWithCode("dates before 2015-01-01 are not served", errors.ValidationError)
	}
	if window.Days() > maxWindowDays {
		return daterange.Range{}, errors.TracerWithCode("window exceeds 366 days", errors.ValidationError)
	}
	if window.End.After(daterange.Yesterday()) {
		return daterange.Range{}, errors.TracerWithCode("to_date must be a finished trading day", errors.ValidationError)
	}

	return window, nil
}

func (r daysHistoryRequest) scopeKey() interval.ScopeKey {
	session := defaultSession
	if r.Session != nil {
		session = *r.Session
	}

	return interval.ScopeKey{
		Engine:  r.Engine,
		Market:  r.Market,
		Session: session,
		SecID:   r.SecID,
	}
}

func (s *Server) handleDaysHistory(c *gin.Context) {
	ctx := c.Request.Context()

	req := daysHistoryRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.TracerWithCode(err.Error(), errors.ValidationError))
		return
	}

	window, err := req.window()
	if err != nil {
		s.respondError(c, err)
		return
	}

	rows, err := s.usecase.GetDaysHistory(ctx, req.scopeKey(), window)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": rows})
}

func (s *Server) respondError(c *gin.Context, err error) {
	code := errors.CodeOf(err)

	status := http.StatusInternalServerError
	switch code {
	case errors.ValidationError:
		status = http.StatusBadRequest
	case errors.HistoryNotFound:
		status = http.StatusNotFound
	case errors.UpstreamError:
		status = http.StatusBadGateway
	case errors.CoordinationTimeout:
		status = http.StatusGatewayTimeout
	}

	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request.Context(), errors.TracerFromError(err))
	} else {
		s.logger.WarnContext(c.Request.Context(), err.Error(), logger.Field{Key: "code", Value: string(code)})
	}

	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    string(code),
			"message": err.Error(),
		},
	})
}
