package interval

import (
	"time"

	"github.com/muhammadchandra19/moex-history-service/pkg/daterange"
)

// Status represents the lifecycle state of a fetch interval.
type Status string

const (
	// StatusPending marks an interval whose rows are still being fetched.
	StatusPending Status = "pending"

	// StatusComplete marks an interval whose rows landed in storage.
	StatusComplete Status = "complete"
)

// ScopeKey identifies the upstream slice an interval belongs to.
type ScopeKey struct {
	Engine  string `json:"engine"`
	Market  string `json:"market"`
	Session int16  `json:"session"`
	SecID   string `json:"secid"`
}

// FetchInterval is one recorded fetch range for a scope.
type FetchInterval struct {
	ID        int64           `json:"id"`
	Key       ScopeKey        `json:"key"`
	Range     daterange.Range `json:"range"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}
