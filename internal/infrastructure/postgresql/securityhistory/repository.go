package securityhistory

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/muhammadchandra19/moex-history-service/pkg/daterange"
	"github.com/muhammadchandra19/moex-history-service/pkg/errors"
	"github.com/muhammadchandra19/moex-history-service/pkg/logger"
	"github.com/muhammadchandra19/moex-history-service/pkg/postgresql"
)

const insertQuery = `INSERT INTO security_history (boardid, tradedate, shortname, secid, numtrades, value, open, low, high, legalcloseprice, waprice, close, volume, marketprice2, marketprice3, admittedquote, mp2valtrd, marketprice3tradesvalue, admittedvalue, waval, tradingsession) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21) ON CONFLICT (boardid, tradedate, secid) DO NOTHING`

const selectQuery = `SELECT boardid, tradedate, shortname, secid, numtrades, value, open, low, high, legalcloseprice, waprice, close, volume, marketprice2, marketprice3, admittedquote, mp2valtrd, marketprice3tradesvalue, admittedvalue, waval, tradingsession FROM security_history WHERE secid = $1 AND tradingsession = $2 AND tradedate BETWEEN $3 AND $4 ORDER BY tradedate, boardid`

type repository struct {
	db     postgresql.PostgreSQLClient
	logger logger.Interface
}

// NewRepository creates a new repository.
func NewRepository(db postgresql.PostgreSQLClient, logger logger.Interface) *repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

// StoreBatch inserts rows, skipping any (boardid, tradedate, secid) already
// present. Runs inside the ambient transaction when the context carries one.
func (r *repository) StoreBatch(ctx context.Context, rows []*Row) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(insertQuery,
			row.BoardID,
			row.TradeDate,
			row.ShortName,
			row.SecID,
			row.NumTrades,
			row.Value,
			row.Open,
			row.Low,
			row.High,
			row.LegalClosePrice,
			row.WAPrice,
			row.Close,
			row.Volume,
			row.MarketPrice2,
			row.MarketPrice3,
			row.AdmittedQuote,
			row.MP2ValTrd,
			row.MarketPrice3TradesValue,
			row.AdmittedValue,
			row.WAVal,
			row.TradingSession,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		if _, err := results.Exec(); err != nil {
			return errors.TracerWithCode(err.Error(), errors.PersistenceError)
		}
	}

	r.logger.InfoContext(ctx, "Stored history rows", logger.Field{
		Key:   "count",
		Value: len(rows),
	})

	return nil
}

// ListByWindow lists rows of a security and trading session inside the
// window, ordered by trade date.
func (r *repository) ListByWindow(ctx context.Context, secID string, session int16, window daterange.Range) ([]*Row, error) {
	rows, err := r.db.Query(ctx, selectQuery, secID, session, window.Start, window.End)
	if err != nil {
		return nil, errors.TracerWithCode(err.Error(), errors.PersistenceError)
	}
	defer rows.Close()

	result := []*Row{}
	for rows.Next() {
		row := &Row{}
		var tradeDate time.Time
		err := rows.Scan(
			&row.BoardID,
			&tradeDate,
			&row.ShortName,
			&row.SecID,
			&row.NumTrades,
			&row.Value,
			&row.Open,
			&row.Low,
			&row.High,
			&row.LegalClosePrice,
			&row.WAPrice,
			&row.Close,
			&row.Volume,
			&row.MarketPrice2,
			&row.MarketPrice3,
			&row.AdmittedQuote,
			&row.MP2ValTrd,
			&row.MarketPrice3TradesValue,
			&row.AdmittedValue,
			&row.WAVal,
			&row.TradingSession,
		)
		if err != nil {
			return nil, errors.TracerWithCode(err.Error(), errors.PersistenceError)
		}
		row.TradeDate = daterange.Truncate(tradeDate)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.TracerWithCode(err.Error(), errors.PersistenceError)
	}

	return result, nil
}
