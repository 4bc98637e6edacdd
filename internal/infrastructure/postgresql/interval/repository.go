package interval

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/muhammadchandra19/moex-history-service/pkg/daterange"
	"github.com/muhammadchandra19/moex-history-service/pkg/errors"
	"github.com/muhammadchandra19/moex-history-service/pkg/logger"
	"github.com/muhammadchandra19/moex-history-service/pkg/postgresql"
)

const uniqueViolation = "23505"

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

// Create registers an interval for the scope and returns its id. When another
// request already registered the exact same range, the unique constraint on
// (engine, market, session, secid, start_date, end_date) fires and the error
// carries the interval_claimed code.
func (r *repository) Create(ctx context.Context, key ScopeKey, rng daterange.Range, status Status) (int64, error) {
	query := `INSERT INTO fetch_intervals (engine, market, session, secid, start_date, end_date, status) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		key.Engine,
		key.Market,
		key.Session,
		key.SecID,
		rng.Start,
		rng.End,
		status,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if stderrors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, errors.TracerWithCode("interval already claimed: "+rng.String(), errors.IntervalClaimed)
		}
		return 0, errors.TracerWithCode(err.Error(), errors.PersistenceError)
	}

	r.logger.InfoContext(ctx, "Registered fetch interval",
		logger.Field{Key: "id", Value: id},
		logger.Field{Key: "secid", Value: key.SecID},
		logger.Field{Key: "range", Value: rng.String()},
		logger.Field{Key: "status", Value: string(status)},
	)

	return id, nil
}

// GetByID gets an interval by id.
func (r *repository) GetByID(ctx context.Context, id int64) (*FetchInterval, error) {
	query := `SELECT id, engine, market, session, secid, start_date, end_date, status, created_at FROM fetch_intervals WHERE id = $1`

	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// GetByRange gets the interval covering exactly the given range, if any.
func (r *repository) GetByRange(ctx context.Context, key ScopeKey, rng daterange.Range) (*FetchInterval, error) {
	query := `SELECT id, engine, market, session, secid, start_date, end_date, status, created_at FROM fetch_intervals WHERE engine = $1 AND market = $2 AND session = $3 AND secid = $4 AND start_date = $5 AND end_date = $6`

	return r.scanOne(r.db.QueryRow(ctx, query,
		key.Engine,
		key.Market,
		key.Session,
		key.SecID,
		rng.Start,
		rng.End,
	))
}

// ListOverlapping lists intervals of the scope that overlap the given range,
// ordered by start date.
func (r *repository) ListOverlapping(ctx context.Context, key ScopeKey, rng daterange.Range) ([]*FetchInterval, error) {
	query := `SELECT id, engine, market, session, secid, start_date, end_date, status, created_at FROM fetch_intervals WHERE engine = $1 AND market = $2 AND session = $3 AND secid = $4 AND start_date <= $6 AND end_date >= $5 ORDER BY start_date`

	rows, err := r.db.Query(ctx, query,
		key.Engine,
		key.Market,
		key.Session,
		key.SecID,
		rng.Start,
		rng.End,
	)
	if err != nil {
		return nil, errors.TracerWithCode(err.Error(), errors.PersistenceError)
	}
	defer rows.Close()

	intervals := []*FetchInterval{}
	for rows.Next() {
		iv := &FetchInterval{}
		var start, end time.Time
		err := rows.Scan(
			&iv.ID,
			&iv.Key.Engine,
			&iv.Key.Market,
			&iv.Key.Session,
			&iv.Key.SecID,
			&start,
			&end,
			&iv.Status,
			&iv.CreatedAt,
		)
		if err != nil {
			return nil, errors.TracerWithCode(err.Error(), errors.PersistenceError)
		}
		iv.Range = daterange.Range{Start: daterange.Truncate(start), End: daterange.Truncate(end)}
		intervals = append(intervals, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.TracerWithCode(err.Error(), errors.PersistenceError)
	}

	return intervals, nil
}

// ListStatuses returns the current status of each interval still present.
// Deleted ids are simply absent from the result.
func (r *repository) ListStatuses(ctx context.Context, ids []int64) (map[int64]Status, error) {
	query := `SELECT id, status FROM fetch_intervals WHERE id = ANY($1)`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, errors.TracerWithCode(err.Error(), errors.PersistenceError)
	}
	defer rows.Close()

	statuses := map[int64]Status{}
	for rows.Next() {
		var id int64
		var status Status
		if err := rows.Scan(&id, &status); err != nil {
			return nil, errors.TracerWithCode(err.Error(), errors.PersistenceError)
		}
		statuses[id] = status
	}
	if err := rows.Err(); err != nil {
		return nil, errors.TracerWithCode(err.Error(), errors.PersistenceError)
	}

	return statuses, nil
}

// SetComplete flips an interval to complete.
func (r *repository) SetComplete(ctx context.Context, id int64) error {
	query := `UPDATE fetch_intervals SET status = 'complete' WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return errors.TracerWithCode(err.Error(), errors.PersistenceError)
	}

	return nil
}

// Delete removes an interval. Deleting an id that is already gone is not an
// error.
func (r *repository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM fetch_intervals WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return errors.TracerWithCode(err.Error(), errors.PersistenceError)
	}

	return nil
}

func (r *repository) scanOne(row pgx.Row) (*FetchInterval, error) {
	iv := &FetchInterval{}
	var start, end time.Time
	err := row.Scan(
		&iv.ID,
		&iv.Key.Engine,
		&iv.Key.Market,
		&iv.Key.Session,
		&iv.Key.SecID,
		&start,
		&end,
		&iv.Status,
		&iv.CreatedAt,
	)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.TracerWithCode("interval not found", errors.GeneralNotFoundError)
		}
		return nil, errors.TracerWithCode(err.Error(), errors.PersistenceError)
	}
	iv.Range = daterange.Range{Start: daterange.Truncate(start), End: daterange.Truncate(end)}

	return iv, nil
}
