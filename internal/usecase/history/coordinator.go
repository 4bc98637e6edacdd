package history

import (
	"context"
	"time"

	"github.com/muhammadchandra19/moex-history-service/internal/infrastructure/postgresql/interval"
	"github.com/muhammadchandra19/moex-history-service/pkg/daterange"
	"github.com/muhammadchandra19/moex-history-service/pkg/errors"
	"github.com/muhammadchandra19/moex-history-service/pkg/logger"
	"github.com/muhammadchandra19/moex-history-service/pkg/postgresql"
	"golang.org/x/sync/errgroup"
)

// claim is a pending interval this request owns.
type claim struct {
	id   int64
	rng  daterange.Range
	done bool
}

// sync makes the window fully covered for the scope: it claims the missing
// ranges, fetches and stores their rows, and waits for intervals other
// requests are still filling. Rows and the status flip of each claimed
// interval land in one transaction, so a registered interval is only ever
// complete together with its rows.
func (u *Usecase) sync(ctx context.Context, key interval.ScopeKey, window daterange.Range) error {
	existing, err := u.intervals.ListOverlapping(ctx, key, window)
	if err != nil {
		return err
	}

	plan := ResolvePlan(window, existing)
	if plan.Empty() {
		return nil
	}

	claims, waiting, err := u.claimMissing(ctx, key, plan)
	if err != nil {
		return err
	}

	// Own fetches and the foreign wait run in one group: the first failure
	// on either side cancels the other.
	g, gctx := errgroup.WithContext(ctx)
	u.spawnFetches(g, gctx, key, claims)
	g.Go(func() error {
		return u.waitForeign(gctx, waiting)
	})

	if err := g.Wait(); err != nil {
		u.rollbackClaims(ctx, claims)
		return err
	}

	return nil
}

// claimMissing registers a pending interval per missing range, sequentially
// so a failure never leaves unclaimed rows behind unnoticed. Ranges another
// request claims first move to the wait list.
func (u *Usecase) claimMissing(ctx context.Context, key interval.ScopeKey, plan Plan) ([]*claim, []int64, error) {
	claims := []*claim{}
	waiting := append([]int64{}, plan.Waiting...)

	for _, rng := range plan.Missing {
		id, err := u.intervals.Create(ctx, key, rng, interval.StatusPending)
		if err == nil {
			claims = append(claims, &claim{id: id, rng: rng})
			continue
		}

		if !errors.ErrorCodeEquals(err, errors.IntervalClaimed) {
			u.rollbackClaims(ctx, claims)
			return nil, nil, err
		}

		// Lost the registration race: whoever won is fetching this exact
		// range, so wait for them instead.
		foreign, getErr := u.intervals.GetByRange(ctx, key, rng)
		if getErr != nil {
			u.rollbackClaims(ctx, claims)
			if errors.ErrorCodeEquals(getErr, errors.GeneralNotFoundError) {
				return nil, nil, errors.TracerWithCode("interval claimed by a request that rolled back: "+rng.String(), errors.CoordinationTimeout)
			}
			return nil, nil, getErr
		}
		if foreign.Status == interval.StatusPending {
			waiting = append(waiting, foreign.ID)
		}
	}

	return claims, waiting, nil
}

// spawnFetches fans the claimed ranges out to the upstream fetcher on the
// given group. Each range persists its rows and flips its interval to
// complete atomically.
func (u *Usecase) spawnFetches(g *errgroup.Group, ctx context.Context, key interval.ScopeKey, claims []*claim) {
	for _, cl := range claims {
		cl := cl
		g.Go(func() error {
			rows, err := u.fetcher.FetchRange(ctx, key, cl.rng)
			if err != nil {
				return err
			}

			err = postgresql.WithTx(ctx, u.db, func(txCtx context.Context) error {
				if err := u.history.StoreBatch(txCtx, rows); err != nil {
					return err
				}
				return u.intervals.SetComplete(txCtx, cl.id)
			})
			if err != nil {
				return err
			}

			cl.done = true
			return nil
		})
	}
}

// rollbackClaims deletes the intervals this request registered but never
// completed, so their ranges become fetchable again. Runs detached from the
// request context: the rollback must happen even when the caller is gone.
func (u *Usecase) rollbackClaims(ctx context.Context, claims []*claim) {
	cleanupCtx := context.WithoutCancel(ctx)

	for _, cl := range claims {
		if cl.done {
			continue
		}
		if err := u.intervals.Delete(cleanupCtx, cl.id); err != nil {
			u.logger.ErrorContext(cleanupCtx, errors.TracerFromError(err),
				logger.Field{Key: "intervalID", Value: cl.id},
				logger.Field{Key: "range", Value: cl.rng.String()},
			)
		}
	}
}

// waitForeign polls the status of intervals owned by other requests until
// all are complete or the attempt budget runs out. An id that disappears
// means its owner rolled back, which leaves the range uncovered, so the
// wait cannot succeed.
func (u *Usecase) waitForeign(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	remaining := ids
	for attempt := 1; attempt <= u.waitAttempts; attempt++ {
		statuses, err := u.intervals.ListStatuses(ctx, remaining)
		if err != nil {
			return err
		}

		pending := []int64{}
		vanished := false
		for _, id := range remaining {
			status, ok := statuses[id]
			if !ok {
				vanished = true
				continue
			}
			if status == interval.StatusPending {
				pending = append(pending, id)
			}
		}

		if len(pending) == 0 && !vanished {
			return nil
		}
		if len(pending) > 0 {
			remaining = pending
		}

		if attempt == u.waitAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return errors.TracerFromError(ctx.Err())
		case <-time.After(time.Duration(attempt) * u.waitBackoff):
		}
	}

	u.logger.WarnContext(ctx, "Gave up waiting for foreign intervals",
		logger.Field{Key: "intervalIDs", Value: remaining},
		logger.Field{Key: "attempts", Value: u.waitAttempts},
	)

	return errors.TracerWithCode("intervals still pending after wait budget", errors.CoordinationTimeout)
}
