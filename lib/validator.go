package lib

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Validator drives the aggregate and per-record checks. Every mismatch is
// returned as an error carrying the concrete expected and actual values;
// the caller decides that this ends the run.
type Validator struct {
	store         Store
	log           logrus.FieldLogger
	limit         int
	workers       int
	progressEvery int64
}

func NewValidator(store Store, log logrus.FieldLogger, limit, workers int,
	progressEvery int64,
) *Validator {
	if workers < 1 {
		workers = 1
	}
	return &Validator{
		store:         store,
		log:           log,
		limit:         limit,
		workers:       workers,
		progressEvery: progressEvery,
	}
}

// ExpectedFilteredCount is the expected number of live records with
// is_divisible_by_four == false: three quarters of the total, truncated
// the way the store truncates integer counts.
func ExpectedFilteredCount(total int64) int64 {
	return total * 3 / 4
}

// ValidateCounts checks that both the object count and the index_id
// property count equal expectedTotal, first unfiltered, then under the
// is_divisible_by_four == false filter against the 3/4 expectation.
func (v *Validator) ValidateCounts(ctx context.Context, className string,
	expectedTotal int64,
) error {
	v.log.Info("aggregation without filters:")
	counts, err := v.store.Aggregate(ctx, className, PropIndexID, nil)
	if err != nil {
		return errors.Wrapf(err, "aggregate %s", className)
	}
	if err := v.checkCounts(className, counts, expectedTotal); err != nil {
		return err
	}

	v.log.Info("aggregation with filters:")
	counts, err = v.store.Aggregate(ctx, className, PropIndexID,
		&PropFilter{Property: PropIsDivisibleByFour, Value: false})
	if err != nil {
		return errors.Wrapf(err, "filtered aggregate %s", className)
	}
	return v.checkCounts(className, counts, ExpectedFilteredCount(expectedTotal))
}

func (v *Validator) checkCounts(className string, counts AggregateCounts,
	expected int64,
) error {
	if counts.Objects != expected {
		return errors.Errorf("%s: got %d objects, wanted %d", className, counts.Objects, expected)
	}
	v.log.Infof("%s: got %d objects, wanted %d", className, counts.Objects, expected)

	if counts.Props != expected {
		return errors.Errorf("%s: got %d props, wanted %d", className, counts.Props, expected)
	}
	v.log.Infof("%s: got %d props, wanted %d", className, counts.Props, expected)
	return nil
}

// ValidateStage runs the four per-record checks over the expected-live
// sub-range of [start, end): identity lookup, equality-filter lookup,
// vector search, and stage-filtered vector search. The checks for one
// index are independent of every other index, so each pass fans out over a
// bounded worker pool; the first failure cancels the pass.
func (v *Validator) ValidateStage(ctx context.Context, className string,
	start, end int64, stage string,
) error {
	liveStart := start + MarkedCount(start, end)

	v.log.Info("retrieve objects using their uuid:")
	if err := v.forEachIndex(ctx, liveStart, end, "uuid lookups",
		func(ctx context.Context, i int64) error {
			return v.checkIdentity(ctx, className, i)
		}); err != nil {
		return err
	}

	v.log.Info("retrieve objects using a filter on a unique prop:")
	if err := v.forEachIndex(ctx, liveStart, end, "filter lookups",
		func(ctx context.Context, i int64) error {
			return v.checkFilter(ctx, className, i)
		}); err != nil {
		return err
	}

	v.log.Info("perform vector search without filter:")
	v.log.Info("note: result quality is not validated, only that the search works")
	if err := v.forEachIndex(ctx, liveStart, end, "vector searches",
		func(ctx context.Context, i int64) error {
			return v.checkNear(ctx, className, i, "")
		}); err != nil {
		return err
	}

	v.log.Info("perform vector search with filter:")
	v.log.Info("note: result quality is not validated, only that the search works")
	return v.forEachIndex(ctx, liveStart, end, "filtered vector searches",
		func(ctx context.Context, i int64) error {
			return v.checkNear(ctx, className, i, stage)
		})
}

func (v *Validator) forEachIndex(ctx context.Context, start, end int64, what string,
	check func(ctx context.Context, i int64) error,
) error {
	var done int64

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(v.workers)
	for i := start; i < end; i++ {
		i := i
		eg.Go(func() error {
			if err := check(ctx, i); err != nil {
				return err
			}
			if n := atomic.AddInt64(&done, 1); v.progressEvery > 0 && n%v.progressEvery == 0 {
				v.log.Infof("validated %d/%d %s", n, end-start, what)
			}
			return nil
		})
	}
	return eg.Wait()
}

func (v *Validator) checkIdentity(ctx context.Context, className string, i int64) error {
	id := UUIDFromIndex(i)
	props, err := v.store.ObjectByID(ctx, className, id)
	if err != nil {
		return errors.Wrapf(err, "%s: fetch object %d by uuid", className, i)
	}
	indexID, ok := asInt64(props[PropIndexID])
	if !ok {
		return errors.Errorf("%s: object %s has no readable %s prop", className, id, PropIndexID)
	}
	if indexID != i {
		return errors.Errorf("object %s has %s prop %d instead of %d", id, PropIndexID, indexID, i)
	}
	return nil
}

func (v *Validator) checkFilter(ctx context.Context, className string, i int64) error {
	values, err := v.store.IntPropWhere(ctx, className, PropIndexID, i)
	if err != nil {
		return errors.Wrapf(err, "%s: filter query for %s == %d", className, PropIndexID, i)
	}
	if len(values) != 1 {
		return errors.Errorf("%s: filter on %s == %d matched %d objects, wanted 1",
			className, PropIndexID, i, len(values))
	}
	if values[0] != i {
		return errors.Errorf("object has %s prop %d instead of %d", PropIndexID, values[0], i)
	}
	return nil
}

func (v *Validator) checkNear(ctx context.Context, className string, i int64,
	stage string,
) error {
	n, err := v.store.NearObject(ctx, className, UUIDFromIndex(i), v.limit, stage)
	if err != nil {
		return errors.Wrapf(err, "%s: vector search seeded by object %d", className, i)
	}
	if n != v.limit {
		return errors.Errorf("%s: vector search seeded by object %d has result len %d, wanted %d",
			className, i, n, v.limit)
	}
	return nil
}

// asInt64 normalizes the numeric types a property value can arrive as.
func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case json.Number:
		parsed, err := n.Int64()
		return parsed, err == nil
	default:
		return 0, false
	}
}
