package lib

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/weaviate/weaviate/entities/models"
)

// Loader writes generated records in bounded batches. Individual object
// failures inside a batch are logged, never returned: a lost write must be
// caught by the validators, not here.
type Loader struct {
	store         Store
	gen           *Generator
	log           logrus.FieldLogger
	batchSize     int
	progressEvery int64
}

func NewLoader(store Store, gen *Generator, log logrus.FieldLogger,
	batchSize int, progressEvery int64,
) *Loader {
	return &Loader{
		store:         store,
		gen:           gen,
		log:           log,
		batchSize:     batchSize,
		progressEvery: progressEvery,
	}
}

// Load generates and stores one record per index in [start, end), tagged
// with stage. It returns only once every batch has completed.
func (l *Loader) Load(ctx context.Context, className string, start, end int64,
	stage string,
) error {
	deleteBelow := start + MarkedCount(start, end)

	batch := make([]*models.Object, 0, l.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		resp, err := l.store.BatchWrite(ctx, batch)
		if err != nil {
			return errors.Wrapf(err, "batch write to %s", className)
		}
		l.logBatchErrors(className, resp)
		batch = batch[:0]
		return nil
	}

	for i := start; i < end; i++ {
		if l.progressEvery > 0 && i%l.progressEvery == 0 {
			l.log.Infof("class: %s - writing record %d/%d", className, i, end)
		}
		batch = append(batch, l.gen.Generate(i, stage, deleteBelow).Object(className))
		if len(batch) == l.batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	l.log.Infof("finished writing %d records to %s", end-start, className)
	return nil
}

// logBatchErrors surfaces per-object failures from a batch result. Errors
// are observed, not enforced.
func (l *Loader) logBatchErrors(className string, resp []models.ObjectsGetResponse) {
	for _, res := range resp {
		if res.Result == nil || res.Result.Errors == nil {
			continue
		}
		for _, item := range res.Result.Errors.Error {
			if item == nil {
				continue
			}
			l.log.WithField("class", className).Error(item.Message)
		}
	}
}
