package lib

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	stage1 = "stage_1"
	stage2 = "stage_2"
)

// Scenario drives the full verification sequence: load stage 1, delete,
// validate, back up, load stage 2, delete, validate both stages, drop
// everything, restore the stage-1 checkpoint, and prove the restored
// instance behaves exactly like the original did at the same point,
// including a repeated stage-2 import on top of it. The sequence is
// strictly linear; the first failed invariant ends the run.
type Scenario struct {
	store Store
	log   logrus.FieldLogger
	cfg   Config

	loader    *Loader
	validator *Validator
}

type stageRange struct {
	start, end int64
	stage      string
}

func NewScenario(store Store, log logrus.FieldLogger, cfg Config) *Scenario {
	return &Scenario{
		store:     store,
		log:       log,
		cfg:       cfg,
		loader:    NewLoader(store, NewGenerator(cfg.Seed), log, cfg.BatchSize, cfg.ProgressEvery),
		validator: NewValidator(store, log, cfg.QueryLimit, cfg.Workers, cfg.ProgressEvery),
	}
}

func (s *Scenario) Run(ctx context.Context) error {
	n := s.cfg.ObjectsPerStage
	first := stageRange{start: 0, end: n, stage: stage1}
	second := stageRange{start: n, end: 2 * n, stage: stage2}

	liveStage1 := (first.end - first.start) - MarkedCount(first.start, first.end)
	liveStage2 := (second.end - second.start) - MarkedCount(second.start, second.end)
	liveTotal := liveStage1 + liveStage2

	s.log.Info("step 0, reset everything, import schema")
	if err := ResetSchema(ctx, s.store, s.cfg.Classes); err != nil {
		return err
	}

	s.log.Infof("step 1, import first half of objects across %d classes", len(s.cfg.Classes))
	if err := s.loadAll(ctx, first); err != nil {
		return err
	}

	s.log.Info("step 2, delete 10% of objects to make sure deletes are covered")
	if err := s.deleteAll(ctx); err != nil {
		return err
	}

	s.log.Info("step 3, run control test validating all assumptions at stage 1")
	if err := s.validateAll(ctx, liveStage1, first); err != nil {
		return err
	}

	s.log.Info("step 4, create backup of current instance including all classes")
	if err := s.store.Backup(ctx, s.cfg.BackupID, s.cfg.Classes); err != nil {
		return errors.Wrapf(err, "backup %s", s.cfg.BackupID)
	}
	if err := s.inspectBackupArtifacts(ctx); err != nil {
		return err
	}

	s.log.Infof("step 5, import second half of objects across %d classes", len(s.cfg.Classes))
	if err := s.loadAll(ctx, second); err != nil {
		return err
	}

	s.log.Info("step 6, delete 10% of objects to make sure deletes are covered")
	if err := s.deleteAll(ctx); err != nil {
		return err
	}

	s.log.Info("step 7, validate both stages on control instance")
	if err := s.validateAll(ctx, liveTotal, first, second); err != nil {
		return err
	}

	s.log.Info("step 8, delete all classes")
	if err := s.store.DeleteAllClasses(ctx); err != nil {
		return errors.Wrap(err, "delete all classes")
	}

	s.log.Info("step 9, restore backup at half-way mark")
	if err := s.store.Restore(ctx, s.cfg.BackupID, s.cfg.Classes); err != nil {
		return errors.Wrapf(err, "restore %s", s.cfg.BackupID)
	}

	s.log.Info("step 10, make sure results match the original instance at stage 1")
	if err := s.validateAll(ctx, liveStage1, first); err != nil {
		return err
	}

	s.log.Info("step 11, import second half of objects again")
	if err := s.loadAll(ctx, second); err != nil {
		return err
	}

	s.log.Info("step 12, delete 10% of objects of new import")
	if err := s.deleteAll(ctx); err != nil {
		return err
	}

	s.log.Info("step 13, make sure results match the original instance at stage 2")
	return s.validateAll(ctx, liveTotal, first, second)
}

func (s *Scenario) loadAll(ctx context.Context, r stageRange) error {
	for _, className := range s.cfg.Classes {
		if err := s.loader.Load(ctx, className, r.start, r.end, r.stage); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scenario) deleteAll(ctx context.Context) error {
	for _, className := range s.cfg.Classes {
		if err := DeleteMarked(ctx, s.store, s.log, className); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scenario) validateAll(ctx context.Context, expectedTotal int64,
	stages ...stageRange,
) error {
	for _, className := range s.cfg.Classes {
		s.log.Infof("%s - overall:", className)
		if err := s.validator.ValidateCounts(ctx, className, expectedTotal); err != nil {
			return err
		}
	}
	for _, r := range stages {
		for _, className := range s.cfg.Classes {
			s.log.Infof("%s - %s:", className, r.stage)
			if err := s.validator.ValidateStage(ctx, className, r.start, r.end, r.stage); err != nil {
				return err
			}
		}
	}
	return nil
}

// inspectBackupArtifacts confirms the backup left data behind in the
// object-storage bucket. Only runs when a minio endpoint is configured.
func (s *Scenario) inspectBackupArtifacts(ctx context.Context) error {
	if s.cfg.Minio.URL == "" {
		return nil
	}
	size, err := BackupArtifactSize(ctx, s.cfg.Minio, s.cfg.BackupID)
	if err != nil {
		return errors.Wrapf(err, "inspect backup artifacts for %s", s.cfg.BackupID)
	}
	if size == 0 {
		return errors.Errorf("backup %s left no artifacts in bucket %s",
			s.cfg.BackupID, s.cfg.Minio.Bucket)
	}
	s.log.Infof("backup %s occupies %d bytes in bucket %s", s.cfg.BackupID, size, s.cfg.Minio.Bucket)
	return nil
}
