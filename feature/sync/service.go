package sync

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"stock-sync/feature/catalog"
	"stock-sync/feature/catalog/models"

	"go.uber.org/zap"
)

// ErrRunInProgress is returned when a run is requested while another one is
// still executing. Concurrent runs would race on the same canonical records.
var ErrRunInProgress = errors.New("a sync run is already in progress")

// ErrArchiveDisabled is returned when report endpoints are used without a
// configured archive.
var ErrArchiveDisabled = errors.New("run report archive is not enabled")

// Service exposes the pipeline to the HTTP and CLI surfaces and guarantees
// at most one run executes at a time.
type Service struct {
	store        *catalog.Store
	orchestrator *Orchestrator
	archiver     *Archiver
	logger       *zap.Logger

	running atomic.Bool
}

// NewService creates the sync service. The archiver may be nil when report
// archiving is disabled.
func NewService(store *catalog.Store, orchestrator *Orchestrator, archiver *Archiver, logger *zap.Logger) *Service {
	return &Service{store: store, orchestrator: orchestrator, archiver: archiver, logger: logger}
}

// RunOnce executes a full pipeline run synchronously. Used by the CLI.
func (s *Service) RunOnce(ctx context.Context, triggeredBy string) (*models.SyncRun, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	run, err := s.store.CreateRun(ctx, triggeredBy)
	if err != nil {
		return nil, err
	}
	if err := s.orchestrator.Execute(ctx, run); err != nil {
		s.logger.Error("Sync run failed", zap.Uint("run_id", run.ID), zap.Error(err))
	}
	return run, nil
}

// StartRun launches a pipeline run in the background and returns the created
// run row immediately. Used by the HTTP trigger endpoint.
func (s *Service) StartRun(ctx context.Context, triggeredBy string) (*models.SyncRun, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}

	run, err := s.store.CreateRun(ctx, triggeredBy)
	if err != nil {
		s.running.Store(false)
		return nil, err
	}

	go func() {
		defer s.running.Store(false)
		if err := s.orchestrator.Execute(context.Background(), run); err != nil {
			s.logger.Error("Sync run failed", zap.Uint("run_id", run.ID), zap.Error(err))
		}
	}()

	return run, nil
}

// GetRun fetches a single run by id.
func (s *Service) GetRun(ctx context.Context, id uint) (*models.SyncRun, error) {
	return s.store.GetRun(ctx, id)
}

// ListRuns returns the most recent runs, newest first.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]models.SyncRun, error) {
	return s.store.ListRuns(ctx, limit)
}

// ListReports lists archived run reports.
func (s *Service) ListReports(ctx context.Context) ([]string, error) {
	if s.archiver == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archiver.List(ctx)
}

// ReadReport streams one archived run report.
func (s *Service) ReadReport(ctx context.Context, name string) (io.ReadCloser, error) {
	if s.archiver == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archiver.Read(ctx, name)
}
