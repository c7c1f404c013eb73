// Package dashboard turns uploaded bagels into the tables, counts and charts displayed by the dashboard.
package dashboard

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/askiada/procdash/internal/store"
	"github.com/askiada/procdash/pkg/bagel"
	"github.com/askiada/procdash/pkg/pipeline/drawer"
	"github.com/askiada/procdash/pkg/pipeline/measure"
	"github.com/askiada/procdash/pkg/pipeline/model"
)

var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrUnknownChart    = errors.New("unknown chart")
	ErrNoChart         = errors.New("dataset has no pipeline statuses to chart")
)

// UploadRequest is a bagel sent to the dashboard.
type UploadRequest struct {
	Filename string
	// Schema is the name of the bagel schema, imaging when empty.
	Schema string
	Name   string
	Body   io.Reader
}

// Service manages the datasets of the dashboard.
type Service struct {
	logger      *zap.Logger
	datasets    store.Store[string, *Dataset]
	concurrency int
	graphFile   string
	pageSize    int
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithConcurrency sets the number of goroutines normalizing the rows of an upload.
func WithConcurrency(concurrent int) Option {
	return func(s *Service) {
		s.concurrency = concurrent
	}
}

// WithGraphFile draws the ingest pipeline of every upload, with its step timings, to path.
func WithGraphFile(path string) Option {
	return func(s *Service) {
		s.graphFile = path
	}
}

// WithPageSize sets the number of rows of a page. Non-positive sizes keep bagel.DefaultPageSize.
func WithPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// NewService creates a service keeping its datasets in datasets.
func NewService(logger *zap.Logger, datasets store.Store[string, *Dataset], opts ...Option) *Service {
	s := &Service{
		logger:      logger,
		datasets:    datasets,
		concurrency: 1,
		pageSize:    bagel.DefaultPageSize,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// PageSize returns the number of rows of a page.
func (s *Service) PageSize() int {
	return s.pageSize
}

// Upload parses a bagel and stores it as a new dataset.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*Dataset, error) {
	ds, err := s.build(ctx, uuid.NewString(), req)
	if err != nil {
		return nil, err
	}

	err = s.datasets.Add(ds.ID, ds)
	if err != nil {
		return nil, errors.Wrap(err, "unable to store dataset")
	}

	s.logger.Info("dataset uploaded", datasetFields(ds)...)

	return ds, nil
}

// Reload parses a bagel and stores it under id, replacing the dataset with the same id. The dataset keeps its
// name unless req has one.
func (s *Service) Reload(ctx context.Context, id string, req UploadRequest) (*Dataset, error) {
	ds, err := s.build(ctx, id, req)
	if err != nil {
		return nil, err
	}

	err = s.datasets.Update(id, func(previous *Dataset) (*Dataset, error) {
		if req.Name == "" {
			ds.Name = previous.Name
		}

		return ds, nil
	})
	if errors.Is(err, store.ErrNotFound) {
		err = s.datasets.Add(id, ds)
	}
	if err != nil {
		return nil, errors.Wrap(err, "unable to store dataset")
	}

	s.logger.Info("dataset reloaded", datasetFields(ds)...)

	return ds, nil
}

func datasetFields(ds *Dataset) []zap.Field {
	return []zap.Field{
		zap.String("id", ds.ID),
		zap.String("name", ds.Name),
		zap.String("filename", ds.Filename),
		zap.String("schema", ds.Schema.Name),
		zap.Int("rows", ds.Records.Len()),
		zap.Int("participants", bagel.CountUniqueSubjects(ds.Overview)),
		zap.Int("records", bagel.CountUniqueRecords(ds.Overview)),
	}
}

func (s *Service) build(ctx context.Context, id string, req UploadRequest) (*Dataset, error) {
	schemaName := req.Schema
	if schemaName == "" {
		schemaName = bagel.SchemaImaging
	}

	schema, err := bagel.SchemaByName(schemaName)
	if err != nil {
		return nil, err
	}

	rec := measure.NewRecorder()
	pipeOpts := []model.PipelineOption{rec}
	if s.graphFile != "" {
		pipeOpts = append(pipeOpts, drawer.PipelineDrawer(drawer.NewDOTDrawer(s.graphFile), rec))
	}

	start := s.now()

	records, err := bagel.Parse(ctx, req.Body, req.Filename, schema,
		bagel.WithConcurrency(s.concurrency), bagel.WithPipelineOptions(pipeOpts...))
	if err != nil {
		s.logger.Warn("unable to parse bagel", zap.String("filename", req.Filename), zap.Error(err))

		return nil, err
	}

	s.logIngest(rec, req.Filename, time.Since(start))

	overview, err := bagel.Overview(records, schema)
	if err != nil {
		return nil, errors.Wrap(err, "unable to build overview")
	}

	return &Dataset{
		ID:         id,
		Name:       renamed(strings.TrimSpace(req.Name)),
		Filename:   req.Filename,
		Schema:     schema,
		Records:    records,
		Overview:   overview,
		Pipelines:  bagel.ExtractPipelines(records, schema),
		Sessions:   bagel.Sessions(overview),
		UploadedAt: s.now(),
	}, nil
}

func (s *Service) logIngest(rec *measure.Recorder, filename string, elapsed time.Duration) {
	if ce := s.logger.Check(zap.DebugLevel, "bagel ingested"); ce != nil {
		fields := []zap.Field{zap.String("filename", filename), zap.Duration("elapsed", elapsed)}
		for _, step := range rec.Steps() {
			if step.Items == 0 {
				continue
			}
			fields = append(fields, zap.Dict(step.Name,
				zap.Int64("items", step.Items),
				zap.Int("workers", step.Workers),
				zap.Duration("avg", step.MeanWork()),
			))
		}
		ce.Write(fields...)
	}
}

// Get returns the dataset stored under id.
func (s *Service) Get(id string) (*Dataset, error) {
	ds, err := s.datasets.Get(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errors.Wrap(ErrDatasetNotFound, id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "unable to get dataset %s", id)
	}

	return ds, nil
}

// List returns the stored datasets, the most recent first.
func (s *Service) List() []*Dataset {
	ids := s.datasets.List()
	res := make([]*Dataset, 0, len(ids))

	for i := len(ids) - 1; i >= 0; i-- {
		ds, err := s.datasets.Get(ids[i])
		if err != nil {
			continue
		}
		res = append(res, ds)
	}

	return res
}

// Rename changes the display name of a dataset. An empty name restores DefaultDatasetName.
func (s *Service) Rename(id, name string) (*Dataset, error) {
	var res *Dataset

	err := s.datasets.Update(id, func(ds *Dataset) (*Dataset, error) {
		cp := *ds
		cp.Name = renamed(strings.TrimSpace(name))
		res = &cp

		return res, nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, errors.Wrap(ErrDatasetNotFound, id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "unable to rename dataset %s", id)
	}

	s.logger.Info("dataset renamed", zap.String("id", id), zap.String("name", res.Name))

	return res, nil
}

// Delete removes dataset id.
func (s *Service) Delete(id string) error {
	err := s.datasets.Remove(id)
	if errors.Is(err, store.ErrNotFound) {
		return errors.Wrap(ErrDatasetNotFound, id)
	}
	if err != nil {
		return errors.Wrapf(err, "unable to delete dataset %s", id)
	}

	s.logger.Info("dataset deleted", zap.String("id", id))

	return nil
}
