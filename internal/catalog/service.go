package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/amaumene/cinesync/internal/cache"
	"github.com/amaumene/cinesync/internal/metrics"
	"github.com/amaumene/cinesync/internal/models"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/amaumene/cinesync/internal/catalog"

// Page is one page of the catalog listing
type Page struct {
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	Total      int64         `json:"total"`
	TotalPages int           `json:"totalPages"`
	Results    []MovieResult `json:"results"`
}

// Service answers catalog list queries.
//
// Only the windowed result goes through the cache; the count always hits the
// store. Nothing invalidates cached pages on write, so a page can be up to one
// TTL stale and its total may disagree with the cached rows in that window.
type Service struct {
	db      *models.Database
	cache   cache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	tracer  trace.Tracer
	logger  *logrus.Logger
}

// NewService creates a catalog service
func NewService(db *models.Database, c cache.Cache, ttl time.Duration, m *metrics.Metrics, tp trace.TracerProvider, logger *logrus.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{
		db:      db,
		cache:   c,
		ttl:     ttl,
		metrics: m,
		tracer:  tp.Tracer(tracerName),
		logger:  logger,
	}
}

// List returns one page of movies matching the filter, with the total match count.
// The windowed and count queries run concurrently.
func (s *Service) List(ctx context.Context, spec FilterSpec) (*Page, error) {
	if err := spec.checkWindow(); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "catalog.List", trace.WithAttributes(
		attribute.Int("page", spec.Page),
		attribute.Int("limit", spec.Limit),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.CatalogQueryDuration.Observe(time.Since(start).Seconds())
	}()

	predicates := Compile(spec)

	var (
		results []MovieResult
		total   int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.windowed(gctx, predicates, spec)
		if err != nil {
			return err
		}
		results = rows
		return nil
	})
	g.Go(func() error {
		if err := countQuery(s.db.Gorm().WithContext(gctx), predicates).Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count movies: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int64("total", total), attribute.Int("results", len(results)))

	return &Page{
		Page:       spec.Page,
		Limit:      spec.Limit,
		Total:      total,
		TotalPages: totalPages(total, spec.Limit),
		Results:    results,
	}, nil
}

// windowed reads the page through the cache
func (s *Service) windowed(ctx context.Context, predicates []Predicate, spec FilterSpec) ([]MovieResult, error) {
	key := CacheKey(spec)

	var cached []MovieResult
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to read catalog cache")
	} else if hit {
		s.metrics.CatalogCache.WithLabelValues("hit").Inc()
		return cached, nil
	}
	s.metrics.CatalogCache.WithLabelValues("miss").Inc()

	results := []MovieResult{}
	if err := windowedQuery(s.db.Gorm().WithContext(ctx), predicates, spec).Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}

	if err := s.attachGenres(ctx, results); err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, results, s.ttl); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to write catalog cache")
	}

	return results, nil
}

func (s *Service) attachGenres(ctx context.Context, results []MovieResult) error {
	if len(results) == 0 {
		return nil
	}

	ids := make([]uint, len(results))
	for i := range results {
		ids[i] = results[i].ID
	}

	genres, err := s.db.GenreIDsByMovie(ctx, ids)
	if err != nil {
		return err
	}

	for i := range results {
		results[i].GenreIDs = genres[results[i].ID]
		if results[i].GenreIDs == nil {
			results[i].GenreIDs = []int{}
		}
	}
	return nil
}

// AverageRating returns the mean user score for a movie, nil when unrated
func (s *Service) AverageRating(ctx context.Context, movieID uint) (*float64, error) {
	return AverageRating(ctx, s.db.Gorm(), movieID)
}

func totalPages(total int64, limit int) int {
	if limit <= 0 || total == 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
