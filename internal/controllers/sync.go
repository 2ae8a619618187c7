package controllers

import (
	"context"
	"fmt"
	"time"

	"github.com/amaumene/cinesync/internal/errs"
	"github.com/amaumene/cinesync/internal/metrics"
	"github.com/amaumene/cinesync/internal/models"
	"github.com/amaumene/cinesync/internal/services/tmdb"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// DefaultSyncPages is the page count used when the caller gives none
const DefaultSyncPages = 5

// PopularFetcher fetches one page of the provider's popular feed
type PopularFetcher interface {
	PopularMovies(ctx context.Context, creds tmdb.Credentials, page int) ([]tmdb.Movie, error)
}

// CatalogWriter persists synced movies
type CatalogWriter interface {
	UpsertMovies(ctx context.Context, movies []models.Movie) error
}

// SyncResult summarizes one sync attempt
type SyncResult struct {
	Message    string `json:"message"`
	Fetched    int    `json:"fetched"`
	Duplicates int    `json:"duplicates"`
	Synced     int    `json:"synced"`
}

// SyncController mirrors the TMDB popular feed into the catalog
type SyncController struct {
	fetcher      PopularFetcher
	store        CatalogWriter
	fetchTimeout time.Duration
	metrics      *metrics.Metrics
	tracer       trace.Tracer
	logger       *logrus.Logger
	now          func() time.Time
}

// NewSyncController creates a new sync controller
func NewSyncController(fetcher PopularFetcher, store CatalogWriter, fetchTimeout time.Duration, m *metrics.Metrics, tp trace.TracerProvider, logger *logrus.Logger) *SyncController {
	return &SyncController{
		fetcher:      fetcher,
		store:        store,
		fetchTimeout: fetchTimeout,
		metrics:      m,
		tracer:       tp.Tracer("github.com/amaumene/cinesync/internal/controllers"),
		logger:       logger,
		now:          time.Now,
	}
}

// SyncPopular fetches pages 1..pages concurrently, dedupes by TMDB ID keeping
// the first occurrence, and upserts the survivors in one transaction.
//
// Missing credentials fail with ConfigurationError before any request. Any
// fetch or write failure fails the whole attempt with SyncFailedError; the
// first failing fetch cancels the others.
func (c *SyncController) SyncPopular(ctx context.Context, creds tmdb.Credentials, pages int) (*SyncResult, error) {
	if err := CheckCredentials(creds); err != nil {
		c.metrics.SyncRuns.WithLabelValues(metrics.OutcomeMisconfigured).Inc()
		return nil, err
	}
	if pages == 0 {
		pages = DefaultSyncPages
	}
	if pages < 0 {
		return nil, &errs.ValidationError{Field: "pages", Message: "must be at least 1"}
	}

	ctx, span := c.tracer.Start(ctx, "sync.SyncPopular", trace.WithAttributes(attribute.Int("pages", pages)))
	defer span.End()

	start := time.Now()
	defer func() {
		c.metrics.SyncDuration.Observe(time.Since(start).Seconds())
	}()

	c.logger.WithField("pages", pages).Info("Starting TMDB sync")

	result, err := c.syncPopular(ctx, creds, pages)
	if err != nil {
		c.metrics.SyncRuns.WithLabelValues(metrics.OutcomeFailed).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.WithError(err).Error("TMDB sync failed")
		return nil, &errs.SyncFailedError{Cause: err}
	}

	span.SetAttributes(
		attribute.Int("fetched", result.Fetched),
		attribute.Int("duplicates", result.Duplicates),
		attribute.Int("synced", result.Synced),
	)

	if result.Fetched == 0 {
		c.metrics.SyncRuns.WithLabelValues(metrics.OutcomeEmpty).Inc()
	} else {
		c.metrics.SyncRuns.WithLabelValues(metrics.OutcomeSynced).Inc()
		c.metrics.SyncedMovies.Add(float64(result.Synced))
		c.metrics.SyncDuplicates.Add(float64(result.Duplicates))
	}

	c.logger.WithFields(logrus.Fields{
		"fetched":    result.Fetched,
		"duplicates": result.Duplicates,
		"synced":     result.Synced,
	}).Info("TMDB sync completed")

	return result, nil
}

func (c *SyncController) syncPopular(ctx context.Context, creds tmdb.Credentials, pages int) (*SyncResult, error) {
	// Step 1: Fetch every page, fail fast
	pageResults, err := c.fetchPages(ctx, creds, pages)
	if err != nil {
		return nil, err
	}

	// Step 2: Merge in page order and drop duplicates
	unique, fetched := dedupeMovies(pageResults)
	if fetched == 0 {
		return &SyncResult{Message: "No movies found from TMDB."}, nil
	}

	// Step 3: Upsert survivors
	syncedAt := c.now().UTC()
	movies := make([]models.Movie, 0, len(unique))
	for _, movie := range unique {
		movies = append(movies, toCatalogMovie(movie, syncedAt))
	}

	if err := c.store.UpsertMovies(ctx, movies); err != nil {
		return nil, fmt.Errorf("failed to save movies: %w", err)
	}

	duplicates := fetched - len(movies)
	return &SyncResult{
		Message:    fmt.Sprintf("%d unique movies synced from TMDB (%d duplicates skipped).", len(movies), duplicates),
		Fetched:    fetched,
		Duplicates: duplicates,
		Synced:     len(movies),
	}, nil
}

// fetchPages runs one fetch per page and returns results indexed by page-1
func (c *SyncController) fetchPages(ctx context.Context, creds tmdb.Credentials, pages int) ([][]tmdb.Movie, error) {
	results := make([][]tmdb.Movie, pages)

	g, gctx := errgroup.WithContext(ctx)
	for page := 1; page <= pages; page++ {
		page := page // per-iteration copy (go directive < 1.22)
		g.Go(func() error {
			fetchCtx := gctx
			if c.fetchTimeout > 0 {
				var cancel context.CancelFunc
				fetchCtx, cancel = context.WithTimeout(gctx, c.fetchTimeout)
				defer cancel()
			}

			movies, err := c.fetcher.PopularMovies(fetchCtx, creds, page)
			if err != nil {
				return fmt.Errorf("failed to fetch page %d: %w", page, err)
			}

			c.logger.WithFields(logrus.Fields{
				"page":  page,
				"count": len(movies),
			}).Debug("Fetched TMDB page")

			results[page-1] = movies
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// dedupeMovies flattens pages in order and keeps the first record per ID.
// Returns the survivors and the number of records fetched.
func dedupeMovies(pages [][]tmdb.Movie) ([]tmdb.Movie, int) {
	seen := make(map[uint]struct{})
	var unique []tmdb.Movie
	fetched := 0

	for _, page := range pages {
		for _, movie := range page {
			fetched++
			if _, ok := seen[movie.ID]; ok {
				continue
			}
			seen[movie.ID] = struct{}{}
			unique = append(unique, movie)
		}
	}

	return unique, fetched
}

func toCatalogMovie(movie tmdb.Movie, syncedAt time.Time) models.Movie {
	genreIDs := append([]int{}, movie.GenreIDs...)
	return models.Movie{
		ID:               movie.ID,
		Title:            movie.Title,
		OriginalTitle:    movie.OriginalTitle,
		Overview:         movie.Overview,
		ReleaseDate:      movie.ReleaseDate,
		OriginalLanguage: movie.OriginalLanguage,
		Popularity:       movie.Popularity,
		VoteAverage:      movie.VoteAverage,
		VoteCount:        movie.VoteCount,
		Adult:            movie.Adult,
		Video:            movie.Video,
		PosterPath:       derefString(movie.PosterPath),
		BackdropPath:     derefString(movie.BackdropPath),
		SyncedAt:         syncedAt,
		GenreIDs:         genreIDs,
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
