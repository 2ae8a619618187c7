package handlers

import (
	"github.com/amaumene/cinesync/internal/catalog"
	"github.com/amaumene/cinesync/internal/controllers"
	"github.com/amaumene/cinesync/internal/services/tmdb"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// MoviesHandler serves the catalog listing and the manual sync trigger
type MoviesHandler struct {
	catalog  *catalog.Service
	syncCtrl *controllers.SyncController
	creds    tmdb.Credentials
	pages    int
	logger   *logrus.Logger
}

// NewMoviesHandler creates a new movies handler. pages is the page count
// synced when a request gives none.
func NewMoviesHandler(catalogService *catalog.Service, syncCtrl *controllers.SyncController, creds tmdb.Credentials, pages int, logger *logrus.Logger) *MoviesHandler {
	return &MoviesHandler{
		catalog:  catalogService,
		syncCtrl: syncCtrl,
		creds:    creds,
		pages:    pages,
		logger:   logger,
	}
}

// List handles GET /api/v1/movies
func (h *MoviesHandler) List(c *fiber.Ctx) error {
	spec, err := catalog.Normalize(rawFilter(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}

	page, err := h.catalog.List(c.UserContext(), spec)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(page)
}

// SyncRequest is the optional body of POST /api/v1/movies/sync
type SyncRequest struct {
	Pages int `json:"pages"`
}

// Sync handles POST /api/v1/movies/sync
func (h *MoviesHandler) Sync(c *fiber.Ctx) error {
	var req SyncRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return writeError(c, h.logger, err)
		}
	}
	if req.Pages == 0 {
		req.Pages = h.pages
	}

	h.logger.WithFields(logrus.Fields{
		"pages":   req.Pages,
		"user_id": userID(c),
	}).Info("Manual TMDB sync requested")

	result, err := h.syncCtrl.SyncPopular(c.UserContext(), h.creds, req.Pages)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(result)
}

// rawFilter collects list parameters. genreId and genreName may repeat.
func rawFilter(c *fiber.Ctx) catalog.RawFilter {
	args := c.Context().QueryArgs()
	return catalog.RawFilter{
		Search:         c.Query("search"),
		GenreIDs:       peekAll(args.PeekMulti("genreId")),
		GenreNames:     peekAll(args.PeekMulti("genreName")),
		Language:       c.Query("language"),
		ReleaseYear:    c.Query("releaseYear"),
		MinVoteAverage: c.Query("minVoteAverage"),
		MaxVoteAverage: c.Query("maxVoteAverage"),
		MinPopularity:  c.Query("minPopularity"),
		MaxPopularity:  c.Query("maxPopularity"),
		Adult:          c.Query("adult"),
		Page:           c.Query("page"),
		Limit:          c.Query("limit"),
	}
}

func peekAll(values [][]byte) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, string(value))
	}
	return out
}
