package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amaumene/cinesync/internal/auth"
	"github.com/amaumene/cinesync/internal/cache"
	"github.com/amaumene/cinesync/internal/catalog"
	"github.com/amaumene/cinesync/internal/config"
	"github.com/amaumene/cinesync/internal/controllers"
	"github.com/amaumene/cinesync/internal/metrics"
	"github.com/amaumene/cinesync/internal/models"
	"github.com/amaumene/cinesync/internal/services/tmdb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type stubFetcher struct {
	movies []tmdb.Movie
	calls  atomic.Int32
}

func (f *stubFetcher) PopularMovies(ctx context.Context, creds tmdb.Credentials, page int) ([]tmdb.Movie, error) {
	f.calls.Add(1)
	if page == 1 {
		return f.movies, nil
	}
	return nil, nil
}

type testServer struct {
	t       *testing.T
	server  *Server
	db      *models.Database
	fetcher *stubFetcher
}

func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db, err := models.NewDatabase(models.DriverSQLite, filepath.Join(t.TempDir(), "api.db"), nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	tp := noop.NewTracerProvider()
	tokens := auth.NewTokens("s3cret", time.Hour)
	fetcher := &stubFetcher{movies: []tmdb.Movie{
		{ID: 603, Title: "The Matrix", Popularity: 90, ReleaseDate: "1999-03-31", GenreIDs: []int{28, 878}},
		{ID: 604, Title: "The Matrix Reloaded", Popularity: 70, ReleaseDate: "2003-05-15", GenreIDs: []int{28}},
	}}

	deps := Deps{
		DB:           db,
		Catalog:      catalog.NewService(db, cache.NewMemory(time.Minute), time.Minute, m, tp, logger),
		SyncCtrl:     controllers.NewSyncController(fetcher, db, time.Second, m, tp, logger),
		RatingCtrl:   controllers.NewRatingController(db, logger),
		FavoriteCtrl: controllers.NewFavoriteController(db, logger),
		UserCtrl:     controllers.NewUserController(db, tokens, logger),
		Tokens:       tokens,
		Metrics:      m,
		Gatherer:     reg,
	}

	return &testServer{t: t, server: NewServer(cfg, deps, logger), db: db, fetcher: fetcher}
}

func configuredTMDB() *config.Config {
	return &config.Config{
		TMDBBaseURL:     "https://tmdb.test/3",
		TMDBAccessToken: "token",
		TMDBAPIKey:      "key",
		ServerPort:      "0",
	}
}

func (s *testServer) do(method, path, token string, body any) (int, []byte) {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.server.App().Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp.StatusCode, data
}

func (s *testServer) login(email string) string {
	s.t.Helper()

	status, _ := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": email, "password": "password1", "name": "Tester",
	})
	require.Equal(s.t, http.StatusCreated, status)

	status, body := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": "password1",
	})
	require.Equal(s.t, http.StatusOK, status)

	var session struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(s.t, json.Unmarshal(body, &session))
	require.NotEmpty(s.t, session.AccessToken)
	return session.AccessToken
}

func (s *testServer) sync(token string) {
	s.t.Helper()
	status, body := s.do(http.MethodPost, "/api/v1/movies/sync", token, map[string]int{"pages": 2})
	require.Equal(s.t, http.StatusOK, status, string(body))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, configuredTMDB())

	status, body := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"healthy"}`, string(body))
}

func TestSyncAndList(t *testing.T) {
	s := newTestServer(t, configuredTMDB())

	status, _ := s.do(http.MethodPost, "/api/v1/movies/sync", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	token := s.login("jane@example.com")
	status, body := s.do(http.MethodPost, "/api/v1/movies/sync", token, map[string]int{"pages": 2})
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"2 unique movies synced from TMDB (0 duplicates skipped).","fetched":2,"duplicates":0,"synced":2}`, string(body))

	status, body = s.do(http.MethodGet, "/api/v1/movies?search=matrix&limit=1", "", nil)
	require.Equal(t, http.StatusOK, status)

	var page struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		Total      int64 `json:"total"`
		TotalPages int   `json:"totalPages"`
		Results    []struct {
			ID            uint     `json:"id"`
			GenreIDs      []int    `json:"genre_ids"`
			AverageRating *float64 `json:"averageRating"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Results, 1)
	assert.Equal(t, uint(603), page.Results[0].ID)
	assert.Equal(t, []int{28, 878}, page.Results[0].GenreIDs)
	assert.Nil(t, page.Results[0].AverageRating)

	status, body = s.do(http.MethodGet, "/api/v1/movies?genreId=12&genreId=878", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, int64(1), page.Total)

	status, body = s.do(http.MethodGet, "/api/v1/movies?genreName=Action&releaseYear=2003", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &page))
	require.Len(t, page.Results, 1)
	assert.Equal(t, uint(604), page.Results[0].ID)
}

func TestList_ValidationErrors(t *testing.T) {
	s := newTestServer(t, configuredTMDB())

	for _, query := range []string{"adult=maybe", "page=0", "genreId=x", "genreName=Comdy", "minPopularity=high", "limit=101", "page=4611686018427387905&limit=4"} {
		status, body := s.do(http.MethodGet, "/api/v1/movies?"+query, "", nil)
		assert.Equal(t, http.StatusBadRequest, status, query)
		assert.Contains(t, string(body), `"field"`, query)
	}
}

func TestSync_EmptyBodyUsesConfiguredPages(t *testing.T) {
	cfg := configuredTMDB()
	cfg.SyncPages = 2
	s := newTestServer(t, cfg)
	token := s.login("jane@example.com")

	status, body := s.do(http.MethodPost, "/api/v1/movies/sync", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, int32(2), s.fetcher.calls.Load())
}

func TestSync_MissingCredentials(t *testing.T) {
	s := newTestServer(t, &config.Config{TMDBBaseURL: "https://tmdb.test/3"})
	token := s.login("jane@example.com")

	status, body := s.do(http.MethodPost, "/api/v1/movies/sync", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, string(body), "TMDB_API_TOKEN")

	counts, err := s.db.CountAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, counts.Movies)
}

func TestUsers(t *testing.T) {
	s := newTestServer(t, configuredTMDB())
	token := s.login("jane@example.com")

	status, body := s.do(http.MethodGet, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"email":"jane@example.com"`)
	assert.NotContains(t, string(body), "password")

	status, _ = s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "jane@example.com", "password": "password1", "name": "Again",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "jane@example.com", "password": "nope-nope",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(http.MethodGet, "/api/v1/users/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRatings(t *testing.T) {
	s := newTestServer(t, configuredTMDB())
	alice := s.login("alice@example.com")
	bob := s.login("bob@example.com")
	s.sync(alice)

	status, body := s.do(http.MethodPost, "/api/v1/ratings/rate", alice, map[string]any{"movieId": 603, "score": 6})
	require.Equal(t, http.StatusCreated, status)
	var rating struct {
		ID    uint `json:"id"`
		Score int  `json:"score"`
	}
	require.NoError(t, json.Unmarshal(body, &rating))

	status, _ = s.do(http.MethodPost, "/api/v1/ratings/rate", bob, map[string]any{"movieId": 603, "score": 8})
	require.Equal(t, http.StatusCreated, status)

	status, _ = s.do(http.MethodPost, "/api/v1/ratings/rate", bob, map[string]any{"movieId": 603, "score": 11})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(http.MethodPost, "/api/v1/ratings/rate", bob, map[string]any{"movieId": 1, "score": 5})
	assert.Equal(t, http.StatusNotFound, status)

	status, body = s.do(http.MethodGet, "/api/v1/ratings/movie/603/average", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"movieId":603,"averageRating":7}`, string(body))

	status, body = s.do(http.MethodGet, "/api/v1/ratings/movie/604/average", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"movieId":604,"averageRating":null}`, string(body))

	path := "/api/v1/ratings/" + strconv.FormatUint(uint64(rating.ID), 10)
	status, _ = s.do(http.MethodPut, path, bob, map[string]int{"score": 1})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(http.MethodDelete, path, bob, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = s.do(http.MethodPut, path, alice, map[string]int{"score": 9})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"score":9`)

	status, _ = s.do(http.MethodDelete, path, alice, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, body = s.do(http.MethodGet, "/api/v1/ratings/movie/603/user", alice, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "null", strings.TrimSpace(string(body)))

	status, _ = s.do(http.MethodPut, "/api/v1/ratings/abc", alice, map[string]int{"score": 9})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestFavorites(t *testing.T) {
	s := newTestServer(t, configuredTMDB())
	token := s.login("jane@example.com")
	s.sync(token)

	status, _ := s.do(http.MethodPost, "/api/v1/favorites/603", token, nil)
	require.Equal(t, http.StatusCreated, status)
	status, _ = s.do(http.MethodPost, "/api/v1/favorites/603", token, nil)
	require.Equal(t, http.StatusCreated, status)

	status, body := s.do(http.MethodGet, "/api/v1/favorites", token, nil)
	require.Equal(t, http.StatusOK, status)
	var favorites []struct {
		MovieID uint `json:"movieId"`
		Movie   struct {
			Title string `json:"title"`
		} `json:"movie"`
	}
	require.NoError(t, json.Unmarshal(body, &favorites))
	require.Len(t, favorites, 1)
	assert.Equal(t, "The Matrix", favorites[0].Movie.Title)

	status, _ = s.do(http.MethodDelete, "/api/v1/favorites/603", token, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = s.do(http.MethodDelete, "/api/v1/favorites/603", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStatusAndMetrics(t *testing.T) {
	s := newTestServer(t, configuredTMDB())
	token := s.login("jane@example.com")
	s.sync(token)

	status, body := s.do(http.MethodGet, "/status", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"database":"sqlite","movies":2,"users":1,"ratings":0,"favorites":0}`, string(body))

	status, body = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "cinesync_http_requests_total")
	assert.Contains(t, string(body), `cinesync_sync_runs_total{outcome="synced"} 1`)
}
