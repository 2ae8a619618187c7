package controllers

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/amaumene/cinesync/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestDB(t *testing.T) *models.Database {
	t.Helper()
	db, err := models.NewDatabase(models.DriverSQLite, filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })
	return db
}

func seedMovies(t *testing.T, db *models.Database, ids ...uint) {
	t.Helper()
	movies := make([]models.Movie, 0, len(ids))
	for _, id := range ids {
		movies = append(movies, models.Movie{ID: id, Title: "Movie " + formatID(id), GenreIDs: []int{18}})
	}
	require.NoError(t, db.UpsertMovies(context.Background(), movies))
}

func seedUser(t *testing.T, db *models.Database, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "x", Name: email}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user
}
