package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const (
	upsertBatchSize = 100
	idChunkSize     = 500
)

// Database wraps the gorm connection
type Database struct {
	db     *gorm.DB
	driver Driver
}

// NewDatabase opens a database connection for the given driver and DSN.
// A nil queryLogger silences gorm.
func NewDatabase(driver Driver, dsn string, queryLogger logger.Interface) (*Database, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(sqliteDSN(dsn))
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if queryLogger == nil {
		queryLogger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: queryLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying db: %w", err)
	}
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	return &Database{db: db, driver: driver}, nil
}

// sqliteDSN enables foreign keys so favorites and ratings cascade
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on&_busy_timeout=5000"
}

// Migrate creates or updates the schema
func (d *Database) Migrate() error {
	if err := d.db.AutoMigrate(&Movie{}, &MovieGenre{}, &User{}, &Rating{}, &Favorite{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	if err := d.backfillFoldedTitles(); err != nil {
		return fmt.Errorf("failed to backfill folded titles: %w", err)
	}
	return nil
}

// backfillFoldedTitles fills the search columns of rows stored before they existed
func (d *Database) backfillFoldedTitles() error {
	var batch []Movie
	return d.db.
		Where("title_folded = '' AND (title <> '' OR original_title <> '')").
		FindInBatches(&batch, upsertBatchSize, func(_ *gorm.DB, _ int) error {
			for i := range batch {
				batch[i].foldTitles()
				err := d.db.Model(&Movie{}).Where("id = ?", batch[i].ID).Updates(map[string]any{
					"title_folded":          batch[i].TitleFolded,
					"original_title_folded": batch[i].OriginalTitleFolded,
				}).Error
				if err != nil {
					return err
				}
			}
			return nil
		}).Error
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Gorm exposes the connection for query builders
func (d *Database) Gorm() *gorm.DB {
	return d.db
}

// Driver returns the configured backend
func (d *Database) Driver() Driver {
	return d.driver
}

// Movie operations

// UpsertMovies inserts or overwrites movies by ID and replaces their genre sets.
// Ratings and favorites are left untouched. The whole batch is one transaction.
func (d *Database) UpsertMovies(ctx context.Context, movies []Movie) error {
	if len(movies) == 0 {
		return nil
	}

	for i := range movies {
		movies[i].foldTitles()
	}

	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).CreateInBatches(&movies, upsertBatchSize).Error
		if err != nil {
			return fmt.Errorf("failed to upsert movies: %w", err)
		}

		ids := make([]uint, 0, len(movies))
		var links []MovieGenre
		for _, movie := range movies {
			ids = append(ids, movie.ID)
			for _, genreID := range movie.GenreIDs {
				links = append(links, MovieGenre{MovieID: movie.ID, GenreID: genreID})
			}
		}

		for _, chunk := range chunkIDs(ids, idChunkSize) {
			if err := tx.Where("movie_id IN ?", chunk).Delete(&MovieGenre{}).Error; err != nil {
				return fmt.Errorf("failed to clear movie genres: %w", err)
			}
		}

		if len(links) > 0 {
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&links, idChunkSize).Error
			if err != nil {
				return fmt.Errorf("failed to save movie genres: %w", err)
			}
		}

		return nil
	})
}

// GetMovieByID retrieves a movie with its genre set
func (d *Database) GetMovieByID(ctx context.Context, id uint) (*Movie, error) {
	var movie Movie
	if err := d.db.WithContext(ctx).First(&movie, id).Error; err != nil {
		return nil, err
	}

	genres, err := d.GenreIDsByMovie(ctx, []uint{id})
	if err != nil {
		return nil, err
	}
	movie.GenreIDs = genres[id]
	if movie.GenreIDs == nil {
		movie.GenreIDs = []int{}
	}

	return &movie, nil
}

// MovieExists reports whether a movie with this ID is stored
func (d *Database) MovieExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&Movie{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// GenreIDsByMovie loads genre sets for the given movies, sorted ascending
func (d *Database) GenreIDsByMovie(ctx context.Context, ids []uint) (map[uint][]int, error) {
	result := make(map[uint][]int, len(ids))
	for _, chunk := range chunkIDs(ids, idChunkSize) {
		var links []MovieGenre
		err := d.db.WithContext(ctx).
			Where("movie_id IN ?", chunk).
			Order("movie_id ASC").Order("genre_id ASC").
			Find(&links).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load movie genres: %w", err)
		}
		for _, link := range links {
			result[link.MovieID] = append(result[link.MovieID], link.GenreID)
		}
	}
	return result, nil
}

// User operations

// CreateUser inserts a new user
func (d *Database) CreateUser(ctx context.Context, user *User) error {
	return d.db.WithContext(ctx).Create(user).Error
}

// GetUserByID retrieves a user by ID
func (d *Database) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := d.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (d *Database) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := d.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Rating operations

// UpsertRating writes the score for (user, movie), updating the existing row if any
func (d *Database) UpsertRating(ctx context.Context, userID, movieID uint, score int) (*Rating, error) {
	rating := &Rating{UserID: userID, MovieID: movieID, Score: score}
	err := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
	}).Create(rating).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save rating: %w", err)
	}

	return d.GetRatingByUserAndMovie(ctx, userID, movieID)
}

// GetRatingByID retrieves a rating by ID
func (d *Database) GetRatingByID(ctx context.Context, id uint) (*Rating, error) {
	var rating Rating
	if err := d.db.WithContext(ctx).First(&rating, id).Error; err != nil {
		return nil, err
	}
	return &rating, nil
}

// GetRatingByUserAndMovie retrieves the rating a user gave a movie
func (d *Database) GetRatingByUserAndMovie(ctx context.Context, userID, movieID uint) (*Rating, error) {
	var rating Rating
	err := d.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// UpdateRatingScore sets a new score on an existing rating
func (d *Database) UpdateRatingScore(ctx context.Context, rating *Rating, score int) error {
	rating.Score = score
	return d.db.WithContext(ctx).Model(rating).Update("score", score).Error
}

// DeleteRating deletes a rating by ID
func (d *Database) DeleteRating(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Delete(&Rating{}, id).Error
}

// Favorite operations

// CreateFavorite inserts a favorite
func (d *Database) CreateFavorite(ctx context.Context, favorite *Favorite) error {
	return d.db.WithContext(ctx).Create(favorite).Error
}

// GetFavorite retrieves the favorite linking a user to a movie
func (d *Database) GetFavorite(ctx context.Context, userID, movieID uint) (*Favorite, error) {
	var favorite Favorite
	err := d.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		First(&favorite).Error
	if err != nil {
		return nil, err
	}
	return &favorite, nil
}

// DeleteFavorite deletes a favorite by ID
func (d *Database) DeleteFavorite(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Delete(&Favorite{}, id).Error
}

// ListFavoritesWithMovies retrieves a user's favorites with their movies, newest first
func (d *Database) ListFavoritesWithMovies(ctx context.Context, userID uint) ([]*Favorite, error) {
	var favorites []*Favorite
	err := d.db.WithContext(ctx).
		Preload("Movie").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(favorites))
	for _, favorite := range favorites {
		ids = append(ids, favorite.MovieID)
	}
	genres, err := d.GenreIDsByMovie(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, favorite := range favorites {
		if favorite.Movie == nil {
			continue
		}
		favorite.Movie.GenreIDs = genres[favorite.MovieID]
		if favorite.Movie.GenreIDs == nil {
			favorite.Movie.GenreIDs = []int{}
		}
	}

	return favorites, nil
}

// Stats

// Counts holds row counts per table
type Counts struct {
	Movies    int64 `json:"movies"`
	Users     int64 `json:"users"`
	Ratings   int64 `json:"ratings"`
	Favorites int64 `json:"favorites"`
}

// CountAll returns row counts for the status endpoint
func (d *Database) CountAll(ctx context.Context) (*Counts, error) {
	counts := &Counts{}
	targets := []struct {
		model any
		dest  *int64
	}{
		{&Movie{}, &counts.Movies},
		{&User{}, &counts.Users},
		{&Rating{}, &counts.Ratings},
		{&Favorite{}, &counts.Favorites},
	}
	for _, target := range targets {
		if err := d.db.WithContext(ctx).Model(target.model).Count(target.dest).Error; err != nil {
			return nil, err
		}
	}
	return counts, nil
}

// IsNotFound reports whether err is gorm's record-not-found
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation reports whether err comes from a unique constraint
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func chunkIDs(ids []uint, size int) [][]uint {
	var chunks [][]uint
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
