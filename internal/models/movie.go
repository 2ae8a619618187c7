package models

import (
	"time"

	"golang.org/x/text/cases"
)

// Movie is a catalog item mirrored from TMDB. ID is the TMDB ID and the upsert key.
type Movie struct {
	ID               uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title            string    `gorm:"not null" json:"title"`
	OriginalTitle    string    `json:"original_title"`
	Overview         string    `gorm:"type:text" json:"overview"`
	ReleaseDate      string    `json:"release_date"` // YYYY-MM-DD as supplied by TMDB, may be empty
	OriginalLanguage string    `gorm:"index" json:"original_language"`
	Popularity       float64   `gorm:"index" json:"popularity"`
	VoteAverage      float64   `json:"vote_average"`
	VoteCount        int       `json:"vote_count"`
	Adult            bool      `gorm:"not null;default:false" json:"adult"`
	Video            bool      `gorm:"not null;default:false" json:"video"`
	PosterPath       string    `json:"poster_path"`
	BackdropPath     string    `json:"backdrop_path"`
	SyncedAt         time.Time `json:"synced_at"`

	// Case-folded titles for search, kept in step with Title and OriginalTitle
	TitleFolded         string `gorm:"not null;default:''" json:"-"`
	OriginalTitleFolded string `gorm:"not null;default:''" json:"-"`

	// Persisted in movie_genres
	GenreIDs []int `gorm:"-" json:"genre_ids"`
}

// TableName overrides the table name
func (Movie) TableName() string {
	return "movies"
}

// FoldText applies Unicode case folding. Stored titles and search terms both
// go through it, so matching does not depend on the database's LOWER().
// A Caser holds state, so each call builds its own.
func FoldText(text string) string {
	return cases.Fold().String(text)
}

func (m *Movie) foldTitles() {
	m.TitleFolded = FoldText(m.Title)
	m.OriginalTitleFolded = FoldText(m.OriginalTitle)
}

// MovieGenre links a movie to one TMDB genre ID
type MovieGenre struct {
	MovieID uint   `gorm:"primaryKey;autoIncrement:false"`
	GenreID int    `gorm:"primaryKey;autoIncrement:false;index"`
	Movie   *Movie `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name
func (MovieGenre) TableName() string {
	return "movie_genres"
}
