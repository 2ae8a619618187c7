package models

// Driver identifies the SQL backend
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Genre is an entry of the TMDB movie genre list
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Genres is the TMDB movie genre list. IDs are stable on the provider side.
var Genres = []Genre{
	{ID: 28, Name: "Action"},
	{ID: 12, Name: "Adventure"},
	{ID: 16, Name: "Animation"},
	{ID: 35, Name: "Comedy"},
	{ID: 80, Name: "Crime"},
	{ID: 99, Name: "Documentary"},
	{ID: 18, Name: "Drama"},
	{ID: 10751, Name: "Family"},
	{ID: 14, Name: "Fantasy"},
	{ID: 36, Name: "History"},
	{ID: 27, Name: "Horror"},
	{ID: 10402, Name: "Music"},
	{ID: 9648, Name: "Mystery"},
	{ID: 10749, Name: "Romance"},
	{ID: 878, Name: "Science Fiction"},
	{ID: 10770, Name: "TV Movie"},
	{ID: 53, Name: "Thriller"},
	{ID: 10752, Name: "War"},
	{ID: 37, Name: "Western"},
}
