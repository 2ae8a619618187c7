package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Movie is one record of a TMDB movie list
type Movie struct {
	ID               uint    `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	OriginalLanguage string  `json:"original_language"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	GenreIDs         []int   `json:"genre_ids"`
	Adult            bool    `json:"adult"`
	Video            bool    `json:"video"`
	PosterPath       *string `json:"poster_path"`
	BackdropPath     *string `json:"backdrop_path"`
}

// MoviePage is one page of a TMDB movie list
type MoviePage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// PopularMovies fetches one page of the popular movies feed
func (c *Client) PopularMovies(ctx context.Context, creds Credentials, page int) ([]Movie, error) {
	params := url.Values{}
	params.Set("language", defaultLanguage)
	params.Set("page", strconv.Itoa(page))

	var result MoviePage
	if err := c.doRequest(ctx, creds, "/movie/popular", params, &result); err != nil {
		return nil, fmt.Errorf("failed to get popular movies page %d: %w", page, err)
	}

	return result.Results, nil
}
