// Package catalog implements the filtered, paginated movie listing: request
// normalization, predicate compilation for the windowed and count queries, the
// average-rating aggregate and the read-through result cache.
package catalog

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/amaumene/cinesync/internal/errs"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// RawFilter holds list parameters as received. Empty strings mean absent.
type RawFilter struct {
	Search         string
	GenreIDs       []string // each value may itself be a comma-separated list
	GenreNames     []string
	Language       string
	ReleaseYear    string
	MinVoteAverage string
	MaxVoteAverage string
	MinPopularity  string
	MaxPopularity  string
	Adult          string
	Page           string
	Limit          string
}

// FilterSpec is the normalized criteria for one catalog query.
// Nil pointers mean the corresponding predicate is omitted.
type FilterSpec struct {
	Search         string   `json:"search,omitempty"`
	GenreIDs       []int    `json:"genreIds,omitempty"` // sorted, unique
	Language       string   `json:"language,omitempty"`
	ReleaseYear    *int     `json:"releaseYear,omitempty"`
	MinVoteAverage *float64 `json:"minVoteAverage,omitempty"`
	MaxVoteAverage *float64 `json:"maxVoteAverage,omitempty"`
	MinPopularity  *float64 `json:"minPopularity,omitempty"`
	MaxPopularity  *float64 `json:"maxPopularity,omitempty"`
	Adult          *bool    `json:"adult,omitempty"`
	Page           int      `json:"page"`
	Limit          int      `json:"limit"`
}

// Offset is the number of rows skipped before the current page
func (s FilterSpec) Offset() int {
	return (s.Page - 1) * s.Limit
}

// checkWindow bounds page and limit so Offset never overflows
func (s FilterSpec) checkWindow() error {
	if s.Page < 1 {
		return &errs.ValidationError{Field: "page", Message: "must be at least 1"}
	}
	if s.Limit < 1 {
		return &errs.ValidationError{Field: "limit", Message: "must be at least 1"}
	}
	if s.Limit > MaxLimit {
		return &errs.ValidationError{Field: "limit", Message: fmt.Sprintf("must be at most %d", MaxLimit)}
	}
	if s.Page-1 > math.MaxInt/s.Limit {
		return &errs.ValidationError{Field: "page", Message: "is out of range"}
	}
	return nil
}

// Normalize validates raw parameters and turns them into a FilterSpec
func Normalize(raw RawFilter) (FilterSpec, error) {
	spec := FilterSpec{
		Search:   strings.TrimSpace(raw.Search),
		Language: strings.TrimSpace(raw.Language),
		Page:     DefaultPage,
		Limit:    DefaultLimit,
	}

	genreIDs, err := resolveGenres(raw.GenreIDs, raw.GenreNames)
	if err != nil {
		return FilterSpec{}, err
	}
	spec.GenreIDs = genreIDs

	if spec.ReleaseYear, err = parseOptionalInt("releaseYear", raw.ReleaseYear); err != nil {
		return FilterSpec{}, err
	}
	if spec.MinVoteAverage, err = parseOptionalFloat("minVoteAverage", raw.MinVoteAverage); err != nil {
		return FilterSpec{}, err
	}
	if spec.MaxVoteAverage, err = parseOptionalFloat("maxVoteAverage", raw.MaxVoteAverage); err != nil {
		return FilterSpec{}, err
	}
	if spec.MinPopularity, err = parseOptionalFloat("minPopularity", raw.MinPopularity); err != nil {
		return FilterSpec{}, err
	}
	if spec.MaxPopularity, err = parseOptionalFloat("maxPopularity", raw.MaxPopularity); err != nil {
		return FilterSpec{}, err
	}

	if value := strings.TrimSpace(raw.Adult); value != "" {
		adult, err := strconv.ParseBool(value)
		if err != nil {
			return FilterSpec{}, &errs.ValidationError{Field: "adult", Message: "must be true or false"}
		}
		spec.Adult = &adult
	}

	if spec.Page, err = parsePositive("page", raw.Page, DefaultPage); err != nil {
		return FilterSpec{}, err
	}
	if spec.Limit, err = parsePositive("limit", raw.Limit, DefaultLimit); err != nil {
		return FilterSpec{}, err
	}
	if err := spec.checkWindow(); err != nil {
		return FilterSpec{}, err
	}

	return spec, nil
}

// resolveGenres unions numeric IDs and named genres into a sorted, unique set
func resolveGenres(rawIDs, names []string) ([]int, error) {
	seen := make(map[int]struct{})

	for _, value := range rawIDs {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil {
				return nil, &errs.ValidationError{Field: "genreId", Message: fmt.Sprintf("%q is not a genre ID", part)}
			}
			seen[id] = struct{}{}
		}
	}

	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		id, ok := LookupGenre(name)
		if !ok {
			message := fmt.Sprintf("unknown genre %q", name)
			if suggestion := SuggestGenre(name); suggestion != "" {
				message += fmt.Sprintf(", did you mean %q?", suggestion)
			}
			return nil, &errs.ValidationError{Field: "genreName", Message: message}
		}
		seen[id] = struct{}{}
	}

	if len(seen) == 0 {
		return nil, nil
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

func parseOptionalInt(field, value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, &errs.ValidationError{Field: field, Message: "must be an integer"}
	}
	return &n, nil
}

func parseOptionalFloat(field, value string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, &errs.ValidationError{Field: field, Message: "must be a number"}
	}
	return &f, nil
}

func parsePositive(field, value string, fallback int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &errs.ValidationError{Field: field, Message: "must be an integer"}
	}
	if n < 1 {
		return 0, &errs.ValidationError{Field: field, Message: "must be at least 1"}
	}
	return n, nil
}
