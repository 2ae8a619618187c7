package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/amaumene/cinesync/internal/models"
	"gorm.io/gorm"
)

// Predicate is one filter clause. The same compiled list is applied to the
// windowed query and to the count query so both select the same rows.
type Predicate interface {
	Apply(db *gorm.DB) *gorm.DB
}

// TextMatch matches title or original title case-insensitively, or the exact ID
// when the term is an integer. Both sides are Unicode case-folded.
type TextMatch struct {
	Term string
}

func (p TextMatch) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + escapeLike(models.FoldText(p.Term)) + "%"
	if id, err := strconv.ParseUint(p.Term, 10, 64); err == nil {
		return db.Where(
			`(movies.title_folded LIKE ? ESCAPE '\' OR movies.original_title_folded LIKE ? ESCAPE '\' OR movies.id = ?)`,
			pattern, pattern, id,
		)
	}
	return db.Where(
		`(movies.title_folded LIKE ? ESCAPE '\' OR movies.original_title_folded LIKE ? ESCAPE '\')`,
		pattern, pattern,
	)
}

// SetOverlap matches movies whose genre set intersects IDs
type SetOverlap struct {
	IDs []int
}

func (p SetOverlap) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(
		"EXISTS (SELECT 1 FROM movie_genres mg WHERE mg.movie_id = movies.id AND mg.genre_id IN ?)",
		p.IDs,
	)
}

// Equality matches a column exactly
type Equality struct {
	Column string
	Value  any
}

func (p Equality) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(fmt.Sprintf("movies.%s = ?", p.Column), p.Value)
}

// Bound is the comparison side of a RangeBound
type Bound string

const (
	Lower Bound = ">="
	Upper Bound = "<="
)

// RangeBound applies one inclusive bound to a numeric column
type RangeBound struct {
	Column string
	Bound  Bound
	Value  float64
}

func (p RangeBound) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(fmt.Sprintf("movies.%s %s ?", p.Column, p.Bound), p.Value)
}

// YearMatch matches release dates shaped YYYY-MM-DD in the given year.
// Empty or malformed dates never match.
type YearMatch struct {
	Year int
}

func (p YearMatch) Apply(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Where("movies.release_date ~ ?", fmt.Sprintf(`^%04d-[0-9]{2}-[0-9]{2}$`, p.Year))
	}
	return db.Where("movies.release_date GLOB ?", fmt.Sprintf("%04d-[0-9][0-9]-[0-9][0-9]", p.Year))
}

// Compile turns a FilterSpec into its ordered predicate list
func Compile(spec FilterSpec) []Predicate {
	var predicates []Predicate

	if spec.Search != "" {
		predicates = append(predicates, TextMatch{Term: spec.Search})
	}
	if len(spec.GenreIDs) > 0 {
		predicates = append(predicates, SetOverlap{IDs: spec.GenreIDs})
	}
	if spec.Language != "" {
		predicates = append(predicates, Equality{Column: "original_language", Value: spec.Language})
	}
	if spec.ReleaseYear != nil {
		predicates = append(predicates, YearMatch{Year: *spec.ReleaseYear})
	}
	if spec.MinVoteAverage != nil {
		predicates = append(predicates, RangeBound{Column: "vote_average", Bound: Lower, Value: *spec.MinVoteAverage})
	}
	if spec.MaxVoteAverage != nil {
		predicates = append(predicates, RangeBound{Column: "vote_average", Bound: Upper, Value: *spec.MaxVoteAverage})
	}
	if spec.MinPopularity != nil {
		predicates = append(predicates, RangeBound{Column: "popularity", Bound: Lower, Value: *spec.MinPopularity})
	}
	if spec.MaxPopularity != nil {
		predicates = append(predicates, RangeBound{Column: "popularity", Bound: Upper, Value: *spec.MaxPopularity})
	}
	if spec.Adult != nil {
		predicates = append(predicates, Equality{Column: "adult", Value: *spec.Adult})
	}

	return predicates
}

func applyAll(db *gorm.DB, predicates []Predicate) *gorm.DB {
	for _, predicate := range predicates {
		db = predicate.Apply(db)
	}
	return db
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
