package catalog

import (
	"math"
	"strconv"
	"testing"

	"github.com/amaumene/cinesync/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Defaults(t *testing.T) {
	spec, err := Normalize(RawFilter{})
	require.NoError(t, err)

	assert.Equal(t, DefaultPage, spec.Page)
	assert.Equal(t, DefaultLimit, spec.Limit)
	assert.Zero(t, spec.Offset())
	assert.Nil(t, spec.GenreIDs)
	assert.Nil(t, spec.ReleaseYear)
	assert.Nil(t, spec.Adult)
	assert.Empty(t, Compile(spec))
}

func TestNormalize_GenreUnion(t *testing.T) {
	spec, err := Normalize(RawFilter{
		GenreIDs:   []string{"35,28", " 878 ", "28"},
		GenreNames: []string{"science fiction", "DRAMA"},
	})
	require.NoError(t, err)

	assert.Equal(t, []int{18, 28, 35, 878}, spec.GenreIDs)
}

func TestNormalize_EmptyGenresMeanNoFilter(t *testing.T) {
	spec, err := Normalize(RawFilter{GenreIDs: []string{"", " , "}, GenreNames: []string{" "}})
	require.NoError(t, err)

	assert.Nil(t, spec.GenreIDs)
	assert.Empty(t, Compile(spec))
}

func TestNormalize_UnknownGenreName(t *testing.T) {
	_, err := Normalize(RawFilter{GenreNames: []string{"Comdy"}})

	var validationErr *errs.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "genreName", validationErr.Field)
	assert.Contains(t, validationErr.Message, `did you mean "Comedy"?`)
}

func TestNormalize_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		raw   RawFilter
		field string
	}{
		{"genre id", RawFilter{GenreIDs: []string{"abc"}}, "genreId"},
		{"release year", RawFilter{ReleaseYear: "1999.5"}, "releaseYear"},
		{"min vote", RawFilter{MinVoteAverage: "high"}, "minVoteAverage"},
		{"max vote NaN", RawFilter{MaxVoteAverage: "NaN"}, "maxVoteAverage"},
		{"min popularity", RawFilter{MinPopularity: "x"}, "minPopularity"},
		{"max popularity", RawFilter{MaxPopularity: "Inf"}, "maxPopularity"},
		{"adult", RawFilter{Adult: "maybe"}, "adult"},
		{"page zero", RawFilter{Page: "0"}, "page"},
		{"negative limit", RawFilter{Limit: "-5"}, "limit"},
		{"limit not a number", RawFilter{Limit: "ten"}, "limit"},
		{"limit above max", RawFilter{Limit: "101"}, "limit"},
		{"page past int range", RawFilter{Page: "99999999999999999999"}, "page"},
		{"offset overflows", RawFilter{Page: "4611686018427387905", Limit: "4"}, "page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw)

			var validationErr *errs.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestNormalize_AllFields(t *testing.T) {
	spec, err := Normalize(RawFilter{
		Search:         "  matrix ",
		GenreIDs:       []string{"878"},
		Language:       "en",
		ReleaseYear:    "1999",
		MinVoteAverage: "7",
		MaxVoteAverage: "9.5",
		MinPopularity:  "10",
		MaxPopularity:  "100",
		Adult:          "false",
		Page:           "3",
		Limit:          "20",
	})
	require.NoError(t, err)

	assert.Equal(t, "matrix", spec.Search)
	assert.Equal(t, []int{878}, spec.GenreIDs)
	assert.Equal(t, "en", spec.Language)
	assert.Equal(t, 1999, *spec.ReleaseYear)
	assert.Equal(t, 7.0, *spec.MinVoteAverage)
	assert.Equal(t, 9.5, *spec.MaxVoteAverage)
	assert.Equal(t, 10.0, *spec.MinPopularity)
	assert.Equal(t, 100.0, *spec.MaxPopularity)
	assert.False(t, *spec.Adult)
	assert.Equal(t, 40, spec.Offset())
	assert.Len(t, Compile(spec), 9)
}

func TestNormalize_LargestPage(t *testing.T) {
	spec, err := Normalize(RawFilter{Page: strconv.Itoa(math.MaxInt/MaxLimit + 1), Limit: strconv.Itoa(MaxLimit)})
	require.NoError(t, err)
	assert.Positive(t, spec.Offset())
	assert.Equal(t, (spec.Page-1)*MaxLimit, spec.Offset())
}

func TestSuggestGenre(t *testing.T) {
	assert.Equal(t, "Thriller", SuggestGenre("thriler"))
	assert.Equal(t, "Science Fiction", SuggestGenre("science fction"))
	assert.Empty(t, SuggestGenre("zzzzzzzzzz"))
}

func TestLookupGenre(t *testing.T) {
	id, ok := LookupGenre("  tv   movie ")
	assert.True(t, ok)
	assert.Equal(t, 10770, id)

	_, ok = LookupGenre("Anime")
	assert.False(t, ok)
}
