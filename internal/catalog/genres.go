package catalog

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/amaumene/cinesync/internal/models"
)

var genreByName = buildGenreIndex()

func buildGenreIndex() map[string]int {
	index := make(map[string]int, len(models.Genres))
	for _, genre := range models.Genres {
		index[foldGenreName(genre.Name)] = genre.ID
	}
	return index
}

// foldGenreName normalizes case and spacing so "science  fiction" matches "Science Fiction"
func foldGenreName(name string) string {
	return models.FoldText(strings.Join(strings.Fields(name), " "))
}

// LookupGenre resolves a TMDB genre name to its ID
func LookupGenre(name string) (int, bool) {
	id, ok := genreByName[foldGenreName(name)]
	return id, ok
}

// SuggestGenre returns the closest known genre name, or "" when nothing is close
func SuggestGenre(name string) string {
	folded := foldGenreName(name)
	best := ""
	bestDistance := -1
	for _, genre := range models.Genres {
		distance := levenshtein.ComputeDistance(folded, foldGenreName(genre.Name))
		if bestDistance < 0 || distance < bestDistance {
			best = genre.Name
			bestDistance = distance
		}
	}

	// More than a third of the name rewritten is not a typo
	if bestDistance < 0 || bestDistance*3 > len(folded) {
		return ""
	}
	return best
}
