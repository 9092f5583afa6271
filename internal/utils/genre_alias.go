package utils

import "strings"

// genreAliases maps colloquial genre words to catalogue labels
var genreAliases = map[string]string{
	"sci fi":          "Sci-Fi",
	"sci-fi":          "Sci-Fi",
	"scifi":           "Sci-Fi",
	"science fiction": "Sci-Fi",
	"romcom":          "Romance",
	"rom-com":         "Romance",
	"romantic":        "Romance",
	"love":            "Romance",
	"scary":           "Horror",
	"horror":          "Horror",
	"funny":           "Comedy",
	"comedies":        "Comedy",
	"comedy":          "Comedy",
	"animated":        "Animation",
	"cartoon":         "Animation",
	"cartoons":        "Animation",
	"anime":           "Animation",
	"action":          "Action",
	"thrillers":       "Thriller",
	"suspense":        "Thriller",
	"documentary":     "Documentary",
	"documentaries":   "Documentary",
	"docs":            "Documentary",
	"dramas":          "Drama",
	"crime":           "Crime",
	"gangster":        "Crime",
	"war":             "War",
	"western":         "Western",
	"westerns":        "Western",
	"musical":         "Musical",
	"musicals":        "Musical",
	"fantasy":         "Fantasy",
	"family":          "Family",
	"kids":            "Family",
	"mystery":         "Mystery",
	"whodunit":        "Mystery",
}

// NormalizeGenre maps genre to its catalogue label.
// Unknown values are returned trimmed and otherwise unchanged, so composite
// labels such as "Action-Thriller" pass through.
func NormalizeGenre(genre string) string {
	trimmed := strings.TrimSpace(genre)
	key := strings.Join(strings.Fields(strings.ToLower(trimmed)), " ")

	if normalized, ok := genreAliases[key]; ok {
		return normalized
	}
	return trimmed
}
