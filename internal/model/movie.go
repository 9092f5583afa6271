package model

import (
	"strconv"
	"strings"
)

// Defaults substituted for missing optional fields when a movie is formatted
const (
	DefaultTitle       = "Unknown Title"
	DefaultDescription = "No description"
	DefaultNA          = "N/A"
)

// MovieRecord represents one film as read from the movie store
type MovieRecord struct {
	ID          int64    `json:"id,omitempty" db:"id"`
	Title       *string  `json:"title,omitempty" db:"title"`
	Year        *int     `json:"year,omitempty" db:"year"`
	Genre       *string  `json:"genre,omitempty" db:"genre"`
	Country     *string  `json:"country,omitempty" db:"country"`
	Rating      *float64 `json:"rating,omitempty" db:"rating"`
	Description *string  `json:"description,omitempty" db:"description"`
}

// TitleKey returns the case-folded, whitespace-trimmed title used to
// identify a movie across result lists. Untitled records fall back to
// their store ID so they never collide with each other.
func (m MovieRecord) TitleKey() string {
	if m.Title != nil {
		if key := strings.ToLower(strings.TrimSpace(*m.Title)); key != "" {
			return key
		}
	}
	return "#id:" + strconv.FormatInt(m.ID, 10)
}

// TitleYearKey extends TitleKey with the release year, separating remakes
// that share a title.
func (m MovieRecord) TitleYearKey() string {
	year := "?"
	if m.Year != nil {
		year = strconv.Itoa(*m.Year)
	}
	return m.TitleKey() + "|" + year
}

// MovieEntry is a movie as presented to clients, with every field present.
// Year and Rating carry either a number or DefaultNA.
type MovieEntry struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Year        any    `json:"year"`
	Genre       string `json:"genre"`
	Rating      any    `json:"rating"`
}

// Entry formats the record, substituting defaults for missing fields
func (m MovieRecord) Entry() MovieEntry {
	entry := MovieEntry{
		Title:       DefaultTitle,
		Description: DefaultDescription,
		Year:        DefaultNA,
		Genre:       DefaultNA,
		Rating:      DefaultNA,
	}

	if m.Title != nil && strings.TrimSpace(*m.Title) != "" {
		entry.Title = strings.TrimSpace(*m.Title)
	}
	if m.Description != nil && strings.TrimSpace(*m.Description) != "" {
		entry.Description = *m.Description
	}
	if m.Year != nil {
		entry.Year = *m.Year
	}
	if m.Genre != nil && strings.TrimSpace(*m.Genre) != "" {
		entry.Genre = *m.Genre
	}
	if m.Rating != nil {
		entry.Rating = *m.Rating
	}

	return entry
}
