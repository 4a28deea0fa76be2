// Package models defines the records that flow through the pipeline.
package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Genre is one entry of the genre directory.
type Genre struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// GenreDirectory maps a lower-cased genre name to its listing URL.
type GenreDirectory map[string]string

// Lookup finds a genre by name, ignoring case and surrounding blanks.
func (d GenreDirectory) Lookup(name string) (Genre, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	u, ok := d[key]
	if !ok {
		return Genre{}, false
	}
	return Genre{Name: key, URL: u}, true
}

// Sorted returns the genres ordered by name.
func (d GenreDirectory) Sorted() []Genre {
	genres := make([]Genre, 0, len(d))
	for name, u := range d {
		genres = append(genres, Genre{Name: name, URL: u})
	}
	sort.Slice(genres, func(i, j int) bool { return genres[i].Name < genres[j].Name })
	return genres
}

// RankedMovie is one row of a genre listing.
type RankedMovie struct {
	Rank  int    `json:"rank" db:"Rank"`
	Title string `json:"title" db:"Title"`
	Score int    `json:"score" db:"Score"`
	URL   string `json:"url" db:"-"`
	// Year is parsed from the title decoration; 0 when the title carries none.
	Year int `json:"year,omitempty" db:"-"`
}

// Info renders the movie as "rank title: score".
func (m RankedMovie) Info() string {
	return fmt.Sprintf("%d %s: %d", m.Rank, m.Title, m.Score)
}

// Listing is a ranked genre listing in on-page order.
type Listing struct {
	Genre  string
	Movies []RankedMovie
}

// Select returns the movie at the 1-based position n.
func (l *Listing) Select(n int) (RankedMovie, bool) {
	if n < 1 || n > len(l.Movies) {
		return RankedMovie{}, false
	}
	return l.Movies[n-1], true
}

// JoinNames renders a name list the way the site displays credits.
func JoinNames(names []string) string {
	return strings.Join(names, ", ")
}

// SplitNames is the inverse of JoinNames; empty and "N/A" input yield nil.
func SplitNames(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == NotAvailable {
		return nil
	}

	parts := strings.Split(s, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}

func formatOptionalInt(v *int64) string {
	if v == nil {
		return NotAvailable
	}
	return strconv.FormatInt(*v, 10)
}
