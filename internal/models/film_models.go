package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Detail page layouts, in the order they are tried.
const (
	LayoutFull        = "full"
	LayoutNoBoxOffice = "no-box-office"
	LayoutMinimal     = "minimal"
)

// FilmDetail merges a detail page with its enrichment data. It only exists
// when both sources succeeded.
type FilmDetail struct {
	Rank  int
	Title string
	URL   string

	Synopsis    string
	Rating      string
	Genres      []string
	Directors   []string
	Writers     []string
	ReleaseDate string
	BoxOffice   *int64
	Runtime     *int
	Studio      string

	Actors   []string
	Language string
	Country  string
	Awards   string

	CriticScore    *float64
	AudienceScore  *float64
	RottenTomatoes *string

	// Layout names the detail layout the page matched.
	Layout string
}

// Info renders the detail report printed by the interactive session.
func (f *FilmDetail) Info() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Synopsis:\n%s\n", f.Synopsis)
	fmt.Fprintf(&b, "Rating: %s\n", f.Rating)
	fmt.Fprintf(&b, "Genre: %s\n", JoinNames(f.Genres))
	fmt.Fprintf(&b, "Directed By: %s\n", JoinNames(f.Directors))
	fmt.Fprintf(&b, "Written By: %s\n", JoinNames(f.Writers))
	fmt.Fprintf(&b, "In Theaters: %s\n", f.ReleaseDate)
	fmt.Fprintf(&b, "Box Office: %s\n", formatOptionalInt(f.BoxOffice))
	fmt.Fprintf(&b, "Runtime: %s\n", f.RuntimeText())
	fmt.Fprintf(&b, "Studio: %s\n", f.Studio)
	fmt.Fprintf(&b, "Actors: %s\n", JoinNames(f.Actors))
	fmt.Fprintf(&b, "Metascore: %s\n", formatOptionalFloat(f.CriticScore))
	fmt.Fprintf(&b, "imdbRating: %s", formatOptionalFloat(f.AudienceScore))
	return b.String()
}

// RuntimeText renders the runtime in minutes, or N/A when unknown.
func (f *FilmDetail) RuntimeText() string {
	if f.Runtime == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%d minutes", *f.Runtime)
}

func formatOptionalFloat(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
