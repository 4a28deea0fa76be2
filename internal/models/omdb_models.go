package models

// NotAvailable is the placeholder OMDb uses for missing values.
const NotAvailable = "N/A"

// OMDbRating is one per-source rating of an OMDb title.
type OMDbRating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// OMDbResponse is the subset of the OMDb title response the pipeline reads.
type OMDbResponse struct {
	Title      string       `json:"Title"`
	Year       string       `json:"Year"`
	Genre      string       `json:"Genre"`
	Actors     string       `json:"Actors"`
	Language   string       `json:"Language"`
	Country    string       `json:"Country"`
	Awards     string       `json:"Awards"`
	Metascore  string       `json:"Metascore"`
	IMDBRating string       `json:"imdbRating"`
	Ratings    []OMDbRating `json:"Ratings"`
	Response   string       `json:"Response"`
	Error      string       `json:"Error,omitempty"`
}

// EnrichmentResult holds the fields taken from an OMDb response.
type EnrichmentResult struct {
	Genres   []string
	Actors   []string
	Language string
	Country  string
	Awards   string

	CriticScore   *float64
	AudienceScore *float64
	// RottenTomatoes is the score reported by the ranking site's own source
	// entry, e.g. "91%"; nil when the response has no such entry.
	RottenTomatoes *string
}
