package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/amaumene/bestmovies/internal/config"
	apperrors "github.com/amaumene/bestmovies/internal/errors"
	"github.com/amaumene/bestmovies/internal/fetcher"
	"github.com/amaumene/bestmovies/internal/models"
	"github.com/amaumene/bestmovies/pkg/logger"
	"github.com/amaumene/bestmovies/pkg/security"
)

// OMDb enriches titles with data from the Open Movie Database.
type OMDb struct {
	apiKey       string
	baseURL      string
	ratingSource string
	suffixLength int
	fetcher      *fetcher.Executor
	logger       logger.Logger
	validator    *security.APIKeyValidator
}

func NewOMDb(cfg *config.Config, exec *fetcher.Executor, log logger.Logger) *OMDb {
	o := &OMDb{
		baseURL:      cfg.OMDbURL,
		ratingSource: cfg.RatingSource,
		suffixLength: cfg.TitleSuffixLength,
		fetcher:      exec,
		logger:       log,
		validator:    security.NewAPIKeyValidator(),
	}
	o.SetAPIKey(cfg.OMDbAPIKey)
	return o
}

func (o *OMDb) SetAPIKey(apiKey string) {
	if apiKey == "" {
		o.apiKey = ""
		return
	}

	sanitizedKey := o.validator.SanitizeAPIKey(apiKey)
	if !o.validator.IsValidOMDbKey(sanitizedKey) {
		o.logger.Warnf("[OMDb] API key has an unexpected format (key: %s)", o.validator.MaskAPIKey(sanitizedKey))
	}
	o.apiKey = sanitizedKey
}

// Redact masks the API key in s. Cache keys and request URLs embed the key,
// so the executor runs them through here before logging.
func (o *OMDb) Redact(s string) string {
	return o.validator.MaskInText(s, o.apiKey)
}

// TitleBase strips the fixed-length year decoration from a listing title.
// Titles no longer than the decoration are returned unchanged.
func (o *OMDb) TitleBase(title string) string {
	runes := []rune(title)
	if o.suffixLength <= 0 || len(runes) <= o.suffixLength {
		return title
	}
	return strings.TrimSpace(string(runes[:len(runes)-o.suffixLength]))
}

// Enrich looks up title and extracts the enrichment fields. Responses are
// cached, including the ones OMDb answers with an error.
func (o *OMDb) Enrich(ctx context.Context, title string) (*models.EnrichmentResult, error) {
	if o.apiKey == "" {
		return nil, apperrors.NewAPIKeyMissingError("OMDb")
	}

	params := map[string]string{
		"apikey": o.apiKey,
		"t":      title,
	}

	payload, err := o.fetcher.FetchJSON(ctx, o.baseURL, params)
	if err != nil {
		return nil, err
	}

	var resp models.OMDbResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, apperrors.NewEnrichmentError(fmt.Sprintf("failed to decode OMDb response for %q", title), err)
	}
	if strings.EqualFold(resp.Response, "False") {
		return nil, apperrors.NewEnrichmentError(fmt.Sprintf("OMDb has no result for %q: %s", title, resp.Error), nil)
	}

	o.logger.Debugf("[OMDb] enriched %q with %d ratings", title, len(resp.Ratings))
	return o.toResult(&resp), nil
}

func (o *OMDb) toResult(resp *models.OMDbResponse) *models.EnrichmentResult {
	return &models.EnrichmentResult{
		Genres:         models.SplitNames(resp.Genre),
		Actors:         models.SplitNames(resp.Actors),
		Language:       resp.Language,
		Country:        resp.Country,
		Awards:         resp.Awards,
		CriticScore:    parseScore(resp.Metascore),
		AudienceScore:  parseScore(resp.IMDBRating),
		RottenTomatoes: findRating(resp.Ratings, o.ratingSource),
	}
}

// findRating returns the value reported by source, or nil.
func findRating(ratings []models.OMDbRating, source string) *string {
	for _, r := range ratings {
		if r.Source == source {
			value := r.Value
			return &value
		}
	}
	return nil
}

// parseScore reads a numeric OMDb field; "N/A" and garbage yield nil.
func parseScore(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == models.NotAvailable {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
