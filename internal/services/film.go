package services

import (
	"context"
	"strconv"

	apperrors "github.com/amaumene/bestmovies/internal/errors"
	"github.com/amaumene/bestmovies/internal/models"
	"github.com/amaumene/bestmovies/pkg/logger"
)

// Films builds film details from a detail page and an OMDb lookup.
type Films struct {
	site   CatalogService
	omdb   EnrichmentService
	logger logger.Logger
}

func NewFilms(site CatalogService, omdb EnrichmentService, log logger.Logger) *Films {
	return &Films{site: site, omdb: omdb, logger: log}
}

// Film returns the detail of the movie at 1-based position in listing. The
// detail takes its rank from that position. Either source failing fails the
// whole call.
func (f *Films) Film(ctx context.Context, listing *models.Listing, position int) (*models.FilmDetail, error) {
	movie, ok := listing.Select(position)
	if !ok {
		return nil, apperrors.NewInvalidInputError(strconv.Itoa(position))
	}

	page, err := f.site.Detail(ctx, movie.URL)
	if err != nil {
		return nil, err
	}

	enrichment, err := f.omdb.Enrich(ctx, f.omdb.TitleBase(movie.Title))
	if err != nil {
		return nil, err
	}

	f.logger.Debugf("[Films] assembled rank %d from the %s layout", position, page.Layout.Name())
	film := &models.FilmDetail{
		Rank:  position,
		Title: movie.Title,
		URL:   movie.URL,
	}
	page.Fill(film)
	applyEnrichment(film, enrichment)
	return film, nil
}

func applyEnrichment(film *models.FilmDetail, e *models.EnrichmentResult) {
	film.Genres = e.Genres
	film.Actors = e.Actors
	film.Language = e.Language
	film.Country = e.Country
	film.Awards = e.Awards
	film.CriticScore = e.CriticScore
	film.AudienceScore = e.AudienceScore
	film.RottenTomatoes = e.RottenTomatoes
}
