// Package services provides the pipeline services and the container that
// wires them together.
package services

import (
	"context"
	"errors"

	"github.com/amaumene/bestmovies/internal/cache"
	"github.com/amaumene/bestmovies/internal/database"
	"github.com/amaumene/bestmovies/internal/fetcher"
	"github.com/amaumene/bestmovies/internal/models"
	"github.com/amaumene/bestmovies/internal/scraper"
	"github.com/amaumene/bestmovies/pkg/logger"
)

// Container holds all application services for dependency injection.
type Container struct {
	Catalog CatalogService
	OMDb    EnrichmentService
	Films   FilmService
	Fetcher *fetcher.Executor
	Cache   cache.Store
	DB      database.Database
	Logger  logger.Logger
}

// CatalogService reads the ranking site.
type CatalogService interface {
	Genres(ctx context.Context) (models.GenreDirectory, error)
	Listing(ctx context.Context, genre models.Genre) (*models.Listing, error)
	Detail(ctx context.Context, pageURL string) (*scraper.DetailPage, error)
}

// EnrichmentService looks titles up in the movie database API.
type EnrichmentService interface {
	TitleBase(title string) string
	Enrich(ctx context.Context, title string) (*models.EnrichmentResult, error)
}

// FilmService assembles film details for a listing position.
type FilmService interface {
	Film(ctx context.Context, listing *models.Listing, position int) (*models.FilmDetail, error)
}

var (
	_ CatalogService    = (*RottenTomatoes)(nil)
	_ EnrichmentService = (*OMDb)(nil)
	_ FilmService       = (*Films)(nil)
)

// Close releases the cache and the database. The cache is already durable;
// closing only frees the backing handle.
func (c *Container) Close() error {
	var errs []error
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	return errors.Join(errs...)
}
