package services

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/amaumene/bestmovies/internal/fetcher"
	"github.com/amaumene/bestmovies/internal/models"
	"github.com/amaumene/bestmovies/internal/scraper"
	"github.com/amaumene/bestmovies/pkg/logger"
)

// RottenTomatoes reads the ranking site through the response cache.
type RottenTomatoes struct {
	directoryURL string
	fetcher      *fetcher.Executor
	logger       logger.Logger
}

func NewRottenTomatoes(directoryURL string, exec *fetcher.Executor, log logger.Logger) *RottenTomatoes {
	return &RottenTomatoes{
		directoryURL: directoryURL,
		fetcher:      exec,
		logger:       log,
	}
}

// Genres returns the genre directory.
func (rt *RottenTomatoes) Genres(ctx context.Context) (models.GenreDirectory, error) {
	doc, err := rt.document(ctx, rt.directoryURL)
	if err != nil {
		return nil, err
	}

	genres, err := scraper.ExtractGenres(doc, rt.directoryURL)
	if err != nil {
		return nil, err
	}
	rt.logger.Debugf("[RottenTomatoes] directory lists %d genres", len(genres))
	return genres, nil
}

// Listing returns the ranked movies of genre in on-page order.
func (rt *RottenTomatoes) Listing(ctx context.Context, genre models.Genre) (*models.Listing, error) {
	doc, err := rt.document(ctx, genre.URL)
	if err != nil {
		return nil, err
	}

	movies, err := scraper.ExtractMovies(doc, genre.URL)
	if err != nil {
		return nil, err
	}
	rt.logger.Debugf("[RottenTomatoes] %s lists %d movies", genre.Name, len(movies))
	return &models.Listing{Genre: genre.Name, Movies: movies}, nil
}

// Detail returns the fields read from a film detail page.
func (rt *RottenTomatoes) Detail(ctx context.Context, pageURL string) (*scraper.DetailPage, error) {
	doc, err := rt.document(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	page, err := scraper.ExtractDetail(doc)
	if err != nil {
		return nil, err
	}
	rt.logger.Debugf("[RottenTomatoes] %s matched the %s layout", pageURL, page.Layout.Name())
	return page, nil
}

func (rt *RottenTomatoes) document(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, err := rt.fetcher.FetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return scraper.ParseDocument(body)
}
