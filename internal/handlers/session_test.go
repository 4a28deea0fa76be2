package handlers

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/bestmovies/internal/cache"
	"github.com/amaumene/bestmovies/internal/config"
	"github.com/amaumene/bestmovies/internal/constants"
	"github.com/amaumene/bestmovies/internal/database"
	apperrors "github.com/amaumene/bestmovies/internal/errors"
	"github.com/amaumene/bestmovies/internal/models"
	"github.com/amaumene/bestmovies/internal/scraper"
	"github.com/amaumene/bestmovies/internal/services"
	"github.com/amaumene/bestmovies/pkg/logger"
)

type fakeCatalog struct {
	genres     models.GenreDirectory
	listings   map[string]*models.Listing
	genresErr  error
	listingErr error
}

func (f *fakeCatalog) Genres(ctx context.Context) (models.GenreDirectory, error) {
	return f.genres, f.genresErr
}

func (f *fakeCatalog) Listing(ctx context.Context, genre models.Genre) (*models.Listing, error) {
	if f.listingErr != nil {
		return nil, f.listingErr
	}
	return f.listings[genre.Name], nil
}

func (f *fakeCatalog) Detail(ctx context.Context, pageURL string) (*scraper.DetailPage, error) {
	return nil, errors.New("not used")
}

type fakeFilms struct {
	err error
}

func (f *fakeFilms) Film(ctx context.Context, listing *models.Listing, position int) (*models.FilmDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	m, _ := listing.Select(position)
	return &models.FilmDetail{
		Rank:     position,
		Title:    m.Title,
		Synopsis: "Synopsis of " + m.Title,
		Studio:   "Pixar",
	}, nil
}

// fakeDB enforces the rank primary key of each table.
type fakeDB struct {
	schemaCreated int
	bestMovies    map[int]string
	ratings       map[int]string
	movieInfo     map[int]string
}

func newFakeDB() *fakeDB {
	return &fakeDB{bestMovies: map[int]string{}, ratings: map[int]string{}, movieInfo: map[int]string{}}
}

func (d *fakeDB) Close() error { return nil }

func (d *fakeDB) RecreateSchema(ctx context.Context) error {
	d.schemaCreated++
	d.bestMovies, d.ratings, d.movieInfo = map[int]string{}, map[int]string{}, map[int]string{}
	return nil
}

func (d *fakeDB) LoadBestMovies(ctx context.Context, movies []models.RankedMovie) error {
	for _, m := range movies {
		if err := insert(d.bestMovies, "BestMovies", m.Rank, m.Title); err != nil {
			return err
		}
	}
	return nil
}

func (d *fakeDB) LoadRatings(ctx context.Context, film *models.FilmDetail) error {
	return insert(d.ratings, "Ratings", film.Rank, film.Title)
}

func (d *fakeDB) LoadMovieInfo(ctx context.Context, film *models.FilmDetail) error {
	return insert(d.movieInfo, "MovieInfo", film.Rank, film.Title)
}

func (d *fakeDB) BestMovies(ctx context.Context) ([]models.RankedMovie, error) {
	var movies []models.RankedMovie
	for rank := 1; rank <= len(d.bestMovies); rank++ {
		movies = append(movies, models.RankedMovie{Rank: rank, Title: d.bestMovies[rank]})
	}
	return movies, nil
}

func (d *fakeDB) CountRows(ctx context.Context, table string) (int, error) {
	switch table {
	case database.TableBestMovies:
		return len(d.bestMovies), nil
	case database.TableRatings:
		return len(d.ratings), nil
	case database.TableMovieInfo:
		return len(d.movieInfo), nil
	}
	return 0, fmt.Errorf("unknown table %q", table)
}

func insert(table map[int]string, name string, rank int, title string) error {
	if _, ok := table[rank]; ok {
		return apperrors.NewPersistenceError(fmt.Sprintf("failed to insert rank %d into %s", rank, name), errors.New("UNIQUE constraint failed"))
	}
	table[rank] = title
	return nil
}

type harness struct {
	handler *Handler
	catalog *fakeCatalog
	films   *fakeFilms
	db      *fakeDB
	out     *bytes.Buffer
	logs    *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	catalog := &fakeCatalog{
		genres: models.GenreDirectory{
			"animation": "https://example.com/top/bestofrt/top_100_animation_movies/",
			"comedy":    "https://example.com/top/bestofrt/top_100_comedy_movies/",
		},
		listings: map[string]*models.Listing{
			"animation": {Genre: "animation", Movies: []models.RankedMovie{
				{Rank: 1, Title: "Coco (2017)", Score: 97, Year: 2017},
				{Rank: 2, Title: "Up (2009)", Score: 95, Year: 2009},
				{Rank: 3, Title: "Ratatouille (2007)", Score: 96, Year: 2007},
			}},
			"comedy": {Genre: "comedy", Movies: []models.RankedMovie{
				{Rank: 1, Title: "It Happened One Night (1934)", Score: 98},
			}},
		},
	}

	h := &harness{
		catalog: catalog,
		films:   &fakeFilms{},
		db:      newFakeDB(),
		out:     &bytes.Buffer{},
		logs:    &bytes.Buffer{},
	}

	cfg := config.Default()
	cfg.CachePath = filepath.Join(t.TempDir(), "cache.json")
	container := &services.Container{
		Catalog: catalog,
		Films:   h.films,
		DB:      h.db,
		Cache:   cache.OpenFileStore(cfg.CachePath, logger.Discard()),
		Logger:  logger.NewWithLevel("warn", h.logs),
	}
	h.handler = New(container, cfg, h.out)
	return h
}

func (h *harness) run(input string) error {
	return h.handler.RunSession(context.Background(), strings.NewReader(input))
}

const invalidInputBlock = constants.InvalidInput + "\n" + constants.ShortRule + "\n\n"

func TestSessionExitAtGenrePrompt(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("exit\n"))
	assert.Equal(t, 1, h.db.schemaCreated)
	assert.Equal(t, constants.GenrePrompt, h.out.String())
}

func TestSessionEndOfInput(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("animation\n"))
	assert.Len(t, h.db.bestMovies, 3)
}

func TestSessionReadErrorEnds(t *testing.T) {
	h := newHarness(t)
	broken := errors.New("terminal hung up")

	err := h.handler.RunSession(context.Background(),
		io.MultiReader(strings.NewReader("animation\n"), iotest.ErrReader(broken)))
	require.Error(t, err)
	assert.ErrorIs(t, err, broken)
	assert.Len(t, h.db.bestMovies, 3)
}

func TestSessionOverlongLineEnds(t *testing.T) {
	h := newHarness(t)

	err := h.run(strings.Repeat("a", bufio.MaxScanTokenSize+1) + "\nexit\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, bufio.ErrTooLong)
	assert.Empty(t, h.db.bestMovies)
}

func TestSessionUnknownGenre(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("western\nexit\n"))
	assert.Contains(t, h.out.String(), invalidInputBlock)
	assert.Equal(t, 2, strings.Count(h.out.String(), constants.GenrePrompt))
	assert.Empty(t, h.db.bestMovies)
}

func TestSessionListingAndDetail(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("Animation\n2\nback\nexit\n"))

	out := h.out.String()
	assert.Contains(t, out, constants.Separator+"\nList of top Animation movies\n"+constants.Separator+"\n")
	assert.Contains(t, out, "1 Coco (2017): 97\n2 Up (2009): 95\n3 Ratatouille (2007): 96\n")
	assert.Contains(t, out, "Synopsis:\nSynopsis of Up (2009)\n")
	assert.Equal(t, 2, strings.Count(out, constants.GenrePrompt))

	assert.Equal(t, map[int]string{1: "Coco (2017)", 2: "Up (2009)", 3: "Ratatouille (2007)"}, h.db.bestMovies)
	assert.Equal(t, map[int]string{2: "Up (2009)"}, h.db.ratings)
	assert.Equal(t, map[int]string{2: "Up (2009)"}, h.db.movieInfo)
}

func TestSessionDetailInvalidInput(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("animation\nabc\n0\n4\n-1\n2.5\n\nexit\ngenre prompt never shown again\n"))

	out := h.out.String()
	assert.Equal(t, 6, strings.Count(out, invalidInputBlock))
	assert.Equal(t, 1, strings.Count(out, constants.GenrePrompt))
	assert.Equal(t, 7, strings.Count(out, constants.DetailPrompt))
	assert.Empty(t, h.db.ratings)
}

func TestSessionListingFailureContinues(t *testing.T) {
	h := newHarness(t)
	h.catalog.listingErr = apperrors.NewTransportError("https://example.com/top", errors.New("unexpected status 503"))

	require.NoError(t, h.run("animation\nexit\n"))
	assert.Contains(t, h.out.String(), "[Error] TRANSPORT_FAILURE")
	assert.Equal(t, 2, strings.Count(h.out.String(), constants.GenrePrompt))
}

func TestSessionFilmFailureContinues(t *testing.T) {
	h := newHarness(t)
	h.films.err = apperrors.NewEnrichmentError(`OMDb has no result for "Coco"`, nil)

	require.NoError(t, h.run("animation\n1\nexit\n"))
	assert.Contains(t, h.out.String(), "[Error] ENRICHMENT_FAILED")
	assert.Equal(t, 2, strings.Count(h.out.String(), constants.DetailPrompt))
	assert.Empty(t, h.db.ratings)
}

func TestSessionPersistenceFailureEnds(t *testing.T) {
	h := newHarness(t)

	err := h.run("animation\n1\n1\nexit\n")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypePersistenceFailed))
	assert.Equal(t, 2, strings.Count(h.out.String(), constants.DetailPrompt))
}

func TestSessionSecondGenreCollides(t *testing.T) {
	h := newHarness(t)

	err := h.run("animation\nback\ncomedy\nexit\n")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypePersistenceFailed))
	assert.Contains(t, h.logs.String(), "will collide")
}

func TestSessionDirectoryFailureIsFatal(t *testing.T) {
	h := newHarness(t)
	h.catalog.genresErr = apperrors.NewStructureError("genre menu not found on directory page", nil)

	err := h.run("animation\n")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStructureMissing))
	assert.Zero(t, h.db.schemaCreated)
	assert.Empty(t, h.out.String())
}

func TestRenderListing(t *testing.T) {
	h := newHarness(t)

	h.handler.RenderListing(h.catalog.listings["animation"])

	out := h.out.String()
	assert.Contains(t, strings.ToLower(out), "top animation movies")
	assert.Contains(t, out, "Coco (2017)")
	assert.Contains(t, out, "2017")
	assert.Contains(t, out, "97%")
}

func TestShowListingUnknownGenre(t *testing.T) {
	h := newHarness(t)

	err := h.handler.ShowListing(context.Background(), "western")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidInput))
}

func TestShowDatabase(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("animation\n2\nexit\n"))

	h.out.Reset()
	require.NoError(t, h.handler.ShowDatabase(context.Background()))

	out := h.out.String()
	for _, row := range [][]string{
		{database.TableBestMovies, "3"},
		{database.TableRatings, "1"},
		{database.TableMovieInfo, "1"},
	} {
		assert.Regexp(t, row[0]+`\s*│\s*`+row[1]+`\s`, out)
	}
	assert.Less(t, strings.Index(out, "Coco (2017)"), strings.Index(out, "Ratatouille (2007)"))
}

func TestShowDatabaseEmpty(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.handler.ShowDatabase(context.Background()))
	assert.NotContains(t, h.out.String(), "Coco")
}

func TestListGenresAndCache(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.handler.ListGenres(context.Background()))
	out := h.out.String()
	assert.Less(t, strings.Index(out, "animation"), strings.Index(out, "comedy"))

	h.out.Reset()
	h.handler.ShowCache()
	assert.Contains(t, h.out.String(), constants.CacheBackendFile)
}
