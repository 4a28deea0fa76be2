package handlers

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/amaumene/bestmovies/internal/database"
	apperrors "github.com/amaumene/bestmovies/internal/errors"
	"github.com/amaumene/bestmovies/internal/models"
)

// ListGenres prints the genre directory.
func (h *Handler) ListGenres(ctx context.Context) error {
	genres, err := h.services.Catalog.Genres(ctx)
	if err != nil {
		return fmt.Errorf("failed to load genre directory: %w", err)
	}
	h.RenderGenres(genres)
	return nil
}

// ShowListing prints the listing of the named genre without persisting it.
func (h *Handler) ShowListing(ctx context.Context, name string) error {
	genres, err := h.services.Catalog.Genres(ctx)
	if err != nil {
		return fmt.Errorf("failed to load genre directory: %w", err)
	}

	genre, ok := genres.Lookup(name)
	if !ok {
		return apperrors.NewInvalidInputError(name)
	}

	listing, err := h.services.Catalog.Listing(ctx, genre)
	if err != nil {
		return err
	}
	h.RenderListing(listing)
	return nil
}

// ShowCache prints where the response cache lives and how much it holds.
func (h *Handler) ShowCache() {
	t := h.newTable()
	t.AppendHeader(table.Row{"Backend", "Path", "Entries"})
	t.AppendRow(table.Row{h.config.CacheBackend, h.config.CachePath, h.services.Cache.Len()})
	t.Render()
}

// ShowDatabase prints the row count of every table and the movies stored in
// BestMovies by the last session.
func (h *Handler) ShowDatabase(ctx context.Context) error {
	counts := h.newTable()
	counts.SetTitle(h.config.DatabasePath)
	counts.AppendHeader(table.Row{"Table", "Rows"})
	for _, name := range []string{database.TableBestMovies, database.TableRatings, database.TableMovieInfo} {
		n, err := h.services.DB.CountRows(ctx, name)
		if err != nil {
			return err
		}
		counts.AppendRow(table.Row{name, n})
	}
	counts.Render()

	movies, err := h.services.DB.BestMovies(ctx)
	if err != nil {
		return err
	}
	if len(movies) == 0 {
		return nil
	}

	t := h.newTable()
	t.AppendHeader(table.Row{"Rank", "Title", "Score"})
	for _, m := range movies {
		t.AppendRow(table.Row{m.Rank, m.Title, fmt.Sprintf("%d%%", m.Score)})
	}
	t.Render()
	return nil
}

// RenderGenres prints genres sorted by name.
func (h *Handler) RenderGenres(genres models.GenreDirectory) {
	t := h.newTable()
	t.AppendHeader(table.Row{"Genre", "URL"})
	for _, g := range genres.Sorted() {
		t.AppendRow(table.Row{g.Name, g.URL})
	}
	t.Render()
}

// RenderListing prints a listing in rank order.
func (h *Handler) RenderListing(listing *models.Listing) {
	t := h.newTable()
	t.SetTitle(fmt.Sprintf("Top %s movies", listing.Genre))
	t.AppendHeader(table.Row{"Rank", "Title", "Year", "Score"})
	for _, m := range listing.Movies {
		year := ""
		if m.Year > 0 {
			year = fmt.Sprint(m.Year)
		}
		t.AppendRow(table.Row{m.Rank, m.Title, year, fmt.Sprintf("%d%%", m.Score)})
	}
	t.Render()
}

func (h *Handler) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(h.out)
	t.SetStyle(table.StyleLight)
	return t
}
