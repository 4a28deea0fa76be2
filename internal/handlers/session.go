package handlers

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/amaumene/bestmovies/internal/constants"
	apperrors "github.com/amaumene/bestmovies/internal/errors"
	"github.com/amaumene/bestmovies/internal/models"
)

type session struct {
	h       *Handler
	scanner *bufio.Scanner
	genres  models.GenreDirectory
	// loaded lists the genres whose listing went into BestMovies.
	loaded []string
}

// RunSession drives the interactive loop: pick a genre, browse its listing,
// pick movies for details. The genre directory and a fresh schema are
// required up front. Failed page loads and bad input are reported and the
// loop goes on; a persistence failure or a read error on in ends the
// session with that error. Reading "exit" or reaching the end of in ends it
// cleanly.
func (h *Handler) RunSession(ctx context.Context, in io.Reader) error {
	genres, err := h.services.Catalog.Genres(ctx)
	if err != nil {
		return fmt.Errorf("failed to load genre directory: %w", err)
	}

	if err := h.services.DB.RecreateSchema(ctx); err != nil {
		return err
	}
	h.services.Logger.Debugf("[App] session started with %d genres", len(genres))

	s := &session{
		h:       h,
		scanner: bufio.NewScanner(in),
		genres:  genres,
	}
	return s.run(ctx)
}

func (s *session) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		input, ok := s.prompt(constants.GenrePrompt)
		if !ok {
			return s.inputErr()
		}
		if input == constants.CommandExit {
			return nil
		}

		genre, found := s.genres.Lookup(input)
		if !found {
			s.invalidInput()
			continue
		}

		listing, err := s.h.services.Catalog.Listing(ctx, genre)
		if err != nil {
			s.reportError(err)
			continue
		}

		if err := s.loadListing(ctx, input, listing); err != nil {
			return err
		}

		quit, err := s.browse(ctx, listing)
		if err != nil || quit {
			return err
		}
	}
}

func (s *session) loadListing(ctx context.Context, input string, listing *models.Listing) error {
	fmt.Fprintln(s.h.out, constants.Separator)
	fmt.Fprintf(s.h.out, "List of top %s movies\n", input)
	fmt.Fprintln(s.h.out, constants.Separator)

	if len(s.loaded) > 0 {
		s.h.services.Logger.Warnf("[DB] loading %q into the tables that already hold %q; ranks are scoped per genre and will collide",
			listing.Genre, strings.Join(s.loaded, ", "))
	}
	if err := s.h.services.DB.LoadBestMovies(ctx, listing.Movies); err != nil {
		return err
	}
	s.loaded = append(s.loaded, listing.Genre)

	for _, m := range listing.Movies {
		fmt.Fprintln(s.h.out, m.Info())
	}
	return nil
}

// browse runs the detail prompt for one listing. It reports whether the
// whole session should end.
func (s *session) browse(ctx context.Context, listing *models.Listing) (bool, error) {
	for {
		input, ok := s.prompt(constants.DetailPrompt)
		if !ok {
			return true, s.inputErr()
		}

		switch {
		case input == constants.CommandBack:
			return false, nil
		case input == constants.CommandExit:
			return true, nil
		case isNumeric(input):
			position, err := strconv.Atoi(input)
			if err != nil {
				s.invalidInput()
				continue
			}
			if _, ok := listing.Select(position); !ok {
				s.invalidInput()
				continue
			}
			if err := s.showFilm(ctx, listing, position); err != nil {
				if apperrors.IsType(err, apperrors.ErrorTypePersistenceFailed) {
					return true, err
				}
				s.reportError(err)
			}
		default:
			s.invalidInput()
		}
	}
}

func (s *session) showFilm(ctx context.Context, listing *models.Listing, position int) error {
	film, err := s.h.services.Films.Film(ctx, listing, position)
	if err != nil {
		return err
	}

	fmt.Fprintln(s.h.out, film.Info())

	if err := s.h.services.DB.LoadRatings(ctx, film); err != nil {
		return err
	}
	return s.h.services.DB.LoadMovieInfo(ctx, film)
}

// prompt prints p and reads one trimmed line. It reports false once input
// is exhausted or unreadable; inputErr tells the two apart.
func (s *session) prompt(p string) (string, bool) {
	fmt.Fprint(s.h.out, p)
	if !s.scanner.Scan() {
		fmt.Fprintln(s.h.out)
		return "", false
	}
	return strings.TrimSpace(s.scanner.Text()), true
}

// inputErr returns the read error that stopped the scanner, or nil at the
// end of input.
func (s *session) inputErr() error {
	if err := s.scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

func (s *session) invalidInput() {
	fmt.Fprintln(s.h.out, constants.InvalidInput)
	fmt.Fprintf(s.h.out, "%s\n\n", constants.ShortRule)
}

func (s *session) reportError(err error) {
	s.h.services.Logger.Debugf("[App] operation failed: %v", err)
	fmt.Fprintf(s.h.out, "[Error] %v\n", err)
	fmt.Fprintf(s.h.out, "%s\n\n", constants.ShortRule)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
