// Package handlers implements the console front end: the interactive
// session and the table renderers used by the one-shot commands.
package handlers

import (
	"io"

	"github.com/amaumene/bestmovies/internal/config"
	"github.com/amaumene/bestmovies/internal/services"
)

// Handler serves console commands from the service container.
type Handler struct {
	services *services.Container
	config   *config.Config
	out      io.Writer
}

// New creates a new Handler writing to out.
func New(services *services.Container, config *config.Config, out io.Writer) *Handler {
	return &Handler{
		services: services,
		config:   config,
		out:      out,
	}
}
