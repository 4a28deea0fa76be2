// Package scraper turns Rotten Tomatoes pages into pipeline records. The
// extractors work on parsed goquery documents and never touch the network.
package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	apperrors "github.com/amaumene/bestmovies/internal/errors"
)

// ParseDocument parses an HTML page body.
func ParseDocument(body string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, apperrors.NewStructureError("parse html", err)
	}
	return doc, nil
}

// resolveURL resolves href against the page it was found on.
func resolveURL(pageURL, href string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page url %q: %w", pageURL, err)
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("invalid link %q: %w", href, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// text returns the trimmed text of the selection.
func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}
