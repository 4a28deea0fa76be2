package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	apperrors "github.com/amaumene/bestmovies/internal/errors"
	"github.com/amaumene/bestmovies/internal/models"
)

const genreMenuSelector = "ul.dropdown-menu"

// ExtractGenres reads the genre navigation menu of the directory page. Names
// are lower-cased and links resolved against pageURL. A page without the menu
// is a structural error.
func ExtractGenres(doc *goquery.Document, pageURL string) (models.GenreDirectory, error) {
	menu := doc.Find(genreMenuSelector).First()
	if menu.Length() == 0 {
		return nil, apperrors.NewStructureError("genre menu not found on directory page", nil)
	}

	genres := make(models.GenreDirectory)
	var extractErr error
	menu.Find("li").EachWithBreak(func(i int, li *goquery.Selection) bool {
		link := li.Find("a").First()
		href, ok := link.Attr("href")
		if link.Length() == 0 || !ok {
			extractErr = apperrors.NewStructureError("genre entry without a link", nil)
			return false
		}

		name := strings.ToLower(text(link))
		if name == "" {
			extractErr = apperrors.NewStructureError("genre entry without a name", nil)
			return false
		}

		abs, err := resolveURL(pageURL, href)
		if err != nil {
			extractErr = apperrors.NewStructureError("genre entry with a bad link", err)
			return false
		}
		genres[name] = abs
		return true
	})
	if extractErr != nil {
		return nil, extractErr
	}

	return genres, nil
}
