package scraper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cehbz/torrentname"

	apperrors "github.com/amaumene/bestmovies/internal/errors"
	"github.com/amaumene/bestmovies/internal/models"
)

const (
	listingTableSelector = "table.table"
	rankSelector         = "td.bold"
	titleLinkSelector    = "a.unstyled.articleLink"
	scoreSelector        = "span.tMeterScore"
)

// ExtractMovies reads the ranked table of a genre listing page. The first
// row is the header. Every other row must yield a rank, title, score and
// link; a row missing any of them fails the whole listing. The rank of each
// row must equal its position.
func ExtractMovies(doc *goquery.Document, pageURL string) ([]models.RankedMovie, error) {
	table := doc.Find(listingTableSelector).First()
	if table.Length() == 0 {
		return nil, apperrors.NewStructureError("ranking table not found on listing page", nil)
	}

	rows := table.Find("tr")
	if rows.Length() == 0 {
		return nil, apperrors.NewStructureError("ranking table has no header row", nil)
	}
	movies := make([]models.RankedMovie, 0, rows.Length())

	var extractErr error
	rows.Slice(1, goquery.ToEnd).EachWithBreak(func(i int, row *goquery.Selection) bool {
		movie, err := extractRow(row, pageURL)
		if err != nil {
			extractErr = apperrors.NewStructureError(fmt.Sprintf("listing row %d", i+1), err)
			return false
		}
		if movie.Rank != i+1 {
			extractErr = apperrors.NewStructureError(
				fmt.Sprintf("listing row %d has rank %d", i+1, movie.Rank), nil)
			return false
		}
		movies = append(movies, movie)
		return true
	})
	if extractErr != nil {
		return nil, extractErr
	}

	return movies, nil
}

func extractRow(row *goquery.Selection, pageURL string) (models.RankedMovie, error) {
	var movie models.RankedMovie

	rankCell := row.Find(rankSelector).First()
	if rankCell.Length() == 0 {
		return movie, fmt.Errorf("rank cell missing")
	}
	rank, err := strconv.Atoi(strings.TrimSuffix(text(rankCell), "."))
	if err != nil || rank < 1 {
		return movie, fmt.Errorf("invalid rank %q", text(rankCell))
	}

	link := row.Find(titleLinkSelector).First()
	if link.Length() == 0 {
		return movie, fmt.Errorf("title link missing")
	}
	title := text(link)
	if title == "" {
		return movie, fmt.Errorf("empty title")
	}
	href, ok := link.Attr("href")
	if !ok {
		return movie, fmt.Errorf("title link without href")
	}
	detailURL, err := resolveURL(pageURL, href)
	if err != nil {
		return movie, err
	}

	scoreCell := row.Find(scoreSelector).First()
	if scoreCell.Length() == 0 {
		return movie, fmt.Errorf("score missing")
	}
	score, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(text(scoreCell), "%")))
	if err != nil || score < 0 || score > 100 {
		return movie, fmt.Errorf("invalid score %q", text(scoreCell))
	}

	return models.RankedMovie{
		Rank:  rank,
		Title: title,
		Score: score,
		URL:   detailURL,
		Year:  releaseYear(title),
	}, nil
}

var yearBrackets = strings.NewReplacer("(", " ", ")", " ")

// releaseYear reads the year from a title such as "Coco (2017)". The
// parser only spots a bare year, so the brackets are dropped first.
func releaseYear(title string) int {
	parsed := torrentname.Parse(strings.TrimSpace(yearBrackets.Replace(title)))
	if parsed == nil {
		return 0
	}
	return parsed.Year
}
