package scraper

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	apperrors "github.com/amaumene/bestmovies/internal/errors"
	"github.com/amaumene/bestmovies/internal/models"
)

const (
	synopsisSelector = "#movieSynopsis"
	metaListSelector = "ul.content-meta.info"
	metaValueClass   = "div.meta-value"
	metaLabelClass   = "div.meta-label"
)

// Positions shared by every layout. The genre item is not read; genres come
// from the enrichment API.
const (
	idxRating = iota
	idxGenre
	idxDirector
	idxWriter
	idxRelease
	idxBlank
	idxTail
)

// Label fragments used to reject a layout that would read the wrong item.
const (
	labelBoxOffice = "box office"
	labelRuntime   = "runtime"
	labelStudio    = "studio"
)

// DetailLayout is the layout-specific tail of the metadata list. Each layout
// carries only the fields it guarantees.
type DetailLayout interface {
	Name() string
	Fill(film *models.FilmDetail)
}

// FullLayout has box office, runtime and studio after the blank item.
type FullLayout struct {
	BoxOffice int64
	Runtime   int
	Studio    string
}

func (l FullLayout) Name() string { return models.LayoutFull }

func (l FullLayout) Fill(film *models.FilmDetail) {
	box, runtime := l.BoxOffice, l.Runtime
	film.BoxOffice = &box
	film.Runtime = &runtime
	film.Studio = l.Studio
}

// NoBoxOfficeLayout has runtime and studio after the blank item.
type NoBoxOfficeLayout struct {
	Runtime int
	Studio  string
}

func (l NoBoxOfficeLayout) Name() string { return models.LayoutNoBoxOffice }

func (l NoBoxOfficeLayout) Fill(film *models.FilmDetail) {
	runtime := l.Runtime
	film.BoxOffice = nil
	film.Runtime = &runtime
	film.Studio = l.Studio
}

// MinimalLayout has only the studio after the blank item.
type MinimalLayout struct {
	Studio string
}

func (l MinimalLayout) Name() string { return models.LayoutMinimal }

func (l MinimalLayout) Fill(film *models.FilmDetail) {
	film.BoxOffice = nil
	film.Runtime = nil
	film.Studio = l.Studio
}

// DetailPage is everything a film detail page contributes to a FilmDetail.
type DetailPage struct {
	Synopsis    string
	Rating      string
	Directors   []string
	Writers     []string
	ReleaseDate string
	Layout      DetailLayout
}

// Fill copies the page fields into film.
func (p *DetailPage) Fill(film *models.FilmDetail) {
	film.Synopsis = p.Synopsis
	film.Rating = p.Rating
	film.Directors = p.Directors
	film.Writers = p.Writers
	film.ReleaseDate = p.ReleaseDate
	film.Layout = p.Layout.Name()
	p.Layout.Fill(film)
}

type layoutParser struct {
	name  string
	parse func(items metaList) (DetailLayout, error)
}

// layoutChain lists the layouts in the order they are tried.
var layoutChain = []layoutParser{
	{models.LayoutFull, parseFullLayout},
	{models.LayoutNoBoxOffice, parseNoBoxOfficeLayout},
	{models.LayoutMinimal, parseMinimalLayout},
}

// ExtractDetail reads a film detail page. The synopsis and the first five
// metadata items are required; the tail is matched against each layout in
// turn and only a layout mismatch moves on to the next one.
func ExtractDetail(doc *goquery.Document) (*DetailPage, error) {
	synopsis := doc.Find(synopsisSelector).First()
	if synopsis.Length() == 0 {
		return nil, apperrors.NewStructureError("synopsis not found on detail page", nil)
	}

	list := doc.Find(metaListSelector).First()
	if list.Length() == 0 {
		return nil, apperrors.NewStructureError("metadata list not found on detail page", nil)
	}
	items := collectItems(list)

	page := &DetailPage{Synopsis: text(synopsis)}
	if err := page.readCommon(items); err != nil {
		return nil, apperrors.NewStructureError("detail metadata", err)
	}

	var mismatches []error
	for _, lp := range layoutChain {
		layout, err := lp.parse(items)
		if err == nil {
			page.Layout = layout
			return page, nil
		}
		if !apperrors.IsType(err, apperrors.ErrorTypeLayoutMismatch) {
			return nil, err
		}
		mismatches = append(mismatches, err)
	}

	return nil, apperrors.NewStructureError(
		fmt.Sprintf("no detail layout matched %d metadata items", len(items)),
		errors.Join(mismatches...),
	)
}

func (p *DetailPage) readCommon(items metaList) error {
	if len(items) <= idxRelease {
		return fmt.Errorf("expected at least %d metadata items, found %d", idxRelease+1, len(items))
	}

	rating, err := items.value(idxRating)
	if err != nil {
		return err
	}
	p.Rating = text(rating)

	directors, err := items.value(idxDirector)
	if err != nil {
		return err
	}
	p.Directors = names(directors)

	writers, err := items.value(idxWriter)
	if err != nil {
		return err
	}
	p.Writers = names(writers)

	release, err := items.value(idxRelease)
	if err != nil {
		return err
	}
	releaseTime := release.Find("time").First()
	if releaseTime.Length() == 0 {
		return fmt.Errorf("release date has no time element")
	}
	p.ReleaseDate = text(releaseTime)
	return nil
}

func parseFullLayout(items metaList) (DetailLayout, error) {
	const layout = models.LayoutFull

	boxValue, err := items.tail(layout, idxTail, labelBoxOffice)
	if err != nil {
		return nil, err
	}
	box, err := parseBoxOffice(text(boxValue))
	if err != nil {
		return nil, apperrors.NewLayoutMismatchError(layout, err.Error())
	}

	runtimeValue, err := items.tail(layout, idxTail+1, labelRuntime)
	if err != nil {
		return nil, err
	}
	runtime, err := parseRuntime(runtimeText(runtimeValue))
	if err != nil {
		return nil, apperrors.NewLayoutMismatchError(layout, err.Error())
	}

	studio, err := items.studio(layout, idxTail+2)
	if err != nil {
		return nil, err
	}
	if err := items.rest(layout, idxTail+3); err != nil {
		return nil, err
	}

	return FullLayout{BoxOffice: box, Runtime: runtime, Studio: studio}, nil
}

func parseNoBoxOfficeLayout(items metaList) (DetailLayout, error) {
	const layout = models.LayoutNoBoxOffice

	runtimeValue, err := items.tail(layout, idxTail, labelRuntime)
	if err != nil {
		return nil, err
	}
	runtime, err := parseRuntime(runtimeText(runtimeValue))
	if err != nil {
		return nil, apperrors.NewLayoutMismatchError(layout, err.Error())
	}

	studio, err := items.studio(layout, idxTail+1)
	if err != nil {
		return nil, err
	}
	if err := items.rest(layout, idxTail+2); err != nil {
		return nil, err
	}

	return NoBoxOfficeLayout{Runtime: runtime, Studio: studio}, nil
}

func parseMinimalLayout(items metaList) (DetailLayout, error) {
	const layout = models.LayoutMinimal

	studio, err := items.studio(layout, idxTail)
	if err != nil {
		return nil, err
	}
	if err := items.rest(layout, idxTail+1); err != nil {
		return nil, err
	}
	return MinimalLayout{Studio: studio}, nil
}

// metaList is the ordered list of metadata items on a detail page.
type metaList []*goquery.Selection

func collectItems(list *goquery.Selection) metaList {
	var items metaList
	list.ChildrenFiltered("li").Each(func(i int, li *goquery.Selection) {
		items = append(items, li)
	})
	return items
}

// value returns the meta-value element of item i.
func (m metaList) value(i int) (*goquery.Selection, error) {
	if i >= len(m) {
		return nil, fmt.Errorf("metadata item %d missing", i)
	}
	v := m[i].Find(metaValueClass).First()
	if v.Length() == 0 {
		return nil, fmt.Errorf("metadata item %d has no value", i)
	}
	return v, nil
}

// tail returns the meta-value of item i for a layout. A missing item, or a
// label naming some other field, is a layout mismatch.
func (m metaList) tail(layout string, i int, want string) (*goquery.Selection, error) {
	v, err := m.value(i)
	if err != nil {
		return nil, apperrors.NewLayoutMismatchError(layout, err.Error())
	}

	if label := m.label(i); label != "" && !strings.Contains(label, want) {
		return nil, apperrors.NewLayoutMismatchError(layout,
			fmt.Sprintf("item %d is %q, expected %s", i, strings.TrimSuffix(label, ":"), want))
	}
	return v, nil
}

// studio reads the studio of a layout from item i. An unlabeled value that
// reads as a box office amount or a runtime belongs to another slot.
func (m metaList) studio(layout string, i int) (string, error) {
	v, err := m.tail(layout, i, labelStudio)
	if err != nil {
		return "", err
	}

	studio := text(v)
	if m.label(i) == "" {
		if _, err := parseBoxOffice(studio); err == nil {
			return "", apperrors.NewLayoutMismatchError(layout, fmt.Sprintf("item %d reads as a box office amount", i))
		}
		if _, err := parseRuntime(runtimeText(v)); err == nil {
			return "", apperrors.NewLayoutMismatchError(layout, fmt.Sprintf("item %d reads as a runtime", i))
		}
	}
	return studio, nil
}

// rest checks the items after the last field of a layout. Labeled items for
// other facts are allowed; an unlabeled item, or one labeled as a field the
// layout does not read, means the list is longer than the layout.
func (m metaList) rest(layout string, from int) error {
	for i := from; i < len(m); i++ {
		label := m.label(i)
		if label == "" {
			return apperrors.NewLayoutMismatchError(layout, fmt.Sprintf("unexpected unlabeled item %d", i))
		}
		for _, field := range []string{labelBoxOffice, labelRuntime, labelStudio} {
			if strings.Contains(label, field) {
				return apperrors.NewLayoutMismatchError(layout,
					fmt.Sprintf("item %d is %q, expected nothing after the studio", i, strings.TrimSuffix(label, ":")))
			}
		}
	}
	return nil
}

// label returns the lower-cased meta-label of item i, or "" when it has none.
func (m metaList) label(i int) string {
	return strings.ToLower(text(m[i].Find(metaLabelClass).First()))
}

// names reads a credit list: the link texts, or the plain value when the
// credits are not linked.
func names(value *goquery.Selection) []string {
	links := value.Find("a")
	if links.Length() == 0 {
		return models.SplitNames(text(value))
	}

	var out []string
	links.Each(func(i int, a *goquery.Selection) {
		if name := text(a); name != "" {
			out = append(out, name)
		}
	})
	return out
}

func runtimeText(value *goquery.Selection) string {
	if t := value.Find("time").First(); t.Length() > 0 {
		return text(t)
	}
	return text(value)
}

var runtimePattern = regexp.MustCompile(`^(?:(\d+)\s*h)?\s*(?:(\d+)\s*m(?:in(?:ute)?s?)?)?$`)

// parseRuntime reads "93 minutes", "93 min" or "1h 33m" as minutes.
func parseRuntime(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	match := runtimePattern.FindStringSubmatch(s)
	if s == "" || match == nil || (match[1] == "" && match[2] == "") {
		return 0, fmt.Errorf("invalid runtime %q", s)
	}

	var minutes int
	if match[1] != "" {
		h, _ := strconv.Atoi(match[1])
		minutes += h * 60
	}
	if match[2] != "" {
		m, _ := strconv.Atoi(match[2])
		minutes += m
	}
	return minutes, nil
}

// parseBoxOffice reads "$48,285,330", "$48.3M" or "$950K" as dollars.
func parseBoxOffice(s string) (int64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0, fmt.Errorf("invalid box office %q", s)
	}

	multiplier := 1.0
	switch suffix := strings.ToUpper(cleaned[len(cleaned)-1:]); suffix {
	case "B":
		multiplier = 1e9
	case "M":
		multiplier = 1e6
	case "K":
		multiplier = 1e3
	}

	if multiplier == 1 {
		n, err := strconv.ParseInt(cleaned, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid box office %q", s)
		}
		return n, nil
	}

	f, err := strconv.ParseFloat(cleaned[:len(cleaned)-1], 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid box office %q", s)
	}
	return int64(f*multiplier + 0.5), nil
}
