package applications

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/address"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/gazetteer"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/pdf/content"
	pdferrors "github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/pdf/errors"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/table"
)

// Options configure a Mapper
type Options struct {
	// Layout is "auto" or a layout name
	Layout string

	// CommentURL is copied into every record
	CommentURL string

	// Address thresholds. StreetWords is taken from each layout.
	Address address.Options
}

// Mapper turns register pages into records
type Mapper struct {
	gazetteer  *gazetteer.Gazetteer
	layouts    []*Layout
	formatters map[string]*address.Formatter
	commentURL string
	logger     *slog.Logger
	now        func() time.Time
}

// NewMapper creates a mapper over the gazetteer g
func NewMapper(g *gazetteer.Gazetteer, opts Options, logger *slog.Logger) (*Mapper, error) {
	layouts, err := LayoutsFor(opts.Layout)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	formatters := make(map[string]*address.Formatter, len(layouts))
	for _, l := range layouts {
		addressOpts := opts.Address
		addressOpts.StreetWords = l.StreetWords
		formatters[l.Name] = address.NewFormatter(g, addressOpts)
	}

	return &Mapper{
		gazetteer:  g,
		layouts:    layouts,
		formatters: formatters,
		commentURL: opts.CommentURL,
		logger:     logger.With("component", "mapper"),
		now:        time.Now,
	}, nil
}

// Layouts returns the names of the layouts tried on every page, in order
func (m *Mapper) Layouts() []string {
	names := make([]string, len(m.layouts))
	for i, l := range m.layouts {
		names[i] = l.Name
	}
	return names
}

// MapPage returns the records of page. With several layouts the one giving
// the most records wins, the earlier layout on ties. A page no layout can
// read is a structural absence: its text is logged and the error returned.
func (m *Mapper) MapPage(page content.Page, infoURL string) ([]Record, error) {
	var (
		best     []Record
		bestName string
		firstErr error
		failed   *table.Grid
		found    bool
	)

	for _, l := range m.layouts {
		records, grid, err := m.mapLayout(l, page, infoURL)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if failed == nil {
				failed = grid
			}
			m.logger.Debug("layout does not fit page", "layout", l.Name, "page", page.Number, "error", err)
			continue
		}
		if !found || len(records) > len(best) {
			best, bestName, found = records, l.Name, true
		}
	}

	if !found {
		elements, unassigned := pageTexts(page), 0
		if failed != nil {
			elements, unassigned = failed.Texts(), len(failed.Unassigned)
		}
		m.logger.Warn("skipping page",
			"document", infoURL,
			"page", page.Number,
			"error", firstErr,
			"elements", elements,
			"unassigned", unassigned)
		return nil, firstErr
	}

	m.logger.Debug("mapped page", "page", page.Number, "layout", bestName, "records", len(best))
	return best, nil
}

// mapLayout reads page with one layout. The grid is returned with any
// error after extraction so a skipped page can be reported.
func (m *Mapper) mapLayout(l *Layout, page content.Page, infoURL string) ([]Record, *table.Grid, error) {
	grid, err := l.Table.Extract(page)
	if err != nil {
		return nil, nil, m.absence(fmt.Sprintf("%s grid", l.Name), err, infoURL, page.Number)
	}

	if len(grid.Rows) == 0 {
		return nil, grid, m.absence(fmt.Sprintf("%s rows", l.Name), pdferrors.ErrNoRows, infoURL, page.Number)
	}

	headers := FindHeaders(l, grid)
	for _, mandatory := range []Field{FieldApplication, FieldAddress} {
		if _, ok := headers.Lookup(mandatory); !ok {
			return nil, grid, m.absence(fmt.Sprintf("%s %s header", l.Name, mandatory), pdferrors.ErrHeaderNotFound, infoURL, page.Number)
		}
	}

	scraped := m.now().Format(dateLayout)
	records := make([]Record, 0, len(grid.Rows))
	for _, row := range grid.Rows {
		record, err := m.mapRow(l, headers, row)
		if err != nil {
			// heading rows fail here on every page
			continue
		}
		record.InformationURL = infoURL
		record.CommentURL = m.commentURL
		record.ScrapeDate = scraped
		records = append(records, record)
	}

	return records, grid, nil
}

func (m *Mapper) absence(what string, err error, document string, page int) error {
	return pdferrors.Wrap(pdferrors.KindStructuralAbsence, what, err).
		WithDocument(document).
		WithPage(page)
}

func (m *Mapper) mapRow(l *Layout, headers Headers, row table.Row) (Record, error) {
	text := func(field Field, sep string) string {
		c, _ := headers.CellFor(row, field)
		return c.Text(sep)
	}

	number := text(FieldApplication, "")
	if !l.ApplicationNumber.MatchString(number) {
		return Record{}, pdferrors.Wrap(pdferrors.KindRowValidation, number, pdferrors.ErrInvalidApplicationNumber)
	}

	addressCell, _ := headers.CellFor(row, FieldAddress)
	street, hundredFragment := splitHundred(elementTexts(addressCell), m.bareHundred)
	joined := strings.Join(street, l.AddressSeparator)
	if house := text(FieldHouseNumber, " "); joined != "" && !isPlaceholder(house) {
		joined = house + " " + joined
	}
	formatted := m.formatters[l.Name].Format(joined)
	if formatted == "" {
		return Record{}, pdferrors.Wrap(pdferrors.KindRowValidation, number, pdferrors.ErrEmptyAddress)
	}

	dateCell, _ := headers.CellFor(row, FieldDate)

	hundred := text(FieldHundred, " ")
	if isPlaceholder(hundred) {
		hundred = hundredName(hundredFragment)
	}

	return Record{
		ApplicationNumber: number,
		Address:           formatted,
		Description:       CleanDescription(text(FieldDescription, " ")),
		ReceivedDate:      ParseDate(firstText(dateCell)),
		LegalDescription:  LegalDescription(text(FieldLot, " "), text(FieldSection, " "), hundred),
	}, nil
}

// bareHundred reports whether an unmarked address line names a hundred and
// no suburb
func (m *Mapper) bareHundred(line string) bool {
	if _, suburb := m.gazetteer.Suburb(line); suburb {
		return false
	}
	return m.gazetteer.IsHundred(line)
}

func elementTexts(c *table.Cell) []string {
	if c == nil {
		return nil
	}
	texts := make([]string, 0, len(c.Elements))
	for _, e := range c.Elements {
		if t := strings.TrimSpace(e.Text); t != "" {
			texts = append(texts, t)
		}
	}
	return texts
}

func firstText(c *table.Cell) string {
	if texts := elementTexts(c); len(texts) > 0 {
		return texts[0]
	}
	return ""
}

func pageTexts(page content.Page) []string {
	texts := make([]string, len(page.TextRuns))
	for i, r := range page.TextRuns {
		texts[i] = r.Text
	}
	return texts
}
