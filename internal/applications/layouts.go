package applications

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/address"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/table"
)

// Layout names accepted by LayoutsFor
const (
	LayoutAuto = "auto"
	LayoutV1   = "v1"
	LayoutV2   = "v2"
	LayoutV3   = "v3"
)

// Field identifies a register column
type Field int

const (
	FieldApplication Field = iota
	FieldAddress
	FieldHouseNumber
	FieldDescription
	FieldLot
	FieldSection
	FieldHundred
	FieldDate
	FieldApplicant
	FieldAssessment
)

// String returns a string representation of the Field
func (f Field) String() string {
	switch f {
	case FieldApplication:
		return "application"
	case FieldAddress:
		return "address"
	case FieldHouseNumber:
		return "house_number"
	case FieldDescription:
		return "description"
	case FieldLot:
		return "lot"
	case FieldSection:
		return "section"
	case FieldHundred:
		return "hundred"
	case FieldDate:
		return "date"
	case FieldApplicant:
		return "applicant"
	case FieldAssessment:
		return "assessment"
	default:
		return "unknown"
	}
}

// HeaderLabel is the literal text of a header cell
type HeaderLabel struct {
	Field Field
	Label string

	// Compact compares texts with all whitespace removed
	Compact bool
}

// Layout pairs the table geometry of one register generation with its
// header labels and field rules
type Layout struct {
	Name              string
	Table             table.TableGridExtractor
	Matcher           table.HeaderMatcher
	Labels            []HeaderLabel
	ApplicationNumber *regexp.Regexp
	AddressSeparator  string
	StreetWords       int
}

var (
	twoPartNumber   = regexp.MustCompile(`^\d+/\d+$`)
	threePartNumber = regexp.MustCompile(`^\d+/\d+/\d+$`)
)

// Columns whose text the later registers merge with their neighbours
var splitColumns = []table.SplitColumn{
	{Label: "APPLICANT", Capacity: 3},
	{Label: "ASSESS", Capacity: 2},
	{Label: "DESCRIPTION", Capacity: 2},
	{Label: "DECISION", Capacity: 1},
}

func commonLabels(date string) []HeaderLabel {
	return []HeaderLabel{
		{Field: FieldApplication, Label: "APPLICATION"},
		{Field: FieldAddress, Label: "PROPERTY ADDRESS"},
		{Field: FieldHouseNumber, Label: "NO.", Compact: true},
		{Field: FieldDescription, Label: "DESCRIPTION"},
		{Field: FieldLot, Label: "LOT"},
		{Field: FieldSection, Label: "SECTION /"},
		{Field: FieldHundred, Label: "HUNDRED"},
		{Field: FieldDate, Label: date},
	}
}

// V1 is the ruled register with receipt dates
func V1() *Layout {
	return &Layout{
		Name:              LayoutV1,
		Table:             table.Ruled(),
		Matcher:           table.HeaderMatcher{CollapseWhitespace: true},
		Labels:            commonLabels("RECEIPT"),
		ApplicationNumber: twoPartNumber,
		AddressSeparator:  " ",
		StreetWords:       address.RuledStreetWords,
	}
}

// V2 is the segmented register with applicant and assessment columns
func V2() *Layout {
	return segmented(LayoutV2, twoPartNumber)
}

// V3 is V2 with three part application numbers
func V3() *Layout {
	return segmented(LayoutV3, threePartNumber)
}

func segmented(name string, number *regexp.Regexp) *Layout {
	labels := append(commonLabels("DECISION"),
		HeaderLabel{Field: FieldApplicant, Label: "APPLICANT"},
		HeaderLabel{Field: FieldAssessment, Label: "ASSESS"},
	)
	return &Layout{
		Name:              name,
		Table:             table.Segmented(name, splitColumns),
		Matcher:           table.HeaderMatcher{RequireContainment: true},
		Labels:            labels,
		ApplicationNumber: number,
		AddressSeparator:  ", ",
		StreetWords:       address.DefaultStreetWords,
	}
}

var layouts = map[string]func() *Layout{
	LayoutV1: V1,
	LayoutV2: V2,
	LayoutV3: V3,
}

// LayoutsFor returns the layouts to try for name. "auto" returns the newest
// layout first.
func LayoutsFor(name string) ([]*Layout, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == LayoutAuto {
		return []*Layout{V3(), V2(), V1()}, nil
	}
	if build, ok := layouts[name]; ok {
		return []*Layout{build()}, nil
	}
	return nil, fmt.Errorf("unknown layout %q (expected %s or one of %s)", name, LayoutAuto, strings.Join(LayoutNames(), ", "))
}

// LayoutNames returns the names of the concrete layouts
func LayoutNames() []string {
	names := make([]string, 0, len(layouts))
	for name := range layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
