package address

import (
	"strings"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/gazetteer"
)

// Abbreviations the register uses for directional terraces
var abbreviations = strings.NewReplacer(
	"TCE NTH", "TERRACE NORTH",
	"TCE STH", "TERRACE SOUTH",
	"TCE EAST", "TERRACE EAST",
	"TCE WEST", "TERRACE WEST",
)

// Street positions tried, counted in comma separated tokens from the end
var streetOffsets = []int{3, 2, 4}

// Options tune the formatter's fuzzy matching
type Options struct {
	StreetWords         int
	StreetThresholdBase int
	SuburbThreshold     int
}

// DefaultOptions returns the thresholds used by the later register layouts
func DefaultOptions() Options {
	return Options{
		StreetWords:         DefaultStreetWords,
		StreetThresholdBase: gazetteer.DefaultStreetThresholdBase,
		SuburbThreshold:     gazetteer.DefaultSuburbThreshold,
	}
}

// Formatter rewrites register addresses as "STREET, Suburb SA POSTCODE"
type Formatter struct {
	gazetteer       *gazetteer.Gazetteer
	streets         *StreetRecognizer
	suburbThreshold int
}

// NewFormatter creates a formatter over g
func NewFormatter(g *gazetteer.Gazetteer, opts Options) *Formatter {
	return &Formatter{
		gazetteer:       g,
		streets:         NewStreetRecognizer(g, opts.StreetWords, opts.StreetThresholdBase),
		suburbThreshold: opts.SuburbThreshold,
	}
}

// Format canonicalises address. The street is looked for in the third,
// second and fourth comma separated token from the end; the tokens after it
// name hundreds or suburbs and are replaced by the chosen suburb's canonical
// name. Addresses without a recognisable street are returned as given, with
// only the surrounding space trimmed.
func (f *Formatter) Format(address string) string {
	original := strings.TrimSpace(address)
	if original == "" {
		return ""
	}
	address = abbreviations.Replace(original)

	var tokens []string
	for _, t := range strings.Split(address, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}

	for _, offset := range streetOffsets {
		index := len(tokens) - offset
		if index < 0 {
			continue
		}
		street, ok := f.streets.Recognize(tokens[index])
		if !ok {
			continue
		}

		suburb := f.chooseSuburb(street, tokens[len(tokens)-min(offset-1, 2):])

		parts := append([]string{}, tokens[:index]...)
		parts = append(parts, street.String())
		if suburb != "" {
			if canonical, ok := f.gazetteer.Suburb(suburb); ok {
				suburb = canonical
			}
			parts = append(parts, suburb)
		}
		return strings.Join(parts, ", ")
	}

	return original
}

// chooseSuburb picks a suburb from the names trailing the street. With one
// trailing token it is a hundred and narrows the street's suburbs. With two
// the last is a hundred and the other is a hundred when marked "HD " or a
// suburb otherwise; those two decide alone and the street's first suburb is
// only the fallback.
func (f *Formatter) chooseSuburb(street Street, trailing []string) string {
	var sets [][]string
	if len(trailing) == 1 {
		sets = append(sets, street.Suburbs)
	}

	last := trailing[len(trailing)-1]
	if suburbs, ok := f.gazetteer.HundredSuburbs(last, f.suburbThreshold); ok {
		sets = append(sets, suburbs)
	}

	if len(trailing) == 2 {
		other := strings.ToUpper(trailing[0])
		if strings.HasPrefix(other, "HD ") {
			if suburbs, ok := f.gazetteer.HundredSuburbs(other, f.suburbThreshold); ok {
				sets = append(sets, suburbs)
			}
		} else if key, ok := f.gazetteer.ClosestSuburb(other, f.suburbThreshold); ok {
			sets = append(sets, []string{key})
		}
	}

	if candidates := intersectNonEmpty(sets); len(candidates) > 0 {
		return candidates[0]
	}
	if len(street.Suburbs) > 0 {
		return street.Suburbs[0]
	}
	return ""
}

// intersectNonEmpty intersects the sets in order, skipping empty ones. The
// result keeps the order of the first non-empty set.
func intersectNonEmpty(sets [][]string) []string {
	var result []string
	started := false
	for _, set := range sets {
		if len(set) == 0 {
			continue
		}
		if !started {
			result = append([]string{}, set...)
			started = true
			continue
		}
		result = intersect(result, set)
	}
	return result
}

func intersect(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, s := range b {
		in[s] = true
	}
	var out []string
	for _, s := range a {
		if in[s] {
			out = append(out, s)
		}
	}
	return out
}
