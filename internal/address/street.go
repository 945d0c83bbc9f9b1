// Package address canonicalises register addresses against the gazetteer.
package address

import (
	"strings"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/gazetteer"
)

const (
	// Street name windows, in words including the road type
	minStreetWords     = 2
	DefaultStreetWords = 6
	RuledStreetWords   = 4
)

// Street is a recognised street name with the words that preceded it
type Street struct {
	// Prefix holds the words before the street name, usually a house number
	Prefix string

	// Name is the gazetteer's spelling of the street
	Name string

	// Suburbs the street runs through, in gazetteer order
	Suburbs []string
}

// String returns the prefix and street name
func (s Street) String() string {
	if s.Prefix == "" {
		return s.Name
	}
	return s.Prefix + " " + s.Name
}

// StreetRecognizer finds a known street name at the end of a token
type StreetRecognizer struct {
	gazetteer     *gazetteer.Gazetteer
	maxWords      int
	thresholdBase int
}

// NewStreetRecognizer creates a recognizer trying windows of up to maxWords
// words. Fuzzy matches allow thresholdBase minus the window size edits.
func NewStreetRecognizer(g *gazetteer.Gazetteer, maxWords, thresholdBase int) *StreetRecognizer {
	if maxWords < minStreetWords {
		maxWords = DefaultStreetWords
	}
	return &StreetRecognizer{gazetteer: g, maxWords: maxWords, thresholdBase: thresholdBase}
}

// Recognize reports the street named at the end of text. Text whose last word
// is not a road type is never a street.
func (r *StreetRecognizer) Recognize(text string) (Street, bool) {
	words := strings.Fields(strings.ToUpper(text))
	if len(words) < minStreetWords {
		return Street{}, false
	}

	suffix, ok := r.gazetteer.ExpandSuffix(words[len(words)-1])
	if !ok {
		return Street{}, false
	}
	words[len(words)-1] = suffix

	largest := min(r.maxWords, len(words))

	for n := largest; n >= minStreetWords; n-- {
		name := strings.Join(words[len(words)-n:], " ")
		if suburbs, ok := r.gazetteer.Street(name); ok {
			return r.street(words, n, name, suburbs), true
		}
	}

	// a window starting at a house number would absorb it into the street
	for n := largest; n >= minStreetWords; n-- {
		if strings.ContainsAny(words[len(words)-n], "0123456789") {
			continue
		}
		candidate := strings.Join(words[len(words)-n:], " ")
		if name, ok := r.gazetteer.ClosestStreet(candidate, r.thresholdBase-n); ok {
			suburbs, _ := r.gazetteer.Street(name)
			return r.street(words, n, name, suburbs), true
		}
	}

	return Street{}, false
}

func (r *StreetRecognizer) street(words []string, n int, name string, suburbs []string) Street {
	return Street{
		Prefix:  strings.Join(words[:len(words)-n], " "),
		Name:    name,
		Suburbs: suburbs,
	}
}
