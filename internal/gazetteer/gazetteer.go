// Package gazetteer holds the street, road type, suburb and hundred name
// tables used to canonicalise register addresses.
package gazetteer

import (
	"sort"
	"strings"

	"github.com/xrash/smetrics"
)

const (
	// DefaultStreetThresholdBase is reduced by the word count of a street
	// candidate to give its fuzzy match threshold
	DefaultStreetThresholdBase = 7

	// DefaultSuburbThreshold is the fuzzy match threshold for suburb and
	// hundred names
	DefaultSuburbThreshold = 2
)

// Data is the raw content of the gazetteer files. Keys are upper case.
type Data struct {
	// Streets maps a full street name to the suburbs it runs through
	Streets map[string][]string

	// Suffixes maps a road type abbreviation to its expanded form
	Suffixes map[string]string

	// Suburbs maps a suburb name to its "Suburb SA POSTCODE" form
	Suburbs map[string]string

	// Hundreds maps a hundred name to the suburbs within it
	Hundreds map[string][]string
}

// Gazetteer is an immutable set of lookup tables. Safe for concurrent reads.
type Gazetteer struct {
	streets    map[string][]string
	suffixes   map[string]string
	expansions map[string]bool
	suburbs    map[string]string
	hundreds   map[string][]string

	streetKeys  []string
	suburbKeys  []string
	hundredKeys []string
}

// New builds a Gazetteer from data. Suburbs starting with "MOUNT " are also
// registered under their "MT ", "MT." and "MT. " spellings.
func New(data Data) *Gazetteer {
	g := &Gazetteer{
		streets:    make(map[string][]string, len(data.Streets)),
		suffixes:   make(map[string]string, len(data.Suffixes)),
		expansions: make(map[string]bool, len(data.Suffixes)),
		suburbs:    make(map[string]string, len(data.Suburbs)),
		hundreds:   make(map[string][]string, len(data.Hundreds)),
	}

	for name, suburbs := range data.Streets {
		key := normalizeKey(name)
		g.streets[key] = appendUnique(g.streets[key], suburbs...)
	}

	for abbreviation, expansion := range data.Suffixes {
		expansion = normalizeKey(expansion)
		g.suffixes[normalizeKey(abbreviation)] = expansion
		g.expansions[expansion] = true
	}

	for name, canonical := range data.Suburbs {
		key := normalizeKey(name)
		g.suburbs[key] = canonical
		if rest, ok := strings.CutPrefix(key, "MOUNT "); ok {
			for _, prefix := range []string{"MT ", "MT.", "MT. "} {
				g.suburbs[prefix+rest] = canonical
			}
		}
	}

	for name, suburbs := range data.Hundreds {
		key := normalizeKey(name)
		g.hundreds[key] = appendUnique(g.hundreds[key], suburbs...)
	}

	g.streetKeys = sortedKeys(g.streets)
	g.suburbKeys = sortedKeys(g.suburbs)
	g.hundredKeys = sortedKeys(g.hundreds)

	return g
}

// Street returns the suburbs of an exactly matching street name
func (g *Gazetteer) Street(name string) ([]string, bool) {
	suburbs, ok := g.streets[normalizeKey(name)]
	return suburbs, ok
}

// ClosestStreet returns the street name nearest to name within threshold
// edits
func (g *Gazetteer) ClosestStreet(name string, threshold int) (string, bool) {
	return Closest(normalizeKey(name), g.streetKeys, threshold)
}

// ExpandSuffix returns the expanded form of a road type given either its
// abbreviation or its expanded form
func (g *Gazetteer) ExpandSuffix(token string) (string, bool) {
	token = normalizeKey(token)
	if expansion, ok := g.suffixes[token]; ok {
		return expansion, true
	}
	if g.expansions[token] {
		return token, true
	}
	return "", false
}

// Suburb returns the canonical "Suburb SA POSTCODE" string of a suburb key
func (g *Gazetteer) Suburb(name string) (string, bool) {
	canonical, ok := g.suburbs[normalizeKey(name)]
	return canonical, ok
}

// ClosestSuburb returns the suburb key nearest to name within threshold edits
func (g *Gazetteer) ClosestSuburb(name string, threshold int) (string, bool) {
	return Closest(normalizeKey(name), g.suburbKeys, threshold)
}

// HundredSuburbs returns the suburbs of the hundred nearest to name within
// threshold edits. A leading "HD " is ignored.
func (g *Gazetteer) HundredSuburbs(name string, threshold int) ([]string, bool) {
	key := stripHundredPrefix(name)
	if key == "" {
		return nil, false
	}

	match, ok := Closest(key, g.hundredKeys, threshold)
	if !ok {
		return nil, false
	}
	return g.hundreds[match], true
}

// IsHundred reports whether name, with any "HD " prefix removed, is a known
// hundred
func (g *Gazetteer) IsHundred(name string) bool {
	_, ok := g.hundreds[stripHundredPrefix(name)]
	return ok
}

// Stats returns the number of entries per table
func (g *Gazetteer) Stats() map[string]int {
	return map[string]int{
		"streets":  len(g.streets),
		"suffixes": len(g.suffixes),
		"suburbs":  len(g.suburbs),
		"hundreds": len(g.hundreds),
	}
}

// Closest returns the key with the smallest Wagner-Fischer edit distance to
// candidate, provided it is at most threshold. Ties go to the first key in
// keys order.
func Closest(candidate string, keys []string, threshold int) (string, bool) {
	if threshold < 0 || candidate == "" {
		return "", false
	}

	best := ""
	bestDistance := threshold + 1
	for _, key := range keys {
		// lengths alone rule out keys too far away
		if d := len(key) - len(candidate); d > threshold || -d > threshold {
			continue
		}
		if d := smetrics.WagnerFischer(candidate, key, 1, 1, 1); d < bestDistance {
			best, bestDistance = key, d
			if d == 0 {
				break
			}
		}
	}

	return best, bestDistance <= threshold
}

func stripHundredPrefix(name string) string {
	key := normalizeKey(name)
	if key == "HD" {
		return ""
	}
	return strings.TrimPrefix(key, "HD ")
}

func normalizeKey(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		v = normalizeKey(v)
		if v == "" {
			continue
		}
		found := false
		for _, existing := range list {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			list = append(list, v)
		}
	}
	return list
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
