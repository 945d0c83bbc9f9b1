package applications

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"DWELLING - BUILDING RULES ONLY", "DWELLING"},
		{"Farm shed building only", "Farm shed"},
		{"Demolition - Planning Only ", "Demolition"},
		{"DW ELLING AND GARAGE", "DWELLING AND GARAGE"},
		{"PLANNING ONLY", NoDescription},
		{"   ", NoDescription},
		{"Verandah", "Verandah"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanDescription(tt.input))
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"5/03/2018", "2018-03-05"},
		{" 12/03/2018 ", "2018-03-12"},
		{"5/3/2018", ""},
		{"31/02/2018", ""},
		{"N/A", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseDate(tt.input))
		})
	}
}

func TestLegalDescription(t *testing.T) {
	assert.Equal(t, "Lot 4, Section 120, Hundred GRANT", LegalDescription("4", "120", "GRANT"))
	assert.Equal(t, "Section 120", LegalDescription("-", " 120 ", ""))
	assert.Equal(t, "", LegalDescription("", "–", "-"))
}

func TestSplitHundred(t *testing.T) {
	lines, hundred := splitHundred([]string{"7 SMITH ST", "GRANT", "HD GRANT"}, nil)
	assert.Equal(t, []string{"7 SMITH ST", "GRANT"}, lines)
	assert.Equal(t, "HD GRANT", hundred)

	lines, hundred = splitHundred([]string{"7 SMITH ST", "HUNDRED OF YOUNG"}, nil)
	assert.Equal(t, []string{"7 SMITH ST"}, lines)
	assert.Equal(t, "YOUNG", hundredName(hundred))

	lines, hundred = splitHundred([]string{"HD GRANT"}, nil)
	assert.Equal(t, []string{"HD GRANT"}, lines, "a lone line stays the address")
	assert.Empty(t, hundred)

	known := func(line string) bool { return line == "YOUNG" }
	lines, hundred = splitHundred([]string{"7 PENOLA RD", "TARPEENA", "YOUNG"}, known)
	assert.Equal(t, []string{"7 PENOLA RD", "TARPEENA", "YOUNG"}, lines, "a bare hundred stays in the address")
	assert.Equal(t, "YOUNG", hundred)

	lines, hundred = splitHundred([]string{"7 PENOLA RD", "TARPEENA"}, known)
	assert.Equal(t, []string{"7 PENOLA RD", "TARPEENA"}, lines)
	assert.Empty(t, hundred)

	assert.Equal(t, "GRANT", hundredName("HD. GRANT"))
	assert.Equal(t, "BLANCHE", hundredName("BLANCHE HUNDRED"))
}

func TestLayoutsFor(t *testing.T) {
	auto, err := LayoutsFor("")
	require.NoError(t, err)
	require.Len(t, auto, 3)
	assert.Equal(t, LayoutV3, auto[0].Name)

	v1, err := LayoutsFor(" V1 ")
	require.NoError(t, err)
	require.Len(t, v1, 1)
	assert.Equal(t, " ", v1[0].AddressSeparator)

	_, err = LayoutsFor("v4")
	assert.Error(t, err)

	assert.Equal(t, []string{LayoutV1, LayoutV2, LayoutV3}, LayoutNames())
}

func TestApplicationNumberPatterns(t *testing.T) {
	tests := []struct {
		number string
		v1     bool
		v3     bool
	}{
		{"141/17", true, false},
		{"ASSESS", false, false},
		{"12/34/18", false, true},
		{"141/17 ", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			assert.Equal(t, tt.v1, V1().ApplicationNumber.MatchString(tt.number))
			assert.Equal(t, tt.v1, V2().ApplicationNumber.MatchString(tt.number))
			assert.Equal(t, tt.v3, V3().ApplicationNumber.MatchString(tt.number))
		})
	}
}
