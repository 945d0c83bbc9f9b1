package applications

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/pdf/content"
	pdferrors "github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/pdf/errors"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/testutil"
)

func TestMapPage_RuledPage(t *testing.T) {
	m := newTestMapper(t, LayoutV1)

	records, err := m.MapPage(ruledPage(), testInfoURL)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, Record{
		ApplicationNumber: "123/20",
		Address:           "123 SMITH STREET, GRANT SA 5XXX",
		Description:       NoDescription,
		InformationURL:    testInfoURL,
		CommentURL:        testCommentURL,
		ScrapeDate:        "2026-10-19",
	}, records[0])
}

func TestMapPage_RuledPageAllColumns(t *testing.T) {
	m := newTestMapper(t, LayoutV1)

	p := page(ruledGrid([]float64{0, 20, 40}, []float64{0, 50, 70, 170, 200, 230, 270, 330}),
		run("APPLICATION", 5, 5, 40),
		run("N O.", 52, 5, 15),
		run("PROPERTY  ADDRESS", 72, 5, 90),
		run("LOT", 172, 5, 20),
		run("SECTION /", 202, 5, 25),
		run("HUNDRED", 232, 5, 35),
		run("RECEIPT", 272, 5, 40),
		run("141/17", 5, 25, 30),
		run("12", 52, 25, 10),
		run("SMITH ST, HD GRANT, GRANT", 72, 25, 90),
		run("4", 172, 25, 5),
		run("-", 202, 25, 5),
		run("GRANT", 232, 25, 30),
		run("5/03/2018", 272, 25, 45),
	)

	records, err := m.MapPage(p, testInfoURL)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "141/17", r.ApplicationNumber)
	assert.Equal(t, "12 SMITH STREET, GRANT SA 5XXX", r.Address)
	assert.Equal(t, NoDescription, r.Description)
	assert.Equal(t, "2018-03-05", r.ReceivedDate)
	assert.Equal(t, "Lot 4, Hundred GRANT", r.LegalDescription)
}

func TestMapPage_SegmentedOverhang(t *testing.T) {
	m := newTestMapper(t, LayoutV2)

	records, err := m.MapPage(segmentedPage("SMITH   1234567   123/20"), testInfoURL)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "123/20", r.ApplicationNumber)
	assert.Equal(t, "7 SMITH STREET, GRANT SA 5XXX", r.Address)
	assert.Equal(t, "DWELLING", r.Description)
	assert.Equal(t, "2018-03-12", r.ReceivedDate)
	assert.Equal(t, "Hundred GRANT", r.LegalDescription)
}

func TestMapPage_BareHundredLine(t *testing.T) {
	m := newTestMapper(t, LayoutV2)

	records, err := m.MapPage(segmentedPageAt("SMITH   1234567   123/20", "7 PENOLA RD", "TARPEENA", "YOUNG"), testInfoURL)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "7 PENOLA ROAD, Tarpeena SA 5277", records[0].Address)
	assert.Equal(t, "Hundred YOUNG", records[0].LegalDescription)
}

func TestMapPage_RuledAddressLinesJoinWithSpace(t *testing.T) {
	m := newTestMapper(t, LayoutV1)

	p := page(ruledGrid([]float64{0, 20, 40}, []float64{0, 50, 100}),
		run("APPLICATION", 5, 5, 40),
		run("PROPERTY ADDRESS", 52, 5, 45),
		run("123/20", 5, 22, 30),
		run("123 SMITH", 52, 21, 40),
		run("ST, HD GRANT, GRANT", 52, 29, 45),
	)

	records, err := m.MapPage(p, testInfoURL)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "123 SMITH STREET, GRANT SA 5XXX", records[0].Address)
}

func TestMapPage_ApplicationNumberPattern(t *testing.T) {
	v2 := newTestMapper(t, LayoutV2)
	v3 := newTestMapper(t, LayoutV3)

	records, err := v3.MapPage(segmentedPage("SMITH   1234567   12/34/18"), testInfoURL)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "12/34/18", records[0].ApplicationNumber)

	records, err = v2.MapPage(segmentedPage("SMITH   1234567   12/34/18"), testInfoURL)
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = v3.MapPage(segmentedPage("SMITH   1234567   123/20"), testInfoURL)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMapPage_AutoPicksLayoutWithMostRecords(t *testing.T) {
	m := newTestMapper(t, LayoutAuto)
	assert.Equal(t, []string{LayoutV3, LayoutV2, LayoutV1}, m.Layouts())

	records, err := m.MapPage(segmentedPage("SMITH   1234567   123/20"), testInfoURL)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "DWELLING", records[0].Description)

	records, err = m.MapPage(ruledPage(), testInfoURL)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "123/20", records[0].ApplicationNumber)
	assert.Equal(t, "123 SMITH STREET, GRANT SA 5XXX", records[0].Address)
}

func TestMapPage_StructuralAbsence(t *testing.T) {
	m := newTestMapper(t, LayoutV1)

	t.Run("missing address header", func(t *testing.T) {
		p := page(ruledGrid([]float64{0, 20, 40}, []float64{0, 50, 100}),
			run("APPLICATION", 5, 5, 40),
			run("123/20", 5, 25, 30),
		)
		_, err := m.MapPage(p, testInfoURL)
		require.Error(t, err)
		assert.ErrorIs(t, err, pdferrors.ErrHeaderNotFound)
		assert.Equal(t, pdferrors.KindStructuralAbsence, pdferrors.KindOf(err))
	})

	t.Run("no grid", func(t *testing.T) {
		_, err := m.MapPage(page(nil, run("APPLICATION", 5, 5, 40)), testInfoURL)
		assert.ErrorIs(t, err, pdferrors.ErrNoRows)
	})

	t.Run("page without height", func(t *testing.T) {
		_, err := m.MapPage(content.Page{Number: 3}, testInfoURL)
		require.Error(t, err)
		assert.Equal(t, pdferrors.KindStructuralAbsence, pdferrors.KindOf(err))
	})
}

func TestMapPage_SkippedPageLogsGrid(t *testing.T) {
	var buf bytes.Buffer
	m, err := NewMapper(testGazetteer(), Options{Layout: LayoutV1}, slog.New(slog.NewJSONHandler(&buf, nil)))
	require.NoError(t, err)

	_, err = m.MapPage(page(nil, run("APPLICATION", 5, 5, 40), run("123/20", 5, 25, 30)), testInfoURL)
	require.ErrorIs(t, err, pdferrors.ErrNoRows)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "skipping page", entry["msg"])
	assert.Equal(t, "mapper", entry["component"])
	assert.Equal(t, []any{"APPLICATION", "123/20"}, entry["elements"])
	assert.EqualValues(t, 2, entry["unassigned"], "without ruling no element has a cell")
}

func TestMapPage_RowValidation(t *testing.T) {
	m := newTestMapper(t, LayoutV1)

	p := page(ruledGrid([]float64{0, 20, 40, 60, 80}, []float64{0, 50, 100}),
		run("APPLICATION", 5, 5, 40),
		run("PROPERTY ADDRESS", 52, 5, 45),
		run("ASSESS", 5, 25, 30),
		run("1 SMITH ST, GRANT", 52, 25, 45),
		run("88/19", 5, 45, 30),
		run("2 SMITH ST, GRANT", 52, 45, 45),
		run("89/19", 5, 65, 30),
	)

	records, err := m.MapPage(p, testInfoURL)
	require.NoError(t, err)
	require.Len(t, records, 1, "the heading, a non-number and an empty address are skipped")
	assert.Equal(t, "88/19", records[0].ApplicationNumber)
	assert.Equal(t, "2 SMITH STREET, GRANT SA 5XXX", records[0].Address)
}

func TestNewMapper_UnknownLayout(t *testing.T) {
	_, err := NewMapper(testGazetteer(), Options{Layout: "v9"}, nil)
	assert.Error(t, err)
}

func TestMapPage_FromDocument(t *testing.T) {
	stream := testutil.RegisterPage(
		[]float64{100, 120, 140},
		[]float64{50, 150, 350},
		[]testutil.PlacedText{
			{Text: "APPLICATION", X: 55, Y: 105, Size: 8},
			{Text: "PROPERTY ADDRESS", X: 155, Y: 105, Size: 8},
			{Text: "123/20", X: 55, Y: 125, Size: 8},
			{Text: "123 SMITH ST, HD GRANT, GRANT", X: 155, Y: 125, Size: 8},
		},
	)

	doc, err := content.Open(testutil.BuildPDF(stream), "register.pdf")
	require.NoError(t, err)

	p, err := doc.Page(1)
	require.NoError(t, err)

	records, err := newTestMapper(t, LayoutV1).MapPage(p, testInfoURL)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "123/20", records[0].ApplicationNumber)
	assert.Equal(t, "123 SMITH STREET, GRANT SA 5XXX", records[0].Address)
}
