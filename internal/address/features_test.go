package address_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/address"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/gazetteer"
)

// formattingContext holds the gazetteer built by a scenario's Given steps
type formattingContext struct {
	data   gazetteer.Data
	result string
}

func newFormattingContext() *formattingContext {
	return &formattingContext{
		data: gazetteer.Data{
			Streets:  make(map[string][]string),
			Suffixes: make(map[string]string),
			Suburbs:  make(map[string]string),
			Hundreds: make(map[string][]string),
		},
	}
}

func (c *formattingContext) theStreetRunsThrough(street, suburbs string) error {
	c.data.Streets[street] = strings.Split(suburbs, ";")
	return nil
}

func (c *formattingContext) theRoadTypeExpandsTo(abbreviation, expansion string) error {
	c.data.Suffixes[abbreviation] = expansion
	return nil
}

func (c *formattingContext) theSuburbIsWritten(suburb, canonical string) error {
	c.data.Suburbs[suburb] = canonical
	return nil
}

func (c *formattingContext) theHundredCovers(hundred, suburbs string) error {
	c.data.Hundreds[hundred] = strings.Split(suburbs, ";")
	return nil
}

func (c *formattingContext) iFormatTheAddress(addr string) error {
	f := address.NewFormatter(gazetteer.New(c.data), address.DefaultOptions())
	c.result = f.Format(addr)
	return nil
}

func (c *formattingContext) theFormattedAddressIs(expected string) error {
	if c.result != expected {
		return fmt.Errorf("expected %q, got %q", expected, c.result)
	}
	return nil
}

// InitializeScenario registers the address formatting steps
func InitializeScenario(sc *godog.ScenarioContext) {
	c := newFormattingContext()

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		*c = *newFormattingContext()
		return ctx, nil
	})

	sc.Step(`^the street "([^"]*)" runs through "([^"]*)"$`, c.theStreetRunsThrough)
	sc.Step(`^the road type "([^"]*)" expands to "([^"]*)"$`, c.theRoadTypeExpandsTo)
	sc.Step(`^the suburb "([^"]*)" is written "([^"]*)"$`, c.theSuburbIsWritten)
	sc.Step(`^the hundred "([^"]*)" covers "([^"]*)"$`, c.theHundredCovers)
	sc.Step(`^I format the address "([^"]*)"$`, c.iFormatTheAddress)
	sc.Step(`^the formatted address is "([^"]*)"$`, c.theFormattedAddressIs)
}

// TestFeatures runs the Godog address formatting suite
func TestFeatures(t *testing.T) {
	format := os.Getenv("GODOG_FORMAT")
	if format == "" {
		format = "pretty"
	}

	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   format,
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
