package cmd

import (
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/address"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/applications"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/gazetteer"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/pdf/content"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/pdf/stability"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/scraper"
)

func (a *app) loadGazetteer() (*gazetteer.Gazetteer, error) {
	if a.config.GazetteerDir == "" {
		a.logger.Warn("using the embedded sample gazetteer, set --gazetteer-dir to the council's street and suburb lists for full coverage")
		return gazetteer.LoadDefault()
	}
	return gazetteer.Load(a.config.GazetteerDir)
}

// newParser wires the gazetteer, mapper, validator and stability manager
// from the configuration. A nil metrics leaves the collectors unregistered.
func (a *app) newParser(metrics *scraper.Metrics) (*scraper.Parser, *content.Validator, error) {
	g, err := a.loadGazetteer()
	if err != nil {
		return nil, nil, err
	}
	a.logger.Debug("loaded gazetteer", "tables", g.Stats())

	mapper, err := applications.NewMapper(g, applications.Options{
		Layout:     a.config.Layout,
		CommentURL: a.config.CommentURL,
		Address: address.Options{
			StreetThresholdBase: a.config.StreetThresholdBase,
			SuburbThreshold:     a.config.SuburbThreshold,
		},
	}, a.logger)
	if err != nil {
		return nil, nil, err
	}

	validator := content.NewValidator(a.config.MaxFileSize)
	sm := stability.NewManager(stability.Config{MemoryThresholdMB: a.config.MemoryThresholdMB}, a.logger)

	return scraper.NewParser(validator, mapper, sm, metrics, a.logger), validator, nil
}
