package main

import (
	"context"
	"os"
	"strings"

	salesforce "github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"

	"github.com/sells-group/cre-analytics/internal/fetcher"
	"github.com/sells-group/cre-analytics/internal/market"
	"github.com/sells-group/cre-analytics/internal/ocr"
	"github.com/sells-group/cre-analytics/internal/scorer"
	"github.com/sells-group/cre-analytics/internal/store"
	"github.com/sells-group/cre-analytics/pkg/geocode"
	sfpkg "github.com/sells-group/cre-analytics/pkg/salesforce"
)

// initStore opens the configured persistence backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "cre-analytics.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.MaxConns)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initScorer builds the credit scorer from the default tables, merged with
// the optional YAML override file.
func initScorer() (*scorer.Scorer, error) {
	scfg := scorer.DefaultConfig()
	if path := cfg.Scoring.ConfigPath; path != "" {
		var err error
		scfg, err = scorer.LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
	}
	return scorer.New(scfg)
}

// initMarketProvider picks the market data source: the configured feed when
// one is set, placeholder benchmarks otherwise.
func initMarketProvider() market.Provider {
	if cfg.Market.FeedURL == "" {
		return market.NewStaticProvider()
	}
	return market.NewFeedProvider(feedFetcher(cfg.Market.FeedURL), cfg.Market.FeedURL)
}

// feedFetcher returns the fetcher matching the feed URL's scheme.
func feedFetcher(rawURL string) fetcher.Fetcher {
	if strings.HasPrefix(rawURL, "ftp://") {
		return fetcher.NewFTPFetcher(fetcher.FTPOptions{
			User:     cfg.Market.FTP.User,
			Password: cfg.Market.FTP.Password,
		})
	}
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		RateLimiters: fetcher.DefaultRateLimiters(),
	})
}

// initExtractor builds the OCR extractor used for PDF rent rolls.
func initExtractor() (ocr.Extractor, error) {
	return ocr.NewExtractor(cfg.OCR)
}

// initGeocoder builds the census-backed geocoder, with the Google
// fallback when a key is configured.
func initGeocoder() geocode.Client {
	var opts []geocode.Option
	if cfg.Geo.GoogleKey != "" {
		opts = append(opts, geocode.WithGoogleAPIKey(cfg.Geo.GoogleKey))
	}
	return geocode.NewClient(opts...)
}

// initSalesforce authenticates against Salesforce with the configured JWT
// credentials and wraps the session in the rate-limited query client.
func initSalesforce(rps float64) (sfpkg.Client, error) {
	if cfg.Salesforce.ClientID == "" {
		return nil, eris.New("salesforce client ID is required (CRE_SALESFORCE_CLIENT_ID)")
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf, sfpkg.WithRateLimit(rps)), nil
}
