package market

import (
	"context"
	"io"
	"net/url"
	"path"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/cre-analytics/internal/fetcher"
	"github.com/sells-group/cre-analytics/internal/model"
)

// FeedProvider serves market data from a remote feed, re-downloading only
// when the feed's ETag changes. The feed format is chosen by the URL path
// extension; anything that isn't .xml or .json is treated as CSV.
type FeedProvider struct {
	fetcher fetcher.Fetcher
	feedURL string

	mu     sync.Mutex
	etag   string
	cached *Feed
}

// NewFeedProvider returns a provider that reads the feed at feedURL.
func NewFeedProvider(f fetcher.Fetcher, feedURL string) *FeedProvider {
	return &FeedProvider{fetcher: f, feedURL: feedURL}
}

// MarketData returns the feed's scoring inputs, refreshing first.
func (p *FeedProvider) MarketData(ctx context.Context) (model.MarketData, error) {
	feed, err := p.refresh(ctx)
	if err != nil {
		return model.MarketData{}, err
	}
	return feed.Data, nil
}

// Benchmarks returns the feed's benchmark figures, refreshing first.
func (p *FeedProvider) Benchmarks(ctx context.Context, submarket string) (model.MarketMetrics, error) {
	feed, err := p.refresh(ctx)
	if err != nil {
		return model.MarketMetrics{}, err
	}
	metrics := feed.Benchmarks
	metrics.Submarket = submarket
	return metrics, nil
}

func (p *FeedProvider) refresh(ctx context.Context) (*Feed, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	body, etag, changed, err := p.fetcher.DownloadIfChanged(ctx, p.feedURL, p.etag)
	if err != nil {
		return nil, eris.Wrap(err, "market: download feed")
	}
	if !changed {
		if p.cached == nil {
			return nil, eris.Errorf("market: feed %s returned not-modified before any download", p.feedURL)
		}
		return p.cached, nil
	}
	defer body.Close() //nolint:errcheck

	feed, err := p.parse(ctx, body)
	if err != nil {
		return nil, err
	}

	p.cached = feed
	p.etag = etag
	zap.L().Info("market: feed refreshed",
		zap.String("url", p.feedURL),
		zap.String("etag", etag),
		zap.Int("industries", len(feed.Data.IndustryGrowth)),
	)

	return feed, nil
}

func (p *FeedProvider) parse(ctx context.Context, body io.Reader) (*Feed, error) {
	switch feedExtension(p.feedURL) {
	case ".xml":
		return ParseXML(ctx, body)
	case ".json":
		return ParseJSON(body)
	default:
		return ParseCSV(ctx, body)
	}
}

func feedExtension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return path.Ext(u.Path)
}
