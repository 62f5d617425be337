package insights

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/cre-analytics/internal/model"
	"github.com/sells-group/cre-analytics/pkg/anthropic"
)

const (
	// batchThreshold is the minimum number of analyses before the Batch API
	// is used instead of concurrent direct calls.
	batchThreshold = 5

	// maxDirectConcurrency limits parallel direct API calls.
	maxDirectConcurrency = 4

	// maxRetries for individual direct calls.
	maxRetries = 3
)

// GenerateBatch produces reports for many analyses, keyed by property ID.
// Small sets run as concurrent direct calls; larger sets go through the
// Batch API behind a primer request that warms the shared system prompt
// cache. Analyses whose responses fail or cannot be parsed are logged and
// omitted from the result.
func (g *Generator) GenerateBatch(ctx context.Context, analyses []model.PropertyCreditAnalysis) (map[string]*Report, error) {
	if len(analyses) == 0 {
		return map[string]*Report{}, nil
	}
	if len(analyses) < batchThreshold {
		return g.generateDirect(ctx, analyses)
	}
	return g.generateBatchAPI(ctx, analyses)
}

// generateDirect runs analyses as concurrent direct API calls.
func (g *Generator) generateDirect(ctx context.Context, analyses []model.PropertyCreditAnalysis) (map[string]*Report, error) {
	log := zap.L().With(zap.String("mode", "direct"), zap.Int("analyses", len(analyses)))
	log.Debug("insights: generating reports")

	system := []anthropic.SystemBlock{{Text: systemPrompt}}

	var mu sync.Mutex
	reports := make(map[string]*Report, len(analyses))

	gr, gctx := errgroup.WithContext(ctx)
	gr.SetLimit(maxDirectConcurrency)

	for _, analysis := range analyses {
		gr.Go(func() error {
			payload, err := json.Marshal(analysis)
			if err != nil {
				return eris.Wrapf(err, "insights: marshal analysis %s", analysis.PropertyID)
			}

			var resp *anthropic.MessageResponse
			for attempt := 0; attempt < maxRetries; attempt++ {
				resp, err = g.client.CreateMessage(gctx, g.buildRequest(system, payload))
				if err == nil {
					break
				}
				if gctx.Err() != nil {
					return gctx.Err()
				}
				time.Sleep(time.Duration(1<<uint(attempt)) * 500 * time.Millisecond)
			}
			if err != nil {
				log.Warn("insights: direct call failed after retries",
					zap.String("property_id", analysis.PropertyID),
					zap.Error(err))
				return nil // don't fail the group
			}
			resp.Usage.LogCost(g.opts.Model, "insights")

			report, err := parseReport(extractText(resp))
			if err != nil {
				log.Warn("insights: unparseable report",
					zap.String("property_id", analysis.PropertyID),
					zap.Error(err))
				return nil
			}

			mu.Lock()
			reports[analysis.PropertyID] = report
			mu.Unlock()
			return nil
		})
	}

	if err := gr.Wait(); err != nil {
		return reports, eris.Wrap(err, "insights: direct batch")
	}
	return reports, nil
}

// generateBatchAPI runs analyses through the Anthropic Batch API.
func (g *Generator) generateBatchAPI(ctx context.Context, analyses []model.PropertyCreditAnalysis) (map[string]*Report, error) {
	log := zap.L().With(zap.String("mode", "batch"), zap.Int("analyses", len(analyses)))

	system := anthropic.BuildCachedSystemBlocks(systemPrompt)

	items := make([]anthropic.BatchRequestItem, 0, len(analyses))
	for _, analysis := range analyses {
		payload, err := json.Marshal(analysis)
		if err != nil {
			return nil, eris.Wrapf(err, "insights: marshal analysis %s", analysis.PropertyID)
		}
		items = append(items, anthropic.BatchRequestItem{
			CustomID: analysis.PropertyID,
			Params:   g.buildRequest(system, payload),
		})
	}

	g.warmCache(ctx, items)

	batchResp, err := g.client.CreateBatch(ctx, anthropic.BatchRequest{Requests: items})
	if err != nil {
		return nil, eris.Wrap(err, "insights: create batch")
	}
	log.Info("insights: batch submitted", zap.String("batch_id", batchResp.ID))

	batchResp, err = anthropic.PollBatch(ctx, g.client, batchResp.ID,
		anthropic.WithPollInterval(2*time.Second),
		anthropic.WithPollCap(15*time.Second),
		anthropic.WithPollTimeout(30*time.Minute),
	)
	if err != nil {
		return nil, eris.Wrap(err, "insights: poll batch")
	}
	log.Info("insights: batch completed",
		zap.Int64("succeeded", batchResp.RequestCounts.Succeeded),
		zap.Int64("errored", batchResp.RequestCounts.Errored))

	iter, err := g.client.GetBatchResults(ctx, batchResp.ID)
	if err != nil {
		return nil, eris.Wrap(err, "insights: get batch results")
	}
	defer iter.Close() //nolint:errcheck

	results, err := anthropic.CollectBatchResults(iter)
	if err != nil {
		return nil, eris.Wrap(err, "insights: collect batch results")
	}

	reports := make(map[string]*Report, len(results))
	for propertyID, resp := range results {
		resp.Usage.LogCost(g.opts.Model, "insights_batch")
		report, err := parseReport(extractText(resp))
		if err != nil {
			log.Warn("insights: unparseable report",
				zap.String("property_id", propertyID),
				zap.Error(err))
			continue
		}
		reports[propertyID] = report
	}
	return reports, nil
}

// warmCache fires the first item as a primer so the batch reads the warm
// prompt cache. Failures are non-fatal.
func (g *Generator) warmCache(ctx context.Context, items []anthropic.BatchRequestItem) {
	if len(items) == 0 {
		return
	}
	resp, err := anthropic.PrimerRequest(ctx, g.client, items[0].Params)
	if err != nil {
		zap.L().Debug("insights: primer request failed", zap.Error(err))
		return
	}
	resp.Usage.LogCost(g.opts.Model, "insights_primer")
}
