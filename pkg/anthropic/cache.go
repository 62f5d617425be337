package anthropic

import (
	"context"

	"github.com/rotisserie/eris"
)

// BuildCachedSystemBlocks wraps text in a single system block with a 1-hour
// cache breakpoint. Pair with PrimerRequest: one sequential request writes
// the cache, then batch items carrying the same blocks read it.
func BuildCachedSystemBlocks(text string) []SystemBlock {
	return []SystemBlock{
		{
			Text: text,
			CacheControl: &CacheControl{
				TTL: "1h",
			},
		},
	}
}

// PrimerRequest sends one message to warm the prompt cache. The request
// should carry system blocks from BuildCachedSystemBlocks; the response is
// usually discarded apart from its usage.
func PrimerRequest(ctx context.Context, client Client, req MessageRequest) (*MessageResponse, error) {
	resp, err := client.CreateMessage(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "anthropic: primer request")
	}
	return resp, nil
}
