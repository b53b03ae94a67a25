package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// MaxBatchSize is the maximum number of IDs per search call (upstream limit
// is 50).
const MaxBatchSize = 50

// SearchByIDs resolves cosmetic IDs to catalog metadata using the batched
// id-search endpoint. Requests are split into chunks of MaxBatchSize and the
// results concatenated in input order. IDs the catalog no longer knows are
// simply absent from the result; that is upstream data drift, not an error.
func (c *Client) SearchByIDs(ctx context.Context, ids []string) ([]Cosmetic, error) {
	if len(ids) == 0 {
		return []Cosmetic{}, nil
	}

	var all []Cosmetic

	for i := 0; i < len(ids); i += MaxBatchSize {
		end := i + MaxBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[i:end]

		cosmetics, err := c.searchBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch batch %d-%d: %w", i, end, err)
		}
		all = append(all, cosmetics...)
	}

	return all, nil
}

// searchBatch fetches a single chunk of cosmetic IDs.
func (c *Client) searchBatch(ctx context.Context, ids []string) ([]Cosmetic, error) {
	params := url.Values{}
	params.Set("language", "en")
	for _, id := range ids {
		params.Add("id", id)
	}

	endpoint := fmt.Sprintf("%s/v2/cosmetics/br/search/ids?%s", c.baseURL, params.Encode())

	var resp cosmeticsResponse
	if err := c.doRequest(ctx, endpoint, &resp); err != nil {
		if IsNotFound(err) {
			// none of the chunk's IDs resolved; treat like an empty result
			return nil, nil
		}
		return nil, err
	}

	return resp.Data, nil
}

// Banners fetches the full banner catalog.
func (c *Client) Banners(ctx context.Context) ([]Banner, error) {
	endpoint := c.baseURL + "/v1/banners"

	var resp bannersResponse
	if err := c.doRequest(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to get banners: %w", err)
	}

	return resp.Data, nil
}

// NormalizeID lowercases a cosmetic ID for table and index lookups. All
// matching against curated tables is case-insensitive.
func NormalizeID(id string) string {
	return strings.ToLower(id)
}
