package linkedin

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	searchPath    = "/search/blended"
	urnSeparator  = ":"
	peopleFilters = "List(resultType->PEOPLE)"
)

type searchResponse struct {
	Data struct {
		Elements []struct {
			Elements []SearchResult
		}
	}
}

// SearchResult is one person returned by the people search.
type SearchResult struct {
	TargetURN        string `mapstructure:"targetUrn"`
	PublicIdentifier string `mapstructure:"publicIdentifier"`
}

// URNID returns the id part of the result URN.
func (r SearchResult) URNID() string {
	return IDFromURN(r.TargetURN)
}

// SearchPeople searches people by keywords and returns their URN ids, following pagination.
func (c *Client) SearchPeople(ctx context.Context, keywords ...string) ([]string, error) {
	query := strings.TrimSpace(strings.Join(keywords, " "))
	if query == "" {
		return nil, fmt.Errorf("search keywords are required")
	}

	var ids []string
	for start := 0; ; start += searchPageSize {
		page, err := c.searchPage(ctx, query, start)
		if err != nil {
			return nil, err
		}

		c.logger.Debug("got people search page",
			zap.Int("start", start),
			zap.Int("results", len(page)),
		)

		for _, result := range page {
			if id := result.URNID(); id != "" {
				ids = append(ids, id)
			}
		}

		if c.SearchLimit > 0 && len(ids) >= c.SearchLimit {
			return ids[:c.SearchLimit], nil
		}

		if len(page) < searchPageSize {
			return ids, nil
		}
	}
}

func (c *Client) searchPage(ctx context.Context, query string, start int) ([]SearchResult, error) {
	// Restli list syntax must not be percent-encoded, so the query is built by hand.
	rawQuery := fmt.Sprintf("count=%d&filters=%s&origin=GLOBAL_SEARCH_HEADER&q=all&start=%d&keywords=%s",
		searchPageSize, peopleFilters, start, url.QueryEscape(query))

	var raw map[string]any
	if err := c.getJSON(ctx, searchPath, rawQuery, &raw); err != nil {
		return nil, fmt.Errorf("search people: %w", err)
	}

	var response searchResponse
	if err := mapstructure.Decode(raw, &response); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	var results []SearchResult
	for _, cluster := range response.Data.Elements {
		results = append(results, cluster.Elements...)
	}

	return results, nil
}

// IDFromURN returns the last segment of a URN such as urn:li:fs_miniProfile:ACoAAB.
func IDFromURN(urn string) string {
	urn = strings.TrimSpace(urn)
	if urn == "" {
		return ""
	}
	parts := strings.Split(urn, urnSeparator)
	return parts[len(parts)-1]
}
