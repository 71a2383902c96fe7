package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"rental-radar/internal/models"

	"github.com/meilisearch/meilisearch-go"
)

type FilterParams struct {
	Query       string
	MinPrice    *int
	MaxPrice    *int
	MinBedrooms *int
	MinScore    *int
	Cities      []string
	GardenOnly  bool
	SortBy      string
	Limit       int64
}

// FilterSearch performs search constrained to the given listing filters.
func (s *SearchClient) FilterSearch(params FilterParams) ([]models.Listing, error) {
	var filters []string

	if params.MinPrice != nil {
		filters = append(filters, fmt.Sprintf("price >= %d", *params.MinPrice))
	}
	if params.MaxPrice != nil {
		filters = append(filters, fmt.Sprintf("price <= %d", *params.MaxPrice))
	}
	if params.MinBedrooms != nil {
		filters = append(filters, fmt.Sprintf("bedrooms >= %d", *params.MinBedrooms))
	}
	if params.MinScore != nil {
		filters = append(filters, fmt.Sprintf("score >= %d", *params.MinScore))
	}

	if len(params.Cities) > 0 {
		cityFilters := make([]string, len(params.Cities))
		for i, city := range params.Cities {
			cityFilters[i] = fmt.Sprintf("city = '%s'", city)
		}
		filters = append(filters, fmt.Sprintf("(%s)", strings.Join(cityFilters, " OR ")))
	}

	if params.GardenOnly {
		filters = append(filters, "has_garden = true")
	}

	var filterStr string
	if len(filters) > 0 {
		filterStr = strings.Join(filters, " AND ")
	}

	var sort []string
	if params.SortBy != "" {
		sort = []string{params.SortBy}
	}

	if params.Limit == 0 {
		params.Limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit: params.Limit,
	}
	if filterStr != "" {
		searchReq.Filter = filterStr
	}
	if len(sort) > 0 {
		searchReq.Sort = sort
	}

	searchRes, err := s.client.Index(s.index).Search(params.Query, searchReq)
	if err != nil {
		return nil, err
	}

	var listings []models.Listing
	for _, hit := range searchRes.Hits {
		hitJSON, err := json.Marshal(hit)
		if err != nil {
			continue
		}

		var listing models.Listing
		if err := json.Unmarshal(hitJSON, &listing); err != nil {
			continue
		}

		listings = append(listings, listing)
	}

	return listings, nil
}
