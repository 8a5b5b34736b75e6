package api

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/clerk/pkg/records"
	"github.com/papercomputeco/clerk/pkg/retrieval"
)

// SearchResponse is the body of GET /v1/search.
type SearchResponse struct {
	Query   string              `json:"query"`
	Filters retrieval.FilterBag `json:"filters"`
	Results []records.Result    `json:"results"`
	Count   int                 `json:"count"`
}

// handleSearch handles GET /v1/search requests.
// Query parameters:
//   - query (required): the search query text
//   - employee_name, status, invoice_id, amount, date (optional): filters
//   - limit (optional): number of results to return
func (s *Server) handleSearch(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		return errorJSON(c, fiber.StatusBadRequest, "query parameter is required")
	}

	limit := s.config.SearchLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			return errorJSON(c, fiber.StatusBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}

	bag := retrieval.FilterBag{}
	for _, key := range retrieval.FilterKeys {
		if v := strings.TrimSpace(c.Query(key)); v != "" {
			bag[key] = v
		}
	}

	results := s.config.Retriever.Search(c.Context(), query, bag, limit)

	return c.JSON(SearchResponse{
		Query:   query,
		Filters: bag,
		Results: results,
		Count:   len(results),
	})
}
