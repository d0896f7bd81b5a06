// Package search turns the run's filter configuration into search tasks and result-page URLs.
package search

import (
	"fmt"
	"math/rand"
	"net/url"
	"strconv"
	"strings"

	"github.com/jonathan/apply-agent/internal/types"
)

// BaseURL is the portal's job search endpoint
const BaseURL = "https://www.linkedin.com/jobs/search/"

// PageSize is the number of results the portal renders per page
const PageSize = 25

// quickApplyToken restricts results to postings with the in-portal wizard
const quickApplyToken = "f_LF=f_AL"

// dateTokens maps a recency option to its query token. "all time" means no constraint.
var dateTokens = map[string]string{
	"all time": "",
	"month":    "&f_TPR=r2592000",
	"week":     "&f_TPR=r604800",
	"24 hours": "&f_TPR=r86400",
	"12 hours": "&f_TPR=r43200",
	"hour":     "&f_TPR=r3600",
}

// Search is one (position, location) pair to crawl
type Search struct {
	Position string
	Location string
}

// BuildSearches returns every position × location pair exactly once, in an order
// shuffled by rng so that the crawl does not follow a fixed pattern.
func BuildSearches(filters *types.SearchFilterSet, rng *rand.Rand) []Search {
	searches := make([]Search, 0, len(filters.Positions)*len(filters.Locations))
	for _, position := range filters.Positions {
		for _, location := range filters.Locations {
			searches = append(searches, Search{Position: position, Location: location})
		}
	}

	if rng != nil {
		rng.Shuffle(len(searches), func(i, j int) {
			searches[i], searches[j] = searches[j], searches[i]
		})
	}
	return searches
}

// BuildFilterQuery encodes the enabled filters as a deterministic query fragment
// such as "?f_E=2,3&f_WT=3&f_LF=f_AL&f_TPR=r604800".
func BuildFilterQuery(filters *types.SearchFilterSet) string {
	var parts []string

	if codes := indexCodes(types.ExperienceLevels, filters.ExperienceLevel); len(codes) > 0 {
		parts = append(parts, "f_E="+strings.Join(codes, ","))
	}
	if codes := indexCodes(types.WorkTypes, filters.WorkTypes); len(codes) > 0 {
		parts = append(parts, "f_WT="+strings.Join(codes, ","))
	}
	if codes := initialCodes(types.JobTypes, filters.JobTypes); len(codes) > 0 {
		parts = append(parts, "f_JT="+strings.Join(codes, ","))
	}
	parts = append(parts, quickApplyToken)

	return "?" + strings.Join(parts, "&") + dateToken(filters.Date)
}

// SearchURL returns the results URL for a search task at the given zero-based page
func SearchURL(fragment string, s Search, page int) string {
	return fmt.Sprintf("%s%s&keywords=%s&location=%s&start=%d",
		BaseURL, fragment, url.QueryEscape(s.Position), url.QueryEscape(s.Location), page*PageSize)
}

// indexCodes returns the 1-based positions of enabled options in vocabulary order
func indexCodes(vocabulary []string, enabled map[string]bool) []string {
	var codes []string
	for i, option := range vocabulary {
		if enabled[option] {
			codes = append(codes, strconv.Itoa(i+1))
		}
	}
	return codes
}

// initialCodes returns the upper-cased first letter of enabled options in vocabulary order
func initialCodes(vocabulary []string, enabled map[string]bool) []string {
	var codes []string
	for _, option := range vocabulary {
		if enabled[option] {
			codes = append(codes, strings.ToUpper(option[:1]))
		}
	}
	return codes
}

// dateToken returns the token of the first enabled recency option
func dateToken(enabled map[string]bool) string {
	for _, option := range types.DateRecencies {
		if enabled[option] {
			return dateTokens[option]
		}
	}
	return ""
}
