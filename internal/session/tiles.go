package session

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/apply-agent/internal/types"
)

// Search-results tile selectors
const (
	selTile        = "li[data-occludable-job-id]"
	selTileTitle   = ".job-card-list__title--link"
	selTileCompany = ".artdeco-entity-lockup__subtitle"
	selTileMeta    = ".job-card-container__metadata-wrapper"
	selTileFooter  = "li.job-card-container__footer-item.inline-flex"
)

// ParseTiles extracts the jobs listed on a search-results page. Links are made
// absolute against baseURL and stripped of their query. Missing tile fields stay empty.
func ParseTiles(html, baseURL string) ([]types.Job, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, &ParseError{Message: "failed to parse base URL", Cause: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ParseError{Message: "failed to parse HTML", Cause: err}
	}

	var jobs []types.Job
	doc.Find(selTile).Each(func(_ int, tile *goquery.Selection) {
		title := tile.Find(selTileTitle).First()

		job := types.Job{
			Title:       strings.TrimSpace(title.AttrOr("aria-label", "")),
			Company:     text(tile.Find(selTileCompany)),
			Location:    text(tile.Find(selTileMeta)),
			ApplyMethod: text(tile.Find(selTileFooter)),
		}
		if job.Title == "" {
			job.Title = text(title)
		}
		if href, ok := title.Attr("href"); ok {
			job.Link = jobLink(base, href)
		}

		jobs = append(jobs, job)
	})

	return jobs, nil
}

func text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.First().Text()), " ")
}

func jobLink(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	link := base.ResolveReference(ref)
	link.RawQuery = ""
	link.Fragment = ""
	return link.String()
}
