package source

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/rotisserie/eris"

	"github.com/citypulse/harvester/internal/enrich"
	"github.com/citypulse/harvester/internal/model"
)

// DiscoverDetailURLs pulls event detail-page links out of a listing page
// using the profile's discovery detail_url selector. URLs are absolutized
// against the listing URL and deduped in document order.
func DiscoverDetailURLs(html, listingURL string, cfg model.DiscoveryConfig) ([]string, error) {
	if cfg.Selectors.DetailURL == "" {
		return nil, eris.New("source: discovery has no detail_url selector")
	}
	sel, err := cascadia.Compile(cfg.Selectors.DetailURL)
	if err != nil {
		return nil, eris.Wrap(err, "source: compile discovery selector")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "source: parse listing")
	}

	seen := make(map[string]bool)
	var urls []string
	doc.FindMatcher(sel).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			href, ok = s.Find("a[href]").First().Attr("href")
		}
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		abs := enrich.AbsoluteURL(strings.TrimSpace(href), listingURL)
		if seen[abs] {
			return
		}
		seen[abs] = true
		urls = append(urls, abs)
	})
	return urls, nil
}
