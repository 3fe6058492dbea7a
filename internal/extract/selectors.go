package extract

import (
	"context"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"go.uber.org/zap"

	"github.com/citypulse/harvester/internal/model"
)

// SelectorExtractor runs per-source CSS selectors against the parsed
// document. Selectors are compiled at construction; an invalid selector is
// dropped with a warning rather than failing mid-crawl (profile validation
// rejects it earlier in normal operation).
type SelectorExtractor struct {
	compiled map[model.FieldKey]cascadia.Selector
}

// NewSelectorExtractor compiles the configured selectors.
func NewSelectorExtractor(set model.SelectorSet) *SelectorExtractor {
	compiled := make(map[model.FieldKey]cascadia.Selector)
	for _, p := range set.ByField() {
		sel, err := cascadia.Compile(p.Selector)
		if err != nil {
			zap.L().Warn("selectors: invalid selector dropped",
				zap.String("field", string(p.Field)),
				zap.String("selector", p.Selector),
				zap.Error(err),
			)
			continue
		}
		compiled[p.Field] = sel
	}
	return &SelectorExtractor{compiled: compiled}
}

func (*SelectorExtractor) Name() string { return NameSelectors }

func (e *SelectorExtractor) Extract(_ context.Context, in Input) (Partial, error) {
	out := NewPartial()
	if len(e.compiled) == 0 {
		return out, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(in.HTML))
	if err != nil {
		// Unparseable HTML is a fail-soft condition, same as no match.
		zap.L().Debug("selectors: parse failed", zap.String("url", in.PageURL), zap.Error(err))
		return out, nil
	}

	for field, sel := range e.compiled {
		matches := doc.FindMatcher(sel)
		if matches.Length() == 0 {
			continue
		}
		switch field {
		case model.FieldArtists:
			e.extractArtists(matches, out)
		case model.FieldImageURL:
			e.extractImages(matches, out)
		case model.FieldTicketURL:
			e.extractTicketLinks(matches, out)
		case model.FieldDetailURL:
			if href := linkURL(matches.First()); href != "" {
				out.Set(model.FieldDetailURL, href)
			}
		default:
			out.Set(field, strings.TrimSpace(matches.First().Text()))
		}
	}
	return out, nil
}

// extractArtists splits every matched element's text through the lineup
// heuristic and dedups the union, preserving first-seen order.
func (e *SelectorExtractor) extractArtists(matches *goquery.Selection, out Partial) {
	var names []string
	matches.Each(func(_ int, s *goquery.Selection) {
		names = append(names, SplitLineup(s.Text())...)
	})
	if deduped := DedupArtists(names); len(deduped) > 0 {
		out.Fields[model.FieldArtists] = deduped
	}
}

// extractImages takes the first match as the scalar image_url and surfaces
// every match as a collection candidate.
func (e *SelectorExtractor) extractImages(matches *goquery.Selection, out Partial) {
	matches.Each(func(_ int, s *goquery.Selection) {
		src := imageURL(s)
		if src == "" {
			return
		}
		if _, ok := out.Fields[model.FieldImageURL]; !ok {
			out.Set(model.FieldImageURL, src)
		}
		cand := ImageCandidate{URL: src}
		if w, err := strconv.Atoi(s.AttrOr("width", "")); err == nil {
			cand.Width = w
		}
		if h, err := strconv.Atoi(s.AttrOr("height", "")); err == nil {
			cand.Height = h
		}
		out.Images = append(out.Images, cand)
	})
}

// extractTicketLinks takes the first match as the scalar ticket_url and
// surfaces every match as a link candidate.
func (e *SelectorExtractor) extractTicketLinks(matches *goquery.Selection, out Partial) {
	matches.Each(func(_ int, s *goquery.Selection) {
		href := linkURL(s)
		if href == "" {
			return
		}
		if _, ok := out.Fields[model.FieldTicketURL]; !ok {
			out.Set(model.FieldTicketURL, href)
		}
		out.Links = append(out.Links, LinkCandidate{Type: "tickets", URL: href})
	})
}

// imageURL resolves the image source attribute, tolerating lazy-load
// variants.
func imageURL(s *goquery.Selection) string {
	for _, attr := range []string{"src", "data-src", "data-lazy-src", "content"} {
		if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// linkURL resolves the link target: href on the element itself, or on the
// first nested anchor.
func linkURL(s *goquery.Selection) string {
	if v, ok := s.Attr("href"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if v, ok := s.Find("a[href]").First().Attr("href"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
