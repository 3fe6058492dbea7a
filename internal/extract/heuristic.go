package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/citypulse/harvester/internal/model"
)

// HeuristicExtractor runs free-text pattern matching over the page body.
// Lowest-but-one trust; it exists so sparse pages without any markup still
// yield a date, a time, or a price.
type HeuristicExtractor struct{}

func (HeuristicExtractor) Name() string { return NameHeuristic }

var (
	heurDateRe = regexp.MustCompile(`(?i)\b(?:(?:mon|tue|wed|thu|fri|sat|sun)[a-z]*,?\s+)?(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?`)
	heurTimeRe = regexp.MustCompile(`(?i)\b\d{1,2}(?::\d{2})?\s*(?:am|pm)\b`)
	heurDoorRe = regexp.MustCompile(`(?i)doors?\s*(?:at|@|:)?\s*(\d{1,2}(?::\d{2})?\s*(?:am|pm))`)
	heurFreeRe = regexp.MustCompile(`(?i)\b(?:free\s+(?:admission|entry|show|event)|admission\s+free|no\s+cover)\b`)
	priceRe    = regexp.MustCompile(`\$\s*(\d+(?:\.\d{2})?)`)
	ticketHref = regexp.MustCompile(`(?i)href\s*=\s*["']([^"']*(?:ticket|eventbrite|ticketmaster|seetickets|dice\.fm|etix)[^"']*)["']`)
)

func (HeuristicExtractor) Extract(_ context.Context, in Input) (Partial, error) {
	out := NewPartial()
	text := stripTags(in.HTML)

	if m := heurDateRe.FindString(text); m != "" {
		out.Set(model.FieldDate, strings.TrimSpace(m))
	}
	if m := heurDoorRe.FindStringSubmatch(text); len(m) > 1 {
		out.Set(model.FieldTime, strings.TrimSpace(m[1]))
	} else if m := heurTimeRe.FindString(text); m != "" {
		out.Set(model.FieldTime, strings.TrimSpace(m))
	}

	if heurFreeRe.MatchString(text) {
		out.Set(model.FieldIsFree, true)
	} else if prices := priceRe.FindAllStringSubmatch(text, -1); len(prices) > 0 {
		min := 0.0
		for i, p := range prices {
			v, err := strconv.ParseFloat(p[1], 64)
			if err != nil {
				continue
			}
			if i == 0 || v < min {
				min = v
			}
		}
		if min > 0 {
			out.Set(model.FieldPriceMin, min)
		}
	}

	// Ticket links come from the raw HTML, not the stripped text.
	for i, m := range ticketHref.FindAllStringSubmatch(in.HTML, -1) {
		href := strings.TrimSpace(m[1])
		if href == "" {
			continue
		}
		if i == 0 {
			out.Set(model.FieldTicketURL, href)
		}
		out.Links = append(out.Links, LinkCandidate{Type: "tickets", URL: href})
	}

	return out, nil
}

var (
	stripBlockRe = regexp.MustCompile(`(?is)<(script|style|nav|footer)[^>]*>.*?</(?:script|style|nav|footer)>`)
	stripTagRe   = regexp.MustCompile(`<[^>]+>`)
	collapseRe   = regexp.MustCompile(`\s+`)
)

// stripTags removes script/style/nav/footer blocks, strips the remaining
// tags, decodes common entities, and collapses whitespace.
func stripTags(html string) string {
	html = stripBlockRe.ReplaceAllString(html, "")
	html = stripTagRe.ReplaceAllString(html, " ")
	html = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	).Replace(html)
	return strings.TrimSpace(collapseRe.ReplaceAllString(html, " "))
}
