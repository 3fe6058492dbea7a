package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/citypulse/harvester/internal/model"
)

// Meta tags are matched in both attribute orders; plenty of CMS themes emit
// content before property.
var (
	metaContentRe    = regexp.MustCompile(`(?i)<meta\s[^>]*?(?:property|name)\s*=\s*["']([^"']+)["'][^>]*?content\s*=\s*["']([^"']*?)["']`)
	metaContentRevRe = regexp.MustCompile(`(?i)<meta\s[^>]*?content\s*=\s*["']([^"']*?)["'][^>]*?(?:property|name)\s*=\s*["']([^"']+)["']`)
)

// OpenGraphExtractor reads og:* meta tags. Medium-low trust: OG data is
// share-card copy, typically title/description/image only and often
// truncated by the CMS.
type OpenGraphExtractor struct{}

func (OpenGraphExtractor) Name() string { return NameOpenGraph }

func (OpenGraphExtractor) Extract(_ context.Context, in Input) (Partial, error) {
	out := NewPartial()
	meta := collectMeta(in.HTML)

	if v := meta["og:title"]; v != "" {
		out.Set(model.FieldTitle, v)
	}
	if v := meta["og:description"]; v != "" {
		out.Set(model.FieldDescription, v)
	} else if v := meta["description"]; v != "" {
		out.Set(model.FieldDescription, v)
	}

	image := meta["og:image"]
	if image == "" {
		image = meta["og:image:url"]
	}
	if image == "" {
		image = meta["twitter:image"]
	}
	if image != "" {
		out.Set(model.FieldImageURL, image)
		cand := ImageCandidate{URL: image}
		if w, err := strconv.Atoi(meta["og:image:width"]); err == nil {
			cand.Width = w
		}
		if h, err := strconv.Atoi(meta["og:image:height"]); err == nil {
			cand.Height = h
		}
		cand.Type = meta["og:image:type"]
		out.Images = append(out.Images, cand)
	}

	return out, nil
}

// collectMeta indexes every meta property/name -> content pair, first
// occurrence wins.
func collectMeta(html string) map[string]string {
	meta := make(map[string]string)
	for _, m := range metaContentRe.FindAllStringSubmatch(html, -1) {
		key := strings.ToLower(m[1])
		if _, seen := meta[key]; !seen {
			meta[key] = strings.TrimSpace(m[2])
		}
	}
	for _, m := range metaContentRevRe.FindAllStringSubmatch(html, -1) {
		key := strings.ToLower(m[2])
		if _, seen := meta[key]; !seen {
			meta[key] = strings.TrimSpace(m[1])
		}
	}
	return meta
}
