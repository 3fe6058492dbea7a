package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/citypulse/harvester/internal/dateutil"
	"github.com/citypulse/harvester/internal/dedupe"
	"github.com/citypulse/harvester/internal/enrich"
	"github.com/citypulse/harvester/internal/fetch"
	"github.com/citypulse/harvester/internal/model"
	"github.com/citypulse/harvester/internal/source"
	"github.com/citypulse/harvester/internal/store"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [source...]",
	Short: "Run detail enrichment for configured sources and persist events",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		reg, err := loadRegistry()
		if err != nil {
			return err
		}

		profiles := reg.Enabled()
		if len(args) > 0 {
			profiles = profiles[:0]
			for _, name := range args {
				p, ok := reg.Get(name)
				if !ok {
					return eris.Errorf("unknown source %q", name)
				}
				profiles = append(profiles, p)
			}
		}
		if len(profiles) == 0 {
			zap.L().Warn("no enabled sources to crawl")
			return nil
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		fetcher := newFetcher()
		enricher := newEnricher()

		limit := cfg.Crawl.MaxConcurrentSources
		if limit <= 0 {
			limit = 1
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)
		for _, profile := range profiles {
			g.Go(func() error {
				return crawlSource(gctx, st, fetcher, enricher, profile)
			})
		}
		return g.Wait()
	},
}

// crawlSource runs discovery then per-page enrichment for one source. Page
// failures are logged and skipped; only store errors abort the source.
func crawlSource(ctx context.Context, st store.Store, fetcher *fetch.Fetcher, enricher *enrich.Enricher, profile model.SourceProfile) error {
	log := zap.L().With(zap.String("source", profile.Name))

	listingURL := profile.Discovery.URL
	if listingURL == "" {
		listingURL = profile.BaseURL
	}
	if listingURL == "" {
		log.Warn("no discovery url, skipping source")
		return nil
	}

	listingHTML, err := fetcher.Fetch(ctx, listingURL, profile.Detail.Fetch)
	if err != nil {
		log.Warn("listing fetch failed", zap.Error(err))
		return nil
	}

	urls, err := source.DiscoverDetailURLs(listingHTML, listingURL, profile.Discovery)
	if err != nil {
		log.Warn("discovery failed", zap.Error(err))
		return nil
	}
	log.Info("discovered detail pages", zap.Int("count", len(urls)))

	inserted := 0
	for _, pageURL := range urls {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		ok, err := crawlPage(ctx, st, fetcher, enricher, profile, pageURL)
		if err != nil {
			return err
		}
		if ok {
			inserted++
		}
	}
	log.Info("source crawl complete", zap.Int("inserted", inserted), zap.Int("pages", len(urls)))
	return nil
}

// crawlPage enriches one detail page and persists the event if it is new.
// Returns whether a row was inserted.
func crawlPage(ctx context.Context, st store.Store, fetcher *fetch.Fetcher, enricher *enrich.Enricher, profile model.SourceProfile, pageURL string) (bool, error) {
	log := zap.L().With(zap.String("source", profile.Name), zap.String("url", pageURL))

	html, err := fetcher.Fetch(ctx, pageURL, profile.Detail.Fetch)
	if err != nil {
		log.Warn("page fetch failed", zap.Error(err))
		return false, nil
	}

	record, err := enricher.EnrichDetail(ctx, html, pageURL, profile.Name, profile.Detail)
	if err != nil {
		return false, eris.Wrap(err, "enrich page")
	}
	if record.Skip {
		log.Debug("no structured data, skipping page")
		return false, nil
	}

	title := record.String(model.FieldTitle)
	if title == "" {
		log.Debug("no title extracted, skipping page")
		return false, nil
	}

	venueName := record.String(model.FieldVenueName)
	hash := dedupe.ContentHash(title, record.String(model.FieldDate), venueName)

	existing, err := st.FindEventByHash(ctx, hash)
	if err != nil {
		return false, eris.Wrap(err, "dedupe lookup")
	}
	if existing != nil {
		log.Debug("event already stored", zap.String("event_id", existing.ID))
		return false, nil
	}

	ev := &model.Event{
		SourceName:  profile.Name,
		Title:       title,
		StartTime:   eventStartTime(record),
		ContentHash: hash,
		Record:      *record,
	}
	if venueName != "" {
		venue, err := st.GetOrCreateVenue(ctx, venueName, "")
		if err != nil {
			return false, eris.Wrap(err, "get or create venue")
		}
		ev.VenueID = venue.ID
	}

	if err := st.InsertEvent(ctx, ev); err != nil {
		return false, eris.Wrap(err, "insert event")
	}
	log.Info("event stored", zap.String("title", title))
	return true, nil
}

// eventStartTime resolves the record's start time: an ISO start_time field
// when present, else the human-written date field.
func eventStartTime(record *model.EventRecord) *time.Time {
	if iso := record.String(model.FieldStartTime); iso != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, iso); err == nil {
				return &t
			}
		}
	}
	if date := record.String(model.FieldDate); date != "" {
		if t, err := dateutil.ParseHumanDate(date, time.Now()); err == nil {
			return &t
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(crawlCmd)
}
