package news

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"llm-crypto-agent/internal/logger"
	"llm-crypto-agent/internal/store"
)

// fetchFunc fetches headlines for one asset. Swapped out in tests.
type fetchFunc func(ctx context.Context, asset string, maxHeadlines int) []Headline

// Service produces the per-cycle news digest with a TTL cache so repeated
// cycles do not hammer the news sites.
type Service struct {
	fetch        fetchFunc
	maxHeadlines int
	perAsset     int
	ttl          time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	headlines []Headline
	fetchedAt time.Time
}

func NewService(cfg *store.Config) *Service {
	scraper := NewScraper(time.Duration(cfg.News.TimeoutSeconds) * time.Second)
	return &Service{
		fetch:        scraper.Scrape,
		maxHeadlines: cfg.News.MaxHeadlines,
		perAsset:     3,
		ttl:          time.Duration(cfg.News.CacheMinutes) * time.Minute,
		cache:        make(map[string]cacheEntry),
	}
}

// Digest returns a compact headline summary for the given assets, one line
// per asset with recent coverage. Empty when nothing could be fetched.
func (s *Service) Digest(ctx context.Context, assets []string) string {
	var lines []string
	total := 0

	for _, asset := range assets {
		if total >= s.maxHeadlines {
			break
		}
		asset = strings.ToUpper(asset)

		headlines := s.cached(asset)
		if headlines == nil {
			headlines = s.fetch(ctx, asset, s.perAsset)
			s.store(asset, headlines)
		}
		if len(headlines) == 0 {
			continue
		}

		titles := make([]string, 0, len(headlines))
		for _, h := range headlines {
			titles = append(titles, h.Title)
			total++
			if total >= s.maxHeadlines {
				break
			}
		}
		lines = append(lines, fmt.Sprintf("%s: %s", asset, strings.Join(titles, " | ")))
	}

	if len(lines) == 0 {
		return ""
	}
	logger.Debug(ctx, "News digest built", "assets", len(assets), "lines", len(lines))
	return strings.Join(lines, "\n")
}

// cached returns the fresh cache entry for an asset, or nil. A cached empty
// result is returned as an empty non-nil slice so misses are not re-fetched
// every cycle.
func (s *Service) cached(asset string) []Headline {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.cache[asset]
	if !ok || time.Since(entry.fetchedAt) > s.ttl {
		return nil
	}
	if entry.headlines == nil {
		return []Headline{}
	}
	return entry.headlines
}

func (s *Service) store(asset string, headlines []Headline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[asset] = cacheEntry{headlines: headlines, fetchedAt: time.Now()}
}
