// Package news scrapes crypto headlines and condenses them into a short
// digest for the oracle prompt. Strictly advisory: any failure here degrades
// to an empty digest, never to a failed cycle.
package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"llm-crypto-agent/internal/logger"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Headline is one scraped article reference.
type Headline struct {
	Title  string
	URL    string
	Source string
	Asset  string
}

// Source is one crypto news site and the selectors to pull headlines out of
// its search page.
type Source struct {
	Name       string
	BaseURL    string
	SearchPath string // "{asset}" is replaced with the lowercased symbol
	Container  string
	Title      string
	Link       string
	RateLimit  time.Duration
}

// Scraper pulls headlines for asset symbols from the configured sources.
type Scraper struct {
	sources []Source
	timeout time.Duration
}

func NewScraper(timeout time.Duration) *Scraper {
	return &Scraper{sources: defaultSources(), timeout: timeout}
}

func defaultSources() []Source {
	return []Source{
		{
			Name:       "CoinDesk",
			BaseURL:    "https://www.coindesk.com",
			SearchPath: "/tag/{asset}/",
			Container:  "div.article-card, article",
			Title:      "h2, h3, h4",
			Link:       "a",
			RateLimit:  2 * time.Second,
		},
		{
			Name:       "Cointelegraph",
			BaseURL:    "https://cointelegraph.com",
			SearchPath: "/tags/{asset}",
			Container:  "article, li.posts-listing__item",
			Title:      "span.post-card-inline__title, h2",
			Link:       "a",
			RateLimit:  2 * time.Second,
		},
	}
}

// Scrape fetches up to maxHeadlines headlines for one asset symbol,
// best-effort across all sources.
func (s *Scraper) Scrape(ctx context.Context, asset string, maxHeadlines int) []Headline {
	var all []Headline
	perSource := maxHeadlines / len(s.sources)
	if perSource < 1 {
		perSource = 1
	}

	for _, src := range s.sources {
		headlines, err := s.scrapeSource(ctx, src, asset, perSource)
		if err != nil {
			logger.Warn(ctx, "Headline scrape failed", "source", src.Name, "asset", asset, "error", err)
			continue
		}
		all = append(all, headlines...)
		if len(all) >= maxHeadlines {
			all = all[:maxHeadlines]
			break
		}
		time.Sleep(src.RateLimit)
	}
	return all
}

func (s *Scraper) scrapeSource(ctx context.Context, src Source, asset string, maxHeadlines int) ([]Headline, error) {
	var headlines []Headline

	c := colly.NewCollector(
		colly.AllowedDomains(hostOf(src.BaseURL)),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", userAgent)
	})

	c.OnHTML(src.Container, func(e *colly.HTMLElement) {
		if len(headlines) >= maxHeadlines {
			return
		}

		title := strings.TrimSpace(e.ChildText(src.Title))
		if title == "" {
			return
		}

		link := firstHref(e.DOM, src.Link)
		if link == "" {
			return
		}
		if !strings.HasPrefix(link, "http") {
			link = src.BaseURL + link
		}

		headlines = append(headlines, Headline{
			Title:  title,
			URL:    link,
			Source: src.Name,
			Asset:  strings.ToUpper(asset),
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.Warn(ctx, "Headline request error", "source", src.Name, "url", r.Request.URL.String(), "error", err)
	})

	searchURL := src.BaseURL + strings.ReplaceAll(src.SearchPath, "{asset}", strings.ToLower(asset))
	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("visit %s: %w", searchURL, err)
	}
	c.Wait()

	return headlines, nil
}

// firstHref returns the href of the first matching anchor.
func firstHref(sel *goquery.Selection, linkSelector string) string {
	href, _ := sel.Find(linkSelector).First().Attr("href")
	return strings.TrimSpace(href)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
