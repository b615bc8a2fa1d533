package datasource

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/adalbertobrant/fundamentalistapro/pkg/models"
	"github.com/adalbertobrant/fundamentalistapro/pkg/utils"
)

const googleNewsRSSURL = "https://news.google.com/rss/search"

// News fetches Brazilian-market headlines from the Google News RSS search
// feed, localized to pt-BR.
type News struct {
	cache   *Cache
	limiter *RateLimiter
	parser  *gofeed.Parser
}

// NewNews creates the news source.
func NewNews() *News {
	return &News{
		cache:   NewCache(10 * time.Minute),
		limiter: NewRateLimiter(2, time.Second), // conservative: 2 req/s
		parser:  gofeed.NewParser(),
	}
}

// Name returns the source name.
func (n *News) Name() string { return "Google News" }

// GetStockNews returns recent headlines mentioning the ticker. The query
// pairs the B3 symbol with generic market terms so pure numeric matches
// (lottery draws, phone numbers) stay out.
func (n *News) GetStockNews(ctx context.Context, ticker string, limit int) ([]models.NewsArticle, error) {
	symbol := utils.NormalizeTicker(ticker)

	cacheKey := fmt.Sprintf("news:%s:%d", symbol, limit)
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cached.([]models.NewsArticle), nil
	}

	query := fmt.Sprintf("%s ações bolsa B3", symbol)
	articles, err := n.search(ctx, query)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}

	n.cache.Set(cacheKey, articles)
	return articles, nil
}

// GetMarketNews returns recent general Brazilian market headlines.
func (n *News) GetMarketNews(ctx context.Context, limit int) ([]models.NewsArticle, error) {
	cacheKey := fmt.Sprintf("news:market:%d", limit)
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cached.([]models.NewsArticle), nil
	}

	articles, err := n.search(ctx, "Ibovespa mercado de ações")
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}

	n.cache.Set(cacheKey, articles)
	return articles, nil
}

// search runs one Google News RSS query localized to Brazil.
func (n *News) search(ctx context.Context, query string) ([]models.NewsArticle, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"q":    {query},
		"hl":   {"pt-BR"},
		"gl":   {"BR"},
		"ceid": {"BR:pt-419"},
	}
	feed, err := n.parser.ParseURLWithContext(googleNewsRSSURL+"?"+params.Encode(), ctx)
	if err != nil {
		return nil, fmt.Errorf("google news %q: %w", query, err)
	}

	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := models.NewsArticle{
			Title:   item.Title,
			URL:     item.Link,
			Source:  feedSource(item),
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
	}

	return articles, nil
}

// feedSource extracts the publisher name Google News embeds per item.
func feedSource(item *gofeed.Item) string {
	if ext, ok := item.Extensions["source"]; ok {
		if srcs, ok := ext["source"]; ok && len(srcs) > 0 && srcs[0].Value != "" {
			return srcs[0].Value
		}
	}
	// Google News appends " - Publisher" to titles.
	if idx := strings.LastIndex(item.Title, " - "); idx > 0 {
		return strings.TrimSpace(item.Title[idx+3:])
	}
	return "Google News"
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
