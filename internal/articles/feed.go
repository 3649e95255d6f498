package articles

import (
	"context"
	"crypto/sha256"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"github.com/MrSnakeDoc/devmarks/internal/domain"
)

// FeedClient reads the RSS feed at {base}/feed. It only has a front page,
// so it serves as a fallback when the JSON API is unavailable.
type FeedClient struct {
	url    string
	parser *gofeed.Parser
}

// NewFeedClient creates an RSS fallback rooted at baseURL.
func NewFeedClient(baseURL string, timeout time.Duration) *FeedClient {
	p := gofeed.NewParser()
	p.Client = &http.Client{Timeout: timeout}
	return &FeedClient{url: baseURL + "/feed", parser: p}
}

// List returns up to perPage items for page 1 and nothing for later pages.
func (f *FeedClient) List(ctx context.Context, page, perPage int) ([]domain.Article, error) {
	if page > 1 {
		return []domain.Article{}, nil
	}

	feed, err := f.parser.ParseURLWithContext(f.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", f.url, err)
	}

	out := make([]domain.Article, 0, min(len(feed.Items), perPage))
	for _, item := range feed.Items {
		if len(out) == perPage {
			break
		}
		out = append(out, itemToArticle(item))
	}
	return out, nil
}

func itemToArticle(item *gofeed.Item) domain.Article {
	a := domain.Article{
		ID:          feedArticleID(item),
		Title:       item.Title,
		Description: truncate(plainText(item.Description), 300),
		URL:         item.Link,
		PublishedAt: item.PublishedParsed,
		Tags:        item.Categories,
	}
	if item.Image != nil {
		a.ImageURL = item.Image.URL
	}
	if item.Author != nil {
		a.Author = item.Author.Name
	} else if len(item.Authors) > 0 && item.Authors[0] != nil {
		a.Author = item.Authors[0].Name
	}
	return a
}

// feed items carry no numeric id; derive a stable one from the link.
func feedArticleID(item *gofeed.Item) string {
	key := item.Link
	if key == "" {
		key = item.GUID
	}
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("rss-%x", h[:8])
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

var textOnly = bluemonday.StrictPolicy()

// plainText drops markup and decodes entities so descriptions read as text.
func plainText(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(textOnly.Sanitize(s))), " ")
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
