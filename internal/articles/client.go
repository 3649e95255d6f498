// Package articles reads the public article feed and caches it.
package articles

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/MrSnakeDoc/devmarks/internal/domain"
	"github.com/MrSnakeDoc/devmarks/internal/utils"
	"github.com/MrSnakeDoc/devmarks/internal/version"
)

// Source returns one page of articles.
type Source interface {
	List(ctx context.Context, page, perPage int) ([]domain.Article, error)
}

// Client talks to the Dev.to JSON API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an API client rooted at baseURL (ex: https://dev.to).
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type devtoUser struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

type devtoArticle struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	CoverImage  *string    `json:"cover_image"`
	SocialImage string     `json:"social_image"`
	PublishedAt *time.Time `json:"published_at"`
	TagList     tagList    `json:"tag_list"`
	User        devtoUser  `json:"user"`
}

// tagList accepts both the array form of the listing endpoint and the
// comma separated string form of the single-article endpoint.
type tagList []string

func (t *tagList) UnmarshalJSON(b []byte) error {
	var arr []string
	if err := json.Unmarshal(b, &arr); err == nil {
		*t = arr
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = splitTags(s)
	return nil
}

// List fetches one page from GET {base}/api/articles.
func (c *Client) List(ctx context.Context, page, perPage int) ([]domain.Article, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/articles?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "devmarks/"+version.Version)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dev.to API error: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("dev.to API %d: %s", resp.StatusCode, string(b))
	}

	var raw []devtoArticle
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode dev.to response: %w", err)
	}

	out := make([]domain.Article, 0, len(raw))
	for _, a := range raw {
		out = append(out, a.toDomain())
	}
	return out, nil
}

func (a devtoArticle) toDomain() domain.Article {
	image := a.SocialImage
	if a.CoverImage != nil && *a.CoverImage != "" {
		image = *a.CoverImage
	}
	author := a.User.Name
	if author == "" {
		author = a.User.Username
	}

	return domain.Article{
		ID:          strconv.FormatInt(a.ID, 10),
		Title:       a.Title,
		Description: a.Description,
		URL:         a.URL,
		ImageURL:    image,
		Author:      author,
		PublishedAt: a.PublishedAt,
		Tags:        []string(a.TagList),
	}
}
