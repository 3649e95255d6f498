package domain

import "time"

// Article is a read-only record from the external article source.
type Article struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	URL         string     `json:"url"`
	ImageURL    string     `json:"image_url,omitempty"`
	Author      string     `json:"author,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Tags        []string   `json:"tags,omitempty"`

	// Bookmarked is computed per request for the signed-in user.
	Bookmarked bool `json:"bookmarked"`
}
