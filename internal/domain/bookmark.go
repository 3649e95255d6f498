package domain

import (
	"fmt"
	"strings"
	"time"
)

// Bookmark is one user's saved reference to an external article.
//
// A bookmark is never edited in place: it is created from a payload and
// later removed by its owner. The pair (UserID, ArticleID) is unique.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable, server-assigned)
	// ─────────────────────────────

	// ID is generated by the persistence backend at insert.
	ID string `json:"id"`

	// UserID is the owner. Always taken from the resolved session,
	// never from the request payload.
	UserID string `json:"user_id"`

	// ─────────────────────────────
	// Article snapshot
	// ─────────────────────────────

	// ArticleID is the external article identifier in string form.
	ArticleID string `json:"article_id"`

	// ArticleTitle is the display title at time of bookmarking.
	ArticleTitle string `json:"article_title"`

	// ArticleURL is the canonical link to the article.
	ArticleURL string `json:"article_url"`

	// ArticleImageURL is an optional preview image.
	ArticleImageURL *string `json:"article_image_url"`

	// CreatedAt is set by the persistence backend at insert.
	CreatedAt time.Time `json:"created_at"`
}

// NewBookmark is the client-supplied part of a bookmark.
// Any user_id sent by the client is ignored by the decoder.
type NewBookmark struct {
	ArticleID       string  `json:"article_id"`
	ArticleTitle    string  `json:"article_title"`
	ArticleURL      string  `json:"article_url"`
	ArticleImageURL *string `json:"article_image_url,omitempty"`
}

// Validate reports the first missing required field as ErrInvalidPayload.
func (nb NewBookmark) Validate() error {
	switch {
	case strings.TrimSpace(nb.ArticleID) == "":
		return fmt.Errorf("%w: article_id is required", ErrInvalidPayload)
	case strings.TrimSpace(nb.ArticleTitle) == "":
		return fmt.Errorf("%w: article_title is required", ErrInvalidPayload)
	case strings.TrimSpace(nb.ArticleURL) == "":
		return fmt.Errorf("%w: article_url is required", ErrInvalidPayload)
	}
	return nil
}

// Normalize trims surrounding whitespace and drops an empty image URL.
func (nb NewBookmark) Normalize() NewBookmark {
	out := NewBookmark{
		ArticleID:    strings.TrimSpace(nb.ArticleID),
		ArticleTitle: strings.TrimSpace(nb.ArticleTitle),
		ArticleURL:   strings.TrimSpace(nb.ArticleURL),
	}
	if nb.ArticleImageURL != nil {
		if img := strings.TrimSpace(*nb.ArticleImageURL); img != "" {
			out.ArticleImageURL = &img
		}
	}
	return out
}
