package redis

import "fmt"

const (
	// KeyPrefixSession is the prefix for live session keys
	KeyPrefixSession = "devmarks:session:"
	// KeyPrefixMagicLink is the prefix for pending magic-link tokens
	KeyPrefixMagicLink = "devmarks:magic:"
	// KeyPrefixArticles is the prefix for cached article pages
	KeyPrefixArticles = "devmarks:articles:"
)

// SessionKey returns the Redis key for a session by id
func SessionKey(sid string) string {
	return KeyPrefixSession + sid
}

// MagicLinkKey returns the Redis key for a hashed magic-link token
func MagicLinkKey(tokenHash string) string {
	return KeyPrefixMagicLink + tokenHash
}

// ArticlesKey returns the Redis key for one cached article page
func ArticlesKey(page, perPage int) string {
	return fmt.Sprintf("%spage:%d:%d", KeyPrefixArticles, page, perPage)
}
