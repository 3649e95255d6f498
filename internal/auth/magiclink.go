package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/MrSnakeDoc/devmarks/internal/domain"
	"github.com/MrSnakeDoc/devmarks/internal/logger"
)

// LinkStore keeps pending magic-link tokens by hash.
type LinkStore interface {
	SaveMagicLink(ctx context.Context, tokenHash, email string, ttl time.Duration) error
	ConsumeMagicLink(ctx context.Context, tokenHash string) (string, error)
}

// UserStore finds or creates users by email.
type UserStore interface {
	UpsertUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// CallbackPath is where magic links point.
const CallbackPath = "/api/auth/callback"

// MagicLinks implements passwordless sign-in.
type MagicLinks struct {
	links    LinkStore
	users    UserStore
	sessions *Sessions
	mailer   Mailer
	appURL   string
	ttl      time.Duration
	logger   logger.Logger
}

// NewMagicLinks wires the sign-in flow.
func NewMagicLinks(
	links LinkStore,
	users UserStore,
	sessions *Sessions,
	mailer Mailer,
	appURL string,
	ttl time.Duration,
	log logger.Logger,
) *MagicLinks {
	return &MagicLinks{
		links:    links,
		users:    users,
		sessions: sessions,
		mailer:   mailer,
		appURL:   strings.TrimRight(appURL, "/"),
		ttl:      ttl,
		logger:   log,
	}
}

// RequestLink emails a single-use sign-in link to address.
func (m *MagicLinks) RequestLink(ctx context.Context, address string) error {
	email, err := normalizeEmail(address)
	if err != nil {
		return err
	}

	token, err := newLinkToken()
	if err != nil {
		return err
	}

	if err := m.links.SaveMagicLink(ctx, hashToken(token), email, m.ttl); err != nil {
		return err
	}

	link := m.appURL + CallbackPath + "?token=" + url.QueryEscape(token)
	if err := m.mailer.SendMagicLink(ctx, email, link); err != nil {
		return fmt.Errorf("send magic link: %w", err)
	}

	m.logger.Info("magic link sent", logger.String("email", email))
	return nil
}

// Exchange consumes token and signs the user in, creating the account
// on first use. The returned string is the session token.
func (m *MagicLinks) Exchange(ctx context.Context, token string) (string, *domain.Session, *domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", nil, nil, domain.ErrInvalidLink
	}

	email, err := m.links.ConsumeMagicLink(ctx, hashToken(token))
	if err != nil {
		return "", nil, nil, err
	}

	user, err := m.users.UpsertUserByEmail(ctx, email)
	if err != nil {
		return "", nil, nil, err
	}

	signed, sess, err := m.sessions.Issue(ctx, user)
	if err != nil {
		return "", nil, nil, err
	}

	m.logger.Info("user signed in",
		logger.String("user_id", user.ID),
		logger.String("sid", sess.SID))
	return signed, sess, user, nil
}

func normalizeEmail(address string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(address))
	if err != nil || addr.Name != "" {
		return "", fmt.Errorf("%w: a valid email is required", domain.ErrInvalidPayload)
	}
	return strings.ToLower(addr.Address), nil
}

func newLinkToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate link token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
