package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/devmarks/internal/auth"
	"github.com/MrSnakeDoc/devmarks/internal/domain"
	"github.com/MrSnakeDoc/devmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/devmarks/internal/httpserver/respond"
	"github.com/MrSnakeDoc/devmarks/internal/logger"
)

const authErrorPath = "/auth/auth-error"

type magicLinkRequest struct {
	Email string `json:"email"`
}

// RequestMagicLink mails a sign-in link. The response does not reveal
// whether the address has an account.
func RequestMagicLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req magicLinkRequest
		if err := respond.Decode(r, &req); err != nil {
			fail(d, w, r, err)
			return
		}

		if err := d.MagicLinks.RequestLink(r.Context(), req.Email); err != nil {
			fail(d, w, r, err)
			return
		}
		respond.JSON(w, http.StatusAccepted, messageResponse{Message: "check your inbox for a sign-in link"})
	}
}

// AuthCallback exchanges a magic-link token for a session cookie and
// redirects to the app. Any failure lands on the app's error page.
func AuthCallback(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("error") != "" {
			d.Logger.Info("auth callback received provider error",
				logger.String("error", q.Get("error")),
				logger.String("description", q.Get("error_description")))
			http.Redirect(w, r, d.AppURL+authErrorPath, http.StatusFound)
			return
		}

		token, sess, _, err := d.MagicLinks.Exchange(r.Context(), q.Get("token"))
		if err != nil {
			d.Logger.Warn("magic link exchange failed", logger.Error(err))
			http.Redirect(w, r, d.AppURL+authErrorPath, http.StatusFound)
			return
		}

		http.SetCookie(w, sessionCookie(d, token, sess.ExpiresAt))
		http.Redirect(w, r, d.AppURL+"/", http.StatusFound)
	}
}

// Me returns the stored account of the signed-in user. A session whose
// account no longer exists is revoked and answered with 401.
func Me(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionUser := auth.UserFromContext(r.Context())
		if sessionUser == nil {
			fail(d, w, r, domain.ErrUnauthenticated)
			return
		}

		user, err := d.Users.UserByID(r.Context(), sessionUser.ID)
		if errors.Is(err, domain.ErrNotFound) {
			d.Logger.Warn("session refers to a deleted account",
				logger.String("user_id", sessionUser.ID))
			if err := d.Sessions.Revoke(r.Context(), auth.TokenFromRequest(r, d.Guard.CookieName())); err != nil {
				d.Logger.Warn("failed to revoke session", logger.Error(err))
			}
			http.SetCookie(w, sessionCookie(d, "", time.Unix(0, 0)))
			fail(d, w, r, domain.ErrUnauthenticated)
			return
		}
		if err != nil {
			fail(d, w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, user)
	}
}

// Logout revokes the current session and clears the cookie.
// It succeeds even without a valid session.
func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := auth.TokenFromRequest(r, d.Guard.CookieName()); token != "" {
			if err := d.Sessions.Revoke(r.Context(), token); err != nil {
				d.Logger.Warn("failed to revoke session", logger.Error(err))
			}
		}

		http.SetCookie(w, sessionCookie(d, "", time.Unix(0, 0)))
		w.WriteHeader(http.StatusNoContent)
	}
}

func sessionCookie(d deps.Deps, value string, expires time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     d.Guard.CookieName(),
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   d.SessionCookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		c.MaxAge = -1
	}
	return c
}
