// internal/httpserver/session.go
//
// Session handles.
// Every /api request is bound to one store.Session (and so one Solver). The
// session id travels in an HS256 JWT, read from the Authorization bearer
// header or the session cookie. A missing, invalid, expired or unknown token
// starts a new session; the new token is returned both as a cookie and in
// the X-Session-Token header. A token past half its lifetime is re-issued
// the same way, so only idle sessions ever expire.

package httpserver

import (
	"context"
	"crypto/sha256"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/hkdf"

	"github.com/robalobadob/hitblow/internal/store"
)

const (
	sessionCookie = "hitblow_session"
	sessionHeader = "X-Session-Token"
)

var errInvalidToken = errors.New("invalid session token")

// ctxSessionKey is the context key type for storing *store.Session.
type ctxSessionKey struct{}

// tokenIssuer signs and verifies session tokens.
type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// newTokenIssuer derives a 32-byte HMAC key from secret with HKDF-SHA256.
func newTokenIssuer(secret string, ttl time.Duration) *tokenIssuer {
	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("hitblow session token"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		panic(err)
	}
	return &tokenIssuer{secret: key, ttl: ttl, now: time.Now}
}

func (t *tokenIssuer) sign(sessionID string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := tok.SignedString(t.secret)
	return ss, exp, err
}

// parse returns the session id carried by a valid token and when the token
// was issued.
func (t *tokenIssuer) parse(s string) (string, time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(s, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", time.Time{}, err
	}
	if !tok.Valid || claims.Subject == "" || claims.IssuedAt == nil {
		return "", time.Time{}, errInvalidToken
	}
	return claims.Subject, claims.IssuedAt.Time, nil
}

// stale reports whether a token issued at iat should be re-issued.
func (t *tokenIssuer) stale(iat time.Time) bool {
	return t.now().Sub(iat) >= t.ttl/2
}

// withSession resolves or creates the caller's session.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, iat := s.lookupSession(r)
		switch {
		case sess == nil:
			sess = store.NewSession(s.newSolver())
			if err := s.sessions.Save(r.Context(), sess); err != nil {
				log.Error().Err(err).Msg("save session")
				writeError(w, http.StatusInternalServerError, "save_failed", "")
				return
			}
			if !s.issueToken(w, sess) {
				return
			}
			activeSessions.Set(float64(s.sessions.Len()))
			log.Info().Str("session", sess.ID).Msg("session started")
		case s.tokens.stale(iat):
			if !s.issueToken(w, sess) {
				return
			}
			log.Debug().Str("session", sess.ID).Msg("session token refreshed")
		}
		ctx := context.WithValue(r.Context(), ctxSessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// issueToken sends a fresh token for sess as cookie and header.
func (s *Server) issueToken(w http.ResponseWriter, sess *store.Session) bool {
	tok, exp, err := s.tokens.sign(sess.ID)
	if err != nil {
		log.Error().Err(err).Msg("sign session token")
		writeError(w, http.StatusInternalServerError, "sign_failed", "")
		return false
	}
	setSessionCookie(w, tok, exp)
	w.Header().Set(sessionHeader, tok)
	return true
}

func (s *Server) lookupSession(r *http.Request) (*store.Session, time.Time) {
	tok := bearerOrCookie(r)
	if tok == "" {
		return nil, time.Time{}
	}
	id, iat, err := s.tokens.parse(tok)
	if err != nil {
		log.Debug().Err(err).Msg("rejecting session token")
		return nil, time.Time{}
	}
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		return nil, time.Time{}
	}
	return sess, iat
}

func sessionFrom(r *http.Request) *store.Session {
	sess, _ := r.Context().Value(ctxSessionKey{}).(*store.Session)
	return sess
}

// SweepSessions drops sessions idle for longer than the token lifetime,
// every interval, until ctx is done.
func (s *Server) SweepSessions(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.sessions.Sweep(ctx, now.Add(-s.tokens.ttl)); n > 0 {
				log.Info().Int("removed", n).Int("live", s.sessions.Len()).Msg("swept idle sessions")
			}
			activeSessions.Set(float64(s.sessions.Len()))
		}
	}
}

func setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or session cookie.
func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}
