package web

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"mandalart/internal/model"
)

const (
	sessionCookieName = "mandalart_session"
	adminCookieName   = "mandalart_admin"

	secretMetaKey = "web_secret_key"

	tokenTypeSession = "session"
	tokenTypeAdmin   = "admin"
	adminSubject     = "admin"
)

type signedPayload struct {
	Exp int64  `json:"exp"`
	Sub string `json:"sub"`           // user id, or "admin"
	Typ string `json:"typ,omitempty"` // "session"|"admin"
	N   string `json:"n,omitempty"`   // nonce
}

// loadOrInitSecretKey returns the HMAC key kept in the store, creating it on
// first use.
func loadOrInitSecretKey(ctx context.Context, meta metaStore) ([]byte, error) {
	if v, ok, err := meta.Meta(ctx, secretMetaKey); err != nil {
		return nil, err
	} else if ok && strings.TrimSpace(v) != "" {
		return []byte(strings.TrimSpace(v)), nil
	}
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	enc := base64.RawURLEncoding.EncodeToString(raw)
	if err := meta.SetMeta(ctx, secretMetaKey, enc); err != nil {
		return nil, err
	}
	return []byte(enc), nil
}

type metaStore interface {
	Meta(ctx context.Context, key string) (string, bool, error)
	SetMeta(ctx context.Context, key, value string) error
}

func signToken(secret []byte, payload signedPayload) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	p := base64.RawURLEncoding.EncodeToString(b)
	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write([]byte(p))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return p + "." + sig, nil
}

func verifyToken(secret []byte, token string, now time.Time) (signedPayload, error) {
	token = strings.TrimSpace(token)
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return signedPayload{}, errors.New("invalid token format")
	}
	p, sig := parts[0], parts[1]

	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write([]byte(p))
	want := mac.Sum(nil)
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return signedPayload{}, errors.New("invalid token signature")
	}
	if !hmac.Equal(want, got) {
		return signedPayload{}, errors.New("invalid token signature")
	}

	raw, err := base64.RawURLEncoding.DecodeString(p)
	if err != nil {
		return signedPayload{}, errors.New("invalid token payload")
	}
	var sp signedPayload
	if err := json.Unmarshal(raw, &sp); err != nil {
		return signedPayload{}, errors.New("invalid token payload")
	}
	if sp.Exp == 0 {
		return signedPayload{}, errors.New("token missing exp")
	}
	if now.Unix() > sp.Exp {
		return signedPayload{}, errors.New("token expired")
	}
	if strings.TrimSpace(sp.Sub) == "" {
		return signedPayload{}, errors.New("token missing sub")
	}
	return sp, nil
}

func newNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func newToken(secret []byte, typ, sub string, now time.Time, ttl time.Duration) (string, error) {
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return "", errors.New("missing subject")
	}
	n, err := newNonce()
	if err != nil {
		return "", err
	}
	return signToken(secret, signedPayload{
		Typ: typ,
		Sub: sub,
		N:   n,
		Exp: now.Add(ttl).Unix(),
	})
}

func (s *Server) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// tokenFor returns the verified payload of cookie name when it has type typ.
func (s *Server) tokenFor(r *http.Request, name, typ string) (signedPayload, bool) {
	c, err := r.Cookie(name)
	if err != nil {
		return signedPayload{}, false
	}
	sp, err := verifyToken(s.secret, c.Value, s.now())
	if err != nil || sp.Typ != typ {
		return signedPayload{}, false
	}
	return sp, true
}

// userForRequest returns the signed-in user id, or "".
func (s *Server) userForRequest(r *http.Request) string {
	sp, ok := s.tokenFor(r, sessionCookieName, tokenTypeSession)
	if !ok {
		return ""
	}
	return strings.TrimSpace(sp.Sub)
}

// ensureUser returns the request's user, signing in a new anonymous user
// when there is none.
func (s *Server) ensureUser(w http.ResponseWriter, r *http.Request) (string, error) {
	if id := s.userForRequest(r); id != "" {
		if _, err := s.cfg.Store.FindUser(r.Context(), id); err == nil {
			return id, nil
		}
	}
	u, err := s.cfg.Store.CreateUser(r.Context(), model.UserKindAnonymous, "")
	if err != nil {
		return "", err
	}
	tok, err := newToken(s.secret, tokenTypeSession, u.ID, s.now(), s.cfg.SessionTTL)
	if err != nil {
		return "", err
	}
	s.setCookie(w, sessionCookieName, tok, s.cfg.SessionTTL)
	s.log.Info("anonymous user signed in", zap.String("user", u.ID))
	return u.ID, nil
}

func (s *Server) isAdmin(r *http.Request) bool {
	sp, ok := s.tokenFor(r, adminCookieName, tokenTypeAdmin)
	return ok && sp.Sub == adminSubject
}

func (s *Server) grantAdmin(w http.ResponseWriter) error {
	tok, err := newToken(s.secret, tokenTypeAdmin, adminSubject, s.now(), s.cfg.SessionTTL)
	if err != nil {
		return err
	}
	s.setCookie(w, adminCookieName, tok, s.cfg.SessionTTL)
	return nil
}
