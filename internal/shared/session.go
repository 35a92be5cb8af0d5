package shared

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionManager orchestrates cookie based sessions backed by Redis.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
}

type sessionPayload struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, cookieName string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
	}
}

func (sm *SessionManager) redisKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// Create issues a new session token for the identity and sets the cookie.
func (sm *SessionManager) Create(ctx context.Context, w http.ResponseWriter, id Identity) (string, error) {
	token := uuid.NewString()
	raw, err := json.Marshal(sessionPayload{UserID: id.UserID, Role: id.Role})
	if err != nil {
		return "", err
	}
	if err := sm.client.Set(ctx, sm.redisKey(token), raw, sm.ttl).Err(); err != nil {
		return "", fmt.Errorf("shared/session: store: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sm.ttl / time.Second),
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return token, nil
}

// Resolve looks up the identity for the session cookie on the request.
// A missing or expired session yields ok=false without error.
func (sm *SessionManager) Resolve(ctx context.Context, r *http.Request) (Identity, bool, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return Identity{}, false, nil
		}
		return Identity{}, false, err
	}

	raw, err := sm.client.Get(ctx, sm.redisKey(cookie.Value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Identity{}, false, nil
		}
		return Identity{}, false, fmt.Errorf("shared/session: load: %w", err)
	}

	var payload sessionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Identity{}, false, err
	}
	return Identity{UserID: payload.UserID, Role: payload.Role}, true, nil
}

// Destroy removes the session and expires the cookie.
func (sm *SessionManager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		return nil
	}
	if err := sm.client.Del(ctx, sm.redisKey(cookie.Value)).Err(); err != nil {
		return fmt.Errorf("shared/session: delete: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}
