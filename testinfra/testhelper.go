package testinfra

import (
	"context"
	"net/http"
	"net/http/httptest"
	"taskboard/authority"
	"taskboard/session"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// BuildSession builds an authenticated session without signing a real token.
func BuildSession(uid uuid.UUID, role authority.Role) *session.Session {
	now := time.Now()
	return &session.Session{
		Token:       "test-token-" + uuid.New().String(),
		Identity:    session.Identity{ID: uid},
		Role:        role,
		Context:     context.Background(),
		SigningTime: now,
		ExpiresAt:   now.Add(time.Hour),
	}
}

// Authorize registers s in the session cache and attaches its bearer token to req.
func Authorize(req *http.Request, s *session.Session) *http.Request {
	session.TokenCache.Set(s.Token, s, cache.DefaultExpiration)
	req.Header.Set("Authorization", "Bearer "+s.Token)
	return req
}

func ExecuteRequest(req *http.Request, engine *gin.Engine) (int, string, http.Header) {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w.Code, w.Body.String(), w.Header()
}
