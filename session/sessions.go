package session

import (
	"strings"
	"taskboard/bizerror"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// TokenCache holds verified sessions keyed by raw token.
var TokenCache = cache.New(sessionCacheTTL, 1*time.Minute)

const sessionCacheTTL = 5 * time.Minute

const KeySecCtx = "SecCtx"

func ExtractSessionFromGinContext(ctx *gin.Context) *Session {
	value, found := ctx.Get(KeySecCtx)
	if !found {
		return &Session{Context: ctx.Request.Context()}
	}
	s0, ok := value.(*Session)
	if !ok || s0.Token == "" {
		return &Session{Context: ctx.Request.Context()}
	}
	s := s0.Clone()
	s.Context = ctx.Request.Context() // trace context
	return &s
}

func BearerToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AuthFilter requires a valid, unrevoked bearer token.
func AuthFilter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := BearerToken(ctx)
		if token == "" {
			panic(bizerror.ErrUnauthenticated)
		}

		revoked, err := ActiveRevocationStore.IsRevoked(ctx.Request.Context(), token)
		if err != nil {
			panic(err)
		}
		if revoked {
			TokenCache.Delete(token)
			panic(bizerror.ErrUnauthenticated)
		}

		s, err := lookupSession(token)
		if err != nil {
			logrus.Debugf("token rejected: %v", err)
			panic(bizerror.ErrUnauthenticated)
		}
		InjectSessionIntoGinContext(ctx, s)
		ctx.Next()
	}
}

func lookupSession(token string) (*Session, error) {
	if value, found := TokenCache.Get(token); found {
		if s, ok := value.(*Session); ok && time.Now().Before(s.ExpiresAt) {
			return s, nil
		}
		TokenCache.Delete(token)
	}
	s, err := ActiveTokenManager.Verify(token)
	if err != nil {
		return nil, err
	}
	if ttl := time.Until(s.ExpiresAt); ttl > 0 {
		if ttl > sessionCacheTTL {
			ttl = sessionCacheTTL
		}
		TokenCache.Set(token, s, ttl)
	}
	return s, nil
}

func InjectSessionIntoGinContext(ctx *gin.Context, s *Session) {
	if s != nil && s.Token != "" {
		ctx.Set(KeySecCtx, s)
	}
}

// Logout revokes the session token until its natural expiry.
func Logout(s *Session) error {
	if !s.Authenticated() {
		return bizerror.ErrUnauthenticated
	}
	if err := ActiveRevocationStore.Revoke(s.Ctx(), s.Token, s.ExpiresAt); err != nil {
		return err
	}
	TokenCache.Delete(s.Token)
	return nil
}
