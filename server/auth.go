package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/gin-gonic/gin"

	"github.com/Ashenafi-pixel/minicasino/session"
)

const (
	tokenIssuer = "minicasino"
	sessionKey  = "session"
)

var errInvalidToken = errors.New("invalid or expired token")

type tokens struct {
	secret []byte
	ttl    time.Duration
}

func (t tokens) issue(playerID string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(t.ttl)
	claims := jwt.StandardClaims{
		Issuer:    tokenIssuer,
		Subject:   playerID,
		IssuedAt:  now.Unix(),
		ExpiresAt: exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// parse returns the player id of a valid token.
func (t tokens) parse(tokenString string) (string, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return "", errInvalidToken
	}
	if claims.Issuer != tokenIssuer || claims.Subject == "" {
		return "", errInvalidToken
	}
	return claims.Subject, nil
}

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// requireSession resolves the bearer token to the player's open session.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearer(c)
		if raw == "" {
			writeError(c, http.StatusUnauthorized, "token required", "TOKEN_REQUIRED")
			return
		}
		playerID, err := s.tokens.parse(raw)
		if err != nil {
			writeError(c, http.StatusUnauthorized, err.Error(), "INVALID_TOKEN")
			return
		}
		sess, err := s.sessions.Open(c.Request.Context(), playerID)
		if err != nil {
			s.writeDomainError(c, err)
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}
