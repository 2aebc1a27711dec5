package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ashenafi-pixel/minicasino/account"
	"github.com/Ashenafi-pixel/minicasino/games/blackjack"
	"github.com/Ashenafi-pixel/minicasino/games/crash"
	"github.com/Ashenafi-pixel/minicasino/profile"
	"github.com/Ashenafi-pixel/minicasino/session"
)

// APIError is the standard error response for casino APIs.
type APIError struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeError(c *gin.Context, code int, errMsg, codeStr string) {
	c.AbortWithStatusJSON(code, APIError{
		Error:   errMsg,
		Code:    codeStr,
		Message: errMsg,
	})
}

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{blackjack.ErrInvalidBet, http.StatusBadRequest, "INVALID_BET"},
	{crash.ErrInvalidBet, http.StatusBadRequest, "INVALID_BET"},
	{account.ErrInvalidAmount, http.StatusBadRequest, "INVALID_BET"},
	{account.ErrInsufficientFunds, http.StatusBadRequest, "INSUFFICIENT_FUNDS"},
	{blackjack.ErrInvalidStateTransition, http.StatusConflict, "INVALID_STATE"},
	{crash.ErrInvalidStateTransition, http.StatusConflict, "INVALID_STATE"},
	{crash.ErrWatchOnly, http.StatusConflict, "WATCH_ONLY"},
	{crash.ErrNotWatchOnly, http.StatusConflict, "NOT_WATCH_ONLY"},
	{crash.ErrInvalidAutoCashOut, http.StatusBadRequest, "INVALID_AUTO_CASHOUT"},
	{session.ErrRoundInFlight, http.StatusConflict, "ROUND_IN_FLIGHT"},
	{session.ErrRoundNotFound, http.StatusNotFound, "ROUND_NOT_FOUND"},
	{profile.ErrUsernameTaken, http.StatusConflict, "USERNAME_TAKEN"},
	{profile.ErrMissingCredentials, http.StatusBadRequest, "CREDENTIALS_REQUIRED"},
	{profile.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{profile.ErrNotFound, http.StatusNotFound, "PROFILE_NOT_FOUND"},
}

// writeDomainError maps engine, ledger and profile errors to API errors.
// Anything unknown is a 500 and is logged.
func (s *Server) writeDomainError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			writeError(c, m.status, err.Error(), m.code)
			return
		}
	}
	s.logger.Error("request failed", s.requestFields(c, err)...)
	writeError(c, http.StatusInternalServerError, "internal error", "TECHNICAL_ERROR")
}
