package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/thoas/go-funk"

	"github.com/Ashenafi-pixel/minicasino/account"
	"github.com/Ashenafi-pixel/minicasino/games/blackjack"
	"github.com/Ashenafi-pixel/minicasino/games/crash"
	"github.com/Ashenafi-pixel/minicasino/profile"
	"github.com/Ashenafi-pixel/minicasino/session"
)

const defaultRoundsLimit = 20

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type profileView struct {
	PlayerID         string `json:"playerId"`
	Name             string `json:"name"`
	Guest            bool   `json:"guest"`
	Balance          string `json:"balance"`
	CumulativeProfit string `json:"cumulativeProfit"`
	TotalWagered     string `json:"totalWagered"`
	TotalLost        string `json:"totalLost"`
	WinCount         int    `json:"winCount"`
	LossCount        int    `json:"lossCount"`
	PushCount        int    `json:"pushCount"`
	GamesPlayed      int    `json:"gamesPlayed"`
}

func newProfileView(p account.Profile) profileView {
	return profileView{
		PlayerID:         p.PlayerID,
		Name:             profile.DisplayName(p),
		Guest:            p.Guest,
		Balance:          p.Balance.StringFixed(2),
		CumulativeProfit: p.CumulativeProfit.StringFixed(2),
		TotalWagered:     p.TotalWagered.StringFixed(2),
		TotalLost:        p.TotalLost.StringFixed(2),
		WinCount:         p.WinCount,
		LossCount:        p.LossCount,
		PushCount:        p.PushCount,
		GamesPlayed:      p.Games(),
	}
}

type authResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	Profile   profileView `json:"profile"`
}

func (s *Server) issue(c *gin.Context, status int, p account.Profile) {
	token, exp, err := s.tokens.issue(p.PlayerID)
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	c.JSON(status, authResponse{Token: token, ExpiresAt: exp, Profile: newProfileView(p)})
}

func (s *Server) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid JSON body", "INVALID_REQUEST")
		return
	}
	p, err := s.accounts.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	s.issue(c, http.StatusCreated, p)
}

func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid JSON body", "INVALID_REQUEST")
		return
	}
	p, err := s.accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	// an open session holds the live balance
	if sess, ok := s.sessions.Get(p.PlayerID); ok {
		p = sess.Profile()
	}
	s.issue(c, http.StatusOK, p)
}

func (s *Server) guest(c *gin.Context) {
	p, err := s.accounts.Guest(c.Request.Context())
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	s.issue(c, http.StatusCreated, p)
}

func (s *Server) logout(c *gin.Context) {
	s.sessions.Close(sessionFrom(c).PlayerID())
	c.Status(http.StatusNoContent)
}

func (s *Server) getProfile(c *gin.Context) {
	c.JSON(http.StatusOK, newProfileView(sessionFrom(c).Profile()))
}

func (s *Server) listRounds(c *gin.Context) {
	limit := defaultRoundsLimit
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	results, err := sessionFrom(c).Results(limit)
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rounds": results})
}

func (s *Server) getRound(c *gin.Context) {
	r, err := sessionFrom(c).Result(c.Param("id"))
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// Blackjack

type betRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) blackjackState(c *gin.Context) {
	c.JSON(http.StatusOK, sessionFrom(c).Blackjack())
}

func (s *Server) blackjackBet(c *gin.Context) {
	var req betRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "bet must be a number", "INVALID_BET")
		return
	}
	snap, err := sessionFrom(c).PlaceBet(req.Amount)
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) blackjackAction(op func(*session.Session) (blackjack.Snapshot, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := op(sessionFrom(c))
		if err != nil {
			s.writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// Crash

type armRequest struct {
	Bet         decimal.Decimal  `json:"bet"`
	WatchOnly   bool             `json:"watchOnly"`
	AutoCashOut *decimal.Decimal `json:"autoCashOut"`
}

type autoRequest struct {
	Target decimal.Decimal `json:"target"`
}

func (s *Server) crashState(c *gin.Context) {
	c.JSON(http.StatusOK, sessionFrom(c).Crash())
}

func (s *Server) crashArm(c *gin.Context) {
	var req armRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "bet must be a number", "INVALID_BET")
		return
	}
	snap, err := sessionFrom(c).Arm(req.Bet, req.WatchOnly, req.AutoCashOut)
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) crashAuto(c *gin.Context) {
	var req autoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "target must be a number", "INVALID_AUTO_CASHOUT")
		return
	}
	snap, err := sessionFrom(c).SetAutoCashOut(req.Target)
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) crashAction(op func(*session.Session) (crash.Snapshot, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := op(sessionFrom(c))
		if err != nil {
			s.writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

func (s *Server) crashHistory(c *gin.Context) {
	h := sessionFrom(c).CrashHistory()
	c.JSON(http.StatusOK, gin.H{
		"recent":  funk.Map(h.Recent, func(d decimal.Decimal) string { return d.StringFixed(2) }).([]string),
		"highest": h.Highest.StringFixed(2),
	})
}
