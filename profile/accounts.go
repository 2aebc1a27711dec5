package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Ashenafi-pixel/minicasino/account"
)

var (
	ErrMissingCredentials = errors.New("profile: username and password are required")
	ErrInvalidCredentials = errors.New("profile: invalid username or password")
)

// GuestName is shown for guest profiles, which have no username of their own.
const GuestName = "Guest"

// Accounts registers players and checks their credentials against a Store.
type Accounts struct {
	store      Store
	newBalance decimal.Decimal
	logger     *zap.Logger
}

// NewAccounts returns an Accounts whose registered and guest profiles start with newBalance.
func NewAccounts(store Store, newBalance decimal.Decimal, logger *zap.Logger) *Accounts {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Accounts{store: store, newBalance: account.Round(newBalance), logger: logger}
}

func (a *Accounts) Register(ctx context.Context, username, password string) (account.Profile, error) {
	username, password = strings.TrimSpace(username), strings.TrimSpace(password)
	if username == "" || password == "" {
		return account.Profile{}, ErrMissingCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return account.Profile{}, err
	}
	p := account.NewProfile(uuid.New().String(), a.newBalance)
	p.Username = username
	p.PasswordHash = string(hash)
	if err := a.store.Create(ctx, p); err != nil {
		return account.Profile{}, err
	}
	a.logger.Info("player registered", zap.String("player_id", p.PlayerID), zap.String("username", username))
	return p, nil
}

func (a *Accounts) Login(ctx context.Context, username, password string) (account.Profile, error) {
	username, password = strings.TrimSpace(username), strings.TrimSpace(password)
	if username == "" || password == "" {
		return account.Profile{}, ErrMissingCredentials
	}
	p, err := a.store.FindByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return account.Profile{}, ErrInvalidCredentials
	}
	if err != nil {
		return account.Profile{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		a.logger.Warn("login rejected", zap.String("username", username))
		return account.Profile{}, ErrInvalidCredentials
	}
	return p, nil
}

// Guest creates an anonymous profile.
func (a *Accounts) Guest(ctx context.Context) (account.Profile, error) {
	p := account.NewProfile(uuid.New().String(), a.newBalance)
	p.Guest = true
	if err := a.store.Create(ctx, p); err != nil {
		return account.Profile{}, err
	}
	a.logger.Info("guest created", zap.String("player_id", p.PlayerID))
	return p, nil
}

// LoadOrCreate returns the stored profile for playerID, creating it with
// balance when the player is unknown.
func LoadOrCreate(ctx context.Context, store Store, playerID string, balance decimal.Decimal) (account.Profile, error) {
	p, err := store.Load(ctx, playerID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return account.Profile{}, err
	}
	p = account.NewProfile(playerID, balance)
	if err := store.Create(ctx, p); err != nil {
		return account.Profile{}, err
	}
	return p, nil
}

// DisplayName is the name to show for p.
func DisplayName(p account.Profile) string {
	if p.Guest || p.Username == "" {
		return GuestName
	}
	return p.Username
}
