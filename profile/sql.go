package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Ashenafi-pixel/minicasino/account"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	player_id TEXT PRIMARY KEY,
	username TEXT UNIQUE,
	password_hash TEXT NOT NULL DEFAULT '',
	guest BOOLEAN NOT NULL DEFAULT FALSE,
	balance TEXT NOT NULL,
	cumulative_profit TEXT NOT NULL,
	total_wagered TEXT NOT NULL,
	total_lost TEXT NOT NULL,
	win_count INTEGER NOT NULL DEFAULT 0,
	loss_count INTEGER NOT NULL DEFAULT 0,
	push_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

const columns = `player_id, username, password_hash, guest, balance, cumulative_profit,
	total_wagered, total_lost, win_count, loss_count, push_count, created_at, updated_at`

// SQLStore keeps profiles in a profiles table on SQLite or Postgres.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// OpenSQLite opens (and migrates) a SQLite database file.
func OpenSQLite(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return newSQLStore(db, dialectSQLite)
}

// OpenPostgres connects through the pgx stdlib driver using the simple query
// protocol, which keeps PgBouncer-style poolers working.
func OpenPostgres(dsn string) (*SQLStore, error) {
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	config.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	db := stdlib.OpenDB(*config)
	db.SetConnMaxIdleTime(4 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return newSQLStore(db, dialectPostgres)
}

func newSQLStore(db *sql.DB, d dialect) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: d}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("profile: migrate: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func args(r record) []any {
	return []any{
		r.PlayerID, nullable(r.Username), r.PasswordHash, r.Guest,
		r.Balance, r.CumulativeProfit, r.TotalWagered, r.TotalLost,
		r.WinCount, r.LossCount, r.PushCount, r.CreatedAt.UTC(), r.UpdatedAt.UTC(),
	}
}

func (s *SQLStore) queryOne(ctx context.Context, where string, arg string) (account.Profile, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+columns+` FROM profiles WHERE `+where+` = ?`), arg)
	var r record
	var username sql.NullString
	err := row.Scan(&r.PlayerID, &username, &r.PasswordHash, &r.Guest,
		&r.Balance, &r.CumulativeProfit, &r.TotalWagered, &r.TotalLost,
		&r.WinCount, &r.LossCount, &r.PushCount, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return account.Profile{}, ErrNotFound
	}
	if err != nil {
		return account.Profile{}, err
	}
	r.Username = username.String
	return r.profile()
}

func (s *SQLStore) Load(ctx context.Context, playerID string) (account.Profile, error) {
	return s.queryOne(ctx, "player_id", playerID)
}

func (s *SQLStore) FindByUsername(ctx context.Context, username string) (account.Profile, error) {
	if username == "" {
		return account.Profile{}, ErrNotFound
	}
	return s.queryOne(ctx, "username", username)
}

func (s *SQLStore) Create(ctx context.Context, p account.Profile) error {
	if p.Username != "" {
		if _, err := s.FindByUsername(ctx, p.Username); err == nil {
			return ErrUsernameTaken
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	q := s.rebind(`INSERT INTO profiles (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, q, args(toRecord(p))...); err != nil {
		// lost a race on the unique username
		if p.Username != "" {
			if _, ferr := s.FindByUsername(ctx, p.Username); ferr == nil {
				return ErrUsernameTaken
			}
		}
		return err
	}
	return nil
}

func (s *SQLStore) Save(ctx context.Context, p account.Profile) error {
	q := s.rebind(`INSERT INTO profiles (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (player_id) DO UPDATE SET
		username = excluded.username,
		password_hash = excluded.password_hash,
		guest = excluded.guest,
		balance = excluded.balance,
		cumulative_profit = excluded.cumulative_profit,
		total_wagered = excluded.total_wagered,
		total_lost = excluded.total_lost,
		win_count = excluded.win_count,
		loss_count = excluded.loss_count,
		push_count = excluded.push_count,
		updated_at = excluded.updated_at`)
	_, err := s.db.ExecContext(ctx, q, args(toRecord(p))...)
	return err
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
