package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kpi_extractor/pkg/core/session"
	"kpi_extractor/pkg/models"
)

// SessionCache persists session state.
// Hybrid: Postgres when a pool is given, otherwise one JSON file per session.
type SessionCache struct {
	pool    *pgxpool.Pool
	fileDir string
	ttl     time.Duration
	now     func() time.Time
	log     *slog.Logger
}

var _ session.Store = (*SessionCache)(nil)

// NewSessionCache creates a cache. With a nil pool and empty dir it defaults to
// .cache/sessions. Entries older than ttl are treated as missing (zero keeps them).
func NewSessionCache(pool *pgxpool.Pool, dir string, ttl time.Duration, logger *slog.Logger) *SessionCache {
	if logger == nil {
		logger = slog.Default()
	}
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "sessions")
	}
	if pool == nil {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Warn("store.session_dir_error", "dir", dir, "error", err)
		}
	}
	return &SessionCache{pool: pool, fileDir: dir, ttl: ttl, now: time.Now, log: logger}
}

// fileEntry is the on-disk form of a session.
type fileEntry struct {
	ID        string                   `json:"id"`
	Input     string                   `json:"input"`
	Result    *models.ExtractionResult `json:"result"`
	Phase     session.Phase            `json:"phase"`
	UpdatedAt time.Time                `json:"updated_at"`
}

func (c *SessionCache) Load(ctx context.Context, id string) (session.State, bool, error) {
	if c.pool != nil {
		return c.loadDB(ctx, id)
	}
	return c.loadFile(id)
}

func (c *SessionCache) Save(ctx context.Context, s session.State) error {
	if c.pool != nil {
		return c.saveDB(ctx, s)
	}
	return c.saveFile(s)
}

func (c *SessionCache) Delete(ctx context.Context, id string) error {
	if c.pool != nil {
		if _, err := c.pool.Exec(ctx, `DELETE FROM kpi_sessions WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		return nil
	}
	path, err := c.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

func (c *SessionCache) loadDB(ctx context.Context, id string) (session.State, bool, error) {
	query := `
		SELECT input, result, phase, updated_at
		FROM kpi_sessions
		WHERE id = $1
	`
	var (
		input, phase string
		resultJSON   []byte
		updatedAt    time.Time
	)
	err := c.pool.QueryRow(ctx, query, id).Scan(&input, &resultJSON, &phase, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return session.State{}, false, nil
	}
	if err != nil {
		return session.State{}, false, fmt.Errorf("failed to load session: %w", err)
	}
	if c.expired(updatedAt) {
		return session.State{}, false, nil
	}

	s := session.State{ID: id, Input: input, Phase: session.Phase(phase), UpdatedAt: updatedAt}
	if len(resultJSON) > 0 && string(resultJSON) != "null" {
		var r models.ExtractionResult
		if err := json.Unmarshal(resultJSON, &r); err != nil {
			return session.State{}, false, fmt.Errorf("failed to unmarshal cached result: %w", err)
		}
		s.Result = &r
	}
	return s, true, nil
}

func (c *SessionCache) saveDB(ctx context.Context, s session.State) error {
	var resultJSON []byte
	if s.Result != nil {
		b, err := json.Marshal(s.Result)
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		resultJSON = b
	}

	query := `
		INSERT INTO kpi_sessions (id, input, result, phase, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id)
		DO UPDATE SET
			input = EXCLUDED.input,
			result = EXCLUDED.result,
			phase = EXCLUDED.phase,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := c.pool.Exec(ctx, query, s.ID, s.Input, resultJSON, string(s.Phase), s.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (c *SessionCache) loadFile(id string) (session.State, bool, error) {
	path, err := c.path(id)
	if err != nil {
		return session.State{}, false, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return session.State{}, false, nil
	}
	if err != nil {
		return session.State{}, false, fmt.Errorf("failed to read session file: %w", err)
	}

	var e fileEntry
	if err := json.Unmarshal(data, &e); err != nil {
		// A corrupt file is a cache miss, not an outage.
		c.log.Warn("store.session_file_corrupt", "path", path, "error", err)
		return session.State{}, false, nil
	}
	if c.expired(e.UpdatedAt) {
		return session.State{}, false, nil
	}
	return session.State{ID: id, Input: e.Input, Result: e.Result, Phase: e.Phase, UpdatedAt: e.UpdatedAt}, true, nil
}

func (c *SessionCache) saveFile(s session.State) error {
	path, err := c.path(s.ID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(fileEntry{
		ID:        s.ID,
		Input:     s.Input,
		Result:    s.Result,
		Phase:     s.Phase,
		UpdatedAt: s.UpdatedAt,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to save session file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to save session file: %w", err)
	}
	return nil
}

// path maps a session id to its file. Only ids produced by session.NewID are accepted.
func (c *SessionCache) path(id string) (string, error) {
	if !session.ValidID(id) {
		return "", fmt.Errorf("invalid session id %q", id)
	}
	return filepath.Join(c.fileDir, id+".json"), nil
}

func (c *SessionCache) expired(updatedAt time.Time) bool {
	return c.ttl > 0 && c.now().Sub(updatedAt) > c.ttl
}
