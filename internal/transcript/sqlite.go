package transcript

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"chatbot/internal/domain"
	"chatbot/pkg/log"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// SQLiteStore keeps transcripts in a SQLite table managed by goose migrations.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(log.NewGooseLoggerFromCtx(ctx))

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up failed: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, t domain.Transcript) error {
	t = prepare(t)
	query := `INSERT INTO transcripts (uid, source, language, user_text, bot_text, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, t.ID, t.Source, t.Language, t.UserText, t.BotText, t.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert transcript: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]domain.Transcript, error) {
	if limit <= 0 {
		limit = -1
	}
	// Fetch the LAST 'limit' transcripts by ordering DESC
	query := `SELECT uid, source, language, user_text, bot_text, created_at FROM transcripts ORDER BY id DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcripts: %w", err)
	}
	defer rows.Close()

	var out []domain.Transcript
	for rows.Next() {
		var t domain.Transcript
		var created string
		if err := rows.Scan(&t.ID, &t.Source, &t.Language, &t.UserText, &t.BotText, &created); err != nil {
			return nil, fmt.Errorf("failed to scan transcript: %w", err)
		}
		if t.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("failed to parse created_at %q: %w", created, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest -> oldest from the query; callers expect chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	log.FromCtx(ctx).Debug().Int("count", len(out)).Msg("loaded transcripts")
	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
