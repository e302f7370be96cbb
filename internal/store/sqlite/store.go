// Package sqlite provides a relational store backed by SQLite via the
// CGO-free modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"verdict-service/internal/models"
	"verdict-service/internal/store"
	"verdict-service/internal/verdicterr"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	partner1_name TEXT NOT NULL,
	partner2_name TEXT NOT NULL,
	partner1_audio TEXT NOT NULL DEFAULT '',
	partner2_audio TEXT NOT NULL DEFAULT '',
	mode TEXT NOT NULL,
	ai_response TEXT,
	active INTEGER NOT NULL DEFAULT 1,
	transcription_data TEXT,
	is_live_argument INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS subscriptions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL UNIQUE,
	stripe_customer_id TEXT NOT NULL DEFAULT '',
	stripe_price_id TEXT NOT NULL DEFAULT '',
	active INTEGER NOT NULL DEFAULT 1,
	created_at TEXT NOT NULL,
	expires_at TEXT
);
`

// Store implements store.Store on a SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// modernc's driver serializes writes; one connection avoids
	// SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// CreateSession persists a new session with the next sequential id.
func (s *Store) CreateSession(ctx context.Context, input store.CreateSessionInput) (*models.Session, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (partner1_name, partner2_name, partner1_audio, partner2_audio, mode, is_live_argument)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		input.Partner1Name, input.Partner2Name, input.Partner1Audio, input.Partner2Audio,
		string(input.Mode), boolToInt(input.IsLiveArgument),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}
	return s.GetSession(ctx, id)
}

// GetSession retrieves a session by id.
func (s *Store) GetSession(ctx context.Context, id int64) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, partner1_name, partner2_name, partner1_audio, partner2_audio,
		        mode, ai_response, active, transcription_data, is_live_argument
		 FROM sessions WHERE id = ?`, id)

	var (
		session           models.Session
		mode              string
		aiResponse        sql.NullString
		active            int
		transcriptionData sql.NullString
		isLive            int
	)
	err := row.Scan(&session.ID, &session.Partner1Name, &session.Partner2Name,
		&session.Partner1Audio, &session.Partner2Audio, &mode,
		&aiResponse, &active, &transcriptionData, &isLive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: session %d", verdicterr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	session.Mode = models.Mode(mode)
	session.Active = active != 0
	session.IsLiveArgument = isLive != 0
	if aiResponse.Valid {
		session.AIResponse = &aiResponse.String
	}
	if transcriptionData.Valid {
		session.TranscriptionData = &transcriptionData.String
	}
	return &session, nil
}

// UpdateSessionResponse attaches the verdict to a session.
func (s *Store) UpdateSessionResponse(ctx context.Context, id int64, response string) (*models.Session, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET ai_response = ? WHERE id = ?`, response, id)
	if err != nil {
		return nil, fmt.Errorf("update session response: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%w: session %d", verdicterr.ErrNotFound, id)
	}
	return s.GetSession(ctx, id)
}

// UpdateSessionTranscription attaches serialized transcription data.
func (s *Store) UpdateSessionTranscription(ctx context.Context, id int64, data string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET transcription_data = ? WHERE id = ?`, data, id)
	if err != nil {
		return fmt.Errorf("update session transcription: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: session %d", verdicterr.ErrNotFound, id)
	}
	return nil
}

// CreateSubscription persists a new subscription, active by default.
func (s *Store) CreateSubscription(ctx context.Context, input store.CreateSubscriptionInput) (*models.Subscription, error) {
	createdAt := s.now().UTC()
	var expiresAt sql.NullString
	if input.ExpiresAt != nil {
		expiresAt = sql.NullString{String: input.ExpiresAt.UTC().Format(time.RFC3339), Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO subscriptions (email, stripe_customer_id, stripe_price_id, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)`,
		input.Email, input.StripeCustomerID, input.StripePriceID,
		createdAt.Format(time.RFC3339), expiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert subscription: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("subscription id: %w", err)
	}
	return s.getSubscriptionByID(ctx, id)
}

// GetSubscriptionByEmail retrieves a subscription by email.
func (s *Store) GetSubscriptionByEmail(ctx context.Context, email string) (*models.Subscription, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, stripe_customer_id, stripe_price_id, active, created_at, expires_at
		 FROM subscriptions WHERE email = ?`, email)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: subscription for %s", verdicterr.ErrNotFound, email)
	}
	return sub, err
}

func (s *Store) getSubscriptionByID(ctx context.Context, id int64) (*models.Subscription, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, stripe_customer_id, stripe_price_id, active, created_at, expires_at
		 FROM subscriptions WHERE id = ?`, id)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: subscription %d", verdicterr.ErrNotFound, id)
	}
	return sub, err
}

// DeactivateSubscription flips Active to false. Never reactivates.
func (s *Store) DeactivateSubscription(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE subscriptions SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate subscription: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: subscription %d", verdicterr.ErrNotFound, id)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanSubscription(row *sql.Row) (*models.Subscription, error) {
	var (
		sub       models.Subscription
		active    int
		createdAt string
		expiresAt sql.NullString
	)
	if err := row.Scan(&sub.ID, &sub.Email, &sub.StripeCustomerID, &sub.StripePriceID,
		&active, &createdAt, &expiresAt); err != nil {
		return nil, err
	}
	sub.Active = active != 0

	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	sub.CreatedAt = created

	if expiresAt.Valid {
		expires, err := time.Parse(time.RFC3339, expiresAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse expires_at: %w", err)
		}
		sub.ExpiresAt = &expires
	}
	return &sub, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
