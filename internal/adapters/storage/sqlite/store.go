package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/retreatworks/bandscan/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// sessionRowID pins the single operator session row.
const sessionRowID = 1

// Store persists the operator session and the cached service options.
type Store struct {
	db *sql.DB
}

// Open opens the requested operation.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// OpenInMemory opens in memory.
func OpenInMemory() (*Store, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the requested operation.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate handles migrate.
func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scanner_session (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			member_id TEXT NOT NULL,
			legal_name TEXT NOT NULL DEFAULT '',
			spiritual_name TEXT NOT NULL DEFAULT '',
			event_id TEXT NOT NULL DEFAULT '',
			permissions_json TEXT NOT NULL DEFAULT '[]'
		);`,
		`CREATE TABLE IF NOT EXISTS service_options (
			id TEXT PRIMARY KEY,
			service_name TEXT NOT NULL,
			display_key TEXT NOT NULL DEFAULT '',
			display_value TEXT NOT NULL DEFAULT '',
			signed_up INTEGER NOT NULL DEFAULT 0,
			acknowledged INTEGER NOT NULL DEFAULT 0,
			position INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// SaveSession upserts the single operator session row.
func (s *Store) SaveSession(ctx context.Context, session domain.Session) error {
	perms, err := json.Marshal(session.Permissions.List())
	if err != nil {
		return fmt.Errorf("encode permissions: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scanner_session (id, member_id, legal_name, spiritual_name, event_id, permissions_json)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			member_id = excluded.member_id,
			legal_name = excluded.legal_name,
			spiritual_name = excluded.spiritual_name,
			event_id = excluded.event_id,
			permissions_json = excluded.permissions_json`,
		sessionRowID, session.MemberID, session.LegalName, session.SpiritualName, session.EventID, string(perms))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// LoadSession returns the persisted session, if one exists.
func (s *Store) LoadSession(ctx context.Context) (domain.Session, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT member_id, legal_name, spiritual_name, event_id, permissions_json
		FROM scanner_session WHERE id = ?`, sessionRowID)

	var memberID, legalName, spiritualName, eventID, permsJSON string
	err := row.Scan(&memberID, &legalName, &spiritualName, &eventID, &permsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("load session: %w", err)
	}

	var perms []string
	if err := json.Unmarshal([]byte(permsJSON), &perms); err != nil {
		return domain.Session{}, false, fmt.Errorf("decode permissions: %w", err)
	}
	session, err := domain.NewSession(domain.SessionInput{
		MemberID:      memberID,
		LegalName:     legalName,
		SpiritualName: spiritualName,
		EventID:       eventID,
		Permissions:   domain.PermissionsFromList(perms),
	})
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("load session: %w", err)
	}
	return session, true, nil
}

// ClearSession removes the persisted session.
func (s *Store) ClearSession(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM scanner_session WHERE id = ?`, sessionRowID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// SaveServiceOptions replaces the cached service-option list.
func (s *Store) SaveServiceOptions(ctx context.Context, options []domain.ServiceOption) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM service_options`); err != nil {
		return fmt.Errorf("clear service options: %w", err)
	}
	for i, opt := range options {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO service_options (id, service_name, display_key, display_value, signed_up, acknowledged, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			opt.ID, opt.ServiceName, opt.DisplayKey, opt.DisplayValue, boolToInt(opt.SignedUp), boolToInt(opt.Acknowledged), i)
		if err != nil {
			return fmt.Errorf("save service option: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit service options: %w", err)
	}
	return nil
}

// LoadServiceOptions returns the cached service-option list in stored order.
func (s *Store) LoadServiceOptions(ctx context.Context) ([]domain.ServiceOption, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, service_name, display_key, display_value, signed_up, acknowledged
		FROM service_options ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load service options: %w", err)
	}
	defer rows.Close()

	var options []domain.ServiceOption
	for rows.Next() {
		var opt domain.ServiceOption
		var signedUp, acknowledged int
		if err := rows.Scan(&opt.ID, &opt.ServiceName, &opt.DisplayKey, &opt.DisplayValue, &signedUp, &acknowledged); err != nil {
			return nil, fmt.Errorf("scan service option: %w", err)
		}
		opt.SignedUp = signedUp != 0
		opt.Acknowledged = acknowledged != 0
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load service options: %w", err)
	}
	return options, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
