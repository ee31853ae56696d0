package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadflow-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	profile       TEXT NOT NULL,
	qualification TEXT NOT NULL,
	temperature   TEXT NOT NULL DEFAULT 'cold',
	ai_cost       REAL NOT NULL DEFAULT 0,
	crm_synced    INTEGER NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS turns (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	ts         DATETIME NOT NULL,
	role       TEXT NOT NULL,
	text       TEXT NOT NULL,
	type       TEXT
);

CREATE INDEX IF NOT EXISTS idx_sessions_temperature ON sessions(temperature);
CREATE INDEX IF NOT EXISTS idx_turns_session_id ON turns(session_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, profile, qualification, ai_cost, crm_synced, created_at, updated_at FROM sessions WHERE id = ?`, id)

	var sess model.Session
	var profile, qualification []byte
	err := row.Scan(&sess.ID, &profile, &qualification, &sess.AICost, &sess.CRMSynced, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get session")
	}
	if err := json.Unmarshal(profile, &sess.Profile); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal profile")
	}
	if err := json.Unmarshal(qualification, &sess.Qualification); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal qualification")
	}

	turns, err := s.loadTurns(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Turns = turns
	return &sess, nil
}

func (s *SQLiteStore) loadTurns(ctx context.Context, sessionID string) ([]model.ConversationTurn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, role, text, COALESCE(type, '') FROM turns WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load turns")
	}
	defer rows.Close()

	var turns []model.ConversationTurn
	for rows.Next() {
		var t model.ConversationTurn
		var role, ctype string
		if err := rows.Scan(&t.Timestamp, &role, &t.Text, &ctype); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan turn")
		}
		t.Role = model.Role(role)
		t.Type = model.ConversationType(ctype)
		turns = append(turns, t)
	}
	return turns, eris.Wrap(rows.Err(), "sqlite: iterate turns")
}

func (s *SQLiteStore) SaveSession(ctx context.Context, session *model.Session) error {
	if session == nil || session.ID == "" {
		return eris.New("sqlite: save session: missing id")
	}

	profile, err := json.Marshal(session.Profile)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal profile")
	}
	qualification, err := json.Marshal(session.Qualification)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal qualification")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, profile, qualification, temperature, ai_cost, crm_synced, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			profile = excluded.profile,
			qualification = excluded.qualification,
			temperature = excluded.temperature,
			ai_cost = excluded.ai_cost,
			crm_synced = excluded.crm_synced,
			updated_at = excluded.updated_at`,
		session.ID, profile, qualification, string(session.Profile.Temperature),
		session.AICost, session.CRMSynced, session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return eris.Wrap(err, "sqlite: upsert session")
	}

	// Turns are rewritten wholesale; the table stays small per session and
	// this keeps SaveSession the single source of truth for in-memory state.
	if _, err := tx.ExecContext(ctx, `DELETE FROM turns WHERE session_id = ?`, session.ID); err != nil {
		return eris.Wrap(err, "sqlite: clear turns")
	}
	for _, t := range session.Turns {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO turns (session_id, ts, role, text, type) VALUES (?, ?, ?, ?, ?)`,
			session.ID, t.Timestamp, string(t.Role), t.Text, string(t.Type)); err != nil {
			return eris.Wrap(err, "sqlite: insert turn")
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit save session")
}

func (s *SQLiteStore) ListSessions(ctx context.Context, filter SessionFilter) ([]model.Session, error) {
	query := `SELECT id, profile, qualification, ai_cost, crm_synced, created_at, updated_at FROM sessions`
	var args []any
	if filter.Temperature != "" {
		query += ` WHERE temperature = ?`
		args = append(args, string(filter.Temperature))
	}
	query += ` ORDER BY created_at, id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += ` LIMIT -1`
		}
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list sessions")
	}
	defer rows.Close()

	var out []model.Session
	for rows.Next() {
		var sess model.Session
		var profile, qualification []byte
		if err := rows.Scan(&sess.ID, &profile, &qualification, &sess.AICost, &sess.CRMSynced, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan session")
		}
		if err := json.Unmarshal(profile, &sess.Profile); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal profile")
		}
		if err := json.Unmarshal(qualification, &sess.Qualification); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal qualification")
		}
		out = append(out, sess)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate sessions")
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return eris.Wrap(err, "sqlite: delete session")
}
