package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadflow-cli/internal/db"
	"github.com/sells-group/leadflow-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hot session paths.
var preparedStatements = map[string]string{
	"get_session":    `SELECT id, profile, qualification, ai_cost, crm_synced, created_at, updated_at FROM sessions WHERE id = $1`,
	"upsert_session": `INSERT INTO sessions (id, profile, qualification, temperature, ai_cost, crm_synced, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (id) DO UPDATE SET profile = EXCLUDED.profile, qualification = EXCLUDED.qualification, temperature = EXCLUDED.temperature, ai_cost = EXCLUDED.ai_cost, crm_synced = EXCLUDED.crm_synced, updated_at = EXCLUDED.updated_at`,
	"insert_turn":    `INSERT INTO turns (session_id, ts, role, text, type) VALUES ($1, $2, $3, $4, $5)`,
	"load_turns":     `SELECT ts, role, text, COALESCE(type, '') FROM turns WHERE session_id = $1 ORDER BY seq`,
	"delete_session": `DELETE FROM sessions WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	profile       JSONB NOT NULL,
	qualification JSONB NOT NULL,
	temperature   TEXT NOT NULL DEFAULT 'cold',
	ai_cost       DOUBLE PRECISION NOT NULL DEFAULT 0,
	crm_synced    BOOLEAN NOT NULL DEFAULT FALSE,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS turns (
	seq        BIGSERIAL PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	ts         TIMESTAMPTZ NOT NULL,
	role       TEXT NOT NULL,
	text       TEXT NOT NULL,
	type       TEXT
);

CREATE INDEX IF NOT EXISTS idx_sessions_temperature ON sessions(temperature);
CREATE INDEX IF NOT EXISTS idx_turns_session_id ON turns(session_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, profile, qualification, ai_cost, crm_synced, created_at, updated_at FROM sessions WHERE id = $1`, id)

	var sess model.Session
	var profile, qualification []byte
	err := row.Scan(&sess.ID, &profile, &qualification, &sess.AICost, &sess.CRMSynced, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get session")
	}
	if err := json.Unmarshal(profile, &sess.Profile); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal profile")
	}
	if err := json.Unmarshal(qualification, &sess.Qualification); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal qualification")
	}

	turns, err := s.loadTurns(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Turns = turns
	return &sess, nil
}

func (s *PostgresStore) loadTurns(ctx context.Context, sessionID string) ([]model.ConversationTurn, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT ts, role, text, COALESCE(type, '') FROM turns WHERE session_id = $1 ORDER BY seq`, sessionID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load turns")
	}
	defer rows.Close()

	var turns []model.ConversationTurn
	for rows.Next() {
		var t model.ConversationTurn
		var role, ctype string
		if err := rows.Scan(&t.Timestamp, &role, &t.Text, &ctype); err != nil {
			return nil, eris.Wrap(err, "postgres: scan turn")
		}
		t.Role = model.Role(role)
		t.Type = model.ConversationType(ctype)
		turns = append(turns, t)
	}
	return turns, eris.Wrap(rows.Err(), "postgres: iterate turns")
}

func (s *PostgresStore) SaveSession(ctx context.Context, session *model.Session) error {
	if session == nil || session.ID == "" {
		return eris.New("postgres: save session: missing id")
	}

	profile, err := json.Marshal(session.Profile)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal profile")
	}
	qualification, err := json.Marshal(session.Qualification)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal qualification")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO sessions (id, profile, qualification, temperature, ai_cost, crm_synced, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			profile = EXCLUDED.profile,
			qualification = EXCLUDED.qualification,
			temperature = EXCLUDED.temperature,
			ai_cost = EXCLUDED.ai_cost,
			crm_synced = EXCLUDED.crm_synced,
			updated_at = EXCLUDED.updated_at`,
		session.ID, profile, qualification, string(session.Profile.Temperature),
		session.AICost, session.CRMSynced, session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return eris.Wrap(err, "postgres: upsert session")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM turns WHERE session_id = $1`, session.ID); err != nil {
		return eris.Wrap(err, "postgres: clear turns")
	}
	for _, t := range session.Turns {
		if _, err := tx.Exec(ctx,
			`INSERT INTO turns (session_id, ts, role, text, type) VALUES ($1, $2, $3, $4, $5)`,
			session.ID, t.Timestamp, string(t.Role), t.Text, string(t.Type)); err != nil {
			return eris.Wrap(err, "postgres: insert turn")
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit save session")
}

func (s *PostgresStore) ListSessions(ctx context.Context, filter SessionFilter) ([]model.Session, error) {
	query := `SELECT id, profile, qualification, ai_cost, crm_synced, created_at, updated_at FROM sessions`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.Temperature != "" {
		query += ` WHERE temperature = ` + arg(string(filter.Temperature))
	}
	query += ` ORDER BY created_at, id`
	if filter.Limit > 0 {
		query += ` LIMIT ` + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ` + arg(filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list sessions")
	}
	defer rows.Close()

	var out []model.Session
	for rows.Next() {
		var sess model.Session
		var profile, qualification []byte
		if err := rows.Scan(&sess.ID, &profile, &qualification, &sess.AICost, &sess.CRMSynced, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan session")
		}
		if err := json.Unmarshal(profile, &sess.Profile); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal profile")
		}
		if err := json.Unmarshal(qualification, &sess.Qualification); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal qualification")
		}
		out = append(out, sess)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate sessions")
}

func (s *PostgresStore) DeleteSession(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return eris.Wrap(err, "postgres: delete session")
}
