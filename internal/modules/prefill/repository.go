// Package prefill persists the audit trail of served recommendations.
// The pipeline itself lives in the engine subpackage and never touches
// the database; this repository records what was served, after the fact.
package prefill

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/precept/internal/modules/prefill/domain"
)

// defaultRecentLimit caps audit listings when the caller does not say.
const defaultRecentLimit = 50

// AuditEntry is one served recommendation as stored in the audit trail.
// The full response survives as a msgpack blob; the indexed columns exist
// so the trail can be filtered without decoding payloads.
type AuditEntry struct {
	UUID           string                `json:"uuid"`
	ClientID       string                `json:"client_id"`
	Symbol         string                `json:"symbol"`
	Direction      string                `json:"direction"`
	OrderSize      float64               `json:"order_size"`
	AlgoType       string                `json:"algo_type"`
	Recommendation domain.Recommendation `json:"recommendation"`
	CreatedAt      int64                 `json:"created_at"`
}

// Repository appends served recommendations and reads them back for the
// history endpoint.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new prefill audit repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "prefill_audit").Logger(),
	}
}

// Insert records one served recommendation and returns its generated id.
func (r *Repository) Insert(req domain.OrderRequest, rec domain.Recommendation, now time.Time) (string, error) {
	id := uuid.New().String()

	payload, err := msgpack.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to encode recommendation: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO recommendations
		(uuid, client_id, symbol, direction, order_size, algo_type, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, req.ClientID, req.Symbol, req.Direction, float64(req.OrderSize),
		rec.CoreOrderFields.AlgoType, payload, now.Unix())
	if err != nil {
		return "", fmt.Errorf("failed to insert recommendation: %w", err)
	}

	return id, nil
}

// Recent returns the latest audit entries, newest first. A non-positive
// limit falls back to the default.
func (r *Repository) Recent(limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	rows, err := r.db.Query(`
		SELECT uuid, client_id, symbol, direction, order_size, algo_type, payload, created_at
		FROM recommendations
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var (
			e       AuditEntry
			payload []byte
		)
		if err := rows.Scan(&e.UUID, &e.ClientID, &e.Symbol, &e.Direction,
			&e.OrderSize, &e.AlgoType, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		if err := msgpack.Unmarshal(payload, &e.Recommendation); err != nil {
			return nil, fmt.Errorf("failed to decode recommendation %s: %w", e.UUID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
