package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"example/engine-api/app/config"
	"example/engine-api/app/models"

	"github.com/lib/pq"
)

var db *sql.DB

// MustInitDB initializes the global db and panics/logs fatally on error.
func MustInitDB() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s",
		cfg.DB.Username,
		cfg.DB.Password,
		cfg.DB.URL,
		cfg.DB.Port,
	)

	d, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("sql.Open: %v", err)
	}

	if err := d.Ping(); err != nil {
		log.Fatalf("db.Ping: %v", err)
	}

	log.Println("Connected to Postgres")
	db = d
}

// saveSession records one settled session. Best-effort: history is a
// convenience, never a reason to fail the request.
func saveSession(ctx context.Context, requestedBy, fen string, mode models.SearchMode, res models.SessionResult) error {
	if db == nil {
		// Allow test runs without a backing DB.
		return nil
	}

	const q = `
        INSERT INTO sessions (requested_by, fen, normalized_fen, mode, outcome, best_move, score_cp, score_mate)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
    `
	_, err := db.ExecContext(ctx, q,
		requestedBy,
		fen,
		NormalizeFEN(fen),
		string(mode),
		string(res.Outcome),
		res.BestMove,
		res.Score.CP,
		res.Score.Mate,
	)
	return err
}

// RecentSessions returns the caller's newest history rows.
func RecentSessions(ctx context.Context, requestedBy string, limit int) ([]models.HistoryEntry, error) {
	if db == nil {
		return []models.HistoryEntry{}, nil
	}

	rows, err := db.QueryContext(ctx, `
		SELECT
			fen,
			mode,
			outcome,
			COALESCE(best_move, ''),
			score_cp,
			score_mate,
			EXTRACT(EPOCH FROM created_at)::bigint
		FROM sessions
		WHERE requested_by = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, requestedBy, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		var cp, mate sql.NullInt64
		if err := rows.Scan(&e.FEN, &e.Mode, &e.Outcome, &e.BestMove, &cp, &mate, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.CP = nullableIntToPtr(cp)
		e.Mate = nullableIntToPtr(mate)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// stagePositions bulk-loads a job's positions in one transaction via COPY.
func stagePositions(ctx context.Context, jobID string, fens []string) error {
	if db == nil {
		return nil
	}
	if len(fens) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("positions", "job_id", "seq", "fen"))
	if err != nil {
		return err
	}

	for i, fen := range fens {
		if _, err := stmt.Exec(jobID, i, fen); err != nil {
			return err
		}
	}

	// finish COPY
	if _, err := stmt.Exec(); err != nil {
		return err
	}
	if err := stmt.Close(); err != nil {
		return err
	}

	return tx.Commit()
}

// LoadPositions reads one batch of a job's positions using LIMIT/OFFSET.
// Example: limit = 100, offset = batchIndex * limit
func LoadPositions(ctx context.Context, jobID string, limit, offset int) ([]string, error) {
	if db == nil {
		return nil, nil
	}
	rows, err := db.QueryContext(ctx, `
		SELECT fen
		FROM positions
		WHERE job_id = $1
		ORDER BY seq
		LIMIT $2
		OFFSET $3
	`, jobID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var fen string
		if err := rows.Scan(&fen); err != nil {
			return nil, err
		}
		out = append(out, fen)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func CreateJob(ctx context.Context, mode string, totalFens, batchSize, totalBatches int) (string, error) {
	if db == nil {
		return "", nil
	}

	const q = `
        INSERT INTO jobs (mode, total_fens, batch_size, total_batches)
        VALUES ($1, $2, $3, $4)
        RETURNING id;
    `
	var jobID string
	if err := db.QueryRowContext(ctx, q, mode, totalFens, batchSize, totalBatches).Scan(&jobID); err != nil {
		return "", err
	}
	log.Printf("Created job %s mode=%s totalFens=%d totalBatches=%d", jobID, mode, totalFens, totalBatches)
	return jobID, nil
}

// UpdateJobProgress increments completed_batches for a job and sets
// status to 'running' or 'completed' accordingly.
func UpdateJobProgress(ctx context.Context, jobID string) error {
	if db == nil {
		return nil
	}

	const q = `
        UPDATE jobs
        SET
            completed_batches = completed_batches + 1,
            status = CASE
                WHEN completed_batches + 1 >= total_batches THEN 'completed'
                ELSE 'running'
            END,
            updated_at = now()
        WHERE id = $1;
    `

	res, err := db.ExecContext(ctx, q, jobID)
	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		log.Printf("UpdateJobProgress: no job row found for id=%s", jobID)
	}

	return nil
}

// FindJobStatus fetches status and batch counts for a job id.
func FindJobStatus(ctx context.Context, jobID string) (models.JobStatus, error) {
	var js models.JobStatus
	if db == nil {
		return js, sql.ErrNoRows
	}

	const q = `
        SELECT id, status, completed_batches, total_batches
        FROM jobs
        WHERE id = $1;
    `

	row := db.QueryRowContext(ctx, q, jobID)
	if err := row.Scan(&js.ID, &js.Status, &js.CompletedBatches, &js.TotalBatches); err != nil {
		return models.JobStatus{}, err
	}

	return js, nil
}

func nullableIntToPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
