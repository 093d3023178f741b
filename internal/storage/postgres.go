package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/georepute/domain-intelligence/internal/domain"
)

// ErrJobNotFound is returned when a job ID has no row.
var ErrJobNotFound = fmt.Errorf("job not found")

// JobStore persists job rows, live progress, and terminal results.
type JobStore interface {
	CreateJob(ctx context.Context, req domain.AnalysisRequest) error
	UpdateProgress(ctx context.Context, jobID, step, status string, stepPercentage, overallPercentage int) error
	CompleteJob(ctx context.Context, jobID string, result *domain.AnalysisResult) error
	FailJob(ctx context.Context, jobID, message string) error
	GetJob(ctx context.Context, jobID string) (*domain.JobStatusResponse, error)
}

// PostgresStore is the pgx-backed JobStore.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore connects a pgx pool to the job database.
func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// CreateJob inserts the job row in processing state with empty progress.
func (s *PostgresStore) CreateJob(ctx context.Context, req domain.AnalysisRequest) error {
	progress, err := json.Marshal(domain.JobProgress{Steps: map[string]domain.StepState{}})
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO analysis_jobs (job_id, domain_url, domain_name, user_id, status, progress)
		 VALUES ($1, $2, $3, $4, 'processing', $5)
		 ON CONFLICT (job_id) DO UPDATE SET
		   domain_url = EXCLUDED.domain_url, status = 'processing',
		   progress = EXCLUDED.progress, result = NULL, error_message = NULL,
		   updated_at = NOW()`,
		req.JobID, req.DomainURL, req.DomainName, req.UserID, progress)
	return err
}

// UpdateProgress merges one stage update into the stored progress record.
// The current record is re-read inside the transaction before merging, and
// the overall percentage never decreases.
func (s *PostgresStore) UpdateProgress(ctx context.Context, jobID, step, status string, stepPercentage, overallPercentage int) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx,
		`SELECT progress FROM analysis_jobs WHERE job_id = $1 FOR UPDATE`, jobID,
	).Scan(&raw)
	if err == pgx.ErrNoRows {
		return ErrJobNotFound
	}
	if err != nil {
		return err
	}

	var progress domain.JobProgress
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &progress); err != nil {
			progress = domain.JobProgress{}
		}
	}
	if progress.Steps == nil {
		progress.Steps = map[string]domain.StepState{}
	}

	progress.CurrentStep = step
	if overallPercentage > progress.Percentage {
		progress.Percentage = overallPercentage
	}
	progress.Steps[step] = domain.StepState{
		Status:     status,
		Percentage: stepPercentage,
		UpdatedAt:  time.Now().UTC(),
	}

	merged, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE analysis_jobs SET progress = $2, updated_at = NOW() WHERE job_id = $1`,
		jobID, merged); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CompleteJob writes the terminal result document.
func (s *PostgresStore) CompleteJob(ctx context.Context, jobID string, result *domain.AnalysisResult) error {
	blob, err := json.Marshal(result)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx,
		`UPDATE analysis_jobs
		 SET status = 'completed', result = $2, completed_at = NOW(), updated_at = NOW()
		 WHERE job_id = $1`,
		jobID, blob)
	return err
}

// FailJob marks the job failed. Progress written so far stays visible to
// the poller; no partial result is persisted.
func (s *PostgresStore) FailJob(ctx context.Context, jobID, message string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE analysis_jobs
		 SET status = 'failed', error_message = $2, updated_at = NOW()
		 WHERE job_id = $1`,
		jobID, message)
	return err
}

// GetJob reads the full job row for the status API.
func (s *PostgresStore) GetJob(ctx context.Context, jobID string) (*domain.JobStatusResponse, error) {
	var (
		resp        domain.JobStatusResponse
		progressRaw []byte
		resultRaw   []byte
		errMessage  *string
	)
	err := s.db.QueryRow(ctx,
		`SELECT job_id, status, progress, result, error_message, updated_at
		 FROM analysis_jobs WHERE job_id = $1`, jobID,
	).Scan(&resp.JobID, &resp.Status, &progressRaw, &resultRaw, &errMessage, &resp.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(progressRaw) > 0 {
		_ = json.Unmarshal(progressRaw, &resp.Progress)
	}
	if len(resultRaw) > 0 {
		var result domain.AnalysisResult
		if err := json.Unmarshal(resultRaw, &result); err == nil {
			resp.Result = &result
		}
	}
	if errMessage != nil {
		resp.ErrorMessage = *errMessage
	}
	return &resp, nil
}
