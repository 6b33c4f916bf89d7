package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/traxyt/internal/models"
	"github.com/desertthunder/traxyt/internal/shared"
)

const conversionColumns = `id, sequence, run_id, playlist_url, found, total, results, created_at`

// ConversionRepository persists finished conversion runs and their per-track search log.
type ConversionRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewConversionRepository creates a new ConversionRepository with the given database connection
func NewConversionRepository(db *sql.DB) *ConversionRepository {
	return &ConversionRepository{db: db, now: time.Now}
}

// Create stores result with a generated ID, sequence and timestamp.
//
// The conversion row and its search log rows are written in one transaction.
func (r *ConversionRepository) Create(runID string, result *models.ConversionResult) (*models.StoredResult, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: nil result", shared.ErrInvalidInput)
	}

	payload, err := json.Marshal(result.Results)
	if err != nil {
		return nil, fmt.Errorf("failed to encode results: %w", err)
	}

	sequence, err := NextSequence(r.db, "conversions")
	if err != nil {
		return nil, fmt.Errorf("failed to generate sequence: %w", err)
	}

	stored := &models.StoredResult{
		ID:        shared.GenerateID(),
		Sequence:  sequence,
		RunID:     runID,
		Result:    *result,
		CreatedAt: r.now().UTC(),
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO conversions (id, sequence, run_id, playlist_url, found, total, results, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query,
		stored.ID,
		stored.Sequence,
		stored.RunID,
		result.PlaylistURL,
		result.Found,
		result.Total,
		string(payload),
		stored.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert conversion: %w", err)
	}

	logQuery := `
		INSERT INTO search_log (conversion_id, position, query, status, video_id, duration_diff)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for _, outcome := range result.Results {
		var videoID sql.NullString
		if outcome.VideoID != "" {
			videoID = sql.NullString{String: outcome.VideoID, Valid: true}
		}
		if _, err := tx.Exec(logQuery, stored.ID, outcome.Index, outcome.Query, string(outcome.Status), videoID, outcome.DurationDiff); err != nil {
			return nil, fmt.Errorf("failed to insert search log: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit conversion: %w", err)
	}
	return stored, nil
}

// Get retrieves a stored conversion by ID, excluding soft-deleted ones
func (r *ConversionRepository) Get(id string) (*models.StoredResult, error) {
	query := `SELECT ` + conversionColumns + ` FROM conversions WHERE id = ? AND deleted_at IS NULL`
	return scanConversion(r.db.QueryRow(query, id))
}

// Latest retrieves the most recently stored conversion.
//
// Returns [shared.ErrResultNotFound] when nothing has been stored yet.
func (r *ConversionRepository) Latest() (*models.StoredResult, error) {
	query := `
		SELECT ` + conversionColumns + `
		FROM conversions
		WHERE deleted_at IS NULL
		ORDER BY sequence DESC
		LIMIT 1
	`
	return scanConversion(r.db.QueryRow(query))
}

// List retrieves up to limit stored conversions, newest first. A non-positive limit returns all of them.
func (r *ConversionRepository) List(limit int) ([]*models.StoredResult, error) {
	query := `SELECT ` + conversionColumns + ` FROM conversions WHERE deleted_at IS NULL ORDER BY sequence DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversions: %w", err)
	}
	defer rows.Close()

	var results []*models.StoredResult
	for rows.Next() {
		stored, err := scanConversion(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, stored)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return results, nil
}

// Delete soft-deletes a stored conversion by ID
func (r *ConversionRepository) Delete(id string) error {
	query := `
		UPDATE conversions
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, r.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete conversion: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrResultNotFound, id)
	}
	return nil
}

// SearchLog returns the lookups recorded for a stored conversion, in track order.
func (r *ConversionRepository) SearchLog(id string) ([]models.SearchLogEntry, error) {
	if _, err := r.Get(id); err != nil {
		return nil, err
	}

	query := `
		SELECT position, query, status, video_id, duration_diff
		FROM search_log
		WHERE conversion_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query search log: %w", err)
	}
	defer rows.Close()

	var entries []models.SearchLogEntry
	for rows.Next() {
		var (
			entry   models.SearchLogEntry
			status  string
			videoID sql.NullString
		)
		if err := rows.Scan(&entry.Position, &entry.Query, &status, &videoID, &entry.DurationDiff); err != nil {
			return nil, fmt.Errorf("failed to scan search log: %w", err)
		}
		entry.Status = models.Status(status)
		entry.VideoID = videoID.String
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanConversion reads one conversions row from a [sql.Row] or [sql.Rows]
func scanConversion(row scanner) (*models.StoredResult, error) {
	var (
		stored      models.StoredResult
		playlistURL sql.NullString
		payload     string
	)

	err := row.Scan(
		&stored.ID,
		&stored.Sequence,
		&stored.RunID,
		&playlistURL,
		&stored.Result.Found,
		&stored.Result.Total,
		&payload,
		&stored.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan conversion: %w", err)
	}

	if playlistURL.Valid {
		stored.Result.PlaylistURL = &playlistURL.String
	}
	if err := json.Unmarshal([]byte(payload), &stored.Result.Results); err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}
	return &stored, nil
}
