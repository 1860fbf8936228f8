package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/philvuai/bnk/internal/common"
	"github.com/philvuai/bnk/internal/model"
)

// Upload is a stored document: the original file metadata plus the extracted
// text the pipeline ran over. Raw file bytes are not retained.
type Upload struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	MimeType  string    `json:"mime_type"`
	Text      string    `json:"-"`
	SizeBytes int64     `json:"size_bytes"`
}

// SaveUpload stores a document's metadata and extracted text.
func (s *SQLiteStorage) SaveUpload(ctx context.Context, upload *Upload) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if upload == nil {
		return fmt.Errorf("%w: upload", ErrNilParameter)
	}
	if err := validateString(upload.ID, "upload.ID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO uploads (id, file_name, mime_type, size_bytes, extracted_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		upload.ID, upload.FileName, upload.MimeType, upload.SizeBytes, upload.Text, upload.CreatedAt.UTC())
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("%w: upload %s", common.ErrDuplicateEntry, upload.ID)
		}
		return fmt.Errorf("failed to save upload: %w", err)
	}
	return nil
}

// GetUpload retrieves a stored document by ID.
func (s *SQLiteStorage) GetUpload(ctx context.Context, id string) (*Upload, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var upload Upload
	err := s.db.QueryRowContext(ctx, `
		SELECT id, file_name, mime_type, size_bytes, extracted_text, created_at
		FROM uploads WHERE id = ?`, id).
		Scan(&upload.ID, &upload.FileName, &upload.MimeType, &upload.SizeBytes, &upload.Text, &upload.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: upload %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get upload: %w", err)
	}
	return &upload, nil
}

// ListUploads returns stored documents newest first.
func (s *SQLiteStorage) ListUploads(ctx context.Context, limit int) ([]Upload, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_name, mime_type, size_bytes, created_at
		FROM uploads ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var uploads []Upload
	for rows.Next() {
		var u Upload
		if err := rows.Scan(&u.ID, &u.FileName, &u.MimeType, &u.SizeBytes, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

// SaveAnalysis stores the analysis result for a document, replacing any
// previous result.
func (s *SQLiteStorage) SaveAnalysis(ctx context.Context, result *model.AnalysisResult) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("%w: result", ErrNilParameter)
	}
	if err := validateString(result.DocumentID, "result.DocumentID"); err != nil {
		return err
	}

	transactions, summary, err := encodeAnalysis(result)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (document_id, source, transactions, summary, created_at, updated_at, taxonomy_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			source = excluded.source,
			transactions = excluded.transactions,
			summary = excluded.summary,
			updated_at = excluded.updated_at`,
		result.DocumentID, string(result.Source), transactions, summary,
		result.CreatedAt.UTC(), result.UpdatedAt.UTC(), model.TaxonomyVersion)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// GetAnalysis retrieves a document's analysis result.
func (s *SQLiteStorage) GetAnalysis(ctx context.Context, documentID string) (*model.AnalysisResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(documentID, "documentID"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT document_id, source, transactions, summary, created_at, updated_at
		FROM analyses WHERE document_id = ?`, documentID)
	return scanAnalysis(row, documentID)
}

// UpdateTransactionCategory reassigns one transaction's category and
// recomputes the summary, atomically. The stored summary is always derived
// from the stored transaction list; it is never patched in place.
func (s *SQLiteStorage) UpdateTransactionCategory(ctx context.Context, documentID string, index int, category model.Category) (*model.AnalysisResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(documentID, "documentID"); err != nil {
		return nil, err
	}
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		SELECT document_id, source, transactions, summary, created_at, updated_at
		FROM analyses WHERE document_id = ?`, documentID)
	result, err := scanAnalysis(row, documentID)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(result.Transactions) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidIndex, index, len(result.Transactions))
	}

	result.Transactions[index].Category = category
	result.Summary = model.Summarize(result.Transactions)
	result.UpdatedAt = time.Now().UTC()

	transactions, summary, err := encodeAnalysis(result)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE analyses SET transactions = ?, summary = ?, updated_at = ?
		WHERE document_id = ?`,
		transactions, summary, result.UpdatedAt, documentID); err != nil {
		return nil, fmt.Errorf("failed to update analysis: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit category update: %w", err)
	}
	return result, nil
}

func encodeAnalysis(result *model.AnalysisResult) (transactions, summary []byte, err error) {
	transactions, err = json.Marshal(result.Transactions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode transactions: %w", err)
	}
	summary, err = json.Marshal(result.Summary)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode summary: %w", err)
	}
	return transactions, summary, nil
}

func scanAnalysis(row *sql.Row, documentID string) (*model.AnalysisResult, error) {
	var result model.AnalysisResult
	var source string
	var transactions, summary []byte

	err := row.Scan(&result.DocumentID, &source, &transactions, &summary,
		&result.CreatedAt, &result.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: analysis for %s", common.ErrNotFound, documentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	result.Source = model.ResultSource(source)
	if err := json.Unmarshal(transactions, &result.Transactions); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}
	if err := json.Unmarshal(summary, &result.Summary); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}
	return &result, nil
}
