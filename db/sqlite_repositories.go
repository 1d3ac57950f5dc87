package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Settj76/ecom/internal/util"
	"github.com/Settj76/ecom/models"

	"go.uber.org/zap"
)

// SQLiteEventLogRepository implements the EventLogRepository interface for SQLite
type SQLiteEventLogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteEventLogRepository creates a new SQLiteEventLogRepository
func NewSQLiteEventLogRepository(db *sql.DB, logger *zap.Logger) *SQLiteEventLogRepository {
	return &SQLiteEventLogRepository{db: db, logger: logger}
}

// Close closes the database connection
func (r *SQLiteEventLogRepository) Close() error {
	return r.db.Close()
}

// Create creates a new event log
func (r *SQLiteEventLogRepository) Create(ctx context.Context, eventLog *models.EventLog) error {
	if eventLog.ID == "" {
		eventLog.ID = GenerateID()
	}
	if eventLog.CreatedAt.IsZero() {
		eventLog.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO event_logs (id, type, description, actor_id, record_id, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	err := util.RetryOnLock(ctx, r.logger, func() error {
		_, err := r.db.ExecContext(ctx, query,
			eventLog.ID, string(eventLog.Type), eventLog.Description,
			nullableString(eventLog.ActorID), nullableString(eventLog.RecordID),
			eventLog.CreatedAt.UTC(),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("error inserting event log: %w", err)
	}

	return nil
}

// FindLatest finds the latest event logs
func (r *SQLiteEventLogRepository) FindLatest(ctx context.Context, limit int) ([]*models.EventLog, error) {
	query := `SELECT id, type, description, actor_id, record_id, created_at
			  FROM event_logs ORDER BY created_at DESC, rowid DESC LIMIT ?`
	return r.query(ctx, query, limit)
}

// FindAllByRecordID finds all event logs touching one backend record
func (r *SQLiteEventLogRepository) FindAllByRecordID(ctx context.Context, recordID string) ([]*models.EventLog, error) {
	query := `SELECT id, type, description, actor_id, record_id, created_at
			  FROM event_logs WHERE record_id = ? ORDER BY created_at DESC, rowid DESC`
	return r.query(ctx, query, recordID)
}

func (r *SQLiteEventLogRepository) query(ctx context.Context, query string, args ...any) ([]*models.EventLog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying event logs: %w", err)
	}
	defer rows.Close()

	logs := []*models.EventLog{}
	for rows.Next() {
		log, err := scanEventLog(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning event log: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event logs: %w", err)
	}

	return logs, nil
}

// scanEventLog reads id, type, description, actor_id, record_id, created_at.
func scanEventLog(rows *sql.Rows) (*models.EventLog, error) {
	var log models.EventLog
	var eventType string
	var actorID, recordID sql.NullString

	if err := rows.Scan(&log.ID, &eventType, &log.Description, &actorID, &recordID, &log.CreatedAt); err != nil {
		return nil, err
	}
	log.Type = models.EEventLogType(eventType)
	log.ActorID = actorID.String
	log.RecordID = recordID.String
	return &log, nil
}

// SQLiteCartRepository implements the CartRepository interface for SQLite
type SQLiteCartRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteCartRepository creates a new SQLiteCartRepository
func NewSQLiteCartRepository(db *sql.DB, logger *zap.Logger) *SQLiteCartRepository {
	return &SQLiteCartRepository{db: db, logger: logger}
}

// Close closes the database connection
func (r *SQLiteCartRepository) Close() error {
	return r.db.Close()
}

// FindByCartID returns the lines of a cart, oldest first
func (r *SQLiteCartRepository) FindByCartID(ctx context.Context, cartID string) ([]*models.CartLine, error) {
	query := `SELECT cart_id, product_id, quantity, created_at, updated_at
			  FROM cart_lines WHERE cart_id = ? ORDER BY created_at, rowid`

	rows, err := r.db.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("error querying cart lines: %w", err)
	}
	defer rows.Close()

	lines := []*models.CartLine{}
	for rows.Next() {
		var line models.CartLine
		if err := rows.Scan(&line.CartID, &line.ProductID, &line.Quantity, &line.CreatedAt, &line.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning cart line: %w", err)
		}
		lines = append(lines, &line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart lines: %w", err)
	}
	return lines, nil
}

// FindLine returns one line or ErrNotFound
func (r *SQLiteCartRepository) FindLine(ctx context.Context, cartID, productID string) (*models.CartLine, error) {
	query := `SELECT cart_id, product_id, quantity, created_at, updated_at
			  FROM cart_lines WHERE cart_id = ? AND product_id = ?`

	var line models.CartLine
	err := r.db.QueryRowContext(ctx, query, cartID, productID).
		Scan(&line.CartID, &line.ProductID, &line.Quantity, &line.CreatedAt, &line.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error finding cart line: %w", err)
	}
	return &line, nil
}

// Upsert stores the line, replacing the quantity of an existing one
func (r *SQLiteCartRepository) Upsert(ctx context.Context, line *models.CartLine) (*models.CartLine, error) {
	now := time.Now().UTC()
	if line.CreatedAt.IsZero() {
		line.CreatedAt = now
	}
	line.UpdatedAt = now

	query := `INSERT INTO cart_lines (cart_id, product_id, quantity, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?)
			  ON CONFLICT(cart_id, product_id) DO UPDATE SET
				quantity = excluded.quantity,
				updated_at = excluded.updated_at`

	err := util.RetryOnLock(ctx, r.logger, func() error {
		_, err := r.db.ExecContext(ctx, query,
			line.CartID, line.ProductID, line.Quantity, line.CreatedAt.UTC(), line.UpdatedAt)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error upserting cart line: %w", err)
	}
	return r.FindLine(ctx, line.CartID, line.ProductID)
}

// DeleteLine removes one product from a cart
func (r *SQLiteCartRepository) DeleteLine(ctx context.Context, cartID, productID string) error {
	return util.RetryOnLock(ctx, r.logger, func() error {
		res, err := r.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE cart_id = ? AND product_id = ?`, cartID, productID)
		if err != nil {
			return fmt.Errorf("error deleting cart line: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// DeleteCart removes every line of a cart
func (r *SQLiteCartRepository) DeleteCart(ctx context.Context, cartID string) error {
	return util.RetryOnLock(ctx, r.logger, func() error {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE cart_id = ?`, cartID); err != nil {
			return fmt.Errorf("error deleting cart: %w", err)
		}
		return nil
	})
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
