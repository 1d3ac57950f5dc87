package db

import (
	"context"
	"errors"

	"github.com/Settj76/ecom/models"

	"go.uber.org/zap"
)

// ErrManagerStopped is returned for operations submitted after Stop.
var ErrManagerStopped = errors.New("database manager stopped")

// Operation represents a database operation that needs to be executed
type Operation struct {
	Execute func() error
	Result  chan error
}

// OperationWithResult represents a database operation that returns a result
type OperationWithResult struct {
	Execute func() (interface{}, error)
	Result  chan OperationResult
}

// OperationResult contains the result of an operation
type OperationResult struct {
	Data  interface{}
	Error error
}

// DBManager serializes writes to the local store. SQLite allows one writer at
// a time, so cart and activity writes coming from concurrent requests are
// funneled through a single goroutine.
type DBManager struct {
	opQueue       chan Operation
	resultOpQueue chan OperationWithResult
	stopping      chan struct{}
	done          chan struct{}
	logger        *zap.Logger
}

// NewDBManager creates a new database manager
func NewDBManager(logger *zap.Logger) *DBManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &DBManager{
		opQueue:       make(chan Operation, 100),
		resultOpQueue: make(chan OperationWithResult, 100),
		stopping:      make(chan struct{}),
		done:          make(chan struct{}),
		logger:        logger,
	}

	// Start the worker goroutine
	go m.worker()
	logger.Debug("database access manager started")

	return m
}

// worker processes operations one at a time
func (m *DBManager) worker() {
	defer close(m.done)
	for {
		select {
		case op := <-m.opQueue:
			op.Result <- op.Execute()
		case op := <-m.resultOpQueue:
			data, err := op.Execute()
			op.Result <- OperationResult{Data: data, Error: err}
		case <-m.stopping:
			return
		}
	}
}

// ExecuteOperation runs execute on the worker and waits for it
func (m *DBManager) ExecuteOperation(ctx context.Context, execute func() error) error {
	resultChan := make(chan error, 1)
	select {
	case m.opQueue <- Operation{Execute: execute, Result: resultChan}:
	case <-m.stopping:
		return ErrManagerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-resultChan:
		return err
	case <-m.done:
		return ErrManagerStopped
	}
}

// ExecuteOperationWithResult runs execute on the worker and returns its result
func (m *DBManager) ExecuteOperationWithResult(ctx context.Context, execute func() (interface{}, error)) (interface{}, error) {
	resultChan := make(chan OperationResult, 1)
	select {
	case m.resultOpQueue <- OperationWithResult{Execute: execute, Result: resultChan}:
	case <-m.stopping:
		return nil, ErrManagerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case result := <-resultChan:
		return result.Data, result.Error
	case <-m.done:
		return nil, ErrManagerStopped
	}
}

// Stop stops the database manager and waits for the worker to exit
func (m *DBManager) Stop() {
	select {
	case <-m.stopping:
	default:
		close(m.stopping)
	}
	<-m.done
}

// Methods for specific repository operations

// CreateEventLog serializes access to event log creation
func (m *DBManager) CreateEventLog(ctx context.Context, repo EventLogRepository, eventLog *models.EventLog) error {
	return m.ExecuteOperation(ctx, func() error {
		return repo.Create(ctx, eventLog)
	})
}

// MergeCartLine adds line.Quantity to any stored quantity for the same cart
// and product, capped at limit. The read and the write run as one queued
// operation so concurrent adds cannot lose an increment.
func (m *DBManager) MergeCartLine(ctx context.Context, repo CartRepository, line *models.CartLine, limit int) (*models.CartLine, error) {
	result, err := m.ExecuteOperationWithResult(ctx, func() (interface{}, error) {
		merged := *line
		existing, err := repo.FindLine(ctx, line.CartID, line.ProductID)
		switch {
		case err == nil:
			merged.Quantity = existing.Quantity + line.Quantity
			merged.CreatedAt = existing.CreatedAt
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}
		if merged.Quantity > limit {
			merged.Quantity = limit
		}
		return repo.Upsert(ctx, &merged)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.CartLine), nil
}

// DeleteCartLine serializes access to cart line removal
func (m *DBManager) DeleteCartLine(ctx context.Context, repo CartRepository, cartID, productID string) error {
	return m.ExecuteOperation(ctx, func() error {
		return repo.DeleteLine(ctx, cartID, productID)
	})
}

// DeleteCart serializes access to cart removal
func (m *DBManager) DeleteCart(ctx context.Context, repo CartRepository, cartID string) error {
	return m.ExecuteOperation(ctx, func() error {
		return repo.DeleteCart(ctx, cartID)
	})
}
