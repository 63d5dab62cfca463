package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_scheduler/internal/repository/base"
)

// DefaultTxAttempts сколько раз повторять транзакцию при конфликте сериализации
const DefaultTxAttempts = 3

// TxManager выполняет функции в транзакции, передавая её через контекст
type TxManager struct {
	pool        *pgxpool.Pool
	logger      *zap.Logger
	maxAttempts int
}

// NewTxManager создаёт менеджер транзакций
func NewTxManager(pool *pgxpool.Pool, logger *zap.Logger) *TxManager {
	return &TxManager{
		pool:        pool,
		logger:      logger,
		maxAttempts: DefaultTxAttempts,
	}
}

// DoSerializable выполняет fn в транзакции с уровнем SERIALIZABLE.
// При конфликте сериализации или дедлоке транзакция повторяется,
// после исчерпания попыток возвращается ErrTxConflict.
// Если в контексте уже есть транзакция, fn выполняется в ней.
func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := base.TxFromContext(ctx); ok {
		return fn(ctx)
	}

	for attempt := 1; ; attempt++ {
		err := m.runOnce(ctx, fn)
		if err == nil {
			return nil
		}

		if !isRetryable(err) {
			return err
		}
		if attempt >= m.maxAttempts {
			return fmt.Errorf("%w: %d attempts: %v", ErrTxConflict, attempt, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		m.logger.Debug("Retrying serializable transaction",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}

func (m *TxManager) runOnce(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		// после Commit откат вернёт ErrTxClosed, это нормально
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			m.logger.Warn("Failed to rollback transaction", zap.Error(rbErr))
		}
	}()

	if err := fn(base.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func isRetryable(err error) bool {
	switch base.PgErrorCode(err) {
	case pgSerializationFailure, pgDeadlockDetected:
		return true
	}
	return false
}
