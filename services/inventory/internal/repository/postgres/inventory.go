package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avelis/shopworks/pkg/database"
	apperrors "github.com/avelis/shopworks/pkg/errors"
	"github.com/avelis/shopworks/services/inventory/internal/domain"
)

const ledgerColumns = "id, product_id, product_name, available_stock, reserved_stock, minimum_stock, created_at, updated_at"

// StockRepository implements repository.StockRepository using PostgreSQL.
type StockRepository struct {
	pool database.DBTX
}

// NewStockRepository creates a new PostgreSQL-backed stock repository.
func NewStockRepository(pool database.DBTX) *StockRepository {
	return &StockRepository{pool: pool}
}

func scanLedgerEntry(row pgx.Row) (*domain.StockLedgerEntry, error) {
	var e domain.StockLedgerEntry
	err := row.Scan(
		&e.ID,
		&e.ProductID,
		&e.ProductName,
		&e.AvailableStock,
		&e.ReservedStock,
		&e.MinimumStock,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new ledger entry for a product. A non-zero initial
// quantity is recorded as a stock_in movement in the same transaction.
func (r *StockRepository) Create(ctx context.Context, entry *domain.StockLedgerEntry) (*domain.StockLedgerEntry, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO stock_ledger (product_id, product_name, available_stock, reserved_stock, minimum_stock)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + ledgerColumns

	created, err := scanLedgerEntry(tx.QueryRow(ctx, query,
		entry.ProductID,
		entry.ProductName,
		entry.AvailableStock,
		entry.ReservedStock,
		entry.MinimumStock,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.AlreadyExists("stock ledger entry", "product_id", fmt.Sprintf("%d", entry.ProductID))
		}
		return nil, fmt.Errorf("create stock ledger entry: %w", err)
	}

	if created.AvailableStock > 0 {
		if err := insertMovement(ctx, tx, created.ProductID, domain.MovementStockIn, created.AvailableStock, nil, nil); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return created, nil
}

// GetByProduct retrieves the ledger entry for a product.
func (r *StockRepository) GetByProduct(ctx context.Context, productID int64) (*domain.StockLedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM stock_ledger WHERE product_id = $1`

	entry, err := scanLedgerEntry(r.pool.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get stock ledger entry: %w", err)
	}

	return entry, nil
}

// List returns ledger entries with pagination.
func (r *StockRepository) List(ctx context.Context, page, perPage int) ([]domain.StockLedgerEntry, int, error) {
	query := `
		SELECT ` + ledgerColumns + `, count(*) OVER() AS total_count
		FROM stock_ledger
		ORDER BY product_id ASC
		LIMIT $1 OFFSET $2`

	return r.listEntries(ctx, query, page, perPage)
}

// ListLowStock returns entries whose available stock is at or below the minimum.
func (r *StockRepository) ListLowStock(ctx context.Context, page, perPage int) ([]domain.StockLedgerEntry, int, error) {
	query := `
		SELECT ` + ledgerColumns + `, count(*) OVER() AS total_count
		FROM stock_ledger
		WHERE available_stock <= minimum_stock
		ORDER BY available_stock ASC, updated_at DESC
		LIMIT $1 OFFSET $2`

	return r.listEntries(ctx, query, page, perPage)
}

func (r *StockRepository) listEntries(ctx context.Context, query string, page, perPage int) ([]domain.StockLedgerEntry, int, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	rows, err := r.pool.Query(ctx, query, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock ledger entries: %w", err)
	}
	defer rows.Close()

	var (
		entries    []domain.StockLedgerEntry
		totalCount int
	)

	for rows.Next() {
		var e domain.StockLedgerEntry
		if err := rows.Scan(
			&e.ID,
			&e.ProductID,
			&e.ProductName,
			&e.AvailableStock,
			&e.ReservedStock,
			&e.MinimumStock,
			&e.CreatedAt,
			&e.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan stock ledger row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate stock ledger rows: %w", err)
	}

	if entries == nil {
		entries = []domain.StockLedgerEntry{}
	}

	return entries, totalCount, nil
}

// Delete removes the ledger entry for a product. Movement history is kept.
func (r *StockRepository) Delete(ctx context.Context, productID int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM stock_ledger WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("delete stock ledger entry: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("stock ledger entry", fmt.Sprintf("%d", productID))
	}

	return nil
}

// AdjustStock atomically applies a delta to available stock and records a
// movement with the absolute quantity. The resulting stock may be negative;
// the caller decides whether that is acceptable.
func (r *StockRepository) AdjustStock(ctx context.Context, productID int64, delta int, reason *string) (*domain.StockLedgerEntry, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		UPDATE stock_ledger
		SET available_stock = available_stock + $1, updated_at = NOW()
		WHERE product_id = $2
		RETURNING ` + ledgerColumns

	entry, err := scanLedgerEntry(tx.QueryRow(ctx, query, delta, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("adjust stock: %w", err)
	}

	movementType := domain.MovementStockIn
	quantity := delta
	if delta < 0 {
		movementType = domain.MovementStockOut
		quantity = -delta
	}

	if err := insertMovement(ctx, tx, productID, movementType, quantity, nil, reason); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return entry, nil
}

// Reserve atomically moves quantity from available to reserved stock.
// The conditional UPDATE is the only stock check: concurrent reservations
// cannot oversell because the WHERE clause re-evaluates under row lock.
func (r *StockRepository) Reserve(ctx context.Context, productID int64, quantity int, orderID *int64) (*domain.StockLedgerEntry, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		UPDATE stock_ledger
		SET available_stock = available_stock - $1,
		    reserved_stock = reserved_stock + $1,
		    updated_at = NOW()
		WHERE product_id = $2 AND available_stock >= $1
		RETURNING ` + ledgerColumns

	entry, err := scanLedgerEntry(tx.QueryRow(ctx, query, quantity, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.classifyConditionalMiss(ctx, productID)
		}
		return nil, false, fmt.Errorf("reserve stock: %w", err)
	}

	if err := insertMovement(ctx, tx, productID, domain.MovementReserved, quantity, orderID, nil); err != nil {
		return nil, false, err
	}

	if orderID != nil {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_reservations (order_id, product_id, quantity)
			VALUES ($1, $2, $3)`,
			*orderID, productID, quantity,
		)
		if err != nil {
			return nil, false, fmt.Errorf("insert order reservation: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit transaction: %w", err)
	}

	return entry, true, nil
}

// Release atomically moves quantity from reserved back to available stock.
func (r *StockRepository) Release(ctx context.Context, productID int64, quantity int, orderID *int64) (*domain.StockLedgerEntry, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		UPDATE stock_ledger
		SET available_stock = available_stock + $1,
		    reserved_stock = reserved_stock - $1,
		    updated_at = NOW()
		WHERE product_id = $2 AND reserved_stock >= $1
		RETURNING ` + ledgerColumns

	entry, err := scanLedgerEntry(tx.QueryRow(ctx, query, quantity, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.classifyConditionalMiss(ctx, productID)
		}
		return nil, false, fmt.Errorf("release stock: %w", err)
	}

	if err := insertMovement(ctx, tx, productID, domain.MovementReleased, quantity, orderID, nil); err != nil {
		return nil, false, err
	}

	if orderID != nil {
		// Mark the oldest matching unreleased reservation as released.
		_, err = tx.Exec(ctx, `
			UPDATE order_reservations
			SET released = TRUE
			WHERE id = (
				SELECT id FROM order_reservations
				WHERE order_id = $1 AND product_id = $2 AND quantity = $3 AND NOT released
				ORDER BY created_at ASC
				LIMIT 1
			)`,
			*orderID, productID, quantity,
		)
		if err != nil {
			return nil, false, fmt.Errorf("mark order reservation released: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit transaction: %w", err)
	}

	return entry, true, nil
}

// classifyConditionalMiss distinguishes "entry missing" from "quantity
// insufficient" after a conditional UPDATE matched no rows.
func (r *StockRepository) classifyConditionalMiss(ctx context.Context, productID int64) (*domain.StockLedgerEntry, bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stock_ledger WHERE product_id = $1)`, productID).Scan(&exists)
	if err != nil {
		return nil, false, fmt.Errorf("check stock ledger entry exists: %w", err)
	}
	if !exists {
		return nil, false, apperrors.ErrNotFound
	}
	return nil, false, nil
}

// ActiveReservations returns the unreleased reservation rows for an order.
func (r *StockRepository) ActiveReservations(ctx context.Context, orderID int64) ([]domain.OrderReservation, error) {
	query := `
		SELECT id, order_id, product_id, quantity, released, created_at
		FROM order_reservations
		WHERE order_id = $1 AND NOT released
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list active reservations: %w", err)
	}
	defer rows.Close()

	var reservations []domain.OrderReservation
	for rows.Next() {
		var res domain.OrderReservation
		if err := rows.Scan(
			&res.ID,
			&res.OrderID,
			&res.ProductID,
			&res.Quantity,
			&res.Released,
			&res.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan reservation row: %w", err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservation rows: %w", err)
	}

	if reservations == nil {
		reservations = []domain.OrderReservation{}
	}

	return reservations, nil
}

// ListMovements returns the newest movements for a product, up to limit.
func (r *StockRepository) ListMovements(ctx context.Context, productID int64, limit int) ([]domain.StockMovement, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, product_id, movement_type, quantity, order_id, reason, created_at
		FROM stock_movements
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()

	var movements []domain.StockMovement
	for rows.Next() {
		var m domain.StockMovement
		if err := rows.Scan(
			&m.ID,
			&m.ProductID,
			&m.MovementType,
			&m.Quantity,
			&m.OrderID,
			&m.Reason,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock movement row: %w", err)
		}
		movements = append(movements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock movement rows: %w", err)
	}

	if movements == nil {
		movements = []domain.StockMovement{}
	}

	return movements, nil
}

func insertMovement(ctx context.Context, tx pgx.Tx, productID int64, movementType string, quantity int, orderID *int64, reason *string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO stock_movements (id, product_id, movement_type, quantity, order_id, reason)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)`,
		productID, movementType, quantity, orderID, reason,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}
