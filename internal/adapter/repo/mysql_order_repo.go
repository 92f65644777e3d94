package repo

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	domain "github.com/mahmudalamin/zbooksapp-sub000/internal/entity"
	"github.com/mahmudalamin/zbooksapp-sub000/internal/usecase"
)

const mysqlErrDupEntry = 1062

type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

var _ usecase.OrderRepo = (*MySQLOrderRepo)(nil)

// CreateOrderGraph writes the address snapshot, order, items and initial
// history entry, and decrements stock per line in one transaction, all or
// nothing. Stock is re-checked at decrement time via the conditional UPDATE,
// so two racing checkouts serialize on the product row and the loser fails
// here even if it passed intake validation.
func (r *MySQLOrderRepo) CreateOrderGraph(ctx context.Context, o *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapDBErr(err)
	}
	defer tx.Rollback()

	a := o.Address
	if _, err := tx.ExecContext(ctx, `
INSERT INTO addresses (id,first_name,last_name,email,phone,address1,address2,city,state,postal_code,country,created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		a.ID, a.FirstName, a.LastName, a.Email, a.Phone, a.Address1, a.Address2,
		a.City, a.State, a.PostalCode, a.Country, o.CreatedAt,
	); err != nil {
		return mapDBErr(err)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO orders (id,order_number,user_id,email,phone,status,payment_status,payment_method,
                    subtotal,shipping_cost,tax_amount,discount_amount,total,currency,
                    shipping_address_id,billing_address_id,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		o.ID, o.OrderNumber, o.UserID, o.Email, o.Phone, o.Status, o.PaymentStatus, o.PaymentMethod,
		o.Subtotal, o.ShippingCost, o.TaxAmount, o.DiscountAmount, o.Total, o.Currency,
		o.ShippingAddrID, o.BillingAddrID, o.CreatedAt, o.UpdatedAt,
	); err != nil {
		return mapDBErr(err)
	}

	for _, it := range o.Items {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO order_items (id,order_id,product_id,product_name,quantity,price,total)
VALUES (?,?,?,?,?,?,?)`,
			it.ID, it.OrderID, it.ProductID, it.ProductName, it.Quantity, it.Price, it.Total,
		); err != nil {
			return mapDBErr(err)
		}
	}

	for _, h := range o.History {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO order_history (id,order_id,status,notes,created_at)
VALUES (?,?,?,?,?)`,
			h.ID, h.OrderID, h.Status, h.Notes, h.CreatedAt,
		); err != nil {
			return mapDBErr(err)
		}
	}

	for _, it := range o.Items {
		if err := decrementStock(ctx, tx, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return mapDBErr(err)
	}
	return nil
}

// decrementStock conditionally takes quantity off the product row. The
// WHERE stock >= ? guard keeps stock non-negative under concurrent commits;
// zero rows affected means either not enough stock or a product deleted
// since validation, disambiguated with a follow-up read inside the tx.
func decrementStock(ctx context.Context, tx *sql.Tx, productID string, qty int) error {
	res, err := tx.ExecContext(ctx, `
UPDATE products SET stock = stock - ?, updated_at = NOW() WHERE id = ? AND stock >= ?`,
		qty, productID, qty,
	)
	if err != nil {
		return mapDBErr(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return mapDBErr(err)
	}
	if rows > 0 {
		return nil
	}

	var name string
	var stock int
	err = tx.QueryRowContext(ctx, `SELECT name, stock FROM products WHERE id = ?`, productID).
		Scan(&name, &stock)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("product %s: %w", productID, usecase.ErrProductNotFound)
	}
	if err != nil {
		return mapDBErr(err)
	}
	return &usecase.IntakeError{
		Code:    usecase.CodeInsufficientStock,
		Message: fmt.Sprintf("Insufficient stock for %s. Only %d available.", name, stock),
	}
}

func (r *MySQLOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.getOne(ctx, `WHERE o.id = ?`, id)
}

func (r *MySQLOrderRepo) getOne(ctx context.Context, where string, args ...any) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, selectOrder+where, args...)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, usecase.ErrNotFound
	}
	if err != nil {
		return nil, mapDBErr(err)
	}
	if err := r.attachChildren(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *MySQLOrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, selectOrder+`WHERE o.user_id = ? ORDER BY o.created_at DESC`, userID)
	if err != nil {
		return nil, mapDBErr(err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, mapDBErr(err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBErr(err)
	}
	for i := range orders {
		if err := r.attachChildren(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// UpdateStatusIf writes the new status and appends a history row only when
// the current status still matches from. rows == 0 -> guard lost (or gone).
func (r *MySQLOrderRepo) UpdateStatusIf(ctx context.Context, id string, from, to domain.Status, notes string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, mapDBErr(err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
UPDATE orders SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`,
		to, id, from,
	)
	if err != nil {
		return false, mapDBErr(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, mapDBErr(err)
	}
	if rows == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO order_history (id,order_id,status,notes,created_at)
VALUES (UUID(),?,?,?,NOW())`,
		id, to, notes,
	); err != nil {
		return false, mapDBErr(err)
	}

	if err := tx.Commit(); err != nil {
		return false, mapDBErr(err)
	}
	return true, nil
}

func (r *MySQLOrderRepo) Touch(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE orders SET updated_at = NOW() WHERE id = ?`, id)
	return mapDBErr(err)
}

func (r *MySQLOrderRepo) UpdatePaymentStatus(ctx context.Context, id string, ps domain.PaymentStatus) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders SET payment_status = ?, updated_at = NOW() WHERE id = ?`,
		ps, id,
	)
	if err != nil {
		return mapDBErr(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return mapDBErr(err)
	}
	if rows == 0 {
		return usecase.ErrNotFound
	}
	return nil
}

const selectOrder = `
SELECT o.id,o.order_number,o.user_id,o.email,o.phone,o.status,o.payment_status,o.payment_method,
       o.subtotal,o.shipping_cost,o.tax_amount,o.discount_amount,o.total,o.currency,
       o.shipping_address_id,o.billing_address_id,o.created_at,o.updated_at
FROM orders o `

type rowScanner interface{ Scan(dest ...any) error }

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Email, &o.Phone, &o.Status, &o.PaymentStatus, &o.PaymentMethod,
		&o.Subtotal, &o.ShippingCost, &o.TaxAmount, &o.DiscountAmount, &o.Total, &o.Currency,
		&o.ShippingAddrID, &o.BillingAddrID, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *MySQLOrderRepo) attachChildren(ctx context.Context, o *domain.Order) error {
	items, err := r.loadItems(ctx, o.ID)
	if err != nil {
		return err
	}
	o.Items = items

	history, err := r.loadHistory(ctx, o.ID)
	if err != nil {
		return err
	}
	o.History = history

	addr, err := r.loadAddress(ctx, o.ShippingAddrID)
	if err != nil {
		return err
	}
	o.Address = addr
	return nil
}

func (r *MySQLOrderRepo) loadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id,order_id,product_id,product_name,quantity,price,total
FROM order_items WHERE order_id = ?`, orderID)
	if err != nil {
		return nil, mapDBErr(err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.Price, &it.Total); err != nil {
			return nil, mapDBErr(err)
		}
		items = append(items, it)
	}
	return items, mapDBErr(rows.Err())
}

func (r *MySQLOrderRepo) loadHistory(ctx context.Context, orderID string) ([]domain.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id,order_id,status,notes,created_at
FROM order_history WHERE order_id = ? ORDER BY created_at DESC`, orderID)
	if err != nil {
		return nil, mapDBErr(err)
	}
	defer rows.Close()

	var history []domain.HistoryEntry
	for rows.Next() {
		var h domain.HistoryEntry
		var notes sql.NullString
		if err := rows.Scan(&h.ID, &h.OrderID, &h.Status, &notes, &h.CreatedAt); err != nil {
			return nil, mapDBErr(err)
		}
		h.Notes = notes.String
		history = append(history, h)
	}
	return history, mapDBErr(rows.Err())
}

func (r *MySQLOrderRepo) loadAddress(ctx context.Context, id string) (*domain.Address, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id,first_name,last_name,email,phone,address1,address2,city,state,postal_code,country
FROM addresses WHERE id = ?`, id)
	var a domain.Address
	err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.Phone,
		&a.Address1, &a.Address2, &a.City, &a.State, &a.PostalCode, &a.Country)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapDBErr(err)
	}
	return &a, nil
}

// mapDBErr classifies driver errors into the use-case taxonomy: duplicate
// order numbers become a retryable conflict, dead connections become 503s.
func mapDBErr(err error) error {
	if err == nil {
		return nil
	}
	var my *mysql.MySQLError
	if errors.As(err, &my) && my.Number == mysqlErrDupEntry {
		return fmt.Errorf("%w: %v", usecase.ErrDuplicateOrderNumber, err)
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return fmt.Errorf("%w: %v", usecase.ErrUnavailable, err)
	}
	return err
}
