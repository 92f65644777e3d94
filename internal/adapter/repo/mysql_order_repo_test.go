package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"

	domain "github.com/mahmudalamin/zbooksapp-sub000/internal/entity"
	"github.com/mahmudalamin/zbooksapp-sub000/internal/usecase"
)

func newMock(t *testing.T) (*MySQLOrderRepo, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	return NewMySQLOrderRepo(db), mock, func() { db.Close() }
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func sampleGraph() *domain.Order {
	now := time.Now().UTC()
	return &domain.Order{
		ID:             "ord-1",
		OrderNumber:    "ORD-1700000000000-ABCDEF",
		UserID:         "u1",
		Email:          "ada@example.com",
		Phone:          "0123456789",
		Status:         domain.StatusPending,
		PaymentStatus:  domain.PaymentPending,
		PaymentMethod:  "cod",
		Subtotal:       dec("20.00"),
		ShippingCost:   dec("5.00"),
		TaxAmount:      dec("2.00"),
		DiscountAmount: dec("0"),
		Total:          dec("27.00"),
		Currency:       "USD",
		ShippingAddrID: "addr-1",
		BillingAddrID:  "addr-1",
		Items: []domain.OrderItem{{
			ID: "item-1", OrderID: "ord-1", ProductID: "P1", ProductName: "P1",
			Quantity: 2, Price: dec("10.00"), Total: dec("20.00"),
		}},
		History: []domain.HistoryEntry{{
			ID: "hist-1", OrderID: "ord-1", Status: domain.StatusPending,
			Notes: "Order placed, payment method: cod", CreatedAt: now,
		}},
		Address:   &domain.Address{ID: "addr-1", FirstName: "Ada", City: "London"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateOrderGraph_Commits(t *testing.T) {
	r, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO addresses").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_history").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE products SET stock = stock - ").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := r.CreateOrderGraph(context.Background(), sampleGraph()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateOrderGraph_InsufficientStockRollsBack(t *testing.T) {
	r, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO addresses").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_history").WillReturnResult(sqlmock.NewResult(0, 1))
	// guard lost: stock dropped below the requested quantity since validation
	mock.ExpectExec("UPDATE products SET stock = stock - ").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT name, stock FROM products").
		WillReturnRows(sqlmock.NewRows([]string{"name", "stock"}).AddRow("P1", 1))
	mock.ExpectRollback()

	err := r.CreateOrderGraph(context.Background(), sampleGraph())
	var intake *usecase.IntakeError
	if !errors.As(err, &intake) {
		t.Fatalf("got %v, want IntakeError", err)
	}
	if intake.Code != usecase.CodeInsufficientStock {
		t.Fatalf("code = %s, want INSUFFICIENT_STOCK", intake.Code)
	}
	if intake.Message != "Insufficient stock for P1. Only 1 available." {
		t.Fatalf("message = %q", intake.Message)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateOrderGraph_ProductGoneRollsBack(t *testing.T) {
	r, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO addresses").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_history").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE products SET stock = stock - ").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT name, stock FROM products").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := r.CreateOrderGraph(context.Background(), sampleGraph())
	if !errors.Is(err, usecase.ErrProductNotFound) {
		t.Fatalf("got %v, want ErrProductNotFound", err)
	}
}

func TestCreateOrderGraph_DuplicateOrderNumber(t *testing.T) {
	r, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO addresses").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO orders").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	err := r.CreateOrderGraph(context.Background(), sampleGraph())
	if !errors.Is(err, usecase.ErrDuplicateOrderNumber) {
		t.Fatalf("got %v, want ErrDuplicateOrderNumber", err)
	}
}

func TestCreateOrderGraph_BadConnIsUnavailable(t *testing.T) {
	r, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO addresses").WillReturnError(mysql.ErrInvalidConn)
	mock.ExpectRollback()

	err := r.CreateOrderGraph(context.Background(), sampleGraph())
	if !errors.Is(err, usecase.ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}
}

func TestUpdateStatusIf_GuardMatches(t *testing.T) {
	r, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_history").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ok, err := r.UpdateStatusIf(context.Background(), "ord-1", domain.StatusPending, domain.StatusConfirmed, "ok")
	if err != nil || !ok {
		t.Fatalf("got ok=%v err=%v, want guarded update to apply", ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateStatusIf_GuardLost(t *testing.T) {
	r, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET status").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	ok, err := r.UpdateStatusIf(context.Background(), "ord-1", domain.StatusPending, domain.StatusConfirmed, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("guard mismatch must not report an applied update")
	}
}

func TestUpdatePaymentStatus_NotFound(t *testing.T) {
	r, mock, done := newMock(t)
	defer done()

	mock.ExpectExec("UPDATE orders SET payment_status").WillReturnResult(sqlmock.NewResult(0, 0))

	err := r.UpdatePaymentStatus(context.Background(), "missing", domain.PaymentPaid)
	if !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
