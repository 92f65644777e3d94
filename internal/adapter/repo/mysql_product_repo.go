package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/mahmudalamin/zbooksapp-sub000/internal/entity"
	"github.com/mahmudalamin/zbooksapp-sub000/internal/usecase"
)

// MySQLProductRepo is the catalog read port for intake validation.
type MySQLProductRepo struct{ db *sql.DB }

func NewMySQLProductRepo(db *sql.DB) *MySQLProductRepo { return &MySQLProductRepo{db: db} }

var _ usecase.ProductReader = (*MySQLProductRepo)(nil)

func (r *MySQLProductRepo) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, price, stock FROM products WHERE id = ?`, id)
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Stock)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", id, usecase.ErrProductNotFound)
	}
	if err != nil {
		return nil, mapDBErr(err)
	}
	return &p, nil
}
