package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"restaurant-ordering/ordering-svc/internal/domain"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

const orderColumns = `id, items, total_amount, status, table_number, customer_name, create_time, complete_time, chef_id, updated_at`

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order        domain.Order
		items        []byte
		completeTime sql.NullTime
		chefID       sql.NullInt64
	)
	if err := row.Scan(&order.ID, &items, &order.TotalAmount, &order.Status, &order.TableNumber,
		&order.CustomerName, &order.CreateTime, &completeTime, &chefID, &order.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("decode items of order %s: %w", order.ID, err)
	}
	if completeTime.Valid {
		t := completeTime.Time
		order.CompleteTime = &t
	}
	if chefID.Valid {
		id := int(chefID.Int64)
		order.ChefID = &id
	}
	return &order, nil
}

func (r *PostgresRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO orders (id, items, total_amount, status, table_number, customer_name, create_time, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		order.ID, items, order.TotalAmount, order.Status, order.TableNumber, order.CustomerName,
		order.CreateTime, order.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateOrder
	}
	return err
}

func (r *PostgresRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := scanOrder(r.DB.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	return order, err
}

func (r *PostgresRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY create_time DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// UpdateOrderStatus moves an order from one status to another only if it is
// still in the expected status. A lost race returns ErrStatusRaceLost.
func (r *PostgresRepository) UpdateOrderStatus(ctx context.Context, id string, from, to domain.OrderStatus, completeTime *time.Time, updatedAt time.Time) (*domain.Order, error) {
	order, err := scanOrder(r.DB.QueryRowContext(ctx, `
		UPDATE orders
		SET status = $1, complete_time = $2, updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING `+orderColumns,
		to, completeTime, updatedAt, id, from))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrStatusRaceLost
	}
	return order, err
}

func (r *PostgresRepository) DeleteOrder(ctx context.Context, id string, status domain.OrderStatus) (int64, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM orders WHERE id = $1 AND status = $2", id, status)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// UnfinishedOrderIDsWithDish lists pending/processing orders whose line items
// contain the dish, newest first.
func (r *PostgresRepository) UnfinishedOrderIDsWithDish(ctx context.Context, dishID int) ([]string, error) {
	contains := fmt.Sprintf(`[{"id":%d}]`, dishID)
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id FROM orders
		WHERE status = ANY($1) AND items @> $2::jsonb
		ORDER BY create_time DESC`,
		pq.Array([]string{string(domain.OrderPending), string(domain.OrderProcessing)}), contains)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const dishColumns = `id, name, price, category, description, image, status, created_at, updated_at`

func scanDish(row rowScanner) (*domain.Dish, error) {
	var dish domain.Dish
	if err := row.Scan(&dish.ID, &dish.Name, &dish.Price, &dish.Category, &dish.Description,
		&dish.Image, &dish.Status, &dish.CreatedAt, &dish.UpdatedAt); err != nil {
		return nil, err
	}
	return &dish, nil
}

// CreateDish assigns id = max(id)+1 in the INSERT itself. Two concurrent
// creates can still compute the same id; the primary key rejects the loser.
func (r *PostgresRepository) CreateDish(ctx context.Context, dish *domain.Dish) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO dishes (id, name, price, category, description, image, status, created_at, updated_at)
		SELECT COALESCE(MAX(id), 0) + 1, $1, $2, $3, $4, $5, $6, $7, $7 FROM dishes
		RETURNING id`,
		dish.Name, dish.Price, dish.Category, dish.Description, dish.Image, dish.Status, dish.CreatedAt).
		Scan(&dish.ID)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateDish
	}
	return err
}

func (r *PostgresRepository) GetDish(ctx context.Context, id int) (*domain.Dish, error) {
	dish, err := scanDish(r.DB.QueryRowContext(ctx, `SELECT `+dishColumns+` FROM dishes WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDishNotFound
	}
	return dish, err
}

// ListDishes returns enabled dishes; an empty category means every category.
func (r *PostgresRepository) ListDishes(ctx context.Context, category string) ([]domain.Dish, error) {
	query := `SELECT ` + dishColumns + ` FROM dishes WHERE status = $1`
	args := []any{domain.DishOn}
	if category != "" {
		query += ` AND category = $2`
		args = append(args, category)
	}
	query += ` ORDER BY id`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dishes := []domain.Dish{}
	for rows.Next() {
		dish, err := scanDish(rows)
		if err != nil {
			return nil, err
		}
		dishes = append(dishes, *dish)
	}
	return dishes, rows.Err()
}

func (r *PostgresRepository) DeleteDish(ctx context.Context, id int) (int64, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM dishes WHERE id = $1", id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ReplaceDishes wipes the catalog and inserts the given dishes with their ids.
func (r *PostgresRepository) ReplaceDishes(ctx context.Context, dishes []domain.Dish) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM dishes"); err != nil {
		return 0, err
	}
	for _, dish := range dishes {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO dishes (id, name, price, category, description, image, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
			dish.ID, dish.Name, dish.Price, dish.Category, dish.Description, dish.Image, dish.Status, dish.CreatedAt); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(dishes), nil
}

func (r *PostgresRepository) RatingExists(ctx context.Context, orderID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM ratings WHERE order_id = $1)`, orderID).Scan(&exists)
	return exists, err
}

// InsertRating relies on UNIQUE(order_id) to reject a second rating that
// slipped past RatingExists.
func (r *PostgresRepository) InsertRating(ctx context.Context, rating *domain.Rating) error {
	images := rating.Images
	if images == nil {
		images = []string{}
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO ratings (order_id, rating, content, images, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		rating.OrderID, rating.Rating, rating.Content, pq.Array(images), rating.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateRating
	}
	return err
}

func (r *PostgresRepository) GetChef(ctx context.Context, id int) (*domain.Chef, error) {
	var chef domain.Chef
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, avatar, rating, status, created_at, updated_at
		FROM chefs WHERE id = $1`, id).
		Scan(&chef.ID, &chef.Name, &chef.Avatar, &chef.Rating, &chef.Status, &chef.CreatedAt, &chef.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrChefNotFound
	}
	if err != nil {
		return nil, err
	}
	return &chef, nil
}
