package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dinemart/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	List(ctx context.Context, filter *models.OrderFilter) ([]*models.Order, error)
	ListByPaymentStatus(ctx context.Context, paymentStatus string, limit int) ([]*models.Order, error)
}

type orderRepo struct {
	db DB
}

func NewOrderRepository(db DB) OrderRepository {
	return &orderRepo{db: db}
}

const orderColumns = `id, restaurant_id, user_id, status, payment_method, invoice, delivery_address, payment_provider, payment_id, payment_status, created_at, updated_at`

// Create persists the order and its items in one transaction. Items never
// exist without their parent order.
func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	invoiceJSON, err := json.Marshal(order.Invoice)
	if err != nil {
		return err
	}
	addressJSON, err := json.Marshal(order.DeliveryAddress)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO orders (id, restaurant_id, user_id, status, payment_method, invoice, delivery_address, payment_provider, payment_id, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err = tx.Exec(ctx, query,
		order.ID, order.RestaurantID, order.UserID, order.Status, order.PaymentMethod,
		invoiceJSON, addressJSON, order.PaymentProvider, order.PaymentID, order.PaymentStatus)
	if err != nil {
		return err
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, menu_item_id, name, quantity, unit_price, total_price, special_instructions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	for _, item := range order.Items {
		if _, err := tx.Exec(ctx, itemQuery,
			item.ID, order.ID, item.MenuItemID, item.Name, item.Quantity,
			item.UnitPrice, item.TotalPrice, item.SpecialInstructions); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
	`
	order, err := r.scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *orderRepo) Update(ctx context.Context, order *models.Order) error {
	invoiceJSON, err := json.Marshal(order.Invoice)
	if err != nil {
		return err
	}
	addressJSON, err := json.Marshal(order.DeliveryAddress)
	if err != nil {
		return err
	}

	query := `
		UPDATE orders
		SET status = $1, payment_method = $2, invoice = $3, delivery_address = $4, payment_provider = $5, payment_id = $6, payment_status = $7, updated_at = NOW()
		WHERE id = $8
	`
	_, err = r.db.Exec(ctx, query,
		order.Status, order.PaymentMethod, invoiceJSON, addressJSON,
		order.PaymentProvider, order.PaymentID, order.PaymentStatus, order.ID)
	return err
}

// List returns orders matching every supplied filter, newest first.
func (r *orderRepo) List(ctx context.Context, filter *models.OrderFilter) ([]*models.Order, error) {
	queryBase := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE 1=1
	`
	args := []interface{}{}
	conditionCount := 0

	if filter != nil {
		if filter.RestaurantID != nil {
			conditionCount++
			queryBase += fmt.Sprintf(` AND restaurant_id = $%d`, conditionCount)
			args = append(args, *filter.RestaurantID)
		}
		if filter.UserID != nil {
			conditionCount++
			queryBase += fmt.Sprintf(` AND user_id = $%d`, conditionCount)
			args = append(args, *filter.UserID)
		}
		if filter.Status != nil {
			conditionCount++
			queryBase += fmt.Sprintf(` AND status = $%d`, conditionCount)
			args = append(args, *filter.Status)
		}
	}

	queryBase += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders, err := r.scanOrders(rows)
	if err != nil {
		return nil, err
	}

	for _, order := range orders {
		items, err := r.listItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}
	return orders, nil
}

// ListByPaymentStatus is used by the payment reconciliation job.
func (r *orderRepo) ListByPaymentStatus(ctx context.Context, paymentStatus string, limit int) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE payment_status = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, paymentStatus, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanOrders(rows)
}

func (r *orderRepo) listItems(ctx context.Context, orderID uuid.UUID) ([]*models.OrderItem, error) {
	query := `
		SELECT id, order_id, menu_item_id, name, quantity, unit_price, total_price, special_instructions, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Name, &item.Quantity, &item.UnitPrice, &item.TotalPrice, &item.SpecialInstructions, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *orderRepo) scanOrder(row pgx.Row) (*models.Order, error) {
	order := &models.Order{}
	var invoiceJSON, addressJSON []byte
	if err := row.Scan(&order.ID, &order.RestaurantID, &order.UserID, &order.Status, &order.PaymentMethod, &invoiceJSON, &addressJSON, &order.PaymentProvider, &order.PaymentID, &order.PaymentStatus, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(invoiceJSON, &order.Invoice); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(addressJSON, &order.DeliveryAddress); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepo) scanOrders(rows pgx.Rows) ([]*models.Order, error) {
	var orders []*models.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
