package repositories

import (
	"context"
	"errors"

	"dinemart/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type RestaurantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type restaurantRepo struct {
	db DB
}

func NewRestaurantRepository(db DB) RestaurantRepository {
	return &restaurantRepo{db: db}
}

func (r *restaurantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	restaurant := &models.Restaurant{}
	query := `
		SELECT id, name, address, phone, is_open, created_at, updated_at
		FROM restaurants
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&restaurant.ID, &restaurant.Name, &restaurant.Address, &restaurant.Phone, &restaurant.IsOpen, &restaurant.CreatedAt, &restaurant.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return restaurant, nil
}

func (r *restaurantRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM restaurants WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
