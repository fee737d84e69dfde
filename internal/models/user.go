package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleClient          = "client"
	RoleRestaurantAdmin = "restaurant_admin"
	RoleAdmin           = "admin"
)

type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	FullName     string     `json:"full_name" db:"full_name"`
	Role         string     `json:"role" db:"role"`
	RestaurantID *uuid.UUID `json:"restaurant_id" db:"restaurant_id"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
