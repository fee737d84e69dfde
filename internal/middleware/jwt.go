package middleware

import (
	"context"
	"net/http"

	"dinemart/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTCustomClaims carries the caller identity. Subject is the user ID;
// restaurant_id is present for restaurant_admin tokens.
type JWTCustomClaims struct {
	Role         string     `json:"role"`
	RestaurantID *uuid.UUID `json:"restaurant_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTConfig builds the echo-jwt configuration. On success the user ID, role
// and restaurant ID are placed on the request context under the common keys.
func JWTConfig(secret string) echojwt.Config {
	return echojwt.Config{
		SigningKey: []byte(secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JWTCustomClaims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*JWTCustomClaims)
			if !ok {
				return
			}

			ctx := c.Request().Context()
			if userID, err := uuid.Parse(claims.Subject); err == nil {
				ctx = context.WithValue(ctx, common.UserIDKey, userID)
			}
			ctx = context.WithValue(ctx, common.RoleKey, claims.Role)
			if claims.RestaurantID != nil {
				ctx = context.WithValue(ctx, common.RestaurantIDKey, *claims.RestaurantID)
			}
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	}
}
