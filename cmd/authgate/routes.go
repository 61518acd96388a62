package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-authgate"
	"github.com/goliatone/go-router"
)

// ProtectedRoutes mounts the routes that need an active user. They go in
// before the catalog so /users/me wins over /users/:user_id.
func ProtectedRoutes[T any](app *App, r router.Router[T]) {
	contextKey := app.config.Auth.GetContextKey()

	me := r.Group("/users/me")
	me.Use(app.auther.ProtectedRoute())

	me.Get("", ProfileShow(contextKey))
	me.Get("/items", ProfileItems(contextKey))
}

// ProfileShow returns the current user
func ProfileShow(contextKey string) router.HandlerFunc {
	return func(c router.Context) error {
		user, ok := authgate.CurrentUser(c, contextKey)
		if !ok {
			return authgate.ErrMissingToken
		}
		return c.JSON(fiber.StatusOK, user)
	}
}

// ProfileItems lists the items owned by the current user
func ProfileItems(contextKey string) router.HandlerFunc {
	return func(c router.Context) error {
		user, ok := authgate.CurrentUser(c, contextKey)
		if !ok {
			return authgate.ErrMissingToken
		}
		return c.JSON(fiber.StatusOK, []map[string]string{
			{"item_id": "Foo", "owner": user.Username},
		})
	}
}
