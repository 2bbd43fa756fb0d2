package handlers

import (
	"context"
	"net/http"

	"pricegov/internal/models"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "role"
)

// WithActor stores the authenticated caller in ctx.
func WithActor(ctx context.Context, a models.Actor) context.Context {
	ctx = context.WithValue(ctx, userIDKey, a.UserID)
	return context.WithValue(ctx, roleKey, a.Role)
}

// ActorFrom reads the caller stored by WithActor.
func ActorFrom(ctx context.Context) (models.Actor, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	if !ok || id == 0 {
		return models.Actor{}, false
	}
	role, _ := ctx.Value(roleKey).(string)
	return models.Actor{UserID: id, Role: role}, true
}

// requireActor writes a 401 when the request carries no caller.
func requireActor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	a, ok := ActorFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
	}
	return a, ok
}
