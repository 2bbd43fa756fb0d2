package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"go.uber.org/zap"

	"pricegov/internal/handlers"
	"pricegov/internal/models"
)

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Frame-Options", "deny")
		next.ServeHTTP(w, r)
	})
}

func makeResponseJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.logger.Info("request",
			zap.String("remote_addr", r.RemoteAddr),
			zap.String("proto", r.Proto),
			zap.String("method", r.Method),
			zap.String("uri", r.URL.RequestURI()))
		next.ServeHTTP(w, r)
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverError(w, fmt.Errorf("%s", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (app *application) serverError(w http.ResponseWriter, err error) {
	app.logger.Error("panic recovered", zap.Error(err), zap.Stack("stack"))
	jsonError(w, http.StatusInternalServerError, "Internal server error")
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// JWTMiddleware authenticates the Bearer access token. When that token is
// invalid or expired, a live Refresh-Token header is accepted instead and a
// new access token is returned in the Authorization response header. An
// empty roles list admits any authenticated user.
func (app *application) JWTMiddleware(next http.Handler, roles ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			jsonError(w, http.StatusUnauthorized, "Authorization header missing or invalid")
			return
		}
		accessToken := strings.TrimPrefix(authHeader, "Bearer ")

		var actor models.Actor
		claims, err := app.tokens.Parse(accessToken)
		if err == nil {
			actor = models.Actor{UserID: claims.UserID, Role: claims.Role}
		} else {
			refreshToken := r.Header.Get("Refresh-Token")
			if refreshToken == "" {
				jsonError(w, http.StatusUnauthorized, "Access token expired or invalid")
				return
			}
			tokens, session, err := app.userService.Refresh(r.Context(), refreshToken)
			if err != nil {
				jsonError(w, http.StatusUnauthorized, "Invalid refresh token")
				return
			}
			w.Header().Set("Authorization", "Bearer "+tokens.AccessToken)
			actor = models.Actor{UserID: session.UserID, Role: session.Role}
		}

		if len(roles) > 0 && !slices.Contains(roles, actor.Role) {
			jsonError(w, http.StatusForbidden, "You do not have permission to perform this action.")
			return
		}

		next.ServeHTTP(w, r.WithContext(handlers.WithActor(r.Context(), actor)))
	})
}

func (app *application) JWTMiddlewareWithRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, roles...)
	}
}
