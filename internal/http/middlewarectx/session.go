// Package middlewarectx содержит HTTP middleware для работы с сессиями
// и ограничения частоты запросов.
//
// SessionMiddleware ищет сессионную куку, проверяет её в хранилище сессий
// и кладёт данные сессии в контекст запроса. В строгом режиме запрос без
// действующей сессии отклоняется с HTTP 401, в мягком — проходит дальше
// анонимным.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tsmartminds/smartminds/internal/http/response"
	"github.com/tsmartminds/smartminds/internal/lib/sl"
	"github.com/tsmartminds/smartminds/internal/session"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// SessionKey — ключ данных сессии в контексте
	SessionKey Key = "session"
	// TokenKey — ключ токена сессии в контексте
	TokenKey Key = "session_token"
)

// SessionStore описывает интерфейс хранилища сессий.
type SessionStore interface {
	Get(ctx context.Context, token string) (*session.Data, bool, error)
}

// SessionFromContext возвращает данные сессии из контекста запроса,
// если запрос аутентифицирован.
func SessionFromContext(ctx context.Context) (*session.Data, bool) {
	data, ok := ctx.Value(SessionKey).(*session.Data)
	return data, ok
}

// TokenFromContext возвращает токен сессии из контекста запроса.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(TokenKey).(string)
	return token
}

// SessionMiddleware возвращает middleware, требующий действующую сессию.
// Без неё запрос получает 401 Unauthorized.
func SessionMiddleware(sessions SessionStore, cookieName string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SessionMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			ctx, ok := resolveSession(r, sessions, cookieName, log)
			if !ok {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("not authenticated"))
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalSessionMiddleware возвращает middleware, который кладёт сессию
// в контекст, если она есть, но пропускает и анонимные запросы.
func OptionalSessionMiddleware(sessions SessionStore, cookieName string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.OptionalSessionMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			ctx, ok := resolveSession(r, sessions, cookieName, log)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveSession проверяет куку запроса в хранилище сессий.
// Возвращает контекст с данными сессии и признак успеха.
func resolveSession(r *http.Request, sessions SessionStore, cookieName string, log *slog.Logger) (context.Context, bool) {
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return r.Context(), false
	}

	data, found, err := sessions.Get(r.Context(), cookie.Value)
	if err != nil {
		log.Error("failed to look up session", sl.Err(err))
		return r.Context(), false
	}
	if !found {
		return r.Context(), false
	}

	ctx := context.WithValue(r.Context(), SessionKey, data)
	ctx = context.WithValue(ctx, TokenKey, cookie.Value)
	return ctx, true
}
