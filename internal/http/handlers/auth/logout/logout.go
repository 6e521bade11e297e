// Package logout реализует HTTP-обработчик выхода: сессия удаляется из
// хранилища, кука сбрасывается. Выход без действующей сессии не считается
// ошибкой.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tsmartminds/smartminds/internal/http/response"
	"github.com/tsmartminds/smartminds/internal/lib/sl"
)

// Service описывает интерфейс бизнес-логики выхода.
type Service interface {
	Logout(ctx context.Context, token string) error
}

// Handler обрабатывает HTTP-запросы выхода.
type Handler struct {
	log        *slog.Logger
	service    Service
	cookieName string
	secure     bool
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, cookieName string, secure bool) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		cookieName: cookieName,
		secure:     secure,
	}
}

// ServeHTTP godoc
// @Summary Выход пользователя
// @Description Удаляет сессию и сбрасывает сессионную куку.
// @Tags Auth
// @Produce  json
// @Success 200 {object} map[string]any "Выход выполнен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var token string
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		token = cookie.Value
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		log.Error("failed to destroy session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to log out"))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	log.Info("logout success")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "logged out",
	}))
}
