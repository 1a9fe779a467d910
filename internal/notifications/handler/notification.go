package handler

import (
	"net/http"

	"taskhire/internal/notifications/service"
	"taskhire/pkg/auth"
	httputil "taskhire/pkg/http"

	"github.com/julienschmidt/httprouter"
)

type idsRequest struct {
	IDs []string `json:"ids"`
}

type bulkResult struct {
	Count int64 `json:"count"`
}

type NotificationHandler struct {
	service service.NotificationService
	rs      *httputil.Responder
}

func NewNotificationHandler(service service.NotificationService, rs *httputil.Responder) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		rs:      rs,
	}
}

func (h *NotificationHandler) GetFeed(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	feed, err := h.service.GetForUser(r.Context(), actor.Party())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	if err := httputil.WriteSuccess(w, feed); err != nil {
		h.rs.Log().Error("failed to write success response", "handler", "GetFeed", "operation", "WriteSuccess", "error", err)
	}
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	var req idsRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}

	n, err := h.service.MarkAsRead(r.Context(), actor.Party(), req.IDs)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	if err := httputil.WriteSuccess(w, bulkResult{Count: n}); err != nil {
		h.rs.Log().Error("failed to write success response", "handler", "MarkAsRead", "operation", "WriteSuccess", "error", err)
	}
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	var req idsRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}

	n, err := h.service.Delete(r.Context(), actor.Party(), req.IDs)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	if err := httputil.WriteSuccess(w, bulkResult{Count: n}); err != nil {
		h.rs.Log().Error("failed to write success response", "handler", "Delete", "operation", "WriteSuccess", "error", err)
	}
}

func (h *NotificationHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/notifications", h.GetFeed)
	router.PUT("/api/v1/notifications/read", h.MarkAsRead)
	router.DELETE("/api/v1/notifications", h.Delete)
}
