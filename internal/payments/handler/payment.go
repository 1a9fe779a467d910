package handler

import (
	"context"
	"net/http"

	"taskhire/internal/payments/service"
	"taskhire/pkg/auth"
	httputil "taskhire/pkg/http"
	"taskhire/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PaymentHandler struct {
	service service.PaymentService
	rs      *httputil.Responder
}

func NewPaymentHandler(service service.PaymentService, rs *httputil.Responder) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		rs:      rs,
	}
}

func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	var input model.PaymentInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		h.rs.Error(w, r, err)
		return
	}

	payment, err := h.service.Create(r.Context(), actor, ps.ByName("bookingId"), &input)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	if err := httputil.WriteCreated(w, payment); err != nil {
		h.rs.Log().Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *PaymentHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	var patch model.PaymentPatch
	if err := httputil.DecodeJSON(r, &patch); err != nil {
		h.rs.Error(w, r, err)
		return
	}

	payment, err := h.service.Update(r.Context(), actor, ps.ByName("bookingId"), &patch)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	if err := httputil.WriteSuccess(w, payment); err != nil {
		h.rs.Log().Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PaymentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	payment, err := h.service.GetByID(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	if err := httputil.WriteSuccess(w, payment); err != nil {
		h.rs.Log().Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, "List", h.service.List)
}

func (h *PaymentHandler) ListAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, "ListAll", h.service.ListAll)
}

type listFunc func(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.Payment, int64, error)

func (h *PaymentHandler) list(w http.ResponseWriter, r *http.Request, name string, fetch listFunc) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	payments, total, err := fetch(r.Context(), actor, limit, offset)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	if err := httputil.WritePaginated(w, payments, total, limit, offset); err != nil {
		h.rs.Log().Error("failed to write paginated response", "handler", name, "operation", "WritePaginated", "error", err)
	}
}

func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), actor, ps.ByName("id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}

	if err := httputil.WriteMessage(w, http.StatusOK, "Payment deleted successfully"); err != nil {
		h.rs.Log().Error("failed to write message response", "handler", "Delete", "operation", "WriteMessage", "error", err)
	}
}

func (h *PaymentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/payments/booking/:bookingId", h.Create)
	router.PUT("/api/v1/payments/booking/:bookingId", h.Update)
	router.GET("/api/v1/payments", h.List)
	router.GET("/api/v1/payments/admin", h.ListAll)
	router.GET("/api/v1/payments/id/:id", h.GetByID)
	router.DELETE("/api/v1/payments/id/:id", h.Delete)
}
