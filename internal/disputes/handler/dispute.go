package handler

import (
	"net/http"

	"taskhire/internal/disputes/service"
	"taskhire/pkg/auth"
	httputil "taskhire/pkg/http"
	"taskhire/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type DisputeHandler struct {
	service service.DisputeService
	rs      *httputil.Responder
}

func NewDisputeHandler(service service.DisputeService, rs *httputil.Responder) *DisputeHandler {
	return &DisputeHandler{
		service: service,
		rs:      rs,
	}
}

func (h *DisputeHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	var input model.DisputeInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		h.rs.Error(w, r, err)
		return
	}

	dispute, err := h.service.Create(r.Context(), actor, &input)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	if err := httputil.WriteCreated(w, dispute); err != nil {
		h.rs.Log().Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *DisputeHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	dispute, err := h.service.GetByID(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	if err := httputil.WriteSuccess(w, dispute); err != nil {
		h.rs.Log().Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DisputeHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
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
	status := model.DisputeStatus(r.URL.Query().Get("status"))

	disputes, total, err := h.service.List(r.Context(), actor, status, limit, offset)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	if err := httputil.WritePaginated(w, disputes, total, limit, offset); err != nil {
		h.rs.Log().Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *DisputeHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	var patch model.DisputePatch
	if err := httputil.DecodeJSON(r, &patch); err != nil {
		h.rs.Error(w, r, err)
		return
	}

	dispute, err := h.service.Update(r.Context(), actor, ps.ByName("id"), &patch)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	if err := httputil.WriteSuccess(w, dispute); err != nil {
		h.rs.Log().Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DisputeHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), actor, ps.ByName("id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}

	if err := httputil.WriteMessage(w, http.StatusOK, "Dispute deleted successfully"); err != nil {
		h.rs.Log().Error("failed to write message response", "handler", "Delete", "operation", "WriteMessage", "error", err)
	}
}

func (h *DisputeHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/disputes", h.Create)
	router.GET("/api/v1/disputes", h.List)
	router.GET("/api/v1/disputes/:id", h.GetByID)
	router.PUT("/api/v1/disputes/:id", h.Update)
	router.DELETE("/api/v1/disputes/:id", h.Delete)
}
