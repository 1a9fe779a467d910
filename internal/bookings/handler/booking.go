package handler

import (
	"net/http"

	"taskhire/internal/bookings/service"
	"taskhire/pkg/auth"
	httputil "taskhire/pkg/http"
	"taskhire/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type createdResponse struct {
	Message string         `json:"message"`
	Booking *model.Booking `json:"booking"`
}

type BookingHandler struct {
	service service.BookingService
	rs      *httputil.Responder
}

func NewBookingHandler(service service.BookingService, rs *httputil.Responder) *BookingHandler {
	return &BookingHandler{
		service: service,
		rs:      rs,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	var input model.BookingInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		h.rs.Error(w, r, err)
		return
	}

	booking, err := h.service.Create(r.Context(), actor, &input)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	if err := httputil.WriteJSON(w, http.StatusCreated, createdResponse{Message: "Booking created successfully", Booking: booking}); err != nil {
		h.rs.Log().Error("failed to write created response", "handler", "Create", "operation", "WriteJSON", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	booking, err := h.service.GetByID(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.rs.Log().Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
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
	status := model.BookingStatus(r.URL.Query().Get("status"))

	bookings, total, err := h.service.GetAll(r.Context(), actor, status, limit, offset)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.rs.Log().Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	var patch model.BookingPatch
	if err := httputil.DecodeJSON(r, &patch); err != nil {
		h.rs.Error(w, r, err)
		return
	}

	booking, err := h.service.Update(r.Context(), actor, ps.ByName("id"), &patch)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.rs.Log().Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Review(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	var input model.ReviewInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		h.rs.Error(w, r, err)
		return
	}

	booking, err := h.service.Review(r.Context(), actor, ps.ByName("id"), &input)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.rs.Log().Error("failed to write success response", "handler", "Review", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := auth.RequireActor(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), actor, ps.ByName("id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}

	if err := httputil.WriteMessage(w, http.StatusOK, "Booking deleted successfully"); err != nil {
		h.rs.Log().Error("failed to write message response", "handler", "Delete", "operation", "WriteMessage", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.GetAll)
	router.GET("/api/v1/bookings/:id", h.GetByID)
	router.PUT("/api/v1/bookings/:id", h.Update)
	router.POST("/api/v1/bookings/:id/review", h.Review)
	router.DELETE("/api/v1/bookings/:id", h.Delete)
}
