package handler

import (
	"net/http"

	"gameden/internal/bookings/service"
	httputil "gameden/pkg/http"
	"gameden/pkg/logger"
	"gameden/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	booking, err := h.service.Allocate(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	h.writeSuccess(w, "GetByID", booking)
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	filter := model.BookingFilter{
		Date:  query.Get("date"),
		Email: query.Get("email"),
		Phone: query.Get("phone"),
	}

	bookings, err := h.service.ListConfirmed(r.Context(), filter)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	h.writeSuccess(w, "List", bookings)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Cancel(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	rt := model.ResourceType(query.Get("resource_type"))

	availability, err := h.service.Availability(r.Context(), rt, query.Get("date"))
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	h.writeSuccess(w, "Availability", availability)
}

func (h *BookingHandler) Quote(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	duration, err := httputil.QueryInt(r, "duration", 0)
	if err != nil {
		h.writeError(w, "Quote", err)
		return
	}
	partySize, err := httputil.QueryInt(r, "party_size", 1)
	if err != nil {
		h.writeError(w, "Quote", err)
		return
	}

	rt := model.ResourceType(r.URL.Query().Get("resource_type"))
	quote, err := h.service.Quote(rt, duration, partySize)
	if err != nil {
		h.writeError(w, "Quote", err)
		return
	}

	h.writeSuccess(w, "Quote", quote)
}

func (h *BookingHandler) Slots(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	h.writeSuccess(w, "Slots", h.service.Slots())
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/slots", h.Slots)
	router.GET("/api/v1/pricing/quote", h.Quote)
	router.GET("/api/v1/availability", h.Availability)
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.List)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.DELETE("/api/v1/bookings/id/:id", h.Cancel)
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}
