package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"slotify/internal/blockedtimes/service"
	httputil "slotify/pkg/http"
	"slotify/pkg/logger"
	"slotify/pkg/model"
)

type BlockedTimeHandler struct {
	service service.BlockedTimeService
	log     *logger.Logger
}

func NewBlockedTimeHandler(service service.BlockedTimeService, log *logger.Logger) *BlockedTimeHandler {
	return &BlockedTimeHandler{
		service: service,
		log:     log,
	}
}

func (h *BlockedTimeHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var blockedTime model.BlockedTime
	if err := json.NewDecoder(r.Body).Decode(&blockedTime); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &blockedTime); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, blockedTime); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BlockedTimeHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	blockedTime, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, blockedTime); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BlockedTimeHandler) GetByOwner(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "The 'owner_id' query parameter is required",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "GetByOwner", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByOwner", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	blockedTimes, total, err := h.service.GetByOwner(r.Context(), ownerID, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByOwner", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, blockedTimes, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetByOwner", "operation", "WritePaginated", "error", err)
	}
}

func (h *BlockedTimeHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var updates model.BlockedTimeUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Update(r.Context(), id, &updates); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BlockedTimeHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BlockedTimeHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/blocked-times", h.Create)
	router.GET("/api/v1/blocked-times", h.GetByOwner)
	router.GET("/api/v1/blocked-times/id/:id", h.GetByID)
	router.PATCH("/api/v1/blocked-times/id/:id", h.Update)
	router.DELETE("/api/v1/blocked-times/id/:id", h.Delete)
}
