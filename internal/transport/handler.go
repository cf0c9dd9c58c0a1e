package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fueldesk/fueldesk/internal/platform/httpx"
	"github.com/fueldesk/fueldesk/internal/shared"
)

// Handler exposes transport job lookups and dispatcher updates.
type Handler struct {
	logger   *slog.Logger
	repo     Repository
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, repo Repository) *Handler {
	return &Handler{logger: logger, repo: repo, validate: validator.New()}
}

// MountRoutes registers transport routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/jobs/{reference}", h.getJob)
	r.Put("/jobs/{reference}", h.upsertJob)
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.repo.FindByReference(r.Context(), chi.URLParam(r, "reference"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}

type upsertJobRequest struct {
	DriverName   string     `json:"driver_name" validate:"required,max=200"`
	TruckPlate   string     `json:"truck_plate" validate:"required,max=50"`
	TrailerPlate string     `json:"trailer_plate" validate:"omitempty,max=50"`
	CurrentLeg   Leg        `json:"current_leg" validate:"required"`
	AssignedAt   *time.Time `json:"assigned_at,omitempty"`
	LoadedAt     *time.Time `json:"loaded_at,omitempty"`
	DepartedAt   *time.Time `json:"departed_at,omitempty"`
	ArrivedAt    *time.Time `json:"arrived_at,omitempty"`
	ClosedAt     *time.Time `json:"closed_at,omitempty"`
}

func (h *Handler) upsertJob(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	if !actor.Manager {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}

	var req upsertJobRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if !req.CurrentLeg.IsValid() {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown transport leg")
		return
	}

	job, err := h.repo.Upsert(r.Context(), Job{
		Reference:    chi.URLParam(r, "reference"),
		DriverName:   req.DriverName,
		TruckPlate:   req.TruckPlate,
		TrailerPlate: req.TrailerPlate,
		CurrentLeg:   req.CurrentLeg,
		AssignedAt:   req.AssignedAt,
		LoadedAt:     req.LoadedAt,
		DepartedAt:   req.DepartedAt,
		ArrivedAt:    req.ArrivedAt,
		ClosedAt:     req.ClosedAt,
	})
	if err != nil {
		h.logger.Error("upsert transport job", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}
