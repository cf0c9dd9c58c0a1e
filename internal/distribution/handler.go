package distribution

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fueldesk/fueldesk/internal/platform/httpx"
	"github.com/fueldesk/fueldesk/internal/shared"
	"github.com/fueldesk/fueldesk/internal/transport"
)

// Handler manages distribution order endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	resolver *transport.Resolver
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, resolver *transport.Resolver) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		resolver: resolver,
		validate: validator.New(),
	}
}

// MountRoutes registers distribution order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/orders", h.listOrders)
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.showOrder)
	r.Get("/orders/{id}/remainder", h.showRemainder)

	// transitions require the manager flag
	r.Group(func(r chi.Router) {
		r.Use(h.requireManager)
		r.Post("/orders/{id}/approve", h.approveOrder)
		r.Post("/orders/{id}/dispatch", h.dispatchOrder)
		r.Post("/orders/{id}/cancel", h.cancelOrder)
		r.Post("/orders/{id}/receive", h.receiveOrder)
	})
}

func (h *Handler) requireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !shared.ActorFromContext(r.Context()).Manager {
			httpx.RespondError(w, httpx.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func orderID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.PerPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := OrderStatus(raw)
		if !status.IsValid() {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown status filter")
			return
		}
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("requesting_branch_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.RequestingBranchID = &id
		}
	}

	orders, page, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ListOrdersResponse{Orders: orders, Pagination: page})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	input := CreateOrderInput{
		RequestingBranchID: req.RequestingBranchID,
		RequestedDate:      req.RequestedDate,
		Notes:              req.Notes,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, OrderItemInput{
			OilType:           item.OilType,
			RequestedQuantity: item.RequestedQuantity,
			PricePerLiter:     item.PricePerLiter,
		})
	}

	order, err := h.service.Create(r.Context(), input, shared.ActorFromContext(r.Context()))
	if err != nil {
		h.logger.Error("create order", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewOrderView(order, nil))
}

func (h *Handler) showOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}

	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	var movement *transport.Movement
	if order.HasTransportRef() && h.resolver != nil {
		ref := transport.OrderRef{TransportRef: *order.TransportRef}
		if order.TransportNumber != nil {
			ref.TransportNumber = *order.TransportNumber
		}
		if order.TruckPlate != nil {
			ref.TruckPlate = *order.TruckPlate
		}
		if order.TrailerPlate != nil {
			ref.TrailerPlate = *order.TrailerPlate
		}
		if order.DriverName != nil {
			ref.DriverName = *order.DriverName
		}
		if m, err := h.resolver.Resolve(r.Context(), ref); err == nil {
			movement = &m
		} else {
			h.logger.Warn("resolve movement", slog.Any("error", err), slog.String("ref", *order.TransportRef))
		}
	}

	httpx.JSON(w, http.StatusOK, NewOrderView(order, movement))
}

func (h *Handler) showRemainder(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}

	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	remaining, err := h.service.RemainingOnTruck(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, RemainderResponse{
		OrderID:          order.ID,
		OrderNumber:      order.OrderNumber,
		RemainingOnTruck: remaining,
	})
}

func (h *Handler) approveOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}

	var req ApproveOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	order, err := h.service.Approve(r.Context(), id, ApproveInput{
		SourceBranchID:  req.SourceBranchID,
		TransportRef:    req.TransportRef,
		TransportNumber: req.TransportNumber,
		TruckPlate:      req.TruckPlate,
		TrailerPlate:    req.TrailerPlate,
		DriverName:      req.DriverName,
		Note:            req.Note,
	}, shared.ActorFromContext(r.Context()))
	if err != nil {
		h.logger.Error("approve order", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewOrderView(order, nil))
}

func (h *Handler) dispatchOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}

	order, err := h.service.Dispatch(r.Context(), id, shared.ActorFromContext(r.Context()))
	if err != nil {
		h.logger.Error("dispatch order", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewOrderView(order, nil))
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}

	var req CancelOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}

	order, err := h.service.Cancel(r.Context(), id, CancelInput{Reason: req.Reason}, shared.ActorFromContext(r.Context()))
	if err != nil {
		h.logger.Error("cancel order", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewOrderView(order, nil))
}

func (h *Handler) receiveOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return
	}

	var req ReceiveOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	input := ReconcileInput{ReceivedBy: req.ReceivedBy, Note: req.Note}
	for _, item := range req.Items {
		input.Items = append(input.Items, ReceivedItem{
			UnloadedQuantity:    item.UnloadedQuantity,
			KeptOnTruckQuantity: item.KeptOnTruckQuantity,
			DeliverySource:      item.DeliverySource,
		})
	}

	order, err := h.service.Reconcile(r.Context(), id, input, shared.ActorFromContext(r.Context()))
	if err != nil {
		h.logger.Error("receive order", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewOrderView(order, nil))
}
