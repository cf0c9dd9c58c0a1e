package pumpsale

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fueldesk/fueldesk/internal/distribution"
	"github.com/fueldesk/fueldesk/internal/platform/httpx"
	"github.com/fueldesk/fueldesk/internal/shared"
)

// Handler manages pump sale endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers pump sale routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listSales)
	r.Post("/", h.createSale)
	r.Get("/{id}", h.showSale)
	r.Post("/{id}/cancel", h.cancelSale)
}

// CreateSaleItemRequest is one line in the create payload.
type CreateSaleItemRequest struct {
	OilType       distribution.OilType `json:"oil_type" validate:"required"`
	Quantity      float64              `json:"quantity" validate:"required,gt=0"`
	PricePerLiter float64              `json:"price_per_liter" validate:"gte=0"`
}

// CreateSaleRequest is the JSON payload for recording a sale.
type CreateSaleRequest struct {
	SaleType           SaleType                `json:"sale_type" validate:"required"`
	CustomerType       CustomerType            `json:"customer_type" validate:"required"`
	SellingBranchID    int64                   `json:"selling_branch_id" validate:"required,gt=0"`
	SellingBranchName  string                  `json:"selling_branch_name" validate:"required,max=200"`
	BuyerBranchID      *int64                  `json:"buyer_branch_id,omitempty"`
	CustomerName       string                  `json:"customer_name,omitempty" validate:"omitempty,max=200"`
	CustomerTaxID      string                  `json:"customer_tax_id,omitempty" validate:"omitempty,max=50"`
	CustomerAddress    string                  `json:"customer_address,omitempty"`
	SourceOrderNumber  string                  `json:"source_order_number,omitempty" validate:"omitempty,max=100"`
	SourceTransportRef string                  `json:"source_transport_ref,omitempty" validate:"omitempty,max=100"`
	Notes              string                  `json:"notes,omitempty"`
	PaidAmount         float64                 `json:"paid_amount" validate:"gte=0"`
	PaymentMethod      PaymentMethod           `json:"payment_method" validate:"required"`
	Items              []CreateSaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CancelSaleRequest carries the cancellation reason.
type CancelSaleRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// ListSalesResponse wraps a page of sales.
type ListSalesResponse struct {
	Sales      []Sale            `json:"sales"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.PerPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	if raw := r.URL.Query().Get("selling_branch_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.SellingBranchID = &id
		}
	}
	if raw := r.URL.Query().Get("sale_type"); raw != "" {
		saleType := SaleType(raw)
		if !saleType.IsValid() {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown sale type filter")
			return
		}
		filter.SaleType = &saleType
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := SaleStatus(raw)
		filter.Status = &status
	}

	sales, page, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list sales", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ListSalesResponse{Sales: sales, Pagination: page})
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	input := CreateSaleInput{
		SaleType:           req.SaleType,
		CustomerType:       req.CustomerType,
		SellingBranchID:    req.SellingBranchID,
		SellingBranchName:  req.SellingBranchName,
		BuyerBranchID:      req.BuyerBranchID,
		CustomerName:       req.CustomerName,
		CustomerTaxID:      req.CustomerTaxID,
		CustomerAddress:    req.CustomerAddress,
		SourceOrderNumber:  req.SourceOrderNumber,
		SourceTransportRef: req.SourceTransportRef,
		Notes:              req.Notes,
		PaidAmount:         req.PaidAmount,
		PaymentMethod:      req.PaymentMethod,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, SaleItemInput{
			OilType:       item.OilType,
			Quantity:      item.Quantity,
			PricePerLiter: item.PricePerLiter,
		})
	}

	sale, err := h.service.Create(r.Context(), input, shared.ActorFromContext(r.Context()))
	if err != nil {
		h.logger.Error("create sale", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) showSale(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid sale id")
		return
	}
	sale, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) cancelSale(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid sale id")
		return
	}

	var req CancelSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}

	sale, err := h.service.Cancel(r.Context(), id, CancelSaleInput{Reason: req.Reason}, shared.ActorFromContext(r.Context()))
	if err != nil {
		h.logger.Error("cancel sale", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}
