package transport

import (
	"errors"
	"net/http"
	"strconv"

	"petcare-pos/internal/domain"
	"petcare-pos/internal/middleware"
	"petcare-pos/internal/pos"
	"petcare-pos/internal/repository"
	"petcare-pos/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CheckoutLineRequest is one cart line in a checkout request. Name and unit
// price are the add-time captures held by the terminal's cart, not live
// catalog reads.
type CheckoutLineRequest struct {
	ItemID          string          `json:"itemId" validate:"required"`
	Name            string          `json:"name" validate:"required"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	Quantity        int             `json:"quantity" validate:"required,gte=1"`
	Kind            string          `json:"kind" validate:"required,oneof=product service"`
	LinkedSubjectID string          `json:"linkedSubjectId,omitempty"`
}

// CheckoutDiscountRequest is the optional single whole-cart discount
type CheckoutDiscountRequest struct {
	Name  string          `json:"name" validate:"required"`
	Kind  string          `json:"kind" validate:"required,oneof=percentage fixedAmount"`
	Value decimal.Decimal `json:"value"`
}

// CheckoutRequest is the commit-transaction payload
type CheckoutRequest struct {
	CustomerID     *uuid.UUID               `json:"customerId,omitempty"`
	Lines          []CheckoutLineRequest    `json:"lines" validate:"required,min=1,dive"`
	Discount       *CheckoutDiscountRequest `json:"discount,omitempty"`
	TaxRatePercent decimal.Decimal          `json:"taxRatePercent"`
	PaymentMethod  string                   `json:"paymentMethod" validate:"required"`
	IdempotencyKey string                   `json:"idempotencyKey,omitempty" validate:"omitempty,max=128"`
}

// CatalogResponse is the paginated catalog listing
type CatalogResponse struct {
	Items []*domain.CatalogItem `json:"items"`
	Total int                   `json:"total"`
}

// ReceiptListResponse is the recent-transactions listing
type ReceiptListResponse struct {
	Transactions []*domain.Transaction `json:"transactions"`
}

// POSHandler handles HTTP requests for the POS core: catalog read, checkout
// commit, and receipt read-back.
type POSHandler struct {
	catalogService  service.CatalogService
	checkoutService service.CheckoutService
	logger          *zap.Logger
}

// NewPOSHandler creates a new POSHandler
func NewPOSHandler(catalogService service.CatalogService, checkoutService service.CheckoutService, logger *zap.Logger) *POSHandler {
	return &POSHandler{
		catalogService:  catalogService,
		checkoutService: checkoutService,
		logger:          logger,
	}
}

// RegisterRoutes registers all POS routes. Every route requires an
// authenticated terminal; checkout additionally runs through the rate
// limiter the server mounts on this subtree, and the end-of-day receipt
// listing is restricted to manager and admin roles.
func (h *POSHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler, checkoutLimiter func(http.Handler) http.Handler) {
	r.Route("/api/pos", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/catalog", h.ListCatalog)
		r.Get("/transactions/{id}", h.GetReceipt)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole([]string{"manager", "admin"}, h.logger))
			r.Get("/transactions", h.ListReceipts)
		})

		r.Group(func(r chi.Router) {
			if checkoutLimiter != nil {
				r.Use(checkoutLimiter)
			}
			r.Post("/checkout", h.Checkout)
		})
	})
}

// ListCatalog handles the catalog read, optionally filtered by kind or
// searched by name/category
func (h *POSHandler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	businessID, ok := businessIDFromContext(w, r)
	if !ok {
		return
	}

	var kind *domain.ItemKind
	if raw := r.URL.Query().Get("kind"); raw != "" {
		k := domain.ItemKind(raw)
		if !k.Valid() {
			middleware.RespondWithError(w, http.StatusBadRequest, "kind must be product or service")
			return
		}
		kind = &k
	}

	if query := r.URL.Query().Get("q"); query != "" {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

		items, total, err := h.catalogService.Search(r.Context(), businessID, query, page, pageSize)
		if err != nil {
			h.logger.Error("Catalog search failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to search catalog")
			return
		}
		middleware.RespondWithJSON(w, http.StatusOK, CatalogResponse{Items: items, Total: total})
		return
	}

	items, err := h.catalogService.ListItems(r.Context(), businessID, kind)
	if err != nil {
		h.logger.Error("Catalog listing failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list catalog")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CatalogResponse{Items: items, Total: len(items)})
}

// Checkout handles the commit of a finalized cart into one transaction
func (h *POSHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	businessID, ok := businessIDFromContext(w, r)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Checkout validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cart, err := buildCart(&req)
	if err != nil {
		h.logger.Debug("Checkout cart rejected", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.checkoutService.Commit(r.Context(), service.CommitRequest{
		BusinessID:     businessID,
		CustomerID:     req.CustomerID,
		Cart:           cart,
		PaymentMethod:  req.PaymentMethod,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			middleware.RespondWithError(w, http.StatusBadRequest, "cart has no line items")
		case errors.Is(err, service.ErrInvalidPaymentMethod):
			middleware.RespondWithError(w, http.StatusBadRequest, "payment method not enabled for this business")
		case errors.Is(err, repository.ErrBusinessNotFound):
			middleware.RespondWithError(w, http.StatusBadRequest, "unknown business")
		default:
			h.logger.Error("Checkout commit failed",
				zap.String("business_id", businessID.String()),
				zap.Error(err),
			)
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to commit transaction")
		}
		return
	}

	h.logger.Info("Transaction committed",
		zap.String("business_id", businessID.String()),
		zap.String("transaction_id", tx.TransactionID),
		zap.String("total", tx.TotalAmount.StringFixed(2)),
		zap.String("payment_method", tx.PaymentMethod),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, tx)
}

// GetReceipt handles the receipt read-back for display or printing
func (h *POSHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	businessID, ok := businessIDFromContext(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid transaction ID")
		return
	}

	tx, err := h.checkoutService.GetReceipt(r.Context(), businessID, id)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "transaction not found")
			return
		}
		h.logger.Error("Receipt read failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get transaction")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, tx)
}

// ListReceipts handles the recent-transactions listing
func (h *POSHandler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	businessID, ok := businessIDFromContext(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	transactions, err := h.checkoutService.ListReceipts(r.Context(), businessID, limit, offset)
	if err != nil {
		h.logger.Error("Receipt listing failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ReceiptListResponse{Transactions: transactions})
}

// buildCart reconstructs the terminal's cart from the checkout payload so
// the committer can recompute totals from scratch.
func buildCart(req *CheckoutRequest) (*pos.Cart, error) {
	if req.TaxRatePercent.IsNegative() {
		return nil, errors.New("taxRatePercent must not be negative")
	}

	cart := pos.NewCart(req.TaxRatePercent)

	for _, line := range req.Lines {
		if line.UnitPrice.IsNegative() {
			return nil, errors.New("unitPrice must not be negative")
		}
		item := domain.CatalogItem{
			ID:        line.ItemID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Kind:      domain.ItemKind(line.Kind),
		}
		if err := cart.AddItem(item, line.Quantity, line.LinkedSubjectID); err != nil {
			return nil, err
		}
	}

	if req.Discount != nil {
		err := cart.ApplyDiscount(&domain.Discount{
			Name:  req.Discount.Name,
			Kind:  domain.DiscountKind(req.Discount.Kind),
			Value: req.Discount.Value,
		})
		if err != nil {
			return nil, err
		}
	}

	return cart, nil
}

func businessIDFromContext(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw, ok := middleware.GetBusinessID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	businessID, err := uuid.Parse(raw)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid business claim")
		return uuid.Nil, false
	}
	return businessID, true
}
