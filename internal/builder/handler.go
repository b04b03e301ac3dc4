// Package builder serves the order and estimate cart builder over HTTP.
package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/salesdesk/salesdesk/internal/cart"
	"github.com/salesdesk/salesdesk/internal/catalog"
	"github.com/salesdesk/salesdesk/internal/platform/httpx"
	"github.com/salesdesk/salesdesk/internal/rbac"
	"github.com/salesdesk/salesdesk/internal/shared"
)

// CatalogProvider loads the catalog for a company.
type CatalogProvider interface {
	Catalog(ctx context.Context, companyID int64) (*catalog.Catalog, error)
}

// OperationRecorder counts applied cart operations.
type OperationRecorder interface {
	RecordCartOperation(op string)
}

// Options tunes the cart cookie and instrumentation.
type Options struct {
	CookieName   string
	CookieTTL    time.Duration
	SecureCookie bool
	Recorder     OperationRecorder
}

// Handler wires HTTP endpoints for the cart builder.
type Handler struct {
	logger    *slog.Logger
	catalogs  CatalogProvider
	sessions  *Sessions
	resolver  rbac.Resolver
	rbac      rbac.Middleware
	validator *validator.Validate
	opts      Options
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, catalogs CatalogProvider, sessions *Sessions, resolver rbac.Resolver, opts Options) *Handler {
	if opts.CookieName == "" {
		opts.CookieName = "salesdesk_cart"
	}
	if opts.CookieTTL <= 0 {
		opts.CookieTTL = 24 * time.Hour
	}
	return &Handler{
		logger:    logger,
		catalogs:  catalogs,
		sessions:  sessions,
		resolver:  resolver,
		rbac:      rbac.Middleware{Resolver: resolver, Logger: logger},
		validator: validator.New(),
		opts:      opts,
	}
}

// MountRoutes registers builder routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/builder", func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermOrderCreate, rbac.PermEstimateCreate))
		r.Get("/", h.Show)
		r.Delete("/", h.Discard)
		r.Get("/checkout", h.Checkout)
		r.Post("/products/{id}/toggle", h.ToggleProduct)
		r.Patch("/items/{index}", h.UpdateItem)
		r.Delete("/items/{productID}", h.RemoveItem)
		r.Put("/discount", h.SetDiscount)
		r.Post("/categories/toggle", h.ToggleCategory)
		r.Put("/search", h.SetSearch)
	})
}

// Show returns the current cart snapshot.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	op, cat, ok := h.prepare(w, r)
	if !ok {
		return
	}
	id := h.cartID(w, r)
	engine, err := h.sessions.View(r.Context(), shared.DraftKey(op, id), cat)
	if err != nil {
		h.fail(w, "load cart", err)
		return
	}
	h.respond(w, r, op, id, engine)
}

// Checkout returns the handoff for saving the finished order or estimate.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	op, cat, ok := h.prepare(w, r)
	if !ok {
		return
	}
	id := h.cartID(w, r)
	engine, err := h.sessions.View(r.Context(), shared.DraftKey(op, id), cat)
	if err != nil {
		h.fail(w, "load cart", err)
		return
	}
	mode, _, err := h.mode(r, op)
	if err != nil {
		h.fail(w, "resolve mode", err)
		return
	}
	httpx.JSON(w, http.StatusOK, engine.Checkout(mode))
}

// Discard drops the stored draft.
func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	op, ok := shared.OperatorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	id := h.cartID(w, r)
	if err := h.sessions.Discard(r.Context(), shared.DraftKey(op, id)); err != nil {
		h.fail(w, "discard cart", err)
		return
	}
	h.record("discard")
	w.WriteHeader(http.StatusNoContent)
}

// ToggleProduct adds a catalog product or bumps its quantity.
func (h *Handler) ToggleProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid product id", httpx.ErrValidation))
		return
	}
	h.mutate(w, r, "toggle_product", func(e *cart.Engine) {
		e.ToggleProductID(productID)
	})
}

// UpdateItem edits quantity, unit price or discount of a line.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid line index", httpx.ErrValidation))
		return
	}
	var req UpdateItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	field := cart.Field(req.Field)
	value := clampValue(field, *req.Value)
	h.mutate(w, r, "update_item", func(e *cart.Engine) {
		e.UpdateItem(index, field, value)
	})
}

// RemoveItem deletes a line by product.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid product id", httpx.ErrValidation))
		return
	}
	h.mutate(w, r, "remove_item", func(e *cart.Engine) {
		e.RemoveItem(productID)
	})
}

// SetDiscount sets the cart-level discount.
func (h *Handler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	var req DiscountRequest
	if !h.decode(w, r, &req) {
		return
	}
	percent := clampPercent(*req.Percent)
	h.mutate(w, r, "set_discount", func(e *cart.Engine) {
		e.SetOverallDiscount(percent)
	})
}

// ToggleCategory flips a category in the catalog filter.
func (h *Handler) ToggleCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.mutate(w, r, "toggle_category", func(e *cart.Engine) {
		e.ToggleCategory(req.Category)
	})
}

// SetSearch replaces the catalog search term.
func (h *Handler) SetSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.mutate(w, r, "set_search", func(e *cart.Engine) {
		e.SetSearchTerm(req.Term)
	})
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, name string, fn func(*cart.Engine)) {
	op, cat, ok := h.prepare(w, r)
	if !ok {
		return
	}
	id := h.cartID(w, r)
	engine, err := h.sessions.Update(r.Context(), shared.DraftKey(op, id), cat, fn)
	if err != nil {
		h.fail(w, "update cart", err)
		return
	}
	h.record(name)
	h.logger.Debug("cart updated",
		slog.String("op", name),
		slog.String("cart_id", id),
		slog.Int64("operator_id", op.ID),
		slog.Int("lines", len(engine.Lines())),
	)
	h.respond(w, r, op, id, engine)
}

func (h *Handler) prepare(w http.ResponseWriter, r *http.Request) (shared.Operator, *catalog.Catalog, bool) {
	op, ok := shared.OperatorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return shared.Operator{}, nil, false
	}
	cat, err := h.catalogs.Catalog(r.Context(), op.CompanyID)
	if err != nil {
		h.fail(w, "load catalog", err)
		return shared.Operator{}, nil, false
	}
	return op, cat, true
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, op shared.Operator, id string, engine *cart.Engine) {
	mode, caps, err := h.mode(r, op)
	if err != nil {
		h.fail(w, "resolve mode", err)
		return
	}
	httpx.JSON(w, http.StatusOK, newSnapshot(id, mode, caps, engine))
}

func (h *Handler) mode(r *http.Request, op shared.Operator) (cart.Mode, rbac.Capabilities, error) {
	caps, err := rbac.Resolve(r.Context(), h.resolver, op.ID)
	if err != nil {
		return "", rbac.Capabilities{}, err
	}
	mode := cart.DeriveMode(cart.ModeInputs{
		Requested:         r.URL.Query().Get("mode"),
		CanCreateOrder:    caps.CanCreateOrder,
		CanCreateEstimate: caps.CanCreateEstimate,
	})
	return mode, caps, nil
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed body", httpx.ErrValidation))
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, strings.ToLower(fe.Field())+" "+fe.Tag())
			}
			httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, strings.Join(fields, ", ")))
			return false
		}
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return false
	}
	return true
}

func (h *Handler) cartID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(h.opts.CookieName); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     h.opts.CookieName,
		Value:    id,
		Path:     "/builder",
		HttpOnly: true,
		Secure:   h.opts.SecureCookie,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(h.opts.CookieTTL),
	})
	return id
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, rbac.ErrNotFound) {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	h.logger.Error(msg, slog.Any("error", err))
	httpx.RespondError(w, err)
}

func (h *Handler) record(op string) {
	if h.opts.Recorder != nil {
		h.opts.Recorder.RecordCartOperation(op)
	}
}
