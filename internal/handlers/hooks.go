package handlers

import (
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"opsdash-api/internal/cache"
	"opsdash-api/internal/realtime"
	"opsdash-api/pkg/logging/logging"
)

// OrderEvent is the snapshot the host system sends when an order-like record
// is created, updated or finalized.
type OrderEvent struct {
	Event      string            `json:"event"` // created | updated | submitted
	OrderID    string            `json:"order_id"`
	Tenant     string            `json:"tenant"`
	Customer   string            `json:"customer"`
	GrandTotal float64           `json:"grand_total"`
	Statuses   map[string]string `json:"statuses"`
}

// HookHandler receives mutation events and fires the two side effects:
// tenant-scoped cache invalidation and the live-update broadcast. Both are
// fire-and-forget; their failure never fails the mutation itself.
type HookHandler struct {
	Invalidator *cache.Invalidator
	Publisher   realtime.Publisher
}

func NewHookHandler(inv *cache.Invalidator, pub realtime.Publisher) *HookHandler {
	if pub == nil {
		pub = realtime.NopPublisher{}
	}
	return &HookHandler{
		Invalidator: inv,
		Publisher:   pub,
	}
}

// OrderChange handles POST /v1/hooks/orders.
func (h *HookHandler) OrderChange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)

	var ev OrderEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		logger.Warn("invalid hook payload", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if ev.Tenant == "" {
		writeError(w, http.StatusBadRequest, "tenant_required")
		return
	}

	// Coarse invalidation: every dashboard for this tenant. Failure is an
	// operational concern, never surfaced to the mutation.
	removed, err := h.Invalidator.Invalidate(ctx, ev.Tenant)
	if err != nil {
		logger.Warn("invalidation_failed",
			zap.String("tenant", ev.Tenant),
			zap.Error(err),
		)
	} else {
		logger.Info("cache_invalidated",
			zap.String("tenant", ev.Tenant),
			zap.String("order_id", ev.OrderID),
			zap.Int("keys_removed", removed),
		)
	}

	if err := h.Publisher.Publish(ctx, realtime.Event{
		Type:   "sales_order_update",
		Tenant: ev.Tenant,
		Data: map[string]any{
			"order_id":    ev.OrderID,
			"customer":    ev.Customer,
			"grand_total": ev.GrandTotal,
			"statuses":    ev.Statuses,
			"action":      ev.Event,
		},
	}); err != nil {
		logger.Warn("realtime_publish_failed",
			zap.String("tenant", ev.Tenant),
			zap.Error(err),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}
