package web

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/HimeshSalesDev/msc-inventory-platform-backend-sub000/internal/app"
	"github.com/HimeshSalesDev/msc-inventory-platform-backend-sub000/internal/core"
)

const maxBodyBytes = 1 << 20 // 1 MiB; bulk imports are row-based JSON, not files

// Handler exposes the application service over HTTP. Authentication is
// handled upstream; this adapter trusts the actor identity headers set by
// the gateway.
type Handler struct {
	svc app.ApplicationService
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(RequestBodyLimit(maxBodyBytes))
	if origins := splitAndTrim(allowedOrigins); len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "X-Request-ID", "X-Actor-ID", "X-Actor-Name"},
			AllowCredentials: true,
		}))
	}

	r.Get("/api/health", h.health)

	r.Route("/api/inventory", func(r chi.Router) {
		r.Post("/receive", h.receive)
		r.Post("/bulk-receive", h.bulkReceive)
		r.Post("/remove-quantity", h.removeQuantity)
		r.Get("/{sku}", h.getInventory)
		r.Delete("/{sku}", h.archiveInventory)
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/confirm", h.confirmOrder)
		r.Post("/reverse", h.reverseOrder)
		r.Post("/replace", h.replaceOrder)
	})

	r.Delete("/api/locations/{id}", h.removeLocation)

	r.Route("/api/audit", func(r chi.Router) {
		r.Get("/", h.listAudit)
		r.Post("/login", h.recordLogin)
		r.Post("/logout", h.recordLogout)
	})

	return r
}

// actorFromRequest builds the explicit actor value every core call receives.
// Identity headers come from the upstream gateway; IP and user agent are
// taken from the request itself.
func actorFromRequest(r *http.Request) core.Actor {
	actor := core.Actor{
		Name:      r.Header.Get("X-Actor-Name"),
		UserAgent: r.UserAgent(),
	}
	if id, err := uuid.Parse(r.Header.Get("X-Actor-ID")); err == nil {
		actor.UserID = &id
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		actor.IPAddress = host
	} else {
		actor.IPAddress = r.RemoteAddr
	}
	return actor
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	var req app.ReceiveRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Receive(r.Context(), actorFromRequest(r), req)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) bulkReceive(w http.ResponseWriter, r *http.Request) {
	var req app.BulkReceiveRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.BulkReceive(r.Context(), actorFromRequest(r), req)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) removeQuantity(w http.ResponseWriter, r *http.Request) {
	var req app.RemoveQuantityRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.RemoveQuantity(r.Context(), actorFromRequest(r), req)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) confirmOrder(w http.ResponseWriter, r *http.Request) {
	var req app.OrderRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.ConfirmOrder(r.Context(), actorFromRequest(r), req)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) reverseOrder(w http.ResponseWriter, r *http.Request) {
	var req app.OrderRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.ReverseOrder(r.Context(), actorFromRequest(r), req)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) replaceOrder(w http.ResponseWriter, r *http.Request) {
	var req app.ReplaceOrderRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.ReplaceOrder(r.Context(), actorFromRequest(r), req)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) getInventory(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetInventory(r.Context(), chi.URLParam(r, "sku"))
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) archiveInventory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ArchiveInventory(r.Context(), actorFromRequest(r), chi.URLParam(r, "sku")); err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"status": "archived"})
}

func (h *Handler) removeLocation(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveLocation(r.Context(), actorFromRequest(r), chi.URLParam(r, "id")); err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"status": "removed"})
}

func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	q := app.AuditQuery{
		UserID:     r.URL.Query().Get("userId"),
		EventType:  r.URL.Query().Get("eventType"),
		EntityName: r.URL.Query().Get("entityName"),
		EntityID:   r.URL.Query().Get("entityId"),
		From:       r.URL.Query().Get("from"),
		To:         r.URL.Query().Get("to"),
	}
	q.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	q.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	res, err := h.svc.ListAuditEntries(r.Context(), q)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) recordLogin(w http.ResponseWriter, r *http.Request) {
	h.svc.RecordLogin(r.Context(), actorFromRequest(r))
	writeJSON(w, map[string]string{"status": "recorded"})
}

func (h *Handler) recordLogout(w http.ResponseWriter, r *http.Request) {
	h.svc.RecordLogout(r.Context(), actorFromRequest(r))
	writeJSON(w, map[string]string{"status": "recorded"})
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
