package httpx

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/prince-ramoliya/founder-harmony/internal/domain"
	"github.com/prince-ramoliya/founder-harmony/internal/repository"
	"github.com/prince-ramoliya/founder-harmony/internal/service/audit"
	"github.com/prince-ramoliya/founder-harmony/internal/service/equity"
	"github.com/prince-ramoliya/founder-harmony/internal/service/exitsim"
	"github.com/prince-ramoliya/founder-harmony/internal/service/ledger"
	"github.com/prince-ramoliya/founder-harmony/internal/service/report"
	"github.com/prince-ramoliya/founder-harmony/internal/service/workspace"
	"github.com/prince-ramoliya/founder-harmony/internal/ws"
)

// Router wires HTTP endpoints to services.
type Router struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	workspace     workspace.Service
	equity        *equity.Service
	ledger        ledger.Service
	audit         audit.Service
	hub           *ws.Hub
	upgrader      websocket.Upgrader
	limiter       RateLimiter
	monthsBack    int
	auditPageSize int
	dbHealth      func(context.Context) error

	metricsOnce        sync.Once
	metricsInitialized bool
	requestTotal       *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
	rateLimitHits      *prometheus.CounterVec
}

const (
	rateWindowDefault  = time.Minute
	rateWindowRealtime = 30 * time.Second
	rateLimitMutation  = 60
	rateLimitRead      = 240
	rateLimitWebsocket = 30
	healthCheckTimeout = 2 * time.Second
)

// NewRouter assembles routes with dependencies.
func NewRouter(logger *slog.Logger, workspaceSvc workspace.Service, equitySvc *equity.Service, ledgerSvc ledger.Service, auditSvc audit.Service, hub *ws.Hub, limiter RateLimiter, monthsBack, auditPageSize int, metricsEnabled bool, dbHealth func(context.Context) error) *Router {
	r := &Router{
		mux:       http.NewServeMux(),
		logger:    logger,
		workspace: workspaceSvc,
		equity:    equitySvc,
		ledger:    ledgerSvc,
		audit:     auditSvc,
		hub:       hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		limiter:       limiter,
		monthsBack:    monthsBack,
		auditPageSize: auditPageSize,
		dbHealth:      dbHealth,
	}
	if r.limiter == nil {
		r.limiter = NewMemoryRateLimiter()
	}
	if r.monthsBack <= 0 {
		r.monthsBack = report.DefaultMonthsBack
	}
	if metricsEnabled {
		r.initMetrics()
	}
	r.register(metricsEnabled)
	return r
}

// ServeHTTP delegates to underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Close releases background resources.
func (r *Router) Close() {
	if r.limiter != nil {
		r.limiter.Close()
	}
}

func (r *Router) register(metricsEnabled bool) {
	r.mux.HandleFunc("/healthz", r.access(r.handleHealthz))
	r.mux.HandleFunc("/workspaces", r.access(r.withRateLimit(rateLimitMutation, rateWindowDefault, r.handleWorkspaces)))
	r.mux.HandleFunc("/workspaces/", r.access(r.handleWorkspaceSubroutes))
	r.mux.HandleFunc("/ws/mutations", r.access(r.withRateLimit(rateLimitWebsocket, rateWindowRealtime, r.handleMutationsWS)))
	if metricsEnabled {
		r.mux.HandleFunc("/metrics", promhttp.Handler().ServeHTTP)
	}
}

func (r *Router) handleWorkspaces(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	created, err := r.workspace.Create(req.Context(), payload.Name, actorPointer(req))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewWorkspace(created))
}

func (r *Router) handleWorkspaceSubroutes(w http.ResponseWriter, req *http.Request) {
	trimmed := strings.TrimPrefix(req.URL.Path, "/workspaces/")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 1 || parts[0] == "" {
		r.notFound(w)
		return
	}
	workspaceID := parts[0]
	if len(parts) == 1 {
		r.withRateLimit(rateLimitMutation, rateWindowDefault, func(w http.ResponseWriter, req *http.Request) {
			r.handleWorkspace(w, req, workspaceID)
		})(w, req)
		return
	}
	switch parts[1] {
	case "founders":
		if len(parts) == 2 {
			r.routeByMethod(w, req, workspaceID, r.handleFoundersList, r.handleInitialFounder)
			return
		}
		if len(parts) == 4 && parts[3] == "equity" {
			founderID := parts[2]
			r.withRateLimit(rateLimitMutation, rateWindowDefault, func(w http.ResponseWriter, req *http.Request) {
				r.handleEquityChange(w, req, workspaceID, founderID)
			})(w, req)
			return
		}
	case "invites":
		if len(parts) == 2 {
			r.routeByMethod(w, req, workspaceID, r.handleInvitesList, r.handleInvite)
			return
		}
	case "capital":
		if len(parts) == 2 {
			r.routeByMethod(w, req, workspaceID, r.handleCapitalList, r.handleCapitalAppend)
			return
		}
	case "expenses":
		if len(parts) == 2 {
			r.routeByMethod(w, req, workspaceID, r.handleExpensesList, r.handleExpenseAppend)
			return
		}
	case "revenue":
		if len(parts) == 2 {
			r.routeByMethod(w, req, workspaceID, r.handleRevenueList, r.handleRevenueAppend)
			return
		}
	case "dashboard":
		if len(parts) == 2 {
			r.withRateLimit(rateLimitRead, rateWindowDefault, func(w http.ResponseWriter, req *http.Request) {
				r.handleDashboard(w, req, workspaceID)
			})(w, req)
			return
		}
	case "exit-simulation":
		if len(parts) == 2 {
			r.withRateLimit(rateLimitRead, rateWindowDefault, func(w http.ResponseWriter, req *http.Request) {
				r.handleExitSimulation(w, req, workspaceID)
			})(w, req)
			return
		}
	case "audit":
		if len(parts) == 2 {
			r.withRateLimit(rateLimitRead, rateWindowDefault, func(w http.ResponseWriter, req *http.Request) {
				r.handleAuditList(w, req, workspaceID)
			})(w, req)
			return
		}
	}
	r.notFound(w)
}

type workspaceHandler func(w http.ResponseWriter, req *http.Request, workspaceID string)

// routeByMethod dispatches GET to the read handler with the read rate budget
// and POST to the write handler with the mutation budget.
func (r *Router) routeByMethod(w http.ResponseWriter, req *http.Request, workspaceID string, get, post workspaceHandler) {
	var limit int
	var handler workspaceHandler
	switch req.Method {
	case http.MethodGet:
		limit, handler = rateLimitRead, get
	case http.MethodPost:
		limit, handler = rateLimitMutation, post
	default:
		r.methodNotAllowed(w)
		return
	}
	r.withRateLimit(limit, rateWindowDefault, func(w http.ResponseWriter, req *http.Request) {
		handler(w, req, workspaceID)
	})(w, req)
}

func (r *Router) handleWorkspace(w http.ResponseWriter, req *http.Request, workspaceID string) {
	switch req.Method {
	case http.MethodGet:
		found, err := r.workspace.Get(req.Context(), workspaceID)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, viewWorkspace(found))
	case http.MethodPut:
		var payload struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		renamed, err := r.workspace.Rename(req.Context(), workspaceID, payload.Name, actorPointer(req))
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, viewWorkspace(renamed))
	case http.MethodDelete:
		if err := r.workspace.Teardown(req.Context(), workspaceID); err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleFoundersList(w http.ResponseWriter, req *http.Request, workspaceID string) {
	founders, err := r.equity.ListFounders(req.Context(), workspaceID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewFounders(founders))
}

func (r *Router) handleInitialFounder(w http.ResponseWriter, req *http.Request, workspaceID string) {
	var payload struct {
		Name      string  `json:"name"`
		Email     string  `json:"email"`
		RoleTitle string  `json:"role_title"`
		Color     string  `json:"color"`
		UserID    *string `json:"user_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	founder, err := r.equity.CreateInitialFounder(req.Context(), workspaceID, actorPointer(req), equity.FounderProfile{
		Name:      payload.Name,
		Email:     payload.Email,
		RoleTitle: payload.RoleTitle,
		Color:     payload.Color,
		UserID:    payload.UserID,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewFounder(founder))
}

func (r *Router) handleEquityChange(w http.ResponseWriter, req *http.Request, workspaceID, founderID string) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		NewPercentage decimal.Decimal `json:"new_percentage"`
		Reason        *string         `json:"reason"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	founder, err := r.equity.ChangeEquity(req.Context(), equity.ChangeEquityInput{
		WorkspaceID:   workspaceID,
		FounderID:     founderID,
		NewPercentage: payload.NewPercentage,
		Reason:        payload.Reason,
		ActorID:       actorPointer(req),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	imbalance, err := r.equity.CheckBalance(req.Context(), workspaceID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"founder":   viewFounder(founder),
		"imbalance": viewImbalance(imbalance),
	})
}

func (r *Router) handleInvitesList(w http.ResponseWriter, req *http.Request, workspaceID string) {
	invites, err := r.equity.ListInvites(req.Context(), workspaceID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewInvites(invites))
}

func (r *Router) handleInvite(w http.ResponseWriter, req *http.Request, workspaceID string) {
	var payload struct {
		Email  string  `json:"email"`
		Name   string  `json:"name"`
		Role   string  `json:"role"`
		Reason *string `json:"reason"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	founder, invite, err := r.equity.InviteFounder(req.Context(), equity.InviteInput{
		WorkspaceID: workspaceID,
		Email:       payload.Email,
		Name:        payload.Name,
		Role:        payload.Role,
		Reason:      payload.Reason,
		ActorID:     actorPointer(req),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"founder": viewFounder(founder),
		"invite":  viewInvite(invite),
	})
}

func (r *Router) handleCapitalList(w http.ResponseWriter, req *http.Request, workspaceID string) {
	contributions, err := r.ledger.ListCapital(req.Context(), workspaceID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewCapitalList(contributions))
}

func (r *Router) handleCapitalAppend(w http.ResponseWriter, req *http.Request, workspaceID string) {
	var payload struct {
		FounderID        string          `json:"founder_id"`
		Amount           decimal.Decimal `json:"amount"`
		ContributionType string          `json:"contribution_type"`
		Status           string          `json:"status"`
		EquityImpact     bool            `json:"equity_impact"`
		Notes            string          `json:"notes"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	contribution, err := r.ledger.AppendCapital(req.Context(), ledger.CapitalInput{
		WorkspaceID:      workspaceID,
		FounderID:        payload.FounderID,
		Amount:           payload.Amount,
		ContributionType: payload.ContributionType,
		Status:           payload.Status,
		EquityImpact:     payload.EquityImpact,
		Notes:            payload.Notes,
		ActorID:          actorPointer(req),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewCapital(contribution))
}

func (r *Router) handleExpensesList(w http.ResponseWriter, req *http.Request, workspaceID string) {
	expenses, err := r.ledger.ListExpenses(req.Context(), workspaceID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewExpenseList(expenses))
}

func (r *Router) handleExpenseAppend(w http.ResponseWriter, req *http.Request, workspaceID string) {
	var payload struct {
		OwnerID     *string         `json:"owner_id"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		ExpenseType string          `json:"expense_type"`
		Description string          `json:"description"`
		Status      string          `json:"status"`
		ReceiptURL  string          `json:"receipt_url"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	expense, err := r.ledger.AppendExpense(req.Context(), ledger.ExpenseInput{
		WorkspaceID: workspaceID,
		OwnerID:     payload.OwnerID,
		Amount:      payload.Amount,
		Category:    payload.Category,
		ExpenseType: payload.ExpenseType,
		Description: payload.Description,
		Status:      payload.Status,
		ReceiptURL:  payload.ReceiptURL,
		ActorID:     actorPointer(req),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewExpense(expense))
}

func (r *Router) handleRevenueList(w http.ResponseWriter, req *http.Request, workspaceID string) {
	revenues, err := r.ledger.ListRevenues(req.Context(), workspaceID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewRevenueList(revenues))
}

func (r *Router) handleRevenueAppend(w http.ResponseWriter, req *http.Request, workspaceID string) {
	var payload struct {
		Amount      decimal.Decimal `json:"amount"`
		Source      string          `json:"source"`
		RevenueType string          `json:"revenue_type"`
		Status      string          `json:"status"`
		Notes       string          `json:"notes"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	revenue, err := r.ledger.AppendRevenue(req.Context(), ledger.RevenueInput{
		WorkspaceID: workspaceID,
		Amount:      payload.Amount,
		Source:      payload.Source,
		RevenueType: payload.RevenueType,
		Status:      payload.Status,
		Notes:       payload.Notes,
		ActorID:     actorPointer(req),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewRevenue(revenue))
}

func (r *Router) handleDashboard(w http.ResponseWriter, req *http.Request, workspaceID string) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	ctx := req.Context()
	capital, err := r.ledger.ListCapital(ctx, workspaceID)
	if err != nil {
		respondError(w, err)
		return
	}
	expenses, err := r.ledger.ListExpenses(ctx, workspaceID)
	if err != nil {
		respondError(w, err)
		return
	}
	revenues, err := r.ledger.ListRevenues(ctx, workspaceID)
	if err != nil {
		respondError(w, err)
		return
	}
	founders, err := r.equity.ListFounders(ctx, workspaceID)
	if err != nil {
		respondError(w, err)
		return
	}
	imbalance, err := r.equity.CheckBalance(ctx, workspaceID)
	if err != nil {
		respondError(w, err)
		return
	}
	monthsBack := r.monthsBack
	if raw := req.URL.Query().Get("months"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			monthsBack = parsed
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":        viewSummary(report.DashboardSummary(revenues, expenses, capital)),
		"cash_flow":      viewCashFlow(report.MonthlyCashFlow(capital, revenues, expenses, monthsBack, time.Now())),
		"founder_totals": viewFounderTotals(report.PerFounderTotals(capital, founders)),
		"imbalance":      viewImbalance(imbalance),
	})
}

func (r *Router) handleExitSimulation(w http.ResponseWriter, req *http.Request, workspaceID string) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		ExitAmount  *decimal.Decimal  `json:"exit_amount"`
		ExitAmounts []decimal.Decimal `json:"exit_amounts"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	founders, err := r.equity.ListFounders(req.Context(), workspaceID)
	if err != nil {
		respondError(w, err)
		return
	}
	if len(payload.ExitAmounts) > 0 {
		rows, err := exitsim.CompareScenarios(payload.ExitAmounts, founders)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"exit_amounts": payload.ExitAmounts,
			"scenarios":    viewScenarioRows(rows),
		})
		return
	}
	if payload.ExitAmount == nil {
		writeError(w, http.StatusBadRequest, "exit_amount or exit_amounts required")
		return
	}
	payouts, err := exitsim.Simulate(*payload.ExitAmount, founders)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"exit_amount": payload.ExitAmount,
		"payouts":     viewPayouts(payouts),
	})
}

func (r *Router) handleAuditList(w http.ResponseWriter, req *http.Request, workspaceID string) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	query := req.URL.Query()
	filter := repository.AuditFilter{
		EntityType: strings.TrimSpace(query.Get("entity_type")),
	}
	for _, raw := range query["action"] {
		action := domain.AuditAction(strings.TrimSpace(raw))
		if action != "" {
			filter.Actions = append(filter.Actions, action)
		}
	}
	filter.Limit, _ = strconv.Atoi(query.Get("limit"))
	if filter.Limit <= 0 {
		filter.Limit = r.auditPageSize
	}
	filter.Offset, _ = strconv.Atoi(query.Get("offset"))
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	entries, err := r.audit.List(req.Context(), workspaceID, filter)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewAuditEntries(entries))
}

func (r *Router) handleMutationsWS(w http.ResponseWriter, req *http.Request) {
	workspaceID := req.URL.Query().Get("workspace_id")
	if workspaceID == "" {
		writeError(w, http.StatusBadRequest, "workspace_id query parameter required")
		return
	}
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	client := ws.NewClient(conn, r.logger)
	r.hub.Register(workspaceID, client)
	go func() {
		defer func() {
			r.hub.Unregister(workspaceID, client)
			client.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	components := make(map[string]any)
	status := "ok"
	if r.dbHealth != nil {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()
		if err := r.dbHealth(ctx); err != nil {
			status = "degraded"
			components["database"] = map[string]any{
				"status": "down",
				"error":  err.Error(),
			}
		} else {
			components["database"] = map[string]any{"status": "up"}
		}
	}
	payload := map[string]any{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, payload)
}

// access logs every request with status, latency and actor attribution.
func (r *Router) access(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next(recorder, req)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		r.recordRequestMetrics(req.Method, routeLabel(req.URL.Path), status, duration)
		fields := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"bytes", recorder.bytes,
			"duration_ms", duration.Milliseconds(),
		}
		if ip := clientIP(req); ip != "" {
			fields = append(fields, "ip", ip)
		}
		if reqID := strings.TrimSpace(req.Header.Get("X-Request-ID")); reqID != "" {
			fields = append(fields, "request_id", reqID)
		}
		if actor := actorFromRequest(req); actor != "" {
			fields = append(fields, "actor_id", actor)
		}

		switch {
		case status >= http.StatusInternalServerError:
			r.logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			r.logger.Warn("http_request", fields...)
		default:
			r.logger.Info("http_request", fields...)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack lets the websocket upgrade reach the underlying connection.
func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := sr.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("hijacker not supported")
}

func clientIP(req *http.Request) string {
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}

func (r *Router) applyRateHeaders(w http.ResponseWriter, limit int, decision rateDecision) {
	if limit <= 0 {
		return
	}
	remaining := limit - decision.count
	if remaining < 0 {
		remaining = 0
	}
	headers := w.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	if !decision.windowEnd.IsZero() {
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(decision.windowEnd.Unix(), 10))
	}
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (r *Router) notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "not found")
}
