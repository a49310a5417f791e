// @title Client Management API
// @version 1.0.0
// @description Tenant-scoped clients, client groups and user assignments.

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/opentrusty/clientmanagement/docs"
	"github.com/opentrusty/clientmanagement/internal/association"
	"github.com/opentrusty/clientmanagement/internal/client"
	"github.com/opentrusty/clientmanagement/internal/clientgroup"
	"github.com/opentrusty/clientmanagement/internal/domain"
	"github.com/opentrusty/clientmanagement/internal/id"
	"github.com/opentrusty/clientmanagement/internal/observability/logger"
	"github.com/opentrusty/clientmanagement/internal/observability/metrics"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Config holds the facade settings that depend on the environment.
type Config struct {
	// Development enables the default tenant and user fallbacks and the
	// API document.
	Development   bool
	DefaultTenant string
	DefaultUser   string
	// JWTSecret verifies bearer tokens. Empty means tokens are ignored.
	JWTSecret      string
	RequestTimeout time.Duration
}

// Handler holds HTTP handlers and dependencies
type Handler struct {
	clients      *client.Service
	groups       *clientgroup.Service
	associations *association.Service
	instruments  *metrics.Instruments
	cfg          Config
}

// NewHandler creates a new HTTP handler
func NewHandler(
	clients *client.Service,
	groups *clientgroup.Service,
	associations *association.Service,
	instruments *metrics.Instruments,
	cfg Config,
) *Handler {
	if instruments == nil {
		instruments = metrics.NoopInstruments()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	return &Handler{
		clients:      clients,
		groups:       groups,
		associations: associations,
		instruments:  instruments,
		cfg:          cfg,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(h.cfg.RequestTimeout))

	r.Get("/health", h.HealthCheck)
	if h.cfg.Development {
		r.Get("/swagger/doc.json", h.APIDocument)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(IdentityMiddleware([]byte(h.cfg.JWTSecret)))

		r.Route("/clients", func(r chi.Router) {
			r.Post("/", h.CreateClient)
			r.Get("/", h.ListClients)
			r.Route("/{clientId}", func(r chi.Router) {
				r.Get("/", h.GetClient)
				r.Put("/", h.UpdateClient)
				r.Delete("/", h.DeleteClient)
				r.Get("/groups", h.GetClientGroups)
				r.Get("/users", h.GetClientUsers)
				r.Post("/users", h.AssignUserToClient)
				r.Delete("/users/{userId}", h.RemoveUserFromClient)
			})
		})

		r.Route("/groups", func(r chi.Router) {
			r.Post("/", h.CreateGroup)
			r.Get("/", h.ListGroups)
			r.Route("/{groupId}", func(r chi.Router) {
				r.Get("/", h.GetGroup)
				r.Put("/", h.UpdateGroup)
				r.Delete("/", h.DeleteGroup)
				r.Get("/clients", h.GetGroupClients)
				r.Get("/clients/{clientId}", h.IsClientInGroup)
				r.Post("/clients/{clientId}", h.AddClientToGroup)
				r.Delete("/clients/{clientId}", h.RemoveClientFromGroup)
			})
		})

		r.Get("/users/{userId}/clients", h.GetUserClients)
	})

	return r
}

// HealthCheck returns the health status
// @Summary Health Check
// @Description Checks if the service is up and running
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "clientmanagement",
	})
}

// APIDocument serves the registered OpenAPI document.
func (h *Handler) APIDocument(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, docs.SwaggerInfo.ReadDoc())
}

// resolveTenant applies the precedence: explicit field, X-Tenant-Id header,
// token claim, development default.
func (h *Handler) resolveTenant(r *http.Request, explicit string) (string, error) {
	c := GetCaller(r.Context())
	candidates := []string{explicit, c.HeaderTenantID, c.ClaimTenantID}
	if h.cfg.Development {
		candidates = append(candidates, h.cfg.DefaultTenant)
	}
	if t := firstNonBlank(candidates...); t != "" {
		return t, nil
	}
	return "", status.Error(codes.Unauthenticated, "tenant could not be resolved")
}

// resolveActor applies the precedence: explicit field, user headers, token
// identity, development default, System.
func (h *Handler) resolveActor(r *http.Request, explicit string) string {
	c := GetCaller(r.Context())
	candidates := []string{
		explicit,
		c.HeaderUserID,
		c.HeaderUserEmail,
		c.ClaimSubject,
		c.ClaimEmail,
		c.ClaimName,
	}
	if h.cfg.Development {
		candidates = append(candidates, h.cfg.DefaultUser)
	}
	return domain.ActorOrSystem(candidates...)
}

// begin resolves the tenant and logs the call. The returned logger carries
// the operation and tenant.
func (h *Handler) begin(r *http.Request, op, explicitTenant string) (string, *slog.Logger, error) {
	tenantID, err := h.resolveTenant(r, explicitTenant)
	if err != nil {
		return "", nil, err
	}
	log := slog.With(logger.Operation(op), logger.TenantID(tenantID))
	log.InfoContext(r.Context(), "rpc")
	return tenantID, log, nil
}

func pathID(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	v, err := id.Parse(raw)
	if err != nil {
		return "", invalidArgument("invalid %s %q", name, raw)
	}
	return v, nil
}

// pathUserID reads an identity-provider user id. These ids are opaque, so
// only blank and oversized values are rejected.
func pathUserID(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	unescaped, err := url.PathUnescape(raw)
	if err != nil {
		return "", invalidArgument("invalid %s %q", name, raw)
	}
	v, err := association.NormalizeUserID(unescaped)
	if err != nil {
		return "", invalidArgument("invalid %s %q", name, raw)
	}
	return v, nil
}

func pageRequest(r *http.Request) (domain.PageRequest, error) {
	q := r.URL.Query()
	page, err := queryInt(q.Get("page"), "page")
	if err != nil {
		return domain.PageRequest{}, err
	}
	size, err := queryInt(q.Get("pageSize"), "pageSize")
	if err != nil {
		return domain.PageRequest{}, err
	}
	return domain.PageRequest{Page: page, PageSize: size, Search: q.Get("searchTerm")}, nil
}

func queryInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidArgument("invalid %s %q", name, raw)
	}
	return n, nil
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched
// unless required is set.
func decodeBody(r *http.Request, v any, required bool) error {
	if r.Body == nil {
		if required {
			return invalidArgument("request body is required")
		}
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		if required {
			return invalidArgument("request body is required")
		}
		return nil
	default:
		return invalidArgument("invalid request body")
	}
}

// queryOr returns the first non-blank query parameter among names, or
// fallback.
func queryOr(r *http.Request, fallback string, names ...string) string {
	q := r.URL.Query()
	for _, n := range names {
		if v := strings.TrimSpace(q.Get(n)); v != "" {
			return v
		}
	}
	return fallback
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// notFound is returned when a boolean service result reports no row.
func notFound(format string, args ...any) error {
	return status.Errorf(codes.NotFound, format, args...)
}
