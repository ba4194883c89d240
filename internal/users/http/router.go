package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/usergate/internal/users/service"
	"github.com/aussiebroadwan/usergate/internal/users/store"
	"github.com/aussiebroadwan/usergate/pkg/httpx"
	"github.com/aussiebroadwan/usergate/pkg/jwtx"
	"github.com/aussiebroadwan/usergate/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/aussiebroadwan/usergate/api/users" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux     *http.ServeMux
	handler http.Handler

	keys            *jwtx.KeySet
	defaultAudience string
	buildVersion    string
	startTime       time.Time
	logger          *slog.Logger
	store           store.Store

	AccountService *service.AccountService
	TokenService   *service.TokenService
	MFAService     *service.MFAService
	LoginService   *service.LoginService
}

func NewRouter(
	keys *jwtx.KeySet,
	defaultAudience, buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	return &Router{
		Mux:             http.NewServeMux(),
		keys:            keys,
		defaultAudience: defaultAudience,
		buildVersion:    buildVersion,
		startTime:       time.Now(),
		store:           st,
		logger:          logger,
	}
}

// ApplyRoutes registers every route. Call it once before serving.
func (r *Router) ApplyRoutes() {
	r.registerSessions()
	r.registerAccounts()
	r.registerMFA()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())

	// Metrics wrap the mux directly: the route pattern is only known once the
	// mux has matched the request.
	r.handler = httpx.Chain(httpx.MetricsMiddleware(r.Mux),
		slogx.HTTPMiddleware(r.logger),
	)
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			usergate Credential Service API
//	@version		0.1.0
//	@description	Account registration, password login with optional TOTP second factor,
//	@description	and revocable per-audience session tokens.
//	@description
//	@description	Tokens are JWTs; verify them with /v1/verify or locally against the JWKS.
//	@description	Local verification cannot see revocation.
//
//	@contact.name	AussieBroadWAN Team
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@BasePath		/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}" or "JWT {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// audience returns the request's X-Auth-Audience or the default.
func (r *Router) audience(req *http.Request) string {
	if aud := req.Header.Get(httpx.AudienceHeader); aud != "" {
		return aud
	}
	return r.defaultAudience
}

func (r *Router) authn() httpx.Middleware {
	return httpx.AuthnMiddleware(r.TokenService, r.defaultAudience, authError)
}

func (r *Router) registerSessions() {
	h := &SessionHandler{
		Login:    r.LoginService,
		Tokens:   r.TokenService,
		Audience: r.audience,
	}

	// Strict per IP+username: password and TOTP guessing.
	r.Mux.Handle("POST /v1/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndField(httpx.StrictLimit, "username"),
		),
	)

	// Verification is the hot path for other services.
	r.Mux.Handle("POST /v1/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	r.Mux.Handle("POST /v1/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAccounts() {
	h := &AccountHandler{Accounts: r.AccountService}

	r.Mux.Handle("POST /v1/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("GET /v1/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			r.authn(),
			httpx.RateLimitByAccount(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("POST /v1/me/password",
		httpx.Chain(http.HandlerFunc(h.HandleChangePassword),
			r.authn(),
			httpx.RateLimitByAccount(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("DELETE /v1/me",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			r.authn(),
			httpx.RateLimitByAccount(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerMFA() {
	h := &MFAHandler{MFA: r.MFAService}

	routes := []struct {
		pattern string
		handler http.HandlerFunc
		limit   httpx.RateLimitConfig
	}{
		{"POST /v1/mfa/generate-key", h.HandleGenerateKey, httpx.ModerateLimit},
		{"POST /v1/mfa/attach", h.HandleAttach, httpx.StrictLimit},
		{"POST /v1/mfa/verify", h.HandleVerify, httpx.StrictLimit},
		{"POST /v1/mfa/regenerate-codes", h.HandleRegenerateCodes, httpx.StrictLimit},
		{"POST /v1/mfa/detach", h.HandleDetach, httpx.StrictLimit},
	}
	for _, rt := range routes {
		r.Mux.Handle(rt.pattern,
			httpx.Chain(rt.handler,
				r.authn(),
				httpx.RateLimitByAccount(rt.limit),
			),
		)
	}
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /metrics", promhttp.Handler())
}
