package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/aussiebroadwan/usergate/internal/users/store"
	"github.com/aussiebroadwan/usergate/pkg/httpx"
	"github.com/aussiebroadwan/usergate/pkg/jwtx"
	"github.com/aussiebroadwan/usergate/pkg/slogx"
	"github.com/aussiebroadwan/usergate/pkg/userssdk"
)

// readyTimeout bounds the store ping so a hung backend fails the probe
// instead of hanging it.
const readyTimeout = 2 * time.Second

// JWKSHandler publishes the public signing keys.
//
//	@Summary		Get JWKS
//	@Description	Public keys for verifying tokens locally. Local verification cannot see revocation.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	userssdk.JWKSResponse	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get].
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(keys.PublicJWKS())
	}
}

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	userssdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, health(startTime, version, "ok", nil))
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	503 until the Credential Store answers and a signing key is loaded.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	userssdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	userssdk.HealthResponse	"service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store, keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &userssdk.HealthChecks{Store: "ok", Signer: "ok"}

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := st.Ping(ctx); err != nil {
			slogx.FromContext(r.Context()).Warn("readiness: store ping failed", "error", err)
			checks.Store = "unavailable"
		}
		if !keys.IsReady() {
			checks.Signer = "no keys loaded"
		}

		if checks.Store != "ok" || checks.Signer != "ok" {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, health(startTime, version, "degraded", checks))
			return
		}
		httpx.WriteJSON(w, http.StatusOK, health(startTime, version, "ok", checks))
	}
}

func health(start time.Time, version, status string, checks *userssdk.HealthChecks) userssdk.HealthResponse {
	return userssdk.HealthResponse{
		Status:  status,
		Uptime:  time.Since(start).Truncate(time.Second).String(),
		Version: version,
		Checks:  checks,
	}
}
