package userssdk

import (
	"encoding/json"
	"time"
)

// Headers understood by the service.
const (
	HeaderAudience = "X-Auth-Audience"
	HeaderTOTP     = "X-Auth-TOTP"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Username string `json:"username"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`

	// TOTP is a TOTP or recovery code. The X-Auth-TOTP header works too.
	TOTP string `json:"totp,omitempty"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	Username  string    `json:"username"`
	Audience  string    `json:"audience"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type VerifyRequest struct {
	Token string `json:"token"`
}

// LogoutRequest names the token to revoke when no Authorization header is sent.
type LogoutRequest struct {
	Token string `json:"token"`
}

type VerifyResponse struct {
	Username  string            `json:"username"`
	Audience  string            `json:"audience"`
	AMR       []string          `json:"amr,omitempty"`
	Extra     map[string]string `json:"ext,omitempty"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type ProfileResponse struct {
	Username   string `json:"username"`
	MFAEnabled bool   `json:"mfaEnabled"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

// FlexString decodes from either a JSON string or a JSON number so clients
// can send a timestamp as 1700000000000 or "1700000000000".
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	if string(b) == "null" {
		*f = ""
		return nil
	}
	*f = FlexString(b)
	return nil
}

// MFA requests may carry the account name; it must match the bearer token's
// subject when present.

type GenerateKeyRequest struct {
	Username string     `json:"username,omitempty"`
	Time     FlexString `json:"time"`
}

type GenerateKeyResponse struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
	Skew   int64  `json:"skew"`
}

type AttachRequest struct {
	Username string `json:"username,omitempty"`
	Secret   string `json:"secret"`
	TOTP     string `json:"totp"`
}

type AttachResponse struct {
	Enabled       bool     `json:"enabled"`
	RecoveryCodes []string `json:"recoveryCodes"`
}

type TOTPRequest struct {
	Username string `json:"username,omitempty"`
	TOTP     string `json:"totp"`
}

type VerifyMFAResponse struct {
	Valid bool `json:"valid"`
}

type RegenerateCodesResponse struct {
	Regenerated   bool     `json:"regenerated"`
	RecoveryCodes []string `json:"recoveryCodes"`
}

type DetachResponse struct {
	Enabled bool `json:"enabled"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Store  string `json:"store"`
	Signer string `json:"signer"`
}

// JWK is one public key of the JWKS.
type JWK struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use,omitempty"`
	Alg string `json:"alg,omitempty"`
	Crv string `json:"crv,omitempty"`
	X   string `json:"x,omitempty"`
	Y   string `json:"y,omitempty"`
	N   string `json:"n,omitempty"`
	E   string `json:"e,omitempty"`
}

type JWKSResponse struct {
	Keys []JWK `json:"keys"`
}
