package userssdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Client talks to the usergate service. Audience, when set, is sent with
// every request; otherwise the server's default audience applies.
type Client struct {
	BaseURL    string
	Audience   string
	HTTPClient *http.Client
}

func NewClient(baseURL, audience string) *Client {
	return &Client{
		BaseURL:  strings.TrimSuffix(baseURL, "/"),
		Audience: audience,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) Register(ctx context.Context, username, password string) (*RegisterResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/register",
		RegisterRequest{Username: username, Password: password}, nil)
	if err != nil {
		return nil, err
	}

	var out RegisterResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and returns a session. mfaCode may be empty; it is
// sent in the X-Auth-TOTP header.
func (c *Client) Login(ctx context.Context, username, password, mfaCode string) (*Session, error) {
	var headers map[string]string
	if mfaCode != "" {
		headers = map[string]string{HeaderTOTP: mfaCode}
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/login",
		LoginRequest{Username: username, Password: password}, headers)
	if err != nil {
		return nil, err
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return newSession(c, out), nil
}

// Verify checks any token against the client's audience.
func (c *Client) Verify(ctx context.Context, token string) (*VerifyResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/verify", VerifyRequest{Token: token}, nil)
	if err != nil {
		return nil, err
	}

	var out VerifyResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// NewSessionFromToken wraps a token obtained elsewhere.
func (c *Client) NewSessionFromToken(token string) *Session {
	return &Session{client: c, token: token}
}

func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *Client) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetJWKS retrieves the public keys tokens are signed with.
func (c *Client) GetJWKS(ctx context.Context) (*JWKSResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/.well-known/jwks.json", nil, nil)
	if err != nil {
		return nil, err
	}

	var jwks JWKSResponse
	if err := decodeJSON(resp, &jwks, http.StatusOK); err != nil {
		return nil, err
	}
	return &jwks, nil
}
