package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pet-care-reminders/internal/platform/httpclient"
	"pet-care-reminders/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("auth verifier not configured")
	ErrUnauthorized  = errors.New("auth unauthorized")
	ErrUpstream      = errors.New("auth upstream error")
)

const verifyPath = "/v1/tokens/verify"

// Config del verificador remoto. Sale de AUTH_VERIFY_URL / AUTH_API_KEY.
type Config struct {
	BaseURL string
	APIKey  string

	// Si está vacío, se usa "X-Api-Key".
	APIKeyHeader string

	Timeout   time.Duration
	Transport http.RoundTripper
}

// Verifier implementa auth.AuthVerifier contra el servicio de identidad.
type Verifier struct {
	hc *httpclient.Client
}

var _ auth.AuthVerifier = (*Verifier)(nil)

func New(cfg Config) (*Verifier, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, ErrNotConfigured
	}
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	headers := map[string]string{}
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		headers[h] = key
	}

	hc, err := httpclient.New(httpclient.Options{
		BaseURL:   base,
		Timeout:   timeout,
		Transport: cfg.Transport,
		Headers:   headers,
	})
	if err != nil {
		return nil, fmt.Errorf("auth verifier: %w", err)
	}
	return &Verifier{hc: hc}, nil
}

type verifyResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.hc == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	var out verifyResponse
	err := v.hc.DoJSON(ctx, http.MethodPost, verifyPath,
		map[string]string{"Authorization": "Bearer " + token},
		map[string]string{"token": token}, &out)
	if err != nil {
		switch httpclient.StatusCode(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return auth.Claims{}, ErrUnauthorized
		default:
			return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}

	claims := auth.Claims{
		UserID: strings.TrimSpace(out.UserID),
		Email:  strings.TrimSpace(out.Email),
	}
	if claims.UserID == "" && claims.Email == "" {
		return auth.Claims{}, fmt.Errorf("%w: response without identity", ErrUpstream)
	}
	return claims, nil
}
