package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/agendahub/booking-api/internal/config"
	apperrors "github.com/agendahub/booking-api/pkg/errors"
	"github.com/agendahub/booking-api/pkg/metrics"
)

// Client is an HTTP implementation of Gateway against an Identity
// Toolkit style REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zerolog.Logger
	metrics *metrics.Metrics
}

func NewClient(cfg config.IdentityConfig, logger *zerolog.Logger, m *metrics.Metrics) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		metrics: m,
	}
}

type lookupResponse struct {
	Users []struct {
		LocalID     string `json:"localId"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
	} `json:"users"`
}

type signInResponse struct {
	IDToken string `json:"idToken"`
	LocalID string `json:"localId"`
}

type signUpResponse struct {
	LocalID string `json:"localId"`
}

type providerError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) VerifyToken(ctx context.Context, idToken string) (*Claims, error) {
	var resp lookupResponse
	err := c.post(ctx, "verify_token", "accounts:lookup",
		map[string]string{"idToken": idToken}, &resp)
	if err != nil {
		return nil, apperrors.Unauthenticated("invalid token", err)
	}
	if len(resp.Users) == 0 {
		return nil, apperrors.Unauthenticated("invalid token", nil)
	}

	claims := &Claims{
		ExternalID: resp.Users[0].LocalID,
		Email:      resp.Users[0].Email,
		Name:       resp.Users[0].DisplayName,
	}

	// The provider vouched for the token; the local decode only
	// cross-checks that the token's subject matches the lookup.
	if sub := tokenSubject(idToken); sub != "" && sub != claims.ExternalID {
		return nil, apperrors.Unauthenticated("token subject mismatch", nil)
	}

	return claims, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var resp signInResponse
	err := c.post(ctx, "sign_in", "accounts:signInWithPassword", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &Session{IDToken: resp.IDToken, ExternalID: resp.LocalID}, nil
}

func (c *Client) CreateIdentity(ctx context.Context, email, password, displayName string) (string, error) {
	var resp signUpResponse
	err := c.post(ctx, "create_identity", "accounts:signUp", map[string]interface{}{
		"email":             email,
		"password":          password,
		"displayName":       displayName,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.LocalID, nil
}

func (c *Client) GetIdentity(ctx context.Context, externalID string) (*Claims, error) {
	var resp lookupResponse
	err := c.post(ctx, "get_identity", "accounts:lookup",
		map[string][]string{"localId": {externalID}}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Users) == 0 {
		return nil, apperrors.NotFound("identity")
	}
	return &Claims{
		ExternalID: resp.Users[0].LocalID,
		Email:      resp.Users[0].Email,
		Name:       resp.Users[0].DisplayName,
	}, nil
}

func (c *Client) post(ctx context.Context, operation, endpoint string, body, out interface{}) error {
	start := time.Now()
	err := c.doPost(ctx, endpoint, body, out)
	c.observe(operation, start, err)
	return err
}

func (c *Client) doPost(ctx context.Context, endpoint string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/%s?key=%s", c.baseURL, endpoint, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Upstream("identity provider unreachable", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Upstream("failed to read identity provider response", err)
	}

	if resp.StatusCode != http.StatusOK {
		var provErr providerError
		if json.Unmarshal(data, &provErr) == nil && provErr.Error.Message != "" {
			// Provider messages may carry a suffix, e.g.
			// "EMAIL_EXISTS : ...".
			if strings.HasPrefix(provErr.Error.Message, "EMAIL_EXISTS") {
				return ErrEmailExists
			}
			return apperrors.Upstream(provErr.Error.Message, nil)
		}
		return apperrors.Upstream(fmt.Sprintf("identity provider returned %d", resp.StatusCode), nil)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.Upstream("failed to decode identity provider response", err)
	}
	return nil
}

func (c *Client) observe(operation string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.GatewayRequests.WithLabelValues("identity", operation, status).Inc()
	c.metrics.GatewayLatency.WithLabelValues("identity", operation).Observe(time.Since(start).Seconds())
}

// tokenSubject extracts the subject claim without verifying the
// signature. Verification already happened at the provider.
func tokenSubject(idToken string) string {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(idToken, jwt.MapClaims{})
	if err != nil {
		return ""
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
