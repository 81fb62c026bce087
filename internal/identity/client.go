package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"vidlink/api/internal/config"
)

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Client talks to the external identity service. Id tokens are verified
// locally against the shared signing secret; account creation goes over
// the service's REST API.
type Client struct {
	cfg        config.IdentityConfig
	httpClient *http.Client
}

func NewClient(cfg config.IdentityConfig) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (c *Client) VerifyToken(ctx context.Context, token string) (Identity, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(c.cfg.TokenSecret), nil
	},
		jwt.WithIssuer(c.cfg.Issuer),
		jwt.WithAudience(c.cfg.Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		ID:    claims.Subject,
		Email: claims.Email,
	}, nil
}

type createAccountRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createAccountResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Error string `json:"error"`
}

func (c *Client) CreateUser(ctx context.Context, email, password string) (Identity, error) {
	payload, err := json.Marshal(createAccountRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return Identity{}, &ProviderError{Op: "create user", Err: err}
	}

	url := c.cfg.BaseURL + "/v1/accounts"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Identity{}, &ProviderError{Op: "create user", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Identity{}, &ProviderError{Op: "create user", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Identity{}, &ProviderError{Op: "create user", Err: err}
	}

	var decoded createAccountResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Identity{}, &ProviderError{Op: "create user", Err: fmt.Errorf("decode response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Identity{}, &ProviderError{
			Op:  "create user",
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, decoded.Error),
		}
	}

	if decoded.ID == "" {
		return Identity{}, &ProviderError{Op: "create user", Err: fmt.Errorf("response missing account id")}
	}

	return Identity{
		ID:    decoded.ID,
		Email: decoded.Email,
	}, nil
}
