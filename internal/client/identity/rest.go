package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/userdash/internal/client/client"
	"github.com/dmitrijs2005/userdash/internal/client/models"
)

type Client struct {
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client

	now func() time.Time
}

func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		Endpoint: strings.TrimSuffix(endpoint, "/"),
		APIKey:   apiKey,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: time.Now,
	}
}

type credentialsRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type accountResponse struct {
	LocalID      string      `json:"localId"`
	Email        string      `json:"email"`
	IDToken      string      `json:"idToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresIn    json.Number `json:"expiresIn"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	return c.authenticate(ctx, OpSignUp, "/v1/accounts:signUp", email, password)
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	return c.authenticate(ctx, OpSignIn, "/v1/accounts:signInWithPassword", email, password)
}

func (c *Client) authenticate(ctx context.Context, op Op, path, email, password string) (*models.Session, error) {
	body, err := json.Marshal(credentialsRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	u := c.Endpoint + path + "?key=" + url.QueryEscape(c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, client.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", op, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%s: status %d: %w", op, resp.StatusCode, client.ErrUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, parseError(op, resp.StatusCode, raw)
	}

	var ar accountResponse
	if err := json.Unmarshal(raw, &ar); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}

	return c.sessionFrom(ar)
}

func parseError(op Op, status int, raw []byte) error {
	var er errorResponse
	if err := json.Unmarshal(raw, &er); err != nil || er.Error.Message == "" {
		return &AuthError{Op: op, Kind: Other, Code: "HTTP_" + strconv.Itoa(status)}
	}
	code := er.Error.Message
	return &AuthError{Op: op, Kind: kindFromCode(code), Code: code}
}

func (c *Client) sessionFrom(ar accountResponse) (*models.Session, error) {
	s := &models.Session{
		UID:          ar.LocalID,
		Email:        ar.Email,
		IDToken:      ar.IDToken,
		RefreshToken: ar.RefreshToken,
	}

	if secs, err := ar.ExpiresIn.Int64(); err == nil && secs > 0 {
		s.ExpiresAt = c.now().Add(time.Duration(secs) * time.Second).UTC()
	}

	if ar.IDToken != "" {
		claims, err := parseIDToken(ar.IDToken)
		if err != nil {
			return nil, err
		}
		if s.UID == "" {
			s.UID = claims.uid()
		}
		if s.Email == "" {
			s.Email = claims.Email
		}
		if s.ExpiresAt.IsZero() && claims.ExpiresAt != nil {
			s.ExpiresAt = claims.ExpiresAt.Time.UTC()
		}
	}

	if s.UID == "" {
		return nil, fmt.Errorf("identity response without user id: %w", client.ErrUnauthorized)
	}
	return s, nil
}
