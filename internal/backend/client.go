// Package backend talks to the external inventory service. Everything here
// is best-effort from the plugin's point of view: fetch failures surface as
// errors to the coordinator, send failures are logged and dropped.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/strafemod/paintkit/internal/domain"
	"github.com/strafemod/paintkit/internal/equipment"
	"github.com/strafemod/paintkit/internal/logger"
)

const (
	equippedPathFormat = "/api/equipped/v3/%d.json"
	statTrakPath       = "/api/increment-item-stattrak"
	signInPath         = "/api/sign-in"

	requestTimeout = 10 * time.Second

	tokenCacheSize = 256
	tokenTTL       = 5 * time.Minute
)

// Client is the HTTP client for the inventory backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	catalogURL string
	apiKey     string

	// Sign-in tokens are valid for a while; repeated login requests from
	// the same player within the TTL reuse one backend round trip.
	tokens *expirable.LRU[uint64, string]
}

// NewClient creates a backend client. baseURL is "{protocol}://{hostname}"
// without a trailing slash.
func NewClient(baseURL, catalogURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		catalogURL: catalogURL,
		apiKey:     apiKey,
		tokens:     expirable.NewLRU[uint64, string](tokenCacheSize, nil, tokenTTL),
	}
}

// FetchEquipped retrieves the equipped inventory for a player.
func (c *Client) FetchEquipped(ctx context.Context, steamID uint64) (*domain.PlayerInventory, error) {
	if steamID == 0 {
		return nil, domain.ErrInvalidSteamID
	}
	url := c.baseURL + fmt.Sprintf(equippedPathFormat, steamID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build equipped request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch equipped: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d fetching equipped", domain.ErrBackendStatus, resp.StatusCode)
	}

	inv := domain.NewPlayerInventory()
	if err := json.NewDecoder(resp.Body).Decode(inv); err != nil {
		return nil, fmt.Errorf("decode equipped: %w", err)
	}
	return inv, nil
}

// FetchCatalog retrieves the item catalog used to build the equipment
// lookup tables. Called once at startup.
func (c *Client) FetchCatalog(ctx context.Context) ([]equipment.Descriptor, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.catalogURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d fetching catalog", domain.ErrBackendStatus, resp.StatusCode)
	}

	var descriptors []equipment.Descriptor
	if err := json.NewDecoder(resp.Body).Decode(&descriptors); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return descriptors, nil
}

type statTrakReport struct {
	APIKey    string `json:"apiKey"`
	TargetUID int    `json:"targetUid"`
	UserID    string `json:"userId"`
}

// ReportStatTrak tells the backend a tracked item's counter went up. This is
// advisory telemetry: callers fire it once per kill, never retry, and accept
// loss. A 401 maps to domain.ErrUnauthorized so the caller can log a
// misconfigured api key distinctly.
func (c *Client) ReportStatTrak(ctx context.Context, targetUID int, userID uint64) error {
	body := statTrakReport{
		APIKey:    c.apiKey,
		TargetUID: targetUID,
		UserID:    strconv.FormatUint(userID, 10),
	}
	resp, err := c.postJSON(ctx, c.baseURL+statTrakPath, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	default:
		return fmt.Errorf("%w: %d reporting stattrak", domain.ErrBackendStatus, resp.StatusCode)
	}
}

type signInRequest struct {
	APIKey string `json:"apiKey"`
	UserID string `json:"userId"`
}

type signInResponse struct {
	Token string `json:"token"`
}

// SignIn obtains a short-lived login token for a player, reusing a cached
// token when one is still live.
func (c *Client) SignIn(ctx context.Context, userID uint64) (string, error) {
	if token, ok := c.tokens.Get(userID); ok {
		return token, nil
	}

	body := signInRequest{APIKey: c.apiKey, UserID: strconv.FormatUint(userID, 10)}
	resp, err := c.postJSON(ctx, c.baseURL+signInPath, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return "", domain.ErrUnauthorized
	default:
		return "", fmt.Errorf("%w: %d signing in", domain.ErrBackendStatus, resp.StatusCode)
	}

	var payload signInResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode sign-in: %w", err)
	}

	c.tokens.Add(userID, payload.Token)
	return payload.Token, nil
}

// LoginURL builds the browser URL surfaced to a player after sign-in.
func (c *Client) LoginURL(ctx context.Context, userID uint64) (string, error) {
	token, err := c.SignIn(ctx, userID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/?token=%s", c.baseURL, token), nil
}

func (c *Client) postJSON(ctx context.Context, url string, body any) (*http.Response, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.FromContext(ctx).Debug("backend post", "url", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", url, err)
	}
	return resp, nil
}
