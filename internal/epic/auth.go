package epic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"
)

const (
	defaultAccountServiceURL = "https://account-public-service-prod03.ol.epicgames.com"

	// Basic tokens for the two OAuth clients involved in the device flow.
	// The switch client generates device codes; the iOS client carries the
	// game-profile scopes the locker endpoints need.
	switchClientToken = "MzRhMDJjZjhmNDQxNGUyOWIxNTkyMTg3NmRhMzZmOWE6ZGFhZmJjY2M3Mzc3NDUwMzlkZmZlNTNkOTRmYzc2Y2Y="
	iosClientToken    = "MzQ0NmNkNjI2OTRjNGE0NDg1ZDgxYjc3YWRiYjIxNDE6OTIwOWQ0YTVlMjVhNDU3ZmI5YjA3NDg5ZDMxM2I0MWE="

	devicePollInterval = 10 * time.Second
	devicePollAttempts = 30 // 5 minutes total

	authRequestTimeout = 15 * time.Second
)

// Device flow error codes returned by the token endpoint.
const (
	errCodePending     = "errors.com.epicgames.account.oauth.authorization_pending"
	errCodeNotFound    = "errors.com.epicgames.not_found"
	errCodeFlowExpired = "errors.com.epicgames.account.oauth.authorization_expired"
)

// DeviceCode is the handle a user completes a login with in a browser.
type DeviceCode struct {
	DeviceCode              string `json:"device_code"`
	UserCode                string `json:"user_code"`
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete"`
	ExpiresIn               int    `json:"expires_in"`
	Interval                int    `json:"interval"`
}

// DeviceAuth is a long-lived credential for restoring sessions without a
// fresh browser login. The secret is only returned once at creation.
type DeviceAuth struct {
	DeviceID  string `json:"deviceId"`
	AccountID string `json:"accountId"`
	Secret    string `json:"secret"`
	UserAgent string `json:"userAgent"`
}

// Authenticator performs the device-code OAuth exchange against the Epic
// account service.
type Authenticator struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// AuthenticatorOptions configures the authenticator.
type AuthenticatorOptions struct {
	BaseURL string        // Account service base URL (default: production)
	Timeout time.Duration // Per-request timeout
}

// NewAuthenticator creates an authenticator against the Epic account service.
func NewAuthenticator(options AuthenticatorOptions) *Authenticator {
	if options.BaseURL == "" {
		options.BaseURL = defaultAccountServiceURL
	}
	if options.Timeout == 0 {
		options.Timeout = authRequestTimeout
	}

	return &Authenticator{
		httpClient: &http.Client{Timeout: options.Timeout},
		baseURL:    strings.TrimRight(options.BaseURL, "/"),
		userAgent:  fmt.Sprintf("ExoCheck/1.0 (%s)", runtime.GOOS),
	}
}

// ClientCredentials obtains a client-scoped access token for the switch
// client. This token authorizes device code creation only.
func (a *Authenticator) ClientCredentials(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}

	var resp tokenResponse
	if err := a.postToken(ctx, switchClientToken, form, &resp); err != nil {
		return "", fmt.Errorf("failed to get client credentials: %w", err)
	}

	return resp.AccessToken, nil
}

// CreateDeviceCode starts a device-code login. The returned user code must be
// entered at the verification URI within its expiry window.
func (a *Authenticator) CreateDeviceCode(ctx context.Context, clientToken string) (*DeviceCode, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+"/account/api/oauth/deviceAuthorization", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "bearer "+clientToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var code DeviceCode
	if err := a.do(req, &code); err != nil {
		return nil, fmt.Errorf("failed to create device code: %w", err)
	}

	return &code, nil
}

// WaitForDeviceCode polls the token endpoint until the user completes the
// login, the code expires, or the context is cancelled. On success it runs
// the exchange-code hop to the iOS client and returns the game-scoped
// session.
func (a *Authenticator) WaitForDeviceCode(ctx context.Context, code string) (*Session, error) {
	form := url.Values{
		"grant_type":  {"device_code"},
		"device_code": {code},
	}

	interval := devicePollInterval
	for attempt := 0; attempt < devicePollAttempts; attempt++ {
		var resp tokenResponse
		err := a.postToken(ctx, switchClientToken, form, &resp)
		if err != nil {
			return nil, err
		}

		if resp.AccessToken != "" {
			return a.exchangeToIOS(ctx, resp.AccessToken)
		}

		switch resp.ErrorCode {
		case errCodePending:
			// user hasn't completed the login yet
		case errCodeNotFound:
			return nil, &DeviceCodeError{Code: resp.ErrorCode, Message: "login link expired"}
		case errCodeFlowExpired:
			return nil, &DeviceCodeError{Code: resp.ErrorCode, Message: "login timed out"}
		default:
			return nil, &DeviceCodeError{Code: resp.ErrorCode, Message: resp.ErrorMessage}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}

	return nil, &DeviceCodeError{Code: errCodeFlowExpired, Message: "login not completed in time"}
}

// AuthenticateWithCode authenticates with a one-time authorization code
// obtained from the Epic redirect login page.
func (a *Authenticator) AuthenticateWithCode(ctx context.Context, authCode string) (*Session, error) {
	form := url.Values{
		"grant_type": {"authorization_code"},
		"code":       {authCode},
	}

	var resp tokenResponse
	if err := a.postToken(ctx, switchClientToken, form, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, &AuthError{Code: resp.ErrorCode, Message: resp.ErrorMessage}
	}

	return resp.session(), nil
}

// AuthenticateDeviceAuth restores a session from a stored device auth.
func (a *Authenticator) AuthenticateDeviceAuth(ctx context.Context, auth *DeviceAuth) (*Session, error) {
	form := url.Values{
		"grant_type": {"device_auth"},
		"account_id": {auth.AccountID},
		"device_id":  {auth.DeviceID},
		"secret":     {auth.Secret},
	}

	var resp tokenResponse
	if err := a.postToken(ctx, iosClientToken, form, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, &AuthError{Code: resp.ErrorCode, Message: resp.ErrorMessage}
	}

	return resp.session(), nil
}

// CreateDeviceAuth creates a device auth for the session's account so the
// login can be restored later without the browser flow.
func (a *Authenticator) CreateDeviceAuth(ctx context.Context, session *Session) (*DeviceAuth, error) {
	endpoint := fmt.Sprintf("%s/account/api/public/account/%s/deviceAuth", a.baseURL, session.AccountID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "bearer "+session.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	var auth DeviceAuth
	if err := a.do(req, &auth); err != nil {
		return nil, fmt.Errorf("failed to create device auth: %w", err)
	}

	return &auth, nil
}

// exchangeToIOS trades a switch-client token for an iOS-client session via
// the exchange-code endpoint.
func (a *Authenticator) exchangeToIOS(ctx context.Context, accessToken string) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.baseURL+"/account/api/oauth/exchange", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "bearer "+accessToken)

	var exchange struct {
		Code string `json:"code"`
	}
	if err := a.do(req, &exchange); err != nil {
		return nil, fmt.Errorf("failed to get exchange code: %w", err)
	}

	form := url.Values{
		"grant_type":    {"exchange_code"},
		"exchange_code": {exchange.Code},
	}

	var resp tokenResponse
	if err := a.postToken(ctx, iosClientToken, form, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, &AuthError{Code: resp.ErrorCode, Message: resp.ErrorMessage}
	}

	return resp.session(), nil
}

// postToken posts a form to the OAuth token endpoint with the given basic
// client token. OAuth-level error payloads are decoded into resp rather than
// returned as errors; transport failures are.
func (a *Authenticator) postToken(ctx context.Context, clientToken string, form url.Values, resp *tokenResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+"/account/api/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "basic "+clientToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", a.userAgent)

	httpResp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("token request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read token response: %w", err)
	}

	if err := json.Unmarshal(body, resp); err != nil {
		return fmt.Errorf("failed to parse token response: %w", err)
	}

	return nil
}

// do executes a request and decodes the JSON response.
func (a *Authenticator) do(req *http.Request, result interface{}) error {
	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return nil
}
