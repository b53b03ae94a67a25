package epic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	defaultProfileServiceURL = "https://fortnite-public-service-prod11.ol.epicgames.com"
	defaultGameGatewayURL    = "https://fngw-mcp-gc-livefn.ol.epicgames.com"

	profileRequestTimeout = 15 * time.Second
)

// Profile IDs understood by the QueryProfile endpoints.
const (
	ProfileAthena   = "athena"
	ProfileCommon   = "common_core"
	ProfileCampaign = "campaign"
)

// ProfileBundle holds the result of fetching the three profile documents.
// Each profile is optional; a profile that could not be fetched is nil and
// has its failure recorded in Unavailable keyed by profile ID.
type ProfileBundle struct {
	Athena   *Profile
	Common   *Profile
	Campaign *Profile

	Unavailable map[string]error
}

// Available reports whether the given profile was fetched successfully.
func (b *ProfileBundle) Available(profileID string) bool {
	_, failed := b.Unavailable[profileID]
	return !failed
}

// ProfileClient fetches account profile documents from the Fortnite profile
// service.
type ProfileClient struct {
	httpClient *http.Client
	profileURL string
	gatewayURL string
	userAgent  string
}

// ProfileClientOptions configures the profile client.
type ProfileClientOptions struct {
	ProfileServiceURL string        // Battle-royale profile service base URL
	GameGatewayURL    string        // Gateway base URL serving the campaign profile
	Timeout           time.Duration // Per-request timeout
}

// NewProfileClient creates a profile client against the Fortnite services.
func NewProfileClient(options ProfileClientOptions) *ProfileClient {
	if options.ProfileServiceURL == "" {
		options.ProfileServiceURL = defaultProfileServiceURL
	}
	if options.GameGatewayURL == "" {
		options.GameGatewayURL = options.ProfileServiceURL
		if options.ProfileServiceURL == defaultProfileServiceURL {
			options.GameGatewayURL = defaultGameGatewayURL
		}
	}
	if options.Timeout == 0 {
		options.Timeout = profileRequestTimeout
	}

	return &ProfileClient{
		httpClient: &http.Client{Timeout: options.Timeout},
		profileURL: strings.TrimRight(options.ProfileServiceURL, "/"),
		gatewayURL: strings.TrimRight(options.GameGatewayURL, "/"),
		userAgent:  "ExoCheck/1.0",
	}
}

// FetchProfiles fetches the athena, common_core and campaign profiles for
// the session's account. The three calls run concurrently and fail
// independently: a network or document failure marks that profile
// unavailable in the bundle, while a rejected token aborts the whole fetch
// with an *AuthError.
func (c *ProfileClient) FetchProfiles(ctx context.Context, session *Session) (*ProfileBundle, error) {
	bundle := &ProfileBundle{Unavailable: make(map[string]error)}

	type result struct {
		profileID string
		profile   *Profile
		err       error
	}

	results := make(chan result, 3)
	var wg sync.WaitGroup

	fetch := func(profileID string) {
		defer wg.Done()
		profile, err := c.QueryProfile(ctx, session, profileID)
		results <- result{profileID: profileID, profile: profile, err: err}
	}

	wg.Add(3)
	go fetch(ProfileAthena)
	go fetch(ProfileCommon)
	go fetch(ProfileCampaign)
	wg.Wait()
	close(results)

	var authErr *AuthError
	for r := range results {
		if r.err != nil {
			if ae, ok := r.err.(*AuthError); ok {
				authErr = ae
				continue
			}
			bundle.Unavailable[r.profileID] = r.err
			continue
		}

		switch r.profileID {
		case ProfileAthena:
			bundle.Athena = r.profile
		case ProfileCommon:
			bundle.Common = r.profile
		case ProfileCampaign:
			bundle.Campaign = r.profile
		}
	}

	if authErr != nil {
		return nil, authErr
	}

	return bundle, nil
}

// QueryProfile fetches a single profile document. Non-auth failures are
// returned as *UnavailableError so callers can degrade that section only.
func (c *ProfileClient) QueryProfile(ctx context.Context, session *Session, profileID string) (*Profile, error) {
	base := c.profileURL
	operation := "QueryProfile"
	if profileID == ProfileCampaign {
		// The campaign profile lives behind the game gateway and only
		// answers the public query.
		base = c.gatewayURL
		operation = "QueryPublicProfile"
	}

	endpoint := fmt.Sprintf("%s/fortnite/api/game/v2/profile/%s/client/%s?profileId=%s&rvn=-1",
		base, session.AccountID, operation, profileID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "bearer "+session.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UnavailableError{ProfileID: profileID, Reason: "request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnavailableError{ProfileID: profileID, Reason: "read failed", Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, c.authError(resp.StatusCode, body)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UnavailableError{
			ProfileID: profileID,
			Reason:    fmt.Sprintf("status %d", resp.StatusCode),
		}
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, &UnavailableError{ProfileID: profileID, Reason: "malformed document", Err: err}
	}
	if !profile.Valid() {
		// a 200 without profileChanges is an upstream data gap, not a real profile
		return nil, &UnavailableError{ProfileID: profileID, Reason: "missing profileChanges"}
	}

	return &profile, nil
}

// AccountInfo fetches the public account record plus linked external
// accounts for the session's account.
func (c *ProfileClient) AccountInfo(ctx context.Context, authBaseURL string, session *Session) (*AccountInfo, error) {
	base := strings.TrimRight(authBaseURL, "/")
	if base == "" {
		base = defaultAccountServiceURL
	}

	var info AccountInfo
	endpoint := fmt.Sprintf("%s/account/api/public/account/%s", base, session.AccountID)
	if err := c.getJSON(ctx, endpoint, session, &info); err != nil {
		return nil, fmt.Errorf("failed to get account info: %w", err)
	}

	endpoint = fmt.Sprintf("%s/account/api/public/account/%s/externalAuths", base, session.AccountID)
	if err := c.getJSON(ctx, endpoint, session, &info.External); err != nil {
		// external connections are decoration; the account record stands alone
		info.External = nil
	}

	if raw, err := time.Parse("2006-01-02T15:04:05.000Z", info.CreationDate); err == nil {
		info.CreationDate = raw.Format("02/01/2006")
	}

	return &info, nil
}

// authError builds an AuthError from an auth-rejected response body.
func (c *ProfileClient) authError(status int, body []byte) *AuthError {
	var payload struct {
		ErrorCode    string `json:"errorCode"`
		ErrorMessage string `json:"errorMessage"`
	}
	_ = json.Unmarshal(body, &payload)

	return &AuthError{
		StatusCode: status,
		Code:       payload.ErrorCode,
		Message:    payload.ErrorMessage,
	}
}

// getJSON issues an authorized GET and decodes the JSON response.
func (c *ProfileClient) getJSON(ctx context.Context, endpoint string, session *Session, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "bearer "+session.AccessToken)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return nil
}
