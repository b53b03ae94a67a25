package epic

import "fmt"

// AuthError represents a rejected or expired session token.
// It is the only error that aborts a whole locker check; callers should
// surface a "please re-authenticate" message.
type AuthError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error implements the error interface for AuthError.
func (e *AuthError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("epic auth rejected (%d %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("epic auth rejected (%d): %s", e.StatusCode, e.Message)
}

// IsAuthError returns true if the error is an AuthError.
func IsAuthError(err error) bool {
	_, ok := err.(*AuthError)
	return ok
}

// UnavailableError represents a single profile fetch that failed for a
// non-auth reason (network, timeout, malformed document). The rest of the
// check continues with that section degraded.
type UnavailableError struct {
	ProfileID string
	Reason    string
	Err       error
}

// Error implements the error interface for UnavailableError.
func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("profile %s unavailable: %s: %v", e.ProfileID, e.Reason, e.Err)
	}
	return fmt.Sprintf("profile %s unavailable: %s", e.ProfileID, e.Reason)
}

// Unwrap returns the underlying error.
func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// DeviceCodeError represents a terminal failure of the device-code login
// flow (expired link, timed-out authorization).
type DeviceCodeError struct {
	Code    string
	Message string
}

// Error implements the error interface for DeviceCodeError.
func (e *DeviceCodeError) Error() string {
	return fmt.Sprintf("device code login failed (%s): %s", e.Code, e.Message)
}
