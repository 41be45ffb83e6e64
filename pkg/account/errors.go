package account

import "errors"

var (
	// ErrNeedsLogin means no valid session exists and automatic re-login
	// failed; the caller should prompt for credentials.
	ErrNeedsLogin = errors.New("no valid session, login required")

	// ErrWrongCredentials means the remote rejected the account/password.
	ErrWrongCredentials = errors.New("account or password rejected")

	// ErrLoginPageUnavailable means the handshake broke before the
	// credential submission step.
	ErrLoginPageUnavailable = errors.New("login page unavailable")

	// ErrTokenNotFound means the login transaction token could not be
	// extracted from the login page.
	ErrTokenNotFound = errors.New("login token not found in page")

	// ErrLoginInProgress means Login was invoked while another login on
	// the same account was still running.
	ErrLoginInProgress = errors.New("login already in progress")
)
