////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package session

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNoIdentity is returned when an operation needing a user id cannot
// resolve one from memory, the local cache, or the remote session.
var ErrNoIdentity = errors.New("no user identity available from any source")

// AuthError wraps a failure from the remote identity service. Reason holds
// the provider's human-readable message for UI display.
type AuthError struct {
	Op     string
	Reason string
	cause  error
}

func newAuthError(op string, cause error) *AuthError {
	return &AuthError{Op: op, Reason: cause.Error(), cause: cause}
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth %s failed: %s", e.Op, e.Reason)
}

func (e *AuthError) Unwrap() error { return e.cause }

// ProfileUpdateError reports a failed remote profile write. Local state is
// guaranteed untouched when one of these is returned.
type ProfileUpdateError struct {
	cause error
}

func (e *ProfileUpdateError) Error() string {
	return fmt.Sprintf("profile update failed: %s", e.cause)
}

func (e *ProfileUpdateError) Unwrap() error { return e.cause }

// ProfileFetchError reports a failed remote profile read. Fetches degrade
// to cached data, so this surfaces only through logs and RefreshProfile's
// nil result, never as a panic or raw provider error.
type ProfileFetchError struct {
	UserID string
	cause  error
}

func (e *ProfileFetchError) Error() string {
	return fmt.Sprintf("profile fetch for %s failed: %s", e.UserID, e.cause)
}

func (e *ProfileFetchError) Unwrap() error { return e.cause }
