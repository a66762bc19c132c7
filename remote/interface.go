////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package remote defines the capability surfaces the client consumes from
// the hosted backend: the identity service, the profile store, and object
// storage. The backend itself is opaque; implementations live in
// subpackages.
package remote

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"gitlab.com/campusguard/client/storage/account"
)

// Session is proof of authentication. It is held in memory only and
// reconstructed from the identity service on each cold start.
type Session struct {
	User         account.User
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Expired reports whether the access token has passed its expiry.
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// AuthEvent is a state transition reported by the identity service.
type AuthEvent string

const (
	SignedIn       AuthEvent = "SIGNED_IN"
	SignedOut      AuthEvent = "SIGNED_OUT"
	TokenRefreshed AuthEvent = "TOKEN_REFRESHED"
	UserDeleted    AuthEvent = "USER_DELETED"
)

// AuthChangeFn receives auth events. The session is nil for SignedOut and
// UserDeleted.
type AuthChangeFn func(event AuthEvent, session *Session)

// Subscription undoes an OnAuthStateChange registration.
type Subscription interface {
	Unsubscribe()
}

// Identity is the capability surface of the remote identity service.
// GetSession returns (nil, nil) when no session is active; that is not an
// error.
type Identity interface {
	GetSession(ctx context.Context) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string,
		metadata map[string]string) (*account.User, error)
	SignOut(ctx context.Context) error
	RefreshSession(ctx context.Context) (*Session, error)
	OnAuthStateChange(fn AuthChangeFn) Subscription
	ResetPassword(ctx context.Context, email, redirectTo string) error
	UpdatePassword(ctx context.Context, newPassword string) error
}

// ErrNotFound is returned by Profiles.Get when no row exists for the id.
var ErrNotFound = errors.New("profile not found")

// Profiles is the capability surface of the remote profile store.
type Profiles interface {
	Get(ctx context.Context, id string) (*account.Profile, error)
	Insert(ctx context.Context, p *account.Profile) error
	Update(ctx context.Context, id string,
		p *account.Profile) (*account.Profile, error)
}

// Objects is the capability surface of remote object storage. Upload
// returns the public URL of the stored object.
type Objects interface {
	Upload(ctx context.Context, bucket, path string, data []byte,
		contentType string) (string, error)
}
