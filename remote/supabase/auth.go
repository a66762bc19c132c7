////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package supabase

import (
	"context"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/campusguard/client/remote"
	"gitlab.com/campusguard/client/storage/account"
)

// tokenResponse is GoTrue's answer to password and refresh grants.
type tokenResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int64      `json:"expires_in"`
	User         gotrueUser `json:"user"`
}

type gotrueUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (t *tokenResponse) session() *remote.Session {
	return &remote.Session{
		User: account.User{
			ID:    t.User.ID,
			Email: t.User.Email,
		},
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(t.ExpiresIn) * time.Second),
	}
}

// GetSession returns the active session, transparently refreshing an
// expired one. (nil, nil) means nobody is signed in, which is not an error.
func (c *Client) GetSession(ctx context.Context) (*remote.Session, error) {
	sess := c.currentSession()
	if sess == nil {
		return nil, nil
	}
	if !sess.Expired() {
		return sess, nil
	}
	return c.RefreshSession(ctx)
}

// SignIn performs a password grant.
func (c *Client) SignIn(ctx context.Context, email,
	password string) (*remote.Session, error) {
	var token tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{
			"email":    email,
			"password": password,
		}).
		SetResult(&token).
		Post("/auth/v1/token")
	if err != nil {
		return nil, errors.Wrap(err, "sign-in request failed")
	}
	if resp.IsError() {
		return nil, apiError("sign-in", resp)
	}

	sess := token.session()
	c.mux.Lock()
	c.session = sess
	c.mux.Unlock()
	c.emit(remote.SignedIn, sess)
	return sess, nil
}

// SignUp registers a new identity. The metadata map lands in the user's
// raw_user_meta_data and is how profile fields travel with registration.
// Projects requiring email confirmation return no session here; the account
// exists but sign-in waits for the confirmation link.
func (c *Client) SignUp(ctx context.Context, email, password string,
	metadata map[string]string) (*account.User, error) {
	var token tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"email":    email,
			"password": password,
			"data":     metadata,
		}).
		SetResult(&token).
		Post("/auth/v1/signup")
	if err != nil {
		return nil, errors.Wrap(err, "sign-up request failed")
	}
	if resp.IsError() {
		return nil, apiError("sign-up", resp)
	}

	if token.AccessToken != "" {
		sess := token.session()
		c.mux.Lock()
		c.session = sess
		c.mux.Unlock()
		c.emit(remote.SignedIn, sess)
	}

	return &account.User{ID: token.User.ID, Email: token.User.Email}, nil
}

// SignOut revokes the session server-side and always drops the local copy;
// a dead token is no reason to appear signed in.
func (c *Client) SignOut(ctx context.Context) error {
	sess := c.currentSession()

	c.mux.Lock()
	c.session = nil
	c.mux.Unlock()
	defer c.emit(remote.SignedOut, nil)

	if sess == nil {
		return nil
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(sess.AccessToken).
		Post("/auth/v1/logout")
	if err != nil {
		return errors.Wrap(err, "sign-out request failed")
	}
	if resp.IsError() {
		return apiError("sign-out", resp)
	}
	return nil
}

// RefreshSession exchanges the refresh token for a new session.
func (c *Client) RefreshSession(ctx context.Context) (*remote.Session,
	error) {
	sess := c.currentSession()
	if sess == nil || sess.RefreshToken == "" {
		return nil, errors.New("no refresh token available")
	}

	var token tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "refresh_token").
		SetBody(map[string]string{
			"refresh_token": sess.RefreshToken,
		}).
		SetResult(&token).
		Post("/auth/v1/token")
	if err != nil {
		return nil, errors.Wrap(err, "session refresh request failed")
	}
	if resp.IsError() {
		return nil, apiError("session refresh", resp)
	}

	fresh := token.session()
	c.mux.Lock()
	c.session = fresh
	c.mux.Unlock()
	c.emit(remote.TokenRefreshed, fresh)
	jww.DEBUG.Printf("session refreshed for %s", fresh.User.ID)
	return fresh, nil
}

// ResetPassword asks GoTrue to email a recovery link.
func (c *Client) ResetPassword(ctx context.Context, email,
	redirectTo string) error {
	req := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email})
	if redirectTo != "" {
		req.SetQueryParam("redirect_to", redirectTo)
	}
	resp, err := req.Post("/auth/v1/recover")
	if err != nil {
		return errors.Wrap(err, "password recovery request failed")
	}
	if resp.IsError() {
		return apiError("password recovery", resp)
	}
	return nil
}

// UpdatePassword changes the signed-in user's password.
func (c *Client) UpdatePassword(ctx context.Context,
	newPassword string) error {
	sess := c.currentSession()
	if sess == nil {
		return errors.New("not signed in")
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(sess.AccessToken).
		SetBody(map[string]string{"password": newPassword}).
		Put("/auth/v1/user")
	if err != nil {
		return errors.Wrap(err, "password update request failed")
	}
	if resp.IsError() {
		return apiError("password update", resp)
	}
	return nil
}
