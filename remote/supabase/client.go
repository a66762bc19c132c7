////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package supabase implements the remote capability surfaces against a
// Supabase-style backend: GoTrue for identity, PostgREST for the profiles
// table, and the storage API for avatars. One Client implements
// remote.Identity, remote.Profiles, and remote.Objects.
package supabase

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/campusguard/client/remote"
)

const requestTimeout = 30 * time.Second

// Client talks to the hosted backend. It holds the active session in
// memory; persistence of identity data across restarts is the reconciler's
// job, not this client's.
type Client struct {
	http    *resty.Client
	baseURL string
	anonKey string

	mux     sync.RWMutex
	session *remote.Session

	watchMux  sync.Mutex
	watchers  map[int]remote.AuthChangeFn
	nextWatch int
}

// New builds a Client for the project at baseURL using its anon key.
func New(baseURL, anonKey string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout).
		SetHeader("apikey", anonKey).
		SetHeader("Accept", "application/json")

	return &Client{
		http:     httpClient,
		baseURL:  baseURL,
		anonKey:  anonKey,
		watchers: make(map[int]remote.AuthChangeFn),
	}
}

// OnAuthStateChange registers a callback for auth events.
func (c *Client) OnAuthStateChange(fn remote.AuthChangeFn) remote.Subscription {
	c.watchMux.Lock()
	defer c.watchMux.Unlock()
	id := c.nextWatch
	c.nextWatch++
	c.watchers[id] = fn
	return &subscription{client: c, id: id}
}

type subscription struct {
	client *Client
	id     int
	once   sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.client.watchMux.Lock()
		delete(s.client.watchers, s.id)
		s.client.watchMux.Unlock()
	})
}

// emit delivers an auth event to every watcher. Delivery order between
// watchers is not guaranteed.
func (c *Client) emit(evt remote.AuthEvent, sess *remote.Session) {
	c.watchMux.Lock()
	fns := make([]remote.AuthChangeFn, 0, len(c.watchers))
	for _, fn := range c.watchers {
		fns = append(fns, fn)
	}
	c.watchMux.Unlock()
	for _, fn := range fns {
		fn(evt, sess)
	}
}

// currentSession returns the in-memory session, or nil.
func (c *Client) currentSession() *remote.Session {
	c.mux.RLock()
	defer c.mux.RUnlock()
	return c.session
}

// bearer picks the authorization token: the session's access token when one
// is live, else the anon key.
func (c *Client) bearer() string {
	if sess := c.currentSession(); sess != nil {
		return sess.AccessToken
	}
	return c.anonKey
}

// apiError turns a non-2xx response into an error carrying the provider's
// human-readable message.
func apiError(op string, resp *resty.Response) error {
	var body struct {
		Msg         string `json:"msg"`
		Message     string `json:"message"`
		Description string `json:"error_description"`
	}
	reason := fmt.Sprintf("status %d", resp.StatusCode())
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		switch {
		case body.Msg != "":
			reason = body.Msg
		case body.Message != "":
			reason = body.Message
		case body.Description != "":
			reason = body.Description
		}
	}
	jww.DEBUG.Printf("%s returned %d: %s", op, resp.StatusCode(), reason)
	return errors.Errorf("%s: %s", op, reason)
}
