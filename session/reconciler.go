////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package session implements the reconciler that decides, at any point in
// time, who the current user is and what their profile looks like. Three
// sources can answer: the in-memory cache, the local durable cache, and the
// remote backend. Precedence is fixed (memory, then cache, then remote) and
// any successful remote read writes through to the faster tiers.
package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/campusguard/client/event"
	"gitlab.com/campusguard/client/remote"
	"gitlab.com/campusguard/client/storage/account"
)

const eventCategory = "session"

// avatarBucket is the object-storage bucket profile images land in.
const avatarBucket = "avatars"

// Reconciler owns the authoritative (User, Profile) pair. It is safe for
// concurrent use; concurrent profile fetches for the same id are collapsed
// into one outstanding remote call.
type Reconciler struct {
	identity remote.Identity
	profiles remote.Profiles
	objects  remote.Objects
	store    *account.Store
	events   *event.Manager

	mux     sync.RWMutex
	user    *account.User
	profile *account.Profile
	session *remote.Session
	state   State

	inflightMux sync.Mutex
	inflight    map[string]*fetchCall

	sub remote.Subscription
}

// fetchCall is one outstanding remote profile fetch. Late callers for the
// same id wait on done instead of issuing their own request.
type fetchCall struct {
	done    chan struct{}
	profile *account.Profile
}

// NewReconciler wires a reconciler to its collaborators. objects may be nil
// when the build has no object storage configured; UpdateAvatar will then
// refuse.
func NewReconciler(identity remote.Identity, profiles remote.Profiles,
	objects remote.Objects, store *account.Store,
	events *event.Manager) *Reconciler {
	return &Reconciler{
		identity: identity,
		profiles: profiles,
		objects:  objects,
		store:    store,
		events:   events,
		state:    Unknown,
		inflight: make(map[string]*fetchCall),
	}
}

// Initialize performs the startup resolution pass: cached state first so
// the UI renders immediately, then the remote session. With no remote
// session but a cached user, the user stays signed in on cached data and a
// best-effort refresh runs in the background; the caller is never blocked
// on it.
func (r *Reconciler) Initialize(ctx context.Context) {
	if u, err := r.store.LoadUser(); err != nil {
		jww.WARN.Printf("ignoring user cache read failure: %+v", err)
	} else if u != nil {
		r.mux.Lock()
		r.user = u
		r.mux.Unlock()
	}
	if p, err := r.store.LoadProfile(); err != nil {
		jww.WARN.Printf("ignoring profile cache read failure: %+v", err)
	} else if p != nil {
		r.mux.Lock()
		r.profile = p
		r.mux.Unlock()
	}

	sess, err := r.identity.GetSession(ctx)
	if err != nil {
		jww.WARN.Printf("session lookup failed, falling back to "+
			"cached identity: %+v", err)
	}

	switch {
	case sess != nil:
		r.commitSession(sess)
		r.setState(Authenticated, "remote session active")
		r.FetchProfile(ctx, sess.User.ID)

	case r.User() != nil:
		// No remote session, but we have a cached identity: stay
		// signed in on cached data and try to recover the session
		// without blocking anyone.
		r.setState(Authenticated, "cached identity, no remote session")
		go r.backgroundRefresh()

	default:
		r.setState(Anonymous, "no session and no cached identity")
	}

	r.sub = r.identity.OnAuthStateChange(r.handleAuthChange)
}

// Close tears down the auth-state subscription.
func (r *Reconciler) Close() {
	if r.sub != nil {
		r.sub.Unsubscribe()
	}
}

// User returns the current in-memory identity, or nil.
func (r *Reconciler) User() *account.User {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return r.user
}

// Profile returns the current in-memory profile, or nil.
func (r *Reconciler) Profile() *account.Profile {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return r.profile
}

// Session returns the current in-memory session, or nil.
func (r *Reconciler) Session() *remote.Session {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return r.session
}

// State returns the reconciler's current authentication state.
func (r *Reconciler) State() State {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return r.state
}

// Theme returns the persisted theme preference.
func (r *Reconciler) Theme() string { return r.store.Theme() }

// SetTheme persists the theme preference.
func (r *Reconciler) SetTheme(theme string) error {
	return r.store.SetTheme(theme)
}

// FetchProfile resolves the profile for userId. The cached value, when one
// exists, is installed in memory before the remote call is made, so callers
// racing a slow network still see data. A successful remote read overwrites
// both cache tiers. Failures are signaled by returning whatever cached
// value was found, possibly nil; this never raises so screens can keep
// stale data visible instead of blanking.
func (r *Reconciler) FetchProfile(ctx context.Context,
	userID string) *account.Profile {
	if userID == "" {
		return nil
	}

	cached := r.installCachedProfile(userID)

	// Collapse concurrent fetches for the same id into one remote call.
	r.inflightMux.Lock()
	if call, ok := r.inflight[userID]; ok {
		r.inflightMux.Unlock()
		<-call.done
		if call.profile != nil {
			return call.profile
		}
		return cached
	}
	call := &fetchCall{done: make(chan struct{})}
	r.inflight[userID] = call
	r.inflightMux.Unlock()

	defer func() {
		r.inflightMux.Lock()
		delete(r.inflight, userID)
		r.inflightMux.Unlock()
		close(call.done)
	}()

	fresh, err := r.profiles.Get(ctx, userID)
	if err != nil {
		ferr := &ProfileFetchError{UserID: userID, cause: err}
		jww.WARN.Printf("keeping cached profile: %s", ferr)
		return cached
	}

	r.commitProfile(fresh)
	call.profile = fresh
	return fresh
}

// RefreshProfile re-resolves the current user's profile without an explicit
// id, using the memory -> session -> cache precedence to find one.
// Idempotent and safe to call repeatedly (pull-to-refresh).
func (r *Reconciler) RefreshProfile(
	ctx context.Context) (*account.Profile, error) {
	userID := r.resolveUserID(ctx)
	if userID == "" {
		return nil, ErrNoIdentity
	}
	return r.FetchProfile(ctx, userID), nil
}

// SignIn authenticates against the remote identity service. Nothing is
// committed unless the provider accepts the credentials; on success the
// identity is written through to the cache and the profile fetched.
func (r *Reconciler) SignIn(ctx context.Context, email,
	password string) error {
	sess, err := r.identity.SignIn(ctx, email, password)
	if err != nil {
		return newAuthError("sign-in", err)
	}

	r.commitSession(sess)
	r.setState(Authenticated, "signed in")
	r.FetchProfile(ctx, sess.User.ID)
	return nil
}

// SignUpResult reports the outcome of registration. ProfileDeferred is set
// when the identity was created but the profile row could not be; the
// account stays usable and profile completion happens later.
type SignUpResult struct {
	User            *account.User
	ProfileDeferred bool
}

// SignUp creates the identity, then materializes the profile row keyed by
// the new user's id. The two writes are not transactional: a profile
// failure is a warning, not an abort.
func (r *Reconciler) SignUp(ctx context.Context, email, password string,
	fields map[string]string) (SignUpResult, error) {
	user, err := r.identity.SignUp(ctx, email, password, fields)
	if err != nil {
		return SignUpResult{}, newAuthError("sign-up", err)
	}

	r.mux.Lock()
	r.user = user
	r.mux.Unlock()
	if err := r.store.SaveUser(user); err != nil {
		jww.WARN.Printf("ignoring user cache write failure: %+v", err)
	}
	r.setState(Authenticated, "signed up")

	profile := mergeProfile(&account.Profile{
		ID:       user.ID,
		Email:    user.Email,
		MatricNo: fields["matric_no"],
	}, fields)
	if err := r.profiles.Insert(ctx, profile); err != nil {
		jww.WARN.Printf("profile creation deferred for %s: %+v",
			user.ID, err)
		return SignUpResult{User: user, ProfileDeferred: true}, nil
	}
	r.commitProfile(profile)

	return SignUpResult{User: user}, nil
}

// SignOut tells the provider, then clears every local trace of the
// identity whether or not the provider call worked. Local state must never
// stay signed in after the user asked to leave.
func (r *Reconciler) SignOut(ctx context.Context) error {
	err := r.identity.SignOut(ctx)

	r.clearIdentity()
	r.setState(Anonymous, "signed out")

	if err != nil {
		jww.ERROR.Printf("remote sign-out failed, local state "+
			"cleared anyway: %+v", err)
		return newAuthError("sign-out", err)
	}
	return nil
}

// UpdateProfile merges the partial update onto the existing profile and
// sends the merged record to the remote store. Keys absent from updates
// keep their values; matric_no and email are immutable and stripped by the
// merge. On remote failure neither cache tier is touched.
func (r *Reconciler) UpdateProfile(ctx context.Context,
	updates map[string]string) (*account.Profile, error) {
	userID := r.resolveUserID(ctx)
	if userID == "" {
		return nil, ErrNoIdentity
	}

	base := r.Profile()
	if base == nil {
		base = r.installCachedProfile(userID)
	}
	if base == nil {
		base = &account.Profile{ID: userID}
	}

	merged := mergeProfile(base, updates)

	committed, err := r.profiles.Update(ctx, userID, merged)
	if err != nil {
		return nil, &ProfileUpdateError{cause: err}
	}
	if committed == nil {
		committed = merged
	}
	r.commitProfile(committed)
	return committed, nil
}

// UpdateAvatar uploads a new profile image to object storage and points the
// profile at its public URL.
func (r *Reconciler) UpdateAvatar(ctx context.Context, filename string,
	data []byte, contentType string) (*account.Profile, error) {
	if r.objects == nil {
		return nil, errors.New("no object storage configured")
	}
	userID := r.resolveUserID(ctx)
	if userID == "" {
		return nil, ErrNoIdentity
	}

	url, err := r.objects.Upload(ctx, avatarBucket,
		userID+"/"+filename, data, contentType)
	if err != nil {
		return nil, &ProfileUpdateError{cause: err}
	}
	return r.UpdateProfile(ctx, map[string]string{
		"profile_image_url": url,
	})
}

// ResetPassword asks the provider to email a recovery link.
func (r *Reconciler) ResetPassword(ctx context.Context, email,
	redirectTo string) error {
	if err := r.identity.ResetPassword(ctx, email, redirectTo); err != nil {
		return newAuthError("password-reset", err)
	}
	return nil
}

// UpdatePassword changes the signed-in user's password.
func (r *Reconciler) UpdatePassword(ctx context.Context,
	newPassword string) error {
	if err := r.identity.UpdatePassword(ctx, newPassword); err != nil {
		return newAuthError("password-update", err)
	}
	return nil
}

// resolveUserID finds a user id by precedence: in-memory user, then the
// remote session, then the cached user.
func (r *Reconciler) resolveUserID(ctx context.Context) string {
	if u := r.User(); u != nil {
		return u.ID
	}
	if sess, err := r.identity.GetSession(ctx); err == nil && sess != nil {
		return sess.User.ID
	}
	if u, err := r.store.LoadUser(); err == nil && u != nil {
		return u.ID
	}
	return ""
}

// installCachedProfile promotes the cached profile for userID into memory
// if memory does not already hold it, and returns whichever value now
// stands.
func (r *Reconciler) installCachedProfile(userID string) *account.Profile {
	r.mux.Lock()
	defer r.mux.Unlock()
	if r.profile != nil && r.profile.ID == userID {
		return r.profile
	}
	p, err := r.store.LoadProfile()
	if err != nil {
		jww.WARN.Printf("ignoring profile cache read failure: %+v", err)
		return r.profile
	}
	if p != nil && p.ID == userID {
		r.profile = p
	}
	return r.profile
}

// commitSession installs a session and its user in memory and writes the
// user through to the cache.
func (r *Reconciler) commitSession(sess *remote.Session) {
	u := sess.User
	r.mux.Lock()
	r.session = sess
	r.user = &u
	r.mux.Unlock()
	if err := r.store.SaveUser(&u); err != nil {
		jww.WARN.Printf("ignoring user cache write failure: %+v", err)
	}
}

// commitProfile installs a profile in memory and writes it through to the
// cache.
func (r *Reconciler) commitProfile(p *account.Profile) {
	r.mux.Lock()
	r.profile = p
	r.mux.Unlock()
	if err := r.store.SaveProfile(p); err != nil {
		jww.WARN.Printf("ignoring profile cache write failure: %+v", err)
	}
	r.events.Report(eventCategory, "ProfileUpdated", p.ID)
}

// clearIdentity wipes the in-memory identity and the cached user and
// profile entries.
func (r *Reconciler) clearIdentity() {
	r.mux.Lock()
	r.user = nil
	r.profile = nil
	r.session = nil
	r.mux.Unlock()
	if err := r.store.Clear(); err != nil {
		jww.WARN.Printf("ignoring cache clear failure: %+v", err)
	}
}

// setState records a state transition and reports it once.
func (r *Reconciler) setState(next State, details string) {
	r.mux.Lock()
	prev := r.state
	r.state = next
	r.mux.Unlock()
	if prev == next {
		return
	}
	jww.INFO.Printf("session state %s -> %s (%s)", prev, next, details)
	r.events.Report(eventCategory, next.String(), details)
}

// backgroundRefresh tries to recover a remote session after the no-session
// fallback kept the user signed in on cached data. Failure is swallowed.
func (r *Reconciler) backgroundRefresh() {
	ctx := context.Background()
	sess, err := r.identity.RefreshSession(ctx)
	if err != nil || sess == nil {
		jww.DEBUG.Printf("best-effort session refresh failed: %v", err)
		return
	}
	r.commitSession(sess)
	r.FetchProfile(ctx, sess.User.ID)
}

// handleAuthChange applies provider-reported transitions to the state
// machine.
func (r *Reconciler) handleAuthChange(evt remote.AuthEvent,
	sess *remote.Session) {
	jww.DEBUG.Printf("auth state change: %s", evt)
	switch evt {
	case remote.SignedIn:
		if sess == nil {
			return
		}
		r.commitSession(sess)
		r.setState(Authenticated, "provider reported sign-in")
		go r.FetchProfile(context.Background(), sess.User.ID)

	case remote.TokenRefreshed:
		if sess == nil {
			return
		}
		r.mux.Lock()
		r.session = sess
		r.mux.Unlock()

	case remote.SignedOut, remote.UserDeleted:
		r.clearIdentity()
		r.setState(Anonymous, "provider reported "+string(evt))
	}
}
