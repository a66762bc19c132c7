////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gitlab.com/elixxir/ekv"

	"gitlab.com/campusguard/client/event"
	"gitlab.com/campusguard/client/remote"
	"gitlab.com/campusguard/client/storage/account"
	"gitlab.com/campusguard/client/storage/versioned"
)

// mockIdentity is a scriptable remote.Identity.
type mockIdentity struct {
	mux        sync.Mutex
	sess       *remote.Session
	sessErr    error
	signInSess *remote.Session
	signInErr  error
	signOutErr error
	refreshErr error
	signUpUser *account.User
	signUpErr  error
	cb         remote.AuthChangeFn
}

func (m *mockIdentity) GetSession(context.Context) (*remote.Session, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	return m.sess, m.sessErr
}

func (m *mockIdentity) SignIn(_ context.Context, _,
	_ string) (*remote.Session, error) {
	return m.signInSess, m.signInErr
}

func (m *mockIdentity) SignUp(_ context.Context, _, _ string,
	_ map[string]string) (*account.User, error) {
	return m.signUpUser, m.signUpErr
}

func (m *mockIdentity) SignOut(context.Context) error { return m.signOutErr }

func (m *mockIdentity) RefreshSession(context.Context) (*remote.Session,
	error) {
	return nil, m.refreshErr
}

func (m *mockIdentity) OnAuthStateChange(
	fn remote.AuthChangeFn) remote.Subscription {
	m.mux.Lock()
	m.cb = fn
	m.mux.Unlock()
	return mockSub{}
}

func (m *mockIdentity) ResetPassword(context.Context, string,
	string) error {
	return nil
}

func (m *mockIdentity) UpdatePassword(context.Context, string) error {
	return nil
}

type mockSub struct{}

func (mockSub) Unsubscribe() {}

// mockProfiles is a scriptable remote.Profiles.
type mockProfiles struct {
	mux      sync.Mutex
	byID     map[string]*account.Profile
	getErr   error
	insErr   error
	updErr   error
	getCalls int
	block    chan struct{}
	updated  *account.Profile
}

func (m *mockProfiles) Get(_ context.Context,
	id string) (*account.Profile, error) {
	m.mux.Lock()
	m.getCalls++
	block := m.block
	m.mux.Unlock()
	if block != nil {
		<-block
	}
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.byID[id]
	if !ok {
		return nil, remote.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProfiles) Insert(_ context.Context,
	p *account.Profile) error {
	return m.insErr
}

func (m *mockProfiles) Update(_ context.Context, _ string,
	p *account.Profile) (*account.Profile, error) {
	if m.updErr != nil {
		return nil, m.updErr
	}
	m.mux.Lock()
	m.updated = p
	m.mux.Unlock()
	cp := *p
	return &cp, nil
}

func newTestReconciler(identity *mockIdentity,
	profiles *mockProfiles) (*Reconciler, *account.Store) {
	store := account.NewStore(versioned.NewKV(ekv.MakeMemstore()))
	events := event.NewManager()
	return NewReconciler(identity, profiles, nil, store, events), store
}

func sessionFor(id, email string) *remote.Session {
	return &remote.Session{
		User:        account.User{ID: id, Email: email},
		AccessToken: "token",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

// The cached profile must be installed in memory before the remote fetch
// resolves, and must survive a failing remote fetch.
func TestReconciler_FetchProfile_Precedence(t *testing.T) {
	identity := &mockIdentity{}
	profiles := &mockProfiles{getErr: errors.New("backend down")}
	r, store := newTestReconciler(identity, profiles)

	cached := &account.Profile{ID: "uid-1", FullName: "Cached Name"}
	require.NoError(t, store.SaveProfile(cached))

	got := r.FetchProfile(context.Background(), "uid-1")
	require.NotNil(t, got)
	require.Equal(t, "Cached Name", got.FullName)
	require.NotNil(t, r.Profile())
	require.Equal(t, "Cached Name", r.Profile().FullName)
}

// A successful remote fetch overwrites both the in-memory value and the
// cache (write-through).
func TestReconciler_FetchProfile_WriteThrough(t *testing.T) {
	identity := &mockIdentity{}
	profiles := &mockProfiles{byID: map[string]*account.Profile{
		"uid-1": {ID: "uid-1", FullName: "Fresh Name"},
	}}
	r, store := newTestReconciler(identity, profiles)
	require.NoError(t, store.SaveProfile(
		&account.Profile{ID: "uid-1", FullName: "Stale Name"}))

	got := r.FetchProfile(context.Background(), "uid-1")
	require.NotNil(t, got)
	require.Equal(t, "Fresh Name", got.FullName)

	persisted, err := store.LoadProfile()
	require.NoError(t, err)
	require.Equal(t, "Fresh Name", persisted.FullName)
}

// Concurrent fetches for the same id collapse into one remote call.
func TestReconciler_FetchProfile_Dedup(t *testing.T) {
	identity := &mockIdentity{}
	profiles := &mockProfiles{
		byID: map[string]*account.Profile{
			"uid-1": {ID: "uid-1", FullName: "Ada"},
		},
		block: make(chan struct{}),
	}
	r, _ := newTestReconciler(identity, profiles)

	const callers = 5
	var wg sync.WaitGroup
	results := make([]*account.Profile, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.FetchProfile(context.Background(), "uid-1")
		}(i)
	}

	// Let the callers pile up on the single in-flight request.
	time.Sleep(50 * time.Millisecond)
	close(profiles.block)
	wg.Wait()

	profiles.mux.Lock()
	calls := profiles.getCalls
	profiles.mux.Unlock()
	require.Equal(t, 1, calls, "expected one remote fetch")
	for _, p := range results {
		require.NotNil(t, p)
		require.Equal(t, "Ada", p.FullName)
	}
}

// With no remote session but a cached user, Initialize keeps the user
// signed in on cached data instead of dropping to Anonymous.
func TestReconciler_Initialize_NoSessionFallback(t *testing.T) {
	identity := &mockIdentity{refreshErr: errors.New("no refresh token")}
	profiles := &mockProfiles{}
	r, store := newTestReconciler(identity, profiles)
	require.NoError(t, store.SaveUser(
		&account.User{ID: "uid-1", Email: "a@b.edu.ng"}))

	r.Initialize(context.Background())

	require.Equal(t, Authenticated, r.State())
	require.NotNil(t, r.User())
	require.Equal(t, "uid-1", r.User().ID)
	require.Nil(t, r.Session())
}

// A fresh install with no session and no cache resolves to Anonymous.
func TestReconciler_Initialize_Anonymous(t *testing.T) {
	identity := &mockIdentity{}
	profiles := &mockProfiles{}
	r, _ := newTestReconciler(identity, profiles)

	r.Initialize(context.Background())
	require.Equal(t, Anonymous, r.State())
	require.Nil(t, r.User())
}

// An active remote session wins, pulls the profile, and writes through.
func TestReconciler_Initialize_RemoteSession(t *testing.T) {
	identity := &mockIdentity{sess: sessionFor("uid-1", "a@b.edu.ng")}
	profiles := &mockProfiles{byID: map[string]*account.Profile{
		"uid-1": {ID: "uid-1", FullName: "Ada Obi"},
	}}
	r, store := newTestReconciler(identity, profiles)

	r.Initialize(context.Background())

	require.Equal(t, Authenticated, r.State())
	require.NotNil(t, r.Session())
	require.Equal(t, "Ada Obi", r.Profile().FullName)
	cachedUser, err := store.LoadUser()
	require.NoError(t, err)
	require.Equal(t, "uid-1", cachedUser.ID)
}

// Failed sign-in commits nothing.
func TestReconciler_SignIn_Failure(t *testing.T) {
	identity := &mockIdentity{
		signInErr: errors.New("Invalid login credentials"),
	}
	profiles := &mockProfiles{}
	r, store := newTestReconciler(identity, profiles)

	err := r.SignIn(context.Background(), "a@b.edu.ng", "wrong")
	require.Error(t, err)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	require.Contains(t, authErr.Reason, "Invalid login credentials")

	require.Nil(t, r.User())
	cachedUser, _ := store.LoadUser()
	require.Nil(t, cachedUser)
}

// Sign-out clears memory and cache even when the provider call fails.
func TestReconciler_SignOut_ClearsEverything(t *testing.T) {
	identity := &mockIdentity{
		signInSess: sessionFor("uid-1", "a@b.edu.ng"),
		signOutErr: errors.New("network unreachable"),
	}
	profiles := &mockProfiles{byID: map[string]*account.Profile{
		"uid-1": {ID: "uid-1", FullName: "Ada"},
	}}
	r, store := newTestReconciler(identity, profiles)
	require.NoError(t, r.SignIn(context.Background(), "a@b.edu.ng", "pw"))
	require.NotNil(t, r.User())

	err := r.SignOut(context.Background())
	require.Error(t, err)

	require.Nil(t, r.User())
	require.Nil(t, r.Profile())
	require.Nil(t, r.Session())
	require.Equal(t, Anonymous, r.State())
	cachedUser, _ := store.LoadUser()
	require.Nil(t, cachedUser)
	cachedProfile, _ := store.LoadProfile()
	require.Nil(t, cachedProfile)
}

// The merge preserves protected fields no matter what the update says.
func TestReconciler_UpdateProfile_ImmutableFields(t *testing.T) {
	identity := &mockIdentity{signInSess: sessionFor("uid-1", "a@b.edu.ng")}
	profiles := &mockProfiles{byID: map[string]*account.Profile{
		"uid-1": {
			ID:       "uid-1",
			FullName: "Ada Obi",
			MatricNo: "A123",
			Email:    "a@b.edu.ng",
		},
	}}
	r, _ := newTestReconciler(identity, profiles)
	require.NoError(t, r.SignIn(context.Background(), "a@b.edu.ng", "pw"))

	updated, err := r.UpdateProfile(context.Background(), map[string]string{
		"matric_no": "X999",
		"email":     "y@z",
		"full_name": "Ada O. Obi",
	})
	require.NoError(t, err)
	require.Equal(t, "A123", updated.MatricNo)
	require.Equal(t, "a@b.edu.ng", updated.Email)
	require.Equal(t, "Ada O. Obi", updated.FullName)
	require.False(t, updated.UpdatedAt.IsZero())
}

// A failed remote update leaves both cache tiers untouched.
func TestReconciler_UpdateProfile_RemoteFailure(t *testing.T) {
	identity := &mockIdentity{signInSess: sessionFor("uid-1", "a@b.edu.ng")}
	profiles := &mockProfiles{byID: map[string]*account.Profile{
		"uid-1": {ID: "uid-1", FullName: "Ada Obi"},
	}}
	r, store := newTestReconciler(identity, profiles)
	require.NoError(t, r.SignIn(context.Background(), "a@b.edu.ng", "pw"))

	profiles.updErr = errors.New("row level security violation")
	_, err := r.UpdateProfile(context.Background(), map[string]string{
		"full_name": "Changed",
	})
	var updateErr *ProfileUpdateError
	require.ErrorAs(t, err, &updateErr)

	require.Equal(t, "Ada Obi", r.Profile().FullName)
	persisted, _ := store.LoadProfile()
	require.Equal(t, "Ada Obi", persisted.FullName)
}

// Updating with no resolvable identity fails with ErrNoIdentity.
func TestReconciler_UpdateProfile_NoIdentity(t *testing.T) {
	r, _ := newTestReconciler(&mockIdentity{}, &mockProfiles{})
	_, err := r.UpdateProfile(context.Background(), map[string]string{
		"full_name": "Nobody",
	})
	require.ErrorIs(t, err, ErrNoIdentity)
}

// A deferred profile insert does not fail registration.
func TestReconciler_SignUp_ProfileDeferred(t *testing.T) {
	identity := &mockIdentity{
		signUpUser: &account.User{ID: "uid-9", Email: "new@b.edu.ng"},
	}
	profiles := &mockProfiles{insErr: errors.New("duplicate key")}
	r, _ := newTestReconciler(identity, profiles)

	res, err := r.SignUp(context.Background(), "new@b.edu.ng", "pw",
		map[string]string{"full_name": "New Student",
			"matric_no": "B456"})
	require.NoError(t, err)
	require.True(t, res.ProfileDeferred)
	require.Equal(t, "uid-9", res.User.ID)
	require.Equal(t, Authenticated, r.State())
}

// Provider-reported sign-out events drop the identity.
func TestReconciler_AuthEvent_SignedOut(t *testing.T) {
	identity := &mockIdentity{sess: sessionFor("uid-1", "a@b.edu.ng")}
	profiles := &mockProfiles{byID: map[string]*account.Profile{
		"uid-1": {ID: "uid-1"},
	}}
	r, store := newTestReconciler(identity, profiles)
	r.Initialize(context.Background())
	require.Equal(t, Authenticated, r.State())

	identity.mux.Lock()
	cb := identity.cb
	identity.mux.Unlock()
	require.NotNil(t, cb)
	cb(remote.SignedOut, nil)

	require.Equal(t, Anonymous, r.State())
	require.Nil(t, r.User())
	cachedUser, _ := store.LoadUser()
	require.Nil(t, cachedUser)
}

// RefreshProfile with no identity anywhere reports ErrNoIdentity.
func TestReconciler_RefreshProfile_NoIdentity(t *testing.T) {
	r, _ := newTestReconciler(&mockIdentity{}, &mockProfiles{})
	_, err := r.RefreshProfile(context.Background())
	require.ErrorIs(t, err, ErrNoIdentity)
}

// RefreshProfile resolves the id from the cached user when memory is empty.
func TestReconciler_RefreshProfile_FromCache(t *testing.T) {
	profiles := &mockProfiles{byID: map[string]*account.Profile{
		"uid-1": {ID: "uid-1", FullName: "Ada"},
	}}
	r, store := newTestReconciler(&mockIdentity{}, profiles)
	require.NoError(t, store.SaveUser(&account.User{ID: "uid-1"}))

	p, err := r.RefreshProfile(context.Background())
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Equal(t, "Ada", p.FullName)
}
