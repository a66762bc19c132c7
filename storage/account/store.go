////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package account

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"

	"gitlab.com/campusguard/client/storage/versioned"
)

// Stable cache key contract. These names are shared with the mobile builds
// of the client and must not change.
const (
	userKey    = "user"
	profileKey = "userProfile"
	themeKey   = "theme_preference"
)

const currentAccountVersion = 0

// Themes the client understands.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Store owns the user/userProfile/theme_preference namespace of the local
// durable cache. All writes to these keys go through the one Store, which
// serializes them behind its mutex.
type Store struct {
	kv  *versioned.KV
	mux sync.Mutex
}

// NewStore returns a Store on top of the given cache.
func NewStore(kv *versioned.KV) *Store {
	return &Store{kv: kv}
}

// SaveUser mirrors the identity record into the cache.
func (s *Store) SaveUser(u *User) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.set(userKey, u)
}

// LoadUser returns the cached identity record, or nil if none is stored.
func (s *Store) LoadUser() (*User, error) {
	u := &User{}
	ok, err := s.get(userKey, u)
	if err != nil || !ok {
		return nil, err
	}
	return u, nil
}

// SaveProfile writes the profile through to the cache.
func (s *Store) SaveProfile(p *Profile) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.set(profileKey, p)
}

// LoadProfile returns the cached profile, or nil if none is stored.
func (s *Store) LoadProfile() (*Profile, error) {
	p := &Profile{}
	ok, err := s.get(profileKey, p)
	if err != nil || !ok {
		return nil, err
	}
	return p, nil
}

// Clear removes the identity and profile entries. Used on sign-out; the
// theme preference survives sign-out on purpose.
func (s *Store) Clear() error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if err := s.kv.Delete(userKey); err != nil && s.kv.Exists(err) {
		return errors.WithMessage(err, "failed to clear cached user")
	}
	if err := s.kv.Delete(profileKey); err != nil && s.kv.Exists(err) {
		return errors.WithMessage(err, "failed to clear cached profile")
	}
	return nil
}

// SetTheme persists the theme preference.
func (s *Store) SetTheme(theme string) error {
	if theme != ThemeDark && theme != ThemeLight {
		return errors.Errorf("unknown theme %q", theme)
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.set(themeKey, theme)
}

// Theme returns the persisted theme preference, defaulting to light.
func (s *Store) Theme() string {
	var theme string
	ok, err := s.get(themeKey, &theme)
	if err != nil || !ok {
		return ThemeLight
	}
	return theme
}

func (s *Store) set(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %q for caching", key)
	}
	obj := versioned.Object{
		Version:   currentAccountVersion,
		Timestamp: time.Now(),
		Data:      data,
	}
	return s.kv.Set(key, &obj)
}

// get loads key into value, reporting presence separately from failure so
// callers can distinguish "never written" from a broken cache.
func (s *Store) get(key string, value interface{}) (bool, error) {
	obj, err := s.kv.Get(key)
	if err != nil {
		if !s.kv.Exists(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to read %q from cache", key)
	}
	if err = json.Unmarshal(obj.Data, value); err != nil {
		return false, errors.Wrapf(err, "failed to unmarshal cached %q", key)
	}
	return true, nil
}
