////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package contact

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"

	"gitlab.com/campusguard/client/storage/versioned"
)

// Stable cache key contract, shared with the mobile builds.
const (
	contactsKey = "contacts"
	recentKey   = "recentContacts"
)

const currentContactVersion = 0

// MaxRecent bounds the recently-contacted list.
const MaxRecent = 5

// Store owns the contacts/recentContacts namespace of the local durable
// cache. Writes are serialized behind its mutex.
type Store struct {
	kv  *versioned.KV
	mux sync.Mutex
}

// NewStore returns a Store on top of the given cache.
func NewStore(kv *versioned.KV) *Store {
	return &Store{kv: kv}
}

// List returns the directory, writing the seed list through to the cache on
// first use. Idempotent.
func (s *Store) List() ([]Contact, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	contacts, ok, err := s.load(contactsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		contacts = seedContacts()
		if err = s.save(contactsKey, contacts); err != nil {
			return nil, err
		}
	}
	return contacts, nil
}

// Get returns the contact with the given id, or nil if it is not in the
// directory.
func (s *Store) Get(id string) (*Contact, error) {
	contacts, err := s.List()
	if err != nil {
		return nil, err
	}
	for i := range contacts {
		if contacts[i].ID == id {
			return &contacts[i], nil
		}
	}
	return nil, nil
}

// Add appends a contact to the directory and persists it.
func (s *Store) Add(c Contact) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	contacts, ok, err := s.load(contactsKey)
	if err != nil {
		return err
	}
	if !ok {
		contacts = seedContacts()
	}
	contacts = append(contacts, c)
	return s.save(contactsKey, contacts)
}

// Remove deletes the contact with the given id from the directory and from
// the recent list. Removal of a contact that is not user-added is refused by
// the chat manager before it reaches here.
func (s *Store) Remove(id string) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	contacts, ok, err := s.load(contactsKey)
	if err != nil || !ok {
		return err
	}
	kept := contacts[:0]
	for _, c := range contacts {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if err = s.save(contactsKey, kept); err != nil {
		return err
	}
	return s.removeRecentLocked(id)
}

// AddRecent moves the contact to the front of the recently-contacted list,
// de-duplicated by id and truncated to MaxRecent. Safe to call on every
// call or chat-open event.
func (s *Store) AddRecent(c Contact) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	recent, _, err := s.load(recentKey)
	if err != nil {
		return err
	}
	deduped := make([]Contact, 0, len(recent)+1)
	deduped = append(deduped, c)
	for _, r := range recent {
		if r.ID != c.ID {
			deduped = append(deduped, r)
		}
	}
	if len(deduped) > MaxRecent {
		deduped = deduped[:MaxRecent]
	}
	return s.save(recentKey, deduped)
}

// Recent returns the recently-contacted list, most recent first.
func (s *Store) Recent() ([]Contact, error) {
	recent, _, err := s.load(recentKey)
	return recent, err
}

// RemoveRecent drops the contact with the given id from the recent list.
func (s *Store) RemoveRecent(id string) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.removeRecentLocked(id)
}

func (s *Store) removeRecentLocked(id string) error {
	recent, ok, err := s.load(recentKey)
	if err != nil || !ok {
		return err
	}
	kept := recent[:0]
	for _, r := range recent {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	return s.save(recentKey, kept)
}

func (s *Store) load(key string) ([]Contact, bool, error) {
	obj, err := s.kv.Get(key)
	if err != nil {
		if !s.kv.Exists(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err,
			"failed to read %q from cache", key)
	}
	var contacts []Contact
	if err = json.Unmarshal(obj.Data, &contacts); err != nil {
		return nil, false, errors.Wrapf(err,
			"failed to unmarshal cached %q", key)
	}
	return contacts, true, nil
}

func (s *Store) save(key string, contacts []Contact) error {
	data, err := json.Marshal(contacts)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %q for caching", key)
	}
	return s.kv.Set(key, &versioned.Object{
		Version:   currentContactVersion,
		Timestamp: time.Now(),
		Data:      data,
	})
}
