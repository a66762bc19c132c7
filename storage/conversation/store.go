////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package conversation persists per-contact chat threads in the local
// durable cache. Threads live entirely on-device; there is no remote
// authority for them.
package conversation

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"

	"gitlab.com/campusguard/client/storage/versioned"
)

const threadKeyPrefix = "chat_"

const currentThreadVersion = 0

// Store owns the chat_<contactID> namespace of the local durable cache.
// Loaded threads are kept in memory so repeated opens of the same chat do
// not round-trip through deserialization.
type Store struct {
	loaded map[string][]Message
	kv     *versioned.KV
	mux    sync.Mutex
}

// NewStore returns a thread store on top of the given cache.
func NewStore(kv *versioned.KV) *Store {
	return &Store{
		loaded: make(map[string][]Message),
		kv:     kv,
	}
}

// Get returns the thread for the contact, loading it from the cache on
// first access. A contact with no thread yields an empty slice.
func (s *Store) Get(contactID string) ([]Message, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	thread, err := s.getLocked(contactID)
	if err != nil {
		return nil, err
	}
	out := make([]Message, len(thread))
	copy(out, thread)
	return out, nil
}

// Append adds a message to the end of the contact's thread and persists
// immediately.
func (s *Store) Append(contactID string, msg Message) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	thread, err := s.getLocked(contactID)
	if err != nil {
		return err
	}
	thread = append(thread, msg)
	return s.saveLocked(contactID, thread)
}

// MarkRead flips the read flag on the identified message in place and
// persists. Unknown ids are a no-op.
func (s *Store) MarkRead(contactID, messageID string) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	thread, err := s.getLocked(contactID)
	if err != nil {
		return err
	}
	for i := range thread {
		if thread[i].ID == messageID {
			thread[i].Read = true
			return s.saveLocked(contactID, thread)
		}
	}
	return nil
}

// DeleteMessage removes one message from the thread and persists. Unknown
// ids are a no-op.
func (s *Store) DeleteMessage(contactID, messageID string) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	thread, err := s.getLocked(contactID)
	if err != nil {
		return err
	}
	kept := make([]Message, 0, len(thread))
	for _, m := range thread {
		if m.ID != messageID {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(thread) {
		return nil
	}
	return s.saveLocked(contactID, kept)
}

// Clear removes the entire thread, including its cache entry. Irreversible.
func (s *Store) Clear(contactID string) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	delete(s.loaded, contactID)
	err := s.kv.Delete(threadKeyPrefix + contactID)
	if err != nil && s.kv.Exists(err) {
		return errors.Wrapf(err,
			"failed to clear thread for contact %s", contactID)
	}
	return nil
}

func (s *Store) getLocked(contactID string) ([]Message, error) {
	if thread, ok := s.loaded[contactID]; ok {
		return thread, nil
	}
	obj, err := s.kv.Get(threadKeyPrefix + contactID)
	if err != nil {
		if !s.kv.Exists(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err,
			"failed to read thread for contact %s", contactID)
	}
	var thread []Message
	if err = json.Unmarshal(obj.Data, &thread); err != nil {
		return nil, errors.Wrapf(err,
			"failed to unmarshal thread for contact %s", contactID)
	}
	s.loaded[contactID] = thread
	return thread, nil
}

func (s *Store) saveLocked(contactID string, thread []Message) error {
	data, err := json.Marshal(thread)
	if err != nil {
		return errors.Wrapf(err,
			"failed to marshal thread for contact %s", contactID)
	}
	err = s.kv.Set(threadKeyPrefix+contactID, &versioned.Object{
		Version:   currentThreadVersion,
		Timestamp: time.Now(),
		Data:      data,
	})
	if err != nil {
		return err
	}
	s.loaded[contactID] = thread
	return nil
}
