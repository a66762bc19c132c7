////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package chat is the contact/chat half of the client core: the emergency
// directory, per-contact threads, the simulated counterpart responder, and
// the timers that deliver its replies and read receipts. Everything here is
// local; no remote authority exists for chat data.
package chat

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/campusguard/client/catalog"
	"gitlab.com/campusguard/client/storage/contact"
	"gitlab.com/campusguard/client/storage/conversation"
	"gitlab.com/campusguard/client/task"
)

// ErrSeedContact is returned when a caller tries to delete one of the
// pre-seeded campus contacts.
var ErrSeedContact = errors.New("seed contacts cannot be deleted")

// Manager coordinates the contact directory, chat threads, and the
// simulated reply/read-receipt timers. Contact deletion is atomic from the
// caller's perspective: directory entry, recent-list entry, and thread go
// together behind one lock.
type Manager struct {
	contacts *contact.Store
	threads  *conversation.Store
	delays   Delays
	sched    *task.Scheduler
	mux      sync.Mutex
}

// NewManager wires the manager. A nil delays gets DefaultDelays.
func NewManager(contacts *contact.Store, threads *conversation.Store,
	delays Delays) *Manager {
	if delays == nil {
		delays = DefaultDelays{}
	}
	return &Manager{
		contacts: contacts,
		threads:  threads,
		delays:   delays,
		sched:    task.NewScheduler(),
	}
}

// Close cancels every pending timer. Call on teardown so a late reply
// cannot write into a store that is going away.
func (m *Manager) Close() {
	m.sched.CancelAll()
}

// LoadContacts returns the directory, seeding it on first launch.
func (m *Manager) LoadContacts() ([]contact.Contact, error) {
	return m.contacts.List()
}

// LoadContact returns the directory entry with the given id, or nil when
// no such contact exists.
func (m *Manager) LoadContact(id string) (*contact.Contact, error) {
	return m.contacts.Get(id)
}

// Recent returns the recently-contacted list, most recent first.
func (m *Manager) Recent() ([]contact.Contact, error) {
	return m.contacts.Recent()
}

// AddToRecent records an interaction with the contact.
func (m *Manager) AddToRecent(c contact.Contact) error {
	return m.contacts.AddRecent(c)
}

// OpenChat returns the contact's thread, lazily seeding it with a welcome
// message on first open, and records the interaction in the recent list.
func (m *Manager) OpenChat(c contact.Contact) ([]conversation.Message,
	error) {
	thread, err := m.threads.Get(c.ID)
	if err != nil {
		return nil, err
	}
	if len(thread) == 0 {
		welcome := conversation.NewMessage(c.Name, welcomeText(c),
			time.Now())
		welcome.Read = true
		if err = m.threads.Append(c.ID, welcome); err != nil {
			return nil, err
		}
		thread = []conversation.Message{welcome}
	}
	if err = m.contacts.AddRecent(c); err != nil {
		jww.WARN.Printf("ignoring recent-list write failure: %+v", err)
	}
	return thread, nil
}

// SendMessage appends the user's message and persists it immediately. For
// seed contacts a simulated reply is scheduled after the configured delay;
// a read receipt for the outgoing message is scheduled for every contact.
// replyTo optionally names the message being replied to.
func (m *Manager) SendMessage(c contact.Contact, text,
	replyTo string) (conversation.Message, error) {
	msg := conversation.NewMessage(conversation.SenderYou, text,
		time.Now())
	msg.ReplyTo = replyTo
	if err := m.threads.Append(c.ID, msg); err != nil {
		return conversation.Message{}, err
	}

	m.sched.Schedule(c.ID, m.delays.ReadReceiptDelay(), func() {
		if err := m.threads.MarkRead(c.ID, msg.ID); err != nil {
			jww.WARN.Printf("read receipt for %s dropped: %+v",
				msg.ID, err)
		}
	})

	if !c.IsUserAdded {
		reply := Respond(text, c, time.Now())
		m.sched.Schedule(c.ID, m.delays.ReplyDelay(), func() {
			rm := conversation.NewMessage(c.Name, reply.Text,
				time.Now())
			rm.Links = reply.Links
			if err := m.threads.Append(c.ID, rm); err != nil {
				jww.WARN.Printf("simulated reply for %s "+
					"dropped: %+v", c.ID, err)
			}
		})
	}

	return msg, nil
}

// DeleteMessage removes one message from a thread. Irreversible.
func (m *Manager) DeleteMessage(contactID, messageID string) error {
	return m.threads.DeleteMessage(contactID, messageID)
}

// ClearChat removes the entire thread and cancels any timers still aimed at
// it, so a pending simulated reply cannot resurrect cleared data.
func (m *Manager) ClearChat(contactID string) error {
	m.sched.CancelGroup(contactID)
	return m.threads.Clear(contactID)
}

// CreateContact validates and adds a user-defined contact to the directory.
func (m *Manager) CreateContact(name, number string,
	category catalog.Category,
	priority catalog.Priority) (contact.Contact, error) {
	if name == "" || number == "" || category == "" {
		return contact.Contact{}, errors.New(
			"name, number, and category are required")
	}
	if priority == "" {
		priority = catalog.Medium
	}
	c := contact.Contact{
		ID:          uuid.NewString(),
		Name:        name,
		Category:    category,
		Number:      number,
		Priority:    priority,
		IsUserAdded: true,
	}
	if err := m.contacts.Add(c); err != nil {
		return contact.Contact{}, err
	}
	return c, nil
}

// DeleteContact removes a user-added contact together with its recent-list
// entry and chat thread. Seed contacts are refused; partial deletion is
// never observable because the whole removal happens behind the manager
// lock.
func (m *Manager) DeleteContact(id string) error {
	m.mux.Lock()
	defer m.mux.Unlock()

	c, err := m.contacts.Get(id)
	if err != nil {
		return err
	}
	if c == nil {
		return nil
	}
	if !c.IsUserAdded {
		return ErrSeedContact
	}

	m.sched.CancelGroup(id)
	if err = m.contacts.Remove(id); err != nil {
		return errors.WithMessagef(err,
			"failed to remove contact %s", id)
	}
	if err = m.threads.Clear(id); err != nil {
		return errors.WithMessagef(err,
			"failed to remove thread for contact %s", id)
	}
	return nil
}

// welcomeText picks the lazily-seeded first message of a thread. Seed
// services greet officially; user-added contacts get a plain note.
func welcomeText(c contact.Contact) string {
	if c.IsUserAdded {
		return fmt.Sprintf("You can now reach %s from this chat.",
			c.Name)
	}
	return fmt.Sprintf("Hello! This is %s. This channel is monitored; "+
		"tell us what is going on and we will respond.", c.Name)
}
