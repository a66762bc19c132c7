////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package event fans state-change notifications out to registered
// observers. The reconciler reports once per state transition; UI layers
// subscribe to repaint. Delivery is asynchronous so a slow observer can
// never block a sign-in.
package event

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// Callback receives reported events.
type Callback func(category, evtType, details string)

type reportedEvent struct {
	Category  string
	EventType string
	Details   string
}

// String satisfies the fmt.Stringer interface.
func (e reportedEvent) String() string {
	return fmt.Sprintf("Event(%s, %s, %s)", e.Category, e.EventType, e.Details)
}

// Manager holds state for the event reporting system.
type Manager struct {
	eventCh  chan reportedEvent
	eventCbs sync.Map
	quit     chan struct{}
	once     sync.Once
}

// NewManager creates a Manager and starts its delivery routine.
func NewManager() *Manager {
	m := &Manager{
		eventCh: make(chan reportedEvent, 1000),
		quit:    make(chan struct{}),
	}
	go m.reportEventsHandler()
	return m
}

// Report queues an event for delivery to every registered callback. If the
// queue is full the event is dropped and logged; reporting never blocks.
func (m *Manager) Report(category, evtType, details string) {
	re := reportedEvent{
		Category:  category,
		EventType: evtType,
		Details:   details,
	}
	select {
	case m.eventCh <- re:
		jww.TRACE.Printf("Event reported: %s", re)
	default:
		jww.ERROR.Printf("Event queue full, unable to report: %s", re)
	}
}

// RegisterCallback records the given function to receive events under the
// given name. The name is used to delete it later.
func (m *Manager) RegisterCallback(name string, cb Callback) error {
	_, existsAlready := m.eventCbs.LoadOrStore(name, cb)
	if existsAlready {
		return errors.Errorf("key %s already exists as event callback",
			name)
	}
	return nil
}

// UnregisterCallback deletes the callback registered under name.
func (m *Manager) UnregisterCallback(name string) {
	m.eventCbs.Delete(name)
}

// Close stops the delivery routine. Queued events may go undelivered.
func (m *Manager) Close() {
	m.once.Do(func() { close(m.quit) })
}

// reportEventsHandler delivers events to every registered callback.
func (m *Manager) reportEventsHandler() {
	jww.DEBUG.Print("event delivery routine started")
	for {
		select {
		case <-m.quit:
			jww.DEBUG.Print("stopping event delivery routine")
			return
		case evt := <-m.eventCh:
			m.eventCbs.Range(func(name, cb interface{}) bool {
				f := cb.(Callback)
				f(evt.Category, evt.EventType, evt.Details)
				return true
			})
		}
	}
}
