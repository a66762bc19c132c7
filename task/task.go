////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package task runs cancellable delayed work. The chat manager uses it for
// simulated replies and read receipts; cancelling a thread's tasks on clear
// or delete guarantees a timer can never resurrect removed data.
package task

import (
	"sync"
	"sync/atomic"
	"time"

	jww "github.com/spf13/jwalterweatherman"
)

// Status of a scheduled task.
type Status uint32

const (
	Pending Status = iota
	Fired
	Cancelled
)

// String satisfies the fmt.Stringer interface.
func (s Status) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Fired:
		return "Fired"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Task is one unit of delayed work. Its status moves Pending -> Fired or
// Pending -> Cancelled, exactly once.
type Task struct {
	group  string
	timer  *time.Timer
	status uint32
	done   chan struct{}
}

// Status returns the current status of the task.
func (t *Task) Status() Status {
	return Status(atomic.LoadUint32(&t.status))
}

// Done is closed once the task has fired or been cancelled.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Cancel stops the task if it has not fired yet. Returns true if the task
// was still pending.
func (t *Task) Cancel() bool {
	if !atomic.CompareAndSwapUint32(&t.status,
		uint32(Pending), uint32(Cancelled)) {
		return false
	}
	t.timer.Stop()
	close(t.done)
	jww.TRACE.Printf("cancelled task in group %q", t.group)
	return true
}

// Scheduler tracks pending tasks by group so a whole group can be
// cancelled together.
type Scheduler struct {
	mux     sync.Mutex
	pending map[string][]*Task
}

// NewScheduler returns an empty Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{pending: make(map[string][]*Task)}
}

// Schedule runs fn after delay unless the task or its group is cancelled
// first. fn runs on its own goroutine.
func (s *Scheduler) Schedule(group string, delay time.Duration,
	fn func()) *Task {
	t := &Task{group: group, done: make(chan struct{})}
	t.timer = time.AfterFunc(delay, func() {
		if !atomic.CompareAndSwapUint32(&t.status,
			uint32(Pending), uint32(Fired)) {
			return
		}
		defer close(t.done)
		s.forget(group, t)
		fn()
	})

	s.mux.Lock()
	s.pending[group] = append(s.pending[group], t)
	s.mux.Unlock()
	return t
}

// CancelGroup cancels every pending task in the group and returns how many
// were still pending.
func (s *Scheduler) CancelGroup(group string) int {
	s.mux.Lock()
	tasks := s.pending[group]
	delete(s.pending, group)
	s.mux.Unlock()

	cancelled := 0
	for _, t := range tasks {
		if t.Cancel() {
			cancelled++
		}
	}
	return cancelled
}

// CancelAll cancels every pending task in every group.
func (s *Scheduler) CancelAll() {
	s.mux.Lock()
	all := s.pending
	s.pending = make(map[string][]*Task)
	s.mux.Unlock()

	for _, tasks := range all {
		for _, t := range tasks {
			t.Cancel()
		}
	}
}

// forget drops a fired task from the pending list.
func (s *Scheduler) forget(group string, fired *Task) {
	s.mux.Lock()
	defer s.mux.Unlock()
	tasks := s.pending[group]
	for i, t := range tasks {
		if t == fired {
			s.pending[group] = append(tasks[:i], tasks[i+1:]...)
			return
		}
	}
}
