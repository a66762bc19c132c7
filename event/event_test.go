////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package event

import (
	"sync/atomic"
	"testing"
	"time"
)

// Reported events reach every registered callback.
func TestManager_ReportDelivers(t *testing.T) {
	m := NewManager()
	defer m.Close()

	var delivered int32
	err := m.RegisterCallback("test", func(category, evtType,
		details string) {
		if category == "session" && evtType == "Authenticated" {
			atomic.AddInt32(&delivered, 1)
		}
	})
	if err != nil {
		t.Fatalf("RegisterCallback failed: %+v", err)
	}

	m.Report("session", "Authenticated", "signed in")

	deadline := time.After(time.Second)
	for atomic.LoadInt32(&delivered) == 0 {
		select {
		case <-deadline:
			t.Fatal("event never delivered")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// Registering the same name twice is refused; unregistering frees it.
func TestManager_RegisterTwice(t *testing.T) {
	m := NewManager()
	defer m.Close()

	cb := func(string, string, string) {}
	if err := m.RegisterCallback("dup", cb); err != nil {
		t.Fatalf("first register failed: %+v", err)
	}
	if err := m.RegisterCallback("dup", cb); err == nil {
		t.Error("duplicate register succeeded")
	}
	m.UnregisterCallback("dup")
	if err := m.RegisterCallback("dup", cb); err != nil {
		t.Errorf("register after unregister failed: %+v", err)
	}
}
