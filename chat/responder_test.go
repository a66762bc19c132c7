////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package chat

import (
	"strings"
	"testing"
	"time"

	"gitlab.com/campusguard/client/catalog"
	"gitlab.com/campusguard/client/storage/contact"
)

var security = contact.Contact{
	Name:     "BU Security",
	Category: catalog.Security,
	Number:   "+2348031230001",
}

var fireService = contact.Contact{
	Name:     "BU Fire Service",
	Category: catalog.School,
}

// A greeting to a security contact yields a time-appropriate salutation,
// incident guidance, and a link to the report screen.
func TestRespond_Greeting_Security(t *testing.T) {
	morning := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	reply := Respond("hello", security, morning)

	if !strings.Contains(reply.Text, "Good morning") {
		t.Errorf("expected a morning salutation, got %q", reply.Text)
	}
	if !strings.Contains(reply.Text, "security incident") {
		t.Errorf("expected incident guidance, got %q", reply.Text)
	}
	if len(reply.Links) != 1 ||
		reply.Links[0].Target != catalog.ReportIncidentScreen {
		t.Errorf("expected a report-incident link, got %+v",
			reply.Links)
	}

	evening := time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC)
	reply = Respond("hello", security, evening)
	if !strings.Contains(reply.Text, "Good evening") {
		t.Errorf("expected an evening salutation, got %q", reply.Text)
	}
}

// A fire report takes the emergency path regardless of category and carries
// no links.
func TestRespond_Fire(t *testing.T) {
	reply := Respond("there's a fire!", fireService,
		time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC))

	if !strings.Contains(reply.Text, "fire") {
		t.Errorf("expected fire guidance, got %q", reply.Text)
	}
	if len(reply.Links) != 0 {
		t.Errorf("fire guidance must carry no links, got %+v",
			reply.Links)
	}
}

// The responder is deterministic: same inputs, same reply.
func TestRespond_Deterministic(t *testing.T) {
	at := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)
	first := Respond("my phone was stolen", security, at)
	second := Respond("my phone was stolen", security, at)

	if first.Text != second.Text || len(first.Links) != len(second.Links) {
		t.Errorf("responder not deterministic: %+v vs %+v",
			first, second)
	}
	if len(first.Links) != 1 ||
		first.Links[0].Target != catalog.ReportIncidentScreen {
		t.Errorf("theft should link to the report screen, got %+v",
			first.Links)
	}
}

// Emergency keywords outrank greetings when both are present.
func TestRespond_EmergencyBeatsGreeting(t *testing.T) {
	reply := Respond("hello, someone is injured", security,
		time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC))
	if strings.Contains(reply.Text, "Good morning") {
		t.Errorf("greeting outranked the emergency: %q", reply.Text)
	}
	if !strings.Contains(reply.Text, "Health Centre") {
		t.Errorf("expected medical guidance, got %q", reply.Text)
	}
}

// Unmatched messages fall back to category guidance; user-defined
// categories get the generic fallback.
func TestRespond_Fallbacks(t *testing.T) {
	reply := Respond("qwerty", security,
		time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC))
	if len(reply.Links) != 1 ||
		reply.Links[0].Target != catalog.ReportIncidentScreen {
		t.Errorf("security fallback should carry the report link, "+
			"got %+v", reply.Links)
	}

	custom := contact.Contact{Name: "My RA", Category: "Hall"}
	reply = Respond("qwerty", custom,
		time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC))
	if !strings.Contains(reply.Text, "My RA") {
		t.Errorf("generic fallback should name the contact, got %q",
			reply.Text)
	}
	if len(reply.Links) != 0 {
		t.Errorf("generic fallback should carry no links, got %+v",
			reply.Links)
	}
}
