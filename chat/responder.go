////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package chat

import (
	"fmt"
	"strings"
	"time"

	"gitlab.com/campusguard/client/catalog"
	"gitlab.com/campusguard/client/storage/contact"
)

// Reply is what the simulated counterpart sends back.
type Reply struct {
	Text  string
	Links []catalog.Link
}

var reportLink = catalog.Link{
	Text:   "Report an incident",
	Target: catalog.ReportIncidentScreen,
}

var helplinesLink = catalog.Link{
	Text:   "View helplines",
	Target: catalog.HelplinesScreen,
}

// Respond produces the simulated reply for an outgoing message. It is a
// pure function of its arguments: rules are checked in a fixed order
// (emergency keywords, then greeting detection, then canned keyword
// responses, then a category fallback) so the same input always yields the
// same reply.
func Respond(text string, c contact.Contact, now time.Time) Reply {
	msg := strings.ToLower(strings.TrimSpace(text))

	if containsAny(msg, "fire", "smoke", "burning") {
		return Reply{Text: "If there is a fire, leave the building " +
			"immediately using the nearest exit. Do not use " +
			"elevators. Call the fire service on 112 once you " +
			"are safe, and alert people around you."}
	}
	if containsAny(msg, "injured", "hurt", "bleeding", "unconscious",
		"medical") {
		return Reply{
			Text: "If someone is injured, do not move them unless " +
				"they are in immediate danger. The Health " +
				"Centre responds 24/7; call them now and " +
				"describe the injury.",
			Links: []catalog.Link{helplinesLink},
		}
	}
	if containsAny(msg, "theft", "stolen", "robbery", "robbed", "break-in") {
		return Reply{
			Text: "Sorry to hear that. Please do not pursue anyone " +
				"yourself. Note what was taken and when, and " +
				"file a report so Security can follow up.",
			Links: []catalog.Link{reportLink},
		}
	}
	if containsAny(msg, "harass", "assault", "threat", "stalking") {
		return Reply{
			Text: "Your safety comes first. Move to a public, " +
				"well-lit area and stay on this chat. Please " +
				"file a report with as much detail as you can.",
			Links: []catalog.Link{reportLink},
		}
	}
	if containsAny(msg, "emergency", "urgent", "danger", "help me",
		"help!") {
		return Reply{
			Text: fmt.Sprintf("%s has been notified. If you are in "+
				"immediate danger call 112 now. Share your "+
				"location with the responder and stay where "+
				"it is safe.", c.Name),
			Links: []catalog.Link{reportLink},
		}
	}

	if isGreeting(msg) {
		return greetingReply(c, now)
	}

	if strings.Contains(msg, "thank") {
		return Reply{Text: "You're welcome. Stay safe, and reach out " +
			"any time."}
	}
	if containsAny(msg, "bye", "goodbye", "good night") {
		return Reply{Text: "Goodbye, and stay safe. This channel is " +
			"monitored around the clock."}
	}
	if containsAny(msg, "where", "location", "find you") {
		return Reply{Text: fmt.Sprintf("%s is reachable on %s. You "+
			"can also find walk-in details on the helplines "+
			"screen.", c.Name, c.Number),
			Links: []catalog.Link{helplinesLink}}
	}
	if strings.Contains(msg, "report") {
		return Reply{
			Text: "You can file an incident report directly from " +
				"the app; it goes straight to the duty desk.",
			Links: []catalog.Link{reportLink},
		}
	}

	return categoryFallback(c)
}

// greetingReply opens with a salutation matching the time of day, then the
// contact's standing guidance.
func greetingReply(c contact.Contact, now time.Time) Reply {
	var salutation string
	switch h := now.Hour(); {
	case h < 12:
		salutation = "Good morning"
	case h < 17:
		salutation = "Good afternoon"
	default:
		salutation = "Good evening"
	}

	switch c.Category {
	case catalog.Security:
		return Reply{
			Text: fmt.Sprintf("%s! This is %s. If you want to "+
				"report a security incident, describe what "+
				"happened and where, or use the report form "+
				"below.", salutation, c.Name),
			Links: []catalog.Link{reportLink},
		}
	case catalog.Health:
		return Reply{
			Text: fmt.Sprintf("%s! This is %s. For medical "+
				"emergencies call us directly; for anything "+
				"else tell me your symptoms and I'll point "+
				"you to the right clinic.", salutation, c.Name),
			Links: []catalog.Link{helplinesLink},
		}
	case catalog.School:
		return Reply{Text: fmt.Sprintf("%s! This is %s. How can we "+
			"help you today?", salutation, c.Name)}
	case catalog.Government:
		return Reply{Text: fmt.Sprintf("%s, you have reached %s. "+
			"For life-threatening emergencies always call 112 "+
			"first.", salutation, c.Name)}
	default:
		return Reply{Text: fmt.Sprintf("%s! You have reached %s.",
			salutation, c.Name)}
	}
}

func categoryFallback(c contact.Contact) Reply {
	switch c.Category {
	case catalog.Security:
		return Reply{
			Text: "Noted. If this concerns an incident on campus, " +
				"please file a report so the duty officer " +
				"can act on it.",
			Links: []catalog.Link{reportLink},
		}
	case catalog.Health:
		return Reply{Text: "Noted. The Health Centre is open 24/7; " +
			"walk in or call if this needs attention today."}
	case catalog.School:
		return Reply{Text: "Thanks for your message. Student Affairs " +
			"will get back to you during office hours."}
	case catalog.Government:
		return Reply{Text: "Thank you for contacting us. For " +
			"emergencies call 112; otherwise an operator will " +
			"respond shortly."}
	default:
		return Reply{Text: fmt.Sprintf("Your message has been left "+
			"with %s.", c.Name)}
	}
}

func isGreeting(msg string) bool {
	greetings := []string{"hello", "hi", "hey", "good morning",
		"good afternoon", "good evening", "greetings"}
	for _, g := range greetings {
		if msg == g || strings.HasPrefix(msg, g+" ") ||
			strings.HasPrefix(msg, g+",") ||
			strings.HasPrefix(msg, g+"!") {
			return true
		}
	}
	return false
}

func containsAny(msg string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(msg, w) {
			return true
		}
	}
	return false
}
