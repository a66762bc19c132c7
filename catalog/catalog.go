////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package catalog holds the shared enumerations used across the client:
// contact categories, contact priorities, and the screen targets that chat
// messages may deep-link to.
package catalog

// Category classifies a contact in the emergency directory. Seed contacts
// use one of the four well-known categories; user-added contacts may carry
// any non-empty string.
type Category string

const (
	Security   Category = "Security"
	Health     Category = "Health"
	School     Category = "School"
	Government Category = "Government"
)

// Priority orders contacts in the directory UI.
type Priority string

const (
	Low      Priority = "Low"
	Medium   Priority = "Medium"
	High     Priority = "High"
	VeryHigh Priority = "VeryHigh"
)

// Screen identifies a navigation target for chat deep links.
type Screen string

const (
	ReportIncidentScreen Screen = "ReportIncident"
	HelplinesScreen      Screen = "Helplines"
	AlertsScreen         Screen = "Alerts"
	ProfileScreen        Screen = "Profile"
)

// Link is a tappable navigation chip attached to a chat message.
type Link struct {
	Text   string `json:"text"`
	Target Screen `json:"targetScreen"`
}
