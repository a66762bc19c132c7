////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package contact persists the emergency directory and the bounded list of
// recently contacted entries. The directory is seeded with the campus
// services on first load; only user-added contacts may ever be removed.
package contact

import (
	"gitlab.com/campusguard/client/catalog"
)

// Contact is one entry in the emergency directory.
type Contact struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Category    catalog.Category `json:"category"`
	Number      string           `json:"number"`
	Priority    catalog.Priority `json:"priority"`
	Online      bool             `json:"online"`
	IsUserAdded bool             `json:"isUserAdded"`
}

// seedContacts is the directory a fresh install starts with. IDs are stable
// so chat threads keyed on them survive reinstall restores.
func seedContacts() []Contact {
	return []Contact{
		{
			ID:       "seed-security",
			Name:     "BU Security",
			Category: catalog.Security,
			Number:   "+2348031230001",
			Priority: catalog.VeryHigh,
			Online:   true,
		},
		{
			ID:       "seed-health",
			Name:     "BU Health Centre",
			Category: catalog.Health,
			Number:   "+2348031230002",
			Priority: catalog.High,
			Online:   true,
		},
		{
			ID:       "seed-student-affairs",
			Name:     "Student Affairs",
			Category: catalog.School,
			Number:   "+2348031230003",
			Priority: catalog.Medium,
			Online:   false,
		},
		{
			ID:       "seed-state-emergency",
			Name:     "State Emergency Services",
			Category: catalog.Government,
			Number:   "112",
			Priority: catalog.High,
			Online:   true,
		},
	}
}
