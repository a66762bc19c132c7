////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package session

import (
	"time"

	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/campusguard/client/storage/account"
)

// mergeProfile applies a partial update onto a copy of base. Keys absent
// from updates keep their existing values. The id, matric number, and email
// are immutable once set: updates naming them are accepted but those values
// are dropped here, not just disabled in the UI.
func mergeProfile(base *account.Profile,
	updates map[string]string) *account.Profile {
	merged := *base
	for key, value := range updates {
		switch key {
		case "full_name":
			merged.FullName = value
		case "phone_number":
			merged.PhoneNumber = value
		case "course":
			merged.Course = value
		case "department":
			merged.Department = value
		case "level":
			merged.Level = value
		case "hall":
			merged.Hall = value
		case "profile_image_url":
			merged.ProfileImageURL = value
		case "id", "matric_no", "email":
			if protectedValueChanged(&merged, key, value) {
				jww.WARN.Printf("dropping update to protected "+
					"profile field %q", key)
			}
		default:
			jww.WARN.Printf("dropping update to unknown profile "+
				"field %q", key)
		}
	}
	merged.UpdatedAt = time.Now()
	return &merged
}

// protectedValueChanged reports whether an update actually tried to alter a
// protected field, so redundant no-op writes do not spam the log.
func protectedValueChanged(p *account.Profile, key, value string) bool {
	switch key {
	case "id":
		return p.ID != value
	case "matric_no":
		return p.MatricNo != value
	case "email":
		return p.Email != value
	}
	return false
}
