////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package account persists the signed-in identity and its profile in the
// local durable cache so the client has something to render before any
// network round trip completes.
package account

import (
	"time"
)

// User is the identity record owned by the remote identity service and
// mirrored read-only into the cache.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Profile is the mutable user-editable record, one-to-one with User by ID.
// Field names mirror the columns of the remote profiles table. MatricNo and
// Email are immutable after creation; the reconciler's merge strips them
// from updates.
type Profile struct {
	ID              string    `json:"id"`
	FullName        string    `json:"full_name"`
	MatricNo        string    `json:"matric_no"`
	Email           string    `json:"email"`
	PhoneNumber     string    `json:"phone_number"`
	Course          string    `json:"course"`
	Department      string    `json:"department"`
	Level           string    `json:"level"`
	Hall            string    `json:"hall"`
	ProfileImageURL string    `json:"profile_image_url"`
	UpdatedAt       time.Time `json:"updated_at"`
}
