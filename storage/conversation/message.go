////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package conversation

import (
	"time"

	"github.com/google/uuid"

	"gitlab.com/campusguard/client/catalog"
)

// SenderYou marks messages authored by the local user.
const SenderYou = "You"

// Message is one entry in a contact's chat thread.
type Message struct {
	ID      string         `json:"id"`
	Sender  string         `json:"sender"`
	Text    string         `json:"text"`
	Time    time.Time      `json:"time"`
	Read    bool           `json:"read"`
	ReplyTo string         `json:"replyTo,omitempty"`
	Links   []catalog.Link `json:"links,omitempty"`
}

// NewMessage builds a message with a fresh id and the given timestamp.
func NewMessage(sender, text string, at time.Time) Message {
	return Message{
		ID:     uuid.NewString(),
		Sender: sender,
		Text:   text,
		Time:   at,
	}
}
