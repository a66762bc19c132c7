////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package chat

import (
	"math/rand"
	"time"
)

// Delays decides how long the simulated counterpart waits before replying
// and before confirming delivery. Injectable so tests can collapse the
// waits to zero.
type Delays interface {
	ReplyDelay() time.Duration
	ReadReceiptDelay() time.Duration
}

// DefaultDelays replies after a randomized 1.5-2.5 s and confirms delivery
// after a fixed beat, which reads naturally in the UI.
type DefaultDelays struct{}

func (DefaultDelays) ReplyDelay() time.Duration {
	return 1500*time.Millisecond +
		time.Duration(rand.Intn(1000))*time.Millisecond
}

func (DefaultDelays) ReadReceiptDelay() time.Duration {
	return 800 * time.Millisecond
}
