////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package session

// State is the reconciler's view of whether someone is signed in. It starts
// Unknown and settles after Initialize's first resolution pass.
type State uint8

const (
	Unknown State = iota
	Authenticated
	Anonymous
)

// String satisfies the fmt.Stringer interface.
func (s State) String() string {
	switch s {
	case Unknown:
		return "Unknown"
	case Authenticated:
		return "Authenticated"
	case Anonymous:
		return "Anonymous"
	default:
		return "Invalid"
	}
}
