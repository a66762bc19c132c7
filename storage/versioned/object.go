////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package versioned

import (
	"encoding/json"
	"fmt"
	"time"
)

// Object is the envelope every record is stored under in the local durable
// cache. It carries a schema version and the time of the write alongside the
// serialized record.
type Object struct {
	// Used to determine schema upgrades, if any
	Version uint64

	// Set when this object is written
	Timestamp time.Time

	// Serialized version of the original object
	Data []byte
}

// Unmarshal deserializes an Object from a byte slice. It is what makes these
// storable in a KeyValue. All fields are exported with simple types, so
// json.Unmarshal works fine.
func (v *Object) Unmarshal(data []byte) error {
	return json.Unmarshal(data, v)
}

// Marshal serializes an Object into a byte slice.
func (v *Object) Marshal() []byte {
	d, err := json.Marshal(v)
	// Not being able to marshal this simple object means something is
	// really wrong
	if err != nil {
		panic(fmt.Sprintf("Could not marshal: %+v", v))
	}
	return d
}
