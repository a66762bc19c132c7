////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package versioned wraps an ekv.KeyValue with the envelope and key-prefix
// conventions of the local durable cache. The cache is an optimization, not a
// dependency: callers are expected to treat read/write failures here as
// non-fatal and fall back to whatever in-memory state they hold.
package versioned

import (
	"fmt"

	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/ekv"
)

const PrefixSeparator = "/"

type root struct {
	data ekv.KeyValue
}

// KV stores enveloped records under stable string keys. Prefixes namespace
// unrelated owners of the same backing store.
type KV struct {
	r      *root
	prefix string
}

// NewKV creates a key/value store backed by anything implementing
// ekv.KeyValue.
func NewKV(data ekv.KeyValue) *KV {
	return &KV{r: &root{data: data}}
}

// Get retrieves the Object stored under key. The error satisfies
// KV.Exists == false when the key has never been written.
func (v *KV) Get(key string) (*Object, error) {
	key = v.makeKey(key)
	jww.TRACE.Printf("cache get %q", key)
	result := Object{}
	err := v.r.data.Get(key, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Set upserts the Object under key. The Object carries its own schema
// version; callers own versioning policy.
func (v *KV) Set(key string, object *Object) error {
	key = v.makeKey(key)
	jww.TRACE.Printf("cache set %q", key)
	return v.r.data.Set(key, object)
}

// Delete removes a given key from the data store.
func (v *KV) Delete(key string) error {
	key = v.makeKey(key)
	jww.TRACE.Printf("cache delete %q", key)
	return v.r.data.Delete(key)
}

// Prefix returns a new KV sharing the same backing store with the given
// prefix appended.
func (v *KV) Prefix(prefix string) *KV {
	return &KV{
		r:      v.r,
		prefix: v.prefix + prefix + PrefixSeparator,
	}
}

// GetPrefix returns the prefix of the KV.
func (v *KV) GetPrefix() string {
	return v.prefix
}

// GetFullKey returns the key with all prefixes appended.
func (v *KV) GetFullKey(key string) string {
	return v.makeKey(key)
}

func (v *KV) IsMemStore() bool {
	_, success := v.r.data.(*ekv.Memstore)
	return success
}

func (v *KV) makeKey(key string) string {
	return fmt.Sprintf("%s%s", v.prefix, key)
}

// Exists returns false if the error indicates the element doesn't exist.
func (v *KV) Exists(err error) bool {
	return ekv.Exists(err)
}
