////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package versioned

import (
	"bytes"
	"testing"
	"time"

	"gitlab.com/elixxir/ekv"
)

// Shows that a Set is returned by a following Get, and that Delete makes
// the key report as missing.
func TestKV_RoundTrip(t *testing.T) {
	kv := NewKV(ekv.MakeMemstore())

	original := &Object{
		Version:   0,
		Timestamp: time.Now(),
		Data:      []byte("campus"),
	}
	if err := kv.Set("user", original); err != nil {
		t.Fatalf("Set failed: %+v", err)
	}

	loaded, err := kv.Get("user")
	if err != nil {
		t.Fatalf("Get failed: %+v", err)
	}
	if !bytes.Equal(loaded.Data, original.Data) {
		t.Errorf("Get returned wrong data: %q vs %q",
			loaded.Data, original.Data)
	}

	if err = kv.Delete("user"); err != nil {
		t.Fatalf("Delete failed: %+v", err)
	}
	_, err = kv.Get("user")
	if kv.Exists(err) {
		t.Errorf("key still exists after Delete")
	}
}

// Shows that missing keys report as not existing rather than as a generic
// error.
func TestKV_Exists(t *testing.T) {
	kv := NewKV(ekv.MakeMemstore())
	_, err := kv.Get("never-written")
	if err == nil {
		t.Fatal("expected an error for a missing key")
	}
	if kv.Exists(err) {
		t.Errorf("missing key reported as existing")
	}
}

// Shows that prefixed KVs do not collide on the same short key and that the
// full key is assembled from every prefix layer.
func TestKV_Prefix(t *testing.T) {
	root := NewKV(ekv.MakeMemstore())
	a := root.Prefix("identity")
	b := root.Prefix("directory")

	obj := &Object{Timestamp: time.Now(), Data: []byte("a")}
	if err := a.Set("item", obj); err != nil {
		t.Fatalf("Set failed: %+v", err)
	}

	if _, err := b.Get("item"); b.Exists(err) {
		t.Errorf("prefixed namespaces collided")
	}

	expected := "identity" + PrefixSeparator + "item"
	if full := a.GetFullKey("item"); full != expected {
		t.Errorf("wrong full key: got %q, expected %q", full, expected)
	}
}
