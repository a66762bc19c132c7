////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package account

import (
	"testing"

	"gitlab.com/elixxir/ekv"

	"gitlab.com/campusguard/client/storage/versioned"
)

func testStore() *Store {
	return NewStore(versioned.NewKV(ekv.MakeMemstore()))
}

// Shows that user and profile records survive a round trip through the
// cache and that a fresh store reports them as absent, not as errors.
func TestStore_SaveLoad(t *testing.T) {
	s := testStore()

	if u, err := s.LoadUser(); err != nil || u != nil {
		t.Fatalf("empty store should yield (nil, nil), got (%v, %v)",
			u, err)
	}

	user := &User{ID: "uid-1", Email: "a@b.edu.ng"}
	if err := s.SaveUser(user); err != nil {
		t.Fatalf("SaveUser failed: %+v", err)
	}
	loaded, err := s.LoadUser()
	if err != nil {
		t.Fatalf("LoadUser failed: %+v", err)
	}
	if *loaded != *user {
		t.Errorf("LoadUser returned %+v, expected %+v", loaded, user)
	}

	profile := &Profile{
		ID:       "uid-1",
		FullName: "Ada Obi",
		MatricNo: "A123",
		Email:    "a@b.edu.ng",
		Level:    "300",
	}
	if err = s.SaveProfile(profile); err != nil {
		t.Fatalf("SaveProfile failed: %+v", err)
	}
	loadedP, err := s.LoadProfile()
	if err != nil {
		t.Fatalf("LoadProfile failed: %+v", err)
	}
	if loadedP.FullName != profile.FullName ||
		loadedP.MatricNo != profile.MatricNo {
		t.Errorf("LoadProfile returned %+v, expected %+v",
			loadedP, profile)
	}
}

// Shows that Clear removes the identity but spares the theme preference.
func TestStore_Clear(t *testing.T) {
	s := testStore()
	if err := s.SaveUser(&User{ID: "uid-1"}); err != nil {
		t.Fatalf("SaveUser failed: %+v", err)
	}
	if err := s.SaveProfile(&Profile{ID: "uid-1"}); err != nil {
		t.Fatalf("SaveProfile failed: %+v", err)
	}
	if err := s.SetTheme(ThemeDark); err != nil {
		t.Fatalf("SetTheme failed: %+v", err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %+v", err)
	}

	if u, _ := s.LoadUser(); u != nil {
		t.Errorf("user survived Clear: %+v", u)
	}
	if p, _ := s.LoadProfile(); p != nil {
		t.Errorf("profile survived Clear: %+v", p)
	}
	if theme := s.Theme(); theme != ThemeDark {
		t.Errorf("theme did not survive Clear: %q", theme)
	}
}

// Shows the theme defaults to light and rejects unknown values.
func TestStore_Theme(t *testing.T) {
	s := testStore()
	if theme := s.Theme(); theme != ThemeLight {
		t.Errorf("default theme is %q, expected %q", theme, ThemeLight)
	}
	if err := s.SetTheme("sepia"); err == nil {
		t.Errorf("unknown theme accepted")
	}
}
