////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package supabase

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"gitlab.com/campusguard/client/remote"
	"gitlab.com/campusguard/client/storage/account"
)

const profilesPath = "/rest/v1/profiles"

// pgrstObject asks PostgREST for a single object instead of an array; zero
// rows then come back as 406, which maps to remote.ErrNotFound.
const pgrstObject = "application/vnd.pgrst.object+json"

// Get fetches the profile row for id.
func (c *Client) Get(ctx context.Context,
	id string) (*account.Profile, error) {
	var profile account.Profile
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.bearer()).
		SetHeader("Accept", pgrstObject).
		SetQueryParam("id", "eq."+id).
		SetQueryParam("select", "*").
		SetResult(&profile).
		Get(profilesPath)
	if err != nil {
		return nil, errors.Wrap(err, "profile fetch request failed")
	}
	if resp.StatusCode() == http.StatusNotAcceptable ||
		resp.StatusCode() == http.StatusNotFound {
		return nil, remote.ErrNotFound
	}
	if resp.IsError() {
		return nil, apiError("profile fetch", resp)
	}
	return &profile, nil
}

// Insert creates the profile row. Used at registration.
func (c *Client) Insert(ctx context.Context, p *account.Profile) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.bearer()).
		SetHeader("Prefer", "return=minimal").
		SetBody(p).
		Post(profilesPath)
	if err != nil {
		return errors.Wrap(err, "profile insert request failed")
	}
	if resp.IsError() {
		return apiError("profile insert", resp)
	}
	return nil
}

// Update patches the profile row for id and returns the committed record as
// the backend sees it.
func (c *Client) Update(ctx context.Context, id string,
	p *account.Profile) (*account.Profile, error) {
	var committed account.Profile
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.bearer()).
		SetHeader("Accept", pgrstObject).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", "eq."+id).
		SetBody(p).
		SetResult(&committed).
		Patch(profilesPath)
	if err != nil {
		return nil, errors.Wrap(err, "profile update request failed")
	}
	if resp.IsError() {
		return nil, apiError("profile update", resp)
	}
	return &committed, nil
}
