////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package supabase

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Upload stores an object and returns its public URL. Buckets used by the
// client (avatars) are public-read, so the URL can go straight into a
// profile record.
func (c *Client) Upload(ctx context.Context, bucket, path string,
	data []byte, contentType string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.bearer()).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "true").
		SetBody(data).
		Post(fmt.Sprintf("/storage/v1/object/%s/%s", bucket, path))
	if err != nil {
		return "", errors.Wrap(err, "object upload request failed")
	}
	if resp.IsError() {
		return "", apiError("object upload", resp)
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		c.baseURL, bucket, path), nil
}
