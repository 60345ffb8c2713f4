package supabase

import (
	"context"
	"net/http"
	"net/url"

	"marketsync/contract"
)

var _ contract.FunctionInvoker = (*Client)(nil)

// Invoke calls an edge function. Caller headers override the client's
// default authorization, so a function can run as another session.
func (c *Client) Invoke(ctx context.Context, name string, body any, headers map[string]string) (contract.Record, error) {
	if body == nil {
		body = map[string]any{}
	}
	var result contract.Record
	target := c.baseURL + "/functions/v1/" + url.PathEscape(name)
	if err := c.do(ctx, http.MethodPost, target, headers, body, &result); err != nil {
		return nil, err
	}
	c.log.Debug("Function invoked", "name", name)
	return result, nil
}
