// Package supabase talks to the hosted backend: PostgREST for queries, the
// Phoenix realtime socket for changes and the edge functions endpoint.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marketsync/contract"
	"marketsync/errors"

	"google.golang.org/grpc/codes"
)

var _ contract.Query = (*Client)(nil)

const defaultTimeout = 10 * time.Second

type Config struct {
	URL         string
	AnonKey     string
	AccessToken string
	Timeout     time.Duration
}

type Client struct {
	log     *slog.Logger
	http    *http.Client
	baseURL string
	apiKey  string
	token   string
}

func NewClient(log *slog.Logger, cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	token := cfg.AccessToken
	if token == "" {
		token = cfg.AnonKey
	}
	return &Client{
		log:     log,
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		apiKey:  cfg.AnonKey,
		token:   token,
	}
}

func (c *Client) Select(ctx context.Context, table string, filter contract.Filter, order *contract.Order) ([]contract.Record, error) {
	query := filterQuery(filter)
	query.Set("select", "*")
	if order != nil {
		direction := "desc"
		if order.Ascending {
			direction = "asc"
		}
		query.Set("order", order.Column+"."+direction)
	}
	var rows []contract.Record
	if err := c.do(ctx, http.MethodGet, c.restURL(table, query), nil, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) Insert(ctx context.Context, table string, record contract.Record) (contract.Record, error) {
	var rows []contract.Record
	headers := map[string]string{"Prefer": "return=representation"}
	if err := c.do(ctx, http.MethodPost, c.restURL(table, url.Values{}), headers, record, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.Backend(codes.Internal, "insert into %s returned no row", table)
	}
	return rows[0], nil
}

// Update refuses an empty filter: PostgREST would patch the whole table.
func (c *Client) Update(ctx context.Context, table string, filter contract.Filter, patch contract.Record) error {
	if len(filter) == 0 {
		return errors.Backend(codes.InvalidArgument, "update of %s requires a filter", table)
	}
	headers := map[string]string{"Prefer": "return=minimal"}
	return c.do(ctx, http.MethodPatch, c.restURL(table, filterQuery(filter)), headers, patch, nil)
}

func (c *Client) restURL(table string, query url.Values) string {
	return c.baseURL + "/rest/v1/" + url.PathEscape(table) + "?" + query.Encode()
}

func filterQuery(filter contract.Filter) url.Values {
	query := url.Values{}
	for _, condition := range filter {
		query.Add(condition.Column, condition.Query())
	}
	return query
}

// do sends one JSON request and decodes the response into out when non-nil.
func (c *Client) do(ctx context.Context, method, target string, headers map[string]string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Backend(codes.InvalidArgument, "encode body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return errors.Backend(codes.InvalidArgument, "build request: %v", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return errors.Backend(codes.Canceled, "%s %s: %v", method, req.URL.Path, err)
		}
		return errors.Backend(codes.Unavailable, "%s %s: %v", method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	c.log.Debug("Backend request", "method", method, "path", req.URL.Path,
		"status", resp.StatusCode, "duration", time.Since(started))

	if resp.StatusCode >= http.StatusBadRequest {
		return responseError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Backend(codes.Internal, "decode %s response: %v", req.URL.Path, err)
	}
	return nil
}

// apiError is the error body shared by PostgREST and the functions runtime.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Hint    string `json:"hint"`
}

func responseError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body apiError
	message := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil {
		switch {
		case body.Message != "":
			message = body.Message
		case body.Error != "":
			message = body.Error
		}
		if body.Code != "" {
			message = fmt.Sprintf("%s (%s)", message, body.Code)
		}
	}
	if message == "" {
		message = resp.Status
	}
	return errors.Backend(statusCode(resp.StatusCode), "%s", message)
}

func statusCode(status int) codes.Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return codes.InvalidArgument
	case http.StatusUnauthorized:
		return codes.Unauthenticated
	case http.StatusForbidden:
		return codes.PermissionDenied
	case http.StatusNotFound:
		return codes.NotFound
	case http.StatusConflict:
		return codes.AlreadyExists
	case http.StatusTooManyRequests:
		return codes.ResourceExhausted
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return codes.DeadlineExceeded
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return codes.Unavailable
	default:
		if status >= http.StatusInternalServerError {
			return codes.Internal
		}
		return codes.Unknown
	}
}
