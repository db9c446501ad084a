package kv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/time/rate"

	apperrors "github.com/allisson/envvault/internal/errors"
)

// HTTPConfig configures an HTTPStore.
type HTTPConfig struct {
	// BaseURL is the account endpoint, e.g. https://api.cloudflare.com/client/v4/accounts/<id>.
	BaseURL string
	// NamespaceID identifies the KV namespace inside the account.
	NamespaceID string
	// APIToken is sent as a Bearer token.
	APIToken string
	// Timeout bounds every request. Zero uses 10 seconds.
	Timeout time.Duration
	// RequestsPerSec throttles outgoing calls to stay under the provider API limits.
	// Zero disables throttling.
	RequestsPerSec float64
}

// HTTPStore talks to a hosted KV namespace over its REST API.
//
// Endpoints used (relative to BaseURL/storage/kv/namespaces/<NamespaceID>):
//   - GET    /values/<key>
//   - PUT    /values/<key>?expiration_ttl=<seconds>  (multipart when metadata is set)
//   - DELETE /values/<key>
//   - GET    /keys?prefix=&cursor=&limit=
//
// Failures are not retried: connection errors, 429 and 5xx responses are reported as
// apperrors.ErrUnavailable and the caller decides what to do.
type HTTPStore struct {
	client   *http.Client
	endpoint string
	token    string
	limiter  *rate.Limiter
}

// NewHTTPStore creates an HTTPStore with a pooled client.
func NewHTTPStore(cfg HTTPConfig) (*HTTPStore, error) {
	if cfg.BaseURL == "" || cfg.NamespaceID == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "kv http base url and namespace id are required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid kv http base url")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := cleanhttp.DefaultPooledClient()
	client.Timeout = timeout

	store := &HTTPStore{
		client: client,
		endpoint: fmt.Sprintf(
			"%s/storage/kv/namespaces/%s",
			strings.TrimRight(cfg.BaseURL, "/"),
			url.PathEscape(cfg.NamespaceID),
		),
		token: cfg.APIToken,
	}
	if cfg.RequestsPerSec > 0 {
		burst := int(cfg.RequestsPerSec)
		if burst < 1 {
			burst = 1
		}
		store.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), burst)
	}
	return store, nil
}

// GetString fetches the raw value of key.
func (s *HTTPStore) GetString(ctx context.Context, key string) (string, error) {
	resp, err := s.do(ctx, http.MethodGet, s.valueURL(key, 0), nil, "")
	if err != nil {
		return "", err
	}
	defer closeBody(resp)

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrKeyNotFound
	}
	if err := checkStatus(resp, "kv get"); err != nil {
		return "", err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.Unavailable(err, "failed to read kv value")
	}
	return string(body), nil
}

// PutString writes value at key with the clamped TTL and optional metadata.
func (s *HTTPStore) PutString(ctx context.Context, key, value string, opts PutOptions) error {
	target := s.valueURL(key, ClampTTL(opts.ExpirationTTL))

	var (
		body        io.Reader = strings.NewReader(value)
		contentType           = "text/plain"
	)
	if opts.Metadata != nil {
		buf := &bytes.Buffer{}
		writer := multipart.NewWriter(buf)
		if err := writer.WriteField("value", value); err != nil {
			return apperrors.Wrap(err, "failed to encode kv value")
		}
		metadata, err := json.Marshal(opts.Metadata)
		if err != nil {
			return apperrors.Wrap(err, "failed to encode kv metadata")
		}
		if err := writer.WriteField("metadata", string(metadata)); err != nil {
			return apperrors.Wrap(err, "failed to encode kv metadata")
		}
		if err := writer.Close(); err != nil {
			return apperrors.Wrap(err, "failed to encode kv request")
		}
		body = buf
		contentType = writer.FormDataContentType()
	}

	resp, err := s.do(ctx, http.MethodPut, target, body, contentType)
	if err != nil {
		return err
	}
	defer closeBody(resp)

	return checkStatus(resp, "kv put")
}

// Delete removes key. A 404 is treated as success.
func (s *HTTPStore) Delete(ctx context.Context, key string) error {
	resp, err := s.do(ctx, http.MethodDelete, s.valueURL(key, 0), nil, "")
	if err != nil {
		return err
	}
	defer closeBody(resp)

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	return checkStatus(resp, "kv delete")
}

type listResponse struct {
	Success bool `json:"success"`
	Result  []struct {
		Name       string         `json:"name"`
		Expiration int64          `json:"expiration"`
		Metadata   map[string]any `json:"metadata"`
	} `json:"result"`
	ResultInfo struct {
		Cursor string `json:"cursor"`
	} `json:"result_info"`
}

// List returns one page of keys.
func (s *HTTPStore) List(ctx context.Context, opts ListOptions) (ListResult, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(defaultLimit(opts.Limit)))
	if opts.Prefix != "" {
		query.Set("prefix", opts.Prefix)
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}

	resp, err := s.do(ctx, http.MethodGet, s.endpoint+"/keys?"+query.Encode(), nil, "")
	if err != nil {
		return ListResult{}, err
	}
	defer closeBody(resp)

	if err := checkStatus(resp, "kv list"); err != nil {
		return ListResult{}, err
	}

	var payload listResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ListResult{}, apperrors.Unavailable(err, "failed to decode kv list response")
	}

	result := ListResult{Cursor: payload.ResultInfo.Cursor}
	for _, item := range payload.Result {
		info := KeyInfo{Name: item.Name, Metadata: item.Metadata}
		if item.Expiration > 0 {
			expiration := time.Unix(item.Expiration, 0).UTC()
			info.Expiration = &expiration
		}
		result.Keys = append(result.Keys, info)
	}
	return result, nil
}

func (s *HTTPStore) valueURL(key string, ttl time.Duration) string {
	target := s.endpoint + "/values/" + url.PathEscape(key)
	if ttl > 0 {
		target += "?expiration_ttl=" + strconv.FormatInt(int64(ttl/time.Second), 10)
	}
	return target
}

func (s *HTTPStore) do(
	ctx context.Context,
	method, target string,
	body io.Reader,
	contentType string,
) (*http.Response, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, apperrors.Unavailable(err, "kv request throttled")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build kv request")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperrors.Unavailable(err, "kv request failed")
	}
	return resp, nil
}

func checkStatus(resp *http.Response, op string) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return apperrors.Unavailable(
			fmt.Errorf("unexpected status %d", resp.StatusCode),
			op,
		)
	default:
		return apperrors.Wrap(fmt.Errorf("unexpected status %d", resp.StatusCode), op)
	}
}

func closeBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
