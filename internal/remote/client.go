package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/craftline/cartengine/pkg/config"
	pkgerrors "github.com/craftline/cartengine/pkg/errors"
	"github.com/craftline/cartengine/pkg/logger"
	"github.com/craftline/cartengine/pkg/types"
)

// Client is the shared HTTP transport for the four remote collaborators.
// It injects the bearer credential, applies the configured per-request
// timeout, and maps transport and status failures onto the engine's
// error taxonomy.
type Client struct {
	baseURL string
	http    *http.Client
	logg    *logger.Logger
}

// NewClient builds the base REST client for the storefront backend.
func NewClient(cfg config.RemoteConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api base url required")
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("request timeout must be positive")
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		logg:    logg,
	}, nil
}

type request struct {
	method      string
	path        string
	query       url.Values
	token       string
	body        io.Reader
	contentType string
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, req.body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return pkgerrors.Wrap(pkgerrors.CodeNetworkTimeout, err, req.method+" "+req.path)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, req.method+" "+req.path)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.statusError(ctx, req, resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read response")
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Data == nil {
		// Backends that do not envelope return the payload directly.
		if err := json.Unmarshal(raw, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response")
		}
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response")
	}
	return nil
}

func (c *Client) statusError(ctx context.Context, req request, resp *http.Response) error {
	code := pkgerrors.CodeForStatus(resp.StatusCode)
	message := fmt.Sprintf("%s %s returned %d", req.method, req.path, resp.StatusCode)

	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&envelope); err == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}

	if c.logg != nil {
		fields := map[string]any{
			"method": req.method,
			"path":   req.path,
			"status": resp.StatusCode,
		}
		c.logg.Warn(c.logg.WithFields(ctx, fields), "remote.request_failed")
	}

	return pkgerrors.New(code, message)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func jsonBody(payload any) (io.Reader, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request body")
	}
	return &buf, nil
}
