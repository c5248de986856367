package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/rsadaphule/buildwatch/pkg/buildapi"
)

// Service is the boundary to the build server: one trigger call plus a
// per-build log subscription. The session runner depends on this interface
// so tests can substitute a fake server.
type Service interface {
	StartBuild(ctx context.Context) (string, error)
	FollowLogs(ctx context.Context, buildID string) (<-chan LogEvent, error)
}

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client talks to a build server over HTTP. The zero http.Client is used
// when none is supplied; the trigger call carries no timeout of its own and
// relies on the caller's context.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ Service = (*Client)(nil)

func New(opts Options) (*Client, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		return nil, errors.New("missing server base URL")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{baseURL: base, http: httpClient}, nil
}

// StartBuild sends exactly one start request and returns the assigned build
// id. It performs no retries and mutates nothing; applying the result is the
// caller's job.
func (c *Client) StartBuild(ctx context.Context) (string, error) {
	url := c.baseURL + buildapi.StartPath

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", &TriggerError{URL: url, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &TriggerError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &TriggerError{URL: url, Status: resp.StatusCode}
	}

	var ack buildapi.StartResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return "", &TriggerError{URL: url, Err: errors.Wrap(err, "parse acknowledgement")}
	}
	if err := ack.Validate(); err != nil {
		return "", &TriggerError{URL: url, Err: err}
	}

	log.Debug().Str("build_id", ack.BuildID).Msg("build triggered")
	return ack.BuildID, nil
}
