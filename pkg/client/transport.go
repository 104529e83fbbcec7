package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"golang.org/x/sync/singleflight"
)

// ErrRefreshFailed is returned when the refresh endpoint rejects the
// stored refresh credential. The session is torn down when this happens.
var ErrRefreshFailed = errors.New("refresh-token error")

// maxReplayBody bounds how much of an error response is buffered so the
// original status can still be handed back after a failed refresh.
const maxReplayBody = 1 << 20

// Transport is an http.RoundTripper that attaches the session's bearer
// token and transparently recovers from access-token expiry: on a 401 or
// 403 it refreshes the token once and replays the request. Concurrent
// failures share a single refresh call.
type Transport struct {
	// Base performs the actual round trips. Defaults to
	// http.DefaultTransport.
	Base http.RoundTripper

	// Session supplies and receives the access token.
	Session *Session

	// RefreshFunc exchanges the stored refresh credential for a new
	// access token. It must not route through this transport.
	RefreshFunc func(ctx context.Context) (string, error)

	// OnSessionExpired is invoked after a failed refresh, once the
	// session has been cleared. Optional.
	OnSessionExpired func()

	group singleflight.Group
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	authed := req.Clone(req.Context())
	if authed.Header.Get("Authorization") == "" {
		if token := t.Session.Token(); token != "" {
			authed.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := t.base().RoundTrip(authed)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
		return resp, nil
	}
	if req.Body != nil && req.GetBody == nil {
		// The body cannot be replayed, so neither can the request.
		return resp, nil
	}

	// Buffer the denial so it can still be returned if refresh fails.
	original, buffErr := bufferResponse(resp)
	if buffErr != nil {
		return nil, buffErr
	}

	token, refreshErr := t.refresh(req.Context())
	if refreshErr != nil {
		t.Session.Clear()
		if t.OnSessionExpired != nil {
			t.OnSessionExpired()
		}
		return original, nil
	}

	// The replay goes straight to the base transport, so a second denial
	// comes back to the caller instead of looping.
	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return original, nil
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", "Bearer "+token)

	original.Body.Close()
	return t.base().RoundTrip(retry)
}

// refresh funnels concurrent refresh attempts into one upstream call.
// Every waiter observes the same outcome and the same new token.
func (t *Transport) refresh(ctx context.Context) (string, error) {
	v, err, _ := t.group.Do("refresh", func() (any, error) {
		token, err := t.RefreshFunc(ctx)
		if err != nil {
			return "", err
		}
		t.Session.SetToken(token)
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// bufferResponse reads the response body into memory so the response can
// outlive the connection.
func bufferResponse(resp *http.Response) (*http.Response, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplayBody))
	if err != nil {
		return nil, err
	}
	buffered := *resp
	buffered.Body = io.NopCloser(bytes.NewReader(body))
	return &buffered, nil
}
