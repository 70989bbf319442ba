package apitest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrConnectionDropped is returned by the transport for FailNetwork requests.
var ErrConnectionDropped = errors.New("apitest: connection dropped")

type roundTripper struct {
	backend *Backend
}

// Transport returns a RoundTripper that serves requests from the backend.
func (b *Backend) Transport() http.RoundTripper {
	return roundTripper{backend: b}
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}

	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("apitest: read request body: %w", err)
		}
	}

	call := Call{
		Method: req.Method,
		Path:   req.URL.Path,
		Header: req.Header.Clone(),
		Body:   body,
	}

	if f, ok := rt.backend.peekNetworkFailure(req.Method, req.URL.Path); ok && f.status == 0 {
		call.Dropped = true
		rt.backend.record(call)
		return nil, ErrConnectionDropped
	}
	rt.backend.record(call)

	clone := req.Clone(req.Context())
	clone.Body = io.NopCloser(bytes.NewReader(body))
	clone.ContentLength = int64(len(body))
	clone.RequestURI = ""

	resp, err := rt.backend.app.Test(clone, -1)
	if err != nil {
		return nil, err
	}
	resp.Request = req
	return resp, nil
}

// peekNetworkFailure consumes the queued failure only when it is a dropped
// connection; status failures are left for the fiber middleware.
func (b *Backend) peekNetworkFailure(method, path string) (failure, bool) {
	b.mu.Lock()
	queue := b.failures[method+" "+path]
	dropped := len(queue) > 0 && queue[0].status == 0
	b.mu.Unlock()

	if !dropped {
		return failure{}, false
	}
	return b.takeFailure(method, path)
}
