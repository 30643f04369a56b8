package hec

import (
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody caps how much of a rejected response is kept
const maxErrorBody = 4096

// StatusError is a HEC response with a status of 300 or above
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d :: %s", e.StatusCode, e.Body)
}

// statusTransport turns responses with status >= 300 into a *StatusError so
// the status code and body survive whatever the HEC client does with them.
// Every 2xx is reported as 200 because the HEC client accepts nothing else.
type statusTransport struct {
	next http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 300 {
		if resp.StatusCode > http.StatusOK {
			resp.StatusCode = http.StatusOK
			resp.Status = "200 OK"
		}
		return resp, nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
}
