package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// upstreamError mirrors the error envelope written by httputil.WriteError.
type upstreamError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes a non-2xx response and turns it into
// an error. Structured error envelopes keep their code and message.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", upstream, resp.StatusCode, err)
	}

	message := string(body)
	var env upstreamError
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		message = env.Error.Message
	}
	qualified := fmt.Sprintf("%s: %s", upstream, message)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFound(upstream+" resource", message)
	case resp.StatusCode == http.StatusBadRequest:
		return apperrors.InvalidInput(qualified)
	case resp.StatusCode == http.StatusConflict:
		return apperrors.Conflict(qualified)
	case resp.StatusCode == http.StatusTooManyRequests:
		return apperrors.RateLimited(qualified)
	case resp.StatusCode == http.StatusServiceUnavailable:
		return apperrors.Unavailable(qualified, nil)
	default:
		return fmt.Errorf("%s returned status %d: %s", upstream, resp.StatusCode, message)
	}
}
