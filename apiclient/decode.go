package apiclient

import (
	"encoding/json"
	"io"
	"net/http"
)

// RawText carries a response body that was not valid JSON, such as an HTML
// error page from a misconfigured proxy.
type RawText struct {
	Text string `json:"text"`
}

// Decode reads the response body exactly once and closes it.
// An empty body decodes to nil. A body that is not JSON decodes to RawText.
func Decode(resp *http.Response) (any, error) {
	raw, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	return DecodeBody(raw), nil
}

// DecodeBody never fails: JSON values are returned as produced by
// encoding/json (maps, slices, float64, ...), anything else is wrapped.
func DecodeBody(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return RawText{Text: string(raw)}
	}
	return v
}

func readBody(resp *http.Response) ([]byte, error) {
	if resp == nil || resp.Body == nil {
		return nil, nil
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// decodeInto decodes a success body into T. When T is the empty interface the
// lenient DecodeBody result is returned instead of failing on non-JSON.
func decodeInto[T any](resp *Response) (T, error) {
	var out T
	if resp == nil || len(resp.Body) == 0 {
		return out, nil
	}
	if target, ok := any(&out).(*any); ok {
		*target = DecodeBody(resp.Body)
		return out, nil
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		body := DecodeBody(resp.Body)
		return out, &APIError{
			Kind:    KindDecodeFallback,
			Status:  resp.StatusCode,
			Message: messageFromBody(resp.StatusCode, body),
			Body:    body,
			Err:     err,
		}
	}
	return out, nil
}
