package omophub

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"

	"github.com/tidwall/gjson"
)

// Pagination is the meta.pagination block of a list response.
type Pagination struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// Meta is the envelope metadata a caller may need after a raw call.
type Meta struct {
	RequestID  string
	Pagination *Pagination
}

// RawResponse is the whole envelope of a successful call.
type RawResponse struct {
	// Body is the complete response document.
	Body json.RawMessage
	// Data is the value of the data field, or Body when there is none.
	Data json.RawMessage
	Meta Meta
	// RequestID comes from X-Request-Id, falling back to meta.request_id.
	RequestID string
}

// Get returns the value at a gjson path inside the full body.
func (r *RawResponse) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

// envelope is a response that has been parsed and sorted into success or
// failure. Exactly one of body and failure is meaningful.
type envelope struct {
	body    gjson.Result
	failure *Error
}

// decodeResponse parses the body and classifies non-2xx responses. A body
// that is not JSON is a decode error whatever the status code.
func decodeResponse(resp *Response) envelope {
	if !gjson.ValidBytes(resp.Body) {
		return envelope{failure: newDecodeError(syntaxError(resp.Body))}
	}
	body := gjson.ParseBytes(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return envelope{failure: classify(failureOf(resp, body))}
	}
	return envelope{body: body}
}

// payload unwraps data when the body is an object that has it.
func (e envelope) payload() json.RawMessage {
	if e.body.IsObject() {
		if data := e.body.Get("data"); data.Exists() {
			return json.RawMessage(data.Raw)
		}
	}
	return json.RawMessage(e.body.Raw)
}

func (e envelope) raw(header http.Header) *RawResponse {
	requestID := requestIDOf(header, e.body)
	return &RawResponse{
		Body: json.RawMessage(e.body.Raw),
		Data: e.payload(),
		Meta: Meta{
			RequestID:  requestID,
			Pagination: paginationOf(e.body),
		},
		RequestID: requestID,
	}
}

func failureOf(resp *Response, body gjson.Result) failure {
	f := failure{
		StatusCode: resp.StatusCode,
		RequestID:  requestIDOf(resp.Header, body),
	}

	errField := body.Get("error")
	switch {
	case errField.IsObject():
		f.Message = errField.Get("message").String()
		f.Code = errField.Get("code").String()
		if details := errField.Get("details"); details.IsObject() {
			_ = json.Unmarshal([]byte(details.Raw), &f.Details)
		}
	case errField.Type == gjson.String:
		f.Message = errField.String()
	}
	if f.Message == "" {
		f.Message = fmt.Sprintf("Request failed with status %d", resp.StatusCode)
	}

	if v := resp.Header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			f.RetryAfter = seconds
		}
	}
	return f
}

// requestIDOf prefers the X-Request-Id header over the body.
func requestIDOf(header http.Header, body gjson.Result) string {
	if id := header.Get("X-Request-Id"); id != "" {
		return id
	}
	if body.IsObject() {
		return body.Get("meta.request_id").String()
	}
	return ""
}

// paginationOf finds pagination metadata at the top level or nested under data.
func paginationOf(body gjson.Result) *Pagination {
	if !body.IsObject() {
		return nil
	}
	for _, path := range []string{"meta.pagination", "data.meta.pagination", "data.pagination"} {
		block := body.Get(path)
		if !block.IsObject() {
			continue
		}
		var p Pagination
		if err := json.Unmarshal([]byte(block.Raw), &p); err == nil {
			return &p
		}
	}
	return nil
}

func syntaxError(body []byte) error {
	var scratch json.RawMessage
	if err := json.Unmarshal(body, &scratch); err != nil {
		return err
	}
	return fmt.Errorf("malformed body of %d bytes", len(body))
}

// decodeInto unmarshals a payload into T, reporting mismatches as decode errors.
// A null payload is a decode error for struct and pointer results.
func decodeInto[T any](raw json.RawMessage) (T, error) {
	var v T
	if isNull(raw) {
		switch reflect.TypeFor[T]().Kind() {
		case reflect.Pointer, reflect.Struct:
			return v, newDecodeError(errNoData)
		}
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, newDecodeError(err)
	}
	return v, nil
}

var errNoData = errors.New("response contained no data")

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
