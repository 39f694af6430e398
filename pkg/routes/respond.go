package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/onramp-dev/onramp/pkg/logger"
)

// Kind is the closed set of response shapes a handler return value can
// take. Classification is a pure function of the value; nothing here
// depends on the HTTP layer.
type Kind int

const (
	// KindEmpty is an empty text response (handler returned nothing).
	KindEmpty Kind = iota
	// KindJSON serializes the value as application/json.
	KindJSON
	// KindHTML writes the string as text/html.
	KindHTML
	// KindText writes the stringified value as text/plain.
	KindText
	// KindRaw passes a prebuilt Response or http.Handler through untouched.
	KindRaw
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindJSON:
		return "json"
	case KindHTML:
		return "html"
	case KindText:
		return "text"
	case KindRaw:
		return "raw"
	}
	return "unknown"
}

// Response is the escape hatch for handlers that need full control over
// status, content type, or body. Returning one bypasses classification.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// JSONResponse builds a *Response carrying v as JSON under an explicit
// status code, for handlers where 200 is not the right answer.
func JSONResponse(status int, v any) *Response {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Error("routes: marshal response", "err", err)
		return &Response{
			Status:      http.StatusInternalServerError,
			ContentType: "application/json",
			Body:        []byte(`{"error": "internal server error"}`),
		}
	}
	return &Response{Status: status, ContentType: "application/json", Body: body}
}

// Classify maps a handler return value onto its response kind:
//
//	nil                      → Empty
//	*Response, http.Handler  → Raw
//	string                   → HTML when it looks like a tag, else Text
//	map, struct, slice/array → JSON
//	number, bool             → JSON
//	anything else            → Text (stringified)
func Classify(v any) Kind {
	if v == nil {
		return KindEmpty
	}

	switch v.(type) {
	case *Response, http.Handler:
		return KindRaw
	case string:
		s := strings.TrimSpace(v.(string))
		if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
			return KindHTML
		}
		return KindText
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Marshaler:
		return KindJSON
	}

	switch reflect.Indirect(reflect.ValueOf(v)).Kind() {
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
		return KindJSON
	default:
		return KindText
	}
}

// WriteResult converts a handler return value into an HTTP response
// according to its Kind. Status is 200 for everything classification
// produces; handlers that need another status return a *Response.
func WriteResult(w http.ResponseWriter, r *http.Request, v any) {
	switch Classify(v) {
	case KindEmpty:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)

	case KindRaw:
		writeRaw(w, r, v)

	case KindJSON:
		writeJSONStatus(w, http.StatusOK, v)

	case KindHTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, v)

	default: // KindText
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, stringify(v))
	}
}

func writeRaw(w http.ResponseWriter, r *http.Request, v any) {
	switch resp := v.(type) {
	case *Response:
		ct := resp.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		status := resp.Status
		if status == 0 {
			status = http.StatusOK
		}
		w.Header().Set("Content-Type", ct)
		w.WriteHeader(status)
		w.Write(resp.Body) //nolint:errcheck
	case http.Handler:
		// Handler-shaped values serve themselves; status and headers are
		// entirely theirs.
		resp.ServeHTTP(w, r)
	}
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("routes: encode response", "err", err)
	}
}

func stringify(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}
