package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	type widget struct{ Name string }

	cases := []struct {
		name string
		in   any
		want Kind
	}{
		{"nil", nil, KindEmpty},
		{"map", map[string]string{"a": "b"}, KindJSON},
		{"struct", widget{"w"}, KindJSON},
		{"struct pointer", &widget{"w"}, KindJSON},
		{"slice", []int{1, 2}, KindJSON},
		{"int", 42, KindJSON},
		{"float", 4.2, KindJSON},
		{"bool", true, KindJSON},
		{"html string", "<p>hi</p>", KindHTML},
		{"html with whitespace", "  <div>x</div>\n", KindHTML},
		{"plain string", "hi", KindText},
		{"angle open only", "<oops", KindText},
		{"response", &Response{Status: 204}, KindRaw},
		{"handler", http.NotFoundHandler(), KindRaw},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.in); got != tc.want {
				t.Errorf("Classify(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func record(t *testing.T, v any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	WriteResult(rec, httptest.NewRequest(http.MethodGet, "/", nil), v)
	return rec
}

func TestWriteResultJSONBody(t *testing.T) {
	rec := record(t, map[string]any{"n": 1})
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `"n":1`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestWriteResultHTMLBody(t *testing.T) {
	rec := record(t, "<p>hi</p>")
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	if rec.Body.String() != "<p>hi</p>" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestWriteResultPlainText(t *testing.T) {
	rec := record(t, "hi")
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q", ct)
	}
	if rec.Body.String() != "hi" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestWriteResultEmpty(t *testing.T) {
	rec := record(t, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
}

func TestWriteResultRawResponsePassthrough(t *testing.T) {
	rec := record(t, &Response{
		Status:      http.StatusTeapot,
		ContentType: "text/calendar",
		Body:        []byte("BEGIN:VCALENDAR"),
	})
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "text/calendar" {
		t.Errorf("content type = %q", rec.Header().Get("Content-Type"))
	}
}

func TestWriteResultStringifiesOddValues(t *testing.T) {
	rec := record(t, complex(1, 2))
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain") {
		t.Errorf("content type = %q", rec.Header().Get("Content-Type"))
	}
	if rec.Body.Len() == 0 {
		t.Error("expected stringified body")
	}
}
