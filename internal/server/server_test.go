package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/drawkit/pkg/errors"
	"github.com/matzehuels/drawkit/pkg/graph"
	"github.com/matzehuels/drawkit/pkg/observability"
	"github.com/matzehuels/drawkit/pkg/pipeline"
)

const validDoc = `<mxfile host="test"><diagram id="p1" name="Main"><mxGraphModel><root>` +
	`<mxCell id="0"/><mxCell id="1" parent="0"/>` +
	`<mxCell id="a" value="API" vertex="1" parent="1"><mxGeometry x="10" y="10" width="120" height="60" as="geometry"/></mxCell>` +
	`<mxCell id="b" value="DB" vertex="1" parent="1"><mxGeometry x="10" y="130" width="120" height="60" as="geometry"/></mxCell>` +
	`<mxCell id="e" edge="1" parent="1" source="a" target="b"><mxGeometry relative="1" as="geometry"/></mxCell>` +
	`</root></mxGraphModel></diagram></mxfile>`

const danglingDoc = `<mxfile><diagram id="p1" name="Main"><mxGraphModel><root>` +
	`<mxCell id="0"/><mxCell id="1" parent="0"/>` +
	`<mxCell id="a" vertex="1" parent="1"><mxGeometry width="10" height="10" as="geometry"/></mxCell>` +
	`<mxCell id="e" edge="1" parent="1" source="a" target="ghost"><mxGeometry relative="1" as="geometry"/></mxCell>` +
	`</root></mxGraphModel></diagram></mxfile>`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	srv := httptest.NewServer(New(nil, logger, pipeline.Options{}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/xml", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return string(data)
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body := decodeJSON[map[string]string](t, resp); body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestInspect(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv, "/v1/inspect", validDoc)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	g := decodeJSON[graph.Graph](t, resp)
	if len(g.Pages) != 1 || len(g.Pages[0].Nodes) != 2 || len(g.Pages[0].Edges) != 1 {
		t.Errorf("summary = %+v", g)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantCode   errors.Code
		wantCell   string
	}{
		{"dangling reference", "/v1/inspect", danglingDoc, http.StatusUnprocessableEntity, errors.ErrCodeValidationFailed, "e"},
		{"malformed xml", "/v1/inspect", "<mxfile><diagram", http.StatusUnprocessableEntity, errors.ErrCodeUnparseableXML, ""},
		{"empty body", "/v1/convert", "", http.StatusBadRequest, errors.ErrCodeInvalidInput, ""},
		{"bad compress flag", "/v1/convert?compress=maybe", validDoc, http.StatusBadRequest, errors.ErrCodeInvalidInput, ""},
		{"unknown page", "/v1/dot?page=nope", validDoc, http.StatusNotFound, errors.ErrCodeNotFound, ""},
		{"raster format", "/v1/dot?format=png", validDoc, http.StatusBadRequest, errors.ErrCodeUnsupported, ""},
	}
	srv := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv, tt.path, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			body := decodeJSON[errorBody](t, resp)
			if body.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", body.Code, tt.wantCode)
			}
			if body.CellID != tt.wantCell {
				t.Errorf("cell_id = %q, want %q", body.CellID, tt.wantCell)
			}
			if body.Message == "" {
				t.Error("message is empty")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv, "/v1/validate", validDoc)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("valid doc status = %d", resp.StatusCode)
	}
	if rep := decodeJSON[pipeline.Report](t, resp); !rep.Valid || len(rep.Violations) != 0 {
		t.Errorf("report = %+v", rep)
	}

	resp = post(t, srv, "/v1/validate", danglingDoc)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("dangling doc status = %d", resp.StatusCode)
	}
	rep := decodeJSON[pipeline.Report](t, resp)
	if rep.Valid || rep.CellID != "e" || len(rep.Violations) != 1 || rep.Violations[0].Ref != "ghost" {
		t.Errorf("report = %+v", rep)
	}
}

func TestConvert(t *testing.T) {
	srv := newTestServer(t)

	packed := post(t, srv, "/v1/convert?compress=true", validDoc)
	if packed.StatusCode != http.StatusOK {
		t.Fatalf("compress status = %d", packed.StatusCode)
	}
	if ct := packed.Header.Get("Content-Type"); ct != "application/xml" {
		t.Errorf("content type = %q", ct)
	}
	compressed := readAll(t, packed)
	if strings.Contains(compressed, "<mxGraphModel") {
		t.Fatalf("page not compressed: %s", compressed)
	}

	plain := post(t, srv, "/v1/convert?compress=false", compressed)
	if out := readAll(t, plain); out != validDoc {
		t.Errorf("round trip changed the document:\n got %s\nwant %s", out, validDoc)
	}
}

func TestDot(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv, "/v1/dot?page=Main", validDoc)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if out := readAll(t, resp); !strings.Contains(out, `"a" -> "b"`) {
		t.Errorf("DOT output missing edge:\n%s", out)
	}
}

func TestBodyLimit(t *testing.T) {
	s := New(nil, log.New(io.Discard), pipeline.Options{})
	s.MaxBodySize = 16
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp := post(t, srv, "/v1/inspect", validDoc)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
}

type recordingHooks struct {
	observability.NoopHTTPHooks
	mu        sync.Mutex
	responses []int
	errs      int
}

func (h *recordingHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.responses = append(h.responses, status)
}

func (h *recordingHooks) OnError(context.Context, string, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs++
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	srv := newTestServer(t)
	post(t, srv, "/v1/inspect", validDoc)
	post(t, srv, "/v1/inspect", danglingDoc)
	srv.Close() // waits for handlers, and so for the response hooks

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.responses) != 2 || hooks.responses[0] != http.StatusOK || hooks.responses[1] != http.StatusUnprocessableEntity {
		t.Errorf("responses = %v", hooks.responses)
	}
	if hooks.errs != 1 {
		t.Errorf("errors = %d, want 1", hooks.errs)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidBase64, http.StatusUnprocessableEntity},
		{errors.ErrCodeExpansionLimitExceeded, http.StatusUnprocessableEntity},
		{errors.ErrCodeDuplicateID, http.StatusUnprocessableEntity},
		{errors.ErrCodeSerializeFailure, http.StatusUnprocessableEntity},
		{errors.ErrCodeInvalidInput, http.StatusBadRequest},
		{errors.ErrCodeNotFound, http.StatusNotFound},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(errors.New(tt.code, "x")); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
