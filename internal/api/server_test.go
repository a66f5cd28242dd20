// File path: internal/api/server_test.go
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/auth"
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/common"
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/generator"
)

func writeTestTemplates(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.html":     `<title>Flowgen</title>{{if .Error}}<p class="error">{{.Error}}</p>{{end}}<form method="post" action="/generate"><textarea name="prompt">{{.Prompt}}</textarea></form>`,
		"login.html":     `<h1>Sign in</h1>{{if .Error}}<p class="error">{{.Error}}</p>{{end}}`,
		"code.html":      `<pre id="code">{{.Code}}</pre>`,
		"flowchart.html": `<div class="mermaid">{{.Diagram}}</div><pre id="code">{{.Code}}</pre>`,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write template %s: %v", name, err)
		}
	}
	return dir
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gen := generator.New(nil, generator.Options{})
	mgr := auth.NewManager(auth.Config{SessionSecret: "test-secret"}, nil)
	srv, err := NewServer(gen, mgr, &Config{TemplatesDir: writeTestTemplates(t)})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Body.String() != "ok" {
		t.Fatalf("unexpected body: %q", rr.Body.String())
	}
}

func TestGenerateJSON(t *testing.T) {
	srv := newTestServer(t)
	body := `{"prompt": "Read a number. Print the number."}`
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(body))
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var out generator.Output
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(out.Code, `number = input("Enter a number: ")`) {
		t.Fatalf("code missing input mapping:\n%s", out.Code)
	}
	if !strings.Contains(out.Code, "print(number)") {
		t.Fatalf("code missing print mapping:\n%s", out.Code)
	}
	if !strings.HasPrefix(out.Diagram, "graph TD") {
		t.Fatalf("diagram missing header:\n%s", out.Diagram)
	}
	if out.Provider != "none" {
		t.Fatalf("expected provider none, got %q", out.Provider)
	}
}

func TestGenerateJSONEmptyPrompt(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(`{"prompt": "   "}`))
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if !strings.Contains(payload["error"], "no actionable logic") {
		t.Fatalf("unexpected error message: %q", payload["error"])
	}
}

func TestGenerateJSONMalformedBody(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(`{"prompt":`))
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestIndexShowsPromptForm(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `<form method="post" action="/generate">`) {
		t.Fatalf("index missing prompt form: %s", rr.Body.String())
	}
}

func TestGenerateFormRendersFlowchart(t *testing.T) {
	srv := newTestServer(t)
	form := url.Values{}
	form.Set("prompt", "Read a number. If the number is greater than 10, print big. Otherwise, print small.")
	form.Set("action", "flowchart")
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	if !strings.Contains(body, `class="mermaid"`) {
		t.Fatalf("flowchart page missing mermaid container: %s", body)
	}
	if !strings.Contains(body, "graph TD") {
		t.Fatalf("flowchart page missing diagram text: %s", body)
	}
}

func TestGenerateFormCodeOnly(t *testing.T) {
	srv := newTestServer(t)
	form := url.Values{}
	form.Set("prompt", "Print hello.")
	form.Set("action", "code")
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	if !strings.Contains(body, "def main():") {
		t.Fatalf("code page missing program text: %s", body)
	}
	if strings.Contains(body, "mermaid") {
		t.Fatalf("code page should not embed the diagram: %s", body)
	}
}

func TestGenerateFormEmptyPromptRerenders(t *testing.T) {
	srv := newTestServer(t)
	form := url.Values{}
	form.Set("prompt", "   ")
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "no actionable logic") {
		t.Fatalf("missing warning banner: %s", rr.Body.String())
	}
}

func TestGenerateFormPreservesPromptOnError(t *testing.T) {
	srv := newTestServer(t)
	form := url.Values{}
	form.Set("prompt", "???")
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "???") {
		t.Fatalf("submitted prompt lost on re-render: %s", rr.Body.String())
	}
}

func TestLoginPageRenders(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Sign in") {
		t.Fatalf("unexpected login page: %s", rr.Body.String())
	}
}

func TestAuthStartRedirectsHomeWhenDisabled(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to /, got %q", loc)
	}
}

func TestIndexRedirectsAnonymousWhenAuthEnabled(t *testing.T) {
	gen := generator.New(nil, generator.Options{})
	mgr := auth.NewManager(auth.Config{
		ClientID:      "client-id",
		ClientSecret:  "client-secret",
		SessionSecret: "test-secret",
	}, nil)
	srv, err := NewServer(gen, mgr, &Config{TemplatesDir: writeTestTemplates(t)})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %q", loc)
	}
}

func TestLogsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	gen := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(`{"prompt": "Print hello."}`))
	srv.ServeHTTP(httptest.NewRecorder(), gen)

	req := httptest.NewRequest(http.MethodGet, "/v1/logs", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload struct {
		Entries []common.LogEntry `json:"entries"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode logs: %v", err)
	}
	if len(payload.Entries) == 0 {
		t.Fatalf("expected captured log entries")
	}
	for i := 1; i < len(payload.Entries); i++ {
		if payload.Entries[i].Time.Before(payload.Entries[i-1].Time) {
			t.Fatalf("entries out of order at %d", i)
		}
	}
}

func TestLogsEndpointLevelFilter(t *testing.T) {
	srv := newTestServer(t)
	bad := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(`{"prompt": ""}`))
	srv.ServeHTTP(httptest.NewRecorder(), bad)

	req := httptest.NewRequest(http.MethodGet, "/v1/logs?level=warn", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload struct {
		Entries []common.LogEntry `json:"entries"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode logs: %v", err)
	}
	if len(payload.Entries) == 0 {
		t.Fatalf("expected warn entries after rejected prompt")
	}
	for _, entry := range payload.Entries {
		if !strings.EqualFold(entry.Level, "warn") {
			t.Fatalf("unexpected level %q in filtered output", entry.Level)
		}
	}
}

func TestDebugVarsExposesCounters(t *testing.T) {
	srv := newTestServer(t)
	gen := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(`{"prompt": "Print hello."}`))
	srv.ServeHTTP(httptest.NewRecorder(), gen)

	req := httptest.NewRequest(http.MethodGet, "/debug/vars", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "flowgen_generate_total") {
		t.Fatalf("missing generation counter: %s", rr.Body.String())
	}
}

func TestNewServerRequiresGenerator(t *testing.T) {
	mgr := auth.NewManager(auth.Config{SessionSecret: "test-secret"}, nil)
	if _, err := NewServer(nil, mgr, &Config{TemplatesDir: writeTestTemplates(t)}); err == nil {
		t.Fatalf("expected error for nil generator")
	}
}

func TestRealTemplatesServeIndex(t *testing.T) {
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root := filepath.Dir(filepath.Dir(cwd))
	if err := os.Chdir(root); err != nil {
		t.Fatalf("chdir root: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	gen := generator.New(nil, generator.Options{})
	mgr := auth.NewManager(auth.Config{SessionSecret: "test-secret"}, nil)
	srv, err := NewServer(gen, mgr, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "/generate") {
		t.Fatalf("index missing generate form: %s", rr.Body.String())
	}
}
