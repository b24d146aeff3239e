package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cognicore/csinsight/internal/logging"
	"github.com/cognicore/csinsight/pkg/csinsight"
)

const sessionID = "6f1c2d3e-4b5a-4c7d-8e9f-0a1b2c3d4e5f"

const scenarioCSV = `conversation_summary
"SSL certificate error on our site, very urgent"
"Our SSL cert keeps expiring, annoying"
"Great support, resolved my billing question fast"
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	engine := csinsight.New(csinsight.Options{Logger: logging.Discard()})
	t.Cleanup(func() { engine.Close() })
	return NewServer(":0", engine, csinsight.SessionOptions{}, logging.Discard())
}

func do(t *testing.T, srv *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if req.Header.Get(SessionHeader) == "" {
		req.Header.Set(SessionHeader, sessionID)
	}
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write([]byte(content))
	mw.Close()
	req := httptest.NewRequest("POST", "/api/upload-csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealthEndpoint(t *testing.T) {
	w := do(t, newTestServer(t), httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if body := decode(t, w); body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
}

func TestUploadAndAnalyze(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, uploadRequest(t, "summaries.csv", scenarioCSV))
	if w.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["success"] != true || !strings.Contains(body["summary"].(string), "Number of conversation summaries: 3") {
		t.Fatalf("upload body = %v", body)
	}

	w = do(t, srv, httptest.NewRequest("POST", "/api/analyze", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("analyze: expected 200, got %d", w.Code)
	}
	analysis := decode(t, w)["analysis"].(string)
	if !strings.Contains(analysis, "### Issue 1: Hosting") {
		t.Fatalf("analysis:\n%s", analysis)
	}

	w = do(t, srv, httptest.NewRequest("GET", "/api/report", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("report: expected 200, got %d", w.Code)
	}
	if rep := decode(t, w); rep["records"] != float64(3) {
		t.Fatalf("records = %v", rep["records"])
	}
}

func TestUploadRejections(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		want     string
	}{
		{"not csv", "notes.txt", scenarioCSV, "File must be a CSV"},
		{"empty", "empty.csv", "", "No file content"},
		{"missing column", "bad.csv", "id,text\n1,hello\n", csinsight.MsgMissingColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, newTestServer(t), uploadRequest(t, tt.filename, tt.content))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			if body := decode(t, w); body["error"] != tt.want {
				t.Fatalf("error = %v", body["error"])
			}
		})
	}
}

func TestUploadWithoutFile(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/upload-csv", strings.NewReader(""))
	w := do(t, newTestServer(t), req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAnalyzeWithoutDataset(t *testing.T) {
	srv := newTestServer(t)
	w := do(t, srv, httptest.NewRequest("POST", "/api/analyze", nil))
	if body := decode(t, w); body["analysis"] != csinsight.MsgNoDataset {
		t.Fatalf("analysis = %v", body["analysis"])
	}
	w = do(t, srv, httptest.NewRequest("GET", "/api/report", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("report: expected 404, got %d", w.Code)
	}
}

func TestSessionHeader(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, uploadRequest(t, "summaries.csv", scenarioCSV))

	req := httptest.NewRequest("POST", "/api/analyze", nil)
	req.Header.Set(SessionHeader, "not-a-uuid")
	w := do(t, srv, req)
	issued := w.Header().Get(SessionHeader)
	if issued == "" || issued == "not-a-uuid" || issued == sessionID {
		t.Fatalf("issued session = %q", issued)
	}
	if body := decode(t, w); body["analysis"] != csinsight.MsgNoDataset {
		t.Fatal("fresh session saw another session's dataset")
	}
}

func TestMessageModeSelection(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest("POST", "/api/message", strings.NewReader(`{"message":"2"}`))
	w := do(t, srv, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode(t, w)
	if body["mode"] != "summary" || body["response"] == "" {
		t.Fatalf("body = %v", body)
	}

	w = do(t, srv, httptest.NewRequest("POST", "/api/message", strings.NewReader(`{"message":""}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty message: expected 400, got %d", w.Code)
	}
}

func TestFeedbackAndClear(t *testing.T) {
	srv := newTestServer(t)
	w := do(t, srv, httptest.NewRequest("POST", "/api/feedback", strings.NewReader(`{"message":"summarize hosting","success":true}`)))
	if body := decode(t, w); !strings.Contains(body["insights"].(string), "'hosting'") {
		t.Fatalf("insights = %v", body["insights"])
	}

	do(t, srv, uploadRequest(t, "summaries.csv", scenarioCSV))
	w = do(t, srv, httptest.NewRequest("POST", "/api/clear-caches", nil))
	if body := decode(t, w); body["success"] != true {
		t.Fatalf("clear-caches body = %v", body)
	}
	w = do(t, srv, httptest.NewRequest("POST", "/api/analyze", nil))
	if body := decode(t, w); body["analysis"] != csinsight.MsgNoDataset || body["insights"] != "" {
		t.Fatalf("session not cleared: %v", body)
	}

	w = do(t, srv, httptest.NewRequest("POST", "/api/clear-history", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("clear-history: expected 200, got %d", w.Code)
	}
}

func TestSchemaEndpoint(t *testing.T) {
	w := do(t, newTestServer(t), httptest.NewRequest("GET", "/api/report/schema", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := decode(t, w); body["title"] != "Conversation Summary Analysis" {
		t.Fatalf("title = %v", body["title"])
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	w := do(t, newTestServer(t), httptest.NewRequest("GET", "/nonexistent", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestSessionRegistryBounded(t *testing.T) {
	engine := csinsight.New(csinsight.Options{Logger: logging.Discard()})
	t.Cleanup(func() { engine.Close() })
	srv := NewServer(":0", engine, csinsight.SessionOptions{Max: 2}, logging.Discard())

	w := do(t, srv, uploadRequest(t, "summaries.csv", scenarioCSV))
	if w.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d", w.Code)
	}

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest("POST", "/api/analyze", nil)
		req.Header.Set(SessionHeader, "anonymous")
		do(t, srv, req)
	}
	if n := srv.sessions.Len(); n > 2 {
		t.Fatalf("registry holds %d sessions, want at most 2", n)
	}

	// The uploading session was evicted, so its dataset must be gone too.
	w = do(t, srv, httptest.NewRequest("POST", "/api/analyze", nil))
	if body := decode(t, w); body["analysis"] != csinsight.MsgNoDataset {
		t.Fatalf("evicted session kept its dataset: %v", body["analysis"])
	}
}
