package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Tocma/Engineer-system-sub000/internal/config"
	"github.com/Tocma/Engineer-system-sub000/internal/engineer"
	"github.com/Tocma/Engineer-system-sub000/internal/service"
	"github.com/Tocma/Engineer-system-sub000/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           0,
			RequestTimeout: time.Minute,
		},
		Store: config.StoreConfig{
			DataDir:       t.TempDir(),
			FileName:      "engineers.csv",
			MaxConcurrent: 4,
			MaxWaitTime:   time.Second,
		},
	}
	svc := service.New(store.New(), cfg.Store.MaxConcurrent, cfg.Store.MaxWaitTime)
	return NewServer(svc, cfg)
}

func doRequest(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func createBody(id, name string) *bytes.Buffer {
	body, _ := json.Marshal(map[string]any{
		"id":                   id,
		"name":                 name,
		"nameKana":             "カナ",
		"birthDate":            "1990-01-01",
		"joinDate":             "2015-04",
		"careerYears":          "5",
		"programmingLanguages": []string{"Java", "Python"},
	})
	return bytes.NewBuffer(body)
}

func TestHandleListEngineers_EmptyRoster(t *testing.T) {
	s := newTestServer(t)

	rr := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/engineers", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp struct {
		Records []recordView `json:"records"`
		Total   int          `json:"total"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 0 || len(resp.Records) != 0 {
		t.Errorf("expected empty roster, got total=%d", resp.Total)
	}
}

func TestHandleCreateEngineer_ThenList(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/engineers", createBody("1", "田中太郎"))
	req.Header.Set("Content-Type", "application/json")
	rr := doRequest(s, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", rr.Code, rr.Body.String())
	}

	var created recordView
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID != "00001" {
		t.Errorf("created ID = %q, want canonical 00001", created.ID)
	}

	rr = doRequest(s, httptest.NewRequest(http.MethodGet, "/api/engineers", nil))
	var resp struct {
		Records []recordView `json:"records"`
		Total   int          `json:"total"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if resp.Total != 1 || resp.Records[0].ID != "00001" {
		t.Errorf("list = %+v, want one record 00001", resp)
	}
}

func TestHandleCreateEngineer_ValidationFailure(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/engineers", createBody("", "田中太郎"))
	req.Header.Set("Content-Type", "application/json")
	rr := doRequest(s, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", rr.Code, rr.Body.String())
	}
}

// A note containing the field delimiter or a newline would shift columns
// on the next read; such input must be rejected before anything is written.
func TestHandleCreateEngineer_RejectsDelimiterInNote(t *testing.T) {
	s := newTestServer(t)

	for _, note := range []string{"hello, world", "line1\nline2"} {
		body, _ := json.Marshal(map[string]any{
			"id":                   "00001",
			"name":                 "田中太郎",
			"nameKana":             "カナ",
			"birthDate":            "1990-01-01",
			"joinDate":             "2015-04",
			"careerYears":          "5",
			"programmingLanguages": []string{"Java"},
			"note":                 note,
		})
		req := httptest.NewRequest(http.MethodPost, "/api/engineers", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := doRequest(s, req)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("note %q: status = %d, want 422: %s", note, rr.Code, rr.Body.String())
		}
	}

	// Nothing reached the file, so the roster is still empty
	rr := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/engineers", nil))
	var resp struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if resp.Total != 0 {
		t.Errorf("roster total = %d after rejected creates, want 0", resp.Total)
	}
}

func TestHandleCreateEngineer_DuplicateConflict(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/engineers", createBody("00001", "田中太郎"))
	req.Header.Set("Content-Type", "application/json")
	if rr := doRequest(s, req); rr.Code != http.StatusCreated {
		t.Fatalf("first create status = %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/engineers", createBody("00001", "別人"))
	req.Header.Set("Content-Type", "application/json")
	rr := doRequest(s, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate create status = %d, want 409: %s", rr.Code, rr.Body.String())
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Code != "DUPLICATE_ID" {
		t.Errorf("error code = %q, want DUPLICATE_ID", resp.Code)
	}
}

func importRequest(t *testing.T, csvContent string, force bool) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "upload.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(csvContent)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	url := "/api/engineers/import"
	if force {
		url += "?force=true"
	}
	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func importCSV(lines ...string) string {
	return engineer.JoinRow(engineer.Header()) + "\n" + strings.Join(lines, "\n") + "\n"
}

func TestHandleImport(t *testing.T) {
	s := newTestServer(t)

	content := importCSV(
		"00001,田中太郎,タナカタロウ,1990-01-01,2015-04,5,Java;Python,,,,,,,,",
		"00002,山田花子,ヤマダハナコ,1992-06-30,2018-10,3,Go,,,,,,,,",
		"bad-row-with-too-few-columns",
	)

	rr := doRequest(s, importRequest(t, content, false))
	if rr.Code != http.StatusOK {
		t.Fatalf("import status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Imported  int      `json:"imported"`
		Total     int      `json:"total"`
		RowErrors []string `json:"rowErrors"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Imported != 2 {
		t.Errorf("imported = %d, want 2", resp.Imported)
	}
	if len(resp.RowErrors) != 1 {
		t.Errorf("rowErrors = %v, want one entry for the malformed row", resp.RowErrors)
	}

	// Imported records are now visible through the list endpoint
	listRR := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/engineers", nil))
	var list struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(listRR.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 2 {
		t.Errorf("roster total = %d after import, want 2", list.Total)
	}
}

func TestHandleImport_ConflictRequiresForce(t *testing.T) {
	s := newTestServer(t)

	first := importCSV("00001,田中太郎,タナカタロウ,1990-01-01,2015-04,5,Java,,,,,,,,")
	if rr := doRequest(s, importRequest(t, first, false)); rr.Code != http.StatusOK {
		t.Fatalf("first import status = %d", rr.Code)
	}

	second := importCSV("00001,別人,ベツジン,1991-02-02,2020-01,1,Go,,,,,,,,")
	rr := doRequest(s, importRequest(t, second, false))
	if rr.Code != http.StatusConflict {
		t.Fatalf("conflicting import status = %d, want 409: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(s, importRequest(t, second, true))
	if rr.Code != http.StatusOK {
		t.Fatalf("forced import status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	listRR := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/engineers", nil))
	var list struct {
		Records []recordView `json:"records"`
	}
	if err := json.Unmarshal(listRR.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Records) != 1 || list.Records[0].Name != "別人" {
		t.Errorf("records after forced import = %+v, want single overwritten record", list.Records)
	}
}

func TestHandleExport(t *testing.T) {
	s := newTestServer(t)

	// Nothing to export yet
	rr := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/engineers/export", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("export of empty store status = %d, want 404", rr.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/engineers", createBody("00001", "田中太郎"))
	req.Header.Set("Content-Type", "application/json")
	doRequest(s, req)

	rr = doRequest(s, httptest.NewRequest(http.MethodGet, "/api/engineers/export", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("export status = %d, want 200", rr.Code)
	}
	lines := strings.Split(strings.TrimRight(rr.Body.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("export has %d lines, want header + 1 record", len(lines))
	}
	if lines[0] != engineer.JoinRow(engineer.Header()) {
		t.Errorf("export first line = %q, want header", lines[0])
	}
	if !strings.HasPrefix(lines[1], "00001,") {
		t.Errorf("export record line = %q, want id 00001 first", lines[1])
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	rr := doRequest(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Errorf("health body = %q", rr.Body.String())
	}
}
