package web

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/edusuite/gridcalc/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           0,
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   5 * time.Second,
			RequestTimeout: 5 * time.Second,
		},
		Upload: config.UploadConfig{
			MaxFileSize: 1 << 20,
		},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := NewServer(testConfig(), NewSheetStore())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func buildWorkbook(t *testing.T) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	name := f.GetSheetName(0)
	if err := f.SetCellValue(name, "A1", 10); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue(name, "A2", 5); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellFormula(name, "B1", "SUM(A1:A2)"); err != nil {
		t.Fatal(err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func uploadBody(t *testing.T, content io.Reader) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("workbook", "book.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.Copy(part, content); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func decodeJSON(t *testing.T, res *http.Response, v any) {
	t.Helper()
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	res, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	var body map[string]string
	decodeJSON(t, res, &body)
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want %q", body["status"], "ok")
	}
}

func TestEvaluateSnapshot(t *testing.T) {
	ts := newTestServer(t)

	doc := `{"cells":{"A1":{"raw":"5"},"B1":{"formula":"=A1*2"},"C1":{"formula":"=C1"}}}`
	res, err := http.Post(ts.URL+"/api/evaluate", "application/json", strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var body struct {
		Values map[string]string `json:"values"`
	}
	decodeJSON(t, res, &body)
	if got := body.Values["B1"]; got != "10" {
		t.Errorf("B1 = %q, want %q", got, "10")
	}
	if got := body.Values["C1"]; got != "#CIRCULAR!" {
		t.Errorf("C1 = %q, want %q", got, "#CIRCULAR!")
	}
}

func TestEvaluateRejectsMalformed(t *testing.T) {
	ts := newTestServer(t)

	res, err := http.Post(ts.URL+"/api/evaluate", "application/json", strings.NewReader(`{"cells":`))
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
	var body ErrorResponse
	decodeJSON(t, res, &body)
	if body.Code != "invalid_sheet" {
		t.Errorf("code = %q, want %q", body.Code, "invalid_sheet")
	}
}

func TestSheetLifecycle(t *testing.T) {
	ts := newTestServer(t)
	client := ts.Client()

	body, contentType := uploadBody(t, buildWorkbook(t))
	res, err := client.Post(ts.URL+"/api/sheets", contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("upload status = %d, want %d", res.StatusCode, http.StatusCreated)
	}
	var created struct {
		ID    string `json:"id"`
		Cells int    `json:"cells"`
	}
	decodeJSON(t, res, &created)
	if created.ID == "" {
		t.Fatal("upload returned empty ID")
	}
	if created.Cells != 3 {
		t.Errorf("cells = %d, want 3", created.Cells)
	}

	res, err = client.Get(ts.URL + "/api/sheets/" + created.ID + "/values")
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("values status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	var values struct {
		Values map[string]string `json:"values"`
	}
	decodeJSON(t, res, &values)
	if got := values.Values["B1"]; got != "15" {
		t.Errorf("B1 = %q, want %q", got, "15")
	}

	res, err = client.Get(ts.URL + "/api/sheets/" + created.ID + "/cell/b1")
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("cell status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	var cell struct {
		Ref   string `json:"ref"`
		Value string `json:"value"`
	}
	decodeJSON(t, res, &cell)
	if cell.Ref != "B1" {
		t.Errorf("ref = %q, want %q", cell.Ref, "B1")
	}
	if cell.Value != "15" {
		t.Errorf("value = %q, want %q", cell.Value, "15")
	}

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/sheets/"+created.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err = client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want %d", res.StatusCode, http.StatusNoContent)
	}

	res, err = client.Get(ts.URL + "/api/sheets/" + created.ID + "/values")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("post-delete status = %d, want %d", res.StatusCode, http.StatusNotFound)
	}
}

func TestReplaceSheet(t *testing.T) {
	ts := newTestServer(t)
	client := ts.Client()

	body, contentType := uploadBody(t, buildWorkbook(t))
	res, err := client.Post(ts.URL+"/api/sheets", contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	var created struct {
		ID string `json:"id"`
	}
	decodeJSON(t, res, &created)

	f := excelize.NewFile()
	defer f.Close()
	name := f.GetSheetName(0)
	if err := f.SetCellValue(name, "A1", 42); err != nil {
		t.Fatal(err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	body, contentType = uploadBody(t, buf)
	req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/sheets/"+created.ID, body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", contentType)
	res, err = client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("replace status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	res, err = client.Get(ts.URL + "/api/sheets/" + created.ID + "/cell/A1")
	if err != nil {
		t.Fatal(err)
	}
	var cell struct {
		Value string `json:"value"`
	}
	decodeJSON(t, res, &cell)
	if cell.Value != "42" {
		t.Errorf("A1 after replace = %q, want %q", cell.Value, "42")
	}
}

func TestSheetNotFound(t *testing.T) {
	ts := newTestServer(t)

	res, err := http.Get(ts.URL + "/api/sheets/00000000-0000-0000-0000-000000000000/values")
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusNotFound)
	}
	var body ErrorResponse
	decodeJSON(t, res, &body)
	if body.Code != "sheet_not_found" {
		t.Errorf("code = %q, want %q", body.Code, "sheet_not_found")
	}
}

func TestInvalidSheetID(t *testing.T) {
	ts := newTestServer(t)

	res, err := http.Get(ts.URL + "/api/sheets/not-a-uuid/values")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
}

func TestInvalidCellReference(t *testing.T) {
	ts := newTestServer(t)
	client := ts.Client()

	body, contentType := uploadBody(t, buildWorkbook(t))
	res, err := client.Post(ts.URL+"/api/sheets", contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	var created struct {
		ID string `json:"id"`
	}
	decodeJSON(t, res, &created)

	res, err = client.Get(ts.URL + "/api/sheets/" + created.ID + "/cell/1A")
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
	var errBody ErrorResponse
	decodeJSON(t, res, &errBody)
	if errBody.Code != "invalid_reference" {
		t.Errorf("code = %q, want %q", errBody.Code, "invalid_reference")
	}
}

func TestUploadRejectsGarbage(t *testing.T) {
	ts := newTestServer(t)

	body, contentType := uploadBody(t, strings.NewReader("not an xlsx file"))
	res, err := http.Post(ts.URL+"/api/sheets", contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
	var errBody ErrorResponse
	decodeJSON(t, res, &errBody)
	if errBody.Code != "invalid_workbook" {
		t.Errorf("code = %q, want %q", errBody.Code, "invalid_workbook")
	}
}

func TestUploadMissingFile(t *testing.T) {
	ts := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("note", "no file here"); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	res, err := http.Post(ts.URL+"/api/sheets", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
}
