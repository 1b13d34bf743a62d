package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpainam/discolaire-sub011/services/export"
	"github.com/jpainam/discolaire-sub011/tests"
)

func setup(t *testing.T) (Server, *testutil.Services) {
	t.Helper()
	svcs := testutil.NewServices()
	app := NewServer(&Options{
		TestMode:       true,
		DisableReqLogs: true,
		GradingSvc:     svcs.Grading,
		AttendanceSvc:  svcs.Attendance,
		ReportSvc:      svcs.Report,
		Document:       export.Document{SchoolName: "Lycée de Test"},
		Mailer:         svcs.Mailer,
		Logger:         svcs.Logger,
		Translator:     svcs.Translator,
	})
	return app, svcs
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func serve(app Server, method, path string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newRequest(method, path, data...)
	app.ServeHTTP(rec, req)
	return rec
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHome(t *testing.T) {
	app, _ := setup(t)
	rec := serve(app, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Discolaire API!", rec.Body.String())
}

func TestBindFormat(t *testing.T) {
	app, _ := setup(t)
	tests := []httpTest{
		{
			name:     "unknown format",
			method:   http.MethodGet,
			path:     "/v1/classrooms/" + testutil.ClassroomID + "/terms/" + testutil.QuarterID + "/roll-of-honor?format=csv",
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"format": "must be one of: json, xlsx, pdf"}),
		},
		{
			name:     "pdf not offered",
			method:   http.MethodGet,
			path:     "/v1/gradesheets/any/success-rate?format=pdf",
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"format": "must be one of: json, xlsx"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, serve(app, tt.method, tt.path))
		})
	}
}
