/*
handlers_test.go - HTTP tests for API handlers

Tests for:
- Template download (CSV and XLSX)
- One-off compute, including shift and time validation
- Session upload, read, summary, export, delete
- Error status mapping (400/404/410/413)
*/
package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-pay/pay"
	"github.com/warp/shift-pay/session"
	"github.com/warp/shift-pay/session/memory"
	"github.com/warp/shift-pay/sheet"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

const attendanceCSV = "日付,日勤 or 夜勤,従業員名,処遇改善加算％,勤務開始時間,勤務終了時間,休憩時間\n" +
	"2024-01-15,日勤,山田 太郎,18,09:00,18:00,1.0\n" +
	"2024-01-15,夜勤,佐藤 花子,15,18:00,32:29,1.0\n"

type testServer struct {
	http.Handler
	svc *session.Service
	now time.Time
}

func newTestServer(t *testing.T, opts sheet.Options, maxUpload int64) *testServer {
	t.Helper()
	ts := &testServer{now: time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC)}
	ts.svc = session.NewService(memory.New(), pay.NewCalculator(pay.DefaultRates()), session.Config{
		TTL:   30 * time.Minute,
		Sheet: opts,
	})
	ts.svc.Now = func() time.Time { return ts.now }
	ts.Handler = NewRouter(NewHandler(ts.svc, maxUpload), RouterConfig{AccessLog: io.Discard})
	return ts
}

func (ts *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, name, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = io.WriteString(fw, body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (ts *testServer) upload(t *testing.T, body string) SessionDTO {
	t.Helper()
	rec := ts.do(t, uploadRequest(t, "attendance.csv", body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var dto SessionDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	return dto
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func attachmentName(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	_, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	return params["filename"]
}

// =============================================================================
// TEMPLATE AND HEALTH
// =============================================================================

func TestHealth(t *testing.T) {
	ts := newTestServer(t, sheet.Options{}, 0)
	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetTemplate_CSV(t *testing.T) {
	ts := newTestServer(t, sheet.Options{}, 0)
	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/template", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "給与計算テンプレート.csv", attachmentName(t, rec))

	tbl, err := sheet.Read("t.csv", rec.Body)
	require.NoError(t, err)
	assert.Equal(t, sheet.Template().Header, tbl.Header)
	assert.Len(t, tbl.Rows, 2)
}

func TestGetTemplate_XLSX(t *testing.T) {
	ts := newTestServer(t, sheet.Options{}, 0)
	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/template?format=xlsx", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sheet.FormatXLSX.ContentType(), rec.Header().Get("Content-Type"))
	_, err := sheet.Read("t.xlsx", rec.Body)
	assert.NoError(t, err)
}

func TestGetTemplate_BadFormat(t *testing.T) {
	ts := newTestServer(t, sheet.Options{}, 0)
	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/template?format=pdf", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// COMPUTE
// =============================================================================

func TestCompute_Night(t *testing.T) {
	ts := newTestServer(t, sheet.Options{StrictShiftTypes: true}, 0)
	body := `{"date":"2024-01-15","employee_name":"佐藤 花子","shift_type":"夜勤",
		"benefit_rate":15,"start_time":"18:00","end_time":"32:29","break_hours":1}`

	rec := ts.do(t, httptest.NewRequest(http.MethodPost, "/api/compute", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[ComputeResponse](t, rec)
	assert.Equal(t, BreakdownDTO{
		BasicPay:          16180,
		NightAllowance:    3000,
		MidnightAllowance: 1800,
		OvertimeAllowance: 1645,
		BenefitAllowance:  2427,
		DailyTotal:        25052,
		DailyTotalDisplay: "¥25,052",
		WorkedHours:       13.5,
		BreakHours:        1,
	}, resp.Breakdown)
	assert.Len(t, resp.Details, 6)
}

func TestCompute_ShiftValidation(t *testing.T) {
	body := `{"shift_type":"遅番","benefit_rate":15,"start_time":"18:00","end_time":"02:00"}`

	t.Run("strict rejects unknown shift", func(t *testing.T) {
		ts := newTestServer(t, sheet.Options{StrictShiftTypes: true}, 0)
		rec := ts.do(t, httptest.NewRequest(http.MethodPost, "/api/compute", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("lenient pays as night", func(t *testing.T) {
		ts := newTestServer(t, sheet.Options{}, 0)
		rec := ts.do(t, httptest.NewRequest(http.MethodPost, "/api/compute", strings.NewReader(body)))
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[ComputeResponse](t, rec)
		assert.Equal(t, "夜勤", resp.Record.ShiftType)
		assert.Equal(t, int64(3000), resp.Breakdown.NightAllowance)
	})
}

func TestCompute_StrictTimes(t *testing.T) {
	ts := newTestServer(t, sheet.Options{StrictTimes: true}, 0)
	body := `{"shift_type":"day","benefit_rate":15,"start_time":"9時","end_time":"18:00"}`
	rec := ts.do(t, httptest.NewRequest(http.MethodPost, "/api/compute", strings.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompute_BadBody(t *testing.T) {
	ts := newTestServer(t, sheet.Options{}, 0)
	for _, body := range []string{`{`, `{"shift_type":"day","break_hours":-1}`} {
		rec := ts.do(t, httptest.NewRequest(http.MethodPost, "/api/compute", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestCompute_InvalidRecord(t *testing.T) {
	// GIVEN: records that the sheet upload would also refuse
	tests := []struct {
		name   string
		body   string
		column string
	}{
		{"negative break", `{"shift_type":"夜勤","benefit_rate":15,"start_time":"18:00","end_time":"32:29","break_hours":-1}`, sheet.ColBreak},
		{"negative rate", `{"shift_type":"日勤","benefit_rate":-5,"start_time":"09:00","end_time":"18:00"}`, sheet.ColBenefitRate},
		{"end beyond any shift", `{"shift_type":"日勤","benefit_rate":18,"start_time":"0","end_time":"1e16"}`, sheet.ColEnd},
		{"infinite span", `{"shift_type":"夜勤","benefit_rate":15,"start_time":"-1e308","end_time":"1e308"}`, sheet.ColStart},
	}

	ts := newTestServer(t, sheet.Options{}, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// WHEN: posting them to /api/compute
			rec := ts.do(t, httptest.NewRequest(http.MethodPost, "/api/compute", strings.NewReader(tt.body)))

			// THEN: 400 names the offending field
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			var resp struct {
				Error   string        `json:"error"`
				Details []RowErrorDTO `json:"details"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "Invalid record", resp.Error)
			require.NotEmpty(t, resp.Details)
			assert.Equal(t, tt.column, resp.Details[0].Column)
			assert.Zero(t, resp.Details[0].Line)
		})
	}
}

// =============================================================================
// SESSIONS
// =============================================================================

func TestCreateSession(t *testing.T) {
	ts := newTestServer(t, sheet.Options{StrictShiftTypes: true}, 0)

	dto := ts.upload(t, attendanceCSV)

	assert.NotEmpty(t, dto.ID)
	assert.Equal(t, "attendance.csv", dto.SourceName)
	require.Len(t, dto.Rows, 2)
	assert.Equal(t, 2, dto.Rows[0].Line)
	assert.Equal(t, int64(12128), dto.Rows[0].Breakdown.DailyTotal)
	assert.Equal(t, "基本給: 8.0時間 × ¥1,300 = ¥10,400", dto.Rows[0].Details[1])
	assert.Equal(t, int64(37180), dto.Summary.Overall.GrandTotal)
	assert.Equal(t, "¥37,180", dto.Summary.Overall.GrandTotalDisplay)
	assert.Equal(t, 21.5, dto.Summary.Overall.WorkedHours)
}

func TestCreateSession_InvalidRows(t *testing.T) {
	ts := newTestServer(t, sheet.Options{StrictShiftTypes: true}, 0)
	body := attendanceCSV + "2024-01-16,遅番,佐藤 花子,x,13:00,22:00,1\n"

	rec := ts.do(t, uploadRequest(t, "attendance.csv", body))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error   string        `json:"error"`
		Details []RowErrorDTO `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Details, 2)
	assert.Equal(t, 4, resp.Details[0].Line)
	assert.Equal(t, sheet.ColShift, resp.Details[0].Column)
	assert.Equal(t, sheet.ColBenefitRate, resp.Details[1].Column)
}

func TestCreateSession_ClockOutOfRange(t *testing.T) {
	ts := newTestServer(t, sheet.Options{}, 0)
	body := attendanceCSV + "2024-01-15,夜勤,B,15,-1e308,1e308,0\n"

	var rec *httptest.ResponseRecorder
	require.NotPanics(t, func() { rec = ts.do(t, uploadRequest(t, "attendance.csv", body)) })
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	var resp struct {
		Details []RowErrorDTO `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Details, 2)
	assert.Equal(t, 4, resp.Details[0].Line)
	assert.Equal(t, sheet.ColStart, resp.Details[0].Column)
	assert.Equal(t, sheet.ColEnd, resp.Details[1].Column)
}

func TestCreateSession_MissingColumns(t *testing.T) {
	ts := newTestServer(t, sheet.Options{}, 0)
	rec := ts.do(t, uploadRequest(t, "a.csv", "日付,従業員名\n2024-01-15,A\n"))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "Missing required columns", resp.Error)
}

func TestCreateSession_UnsupportedFile(t *testing.T) {
	ts := newTestServer(t, sheet.Options{}, 0)
	rec := ts.do(t, uploadRequest(t, "a.pdf", "%PDF"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSession_NoFile(t *testing.T) {
	ts := newTestServer(t, sheet.Options{}, 0)
	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader("x"))
	req.Header.Set("Content-Type", "text/plain")
	rec := ts.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSession_TooLarge(t *testing.T) {
	ts := newTestServer(t, sheet.Options{}, 64)
	rec := ts.do(t, uploadRequest(t, "attendance.csv", attendanceCSV))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestGetSession_And_Summary(t *testing.T) {
	ts := newTestServer(t, sheet.Options{}, 0)
	created := ts.upload(t, attendanceCSV)

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/sessions/"+created.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decode[SessionDTO](t, rec).ID)

	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/sessions/"+created.ID+"/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[SummaryDTO](t, rec)
	require.Len(t, sum.Employees, 2)
	assert.Equal(t, "山田 太郎", sum.Employees[0].Name)
	assert.Equal(t, 8.0, sum.Employees[0].WorkedHours)
	assert.Equal(t, "¥25,052", sum.Employees[1].TotalPayDisplay)
}

func TestGetSession_NotFoundAndExpired(t *testing.T) {
	ts := newTestServer(t, sheet.Options{}, 0)
	created := ts.upload(t, attendanceCSV)

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/sessions/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	ts.now = ts.now.Add(time.Hour)
	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/sessions/"+created.ID, nil))
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestExportSession(t *testing.T) {
	ts := newTestServer(t, sheet.Options{}, 0)
	created := ts.upload(t, attendanceCSV)

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/sessions/"+created.ID+"/export?format=csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "給与計算結果_20240120_100000.csv", attachmentName(t, rec))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\xef\xbb\xbf")))

	tbl, err := sheet.Read("r.csv", rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "25052", tbl.Rows[1][tbl.Index(sheet.ColDailyTotal)])

	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/sessions/"+created.ID+"/export?format=ods", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteSession(t *testing.T) {
	ts := newTestServer(t, sheet.Options{}, 0)
	created := ts.upload(t, attendanceCSV)

	rec := ts.do(t, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+created.ID, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
