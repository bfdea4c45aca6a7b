package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mathisDlmr/Tutut-sub000/internal/api/middleware"
	"github.com/mathisDlmr/Tutut-sub000/internal/dto"
	"github.com/mathisDlmr/Tutut-sub000/internal/model"
	"github.com/mathisDlmr/Tutut-sub000/internal/service"
	"github.com/mathisDlmr/Tutut-sub000/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock SemesterService ──

type mockSemesterService struct {
	createResult *dto.SemesterResponse
	createErr    error
	getErr       error
	listResult   []dto.SemesterResponse
	deleteErr    error
}

func (m *mockSemesterService) Create(_ context.Context, _ *dto.CreateSemesterRequest, _ string) (*dto.SemesterResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockSemesterService) GetByID(_ context.Context, id string) (*dto.SemesterResponse, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &dto.SemesterResponse{ID: id}, nil
}
func (m *mockSemesterService) GetCurrent(_ context.Context) (*dto.SemesterResponse, error) {
	return nil, m.getErr
}
func (m *mockSemesterService) List(_ context.Context) ([]dto.SemesterResponse, error) {
	return m.listResult, nil
}
func (m *mockSemesterService) Update(_ context.Context, _ string, _ *dto.UpdateSemesterRequest, _ string) (*dto.SemesterResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockSemesterService) Activate(_ context.Context, _ string, _ string) error {
	return m.getErr
}
func (m *mockSemesterService) Delete(_ context.Context, _ string) error {
	return m.deleteErr
}

// ── Mock CalendarService ──

type mockCalendarService struct {
	resolveResult *service.Resolution
	importResult  *dto.ImportHolidaysResponse
	importErr     error
	importedURL   string
	importedFile  string
}

func (m *mockCalendarService) Resolve(_ context.Context, date time.Time) (*service.Resolution, error) {
	if m.resolveResult != nil {
		return m.resolveResult, nil
	}
	return &service.Resolution{Date: date, Label: model.WeekdayLabel(date.Weekday()), Source: service.SourceWeekday}, nil
}
func (m *mockCalendarService) ResolveFor(_ context.Context, _ *model.Semester, _ time.Time) (*service.Resolution, error) {
	return m.resolveResult, nil
}
func (m *mockCalendarService) SetOverride(_ context.Context, _ *dto.SetOverrideRequest, _ string) (*dto.OverrideResponse, error) {
	return nil, service.ErrOverrideInvalid
}
func (m *mockCalendarService) DeleteOverride(_ context.Context, _ string) error {
	return service.ErrOverrideNotFound
}
func (m *mockCalendarService) ListOverrides(_ context.Context, _ *dto.OverrideListRequest) ([]dto.OverrideResponse, error) {
	return nil, nil
}
func (m *mockCalendarService) ImportHolidaysICS(_ context.Context, r io.Reader, _ bool, _ string) (*dto.ImportHolidaysResponse, error) {
	b, _ := io.ReadAll(r)
	m.importedFile = string(b)
	return m.importResult, m.importErr
}
func (m *mockCalendarService) ImportHolidaysFromURL(_ context.Context, rawURL string, _ bool, _ string) (*dto.ImportHolidaysResponse, error) {
	m.importedURL = rawURL
	return m.importResult, m.importErr
}

// ── Mock SlotService / ClaimService ──

type mockSlotService struct {
	generateErr error
	gotConfirm  bool
}

func (m *mockSlotService) Generate(_ context.Context, weekID string, opts service.GenerateOptions, _ string) (*dto.GenerateSlotsResponse, error) {
	m.gotConfirm = opts.Confirm
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return &dto.GenerateSlotsResponse{WeekID: weekID, Created: 2}, nil
}
func (m *mockSlotService) ListByWeek(_ context.Context, _ string, _ *dto.SlotListRequest) ([]dto.SlotResponse, error) {
	return []dto.SlotResponse{}, nil
}
func (m *mockSlotService) Get(_ context.Context, _ string) (*dto.SlotResponse, error) {
	return nil, service.ErrSlotNotFound
}

type mockClaimService struct {
	claimResult *dto.ClaimResponse
	claimErr    error
	attErr      error
	gotPosition int
	gotTutor    string
	gotAtt      model.Attendance
	attCalls    int
}

func (m *mockClaimService) Claim(_ context.Context, _ string, tutorID string, position int) (*dto.ClaimResponse, error) {
	m.gotTutor, m.gotPosition = tutorID, position
	return m.claimResult, m.claimErr
}
func (m *mockClaimService) Release(_ context.Context, _ string, _ string, _ int) (*dto.SlotResponse, error) {
	return &dto.SlotResponse{}, nil
}
func (m *mockClaimService) OpenWeek(_ context.Context, weekID, _ string) (*dto.OpenWeekResponse, error) {
	return &dto.OpenWeekResponse{WeekID: weekID, Opened: 3}, nil
}
func (m *mockClaimService) SetAttendance(_ context.Context, _ string, _ string, _ int, att model.Attendance) (*dto.SlotResponse, error) {
	m.attCalls++
	m.gotAtt = att
	return &dto.SlotResponse{}, m.attErr
}
func (m *mockClaimService) ListMine(_ context.Context, _ string, _ string) ([]dto.SlotResponse, error) {
	return []dto.SlotResponse{}, nil
}

// ── Mock EnrollmentService ──

type mockEnrollmentService struct {
	enrollErr error
	gotTutee  string
}

func (m *mockEnrollmentService) Enroll(_ context.Context, slotID, tuteeID string, req *dto.EnrollRequest) (*dto.EnrollmentResponse, error) {
	m.gotTutee = tuteeID
	if m.enrollErr != nil {
		return nil, m.enrollErr
	}
	return &dto.EnrollmentResponse{ID: "e-1", SlotID: slotID, TuteeID: tuteeID, DesiredSubjects: req.DesiredSubjects}, nil
}
func (m *mockEnrollmentService) Withdraw(_ context.Context, _, _ string) error { return nil }
func (m *mockEnrollmentService) ListBySlot(_ context.Context, _ string) ([]dto.EnrollmentResponse, error) {
	return []dto.EnrollmentResponse{}, nil
}
func (m *mockEnrollmentService) ListMine(_ context.Context, _ string, _ *dto.MyEnrollmentsRequest) ([]dto.EnrollmentResponse, error) {
	return []dto.EnrollmentResponse{}, nil
}

// ── Mock AccountingService ──

type mockAccountingService struct {
	computeErr      error
	gotUser         string
	gotSupplemental *[]dto.SupplementalHoursInput
}

func (m *mockAccountingService) ComputeWeeklyHours(_ context.Context, userID, weekID string, supplemental *[]dto.SupplementalHoursInput, _ string) (*dto.ComputeHoursResponse, error) {
	m.gotUser, m.gotSupplemental = userID, supplemental
	if m.computeErr != nil {
		return nil, m.computeErr
	}
	return &dto.ComputeHoursResponse{UserID: userID, WeekID: weekID, Total: decimal.RequireFromString("2")}, nil
}
func (m *mockAccountingService) Validate(_ context.Context, userID, weekID, _ string) (*dto.LedgerEntryResponse, error) {
	return &dto.LedgerEntryResponse{UserID: userID, WeekID: weekID, IsLocked: true}, nil
}
func (m *mockAccountingService) Invalidate(_ context.Context, _, _, _ string) (*dto.LedgerEntryResponse, error) {
	return nil, service.ErrLedgerEntryNotFound
}
func (m *mockAccountingService) SetComment(_ context.Context, _, _ string, _ *dto.SetCommentRequest, _ string) (*dto.LedgerEntryResponse, error) {
	return &dto.LedgerEntryResponse{}, nil
}
func (m *mockAccountingService) GetEntry(_ context.Context, _, _ string) (*dto.LedgerDetailResponse, error) {
	return &dto.LedgerDetailResponse{}, nil
}
func (m *mockAccountingService) ListByWeek(_ context.Context, _ string) ([]dto.LedgerEntryResponse, error) {
	return []dto.LedgerEntryResponse{}, nil
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(userID string, role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextRole, role)
		c.Next()
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func serve(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status, code int) response.Response {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected %d, got %d: %s", status, w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp.Code != code {
		t.Errorf("expected code %d, got %d", code, resp.Code)
	}
	return resp
}

// ═══════════════════════════════════════════════════════════
// SemesterHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSemesterHandler_Create_Success(t *testing.T) {
	mock := &mockSemesterService{createResult: &dto.SemesterResponse{ID: "sem-1", Code: "P25"}}
	h := NewSemesterHandler(mock, nil)

	r := gin.New()
	r.POST("/semesters", setAuth("admin-1", model.RoleAdmin), h.CreateSemester)
	w := serve(r, "POST", "/semesters", jsonBody(dto.CreateSemesterRequest{
		Code: "P25", StartDate: "2025-02-17", EndDate: "2025-06-28",
	}))

	expectStatus(t, w, http.StatusCreated, 0)
}

func TestSemesterHandler_Create_BadJSON(t *testing.T) {
	h := NewSemesterHandler(&mockSemesterService{}, nil)

	r := gin.New()
	r.POST("/semesters", setAuth("admin-1", model.RoleAdmin), h.CreateSemester)
	w := serve(r, "POST", "/semesters", bytes.NewReader([]byte("invalid json")))

	expectStatus(t, w, http.StatusBadRequest, 10001)
}

func TestSemesterHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   int
	}{
		{"代码重复", service.ErrSemesterCodeExists, http.StatusConflict, 14004},
		{"考试周无效", service.ErrSemesterExamInvalid, http.StatusBadRequest, 14003},
		{"日期格式", service.ErrDateInvalid, http.StatusBadRequest, 10006},
		{"未知错误", fmt.Errorf("db down"), http.StatusInternalServerError, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSemesterHandler(&mockSemesterService{createErr: tt.err}, nil)

			r := gin.New()
			r.POST("/semesters", setAuth("admin-1", model.RoleAdmin), h.CreateSemester)
			w := serve(r, "POST", "/semesters", jsonBody(dto.CreateSemesterRequest{
				Code: "P25", StartDate: "2025-02-17", EndDate: "2025-06-28",
			}))

			expectStatus(t, w, tt.status, tt.code)
		})
	}
}

func TestSemesterHandler_Delete_Active(t *testing.T) {
	h := NewSemesterHandler(&mockSemesterService{deleteErr: service.ErrSemesterActiveDelete}, nil)

	r := gin.New()
	r.DELETE("/semesters/:id", setAuth("admin-1", model.RoleAdmin), h.DeleteSemester)
	w := serve(r, "DELETE", "/semesters/sem-1", nil)

	expectStatus(t, w, http.StatusConflict, 14005)
}

func TestSemesterHandler_GetCurrent_None(t *testing.T) {
	h := NewSemesterHandler(&mockSemesterService{getErr: service.ErrSemesterNotFound}, nil)

	r := gin.New()
	r.GET("/semesters/current", h.GetCurrentSemester)
	w := serve(r, "GET", "/semesters/current", nil)

	expectStatus(t, w, http.StatusNotFound, 14001)
}

// ═══════════════════════════════════════════════════════════
// CalendarHandler Tests
// ═══════════════════════════════════════════════════════════

func TestCalendarHandler_Resolve(t *testing.T) {
	mock := &mockCalendarService{resolveResult: &service.Resolution{
		Date:    time.Date(2025, 4, 21, 0, 0, 0, 0, time.UTC),
		Holiday: true,
		Source:  service.SourceOverride,
	}}
	h := NewCalendarHandler(mock)

	r := gin.New()
	r.GET("/calendar/resolve", h.Resolve)
	w := serve(r, "GET", "/calendar/resolve?date=2025-04-21", nil)

	resp := expectStatus(t, w, http.StatusOK, 0)
	data, _ := resp.Data.(map[string]interface{})
	if data["holiday"] != true {
		t.Errorf("expected holiday=true, got %v", data["holiday"])
	}
	if data["source"] != "override" {
		t.Errorf("expected source=override, got %v", data["source"])
	}
}

func TestCalendarHandler_Resolve_BadDate(t *testing.T) {
	h := NewCalendarHandler(&mockCalendarService{})

	r := gin.New()
	r.GET("/calendar/resolve", h.Resolve)
	w := serve(r, "GET", "/calendar/resolve?date=21/04/2025", nil)

	expectStatus(t, w, http.StatusBadRequest, 10006)
}

func TestCalendarHandler_SetOverride_Invalid(t *testing.T) {
	h := NewCalendarHandler(&mockCalendarService{})

	r := gin.New()
	r.PUT("/calendar/overrides", setAuth("admin-1", model.RoleAdmin), h.SetOverride)
	w := serve(r, "PUT", "/calendar/overrides", jsonBody(map[string]interface{}{
		"date": "2025-04-21", "is_holiday": true, "day_label": "monday",
	}))

	expectStatus(t, w, http.StatusBadRequest, 17002)
}

func TestCalendarHandler_ImportHolidays_FromURL(t *testing.T) {
	mock := &mockCalendarService{importResult: &dto.ImportHolidaysResponse{Imported: 4}}
	h := NewCalendarHandler(mock)

	r := gin.New()
	r.POST("/calendar/holidays/import", setAuth("admin-1", model.RoleAdmin), h.ImportHolidays)
	w := serve(r, "POST", "/calendar/holidays/import", jsonBody(dto.ImportHolidaysRequest{
		URL: "https://example.org/holidays.ics",
	}))

	expectStatus(t, w, http.StatusOK, 0)
	if mock.importedURL != "https://example.org/holidays.ics" {
		t.Errorf("expected url to be forwarded, got %q", mock.importedURL)
	}
}

func TestCalendarHandler_ImportHolidays_FetchFailed(t *testing.T) {
	mock := &mockCalendarService{importErr: fmt.Errorf("%w: 503", service.ErrICSFetchFailed)}
	h := NewCalendarHandler(mock)

	r := gin.New()
	r.POST("/calendar/holidays/import", setAuth("admin-1", model.RoleAdmin), h.ImportHolidays)
	w := serve(r, "POST", "/calendar/holidays/import", nil)

	expectStatus(t, w, http.StatusBadGateway, 17008)
}

// ═══════════════════════════════════════════════════════════
// SlotHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSlotHandler_Claim_Lost(t *testing.T) {
	claim := &mockClaimService{claimResult: &dto.ClaimResponse{Claimed: false, Reason: service.ClaimReasonPositionTaken}}
	h := NewSlotHandler(&mockSlotService{}, claim)

	r := gin.New()
	r.POST("/slots/:id/claim", setAuth("tutor-1", model.RoleTutor), h.Claim)
	w := serve(r, "POST", "/slots/s-1/claim", jsonBody(dto.ClaimRequest{Position: 2}))

	resp := expectStatus(t, w, http.StatusOK, 0)
	data, _ := resp.Data.(map[string]interface{})
	if data["claimed"] != false {
		t.Errorf("expected claimed=false, got %v", data["claimed"])
	}
	if claim.gotTutor != "tutor-1" || claim.gotPosition != 2 {
		t.Errorf("unexpected claim args: %s/%d", claim.gotTutor, claim.gotPosition)
	}
}

func TestSlotHandler_Claim_BadPosition(t *testing.T) {
	h := NewSlotHandler(&mockSlotService{}, &mockClaimService{})

	r := gin.New()
	r.POST("/slots/:id/claim", setAuth("tutor-1", model.RoleTutor), h.Claim)
	w := serve(r, "POST", "/slots/s-1/claim", jsonBody(map[string]int{"position": 3}))

	expectStatus(t, w, http.StatusBadRequest, 10001)
}

func TestSlotHandler_SetAttendance_NotHolder(t *testing.T) {
	h := NewSlotHandler(&mockSlotService{}, &mockClaimService{attErr: service.ErrNotPositionHolder})

	r := gin.New()
	r.PUT("/slots/:id/attendance", setAuth("tutor-2", model.RoleTutor), h.SetAttendance)
	w := serve(r, "PUT", "/slots/s-1/attendance", jsonBody(map[string]interface{}{"position": 1, "counted": true}))

	expectStatus(t, w, http.StatusForbidden, 18004)
}

func TestSlotHandler_SetAttendance_CountedKey(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantCalls int
		wantAtt   model.Attendance
	}{
		{"缺少 counted", `{"position":1}`, 10001, 0, model.AttendanceUnset},
		{"显式 null 重置", `{"position":1,"counted":null}`, 0, 1, model.AttendanceUnset},
		{"计入", `{"position":1,"counted":true}`, 0, 1, model.AttendanceCounted},
		{"缺勤", `{"position":2,"counted":false}`, 0, 1, model.AttendanceAbsent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := &mockClaimService{gotAtt: model.AttendanceCounted}
			if tt.wantAtt == model.AttendanceCounted {
				claims.gotAtt = model.AttendanceAbsent
			}
			h := NewSlotHandler(&mockSlotService{}, claims)

			r := gin.New()
			r.PUT("/slots/:id/attendance", setAuth("tutor-1", model.RoleTutor), h.SetAttendance)
			w := serve(r, "PUT", "/slots/s-1/attendance", strings.NewReader(tt.body))

			if tt.wantCode != 0 {
				expectStatus(t, w, http.StatusBadRequest, tt.wantCode)
			} else {
				expectStatus(t, w, http.StatusOK, 0)
			}
			if claims.attCalls != tt.wantCalls {
				t.Fatalf("期望调用 %d 次，实际 %d", tt.wantCalls, claims.attCalls)
			}
			if tt.wantCalls > 0 && claims.gotAtt != tt.wantAtt {
				t.Errorf("期望出勤 %v，实际 %v", tt.wantAtt, claims.gotAtt)
			}
		})
	}
}

func TestSlotHandler_Generate_NeedsConfirm(t *testing.T) {
	slots := &mockSlotService{generateErr: service.ErrRegenerationNeedsConfirm}
	h := NewSlotHandler(slots, &mockClaimService{})

	r := gin.New()
	r.POST("/weeks/:id/slots/generate", setAuth("admin-1", model.RoleAdmin), h.GenerateSlots)
	w := serve(r, "POST", "/weeks/w-1/slots/generate", nil)

	expectStatus(t, w, http.StatusConflict, 18002)
	if slots.gotConfirm {
		t.Error("confirm should default to false")
	}
}

func TestSlotHandler_Generate_Confirmed(t *testing.T) {
	slots := &mockSlotService{}
	h := NewSlotHandler(slots, &mockClaimService{})

	r := gin.New()
	r.POST("/weeks/:id/slots/generate", setAuth("admin-1", model.RoleAdmin), h.GenerateSlots)
	w := serve(r, "POST", "/weeks/w-1/slots/generate", jsonBody(dto.GenerateSlotsRequest{Confirm: true}))

	expectStatus(t, w, http.StatusOK, 0)
	if !slots.gotConfirm {
		t.Error("expected confirm=true to be forwarded")
	}
}

func TestSlotHandler_ListMySlots_MissingWeek(t *testing.T) {
	h := NewSlotHandler(&mockSlotService{}, &mockClaimService{})

	r := gin.New()
	r.GET("/me/slots", setAuth("tutor-1", model.RoleTutor), h.ListMySlots)
	w := serve(r, "GET", "/me/slots", nil)

	expectStatus(t, w, http.StatusBadRequest, 10001)
}

// ═══════════════════════════════════════════════════════════
// EnrollmentHandler Tests
// ═══════════════════════════════════════════════════════════

func TestEnrollmentHandler_Enroll_Success(t *testing.T) {
	mock := &mockEnrollmentService{}
	h := NewEnrollmentHandler(mock)

	r := gin.New()
	r.POST("/slots/:id/enroll", setAuth("tutee-1", model.RoleTutee), h.Enroll)
	w := serve(r, "POST", "/slots/s-1/enroll", jsonBody(dto.EnrollRequest{DesiredSubjects: []string{"MT90"}}))

	expectStatus(t, w, http.StatusCreated, 0)
	if mock.gotTutee != "tutee-1" {
		t.Errorf("expected tutee-1, got %s", mock.gotTutee)
	}
}

func TestEnrollmentHandler_Enroll_Refusals(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   int
	}{
		{"未开放", service.ErrSlotNotOpen, http.StatusConflict, 19001},
		{"重复报名", service.ErrAlreadyEnrolled, http.StatusConflict, 19002},
		{"已满", service.ErrSlotFull, http.StatusConflict, 19003},
		{"无辅导员", service.ErrSlotNotEnrollable, http.StatusConflict, 19004},
		{"科目过多", service.ErrTooManySubjects, http.StatusBadRequest, 19005},
		{"时段不存在", service.ErrSlotNotFound, http.StatusNotFound, 18001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewEnrollmentHandler(&mockEnrollmentService{enrollErr: tt.err})

			r := gin.New()
			r.POST("/slots/:id/enroll", setAuth("tutee-1", model.RoleTutee), h.Enroll)
			w := serve(r, "POST", "/slots/s-1/enroll", nil)

			expectStatus(t, w, tt.status, tt.code)
		})
	}
}

func TestEnrollmentHandler_Unauthenticated(t *testing.T) {
	h := NewEnrollmentHandler(&mockEnrollmentService{})

	r := gin.New()
	r.POST("/slots/:id/enroll", h.Enroll)
	w := serve(r, "POST", "/slots/s-1/enroll", nil)

	expectStatus(t, w, http.StatusUnauthorized, 10002)
}

// ═══════════════════════════════════════════════════════════
// AccountingHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAccountingHandler_Compute_Self(t *testing.T) {
	mock := &mockAccountingService{}
	h := NewAccountingHandler(mock)

	r := gin.New()
	r.POST("/weeks/:id/hours", setAuth("tutor-1", model.RoleTutor), h.ComputeHours)
	w := serve(r, "POST", "/weeks/w-1/hours", jsonBody(map[string]interface{}{
		"supplemental": []map[string]interface{}{{"hours": "0.5", "justification": "réunion"}},
	}))

	expectStatus(t, w, http.StatusOK, 0)
	if mock.gotUser != "tutor-1" {
		t.Errorf("expected tutor-1, got %s", mock.gotUser)
	}
	if mock.gotSupplemental == nil || len(*mock.gotSupplemental) != 1 {
		t.Fatal("expected one supplemental item")
	}
	if !(*mock.gotSupplemental)[0].Hours.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("unexpected hours %s", (*mock.gotSupplemental)[0].Hours)
	}
}

func TestAccountingHandler_Compute_KeepsSupplementalWhenOmitted(t *testing.T) {
	mock := &mockAccountingService{}
	h := NewAccountingHandler(mock)

	r := gin.New()
	r.POST("/weeks/:id/hours", setAuth("tutor-1", model.RoleTutor), h.ComputeHours)
	w := serve(r, "POST", "/weeks/w-1/hours", nil)

	expectStatus(t, w, http.StatusOK, 0)
	if mock.gotSupplemental != nil {
		t.Error("omitted supplemental should reach the service as nil")
	}
}

func TestAccountingHandler_Compute_OtherUser(t *testing.T) {
	tests := []struct {
		name   string
		role   model.Role
		status int
	}{
		{"辅导员不能替他人计算", model.RoleTutor, http.StatusForbidden},
		{"管理员可以", model.RoleAdmin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockAccountingService{}
			h := NewAccountingHandler(mock)

			r := gin.New()
			r.POST("/weeks/:id/hours", setAuth("caller-1", tt.role), h.ComputeHours)
			w := serve(r, "POST", "/weeks/w-1/hours", jsonBody(dto.ComputeHoursRequest{UserID: "tutor-9"}))

			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, w.Code)
			}
			if tt.status == http.StatusOK && mock.gotUser != "tutor-9" {
				t.Errorf("expected tutor-9, got %s", mock.gotUser)
			}
		})
	}
}

func TestAccountingHandler_Compute_Locked(t *testing.T) {
	h := NewAccountingHandler(&mockAccountingService{computeErr: service.ErrLedgerLocked})

	r := gin.New()
	r.POST("/weeks/:id/hours", setAuth("tutor-1", model.RoleTutor), h.ComputeHours)
	w := serve(r, "POST", "/weeks/w-1/hours", nil)

	expectStatus(t, w, http.StatusConflict, 20001)
}

func TestAccountingHandler_ValidateAndInvalidate(t *testing.T) {
	h := NewAccountingHandler(&mockAccountingService{})

	r := gin.New()
	r.Use(setAuth("admin-1", model.RoleAdmin))
	r.PUT("/weeks/:id/hours/:user_id/validate", h.ValidateEntry)
	r.PUT("/weeks/:id/hours/:user_id/invalidate", h.InvalidateEntry)

	w := serve(r, "PUT", "/weeks/w-1/hours/tutor-1/validate", nil)
	resp := expectStatus(t, w, http.StatusOK, 0)
	data, _ := resp.Data.(map[string]interface{})
	if data["is_locked"] != true {
		t.Errorf("expected is_locked=true, got %v", data["is_locked"])
	}

	w = serve(r, "PUT", "/weeks/w-1/hours/tutor-1/invalidate", nil)
	expectStatus(t, w, http.StatusNotFound, 20002)
}
