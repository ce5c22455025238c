package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/emphasis-lines-api/internal/models"
	"github.com/noah-isme/emphasis-lines-api/internal/repository"
	"github.com/noah-isme/emphasis-lines-api/internal/service"
	"github.com/noah-isme/emphasis-lines-api/internal/store"
)

const prefix = "/api/v1"

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	store  *store.Store
}

func newTestAPI(t *testing.T, start bool) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	metrics := service.NewMetricsService()
	s := store.New(repository.NewMemoryDocumentRepository(), store.WithRecorder(metrics))
	if start {
		require.NoError(t, s.Start(context.Background()))
	}
	t.Cleanup(s.Close)

	hub := service.NewChangeHub(16, metrics, nil)
	hub.Start(context.Background())
	t.Cleanup(hub.Stop)
	s.OnChange(hub.Publish)

	courses := service.NewCourseService(s, nil, nil, "")
	enrollments := service.NewEnrollmentService(s, nil, nil)
	svc := Services{
		Auth:          service.NewAuthService(s, nil, nil, service.AuthConfig{AccessTokenSecret: "test-secret", AccessTokenExpiry: time.Hour}),
		Users:         service.NewUserService(s, nil),
		CourseLines:   service.NewCourseLineService(s, nil, nil, ""),
		Courses:       courses,
		Requests:      service.NewRequestService(s, nil, nil, nil),
		Enrollments:   enrollments,
		Evaluations:   service.NewEvaluationService(s, nil, nil),
		Grades:        service.NewGradeService(s, nil, nil),
		Notifications: service.NewNotificationService(s, nil, nil),
		Admin:         service.NewAdminService(s, nil),
		Exports:       service.NewExportService(courses, enrollments),
		Metrics:       metrics,
		Hub:           hub,
		Readiness:     s,
	}
	router := gin.New()
	Register(router, svc, RouterConfig{APIPrefix: prefix, AllowedOrigins: []string{"*"}}, nil)
	return &testAPI{t: t, router: router, store: s}
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, prefix+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(identifier string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/auth/login", "", map[string]string{"identifier": identifier, "password": store.SeedPassword})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data.AccessToken
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dst))
}

func TestRoutesBeforeReady(t *testing.T) {
	api := newTestAPI(t, false)

	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = api.do(http.MethodPost, "/auth/login", "", map[string]string{"identifier": "EST001", "password": "123"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	api.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	api := newTestAPI(t, true)
	rec := api.do(http.MethodPost, "/auth/login", "", map[string]string{"identifier": "EST001", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_CREDENTIALS")

	rec = api.do(http.MethodGet, "/course-lines", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEnrollmentWorkflow(t *testing.T) {
	api := newTestAPI(t, true)
	studentToken := api.login("EST001")
	professorToken := api.login("profesor@udem.edu.co")
	coordinatorToken := api.login("COORD001")

	rec := api.do(http.MethodPost, "/course-lines", studentToken, map[string]interface{}{"code": "IA", "name": "Inteligencia Artificial", "program": "Sistemas"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPost, "/course-lines", coordinatorToken, map[string]interface{}{
		"code": "IA", "name": "Inteligencia Artificial", "program": "Sistemas", "total_seats": 10, "professor_id": store.SeedProfessorID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var line models.CourseLine
	decodeData(t, rec, &line)

	rec = api.do(http.MethodGet, "/course-lines?program=All", studentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var lines []models.CourseLineDetail
	decodeData(t, rec, &lines)
	require.Len(t, lines, 1)
	assert.Equal(t, "Dr. Juan Martínez Profesor", lines[0].ProfessorName)

	// Students always apply for themselves.
	rec = api.do(http.MethodPost, "/requests", studentToken, map[string]interface{}{"student_id": 99, "course_line_id": line.ID, "name": "Juan"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var request models.Request
	decodeData(t, rec, &request)
	assert.Equal(t, store.SeedStudentID, request.StudentID)

	rec = api.do(http.MethodPost, fmt.Sprintf("/requests/%d/approve", request.ID), studentToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = api.do(http.MethodPost, fmt.Sprintf("/requests/%d/approve", request.ID), coordinatorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = api.do(http.MethodPost, fmt.Sprintf("/requests/%d/approve", request.ID), coordinatorToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "REQUEST_NOT_PENDING")

	rec = api.do(http.MethodGet, "/students/1/enrollments", studentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var enrolled []models.EnrollmentDetail
	decodeData(t, rec, &enrolled)
	require.Len(t, enrolled, 1)
	courseID := enrolled[0].CourseID

	rec = api.do(http.MethodGet, "/students/2/enrollments", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPost, "/evaluations", professorToken, map[string]interface{}{"course_id": courseID, "name": "Parcial", "weight_percent": 40})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var partial models.Evaluation
	decodeData(t, rec, &partial)
	rec = api.do(http.MethodPost, "/evaluations", professorToken, map[string]interface{}{"course_id": courseID, "name": "Final", "weight_percent": 60})
	require.Equal(t, http.StatusCreated, rec.Code)
	var final models.Evaluation
	decodeData(t, rec, &final)

	for evaluationID, value := range map[int]float64{partial.ID: 3.0, final.ID: 4.0} {
		rec = api.do(http.MethodPost, "/grades", professorToken, map[string]interface{}{
			"evaluation_id": evaluationID, "student_id": store.SeedStudentID, "course_id": courseID, "value": value,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = api.do(http.MethodGet, fmt.Sprintf("/students/1/courses/%d/final-grade", courseID), studentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var grade struct {
		FinalGrade float64 `json:"final_grade"`
	}
	decodeData(t, rec, &grade)
	assert.InDelta(t, 3.6, grade.FinalGrade, 1e-9)

	rec = api.do(http.MethodGet, fmt.Sprintf("/courses/%d/roster?format=csv", courseID), professorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "roster-IA.csv")
	assert.True(t, strings.Contains(rec.Body.String(), "EST001"))

	rec = api.do(http.MethodGet, fmt.Sprintf("/courses/%d/roster?format=xml", courseID), professorToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/users/1/notifications", studentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var notes []models.Notification
	decodeData(t, rec, &notes)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationSuccess, notes[0].Kind)
	assert.Contains(t, rec.Body.String(), `"unread":1`)
}

func TestRejectAndCancelOwnership(t *testing.T) {
	api := newTestAPI(t, true)
	studentToken := api.login("EST001")
	coordinatorToken := api.login("COORD001")

	rec := api.do(http.MethodPost, "/requests", coordinatorToken, map[string]interface{}{"student_id": 50, "course_line_id": 1, "name": "Someone Else"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var other models.Request
	decodeData(t, rec, &other)

	rec = api.do(http.MethodPost, fmt.Sprintf("/requests/%d/cancel", other.ID), studentToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPost, fmt.Sprintf("/requests/%d/reject", other.ID), coordinatorToken, map[string]interface{}{"reason": "incomplete", "reviewer_id": 99})
	require.Equal(t, http.StatusOK, rec.Code)
	var rejected models.Request
	decodeData(t, rec, &rejected)
	assert.Equal(t, models.RequestStatusRejected, rejected.Status)
	assert.Equal(t, "incomplete", rejected.DecisionNotes)
	// the reviewer always comes from the token
	require.NotNil(t, rejected.ReviewerID)
	assert.Equal(t, store.SeedCoordinatorID, *rejected.ReviewerID)

	rec = api.do(http.MethodGet, "/requests?status=rejected", coordinatorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	rec = api.do(http.MethodGet, "/requests/abc/cancel", coordinatorToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = api.do(http.MethodPost, "/requests/abc/cancel", coordinatorToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminReset(t *testing.T) {
	api := newTestAPI(t, true)
	coordinatorToken := api.login("COORD001")
	rec := api.do(http.MethodPost, "/course-lines", coordinatorToken, map[string]interface{}{"code": "X", "name": "X", "program": "P"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(http.MethodPost, "/admin/reset", coordinatorToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(http.MethodGet, "/course-lines", coordinatorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":0`)

	rec = api.do(http.MethodGet, "/admin/metrics", coordinatorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary models.SystemMetrics
	decodeData(t, rec, &summary)
	assert.Equal(t, api.store.Revision(), summary.Revision)
}

func TestEventsStream(t *testing.T) {
	api := newTestAPI(t, true)
	coordinatorToken := api.login("COORD001")
	server := httptest.NewServer(api.router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + prefix + "/events?access_token=" + coordinatorToken
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	// Registration happens after the upgrade completes; keep mutating until an event arrives.
	deadline := time.Now().Add(3 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	received := make(chan models.ChangeEvent, 1)
	go func() {
		var event models.ChangeEvent
		if err := conn.ReadJSON(&event); err == nil {
			received <- event
		}
	}()
	for {
		rec := api.do(http.MethodPost, "/notifications", coordinatorToken, map[string]interface{}{"user_id": 1, "title": "ping"})
		require.Equal(t, http.StatusCreated, rec.Code)
		select {
		case event := <-received:
			assert.Equal(t, models.ChangeMutated, event.Kind)
			assert.Positive(t, event.Revision)
			return
		case <-time.After(50 * time.Millisecond):
		}
		if time.Now().After(deadline) {
			t.Fatal("no change event received")
		}
	}
}

func TestMarkReadOnlyForRecipient(t *testing.T) {
	api := newTestAPI(t, true)
	studentToken := api.login("EST001")
	professorToken := api.login("PROF001")
	coordinatorToken := api.login("COORD001")

	rec := api.do(http.MethodPost, "/notifications", coordinatorToken, map[string]interface{}{"user_id": 1, "title": "for the student"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var note models.Notification
	decodeData(t, rec, &note)

	rec = api.do(http.MethodPost, fmt.Sprintf("/notifications/%d/read", note.ID), professorToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodGet, "/users/1/notifications", studentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unread":1`)

	rec = api.do(http.MethodPost, fmt.Sprintf("/notifications/%d/read", note.ID), studentToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.do(http.MethodGet, "/users/1/notifications", studentToken, nil)
	assert.Contains(t, rec.Body.String(), `"unread":0`)
}
