package app

import (
	"assessment_backend/internal/config"
	"assessment_backend/internal/model"
	"assessment_backend/internal/service"
	"assessment_backend/internal/util"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type harness struct {
	t   *testing.T
	app *App
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		JWT:    config.JWTConfig{Secret: testSecret},
		Engine: config.EngineConfig{Store: config.StoreMemory, RegradeCooldownSeconds: 60},
	}
	a := &App{Config: cfg}
	a.setup(cfg)
	return &harness{t: t, app: a}
}

func (h *harness) do(method, path string, userID uint, role model.UserRole, body interface{}) (int, envelope) {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			h.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		tok, err := util.GenerateJWT(userID, role, testSecret, time.Hour)
		if err != nil {
			h.t.Fatal(err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	h.app.Router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			h.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, env
}

func (h *harness) expect(status int, method, path string, userID uint, role model.UserRole, body interface{}) envelope {
	h.t.Helper()
	code, env := h.do(method, path, userID, role, body)
	if code != status {
		h.t.Fatalf("%s %s = %d (%s), want %d", method, path, code, env.Message, status)
	}
	return env
}

func decode(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func TestAttemptFlowOverHTTP(t *testing.T) {
	h := newHarness(t)
	demo, err := h.app.SeedDemo(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	const student, other, teacher, admin = 7, 8, 50, 90
	q1, q2, q3 := demo.Questions[0], demo.Questions[1], demo.Questions[2]
	c1, _ := q1.CorrectChoiceID()
	c2, _ := q2.CorrectChoiceID()

	h.expect(http.StatusUnauthorized, http.MethodPost, fmt.Sprintf("/api/assignments/%d/attempts", demo.ID), 0, "", nil)
	h.expect(http.StatusBadRequest, http.MethodPost, "/api/assignments/abc/attempts", student, model.Student, nil)
	h.expect(http.StatusNotFound, http.MethodPost, "/api/assignments/999/attempts", student, model.Student, nil)

	// attempts belong to students; admins pass every role gate
	startPath := fmt.Sprintf("/api/assignments/%d/attempts", demo.ID)
	h.expect(http.StatusForbidden, http.MethodPost, startPath, teacher, model.Teacher, nil)
	h.expect(http.StatusForbidden, http.MethodPost, startPath, 43, model.UserRole("guest"), nil)
	h.expect(http.StatusForbidden, http.MethodGet, fmt.Sprintf("/api/assignments/%d/history", demo.ID), teacher, model.Teacher, nil)

	var view service.AttemptView
	decode(t, h.expect(http.StatusOK, http.MethodPost, startPath, student, model.Student, nil), &view)
	if view.AttemptNumber != 1 || view.QuestionCount != 3 || view.Status != model.AttemptInProgress {
		t.Fatalf("start view = %+v", view)
	}
	attemptPath := fmt.Sprintf("/api/attempts/%d", view.ID)

	h.expect(http.StatusOK, http.MethodPut, fmt.Sprintf("%s/answers/%d", attemptPath, q1.ID), student, model.Student, gin.H{"selectedChoiceId": c1})
	h.expect(http.StatusOK, http.MethodPut, fmt.Sprintf("%s/answers/%d", attemptPath, q2.ID), student, model.Student, gin.H{"selectedChoiceId": c2})
	h.expect(http.StatusOK, http.MethodPut, fmt.Sprintf("%s/answers/%d", attemptPath, q3.ID), student, model.Student, gin.H{"textAnswer": "When producers burst."})
	h.expect(http.StatusNotFound, http.MethodPut, fmt.Sprintf("%s/answers/%d", attemptPath, q1.ID), other, model.Student, gin.H{"selectedChoiceId": c1})
	h.expect(http.StatusNotFound, http.MethodGet, attemptPath, other, model.Student, nil)

	decode(t, h.expect(http.StatusOK, http.MethodGet, attemptPath, student, model.Student, nil), &view)
	if view.AnsweredCount != 3 {
		t.Fatalf("answered = %d", view.AnsweredCount)
	}

	decode(t, h.expect(http.StatusOK, http.MethodPost, attemptPath+"/finish", student, model.Student, nil), &view)
	if view.Status != model.AttemptSubmitted || view.AutoScore == nil || !view.AutoScore.Equal(decimal.NewFromInt(2)) || view.FinalScore != nil {
		t.Fatalf("finish view = %+v", view)
	}
	h.expect(http.StatusForbidden, http.MethodPost, attemptPath+"/finish", teacher, model.Teacher, nil)
	// duplicate submit is harmless
	h.expect(http.StatusOK, http.MethodPost, attemptPath+"/finish", student, model.Student, nil)
	h.expect(http.StatusConflict, http.MethodPut, fmt.Sprintf("%s/answers/%d", attemptPath, q1.ID), student, model.Student, gin.H{"selectedChoiceId": c1})

	pendingPath := fmt.Sprintf("/api/teacher/assignments/%d/pending", demo.ID)
	h.expect(http.StatusForbidden, http.MethodGet, pendingPath, student, model.Student, nil)
	var pending []model.Attempt
	decode(t, h.expect(http.StatusOK, http.MethodGet, pendingPath, teacher, model.Teacher, nil), &pending)
	if len(pending) != 1 || pending[0].ID != view.ID {
		t.Fatalf("pending = %+v", pending)
	}

	scorePath := fmt.Sprintf("/api/teacher/attempts/%d/final-score", view.ID)
	h.expect(http.StatusBadRequest, http.MethodPut, scorePath, teacher, model.Teacher, gin.H{})
	h.expect(http.StatusBadRequest, http.MethodPut, scorePath, teacher, model.Teacher, gin.H{"finalScore": 9})
	h.expect(http.StatusOK, http.MethodPut, scorePath, teacher, model.Teacher, gin.H{"finalScore": 3.5})
	h.expect(http.StatusConflict, http.MethodPut, scorePath, teacher, model.Teacher, gin.H{"finalScore": 3})

	var hist service.AttemptHistory
	decode(t, h.expect(http.StatusOK, http.MethodGet, fmt.Sprintf("/api/assignments/%d/history", demo.ID), student, model.Student, nil), &hist)
	if hist.AttemptsUsed != 1 || len(hist.Attempts) != 1 {
		t.Fatalf("history = %+v", hist)
	}
	s := hist.Attempts[0]
	if s.EssayScore == nil || !s.EssayScore.Equal(decimal.RequireFromString("1.5")) || !s.FinalScore.Equal(decimal.RequireFromString("3.5")) {
		t.Fatalf("summary = %+v", s)
	}

	regradePath := fmt.Sprintf("/api/admin/attempts/%d/regrade", view.ID)
	h.expect(http.StatusForbidden, http.MethodPost, regradePath, teacher, model.Teacher, nil)
	h.expect(http.StatusOK, http.MethodPost, regradePath, admin, model.Admin, nil)
	h.expect(http.StatusTooManyRequests, http.MethodPost, regradePath, admin, model.Admin, nil)

	// hot reload drops the cooldown
	h.app.ApplyConfig(&config.Config{Engine: config.EngineConfig{Store: config.StoreMemory}})
	h.expect(http.StatusOK, http.MethodPost, regradePath, admin, model.Admin, nil)
}

func TestAttemptQuotaOverHTTP(t *testing.T) {
	h := newHarness(t)
	demo, err := h.app.SeedDemo(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	startPath := fmt.Sprintf("/api/assignments/%d/attempts", demo.ID)

	for i := 1; i <= demo.MaxAttempts; i++ {
		var view service.AttemptView
		decode(t, h.expect(http.StatusOK, http.MethodPost, startPath, 7, model.Student, nil), &view)
		if view.AttemptNumber != i {
			t.Fatalf("attempt number = %d, want %d", view.AttemptNumber, i)
		}
		h.expect(http.StatusOK, http.MethodPost, fmt.Sprintf("/api/attempts/%d/finish", view.ID), 7, model.Student, nil)
	}

	env := h.expect(http.StatusForbidden, http.MethodPost, startPath, 7, model.Student, nil)
	var data struct {
		Reason string `json:"reason"`
	}
	decode(t, env, &data)
	if data.Reason != string(service.AttemptsExhausted) {
		t.Fatalf("reason = %q", data.Reason)
	}
}

func TestHealthInMemoryMode(t *testing.T) {
	h := newHarness(t)
	env := h.expect(http.StatusOK, http.MethodGet, "/api/health", 0, "", nil)
	var data struct {
		Status string `json:"status"`
	}
	decode(t, env, &data)
	if data.Status != "ok" {
		t.Fatalf("health = %s", env.Data)
	}
}
