package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"habitboard/internal/clock"
	"habitboard/internal/infrastructure/memory"
	"habitboard/internal/service"
	"habitboard/internal/session"
	"habitboard/internal/syncqueue"
	"habitboard/internal/transport/http/middleware"
	"habitboard/pkg/jwt"

	"github.com/google/uuid"
)

type testStack struct {
	handler http.Handler
	tokens  *jwt.TokenManager
	queue   *syncqueue.Queue
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	store := memory.NewStore()
	queue := syncqueue.New(
		memory.NewHabitRepository(store),
		syncqueue.Options{RetryBaseDelay: time.Millisecond},
	)
	queue.Start()
	t.Cleanup(queue.Stop)

	sessions := session.NewManager(
		memory.NewHabitRepository(store),
		memory.NewHistoryRepository(store),
		memory.NewStreakRepository(store),
	)

	clk := clock.System{}
	habitService := service.NewHabitService(queue, clk)
	statsService := service.NewStatsService(clk)

	tokens := jwt.NewTokenManager("test-secret", "habitboard")
	router := NewRouter(
		NewHabitHandler(sessions, habitService),
		NewStatsHandler(sessions, statsService, clk),
		middleware.NewAuthMiddleware(tokens),
		middleware.NewRateLimiter(10000),
	)

	return &testStack{handler: router.Setup(), tokens: tokens, queue: queue}
}

func (s *testStack) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testStack) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := s.tokens.GenerateToken(userID, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func TestRouter_Health(t *testing.T) {
	stack := newTestStack(t)

	rec := stack.request(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_RejectsMissingAndBadTokens(t *testing.T) {
	stack := newTestStack(t)

	rec := stack.request(t, http.MethodGet, "/api/v1/habits/list", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing token: expected 401, got %d", rec.Code)
	}

	rec = stack.request(t, http.MethodGet, "/api/v1/habits/list", "garbage", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: expected 401, got %d", rec.Code)
	}
}

func TestRouter_CreateAndListHabits(t *testing.T) {
	stack := newTestStack(t)
	token := stack.token(t, uuid.New())

	rec := stack.request(t, http.MethodPost, "/api/v1/habits/create", token, map[string]any{
		"days": map[string]any{
			"1": map[string]string{"name": "Read", "time": "08:00"},
			"3": map[string]string{"name": "Read", "time": "08:00"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Habits []habitResponse `json:"habits"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(created.Habits) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(created.Habits))
	}
	if created.Habits[0].GroupID == nil {
		t.Errorf("multi-day creation must return grouped instances")
	}

	rec = stack.request(t, http.MethodGet, "/api/v1/habits/list?day=1", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var listed struct {
		Habits []habitResponse `json:"habits"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(listed.Habits) != 1 || listed.Habits[0].DayOfWeek != 1 {
		t.Errorf("day filter broken: %+v", listed.Habits)
	}
}

func TestRouter_DuplicateNameAnswers409(t *testing.T) {
	stack := newTestStack(t)
	token := stack.token(t, uuid.New())

	create := func(confirmed bool) *httptest.ResponseRecorder {
		return stack.request(t, http.MethodPost, "/api/v1/habits/create", token, map[string]any{
			"days":      map[string]any{"1": map[string]string{"name": "Read", "time": "08:00"}},
			"confirmed": confirmed,
		})
	}

	if rec := create(false); rec.Code != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d", rec.Code)
	}
	if rec := create(false); rec.Code != http.StatusConflict {
		t.Errorf("duplicate create: expected 409, got %d", rec.Code)
	}
	if rec := create(true); rec.Code != http.StatusCreated {
		t.Errorf("confirmed create: expected 201, got %d", rec.Code)
	}
}

func TestRouter_ToggleUnknownIDAnswers200(t *testing.T) {
	stack := newTestStack(t)
	token := stack.token(t, uuid.New())

	rec := stack.request(t, http.MethodPost, "/api/v1/habits/toggle", token, map[string]string{
		"id": uuid.New().String(),
	})
	if rec.Code != http.StatusOK {
		t.Errorf("toggle of unknown ID must answer 200, got %d", rec.Code)
	}
}

func TestRouter_UpdateUnknownIDAnswers404(t *testing.T) {
	stack := newTestStack(t)
	token := stack.token(t, uuid.New())

	rec := stack.request(t, http.MethodPost, "/api/v1/habits/update", token, map[string]any{
		"id":   uuid.New().String(),
		"name": "New name",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_MethodGuards(t *testing.T) {
	stack := newTestStack(t)
	token := stack.token(t, uuid.New())

	rec := stack.request(t, http.MethodGet, "/api/v1/habits/create", token, nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestRouter_StreakEndpoint(t *testing.T) {
	stack := newTestStack(t)
	token := stack.token(t, uuid.New())

	rec := stack.request(t, http.MethodGet, "/api/v1/streak", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Streak     int32  `json:"streak"`
		BestStreak int32  `json:"best_streak"`
		LastDate   string `json:"last_date"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Streak != 0 {
		t.Errorf("fresh user must start at streak 0, got %d", resp.Streak)
	}
}

func TestRouter_DailyStatsToday(t *testing.T) {
	stack := newTestStack(t)
	token := stack.token(t, uuid.New())

	today := int(time.Now().Weekday())
	rec := stack.request(t, http.MethodPost, "/api/v1/habits/create", token, map[string]any{
		"days": map[string]any{
			fmt.Sprintf("%d", today): map[string]string{"name": "Read", "time": "08:00"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rec.Code)
	}
	var created struct {
		Habits []habitResponse `json:"habits"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	rec = stack.request(t, http.MethodPost, "/api/v1/habits/toggle", token, map[string]string{
		"id": created.Habits[0].ID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: expected 200, got %d", rec.Code)
	}

	rec = stack.request(t, http.MethodGet, "/api/v1/stats/daily", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var stats struct {
		Total     int `json:"total"`
		Completed int `json:"completed"`
		Rate      int `json:"rate"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stats.Total != 1 || stats.Completed != 1 || stats.Rate != 100 {
		t.Errorf("expected 1/1 at 100%%, got %+v", stats)
	}
}
