package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Nina932/nyx/internal/auth"
	"github.com/Nina932/nyx/internal/config"
	"github.com/Nina932/nyx/internal/gateway"
	"github.com/Nina932/nyx/internal/ledger"
	"github.com/Nina932/nyx/internal/models"
	"github.com/Nina932/nyx/internal/prompts"
	"github.com/Nina932/nyx/internal/ratelimit"
	"github.com/Nina932/nyx/internal/services"
	"github.com/Nina932/nyx/internal/testutil"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeGateway struct {
	reply string
	calls atomic.Int32
}

func (g *fakeGateway) Generate(_ context.Context, env *prompts.Envelope) (*gateway.Result, error) {
	g.calls.Add(1)
	v, err := env.Decode(g.reply)
	if err != nil {
		return nil, errors.Join(gateway.ErrUpstream, err)
	}
	return &gateway.Result{Provider: "fake", Model: env.Model, Text: g.reply, Value: v}, nil
}

type testServer struct {
	router *gin.Engine
	app    *app
	db     *gorm.DB
	gw     *fakeGateway
	signer *auth.SecretVerifier
	clock  *testClock
}

// testClock drives the in-memory AI rate windows.
type testClock struct{ t time.Time }

func (c *testClock) now() time.Time       { return c.t }
func (c *testClock) add(d time.Duration) { c.t = c.t.Add(d) }

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Auth.Mode = config.AuthModeSecret
	cfg.Auth.Secret = "routes-test-secret"

	db := testutil.NewDB(t)
	gw := &fakeGateway{reply: "Hello"}
	clock := &testClock{t: time.Now()}
	signer := auth.NewSecretVerifier(cfg.Auth.Secret, time.Hour)
	a := newApp(cfg, infra{
		db:       db,
		gateway:  gw,
		store:    ratelimit.NewMemoryStoreWithClock(clock.now),
		usage:    ledger.NewSyncWriter(ledger.New(db)),
		verifier: signer,
		signer:   signer,
	})

	r := gin.New()
	registerRoutes(r, a)
	return &testServer{router: r, app: a, db: db, gw: gw, signer: signer, clock: clock}
}

func (s *testServer) token(t *testing.T, sub string, role auth.Role) string {
	t.Helper()
	tok, err := s.signer.Sign(auth.Identity{Subject: sub, Email: sub + "@nyx.ge", Role: role})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	s.router.ServeHTTP(w, req)
	return w
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return body.Error
}

func TestAIRequiresToken(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/ai/chat", "/api/ai/skill-gap", "/api/ai/simulation"} {
		w := s.do("POST", path, "", `{"prompt":"hi"}`)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, w.Code)
		}
	}
	if w := s.do("POST", "/api/ai/chat", "not-a-jwt", `{"prompt":"hi"}`); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad token, got %d", w.Code)
	}
	if n := s.gw.calls.Load(); n != 0 {
		t.Errorf("gateway called %d times without a credential", n)
	}
}

func TestAIRateLimitAndUsage(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, "user-1", auth.RoleEmployee)

	for i := 1; i <= 10; i++ {
		w := s.do("POST", "/api/ai/chat", tok, `{"prompt":"hello"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("call %d: expected 200, got %d: %s", i, w.Code, w.Body.String())
		}
	}
	w := s.do("POST", "/api/ai/chat", tok, `{"prompt":"hello"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("11th call: expected 429, got %d", w.Code)
	}
	if got := errorOf(t, w); got != "AI rate limit exceeded. Please try again later." {
		t.Errorf("unexpected message %q", got)
	}
	if n := s.gw.calls.Load(); n != 10 {
		t.Errorf("gateway called %d times, want 10", n)
	}

	// usage reads are not rate limited and do not change the ledger
	var first, second []models.UsageRecord
	for _, out := range []*[]models.UsageRecord{&first, &second} {
		w := s.do("GET", "/api/ai/usage", tok, "")
		if w.Code != http.StatusOK {
			t.Fatalf("usage: expected 200, got %d", w.Code)
		}
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("decode usage: %v", err)
		}
	}
	if len(first) != 10 || len(second) != 10 {
		t.Fatalf("expected 10 records, got %d and %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.ID != b.ID || a.Endpoint != b.Endpoint || a.Tokens != b.Tokens ||
			!a.Cost.Equal(b.Cost) || !a.CreatedAt.Equal(b.CreatedAt) {
			t.Errorf("record %d differs between reads: %+v vs %+v", i, a, b)
		}
	}
	for i, rec := range first {
		if rec.Endpoint != "chat" || rec.UserID != "user-1" || rec.Tokens != 5 {
			t.Errorf("record %d: unexpected %+v", i, rec)
		}
		if i > 0 && first[i-1].ID < rec.ID {
			t.Errorf("records not newest first at %d", i)
		}
	}

	other := s.token(t, "user-2", auth.RoleEmployee)
	w = s.do("GET", "/api/ai/usage", other, "")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("expected empty usage for another user, got %s", w.Body.String())
	}
}

func TestRateWindowSweepKeepsCallerLimited(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, "user-1", auth.RoleEmployee)
	chat := func() int {
		return s.do("POST", "/api/ai/chat", tok, `{"prompt":"hello"}`).Code
	}

	for i := 1; i <= 10; i++ {
		if code := chat(); code != http.StatusOK {
			t.Fatalf("call %d: expected 200, got %d", i, code)
		}
	}

	// the sweep job runs every 10 minutes; the hour window must survive it
	for i := 1; i <= 5; i++ {
		s.clock.add(11 * time.Minute)
		s.app.sweepRateWindows()
		if code := chat(); code != http.StatusTooManyRequests {
			t.Fatalf("after sweep at +%dm: expected 429, got %d", i*11, code)
		}
	}
	if n := s.gw.calls.Load(); n != 10 {
		t.Errorf("gateway called %d times, want 10", n)
	}

	s.clock.add(6 * time.Minute)
	s.app.sweepRateWindows()
	if code := chat(); code != http.StatusOK {
		t.Errorf("new window: expected 200, got %d", code)
	}
}

func TestAIAdminExempt(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, "admin-1", auth.RoleAdmin)
	for i := 1; i <= 15; i++ {
		if w := s.do("POST", "/api/ai/chat", tok, `{"prompt":"hello"}`); w.Code != http.StatusOK {
			t.Fatalf("admin call %d: expected 200, got %d", i, w.Code)
		}
	}
}

func TestAIBadRequestAndUpstreamFailures(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, "user-1", auth.RoleEmployee)

	w := s.do("POST", "/api/ai/career-path", tok, `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("career-path {}: expected 400, got %d", w.Code)
	}
	if w := s.do("POST", "/api/ai/chat", tok, `{"prompt":`); w.Code != http.StatusBadRequest {
		t.Errorf("malformed body: expected 400, got %d", w.Code)
	}
	if n := s.gw.calls.Load(); n != 0 {
		t.Errorf("gateway called %d times for invalid input", n)
	}

	s.gw.reply = "I cannot produce JSON today"
	w = s.do("POST", "/api/ai/skill-gap", tok, `{"employees":[{"name":"Nino","skills":["Go"]}],"roles":[{"title":"Backend","requiredSkills":["Go","SQL"]}]}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("skill-gap non-JSON: expected 502, got %d", w.Code)
	}
	if got := errorOf(t, w); got != "Failed to analyze skill gaps" {
		t.Errorf("unexpected message %q", got)
	}

	var count int64
	s.db.Model(&models.UsageRecord{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no usage records, got %d", count)
	}
}

func TestAISkillGapSuccess(t *testing.T) {
	s := newTestServer(t)
	s.gw.reply = "```json\n" + `[
		{"skill":"SQL","gapCount":2,"importance":"Low","recommendedTraining":["SQL 101"]},
		{"skill":"Go","gapCount":1,"importance":"High","recommendedTraining":["Tour of Go"]}
	]` + "\n```"
	w := s.do("POST", "/api/ai/skill-gap", s.token(t, "user-1", auth.RoleManager),
		`{"employees":[{"name":"Nino"}],"roles":[{"title":"Backend","requiredSkills":["Go","SQL"]}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var gaps []prompts.SkillGap
	if err := json.Unmarshal(w.Body.Bytes(), &gaps); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(gaps) != 2 || gaps[0].Skill != "Go" {
		t.Errorf("expected High first, got %+v", gaps)
	}
}

func TestUsageStatsAdminOnly(t *testing.T) {
	s := newTestServer(t)
	if w := s.do("GET", "/api/ai/usage/stats", s.token(t, "u", auth.RoleManager), ""); w.Code != http.StatusForbidden {
		t.Errorf("manager: expected 403, got %d", w.Code)
	}
	admin := s.token(t, "a", auth.RoleAdmin)
	s.do("POST", "/api/ai/chat", admin, `{"prompt":"hello"}`)

	w := s.do("GET", "/api/ai/usage/stats?start_date=2000-01-01", admin, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var stats ledger.Stats
	json.Unmarshal(w.Body.Bytes(), &stats)
	if stats.TotalCalls != 1 || len(stats.ByEndpoint) != 1 || stats.ByEndpoint[0].Endpoint != "chat" {
		t.Errorf("unexpected stats %+v", stats)
	}

	if w := s.do("GET", "/api/ai/usage/stats?end_date=31-12-2025", admin, ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad date: expected 400, got %d", w.Code)
	}
}

func TestEmployeeRoutes(t *testing.T) {
	s := newTestServer(t)
	employee := s.token(t, "e", auth.RoleEmployee)
	manager := s.token(t, "m", auth.RoleManager)
	body := `{"name":{"en":"Nino","ka":"ნინო"},"hireDate":"2024-01-15","skills":["Go"]}`

	if w := s.do("POST", "/api/employees", employee, body); w.Code != http.StatusForbidden {
		t.Errorf("employee create: expected 403, got %d", w.Code)
	}
	w := s.do("POST", "/api/employees", manager, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("manager create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created models.Employee
	json.Unmarshal(w.Body.Bytes(), &created)
	if created.Grade != "C" || created.ID == 0 {
		t.Errorf("unexpected employee %+v", created)
	}

	if w := s.do("GET", "/api/employees/abc", employee, ""); w.Code != http.StatusBadRequest || errorOf(t, w) != "Invalid employee ID" {
		t.Errorf("bad id: got %d %s", w.Code, w.Body.String())
	}
	if w := s.do("GET", "/api/employees/999", employee, ""); w.Code != http.StatusNotFound || errorOf(t, w) != "Employee not found" {
		t.Errorf("missing: got %d %s", w.Code, w.Body.String())
	}

	w = s.do("DELETE", "/api/employees/1", manager, "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"id":1}` {
		t.Errorf("delete: got %d %s", w.Code, w.Body.String())
	}

	var audits int64
	s.db.Model(&models.SystemLog{}).Where("module = ?", "employees").Count(&audits)
	if audits != 3 {
		t.Errorf("expected 3 audited writes, got %d", audits)
	}
}

func TestPolicyWritesAdminOnly(t *testing.T) {
	s := newTestServer(t)
	body := `{"title":{"en":"Leave"},"content":{"en":"24 days"}}`
	if w := s.do("POST", "/api/policies", s.token(t, "m", auth.RoleManager), body); w.Code != http.StatusForbidden {
		t.Errorf("manager: expected 403, got %d", w.Code)
	}
	if w := s.do("POST", "/api/policies", s.token(t, "a", auth.RoleAdmin), body); w.Code != http.StatusCreated {
		t.Errorf("admin: expected 201, got %d", w.Code)
	}
	if w := s.do("GET", "/api/policies", s.token(t, "e", auth.RoleEmployee), ""); w.Code != http.StatusOK {
		t.Errorf("employee read: expected 200, got %d", w.Code)
	}
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	w := s.do("POST", "/api/auth/register", "", `{"email":"new@nyx.ge","password":"pa55word","role":"ADMIN"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var reg services.AuthResult
	json.Unmarshal(w.Body.Bytes(), &reg)
	if reg.User.Role != "EMPLOYEE" || reg.Token == "" {
		t.Errorf("unexpected register result %+v", reg)
	}

	if w := s.do("POST", "/api/auth/login", "", `{"email":"new@nyx.ge","password":"wrong"}`); w.Code != http.StatusUnauthorized {
		t.Errorf("bad login: expected 401, got %d", w.Code)
	}

	w = s.do("GET", "/api/auth/me", reg.Token, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "new@nyx.ge") {
		t.Errorf("me: got %d %s", w.Code, w.Body.String())
	}

	var logs []models.SystemLog
	s.db.Where("module = ?", "auth").Find(&logs)
	if len(logs) != 2 {
		t.Fatalf("expected 2 audited auth writes, got %d", len(logs))
	}
	for _, l := range logs {
		if strings.Contains(string(l.Extra), "pa55word") || strings.Contains(string(l.Extra), "wrong") {
			t.Errorf("password leaked into audit log: %s", l.Extra)
		}
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/health", "/api/health"} {
		w := s.do("GET", path, "", "")
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ok"`) {
			t.Errorf("%s: got %d %s", path, w.Code, w.Body.String())
		}
	}
}
