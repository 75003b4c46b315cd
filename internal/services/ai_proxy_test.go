package services

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/Nina932/nyx/internal/auth"
	"github.com/Nina932/nyx/internal/gateway"
	"github.com/Nina932/nyx/internal/ledger"
	"github.com/Nina932/nyx/internal/models"
	"github.com/Nina932/nyx/internal/prompts"
	"github.com/Nina932/nyx/internal/testutil"
	"github.com/Nina932/nyx/pkg/response"
	"github.com/shopspring/decimal"
)

// stubGateway decodes a canned reply through the envelope, like the real
// client does.
type stubGateway struct {
	reply string
	err   error
	calls atomic.Int32
}

func (g *stubGateway) Generate(_ context.Context, env *prompts.Envelope) (*gateway.Result, error) {
	g.calls.Add(1)
	if g.err != nil {
		return nil, g.err
	}
	v, err := env.Decode(g.reply)
	if err != nil {
		return nil, errors.Join(gateway.ErrUpstream, err)
	}
	return &gateway.Result{Provider: "stub", Model: env.Model, Text: g.reply, Value: v}, nil
}

type failingWriter struct{ calls atomic.Int32 }

func (w *failingWriter) Write(context.Context, *models.UsageRecord) error {
	w.calls.Add(1)
	return errors.New("database is locked")
}
func (w *failingWriter) IsAsync() bool { return false }
func (w *failingWriter) Close() error  { return nil }

var employeeCaller = &auth.Identity{Subject: "user-1", Role: auth.RoleEmployee}

func newProxy(t *testing.T, gw gateway.Gateway) (*AIProxyService, *ledger.Ledger) {
	t.Helper()
	l := ledger.New(testutil.NewDB(t))
	builder := prompts.NewBuilder(prompts.Models{Fast: "fast", Pro: "pro"})
	return NewAIProxyService(builder, gw, ledger.NewSyncWriter(l), 0.000001), l
}

func TestAIProxyChatRecordsUsage(t *testing.T) {
	gw := &stubGateway{reply: "Hello from the model"}
	svc, l := newProxy(t, gw)

	out, err := svc.Chat(context.Background(), employeeCaller, prompts.ChatRequest{Prompt: "hello"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if tr, ok := out.(prompts.TextResult); !ok || tr.Text != "Hello from the model" {
		t.Errorf("unexpected result %#v", out)
	}

	recs, err := l.ListRecent(context.Background(), "user-1", ledger.HistoryLimit)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 usage record, got %d", len(recs))
	}
	if recs[0].Endpoint != "chat" || recs[0].Tokens != 5 {
		t.Errorf("unexpected record %+v", recs[0])
	}
	if !recs[0].Cost.Equal(decimal.RequireFromString("0.000005")) {
		t.Errorf("unexpected cost %s", recs[0].Cost)
	}
}

func TestAIProxyBuilderRejectionSkipsGateway(t *testing.T) {
	gw := &stubGateway{reply: "{}"}
	svc, l := newProxy(t, gw)

	_, err := svc.CareerPath(context.Background(), employeeCaller, prompts.CareerPathRequest{})

	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if appErr.Message != "Employee data is required" {
		t.Errorf("unexpected message %q", appErr.Message)
	}
	if n := gw.calls.Load(); n != 0 {
		t.Errorf("gateway called %d times", n)
	}
	if recs, _ := l.ListRecent(context.Background(), "user-1", 10); len(recs) != 0 {
		t.Errorf("expected no usage record, got %d", len(recs))
	}
}

func TestAIProxyUpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		gw      *stubGateway
		status  int
		message string
	}{
		{"non json skill gap", &stubGateway{reply: "Sorry, I cannot help"}, http.StatusBadGateway, "Failed to analyze skill gaps"},
		{"provider error", &stubGateway{err: gateway.ErrUpstream}, http.StatusBadGateway, "Failed to analyze skill gaps"},
		{"timeout", &stubGateway{err: gateway.ErrTimeout}, http.StatusGatewayTimeout, "AI service timed out"},
	}
	req := prompts.SkillGapRequest{
		Employees: []prompts.EmployeeProfile{{Name: prompts.Localized{En: "Ana"}, Skills: []string{"Go"}}},
		Roles:     []prompts.RoleProfile{{Title: prompts.Localized{En: "Lead"}, RequiredSkills: []string{"Go", "K8s"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, l := newProxy(t, tt.gw)
			_, err := svc.SkillGap(context.Background(), employeeCaller, req)

			var appErr *response.AppError
			if !errors.As(err, &appErr) || appErr.HTTPStatus != tt.status {
				t.Fatalf("expected %d, got %v", tt.status, err)
			}
			if appErr.Message != tt.message {
				t.Errorf("expected %q, got %q", tt.message, appErr.Message)
			}
			if recs, _ := l.ListRecent(context.Background(), "user-1", 10); len(recs) != 0 {
				t.Errorf("failed call must not be recorded, got %d records", len(recs))
			}
		})
	}
}

func TestAIProxyLedgerFailureIsSwallowed(t *testing.T) {
	w := &failingWriter{}
	builder := prompts.NewBuilder(prompts.Models{Fast: "fast", Pro: "pro"})
	svc := NewAIProxyService(builder, &stubGateway{reply: "answer"}, w, 0.000001)

	out, err := svc.PolicyQA(context.Background(), employeeCaller, prompts.PolicyQARequest{
		Policy:   &prompts.PolicyText{Title: prompts.Localized{En: "Leave"}, Content: prompts.Localized{En: "20 days"}},
		Question: "How many days?",
	})
	if err != nil {
		t.Fatalf("ledger failure leaked: %v", err)
	}
	if tr, ok := out.(prompts.TextResult); !ok || tr.Text != "answer" {
		t.Errorf("unexpected result %#v", out)
	}
	if w.calls.Load() != 1 {
		t.Errorf("expected one write attempt, got %d", w.calls.Load())
	}
}

func TestAIProxyStructuredResults(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		call  func(*AIProxyService) (interface{}, error)
		check func(t *testing.T, v interface{})
	}{
		{
			name:  "skill gap sorted and capped",
			reply: `[{"skill":"a","gapCount":1,"importance":"Low","recommendedTraining":[]},{"skill":"b","gapCount":2,"importance":"High","recommendedTraining":[]},{"skill":"c","gapCount":0,"importance":"Medium","recommendedTraining":[]},{"skill":"d","gapCount":3,"importance":"High","recommendedTraining":[]}]`,
			call: func(s *AIProxyService) (interface{}, error) {
				return s.SkillGap(context.Background(), employeeCaller, prompts.SkillGapRequest{
					Employees: []prompts.EmployeeProfile{{}},
					Roles:     []prompts.RoleProfile{{}},
				})
			},
			check: func(t *testing.T, v interface{}) {
				gaps := v.([]prompts.SkillGap)
				if len(gaps) != prompts.MaxSkillGaps {
					t.Fatalf("expected %d gaps, got %d", prompts.MaxSkillGaps, len(gaps))
				}
				if gaps[0].Skill != "b" || gaps[1].Skill != "d" || gaps[2].Skill != "c" {
					t.Errorf("unexpected order: %+v", gaps)
				}
			},
		},
		{
			name:  "document summary",
			reply: "A short summary.",
			call: func(s *AIProxyService) (interface{}, error) {
				return s.Document(context.Background(), employeeCaller, prompts.DocumentRequest{Text: "long text", Task: prompts.TaskSummarize})
			},
			check: func(t *testing.T, v interface{}) {
				if v.(prompts.TextResult).Text != "A short summary." {
					t.Errorf("unexpected text %#v", v)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newProxy(t, &stubGateway{reply: tt.reply})
			v, err := tt.call(svc)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, v)
		})
	}
}

func TestAIProxyRequiresCaller(t *testing.T) {
	gw := &stubGateway{reply: "x"}
	svc, _ := newProxy(t, gw)
	_, err := svc.Chat(context.Background(), nil, prompts.ChatRequest{Prompt: "hi"})
	if response.KindOf(err) != response.KindUnauthorized {
		t.Errorf("expected unauthorized, got %v", err)
	}
	if gw.calls.Load() != 0 {
		t.Error("gateway must not be called without a caller")
	}
}
