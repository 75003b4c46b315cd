package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/Nina932/nyx/internal/auth"
	"github.com/Nina932/nyx/internal/ledger"
	"github.com/Nina932/nyx/internal/middleware"
	"github.com/Nina932/nyx/internal/services"
	"github.com/Nina932/nyx/pkg/response"
	"github.com/gin-gonic/gin"
)

type AIHandler struct {
	proxy  *services.AIProxyService
	ledger *ledger.Ledger
}

func NewAIHandler(proxy *services.AIProxyService, l *ledger.Ledger) *AIHandler {
	return &AIHandler{proxy: proxy, ledger: l}
}

// generate binds the body into T and runs one capability for the caller.
func generate[T any](c *gin.Context, call func(context.Context, *auth.Identity, T) (interface{}, error)) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, invalidBody)
		return
	}
	result, err := call(c.Request.Context(), middleware.GetIdentity(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, result)
}

// Chat answers a free-form HR question.
// POST /api/ai/chat
func (h *AIHandler) Chat(c *gin.Context) { generate(c, h.proxy.Chat) }

// CareerPath suggests the next roles for one employee.
// POST /api/ai/career-path
func (h *AIHandler) CareerPath(c *gin.Context) { generate(c, h.proxy.CareerPath) }

// SkillGap compares workforce skills with role requirements.
// POST /api/ai/skill-gap
func (h *AIHandler) SkillGap(c *gin.Context) { generate(c, h.proxy.SkillGap) }

// POST /api/ai/analyze-performance
func (h *AIHandler) AnalyzePerformance(c *gin.Context) { generate(c, h.proxy.Performance) }

// POST /api/ai/analyze-document
func (h *AIHandler) AnalyzeDocument(c *gin.Context) { generate(c, h.proxy.Document) }

// POST /api/ai/policy-qa
func (h *AIHandler) PolicyQA(c *gin.Context) { generate(c, h.proxy.PolicyQA) }

// POST /api/ai/simulation
func (h *AIHandler) Simulation(c *gin.Context) { generate(c, h.proxy.Simulation) }

// Usage returns the caller's most recent usage records, newest first.
// GET /api/ai/usage
func (h *AIHandler) Usage(c *gin.Context) {
	records, err := h.ledger.ListRecent(c.Request.Context(), middleware.GetUserID(c), ledger.HistoryLimit)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, records)
}

// UsageStats aggregates usage across all callers.
// GET /api/ai/usage/stats
func (h *AIHandler) UsageStats(c *gin.Context) {
	stats, err := h.ledger.Stats(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		var bad *ledger.ErrBadDate
		if errors.As(err, &bad) {
			response.BadRequest(c, fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD", bad.Value))
			return
		}
		fail(c, err)
		return
	}
	response.Success(c, stats)
}
