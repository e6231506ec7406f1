package api

import (
	"github.com/gofiber/fiber/v2"

	"studynotes/app/agent"
)

type CheckHandler struct {
	analyzer *agent.Analyzer
}

func NewCheckHandler(analyzer *agent.Analyzer) *CheckHandler {
	return &CheckHandler{analyzer: analyzer}
}

func (h *CheckHandler) HandleHealthy(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"result":      "ok",
		"ai_analysis": h.analyzer.Enabled(),
	})
}
