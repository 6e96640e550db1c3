package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfoliolab/internal/engine"
)

const maxBatchSize = 64

type Handler struct {
	runner Runner
	log    *zap.Logger
}

func NewHandler(runner Runner, log *zap.Logger) *Handler {
	return &Handler{runner: runner, log: log}
}

type batchRequest struct {
	Requests    []engine.Request `json:"requests"`
	Parallelism int              `json:"parallelism"`
}

// RunBacktest POST /api/backtests
func (h *Handler) RunBacktest(c *gin.Context) {
	var req engine.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.runner.Run(c.Request.Context(), req, nil)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// RunBatch POST /api/backtests/batch
func (h *Handler) RunBatch(c *gin.Context) {
	var body batchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(body.Requests) == 0 || len(body.Requests) > maxBatchSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "requests must hold between 1 and 64 backtests"})
		return
	}
	res, err := h.runner.RunBatch(c.Request.Context(), body.Requests, body.Parallelism)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(res), "results": res})
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrConfiguration):
		status = http.StatusBadRequest
	case errors.Is(err, engine.ErrPriceData):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		h.log.Error("backtest failed", zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
