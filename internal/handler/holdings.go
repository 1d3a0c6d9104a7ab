package handler

import (
	"net/http"
	"strconv"

	"library-backend/internal/middleware"
	"library-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type HoldingHandler interface {
	Create(c *gin.Context)
	Available(c *gin.Context)
	ByIssue(c *gin.Context)
	Remove(c *gin.Context)
}

type holdingHandler struct {
	ledger service.CirculationLedger
	log    *logrus.Logger
}

func NewHoldingHandler(ledger service.CirculationLedger, log *logrus.Logger) HoldingHandler {
	return &holdingHandler{ledger: ledger, log: log}
}

type CreateHoldingRequest struct {
	SerialNo string `json:"serial_no" binding:"required"`
	IssueID  int64  `json:"issue_id" binding:"required"`
}

func (h *holdingHandler) Create(c *gin.Context) {
	var req CreateHoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for holding creation: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	holding, err := h.ledger.CreateHolding(req.SerialNo, req.IssueID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, withTokens(c, gin.H{
		"message": "Holding created",
		"holding": holding,
	}))
}

func (h *holdingHandler) Available(c *gin.Context) {
	availability, err := h.ledger.IsAvailable(c.Param("serial"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, withTokens(c, gin.H{
		"status": availability.Available,
		"title":  availability.Title,
	}))
}

func (h *holdingHandler) ByIssue(c *gin.Context) {
	issueID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue id"})
		return
	}

	holdings, err := h.ledger.HoldingsForIssue(issueID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, withTokens(c, gin.H{"holdings": holdings}))
}

type RemoveHoldingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *holdingHandler) Remove(c *gin.Context) {
	var req RemoveHoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reason Cannot Be Empty"})
		return
	}

	actor := middleware.CurrentClaims(c)
	record, err := h.ledger.RemoveHolding(c.Param("serial"), req.Reason, actor.UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, withTokens(c, gin.H{
		"message": "Holding deleted",
		"removal": record,
	}))
}
