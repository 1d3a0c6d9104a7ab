package handler

import (
	"net/http"
	"strconv"

	"library-backend/internal/models"
	"library-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ReservationHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Receive(c *gin.Context)
	Overdue(c *gin.Context)
}

type reservationHandler struct {
	ledger service.CirculationLedger
	log    *logrus.Logger
}

func NewReservationHandler(ledger service.CirculationLedger, log *logrus.Logger) ReservationHandler {
	return &reservationHandler{ledger: ledger, log: log}
}

func (h *reservationHandler) List(c *gin.Context) {
	reservations, err := h.ledger.ListReservations()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, withTokens(c, gin.H{"reservations": reservations}))
}

type CreateReservationRequest struct {
	HoldingID string `json:"holding_id" binding:"required"` // holding serial number
	Duration  int    `json:"duration" binding:"required"`   // loan length in days
	Position  int    `json:"position" binding:"required"`   // member role class
	Index     string `json:"index" binding:"required"`      // member unique id
}

func (h *reservationHandler) Create(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for reservation: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reservation, err := h.ledger.CreateReservation(
		models.RoleClass(req.Position), req.Index, req.HoldingID, req.Duration)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, withTokens(c, gin.H{
		"message":     "Reservation Record Added",
		"reservation": reservation,
	}))
}

func (h *reservationHandler) Receive(c *gin.Context) {
	reservationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation id"})
		return
	}

	reservation, err := h.ledger.Receive(reservationID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, withTokens(c, gin.H{
		"message":     "Reservation Record Updated",
		"reservation": reservation,
	}))
}

func (h *reservationHandler) Overdue(c *gin.Context) {
	overdue, err := h.ledger.ListOverdue()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, withTokens(c, gin.H{"overdue": overdue}))
}
