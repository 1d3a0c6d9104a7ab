package handler

import (
	"net/http"

	"library-backend/internal/models"
	"library-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RemovalHandler interface {
	List(c *gin.Context)
}

type removalHandler struct {
	audit service.RemovalAudit
	log   *logrus.Logger
}

func NewRemovalHandler(audit service.RemovalAudit, log *logrus.Logger) RemovalHandler {
	return &removalHandler{audit: audit, log: log}
}

func (h *removalHandler) List(c *gin.Context) {
	subjectType := models.RemovalSubject(c.Param("subject"))
	records, err := h.audit.List(subjectType)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, withTokens(c, gin.H{"removals": records}))
}
