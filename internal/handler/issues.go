package handler

import (
	"net/http"

	"library-backend/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// IssueHandler exposes the catalog read model. Catalog management
// (authors, categories) is out of scope; only lookups live here.
type IssueHandler interface {
	List(c *gin.Context)
}

type issueHandler struct {
	issues repository.IssueRepository
	log    *logrus.Logger
}

func NewIssueHandler(issues repository.IssueRepository, log *logrus.Logger) IssueHandler {
	return &issueHandler{issues: issues, log: log}
}

func (h *issueHandler) List(c *gin.Context) {
	issues, err := h.issues.List()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, withTokens(c, gin.H{"issues": issues}))
}
