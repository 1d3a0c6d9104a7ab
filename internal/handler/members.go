package handler

import (
	"net/http"
	"strconv"

	"library-backend/internal/middleware"
	"library-backend/internal/models"
	"library-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type MemberHandler interface {
	List(c *gin.Context)
	Register(c *gin.Context)
	Ban(c *gin.Context)
}

type memberHandler struct {
	directory service.MembershipDirectory
	log       *logrus.Logger
}

func NewMemberHandler(directory service.MembershipDirectory, log *logrus.Logger) MemberHandler {
	return &memberHandler{directory: directory, log: log}
}

func (h *memberHandler) List(c *gin.Context) {
	members, err := h.directory.List()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, withTokens(c, gin.H{"members": members}))
}

type RegisterMemberRequest struct {
	Name     string  `json:"name" binding:"required"`
	Mobile   string  `json:"mobile" binding:"required"`
	Position int     `json:"position" binding:"required"`
	Index    string  `json:"index" binding:"required"`
	Grade    *string `json:"grade"`
	Class    *string `json:"class"`
	RoleID   *int64  `json:"role_id"`
}

func (h *memberHandler) Register(c *gin.Context) {
	var req RegisterMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for member registration: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.directory.Register(models.RegisterMemberInput{
		RoleClass:   models.RoleClass(req.Position),
		UniqueID:    req.Index,
		Name:        req.Name,
		Mobile:      req.Mobile,
		Grade:       req.Grade,
		Class:       req.Class,
		StaffRoleID: req.RoleID,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, withTokens(c, gin.H{
		"message": "Member added successfully",
		"member":  member,
	}))
}

type BanRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *memberHandler) Ban(c *gin.Context) {
	memberID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member id"})
		return
	}

	var req BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reason is required"})
		return
	}

	actor := middleware.CurrentClaims(c)
	record, err := h.directory.Ban(memberID, req.Reason, actor.UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, withTokens(c, gin.H{
		"message": "Member deleted successfully",
		"removal": record,
	}))
}
