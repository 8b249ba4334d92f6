package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dasom-care/dasom-backend/internal/services"
	"github.com/dasom-care/dasom-backend/internal/utils"
)

type CallHandler struct {
	history services.CallHistoryService
}

func NewCallHandler(history services.CallHistoryService) *CallHandler {
	return &CallHandler{history: history}
}

func (h *CallHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)

	rows, err := h.history.ListCalls(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": rows})
}

func (h *CallHandler) Messages(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")
	call, err := h.history.GetCall(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	if call.UserID != "" && call.UserID != userID {
		writeError(c, utils.E(utils.CodeForbidden, "CallHandler.Messages", "forbidden", nil))
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	rows, err := h.history.ListMessages(c.Request.Context(), sessionID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": rows})
}
