package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dasom-care/dasom-backend/internal/models"
	"github.com/dasom-care/dasom-backend/internal/services"
	"github.com/dasom-care/dasom-backend/internal/utils"
)

type WelfareHandler struct {
	svc services.WelfareService
}

func NewWelfareHandler(svc services.WelfareService) *WelfareHandler {
	return &WelfareHandler{svc: svc}
}

func (h *WelfareHandler) Search(c *gin.Context) {
	keyword := c.Query("keyword")
	region := c.Query("region")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	rows, err := h.svc.Search(c.Request.Context(), keyword, region, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": rows})
}

// Upsert is the admin entry for manual catalog fixes; the sync worker covers
// the regular path.
func (h *WelfareHandler) Upsert(c *gin.Context) {
	var svc models.WelfareService
	if err := c.ShouldBindJSON(&svc); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "WelfareHandler.Upsert", "invalid request body", err))
		return
	}
	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}

	if err := h.svc.Upsert(c.Request.Context(), &svc); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *WelfareHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	rows, err := h.svc.List(c.Request.Context(), offset, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": rows})
}
