package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"elog-backend/internal/domains/logbook/model"
	"elog-backend/internal/domains/logbook/service"
	"elog-backend/internal/shared/response"
)

type LogbookHandler struct {
	logbookService service.Service
}

func NewLogbookHandler(logbookService service.Service) *LogbookHandler {
	return &LogbookHandler{
		logbookService: logbookService,
	}
}

// List returns all logbooks
// GET /api/v1/logbooks
func (h *LogbookHandler) List(c *gin.Context) {
	logbooks, err := h.logbookService.ListAll(c.Request.Context())
	if err != nil {
		response.InternalServerError(c, err.Error())
		return
	}
	response.Success(c, http.StatusOK, logbooks)
}

// Get returns one logbook with its shifts and tags
// GET /api/v1/logbooks/:id
func (h *LogbookHandler) Get(c *gin.Context) {
	logbook, err := h.logbookService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, model.ErrLogbookNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalServerError(c, err.Error())
		return
	}
	response.Success(c, http.StatusOK, logbook)
}
