package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"elog-backend/internal/domains/entry/model"
	"elog-backend/internal/domains/entry/service"
	"elog-backend/internal/shared/response"
)

// =====================================================
// ENTRY HANDLER
// =====================================================

type EntryHandler struct {
	entryService service.EntryService
}

func NewEntryHandler(entryService service.EntryService) *EntryHandler {
	return &EntryHandler{
		entryService: entryService,
	}
}

// =====================================================
// HELPER FUNCTIONS
// =====================================================

// getCreator extracts the authenticated identity set by the auth middleware.
func getCreator(c *gin.Context) (model.Creator, bool) {
	userName, exists := c.Get("user_name")
	if !exists {
		return model.Creator{}, false
	}
	firstName, _ := c.Get("first_name")
	lastName, _ := c.Get("last_name")

	creator := model.Creator{UserName: userName.(string)}
	if s, ok := firstName.(string); ok {
		creator.FirstName = s
	}
	if s, ok := lastName.(string); ok {
		creator.LastName = s
	}
	return creator, true
}

func queryBool(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(c.DefaultQuery(name, "false"))
	return err == nil && v
}

// mapEntryError maps a service error to HTTP status and code.
func mapEntryError(err error) (int, string) {
	var entryErr *model.EntryError
	code := "INTERNAL_ERROR"
	if errors.As(err, &entryErr) {
		code = entryErr.Code
	}

	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, code
	case errors.Is(err, model.ErrEntryNotFound):
		return http.StatusNotFound, code
	case errors.Is(err, model.ErrShiftNotFound):
		return http.StatusNotFound, code
	case errors.Is(err, model.ErrAlreadySuperseded):
		return http.StatusConflict, code
	case errors.Is(err, model.ErrDuplicateOrigin):
		return http.StatusConflict, code
	case errors.Is(err, model.ErrIndexCorruption):
		return http.StatusInternalServerError, code
	default:
		return http.StatusInternalServerError, code
	}
}

// =====================================================
// WRITE ENDPOINTS
// =====================================================

// CreateEntry creates a new entry
// POST /api/v1/entries
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	creator, ok := getCreator(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req model.NewEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	id, err := h.entryService.CreateNew(c.Request.Context(), &req, creator)
	if err != nil {
		statusCode, errCode := mapEntryError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"id": id})
}

// SupersedeEntry creates the new version of an entry
// POST /api/v1/entries/:id/supersede
func (h *EntryHandler) SupersedeEntry(c *gin.Context) {
	creator, ok := getCreator(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req model.NewEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	id, err := h.entryService.CreateSupersede(c.Request.Context(), c.Param("id"), &req, creator)
	if err != nil {
		statusCode, errCode := mapEntryError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"id": id})
}

// CreateFollowUp creates a follow-up of an entry
// POST /api/v1/entries/:id/follow-ups
func (h *EntryHandler) CreateFollowUp(c *gin.Context) {
	creator, ok := getCreator(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req model.NewEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	id, err := h.entryService.CreateFollowUp(c.Request.Context(), c.Param("id"), &req, creator)
	if err != nil {
		statusCode, errCode := mapEntryError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"id": id})
}

// =====================================================
// READ ENDPOINTS
// =====================================================

// GetEntry returns the full view of an entry with opt-in expansions
// GET /api/v1/entries/:id
func (h *EntryHandler) GetEntry(c *gin.Context) {
	opts := model.ExpandOptions{
		FollowUps:    queryBool(c, "includeFollowUps"),
		FollowingUp:  queryBool(c, "includeFollowingUp"),
		History:      queryBool(c, "includeHistory"),
		References:   queryBool(c, "includeReferences"),
		ReferencedBy: queryBool(c, "includeReferencedBy"),
		SupersededBy: queryBool(c, "includeSupersededBy"),
	}

	entry, err := h.entryService.GetFull(c.Request.Context(), c.Param("id"), opts)
	if err != nil {
		statusCode, errCode := mapEntryError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}

	response.Success(c, http.StatusOK, entry)
}

// SearchEntries runs the anchored window search
// GET /api/v1/entries
func (h *EntryHandler) SearchEntries(c *gin.Context) {
	q, err := parseQueryWithAnchor(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	entries, err := h.entryService.SearchAll(c.Request.Context(), q)
	if err != nil {
		statusCode, errCode := mapEntryError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}

	meta := &response.Meta{
		ContextSize: q.ContextSize,
		Anchor:      q.AnchorID,
		Total:       len(entries),
	}
	if q.Limit != nil {
		meta.Limit = *q.Limit
	}
	response.SuccessWithMeta(c, http.StatusOK, entries, meta)
}

// GetReferences lists the live entries referencing this one
// GET /api/v1/entries/:id/references
func (h *EntryHandler) GetReferences(c *gin.Context) {
	entries, err := h.entryService.GetReferences(c.Request.Context(), c.Param("id"))
	if err != nil {
		statusCode, errCode := mapEntryError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}
	response.Success(c, http.StatusOK, entries)
}

// GetFollowUps lists the follow-ups of an entry
// GET /api/v1/entries/:id/follow-ups
func (h *EntryHandler) GetFollowUps(c *gin.Context) {
	entries, err := h.entryService.GetFollowUps(c.Request.Context(), c.Param("id"))
	if err != nil {
		statusCode, errCode := mapEntryError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}
	response.Success(c, http.StatusOK, entries)
}

// GetSummaryID resolves the summary entry of a shift occurrence
// GET /api/v1/entries/summaries/:shiftId/:date
func (h *EntryHandler) GetSummaryID(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		response.BadRequest(c, "the date must be formatted as YYYY-MM-DD")
		return
	}

	id, err := h.entryService.FindSummaryID(c.Request.Context(), c.Param("shiftId"), date)
	if err != nil {
		statusCode, errCode := mapEntryError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}

// parseQueryWithAnchor reads the search parameters. Dates accept RFC 3339.
func parseQueryWithAnchor(c *gin.Context) (*model.QueryWithAnchor, error) {
	q := &model.QueryWithAnchor{
		AnchorID:       c.Query("anchor"),
		Logbooks:       c.QueryArray("logbooks"),
		Tags:           c.QueryArray("tags"),
		Authors:        c.QueryArray("authors"),
		Search:         c.Query("search"),
		RequireAllTags: queryBool(c, "requireAllTags"),
		SortByLogDate:  queryBool(c, "sortByLogDate"),
		HideSummaries:  queryBool(c, "hideSummaries"),
	}

	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("the limit must be an integer")
		}
		q.Limit = &limit
	}
	if v := c.Query("contextSize"); v != "" {
		contextSize, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("the context size must be an integer")
		}
		q.ContextSize = contextSize
	}
	if v := c.Query("lastNShifts"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("the number of shifts must be an integer")
		}
		q.LastNShifts = &n
	}
	if v := c.Query("originId"); v != "" {
		q.OriginID = &v
	}
	if v := c.Query("startDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, errors.New("the start date must be formatted as RFC 3339")
		}
		q.StartDate = &t
	}
	if v := c.Query("endDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, errors.New("the end date must be formatted as RFC 3339")
		}
		q.EndDate = &t
	}
	return q, nil
}
