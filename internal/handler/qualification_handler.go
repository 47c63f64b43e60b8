package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"registrum/internal/auditexport"
	"registrum/internal/service"
)

// QualificationHandler handles qualification endpoints.
type QualificationHandler struct {
	qualificationService service.QualificationService
}

// NewQualificationHandler creates a new QualificationHandler.
func NewQualificationHandler(qualificationService service.QualificationService) *QualificationHandler {
	return &QualificationHandler{qualificationService: qualificationService}
}

// Qualify handles POST /api/v1/qualifications
func (h *QualificationHandler) Qualify(c *gin.Context) {
	var input service.QualifyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	result, err := h.qualificationService.Qualify(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// Export handles POST /api/v1/qualifications/export?format=csv|xlsx
func (h *QualificationHandler) Export(c *gin.Context) {
	format, err := auditexport.ParseFormat(c.Query("format"))
	if err != nil {
		HandleError(c, err)
		return
	}

	var input service.QualifyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	out, err := h.qualificationService.Export(c.Request.Context(), input, format)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, out.Filename))
	c.Header("X-Qualification-Status", string(out.Result.Status))
	c.Data(http.StatusOK, out.ContentType, out.Data)
}

// Checklist handles GET /api/v1/checklist
func (h *QualificationHandler) Checklist(c *gin.Context) {
	RespondOK(c, h.qualificationService.Checklist())
}
