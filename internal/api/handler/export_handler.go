package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"khatib-jumat/internal/dto"
	"khatib-jumat/internal/service"
	"khatib-jumat/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc   service.ExportService
	defaultYear int
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, defaultYear int) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, defaultYear: defaultYear}
}

// ExportRegistrations 导出年度讲道排期
// GET /api/v1/admin/registrations/export?year=2026
func (h *ExportHandler) ExportRegistrations(c *gin.Context) {
	var q dto.ScheduleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 20001, "Parameter tahun tidak valid")
		return
	}
	if q.Year == 0 {
		q.Year = h.defaultYear
	}

	buf, filename, err := h.exportSvc.ExportRegistrations(c.Request.Context(), q.Year)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidYear):
		response.BadRequest(c, 20001, "Parameter tahun tidak valid")
	default: // ErrStore、ErrExportGenerateFail 及未知错误
		response.InternalError(c)
	}
}
