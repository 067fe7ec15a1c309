package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"khatib-jumat/internal/dto"
	"khatib-jumat/internal/service"
	"khatib-jumat/pkg/response"
)

// RegistrationHandler 报名模块 HTTP 处理器
type RegistrationHandler struct {
	registrationSvc service.RegistrationService
}

// NewRegistrationHandler 创建 RegistrationHandler
func NewRegistrationHandler(registrationSvc service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationSvc: registrationSvc}
}

// Claim 认领某个周五
// POST /api/v1/schedules/:date/registration
func (h *RegistrationHandler) Claim(c *gin.Context) {
	var req dto.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 21001, "Format data tidak valid")
		return
	}

	reg, err := h.registrationSvc.Claim(c.Request.Context(), c.Param("date"), &req)
	if err != nil {
		h.handleRegistrationError(c, err)
		return
	}

	response.Created(c, reg)
}

// List 管理端：列出全部报名
// GET /api/v1/admin/registrations
func (h *RegistrationHandler) List(c *gin.Context) {
	list, err := h.registrationSvc.List(c.Request.Context())
	if err != nil {
		h.handleRegistrationError(c, err)
		return
	}

	response.OKList(c, list, len(list))
}

// Get 管理端：查看某日期的报名
// GET /api/v1/admin/registrations/:date
func (h *RegistrationHandler) Get(c *gin.Context) {
	reg, err := h.registrationSvc.GetByDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		h.handleRegistrationError(c, err)
		return
	}

	response.OK(c, reg)
}

// Delete 管理端：撤销某日期的报名（幂等）
// DELETE /api/v1/admin/registrations/:date
func (h *RegistrationHandler) Delete(c *gin.Context) {
	if err := h.registrationSvc.Release(c.Request.Context(), c.Param("date")); err != nil {
		h.handleRegistrationError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleRegistrationError 将 Service 层错误映射为 HTTP 响应
func (h *RegistrationHandler) handleRegistrationError(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		response.ValidationFailed(c, 21001, "Data pendaftaran tidak valid", ve.Fields)
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 21002, "Format tanggal harus YYYY-MM-DD")
	case errors.Is(err, service.ErrSlotAlreadyClaimed):
		response.Conflict(c, 21003, "Maaf, jadwal pada tanggal ini sudah terisi. Silakan pilih tanggal lain.")
	case errors.Is(err, service.ErrRegistrationNotFound):
		response.NotFound(c, 21004, "Jadwal khutbah tidak ditemukan")
	default: // ErrStore 及未知错误
		response.InternalError(c)
	}
}
