package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"khatib-jumat/internal/dto"
	"khatib-jumat/internal/service"
	"khatib-jumat/pkg/response"
)

// ScheduleHandler 排期模块 HTTP 处理器（公开接口）
type ScheduleHandler struct {
	scheduleSvc     service.ScheduleService
	registrationSvc service.RegistrationService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService, registrationSvc service.RegistrationService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc, registrationSvc: registrationSvc}
}

// GetSchedule 获取某年份按月分组的档期
// GET /api/v1/schedules?year=2026
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	var q dto.ScheduleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 20001, "Parameter tahun tidak valid")
		return
	}

	schedule, err := h.scheduleSvc.GetSchedule(c.Request.Context(), q.Year)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, schedule)
}

// ListSlots 获取某年份的平铺档期列表
// GET /api/v1/schedules/slots?year=2026
func (h *ScheduleHandler) ListSlots(c *gin.Context) {
	var q dto.ScheduleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 20001, "Parameter tahun tidak valid")
		return
	}

	slots, err := h.scheduleSvc.ListSlots(c.Request.Context(), q.Year)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OKList(c, slots, len(slots))
}

// ListDutyLocations 获取可选的任职单位
// GET /api/v1/duty-locations
func (h *ScheduleHandler) ListDutyLocations(c *gin.Context) {
	locs := h.registrationSvc.DutyLocations()
	response.OKList(c, locs, len(locs))
}

func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidYear):
		response.BadRequest(c, 20001, "Parameter tahun tidak valid")
	default: // ErrStore 及未知错误
		response.InternalError(c)
	}
}
