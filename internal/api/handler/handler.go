package handler

import "khatib-jumat/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Health       *HealthHandler
	Schedule     *ScheduleHandler
	Registration *RegistrationHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
// cache 为 nil 表示未启用 Redis
func NewHandler(svc *service.Service, db Pinger, cache CachePinger) *Handler {
	return &Handler{
		Health:       NewHealthHandler(db, cache),
		Schedule:     NewScheduleHandler(svc.Schedule, svc.Registration),
		Registration: NewRegistrationHandler(svc.Registration),
		Export:       NewExportHandler(svc.Export, svc.Schedule.DefaultYear()),
	}
}
