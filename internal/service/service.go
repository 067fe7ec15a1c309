package service

import (
	"go.uber.org/zap"

	"khatib-jumat/config"
	"khatib-jumat/internal/repository"
	"khatib-jumat/pkg/metrics"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Schedule     ScheduleService
	Registration RegistrationService
	Export       ExportService
}

// NewService 创建 Service 聚合
// cache 可为 nil（未启用 Redis 时直接读数据库）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	cache RegistrationCache,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		Schedule:     NewScheduleService(cfg, repo, cache, logger),
		Registration: NewRegistrationService(cfg, repo, cache, m, logger),
		Export:       NewExportService(repo, logger),
	}
}
