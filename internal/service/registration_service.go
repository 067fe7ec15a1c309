package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"khatib-jumat/config"
	"khatib-jumat/internal/dto"
	"khatib-jumat/internal/model"
	"khatib-jumat/internal/repository"
	pkgerrors "khatib-jumat/pkg/errors"
	"khatib-jumat/pkg/metrics"
)

// RegistrationService 报名业务接口（认领 / 撤销 / 管理端查询）
//
// 设计说明：
//   - 认领不做先查后写，也不持有锁；同一日期的并发认领由 uq_khatib_schedules_date 裁决，
//     失败方收到 ErrSlotAlreadyClaimed
//   - 撤销是幂等的：日期上没有报名时同样返回成功
//   - 任何失败都不会重试
type RegistrationService interface {
	Claim(ctx context.Context, isoDate string, req *dto.ClaimRequest) (*dto.RegistrationResponse, error)
	Release(ctx context.Context, isoDate string) error
	GetByDate(ctx context.Context, isoDate string) (*dto.RegistrationResponse, error)
	List(ctx context.Context) ([]dto.RegistrationResponse, error)
	DutyLocations() []string
}

type registrationService struct {
	repo     *repository.Repository
	source   *registrationSource
	validate *validator.Validate
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewRegistrationService 创建 RegistrationService 实例
func NewRegistrationService(
	cfg *config.Config,
	repo *repository.Repository,
	cache RegistrationCache,
	m *metrics.Metrics,
	logger *zap.Logger,
) RegistrationService {
	return &registrationService{
		repo:     repo,
		source:   newRegistrationSource(repo, cache, cfg.Redis.CacheTTL, logger),
		validate: newValidator(),
		metrics:  m,
		logger:   logger,
	}
}

// ────────────────────── Claim ──────────────────────

func (s *registrationService) Claim(ctx context.Context, isoDate string, req *dto.ClaimRequest) (*dto.RegistrationResponse, error) {
	// 1. 日期校验
	date, err := ParseISODate(isoDate)
	if err != nil {
		s.metrics.ObserveClaim(metrics.ResultInvalid)
		return nil, &ValidationError{Fields: map[string]string{"schedule_date": msgDateFormat}}
	}
	if !IsFriday(date) {
		s.metrics.ObserveClaim(metrics.ResultInvalid)
		return nil, &ValidationError{Fields: map[string]string{"schedule_date": msgNotFriday}}
	}

	// 2. 字段校验（在任何存储调用之前）
	normalizeClaim(req)
	if err := validateClaim(s.validate, req); err != nil {
		s.metrics.ObserveClaim(metrics.ResultInvalid)
		return nil, err
	}

	reg := &model.KhatibSchedule{
		ScheduleDate: date,
		NamaLengkap:  req.NamaLengkap,
		NIP:          req.NIP,
		NoHP:         req.NoHP,
		TempatTugas:  req.TempatTugas,
	}
	if req.Saran != "" {
		saran := req.Saran
		reg.Saran = &saran
	}

	// 3. 单次 INSERT
	if err := s.repo.Registration.Create(ctx, reg); err != nil {
		switch {
		case pkgerrors.IsUniqueViolation(err):
			s.metrics.ObserveClaim(metrics.ResultConflict)
			s.logger.Info("认领冲突：日期已被占用", zap.String("date", isoDate))
			return nil, ErrSlotAlreadyClaimed
		case pkgerrors.IsCheckViolation(err):
			s.metrics.ObserveClaim(metrics.ResultInvalid)
			s.logger.Warn("报名数据被数据库约束拒绝", zap.String("date", isoDate), zap.Error(err))
			return nil, &ValidationError{Fields: map[string]string{"form": msgInvalid}}
		default:
			s.metrics.ObserveClaim(metrics.ResultError)
			s.logger.Error("创建报名失败", zap.String("date", isoDate), zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrStore, err)
		}
	}

	s.source.invalidate(ctx, date.Year())
	s.metrics.ObserveClaim(metrics.ResultSuccess)
	s.logger.Info("报名成功", zap.String("date", isoDate), zap.String("tempat_tugas", reg.TempatTugas))

	return toRegistrationResponse(reg), nil
}

// ────────────────────── Release ──────────────────────

func (s *registrationService) Release(ctx context.Context, isoDate string) error {
	date, err := ParseISODate(isoDate)
	if err != nil {
		s.metrics.ObserveRelease(metrics.ResultInvalid)
		return ErrInvalidDate
	}

	n, err := s.repo.Registration.DeleteByDate(ctx, isoDate)
	if err != nil {
		s.metrics.ObserveRelease(metrics.ResultError)
		s.logger.Error("删除报名失败", zap.String("date", isoDate), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrStore, err)
	}

	s.source.invalidate(ctx, date.Year())
	s.metrics.ObserveRelease(metrics.ResultSuccess)
	s.logger.Info("报名已撤销", zap.String("date", isoDate), zap.Int64("rows", n))
	return nil
}

// ────────────────────── GetByDate ──────────────────────

func (s *registrationService) GetByDate(ctx context.Context, isoDate string) (*dto.RegistrationResponse, error) {
	if _, err := ParseISODate(isoDate); err != nil {
		return nil, ErrInvalidDate
	}

	reg, err := s.repo.Registration.GetByDate(ctx, isoDate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationNotFound
		}
		s.logger.Error("查询报名失败", zap.String("date", isoDate), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	return toRegistrationResponse(reg), nil
}

// ────────────────────── List ──────────────────────

func (s *registrationService) List(ctx context.Context) ([]dto.RegistrationResponse, error) {
	regs, err := s.repo.Registration.List(ctx)
	if err != nil {
		s.logger.Error("列出报名失败", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	result := make([]dto.RegistrationResponse, 0, len(regs))
	for i := range regs {
		result = append(result, *toRegistrationResponse(&regs[i]))
	}
	return result, nil
}

func (s *registrationService) DutyLocations() []string {
	out := make([]string, len(model.DutyLocations))
	copy(out, model.DutyLocations)
	return out
}

// ── 内部辅助方法 ──

func toRegistrationResponse(reg *model.KhatibSchedule) *dto.RegistrationResponse {
	return &dto.RegistrationResponse{
		ID:           reg.ID,
		ScheduleDate: reg.DateKey(),
		DisplayLabel: FormatDisplayDate(reg.ScheduleDate),
		NamaLengkap:  reg.NamaLengkap,
		NIP:          reg.NIP,
		NoHP:         reg.NoHP,
		TempatTugas:  reg.TempatTugas,
		Saran:        reg.Saran,
		CreatedAt:    reg.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:    reg.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
