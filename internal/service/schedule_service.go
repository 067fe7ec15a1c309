package service

import (
	"context"

	"go.uber.org/zap"

	"khatib-jumat/config"
	"khatib-jumat/internal/dto"
	"khatib-jumat/internal/model"
	"khatib-jumat/internal/repository"
)

// ScheduleService 公开排期业务接口
//
// 设计说明：
//   - 周五档期由 GenerateFridays 按年份计算，不落库
//   - 每次读取都重新合并报名记录；报名读取失败直接返回错误，不会渲染为全部空位
//   - 公开接口只暴露讲道人姓名与单位，NIP / 电话仅在管理端可见
type ScheduleService interface {
	GetSchedule(ctx context.Context, year int) (*dto.ScheduleResponse, error)
	ListSlots(ctx context.Context, year int) ([]dto.SlotResponse, error)
	DefaultYear() int
}

type scheduleService struct {
	source      *registrationSource
	defaultYear int
	logger      *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(cfg *config.Config, repo *repository.Repository, cache RegistrationCache, logger *zap.Logger) ScheduleService {
	return &scheduleService{
		source:      newRegistrationSource(repo, cache, cfg.Redis.CacheTTL, logger),
		defaultYear: cfg.Schedule.Year,
		logger:      logger,
	}
}

func (s *scheduleService) DefaultYear() int { return s.defaultYear }

// ────────────────────── GetSchedule ──────────────────────

func (s *scheduleService) GetSchedule(ctx context.Context, year int) (*dto.ScheduleResponse, error) {
	merged, err := s.merged(ctx, year)
	if err != nil {
		return nil, err
	}

	resp := &dto.ScheduleResponse{Year: s.resolveYear(year), Total: len(merged)}
	for _, g := range GroupByMonth(merged) {
		mg := dto.MonthGroupResponse{
			MonthIndex: g.MonthIndex,
			MonthName:  g.MonthName,
			Slots:      make([]dto.SlotResponse, 0, len(g.Slots)),
		}
		for i := range g.Slots {
			if g.Slots[i].IsFilled() {
				mg.Filled++
			}
			mg.Slots = append(mg.Slots, toSlotResponse(&g.Slots[i]))
		}
		resp.Filled += mg.Filled
		resp.Months = append(resp.Months, mg)
	}
	resp.Open = resp.Total - resp.Filled

	return resp, nil
}

// ────────────────────── ListSlots ──────────────────────

func (s *scheduleService) ListSlots(ctx context.Context, year int) ([]dto.SlotResponse, error) {
	merged, err := s.merged(ctx, year)
	if err != nil {
		return nil, err
	}

	result := make([]dto.SlotResponse, 0, len(merged))
	for i := range merged {
		result = append(result, toSlotResponse(&merged[i]))
	}
	return result, nil
}

// ── 内部辅助方法 ──

func (s *scheduleService) resolveYear(year int) int {
	if year == 0 {
		return s.defaultYear
	}
	return year
}

// merged 生成 → 读取报名 → 合并
func (s *scheduleService) merged(ctx context.Context, year int) ([]model.MergedSlot, error) {
	year = s.resolveYear(year)
	if year < 1900 || year > 9999 {
		return nil, ErrInvalidYear
	}

	slots := GenerateFridays(year)

	regs, err := s.source.listByYear(ctx, year)
	if err != nil {
		return nil, err
	}

	return MergeRegistrations(slots, regs), nil
}

func toSlotResponse(m *model.MergedSlot) dto.SlotResponse {
	resp := dto.SlotResponse{
		ISODate:      m.ISODate,
		DisplayLabel: m.DisplayLabel,
		MonthName:    m.MonthName,
		MonthIndex:   m.MonthIndex,
		WeekOfMonth:  m.WeekOfMonthOrdinal,
		Status:       dto.SlotStatusOpen,
	}
	if m.IsFilled() {
		resp.Status = dto.SlotStatusFilled
		resp.Khatib = &dto.KhatibBrief{
			NamaLengkap: m.Registration.NamaLengkap,
			TempatTugas: m.Registration.TempatTugas,
		}
	}
	return resp
}
