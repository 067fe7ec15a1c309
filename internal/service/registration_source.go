package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"khatib-jumat/internal/model"
	"khatib-jumat/internal/repository"
	"khatib-jumat/pkg/redis"
)

// RegistrationCache 报名列表缓存（pkg/redis.Client 实现）
// 为 nil 时所有读取直接访问数据库。
// 写入以代数做比较交换：读取方在查库前取代数，失效操作推进代数，
// 因此查库之后发生的认领 / 撤销会让这次回写被丢弃。
type RegistrationCache interface {
	GetRegistrations(ctx context.Context, year int) ([]byte, error)
	RegistrationsGeneration(ctx context.Context, year int) (int64, error)
	SetRegistrations(ctx context.Context, year int, gen int64, payload []byte, ttl time.Duration) (bool, error)
	InvalidateRegistrations(ctx context.Context, year int) error
}

// registrationSource 报名记录读取入口：cache-aside，写操作后按年份失效
type registrationSource struct {
	repo   *repository.Repository
	cache  RegistrationCache
	ttl    time.Duration
	logger *zap.Logger
}

func newRegistrationSource(repo *repository.Repository, cache RegistrationCache, ttl time.Duration, logger *zap.Logger) *registrationSource {
	return &registrationSource{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// listByYear 读取某年份全部报名；数据库失败时返回 ErrStore，不回退为空列表
func (s *registrationSource) listByYear(ctx context.Context, year int) ([]model.KhatibSchedule, error) {
	cacheable := s.cache != nil && s.ttl > 0
	var gen int64
	if s.cache != nil {
		if regs, ok := s.fromCache(ctx, year); ok {
			return regs, nil
		}
		// 代数必须在查库之前读取
		var err error
		if gen, err = s.cache.RegistrationsGeneration(ctx, year); err != nil {
			s.logger.Warn("读取缓存代数失败，本次不回写", zap.Int("year", year), zap.Error(err))
			cacheable = false
		}
	}

	regs, err := s.repo.Registration.ListByYear(ctx, year)
	if err != nil {
		s.logger.Error("查询报名记录失败", zap.Int("year", year), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	if cacheable {
		s.store(ctx, year, gen, regs)
	}
	return regs, nil
}

// store 按代数回写缓存；期间发生过失效则放弃
func (s *registrationSource) store(ctx context.Context, year int, gen int64, regs []model.KhatibSchedule) {
	payload, err := json.Marshal(regs)
	if err != nil {
		return
	}
	written, err := s.cache.SetRegistrations(ctx, year, gen, payload, s.ttl)
	if err != nil {
		s.logger.Warn("写入报名缓存失败", zap.Int("year", year), zap.Error(err))
		return
	}
	if !written {
		s.logger.Debug("报名列表已在读取期间变更，跳过回写", zap.Int("year", year), zap.Int64("gen", gen))
	}
}

func (s *registrationSource) fromCache(ctx context.Context, year int) ([]model.KhatibSchedule, bool) {
	payload, err := s.cache.GetRegistrations(ctx, year)
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.logger.Warn("读取报名缓存失败，回退数据库", zap.Int("year", year), zap.Error(err))
		}
		return nil, false
	}

	var regs []model.KhatibSchedule
	if err := json.Unmarshal(payload, &regs); err != nil {
		s.logger.Warn("报名缓存内容无法解析", zap.Int("year", year), zap.Error(err))
		return nil, false
	}
	return regs, true
}

// invalidate 报名 / 撤销成功后调用，使所有实例的下一次读取回源
func (s *registrationSource) invalidate(ctx context.Context, year int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateRegistrations(ctx, year); err != nil {
		s.logger.Warn("清除报名缓存失败", zap.Int("year", year), zap.Error(err))
	}
}
