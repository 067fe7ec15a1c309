package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"khatib-jumat/internal/model"
	pkgerrors "khatib-jumat/pkg/errors"
)

// RegistrationRepository 讲道报名数据访问接口
type RegistrationRepository interface {
	List(ctx context.Context) ([]model.KhatibSchedule, error)
	ListByYear(ctx context.Context, year int) ([]model.KhatibSchedule, error)
	GetByDate(ctx context.Context, isoDate string) (*model.KhatibSchedule, error)
	Create(ctx context.Context, reg *model.KhatibSchedule) error
	DeleteByDate(ctx context.Context, isoDate string) (int64, error)
}

type registrationRepo struct {
	db *gorm.DB
}

// NewRegistrationRepo 创建 RegistrationRepository 实例
func NewRegistrationRepo(db *gorm.DB) RegistrationRepository {
	return &registrationRepo{db: db}
}

func (r *registrationRepo) List(ctx context.Context) ([]model.KhatibSchedule, error) {
	var regs []model.KhatibSchedule
	err := r.db.WithContext(ctx).
		Order("schedule_date ASC").
		Find(&regs).Error
	return regs, err
}

func (r *registrationRepo) ListByYear(ctx context.Context, year int) ([]model.KhatibSchedule, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	var regs []model.KhatibSchedule
	err := r.db.WithContext(ctx).
		Where("schedule_date >= ? AND schedule_date < ?",
			start.Format(model.ISODateLayout), end.Format(model.ISODateLayout)).
		Order("schedule_date ASC").
		Find(&regs).Error
	return regs, err
}

func (r *registrationRepo) GetByDate(ctx context.Context, isoDate string) (*model.KhatibSchedule, error) {
	var reg model.KhatibSchedule
	err := r.db.WithContext(ctx).
		Where("schedule_date = ?", isoDate).
		First(&reg).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// Create 单条 INSERT，不做先查后写；重复日期由 uq_khatib_schedules_date 拒绝
func (r *registrationRepo) Create(ctx context.Context, reg *model.KhatibSchedule) error {
	err := r.db.WithContext(ctx).Create(reg).Error
	if pkgerrors.IsUniqueViolation(err) {
		return fmt.Errorf("schedule_date %s: %w", reg.DateKey(), pkgerrors.ErrDuplicateKey)
	}
	return err
}

// DeleteByDate 物理删除；无匹配记录时返回 0 行而非错误
func (r *registrationRepo) DeleteByDate(ctx context.Context, isoDate string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("schedule_date = ?", isoDate).
		Delete(&model.KhatibSchedule{})
	return res.RowsAffected, res.Error
}
