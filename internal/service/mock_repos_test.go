package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"khatib-jumat/config"
	"khatib-jumat/internal/model"
	"khatib-jumat/internal/repository"
	pkgerrors "khatib-jumat/pkg/errors"
	"khatib-jumat/pkg/redis"
)

// ── Mock RegistrationRepository ──
// 以日期为键模拟唯一约束；加锁以支持并发认领测试

type mockRegistrationRepo struct {
	mu        sync.Mutex
	byDate    map[string]*model.KhatibSchedule
	listErr   error
	createErr error
	deleteErr error
	getErr    error

	createCalls int
	listCalls   int

	// afterList 在 ListByYear 取得快照、释放锁之后调用，用于插入并发写
	afterList func()
}

func newMockRegistrationRepo() *mockRegistrationRepo {
	return &mockRegistrationRepo{byDate: make(map[string]*model.KhatibSchedule)}
}

func (m *mockRegistrationRepo) seed(isoDate, name string) {
	d, _ := ParseISODate(isoDate)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byDate[isoDate] = &model.KhatibSchedule{
		ID:           "reg-" + isoDate,
		ScheduleDate: d,
		NamaLengkap:  name,
		NIP:          "197001011995031001",
		NoHP:         "081234567890",
		TempatTugas:  "Fakultas Ushuluddin",
	}
}

func (m *mockRegistrationRepo) sorted(filter func(*model.KhatibSchedule) bool) []model.KhatibSchedule {
	var result []model.KhatibSchedule
	for _, r := range m.byDate {
		if filter == nil || filter(r) {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ScheduleDate.Before(result[j].ScheduleDate)
	})
	return result
}

func (m *mockRegistrationRepo) List(_ context.Context) ([]model.KhatibSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.sorted(nil), nil
}

func (m *mockRegistrationRepo) ListByYear(_ context.Context, year int) ([]model.KhatibSchedule, error) {
	m.mu.Lock()
	m.listCalls++
	if m.listErr != nil {
		m.mu.Unlock()
		return nil, m.listErr
	}
	snapshot := m.sorted(func(r *model.KhatibSchedule) bool { return r.ScheduleDate.Year() == year })
	hook := m.afterList
	m.afterList = nil
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return snapshot, nil
}

func (m *mockRegistrationRepo) GetByDate(_ context.Context, isoDate string) (*model.KhatibSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if r, ok := m.byDate[isoDate]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRegistrationRepo) Create(_ context.Context, reg *model.KhatibSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	key := reg.DateKey()
	if _, exists := m.byDate[key]; exists {
		return pkgerrors.ErrDuplicateKey
	}
	reg.ID = "reg-" + key
	reg.CreatedAt = time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	reg.UpdatedAt = reg.CreatedAt
	cp := *reg
	m.byDate[key] = &cp
	return nil
}

func (m *mockRegistrationRepo) DeleteByDate(_ context.Context, isoDate string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	if _, ok := m.byDate[isoDate]; !ok {
		return 0, nil
	}
	delete(m.byDate, isoDate)
	return 1, nil
}

// ── Mock RegistrationCache ──
// 与 pkg/redis 相同的代数比较交换语义

type mockCache struct {
	mu          sync.Mutex
	data        map[int][]byte
	gen         map[int]int64
	getErr      error
	invalidated []int
	rejected    int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[int][]byte), gen: make(map[int]int64)}
}

func (c *mockCache) GetRegistrations(_ context.Context, year int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	b, ok := c.data[year]
	if !ok {
		return nil, redis.ErrCacheMiss
	}
	return b, nil
}

func (c *mockCache) RegistrationsGeneration(_ context.Context, year int) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen[year], nil
}

func (c *mockCache) SetRegistrations(_ context.Context, year int, gen int64, payload []byte, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen[year] != gen {
		c.rejected++
		return false, nil
	}
	c.data[year] = payload
	return true, nil
}

func (c *mockCache) InvalidateRegistrations(_ context.Context, year int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen[year]++
	delete(c.data, year)
	c.invalidated = append(c.invalidated, year)
	return nil
}

// ── 测试辅助 ──

func testConfig() *config.Config {
	return &config.Config{
		Redis:    config.RedisConfig{CacheTTL: time.Minute},
		Schedule: config.ScheduleConfig{Year: 2026},
	}
}

func newTestRepository(regRepo *mockRegistrationRepo) *repository.Repository {
	return &repository.Repository{Registration: regRepo}
}
