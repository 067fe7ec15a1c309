//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"khatib-jumat/internal/model"
	"khatib-jumat/internal/repository"
	"khatib-jumat/pkg/database"
	pkgerrors "khatib-jumat/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=khatib password=khatib_password dbname=khatib_jumat_test sslmode=disable TimeZone=Asia/Jakarta"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 使用正式迁移建表，确保唯一约束与 CHECK 约束与生产一致
	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "迁移失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

func cleanTable(t *testing.T) {
	t.Helper()
	if err := testDB.Exec("DELETE FROM khatib_schedules").Error; err != nil {
		t.Fatalf("清理数据失败: %v", err)
	}
}

func newRegistration(isoDate, name string) *model.KhatibSchedule {
	d, _ := time.ParseInLocation(model.ISODateLayout, isoDate, time.UTC)
	return &model.KhatibSchedule{
		ScheduleDate: d,
		NamaLengkap:  name,
		NIP:          "197001011995031001",
		NoHP:         "081234567890",
		TempatTugas:  "Fakultas Ushuluddin",
	}
}

// ═══════════════════════════════════════════════════════════
// RegistrationRepository
// ═══════════════════════════════════════════════════════════

func TestRegistrationRepo_CreateAndGet(t *testing.T) {
	cleanTable(t)
	repo := repository.NewRegistrationRepo(testDB)
	ctx := context.Background()

	reg := newRegistration("2026-01-02", "Dr. H. Ahmad Yani, M.Ag.")
	if err := repo.Create(ctx, reg); err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	if reg.ID == "" {
		t.Error("期望数据库生成 ID")
	}
	if reg.CreatedAt.IsZero() || reg.UpdatedAt.IsZero() {
		t.Error("期望时间戳已填充")
	}

	got, err := repo.GetByDate(ctx, "2026-01-02")
	if err != nil {
		t.Fatalf("GetByDate 失败: %v", err)
	}
	if got.DateKey() != "2026-01-02" {
		t.Errorf("期望日期 2026-01-02，实际=%s", got.DateKey())
	}
	if got.NamaLengkap != reg.NamaLengkap {
		t.Errorf("期望姓名 %s，实际=%s", reg.NamaLengkap, got.NamaLengkap)
	}
}

func TestRegistrationRepo_Create_Duplicate(t *testing.T) {
	cleanTable(t)
	repo := repository.NewRegistrationRepo(testDB)
	ctx := context.Background()

	if err := repo.Create(ctx, newRegistration("2026-01-09", "Pertama")); err != nil {
		t.Fatalf("首次 Create 失败: %v", err)
	}

	err := repo.Create(ctx, newRegistration("2026-01-09", "Kedua"))
	if !errors.Is(err, pkgerrors.ErrDuplicateKey) {
		t.Fatalf("期望 ErrDuplicateKey，实际: %v", err)
	}
}

func TestRegistrationRepo_Create_ConcurrentSameDate(t *testing.T) {
	cleanTable(t)
	repo := repository.NewRegistrationRepo(testDB)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(ctx, newRegistration("2026-01-16", fmt.Sprintf("Khatib %d", i)))
		}(i)
	}
	wg.Wait()

	success, conflict := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			success++
		case errors.Is(err, pkgerrors.ErrDuplicateKey):
			conflict++
		default:
			t.Errorf("意外错误: %v", err)
		}
	}
	if success != 1 || conflict != workers-1 {
		t.Errorf("期望 1 成功 %d 冲突，实际 %d 成功 %d 冲突", workers-1, success, conflict)
	}
}

func TestRegistrationRepo_Create_RejectsNonFriday(t *testing.T) {
	cleanTable(t)
	repo := repository.NewRegistrationRepo(testDB)

	err := repo.Create(context.Background(), newRegistration("2026-01-03", "Sabtu"))
	if !pkgerrors.IsCheckViolation(err) {
		t.Fatalf("期望 CHECK 约束失败，实际: %v", err)
	}
	if errors.Is(err, pkgerrors.ErrDuplicateKey) {
		t.Errorf("CHECK 失败不应被识别为重复报名: %v", err)
	}
}

func TestRegistrationRepo_ListOrdering(t *testing.T) {
	cleanTable(t)
	repo := repository.NewRegistrationRepo(testDB)
	ctx := context.Background()

	for _, d := range []string{"2026-03-06", "2025-12-26", "2026-01-02"} {
		if err := repo.Create(ctx, newRegistration(d, "Khatib "+d)); err != nil {
			t.Fatalf("Create %s 失败: %v", d, err)
		}
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	want := []string{"2025-12-26", "2026-01-02", "2026-03-06"}
	if len(all) != len(want) {
		t.Fatalf("期望 %d 条，实际=%d", len(want), len(all))
	}
	for i, w := range want {
		if all[i].DateKey() != w {
			t.Errorf("位置 %d 期望 %s，实际=%s", i, w, all[i].DateKey())
		}
	}

	year, err := repo.ListByYear(ctx, 2026)
	if err != nil {
		t.Fatalf("ListByYear 失败: %v", err)
	}
	if len(year) != 2 {
		t.Errorf("期望 2026 年 2 条，实际=%d", len(year))
	}
}

func TestRegistrationRepo_DeleteByDate_Idempotent(t *testing.T) {
	cleanTable(t)
	repo := repository.NewRegistrationRepo(testDB)
	ctx := context.Background()

	if err := repo.Create(ctx, newRegistration("2026-02-06", "Hapus")); err != nil {
		t.Fatalf("Create 失败: %v", err)
	}

	n, err := repo.DeleteByDate(ctx, "2026-02-06")
	if err != nil || n != 1 {
		t.Fatalf("期望删除 1 行，实际 n=%d err=%v", n, err)
	}

	n, err = repo.DeleteByDate(ctx, "2026-02-06")
	if err != nil {
		t.Fatalf("重复删除不应报错: %v", err)
	}
	if n != 0 {
		t.Errorf("期望 0 行，实际=%d", n)
	}

	if _, err := repo.GetByDate(ctx, "2026-02-06"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("期望 ErrRecordNotFound，实际: %v", err)
	}
}
