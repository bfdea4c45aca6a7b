//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mathisDlmr/Tutut-sub000/config"
	"github.com/mathisDlmr/Tutut-sub000/internal/dto"
	"github.com/mathisDlmr/Tutut-sub000/internal/model"
	"github.com/mathisDlmr/Tutut-sub000/internal/repository"
	"github.com/mathisDlmr/Tutut-sub000/internal/service"
	"github.com/mathisDlmr/Tutut-sub000/pkg/database"
	pkgerrors "github.com/mathisDlmr/Tutut-sub000/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=tutut password=tutut_password dbname=tutut_test sslmode=disable TimeZone=Europe/Paris"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 与生产一致：通过 SQL 迁移建表（部分唯一索引与 CHECK 约束只存在于迁移中）
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

// setupTestWeek 创建学期、周次与一个空时段，返回清理函数
func setupTestWeek(t *testing.T) (semester *model.Semester, week *model.Week, slot *model.Slot, cleanup func()) {
	t.Helper()
	ctx := context.Background()

	semester = &model.Semester{
		Code:      fmt.Sprintf("T%d", time.Now().UnixNano()%1e8),
		StartDate: time.Date(2025, 2, 17, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 28, 0, 0, 0, 0, time.UTC),
	}
	if err := testDB.WithContext(ctx).Create(semester).Error; err != nil {
		t.Fatalf("创建学期失败: %v", err)
	}

	week = &model.Week{
		SemesterID: semester.SemesterID,
		Number:     1,
		StartDate:  semester.StartDate,
		EndDate:    semester.StartDate.AddDate(0, 0, 6),
	}
	if err := testDB.WithContext(ctx).Omit("Semester").Create(week).Error; err != nil {
		t.Fatalf("创建周次失败: %v", err)
	}

	start := time.Date(2025, 2, 17, 18, 40, 0, 0, time.UTC)
	slot = &model.Slot{WeekID: week.WeekID, Room: "FA104", StartAt: start, EndAt: start.Add(time.Hour)}
	if err := testDB.WithContext(ctx).Create(slot).Error; err != nil {
		t.Fatalf("创建时段失败: %v", err)
	}

	cleanup = func() {
		// 外键级联删除周次、时段、报名、台账
		testDB.Where("semester_id = ?", semester.SemesterID).Delete(&model.Semester{})
	}
	return
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction
// ═══════════════════════════════════════════════════════════

func TestTransaction_Rollback(t *testing.T) {
	_, week, _, cleanup := setupTestWeek(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	sentinel := fmt.Errorf("回滚")
	err := repo.Transaction(ctx, func(tx *repository.Repository) error {
		start := time.Date(2025, 2, 18, 12, 15, 0, 0, time.UTC)
		if err := tx.Slot.BatchCreate(ctx, []model.Slot{
			{WeekID: week.WeekID, Room: "FA104", StartAt: start, EndAt: start.Add(90 * time.Minute)},
		}); err != nil {
			return err
		}
		return sentinel
	})
	if err != sentinel {
		t.Fatalf("期望返回 sentinel，实际: %v", err)
	}

	slots, _ := repo.Slot.ListByWeek(ctx, week.WeekID, false)
	if len(slots) != 1 {
		t.Errorf("回滚后应只剩初始时段，实际 %d 个", len(slots))
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Structural invariants
// ═══════════════════════════════════════════════════════════

func TestSingleActiveSemester_PartialUniqueIndex(t *testing.T) {
	a, _, _, cleanupA := setupTestWeek(t)
	defer cleanupA()
	b, _, _, cleanupB := setupTestWeek(t)
	defer cleanupB()

	ctx := context.Background()
	repo := repository.NewRepository(testDB)
	if err := repo.Semester.ClearActive(ctx); err != nil {
		t.Fatalf("ClearActive 失败: %v", err)
	}

	a.IsActive = true
	if err := repo.Semester.Update(ctx, a); err != nil {
		t.Fatalf("激活第一个学期失败: %v", err)
	}
	b.IsActive = true
	err := repo.Semester.Update(ctx, b)
	if !pkgerrors.IsDuplicateKey(err) {
		t.Errorf("第二个激活学期应被部分唯一索引拒绝，实际: %v", err)
	}
}

func TestSlotDistinctTutors_CheckConstraint(t *testing.T) {
	_, _, slot, cleanup := setupTestWeek(t)
	defer cleanup()

	err := testDB.Model(&model.Slot{}).
		Where("slot_id = ?", slot.SlotID).
		Updates(map[string]interface{}{"tutor1_id": "alice", "tutor2_id": "alice"}).Error
	if err == nil {
		t.Error("tutor1 = tutor2 应被 CHECK 约束拒绝")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Concurrent claim under row locking
// ═══════════════════════════════════════════════════════════

func TestConcurrentClaim_Postgres(t *testing.T) {
	_, _, slot, cleanup := setupTestWeek(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := repo.Slot.ClaimPosition(ctx, slot.SlotID, fmt.Sprintf("tutor-%d", i), model.Position1)
			if err != nil {
				t.Errorf("ClaimPosition 失败: %v", err)
				return
			}
			if ok {
				atomic.AddInt32(&wins, 1)
			}
		}(i)
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("期望恰好 1 个成功，实际 %d", wins)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Concurrent enrollment at the capacity boundary
// ═══════════════════════════════════════════════════════════

// 多连接下并发报名：只有时段行锁能保证计数与插入不交错
func TestConcurrentEnroll_Postgres(t *testing.T) {
	_, week, slot, cleanup := setupTestWeek(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	ok, err := repo.Slot.ClaimPosition(ctx, slot.SlotID, "tutor-1", model.Position1)
	if err != nil || !ok {
		t.Fatalf("占位失败: ok=%v err=%v", ok, err)
	}
	err = repo.Transaction(ctx, func(tx *repository.Repository) error {
		_, err := tx.Slot.OpenOnlyWeek(ctx, week.WeekID)
		return err
	})
	if err != nil {
		t.Fatalf("开放周次失败: %v", err)
	}

	svc := service.NewEnrollmentService(repo, &config.SchedulingConfig{
		CapacityOneTutor:   6,
		CapacityTwoTutors:  15,
		MaxDesiredSubjects: 3,
	}, zap.NewNop())

	for i := 1; i <= 5; i++ {
		if _, err := svc.Enroll(ctx, slot.SlotID, fmt.Sprintf("early-%d", i), &dto.EnrollRequest{}); err != nil {
			t.Fatalf("预置报名失败: %v", err)
		}
	}

	const n = 20
	var wins, full int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := svc.Enroll(ctx, slot.SlotID, fmt.Sprintf("late-%d", i), &dto.EnrollRequest{})
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case errors.Is(err, service.ErrSlotFull):
				atomic.AddInt32(&full, 1)
			default:
				t.Errorf("意外错误: %v", err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	if wins != 1 {
		t.Errorf("期望恰好 1 个报名成功，实际 %d", wins)
	}
	if full != n-1 {
		t.Errorf("期望 %d 个 ErrSlotFull，实际 %d", n-1, full)
	}

	count, err := repo.Enrollment.CountBySlot(ctx, slot.SlotID)
	if err != nil {
		t.Fatalf("统计报名失败: %v", err)
	}
	if count != 6 {
		t.Errorf("期望 6 条报名，实际 %d", count)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Optimistic Lock
// ═══════════════════════════════════════════════════════════

func TestOptimisticLock_Week_ConflictDetected(t *testing.T) {
	_, week, _, cleanup := setupTestWeek(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	copy1, _ := repo.Week.GetByID(ctx, week.WeekID)
	copy2, _ := repo.Week.GetByID(ctx, week.WeekID)

	copy1.IsBreak = true
	if err := repo.Week.Update(ctx, copy1); err != nil {
		t.Fatalf("第一次更新应成功: %v", err)
	}

	copy2.IsBreak = false
	if err := repo.Week.Update(ctx, copy2); err != pkgerrors.ErrOptimisticLock {
		t.Errorf("期望 ErrOptimisticLock，得到: %v", err)
	}
}
