package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/mathisDlmr/Tutut-sub000/config"
	"github.com/mathisDlmr/Tutut-sub000/internal/model"
	"github.com/mathisDlmr/Tutut-sub000/internal/repository"
	"github.com/mathisDlmr/Tutut-sub000/internal/testutil"
)

// engineFixture 基于内存 SQLite 的引擎测试环境
type engineFixture struct {
	ctx      context.Context
	repo     *repository.Repository
	cfg      *config.Config
	svc      *Service
	semester *model.Semester
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	repo := repository.NewRepository(testutil.NewSQLiteDB(t))
	cfg := &config.Config{
		Scheduling: config.SchedulingConfig{
			Timezone:           "UTC",
			CapacityOneTutor:   6,
			CapacityTwoTutors:  15,
			MaxDesiredSubjects: 3,
		},
	}

	f := &engineFixture{
		ctx:  context.Background(),
		repo: repo,
		cfg:  cfg,
		svc:  NewService(cfg, repo, zap.NewNop()),
	}

	sem := springSemester()
	sem.SemesterID = ""
	require.NoError(t, repo.Semester.Create(f.ctx, &sem))
	f.semester = &sem
	return f
}

// week 创建指定编号的周次，日期按学期开始日推算
func (f *engineFixture) week(t *testing.T, number int, isBreak bool) *model.Week {
	t.Helper()
	start := f.semester.StartDate.AddDate(0, 0, 7*(number-1))
	w := &model.Week{
		SemesterID: f.semester.SemesterID,
		Number:     number,
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, 6),
		IsBreak:    isBreak,
	}
	require.NoError(t, f.repo.Week.Create(f.ctx, w))
	return w
}

func (f *engineFixture) room(t *testing.T, room string, label model.DayLabel, from, to datatypes.Time) {
	t.Helper()
	require.NoError(t, f.repo.RoomAvailability.Create(f.ctx, &model.RoomAvailability{
		Room:      room,
		DayLabel:  label,
		StartTime: from,
		EndTime:   to,
	}))
}

func (f *engineFixture) holiday(t *testing.T, d time.Time) {
	t.Helper()
	require.NoError(t, f.repo.CalendarOverride.Upsert(f.ctx, &model.CalendarOverride{Date: d, IsHoliday: true}))
}

// slot 直接写入一个时段，open 控制是否开放报名
func (f *engineFixture) slot(t *testing.T, weekID string, start time.Time, minutes int, open bool) *model.Slot {
	t.Helper()
	s := model.Slot{
		WeekID:  weekID,
		Room:    "FA104",
		StartAt: start,
		EndAt:   start.Add(time.Duration(minutes) * time.Minute),
		IsOpen:  open,
	}
	require.NoError(t, f.repo.Slot.BatchCreate(f.ctx, []model.Slot{s}))

	list, err := f.repo.Slot.ListByWeek(f.ctx, weekID, false)
	require.NoError(t, err)
	for i := range list {
		if list[i].StartAt.Equal(start) {
			return &list[i]
		}
	}
	t.Fatalf("未找到刚写入的时段 %s", start)
	return nil
}

// claim 以辅导员身份抢位并断言成功
func (f *engineFixture) claim(t *testing.T, slotID, tutorID string, pos int) {
	t.Helper()
	out, err := f.svc.Claim.Claim(f.ctx, slotID, tutorID, pos)
	require.NoError(t, err)
	require.True(t, out.Claimed, "抢位应成功: %s", out.Reason)
}

func clock(h, m int) datatypes.Time { return datatypes.NewTime(h, m, 0, 0) }
