package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/mathisDlmr/Tutut-sub000/internal/model"
	"github.com/mathisDlmr/Tutut-sub000/internal/repository"
	pkgerrors "github.com/mathisDlmr/Tutut-sub000/pkg/errors"
)

// 内存 mock 以值拷贝保存记录，模拟数据库读写的隔离

// ── Mock SemesterRepository ──

type mockSemesterRepo struct {
	semesters map[string]model.Semester
}

func newMockSemesterRepo() *mockSemesterRepo {
	return &mockSemesterRepo{semesters: make(map[string]model.Semester)}
}

func (m *mockSemesterRepo) Create(_ context.Context, semester *model.Semester) error {
	for _, s := range m.semesters {
		if s.Code == semester.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	if semester.SemesterID == "" {
		semester.SemesterID = "sem-" + semester.Code
	}
	semester.Version = 1
	m.semesters[semester.SemesterID] = *semester
	return nil
}

func (m *mockSemesterRepo) GetByID(_ context.Context, id string) (*model.Semester, error) {
	if s, ok := m.semesters[id]; ok {
		return &s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) GetCurrent(_ context.Context) (*model.Semester, error) {
	for _, s := range m.semesters {
		if s.IsActive {
			return &s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) List(_ context.Context) ([]model.Semester, error) {
	var result []model.Semester
	for _, s := range m.semesters {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.After(result[j].StartDate) })
	return result, nil
}

func (m *mockSemesterRepo) Update(_ context.Context, semester *model.Semester) error {
	cur, ok := m.semesters[semester.SemesterID]
	if !ok || cur.Version != semester.Version {
		return pkgerrors.ErrOptimisticLock
	}
	semester.Version++
	m.semesters[semester.SemesterID] = *semester
	return nil
}

func (m *mockSemesterRepo) Delete(_ context.Context, id string) error {
	delete(m.semesters, id)
	return nil
}

func (m *mockSemesterRepo) ClearActive(_ context.Context) error {
	for id, s := range m.semesters {
		if s.IsActive {
			s.IsActive = false
			s.Version++
			m.semesters[id] = s
		}
	}
	return nil
}

func (m *mockSemesterRepo) activeCount() int {
	n := 0
	for _, s := range m.semesters {
		if s.IsActive {
			n++
		}
	}
	return n
}

// ── Mock WeekRepository ──

type mockWeekRepo struct {
	weeks     map[string]model.Week
	semesters *mockSemesterRepo
}

func newMockWeekRepo(semesters *mockSemesterRepo) *mockWeekRepo {
	return &mockWeekRepo{weeks: make(map[string]model.Week), semesters: semesters}
}

func (m *mockWeekRepo) Create(_ context.Context, week *model.Week) error {
	for _, w := range m.weeks {
		if w.SemesterID == week.SemesterID && w.Number == week.Number {
			return gorm.ErrDuplicatedKey
		}
	}
	if week.WeekID == "" {
		week.WeekID = fmt.Sprintf("week-%s-%d", week.SemesterID, week.Number)
	}
	week.Version = 1
	stored := *week
	stored.Semester = nil
	m.weeks[week.WeekID] = stored
	return nil
}

func (m *mockWeekRepo) GetByID(ctx context.Context, id string) (*model.Week, error) {
	w, ok := m.weeks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if s, err := m.semesters.GetByID(ctx, w.SemesterID); err == nil {
		w.Semester = s
	}
	return &w, nil
}

func (m *mockWeekRepo) ListBySemester(_ context.Context, semesterID string) ([]model.Week, error) {
	var result []model.Week
	for _, w := range m.weeks {
		if w.SemesterID == semesterID {
			result = append(result, w)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Number < result[j].Number })
	return result, nil
}

func (m *mockWeekRepo) GetLastBySemester(ctx context.Context, semesterID string) (*model.Week, error) {
	list, _ := m.ListBySemester(ctx, semesterID)
	if len(list) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	last := list[len(list)-1]
	return &last, nil
}

func (m *mockWeekRepo) Update(_ context.Context, week *model.Week) error {
	cur, ok := m.weeks[week.WeekID]
	if !ok || cur.Version != week.Version {
		return pkgerrors.ErrOptimisticLock
	}
	week.Version++
	stored := *week
	stored.Semester = nil
	m.weeks[week.WeekID] = stored
	return nil
}

func (m *mockWeekRepo) Delete(_ context.Context, id string) error {
	delete(m.weeks, id)
	return nil
}

// ── Mock RoomAvailabilityRepository ──

type mockRoomAvailabilityRepo struct {
	items map[string]model.RoomAvailability
	seq   int
}

func newMockRoomAvailabilityRepo() *mockRoomAvailabilityRepo {
	return &mockRoomAvailabilityRepo{items: make(map[string]model.RoomAvailability)}
}

func (m *mockRoomAvailabilityRepo) Create(_ context.Context, ra *model.RoomAvailability) error {
	m.seq++
	if ra.RoomAvailabilityID == "" {
		ra.RoomAvailabilityID = fmt.Sprintf("ra-%d", m.seq)
	}
	m.items[ra.RoomAvailabilityID] = *ra
	return nil
}

func (m *mockRoomAvailabilityRepo) GetByID(_ context.Context, id string) (*model.RoomAvailability, error) {
	if ra, ok := m.items[id]; ok {
		return &ra, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoomAvailabilityRepo) List(_ context.Context, filter repository.RoomAvailabilityFilter) ([]model.RoomAvailability, error) {
	var result []model.RoomAvailability
	for _, ra := range m.items {
		if filter.DayLabel != "" && ra.DayLabel != filter.DayLabel {
			continue
		}
		if filter.Room != "" && ra.Room != filter.Room {
			continue
		}
		result = append(result, ra)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RoomAvailabilityID < result[j].RoomAvailabilityID })
	return result, nil
}

func (m *mockRoomAvailabilityRepo) Update(_ context.Context, ra *model.RoomAvailability) error {
	if _, ok := m.items[ra.RoomAvailabilityID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.items[ra.RoomAvailabilityID] = *ra
	return nil
}

func (m *mockRoomAvailabilityRepo) Delete(_ context.Context, id string) error {
	delete(m.items, id)
	return nil
}

// ── Mock CalendarOverrideRepository ──

type mockCalendarOverrideRepo struct {
	byDate map[time.Time]model.CalendarOverride
}

func newMockCalendarOverrideRepo() *mockCalendarOverrideRepo {
	return &mockCalendarOverrideRepo{byDate: make(map[time.Time]model.CalendarOverride)}
}

func (m *mockCalendarOverrideRepo) Upsert(_ context.Context, o *model.CalendarOverride) error {
	o.Date = model.DateOnly(o.Date)
	if cur, ok := m.byDate[o.Date]; ok {
		o.OverrideID = cur.OverrideID
	} else if o.OverrideID == "" {
		o.OverrideID = "ov-" + o.Date.Format("20060102")
	}
	m.byDate[o.Date] = *o
	return nil
}

func (m *mockCalendarOverrideRepo) GetByID(_ context.Context, id string) (*model.CalendarOverride, error) {
	for _, o := range m.byDate {
		if o.OverrideID == id {
			return &o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCalendarOverrideRepo) GetByDate(_ context.Context, date time.Time) (*model.CalendarOverride, error) {
	if o, ok := m.byDate[model.DateOnly(date)]; ok {
		return &o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCalendarOverrideRepo) ListRange(_ context.Context, from, to time.Time) ([]model.CalendarOverride, error) {
	var result []model.CalendarOverride
	for d, o := range m.byDate {
		if !from.IsZero() && d.Before(model.DateOnly(from)) {
			continue
		}
		if !to.IsZero() && d.After(model.DateOnly(to)) {
			continue
		}
		result = append(result, o)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (m *mockCalendarOverrideRepo) Delete(_ context.Context, id string) error {
	for d, o := range m.byDate {
		if o.OverrideID == id {
			delete(m.byDate, d)
		}
	}
	return nil
}

func (m *mockCalendarOverrideRepo) DeleteHolidaysInRange(_ context.Context, from, to time.Time) (int64, error) {
	var n int64
	for d, o := range m.byDate {
		if o.IsHoliday && !d.Before(model.DateOnly(from)) && !d.After(model.DateOnly(to)) {
			delete(m.byDate, d)
			n++
		}
	}
	return n, nil
}

// ── 测试辅助 ──

type mockRepos struct {
	semester *mockSemesterRepo
	week     *mockWeekRepo
	room     *mockRoomAvailabilityRepo
	override *mockCalendarOverrideRepo
}

// newMockRepository 组装只含管理类 mock 的 Repository（db 为空，Transaction 直接执行回调）
func newMockRepository() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		semester: newMockSemesterRepo(),
		room:     newMockRoomAvailabilityRepo(),
		override: newMockCalendarOverrideRepo(),
	}
	m.week = newMockWeekRepo(m.semester)

	repo := &repository.Repository{
		Semester:         m.semester,
		Week:             m.week,
		RoomAvailability: m.room,
		CalendarOverride: m.override,
	}
	return repo, m
}

func ymd(y int, mo time.Month, d int) time.Time {
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, mo time.Month, d int) *time.Time {
	t := ymd(y, mo, d)
	return &t
}

// springSemester 2025 春季学期：2-17 开学，期中 4-14 至 4-18，期末 6-16 至 6-21
func springSemester() model.Semester {
	return model.Semester{
		SemesterID:   "sem-P25",
		Code:         "P25",
		StartDate:    ymd(2025, 2, 17),
		EndDate:      ymd(2025, 6, 28),
		IsActive:     true,
		MidtermStart: datePtr(2025, 4, 14),
		MidtermEnd:   datePtr(2025, 4, 18),
		FinalsStart:  datePtr(2025, 6, 16),
		FinalsEnd:    datePtr(2025, 6, 21),
	}
}
