// Package servicetest provides in-memory repositories and a wired set of
// services for tests of the service layer and its transports.
package servicetest

import (
	"context"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/repository"
	"github.com/Freeeeeet/mess_voting_bot/internal/service"
	"github.com/Freeeeeet/mess_voting_bot/internal/voting"
)

// MemDB хранилище в памяти, общее для всех fake-репозиториев
type MemDB struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*model.Profile
	sessions map[uuid.UUID]*model.VotingSession
	items    []*model.MenuItem
	votes    []model.Vote
	feedback []*model.Feedback
	events   []*model.Event
	settings map[string]string

	ApplyErr error

	// BeforeApply вызывается один раз перед следующим ApplyVoteOps
	BeforeApply func()
	seq         int
}

func NewMemDB() *MemDB {
	return &MemDB{
		profiles: map[uuid.UUID]*model.Profile{},
		sessions: map[uuid.UUID]*model.VotingSession{},
		settings: map[string]string{
			model.SettingCatererRegistration: "true",
			model.SettingAdminRegistration:   "true",
		},
	}
}

func (db *MemDB) tick() time.Time {
	db.seq++
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(db.seq) * time.Second)
}

func (db *MemDB) voteCount(itemID uuid.UUID) int {
	n := 0
	for _, v := range db.votes {
		if v.MenuItemID == itemID {
			n++
		}
	}
	return n
}

// Env набор сервисов поверх одного MemDB
type Env struct {
	DB       *MemDB
	Logger   *zap.Logger
	Profiles *Profiles
	Sessions *Sessions
	Items    *MenuItems
	Votes    *Votes

	SettingsSvc *service.SettingsService
	ProfileSvc  *service.ProfileService
	SessionSvc  *service.SessionService
	MenuSvc     *service.MenuService
	VoteSvc     *service.VoteService
	FinalSvc    *service.FinalizationService
	ReportSvc   *service.ReportService
	FeedbackSvc *service.FeedbackService
	EventSvc    *service.EventService
	StatsSvc    *service.StatsService
}

// ReportTime is the fixed clock of Env.ReportSvc.
var ReportTime = time.Date(2026, 10, 26, 12, 0, 0, 0, time.UTC)

func NewEnv(t testing.TB) *Env {
	t.Helper()
	db := NewMemDB()
	logger := zap.NewNop()

	env := &Env{
		DB:       db,
		Logger:   logger,
		Profiles: &Profiles{db},
		Sessions: &Sessions{db},
		Items:    &MenuItems{db},
		Votes:    &Votes{db},
	}
	env.SettingsSvc = service.NewSettingsService(&Settings{db}, logger)
	env.ProfileSvc = service.NewProfileService(env.Profiles, env.SettingsSvc, nil, logger)
	env.SessionSvc = service.NewSessionService(env.Sessions, logger)
	env.MenuSvc = service.NewMenuService(env.Sessions, env.Items, env.Profiles, logger)
	env.VoteSvc = service.NewVoteService(env.Sessions, env.Items, env.Profiles, env.Votes, nil, logger)
	env.FinalSvc = service.NewFinalizationService(env.Sessions, env.Items, nil, logger)
	env.ReportSvc = service.NewReportService(env.Sessions, env.Items, nil, logger).
		WithClock(func() time.Time { return ReportTime })
	env.FeedbackSvc = service.NewFeedbackService(&Feedback{db}, env.Profiles, logger)
	env.EventSvc = service.NewEventService(&Events{db}, logger)
	env.StatsSvc = service.NewStatsService(env.Sessions, env.Profiles, env.Votes)
	return env
}

// Сидинг данных

func (e *Env) Caterer(t testing.TB, mess ...model.MessType) *model.Profile {
	t.Helper()
	p := &model.Profile{FullName: "Caterer", Role: model.RoleCaterer, ServedMessTypes: mess}
	if err := e.Profiles.Create(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return p
}

func (e *Env) Student(t testing.TB, mess model.MessType) *model.Profile {
	t.Helper()
	reg := "REG-" + uuid.NewString()[:6]
	p := &model.Profile{FullName: "Student", Role: model.RoleStudent, MessType: &mess, RegNumber: &reg}
	if err := e.Profiles.Create(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return p
}

func (e *Env) Admin(t testing.TB) *model.Profile {
	t.Helper()
	p := &model.Profile{FullName: "Admin", Role: model.RoleAdmin}
	if err := e.Profiles.Create(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return p
}

func (e *Env) Session(t testing.TB, status model.SessionStatus) *model.VotingSession {
	t.Helper()
	s := &model.VotingSession{
		Title:     "Week",
		StartDate: Date(19),
		EndDate:   Date(25),
		Status:    status,
	}
	if err := e.Sessions.Create(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	return s
}

func (e *Env) Item(t testing.TB, sessionID uuid.UUID, day int, meal model.MealType, mess model.MessType, name string) *model.MenuItem {
	t.Helper()
	it := &model.MenuItem{
		SessionID:  sessionID,
		DateServed: Date(day),
		MealType:   meal,
		MessType:   mess,
		Name:       name,
	}
	if err := e.Items.Create(context.Background(), it); err != nil {
		t.Fatal(err)
	}
	return it
}

// AddVotes добавляет голоса от новых студентов напрямую в хранилище
func (e *Env) AddVotes(t testing.TB, it *model.MenuItem, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		s := e.Student(t, it.MessType)
		e.DB.mu.Lock()
		e.DB.votes = append(e.DB.votes, model.Vote{ID: uuid.New(), UserID: s.ID, MenuItemID: it.ID, CreatedAt: e.DB.tick()})
		e.DB.mu.Unlock()
	}
}

// Date returns the given day of October 2026 in UTC.
func Date(day int) time.Time {
	return time.Date(2026, 10, day, 0, 0, 0, 0, time.UTC)
}

// profiles

type Profiles struct{ db *MemDB }

func (f *Profiles) Create(_ context.Context, p *model.Profile) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = f.db.tick()
	cp := *p
	f.db.profiles[p.ID] = &cp
	return nil
}

func (f *Profiles) GetByID(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.profiles[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *Profiles) GetByTelegramID(_ context.Context, telegramID int64) (*model.Profile, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, p := range f.db.profiles {
		if p.TelegramID != nil && *p.TelegramID == telegramID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *Profiles) LinkTelegram(_ context.Context, id uuid.UUID, telegramID int64) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.profiles[id]
	if !ok {
		return repository.ErrNoRows
	}
	p.TelegramID = &telegramID
	return nil
}

func (f *Profiles) ListCaterers(_ context.Context, mess *model.MessType) ([]*model.Profile, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*model.Profile
	for _, p := range f.db.profiles {
		if p.Role != model.RoleCaterer {
			continue
		}
		if mess != nil && !p.Serves(*mess) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *Profiles) CountByRole(_ context.Context) (map[model.Role]int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := map[model.Role]int{}
	for _, p := range f.db.profiles {
		out[p.Role]++
	}
	return out, nil
}

func (f *Profiles) ChangeMessType(_ context.Context, id uuid.UUID, mess model.MessType) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.profiles[id]
	if !ok || p.Role != model.RoleStudent {
		return 0, repository.ErrNoRows
	}
	kept := f.db.votes[:0]
	var deleted int64
	for _, v := range f.db.votes {
		if v.UserID == id {
			deleted++
			continue
		}
		kept = append(kept, v)
	}
	f.db.votes = kept
	p.MessType = &mess
	return deleted, nil
}

// sessions

type Sessions struct{ db *MemDB }

func (f *Sessions) Create(_ context.Context, s *model.VotingSession) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	s.ID = uuid.New()
	s.CreatedAt = f.db.tick()
	cp := *s
	f.db.sessions[s.ID] = &cp
	return nil
}

func (f *Sessions) GetByID(_ context.Context, id uuid.UUID) (*model.VotingSession, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	s, ok := f.db.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *Sessions) List(_ context.Context, statuses ...model.SessionStatus) ([]*model.VotingSession, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*model.VotingSession
	for _, s := range f.db.sessions {
		if len(statuses) > 0 && !slices.Contains(statuses, s.Status) {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *Sessions) UpdateStatus(_ context.Context, id uuid.UUID, from, to model.SessionStatus) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	s, ok := f.db.sessions[id]
	if !ok || s.Status != from {
		return repository.ErrStaleStatus
	}
	s.Status = to
	return nil
}

func (f *Sessions) Finalize(_ context.Context, id uuid.UUID, from model.SessionStatus, selections map[uuid.UUID]bool) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	s, ok := f.db.sessions[id]
	if !ok || s.Status != from {
		return repository.ErrStaleStatus
	}
	for _, it := range f.db.items {
		if v, ok := selections[it.ID]; ok && it.SessionID == id {
			it.SetSelected(v)
		}
	}
	s.Status = model.SessionStatusFinalized
	return nil
}

func (f *Sessions) Delete(_ context.Context, id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.sessions[id]; !ok {
		return repository.ErrNoRows
	}
	delete(f.db.sessions, id)
	var kept []*model.MenuItem
	removed := map[uuid.UUID]bool{}
	for _, it := range f.db.items {
		if it.SessionID == id {
			removed[it.ID] = true
			continue
		}
		kept = append(kept, it)
	}
	f.db.items = kept
	var votes []model.Vote
	for _, v := range f.db.votes {
		if !removed[v.MenuItemID] {
			votes = append(votes, v)
		}
	}
	f.db.votes = votes
	return nil
}

func (f *Sessions) CountByStatus(_ context.Context) (map[model.SessionStatus]int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := map[model.SessionStatus]int{}
	for _, s := range f.db.sessions {
		out[s.Status]++
	}
	return out, nil
}

// menu items

type MenuItems struct{ db *MemDB }

func (f *MenuItems) Create(_ context.Context, it *model.MenuItem) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	it.ID = uuid.New()
	it.CreatedAt = f.db.tick()
	cp := *it
	f.db.items = append(f.db.items, &cp)
	return nil
}

func (f *MenuItems) snapshot(it *model.MenuItem) model.MenuItem {
	cp := *it
	if it.IsSelected != nil {
		v := *it.IsSelected
		cp.IsSelected = &v
	}
	cp.VoteCount = f.db.voteCount(it.ID)
	return cp
}

func (f *MenuItems) filter(keep func(it *model.MenuItem) bool) []model.MenuItem {
	var out []model.MenuItem
	for _, it := range f.db.items {
		if keep(it) {
			out = append(out, f.snapshot(it))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.DateServed.Equal(b.DateServed) {
			return a.DateServed.Before(b.DateServed)
		}
		if a.MealType != b.MealType {
			return a.MealType.Order() < b.MealType.Order()
		}
		if a.MessType != b.MessType {
			return a.MessType < b.MessType
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return out
}

func (f *MenuItems) GetByID(_ context.Context, id uuid.UUID) (*model.MenuItem, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, it := range f.db.items {
		if it.ID == id {
			cp := f.snapshot(it)
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *MenuItems) ListBySession(_ context.Context, sessionID uuid.UUID, mess *model.MessType) ([]model.MenuItem, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.filter(func(it *model.MenuItem) bool {
		return it.SessionID == sessionID && (mess == nil || it.MessType == *mess)
	}), nil
}

func (f *MenuItems) ListSelected(_ context.Context, sessionID uuid.UUID, mess *model.MessType) ([]model.MenuItem, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.filter(func(it *model.MenuItem) bool {
		return it.SessionID == sessionID && it.Selected() && (mess == nil || it.MessType == *mess)
	}), nil
}

func (f *MenuItems) ListSlot(_ context.Context, item *model.MenuItem) ([]model.MenuItem, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.filter(func(it *model.MenuItem) bool {
		return it.SessionID == item.SessionID && it.Slot() == item.Slot()
	}), nil
}

func (f *MenuItems) Delete(_ context.Context, id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for i, it := range f.db.items {
		if it.ID == id {
			f.db.items = append(f.db.items[:i], f.db.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNoRows
}

// votes

type Votes struct{ db *MemDB }

// ApplyVoteOps применяет операции атомарно: при ошибке голоса не меняются.
// Вставка отклоняется, если у студента уже есть голос в слоте цели.
func (f *Votes) ApplyVoteOps(_ context.Context, studentID uuid.UUID, ops []voting.StoreOp) error {
	f.db.mu.Lock()
	hook := f.db.BeforeApply
	f.db.BeforeApply = nil
	f.db.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.ApplyErr != nil {
		return f.db.ApplyErr
	}
	votes := slices.Clone(f.db.votes)
	for _, op := range ops {
		switch op.Kind {
		case voting.OpDelete:
			votes = slices.DeleteFunc(votes, func(v model.Vote) bool {
				return v.UserID == studentID && v.MenuItemID == op.ItemID
			})
		case voting.OpInsert:
			target := f.db.item(op.ItemID)
			if target == nil {
				return repository.ErrNoRows
			}
			if f.db.hasSlotVote(votes, studentID, target) {
				return repository.ErrSlotAlreadyVoted
			}
			votes = append(votes, model.Vote{
				ID: uuid.New(), UserID: studentID, MenuItemID: op.ItemID, CreatedAt: f.db.tick(),
			})
		}
	}
	f.db.votes = votes
	return nil
}

func (db *MemDB) item(id uuid.UUID) *model.MenuItem {
	for _, it := range db.items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

func (db *MemDB) hasSlotVote(votes []model.Vote, studentID uuid.UUID, target *model.MenuItem) bool {
	for _, v := range votes {
		if v.UserID != studentID {
			continue
		}
		it := db.item(v.MenuItemID)
		if it != nil && it.SessionID == target.SessionID && it.Slot() == target.Slot() {
			return true
		}
	}
	return false
}

func (f *Votes) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Vote, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Vote
	for _, v := range f.db.votes {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *Votes) CountsBySession(_ context.Context, sessionID uuid.UUID) ([]model.VoteCount, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.VoteCount
	for _, it := range f.db.items {
		if it.SessionID == sessionID {
			out = append(out, model.VoteCount{MenuItemID: it.ID, Count: f.db.voteCount(it.ID)})
		}
	}
	return out, nil
}

func (f *Votes) Total(_ context.Context) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return len(f.db.votes), nil
}

// feedback, events, settings

type Feedback struct{ db *MemDB }

func (f *Feedback) Create(_ context.Context, fb *model.Feedback) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	fb.ID = uuid.New()
	fb.CreatedAt = f.db.tick()
	cp := *fb
	f.db.feedback = append(f.db.feedback, &cp)
	return nil
}

func (f *Feedback) GetByID(_ context.Context, id uuid.UUID) (*model.Feedback, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, fb := range f.db.feedback {
		if fb.ID == id {
			cp := *fb
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *Feedback) list(keep func(*model.Feedback) bool) []*model.Feedback {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*model.Feedback
	for _, fb := range f.db.feedback {
		if keep(fb) {
			cp := *fb
			out = append(out, &cp)
		}
	}
	return out
}

func (f *Feedback) ListByStudent(_ context.Context, id uuid.UUID) ([]*model.Feedback, error) {
	return f.list(func(fb *model.Feedback) bool { return fb.StudentID == id }), nil
}

func (f *Feedback) ListByCaterer(_ context.Context, id uuid.UUID) ([]*model.Feedback, error) {
	return f.list(func(fb *model.Feedback) bool { return fb.CatererID == id }), nil
}

func (f *Feedback) Respond(_ context.Context, id, catererID uuid.UUID, response string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, fb := range f.db.feedback {
		if fb.ID == id && fb.CatererID == catererID {
			now := f.db.tick()
			fb.Response = &response
			fb.RespondedAt = &now
			return nil
		}
	}
	return repository.ErrNoRows
}

type Events struct{ db *MemDB }

func (f *Events) Create(_ context.Context, e *model.Event) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	e.ID = uuid.New()
	e.CreatedAt = f.db.tick()
	cp := *e
	f.db.events = append(f.db.events, &cp)
	return nil
}

func (f *Events) List(_ context.Context) ([]*model.Event, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := slices.Clone(f.db.events)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *Events) Delete(_ context.Context, id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for i, e := range f.db.events {
		if e.ID == id {
			f.db.events = append(f.db.events[:i], f.db.events[i+1:]...)
			return nil
		}
	}
	return repository.ErrNoRows
}

type Settings struct{ db *MemDB }

func (f *Settings) List(_ context.Context) ([]model.SystemSetting, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.SystemSetting
	for k, v := range f.db.settings {
		out = append(out, model.SystemSetting{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f *Settings) Get(_ context.Context, key string) (*model.SystemSetting, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	v, ok := f.db.settings[key]
	if !ok {
		return nil, nil
	}
	return &model.SystemSetting{Key: key, Value: v}, nil
}

func (f *Settings) Upsert(_ context.Context, key, value string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.settings[key] = value
	return nil
}

// SetSelected writes an is_selected flag directly, as an earlier finalization would.
func (db *MemDB) SetSelected(itemID uuid.UUID, v bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, it := range db.items {
		if it.ID == itemID {
			it.SetSelected(v)
		}
	}
}

// VoteCount returns the stored votes of an item.
func (db *MemDB) VoteCount(itemID uuid.UUID) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.voteCount(itemID)
}

// SessionStatus returns the stored status of a session.
func (db *MemDB) SessionStatus(id uuid.UUID) model.SessionStatus {
	db.mu.Lock()
	defer db.mu.Unlock()
	if s, ok := db.sessions[id]; ok {
		return s.Status
	}
	return ""
}
