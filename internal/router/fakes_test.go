package router

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/iliyamo/projecthub/internal/model"
	"github.com/iliyamo/projecthub/internal/repository"
)

// memDB backs the in-memory stores used by the route tests.
type memDB struct {
	mu        sync.Mutex
	seq       int
	users     map[string]model.User
	projects  map[string]model.Project
	order     map[string]int
	tasks     map[string]model.Task
	companies map[string]model.Company
	members   []model.CompanyMember
	daily     map[string]model.DailyTask
	history   []model.DailyTaskHistory
}

func newMemDB() *memDB {
	return &memDB{
		users:     map[string]model.User{},
		projects:  map[string]model.Project{},
		order:     map[string]int{},
		tasks:     map[string]model.Task{},
		companies: map[string]model.Company{},
		daily:     map[string]model.DailyTask{},
	}
}

func (db *memDB) stamp() time.Time {
	db.seq++
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(db.seq) * time.Minute)
}

func duplicate(key string) error {
	return &mysql.MySQLError{Number: 1062, Message: fmt.Sprintf("Duplicate entry 'x' for key '%s'", key)}
}

var errBadRef = &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row: a foreign key constraint fails"}

type fakeUsers struct{ *memDB }

func (f fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return duplicate("users.uk_users__email")
		}
	}
	u.ID = uuid.NewString()
	if u.Timezone == "" {
		u.Timezone = "UTC"
	}
	if u.UserType == "" {
		u.UserType = model.UserTypeIndividual
	}
	u.IsActive = true
	u.CreatedAt = f.stamp()
	u.UpdatedAt = u.CreatedAt
	f.users[u.ID] = *u
	return nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f fakeUsers) GetByID(_ context.Context, id string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f fakeUsers) UpdateProfile(_ context.Context, id string, p repository.ProfileUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[id]
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Timezone != nil {
		u.Timezone = *p.Timezone
	}
	f.users[id] = u
	return nil
}

type fakeProjects struct{ *memDB }

func (f fakeProjects) Create(_ context.Context, p *model.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = uuid.NewString()
	if p.Methodology == "" {
		p.Methodology = model.MethodologyKanban
	}
	if p.Status == "" {
		p.Status = model.ProjectPlanning
	}
	if p.Priority == "" {
		p.Priority = model.PriorityMedium
	}
	p.CreatedAt = f.stamp()
	p.UpdatedAt = p.CreatedAt
	f.projects[p.ID] = *p
	f.order[p.ID] = f.seq
	return nil
}

func (f fakeProjects) GetByIDAndOwner(_ context.Context, id, ownerID string) (model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok || p.OwnerID != ownerID {
		return model.Project{}, repository.ErrNotFound
	}
	return p, nil
}

func (f fakeProjects) ListByOwner(_ context.Context, ownerID string, flt repository.ProjectFilter) ([]model.Project, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []model.Project
	for _, p := range f.projects {
		if p.OwnerID != ownerID ||
			(flt.Status != "" && p.Status != flt.Status) ||
			(flt.Methodology != "" && p.Methodology != flt.Methodology) {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return f.order[all[i].ID] > f.order[all[j].ID] })
	total := len(all)
	if flt.Offset >= total {
		return []model.Project{}, total, nil
	}
	end := flt.Offset + flt.Limit
	if end > total {
		end = total
	}
	return all[flt.Offset:end], total, nil
}

func (f fakeProjects) Update(_ context.Context, p *model.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.UpdatedAt = f.stamp()
	f.projects[p.ID] = *p
	return nil
}

func (f fakeProjects) DeleteByIDAndOwner(_ context.Context, id, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok || p.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(f.projects, id)
	return nil
}

type fakeTasks struct{ *memDB }

func (f fakeTasks) Create(_ context.Context, t *model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.AssigneeID != nil {
		if _, ok := f.users[*t.AssigneeID]; !ok {
			return errBadRef
		}
	}
	t.ID = uuid.NewString()
	if t.Status == "" {
		t.Status = model.TaskTodo
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	t.CreatedAt = f.stamp()
	t.UpdatedAt = t.CreatedAt
	f.tasks[t.ID] = *t
	return nil
}

func (f fakeTasks) GetByIDForOwner(_ context.Context, id, ownerID string) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok || f.projects[t.ProjectID].OwnerID != ownerID {
		return model.Task{}, repository.ErrNotFound
	}
	return t, nil
}

func (f fakeTasks) ListByProject(_ context.Context, projectID string, flt repository.TaskFilter) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Task{}
	for _, t := range f.tasks {
		if t.ProjectID != projectID ||
			(flt.Status != "" && t.Status != flt.Status) ||
			(flt.Priority != "" && t.Priority != flt.Priority) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f fakeTasks) ListByProjectIDs(_ context.Context, ids []string) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := []model.Task{}
	for _, t := range f.tasks {
		if want[t.ProjectID] {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f fakeTasks) Update(_ context.Context, t *model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.AssigneeID != nil {
		if _, ok := f.users[*t.AssigneeID]; !ok {
			return errBadRef
		}
	}
	t.UpdatedAt = f.stamp()
	f.tasks[t.ID] = *t
	return nil
}

func (f fakeTasks) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f fakeTasks) CountByProject(_ context.Context, projectID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tasks {
		if t.ProjectID == projectID {
			n++
		}
	}
	return n, nil
}

type fakeCompanies struct{ *memDB }

func (f fakeCompanies) Create(_ context.Context, c *model.Company) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = uuid.NewString()
	c.CreatedAt = f.stamp()
	c.UpdatedAt = c.CreatedAt
	f.companies[c.ID] = *c
	f.members = append(f.members, model.CompanyMember{
		ID: uuid.NewString(), UserID: c.OwnerID, CompanyID: c.ID, Role: model.RoleAdmin, IsActive: true,
	})
	return nil
}

func (f fakeCompanies) GetByID(_ context.Context, id string) (model.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.companies[id]
	if !ok {
		return model.Company{}, repository.ErrNotFound
	}
	return c, nil
}

func (f fakeCompanies) ListForMember(_ context.Context, userID string) ([]model.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Company{}
	for _, m := range f.members {
		if m.UserID == userID && m.IsActive {
			out = append(out, f.companies[m.CompanyID])
		}
	}
	return out, nil
}

func (f fakeCompanies) Membership(_ context.Context, companyID, userID string) (model.CompanyMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members {
		if m.CompanyID == companyID && m.UserID == userID {
			return m, nil
		}
	}
	return model.CompanyMember{}, repository.ErrNotFound
}

func (f fakeCompanies) AddMember(_ context.Context, m *model.CompanyMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.members {
		if existing.CompanyID == m.CompanyID && existing.UserID == m.UserID {
			return duplicate("company_members.uk_company_members__user_id")
		}
	}
	m.ID = uuid.NewString()
	m.IsActive = true
	f.members = append(f.members, *m)
	return nil
}

func (f fakeCompanies) ListMembers(_ context.Context, companyID string) ([]model.CompanyMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.CompanyMember{}
	for _, m := range f.members {
		if m.CompanyID == companyID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeDaily struct{ *memDB }

func (f fakeDaily) Create(_ context.Context, d *model.DailyTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d.ID = uuid.NewString()
	d.CreatedAt = f.stamp()
	d.UpdatedAt = d.CreatedAt
	f.daily[d.ID] = *d
	return nil
}

func (f fakeDaily) ListByUser(_ context.Context, userID string) ([]model.DailyTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.DailyTask{}
	for _, d := range f.daily {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f fakeDaily) GetByIDAndUser(_ context.Context, id, userID string) (model.DailyTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.daily[id]
	if !ok || d.UserID != userID {
		return model.DailyTask{}, repository.ErrNotFound
	}
	return d, nil
}

func (f fakeDaily) Update(_ context.Context, d *model.DailyTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.daily[d.ID] = *d
	return nil
}

func (f fakeDaily) Delete(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.daily[id]
	if !ok || d.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.daily, id)
	return nil
}

func (f fakeDaily) Complete(ctx context.Context, id, userID string, at time.Time) (model.DailyTask, error) {
	f.mu.Lock()
	d, ok := f.daily[id]
	if ok && d.UserID == userID && !d.IsCompleted {
		d.IsCompleted = true
		d.CompletedAt = &at
		d.Streak++
		f.daily[id] = d
	}
	f.mu.Unlock()
	return f.GetByIDAndUser(ctx, id, userID)
}

func (f fakeDaily) Uncomplete(ctx context.Context, id, userID string) (model.DailyTask, error) {
	f.mu.Lock()
	d, ok := f.daily[id]
	if ok && d.UserID == userID && d.IsCompleted {
		d.IsCompleted = false
		d.CompletedAt = nil
		if d.Streak > 0 {
			d.Streak--
		}
		f.daily[id] = d
	}
	f.mu.Unlock()
	return f.GetByIDAndUser(ctx, id, userID)
}

func (f fakeDaily) History(_ context.Context, dailyTaskID string, since time.Time) ([]model.DailyTaskHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.DailyTaskHistory{}
	for _, h := range f.history {
		if h.DailyTaskID == dailyTaskID && !h.Date.Before(since) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}
