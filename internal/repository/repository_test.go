package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/projecthub/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var userCols = []string{"id", "email", "password_hash", "first_name", "last_name", "timezone", "user_type", "is_active", "created_at", "updated_at"}

func TestUserRepo_CreateNormalizesAndDefaults(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "ada@example.com", "hash", "Ada", "Lovelace",
			"UTC", model.UserTypeIndividual, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &model.User{Email: "  Ada@Example.com ", PasswordHash: "hash", FirstName: "Ada", LastName: "Lovelace"}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.True(t, u.IsActive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \?`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM users WHERE email = \?`).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u1", "ada@example.com", "hash", "Ada", "Lovelace", "Europe/London", "company", false, ts, ts))

	u, err := repo.GetByEmail(context.Background(), "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "company", u.UserType)
	assert.False(t, u.IsActive)
	assert.Equal(t, "Europe/London", u.Timezone)
}

func TestUserRepo_UpdateProfileOnlyGivenFields(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	tz := "Asia/Tokyo"

	mock.ExpectExec(`UPDATE users SET timezone = \?, updated_at = \? WHERE id = \?`).
		WithArgs(tz, sqlmock.AnyArg(), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateProfile(context.Background(), "u1", ProfileUpdate{Timezone: &tz}))
	// nothing to change, no query
	require.NoError(t, repo.UpdateProfile(context.Background(), "u1", ProfileUpdate{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyRepo_CreateAddsAdminMember(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCompanyRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO companies`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO company_members`).
		WithArgs(sqlmock.AnyArg(), "owner", sqlmock.AnyArg(), model.RoleAdmin, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c := &model.Company{Name: "Acme", OwnerID: "owner"}
	require.NoError(t, repo.Create(context.Background(), c))
	assert.NotEmpty(t, c.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyRepo_CreateRollsBackOnMemberFailure(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCompanyRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO companies`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO company_members`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.Company{Name: "Acme", OwnerID: "owner"})
	assert.ErrorIs(t, err, assert.AnError)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepo_ListByOwnerAppliesFilters(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProjectRepo(db)
	ts := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM projects p WHERE p.owner_id = \? AND p.status = \?`).
		WithArgs("owner", "active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(`FROM projects p .* WHERE p.owner_id = \? AND p.status = \? ORDER BY p.created_at DESC LIMIT \? OFFSET \?`).
		WithArgs("owner", "active", 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "description", "methodology", "status", "priority",
			"start_date", "end_date", "owner_id", "company_id", "created_at", "updated_at",
			"uid", "first", "last", "email",
		}).AddRow("p1", "Apollo", "", "scrum", "active", "high",
			nil, ts, "owner", nil, ts, ts,
			"owner", "Ada", "Lovelace", "ada@example.com"))

	items, total, err := repo.ListByOwner(context.Background(), "owner", ProjectFilter{Status: "active", Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].StartDate)
	require.NotNil(t, items[0].EndDate)
	assert.Nil(t, items[0].CompanyID)
	require.NotNil(t, items[0].Owner)
	assert.Equal(t, "Ada", items[0].Owner.FirstName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepo_DeleteNotOwned(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProjectRepo(db)

	mock.ExpectExec(`DELETE FROM projects WHERE id = \? AND owner_id = \?`).
		WithArgs("p1", "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.DeleteByIDAndOwner(context.Background(), "p1", "intruder"), ErrNotFound)
}

func TestTaskRepo_ListByProjectIDsEmpty(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTaskRepo(db)

	tasks, err := repo.ListByProjectIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepo_CreateEncodesTags(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTaskRepo(db)

	mock.ExpectExec(`INSERT INTO tasks`).
		WithArgs(sqlmock.AnyArg(), "Write docs", "", model.TaskTodo, model.PriorityMedium, nil,
			nil, nil, `["docs","v2"]`, "p1", nil, "u1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	task := &model.Task{Title: "Write docs", Tags: []string{"docs", "v2"}, ProjectID: "p1", CreatedByID: "u1"}
	require.NoError(t, repo.Create(context.Background(), task))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?,?,?", placeholders(3))
}
