package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"admitflow/internal/application/models"
	"admitflow/pkg/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *Memory
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) create(app *models.Application) int64 {
	id, err := s.store.Create(s.ctx, app)
	s.Require().NoError(err)
	return id
}

func (s *MemoryStoreSuite) TestCreateAppliesDefaults() {
	id := s.create(&models.Application{StudentName: "Asha", Email: "asha@example.com"})

	app, err := s.store.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, app.Status)
	s.Equal(models.SelectionNone, app.SelectionStatus)
	s.Equal(models.PaymentPending, app.PaymentStatus)
	s.False(app.DocumentsVerified)
	s.False(app.CreatedAt.IsZero())
}

func (s *MemoryStoreSuite) TestFindByIDNotFound() {
	_, err := s.store.FindByID(s.ctx, 99)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestLookupDoesNotLeakExistence() {
	id := s.create(&models.Application{StudentName: "Asha", Email: "asha@example.com"})

	_, wrongEmail := s.store.FindByIDAndEmail(s.ctx, id, "other@example.com")
	_, unknownID := s.store.FindByIDAndEmail(s.ctx, id+1, "asha@example.com")
	s.ErrorIs(wrongEmail, sentinel.ErrNotFound)
	s.ErrorIs(unknownID, sentinel.ErrNotFound)
	s.Equal(wrongEmail, unknownID)

	app, err := s.store.FindByIDAndEmail(s.ctx, id, "asha@example.com")
	s.Require().NoError(err)
	s.Equal(id, app.ID)
}

func (s *MemoryStoreSuite) TestListSubmittedExcludesDraftsAndOrders() {
	s.create(&models.Application{Email: "a@example.com", CourseID: 1})
	s.create(&models.Application{Email: "b@example.com", CourseID: 2, IsDraft: true})
	s.create(&models.Application{Email: "c@example.com", CourseID: 1})

	apps, err := s.store.ListSubmitted(s.ctx, models.Filter{})
	s.Require().NoError(err)
	s.Require().Len(apps, 2)
	s.Less(apps[0].ID, apps[1].ID)

	courseID := int64(1)
	filtered, err := s.store.ListSubmitted(s.ctx, models.Filter{CourseID: &courseID})
	s.Require().NoError(err)
	s.Len(filtered, 2)

	courseID = 2
	filtered, err = s.store.ListSubmitted(s.ctx, models.Filter{CourseID: &courseID})
	s.Require().NoError(err)
	s.Empty(filtered)
}

func (s *MemoryStoreSuite) TestExecuteValidateErrorLeavesRecordUntouched() {
	id := s.create(&models.Application{Email: "a@example.com"})

	_, err := s.store.Execute(s.ctx, id,
		func(*models.Application) error { return sentinel.ErrInvalidState },
		func(a *models.Application) { a.StudentName = "mutated" },
	)
	s.ErrorIs(err, sentinel.ErrInvalidState)

	app, err := s.store.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Empty(app.StudentName)
}

func (s *MemoryStoreSuite) TestExecuteRecomputesDerivedFlag() {
	id := s.create(&models.Application{Email: "a@example.com"})

	app, err := s.store.Execute(s.ctx, id, nil, func(a *models.Application) {
		a.AdminVerified = true
	})
	s.Require().NoError(err)
	s.False(app.DocumentsVerified)

	app, err = s.store.Execute(s.ctx, id, nil, func(a *models.Application) {
		a.FacultyVerified = true
	})
	s.Require().NoError(err)
	s.True(app.DocumentsVerified)
}

func (s *MemoryStoreSuite) TestExecuteReturnsClone() {
	id := s.create(&models.Application{Email: "a@example.com"})

	app, err := s.store.Execute(s.ctx, id, nil, func(a *models.Application) {
		a.StudentName = "Asha"
	})
	s.Require().NoError(err)

	app.StudentName = "tampered"
	stored, err := s.store.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("Asha", stored.StudentName)
}

// Two reviewers flipping their flags concurrently must always leave the
// derived flag consistent with both committed writes.
func TestMemoryExecuteConcurrentFlagWrites(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	id, err := store.Create(ctx, &models.Application{Email: "a@example.com"})
	require.NoError(t, err)

	for range 50 {
		_, err := store.Execute(ctx, id, nil, func(a *models.Application) {
			a.AdminVerified = false
			a.FacultyVerified = false
		})
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = store.Execute(ctx, id, nil, func(a *models.Application) { a.AdminVerified = true })
		}()
		go func() {
			defer wg.Done()
			_, _ = store.Execute(ctx, id, nil, func(a *models.Application) { a.FacultyVerified = true })
		}()
		wg.Wait()

		app, err := store.FindByID(ctx, id)
		require.NoError(t, err)
		require.True(t, app.DocumentsVerified, "both flags set but consensus not derived")
	}
}
