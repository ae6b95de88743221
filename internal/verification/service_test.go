package verification

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"admitflow/internal/application/models"
	"admitflow/internal/application/store"
	dErrors "admitflow/pkg/domain-errors"
)

type VerificationSuite struct {
	suite.Suite
	apps *store.Memory
	svc  *Service
	ctx  context.Context
}

func TestVerificationSuite(t *testing.T) {
	suite.Run(t, new(VerificationSuite))
}

func (s *VerificationSuite) SetupTest() {
	s.apps = store.NewMemory()
	s.svc = New(s.apps)
	s.ctx = context.Background()
}

func (s *VerificationSuite) submit() int64 {
	id, err := s.apps.Create(s.ctx, &models.Application{
		StudentName: "Asha",
		Email:       "asha@example.com",
		CourseID:    1,
	})
	s.Require().NoError(err)
	return id
}

func (s *VerificationSuite) TestSingleFlagIsNotConsensus() {
	id := s.submit()

	result, err := s.svc.SetAdminVerified(s.ctx, id, true)
	s.Require().NoError(err)
	s.True(result.AdminVerified)
	s.False(result.FacultyVerified)
	s.False(result.DocumentsVerified)
}

func (s *VerificationSuite) TestBothFlagsReachConsensus() {
	id := s.submit()

	_, err := s.svc.SetAdminVerified(s.ctx, id, true)
	s.Require().NoError(err)

	result, err := s.svc.SetFacultyVerified(s.ctx, id, true)
	s.Require().NoError(err)
	s.True(result.DocumentsVerified)
}

func (s *VerificationSuite) TestRetractingAFlagRetractsConsensus() {
	id := s.submit()

	_, err := s.svc.SetAdminVerified(s.ctx, id, true)
	s.Require().NoError(err)
	_, err = s.svc.SetFacultyVerified(s.ctx, id, true)
	s.Require().NoError(err)

	result, err := s.svc.SetAdminVerified(s.ctx, id, false)
	s.Require().NoError(err)
	s.False(result.DocumentsVerified)
	s.True(result.FacultyVerified)
}

func (s *VerificationSuite) TestUnknownApplication() {
	_, err := s.svc.SetAdminVerified(s.ctx, 99, true)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// Concurrent admin and faculty writes on the same application must never lose
// an update: after both commit, the derived flag reflects both.
func (s *VerificationSuite) TestConcurrentReviewersConverge() {
	for range 25 {
		id := s.submit()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.svc.SetAdminVerified(s.ctx, id, true)
			s.NoError(err)
		}()
		go func() {
			defer wg.Done()
			_, err := s.svc.SetFacultyVerified(s.ctx, id, true)
			s.NoError(err)
		}()
		wg.Wait()

		app, err := s.apps.FindByID(s.ctx, id)
		s.Require().NoError(err)
		s.True(app.AdminVerified)
		s.True(app.FacultyVerified)
		s.True(app.DocumentsVerified)
	}
}
