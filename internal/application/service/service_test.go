package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"admitflow/internal/application/models"
	"admitflow/internal/application/store"
	dErrors "admitflow/pkg/domain-errors"
)

type ApplicationServiceSuite struct {
	suite.Suite
	store *store.Memory
	svc   *Service
	ctx   context.Context
}

func TestApplicationServiceSuite(t *testing.T) {
	suite.Run(t, new(ApplicationServiceSuite))
}

func (s *ApplicationServiceSuite) SetupTest() {
	s.store = store.NewMemory()
	s.svc = New(s.store)
	s.ctx = context.Background()
}

func (s *ApplicationServiceSuite) valid() *models.Application {
	return &models.Application{
		StudentName: "Asha Rao",
		Email:       "asha@example.com",
		CourseID:    1,
	}
}

func (s *ApplicationServiceSuite) TestSubmitValidatesFinalSubmissions() {
	_, err := s.svc.Submit(s.ctx, &models.Application{Email: "a@example.com", CourseID: 1}, false)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.svc.Submit(s.ctx, &models.Application{StudentName: "Asha", Email: "not-an-email", CourseID: 1}, false)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	id, err := s.svc.Submit(s.ctx, s.valid(), false)
	s.Require().NoError(err)
	s.Positive(id)
}

func (s *ApplicationServiceSuite) TestDraftsSkipValidation() {
	id, err := s.svc.Submit(s.ctx, &models.Application{Email: "sparse@example.com"}, true)
	s.Require().NoError(err)

	app, err := s.svc.Get(s.ctx, id)
	s.Require().NoError(err)
	s.True(app.IsDraft)
}

func (s *ApplicationServiceSuite) TestTooManyPreferencesRejected() {
	app := s.valid()
	app.Preferences = []int64{1, 2, 3, 4}
	_, err := s.svc.Submit(s.ctx, app, false)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ApplicationServiceSuite) TestLookupRequiresBothKeys() {
	_, err := s.svc.Lookup(s.ctx, 0, "asha@example.com")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = s.svc.Lookup(s.ctx, 1, "")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ApplicationServiceSuite) TestLookupWrongEmailLooksLikeUnknownID() {
	id, err := s.svc.Submit(s.ctx, s.valid(), false)
	s.Require().NoError(err)

	_, wrongEmail := s.svc.Lookup(s.ctx, id, "other@example.com")
	_, unknownID := s.svc.Lookup(s.ctx, id+1, "asha@example.com")
	s.Equal(dErrors.MessageOf(wrongEmail), dErrors.MessageOf(unknownID))
	s.Equal(dErrors.CodeOf(wrongEmail), dErrors.CodeOf(unknownID))
}

func (s *ApplicationServiceSuite) TestUpdateStatusRejectsPending() {
	id, err := s.svc.Submit(s.ctx, s.valid(), false)
	s.Require().NoError(err)

	_, err = s.svc.UpdateStatus(s.ctx, id, models.StatusPending)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	app, err := s.svc.UpdateStatus(s.ctx, id, models.StatusApproved)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, app.Status)
}

func (s *ApplicationServiceSuite) TestSetSelection() {
	id, err := s.svc.Submit(s.ctx, s.valid(), false)
	s.Require().NoError(err)

	_, err = s.svc.SetSelection(s.ctx, id, models.SelectionStatus("shortlisted"))
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	app, err := s.svc.SetSelection(s.ctx, id, models.SelectionWaitlisted)
	s.Require().NoError(err)
	s.Equal(models.SelectionWaitlisted, app.SelectionStatus)
}

func (s *ApplicationServiceSuite) TestAttachDocumentReturnsReplacedPath() {
	id, err := s.svc.Submit(s.ctx, s.valid(), false)
	s.Require().NoError(err)

	previous, err := s.svc.AttachDocument(s.ctx, id, models.DocPhoto, "uploads/photo-1.jpg")
	s.Require().NoError(err)
	s.Nil(previous)

	previous, err = s.svc.AttachDocument(s.ctx, id, models.DocPhoto, "uploads/photo-2.jpg")
	s.Require().NoError(err)
	s.Require().NotNil(previous)
	s.Equal("uploads/photo-1.jpg", *previous)

	app, err := s.svc.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("uploads/photo-2.jpg", *app.Documents.Photo)
}

func (s *ApplicationServiceSuite) TestListDraftsRequiresEmail() {
	_, err := s.svc.ListDrafts(s.ctx, "")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}
