//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"admitflow/internal/docrequest/models"
	"admitflow/pkg/sentinel"
	"admitflow/pkg/testutil/containers"
)

type PostgresRequestSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *Postgres
	ctx   context.Context
}

func TestPostgresRequestSuite(t *testing.T) {
	suite.Run(t, new(PostgresRequestSuite))
}

func (s *PostgresRequestSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.GetPostgres(s.T())
	s.Require().NoError(s.pg.Migrate(s.ctx, Schema))
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresRequestSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(s.ctx, "document_requests"))
}

func (s *PostgresRequestSuite) TestLinearTransitions() {
	req := &models.Request{ApplicationID: 1, Reason: "migration certificate missing"}
	_, err := s.store.Create(s.ctx, req)
	s.Require().NoError(err)

	uploaded, err := s.store.Execute(s.ctx, req.ID,
		func(r *models.Request) error { return r.CanUpload() },
		func(r *models.Request) {
			path := "uploads/requested-1.pdf"
			r.FilePath = &path
			r.Status = models.StatusUploaded
		},
	)
	s.Require().NoError(err)
	s.Equal(models.StatusUploaded, uploaded.Status)

	_, err = s.store.Execute(s.ctx, req.ID,
		func(r *models.Request) error { return r.CanUpload() },
		func(r *models.Request) {},
	)
	s.ErrorIs(err, sentinel.ErrInvalidState)

	approved, err := s.store.Execute(s.ctx, req.ID,
		func(r *models.Request) error { return r.CanApprove() },
		func(r *models.Request) { r.Status = models.StatusApproved },
	)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, approved.Status)
}

func (s *PostgresRequestSuite) TestListByApplicationOrdersByID() {
	for _, reason := range []string{"first", "second"} {
		_, err := s.store.Create(s.ctx, &models.Request{ApplicationID: 7, Reason: reason})
		s.Require().NoError(err)
	}
	_, err := s.store.Create(s.ctx, &models.Request{ApplicationID: 8, Reason: "other"})
	s.Require().NoError(err)

	reqs, err := s.store.ListByApplication(s.ctx, 7)
	s.Require().NoError(err)
	s.Require().Len(reqs, 2)
	s.Equal("first", reqs[0].Reason)
	s.Equal("second", reqs[1].Reason)
}
