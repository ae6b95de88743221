package merit

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"admitflow/internal/application/models"
	"admitflow/internal/application/store"
)

type MeritSuite struct {
	suite.Suite
	apps *store.Memory
	svc  *Service
	ctx  context.Context
}

func TestMeritSuite(t *testing.T) {
	suite.Run(t, new(MeritSuite))
}

func (s *MeritSuite) SetupTest() {
	s.apps = store.NewMemory()
	s.svc = New(s.apps)
	s.ctx = context.Background()
}

func (s *MeritSuite) submit(name, examRank string, courseID int64) int64 {
	id, err := s.apps.Create(s.ctx, &models.Application{
		StudentName: name,
		Email:       name + "@example.com",
		CourseID:    courseID,
		ExamRank:    examRank,
	})
	s.Require().NoError(err)
	return id
}

func (s *MeritSuite) TestNumericRanksSortAscending() {
	s.submit("a", "120", 1)
	s.submit("b", "45", 1)
	s.submit("c", "7", 1)

	entries, err := s.svc.Rank(s.ctx, nil)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal("c", entries[0].StudentName)
	s.Equal("b", entries[1].StudentName)
	s.Equal("a", entries[2].StudentName)
	s.Equal([]int{1, 2, 3}, []int{entries[0].Rank, entries[1].Rank, entries[2].Rank})
}

func (s *MeritSuite) TestNonNumericAndEmptyRanksSortWorst() {
	s.submit("a", "120", 1)
	s.submit("b", "", 1)
	s.submit("c", "forty-five", 1)
	s.submit("d", "45", 1)

	entries, err := s.svc.Rank(s.ctx, nil)
	s.Require().NoError(err)
	s.Require().Len(entries, 4)
	s.Equal("d", entries[0].StudentName)
	s.Equal("a", entries[1].StudentName)
	// Unparseable ranks tie at worst and fall back to id order.
	s.Equal("b", entries[2].StudentName)
	s.Equal("c", entries[3].StudentName)
}

func (s *MeritSuite) TestTiesBreakByApplicationID() {
	first := s.submit("a", "45", 1)
	second := s.submit("b", "45", 1)

	entries, err := s.svc.Rank(s.ctx, nil)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(first, entries[0].ApplicationID)
	s.Equal(second, entries[1].ApplicationID)
}

func (s *MeritSuite) TestCourseFilter() {
	s.submit("a", "10", 1)
	s.submit("b", "5", 2)

	courseID := int64(2)
	entries, err := s.svc.Rank(s.ctx, &courseID)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("b", entries[0].StudentName)
	s.Equal(1, entries[0].Rank)
}

func (s *MeritSuite) TestDraftsNeverRank() {
	s.submit("a", "10", 1)
	_, err := s.apps.Create(s.ctx, &models.Application{
		Email: "draft@example.com", CourseID: 1, ExamRank: "1", IsDraft: true,
	})
	s.Require().NoError(err)

	entries, err := s.svc.Rank(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func TestParseExamRank(t *testing.T) {
	require.Equal(t, uint64(45), parseExamRank(" 45 "))
	require.Equal(t, uint64(0), parseExamRank("0"))
	require.Equal(t, uint64(math.MaxUint64), parseExamRank(""))
	require.Equal(t, parseExamRank("abc"), parseExamRank(""))
	require.Equal(t, parseExamRank("-3"), parseExamRank(""))
}
