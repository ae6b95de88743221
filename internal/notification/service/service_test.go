package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"admitflow/internal/notification/store"
	dErrors "admitflow/pkg/domain-errors"
)

type NotificationSuite struct {
	suite.Suite
	store *store.Memory
	ctx   context.Context
}

func TestNotificationSuite(t *testing.T) {
	suite.Run(t, new(NotificationSuite))
}

func (s *NotificationSuite) SetupTest() {
	s.store = store.NewMemory()
	s.ctx = context.Background()
}

func (s *NotificationSuite) TestAppendAndReadNewestFirst() {
	svc := New(s.store)

	_, err := svc.Append(s.ctx, nil, "results announced")
	s.Require().NoError(err)
	_, err = svc.Append(s.ctx, nil, "venue changed")
	s.Require().NoError(err)

	items, err := svc.ReadAll(s.ctx, nil)
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal("venue changed", items[0].Message)
	s.Equal("results announced", items[1].Message)
}

func (s *NotificationSuite) TestEmptyMessageRejected() {
	svc := New(s.store)
	_, err := svc.Append(s.ctx, nil, "   ")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *NotificationSuite) TestUnscopedReadsIgnoreRecipient() {
	svc := New(s.store)
	other := int64(2)
	_, err := svc.Append(s.ctx, &other, "addressed to someone else")
	s.Require().NoError(err)

	mine := int64(1)
	items, err := svc.ReadAll(s.ctx, &mine)
	s.Require().NoError(err)
	s.Len(items, 1)
}

func (s *NotificationSuite) TestScopedReadsFilterByRecipient() {
	svc := New(s.store, WithScopedReads(true))

	mine, other := int64(1), int64(2)
	_, err := svc.Append(s.ctx, nil, "broadcast")
	s.Require().NoError(err)
	_, err = svc.Append(s.ctx, &mine, "for me")
	s.Require().NoError(err)
	_, err = svc.Append(s.ctx, &other, "not for me")
	s.Require().NoError(err)

	items, err := svc.ReadAll(s.ctx, &mine)
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal("for me", items[0].Message)
	s.Equal("broadcast", items[1].Message)
}

func (s *NotificationSuite) TestNoteDelegatesToAppend() {
	svc := New(s.store)
	s.Require().NoError(svc.Note(s.ctx, nil, "reconciliation_pending: orphan capture"))

	items, err := svc.ReadAll(s.ctx, nil)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Contains(items[0].Message, "reconciliation_pending")
}
