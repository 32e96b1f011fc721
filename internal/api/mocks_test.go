package api

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"postplanner/internal/common"
	"postplanner/internal/dbmysql"
	"postplanner/internal/submission"
)

type MockPostBackend struct {
	mock.Mock
}

func (m *MockPostBackend) Get(ctx context.Context, postID string) (*dbmysql.Post, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dbmysql.Post), args.Error(1)
}

func (m *MockPostBackend) Delete(ctx context.Context, postID string) error {
	args := m.Called(ctx, postID)
	return args.Error(0)
}

func (m *MockPostBackend) Reschedule(ctx context.Context, postID string, start, end time.Time) error {
	args := m.Called(ctx, postID, start, end)
	return args.Error(0)
}

func (m *MockPostBackend) ListRange(ctx context.Context, teamID string, from, to time.Time) ([]dbmysql.Post, error) {
	args := m.Called(ctx, teamID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dbmysql.Post), args.Error(1)
}

func (m *MockPostBackend) Quota(ctx context.Context, teamID string) (common.Quota, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).(common.Quota), args.Error(1)
}

func (m *MockPostBackend) Accounts(ctx context.Context, teamID string) ([]dbmysql.SocialAccount, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dbmysql.SocialAccount), args.Error(1)
}

type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(ctx context.Context, req submission.Request) (*submission.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*submission.Result), args.Error(1)
}

func (m *MockSubmitter) AvailableActions(ctx context.Context, postID string) ([]submission.Action, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]submission.Action), args.Error(1)
}

type MockReviewer struct {
	mock.Mock
}

func (m *MockReviewer) Decide(ctx context.Context, postID, reviewerID string, decision common.Decision, comment string) (*dbmysql.ApprovalInstance, error) {
	args := m.Called(ctx, postID, reviewerID, decision, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dbmysql.ApprovalInstance), args.Error(1)
}

type MockLibrary struct {
	mock.Mock
}

func (m *MockLibrary) Upload(ctx context.Context, teamID, uploaderID string, file common.LocalFile) (string, error) {
	args := m.Called(ctx, teamID, uploaderID, file)
	return args.String(0), args.Error(1)
}

func (m *MockLibrary) List(ctx context.Context, teamID string, limit, offset int) ([]dbmysql.MediaRef, error) {
	args := m.Called(ctx, teamID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dbmysql.MediaRef), args.Error(1)
}
