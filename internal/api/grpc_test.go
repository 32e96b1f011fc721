package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"postplanner/internal/common"
	"postplanner/internal/dbmysql"
)

type grpcFixture struct {
	posts *MockPostBackend
	conn  *grpc.ClientConn
	token string
}

func newGRPCFixture(t *testing.T) *grpcFixture {
	t.Helper()

	posts := new(MockPostBackend)
	jwtManager := common.NewJWTManager("test-secret", "planner-test")
	token, err := jwtManager.GenerateToken("user-1", "team-1", time.Hour)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	server := NewGRPCServer(NewGRPCHandler(posts, testConfig(), nil), jwtManager, nil)
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &grpcFixture{posts: posts, conn: conn, token: token}
}

func (f *grpcFixture) authed(ctx context.Context) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+f.token)
}

func TestGRPC_HealthIsPublic(t *testing.T) {
	f := newGRPCFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := healthpb.NewHealthClient(f.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: CalendarServiceName})

	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestGRPC_RequiresToken(t *testing.T) {
	f := newGRPCFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out := new(structpb.Struct)
	err := f.conn.Invoke(ctx, "/"+CalendarServiceName+"/DayLayout", timestamppb.New(at(6, 0, 0)), out)

	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestGRPC_DayLayout(t *testing.T) {
	f := newGRPCFixture(t)
	f.posts.On("ListRange", mock.Anything, "team-1", timeIs(at(6, 0, 0)), timeIs(at(7, 0, 0))).
		Return([]dbmysql.Post{*scheduledPost()}, nil).Once()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out := new(structpb.Struct)
	err := f.conn.Invoke(f.authed(ctx), "/"+CalendarServiceName+"/DayLayout", timestamppb.New(at(6, 15, 0)), out)

	require.NoError(t, err)
	timed := out.GetFields()["timed"].GetListValue().GetValues()
	require.Len(t, timed, 1)
	entry := timed[0].GetStructValue().GetFields()
	assert.Equal(t, "12:10pm", entry["label"].GetStringValue())
	assert.InDelta(t, 730, entry["top"].GetNumberValue(), 0.001)
	f.posts.AssertExpectations(t)
}

func TestGRPC_DayLayoutUnknownZone(t *testing.T) {
	f := newGRPCFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ctx = metadata.AppendToOutgoingContext(f.authed(ctx), "x-timezone", "Mars/Olympus")

	err := f.conn.Invoke(ctx, "/"+CalendarServiceName+"/DayLayout", timestamppb.New(at(6, 0, 0)), new(structpb.Struct))

	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	f.posts.AssertNotCalled(t, "ListRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func rescheduleArgs(t *testing.T, fields map[string]interface{}) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return s
}

func TestGRPC_Reschedule(t *testing.T) {
	f := newGRPCFixture(t)
	f.posts.On("Get", mock.Anything, "p1").Return(scheduledPost(), nil).Once()
	f.posts.On("Reschedule", mock.Anything, "p1", timeIs(at(7, 9, 0)), timeIs(at(7, 9, 20))).Return(nil).Once()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out := new(structpb.Struct)
	err := f.conn.Invoke(f.authed(ctx), "/"+CalendarServiceName+"/Reschedule", rescheduleArgs(t, map[string]interface{}{
		"post_id": "p1", "view": "week", "date": "2024-03-07", "hour": 9.1,
	}), out)

	require.NoError(t, err)
	fields := out.GetFields()
	assert.True(t, fields["changed"].GetBoolValue())
	assert.Equal(t, "2024-03-07T09:00:00Z", fields["start"].GetStringValue())
	assert.Equal(t, "2024-03-07T09:20:00Z", fields["end"].GetStringValue())
	f.posts.AssertExpectations(t)
}

func TestGRPC_RescheduleErrors(t *testing.T) {
	foreign := scheduledPost()
	foreign.TeamID = "team-2"

	tests := []struct {
		name  string
		args  map[string]interface{}
		setup func(m *MockPostBackend)
		want  codes.Code
	}{
		{
			name: "missing post id",
			args: map[string]interface{}{"date": "2024-03-07", "hour": 9.0},
			want: codes.InvalidArgument,
		},
		{
			name: "bad hour",
			args: map[string]interface{}{"post_id": "p1", "date": "2024-03-07", "hour": 25.0},
			want: codes.InvalidArgument,
		},
		{
			name: "unknown post",
			args: map[string]interface{}{"post_id": "p1", "date": "2024-03-07", "hour": 9.0},
			setup: func(m *MockPostBackend) {
				m.On("Get", mock.Anything, "p1").Return(nil, common.ErrNotFound).Once()
			},
			want: codes.NotFound,
		},
		{
			name: "other team",
			args: map[string]interface{}{"post_id": "p1", "date": "2024-03-07", "hour": 9.0},
			setup: func(m *MockPostBackend) {
				m.On("Get", mock.Anything, "p1").Return(foreign, nil).Once()
			},
			want: codes.NotFound,
		},
		{
			name: "storage failure is opaque",
			args: map[string]interface{}{"post_id": "p1", "date": "2024-03-07", "hour": 9.0},
			setup: func(m *MockPostBackend) {
				m.On("Get", mock.Anything, "p1").Return(scheduledPost(), nil).Once()
				m.On("Reschedule", mock.Anything, "p1", mock.Anything, mock.Anything).Return(errors.New("deadlock")).Once()
			},
			want: codes.Internal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGRPCFixture(t)
			if tt.setup != nil {
				tt.setup(f.posts)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			err := f.conn.Invoke(f.authed(ctx), "/"+CalendarServiceName+"/Reschedule", rescheduleArgs(t, tt.args), new(structpb.Struct))

			assert.Equal(t, tt.want, status.Code(err))
			if tt.want == codes.Internal {
				assert.Equal(t, "internal error", status.Convert(err).Message())
			}
		})
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		http int
		grpc codes.Code
	}{
		{"malformed", errMalformedBody, http.StatusBadRequest, codes.InvalidArgument},
		{"validation", common.NewValidationError("content", "too long"), http.StatusUnprocessableEntity, codes.InvalidArgument},
		{"not found", common.ErrNotFound, http.StatusNotFound, codes.NotFound},
		{"forbidden", common.ErrForbidden, http.StatusForbidden, codes.PermissionDenied},
		{"busy", common.ErrBusy, http.StatusConflict, codes.FailedPrecondition},
		{"transition", common.ErrInvalidTransition, http.StatusConflict, codes.FailedPrecondition},
		{"quota", common.ErrQuotaExceeded, http.StatusConflict, codes.ResourceExhausted},
		{"upload", &common.UploadError{File: "a.png", Err: errors.New("reset")}, http.StatusBadGateway, codes.Unavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.http, statusFor(tt.err))
			assert.Equal(t, tt.grpc, codeFor(tt.err))
		})
	}
}
