package api

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"postplanner/internal/calendar"
	"postplanner/internal/common"
	"postplanner/internal/config"
	"postplanner/internal/reschedule"
)

const (
	CalendarServiceName = "planner.v1.Calendar"
	timezoneMetadataKey = "x-timezone"
)

// CalendarServer speaks only well-known types so no generated code is needed.
type CalendarServer interface {
	DayLayout(ctx context.Context, day *timestamppb.Timestamp) (*structpb.Struct, error)
	Reschedule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var calendarServiceDesc = grpc.ServiceDesc{
	ServiceName: CalendarServiceName,
	HandlerType: (*CalendarServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "DayLayout", Handler: dayLayoutHandler},
		{MethodName: "Reschedule", Handler: rescheduleHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "planner/v1/calendar.proto",
}

func RegisterCalendarServer(s grpc.ServiceRegistrar, srv CalendarServer) {
	s.RegisterService(&calendarServiceDesc, srv)
}

func dayLayoutHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(timestamppb.Timestamp)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalendarServer).DayLayout(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + CalendarServiceName + "/DayLayout"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CalendarServer).DayLayout(ctx, req.(*timestamppb.Timestamp))
	}
	return interceptor(ctx, in, info, handler)
}

func rescheduleHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalendarServer).Reschedule(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + CalendarServiceName + "/Reschedule"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CalendarServer).Reschedule(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type GRPCHandler struct {
	posts           PostBackend
	opts            calendar.Options
	defaultDuration time.Duration
	log             *zap.Logger
}

func NewGRPCHandler(posts PostBackend, cfg *config.Config, log *zap.Logger) *GRPCHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &GRPCHandler{
		posts:           posts,
		opts:            calendar.OptionsFromConfig(cfg.Calendar),
		defaultDuration: cfg.Calendar.DefaultDuration,
		log:             log,
	}
}

// DayLayout lays out the calendar day containing the given instant, in the
// zone named by the x-timezone metadata (UTC when absent).
func (g *GRPCHandler) DayLayout(ctx context.Context, day *timestamppb.Timestamp) (*structpb.Struct, error) {
	if err := day.CheckValid(); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid day timestamp")
	}
	loc, err := loadLocation(metadataValue(ctx, timezoneMetadataKey))
	if err != nil {
		return nil, grpcError(err)
	}

	anchor := day.AsTime().In(loc)
	from, to := calendar.VisibleRange(calendar.ViewDay, anchor, g.opts.Month.WeekStartsOn)
	posts, err := g.posts.ListRange(ctx, common.TeamIDFromContext(ctx), from, to)
	if err != nil {
		return nil, grpcError(err)
	}

	layout := calendar.LayoutDay(calendar.FromPosts(posts, loc, g.defaultDuration), anchor, g.opts.Grid)
	return toStruct(layout)
}

// Reschedule expects {post_id, date, hour, view, tz} and answers
// {post_id, changed, start, end}.
func (g *GRPCHandler) Reschedule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	postID := fields["post_id"].GetStringValue()
	if postID == "" {
		return nil, status.Error(codes.InvalidArgument, "post_id is required")
	}

	target, loc, err := targetRequest{
		View: fields["view"].GetStringValue(),
		Date: fields["date"].GetStringValue(),
		Hour: fields["hour"].GetNumberValue(),
		TZ:   fields["tz"].GetStringValue(),
	}.toTarget()
	if err != nil {
		return nil, grpcError(err)
	}

	post, err := g.posts.Get(ctx, postID)
	if err != nil {
		return nil, grpcError(err)
	}
	if post.TeamID != common.TeamIDFromContext(ctx) {
		return nil, status.Error(codes.NotFound, "post not found")
	}
	ev, ok := calendar.FromPost(post, loc, g.defaultDuration)
	if !ok {
		return nil, status.Error(codes.FailedPrecondition, "post is not on the calendar")
	}

	start, end, changed := reschedule.Resolve(ev, target)
	if changed {
		if err := g.posts.Reschedule(ctx, postID, start, end); err != nil {
			return nil, grpcError(err)
		}
		g.log.Info("post rescheduled over grpc", zap.String("post_id", postID), zap.Time("start", start))
	}

	return structpb.NewStruct(map[string]interface{}{
		"post_id": postID,
		"changed": changed,
		"start":   start.Format(time.RFC3339),
		"end":     end.Format(time.RFC3339),
	})
}

// NewGRPCServer wires auth, health and reflection around the calendar service.
func NewGRPCServer(h *GRPCHandler, jwtManager *common.JWTManager, log *zap.Logger) *grpc.Server {
	if log == nil {
		log = zap.NewNop()
	}
	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			loggingInterceptor(log),
			common.AuthInterceptor(jwtManager),
		),
	)

	RegisterCalendarServer(server, h)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(CalendarServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)

	reflection.Register(server)
	return server
}

func loggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("grpc request",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("elapsed", time.Since(start)))
		return resp, err
	}
}

func metadataValue(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if vals := md.Get(key); len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// toStruct goes through JSON so the struct mirrors the HTTP payload.
func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode layout")
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Error(codes.Internal, "encode layout")
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode layout")
	}
	return s, nil
}
