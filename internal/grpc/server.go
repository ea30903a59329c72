package igrpc

import (
	"context"
	"errors"
	"math"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "relation.v1.RelationInternal"

type FriendChecker interface {
	AreFriends(ctx context.Context, userID, otherID int64) (bool, error)
}

type BlockChecker interface {
	IsBlocked(ctx context.Context, userID, otherID int64) (bool, error)
}

// RelationInternalServer answers relationship questions for sibling services.
type RelationInternalServer interface {
	AreFriends(ctx context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error)
	IsBlocked(ctx context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error)
}

var relationInternalDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RelationInternalServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AreFriends", Handler: areFriendsHandler},
		{MethodName: "IsBlocked", Handler: isBlockedHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "relation/v1/relation.proto",
}

func areFriendsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RelationInternalServer).AreFriends(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/AreFriends"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RelationInternalServer).AreFriends(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func isBlockedHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RelationInternalServer).IsBlocked(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/IsBlocked"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RelationInternalServer).IsBlocked(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func RegisterRelationInternalServer(s grpc.ServiceRegistrar, srv RelationInternalServer) {
	s.RegisterService(&relationInternalDesc, srv)
}

type RelationGRPCServer struct {
	friends FriendChecker
	blocks  BlockChecker
	log     *zap.Logger
}

func NewRelationGRPCServer(friends FriendChecker, blocks BlockChecker, log *zap.Logger) *RelationGRPCServer {
	if log == nil {
		log = zap.NewNop()
	}
	return &RelationGRPCServer{friends: friends, blocks: blocks, log: log}
}

// StartGRPCServer listens on addr and serves until ctx is cancelled.
func StartGRPCServer(ctx context.Context, addr string, relations *RelationGRPCServer, log *zap.Logger) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return serve(ctx, lis, relations, log), nil
}

func serve(ctx context.Context, lis net.Listener, relations *RelationGRPCServer, log *zap.Logger) *grpc.Server {
	if log == nil {
		log = zap.NewNop()
	}

	srv := grpc.NewServer(grpc.UnaryInterceptor(loggingInterceptor(log)))
	RegisterRelationInternalServer(srv, relations)

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, healthSrv)

	go func() {
		<-ctx.Done()
		healthSrv.Shutdown()
		srv.GracefulStop()
	}()

	go func() {
		log.Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
		if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Error("gRPC server error", zap.Error(err))
		}
	}()

	return srv
}

func loggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			log.Warn("gRPC call failed", zap.String("method", info.FullMethod), zap.Error(err))
		}
		return resp, err
	}
}

func (s *RelationGRPCServer) AreFriends(ctx context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error) {
	userID, otherID, err := pairFromRequest(req)
	if err != nil {
		return nil, err
	}
	friends, err := s.friends.AreFriends(ctx, userID, otherID)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to check friendship: %v", err)
	}
	return wrapperspb.Bool(friends), nil
}

func (s *RelationGRPCServer) IsBlocked(ctx context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error) {
	userID, otherID, err := pairFromRequest(req)
	if err != nil {
		return nil, err
	}
	blocked, err := s.blocks.IsBlocked(ctx, userID, otherID)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to check blacklist: %v", err)
	}
	return wrapperspb.Bool(blocked), nil
}

func pairFromRequest(req *structpb.Struct) (int64, int64, error) {
	userID, err := idField(req, "user_id")
	if err != nil {
		return 0, 0, err
	}
	otherID, err := idField(req, "other_id")
	if err != nil {
		return 0, 0, err
	}
	return userID, otherID, nil
}

func idField(req *structpb.Struct, name string) (int64, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", name)
	}
	f := n.NumberValue
	if f <= 0 || f != math.Trunc(f) || f > math.MaxInt64 {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a positive integer", name)
	}
	return int64(f), nil
}
