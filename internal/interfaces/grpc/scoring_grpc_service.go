// Package grpc exposes the scoring service over gRPC next to the HTTP API.
// Messages are google.protobuf.Struct documents carrying the same JSON shapes
// as the HTTP API, so no generated stubs are needed.
package grpc

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	appservice "github.com/turtacn/tips/internal/application/service"
	"github.com/turtacn/tips/pkg/errors"
	"github.com/turtacn/tips/pkg/logger"
)

// Fully qualified gRPC names of the scoring service.
const (
	ServiceName        = "tips.v1.ScoringService"
	ScoreMethod        = "/" + ServiceName + "/Score"
	GetArtifactsMethod = "/" + ServiceName + "/GetArtifacts"
)

// ScoringServer is the server side of tips.v1.ScoringService.
type ScoringServer interface {
	// Score takes a profile document and returns the score document.
	Score(ctx context.Context, profile *structpb.Struct) (*structpb.Struct, error)
	// GetArtifacts describes the artifacts in service.
	GetArtifacts(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error)
}

var scoringServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ScoringServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Score", Handler: scoreHandler},
		{MethodName: "GetArtifacts", Handler: getArtifactsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tips/v1/scoring.proto",
}

func scoreHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScoringServer).Score(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ScoreMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ScoringServer).Score(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func getArtifactsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScoringServer).GetArtifacts(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetArtifactsMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ScoringServer).GetArtifacts(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// ScoringGRPCService implements ScoringServer on top of the application service.
type ScoringGRPCService struct {
	scoring appservice.ScoringAppService
	log     logger.Logger
}

// NewScoringGRPCServer creates a gRPC server with the scoring and health services registered.
// Health reports SERVING for ServiceName only while artifacts are loaded.
func NewScoringGRPCServer(scoring appservice.ScoringAppService, log logger.Logger, opts ...grpc.ServerOption) *grpc.Server {
	log = log.WithComponent("grpc")
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(
		UnaryRecoveryInterceptor(log),
		UnaryLoggingInterceptor(log),
		UnaryErrorInterceptor(),
	)}, opts...)

	server := grpc.NewServer(opts...)
	server.RegisterService(&scoringServiceDesc, &ScoringGRPCService{scoring: scoring, log: log})

	healthSrv := health.NewServer()
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if scoring.Ready() {
		status = healthpb.HealthCheckResponse_SERVING
	}
	healthSrv.SetServingStatus(ServiceName, status)
	healthpb.RegisterHealthServer(server, healthSrv)
	return server
}

// Score handles tips.v1.ScoringService/Score.
func (s *ScoringGRPCService) Score(ctx context.Context, profile *structpb.Struct) (*structpb.Struct, error) {
	resp, err := s.scoring.ScoreProfile(ctx, profile.AsMap())
	if err != nil {
		return nil, err
	}
	return toStruct(resp)
}

// GetArtifacts handles tips.v1.ScoringService/GetArtifacts.
func (s *ScoringGRPCService) GetArtifacts(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	info, err := s.scoring.ArtifactInfo(ctx)
	if err != nil {
		return nil, err
	}
	return toStruct(info)
}

// toStruct converts a response DTO through its JSON form, keeping the HTTP field names.
func toStruct(v interface{}) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.ErrInternal("failed to encode response").WithCause(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, errors.ErrInternal("failed to encode response").WithCause(err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, errors.ErrInternal("failed to encode response").WithCause(err)
	}
	return out, nil
}

//Personal.AI order the ending
