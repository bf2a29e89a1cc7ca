package grpc

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	grpcCodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/turtacn/tips/pkg/errors"
	"github.com/turtacn/tips/pkg/logger"
)

// UnaryRecoveryInterceptor 恢复拦截器(捕获 panic)
func UnaryRecoveryInterceptor(log logger.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error(ctx, "gRPC handler panic recovered", fmt.Errorf("%v", r),
					logger.String("method", info.FullMethod),
				)
				err = status.Error(grpcCodes.Internal, "internal server error")
			}
		}()

		return handler(ctx, req)
	}
}

// UnaryLoggingInterceptor 日志拦截器
func UnaryLoggingInterceptor(log logger.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		startTime := time.Now()

		var userAgent string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if agents := md.Get("user-agent"); len(agents) > 0 {
				userAgent = agents[0]
			}
		}

		resp, err := handler(ctx, req)

		statusCode := grpcCodes.OK
		if err != nil {
			statusCode = toStatus(err).Code()
		}
		fields := []logger.Field{
			logger.String("method", info.FullMethod),
			logger.String("user_agent", userAgent),
			logger.Int64("duration_ms", time.Since(startTime).Milliseconds()),
			logger.String("status", statusCode.String()),
		}
		if err != nil && errors.ShouldLogError(err) {
			log.Error(ctx, "gRPC request failed", err, fields...)
		} else {
			log.Info(ctx, "gRPC request completed", fields...)
		}
		return resp, err
	}
}

// UnaryErrorInterceptor 错误转换拦截器(将领域错误转换为 gRPC 状态码)
func UnaryErrorInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		return resp, toStatus(err).Err()
	}
}

// toStatus maps a domain error onto a gRPC status. Server-side failures expose
// only their generic description, as the HTTP API does.
func toStatus(err error) *status.Status {
	if st, ok := status.FromError(err); ok {
		return st
	}
	coreErr, ok := errors.AsCoreError(err)
	if !ok {
		return status.New(grpcCodes.Internal, "An unexpected error occurred")
	}

	var code grpcCodes.Code
	switch coreErr.HTTPStatus() {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		code = grpcCodes.InvalidArgument
	case http.StatusServiceUnavailable:
		code = grpcCodes.Unavailable
	default:
		code = grpcCodes.Internal
	}
	if code != grpcCodes.InvalidArgument {
		return status.New(code, coreErr.Description())
	}

	st := status.New(code, coreErr.Error())
	violations, _ := coreErr.Metadata()["violations"].(map[string]string)
	if len(violations) == 0 {
		field := errors.FieldOf(err)
		if field == "" {
			return st
		}
		violations = map[string]string{field: coreErr.Error()}
	}
	fields := make([]string, 0, len(violations))
	for f := range violations {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	br := &errdetails.BadRequest{}
	for _, f := range fields {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       f,
			Description: violations[f],
		})
	}
	detailed, detailErr := st.WithDetails(br)
	if detailErr != nil {
		return st
	}
	return detailed
}

//Personal.AI order the ending
