package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/logger"
)

// LoggingInterceptor creates a gRPC unary server interceptor for logging requests.
func LoggingInterceptor(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		sc := trace.SpanFromContext(ctx).SpanContext()

		resp, err := handler(ctx, req)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Duration("duration", time.Since(start)),
			zap.String("status_code", status.Code(err).String()),
			zap.String("trace_id", sc.TraceID().String()),
		}
		if userID, role, ok := UserFromContext(ctx); ok {
			fields = append(fields, zap.String("user_id", userID), zap.String("user_role", role))
		}
		if err != nil {
			log.Error("gRPC request failed", append(fields, zap.Error(err))...)
		} else {
			log.Debug("gRPC request completed", fields...)
		}
		return resp, err
	}
}

// AuthInterceptor authenticates every method not listed in publicMethods and
// enforces requiredRoles per full method name.
func AuthInterceptor(jwtSecret string, log *logger.Logger, publicMethods map[string]bool, requiredRoles map[string][]string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if publicMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		var header string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get("authorization"); len(vals) > 0 {
				header = vals[0]
			}
		}
		raw, err := BearerToken(header)
		if err != nil {
			log.Warn("AuthInterceptor: missing or malformed authorization", zap.String("method", info.FullMethod), zap.Error(err))
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		claims, err := ParseToken(jwtSecret, raw)
		if err != nil {
			log.Warn("AuthInterceptor: token parsing/validation failed", zap.String("method", info.FullMethod), zap.Error(err))
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		if roles, ok := requiredRoles[info.FullMethod]; ok && !hasRole(claims.Role, roles) {
			log.Warn("AuthInterceptor: user does not have required role",
				zap.String("method", info.FullMethod),
				zap.String("user_id", claims.UserID),
				zap.String("user_role", claims.Role),
				zap.Strings("required_roles", roles))
			return nil, status.Errorf(codes.PermissionDenied, "user role '%s' not authorized for this action", claims.Role)
		}
		return handler(WithUser(ctx, claims.UserID, claims.Role), req)
	}
}

// RecoveryInterceptor turns handler panics into Internal errors.
func RecoveryInterceptor(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("gRPC handler panicked", zap.String("method", info.FullMethod), zap.Any("panic", r))
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
