package grpc

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/server/transport"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type ctxKey string

const sessionKey ctxKey = "session"

// sessionInterceptor opens a request-scoped Session for calls to the
// session service. Other services (health) pass through untouched.
func (s *GRPCServer) sessionInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !strings.HasPrefix(info.FullMethod, "/"+ServiceName+"/") {
		return handler(ctx, req)
	}

	creds := transport.NewMetadataCredentials(ctx, s.credentialKey)
	sess := s.manager.Begin(creds, auth.Fingerprint(userAgent(ctx)))

	resp, err := handler(context.WithValue(ctx, sessionKey, sess), req)

	if herr := creds.Err(); herr != nil {
		s.logger.Warn(ctx, "failed to send credential header", "method", info.FullMethod, "error", herr)
	}
	return resp, err
}

// SessionFromContext returns the Session opened by the interceptor.
func SessionFromContext(ctx context.Context) (*services.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*services.Session)
	return sess, ok
}

func userAgent(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("user-agent")
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
