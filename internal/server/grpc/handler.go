package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func (s *GRPCServer) Login(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}

	user, err := sess.Login(ctx, in.GetValue())
	if err != nil {
		s.logger.Info(ctx, "login refused", "error", err)
		return nil, toStatus(err)
	}

	return userStruct(user)
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}

	user, err := sess.CurrentUser(ctx)
	if err != nil {
		s.logger.Error(ctx, "error resolving session", "error", err)
		return nil, toStatus(err)
	}

	return userStruct(user)
}

func (s *GRPCServer) Logout(ctx context.Context, in *wrapperspb.BoolValue) (*structpb.Struct, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}

	user, err := sess.Logout(ctx, in.GetValue())
	if err != nil {
		s.logger.Error(ctx, "error ending session", "error", err)
		return nil, toStatus(err)
	}

	return userStruct(user)
}

func (s *GRPCServer) session(ctx context.Context) (*services.Session, error) {
	sess, ok := SessionFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Internal, "session not initialised")
	}
	return sess, nil
}

func userStruct(u *models.User) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(u.Attributes())
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return st, nil
}
