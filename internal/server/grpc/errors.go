package grpc

import (
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/server/identity"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps session-layer errors to gRPC statuses. Anything unknown
// becomes Internal without leaking the cause to the client.
func toStatus(err error) error {
	var rejected *identity.RejectedError
	var verrs services.ValidationErrors

	switch {
	case errors.Is(err, services.ErrMissingCredential):
		return status.Error(codes.InvalidArgument, "missing credential")
	case errors.Is(err, identity.ErrUnreachable):
		return status.Error(codes.Unavailable, "identity provider unreachable")
	case errors.As(err, &rejected):
		return status.Error(codes.Unauthenticated, rejected.Error())
	case errors.As(err, &verrs):
		return invalidProfileStatus(verrs)
	case errors.Is(err, services.ErrAccountDisabled):
		return status.Error(codes.PermissionDenied, "account disabled")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// invalidProfileStatus attaches the failed field rules as BadRequest details.
func invalidProfileStatus(verrs services.ValidationErrors) error {
	st := status.New(codes.FailedPrecondition, "invalid profile")

	br := &errdetails.BadRequest{}
	for _, fe := range verrs {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       fe.Field,
			Description: fe.Rule,
		})
	}

	if detailed, err := st.WithDetails(br); err == nil {
		st = detailed
	}
	return st.Err()
}
