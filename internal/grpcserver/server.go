// Package grpcserver exposes browsing sessions over gRPC. Messages are JSON
// encoded; clients must call with the "json" content subtype.
package grpcserver

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"mangashelf/internal/browse"
	"mangashelf/internal/catalog"
	"mangashelf/internal/facet"
	"mangashelf/internal/logging"
	"mangashelf/internal/normalize"
)

type Server struct {
	Registry   *browse.Registry
	Source     catalog.Source
	Normalizer *normalize.Normalizer
	Locale     string
	PageSize   int
}

func NewServer(reg *browse.Registry, src catalog.Source, n *normalize.Normalizer) *Server {
	return &Server{Registry: reg, Source: src, Normalizer: n}
}

func (s *Server) session(id string) (*browse.Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id required")
	}
	sess, ok := s.Registry.Get(id)
	if !ok {
		return nil, status.Error(codes.NotFound, "session not found")
	}
	return sess, nil
}

func (s *Server) OpenSession(ctx context.Context, req *OpenSessionRequest) (*SessionReply, error) {
	locale := s.Locale
	if l := strings.TrimSpace(req.Locale); l != "" {
		locale = l
	}
	sess, _ := s.Registry.Open(ctx, s.Source, browse.Options{
		Locale:     locale,
		PageSize:   s.PageSize,
		Normalizer: s.Normalizer,
	})
	return &SessionReply{SessionID: sess.ID, View: sess.View()}, nil
}

func (s *Server) GetView(_ context.Context, req *SessionRequest) (*SessionReply, error) {
	sess, err := s.session(req.SessionID)
	if err != nil {
		return nil, err
	}
	return &SessionReply{SessionID: sess.ID, View: sess.View()}, nil
}

func (s *Server) GetFacets(_ context.Context, req *SessionRequest) (*browse.Facets, error) {
	sess, err := s.session(req.SessionID)
	if err != nil {
		return nil, err
	}
	f := sess.Facets()
	return &f, nil
}

func (s *Server) Dispatch(_ context.Context, req *DispatchRequest) (*SessionReply, error) {
	sess, err := s.session(req.SessionID)
	if err != nil {
		return nil, err
	}
	v, err := sess.Dispatch(req.Action)
	if err != nil {
		return nil, toStatus(err)
	}
	return &SessionReply{SessionID: sess.ID, View: v}, nil
}

func (s *Server) Page(_ context.Context, req *PageRequest) (*SessionReply, error) {
	sess, err := s.session(req.SessionID)
	if err != nil {
		return nil, err
	}
	v, err := sess.Page(req.Op, req.Page)
	if err != nil {
		return nil, toStatus(err)
	}
	return &SessionReply{SessionID: sess.ID, View: v}, nil
}

func (s *Server) RangeInput(_ context.Context, req *RangeInputRequest) (*RangeInputReply, error) {
	sess, err := s.session(req.SessionID)
	if err != nil {
		return nil, err
	}
	v, committed, err := sess.RangeInput(req.Field, req.Side, req.Text)
	if err != nil {
		return nil, toStatus(err)
	}
	return &RangeInputReply{Committed: committed, View: v}, nil
}

func (s *Server) CloseSession(_ context.Context, req *SessionRequest) (*CloseReply, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id required")
	}
	if !s.Registry.Close(req.SessionID) {
		return nil, status.Error(codes.NotFound, "session not found")
	}
	return &CloseReply{Closed: true}, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, facet.ErrInvalidAction),
		errors.Is(err, browse.ErrInvalidPageOp),
		errors.Is(err, browse.ErrInvalidRange):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, browse.ErrSessionFailed):
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	return status.Error(codes.Internal, "internal error")
}

// LoggingInterceptor logs every unary call with its outcome and duration.
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	log := logging.Component("grpc")
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		ev := log.Debug()
		if err != nil {
			ev = log.Warn().Err(err)
		}
		ev.Str("method", info.FullMethod).
			Str("code", status.Code(err).String()).
			Dur("elapsed", time.Since(start)).
			Msg("rpc")
		return resp, err
	}
}
