package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"mangashelf/internal/browse"
	"mangashelf/internal/facet"
	"mangashelf/internal/paginate"
)

const ServiceName = "mangashelf.browse.v1.BrowseService"

type OpenSessionRequest struct {
	Locale string `json:"locale,omitempty"`
}

type SessionRequest struct {
	SessionID string `json:"session_id"`
}

type DispatchRequest struct {
	SessionID string       `json:"session_id"`
	Action    facet.Action `json:"action"`
}

type PageRequest struct {
	SessionID string      `json:"session_id"`
	Op        paginate.Op `json:"op"`
	Page      int         `json:"page,omitempty"`
}

type RangeInputRequest struct {
	SessionID string           `json:"session_id"`
	Field     facet.RangeField `json:"field"`
	Side      facet.Side       `json:"side"`
	Text      string           `json:"text"`
}

type SessionReply struct {
	SessionID string      `json:"session_id"`
	View      browse.View `json:"view"`
}

type RangeInputReply struct {
	Committed bool        `json:"committed"`
	View      browse.View `json:"view"`
}

type CloseReply struct {
	Closed bool `json:"closed"`
}

// BrowseServer is the server side of BrowseService.
type BrowseServer interface {
	OpenSession(context.Context, *OpenSessionRequest) (*SessionReply, error)
	GetView(context.Context, *SessionRequest) (*SessionReply, error)
	GetFacets(context.Context, *SessionRequest) (*browse.Facets, error)
	Dispatch(context.Context, *DispatchRequest) (*SessionReply, error)
	Page(context.Context, *PageRequest) (*SessionReply, error)
	RangeInput(context.Context, *RangeInputRequest) (*RangeInputReply, error)
	CloseSession(context.Context, *SessionRequest) (*CloseReply, error)
}

func RegisterBrowseServer(s grpc.ServiceRegistrar, srv BrowseServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary builds a method handler for one request type.
func unary[Req any, Resp any](name string, call func(BrowseServer, context.Context, *Req) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(BrowseServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(BrowseServer), ctx, req.(*Req))
			})
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BrowseServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("OpenSession", BrowseServer.OpenSession),
		unary("GetView", BrowseServer.GetView),
		unary("GetFacets", BrowseServer.GetFacets),
		unary("Dispatch", BrowseServer.Dispatch),
		unary("Page", BrowseServer.Page),
		unary("RangeInput", BrowseServer.RangeInput),
		unary("CloseSession", BrowseServer.CloseSession),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mangashelf/browse/v1",
}
