package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"mangashelf/internal/browse"
	"mangashelf/internal/facet"
	"mangashelf/internal/paginate"
)

// Client calls BrowseService over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, grpc.CallContentSubtype(CodecName))
}

func (c *Client) OpenSession(ctx context.Context, locale string) (*SessionReply, error) {
	out := new(SessionReply)
	return out, c.invoke(ctx, "OpenSession", &OpenSessionRequest{Locale: locale}, out)
}

func (c *Client) GetView(ctx context.Context, id string) (*SessionReply, error) {
	out := new(SessionReply)
	return out, c.invoke(ctx, "GetView", &SessionRequest{SessionID: id}, out)
}

func (c *Client) GetFacets(ctx context.Context, id string) (*browse.Facets, error) {
	out := new(browse.Facets)
	return out, c.invoke(ctx, "GetFacets", &SessionRequest{SessionID: id}, out)
}

func (c *Client) Dispatch(ctx context.Context, id string, a facet.Action) (*SessionReply, error) {
	out := new(SessionReply)
	return out, c.invoke(ctx, "Dispatch", &DispatchRequest{SessionID: id, Action: a}, out)
}

func (c *Client) Page(ctx context.Context, id string, op paginate.Op, page int) (*SessionReply, error) {
	out := new(SessionReply)
	return out, c.invoke(ctx, "Page", &PageRequest{SessionID: id, Op: op, Page: page}, out)
}

func (c *Client) RangeInput(ctx context.Context, id string, field facet.RangeField, side facet.Side, text string) (*RangeInputReply, error) {
	out := new(RangeInputReply)
	return out, c.invoke(ctx, "RangeInput", &RangeInputRequest{SessionID: id, Field: field, Side: side, Text: text}, out)
}

func (c *Client) CloseSession(ctx context.Context, id string) error {
	return c.invoke(ctx, "CloseSession", &SessionRequest{SessionID: id}, new(CloseReply))
}
