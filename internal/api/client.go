package api

import (
	"context"

	"github.com/dmitrijs2005/postplanner/internal/schedule"
	"google.golang.org/grpc"
)

// SchedulerClient is the client API of the Scheduler service.
type SchedulerClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*Empty, error)
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	WhoAmI(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*WhoAmIResponse, error)
	ListWorkspaces(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListWorkspacesResponse, error)
	CreateWorkspace(ctx context.Context, in *CreateWorkspaceRequest, opts ...grpc.CallOption) (*WorkspaceResponse, error)
	GetWorkspace(ctx context.Context, in *GetWorkspaceRequest, opts ...grpc.CallOption) (*WorkspaceResponse, error)
	ListItems(ctx context.Context, in *ListItemsRequest, opts ...grpc.CallOption) (*ListItemsResponse, error)
	CreateItem(ctx context.Context, in *CreateItemRequest, opts ...grpc.CallOption) (*ItemResponse, error)
	DeleteItem(ctx context.Context, in *DeleteItemRequest, opts ...grpc.CallOption) (*Empty, error)
	CountConnections(ctx context.Context, in *ConnectionRequest, opts ...grpc.CallOption) (*CountConnectionsResponse, error)
	DeleteConnections(ctx context.Context, in *ConnectionRequest, opts ...grpc.CallOption) (*Empty, error)
	AuthURL(ctx context.Context, in *ConnectionRequest, opts ...grpc.CallOption) (*AuthURLResponse, error)
	CreateUploadTicket(ctx context.Context, in *UploadTicketRequest, opts ...grpc.CallOption) (*UploadTicketResponse, error)
	Watch(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (SchedulerWatchClient, error)
}

// SchedulerWatchClient is the client side of the Watch stream.
type SchedulerWatchClient interface {
	Recv() (*schedule.ChangeEvent, error)
	grpc.ClientStream
}

type schedulerClient struct {
	cc grpc.ClientConnInterface
}

// NewSchedulerClient returns a client that always negotiates the JSON codec.
func NewSchedulerClient(cc grpc.ClientConnInterface) SchedulerClient {
	return &schedulerClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schedulerClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *schedulerClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *schedulerClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, MethodRefreshToken, in, opts)
}

func (c *schedulerClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodLogout, in, opts)
}

func (c *schedulerClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *schedulerClient) WhoAmI(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*WhoAmIResponse, error) {
	return invoke[WhoAmIResponse](ctx, c.cc, MethodWhoAmI, in, opts)
}

func (c *schedulerClient) ListWorkspaces(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListWorkspacesResponse, error) {
	return invoke[ListWorkspacesResponse](ctx, c.cc, MethodListWorkspaces, in, opts)
}

func (c *schedulerClient) CreateWorkspace(ctx context.Context, in *CreateWorkspaceRequest, opts ...grpc.CallOption) (*WorkspaceResponse, error) {
	return invoke[WorkspaceResponse](ctx, c.cc, MethodCreateWorkspace, in, opts)
}

func (c *schedulerClient) GetWorkspace(ctx context.Context, in *GetWorkspaceRequest, opts ...grpc.CallOption) (*WorkspaceResponse, error) {
	return invoke[WorkspaceResponse](ctx, c.cc, MethodGetWorkspace, in, opts)
}

func (c *schedulerClient) ListItems(ctx context.Context, in *ListItemsRequest, opts ...grpc.CallOption) (*ListItemsResponse, error) {
	return invoke[ListItemsResponse](ctx, c.cc, MethodListItems, in, opts)
}

func (c *schedulerClient) CreateItem(ctx context.Context, in *CreateItemRequest, opts ...grpc.CallOption) (*ItemResponse, error) {
	return invoke[ItemResponse](ctx, c.cc, MethodCreateItem, in, opts)
}

func (c *schedulerClient) DeleteItem(ctx context.Context, in *DeleteItemRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteItem, in, opts)
}

func (c *schedulerClient) CountConnections(ctx context.Context, in *ConnectionRequest, opts ...grpc.CallOption) (*CountConnectionsResponse, error) {
	return invoke[CountConnectionsResponse](ctx, c.cc, MethodCountConnections, in, opts)
}

func (c *schedulerClient) DeleteConnections(ctx context.Context, in *ConnectionRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteConnections, in, opts)
}

func (c *schedulerClient) AuthURL(ctx context.Context, in *ConnectionRequest, opts ...grpc.CallOption) (*AuthURLResponse, error) {
	return invoke[AuthURLResponse](ctx, c.cc, MethodAuthURL, in, opts)
}

func (c *schedulerClient) CreateUploadTicket(ctx context.Context, in *UploadTicketRequest, opts ...grpc.CallOption) (*UploadTicketResponse, error) {
	return invoke[UploadTicketResponse](ctx, c.cc, MethodCreateUploadTicket, in, opts)
}

func (c *schedulerClient) Watch(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (SchedulerWatchClient, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &SchedulerServiceDesc.Streams[0], MethodWatch, opts...)
	if err != nil {
		return nil, err
	}
	x := &watchClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type watchClient struct {
	grpc.ClientStream
}

func (x *watchClient) Recv() (*schedule.ChangeEvent, error) {
	m := new(schedule.ChangeEvent)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
