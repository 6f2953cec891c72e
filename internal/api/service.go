package api

import (
	"context"

	"github.com/dmitrijs2005/postplanner/internal/schedule"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "postplanner.v1.Scheduler"

// Full method names, as seen by interceptors.
const (
	MethodRegister           = "/" + ServiceName + "/Register"
	MethodLogin              = "/" + ServiceName + "/Login"
	MethodRefreshToken       = "/" + ServiceName + "/RefreshToken"
	MethodLogout             = "/" + ServiceName + "/Logout"
	MethodPing               = "/" + ServiceName + "/Ping"
	MethodWhoAmI             = "/" + ServiceName + "/WhoAmI"
	MethodListWorkspaces     = "/" + ServiceName + "/ListWorkspaces"
	MethodCreateWorkspace    = "/" + ServiceName + "/CreateWorkspace"
	MethodGetWorkspace       = "/" + ServiceName + "/GetWorkspace"
	MethodListItems          = "/" + ServiceName + "/ListItems"
	MethodCreateItem         = "/" + ServiceName + "/CreateItem"
	MethodDeleteItem         = "/" + ServiceName + "/DeleteItem"
	MethodCountConnections   = "/" + ServiceName + "/CountConnections"
	MethodDeleteConnections  = "/" + ServiceName + "/DeleteConnections"
	MethodAuthURL            = "/" + ServiceName + "/AuthURL"
	MethodCreateUploadTicket = "/" + ServiceName + "/CreateUploadTicket"
	MethodWatch              = "/" + ServiceName + "/Watch"
)

// PublicMethods do not require an access token.
var PublicMethods = map[string]bool{
	MethodRegister:     true,
	MethodLogin:        true,
	MethodRefreshToken: true,
	MethodPing:         true,
}

// SchedulerServer is the server API of the Scheduler service.
type SchedulerServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*TokenResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*TokenResponse, error)
	Logout(context.Context, *LogoutRequest) (*Empty, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	WhoAmI(context.Context, *Empty) (*WhoAmIResponse, error)
	ListWorkspaces(context.Context, *Empty) (*ListWorkspacesResponse, error)
	CreateWorkspace(context.Context, *CreateWorkspaceRequest) (*WorkspaceResponse, error)
	GetWorkspace(context.Context, *GetWorkspaceRequest) (*WorkspaceResponse, error)
	ListItems(context.Context, *ListItemsRequest) (*ListItemsResponse, error)
	CreateItem(context.Context, *CreateItemRequest) (*ItemResponse, error)
	DeleteItem(context.Context, *DeleteItemRequest) (*Empty, error)
	CountConnections(context.Context, *ConnectionRequest) (*CountConnectionsResponse, error)
	DeleteConnections(context.Context, *ConnectionRequest) (*Empty, error)
	AuthURL(context.Context, *ConnectionRequest) (*AuthURLResponse, error)
	CreateUploadTicket(context.Context, *UploadTicketRequest) (*UploadTicketResponse, error)
	Watch(*WatchRequest, SchedulerWatchServer) error
}

// SchedulerWatchServer is the server side of the Watch stream.
type SchedulerWatchServer interface {
	Send(*schedule.ChangeEvent) error
	grpc.ServerStream
}

// UnimplementedSchedulerServer answers every call with codes.Unimplemented.
// Embed it to satisfy SchedulerServer partially.
type UnimplementedSchedulerServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedSchedulerServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, unimplemented("Register")
}
func (UnimplementedSchedulerServer) Login(context.Context, *LoginRequest) (*TokenResponse, error) {
	return nil, unimplemented("Login")
}
func (UnimplementedSchedulerServer) RefreshToken(context.Context, *RefreshTokenRequest) (*TokenResponse, error) {
	return nil, unimplemented("RefreshToken")
}
func (UnimplementedSchedulerServer) Logout(context.Context, *LogoutRequest) (*Empty, error) {
	return nil, unimplemented("Logout")
}
func (UnimplementedSchedulerServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, unimplemented("Ping")
}
func (UnimplementedSchedulerServer) WhoAmI(context.Context, *Empty) (*WhoAmIResponse, error) {
	return nil, unimplemented("WhoAmI")
}
func (UnimplementedSchedulerServer) ListWorkspaces(context.Context, *Empty) (*ListWorkspacesResponse, error) {
	return nil, unimplemented("ListWorkspaces")
}
func (UnimplementedSchedulerServer) CreateWorkspace(context.Context, *CreateWorkspaceRequest) (*WorkspaceResponse, error) {
	return nil, unimplemented("CreateWorkspace")
}
func (UnimplementedSchedulerServer) GetWorkspace(context.Context, *GetWorkspaceRequest) (*WorkspaceResponse, error) {
	return nil, unimplemented("GetWorkspace")
}
func (UnimplementedSchedulerServer) ListItems(context.Context, *ListItemsRequest) (*ListItemsResponse, error) {
	return nil, unimplemented("ListItems")
}
func (UnimplementedSchedulerServer) CreateItem(context.Context, *CreateItemRequest) (*ItemResponse, error) {
	return nil, unimplemented("CreateItem")
}
func (UnimplementedSchedulerServer) DeleteItem(context.Context, *DeleteItemRequest) (*Empty, error) {
	return nil, unimplemented("DeleteItem")
}
func (UnimplementedSchedulerServer) CountConnections(context.Context, *ConnectionRequest) (*CountConnectionsResponse, error) {
	return nil, unimplemented("CountConnections")
}
func (UnimplementedSchedulerServer) DeleteConnections(context.Context, *ConnectionRequest) (*Empty, error) {
	return nil, unimplemented("DeleteConnections")
}
func (UnimplementedSchedulerServer) AuthURL(context.Context, *ConnectionRequest) (*AuthURLResponse, error) {
	return nil, unimplemented("AuthURL")
}
func (UnimplementedSchedulerServer) CreateUploadTicket(context.Context, *UploadTicketRequest) (*UploadTicketResponse, error) {
	return nil, unimplemented("CreateUploadTicket")
}
func (UnimplementedSchedulerServer) Watch(*WatchRequest, SchedulerWatchServer) error {
	return unimplemented("Watch")
}

// RegisterSchedulerServer registers srv on s.
func RegisterSchedulerServer(s grpc.ServiceRegistrar, srv SchedulerServer) {
	s.RegisterService(&SchedulerServiceDesc, srv)
}

// SchedulerServiceDesc is the grpc.ServiceDesc of the Scheduler service.
var SchedulerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SchedulerServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", SchedulerServer.Register),
		unary("Login", SchedulerServer.Login),
		unary("RefreshToken", SchedulerServer.RefreshToken),
		unary("Logout", SchedulerServer.Logout),
		unary("Ping", SchedulerServer.Ping),
		unary("WhoAmI", SchedulerServer.WhoAmI),
		unary("ListWorkspaces", SchedulerServer.ListWorkspaces),
		unary("CreateWorkspace", SchedulerServer.CreateWorkspace),
		unary("GetWorkspace", SchedulerServer.GetWorkspace),
		unary("ListItems", SchedulerServer.ListItems),
		unary("CreateItem", SchedulerServer.CreateItem),
		unary("DeleteItem", SchedulerServer.DeleteItem),
		unary("CountConnections", SchedulerServer.CountConnections),
		unary("DeleteConnections", SchedulerServer.DeleteConnections),
		unary("AuthURL", SchedulerServer.AuthURL),
		unary("CreateUploadTicket", SchedulerServer.CreateUploadTicket),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
	Metadata: "postplanner/v1/scheduler",
}

// unary adapts a typed server method to a grpc.MethodDesc, decoding the
// request and threading it through the server's interceptor chain.
func unary[Req, Resp any](name string, call func(SchedulerServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SchedulerServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SchedulerServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(WatchRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(SchedulerServer).Watch(in, &watchServer{stream})
}

type watchServer struct {
	grpc.ServerStream
}

func (x *watchServer) Send(ev *schedule.ChangeEvent) error {
	return x.ServerStream.SendMsg(ev)
}
