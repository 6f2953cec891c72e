package grpc

import (
	"context"

	"github.com/dmitrijs2005/postplanner/internal/api"
	"github.com/dmitrijs2005/postplanner/internal/schedule"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {
	s.logger.Info(ctx, "Registration request")

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	user, err := s.svc.Users.Register(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "user_id", user.ID)
	return &api.RegisterResponse{UserID: user.ID}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.TokenResponse, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	tokens, err := s.svc.Users.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.TokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.TokenResponse, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	tokens, err := s.svc.Users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.TokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *api.LogoutRequest) (*api.Empty, error) {
	if err := s.svc.Users.Logout(ctx, req.RefreshToken); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *api.Empty) (*api.WhoAmIResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	id, err := s.svc.Users.Identity(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.WhoAmIResponse{Identity: *id}, nil
}

func (s *GRPCServer) ListWorkspaces(ctx context.Context, _ *api.Empty) (*api.ListWorkspacesResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.svc.Workspaces.List(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.ListWorkspacesResponse{Workspaces: list}, nil
}

func (s *GRPCServer) CreateWorkspace(ctx context.Context, req *api.CreateWorkspaceRequest) (*api.WorkspaceResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	ws, err := s.svc.Workspaces.Create(ctx, userID, req.Name)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.WorkspaceResponse{Workspace: *ws}, nil
}

func (s *GRPCServer) GetWorkspace(ctx context.Context, req *api.GetWorkspaceRequest) (*api.WorkspaceResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	ws, err := s.svc.Workspaces.Get(ctx, userID, req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.WorkspaceResponse{Workspace: *ws}, nil
}

func (s *GRPCServer) ListItems(ctx context.Context, req *api.ListItemsRequest) (*api.ListItemsResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.svc.Schedule.List(ctx, userID, req.Query)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.ListItemsResponse{Items: list}, nil
}

func (s *GRPCServer) CreateItem(ctx context.Context, req *api.CreateItemRequest) (*api.ItemResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	item, err := s.svc.Schedule.Create(ctx, userID, &req.Item)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.ItemResponse{Item: *item}, nil
}

func (s *GRPCServer) DeleteItem(ctx context.Context, req *api.DeleteItemRequest) (*api.Empty, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.svc.Schedule.Delete(ctx, userID, req.ID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.Empty{}, nil
}

func connectionScope(req *api.ConnectionRequest) schedule.ConnectionScope {
	return schedule.ConnectionScope{WorkspaceID: req.WorkspaceID, Platform: req.Platform}
}

func (s *GRPCServer) CountConnections(ctx context.Context, req *api.ConnectionRequest) (*api.CountConnectionsResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	n, err := s.svc.Connections.Count(ctx, userID, connectionScope(req))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.CountConnectionsResponse{Count: n}, nil
}

func (s *GRPCServer) DeleteConnections(ctx context.Context, req *api.ConnectionRequest) (*api.Empty, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.svc.Connections.Disconnect(ctx, userID, connectionScope(req)); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) AuthURL(ctx context.Context, req *api.ConnectionRequest) (*api.AuthURLResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	url, err := s.svc.Connections.AuthURL(ctx, userID, connectionScope(req))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.AuthURLResponse{URL: url}, nil
}

func (s *GRPCServer) CreateUploadTicket(ctx context.Context, req *api.UploadTicketRequest) (*api.UploadTicketResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	t, err := s.svc.Media.CreateUploadTicket(ctx, userID, req.Filename, req.ContentType)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.UploadTicketResponse{UploadURL: t.UploadURL, Method: t.Method, Headers: t.Headers, MediaURL: t.MediaURL}, nil
}

// Watch streams change events of the caller until the client goes away or
// the server shuts down.
func (s *GRPCServer) Watch(req *api.WatchRequest, stream api.SchedulerWatchServer) error {
	ctx := stream.Context()
	userID, err := s.userID(ctx)
	if err != nil {
		return err
	}
	if req.WorkspaceID != "" {
		if _, err := s.svc.Workspaces.Get(ctx, userID, req.WorkspaceID); err != nil {
			return s.toStatus(ctx, err)
		}
	}

	sub := s.svc.Changes.Subscribe(ctx, schedule.Scope{UserID: userID, WorkspaceID: req.WorkspaceID})
	defer sub.Close()

	s.logger.Debug(ctx, "watch started", "user_id", userID, "workspace_id", req.WorkspaceID)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stopping:
			return status.Error(codes.Unavailable, "server is shutting down")
		case ev, ok := <-sub.Events():
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return status.Error(codes.Unavailable, "change stream closed")
			}
			if err := stream.Send(&ev); err != nil {
				return err
			}
		}
	}
}
