package client

import (
	"context"

	"github.com/dmitrijs2005/postplanner/internal/api"
	"github.com/dmitrijs2005/postplanner/internal/models"
	"github.com/dmitrijs2005/postplanner/internal/schedule"
)

var (
	_ schedule.RecordStore    = (*GRPCClient)(nil)
	_ schedule.WorkspaceStore = (*GRPCClient)(nil)
)

// ListItems fetches the items matching q. The server scopes the query to
// the authenticated user whatever q.UserID says.
func (s *GRPCClient) ListItems(ctx context.Context, q schedule.Query) ([]models.ScheduledItem, error) {
	resp, err := s.client.ListItems(ctx, &api.ListItemsRequest{Query: q})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Items, nil
}

func (s *GRPCClient) InsertItem(ctx context.Context, item *models.ScheduledItem) (*models.ScheduledItem, error) {
	resp, err := s.client.CreateItem(ctx, &api.CreateItemRequest{Item: *item})
	if err != nil {
		return nil, mapError(err)
	}
	return &resp.Item, nil
}

func (s *GRPCClient) DeleteItem(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &api.DeleteItemRequest{ID: id})
	return mapError(err)
}

func (s *GRPCClient) CountConnections(ctx context.Context, scope schedule.ConnectionScope) (int64, error) {
	resp, err := s.client.CountConnections(ctx, connectionRequest(scope))
	if err != nil {
		return 0, mapError(err)
	}
	return resp.Count, nil
}

func (s *GRPCClient) DeleteConnections(ctx context.Context, scope schedule.ConnectionScope) error {
	_, err := s.client.DeleteConnections(ctx, connectionRequest(scope))
	return mapError(err)
}

func connectionRequest(scope schedule.ConnectionScope) *api.ConnectionRequest {
	return &api.ConnectionRequest{WorkspaceID: scope.WorkspaceID, Platform: scope.Platform}
}

func (s *GRPCClient) ListWorkspaces(ctx context.Context) ([]models.Workspace, error) {
	resp, err := s.client.ListWorkspaces(ctx, &api.Empty{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Workspaces, nil
}

func (s *GRPCClient) CreateWorkspace(ctx context.Context, name string) (*models.Workspace, error) {
	resp, err := s.client.CreateWorkspace(ctx, &api.CreateWorkspaceRequest{Name: name})
	if err != nil {
		return nil, mapError(err)
	}
	return &resp.Workspace, nil
}

func (s *GRPCClient) GetWorkspace(ctx context.Context, id string) (*models.Workspace, error) {
	resp, err := s.client.GetWorkspace(ctx, &api.GetWorkspaceRequest{ID: id})
	if err != nil {
		return nil, mapError(err)
	}
	return &resp.Workspace, nil
}
