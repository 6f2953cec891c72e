package api

import (
	"github.com/dmitrijs2005/postplanner/internal/models"
	"github.com/dmitrijs2005/postplanner/internal/schedule"
)

type Empty struct{}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type RegisterResponse struct {
	UserID string `json:"user_id"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries a fresh access/refresh token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type WhoAmIResponse struct {
	Identity models.Identity `json:"identity"`
}

type ListWorkspacesResponse struct {
	Workspaces []models.Workspace `json:"workspaces"`
}

type CreateWorkspaceRequest struct {
	Name string `json:"name" validate:"workspace_name"`
}

type GetWorkspaceRequest struct {
	ID string `json:"id" validate:"required"`
}

type WorkspaceResponse struct {
	Workspace models.Workspace `json:"workspace"`
}

// ListItemsRequest is a schedule.Query; the server always replaces the
// owner with the authenticated user.
type ListItemsRequest struct {
	Query schedule.Query `json:"query"`
}

type ListItemsResponse struct {
	Items []models.ScheduledItem `json:"items"`
}

type CreateItemRequest struct {
	Item models.ScheduledItem `json:"item"`
}

type ItemResponse struct {
	Item models.ScheduledItem `json:"item"`
}

type DeleteItemRequest struct {
	ID string `json:"id" validate:"required"`
}

// ConnectionRequest addresses the connections of one workspace and platform
// of the authenticated user.
type ConnectionRequest struct {
	WorkspaceID string          `json:"workspace_id" validate:"required"`
	Platform    models.Platform `json:"platform" validate:"required"`
}

type CountConnectionsResponse struct {
	Count int64 `json:"count"`
}

type AuthURLResponse struct {
	URL string `json:"url"`
}

type UploadTicketRequest struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"content_type"`
}

// UploadTicketResponse tells the client where to PUT the media and which
// durable URL to store on the item afterwards.
type UploadTicketResponse struct {
	UploadURL string            `json:"upload_url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers,omitempty"`
	MediaURL  string            `json:"media_url"`
}

type WatchRequest struct {
	WorkspaceID string `json:"workspace_id,omitempty"`
}
