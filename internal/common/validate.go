package common

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Field limits shared by the client and the server. Titles follow the
// YouTube limit.
const (
	MaxTitleLength         = 100
	MaxDescriptionLength   = 5000
	MaxWorkspaceNameLength = 100
)

// NewValidator returns a validator with the shared aliases registered:
// "title", "description" and "workspace_name".
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterAlias("title", fmt.Sprintf("required,max=%d", MaxTitleLength))
	v.RegisterAlias("description", fmt.Sprintf("max=%d", MaxDescriptionLength))
	v.RegisterAlias("workspace_name", fmt.Sprintf("required,max=%d", MaxWorkspaceNameLength))
	return v
}
