package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/agritrack/agritrack/internal/auth"
	"github.com/agritrack/agritrack/internal/shared"
)

// UpdateUserRequest is the explicit allow-list of mutable account
// fields. Role and IsActive are honoured only for admin callers.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=farmer admin"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// Service applies access rules over account administration.
type Service struct {
	repo Repository
}

// NewService constructs a users service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns accounts. Admin only.
func (s *Service) List(ctx context.Context, caller shared.Identity, req ListUsersRequest) ([]auth.User, shared.Pagination, error) {
	if !caller.IsAdmin() {
		return nil, shared.Pagination{}, shared.ErrAccessDenied
	}
	users, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("list users: %w", err)
	}
	return users, shared.NewPagination(req.Page, req.PerPage, int(total)), nil
}

// Get returns one account. Callers may read themselves; admins anyone.
func (s *Service) Get(ctx context.Context, caller shared.Identity, id int64) (*auth.User, error) {
	if !caller.IsAdmin() && caller.UserID != id {
		return nil, shared.ErrAccessDenied
	}
	return s.repo.Get(ctx, id)
}

// Update mutates an account. Non-admin callers may only change their own
// name and email; role and active flag changes require admin.
func (s *Service) Update(ctx context.Context, caller shared.Identity, id int64, req UpdateUserRequest) (*auth.User, error) {
	if !caller.IsAdmin() && caller.UserID != id {
		return nil, shared.ErrAccessDenied
	}
	if !caller.IsAdmin() && (req.Role != nil || req.IsActive != nil) {
		return nil, shared.ErrAccessDenied
	}

	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = strings.ToLower(*req.Email)
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.repo.Get(ctx, id)
}
