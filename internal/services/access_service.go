package services

import (
	"context"

	"github.com/sjperalta/bitacora-api/internal/models"
	"github.com/sjperalta/bitacora-api/internal/repository"
)

// Actor is the authenticated user acting for one organization
type Actor struct {
	UserID         uint   `json:"user_id"`
	OrganizationID uint   `json:"organization_id"`
	Role           string `json:"role"`
	Name           string `json:"name"`
}

// CanWrite reports whether the actor may author entries or close days
func (a *Actor) CanWrite() bool {
	return a.Role != models.MemberRoleViewer
}

// AccessService resolves actors and checks tenant isolation
type AccessService struct {
	members  repository.MembershipRepository
	projects repository.ProjectRepository
}

func NewAccessService(members repository.MembershipRepository, projects repository.ProjectRepository) *AccessService {
	return &AccessService{members: members, projects: projects}
}

// ResolveActor maps an authenticated user id to its organization membership
func (s *AccessService) ResolveActor(ctx context.Context, userID uint) (*Actor, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	member, err := s.members.FindByUser(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUnauthenticated
		}
		return nil, storageErr("resolve_actor", err)
	}
	return &Actor{
		UserID:         member.UserID,
		OrganizationID: member.OrganizationID,
		Role:           member.Role,
		Name:           member.User.DisplayName(),
	}, nil
}

// AuthorizeProject loads the project and checks it belongs to the actor's organization
func (s *AccessService) AuthorizeProject(ctx context.Context, actor *Actor, projectID uint) (*models.Project, error) {
	if actor == nil || actor.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	project, err := s.FindProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OrganizationID != actor.OrganizationID {
		return nil, ErrAccessDenied
	}
	return project, nil
}

// FindProject loads a project without any tenant check
func (s *AccessService) FindProject(ctx context.Context, projectID uint) (*models.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrProjectNotFound
		}
		return nil, storageErr("find_project", err)
	}
	return project, nil
}

// AuthorizeWrite is AuthorizeProject plus a role check
func (s *AccessService) AuthorizeWrite(ctx context.Context, actor *Actor, projectID uint) (*models.Project, error) {
	project, err := s.AuthorizeProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	if !actor.CanWrite() {
		return nil, ErrForbidden
	}
	return project, nil
}
