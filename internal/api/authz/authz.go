package authz

import (
	"context"
	"errors"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// Principal is the API token a request authenticated with.
type Principal struct {
	TokenID int64
	OrgID   string
	Name    string
}

type principalContextKey struct{}
type organizationContextKey struct{}

// Organization represents the current organization from subdomain routing.
type Organization struct {
	ID       string
	Name     string
	Slug     string
	Timezone string
}

func ContextWithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// PrincipalFromContext retrieves the Principal stored in ctx.
// It returns nil if ctx is nil or no principal is stored.
func PrincipalFromContext(ctx context.Context) *Principal {
	if ctx == nil {
		return nil
	}
	principal, ok := ctx.Value(principalContextKey{}).(*Principal)
	if !ok {
		return nil
	}
	return principal
}

func ContextWithOrganization(ctx context.Context, org *Organization) context.Context {
	return context.WithValue(ctx, organizationContextKey{}, org)
}

func OrganizationFromContext(ctx context.Context) *Organization {
	if ctx == nil {
		return nil
	}
	org, ok := ctx.Value(organizationContextKey{}).(*Organization)
	if !ok {
		return nil
	}
	return org
}

// RequireOrganizationAccess checks that the request carries a token issued
// for orgID.
func RequireOrganizationAccess(ctx context.Context, orgID string) error {
	principal := PrincipalFromContext(ctx)
	if principal == nil {
		return ErrUnauthenticated
	}
	if orgID == "" || principal.OrgID != orgID {
		return ErrForbidden
	}
	return nil
}

// CurrentOrganization returns the routed organization once the caller is
// allowed to see it.
func CurrentOrganization(ctx context.Context) (*Organization, error) {
	principal := PrincipalFromContext(ctx)
	if principal == nil {
		return nil, ErrUnauthenticated
	}
	org := OrganizationFromContext(ctx)
	if org == nil {
		return nil, ErrForbidden
	}
	if err := RequireOrganizationAccess(ctx, org.ID); err != nil {
		return nil, err
	}
	return org, nil
}
