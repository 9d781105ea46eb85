package authz

import "fmt"

// RoleSeed a built-in role and its rules.
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds roles every installation starts with.
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "readonly_auditor",
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
		},
		{
			Role:     "catalog_editor",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/tours", Action: "*"},
				{Object: "/admin/tours/:id", Action: "*"},
				{Object: "/admin/webshop-items", Action: "*"},
				{Object: "/admin/webshop-items/:uuid", Action: "*"},
				{Object: "/admin/faq", Action: "*"},
				{Object: "/admin/faq/:id", Action: "*"},
				{Object: "/admin/press", Action: "*"},
				{Object: "/admin/press/:id", Action: "*"},
				{Object: "/admin/content/reorder", Action: "POST"},
				{Object: "/admin/catalog-sync", Action: "POST"},
			},
		},
		{
			Role:     "bookings_desk",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/gift-cards", Action: "*"},
				{Object: "/admin/gift-cards/:id", Action: "*"},
				{Object: "/admin/gift-cards/:id/adjust", Action: "POST"},
				{Object: "/admin/profiles/:id", Action: "PATCH"},
			},
		},
	}
}

// BootstrapBuiltinRoles creates the built-in roles and rules; existing rules are kept.
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return ErrUnavailable
	}
	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}
		for _, parent := range seed.Inherits {
			parentRole, err := s.EnsureRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role %s to %s: %w", role, parentRole, err)
			}
		}
		for _, policy := range seed.Policies {
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), NormalizeAction(policy.Action)); err != nil {
				return fmt.Errorf("add builtin policy: %w", err)
			}
		}
	}
	return nil
}
