package domain

import (
	"marketsync/contract"
)

const ProfilesTable = "profiles"

type Role string

const (
	RoleClient       Role = "client"
	RoleProfessional Role = "professional"
	RoleAdmin        Role = "admin"
)

// Viewer is the authenticated user the views are rendered for.
type Viewer struct {
	UserID string
	Role   Role
}

func (v Viewer) IsProfessional() bool { return v.Role == RoleProfessional }

// Profile is a single record for both roles. Role-specific attributes are
// optional and only meaningful for the matching Role.
type Profile struct {
	UserID   string
	Role     Role
	FullName string
	Email    string
	Phone    *string
	City     *string
	State    *string

	// client
	CompanyName *string
	CNPJ        *string

	// professional
	Bio             *string
	Specialties     []string
	RegistryNumber  *string
	YearsExperience *int
	WhatsApp        *string
	Plan            PlanTier
}

// ProfilePatch carries only the attributes being changed. Nil means unchanged.
type ProfilePatch struct {
	FullName        *string
	Phone           *string
	City            *string
	State           *string
	CompanyName     *string
	CNPJ            *string
	Bio             *string
	Specialties     []string
	RegistryNumber  *string
	YearsExperience *int
	WhatsApp        *string
}

// Merge applies patch and drops attributes that do not belong to the profile role.
func (p Profile) Merge(patch ProfilePatch) Profile {
	set := func(dst **string, src *string) {
		if src != nil {
			*dst = src
		}
	}
	if patch.FullName != nil {
		p.FullName = *patch.FullName
	}
	set(&p.Phone, patch.Phone)
	set(&p.City, patch.City)
	set(&p.State, patch.State)

	switch p.Role {
	case RoleClient:
		set(&p.CompanyName, patch.CompanyName)
		set(&p.CNPJ, patch.CNPJ)
	case RoleProfessional:
		set(&p.Bio, patch.Bio)
		set(&p.RegistryNumber, patch.RegistryNumber)
		set(&p.WhatsApp, patch.WhatsApp)
		if patch.Specialties != nil {
			p.Specialties = patch.Specialties
		}
		if patch.YearsExperience != nil {
			p.YearsExperience = patch.YearsExperience
		}
	}
	return p
}

// ContactFor hides the WhatsApp number when the professional's plan does not allow showing it.
func (p Profile) ContactFor() *string {
	if p.Role != RoleProfessional || p.WhatsApp == nil {
		return nil
	}
	if ok, _ := PlanFor(p.Plan).CanPerformAction(ActionShowWhatsApp, Usage{}); !ok {
		return nil
	}
	return p.WhatsApp
}

func ProfileFromRecord(r contract.Record) Profile {
	p := Profile{
		UserID:         r.String("user_id"),
		Role:           Role(r.String("role")),
		FullName:       r.String("full_name"),
		Email:          r.String("email"),
		Phone:          r.OptionalString("phone"),
		City:           r.OptionalString("city"),
		State:          r.OptionalString("state"),
		CompanyName:    r.OptionalString("company_name"),
		CNPJ:           r.OptionalString("cnpj"),
		Bio:            r.OptionalString("bio"),
		RegistryNumber: r.OptionalString("registry_number"),
		WhatsApp:       r.OptionalString("whatsapp"),
		Plan:           PlanTier(r.String("plan")),
	}
	if _, ok := r["years_experience"]; ok && r["years_experience"] != nil {
		years := r.Int("years_experience")
		p.YearsExperience = &years
	}
	if specialties, ok := r["specialties"].([]any); ok {
		for _, s := range specialties {
			if str, ok := s.(string); ok {
				p.Specialties = append(p.Specialties, str)
			}
		}
	}
	return p
}
