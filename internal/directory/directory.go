package directory

// Role identifies a fixed caregiver role in the directory. Regional
// community health workers are addressed by region tag instead.
type Role string

const (
	RolePrimaryDoctor   Role = "primary_doctor"
	RoleEmergencyDoctor Role = "emergency_doctor"
	RoleCoordinator     Role = "coordinator"
	RoleRegionalCHW     Role = "regional_chw"
)

type Contact struct {
	Name        string
	Phone       string
	Role        Role
	Region      string
	Specialties []string
}

// Directory is the admin-configured caregiver roster; read-only at
// request time. GetRegional is an exact region lookup; DefaultRegional
// returns the configured fallback contact so routine traffic never
// vanishes because of a missing region assignment. Whether to fall back
// is the caller's call, it depends on the escalation tier.
type Directory interface {
	GetFixed(role Role) (Contact, bool)
	GetRegional(region string) (Contact, bool)
	DefaultRegional() (Contact, bool)
}
