package directory

import (
	"encoding/json"
	"fmt"

	"github.com/postcareplus/postcare-sms/internal/directory"
)

// document is the JSON shape of the CAREGIVER_DIRECTORY_JSON config
// value. Regions are an ordered list with an explicit default, so the
// fallback contact never depends on map iteration order.
type document struct {
	Fixed         map[string]contactDoc `json:"fixed"`
	Regions       []regionDoc           `json:"regions"`
	DefaultRegion string                `json:"default_region"`
}

type contactDoc struct {
	Name        string   `json:"name"`
	Phone       string   `json:"phone"`
	Specialties []string `json:"specialties,omitempty"`
}

type regionDoc struct {
	Region string `json:"region"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
}

type StaticDirectory struct {
	fixed         map[directory.Role]directory.Contact
	regional      map[string]directory.Contact
	defaultRegion string
}

var requiredFixedRoles = []directory.Role{
	directory.RolePrimaryDoctor,
	directory.RoleEmergencyDoctor,
	directory.RoleCoordinator,
}

func NewStaticDirectory(configJSON []byte) (directory.Directory, error) {
	var doc document
	if err := json.Unmarshal(configJSON, &doc); err != nil {
		return nil, fmt.Errorf("caregiver directory config is invalid JSON: %w", err)
	}

	d := &StaticDirectory{
		fixed:         make(map[directory.Role]directory.Contact),
		regional:      make(map[string]directory.Contact),
		defaultRegion: doc.DefaultRegion,
	}
	for rawRole, c := range doc.Fixed {
		role := directory.Role(rawRole)
		if c.Phone == "" {
			return nil, fmt.Errorf("fixed contact %q has no phone", rawRole)
		}
		d.fixed[role] = directory.Contact{
			Name:        c.Name,
			Phone:       c.Phone,
			Role:        role,
			Specialties: c.Specialties,
		}
	}
	for _, role := range requiredFixedRoles {
		if _, ok := d.fixed[role]; !ok {
			return nil, fmt.Errorf("caregiver directory is missing fixed role %q", role)
		}
	}
	for _, r := range doc.Regions {
		if r.Region == "" || r.Phone == "" {
			return nil, fmt.Errorf("regional contact %q needs both region and phone", r.Name)
		}
		d.regional[r.Region] = directory.Contact{
			Name:   r.Name,
			Phone:  r.Phone,
			Role:   directory.RoleRegionalCHW,
			Region: r.Region,
		}
	}
	if len(doc.Regions) > 0 {
		if doc.DefaultRegion == "" {
			return nil, fmt.Errorf("caregiver directory needs default_region when regions are configured")
		}
		if _, ok := d.regional[doc.DefaultRegion]; !ok {
			return nil, fmt.Errorf("default_region %q has no regional contact", doc.DefaultRegion)
		}
	}
	return d, nil
}

func (d *StaticDirectory) GetFixed(role directory.Role) (directory.Contact, bool) {
	c, ok := d.fixed[role]
	return c, ok
}

func (d *StaticDirectory) GetRegional(region string) (directory.Contact, bool) {
	c, ok := d.regional[region]
	return c, ok
}

func (d *StaticDirectory) DefaultRegional() (directory.Contact, bool) {
	c, ok := d.regional[d.defaultRegion]
	return c, ok
}
