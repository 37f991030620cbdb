package session

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Identity is the role-specific profile attached to an authenticated session.
// It is either a *MemberIdentity or an *AdminIdentity; the unexported method keeps
// the set closed so a session can never carry both.
type Identity interface {
	Role() Role
	identity()
}

// ID is an identifier the backend may send as a JSON string or number.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// MemberIdentity is the member profile returned by the member login endpoint.
type MemberIdentity struct {
	ID               ID     `json:"id"`
	Email            string `json:"email"`
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	MembershipStatus string `json:"membership_status,omitempty"` // e.g. "active", "inactive"
	MembershipType   string `json:"membership_type,omitempty"`   // e.g. "physician", "resident"
	MemberNumber     string `json:"member_number,omitempty"`
}

func (*MemberIdentity) Role() Role { return RoleMember }
func (*MemberIdentity) identity()  {}

// DisplayName returns the member's full name, or the email when no name is known.
func (m *MemberIdentity) DisplayName() string {
	name := strings.TrimSpace(m.FirstName + " " + m.LastName)
	if name == "" {
		return m.Email
	}
	return name
}

func (m *MemberIdentity) empty() bool { return m.ID == "" && m.Email == "" }

// AdminIdentity is the administrator profile returned by the admin login endpoint.
type AdminIdentity struct {
	ID          ID       `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name,omitempty"`
	AdminRole   string   `json:"role,omitempty"` // backend role label, e.g. "super_admin"
	Permissions []string `json:"permissions,omitempty"`
}

func (*AdminIdentity) Role() Role { return RoleAdmin }
func (*AdminIdentity) identity()  {}

// DisplayName returns the admin's name, or the email when no name is known.
func (a *AdminIdentity) DisplayName() string {
	if a.Name == "" {
		return a.Email
	}
	return a.Name
}

// empty reports whether the identity names nobody, as a JSON null or {} decodes.
func (a *AdminIdentity) empty() bool { return a.ID == "" && a.Email == "" }

// HasPermission reports whether the admin was granted permission p.
func (a *AdminIdentity) HasPermission(p string) bool {
	for _, granted := range a.Permissions {
		if granted == p {
			return true
		}
	}
	return false
}

func cloneIdentity(id Identity) Identity {
	switch v := id.(type) {
	case *MemberIdentity:
		if v == nil {
			return nil
		}
		c := *v
		return &c
	case *AdminIdentity:
		if v == nil {
			return nil
		}
		c := *v
		c.Permissions = append([]string(nil), v.Permissions...)
		return &c
	}
	return nil
}
