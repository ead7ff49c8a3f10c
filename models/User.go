package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Portal roles. Admin is the only role allowed to originate broadcasts.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleParent  = "parent"
	RoleStudent = "student"
)

// AudienceAll addresses a broadcast to every role.
const AudienceAll = "all"

// ValidAudience reports whether tag is usable as a broadcast audience.
func ValidAudience(tag string) bool {
	switch tag {
	case RoleTeacher, RoleParent, RoleStudent, AudienceAll:
		return true
	}
	return false
}

type User struct {
	gorm.Model
	FirstName           string         `json:"firstName"`
	LastName            string         `json:"lastName"`
	Email               string         `json:"email"`
	PhoneNumber         string         `json:"phoneNumber" gorm:"uniqueIndex"`
	Password            string         `json:"password"`
	SocialLogin         bool           `json:"socialLogin"`
	SocialProvider      string         `json:"socialProvider"`
	AvatarURL           string         `json:"avatarURL"`
	Role                string         `json:"role" gorm:"type:varchar(20);default:student;index"` // admin, teacher, parent, student
	LinkedStudentIDs    datatypes.JSON `json:"linkedStudentIDs"`                                   // for parents: ids of their children
	PushTokens          datatypes.JSON `json:"pushTokens"`
	AllowsNotifications *bool          `json:"allowsNotifications"`
}

// Custom JSON marshaling to handle JSON fields properly
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		LinkedStudentIDs []uint   `json:"linkedStudentIDs,omitempty"`
		PushTokens       []string `json:"pushTokens,omitempty"`
		*Alias
	}{
		LinkedStudentIDs: []uint{},
		PushTokens:       []string{},
		Alias:            (*Alias)(u),
	}

	if u.LinkedStudentIDs != nil {
		var ids []uint
		if err := json.Unmarshal(u.LinkedStudentIDs, &ids); err == nil {
			aux.LinkedStudentIDs = ids
		}
	}

	if u.PushTokens != nil {
		var tokens []string
		if err := json.Unmarshal(u.PushTokens, &tokens); err == nil {
			aux.PushTokens = tokens
		}
	}

	return json.Marshal(aux)
}
