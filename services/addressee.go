package services

import (
	"school-portal-server/models"
)

type addresseeKind int

const (
	addresseeDirect addresseeKind = iota
	addresseeRole
	addresseeEveryone
)

// Addressee is who a new top-level message is for: one person, everyone with
// a role, or everyone. Construct it with Direct, RoleBroadcast or Everyone;
// the zero value is not valid.
type Addressee struct {
	kind     addresseeKind
	personID uint
	role     string
}

// Direct addresses a single person.
func Direct(personID uint) Addressee {
	return Addressee{kind: addresseeDirect, personID: personID}
}

// RoleBroadcast addresses everyone holding the given role.
func RoleBroadcast(role string) Addressee {
	return Addressee{kind: addresseeRole, role: role}
}

// Everyone addresses all portal users.
func Everyone() Addressee {
	return Addressee{kind: addresseeEveryone}
}

// IsBroadcast reports whether the addressee is a role cohort or everyone.
func (a Addressee) IsBroadcast() bool {
	return a.kind != addresseeDirect
}

// Resolve validates the addressee against the sender and flattens it to the
// recipient_id/target_role column pair stored on a message. Exactly one of
// the two results is non-nil on success. Resolve is pure; it never touches
// the store.
func (a Addressee) Resolve(senderID uint) (recipientID *uint, targetRole *string, err error) {
	switch a.kind {
	case addresseeDirect:
		if a.personID == 0 || a.personID == senderID {
			return nil, nil, ErrInvalidAddressee
		}
		id := a.personID
		return &id, nil, nil
	case addresseeRole:
		if !models.ValidAudience(a.role) || a.role == models.AudienceAll {
			return nil, nil, ErrInvalidAudience
		}
		role := a.role
		return nil, &role, nil
	case addresseeEveryone:
		role := models.AudienceAll
		return nil, &role, nil
	}
	return nil, nil, ErrInvalidAddressee
}
