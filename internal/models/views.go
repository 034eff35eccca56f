package models

import "encoding/json"

// UserRef is the public face of a user attached to a lead record.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Ref returns nil for a nil user.
func (u *User) Ref() *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

func (l Lead) MarshalJSON() ([]byte, error) {
	type lead Lead
	return json.Marshal(struct {
		lead
		AssignedTo *UserRef `json:"assignedTo"`
	}{lead(l), l.AssignedTo.Ref()})
}

func (a LeadActivity) MarshalJSON() ([]byte, error) {
	type activity LeadActivity
	return json.Marshal(struct {
		activity
		User *UserRef `json:"user,omitempty"`
	}{activity(a), a.User.Ref()})
}

func (n LeadNote) MarshalJSON() ([]byte, error) {
	type note LeadNote
	return json.Marshal(struct {
		note
		User *UserRef `json:"user,omitempty"`
	}{note(n), n.User.Ref()})
}
