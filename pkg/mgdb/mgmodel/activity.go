package mgmodel

import (
	"slices"
	"time"
)

// Activity is an extracurricular offering and its roster. The JSON form is
// the one served by GET /activities, keyed by Name, so Name and the database
// bookkeeping columns are left out of it.
type Activity struct {
	ID              int       `json:"-"`
	UUID            string    `json:"-"`
	Name            string    `json:"-" gorm:"uniqueIndex;size:191"`
	Description     string    `json:"description"`
	Schedule        string    `json:"schedule"`
	MaxParticipants int       `json:"max_participants"`
	Participants    []string  `json:"participants" gorm:"-"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

func (Activity) TableName() string {
	return "activities"
}

func (a *Activity) HasParticipant(email string) bool {
	return slices.Contains(a.Participants, email)
}

// IsFull reports whether the roster has reached MaxParticipants. An activity
// with no positive capacity is never full.
func (a *Activity) IsFull() bool {
	return a.MaxParticipants > 0 && len(a.Participants) >= a.MaxParticipants
}

// Clone returns a copy that shares no memory with a. Participants is never
// nil in the copy so it always encodes as a JSON list.
func (a *Activity) Clone() Activity {
	c := *a
	c.Participants = make([]string, len(a.Participants))
	copy(c.Participants, a.Participants)
	return c
}

// RemoveParticipant drops email from the roster, keeping the order of the
// others. It returns false if email wasn't on the roster.
func (a *Activity) RemoveParticipant(email string) bool {
	i := slices.Index(a.Participants, email)
	if i < 0 {
		return false
	}

	a.Participants = slices.Delete(a.Participants, i, i+1)
	return true
}
