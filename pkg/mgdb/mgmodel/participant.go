package mgmodel

import "time"

// Participant is a roster entry as stored by the SQL backend. The unique
// index on Email is what keeps a student in at most one activity.
type Participant struct {
	ID         int       `json:"id"`
	UUID       string    `json:"uuid"`
	ActivityID int       `json:"activity_id" gorm:"index"`
	Activity   *Activity `json:"activity,omitempty" gorm:"foreignKey:ActivityID;references:ID"`
	Email      string    `json:"email" gorm:"uniqueIndex;size:191"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Participant) TableName() string {
	return "participants"
}
