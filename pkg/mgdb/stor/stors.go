package stor

import (
	"github.com/mergington/activities/pkg/mgdb/mgmodel"
)

// ActivityStor is the activity registry. Implementations must be safe for
// concurrent use and keep every email in at most one activity's roster.
type ActivityStor interface {
	// ListActivities returns a copy of every activity keyed by name.
	ListActivities() (map[string]mgmodel.Activity, error)
	GetActivityByName(name string) (*mgmodel.Activity, error)
	// FindActivityForParticipant returns the name of the activity email is
	// signed up for.
	FindActivityForParticipant(email string) (string, error)
	// Signup appends email to the roster of activityName.
	Signup(activityName, email string) (*mgmodel.Activity, error)
	// Unregister removes email from the roster of activityName.
	Unregister(activityName, email string) (*mgmodel.Activity, error)
}
