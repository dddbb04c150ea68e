package stor

import (
	"sync"

	"github.com/apex/log"
	"github.com/mergington/activities/pkg/clog"
	"github.com/mergington/activities/pkg/mgdb/mgmodel"
	"github.com/pkg/errors"
)

// InMemoryActivityStor keeps the registry in process memory. activityByEmail
// indexes every roster entry so the cross activity uniqueness check doesn't
// scan all rosters; both maps are only touched with mu held.
type InMemoryActivityStor struct {
	mu              sync.RWMutex
	activities      map[string]*mgmodel.Activity
	activityByEmail map[string]string

	// Reject signups once an activity has MaxParticipants entries. Off by
	// default, capacity is advisory.
	EnforceCapacity bool
}

// NewInMemoryActivityStor seeds the registry with activities. An email that
// shows up in more than one seeded roster is kept only in the first.
func NewInMemoryActivityStor(activities []mgmodel.Activity) *InMemoryActivityStor {
	s := &InMemoryActivityStor{
		activities:      make(map[string]*mgmodel.Activity, len(activities)),
		activityByEmail: make(map[string]string),
	}

	for i := range activities {
		activity := activities[i].Clone()
		roster := activity.Participants
		activity.Participants = make([]string, 0, len(roster))

		for _, email := range roster {
			if current, ok := s.activityByEmail[email]; ok {
				clog.UsingCtx(clog.RegistryCtx).Warnf("Dropping %s from seeded %s, already in %s", email, activity.Name, current)
				continue
			}

			s.activityByEmail[email] = activity.Name
			activity.Participants = append(activity.Participants, email)
		}

		s.activities[activity.Name] = &activity
	}

	return s
}

func (s *InMemoryActivityStor) ListActivities() (map[string]mgmodel.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	activities := make(map[string]mgmodel.Activity, len(s.activities))
	for name, activity := range s.activities {
		activities[name] = activity.Clone()
	}

	return activities, nil
}

func (s *InMemoryActivityStor) GetActivityByName(name string) (*mgmodel.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	activity, ok := s.activities[name]
	if !ok {
		return nil, errors.Wrapf(ErrActivityNotFound, "no activity named '%s'", name)
	}

	a := activity.Clone()
	return &a, nil
}

func (s *InMemoryActivityStor) FindActivityForParticipant(email string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name, ok := s.activityByEmail[email]
	if !ok {
		return "", errors.Wrapf(ErrParticipantNotSignedUp, "%s", email)
	}

	return name, nil
}

func (s *InMemoryActivityStor) Signup(activityName, email string) (*mgmodel.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	activity, ok := s.activities[activityName]
	if !ok {
		return nil, errors.Wrapf(ErrActivityNotFound, "signup to '%s'", activityName)
	}

	if current, ok := s.activityByEmail[email]; ok {
		return nil, errors.Wrapf(ErrAlreadySignedUp, "%s is signed up for '%s'", email, current)
	}

	if s.EnforceCapacity && activity.IsFull() {
		return nil, errors.Wrapf(ErrActivityFull, "'%s' has %d participants", activityName, len(activity.Participants))
	}

	activity.Participants = append(activity.Participants, email)
	s.activityByEmail[email] = activityName

	clog.UsingCtx(clog.RegistryCtx).WithFields(log.Fields{"activity": activityName, "email": email}).Info("Signed up")

	a := activity.Clone()
	return &a, nil
}

func (s *InMemoryActivityStor) Unregister(activityName, email string) (*mgmodel.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	activity, ok := s.activities[activityName]
	if !ok {
		return nil, errors.Wrapf(ErrActivityNotFound, "unregister from '%s'", activityName)
	}

	if !activity.RemoveParticipant(email) {
		return nil, errors.Wrapf(ErrParticipantNotFound, "%s is not in '%s'", email, activityName)
	}

	delete(s.activityByEmail, email)

	clog.UsingCtx(clog.RegistryCtx).WithFields(log.Fields{"activity": activityName, "email": email}).Info("Unregistered")

	a := activity.Clone()
	return &a, nil
}
