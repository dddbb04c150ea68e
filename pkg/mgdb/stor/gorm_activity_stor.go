package stor

import (
	"github.com/apex/log"
	"github.com/hashicorp/go-uuid"
	"github.com/mergington/activities/pkg/clog"
	"github.com/mergington/activities/pkg/lock"
	"github.com/mergington/activities/pkg/mgdb/mgmodel"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormActivityStor keeps the registry in the activities and participants
// tables. Signup and unregister for the same email are serialized in process
// by emailLocker; the unique index on participants.email covers writers in
// other processes.
type GormActivityStor struct {
	db          *gorm.DB
	emailLocker *lock.KeyLocker[string]

	EnforceCapacity bool
}

func NewGormActivityStor(db *gorm.DB) *GormActivityStor {
	return &GormActivityStor{db: db, emailLocker: lock.NewKeyLocker[string]()}
}

// CreateActivity inserts activity and its roster.
func (s *GormActivityStor) CreateActivity(activity *mgmodel.Activity) (*mgmodel.Activity, error) {
	var err error
	if activity.UUID, err = uuid.GenerateUUID(); err != nil {
		return nil, err
	}

	err = WithTxRetry(s.db, func(tx *gorm.DB) error {
		if err := tx.Create(activity).Error; err != nil {
			return err
		}

		for _, email := range activity.Participants {
			if err := addParticipant(tx, activity.ID, email); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return activity, nil
}

// SeedActivities creates every activity whose name isn't in the database
// yet. Existing activities and their rosters are left as they are.
func (s *GormActivityStor) SeedActivities(activities []mgmodel.Activity) error {
	for i := range activities {
		var count int64
		if err := s.db.Model(&mgmodel.Activity{}).Where("name = ?", activities[i].Name).Count(&count).Error; err != nil {
			return err
		}

		if count != 0 {
			continue
		}

		activity := activities[i].Clone()
		if _, err := s.CreateActivity(&activity); err != nil {
			return errors.Wrapf(err, "seeding '%s'", activity.Name)
		}
	}

	return nil
}

// ListActivities reads activities and rosters in one transaction so a
// concurrent signup can't land between the two reads.
func (s *GormActivityStor) ListActivities() (map[string]mgmodel.Activity, error) {
	var (
		activities   []mgmodel.Activity
		participants []mgmodel.Participant
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Order("id").Find(&activities).Error; err != nil {
			return err
		}

		return tx.Order("id").Find(&participants).Error
	})

	if err != nil {
		return nil, err
	}

	rosters := make(map[int][]string)
	for _, p := range participants {
		rosters[p.ActivityID] = append(rosters[p.ActivityID], p.Email)
	}

	byName := make(map[string]mgmodel.Activity, len(activities))
	for _, activity := range activities {
		activity.Participants = rosters[activity.ID]
		byName[activity.Name] = activity.Clone()
	}

	return byName, nil
}

func (s *GormActivityStor) GetActivityByName(name string) (*mgmodel.Activity, error) {
	return loadActivity(s.db, name)
}

func (s *GormActivityStor) FindActivityForParticipant(email string) (string, error) {
	var participant mgmodel.Participant
	err := s.db.Preload("Activity").Where("email = ?", email).First(&participant).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "", errors.Wrapf(ErrParticipantNotSignedUp, "%s", email)
	case err != nil:
		return "", err
	case participant.Activity == nil:
		return "", errors.Wrapf(ErrParticipantNotSignedUp, "%s has a dangling roster entry", email)
	default:
		return participant.Activity.Name, nil
	}
}

func (s *GormActivityStor) Signup(activityName, email string) (*mgmodel.Activity, error) {
	var activity *mgmodel.Activity

	err := s.emailLocker.WithLock(email, func() error {
		return WithTxRetry(s.db, func(tx *gorm.DB) error {
			var err error
			if activity, err = loadActivity(tx, activityName); err != nil {
				return err
			}

			var existing mgmodel.Participant
			err = tx.Preload("Activity").Where("email = ?", email).First(&existing).Error
			switch {
			case err == nil:
				current := ""
				if existing.Activity != nil {
					current = existing.Activity.Name
				}
				return errors.Wrapf(ErrAlreadySignedUp, "%s is signed up for '%s'", email, current)
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}

			if s.EnforceCapacity && activity.IsFull() {
				return errors.Wrapf(ErrActivityFull, "'%s' has %d participants", activityName, len(activity.Participants))
			}

			if err := addParticipant(tx, activity.ID, email); err != nil {
				return err
			}

			activity.Participants = append(activity.Participants, email)
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	clog.UsingCtx(clog.RegistryCtx).WithFields(log.Fields{"activity": activityName, "email": email}).Info("Signed up")
	return activity, nil
}

func (s *GormActivityStor) Unregister(activityName, email string) (*mgmodel.Activity, error) {
	var activity *mgmodel.Activity

	err := s.emailLocker.WithLock(email, func() error {
		return WithTxRetry(s.db, func(tx *gorm.DB) error {
			var err error
			if activity, err = loadActivity(tx, activityName); err != nil {
				return err
			}

			result := tx.Where("activity_id = ? AND email = ?", activity.ID, email).Delete(&mgmodel.Participant{})
			switch {
			case result.Error != nil:
				return result.Error
			case result.RowsAffected == 0:
				return errors.Wrapf(ErrParticipantNotFound, "%s is not in '%s'", email, activityName)
			}

			activity.RemoveParticipant(email)
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	clog.UsingCtx(clog.RegistryCtx).WithFields(log.Fields{"activity": activityName, "email": email}).Info("Unregistered")
	return activity, nil
}

func loadActivity(db *gorm.DB, name string) (*mgmodel.Activity, error) {
	var activity mgmodel.Activity
	err := db.Where("name = ?", name).First(&activity).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, errors.Wrapf(ErrActivityNotFound, "no activity named '%s'", name)
	case err != nil:
		return nil, err
	}

	var emails []string
	err = db.Model(&mgmodel.Participant{}).Where("activity_id = ?", activity.ID).Order("id").Pluck("email", &emails).Error
	if err != nil {
		return nil, err
	}

	activity.Participants = emails
	a := activity.Clone()
	return &a, nil
}

func addParticipant(tx *gorm.DB, activityID int, email string) error {
	id, err := uuid.GenerateUUID()
	if err != nil {
		return err
	}

	err = tx.Create(&mgmodel.Participant{UUID: id, ActivityID: activityID, Email: email}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrapf(ErrAlreadySignedUp, "%s", email)
	}

	return err
}
