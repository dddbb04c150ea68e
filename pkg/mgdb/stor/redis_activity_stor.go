package stor

import (
	"context"
	"strconv"
	"time"

	"github.com/apex/log"
	"github.com/mergington/activities/pkg/clog"
	"github.com/mergington/activities/pkg/mgdb/mgmodel"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Key layout:
//
//	mg:activities           set of activity names
//	mg:activity:<name>      hash of description, schedule, max_participants
//	mg:roster:<name>        list of emails in signup order
//	mg:participants         hash of email -> activity name
const (
	redisActivitiesKey   = "mg:activities"
	redisParticipantsKey = "mg:participants"
	redisActivityPrefix  = "mg:activity:"
	redisRosterPrefix    = "mg:roster:"
	redisOpTimeout       = 5 * time.Second
)

// Script results. 0 is success.
const (
	redisNoActivity = 1
	redisConflict   = 2
	redisFull       = 3
)

// KEYS: activity hash, roster, participants. ARGV: email, activity name,
// enforce capacity ("1" or "0").
var redisSignupScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return 1 end
local current = redis.call('HGET', KEYS[3], ARGV[1])
if current then return {2, current} end
if ARGV[3] == '1' then
  local max = tonumber(redis.call('HGET', KEYS[1], 'max_participants'))
  if redis.call('LLEN', KEYS[2]) >= max then return 3 end
end
redis.call('RPUSH', KEYS[2], ARGV[1])
redis.call('HSET', KEYS[3], ARGV[1], ARGV[2])
return 0
`)

// KEYS: activity hash, roster, participants. ARGV: email.
var redisUnregisterScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return 1 end
if redis.call('LREM', KEYS[2], 1, ARGV[1]) == 0 then return 2 end
redis.call('HDEL', KEYS[3], ARGV[1])
return 0
`)

// RedisActivityStor keeps the registry in Redis. Signup and unregister run as
// Lua scripts so each one is atomic across every process sharing the server.
type RedisActivityStor struct {
	rdb *redis.Client

	EnforceCapacity bool
}

func NewRedisActivityStor(rdb *redis.Client) *RedisActivityStor {
	return &RedisActivityStor{rdb: rdb}
}

// SeedActivities creates every activity not already in Redis. An email that
// already belongs to an activity is dropped from the seeded roster.
func (s *RedisActivityStor) SeedActivities(activities []mgmodel.Activity) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	for _, activity := range activities {
		added, err := s.rdb.SAdd(ctx, redisActivitiesKey, activity.Name).Result()
		if err != nil {
			return errors.Wrapf(err, "seeding '%s'", activity.Name)
		}

		if added == 0 {
			continue
		}

		err = s.rdb.HSet(ctx, redisActivityPrefix+activity.Name,
			"description", activity.Description,
			"schedule", activity.Schedule,
			"max_participants", activity.MaxParticipants).Err()
		if err != nil {
			return errors.Wrapf(err, "seeding '%s'", activity.Name)
		}

		for _, email := range activity.Participants {
			claimed, err := s.rdb.HSetNX(ctx, redisParticipantsKey, email, activity.Name).Result()
			if err != nil {
				return errors.Wrapf(err, "seeding '%s'", activity.Name)
			}

			if !claimed {
				clog.UsingCtx(clog.RegistryCtx).Warnf("Dropping %s from seeded %s, already signed up elsewhere", email, activity.Name)
				continue
			}

			if err := s.rdb.RPush(ctx, redisRosterPrefix+activity.Name, email).Err(); err != nil {
				return errors.Wrapf(err, "seeding '%s'", activity.Name)
			}
		}
	}

	return nil
}

func (s *RedisActivityStor) ListActivities() (map[string]mgmodel.Activity, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	names, err := s.rdb.SMembers(ctx, redisActivitiesKey).Result()
	if err != nil {
		return nil, err
	}

	activities := make(map[string]mgmodel.Activity, len(names))
	for _, name := range names {
		activity, err := s.loadActivity(ctx, name)
		if err != nil {
			return nil, err
		}
		activities[name] = *activity
	}

	return activities, nil
}

func (s *RedisActivityStor) GetActivityByName(name string) (*mgmodel.Activity, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	return s.loadActivity(ctx, name)
}

func (s *RedisActivityStor) FindActivityForParticipant(email string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	name, err := s.rdb.HGet(ctx, redisParticipantsKey, email).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", errors.Wrapf(ErrParticipantNotSignedUp, "%s", email)
	case err != nil:
		return "", err
	}

	return name, nil
}

func (s *RedisActivityStor) Signup(activityName, email string) (*mgmodel.Activity, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	enforce := "0"
	if s.EnforceCapacity {
		enforce = "1"
	}

	res, err := redisSignupScript.Run(ctx, s.rdb,
		[]string{redisActivityPrefix + activityName, redisRosterPrefix + activityName, redisParticipantsKey},
		email, activityName, enforce).Result()
	if err != nil {
		return nil, err
	}

	switch code, detail := scriptResult(res); code {
	case 0:
	case redisNoActivity:
		return nil, errors.Wrapf(ErrActivityNotFound, "signup to '%s'", activityName)
	case redisConflict:
		return nil, errors.Wrapf(ErrAlreadySignedUp, "%s is signed up for '%s'", email, detail)
	case redisFull:
		return nil, errors.Wrapf(ErrActivityFull, "'%s' is at capacity", activityName)
	default:
		return nil, errors.Errorf("unexpected signup script result %v", res)
	}

	clog.UsingCtx(clog.RegistryCtx).WithFields(log.Fields{"activity": activityName, "email": email}).Info("Signed up")
	return s.loadActivity(ctx, activityName)
}

func (s *RedisActivityStor) Unregister(activityName, email string) (*mgmodel.Activity, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	res, err := redisUnregisterScript.Run(ctx, s.rdb,
		[]string{redisActivityPrefix + activityName, redisRosterPrefix + activityName, redisParticipantsKey},
		email).Result()
	if err != nil {
		return nil, err
	}

	switch code, _ := scriptResult(res); code {
	case 0:
	case redisNoActivity:
		return nil, errors.Wrapf(ErrActivityNotFound, "unregister from '%s'", activityName)
	case redisConflict:
		return nil, errors.Wrapf(ErrParticipantNotFound, "%s is not in '%s'", email, activityName)
	default:
		return nil, errors.Errorf("unexpected unregister script result %v", res)
	}

	clog.UsingCtx(clog.RegistryCtx).WithFields(log.Fields{"activity": activityName, "email": email}).Info("Unregistered")
	return s.loadActivity(ctx, activityName)
}

func (s *RedisActivityStor) loadActivity(ctx context.Context, name string) (*mgmodel.Activity, error) {
	fields, err := s.rdb.HGetAll(ctx, redisActivityPrefix+name).Result()
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return nil, errors.Wrapf(ErrActivityNotFound, "no activity named '%s'", name)
	}

	participants, err := s.rdb.LRange(ctx, redisRosterPrefix+name, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	maxParticipants, err := strconv.Atoi(fields["max_participants"])
	if err != nil {
		return nil, errors.Wrapf(err, "activity '%s' has a bad max_participants", name)
	}

	activity := mgmodel.Activity{
		Name:            name,
		Description:     fields["description"],
		Schedule:        fields["schedule"],
		MaxParticipants: maxParticipants,
		Participants:    participants,
	}

	a := activity.Clone()
	return &a, nil
}

// scriptResult unpacks either a bare status code or a {code, detail} pair.
func scriptResult(res any) (int64, string) {
	switch v := res.(type) {
	case int64:
		return v, ""
	case []any:
		if len(v) != 2 {
			return -1, ""
		}
		code, _ := v[0].(int64)
		detail, _ := v[1].(string)
		return code, detail
	default:
		return -1, ""
	}
}
