package stor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/mergington/activities/pkg/mgdb/mgmodel"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type storFactory func(t *testing.T, activities []mgmodel.Activity, enforceCapacity bool) ActivityStor

func testActivities() []mgmodel.Activity {
	return []mgmodel.Activity{
		{Name: "Chess Club", Description: "Strategy", Schedule: "Fridays", MaxParticipants: 3,
			Participants: []string{"michael@mergington.edu", "daniel@mergington.edu"}},
		{Name: "Drama Club", Description: "Plays", Schedule: "Mondays", MaxParticipants: 20,
			Participants: []string{"ella@mergington.edu"}},
		{Name: "Math Club", Description: "Problems", Schedule: "Tuesdays", MaxParticipants: 10,
			Participants: []string{"james@mergington.edu"}},
	}
}

func newInMemoryStor(_ *testing.T, activities []mgmodel.Activity, enforceCapacity bool) ActivityStor {
	s := NewInMemoryActivityStor(activities)
	s.EnforceCapacity = enforceCapacity
	return s
}

var sqliteDBCount atomic.Int64

func openTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:stor_test_%d?mode=memory&cache=shared", sqliteDBCount.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&mgmodel.Activity{}, &mgmodel.Participant{}))
	return db
}

func newGormStor(t *testing.T, activities []mgmodel.Activity, enforceCapacity bool) ActivityStor {
	s := NewGormActivityStor(openTestDB(t))
	s.EnforceCapacity = enforceCapacity
	require.NoError(t, s.SeedActivities(activities))
	return s
}

func newRedisStor(t *testing.T, activities []mgmodel.Activity, enforceCapacity bool) ActivityStor {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s := NewRedisActivityStor(rdb)
	s.EnforceCapacity = enforceCapacity
	require.NoError(t, s.SeedActivities(activities))
	return s
}

func TestInMemoryActivityStor(t *testing.T) {
	runActivityStorSuite(t, newInMemoryStor)
}

func TestGormActivityStor(t *testing.T) {
	runActivityStorSuite(t, newGormStor)
}

func TestRedisActivityStor(t *testing.T) {
	runActivityStorSuite(t, newRedisStor)
}

func runActivityStorSuite(t *testing.T, newStor storFactory) {
	t.Run("ListActivities", func(t *testing.T) {
		s := newStor(t, testActivities(), false)

		activities, err := s.ListActivities()
		require.NoError(t, err)
		require.Len(t, activities, 3)

		chess := activities["Chess Club"]
		assert.Equal(t, "Strategy", chess.Description)
		assert.Equal(t, "Fridays", chess.Schedule)
		assert.Equal(t, 3, chess.MaxParticipants)
		assert.Equal(t, []string{"michael@mergington.edu", "daniel@mergington.edu"}, chess.Participants)

		chess.Participants[0] = "changed@mergington.edu"
		again, err := s.ListActivities()
		require.NoError(t, err)
		assert.Equal(t, "michael@mergington.edu", again["Chess Club"].Participants[0], "list must return copies")
	})

	t.Run("SignupAppendsToRoster", func(t *testing.T) {
		s := newStor(t, testActivities(), false)

		activity, err := s.Signup("Math Club", "newtestuser@mergington.edu")
		require.NoError(t, err)
		assert.Equal(t, []string{"james@mergington.edu", "newtestuser@mergington.edu"}, activity.Participants)

		activities, err := s.ListActivities()
		require.NoError(t, err)
		assert.Equal(t, []string{"james@mergington.edu", "newtestuser@mergington.edu"}, activities["Math Club"].Participants)

		name, err := s.FindActivityForParticipant("newtestuser@mergington.edu")
		require.NoError(t, err)
		assert.Equal(t, "Math Club", name)
	})

	t.Run("SignupUnknownActivity", func(t *testing.T) {
		s := newStor(t, testActivities(), false)

		_, err := s.Signup("Nonexistent Activity", "test@mergington.edu")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrActivityNotFound))
		assert.True(t, IsNotFound(err))
		assert.Contains(t, err.Error(), "Activity not found")

		_, err = s.FindActivityForParticipant("test@mergington.edu")
		assert.True(t, errors.Is(err, ErrParticipantNotSignedUp), "failed signup must not register the email")
	})

	t.Run("SignupIsGloballyUnique", func(t *testing.T) {
		names := []string{"Chess Club", "Drama Club", "Math Club"}
		for _, first := range names {
			for _, second := range names {
				s := newStor(t, testActivities(), false)
				_, err := s.Signup(first, "duplicate@mergington.edu")
				require.NoError(t, err)

				_, err = s.Signup(second, "duplicate@mergington.edu")
				assert.Truef(t, errors.Is(err, ErrAlreadySignedUp), "%s then %s: %v", first, second, err)
				assert.True(t, IsConflict(err))

				activity, err := s.GetActivityByName(second)
				require.NoError(t, err)
				if first != second {
					assert.False(t, activity.HasParticipant("duplicate@mergington.edu"))
				}
			}
		}
	})

	t.Run("SeededParticipantCannotSignupElsewhere", func(t *testing.T) {
		s := newStor(t, testActivities(), false)

		_, err := s.Signup("Math Club", "michael@mergington.edu")
		assert.True(t, errors.Is(err, ErrAlreadySignedUp))
	})

	t.Run("UnregisterRemovesParticipant", func(t *testing.T) {
		s := newStor(t, testActivities(), false)

		_, err := s.Signup("Drama Club", "unreg_test@mergington.edu")
		require.NoError(t, err)

		activity, err := s.Unregister("Drama Club", "unreg_test@mergington.edu")
		require.NoError(t, err)
		assert.Equal(t, []string{"ella@mergington.edu"}, activity.Participants)

		activities, err := s.ListActivities()
		require.NoError(t, err)
		assert.NotContains(t, activities["Drama Club"].Participants, "unreg_test@mergington.edu")

		_, err = s.Signup("Chess Club", "unreg_test@mergington.edu")
		assert.NoError(t, err, "an unregistered email is free to sign up again")
	})

	t.Run("UnregisterKeepsOrder", func(t *testing.T) {
		s := newStor(t, testActivities(), false)

		_, err := s.Signup("Chess Club", "third@mergington.edu")
		require.NoError(t, err)

		activity, err := s.Unregister("Chess Club", "daniel@mergington.edu")
		require.NoError(t, err)
		assert.Equal(t, []string{"michael@mergington.edu", "third@mergington.edu"}, activity.Participants)
	})

	t.Run("UnregisterUnknownActivity", func(t *testing.T) {
		s := newStor(t, testActivities(), false)

		_, err := s.Unregister("Nonexistent Activity", "test@mergington.edu")
		assert.True(t, errors.Is(err, ErrActivityNotFound))
	})

	t.Run("UnregisterNonMember", func(t *testing.T) {
		s := newStor(t, testActivities(), false)

		_, err := s.Unregister("Chess Club", "nonexistent@mergington.edu")
		assert.True(t, errors.Is(err, ErrParticipantNotFound))
		assert.True(t, IsNotFound(err))

		_, err = s.Unregister("Chess Club", "ella@mergington.edu")
		assert.True(t, errors.Is(err, ErrParticipantNotFound), "member of another activity is not a member here")

		name, err := s.FindActivityForParticipant("ella@mergington.edu")
		require.NoError(t, err)
		assert.Equal(t, "Drama Club", name)
	})

	t.Run("CapacityIsAdvisoryByDefault", func(t *testing.T) {
		s := newStor(t, testActivities(), false)

		for i := 0; i < 3; i++ {
			_, err := s.Signup("Chess Club", fmt.Sprintf("over%d@mergington.edu", i))
			require.NoError(t, err)
		}

		activity, err := s.GetActivityByName("Chess Club")
		require.NoError(t, err)
		assert.Len(t, activity.Participants, 5)
	})

	t.Run("CapacityEnforced", func(t *testing.T) {
		s := newStor(t, testActivities(), true)

		_, err := s.Signup("Chess Club", "third@mergington.edu")
		require.NoError(t, err)

		_, err = s.Signup("Chess Club", "fourth@mergington.edu")
		assert.True(t, errors.Is(err, ErrActivityFull))
		assert.True(t, IsConflict(err))
	})

	t.Run("ConcurrentSignupsOfOneEmail", func(t *testing.T) {
		s := newStor(t, testActivities(), false)
		names := []string{"Chess Club", "Drama Club", "Math Club"}

		var (
			wg        sync.WaitGroup
			successes atomic.Int32
			conflicts atomic.Int32
		)

		for i := 0; i < 30; i++ {
			wg.Add(1)
			go func(name string) {
				defer wg.Done()
				_, err := s.Signup(name, "racer@mergington.edu")
				switch {
				case err == nil:
					successes.Add(1)
				case errors.Is(err, ErrAlreadySignedUp):
					conflicts.Add(1)
				}
			}(names[i%len(names)])
		}
		wg.Wait()

		assert.Equal(t, int32(1), successes.Load())
		assert.Equal(t, int32(29), conflicts.Load())

		activities, err := s.ListActivities()
		require.NoError(t, err)
		count := 0
		for _, a := range activities {
			if a.HasParticipant("racer@mergington.edu") {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})
}

func TestGormListActivitiesDuringSignups(t *testing.T) {
	s := NewGormActivityStor(openTestDB(t))
	require.NoError(t, s.SeedActivities(testActivities()))
	seeded := 4

	const signups = 20
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < signups; i++ {
			_, err := s.Signup("Drama Club", fmt.Sprintf("lister%d@mergington.edu", i))
			assert.NoError(t, err)
		}
	}()

	last := seeded
	for i := 0; i < signups; i++ {
		activities, err := s.ListActivities()
		require.NoError(t, err)
		require.Len(t, activities, 3)

		total := 0
		for _, a := range activities {
			total += len(a.Participants)
		}
		assert.GreaterOrEqual(t, total, last, "a listing never goes backwards")
		last = total
	}
	wg.Wait()

	activities, err := s.ListActivities()
	require.NoError(t, err)
	assert.Len(t, activities["Drama Club"].Participants, 1+signups)
}

func TestInMemoryStorDropsDuplicateSeedEmails(t *testing.T) {
	s := NewInMemoryActivityStor([]mgmodel.Activity{
		{Name: "A", MaxParticipants: 2, Participants: []string{"x@mergington.edu"}},
		{Name: "B", MaxParticipants: 2, Participants: []string{"x@mergington.edu", "y@mergington.edu"}},
	})

	activities, err := s.ListActivities()
	require.NoError(t, err)
	assert.Equal(t, []string{"x@mergington.edu"}, activities["A"].Participants)
	assert.Equal(t, []string{"y@mergington.edu"}, activities["B"].Participants)
}

func TestGormSeedActivitiesIsIdempotent(t *testing.T) {
	s := NewGormActivityStor(openTestDB(t))
	require.NoError(t, s.SeedActivities(testActivities()))

	_, err := s.Signup("Math Club", "kept@mergington.edu")
	require.NoError(t, err)

	require.NoError(t, s.SeedActivities(testActivities()))

	activities, err := s.ListActivities()
	require.NoError(t, err)
	assert.Len(t, activities, 3)
	assert.Contains(t, activities["Math Club"].Participants, "kept@mergington.edu")
}

func TestRedisSeedActivitiesIsIdempotent(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	s := NewRedisActivityStor(rdb)
	require.NoError(t, s.SeedActivities(testActivities()))

	_, err := s.Signup("Math Club", "kept@mergington.edu")
	require.NoError(t, err)

	require.NoError(t, s.SeedActivities(testActivities()))

	activities, err := s.ListActivities()
	require.NoError(t, err)
	assert.Len(t, activities, 3)
	assert.Equal(t, []string{"james@mergington.edu", "kept@mergington.edu"}, activities["Math Club"].Participants)

	// A second process sharing the server sees the same registry.
	other := NewRedisActivityStor(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	name, err := other.FindActivityForParticipant("kept@mergington.edu")
	require.NoError(t, err)
	assert.Equal(t, "Math Club", name)
}
