// Package seed provides the fixed set of activities the registry starts with.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/mergington/activities/pkg/mgdb/mgmodel"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed activities.yaml
var defaultActivities []byte

type activityEntry struct {
	Name            string   `yaml:"name"`
	Description     string   `yaml:"description"`
	Schedule        string   `yaml:"schedule"`
	MaxParticipants int      `yaml:"max_participants"`
	Participants    []string `yaml:"participants"`
}

// Default returns the built in activities.
func Default() ([]mgmodel.Activity, error) {
	return Parse(defaultActivities)
}

// Load returns the activities in path, or the built in ones when path is empty.
func Load(path string) ([]mgmodel.Activity, error) {
	if path == "" {
		return Default()
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading seed file %s", path)
	}

	activities, err := Parse(b)
	if err != nil {
		return nil, errors.Wrapf(err, "seed file %s", path)
	}

	return activities, nil
}

// Parse decodes a YAML list of activities and validates it.
func Parse(b []byte) ([]mgmodel.Activity, error) {
	var entries []activityEntry
	if err := yaml.Unmarshal(b, &entries); err != nil {
		return nil, errors.Wrap(err, "decoding activities")
	}

	activities := make([]mgmodel.Activity, 0, len(entries))
	for _, e := range entries {
		activities = append(activities, mgmodel.Activity{
			Name:            e.Name,
			Description:     e.Description,
			Schedule:        e.Schedule,
			MaxParticipants: e.MaxParticipants,
			Participants:    append([]string{}, e.Participants...),
		})
	}

	if err := Validate(activities); err != nil {
		return nil, err
	}

	return activities, nil
}

// Validate checks that names are present and unique, capacities are
// positive, and no email is on more than one roster.
func Validate(activities []mgmodel.Activity) error {
	names := make(map[string]bool, len(activities))
	owner := make(map[string]string)

	for _, a := range activities {
		switch {
		case a.Name == "":
			return fmt.Errorf("activity with no name")
		case names[a.Name]:
			return fmt.Errorf("activity '%s' listed twice", a.Name)
		case a.MaxParticipants <= 0:
			return fmt.Errorf("activity '%s' has max_participants %d", a.Name, a.MaxParticipants)
		}
		names[a.Name] = true

		for _, email := range a.Participants {
			if other, ok := owner[email]; ok {
				return fmt.Errorf("%s is in both '%s' and '%s'", email, other, a.Name)
			}
			owner[email] = a.Name
		}
	}

	return nil
}
