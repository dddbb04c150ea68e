package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/apex/log"
	"github.com/mergington/activities/pkg/mgdb/mgmodel"
	"github.com/spf13/cobra"
)

var showParticipants bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List activities with their schedule and open spots",
	Run: func(cmd *cobra.Command, args []string) {
		activities, err := newClient().ListActivities()
		if err != nil {
			log.Fatalf("Unable to list activities: %s", err)
		}

		printActivities(os.Stdout, activities, showParticipants)
	},
}

func printActivities(out io.Writer, activities map[string]mgmodel.Activity, withParticipants bool) {
	names := make([]string, 0, len(activities))
	for name := range activities {
		names = append(names, name)
	}
	slices.Sort(names)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ACTIVITY\tSCHEDULE\tSPOTS LEFT")
	for _, name := range names {
		a := activities[name]
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\n", name, a.Schedule, max(a.MaxParticipants-len(a.Participants), 0))
		if withParticipants && len(a.Participants) != 0 {
			_, _ = fmt.Fprintf(w, "\t%s\t\n", strings.Join(a.Participants, ", "))
		}
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVarP(&showParticipants, "participants", "p", false, "show each activity's participants")
}
