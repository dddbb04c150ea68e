package cmd

import (
	"fmt"

	"github.com/apex/log"
	"github.com/spf13/cobra"
)

var signupCmd = &cobra.Command{
	Use:   "signup <activity> <email>",
	Short: "Sign a student up for an activity",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		msg, err := newClient().Signup(args[0], args[1])
		if err != nil {
			log.Fatalf("Signup failed: %s", err)
		}

		fmt.Println(msg)
	},
}

var unregisterCmd = &cobra.Command{
	Use:   "unregister <activity> <email>",
	Short: "Remove a student from an activity",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		msg, err := newClient().Unregister(args[0], args[1])
		if err != nil {
			log.Fatalf("Unregister failed: %s", err)
		}

		fmt.Println(msg)
	},
}

var whereCmd = &cobra.Command{
	Use:   "where <email>",
	Short: "Show which activity a student is signed up for",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name, err := newClient().FindParticipant(args[0])
		if err != nil {
			log.Fatalf("Lookup failed: %s", err)
		}

		fmt.Println(name)
	},
}

func init() {
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(unregisterCmd)
	rootCmd.AddCommand(whereCmd)
}
