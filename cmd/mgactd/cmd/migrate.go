package cmd

import (
	"github.com/apex/log"
	"github.com/mergington/activities/pkg/config"
	"github.com/mergington/activities/pkg/mgdb"
	"github.com/mergington/activities/pkg/mgdb/stor"
	"github.com/mergington/activities/pkg/seed"
	"github.com/spf13/cobra"
)

var seedOnMigrate bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the activity tables in the MG_STORE database",
	Long: `Create or update the activities and participants tables. With --seed
the seed activities are inserted too; activities already present are left
alone.`,
	Run: func(cmd *cobra.Command, args []string) {
		db := mgdb.MustConnectToDB(config.GetConfig())
		if err := mgdb.Migrate(db); err != nil {
			log.Fatalf("%s", err)
		}

		if !seedOnMigrate {
			log.Infof("Migrated %s", config.GetKey(config.KeyStore))
			return
		}

		activities, err := seed.Load(config.GetKey(config.KeySeedFile))
		if err != nil {
			log.Fatalf("%s", err)
		}

		if err := stor.NewGormActivityStor(db).SeedActivities(activities); err != nil {
			log.Fatalf("Seeding failed: %s", err)
		}

		log.Infof("Migrated and seeded %d activities", len(activities))
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().BoolVar(&seedOnMigrate, "seed", false, "insert the seed activities")
}
