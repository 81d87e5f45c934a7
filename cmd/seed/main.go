// Command seed populates the database with demo or fixture data.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"mentorcircles/internal/config"
	"mentorcircles/internal/database"
	"mentorcircles/internal/seed"

	"github.com/spf13/cobra"
)

var (
	fixtureFile      string
	numMentors       int
	numMentees       int
	circlesPerMentor int
	shouldClean      bool
	dryRun           bool
	randSeed         int64
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with demo or fixture data",
	Long: `seed fills the circles database for local development.

Without --file it generates mentors, mentees, circles and applications.
Applications are admitted in arrival order, so circles fill and then
waitlist the way live submissions do.

Examples:
  seed                               # generate the default demo set
  seed --mentors 10 --mentees 80     # a larger marketplace
  seed --file fixtures/demo.yml      # load a hand-written YAML fixture
  seed --dry-run                     # log what would be created`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runSeed,
}

func init() {
	rootCmd.Flags().StringVarP(&fixtureFile, "file", "f", "", "YAML fixture to load instead of generated data")
	rootCmd.Flags().IntVar(&numMentors, "mentors", 5, "Number of mentors to create")
	rootCmd.Flags().IntVar(&numMentees, "mentees", 40, "Number of mentees to create")
	rootCmd.Flags().IntVar(&circlesPerMentor, "circles", 2, "Circles per mentor")
	rootCmd.Flags().BoolVar(&shouldClean, "clean", false, "Delete existing data before seeding")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build entities without writing them")
	rootCmd.Flags().Int64Var(&randSeed, "rand-seed", 0, "Seed for reproducible generated data")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	log.Println("🌱 Database Seeder")
	log.Println("==================")

	// Fixtures are validated before anything connects
	var fixture *seed.Fixture
	if fixtureFile != "" {
		fx, err := seed.LoadFixtureFile(fixtureFile)
		if err != nil {
			return err
		}
		fixture = fx
	}

	opts := seed.Options{DryRun: dryRun, RandSeed: randSeed}
	if dryRun {
		if fixture != nil {
			log.Printf("[dry-run] fixture %s: %d users, %d circles", fixtureFile, len(fixture.Users), len(fixture.Circles))
			return nil
		}
		summary, err := seed.NewSeeder(nil, opts).SeedDemo(demoOptions())
		if err != nil {
			return err
		}
		log.Printf("[dry-run] would create %d users and %d circles", summary.Users, summary.Circles)
		return nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := database.ApplySchema(context.Background(), db, cfg); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	s := seed.NewSeeder(db, opts)
	if shouldClean {
		if err := s.ClearAll(); err != nil {
			return fmt.Errorf("❌ cleanup failed: %w", err)
		}
	}

	var summary *seed.Summary
	if fixture != nil {
		log.Printf("Applying fixture: %s", fixtureFile)
		summary, err = s.ApplyFixture(fixture)
	} else {
		log.Printf("Target: %d mentors, %d mentees, %d circles each, clean=%v", numMentors, numMentees, circlesPerMentor, shouldClean)
		summary, err = s.SeedDemo(demoOptions())
	}
	if err != nil {
		return fmt.Errorf("❌ seeding failed: %w", err)
	}

	log.Printf("✨ Done: %d users, %d follows, %d circles, %d applications, %d sessions",
		summary.Users, summary.Follows, summary.Circles, summary.Applications, summary.Sessions)
	return nil
}

func demoOptions() seed.DemoOptions {
	return seed.DemoOptions{Mentors: numMentors, Mentees: numMentees, CirclesPerMentor: circlesPerMentor}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
