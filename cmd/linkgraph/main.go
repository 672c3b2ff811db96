// Package main provides the exercise-link CLI application
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aboimpinto/GetFitterGetBigger-sub005/pkg/exerciselinks"
)

// Version information set during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("LinkGraph %s (commit: %s, built: %s)\n", Version, Commit, BuildTime)
		return
	}

	if len(os.Args) > 1 && os.Args[1] == "demo" {
		if err := runDemo(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "demo failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println("🏋️ LinkGraph - Exercise Link Management")
	fmt.Println("Commands: version, demo")
	fmt.Println("Run 'linkgraph-server' to start the HTTP API")
}

// runDemo walks through a small linking session against an in-memory store.
func runDemo(ctx context.Context) error {
	session := exerciselinks.NewSession()
	session.AddExercises(
		&exerciselinks.Exercise{
			ID:    "ex-squat",
			Name:  "Barbell Squat",
			Types: []exerciselinks.TypeTag{{Value: "Workout"}},
			MuscleGroups: []exerciselinks.MuscleGroupAssignment{
				{MuscleGroup: "Quadriceps", Role: "Primary"},
				{MuscleGroup: "Glutes", Role: "Secondary"},
			},
		},
		&exerciselinks.Exercise{
			ID:    "ex-legpress",
			Name:  "Leg Press",
			Types: []exerciselinks.TypeTag{{Value: "Workout"}},
			MuscleGroups: []exerciselinks.MuscleGroupAssignment{
				{MuscleGroup: "Quadriceps", Role: "Primary"},
				{MuscleGroup: "Glutes", Role: "Secondary"},
			},
		},
		&exerciselinks.Exercise{
			ID:    "ex-lunge",
			Name:  "Bodyweight Lunge",
			Types: []exerciselinks.TypeTag{{Value: "Warmup"}},
		},
	)

	if err := session.Open(ctx, "ex-squat", "Barbell Squat"); err != nil {
		return err
	}
	fmt.Println("Opened exercise: Barbell Squat")

	if err := session.Link(ctx, "ex-lunge", exerciselinks.Warmup); err != nil {
		return err
	}
	fmt.Println("Linked warmup: Bodyweight Lunge")

	for _, l := range session.State().WarmupLinks() {
		fmt.Printf("  warmup %d: %s -> %s\n", l.DisplayOrder, l.SourceExerciseID, l.TargetExerciseID)
	}

	suggestions, err := session.Suggest(ctx, 3)
	if err != nil {
		return err
	}
	for _, sug := range suggestions {
		fmt.Printf("  alternative suggestion: %s (score %d)\n", sug.Exercise.Name, sug.Score)
	}

	return nil
}
