// Command validate checks ruleset files. For each file it reports:
//   - parse errors and reference data that fails validation
//   - ward spell expressions that do not compile
//   - units that cannot enter any tile type on their own
//   - tile types that no unit can enter
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/realm-movement/game/config"
	"github.com/wricardo/realm-movement/game/engine"
	"github.com/wricardo/realm-movement/game/movement"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
}

// validateRuleset loads and validates a single ruleset file
func validateRuleset(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	r, err := config.LoadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	coverage := checkCoverage(r)
	result.Warnings = coverage.Warnings
	if !coverage.Valid {
		result.Valid = false
		result.Errors = append(result.Errors, coverage.Errors...)
		return result
	}

	result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", r.Name))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Tile types: %d (%d movement rate rules)", len(r.TileTypes), len(r.MovementRateRules)))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Combat tile types: %d, borders: %d", len(r.CombatTileTypes), len(r.CombatTileBorders)))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Units: %d, skills: %d", len(r.Units), len(r.UnitSkills)))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Ward spells: %d", len(r.WardSpells)))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Embark cost: %s, max units per location: %d",
		movement.DoubleMovement(r.Settings.EmbarkDoubleMovement), r.Settings.MaxUnitsPerLocation))
	result.Errors = append(result.Errors, coverage.Errors...)

	return result
}

// checkCoverage evaluates every unit alone against every tile type. A unit
// with nowhere to go is an error; a tile type nobody can enter is a warning,
// since it may be reachable only by embarking.
func checkCoverage(r *config.Ruleset) ValidationResult {
	result := ValidationResult{Valid: true, Errors: []string{}}

	capability := engine.NewRuleMovement(&r.Database)
	enterable := make(map[string]bool, len(r.TileTypes))

	for _, def := range r.Units {
		unit := engine.Unit{ID: 1, UnitID: def.ID}
		skills, err := engine.StackSkills(&r.Database, engine.Stack{Units: []engine.Unit{unit}})
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Unit %s: %v", def.ID, err))
			continue
		}

		count := 0
		for _, tt := range r.TileTypes {
			rate, err := capability.DoubleMovementToEnter(unit, skills, tt.ID)
			if err != nil {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf("Unit %s on %s: %v", def.ID, tt.ID, err))
				continue
			}
			if rate.Enterable() {
				enterable[tt.ID] = true
				count++
			}
		}
		if count == 0 {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Unit %s cannot enter any tile type", def.ID))
		}
	}

	var unreachable []string
	for _, tt := range r.TileTypes {
		if tt.ID == r.FogTileTypeID {
			continue
		}
		if !enterable[tt.ID] {
			unreachable = append(unreachable, tt.ID)
		}
	}
	sort.Strings(unreachable)

	if len(r.Units) > 0 && len(unreachable) > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("No unit can enter: %s", strings.Join(unreachable, ", ")))
	} else if len(r.Units) > 0 && result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Coverage: every tile type is enterable by at least one of %d units", len(r.Units)))
	}

	return result
}

// rulesetFiles lists the ruleset files to check: the arguments when given,
// otherwise every ruleset file in dir
func rulesetFiles(dir string, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read ruleset directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, known := range config.Extensions {
			if ext == known {
				files = append(files, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	files, err := rulesetFiles(cmd.String("dir"), cmd.Args().Slice())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no ruleset files found in %s", cmd.String("dir"))
	}

	validColor := color.New(color.FgGreen, color.Bold)
	invalidColor := color.New(color.FgRed, color.Bold)
	warnColor := color.New(color.FgYellow)

	allValid := true
	for _, file := range files {
		result := validateRuleset(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			validColor.Println("✅ VALID")
			if !cmd.Bool("quiet") {
				for _, info := range result.Errors {
					fmt.Println("  " + info)
				}
			}
		} else {
			invalidColor.Println("❌ INVALID")
			allValid = false
			for _, e := range result.Errors {
				if !strings.HasPrefix(e, "✓") {
					fmt.Println("  ❌ " + e)
				}
			}
		}
		for _, w := range result.Warnings {
			warnColor.Println("  ⚠ " + w)
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if !allValid {
		return cli.Exit(color.RedString("❌ Some rulesets have errors"), 1)
	}
	validColor.Println("✅ All rulesets are valid!")
	return nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check ruleset files",
		ArgsUsage: "[ruleset files...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Value:   "rulesets",
				Usage:   "directory scanned when no files are given",
				Sources: cli.EnvVars("RULESET_DIR"),
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "only print failures and warnings",
			},
		},
		Action: run,
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
