package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driving"
)

var directoryCmd = &cobra.Command{
	Use:   "directory",
	Short: "Manage the supplier directory",
}

var directoryImportCmd = &cobra.Command{
	Use:   "import [file.yaml]",
	Short: "Import suppliers, roles and availability",
	Long: `Imports supplier records from a YAML file:

  owners:
    - id: acme-plumbing
      name: Acme Plumbing
      verified: true
      rating: 4.6
      roles: [plumber, gas fitter]
      availability:
        - day: monday
          from: "09:00"
          to: "17:00"

Every record is validated before anything is written. Roles are created when
missing. A record without an availability key keeps its existing slots.`,
	Args: cobra.ExactArgs(1),
	RunE: runDirectoryImport,
}

func init() {
	directoryCmd.AddCommand(directoryImportCmd)
	rootCmd.AddCommand(directoryCmd)
}

type directoryFile struct {
	Owners []ownerRecord `yaml:"owners"`
}

type ownerRecord struct {
	ID           string       `yaml:"id"`
	Name         string       `yaml:"name"`
	Verified     bool         `yaml:"verified"`
	Rating       float64      `yaml:"rating"`
	Supplier     *bool        `yaml:"supplier"`
	Roles        []string     `yaml:"roles"`
	Availability []slotRecord `yaml:"availability"`
}

type slotRecord struct {
	Day  string `yaml:"day"`
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// parseDirectory decodes a directory file into owner seeds.
// Owners are suppliers unless the record says otherwise.
func parseDirectory(data []byte) ([]driving.OwnerSeed, error) {
	var f directoryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	seeds := make([]driving.OwnerSeed, 0, len(f.Owners))
	for _, rec := range f.Owners {
		supplier := true
		if rec.Supplier != nil {
			supplier = *rec.Supplier
		}
		seed := driving.OwnerSeed{
			Owner: domain.Owner{
				ID:            rec.ID,
				Name:          rec.Name,
				Verified:      rec.Verified,
				AverageRating: rec.Rating,
				Supplier:      supplier,
			},
			Roles: rec.Roles,
		}
		if rec.Availability != nil {
			seed.Availability = make([]domain.TimeWindow, 0, len(rec.Availability))
			for _, slot := range rec.Availability {
				w, err := domain.ParseTimeWindow(slot.Day, slot.From, slot.To)
				if err != nil {
					return nil, fmt.Errorf("owner %s: %w", rec.ID, err)
				}
				seed.Availability = append(seed.Availability, w)
			}
		}
		seeds = append(seeds, seed)
	}
	return seeds, nil
}

func runDirectoryImport(cmd *cobra.Command, args []string) error {
	if directoryService == nil {
		return unavailable("directory")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	seeds, err := parseDirectory(data)
	if err != nil {
		return err
	}

	stats, err := directoryService.Import(cmd.Context(), seeds)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("%s %d owners, %d new roles, %d availability slots\n",
		successColor("Imported"), stats.Owners, stats.RolesCreated, stats.Slots)
	return nil
}
