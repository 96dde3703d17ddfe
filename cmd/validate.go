package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"go.dot.industries/zcfg/internal/config"
	"go.dot.industries/zcfg/internal/tui"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate all config layer files",
	Long: `Parses every existing config layer and checks that defaults point at
profiles of the right type, that secure lists are well formed, and that
profile types and secure properties are known.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

// layerCheck is the outcome of validating one layer file.
type layerCheck struct {
	path    string
	missing bool
	err     error
}

func runValidate(cmd *cobra.Command, args []string) error {
	home, err := appHome()
	if err != nil {
		return err
	}

	opts := []config.Option{config.WithHomeDir(home), config.WithoutLoad()}
	if flagProjectDir != "" {
		opts = append(opts, config.WithProjectDir(flagProjectDir))
	}
	// Discover the layer paths only; a malformed file would abort a full load.
	cfg, err := config.Load(cmd.Context(), flagApp, opts...)
	if err != nil {
		return err
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	paths := cfg.Paths()
	checks := make([]layerCheck, len(paths))

	g := new(errgroup.Group)
	g.SetLimit(len(paths) + 1)
	for i, path := range paths {
		g.Go(func() error {
			checks[i] = layerCheck{path: path}
			if _, err := os.Stat(path); err != nil {
				checks[i].missing = true
				return nil
			}
			checks[i].err = validateFile(path, catalog.Types)
			return nil
		})
	}
	_ = g.Wait()

	out := cmd.OutOrStdout()
	failed, found := 0, 0
	for _, c := range checks {
		if c.missing {
			log.Debug().Str("path", c.path).Msg("config layer not present")
			continue
		}
		found++
		if c.err != nil {
			fmt.Fprintf(out, "%s: %s\n%s\n", c.path, tui.Error("ERROR"), c.err)
			failed++
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", c.path, tui.Success("valid"))
	}

	if found == 0 {
		fmt.Fprintln(out, tui.Muted("No config files found."))
		return nil
	}
	if failed > 0 {
		return fmt.Errorf("%d config file(s) have errors", failed)
	}
	return nil
}

// validateFile parses one layer file and checks its content.
func validateFile(path string, types []config.ProfileType) error {
	doc, err := config.ReadLayerFile(path)
	if err != nil {
		return err
	}

	log.Debug().Str("path", path).Int("profiles", len(doc.Profiles)).Msg("parsed config layer")

	return config.ValidateWithTypes(doc, types)
}
