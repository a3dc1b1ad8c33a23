package config

import (
	"os"
	"reflect"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/driftfs/driftfs/internal/cli/output"
	"github.com/driftfs/driftfs/pkg/config"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate JSON schema for the configuration file",
	Long: `Generate a JSON schema describing the DriftFS configuration file.

The schema can be fed to editors and linters for completion and
validation of config.yaml.

Examples:
  # Write the schema next to the config
  driftfs config schema > driftfs-config.schema.json`,
	RunE: runConfigSchema,
}

func runConfigSchema(cmd *cobra.Command, args []string) error {
	r := &jsonschema.Reflector{
		// Property names come from the mapstructure tags, which are the
		// keys actually read from the config file.
		FieldNameTag: "mapstructure",
		// Every key is optional; missing ones get defaults at load time.
		RequiredFromJSONSchemaTags: true,
	}
	r.Mapper = func(t reflect.Type) *jsonschema.Schema {
		// Durations are written as strings like "30s" or "1h30m".
		if t == reflect.TypeOf(time.Duration(0)) {
			return &jsonschema.Schema{
				Type:    "string",
				Pattern: `^([0-9]+(\.[0-9]+)?(ns|us|ms|s|m|h))+$`,
			}
		}
		return nil
	}

	schema := r.Reflect(&config.Config{})
	schema.Title = "DriftFS Configuration"

	return output.PrintJSON(os.Stdout, schema)
}
