package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// addFormatFlag registers an output-format flag on fs and returns a
// validator for RunE preambles.
func addFormatFlag(fs *pflag.FlagSet, target *string, formats ...string) func() error {
	fs.StringVarP(target, "format", "f", formats[0],
		fmt.Sprintf("Output format (%s)", strings.Join(formats, ", ")))
	return func() error {
		for _, f := range formats {
			if *target == f {
				return nil
			}
		}
		return fmt.Errorf("unsupported format: %s (supported: %s)",
			*target, strings.Join(formats, ", "))
	}
}
