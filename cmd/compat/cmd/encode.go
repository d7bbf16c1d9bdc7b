package cmd

import (
	"errors"
	"os"
	"strconv"

	"github.com/oriumgames/compat/version"
	"github.com/spf13/cobra"
)

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode <release>...",
	Short: "Print the canonical integer of host releases",
	Long:  `Encode release strings such as "1.20.4-R0.1-SNAPSHOT" as major*1000 + minor*10 + patch.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEncode,
}

func init() {
	rootCmd.AddCommand(encodeCmd)
}

type encoded struct {
	Release   string `json:"release" yaml:"release"`
	Version   int    `json:"version,omitempty" yaml:"version,omitempty"`
	Canonical string `json:"canonical,omitempty" yaml:"canonical,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

var errEncode = errors.New("some releases could not be encoded")

func runEncode(cmd *cobra.Command, args []string) error {
	results := make([]encoded, 0, len(args))
	rows := make([][]string, 0, len(args))
	failed := false
	for _, release := range args {
		e := encoded{Release: release}
		if v, err := version.Encode(release); err != nil {
			e.Error = err.Error()
			failed = true
		} else {
			e.Version, e.Canonical = v, version.Format(v)
		}
		results = append(results, e)
		rows = append(rows, []string{e.Release, strconv.Itoa(e.Version), e.Canonical, e.Error})
	}
	if err := render(os.Stdout, results, []string{"Release", "Version", "Canonical", "Error"}, rows); err != nil {
		return err
	}
	if failed {
		return errEncode
	}
	return nil
}
