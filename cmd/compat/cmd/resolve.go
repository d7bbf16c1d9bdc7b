package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/oriumgames/compat"
	"github.com/oriumgames/compat/version"
	"github.com/spf13/cobra"
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve [release]",
	Short: "Show the implementation every capability selects for a release",
	Long: `Resolve every capability breakpoint table for a host release without
constructing anything. The release defaults to --version.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

// capabilitiesCmd represents the capabilities command
var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "List the capability tables",
	Args:  cobra.NoArgs,
	RunE:  runCapabilities,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(capabilitiesCmd)
}

type resolveResult struct {
	Release      string              `json:"release" yaml:"release"`
	Version      int                 `json:"version" yaml:"version"`
	Canonical    string              `json:"canonical" yaml:"canonical"`
	Capabilities []compat.Resolution `json:"capabilities" yaml:"capabilities"`
}

func resolve(release string) (resolveResult, error) {
	v, err := version.Encode(release)
	if err != nil {
		return resolveResult{}, err
	}
	return resolveResult{
		Release:      release,
		Version:      v,
		Canonical:    version.Format(v),
		Capabilities: compat.ResolveAll(v),
	}, nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	release := hostVersion
	if len(args) == 1 {
		release = args[0]
	}
	result, err := resolve(release)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(result.Capabilities))
	for _, r := range result.Capabilities {
		leaf := r.Leaf
		if r.Error != "" {
			leaf = "-"
		}
		rows = append(rows, []string{r.Capability, leaf, r.Error})
	}
	if output() == "table" {
		fmt.Printf("%s (%d)\n", result.Canonical, result.Version)
	}
	return render(os.Stdout, result, []string{"Capability", "Implementation", "Error"}, rows)
}

type capabilityInfo struct {
	Name    string   `json:"name" yaml:"name"`
	Floor   string   `json:"floor" yaml:"floor"`
	Ceiling string   `json:"ceiling,omitempty" yaml:"ceiling,omitempty"`
	Leaves  []string `json:"implementations" yaml:"implementations"`
}

func runCapabilities(cmd *cobra.Command, args []string) error {
	caps := compat.Capabilities()
	infos := make([]capabilityInfo, 0, len(caps))
	rows := make([][]string, 0, len(caps))
	for _, c := range caps {
		if err := c.Validate(); err != nil {
			return err
		}
		infos = append(infos, capabilityInfo{Name: c.Name, Floor: c.Floor, Ceiling: c.Ceiling, Leaves: c.Leaves})

		ceiling := c.Ceiling
		if ceiling == "" {
			ceiling = "-"
		}
		rows = append(rows, []string{c.Name, c.Floor, ceiling, strings.Join(c.Leaves, ", ")})
	}
	return render(os.Stdout, infos, []string{"Capability", "Floor", "Ceiling", "Implementations"}, rows)
}
