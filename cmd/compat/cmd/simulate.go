package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/oriumgames/compat/host"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	simChunkX   int
	simChunkZ   int
	simSection  int
	simMaterial string
	simDataDir  string
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Fill a section on an in-memory host and save and refresh its chunk",
	Long: `Boot an in-memory host at --version, fill the bottom layer of one section with raw
section writes, then save and refresh the chunk and report what the host did.`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().IntVar(&simChunkX, "chunk-x", 0, "chunk x coordinate")
	simulateCmd.Flags().IntVar(&simChunkZ, "chunk-z", 0, "chunk z coordinate")
	simulateCmd.Flags().IntVar(&simSection, "section", 4, "vertical section index")
	simulateCmd.Flags().StringVar(&simMaterial, "material", "minecraft:stone", "block written into the section")
	simulateCmd.Flags().StringVar(&simDataDir, "data", "", "persist chunks in this leveldb directory instead of memory")
}

type simulation struct {
	Release        string         `json:"release" yaml:"release"`
	Implementation string         `json:"implementation" yaml:"implementation"`
	BlocksWritten  int            `json:"blocks_written" yaml:"blocks_written"`
	DirtyAfter     bool           `json:"dirty_after_write" yaml:"dirty_after_write"`
	Unloaded       bool           `json:"unloaded" yaml:"unloaded"`
	StoreSaves     int64          `json:"store_saves" yaml:"store_saves"`
	ChunkSaves     float64        `json:"chunk_saves" yaml:"chunk_saves"`
	Effects        map[string]int `json:"effects" yaml:"effects"`
	Persisted      string         `json:"persisted_block" yaml:"persisted_block"`
}

func runSimulate(cmd *cobra.Command, args []string) error {
	reg := prometheus.NewRegistry()
	env, err := bootHost(hostVersion, simDataDir, reg)
	if err != nil {
		return err
	}
	defer env.close()

	res, err := simulate(env, reg)
	if err != nil {
		return err
	}

	rows := [][]string{
		{"Release", res.Release},
		{"Implementation", res.Implementation},
		{"Blocks written", strconv.Itoa(res.BlocksWritten)},
		{"Dirty after write", strconv.FormatBool(res.DirtyAfter)},
		{"Unloaded", strconv.FormatBool(res.Unloaded)},
		{"Store saves", strconv.FormatInt(res.StoreSaves, 10)},
		{"Chunk saves", strconv.FormatFloat(res.ChunkSaves, 'f', 0, 64)},
		{"Persisted block", res.Persisted},
	}
	for kind, n := range res.Effects {
		rows = append(rows, []string{"Effect " + kind, strconv.Itoa(n)})
	}
	return render(os.Stdout, res, []string{"Property", "Value"}, rows)
}

func simulate(env *hostEnv, reg *prometheus.Registry) (simulation, error) {
	res := simulation{Release: env.srv.Version(), Effects: make(map[string]int)}
	res.Implementation, _ = env.api.BlockUtil().Leaf()

	w, err := env.api.World(env.world)
	if err != nil {
		return res, err
	}
	c, err := w.ChunkProvider().ChunkAt(simChunkX, simChunkZ)
	if err != nil {
		return res, err
	}
	s, err := c.SectionOrCreate(simSection)
	if err != nil {
		return res, err
	}

	m := host.Material(simMaterial)
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			if err := s.SetType(x, 0, z, m); err != nil {
				return res, fmt.Errorf("write %d,0,%d: %w", x, z, err)
			}
			res.BlocksWritten++
		}
	}
	res.DirtyAfter = c.Handle().Dirty()

	env.world.ResetEffects()
	if err := c.SaveAndRefresh(); err != nil {
		return res, err
	}
	res.Unloaded = !env.world.Loaded(simChunkX, simChunkZ)
	res.StoreSaves = env.store.Saves()
	if res.ChunkSaves, err = counter(reg, "compat_chunk_saves_total"); err != nil {
		return res, err
	}
	for _, e := range env.world.Effects() {
		res.Effects[e.Kind.String()]++
	}

	b, err := env.world.Block(cube.Pos{simChunkX << 4, simSection << 4, simChunkZ << 4})
	if err != nil {
		return res, err
	}
	res.Persisted = b.String()
	return res, nil
}

// counter sums the values of the counter name in g.
func counter(g prometheus.Gatherer, name string) (float64, error) {
	mfs, err := g.Gather()
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
	}
	return sum, nil
}
