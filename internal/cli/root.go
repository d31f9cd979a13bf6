package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smothiki/jupyterlauncher/internal/config"
)

// Version is the current version of jupyterlauncher (injected via ldflags at
// build time)
var Version = "dev"

var (
	// Flags
	output      string
	notebookDir string
	port        int
	noStart     bool

	// Loaded config
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "jupyterlauncher",
	Short: "Start a Jupyter notebook server and log all cell executions in real time",
	Long: `jupyterlauncher starts a Jupyter notebook server and attaches a passive
observer to every running kernel, appending a structured record of each
execution event (code, stdout/stderr, results, errors, display payloads,
input prompts) to an execution log.

Examples:
  jupyterlauncher                         # Start a server and log everything
  jupyterlauncher -o session.log -p 9999  # Custom log file and port
  jupyterlauncher --no-start              # Only attach to running kernels
  jupyterlauncher records session.log     # Dump the records of a finished log
`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runLauncher,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Config supplies the value for flags that weren't explicitly set.
		if !cmd.Flags().Changed("output") {
			output = cfg.Paths.LogFile
		}
		if !cmd.Flags().Changed("notebook-dir") {
			notebookDir = cfg.Paths.NotebookDir
		}
		if !cmd.Flags().Changed("port") {
			port = cfg.Server.Port
		}
		if !cmd.Flags().Changed("no-start") {
			noStart = cfg.Server.NoStart
		}

		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringVarP(&output, "output", "o", "jupyter_live_execution.log", "Output log file")
	rootCmd.Flags().StringVarP(&notebookDir, "notebook-dir", "d", ".", "Notebook directory")
	rootCmd.Flags().IntVarP(&port, "port", "p", 8888, "Jupyter server port")
	rootCmd.Flags().BoolVar(&noStart, "no-start", false, "Do not start a Jupyter server, only monitor existing kernels")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("jupyterlauncher v%s\n", Version)
	},
}
