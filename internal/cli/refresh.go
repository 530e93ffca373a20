package cli

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/glorpus-work/tally/internal/logger"
	"github.com/glorpus-work/tally/pkg/config"
	"github.com/glorpus-work/tally/pkg/fsutil"
	"github.com/glorpus-work/tally/pkg/hooks"
	"github.com/glorpus-work/tally/pkg/job"
	"github.com/glorpus-work/tally/pkg/legacy"
	"github.com/glorpus-work/tally/pkg/metrics"
	"github.com/glorpus-work/tally/pkg/reconcile"
)

// NewRefreshCmd creates the refresh command.
func NewRefreshCmd() *cobra.Command {
	var (
		snapshot string
		quiet    bool
	)

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Reconcile the inventory with the installed software",
		Long: `Run a full refresh pass: clear records whose directory was deleted,
migrate the legacy directory layout, load the persisted inventory, run every
detector and clear versions installed inside another version's directory.

With --snapshot the OS sources are replaced by a recorded YAML snapshot.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRefresh(cmd, snapshot, quiet)
		},
	}

	cmd.Flags().StringVar(&snapshot, "snapshot", "", "Read evidence from a YAML snapshot instead of the OS")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print progress")

	return cmd
}

func runRefresh(cmd *cobra.Command, snapshot string, quiet bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if snapshot != "" {
		cfg.Settings.Snapshot = snapshot
	}

	sess, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	fs := afero.NewOsFs()
	env, err := buildEnv(cfg, sess.catalog, fs)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()
	sess.store.Subscribe(recorder)
	if cfg.Hooks.StatusChanged != "" {
		hook, err := loadStatusHook(cfg, fs)
		if err != nil {
			return err
		}
		sess.store.Subscribe(hook)
	}

	pass := &reconcile.Pass{
		Store:    sess.store,
		KV:       sess.kv,
		Env:      env,
		Recorder: recorder,
	}
	if cfg.Settings.LegacyDir != "" {
		pass.Legacy = legacy.NewScanner(fs, cfg.Settings.LegacyDir)
	}

	out := cmd.OutOrStdout()
	var jobHooks job.Hooks
	if !quiet {
		jobHooks.OnEvent = progressPrinter(out)
	}
	res := pass.Refresh(job.New(cmd.Context(), jobHooks))

	if cfg.Settings.MetricsTextfile != "" {
		if err := recorder.WriteTextfile(cfg.Settings.MetricsTextfile); err != nil {
			logger.Warn("cannot write metrics", logger.Fields{"error": err})
		}
	}

	color.NoColor = color.NoColor || !cfg.Settings.ColorOutput
	printSummary(out, res)

	switch res.Outcome {
	case reconcile.OutcomeFailed, reconcile.OutcomeCancelled:
		return res.Err
	default:
		return nil
	}
}

// loadStatusHook compiles the configured script or script directory.
func loadStatusHook(cfg *config.Config, fs afero.Fs) (*hooks.StatusHook, error) {
	manager := hooks.NewHookManager()
	path := cfg.Hooks.StatusChanged
	var err error
	if fsutil.IsDir(fs, path) {
		err = hooks.LoadHooksFromDir(manager, fs, path)
	} else {
		err = hooks.LoadHookFile(manager, fs, hooks.StatusChanged, path)
	}
	if err != nil {
		return nil, err
	}

	vars := make(map[string]interface{}, len(cfg.Hooks.Vars))
	for k, v := range cfg.Hooks.Vars {
		vars[k] = v
	}
	return hooks.NewStatusHook(manager, vars), nil
}

// progressPrinter prints one line per hint change.
func progressPrinter(w io.Writer) func(job.Event) {
	var (
		mu   sync.Mutex
		last string
	)
	return func(e job.Event) {
		mu.Lock()
		defer mu.Unlock()
		if e.Hint == "" || e.Hint == last {
			return
		}
		last = e.Hint
		_, _ = fmt.Fprintf(w, "[%3.0f%%] %s\n", e.Progress*100, e.Hint)
	}
}

func printSummary(w io.Writer, res reconcile.Result) {
	names := make([]string, 0, len(res.Reports))
	for name := range res.Reports {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "DETECTOR\tOBSERVED\tCLEARED")
	for _, name := range names {
		rep := res.Reports[name]
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\n", name, rep.Observed, rep.Cleared)
	}
	_ = tw.Flush()

	switch res.Outcome {
	case reconcile.OutcomeSuccess:
		green := color.New(color.FgGreen).SprintFunc()
		_, _ = fmt.Fprintf(w, "%s: %d package versions installed\n", green("Refresh complete"), res.Installed)
		if res.Degraded != nil {
			yellow := color.New(color.FgYellow).SprintFunc()
			_, _ = fmt.Fprintf(w, "%s: %v\n", yellow("Some changes were not saved"), res.Degraded)
		}
	default:
		red := color.New(color.FgRed).SprintFunc()
		_, _ = fmt.Fprintf(w, "%s\n", red(res.Message))
	}
}
