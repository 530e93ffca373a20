package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/glorpus-work/tally/pkg/inventory"
	"github.com/glorpus-work/tally/pkg/model"
)

// listOptions selects the records shown by list.
type listOptions struct {
	installedOnly bool
	name          string
	constraint    string
}

// recordView is the JSON shape of a record.
type recordView struct {
	Package   string `json:"package"`
	Version   string `json:"version"`
	Installed bool   `json:"installed"`
	Directory string `json:"directory,omitempty"`
	Source    string `json:"source,omitempty"`
}

func viewOf(r inventory.Record) recordView {
	return recordView{
		Package:   r.Identity.Package(),
		Version:   r.Identity.Version().String(),
		Installed: r.Installed(),
		Directory: r.Directory,
		Source:    r.DetectionInfo,
	}
}

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known package versions",
		Long: `List the package versions recorded in the inventory.

By default, shows every known version with its installation directory.
Use --installed to hide versions that are not installed, --name to filter
by package name (partial match) and --constraint to filter by version,
e.g. --constraint ">= 1.8, < 2".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.installedOnly, "installed", false, "Only show installed versions")
	cmd.Flags().StringVar(&opts.name, "name", "", "Filter packages by name (partial match)")
	cmd.Flags().StringVar(&opts.constraint, "constraint", "", "Filter by version constraint")

	return cmd
}

func runList(cmd *cobra.Command, opts listOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sess, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	records, err := filterRecords(sess.store.Records(), opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg.Settings.OutputFormat == "json" {
		return writeRecordsJSON(out, records)
	}
	color.NoColor = color.NoColor || !cfg.Settings.ColorOutput
	return writeRecordsTable(out, records)
}

func filterRecords(records []inventory.Record, opts listOptions) ([]inventory.Record, error) {
	var out []inventory.Record
	for _, r := range records {
		if opts.installedOnly && !r.Installed() {
			continue
		}
		if opts.name != "" && !strings.Contains(r.Identity.Package(), opts.name) {
			continue
		}
		ok, err := model.MatchConstraint(r.Identity.Version(), opts.constraint)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func writeRecordsJSON(w io.Writer, records []inventory.Record) error {
	views := make([]recordView, 0, len(records))
	for _, r := range records {
		views = append(views, viewOf(r))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(views)
}

func writeRecordsTable(w io.Writer, records []inventory.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No packages found")
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	tw := tabwriter.NewWriter(w, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PACKAGE\tVERSION\tSTATUS\tDIRECTORY")
	for _, r := range records {
		status := gray("not installed")
		if r.Installed() {
			status = green("installed")
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			r.Identity.Package(), r.Identity.Version(), status, r.Directory)
	}
	return tw.Flush()
}
