package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/tally/pkg/catalog"
	"github.com/glorpus-work/tally/pkg/errors"
	"github.com/glorpus-work/tally/pkg/model"
)

// Number of arguments expected by the show command.
const showCommandArgs = 2

// packageView is the JSON shape of show.
type packageView struct {
	recordView
	Title       string `json:"title,omitempty"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
	ExternalID  string `json:"external_id,omitempty"`
}

// NewShowCmd creates the show command.
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show PACKAGE VERSION",
		Short: "Show one package version",
		Long:  "Display the inventory record of a package version together with its catalog metadata",
		Args:  cobra.ExactArgs(showCommandArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args[0], args[1])
		},
	}

	return cmd
}

func runShow(cmd *cobra.Command, pkg, ver string) error {
	if err := model.ValidatePackageName(pkg); err != nil {
		return err
	}
	v, err := model.ParseVersion(ver)
	if err != nil {
		return err
	}
	id := model.NewIdentity(pkg, v)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sess, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	rec, ok := sess.store.Find(id)
	if !ok {
		return errors.Wrapf(errors.ErrKeyNotFound, "%s is not in the inventory", id)
	}
	view := packageView{recordView: viewOf(rec)}
	if err := addMetadata(&view, sess.catalog, id); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg.Settings.OutputFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	status := "not installed"
	if view.Installed {
		status = "installed"
	}
	tw := tabwriter.NewWriter(out, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Package:\t%s\n", view.Package)
	_, _ = fmt.Fprintf(tw, "Version:\t%s\n", view.Version)
	_, _ = fmt.Fprintf(tw, "Status:\t%s\n", status)
	_, _ = fmt.Fprintf(tw, "Directory:\t%s\n", view.Directory)
	_, _ = fmt.Fprintf(tw, "Source:\t%s\n", view.Source)
	_, _ = fmt.Fprintf(tw, "Title:\t%s\n", view.Title)
	_, _ = fmt.Fprintf(tw, "URL:\t%s\n", view.URL)
	_, _ = fmt.Fprintf(tw, "Description:\t%s\n", truncate(view.Description, MaxDescriptionLength))
	if view.ExternalID != "" {
		_, _ = fmt.Fprintf(tw, "External ID:\t%s\n", view.ExternalID)
	}
	return tw.Flush()
}

func addMetadata(view *packageView, repo catalog.Repository, id model.Identity) error {
	p, err := repo.FindPackage(id.Package())
	if err != nil {
		return err
	}
	if p != nil {
		view.Title, view.URL, view.Description = p.Title, p.URL, p.Description
	}
	pv, err := repo.FindPackageVersion(id.Package(), id.Version())
	if err != nil {
		return err
	}
	if pv != nil {
		view.ExternalID = pv.ExternalID
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
