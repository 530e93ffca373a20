package cli

// Formatting constants of tabular output.
const (
	// TabWidth is the padding between tabwriter columns.
	TabWidth = 2
	// MaxDescriptionLength is the maximum length of a package description to display.
	MaxDescriptionLength = 60
)
