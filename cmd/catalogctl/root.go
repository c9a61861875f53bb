package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"servicecatalog/internal/catalog"

	"github.com/spf13/cobra"
)

type options struct {
	file    string
	format  string
	dsn     string
	jsonOut bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "catalogctl",
		Short: "Inspect and validate service catalog files",
		Long: `catalogctl loads a service catalog the same way the API does and lets you
validate it, look entries up and browse categories from the command line.

Supported inputs:
  - blank-line separated "Key: value" blocks (default)
  - CSV with a header row (.csv)
  - a YAML list of mappings (.yaml, .yml)

lookup and list can read the catalog stored by the API or seed command
instead of a file by passing --dsn.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.file, "file", "f", "", "catalog file to load")
	root.PersistentFlags().StringVar(&opts.format, "format", "", "input format: blocks, csv or yaml (default: from extension)")
	root.PersistentFlags().StringVar(&opts.dsn, "dsn", "", "read lookup and list from this Postgres database instead of --file")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "JSON output")

	root.AddCommand(
		newValidateCmd(opts),
		newLookupCmd(opts),
		newListCmd(opts),
		newCategoriesCmd(opts),
	)
	return root
}

func (o *options) load() (*catalog.Index, error) {
	if o.file == "" {
		return nil, errors.New(`required flag "file" not set`)
	}
	if o.format == "" {
		return catalog.LoadFile(o.file)
	}
	switch f := catalog.Format(o.format); f {
	case catalog.FormatBlocks, catalog.FormatCSV, catalog.FormatYAML:
		return catalog.LoadFileAs(o.file, f)
	default:
		return nil, fmt.Errorf("unknown format %q", o.format)
	}
}

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that every record parses, validates and has a unique key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := opts.load()
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"valid": true, "entries": idx.Size()})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries OK\n", opts.file, idx.Size())
			return nil
		},
	}
}

func newLookupCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <key>...",
		Short: "Print the entries for one or more keys",
		Long: `Look up entries by id, topic or synthetic "entry-<n>" key. With more
than one key a hit/miss summary is printed at the end.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, closeFn, err := opts.source(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			stats := catalog.NewQueryStats(len(args))
			out := cmd.OutOrStdout()

			var found []catalog.Entry
			var missing []string
			for _, key := range args {
				e, err := src.Lookup(cmd.Context(), key)
				if errors.Is(err, catalog.ErrNotFound) {
					stats.IncrementFail()
					missing = append(missing, key)
					if !opts.jsonOut {
						fmt.Fprintf(out, "%s: not found\n\n", key)
					}
					continue
				}
				if err != nil {
					return err
				}
				stats.IncrementPass()
				found = append(found, e)
				if !opts.jsonOut {
					printEntry(out, e)
				}
			}

			if opts.jsonOut {
				return writeJSON(out, map[string]any{
					"entries": found,
					"missing": missing,
					"stats":   stats.Summary(),
				})
			}
			if len(args) > 1 {
				fmt.Fprintln(out, stats.Summary().String())
			}
			if len(missing) > 0 {
				return &catalog.NotFoundError{Key: missing[0]}
			}
			return nil
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries, optionally for one category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, closeFn, err := opts.source(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			entries, _, err := src.List(cmd.Context(), catalog.ListQuery{Category: category})
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tCATEGORY\tSUBCATEGORY\tBRIEF DESCRIPTION")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Key, e.Category, e.Subcategory, e.BriefDescription)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only entries in this category (case-insensitive)")
	return cmd
}

func newCategoriesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List distinct categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := opts.load()
			if err != nil {
				return err
			}
			categories := idx.Categories()
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), categories)
			}
			for _, c := range categories {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d)\n", c, len(idx.ByCategory(c)))
			}
			return nil
		},
	}
}

func printEntry(w io.Writer, e catalog.Entry) {
	fmt.Fprintf(w, "Key:               %s\n", e.Key)
	fmt.Fprintf(w, "Category:          %s\n", e.Category)
	fmt.Fprintf(w, "Subcategory:       %s\n", e.Subcategory)
	fmt.Fprintf(w, "Brief Description: %s\n", e.BriefDescription)
	if e.Description != "" {
		fmt.Fprintf(w, "Description:       %s\n", e.Description)
	}
	fmt.Fprintln(w)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
