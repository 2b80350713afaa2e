package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/stagescout/internal/model"
	"github.com/amishk599/stagescout/internal/store"
)

const maxTitleWidth = 60

var (
	jobsSource string
	jobsLimit  int
)

var jobsCmd = &cobra.Command{
	Use:   "jobs [id]",
	Short: "Show stored jobs",
	Long:  "Prints the most recently scraped jobs from the database, or every field of a single job when an id is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runJobs,
}

func init() {
	jobsCmd.Flags().StringVar(&jobsSource, "source", "", "only show jobs from this source type")
	jobsCmd.Flags().IntVarP(&jobsLimit, "limit", "n", 50, "maximum number of jobs to show (0 for all)")
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	cfg, _ := mustLoad()

	ctx := context.Background()
	jobStore, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer jobStore.Close()
	if err := jobStore.Init(ctx); err != nil {
		return fmt.Errorf("init store: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid job id %q", args[0])
		}
		job, err := jobStore.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no job with id %d", id)
		}
		if err != nil {
			return err
		}
		printJob(out, job)
		return nil
	}

	jobs, err := jobStore.List(ctx, model.ListOptions{Source: jobsSource, Limit: jobsLimit})
	if err != nil {
		return err
	}
	t := newTable("ID", "SCRAPED", "SOURCE", "COMPANY", "TITLE", "LOCATION", "TAGS")
	for _, j := range jobs {
		t.Row(
			strconv.FormatInt(j.ID, 10),
			j.ScrapedAt.Local().Format("2006-01-02 15:04"),
			j.Source,
			j.Company,
			truncate(j.Title, maxTitleWidth),
			j.Location,
			strings.Join(j.Tags, ","),
		)
	}
	fmt.Fprintln(out, t.Render())
	fmt.Fprintf(out, "%d jobs\n", len(jobs))
	return nil
}

func printJob(w io.Writer, j model.StoredJob) {
	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "%-14s %s\n", label+":", value)
		}
	}
	field("ID", strconv.FormatInt(j.ID, 10))
	field("Scraped", j.ScrapedAt.Local().Format("2006-01-02 15:04:05"))
	field("Source", j.Source)
	field("Source Job ID", j.SourceJobID)
	field("Title", j.Title)
	field("Company", j.Company)
	field("Location", j.Location)
	field("Country", j.CountryCode)
	field("Remote", strconv.FormatBool(j.IsRemote))
	field("Language", j.Language)
	field("Posted", j.PostedAt)
	field("Tags", strings.Join(j.Tags, ", "))
	field("Apply URL", j.ApplyURL)
	if j.Description != "" {
		fmt.Fprintf(w, "\n%s\n", j.Description)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
