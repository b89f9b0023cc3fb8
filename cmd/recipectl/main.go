// Package main implements recipectl, a terminal client for the recipe API.
package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"recipebook/pkg/client"
)

const (
	defaultServer = "http://localhost:8080"

	envServer = "RECIPEBOOK_SERVER"
	envToken  = "RECIPEBOOK_TOKEN"
)

// options are the global flags shared by every subcommand
type options struct {
	server string
	token  string
	output string
}

func (o *options) client() (*client.Client, error) {
	return client.New(o.server, client.WithToken(o.token), client.WithUserAgent("recipectl"))
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "recipectl",
		Short: "Browse and edit the recipe catalog",
		Long: `recipectl talks to a recipe API server.

Filters given to list and link use the same query keys as the web UI, so a
link produced here opens the same selection in a browser.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validateOutput(opts.output)
		},
	}

	root.PersistentFlags().StringVar(&opts.server, "server", envOr(envServer, defaultServer), "API server URL (env "+envServer+")")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv(envToken), "bearer token for write operations (env "+envToken+")")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", outputTable, "output format: table, json or yaml")

	root.AddCommand(
		newListCmd(opts),
		newGetCmd(opts),
		newCreateCmd(opts),
		newReplaceCmd(opts),
		newDeleteCmd(opts),
		newTagsCmd(opts),
		newLinkCmd(opts),
	)

	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func printError(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return
	}
	fields := apiErr.FieldErrors()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, msg := range fields[name] {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", name, msg)
		}
	}
}
