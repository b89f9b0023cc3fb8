package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"recipebook/domain/filter"
	"recipebook/pkg/client"
)

// filterFlags collects the filter criteria of list and link
type filterFlags struct {
	name     string
	diet     string
	prepTime string
	tags     []string
	seasons  []string
	sort     string
}

func (ff *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ff.name, "name", "", "case-insensitive part of the recipe name")
	cmd.Flags().StringVar(&ff.diet, "diet", "", "most permissive diet: vegan, vegetarian or omnivore")
	cmd.Flags().StringVar(&ff.prepTime, "prep-time", "", "slowest prep time: under15, 15to30, 30to60 or over60")
	cmd.Flags().StringSliceVar(&ff.tags, "tag", nil, "required tag, repeatable")
	cmd.Flags().StringSliceVar(&ff.seasons, "season", nil, "accepted season, repeatable")
	cmd.Flags().StringVar(&ff.sort, "sort", "", "name, prepTime, diet or created; prefix '-' to reverse")
}

// filter runs the flags through the query codec so the CLI accepts exactly
// what the API accepts
func (ff *filterFlags) filter() (filter.Filter, error) {
	values := url.Values{}
	if ff.name != "" {
		values.Set(filter.KeyName, ff.name)
	}
	if ff.diet != "" {
		values.Set(filter.KeyDiet, ff.diet)
	}
	if ff.prepTime != "" {
		values.Set(filter.KeyPrepTime, ff.prepTime)
	}
	if ff.sort != "" {
		values.Set(filter.KeySort, ff.sort)
	}
	values[filter.KeyTags] = ff.tags
	values[filter.KeySeasons] = ff.seasons

	return filter.Decode(values)
}

func newListCmd(opts *options) *cobra.Command {
	var ff filterFlags
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recipes matching a filter",
		Example: `  recipectl list --diet vegetarian --season summer --season fall
  recipectl list --tag soup --tag quick --sort -created -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ff.filter()
			if err != nil {
				return err
			}
			c, err := opts.client()
			if err != nil {
				return err
			}

			list, err := c.ListRecipes(cmd.Context(), f, page, pageSize)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if done, err := writeData(w, opts.output, list); done {
				return err
			}
			if len(list.Items) == 0 {
				fmt.Fprintln(w, "No recipes match.")
				return nil
			}
			renderRecipeTable(w, list.Items)
			p := list.Pagination
			fmt.Fprintf(w, "page %d of %d, %d recipes\n", p.Page, max(p.TotalPages, 1), p.Total)
			return nil
		},
	}

	ff.register(cmd)
	cmd.Flags().IntVar(&page, "page", 0, "page number, starting at 1")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "recipes per page")
	return cmd
}

func newGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one recipe with its notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			recipe, err := c.GetRecipe(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if done, err := writeData(w, opts.output, recipe); done {
				return err
			}
			return renderRecipe(w, recipe)
		},
	}
}

func newCreateCmd(opts *options) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create -f FILE",
		Short: "Create a recipe from a YAML or JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readRecipeInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			c, err := opts.client()
			if err != nil {
				return err
			}
			recipe, err := c.CreateRecipe(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printSaved(cmd, opts, "Created", recipe)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "recipe file, '-' for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newReplaceCmd(opts *options) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "replace ID -f FILE",
		Short: "Replace every field of a recipe from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readRecipeInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			c, err := opts.client()
			if err != nil {
				return err
			}
			recipe, err := c.ReplaceRecipe(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			return printSaved(cmd, opts, "Replaced", recipe)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "recipe file, '-' for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			if err := c.DeleteRecipe(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newTagsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List every tag in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			tags, err := c.ListTags(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if done, err := writeData(w, opts.output, map[string][]string{"tags": tags}); done {
				return err
			}
			for _, tag := range tags {
				fmt.Fprintln(w, tag)
			}
			return nil
		},
	}
}

func newLinkCmd(opts *options) *cobra.Command {
	var ff filterFlags
	var base, parse string

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Build a shareable link for a filter, or read one back",
		Example: `  recipectl link --diet vegan --tag soup
  recipectl link --parse 'http://localhost:8080/api/recipes?tags=soup&diet=vegan'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			if parse != "" {
				f, err := filter.FromURL(parse)
				if err != nil {
					return err
				}
				format := opts.output
				if format == outputTable {
					format = outputYAML
				}
				_, err = writeData(w, format, f)
				return err
			}

			f, err := ff.filter()
			if err != nil {
				return err
			}
			if base == "" {
				base = strings.TrimRight(opts.server, "/") + "/api/recipes"
			}
			u, err := url.Parse(base)
			if err != nil {
				return fmt.Errorf("invalid base URL: %w", err)
			}
			fmt.Fprintln(w, filter.WithQuery(u, f).String())
			return nil
		},
	}

	ff.register(cmd)
	cmd.Flags().StringVar(&base, "base", "", "page the link points at (default <server>/api/recipes)")
	cmd.Flags().StringVar(&parse, "parse", "", "decode the filter held in a link")
	cmd.MarkFlagsMutuallyExclusive("parse", "name")
	cmd.MarkFlagsMutuallyExclusive("parse", "tag")
	return cmd
}

func printSaved(cmd *cobra.Command, opts *options, verb string, recipe *client.Recipe) error {
	w := cmd.OutOrStdout()
	if done, err := writeData(w, opts.output, recipe); done {
		return err
	}
	fmt.Fprintf(w, "%s %s (%s, version %d)\n", verb, recipe.Name, recipe.ID, recipe.Version)
	return nil
}

// readRecipeInput loads a recipe from a file. Files ending in .json are
// read as JSON, everything else as YAML.
func readRecipeInput(stdin io.Reader, path string) (client.RecipeInput, error) {
	var in client.RecipeInput

	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return in, fmt.Errorf("failed to read recipe: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(strings.NewReader(string(raw)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&in); err != nil {
			return in, fmt.Errorf("invalid recipe JSON: %w", err)
		}
		return in, nil
	}

	dec := yaml.NewDecoder(strings.NewReader(string(raw)))
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil {
		return in, fmt.Errorf("invalid recipe YAML: %w", err)
	}
	return in, nil
}
