package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"recipebook/pkg/client"
)

// Output formats
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

const wordWrap = 80

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle  = lipgloss.NewStyle().Faint(true).Width(10)
)

func validateOutput(format string) error {
	switch format {
	case outputTable, outputJSON, outputYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q: must be table, json or yaml", format)
	}
}

// writeData prints v as JSON or YAML. It reports false for table output so
// the caller can render its own view.
func writeData(w io.Writer, format string, v interface{}) (bool, error) {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}

func renderRecipeTable(w io.Writer, recipes []client.Recipe) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "DIET", "PREP TIME", "SEASONS", "TAGS", "ID").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, r := range recipes {
		t.Row(r.Name, r.Diet, r.PrepTime, r.Seasons.String(), strings.Join(r.Tags, ", "), r.ID)
	}

	fmt.Fprintln(w, t.Render())
}

func renderRecipe(w io.Writer, r *client.Recipe) error {
	fmt.Fprintln(w, titleStyle.Render(r.Name))
	fmt.Fprintln(w)

	field := func(label, value string) {
		if value != "" {
			fmt.Fprintln(w, labelStyle.Render(label)+value)
		}
	}
	field("id", r.ID)
	field("diet", r.Diet)
	field("prep time", r.PrepTime)
	field("seasons", r.Seasons.String())
	field("tags", strings.Join(r.Tags, ", "))
	switch r.Source.Type {
	case "online":
		field("source", r.Source.URL)
	case "offline":
		field("source", fmt.Sprintf("%s, p. %d", r.Source.Title, r.Source.Page))
	}
	field("version", fmt.Sprintf("%d", r.Version))

	if strings.TrimSpace(r.Notes) == "" {
		return nil
	}

	notes, err := renderMarkdown(r.Notes)
	if err != nil {
		return err
	}
	fmt.Fprint(w, notes)
	return nil
}

func renderMarkdown(md string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render notes: %w", err)
	}
	return out, nil
}
