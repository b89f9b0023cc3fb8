package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"recipebook/domain/filter"
	"recipebook/infrastructure/config"
	"recipebook/infrastructure/di"
	"recipebook/pkg/client"
)

const stewYAML = `name: Lentil Stew
source:
  type: offline
  title: The Soup Book
  page: 42
diet: vegan
prepTime: 30to60
seasons:
  fall: true
  winter: true
tags: [soup, lentils]
notes: |
  ## Method

  Simmer slowly.
`

func startServer(t *testing.T) string {
	t.Helper()

	cfg := &config.Config{
		Environment:       "test",
		MaxBodyBytes:      1 << 20,
		StorageDriver:     config.StorageSQLite,
		DatabaseDSN:       ":memory:",
		DatabaseMaxConns:  1,
		ValidateResponses: true,
		LogLevel:          "error",
	}
	container, cleanup, err := di.InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	srv := httptest.NewServer(container.Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRecipectl_CreateListGetDelete(t *testing.T) {
	server := startServer(t)
	file := writeFile(t, "stew.yaml", stewYAML)

	out, err := run(t, "--server", server, "create", "-f", file, "-o", "json")
	require.NoError(t, err, out)
	var created client.Recipe
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "Lentil Stew", created.Name)
	assert.Equal(t, []string{"soup", "lentils"}, created.Tags)

	out, err = run(t, "--server", server, "list", "--diet", "Vegetarian", "--season", "winter")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Lentil Stew")
	assert.Contains(t, out, "page 1 of 1, 1 recipes")

	out, err = run(t, "--server", server, "list", "--tag", "pasta")
	require.NoError(t, err, out)
	assert.Contains(t, out, "No recipes match.")

	out, err = run(t, "--server", server, "get", created.ID)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Lentil Stew")
	assert.Contains(t, out, "The Soup Book, p. 42")
	assert.Contains(t, out, "Simmer slowly.")

	out, err = run(t, "--server", server, "tags", "-o", "yaml")
	require.NoError(t, err, out)
	assert.Contains(t, out, "- lentils")

	out, err = run(t, "--server", server, "delete", created.ID)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Deleted "+created.ID)

	_, err = run(t, "--server", server, "get", created.ID)
	require.Error(t, err)
	assert.True(t, client.IsNotFound(err))
}

func TestRecipectl_ReplaceFromJSON(t *testing.T) {
	server := startServer(t)

	out, err := run(t, "--server", server, "create", "-f", writeFile(t, "stew.yml", stewYAML), "-o", "json")
	require.NoError(t, err, out)
	var created client.Recipe
	require.NoError(t, json.Unmarshal([]byte(out), &created))

	replacement := `{"name":"Quick Stew","source":{"type":"online","url":"https://example.com/stew"},"diet":"omnivore","prepTime":"under15"}`
	out, err = run(t, "--server", server, "replace", created.ID, "-f", writeFile(t, "stew.json", replacement))
	require.NoError(t, err, out)
	assert.Contains(t, out, "Replaced Quick Stew")
	assert.Contains(t, out, "version 2")
}

func TestRecipectl_RejectsBadInput(t *testing.T) {
	_, err := run(t, "list", "--diet", "carnivore")
	assert.Error(t, err)

	_, err = run(t, "list", "-o", "xml")
	assert.Error(t, err)

	_, err = run(t, "create")
	assert.Error(t, err)

	_, err = run(t, "create", "-f", writeFile(t, "bad.yaml", "name: Toast\ncolour: brown\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid recipe YAML")
}

func TestRecipectl_Link(t *testing.T) {
	out, err := run(t, "--server", "http://recipes.test", "link",
		"--name", "soup", "--diet", "vegan", "--tag", "quick", "--tag", "cheap", "--season", "winter", "--sort", "-created")
	require.NoError(t, err)
	link := strings.TrimSpace(out)
	assert.Equal(t,
		"http://recipes.test/api/recipes?diet=vegan&name=soup&seasons=winter&sort=-created&tags=quick&tags=cheap",
		link)

	out, err = run(t, "link", "--parse", link)
	require.NoError(t, err)

	var parsed filter.Filter
	require.NoError(t, yaml.Unmarshal([]byte(out), &parsed))
	expected, err := filter.FromURL(link)
	require.NoError(t, err)
	assert.Equal(t, expected, parsed)
	assert.Equal(t, []string{"quick", "cheap"}, parsed.Tags)

	out, err = run(t, "link", "--base", "http://ui.test/browse?view=grid", "--tag", "soup")
	require.NoError(t, err)
	assert.Equal(t, "http://ui.test/browse?tags=soup&view=grid", strings.TrimSpace(out))
}
