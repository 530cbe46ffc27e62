package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
business_name: Sparkle Pros
phone: "555-0100"
categories:
  - Cleaning
  - Pressure Washing
services:
  - slug: deep-clean
    name: Deep Clean
    category: Cleaning
    description: Top to bottom.
`

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	r, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "Sparkle Pros", r.BusinessName())
	assert.Equal(t, []string{"Cleaning", "Pressure Washing"}, r.Categories())
	require.Len(t, r.Services(), 1)
	assert.Equal(t, "deep-clean", r.Services()[0].Slug)
}

func TestLoadFromFileRequiresCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte("business_name: X\n"), 0o644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestCategoryLookup(t *testing.T) {
	r := NewRegistry(Info{Categories: []string{"Cleaning", "Pressure Washing"}})

	got, ok := r.Category("  pressure washing ")
	assert.True(t, ok)
	assert.Equal(t, "Pressure Washing", got)

	_, ok = r.Category("Plumbing")
	assert.False(t, ok)
}

func TestDefaultHasCategories(t *testing.T) {
	_, ok := Default().Category("cleaning")
	assert.True(t, ok)
}

func TestRegistryIsolatedFromCallers(t *testing.T) {
	categories := []string{"Cleaning", "Other"}
	services := []Service{{Slug: "deep-clean", Name: "Deep Clean", Category: "Cleaning"}}
	r := NewRegistry(Info{BusinessName: "Sparkle Pros", Categories: categories, Services: services})

	categories[0] = "Changed"
	services[0].Name = "Changed"
	info := r.Info()
	info.Categories[1] = "Changed"
	info.Services[0].Slug = "changed"

	assert.Equal(t, []string{"Cleaning", "Other"}, r.Categories())
	assert.Equal(t, "Deep Clean", r.Services()[0].Name)
	assert.Equal(t, "deep-clean", r.Services()[0].Slug)
	c, ok := r.Category("cleaning")
	assert.True(t, ok)
	assert.Equal(t, "Cleaning", c)
}
