package site

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Service is one entry of the public service listing.
type Service struct {
	Slug        string `yaml:"slug" json:"slug"`
	Name        string `yaml:"name" json:"name"`
	Category    string `yaml:"category" json:"category"`
	Description string `yaml:"description" json:"description"`
	PriceFrom   string `yaml:"price_from" json:"price_from,omitempty"`
}

type Info struct {
	BusinessName string    `yaml:"business_name" json:"business_name"`
	Tagline      string    `yaml:"tagline" json:"tagline,omitempty"`
	Phone        string    `yaml:"phone" json:"phone,omitempty"`
	Email        string    `yaml:"email" json:"email,omitempty"`
	Address      string    `yaml:"address" json:"address,omitempty"`
	URL          string    `yaml:"url" json:"url,omitempty"`
	Categories   []string  `yaml:"categories" json:"categories"`
	Services     []Service `yaml:"services" json:"services"`
}

// Registry holds the site-wide content settings loaded from site.yaml. It is
// read-only after construction.
type Registry struct {
	info       Info
	categories map[string]string
}

var defaultCategories = []string{"Cleaning", "Landscaping", "Pressure Washing", "Other"}

func NewRegistry(info Info) *Registry {
	if len(info.Categories) == 0 {
		info.Categories = defaultCategories
	}
	info.Categories = append([]string(nil), info.Categories...)
	info.Services = append([]Service(nil), info.Services...)
	categories := make(map[string]string, len(info.Categories))
	for _, c := range info.Categories {
		categories[strings.ToLower(strings.TrimSpace(c))] = c
	}
	return &Registry{info: info, categories: categories}
}

// Default is used when no site.yaml is present.
func Default() *Registry {
	return NewRegistry(Info{BusinessName: "Our Business", Categories: defaultCategories})
}

func LoadFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read site config: %w", err)
	}

	var info Info
	if err := yaml.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse site config: %w", err)
	}
	if len(info.Categories) == 0 {
		return nil, fmt.Errorf("site config %s: at least one category is required", path)
	}
	return NewRegistry(info), nil
}

func (r *Registry) Info() Info {
	info := r.info
	info.Categories = r.Categories()
	info.Services = r.Services()
	return info
}

func (r *Registry) BusinessName() string {
	return r.info.BusinessName
}

func (r *Registry) Categories() []string {
	out := make([]string, len(r.info.Categories))
	copy(out, r.info.Categories)
	return out
}

// Category returns the canonical spelling of a service category, matched
// case-insensitively.
func (r *Registry) Category(name string) (string, bool) {
	c, ok := r.categories[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

func (r *Registry) Services() []Service {
	out := make([]Service, len(r.info.Services))
	copy(out, r.info.Services)
	return out
}
