// Package catalog holds the static list of word lists a session can load.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vytor/wordflash/internal/models"
	"gopkg.in/yaml.v3"
)

var (
	ErrEmpty     = errors.New("catalog has no datasets")
	ErrNoDefault = errors.New("catalog has no default dataset")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Catalog maps short identifiers to loadable word lists.
type Catalog struct {
	Datasets []models.Dataset `yaml:"datasets" validate:"required,min=1,dive"`
}

// Default is the built-in catalog used when no catalog file is configured.
func Default() Catalog {
	return Catalog{Datasets: []models.Dataset{
		{ID: "all", Name: "All words", Source: "english_words.json", Default: true},
		{ID: "unit1", Name: "Unit 1", Source: "unit1.json"},
		{ID: "unit2", Name: "Unit 2", Source: "unit2.json"},
	}}
}

// Load reads and validates a YAML catalog file of the form
//
//	datasets:
//	  - id: all
//	    name: All words
//	    source: english_words.json
//	    default: true
func Load(path string) (Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates a YAML catalog document.
func Parse(b []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Validate checks field constraints, id uniqueness and that a default exists.
func (c Catalog) Validate() error {
	if len(c.Datasets) == 0 {
		return ErrEmpty
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid catalog: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid catalog: %w", err)
	}

	seen := make(map[string]bool, len(c.Datasets))
	hasDefault := false
	for _, d := range c.Datasets {
		if seen[d.ID] {
			return fmt.Errorf("invalid catalog: duplicate dataset id %q", d.ID)
		}
		seen[d.ID] = true
		hasDefault = hasDefault || d.Default
	}
	if !hasDefault {
		return ErrNoDefault
	}
	return nil
}

// Find returns the dataset with the given id.
func (c Catalog) Find(id string) (models.Dataset, bool) {
	for _, d := range c.Datasets {
		if d.ID == id {
			return d, true
		}
	}
	return models.Dataset{}, false
}

// DefaultDataset returns the first dataset marked default, or the first entry.
func (c Catalog) DefaultDataset() models.Dataset {
	for _, d := range c.Datasets {
		if d.Default {
			return d
		}
	}
	if len(c.Datasets) > 0 {
		return c.Datasets[0]
	}
	return models.Dataset{}
}

// Resolve returns the dataset for id, falling back to the default dataset
// when id is empty or unknown.
func (c Catalog) Resolve(id string) models.Dataset {
	if d, ok := c.Find(id); ok {
		return d
	}
	return c.DefaultDataset()
}
