package rules

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
)

var (
	// ErrCategoryNotFound means the reference table for a category is
	// missing. This is a configuration error the operator has to fix, not a
	// runtime analysis failure.
	ErrCategoryNotFound = errors.New("no reference table for category")

	// ErrVarietyNotFound means a category table exists but holds no row for
	// the requested variety. This is an input error.
	ErrVarietyNotFound = errors.New("no rule for variety in category")
)

// Catalog loads threshold rule tables from a directory holding one CSV per
// category (e.g. cultivos.csv, bovinos.csv). Tables are small and read on
// demand; the catalog itself keeps no mutable state.
type Catalog struct {
	dir string
}

// NewCatalog creates a Catalog rooted at dir.
func NewCatalog(dir string) *Catalog {
	return &Catalog{dir: dir}
}

// Categories lists the categories the catalog can serve, sorted.
func (c *Catalog) Categories() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("read rules dir %s: %w", c.dir, err)
	}

	var categories []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		categories = append(categories, strings.TrimSuffix(e.Name(), ".csv"))
	}
	sort.Strings(categories)
	return categories, nil
}

// Load reads and validates the rule table for a category. The load fails if
// the especie marker of any row cannot be resolved to a kind, or if a variety
// appears twice: the scorer's lookup contract requires exactly one row per
// variety.
func (c *Catalog) Load(category string) ([]Rule, error) {
	path := filepath.Join(c.dir, category+".csv")

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, category)
		}
		return nil, fmt.Errorf("open rule table %s: %w", path, err)
	}
	defer f.Close()

	var rows []Rule
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parse rule table %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("rule table %s has no rows", path)
	}

	seen := make(map[string]struct{}, len(rows))
	for i := range rows {
		kind, err := resolveKind(rows[i].Species)
		if err != nil {
			return nil, fmt.Errorf("rule table %s row %d: %w", path, i+1, err)
		}
		rows[i].Kind = kind

		if _, dup := seen[rows[i].Variety]; dup {
			return nil, fmt.Errorf("rule table %s: duplicate variety %q", path, rows[i].Variety)
		}
		seen[rows[i].Variety] = struct{}{}
	}

	return rows, nil
}

// Varieties returns the variety names of a category in table order.
func (c *Catalog) Varieties(category string) ([]string, error) {
	rows, err := c.Load(category)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Variety)
	}
	return names, nil
}

// Find returns the single rule for (category, variety). Load already rejects
// duplicate varieties, so a hit here is guaranteed unambiguous.
func (c *Catalog) Find(category, variety string) (Rule, error) {
	rows, err := c.Load(category)
	if err != nil {
		return Rule{}, err
	}

	for _, r := range rows {
		if r.Variety == variety {
			return r, nil
		}
	}

	return Rule{}, fmt.Errorf("%w: %q in %q", ErrVarietyNotFound, variety, category)
}
