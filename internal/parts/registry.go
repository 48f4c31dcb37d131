package parts

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/marcuswu/spring-rail-vise/internal/config"
	"github.com/marcuswu/spring-rail-vise/internal/kernel"
)

// ErrUnknownPart is returned when a requested part has no builder.
var ErrUnknownPart = errors.New("unknown part")

// Builder produces one named part.
type Builder func(k kernel.Kernel, cfg config.Config) (kernel.Solid, error)

func jawBuilder(v JawVariant) Builder {
	return func(k kernel.Kernel, cfg config.Config) (kernel.Solid, error) {
		return Jaw(k, cfg, v)
	}
}

// Catalog maps part names to their builders.
var Catalog = map[string]Builder{
	"rail":          RailBody,
	"rail_plate":    RailPlate,
	"entire_unit":   EntireUnit,
	"jaw_m3":        jawBuilder(JawM3),
	"jaw_m8":        jawBuilder(JawM8),
	"jaw_backstop":  jawBuilder(JawBackstop),
	"jaw_no_hole":   jawBuilder(JawNoHole),
	"demo_all_jaws": DemoJaws,
}

// DefaultParts is the selection built when none is given.
var DefaultParts = []string{"rail", "rail_plate", "entire_unit"}

// CatalogNames returns every catalog entry, sorted.
func CatalogNames() []string {
	names := make([]string, 0, len(Catalog))
	for n := range Catalog {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParseSelection turns a comma separated list into part names. "all"
// selects the whole catalog and an empty list selects DefaultParts.
func ParseSelection(list string) ([]string, error) {
	list = strings.TrimSpace(list)
	switch list {
	case "":
		return append([]string(nil), DefaultParts...), nil
	case "all":
		return CatalogNames(), nil
	}
	var names []string
	seen := map[string]bool{}
	for _, n := range strings.Split(list, ",") {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		if _, ok := Catalog[n]; !ok {
			return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknownPart, n, strings.Join(CatalogNames(), ", "))
		}
		seen[n] = true
		names = append(names, n)
	}
	return names, nil
}

// Entry is one named solid in a Registry.
type Entry struct {
	Name  string
	Solid kernel.Solid
}

// Registry is the ordered set of parts produced by one run.
type Registry struct {
	entries []Entry
	index   map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: map[string]int{}}
}

// Add appends a part. Names must be unique and usable as file names.
func (r *Registry) Add(name string, s kernel.Solid) error {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid part name %q", name)
	}
	if s == nil {
		return fmt.Errorf("part %q: nil solid", name)
	}
	if _, ok := r.index[name]; ok {
		return fmt.Errorf("part %q already registered", name)
	}
	r.index[name] = len(r.entries)
	r.entries = append(r.entries, Entry{Name: name, Solid: s})
	return nil
}

// Get returns the solid registered under name.
func (r *Registry) Get(name string) (kernel.Solid, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.entries[i].Solid, true
}

// Entries returns the parts in the order they were added.
func (r *Registry) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// Len returns the number of parts.
func (r *Registry) Len() int { return len(r.entries) }

// Build runs the builders for names, in order, into a new registry.
func Build(k kernel.Kernel, cfg config.Config, names []string) (*Registry, error) {
	reg := NewRegistry()
	for _, name := range names {
		build, ok := Catalog[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPart, name)
		}
		s, err := build(k, cfg)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", name, err)
		}
		if err := reg.Add(name, s); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
