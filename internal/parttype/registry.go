package parttype

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Registry is the read-only lookup the engine resolves part-type and
// prototype identifiers against. Malformed definitions are reported to the
// diagnostic logger and skipped; loading degrades to a best-effort partial
// registry rather than failing outright.
type Registry struct {
	types  map[string]*PartType
	protos map[string]*Prototype
	log    zerolog.Logger
}

// NewRegistry creates an empty registry reporting diagnostics to log.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		types:  make(map[string]*PartType),
		protos: make(map[string]*Prototype),
		log:    log.With().Str("component", "parttype").Logger(),
	}
}

// Register adds a part type, rejecting duplicates and definitions without an
// identifier.
func (r *Registry) Register(pt PartType) error {
	if pt.ID == "" {
		return fmt.Errorf("part type without id")
	}
	if _, dup := r.types[pt.ID]; dup {
		return fmt.Errorf("duplicate part type %q", pt.ID)
	}
	cp := pt
	r.types[pt.ID] = &cp
	return nil
}

// RegisterPrototype adds a vehicle prototype.
func (r *Registry) RegisterPrototype(p Prototype) error {
	if p.ID == "" {
		return fmt.Errorf("prototype without id")
	}
	if _, dup := r.protos[p.ID]; dup {
		return fmt.Errorf("duplicate prototype %q", p.ID)
	}
	cp := p
	r.protos[p.ID] = &cp
	return nil
}

// Find resolves a part-type identifier.
func (r *Registry) Find(id string) (*PartType, bool) {
	pt, ok := r.types[id]
	return pt, ok
}

// Prototype resolves a vehicle prototype identifier.
func (r *Registry) Prototype(id string) (*Prototype, bool) {
	p, ok := r.protos[id]
	return p, ok
}

// LoadDir reads every *.json file under dir. Files named vehicles*.json are
// parsed as prototype arrays, everything else as part-type arrays. Individual
// bad entries are logged and skipped.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading part definitions: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if strings.HasPrefix(e.Name(), "vehicles") {
			err = r.loadPrototypes(data)
		} else {
			err = r.loadTypes(data)
		}
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return nil
}

func (r *Registry) loadTypes(data []byte) error {
	var defs []PartType
	if err := json.Unmarshal(data, &defs); err != nil {
		return err
	}
	for _, pt := range defs {
		if err := r.Register(pt); err != nil {
			r.log.Warn().Err(err).Msg("skipping part type definition")
		}
	}
	return nil
}

func (r *Registry) loadPrototypes(data []byte) error {
	var defs []Prototype
	if err := json.Unmarshal(data, &defs); err != nil {
		return err
	}
	for _, p := range defs {
		if err := r.RegisterPrototype(p); err != nil {
			r.log.Warn().Err(err).Msg("skipping vehicle prototype")
		}
	}
	return nil
}
