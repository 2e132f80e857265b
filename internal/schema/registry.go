package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"financeflow/internal/models"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrMigrationRequired is returned when persisted data carries a schema version
// the registry has no migration path for.
var ErrMigrationRequired = errors.New("schema migration required")

// Migration rewrites a document persisted at version N into version N+1.
type Migration func(doc map[string]any) (map[string]any, error)

type Definition struct {
	Collection models.Collection
	Version    int
	PrimaryKey string
	Required   []string
	// Indexes lists document fields backed by an expression index.
	Indexes    []string
	Properties map[string]any

	compiled *jsonschema.Schema
}

// Document returns the JSON Schema for the definition.
func (d *Definition) Document() map[string]any {
	return map[string]any{
		"$schema":    "https://json-schema.org/draft/2020-12/schema",
		"type":       "object",
		"properties": d.Properties,
		"required":   d.Required,
	}
}

type Registry struct {
	defs       map[models.Collection]*Definition
	migrations map[models.Collection]map[int]Migration
}

// NewRegistry compiles every definition. A definition that does not compile is a programming error
// and is reported immediately.
func NewRegistry(defs ...*Definition) (*Registry, error) {
	r := &Registry{
		defs:       make(map[models.Collection]*Definition, len(defs)),
		migrations: make(map[models.Collection]map[int]Migration),
	}
	for _, d := range defs {
		b, err := json.Marshal(d.Document())
		if err != nil {
			return nil, fmt.Errorf("marshal schema %s: %w", d.Collection, err)
		}
		url := string(d.Collection) + ".json"
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true
		if err := compiler.AddResource(url, bytes.NewReader(b)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", d.Collection, err)
		}
		compiled, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", d.Collection, err)
		}
		d.compiled = compiled
		r.defs[d.Collection] = d
	}
	return r, nil
}

// Default returns the registry of the four finance collections at their current versions.
func Default() *Registry {
	r, err := NewRegistry(profileSchema(), walletSchema(), categorySchema(), transactionSchema())
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Definition(c models.Collection) (*Definition, bool) {
	d, ok := r.defs[c]
	return d, ok
}

// Definitions returns the definitions in models.Collections order.
func (r *Registry) Definitions() []*Definition {
	out := make([]*Definition, 0, len(r.defs))
	for _, c := range models.Collections {
		if d, ok := r.defs[c]; ok {
			out = append(out, d)
		}
	}
	return out
}

// RegisterMigration installs the step from version `from` to `from+1`.
func (r *Registry) RegisterMigration(c models.Collection, from int, m Migration) {
	if r.migrations[c] == nil {
		r.migrations[c] = make(map[int]Migration)
	}
	r.migrations[c][from] = m
}

func (r *Registry) Migration(c models.Collection, from int) (Migration, bool) {
	m, ok := r.migrations[c][from]
	return m, ok
}

// Normalize rewrites every date-time property of doc into the canonical UTC millisecond form
// so that string order matches time order. Values that do not parse are left for Validate to reject.
func (r *Registry) Normalize(c models.Collection, doc map[string]any) {
	d, ok := r.defs[c]
	if !ok {
		return
	}
	for name, prop := range d.Properties {
		p, ok := prop.(map[string]any)
		if !ok || p["format"] != "date-time" {
			continue
		}
		v, ok := doc[name].(string)
		if !ok {
			continue
		}
		if ts, err := models.ParseTimestamp(v); err == nil {
			doc[name] = ts.String()
		}
	}
}

// Validate checks doc against the collection's JSON Schema and then against the typed record rules.
func (r *Registry) Validate(c models.Collection, doc map[string]any) error {
	d, ok := r.defs[c]
	if !ok {
		return fmt.Errorf("unknown collection %q", c)
	}
	if err := d.compiled.Validate(doc); err != nil {
		return fmt.Errorf("%s does not match schema: %w", c, err)
	}
	rec, err := models.NewRecord(c)
	if err != nil {
		return err
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s document: %w", c, err)
	}
	if err := json.Unmarshal(b, rec); err != nil {
		return fmt.Errorf("decode %s document: %w", c, err)
	}
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%s: %w", c, err)
	}
	return nil
}
