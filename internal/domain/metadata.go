package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Metadata is the open key-value extension bag carried on comptes and
// clients. It is stored as JSONB and updated with merge-not-replace
// semantics so keys written by other flows survive lifecycle transitions.
type Metadata map[string]any

// Well-known metadata keys written by the lifecycle engine.
const (
	MetaMotifBlocage         = "motifBlocage"
	MetaDateDebutBlocage     = "dateDebutBlocage"
	MetaDateFinBlocage       = "dateFinBlocage"
	MetaDureeBlocage         = "dureeBlocage"
	MetaUniteDuree           = "uniteDuree"
	MetaDateDeblocage        = "dateDeblocage"
	MetaDateFermeture        = "dateFermeture"
	MetaDerniereModification = "derniereModification"
	MetaVersion              = "version"
)

func (m Metadata) Clone() Metadata {
	if m == nil {
		return Metadata{}
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge returns a copy of m with every key of other applied on top,
// last-write-wins per key. Neither receiver nor argument is mutated.
func (m Metadata) Merge(other Metadata) Metadata {
	out := m.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Without returns a copy of m with the given keys removed.
func (m Metadata) Without(keys ...string) Metadata {
	out := m.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Version reads the "version" key, tolerating the float64 that JSON
// decoding produces for numbers. Missing or malformed values read as 0.
func (m Metadata) Version() int {
	switch v := m[MetaVersion].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return 0
}

// String reads a string-valued key; absent or non-string values read as "".
func (m Metadata) String(key string) string {
	s, _ := m[key].(string)
	return s
}

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("Metadata.Value: %w", err)
	}
	return b, nil
}

func (m *Metadata) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("Metadata.Scan: unsupported type %T", src)
	}
	if err := json.Unmarshal(b, m); err != nil {
		return fmt.Errorf("Metadata.Scan: %w", err)
	}
	return nil
}
