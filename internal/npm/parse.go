package npm

import (
	"encoding/json"
	"fmt"
)

// ParseError indicates a packument body that could not be decoded.
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("npm: parsing packument for %s: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParsePackument decodes a registry response body into PackageMetadata.
// The name argument is only used for error context; the packument's own
// name field wins when present.
func ParsePackument(name string, body []byte) (*PackageMetadata, error) {
	var meta PackageMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}
	if meta.Name == "" {
		meta.Name = name
	}
	if meta.Name == "" {
		return nil, &ParseError{Name: name, Err: fmt.Errorf("packument has no name")}
	}
	if meta.Versions == nil {
		meta.Versions = map[string]VersionInfo{}
	}
	// Registries sometimes omit the version field inside each entry;
	// backfill it from the map key so consumers can rely on it.
	for num, vi := range meta.Versions {
		if vi.Version == "" {
			vi.Version = num
			meta.Versions[num] = vi
		}
	}
	return &meta, nil
}
