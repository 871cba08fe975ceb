package permissions

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

// Permission lists the staff roles allowed on one route. Path is the chi route pattern.
type Permission struct {
	Path   string   `json:"path"`
	Method string   `json:"method"`
	Roles  []string `json:"roles"`
	Skip   bool     `json:"skip"`
}

// Allows reports whether role may call the route. A skipped route allows everyone.
func (p Permission) Allows(role string) bool {
	return p.Skip || slices.Contains(p.Roles, role)
}

type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Skip      bool         `json:"skip"`

	index map[string]Permission
}

func key(path, method string) string {
	return strings.ToUpper(method) + " " + path
}

// FindPermissions returns the entry for the route. Unknown routes come back with no
// roles, which denies every caller.
func (r *PermissionData) FindPermissions(path, method string) (Permission, bool) {
	p, ok := r.index[key(path, method)]

	return p, ok
}

// Parse decodes a permission table and rejects duplicate routes.
func Parse(raw []byte) (*PermissionData, error) {
	var data PermissionData

	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode permissions: %w", err)
	}

	data.index = make(map[string]Permission, len(data.Endpoints))

	for _, p := range data.Endpoints {
		k := key(p.Path, p.Method)
		if _, dup := data.index[k]; dup {
			return nil, fmt.Errorf("duplicate permission entry for %s", k)
		}

		data.index[k] = p
	}

	return &data, nil
}

// Get loads the embedded permission table.
func Get() *PermissionData {
	data, err := Parse(permissionsData)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load embedded permissions")
	}

	log.Info().Int("endpoints", len(data.Endpoints)).Msg("Loaded embedded permissions")

	return data
}
