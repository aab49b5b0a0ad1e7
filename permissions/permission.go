package permissions

import (
	_ "embed"
	"encoding/json"
	"slices"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

// Permission lists the roles allowed on one route. An empty list admits any
// authenticated caller; Skip marks a public route.
type Permission struct {
	Permissions []string `json:"permissions"`
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Skip        bool     `json:"skip"`
}

// Allows reports whether role may call the route.
func (p Permission) Allows(role string) bool {
	return len(p.Permissions) == 0 || slices.Contains(p.Permissions, role)
}

type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Skip      bool         `json:"skip"`

	routes map[string]int
}

func routeKey(method, path string) string {
	return method + " " + path
}

func (r *PermissionData) index() {
	r.routes = make(map[string]int, len(r.Endpoints))

	for i, endpoint := range r.Endpoints {
		key := routeKey(endpoint.Method, endpoint.Path)
		if _, dup := r.routes[key]; dup {
			log.Warn().Str("route", key).Msg("duplicate route permission, keeping the first")

			continue
		}

		r.routes[key] = i
	}
}

// FindPermissions returns the entry for a chi route pattern, or a zero Permission.
func (r *PermissionData) FindPermissions(path, method string) Permission {
	if r.routes == nil {
		r.index()
	}

	i, ok := r.routes[routeKey(method, path)]
	if !ok {
		return Permission{}
	}

	return r.Endpoints[i]
}

// Get decodes the embedded route table. It returns nil when the table is malformed,
// which makes RBAC deny every protected route.
func Get() *PermissionData {
	var data PermissionData

	if err := json.Unmarshal(permissionsData, &data); err != nil {
		log.Error().Err(err).Msg("failed to decode embedded permissions")

		return nil
	}

	data.index()

	log.Info().Int("endpoints", len(data.Endpoints)).Bool("skip", data.Skip).Msg("Loaded route permissions")

	return &data
}
