package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charliek/devcli/internal/constants"
	"github.com/charliek/devcli/internal/domain"
	"gopkg.in/yaml.v3"
)

// Workspace is the loaded dev-cli.yaml: every configured service in
// declaration order plus the named target groups.
type Workspace struct {
	Root                 string
	Path                 string // empty when no config file was found
	ServiceOrder         []string
	Services             map[string]domain.ServiceDefinition
	GroupOrder           []string
	Groups               map[string][]string
	ErrorKeywords        []string
	StopContainersOnExit bool
}

// ServiceConfig is a service entry as written in YAML. A bare string is
// accepted as shorthand for a command line run from the workspace root.
type ServiceConfig struct {
	Label         string            `yaml:"label"`
	Category      string            `yaml:"category"`
	Cwd           string            `yaml:"cwd"`
	Command       string            `yaml:"command"`
	Args          []string          `yaml:"args"`
	Env           map[string]string `yaml:"env"`
	EnvFile       string            `yaml:"env_file"`
	Log           *bool             `yaml:"log"`
	RetentionDays *int              `yaml:"retention_days"`
	Container     string            `yaml:"container"`
}

// rawWorkspace keeps the mapping nodes so declaration order survives parsing
type rawWorkspace struct {
	EnvFile              string    `yaml:"env_file"`
	Services             yaml.Node `yaml:"services"`
	Groups               yaml.Node `yaml:"groups"`
	ErrorKeywords        []string  `yaml:"error_keywords"`
	StopContainersOnExit bool      `yaml:"stop_containers_on_exit"`
}

// Empty returns a workspace with no services rooted at dir
func Empty(dir string) *Workspace {
	return &Workspace{
		Root:          dir,
		Services:      make(map[string]domain.ServiceDefinition),
		Groups:        map[string][]string{constants.TargetAll: {}},
		GroupOrder:    []string{constants.TargetAll},
		ErrorKeywords: append([]string(nil), constants.DefaultErrorKeywords...),
	}
}

// LoadWorkspace discovers and loads the workspace configuration. The explicit
// path wins, then DEV_CLI_CONFIG, then an upward search from cwd. Finding no
// file is not an error and yields an empty workspace rooted at cwd.
func LoadWorkspace(cwd, explicit string) (*Workspace, error) {
	path, err := Discover(cwd, explicit)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Empty(cwd), nil
	}
	return Load(path)
}

// Load reads and parses a configuration file
func Load(path string) (*Workspace, error) {
	// First check if file exists
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("checking config file: %w", err)
	}

	// Check file permissions for security
	if err := CheckFilePermissions(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}

	ws, err := Parse(data, filepath.Dir(abs))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ws.Path = abs
	return ws, nil
}

// Parse parses configuration from YAML bytes. Relative service directories
// and env files resolve against root.
func Parse(data []byte, root string) (*Workspace, error) {
	var raw rawWorkspace
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}

	ws := Empty(root)
	if len(raw.ErrorKeywords) > 0 {
		ws.ErrorKeywords = raw.ErrorKeywords
	}
	ws.StopContainersOnExit = raw.StopContainersOnExit

	entries, err := mappingEntries(&raw.Services, "services")
	if err != nil {
		return nil, err
	}

	var loadErrs []string
	for _, e := range entries {
		svc, err := parseServiceConfig(e.value)
		if err != nil {
			return nil, fmt.Errorf("service %q: %w", e.key, err)
		}
		def, err := toDefinition(e.key, svc, raw.EnvFile, root)
		if err != nil {
			loadErrs = append(loadErrs, fmt.Sprintf("services.%s.env_file: %v", e.key, err))
		}
		ws.ServiceOrder = append(ws.ServiceOrder, e.key)
		ws.Services[e.key] = def
	}

	groups, err := mappingEntries(&raw.Groups, "groups")
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		var members []string
		if err := g.value.Decode(&members); err != nil {
			return nil, fmt.Errorf("group %q: must be a list of service ids: %w", g.key, err)
		}
		if _, ok := ws.Groups[g.key]; !ok {
			ws.GroupOrder = append(ws.GroupOrder, g.key)
		}
		ws.Groups[g.key] = members
	}
	if _, explicitAll := findEntry(groups, constants.TargetAll); !explicitAll {
		ws.Groups[constants.TargetAll] = uniqueIDs(ws.ServiceOrder)
	}

	if err := Validate(ws, loadErrs...); err != nil {
		return nil, err
	}

	return ws, nil
}

type mappingEntry struct {
	key   string
	value *yaml.Node
}

// mappingEntries flattens a YAML mapping node into ordered key/value pairs.
// Duplicate keys are kept so validation can report them.
func mappingEntries(node *yaml.Node, field string) ([]mappingEntry, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: must be a mapping", field)
	}
	entries := make([]mappingEntry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		entries = append(entries, mappingEntry{key: node.Content[i].Value, value: node.Content[i+1]})
	}
	return entries, nil
}

func findEntry(entries []mappingEntry, key string) (mappingEntry, bool) {
	for _, e := range entries {
		if e.key == key {
			return e, true
		}
	}
	return mappingEntry{}, false
}

// parseServiceConfig handles both simple and expanded service definitions
func parseServiceConfig(node *yaml.Node) (ServiceConfig, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		// Simple form: web: npm run dev
		fields := strings.Fields(node.Value)
		if len(fields) == 0 {
			return ServiceConfig{}, nil
		}
		return ServiceConfig{Command: fields[0], Args: fields[1:]}, nil
	case yaml.MappingNode:
		var svc ServiceConfig
		if err := node.Decode(&svc); err != nil {
			return ServiceConfig{}, fmt.Errorf("decoding service config: %w", err)
		}
		return svc, nil
	default:
		return ServiceConfig{}, fmt.Errorf("invalid service configuration at line %d", node.Line)
	}
}

// toDefinition applies defaults and resolves paths. The definition is
// returned even when env loading fails so validation can report everything.
func toDefinition(id string, svc ServiceConfig, globalEnvFile, root string) (domain.ServiceDefinition, error) {
	def := domain.ServiceDefinition{
		ID:            id,
		Label:         svc.Label,
		Category:      svc.Category,
		Dir:           resolvePath(svc.Cwd, root),
		Command:       svc.Command,
		Args:          svc.Args,
		LogEnabled:    true,
		RetentionDays: constants.DefaultRetentionDays,
		Container:     svc.Container,
	}
	if svc.Cwd == "" {
		def.Dir = root
	}
	if svc.Log != nil {
		def.LogEnabled = *svc.Log
	}
	if svc.RetentionDays != nil {
		def.RetentionDays = *svc.RetentionDays
	}

	env, err := LoadProcessEnv(globalEnvFile, svc.EnvFile, svc.Env, root)
	if err != nil {
		def.Env = svc.Env
		return def, err
	}
	def.Env = env
	return def, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// Service returns the definition for id
func (w *Workspace) Service(id string) (domain.ServiceDefinition, bool) {
	def, ok := w.Services[id]
	return def, ok
}

// Definitions returns every service definition in declaration order
func (w *Workspace) Definitions() []domain.ServiceDefinition {
	defs := make([]domain.ServiceDefinition, 0, len(w.ServiceOrder))
	for _, id := range w.ServiceOrder {
		defs = append(defs, w.Services[id])
	}
	return defs
}

// GroupNames returns every group name with "all" first
func (w *Workspace) GroupNames() []string {
	return append([]string(nil), w.GroupOrder...)
}

// Resolve expands a target (service id or group name) into service ids.
// Service ids win over group names; validation forbids collisions anyway.
func (w *Workspace) Resolve(target string) ([]string, bool) {
	if _, ok := w.Services[target]; ok {
		return []string{target}, true
	}
	if members, ok := w.Groups[target]; ok {
		return append([]string(nil), members...), true
	}
	return nil, false
}

// IsGroup reports whether target names a group
func (w *Workspace) IsGroup(target string) bool {
	_, ok := w.Groups[target]
	return ok
}
