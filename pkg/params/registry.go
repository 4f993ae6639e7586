package params

import (
	"fmt"
	"sync"

	"github.com/matst80/slask-list/pkg/common/jsoncompat"
	"github.com/matst80/slask-list/pkg/types"
)

// NamesInput is the hidden input carrying the JSON encoded parameter names.
const NamesInput = "list__query-parameter-names"

var ErrNamesNotSet = &types.ConfigurationError{Msg: "the query parameter names are not set"}

var requiredKeys = []string{"page", "sort", "limit"}

// ConfigSource reads values of embedded hidden inputs.
type ConfigSource interface {
	InputValue(name string) (string, bool)
}

// Registry holds the reserved query parameter names. The names can be set once,
// either explicitly or lazily from the embedded configuration input.
type Registry struct {
	mu     sync.Mutex
	names  *types.QueryParameterNames
	source ConfigSource
}

func NewRegistry(source ConfigSource) *Registry {
	return &Registry{source: source}
}

// NewRegistryWithNames returns a registry that already holds names.
func NewRegistryWithNames(names types.QueryParameterNames) (*Registry, error) {
	r := &Registry{}
	if err := r.Set(names); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) Set(names types.QueryParameterNames) error {
	return r.SetMap(map[string]string{
		"page":  names.Page,
		"sort":  names.Sort,
		"limit": names.Limit,
	})
}

func (r *Registry) SetNames(page, sort, limit string) error {
	return r.Set(types.QueryParameterNames{Page: page, Sort: sort, Limit: limit})
}

// SetMap registers names from a mapping keyed by role.
func (r *Registry) SetMap(names map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.setLocked(names)
}

func (r *Registry) setLocked(names map[string]string) error {
	if r.names != nil {
		return &types.ConfigurationError{Msg: "the query parameter names are already set"}
	}
	for _, key := range requiredKeys {
		if v, ok := names[key]; !ok || v == "" {
			return types.NewValidationError("missing %q property", key)
		}
	}
	r.names = &types.QueryParameterNames{
		Page:  names["page"],
		Sort:  names["sort"],
		Limit: names["limit"],
	}
	return nil
}

func (r *Registry) IsSet() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.names != nil
}

// Get returns the registered names, reading the embedded configuration on first use.
func (r *Registry) Get() (types.QueryParameterNames, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.names != nil {
		return *r.names, nil
	}
	if err := r.loadLocked(); err != nil {
		return types.QueryParameterNames{}, err
	}
	return *r.names, nil
}

// Load reads the embedded configuration eagerly. A missing input is not an error here.
func (r *Registry) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.names != nil {
		return nil
	}
	if r.source == nil {
		return nil
	}
	if v, ok := r.source.InputValue(NamesInput); !ok || v == "" {
		return nil
	}
	return r.loadLocked()
}

func (r *Registry) loadLocked() error {
	selector := fmt.Sprintf(`<input name="%s">`, NamesInput)
	if r.source == nil {
		return &types.ValidationError{Msg: "no configuration source", Err: ErrNamesNotSet}
	}
	raw, ok := r.source.InputValue(NamesInput)
	if !ok || raw == "" {
		return &types.ValidationError{Msg: fmt.Sprintf("missing %s element", selector), Err: ErrNamesNotSet}
	}
	obj, err := jsoncompat.UnmarshalObject([]byte(raw))
	if err != nil {
		return &types.ValidationError{
			Msg: fmt.Sprintf("invalid value of the %s element, expected JSON object but got %q", selector, raw),
			Err: err,
		}
	}
	names := make(map[string]string, len(obj))
	for k, v := range obj {
		s, ok := v.(string)
		if !ok {
			return types.NewValidationError("invalid value of the %s element, property %q is not a string", selector, k)
		}
		names[k] = s
	}
	if err := r.setLocked(names); err != nil {
		return &types.ValidationError{Msg: fmt.Sprintf("invalid value of the %s element", selector), Err: err}
	}
	return nil
}
