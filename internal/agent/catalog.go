package agent

import "strings"

// UnknownAction is the identifier the model is told to return when no action fits.
const UnknownAction = "unknown_action"

// Action describes one candidate the model may select.
type Action struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Parameters  map[string]string `json:"parameters,omitempty"`
}

// Catalog is the ordered list of candidates offered for one resolution call.
type Catalog []Action

// CatalogFromNames builds a catalog of undescribed actions.
func CatalogFromNames(names ...string) Catalog {
	out := make(Catalog, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, Action{Name: name})
	}
	return out
}

// Names returns the action identifiers in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for _, action := range c {
		names = append(names, action.Name)
	}
	return names
}

// Has reports whether name is one of the catalog's identifiers.
func (c Catalog) Has(name string) bool {
	for _, action := range c {
		if action.Name == name {
			return true
		}
	}
	return false
}

func (c Catalog) valid() Catalog {
	out := make(Catalog, 0, len(c))
	for _, action := range c {
		action.Name = strings.TrimSpace(action.Name)
		if action.Name == "" {
			continue
		}
		action.Description = strings.TrimSpace(action.Description)
		out = append(out, action)
	}
	return out
}
