package registry

import (
	"github.com/KOMKZ/go-yogan-servicemgr/lifecycle"
)

// Catalog maps the service types a configuration file may name onto
// instance providers
type Catalog struct {
	providers map[string]lifecycle.InstanceProvider
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{providers: make(map[string]lifecycle.InstanceProvider)}
}

// Register adds a type. Types cannot be replaced.
func (c *Catalog) Register(typeName string, provider lifecycle.InstanceProvider) error {
	if typeName == "" || provider == nil {
		return ErrInvalidDefinition.WithMsg("catalog type name and provider are required")
	}
	if _, exists := c.providers[typeName]; exists {
		return ErrInvalidDefinition.
			WithMsgf("service type %q is already in the catalog", typeName).
			WithData("type", typeName)
	}
	c.providers[typeName] = provider
	return nil
}

// MustRegister panics when Register fails
func (c *Catalog) MustRegister(typeName string, provider lifecycle.InstanceProvider) *Catalog {
	if err := c.Register(typeName, provider); err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the provider for typeName or ErrUnknownServiceType
func (c *Catalog) Lookup(typeName string) (lifecycle.InstanceProvider, error) {
	p, ok := c.providers[typeName]
	if !ok {
		return nil, ErrUnknownServiceType.
			WithMsgf("service type %q is not in the catalog", typeName).
			WithData("type", typeName)
	}
	return p, nil
}

// Names lists the catalog types, sorted
func (c *Catalog) Names() []string {
	return sortedKeys(c.providers)
}
