package registry

import (
	"github.com/KOMKZ/go-yogan-servicemgr/component"
	"github.com/KOMKZ/go-yogan-servicemgr/lifecycle"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Definition is the registered intent to provide a service under a name.
// It is never mutated after registration; an override replaces it whole.
type Definition struct {
	Name string
	// Provider may be nil for controller-only registrations
	Provider   lifecycle.InstanceProvider
	Controller lifecycle.Controller
	Config     *component.Configuration
	Override   bool
}

// Validate checks the fields a registration cannot do without
func (d *Definition) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Name, validation.Required, validation.Length(1, 128)),
		validation.Field(&d.Controller, validation.Required),
	)
}

func newDefinition(name string, provider lifecycle.InstanceProvider, controller lifecycle.Controller, opts []RegisterOption) (*Definition, error) {
	def := &Definition{
		Name:       name,
		Provider:   provider,
		Controller: controller,
	}
	for _, opt := range opts {
		opt(def)
	}
	if def.Config == nil {
		def.Config = component.Empty()
	}

	if err := def.Validate(); err != nil {
		return nil, convertValidationError(name, err)
	}
	return def, nil
}

// convertValidationError maps ozzo field errors onto ErrInvalidDefinition
func convertValidationError(name string, err error) error {
	verrs, ok := err.(validation.Errors)
	if !ok {
		return ErrInvalidDefinition.Wrap(err)
	}

	fields := make(map[string]string, len(verrs))
	for field, fieldErr := range verrs {
		if fieldErr != nil {
			fields[field] = fieldErr.Error()
		}
	}
	return ErrInvalidDefinition.
		WithMsgf("invalid definition for service %q: %s", name, err.Error()).
		WithData("fields", fields).
		Wrap(err)
}
