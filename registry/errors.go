package registry

import (
	"github.com/KOMKZ/go-yogan-servicemgr/component"
	"github.com/KOMKZ/go-yogan-servicemgr/errcode"
)

const (
	ErrCodeServiceAlreadyDefined = 1
	ErrCodeServiceNotDefined     = 2
	ErrCodeInvalidDefinition     = 4
	ErrCodeUnknownServiceType    = 8
)

var (
	// ErrServiceAlreadyDefined a name was registered twice without override
	ErrServiceAlreadyDefined = errcode.Register(errcode.New(
		component.ModuleCode, ErrCodeServiceAlreadyDefined,
		component.ModuleName, "error.servicemgr.service_already_defined", "service already defined",
	))

	// ErrServiceNotDefined no definition exists for the requested name
	ErrServiceNotDefined = errcode.Register(errcode.New(
		component.ModuleCode, ErrCodeServiceNotDefined,
		component.ModuleName, "error.servicemgr.service_not_defined", "service not defined",
	))

	// ErrInvalidDefinition registration input failed validation
	ErrInvalidDefinition = errcode.Register(errcode.New(
		component.ModuleCode, ErrCodeInvalidDefinition,
		component.ModuleName, "error.servicemgr.invalid_definition", "invalid service definition",
	))

	// ErrUnknownServiceType a configured service names a type missing from the catalog
	ErrUnknownServiceType = errcode.Register(errcode.New(
		component.ModuleCode, ErrCodeUnknownServiceType,
		component.ModuleName, "error.servicemgr.unknown_service_type", "unknown service type",
	))
)
