package component

import "github.com/KOMKZ/go-yogan-servicemgr/errcode"

// ModuleCode is shared by every servicemgr package (60xxxx)
const ModuleCode = 60

// ModuleName is the errcode module of servicemgr errors
const ModuleName = "servicemgr"

const ErrCodeInvalidConfiguration = 10

// ErrInvalidConfiguration is returned for configuration values that are not
// primitives or slices of primitives
var ErrInvalidConfiguration = errcode.Register(errcode.New(
	ModuleCode, ErrCodeInvalidConfiguration,
	ModuleName, "error.servicemgr.invalid_configuration", "invalid service configuration",
))
