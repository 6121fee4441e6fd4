package errcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayeredError_New(t *testing.T) {
	err := New(60, 2, "servicemgr", "error.servicemgr.not_defined", "service not defined")

	assert.Equal(t, 600002, err.Code())
	assert.Equal(t, "servicemgr", err.Module())
	assert.Equal(t, "error.servicemgr.not_defined", err.MsgKey())
	assert.Equal(t, "service not defined", err.Message())
	assert.Empty(t, err.Data())
	assert.Nil(t, err.Cause())
}

func TestLayeredError_ErrorWithCause(t *testing.T) {
	base := New(60, 5, "servicemgr", "error.servicemgr.instantiation", "instantiation failed")
	err := base.Wrap(errors.New("boom"))

	assert.Equal(t, "instantiation failed: boom", err.Error())
	assert.Equal(t, "instantiation failed", base.Error(), "wrap must not modify the sentinel")
}

func TestLayeredError_WrapNil(t *testing.T) {
	base := New(60, 5, "servicemgr", "k", "m")
	assert.Same(t, base, base.Wrap(nil))
}

func TestLayeredError_WithMsgf(t *testing.T) {
	base := New(60, 1, "servicemgr", "k", "already defined")
	err := base.WithMsgf("service %q is already defined", "cache")

	assert.Equal(t, `service "cache" is already defined`, err.Message())
	assert.Equal(t, "already defined", base.Message())
	assert.Equal(t, base.Code(), err.Code())
}

func TestLayeredError_WithDataIsolation(t *testing.T) {
	base := New(60, 1, "servicemgr", "k", "m")
	a := base.WithData("name", "cache")
	b := a.WithFields(map[string]interface{}{"override": false})

	assert.Empty(t, base.Data())
	assert.Len(t, a.Data(), 1)
	assert.Len(t, b.Data(), 2)
	assert.Equal(t, "cache", b.Data()["name"])
}

func TestLayeredError_Wrapf(t *testing.T) {
	base := New(60, 6, "servicemgr", "k", "activation failed")

	err := base.Wrapf(errors.New("start"), "service %s failed to start", "cache")
	assert.Equal(t, "service cache failed to start: start", err.Error())

	noCause := base.Wrapf(nil, "service %s", "x")
	assert.Nil(t, noCause.Cause())
	assert.Equal(t, "service x", noCause.Message())
}

func TestLayeredError_Is(t *testing.T) {
	sentinel := New(60, 2, "servicemgr", "k", "m")
	other := New(60, 3, "servicemgr", "k2", "m2")

	decorated := sentinel.WithMsg("service x").WithData("name", "x")
	wrapped := fmt.Errorf("outer: %w", decorated)

	assert.True(t, errors.Is(decorated, sentinel))
	assert.True(t, errors.Is(wrapped, sentinel))
	assert.False(t, errors.Is(decorated, other))
	assert.False(t, errors.Is(decorated, errors.New("m")))

	var le *LayeredError
	assert.True(t, errors.As(wrapped, &le))
	assert.Equal(t, 600002, le.Code())
}

func TestLayeredError_UnwrapChain(t *testing.T) {
	root := errors.New("root")
	err := New(60, 5, "servicemgr", "k", "m").Wrap(root)
	assert.True(t, errors.Is(err, root))
}

func TestLayeredError_String(t *testing.T) {
	err := New(60, 1, "servicemgr", "k", "m")
	assert.Equal(t, "LayeredError{code:600001, module:servicemgr, msg:m}", err.String())
	assert.Contains(t, err.Wrap(errors.New("c")).String(), "cause:c")
}
