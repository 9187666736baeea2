package registry

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPlugin struct {
	conf map[string]interface{}
}

func (p *countingPlugin) Configure(conf map[string]interface{}) error {
	p.conf = conf
	return nil
}

func TestRegisterPlugin(t *testing.T) {
	RegisterPlugin(OutputPlugin, "test-counting", func() Plugin { return &countingPlugin{} })

	a, err := GetPlugin(OutputPlugin, "test-counting")
	require.NoError(t, err)
	b, err := GetPlugin(OutputPlugin, "test-counting")
	require.NoError(t, err)
	assert.NotSame(t, a, b)

	require.NoError(t, a.Configure(map[string]interface{}{"k": "v"}))
	assert.Equal(t, "v", a.(*countingPlugin).conf["k"])
	assert.Nil(t, b.(*countingPlugin).conf)

	assert.Contains(t, PluginNames(OutputPlugin), "test-counting")
	assert.NotContains(t, PluginNames(InputPlugin), "test-counting")
}

func TestGetPluginUnknown(t *testing.T) {
	_, err := GetPlugin(InputPlugin, "no-such-plugin")
	assert.True(t, errors.IsNotFound(err))
}
