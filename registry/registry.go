package registry

import (
	"sync"

	"github.com/juju/errors"
	"github.com/siddontang/go-log/log"
)

type PluginType string

const (
	InputPlugin  PluginType = "input"
	OutputPlugin PluginType = "output"
)

type Plugin interface {
	Configure(conf map[string]interface{}) error
}

// Factory returns a fresh plugin instance per lookup.
type Factory func() Plugin

var (
	lock    sync.RWMutex
	plugins = map[PluginType]map[string]Factory{}
)

func RegisterPlugin(pluginType PluginType, name string, f Factory) {
	lock.Lock()
	defer lock.Unlock()
	if _, ok := plugins[pluginType]; !ok {
		plugins[pluginType] = map[string]Factory{}
	}
	if _, ok := plugins[pluginType][name]; ok {
		log.Warnf("plugin %s/%s already registered, replaced", pluginType, name)
	}
	plugins[pluginType][name] = f
}

func GetPlugin(pluginType PluginType, name string) (Plugin, error) {
	lock.RLock()
	defer lock.RUnlock()
	f, ok := plugins[pluginType][name]
	if !ok {
		return nil, errors.NotFoundf("%s plugin %s", pluginType, name)
	}
	return f(), nil
}

// PluginNames lists the registered names of a plugin type.
func PluginNames(pluginType PluginType) []string {
	lock.RLock()
	defer lock.RUnlock()
	names := make([]string, 0, len(plugins[pluginType]))
	for name := range plugins[pluginType] {
		names = append(names, name)
	}
	return names
}
