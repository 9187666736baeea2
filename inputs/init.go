package inputs

import (
	"github.com/sqlpub/qin-mask/inputs/file"
	"github.com/sqlpub/qin-mask/registry"
)

func init() {
	// input plugins
	registry.RegisterPlugin(registry.InputPlugin, file.PluginName, func() registry.Plugin { return &file.InputPlugin{} })
}
