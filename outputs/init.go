package outputs

import (
	"github.com/sqlpub/qin-mask/outputs/file"
	"github.com/sqlpub/qin-mask/outputs/kafka"
	"github.com/sqlpub/qin-mask/outputs/mysql"
	"github.com/sqlpub/qin-mask/registry"
)

func init() {
	// registry output plugins
	registry.RegisterPlugin(registry.OutputPlugin, file.StdoutPluginName, func() registry.Plugin { return file.NewStdoutPlugin() })
	registry.RegisterPlugin(registry.OutputPlugin, file.PluginName, func() registry.Plugin { return &file.OutputPlugin{} })
	registry.RegisterPlugin(registry.OutputPlugin, mysql.PluginName, func() registry.Plugin { return &mysql.OutputPlugin{} })
	registry.RegisterPlugin(registry.OutputPlugin, kafka.PluginName, func() registry.Plugin { return &kafka.OutputPlugin{} })
}
