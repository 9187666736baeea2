package app

import (
	"context"
	"io"
	"os"

	"github.com/juju/errors"
	"github.com/siddontang/go-log/log"
	"github.com/sqlpub/qin-mask/config"
	"github.com/sqlpub/qin-mask/metas"
	"github.com/sqlpub/qin-mask/transforms"
	"github.com/sqlpub/qin-mask/utils"
)

// Describe parses the dump, or loads the snapshot when no dump is given, and
// writes either the schema or the columns matching the query as json.
func Describe(help *utils.Help, w io.Writer) error {
	dbs, err := loadDatabases(help)
	if err != nil {
		return err
	}
	var out []byte
	if help.IsSet("query") {
		out, err = metas.ColumnMatchesJSON(metas.FindColumns(dbs, help.Query))
	} else {
		out, err = metas.DatabasesJSON(dbs)
	}
	if err != nil {
		return errors.Trace(err)
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return errors.Trace(err)
}

func loadDatabases(help *utils.Help) ([]*metas.Database, error) {
	switch {
	case help.SqlFile != "":
		data, err := os.ReadFile(help.SqlFile)
		if err != nil {
			return nil, errors.Annotatef(err, "read %s", help.SqlFile)
		}
		dp := metas.NewDumpParser()
		if err = dp.Parse(string(data)); err != nil {
			return nil, errors.Annotatef(err, "parse %s", help.SqlFile)
		}
		dbs := dp.Databases()
		if help.MetaDb != "" {
			if err = saveSnapshot(help.MetaDb, dbs); err != nil {
				return nil, err
			}
		}
		return dbs, nil
	case help.MetaDb != "":
		renderer, err := metas.NewRenderer()
		if err != nil {
			return nil, err
		}
		store, err := metas.OpenBoltMeta(help.MetaDb, renderer)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Load()
	default:
		return nil, errors.New("either --sql-file or --meta-db is required")
	}
}

func saveSnapshot(path string, dbs []*metas.Database) error {
	renderer, err := metas.NewRenderer()
	if err != nil {
		return err
	}
	store, err := metas.OpenBoltMeta(path, renderer)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Save(dbs)
}

// MaskConfig assembles the app config of a mask-pii run. A --config file is
// the base; flags given explicitly override it.
func MaskConfig(help *utils.Help) (*config.Config, error) {
	conf := &config.Config{}
	if help.ConfigFile != "" {
		c, err := config.NewConfig(help.ConfigFile)
		if err != nil {
			return nil, err
		}
		conf = c
	}
	if conf.InputConfig.Type == "" {
		conf.InputConfig.Type = "file"
	}
	if conf.InputConfig.Config == nil {
		conf.InputConfig.Config = map[string]interface{}{}
	}
	if help.SqlFile != "" {
		conf.InputConfig.Config["path"] = help.SqlFile
	}
	if help.IsSet("detector") || conf.InputConfig.Config["detector"] == nil {
		conf.InputConfig.Config["detector"] = help.Detector
	}
	if help.IsSet("output") || conf.OutputConfig.Type == "" {
		conf.OutputConfig.Type = help.Output
	}
	if conf.OutputConfig.Config == nil {
		conf.OutputConfig.Config = map[string]interface{}{}
	}
	if help.OutputFile != "" {
		conf.OutputConfig.Config["path"] = help.OutputFile
	}
	if help.MaskingConfig != "" {
		conf.TransformsConfig = append(conf.TransformsConfig, config.TransformConfig{
			Type:   transforms.MaskPIITransName,
			Config: map[string]interface{}{"masking-config": help.MaskingConfig},
		})
	}
	if !hasMaskTransform(conf.TransformsConfig) {
		return nil, errors.New("mask-pii needs --masking-config or a mask-pii transform in --config")
	}
	if help.IsSet("verify") {
		conf.Verify = help.Verify
	}
	if help.IsSet("skip-invalid") {
		conf.SkipInvalid = help.SkipInvalid
	}
	if help.MetaDb != "" {
		conf.MetaDb = help.MetaDb
	}
	return conf, conf.Validate()
}

func hasMaskTransform(tcs []config.TransformConfig) bool {
	for _, tc := range tcs {
		if tc.Type == transforms.MaskPIITransName {
			return true
		}
	}
	return false
}

// Mask runs one mask-pii pass to completion.
func Mask(ctx context.Context, conf *config.Config) error {
	s, err := NewServer(conf)
	if err != nil {
		return err
	}
	defer s.Close()
	log.Infof("masking %v to %s", conf.InputConfig.Config["path"], conf.OutputConfig.Type)
	return s.Run(ctx)
}
