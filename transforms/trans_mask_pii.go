package transforms

import (
	"github.com/juju/errors"
	"github.com/mitchellh/mapstructure"
	"github.com/siddontang/go-log/log"
	"github.com/sqlpub/qin-mask/config"
	"github.com/sqlpub/qin-mask/core"
	"github.com/sqlpub/qin-mask/metas"
	"github.com/sqlpub/qin-mask/metrics"
	"github.com/sqlpub/qin-mask/utils"
)

const MaskPIITransName = "mask-pii"

// MaskPIITrans replaces PII in insert values with generated substitutes.
type MaskPIITrans struct {
	name       string
	conf       *config.MaskingConfig
	matcher    *Matcher
	generators *Generators
	seeder     Seeder
	rules      map[string]string
}

// NewMaskPIITrans builds the transform from a loaded config. A nil seeder
// uses HashSeeder with the configured salt.
func NewMaskPIITrans(conf *config.MaskingConfig, seeder Seeder) (*MaskPIITrans, error) {
	mpt := &MaskPIITrans{}
	if err := mpt.init(conf, seeder); err != nil {
		return nil, err
	}
	return mpt, nil
}

// NewTransform accepts either "masking-config", a path to a yaml or toml
// file, or the masking keys inline.
func (mpt *MaskPIITrans) NewTransform(conf map[string]interface{}) error {
	var maskingConf *config.MaskingConfig
	path, ok := utils.CastToString(conf["masking-config"])
	if !ok {
		return errors.NotValidf("'masking-config' %v", conf["masking-config"])
	}
	if path != "" {
		c, err := config.LoadMaskingConfig(path)
		if err != nil {
			return err
		}
		maskingConf = c
	} else {
		maskingConf = &config.MaskingConfig{}
		if err := mapstructure.Decode(conf, maskingConf); err != nil {
			return errors.Annotatef(err, "decode %s config", MaskPIITransName)
		}
		if err := maskingConf.Validate(); err != nil {
			return err
		}
	}
	return mpt.init(maskingConf, nil)
}

func (mpt *MaskPIITrans) init(conf *config.MaskingConfig, seeder Seeder) error {
	matcher, err := NewMatcher(conf)
	if err != nil {
		return err
	}
	if seeder == nil {
		seeder = HashSeeder{Salt: conf.Salt}
	}
	mpt.name = MaskPIITransName
	mpt.conf = conf
	mpt.matcher = matcher
	mpt.generators = NewGenerators()
	mpt.seeder = seeder
	mpt.rules = make(map[string]string, len(conf.Rules))
	for key, rule := range conf.Rules {
		if _, _, err := mpt.generators.MustLookup(rule); err != nil {
			return errors.Annotatef(err, "rule %s", key)
		}
		mpt.rules[matcher.fold(key)] = rule
	}
	return nil
}

func (mpt *MaskPIITrans) Transform(msg *core.Msg) (bool, error) {
	if msg.Type != core.MsgDML || msg.Insert == nil {
		return false, nil
	}
	columns := msg.Columns
	if len(columns) == 0 {
		columns = msg.Insert.Columns
	}
	for _, row := range msg.Insert.Rows {
		for i, value := range row {
			column := ""
			if i < len(columns) {
				column = columns[i]
			}
			masked, ok, err := mpt.Mask(column, value)
			if err != nil {
				return false, err
			}
			if ok {
				row[i] = masked
			}
		}
	}
	return false, nil
}

// Mask returns the substitute for one value and whether it was masked.
func (mpt *MaskPIITrans) Mask(column string, value metas.Value) (metas.Value, bool, error) {
	if value.IsNull() {
		return value, false, nil
	}
	text := value.Text
	if !mpt.matcher.Filter(text) && !mpt.matcher.Filter(column) {
		return value, false, nil
	}
	name, gen, err := mpt.resolve(column, text)
	if err != nil {
		return value, false, err
	}
	metrics.OpsMaskedValues.WithLabelValues(name).Inc()
	return metas.TextValue(Generate(gen, mpt.seeder, column, text)), true, nil
}

// resolve picks a generator: a rule for the column, a rule for the matching
// pattern, a builtin named like the column or the pattern, then the
// shape-preserving fallback.
func (mpt *MaskPIITrans) resolve(column string, text string) (string, Generator, error) {
	if rule, ok := mpt.rules[mpt.matcher.fold(column)]; ok && column != "" {
		return mpt.generators.MustLookup(rule)
	}
	pattern, matched := mpt.matcher.MatchPattern(text)
	if !matched {
		pattern, matched = mpt.matcher.MatchPattern(column)
	}
	if matched && pattern != "" {
		if rule, ok := mpt.rules[mpt.matcher.fold(pattern)]; ok {
			return mpt.generators.MustLookup(rule)
		}
	}
	if column != "" {
		if name, gen, ok := mpt.generators.Lookup(column); ok {
			return name, gen, nil
		}
	}
	if matched && pattern != "" {
		if name, gen, ok := mpt.generators.Lookup(pattern); ok {
			return name, gen, nil
		}
	}
	log.Debugf("no generator for column %q, using shape", column)
	return "shape", mpt.generators.Fallback(), nil
}
