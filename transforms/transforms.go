package transforms

import (
	"github.com/juju/errors"
	"github.com/siddontang/go-log/log"
	"github.com/sqlpub/qin-mask/config"
	"github.com/sqlpub/qin-mask/core"
	"github.com/sqlpub/qin-mask/utils"
)

type MatcherTransforms []core.Transform

func NewMatcherTransforms(transConfigs []config.TransformConfig) (matcher MatcherTransforms, err error) {
	for i, tc := range transConfigs {
		var trans core.Transform
		switch typ := tc.Type; typ {
		case MaskPIITransName:
			trans = &MaskPIITrans{}
		case RenameColumnTransName:
			trans = &RenameColumnTrans{}
		case DeleteColumnTransName:
			trans = &DeleteColumnTrans{}
		default:
			return nil, errors.NotSupportedf("transforms[%d] type %s", i, typ)
		}
		if err = trans.NewTransform(tc.Config); err != nil {
			return nil, errors.Annotatef(err, "transforms[%d] %s", i, tc.Type)
		}
		log.Infof("load transform: %s", tc.Type)
		matcher = append(matcher, trans)
	}
	return matcher, nil
}

// IterateTransforms runs every transform in order and stops at the first
// one that drops msg.
func (m MatcherTransforms) IterateTransforms(msg *core.Msg) (bool, error) {
	for _, trans := range m {
		drop, err := trans.Transform(msg)
		if err != nil {
			return false, err
		}
		if drop {
			log.Debugf("transform dropped %s", msg.ToString())
			return true, nil
		}
	}
	return false, nil
}

func FindColumn(columns []string, name string) int {
	for i, column := range columns {
		if column == name {
			return i
		}
	}
	return -1
}

// matchTarget reads the optional match-schema and match-table keys. Empty
// means any.
func matchTarget(config map[string]interface{}) (schema string, table string, err error) {
	var ok bool
	if schema, ok = utils.CastToString(config["match-schema"]); !ok {
		return "", "", errors.NotValidf("'match-schema' %v", config["match-schema"])
	}
	if table, ok = utils.CastToString(config["match-table"]); !ok {
		return "", "", errors.NotValidf("'match-table' %v", config["match-table"])
	}
	return schema, table, nil
}

func matches(schema string, table string, msg *core.Msg) bool {
	if msg.Type != core.MsgDML || msg.Insert == nil {
		return false
	}
	return (schema == "" || schema == msg.Database) && (table == "" || table == msg.Table)
}

// materializeColumns gives a column-less insert an explicit column list
// taken from the tracked schema. It reports false when no names are known.
func materializeColumns(msg *core.Msg) bool {
	if len(msg.Insert.Columns) > 0 {
		return true
	}
	if len(msg.Columns) == 0 {
		log.Debugf("insert into %s without column list and unknown schema, skipped", msg.Table)
		return false
	}
	msg.Insert.Columns = append([]string(nil), msg.Columns...)
	return true
}
