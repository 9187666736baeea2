package transforms

import (
	"github.com/juju/errors"
	"github.com/sqlpub/qin-mask/core"
	"github.com/sqlpub/qin-mask/utils"
)

const RenameColumnTransName = "rename-column"

type RenameColumnTrans struct {
	name        string
	matchSchema string
	matchTable  string
	columns     []string
	renameAs    []string
}

func (rct *RenameColumnTrans) NewTransform(config map[string]interface{}) error {
	columns, ok := config["columns"]
	if !ok {
		return errors.NotFoundf("'columns' config")
	}
	renameAs, ok := config["rename-as"]
	if !ok {
		return errors.NotFoundf("'rename-as' config")
	}

	c, ok := utils.CastToSlice(columns)
	if !ok {
		return errors.NotValidf("'columns' %v, should be an array", columns)
	}
	columnsString, err := utils.CastSliceInterfaceToSliceString(c)
	if err != nil {
		return errors.Annotatef(err, "'columns' should be an array of string")
	}

	ra, ok := utils.CastToSlice(renameAs)
	if !ok {
		return errors.NotValidf("'rename-as' %v, should be an array", renameAs)
	}
	renameAsString, err := utils.CastSliceInterfaceToSliceString(ra)
	if err != nil {
		return errors.Annotatef(err, "'rename-as' should be an array of string")
	}

	if len(c) != len(ra) {
		return errors.NotValidf("'columns' and 'rename-as' of different length")
	}

	rct.name = RenameColumnTransName
	if rct.matchSchema, rct.matchTable, err = matchTarget(config); err != nil {
		return err
	}
	rct.columns = columnsString
	rct.renameAs = renameAsString
	return nil
}

func (rct *RenameColumnTrans) Transform(msg *core.Msg) (bool, error) {
	if !matches(rct.matchSchema, rct.matchTable, msg) || !materializeColumns(msg) {
		return false, nil
	}
	for i, column := range rct.columns {
		if j := FindColumn(msg.Insert.Columns, column); j >= 0 {
			msg.Insert.Columns[j] = rct.renameAs[i]
		}
	}
	msg.Columns = msg.Insert.Columns
	return false, nil
}
