package transforms

import (
	"github.com/juju/errors"
	"github.com/siddontang/go-log/log"
	"github.com/sqlpub/qin-mask/core"
	"github.com/sqlpub/qin-mask/utils"
)

const DeleteColumnTransName = "delete-column"

type DeleteColumnTrans struct {
	name        string
	matchSchema string
	matchTable  string
	columns     []string
}

func (dct *DeleteColumnTrans) NewTransform(config map[string]interface{}) error {
	columns := config["columns"]
	c, ok := utils.CastToSlice(columns)
	if !ok {
		return errors.NotValidf("'columns' %v, should be an array", columns)
	}
	columnsString, err := utils.CastSliceInterfaceToSliceString(c)
	if err != nil {
		return errors.Annotatef(err, "'columns' should be an array of string")
	}
	dct.name = DeleteColumnTransName
	if dct.matchSchema, dct.matchTable, err = matchTarget(config); err != nil {
		return err
	}
	dct.columns = columnsString
	return nil
}

func (dct *DeleteColumnTrans) Transform(msg *core.Msg) (bool, error) {
	if !matches(dct.matchSchema, dct.matchTable, msg) || !materializeColumns(msg) {
		return false, nil
	}
	for _, column := range dct.columns {
		i := FindColumn(msg.Insert.Columns, column)
		if i < 0 {
			continue
		}
		msg.Insert.Columns = append(msg.Insert.Columns[:i], msg.Insert.Columns[i+1:]...)
		for r, row := range msg.Insert.Rows {
			if i < len(row) {
				msg.Insert.Rows[r] = append(row[:i], row[i+1:]...)
			}
		}
		log.Debugf("%s dropped %s.%s.%s", dct.name, msg.Database, msg.Table, column)
	}
	msg.Columns = msg.Insert.Columns
	return false, nil
}
