package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sqlpub/qin-mask/metas"
)

type MsgType string

const (
	MsgRaw MsgType = "raw"
	MsgDML MsgType = "dml"
)

// Msg is one unit of the streaming pipeline. Raw messages carry a physical
// line untouched. DML messages carry a detected insert and, once decoded,
// its structured form.
type Msg struct {
	Database  string
	Table     string
	Type      MsgType
	Raw       string
	Statement string
	Insert    *metas.Insert
	// Columns names each value position for matching. It falls back to the
	// tracked schema when the insert has no column list.
	Columns      []string
	Rendered     string
	Timestamp    time.Time
	InputContext struct {
		Line int
	}
}

// Text is what an output writes for the message. A rendered insert ends the
// way its source lines did.
func (m *Msg) Text() string {
	if m.Type == MsgDML && m.Rendered != "" {
		return m.Rendered + m.LineEnd()
	}
	return m.Raw
}

// LineEnd is the terminator of the raw text, "\r\n" for CRLF dumps and "\n"
// otherwise.
func (m *Msg) LineEnd() string {
	if strings.HasSuffix(m.Raw, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

func (m *Msg) ToString() string {
	switch m.Type {
	case MsgDML:
		if m.Insert == nil {
			return fmt.Sprintf("msg event: %s line %d %.64q", m.Type, m.InputContext.Line, m.Statement)
		}
		marshal, _ := json.Marshal(m.Insert.Rows)
		return fmt.Sprintf("msg event: %s %s.%s %v", m.Type, m.Database, m.Table, string(marshal))
	default:
		return fmt.Sprintf("msg event: %s line %d %.64q", m.Type, m.InputContext.Line, strings.TrimRight(m.Raw, "\r\n"))
	}
}
