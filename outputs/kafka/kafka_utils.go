package kafka

import (
	"fmt"
	"strings"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/juju/errors"
	"github.com/mitchellh/hashstructure/v2"
	"github.com/sqlpub/qin-mask/config"
	"github.com/sqlpub/qin-mask/core"
)

const (
	PluginName                 = "kafka"
	DefaultBatchSize       int = 10000
	DefaultBatchIntervalMs int = 100
	FlushTimeoutMs         int = 15000
	RetryCount             int = 3
)

func getProducer(conf *config.KafkaConfig) (producer *kafka.Producer, err error) {
	kafkaConf := &kafka.ConfigMap{
		"api.version.request":          "true",
		"message.max.bytes":            1000000,
		"linger.ms":                    conf.Options.BatchIntervalMs,
		"batch.num.messages":           conf.Options.BatchSize,
		"retries":                      30,
		"retry.backoff.ms":             1000,
		"acks":                         "1",
		"go.delivery.reports":          true,
		"go.delivery.report.fields":    "key",
		"queue.buffering.max.messages": 100000,
	}
	err = kafkaConf.SetKey("bootstrap.servers", strings.Join(conf.Brokers, ","))
	if err != nil {
		return nil, err
	}
	err = kafkaConf.SetKey("security.protocol", "plaintext")
	if err != nil {
		return nil, err
	}
	producer, err = kafka.NewProducer(kafkaConf)
	return producer, err
}

func closeProducer(producer *kafka.Producer) {
	if producer != nil {
		producer.Close()
	}
}

type kafkaRowMsg struct {
	Database string                 `json:"database"`
	Table    string                 `json:"table"`
	Type     string                 `json:"type"`
	Ts       uint32                 `json:"ts"`
	Data     map[string]interface{} `json:"data"`
}

// rowMsgs splits an insert into one message per row. Values without a known
// column name are keyed by position.
func rowMsgs(msg *core.Msg) []*kafkaRowMsg {
	columns := msg.Columns
	if len(columns) == 0 {
		columns = msg.Insert.Columns
	}
	rows := make([]*kafkaRowMsg, 0, len(msg.Insert.Rows))
	for _, row := range msg.Insert.Rows {
		data := make(map[string]interface{}, len(row))
		for i, v := range row {
			name := fmt.Sprintf("col_%d", i+1)
			if i < len(columns) {
				name = columns[i]
			}
			if v.IsNull() {
				data[name] = nil
			} else {
				data[name] = v.Text
			}
		}
		rows = append(rows, &kafkaRowMsg{
			Database: msg.Database,
			Table:    msg.Table,
			Type:     "insert",
			Ts:       uint32(msg.Timestamp.Unix()),
			Data:     data,
		})
	}
	return rows
}

func DataHash(key interface{}) (uint64, error) {
	hash, err := hashstructure.Hash(key, hashstructure.FormatV2, nil)
	if err != nil {
		return 0, errors.Trace(err)
	}
	return hash, nil
}
