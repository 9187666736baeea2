package kafka

import (
	"context"
	"strconv"

	gokafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/goccy/go-json"
	"github.com/juju/errors"
	"github.com/mitchellh/mapstructure"
	"github.com/siddontang/go-log/log"
	"github.com/sqlpub/qin-mask/config"
	"github.com/sqlpub/qin-mask/core"
	"github.com/sqlpub/qin-mask/metrics"
)

// OutputPlugin publishes every masked insert row as one json message.
// Lines that are not inserts are not published.
type OutputPlugin struct {
	*config.KafkaConfig
	client *gokafka.Producer
}

func (o *OutputPlugin) Configure(conf map[string]interface{}) error {
	o.KafkaConfig = &config.KafkaConfig{}
	var targetConf = conf["target"]
	if err := mapstructure.Decode(targetConf, o.KafkaConfig); err != nil {
		return errors.Trace(err)
	}
	if len(o.Brokers) == 0 {
		return errors.NotValidf("output kafka target brokers %v", o.Brokers)
	}
	if o.Topic == "" {
		return errors.NotValidf("output kafka target topic %q", o.Topic)
	}
	if o.Options.BatchSize == 0 {
		o.Options.BatchSize = DefaultBatchSize
	}
	if o.Options.BatchIntervalMs == 0 {
		o.Options.BatchIntervalMs = DefaultBatchIntervalMs
	}
	return nil
}

func (o *OutputPlugin) NewOutput(_ *core.Metas) (err error) {
	o.client, err = getProducer(o.KafkaConfig)
	if err != nil {
		return errors.Annotatef(err, "output %s client", PluginName)
	}
	return nil
}

func (o *OutputPlugin) Start(ctx context.Context, out <-chan *core.Msg) error {
	for {
		select {
		case msg, ok := <-out:
			if !ok {
				return o.flush()
			}
			if msg.Type != core.MsgDML || msg.Insert == nil {
				continue
			}
			if err := o.execute(msg); err != nil {
				return errors.Annotatef(err, "line %d", msg.InputContext.Line)
			}
		case e := <-o.client.Events():
			if err := deliveryError(e); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func deliveryError(e gokafka.Event) error {
	switch ev := e.(type) {
	case *gokafka.Message:
		if ev.TopicPartition.Error != nil {
			return errors.Annotatef(ev.TopicPartition.Error, "kafka delivery failed")
		}
	case gokafka.Error:
		if ev.IsFatal() {
			return errors.Annotatef(ev, "kafka producer failed")
		}
		log.Warnf("kafka producer error: %v", ev)
	default:
		log.Debugf("ignored kafka event: %s", ev)
	}
	return nil
}

func (o *OutputPlugin) execute(msg *core.Msg) error {
	for _, row := range rowMsgs(msg) {
		value, err := json.Marshal(row)
		if err != nil {
			return errors.Trace(err)
		}
		hash, err := DataHash(row.Data)
		if err != nil {
			return err
		}
		topic := o.Topic
		partition := gokafka.PartitionAny
		if o.PartitionNum > 0 {
			partition = int32(hash % uint64(o.PartitionNum))
		}
		kMsg := &gokafka.Message{
			TopicPartition: gokafka.TopicPartition{Topic: &topic, Partition: partition},
			Key:            []byte(strconv.FormatUint(hash, 10)),
			Value:          value,
		}
		if err = o.send(kMsg); err != nil {
			return err
		}
		log.Debugf("output %s msg: %s", PluginName, string(value))
		metrics.OpsWriteProcessed.Inc()
	}
	return nil
}

func (o *OutputPlugin) send(message *gokafka.Message) error {
	var err error
	for i := 0; i < RetryCount; i++ {
		err = o.client.Produce(message, nil)
		if err == nil {
			return nil
		}
		if kerr, ok := err.(gokafka.Error); ok && kerr.Code() == gokafka.ErrQueueFull {
			log.Warnf("kafka queue full, flushing before retry")
			o.client.Flush(o.Options.BatchIntervalMs)
			continue
		}
		log.Warnf("kafka send data failed, err: %v, start retry...", err.Error())
	}
	return errors.Annotatef(err, "kafka send")
}

// flush waits for outstanding deliveries and reports the first failure.
func (o *OutputPlugin) flush() error {
	remaining := o.client.Flush(FlushTimeoutMs)
	for i := 1; remaining > 0 && i < RetryCount; i++ {
		log.Warnf("kafka flush: %d messages still in queue", remaining)
		remaining = o.client.Flush(FlushTimeoutMs)
	}
	if remaining > 0 {
		return errors.Errorf("kafka flush: %d messages not delivered", remaining)
	}
	for {
		select {
		case e := <-o.client.Events():
			if err := deliveryError(e); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (o *OutputPlugin) Close() {
	log.Infof("output is closing...")
	closeProducer(o.client)
	log.Infof("output is closed")
}
