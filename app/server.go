package app

import (
	"context"
	"sync"

	"github.com/juju/errors"
	"github.com/siddontang/go-log/log"
	"github.com/sqlpub/qin-mask/config"
	"github.com/sqlpub/qin-mask/core"
	_ "github.com/sqlpub/qin-mask/inputs"
	"github.com/sqlpub/qin-mask/metas"
	"github.com/sqlpub/qin-mask/metrics"
	_ "github.com/sqlpub/qin-mask/outputs"
	"github.com/sqlpub/qin-mask/registry"
	"github.com/sqlpub/qin-mask/transforms"
)

const chanSize = 1024

// Server streams a dump from the input through the transforms to the output.
// Stages run in their own goroutines and keep message order.
type Server struct {
	Input        core.Input
	Output       core.Output
	Metas        *core.Metas
	Transforms   transforms.MatcherTransforms
	InboundChan  chan *core.Msg
	OutboundChan chan *core.Msg
	SkipInvalid  bool
	verifier     *metas.Verifier
	tracker      *schemaTracker
	sync.Mutex
}

func NewServer(conf *config.Config) (server *Server, err error) {
	if err = conf.Validate(); err != nil {
		return nil, err
	}

	// input
	plugin, err := registry.GetPlugin(registry.InputPlugin, conf.InputConfig.Type)
	if err != nil {
		return nil, err
	}
	input, ok := plugin.(core.Input)
	if !ok {
		return nil, errors.NotValidf("input type %s", conf.InputConfig.Type)
	}
	if err = plugin.Configure(conf.InputConfig.Config); err != nil {
		return nil, err
	}

	// output
	plugin, err = registry.GetPlugin(registry.OutputPlugin, conf.OutputConfig.Type)
	if err != nil {
		return nil, err
	}
	output, ok := plugin.(core.Output)
	if !ok {
		return nil, errors.NotValidf("output type %s", conf.OutputConfig.Type)
	}
	if err = plugin.Configure(conf.OutputConfig.Config); err != nil {
		return nil, err
	}

	// trans
	trans, err := transforms.NewMatcherTransforms(conf.TransformsConfig)
	if err != nil {
		return nil, err
	}

	// meta
	m, err := core.NewMetas(nil)
	if err != nil {
		return nil, err
	}
	if conf.MetaDb != "" {
		schema, err := metas.OpenBoltMeta(conf.MetaDb, m.Renderer)
		if err != nil {
			return nil, err
		}
		m.Schema = schema
	}

	server, err = newServer(input, output, m, trans, conf)
	if err != nil {
		m.Close()
		return nil, err
	}
	return server, nil
}

// newServer wires already configured plugins.
func newServer(input core.Input, output core.Output, m *core.Metas, trans transforms.MatcherTransforms, conf *config.Config) (*Server, error) {
	s := &Server{
		Input:        input,
		Output:       output,
		Metas:        m,
		Transforms:   trans,
		InboundChan:  make(chan *core.Msg, chanSize),
		OutboundChan: make(chan *core.Msg, chanSize),
		SkipInvalid:  conf.SkipInvalid,
		tracker:      newSchemaTracker(),
	}
	if conf.Verify {
		s.verifier = metas.NewVerifier()
	}
	if err := s.Input.NewInput(m); err != nil {
		return nil, err
	}
	if err := s.Output.NewOutput(m); err != nil {
		s.Input.Close()
		return nil, err
	}
	return s, nil
}

// Run blocks until the input is exhausted and the output has flushed, or
// until the first stage fails.
func (s *Server) Run(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errc := make(chan error, 3)
	go func() {
		defer close(s.InboundChan)
		errc <- s.Input.Start(ctx, s.InboundChan)
	}()
	go func() {
		defer close(s.OutboundChan)
		errc <- s.process(ctx)
	}()
	go func() {
		errc <- s.Output.Start(ctx, s.OutboundChan)
	}()

	var first error
	for i := 0; i < 3; i++ {
		if err := <-errc; err != nil && first == nil {
			first = err
			cancel()
		}
	}
	return first
}

func (s *Server) process(ctx context.Context) error {
	for msg := range s.InboundChan {
		drop, err := s.handle(msg)
		if err != nil {
			return err
		}
		if drop {
			continue
		}
		select {
		case s.OutboundChan <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *Server) handle(msg *core.Msg) (bool, error) {
	if msg.Type == core.MsgRaw {
		s.tracker.feed(msg.Raw)
		msg.Database = s.tracker.database()
		return false, nil
	}
	msg.Database = s.tracker.database()
	insert, err := metas.NewInsert(msg.Statement)
	if err != nil {
		if !s.SkipInvalid {
			return false, errors.Annotatef(err, "insert at line %d", msg.InputContext.Line)
		}
		log.Warnf("insert at line %d passed through unparsed: %v", msg.InputContext.Line, err)
		metrics.OpsSkipped.Inc()
		msg.Type = core.MsgRaw
		return false, nil
	}
	metrics.OpsReadProcessed.Inc()
	msg.Insert = insert
	msg.Table = insert.Table
	msg.Columns = s.columns(msg)

	drop, err := s.Transforms.IterateTransforms(msg)
	if err != nil || drop {
		return drop, err
	}
	if msg.Rendered, err = s.Metas.Renderer.Insert(msg.Insert); err != nil {
		return false, err
	}
	if s.verifier != nil {
		if err = s.verifier.Verify(msg.Rendered); err != nil {
			return false, errors.Annotatef(err, "insert at line %d", msg.InputContext.Line)
		}
	}
	return false, nil
}

// columns names the value positions of msg's insert: its own column list,
// then the tracked schema, then the snapshot store.
func (s *Server) columns(msg *core.Msg) []string {
	if len(msg.Insert.Columns) > 0 {
		return msg.Insert.Columns
	}
	if columns := s.tracker.columns(msg.Table); columns != nil {
		return columns
	}
	if s.Metas.Schema != nil && msg.Database != "" {
		if tab, err := s.Metas.Schema.Get(msg.Database, msg.Table); err == nil {
			return tab.ColumnNames()
		}
	}
	return nil
}

// Close releases the plugins. A configured snapshot store receives the
// schema seen in the stream.
func (s *Server) Close() {
	s.Lock()
	defer s.Unlock()

	s.Input.Close()
	s.Output.Close()
	if s.Metas.Schema != nil {
		if dbs := s.tracker.parser.Databases(); len(dbs) > 0 {
			if err := s.Metas.Schema.Save(dbs); err != nil {
				log.Errorf("save schema snapshot failed: %v", errors.ErrorStack(err))
			}
		}
	}
	s.Metas.Close()
}
