package utils

import (
	"fmt"

	"github.com/go-demo/version"
	"github.com/urfave/cli/v2"
)

// Help carries the command line, flattened across the root command and
// mask-pii.
type Help struct {
	SqlFile    string
	Query      string
	ConfigFile string
	MetaDb     string
	LogLevel   string
	LogFile    string
	Daemon     bool
	HttpPort   uint

	MaskingConfig string
	Output        string
	OutputFile    string
	Detector      string
	Verify        bool
	SkipInvalid   bool
	// Set records which flags were given explicitly.
	Set map[string]bool
}

func (h *Help) IsSet(name string) bool {
	return h.Set[name]
}

var rootFlags = []cli.Flag{
	&cli.StringFlag{Name: "sql-file", Aliases: []string{"f"}, Usage: "mysql dump to read"},
	&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "list the columns whose name contains this text"},
	&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "toml app config"},
	&cli.StringFlag{Name: "meta-db", Usage: "bbolt file holding the schema snapshot"},
	&cli.StringFlag{Name: "level", Value: "info", Usage: "log level"},
	&cli.StringFlag{Name: "log-file", Usage: "log file, stderr when empty"},
	&cli.BoolFlag{Name: "daemon", Usage: "daemon run, must specify param 'log-file'"},
	&cli.UintFlag{Name: "http-port", Usage: "http monitor port, curl http://localhost:<port>/metrics; 0 disables it"},
}

var maskFlags = []cli.Flag{
	&cli.StringFlag{Name: "masking-config", Aliases: []string{"m"}, Usage: "yaml or toml masking config"},
	&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "stdout", Usage: "stdout, file, mysql or kafka"},
	&cli.StringFlag{Name: "output-file", Usage: "target of the file output"},
	&cli.StringFlag{Name: "detector", Value: "^insert", Usage: "regex selecting the first line of a two-line insert"},
	&cli.BoolFlag{Name: "verify", Usage: "re-parse every masked insert before writing it"},
	&cli.BoolFlag{Name: "skip-invalid", Usage: "pass inserts the grammar rejects through unchanged"},
}

func newHelp(c *cli.Context) *Help {
	h := &Help{
		SqlFile:       c.String("sql-file"),
		Query:         c.String("query"),
		ConfigFile:    c.String("config"),
		MetaDb:        c.String("meta-db"),
		LogLevel:      c.String("level"),
		LogFile:       c.String("log-file"),
		Daemon:        c.Bool("daemon"),
		HttpPort:      c.Uint("http-port"),
		MaskingConfig: c.String("masking-config"),
		Output:        c.String("output"),
		OutputFile:    c.String("output-file"),
		Detector:      c.String("detector"),
		Verify:        c.Bool("verify"),
		SkipInvalid:   c.Bool("skip-invalid"),
		Set:           map[string]bool{},
	}
	for _, flags := range [][]cli.Flag{rootFlags, maskFlags} {
		for _, f := range flags {
			name := f.Names()[0]
			h.Set[name] = c.IsSet(name)
		}
	}
	return h
}

// NewApp builds the command line. schema runs the root command and mask
// runs mask-pii.
func NewApp(schema func(h *Help) error, mask func(h *Help) error) *cli.App {
	cli.VersionPrinter = func(_ *cli.Context) {
		version.PrintVersion()
	}
	return &cli.App{
		Name:            "qin-mask",
		Usage:           "inspect a mysql dump, or mask the PII in its inserts",
		UsageText:       "qin-mask --sql-file dump.sql [--query text]\nqin-mask --sql-file dump.sql mask-pii --masking-config masking.yaml",
		Version:         version.Version,
		HideHelpCommand: true,
		Flags:           rootFlags,
		Action: func(c *cli.Context) error {
			if c.Args().Present() {
				return fmt.Errorf("unknown command %q", c.Args().First())
			}
			return schema(newHelp(c))
		},
		Commands: []*cli.Command{
			{
				Name:  "mask-pii",
				Usage: "stream the dump and mask PII in its inserts",
				Flags: maskFlags,
				Action: func(c *cli.Context) error {
					return mask(newHelp(c))
				},
			},
		},
	}
}
