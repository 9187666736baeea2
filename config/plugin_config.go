package config

type FileConfig struct {
	Path string `mapstructure:"path"`
	// Detector selects the lines that open a two-line insert.
	Detector string `mapstructure:"detector"`
}

type OutputFileConfig struct {
	Path   string `mapstructure:"path"`
	Append bool   `mapstructure:"append"`
}

type MysqlConfig struct {
	Host     string
	Port     int
	UserName string
	Password string
	Database string
	Options  struct {
		RetryCount int `mapstructure:"retry-count"`
	}
}

type KafkaConfig struct {
	Brokers      []string
	Topic        string
	PartitionNum int `mapstructure:"partition-num"`
	Options      struct {
		BatchSize       int `mapstructure:"batch-size"`
		BatchIntervalMs int `mapstructure:"batch-interval-ms"`
	}
}
