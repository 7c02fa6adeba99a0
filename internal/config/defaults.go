package config

const (
	defaultConfigPath       = "~/.config/filtertree/config.toml"
	projectConfigName       = "filtertree.toml"
	defaultDataDir          = "~/.local/share/filtertree"
	defaultLogDir           = "~/.local/share/filtertree/logs"
	defaultStoreFileName    = "filtertree.db"
	defaultMatchThreshold   = 0.8
	defaultFindThreshold    = 0.7
	defaultMaxDepth         = 6
	defaultCollisionSep     = " - "
	defaultMaxAncestorDepth = 5
	defaultIdentitySep      = "_"
	defaultSegmentMaxLen    = 40
	defaultBatchSize        = 400
	defaultMaxRetries       = 3
	defaultRetryDelayMS     = 1000
	defaultBatchDelayMS     = 100
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30

	storePathEnv = "FILTERTREE_STORE_PATH"
)

// Default returns a Config populated with repository defaults. StorePath is
// left empty and derived from DataDir during normalization.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Match: Match{
			Threshold:     defaultMatchThreshold,
			FindThreshold: defaultFindThreshold,
		},
		Outline: Outline{
			MaxDepth: defaultMaxDepth,
		},
		Collision: Collision{
			Separator:        defaultCollisionSep,
			MaxAncestorDepth: defaultMaxAncestorDepth,
		},
		Identity: Identity{
			Separator:     defaultIdentitySep,
			SegmentMaxLen: defaultSegmentMaxLen,
		},
		Store: Store{
			BatchSize:    defaultBatchSize,
			MaxRetries:   defaultMaxRetries,
			RetryDelayMS: defaultRetryDelayMS,
			BatchDelayMS: defaultBatchDelayMS,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
