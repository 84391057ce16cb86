package config

import "shelfsync/internal/entity"

const (
	defaultConfigPath          = "~/.config/shelfsync/config.toml"
	defaultBind                = "127.0.0.1:7488"
	defaultMinimumCopies       = 2
	defaultAgentTimeoutSeconds = 5
	defaultStateDir            = "~/.local/share/shelfsync"
	defaultLogDir              = "~/.local/share/shelfsync/logs"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults. It has no
// agents, so it does not validate until at least one is added.
func Default() Config {
	return Config{
		Manager: Manager{
			Bind:                defaultBind,
			MinimumCopies:       defaultMinimumCopies,
			AgentTimeoutSeconds: defaultAgentTimeoutSeconds,
			SortOrder:           entity.SortByName,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Journal: Journal{
			Enabled: true,
		},
	}
}
