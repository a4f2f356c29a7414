package logger

// Console implements a console based logger.
type Console struct {
	Enabled          bool `mapstructure:"enabled"`
	UseConsoleWriter bool `mapstructure:"useConsoleWriter"`
}

// RollingFile configures one lumberjack file.
type RollingFile struct {
	Name       string `mapstructure:"name"`
	MaxSize    int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAge     int    `mapstructure:"maxAge"`
}

// LogFile implements a file based logger split by level.
type LogFile struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`

	Access RollingFile `mapstructure:"access"`
	Error  RollingFile `mapstructure:"error"`
	Info   RollingFile `mapstructure:"info"`
	Trace  RollingFile `mapstructure:"trace"`
	Warn   RollingFile `mapstructure:"warn"`
}

// Log implements the logger config.
type Log struct {
	LogLevel string `mapstructure:"logLevel"` // trace, debug, info, warn, error.

	// EnableAccessLogToConsole writes the access log to the console too.
	// Does not overrule Console.Enabled.
	EnableAccessLogToConsole bool `mapstructure:"enableAccessLogToConsole"`
	ReportCaller             bool `mapstructure:"reportCaller"`
	DisableCheckAlive        bool `mapstructure:"disableCheckAlive"` // do not log /checkalive calls

	AppName     string `mapstructure:"appName"`
	ServiceName string `mapstructure:"serviceName"`

	Console Console `mapstructure:"console"`
	File    LogFile `mapstructure:"file"`
}
