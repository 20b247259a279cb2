package config

const (
	defaultInputLog          = "~/.local/share/envwatch/sensor_data.jsonl"
	defaultOutputLog         = "~/.local/share/envwatch/processed_data.jsonl"
	defaultStateDir          = "~/.local/share/envwatch/state"
	defaultLogDir            = "~/.local/share/envwatch/logs"
	defaultPollInterval      = 0.5
	defaultSimulatorInterval = 2.0
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogRetentionDays  = 30
)

var defaultSensors = []string{"SENSOR_A", "SENSOR_B", "SENSOR_C"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	sensors := make([]string, len(defaultSensors))
	copy(sensors, defaultSensors)
	return Config{
		Paths: Paths{
			InputLog:  defaultInputLog,
			OutputLog: defaultOutputLog,
			StateDir:  defaultStateDir,
			LogDir:    defaultLogDir,
		},
		Stream: Stream{
			PollInterval: defaultPollInterval,
		},
		Simulator: Simulator{
			Interval: defaultSimulatorInterval,
			Sensors:  sensors,
			Reset:    true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
