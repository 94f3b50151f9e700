package config

// Config groups every configuration concern of the client and the dev server.
type Config interface {
	EnvConfig
	SessionConfig
	StorageConfig
	DevServerConfig
}

type mainConfig struct {
	EnvVars
	Session
	Storage
	DevServer
}

func New() Config {
	return mainConfig{}
}
