package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	Database    Database `envPrefix:"DATABASE_"`
	Auth        Auth     `envPrefix:"AUTH_"`
	RabbitMQ    RabbitMQ `envPrefix:"RABBITMQ_"`
}

type Database struct {
	// mysql or sqlite
	Driver string `env:"DRIVER" envDefault:"mysql"`
	URL    string `env:"URL"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET,required"`
	// token lifetime in hours
	TokenTTLHours int `env:"TOKEN_TTL_HOURS" envDefault:"24"`
}

type RabbitMQ struct {
	// leave empty to disable order event publishing
	URL string `env:"URL"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
