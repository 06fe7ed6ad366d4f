package config

// PasswordConfig holds the password acceptance policy
type PasswordConfig struct {
	MinLength int `env:"PASSWORD_MIN_LENGTH" env-default:"8"`
}
