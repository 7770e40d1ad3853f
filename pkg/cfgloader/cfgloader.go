// Package cfgloader provides a simple way to load and validate configuration at the start of an application.
package cfgloader

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvProduction = "production"
	EnvStaging    = "staging"
	EnvDev        = "dev"
	EnvLocal      = "local"
	EnvTest       = "test"
)

// MustLoad loads and validates configuration from a YAML file based on the ENVIRONMENT variable.
// The files must be named ${ENVIRONMENT}.yaml and located in the config directory at the root of the project.
//
// The configuration struct should use `yaml` struct tags to map fields to the YAML file structure.
// Environment variable references in the file (e.g. ${PG_PASSWORD}) are expanded before unmarshaling.
//
// Default values can be set with the `default` struct tag; they are applied after unmarshaling,
// so only fields left empty by the YAML file receive them.
//
// Validations are done using the go-playground/validator package.
// See https://pkg.go.dev/github.com/go-playground/validator/v10 for more information.
//
// Any failure terminates the process: configuration errors are unrecoverable at startup.
func MustLoad[T any](opts ...Option) T {
	var config T

	ensureNotPointer(config)

	options := Options{}
	for _, opt := range opts {
		opt(&options)
	}

	_ = godotenv.Load()

	env := defineEnvironment()

	data := readConfigFile(buildConfigPath(env))

	data = replaceEnvVars(data)

	unmarshalConfig(data, &config, env)

	setDefaults(&config)

	validateConfig(&config, env)

	if !options.Silent {
		printConfig(&config)
	}

	return config
}

func ensureNotPointer(config any) {
	if reflect.ValueOf(config).Kind() == reflect.Ptr {
		slog.Error("[cfgloader]: type argument must not be a pointer")
		os.Exit(1)
	}
}

func defineEnvironment() string {
	env := os.Getenv("ENVIRONMENT")
	if !slices.Contains([]string{EnvProduction, EnvStaging, EnvDev, EnvLocal, EnvTest}, env) {
		slog.Error(
			"[cfgloader]: ENVIRONMENT env variable is not set or invalid. Choices are: production, staging, dev, local, test",
		)
		os.Exit(1)
	}
	return env
}

func buildConfigPath(env string) string {
	return fmt.Sprintf("./config/%s.yaml", env)
}

func readConfigFile(path string) []byte {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		slog.Error(
			fmt.Sprintf("[cfgloader]: config file not found at %s - a yaml file must exist for each environment", path),
		)
		os.Exit(1)
	}
	if err != nil {
		slog.Error(fmt.Sprintf("[cfgloader]: failed to read config file %s: %v", path, err))
		os.Exit(1)
	}

	return data
}

func replaceEnvVars(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}

func unmarshalConfig(data []byte, config any, env string) {
	err := yaml.Unmarshal(data, config)
	if err != nil {
		slog.Error(fmt.Sprintf("[cfgloader]: failed to unmarshal %s config file: %v", env, err))
		os.Exit(1)
	}
}

func setDefaults(config any) {
	if err := defaults.Set(config); err != nil {
		slog.Error(fmt.Sprintf("[cfgloader]: failed to set default values for config: %s", err))
		os.Exit(1)
	}
}

func validateConfig(config any, env string) {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.Struct(config)

	failedFields := make([]string, 0)
	if errs, ok := err.(validator.ValidationErrors); ok { //nolint:errorlint // validator returns this concrete type
		for _, fieldErr := range errs {
			tagErr := fieldErr.Tag()
			if fieldErr.Param() != "" {
				tagErr += fmt.Sprintf("=%s", fieldErr.Param())
			}
			failedFields = append(failedFields, fmt.Sprintf("%s: %s", fieldErr.Namespace(), tagErr))
		}
	}

	if len(failedFields) > 0 {
		slog.Error(fmt.Sprintf("[cfgloader]: invalid fields in %s config -> %s", env, strings.Join(failedFields, ",  ")))
		os.Exit(1)
	}
}
