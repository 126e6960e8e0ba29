package config

import (
	"github.com/caarlos0/env/v11"
)

type LiftEnvironmentVariables struct {
	// ConfigPath points at the construct configuration file (.yml, .yaml or .toml).
	ConfigPath string `env:"LIFT_CONFIG" envDefault:"lift.yml"`
	// StackName is the deployed CloudFormation stack name, when it differs from the CDK one.
	StackName string `env:"LIFT_STACK_NAME"`
}

// ParseEnvironmentVariables parses T from the environment.
func ParseEnvironmentVariables[T any]() (T, error) {
	var envObj T
	err := env.Parse(&envObj)
	return envObj, err
}
