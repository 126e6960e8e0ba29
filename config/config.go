package config

import (
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

const (
	defaultStackName = "lift"
	defaultStage     = "dev"
)

// StackName reads 'cdk.json/context/stackName', defaulting to "lift".
func StackName(scope constructs.Construct) string {
	return contextString(scope, "stackName", defaultStackName)
}

// Stage reads the deployment stage from '--context stage=', defaulting to "dev".
func Stage(scope constructs.Construct) string {
	return contextString(scope, "stage", defaultStage)
}

// WithStageSuffix appends the deployment stage to name, e.g. "lift-dev".
func WithStageSuffix(scope constructs.Construct, name string) string {
	return name + "-" + Stage(scope)
}

// ConfigPath reads '--context liftConfig=' and falls back to the given path.
func ConfigPath(scope constructs.Construct, fallback string) string {
	return contextString(scope, "liftConfig", fallback)
}

func contextString(scope constructs.Construct, key string, fallback string) string {
	ctxValue := scope.Node().TryGetContext(jsii.String(key))
	if v, ok := ctxValue.(string); ok && v != "" {
		return v
	}
	return fallback
}
