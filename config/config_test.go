package config

import (
	"os"
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextDefaults(t *testing.T) {
	app := awscdk.NewApp(nil)

	assert.Equal(t, "lift", StackName(app))
	assert.Equal(t, "dev", Stage(app))
	assert.Equal(t, "lift-dev", WithStageSuffix(app, StackName(app)))
	assert.Equal(t, "lift.yml", ConfigPath(app, "lift.yml"))
}

func TestContextValues(t *testing.T) {
	app := awscdk.NewApp(&awscdk.AppProps{
		Context: &map[string]interface{}{
			"stackName":  "photos",
			"stage":      "prod",
			"liftConfig": "infra/lift.toml",
		},
	})

	assert.Equal(t, "photos", StackName(app))
	assert.Equal(t, "photos-prod", WithStageSuffix(app, StackName(app)))
	assert.Equal(t, "infra/lift.toml", ConfigPath(app, "lift.yml"))
}

func TestParseEnvironmentVariables(t *testing.T) {
	t.Setenv("LIFT_CONFIG", "custom.yml")
	t.Setenv("LIFT_STACK_NAME", "photos-prod")

	vars, err := ParseEnvironmentVariables[LiftEnvironmentVariables]()
	require.NoError(t, err)
	assert.Equal(t, "custom.yml", vars.ConfigPath)
	assert.Equal(t, "photos-prod", vars.StackName)
}

func TestParseEnvironmentVariables_Defaults(t *testing.T) {
	// register cleanup, then drop the variable for the duration of the test
	t.Setenv("LIFT_CONFIG", "")
	require.NoError(t, os.Unsetenv("LIFT_CONFIG"))

	vars, err := ParseEnvironmentVariables[LiftEnvironmentVariables]()
	require.NoError(t, err)
	assert.Equal(t, "lift.yml", vars.ConfigPath)
}
