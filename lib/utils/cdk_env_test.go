package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCdkEnv_PrefersDeployVariables(t *testing.T) {
	t.Setenv("CDK_DEPLOY_ACCOUNT", "111111111111")
	t.Setenv("CDK_DEPLOY_REGION", "eu-west-1")
	t.Setenv("CDK_DEFAULT_ACCOUNT", "222222222222")
	t.Setenv("CDK_DEFAULT_REGION", "us-east-1")

	env := CdkEnv()
	assert.Equal(t, "111111111111", *env.Account)
	assert.Equal(t, "eu-west-1", *env.Region)
}

func TestCdkEnv_FallsBackToDefaults(t *testing.T) {
	t.Setenv("CDK_DEPLOY_ACCOUNT", "111111111111")
	t.Setenv("CDK_DEPLOY_REGION", "")
	t.Setenv("CDK_DEFAULT_ACCOUNT", "222222222222")
	t.Setenv("CDK_DEFAULT_REGION", "us-east-1")

	env := CdkEnv()
	assert.Equal(t, "222222222222", *env.Account)
	assert.Equal(t, "us-east-1", *env.Region)
}

func TestCdkEnv_Unset(t *testing.T) {
	for _, k := range []string{"CDK_DEPLOY_ACCOUNT", "CDK_DEPLOY_REGION", "CDK_DEFAULT_ACCOUNT", "CDK_DEFAULT_REGION"} {
		t.Setenv(k, "")
	}

	env := CdkEnv()
	assert.Nil(t, env.Account)
	assert.Nil(t, env.Region)
}
