package main

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"

	"github.com/LouisPinsard/lift/config"
	"github.com/LouisPinsard/lift/config/liftfile"
	"github.com/LouisPinsard/lift/lib/utils"
	"github.com/LouisPinsard/lift/stacks"
)

func main() {
	app := awscdk.NewApp(nil)

	envVars, err := config.ParseEnvironmentVariables[config.LiftEnvironmentVariables]()
	if err != nil {
		panic(err)
	}

	configPath := config.ConfigPath(app, envVars.ConfigPath)
	file, err := liftfile.Load(configPath)
	if err != nil {
		panic(err)
	}
	if file == nil {
		panic(fmt.Sprintf("no lift configuration found at %s", configPath))
	}

	base := file.Service
	if base == "" {
		base = config.StackName(app)
	}
	stackName := config.WithStageSuffix(app, base)

	_, err = stacks.LiftStack(app, stackName, &stacks.LiftStackProps{
		StackProps: awscdk.StackProps{
			Env:         utils.CdkEnv(),
			Description: jsii.String(fmt.Sprintf("Lift constructs of %s, declared in %s", base, configPath)),
		},
		File: file,
	})
	if err != nil {
		panic(err)
	}

	app.Synth(nil)
}
