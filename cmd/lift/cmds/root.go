package cmds

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LouisPinsard/lift/config"
	"github.com/LouisPinsard/lift/config/liftfile"
	"github.com/LouisPinsard/lift/lib/provider"
	"github.com/LouisPinsard/lift/lib/utils"
	"github.com/LouisPinsard/lift/stacks"
)

type rootOptions struct {
	configPath string
	stackName  string
}

// NewRootCmd builds the lift command tree.
func NewRootCmd() *cobra.Command {
	envVars, err := config.ParseEnvironmentVariables[config.LiftEnvironmentVariables]()
	if err != nil {
		zap.L().Warn("Ignoring malformed environment", zap.Error(err))
	}

	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "lift",
		Short:         "Provision and inspect lift constructs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", envVars.ConfigPath, "path to the lift configuration file (.yml, .yaml, .toml)")
	cmd.PersistentFlags().StringVar(&opts.stackName, "stack", envVars.StackName, "deployed stack name (defaults to <service>-<stage>)")

	cmd.AddCommand(
		newValidateCmd(opts),
		newPermissionsCmd(opts),
		newInfoCmd(opts),
	)
	return cmd
}

// synth builds the stack in memory. Nothing is written to disk.
func synth(opts *rootOptions, providerOpts ...provider.Option) (*stacks.Lift, *liftfile.File, error) {
	file, err := liftfile.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	if file == nil {
		return nil, nil, fmt.Errorf("no configuration found at %s", opts.configPath)
	}

	app := awscdk.NewApp(nil)
	stackName := opts.stackName
	if stackName == "" {
		base := file.Service
		if base == "" {
			base = config.StackName(app)
		}
		stackName = config.WithStageSuffix(app, base)
	}

	lift, err := stacks.LiftStack(app, stackName, &stacks.LiftStackProps{
		StackProps:      awscdk.StackProps{Env: utils.CdkEnv()},
		File:            file,
		ProviderOptions: append([]provider.Option{provider.WithStackName(stackName)}, providerOpts...),
	})
	if err != nil {
		return nil, nil, err
	}
	return lift, file, nil
}
