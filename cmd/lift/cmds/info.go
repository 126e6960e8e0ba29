package cmds

import (
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LouisPinsard/lift/config/liftfile"
	"github.com/LouisPinsard/lift/lib/provider"
	"github.com/LouisPinsard/lift/scripts/renderer"
)

func newInfoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the deployed outputs of every construct",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := session.NewSessionWithOptions(session.Options{
				SharedConfigState: session.SharedConfigEnable,
			})
			if err != nil {
				return fmt.Errorf("creating AWS session: %w", err)
			}

			lift, file, err := synth(opts,
				provider.WithClient(cloudformation.New(sess)),
				provider.WithLogger(zap.L()),
			)
			if err != nil {
				return err
			}

			outputs, err := lift.Outputs(cmd.Context())
			if err != nil {
				return err
			}

			out, err := renderer.Render(renderer.TplInfo, buildInfoData(file, lift.Provider.StackName(), outputs))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func buildInfoData(file *liftfile.File, stackName string, outputs map[string]map[string]*string) renderer.InfoData {
	data := renderer.InfoData{
		Service: file.Service,
		Stack:   stackName,
	}
	for _, id := range file.ConstructIDs() {
		names := lo.Keys(outputs[id])
		sort.Strings(names)
		data.Constructs = append(data.Constructs, renderer.ConstructInfo{
			ID:   id,
			Type: liftfile.Type(file.Constructs[id]),
			Outputs: lo.Map(names, func(name string, _ int) renderer.OutputValue {
				value := outputs[id][name]
				return renderer.OutputValue{
					Name:      name,
					Value:     aws.StringValue(value),
					Published: value != nil,
				}
			}),
		})
	}
	return data
}
