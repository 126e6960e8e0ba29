package stacks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/samber/lo"

	"github.com/LouisPinsard/lift/config/liftfile"
	"github.com/LouisPinsard/lift/lib/cdklogger"
	"github.com/LouisPinsard/lift/lib/constructs/storage"
	"github.com/LouisPinsard/lift/lib/policy"
	"github.com/LouisPinsard/lift/lib/provider"
)

var (
	ErrUnknownConstruct = errors.New("unknown construct")
	ErrUnknownVariable  = errors.New("unknown variable")
)

type LiftStackProps struct {
	awscdk.StackProps
	File            *liftfile.File
	ProviderOptions []provider.Option
}

// Lift is a synthesized stack together with the constructs declared in the configuration file.
type Lift struct {
	Stack    awscdk.Stack
	Provider *provider.AwsProvider
	// Policy holds every construct permission; nil when no construct needs any.
	Policy awsiam.CfnManagedPolicy

	ids        []string
	constructs map[string]provider.Construct
}

// LiftStack creates one stack holding every construct of props.File, and a managed policy
// granting the runtime permissions those constructs need. Every invalid construct is reported,
// in id order.
func LiftStack(scope constructs.Construct, id string, props *LiftStackProps) (*Lift, error) {
	var sprops awscdk.StackProps
	if props != nil {
		sprops = props.StackProps
	}
	stack := awscdk.NewStack(scope, jsii.String(id), &sprops)

	var opts []provider.Option
	var file *liftfile.File
	if props != nil {
		opts = props.ProviderOptions
		file = props.File
	}

	p := provider.NewAwsProvider(stack, opts...)
	if err := p.RegisterConstructs(storage.Definition); err != nil {
		return nil, err
	}

	lift := &Lift{
		Stack:      stack,
		Provider:   p,
		ids:        file.ConstructIDs(),
		constructs: map[string]provider.Construct{},
	}
	if len(lift.ids) == 0 {
		cdklogger.LogWarning(stack, id, "No constructs declared, the stack will be empty")
	}

	var errs []error
	for _, constructID := range lift.ids {
		c, err := p.Create(constructID, file.Constructs[constructID])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		lift.constructs[constructID] = c
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	statements := lift.Permissions()
	if len(statements) > 0 {
		doc := policy.NewDocument(statements)
		lift.Policy = awsiam.NewCfnManagedPolicy(stack, jsii.String("LiftPolicy"), &awsiam.CfnManagedPolicyProps{
			Description:    jsii.String(fmt.Sprintf("Runtime permissions for constructs of %s", *stack.StackName())),
			PolicyDocument: doc.ToCfn(),
		})
		awscdk.NewCfnOutput(stack, jsii.String("LiftPolicyArn"), &awscdk.CfnOutputProps{
			Value: lift.Policy.Ref(),
		})
		cdklogger.LogInfo(stack, id, "Managed policy grants %d actions across %d constructs", len(doc.Actions()), len(lift.ids))
	}

	return lift, nil
}

// ConstructIDs lists the constructs, sorted.
func (l *Lift) ConstructIDs() []string {
	return l.ids
}

func (l *Lift) Construct(id string) (provider.Construct, bool) {
	c, ok := l.constructs[id]
	return c, ok
}

// Permissions gathers every construct statement, in construct id order.
func (l *Lift) Permissions() []policy.Statement {
	return lo.FlatMap(l.ids, func(id string, _ int) []policy.Statement {
		return l.constructs[id].Permissions()
	})
}

// Variable resolves a "<construct>.<variable>" reference, e.g. "avatars.bucketName".
func (l *Lift) Variable(ref string) (interface{}, error) {
	constructID, name, ok := strings.Cut(ref, ".")
	if !ok {
		return nil, fmt.Errorf("%w: %q is not of the form <construct>.<variable>", ErrUnknownVariable, ref)
	}
	c, ok := l.constructs[constructID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConstruct, constructID)
	}
	value, ok := c.Variables()[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q has no variable %q", ErrUnknownVariable, constructID, name)
	}
	return value, nil
}

// Outputs resolves every construct output against the deployed stack. Unpublished values are
// nil.
func (l *Lift) Outputs(ctx context.Context) (map[string]map[string]*string, error) {
	result := make(map[string]map[string]*string, len(l.ids))
	for _, id := range l.ids {
		resolvers := l.constructs[id].Outputs()
		values := make(map[string]*string, len(resolvers))
		for name, resolve := range resolvers {
			v, err := resolve(ctx)
			if err != nil {
				return nil, fmt.Errorf("resolving output %s.%s: %w", id, name, err)
			}
			values[name] = v
		}
		result[id] = values
	}
	return result, nil
}
