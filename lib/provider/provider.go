package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/LouisPinsard/lift/lib/policy"
)

var (
	ErrUnknownConstructType   = errors.New("unknown construct type")
	ErrDuplicateConstructType = errors.New("construct type already registered")
	ErrNoClient               = errors.New("no CloudFormation client configured")
)

// OutputResolver fetches a deployed value. A nil result means the value has not been published
// yet (stack not deployed, or output missing).
type OutputResolver func(ctx context.Context) (*string, error)

// Construct is what every lift construct exposes to the surrounding stack.
type Construct interface {
	// Variables are the values other parts of the configuration can reference.
	Variables() map[string]interface{}
	// Permissions are the IAM statements needed to use the construct at runtime.
	Permissions() []policy.Statement
	// Outputs are the named values resolvable once the stack is deployed.
	Outputs() map[string]OutputResolver
}

// Factory builds a construct from its raw (undecoded) configuration.
type Factory func(scope constructs.Construct, id string, raw map[string]interface{}, p *AwsProvider) (Construct, error)

// ConstructDefinition registers a construct type.
type ConstructDefinition struct {
	Type   string
	Create Factory
}

// CloudFormationAPI is the subset of the CloudFormation client the provider needs.
type CloudFormationAPI interface {
	DescribeStacksWithContext(ctx aws.Context, input *cloudformation.DescribeStacksInput, opts ...request.Option) (*cloudformation.DescribeStacksOutput, error)
}

// AwsProvider ties constructs to the stack they live in and to the deployed CloudFormation stack.
type AwsProvider struct {
	stack     awscdk.Stack
	stackName string
	client    CloudFormationAPI
	logger    *zap.Logger

	definitions map[string]ConstructDefinition
}

type Option func(*AwsProvider)

// WithClient sets the CloudFormation client used to read stack outputs.
func WithClient(client CloudFormationAPI) Option {
	return func(p *AwsProvider) { p.client = client }
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *AwsProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithStackName overrides the deployed stack name. Defaults to the CDK stack name.
func WithStackName(name string) Option {
	return func(p *AwsProvider) {
		if name != "" {
			p.stackName = name
		}
	}
}

func NewAwsProvider(stack awscdk.Stack, opts ...Option) *AwsProvider {
	p := &AwsProvider{
		stack:       stack,
		stackName:   *stack.StackName(),
		logger:      zap.NewNop(),
		definitions: map[string]ConstructDefinition{},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named("provider").With(zap.String("stack", p.stackName))
	return p
}

func (p *AwsProvider) Stack() awscdk.Stack {
	return p.stack
}

func (p *AwsProvider) StackName() string {
	return p.stackName
}

func (p *AwsProvider) Logger() *zap.Logger {
	return p.logger
}

// Resolve turns tokens into their CloudFormation representation.
func (p *AwsProvider) Resolve(v interface{}) interface{} {
	return p.stack.Resolve(v)
}

// RegisterConstructs makes construct types available to Create.
func (p *AwsProvider) RegisterConstructs(defs ...ConstructDefinition) error {
	for _, def := range defs {
		if _, ok := p.definitions[def.Type]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateConstructType, def.Type)
		}
		p.definitions[def.Type] = def
	}
	return nil
}

// ConstructTypes lists registered types, sorted.
func (p *AwsProvider) ConstructTypes() []string {
	types := lo.Keys(p.definitions)
	sort.Strings(types)
	return types
}

// Create instantiates the construct whose type is named by raw["type"].
func (p *AwsProvider) Create(id string, raw map[string]interface{}) (Construct, error) {
	typeName, _ := raw["type"].(string)
	def, ok := p.definitions[typeName]
	if !ok {
		return nil, fmt.Errorf("construct %q: %w %q (known: %v)", id, ErrUnknownConstructType, typeName, p.ConstructTypes())
	}
	p.logger.Debug("Creating construct", zap.String("id", id), zap.String("type", typeName))
	return def.Create(p.stack, id, raw, p)
}

// GetStackOutput returns the deployed value of output, or nil if the stack or the output does
// not exist yet.
func (p *AwsProvider) GetStackOutput(ctx context.Context, output awscdk.CfnOutput) (*string, error) {
	if p.client == nil {
		return nil, ErrNoClient
	}
	outputID, ok := p.Resolve(output.LogicalId()).(string)
	if !ok {
		return nil, fmt.Errorf("cannot resolve logical id of output %s", *output.Node().Path())
	}

	p.logger.Debug("Fetching stack output", zap.String("output", outputID))
	resp, err := p.client.DescribeStacksWithContext(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(p.stackName),
	})
	if err != nil {
		if isStackMissing(err, p.stackName) {
			p.logger.Debug("Stack not deployed", zap.Error(err))
			return nil, nil
		}
		return nil, fmt.Errorf("describing stack %s: %w", p.stackName, err)
	}

	if len(resp.Stacks) == 0 || len(resp.Stacks[0].Outputs) == 0 {
		return nil, nil
	}
	for _, item := range resp.Stacks[0].Outputs {
		if aws.StringValue(item.OutputKey) == outputID {
			return item.OutputValue, nil
		}
	}
	return nil, nil
}

func isStackMissing(err error, stackName string) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	return aerr.Message() == fmt.Sprintf("Stack with id %s does not exist", stackName)
}
