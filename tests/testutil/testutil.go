package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/aws/jsii-runtime-go"
)

//---------------------------------------------------------------------
// 1. Generic helpers
//---------------------------------------------------------------------

// TmpFile writes content to a file named name inside a fresh temp dir and returns its path.
func TmpFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("tmp-file-write: %v", err)
	}
	return path
}

//---------------------------------------------------------------------
// 2. CDK fixtures
//---------------------------------------------------------------------

// NewTestStack returns a stack in a fresh app with a fixed environment.
func NewTestStack(t *testing.T) awscdk.Stack {
	t.Helper()
	app := awscdk.NewApp(nil)
	return awscdk.NewStack(app, jsii.String("TestStack"), &awscdk.StackProps{
		Env: &awscdk.Environment{
			Account: jsii.String("123456789012"),
			Region:  jsii.String("us-east-1"),
		},
	})
}

//---------------------------------------------------------------------
// 3. AWS fakes
//---------------------------------------------------------------------

// FakeCloudFormation answers DescribeStacks from a static output map.
type FakeCloudFormation struct {
	// Outputs maps OutputKey to OutputValue. A nil map means the stack has no outputs.
	Outputs map[string]string
	// Err, when set, is returned instead of a response.
	Err error
	// Calls records the stack names requested.
	Calls []string
}

func (f *FakeCloudFormation) DescribeStacksWithContext(_ aws.Context, input *cloudformation.DescribeStacksInput, _ ...request.Option) (*cloudformation.DescribeStacksOutput, error) {
	f.Calls = append(f.Calls, aws.StringValue(input.StackName))
	if f.Err != nil {
		return nil, f.Err
	}
	stack := &cloudformation.Stack{StackName: input.StackName}
	for k, v := range f.Outputs {
		stack.Outputs = append(stack.Outputs, &cloudformation.Output{
			OutputKey:   aws.String(k),
			OutputValue: aws.String(v),
		})
	}
	return &cloudformation.DescribeStacksOutput{Stacks: []*cloudformation.Stack{stack}}, nil
}
