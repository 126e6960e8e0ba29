package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/LouisPinsard/lift/lib/cdklogger"
	"github.com/LouisPinsard/lift/lib/overrides"
	"github.com/LouisPinsard/lift/lib/policy"
	"github.com/LouisPinsard/lift/lib/provider"
)

const (
	bucketExtensionKey = "bucket"

	noncurrentVersionExpirationDays = 30
)

var runtimeActions = []string{"s3:PutObject", "s3:GetObject", "s3:DeleteObject", "s3:ListBucket"}

var encryptionOptions = map[string]awss3.BucketEncryption{
	EncryptionS3:  awss3.BucketEncryption_S3_MANAGED,
	EncryptionKMS: awss3.BucketEncryption_KMS_MANAGED,
}

// Definition registers the storage construct type with a provider.
var Definition = provider.ConstructDefinition{
	Type: Type,
	Create: func(scope constructs.Construct, id string, raw map[string]interface{}, p *provider.AwsProvider) (provider.Construct, error) {
		cfg, err := DecodeConfiguration(raw)
		if err != nil {
			return nil, fmt.Errorf("construct %q: %w", id, err)
		}
		s, err := NewStorage(scope, id, cfg, p)
		if err != nil {
			return nil, err
		}
		return s, nil
	},
}

// Storage is a private, versioned, encrypted S3 bucket whose objects move to intelligent
// tiering immediately and whose noncurrent versions expire after 30 days.
type Storage struct {
	constructs.Construct

	Bucket awss3.Bucket

	provider         *provider.AwsProvider
	logger           *zap.Logger
	config           Configuration
	bucketNameOutput awscdk.CfnOutput
}

// NewStorage provisions the bucket and its name output, then applies extensions if any.
func NewStorage(scope constructs.Construct, id string, cfg Configuration, p *provider.AwsProvider) (*Storage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("construct %q: %w", id, err)
	}

	storageConstruct := constructs.NewConstruct(scope, jsii.String(id))
	s := &Storage{
		Construct: storageConstruct,
		provider:  p,
		logger:    p.Logger().Named(Type).With(zap.String("construct", id)),
		config:    cfg,
	}

	s.Bucket = awss3.NewBucket(storageConstruct, jsii.String("Bucket"), &awss3.BucketProps{
		Encryption:        encryptionOptions[cfg.Encryption],
		Versioned:         jsii.Bool(true),
		BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
		EnforceSSL:        jsii.Bool(true),
		LifecycleRules: &[]*awss3.LifecycleRule{
			{
				Transitions: &[]*awss3.Transition{
					{
						StorageClass:    awss3.StorageClass_INTELLIGENT_TIERING(),
						TransitionAfter: awscdk.Duration_Days(jsii.Number(0)),
					},
				},
			},
			{
				NoncurrentVersionExpiration: awscdk.Duration_Days(jsii.Number(noncurrentVersionExpirationDays)),
			},
		},
	})

	s.bucketNameOutput = awscdk.NewCfnOutput(storageConstruct, jsii.String("BucketName"), &awscdk.CfnOutputProps{
		Value: s.Bucket.BucketName(),
	})

	cdklogger.LogInfo(storageConstruct, id, "Bucket provisioned with %s encryption, archive threshold %d days", cfg.Encryption, cfg.Archive)

	if len(cfg.Extensions) > 0 {
		if _, err := s.Extend(); err != nil {
			return nil, fmt.Errorf("construct %q: %w", id, err)
		}
	}

	return s, nil
}

// Extend applies extensions.bucket onto the underlying CfnBucket and returns the number of
// overrides applied.
func (s *Storage) Extend() (int, error) {
	s.logger.Debug("Applying extensions", zap.Strings("extensions", lo.Keys(s.config.Extensions)))

	unknown := lo.Without(lo.Keys(s.config.Extensions), bucketExtensionKey)
	sort.Strings(unknown)
	for _, key := range unknown {
		cdklogger.LogWarning(s.Construct, "", "Ignoring unknown extension %q, supported extensions: [%s]", key, bucketExtensionKey)
	}

	raw, ok := s.config.Extensions[bucketExtensionKey]
	if !ok {
		return 0, nil
	}
	wrapped, err := overrides.FromMap(map[string]interface{}{bucketExtensionKey: raw})
	if err != nil {
		return 0, fmt.Errorf("reading %s extension: %w", bucketExtensionKey, err)
	}
	tree, ok := wrapped[bucketExtensionKey].(overrides.Node)
	if !ok {
		cdklogger.LogWarning(s.Construct, "", "Ignoring %s extension: expected an object, got %T", bucketExtensionKey, raw)
		return 0, nil
	}

	cfnBucket := s.Bucket.Node().DefaultChild().(awss3.CfnBucket)
	applied := overrides.Apply(tree, cfnBucket)
	s.logger.Debug("Applied bucket overrides", zap.Int("count", applied))
	return applied, nil
}

// Archive is the configured archive threshold, in days.
func (s *Storage) Archive() int {
	return s.config.Archive
}

func (s *Storage) Encryption() string {
	return s.config.Encryption
}

func (s *Storage) Variables() map[string]interface{} {
	return map[string]interface{}{
		"bucketArn":  s.Bucket.BucketArn(),
		"bucketName": s.Bucket.BucketName(),
	}
}

func (s *Storage) objectsArn() *string {
	return awscdk.Fn_Join(jsii.String("/"), &[]*string{s.Bucket.BucketArn(), jsii.String("*")})
}

// Permissions grants object read/write/delete and bucket listing.
func (s *Storage) Permissions() []policy.Statement {
	return []policy.Statement{
		policy.Allow(
			append([]string(nil), runtimeActions...),
			s.provider.Resolve(s.Bucket.BucketArn()),
			s.provider.Resolve(s.objectsArn()),
		),
	}
}

// Grant gives grantee the same access as Permissions, for principals defined in the CDK app.
func (s *Storage) Grant(grantee awsiam.IGrantable) awsiam.Grant {
	return awsiam.Grant_AddToPrincipal(&awsiam.GrantOnPrincipalOptions{
		Grantee:      grantee,
		Actions:      jsii.Strings(runtimeActions...),
		ResourceArns: &[]*string{s.Bucket.BucketArn(), s.objectsArn()},
	})
}

func (s *Storage) Outputs() map[string]provider.OutputResolver {
	return map[string]provider.OutputResolver{
		"bucketName": s.BucketName,
	}
}

// BucketName returns the deployed bucket name, or nil until the stack publishes it.
func (s *Storage) BucketName(ctx context.Context) (*string, error) {
	return s.provider.GetStackOutput(ctx, s.bucketNameOutput)
}
