package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	cfg "github.com/templui/filedrop/internal/config"
)

// DynamoConfig holds connection settings for DynamoDB
type DynamoConfig struct {
	Region    string
	Endpoint  string // Optional: DynamoDB Local, localstack
	AccessKey string
	SecretKey string
}

// DynamoConfigFrom picks the DynamoDB settings out of the app config
func DynamoConfigFrom(c *cfg.Config) DynamoConfig {
	return DynamoConfig{
		Region:    c.AWSRegion,
		Endpoint:  c.DynamoDBEndpoint,
		AccessKey: c.DynamoAccessKey,
		SecretKey: c.DynamoSecretKey,
	}
}

// NewDynamoClient creates a DynamoDB client. Static credentials are used only when both keys are set.
func NewDynamoClient(ctx context.Context, cfg DynamoConfig) (*dynamodb.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	slog.Info("dynamodb client ready", "region", cfg.Region, "endpoint", cfg.Endpoint)
	return client, nil
}

// TableAPI is the subset of the DynamoDB client needed to provision the files table
type TableAPI interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// CreateFileTable creates the files table keyed by fileId with on-demand billing
// and waits until it is active. An existing table is left untouched.
func CreateFileTable(ctx context.Context, client TableAPI, table string, wait time.Duration) error {
	_, err := client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("fileId"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("fileId"), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	var inUse *types.ResourceInUseException
	if errors.As(err, &inUse) {
		slog.Info("dynamodb table already exists", "table", table)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create table %q: %w", table, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	err = waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)}, wait)
	if err != nil {
		return fmt.Errorf("table %q did not become active: %w", table, err)
	}

	slog.Info("created dynamodb table", "table", table)
	return nil
}
