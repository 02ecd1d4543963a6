package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/templui/filedrop/internal/model"
)

// DynamoAPI is the subset of the DynamoDB client the file repository uses
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

type dynamoFileRepository struct {
	client DynamoAPI
	table  string
}

func NewDynamoFileRepository(client DynamoAPI, table string) *dynamoFileRepository {
	return &dynamoFileRepository{client: client, table: table}
}

func fileKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"fileId": &types.AttributeValueMemberS{Value: id},
	}
}

func (r *dynamoFileRepository) Create(ctx context.Context, file *model.File) error {
	item, err := attributevalue.MarshalMap(file)
	if err != nil {
		return fmt.Errorf("failed to marshal file: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(fileId)"),
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return ErrFileExists
	}

	return err
}

func (r *dynamoFileRepository) ByID(ctx context.Context, id string) (*model.File, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            fileKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, ErrFileNotFound
	}

	file := &model.File{}
	err = attributevalue.UnmarshalMap(out.Item, file)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal file: %w", err)
	}

	return file, nil
}

func (r *dynamoFileRepository) MarkReady(ctx context.Context, id string, sizeBytes *int64, contentType string) error {
	var size types.AttributeValue = &types.AttributeValueMemberNULL{Value: true}
	if sizeBytes != nil {
		size = &types.AttributeValueMemberN{Value: strconv.FormatInt(*sizeBytes, 10)}
	}

	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.table),
		Key:                 fileKey(id),
		UpdateExpression:    aws.String("SET #status = :ready, sizeBytes = :size, contentType = :contentType"),
		ConditionExpression: aws.String("attribute_exists(fileId) AND #status = :uploading"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ready":       &types.AttributeValueMemberS{Value: string(model.StatusReady)},
			":uploading":   &types.AttributeValueMemberS{Value: string(model.StatusUploading)},
			":size":        size,
			":contentType": &types.AttributeValueMemberS{Value: contentType},
		},
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})

	return conditionError(err)
}

func (r *dynamoFileRepository) IncrementDownloads(ctx context.Context, id string) (int64, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.table),
		Key:                 fileKey(id),
		UpdateExpression:    aws.String("SET downloadCount = if_not_exists(downloadCount, :zero) + :one"),
		ConditionExpression: aws.String("attribute_exists(fileId) AND #status = :ready"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero":  &types.AttributeValueMemberN{Value: "0"},
			":one":   &types.AttributeValueMemberN{Value: "1"},
			":ready": &types.AttributeValueMemberS{Value: string(model.StatusReady)},
		},
		ReturnValues:                        types.ReturnValueUpdatedNew,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		return 0, conditionError(err)
	}

	var updated struct {
		DownloadCount int64 `dynamodbav:"downloadCount"`
	}
	err = attributevalue.UnmarshalMap(out.Attributes, &updated)
	if err != nil {
		return 0, fmt.Errorf("failed to unmarshal download count: %w", err)
	}

	return updated.DownloadCount, nil
}

// conditionError translates a failed condition into ErrFileNotFound (no old item)
// or ErrConditionFailed (item exists in another state).
func conditionError(err error) error {
	var ccf *types.ConditionalCheckFailedException
	if !errors.As(err, &ccf) {
		return err
	}
	if len(ccf.Item) == 0 {
		return ErrFileNotFound
	}
	return ErrConditionFailed
}
