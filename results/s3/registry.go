package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// ErrConcurrentRegistration is returned when another writer claimed the same
// run number first.
var ErrConcurrentRegistration = errors.New("s3: concurrent run registration")

// RunRegistry tracks the run archives of an experiment in DynamoDB.
//
// DynamoDB supplies the compare-and-swap semantics S3 lacks: registering a
// run writes the next run number with a conditional put, so two concurrent
// runs can never claim the same number, and the latest-run lookup is always
// consistent.
//
// Table schema:
//   - Partition key: experiment (string)
//   - Sort key: run (number) - monotonically increasing
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name icgauge-runs \
//	  --attribute-definitions AttributeName=experiment,AttributeType=S AttributeName=run,AttributeType=N \
//	  --key-schema AttributeName=experiment,KeyType=HASH AttributeName=run,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type RunRegistry struct {
	client     DDBClient
	tableName  string
	experiment string
}

// NewRunRegistry creates a registry scoped to one experiment name.
func NewRunRegistry(client DDBClient, tableName, experiment string) *RunRegistry {
	return &RunRegistry{
		client:     client,
		tableName:  tableName,
		experiment: experiment,
	}
}

// Latest returns the highest registered run number and its archive name.
// A zero run number means no run is registered yet.
func (r *RunRegistry) Latest(ctx context.Context) (uint64, string, error) {
	resp, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		KeyConditionExpression:   aws.String("#e = :exp"),
		ExpressionAttributeNames: map[string]string{"#e": "experiment"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":exp": &types.AttributeValueMemberS{Value: r.experiment},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, "", fmt.Errorf("s3: query run registry: %w", err)
	}
	if len(resp.Items) == 0 {
		return 0, "", nil
	}

	item := resp.Items[0]
	runAttr, ok := item["run"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("s3: invalid run attribute in registry")
	}
	archiveAttr, ok := item["archive"].(*types.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("s3: invalid archive attribute in registry")
	}

	var run uint64
	if _, err := fmt.Sscanf(runAttr.Value, "%d", &run); err != nil {
		return 0, "", fmt.Errorf("s3: parse run number: %w", err)
	}
	return run, archiveAttr.Value, nil
}

// Register records the archive as the experiment's next run and returns the
// run number it claimed. Losing a race with another writer surfaces as
// ErrConcurrentRegistration; the caller may retry.
func (r *RunRegistry) Register(ctx context.Context, archive string) (uint64, error) {
	latest, _, err := r.Latest(ctx)
	if err != nil {
		return 0, err
	}
	next := latest + 1

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item: map[string]types.AttributeValue{
			"experiment": &types.AttributeValueMemberS{Value: r.experiment},
			"run":        &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", next)},
			"archive":    &types.AttributeValueMemberS{Value: archive},
		},
		ConditionExpression:      aws.String("attribute_not_exists(#r)"),
		ExpressionAttributeNames: map[string]string{"#r": "run"},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return 0, ErrConcurrentRegistration
		}
		return 0, fmt.Errorf("s3: register run: %w", err)
	}
	return next, nil
}
