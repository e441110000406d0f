// Package dynamodb implements the lease record's four conditional
// operations against Amazon DynamoDB using conditional
// PutItem/UpdateItem/DeleteItem expressions and the table's native TTL
// feature.
//
// This package is deliberately independent of the lease package's
// exported types so it can be imported by lease/client.go without
// forming an import cycle; lease adapts Store's local error values and
// TableDescription to its own Store interface (see
// lease/dynamodb_adapter.go).
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/ceyewan/genesis/connector"
)

var (
	// ErrConditionFailed mirrors lease.ErrConditionFailed.
	ErrConditionFailed = errors.New("dynamodb: condition failed")
	// ErrTransient mirrors lease.ErrTransient.
	ErrTransient = errors.New("dynamodb: transient error")
	// ErrFatal mirrors lease.ErrFatal.
	ErrFatal = errors.New("dynamodb: fatal error")
)

// AttributeNames configures the table attribute names the Store reads
// and writes.
type AttributeNames struct {
	Key     string
	Expiry  string
	Version string
}

// TableDescription is the subset of DescribeTable/DescribeTimeToLive
// output the lease package needs to validate its configuration.
type TableDescription struct {
	HashKeyName      string
	HashKeyIsString  bool
	TTLAttributeName string
	TTLEnabled       bool
}

// Store adapts a connector.DynamoDBConnector to the four conditional
// lease operations.
type Store struct {
	conn      connector.DynamoDBConnector
	attrs     AttributeNames
	tableName string
}

// New returns a Store that issues requests through conn's client
// against table.
func New(conn connector.DynamoDBConnector, table string, attrs AttributeNames) *Store {
	return &Store{conn: conn, tableName: table, attrs: attrs}
}

func (s *Store) client() *dynamodb.Client {
	return s.conn.GetClient()
}

// PutIfAbsent writes a new record, failing with ErrConditionFailed if
// key already exists.
func (s *Store) PutIfAbsent(ctx context.Context, key, version string, expiry int64) error {
	_, err := s.client().PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			s.attrs.Key:     &types.AttributeValueMemberS{Value: key},
			s.attrs.Version: &types.AttributeValueMemberS{Value: version},
			s.attrs.Expiry:  &types.AttributeValueMemberN{Value: strconv.FormatInt(expiry, 10)},
		},
		ConditionExpression: aws.String("attribute_not_exists(#k)"),
		ExpressionAttributeNames: map[string]string{
			"#k": s.attrs.Key,
		},
	})
	return classify(err)
}

// UpdateIfVersion overwrites version and expiry, failing with
// ErrConditionFailed if the stored version doesn't match oldVersion.
func (s *Store) UpdateIfVersion(ctx context.Context, key, oldVersion, newVersion string, newExpiry int64) error {
	_, err := s.client().UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			s.attrs.Key: &types.AttributeValueMemberS{Value: key},
		},
		UpdateExpression:    aws.String("SET #v = :new_v, #e = :new_e"),
		ConditionExpression: aws.String("#v = :old_v"),
		ExpressionAttributeNames: map[string]string{
			"#v": s.attrs.Version,
			"#e": s.attrs.Expiry,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":old_v": &types.AttributeValueMemberS{Value: oldVersion},
			":new_v": &types.AttributeValueMemberS{Value: newVersion},
			":new_e": &types.AttributeValueMemberN{Value: strconv.FormatInt(newExpiry, 10)},
		},
	})
	return classify(err)
}

// DeleteIfVersion removes the record, failing with ErrConditionFailed
// if the stored version doesn't match version.
func (s *Store) DeleteIfVersion(ctx context.Context, key, version string) error {
	_, err := s.client().DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			s.attrs.Key: &types.AttributeValueMemberS{Value: key},
		},
		ConditionExpression: aws.String("#v = :v"),
		ExpressionAttributeNames: map[string]string{
			"#v": s.attrs.Version,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: version},
		},
	})
	return classify(err)
}

// DescribeTable reports the configured table's hash key and TTL setup.
func (s *Store) DescribeTable(ctx context.Context, tableName string) (TableDescription, error) {
	out, err := s.client().DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	})
	if err != nil {
		return TableDescription{}, classify(err)
	}

	desc := TableDescription{}
	attrTypes := map[string]types.ScalarAttributeType{}
	for _, def := range out.Table.AttributeDefinitions {
		attrTypes[aws.ToString(def.AttributeName)] = def.AttributeType
	}
	for _, ks := range out.Table.KeySchema {
		if ks.KeyType == types.KeyTypeHash {
			name := aws.ToString(ks.AttributeName)
			desc.HashKeyName = name
			desc.HashKeyIsString = attrTypes[name] == types.ScalarAttributeTypeS
		}
	}

	ttlOut, err := s.client().DescribeTimeToLive(ctx, &dynamodb.DescribeTimeToLiveInput{
		TableName: aws.String(tableName),
	})
	if err != nil {
		return TableDescription{}, classify(err)
	}
	if ttlOut.TimeToLiveDescription != nil {
		desc.TTLAttributeName = aws.ToString(ttlOut.TimeToLiveDescription.AttributeName)
		desc.TTLEnabled = ttlOut.TimeToLiveDescription.TimeToLiveStatus == types.TimeToLiveStatusEnabled
	}

	return desc, nil
}

// classify maps AWS SDK errors onto the package's three broad
// categories: condition failures, transient (retryable) errors, and
// fatal (reconfigure-required) errors.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var condFailed *types.ConditionalCheckFailedException
	if errors.As(err, &condFailed) {
		return ErrConditionFailed
	}

	var throughput *types.ProvisionedThroughputExceededException
	if errors.As(err, &throughput) {
		return ErrTransient
	}
	var throttling *types.RequestLimitExceeded
	if errors.As(err, &throttling) {
		return ErrTransient
	}
	var internal *types.InternalServerError
	if errors.As(err, &internal) {
		return ErrTransient
	}

	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", ErrFatal, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ProvisionedThroughputExceededException", "ThrottlingException", "RequestLimitExceeded":
			return ErrTransient
		case "AccessDeniedException", "UnrecognizedClientException", "ResourceNotFoundException":
			return fmt.Errorf("%w: %v", ErrFatal, err)
		}
	}

	return fmt.Errorf("%w: %v", ErrTransient, err)
}
