package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/fxcore/blobstore"
)

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// ErrConcurrentModification is returned when another writer committed the
// same version first.
var ErrConcurrentModification = errors.New("concurrent modification detected")

const (
	attrKey     = "blob_key"
	attrVersion = "version"
	attrData    = "data"
)

var _ blobstore.Store = (*DDBStore)(nil)

// DDBStore implements blobstore.Store on DynamoDB. Each Put writes a new
// version with a conditional write; Get returns the newest version.
//
// Table schema:
//   - Partition key: blob_key (string) - device prefix plus blob name
//   - Sort key: version (number) - monotonically increasing version
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name fxcore-state \
//	  --attribute-definitions AttributeName=blob_key,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=blob_key,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBStore struct {
	client    DDBClient
	tableName string
	prefix    string
	keep      int
}

// NewDDBStore creates a new DynamoDB store. keep is the number of versions
// retained per blob; values below 1 keep one.
func NewDDBStore(client DDBClient, tableName, prefix string, keep int) *DDBStore {
	if keep < 1 {
		keep = 1
	}
	return &DDBStore{
		client:    client,
		tableName: tableName,
		prefix:    prefix,
		keep:      keep,
	}
}

func (s *DDBStore) key(name string) string {
	return s.prefix + name
}

// Get returns the newest version of a blob.
func (s *DDBStore) Get(ctx context.Context, name string) ([]byte, error) {
	_, data, err := s.latest(ctx, name)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, blobstore.ErrNotFound
	}
	return data, nil
}

// Put commits a new version of a blob.
func (s *DDBStore) Put(ctx context.Context, name string, data []byte) error {
	current, _, err := s.latest(ctx, name)
	if err != nil {
		return err
	}
	next := current + 1

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			attrKey:     &types.AttributeValueMemberS{Value: s.key(name)},
			attrVersion: &types.AttributeValueMemberN{Value: strconv.FormatUint(next, 10)},
			attrData:    &types.AttributeValueMemberB{Value: append([]byte{}, data...)},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrConcurrentModification
		}
		return fmt.Errorf("failed to commit version to DynamoDB: %w", err)
	}

	return s.prune(ctx, name, next)
}

// Delete removes every version of a blob.
func (s *DDBStore) Delete(ctx context.Context, name string) error {
	versions, err := s.versions(ctx, name)
	if err != nil {
		return err
	}
	for _, v := range versions {
		if err := s.deleteVersion(ctx, name, v); err != nil {
			return err
		}
	}
	return nil
}

// Versions returns the stored versions of a blob, newest first.
func (s *DDBStore) Versions(ctx context.Context, name string) ([]uint64, error) {
	return s.versions(ctx, name)
}

func (s *DDBStore) prune(ctx context.Context, name string, newest uint64) error {
	if newest <= uint64(s.keep) {
		return nil
	}
	versions, err := s.versions(ctx, name)
	if err != nil {
		return err
	}
	cutoff := newest - uint64(s.keep)
	for _, v := range versions {
		if v > cutoff {
			continue
		}
		if err := s.deleteVersion(ctx, name, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *DDBStore) deleteVersion(ctx context.Context, name string, v uint64) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			attrKey:     &types.AttributeValueMemberS{Value: s.key(name)},
			attrVersion: &types.AttributeValueMemberN{Value: strconv.FormatUint(v, 10)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete version %d: %w", v, err)
	}
	return nil
}

func (s *DDBStore) query(ctx context.Context, name string, limit int32, withData bool) (*dynamodb.QueryOutput, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("blob_key = :k"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":k": &types.AttributeValueMemberS{Value: s.key(name)},
		},
		ScanIndexForward: aws.Bool(false), // Descending order
	}
	if limit > 0 {
		in.Limit = aws.Int32(limit)
	}
	if !withData {
		in.ProjectionExpression = aws.String("blob_key, version")
	}
	resp, err := s.client.Query(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to query DynamoDB: %w", err)
	}
	return resp, nil
}

func (s *DDBStore) latest(ctx context.Context, name string) (uint64, []byte, error) {
	resp, err := s.query(ctx, name, 1, true)
	if err != nil {
		return 0, nil, err
	}
	if len(resp.Items) == 0 {
		return 0, nil, nil
	}

	item := resp.Items[0]
	version, err := parseVersion(item)
	if err != nil {
		return 0, nil, err
	}
	dataAttr, ok := item[attrData].(*types.AttributeValueMemberB)
	if !ok {
		return 0, nil, errors.New("invalid data attribute in DynamoDB")
	}
	return version, dataAttr.Value, nil
}

func (s *DDBStore) versions(ctx context.Context, name string) ([]uint64, error) {
	resp, err := s.query(ctx, name, 0, false)
	if err != nil {
		return nil, err
	}
	out := make([]uint64, 0, len(resp.Items))
	for _, item := range resp.Items {
		v, err := parseVersion(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseVersion(item map[string]types.AttributeValue) (uint64, error) {
	attr, ok := item[attrVersion].(*types.AttributeValueMemberN)
	if !ok {
		return 0, errors.New("invalid version attribute in DynamoDB")
	}
	v, err := strconv.ParseUint(attr.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse version: %w", err)
	}
	return v, nil
}
