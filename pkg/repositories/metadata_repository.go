// Package repositories provides data access layer for inboxpilot.
// The metadata mirror is a write-mostly cache of per-message flags; reads in
// the request path always go to the mail provider.
package repositories

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/expression"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"aaronromeo.com/inboxpilot/pkg/base"
	"aaronromeo.com/inboxpilot/pkg/models/message"
)

const (
	DefaultTable = "emails"

	attrID      = "id"
	attrSender  = "sender"
	attrStarred = "starred"
	attrSpam    = "spam"
)

// MetadataRepository defines the interface for mirror operations.
type MetadataRepository interface {
	Upsert(ctx context.Context, id message.ID, fields message.MetadataFields) error
	Get(ctx context.Context, id message.ID) (message.MetadataRecord, bool, error)
	EnsureTable(ctx context.Context) error
}

// DynamoAPI is the subset of the DynamoDB client the repository uses.
type DynamoAPI interface {
	UpdateItemWithContext(ctx aws.Context, input *dynamodb.UpdateItemInput, opts ...request.Option) (*dynamodb.UpdateItemOutput, error)
	GetItemWithContext(ctx aws.Context, input *dynamodb.GetItemInput, opts ...request.Option) (*dynamodb.GetItemOutput, error)
	DescribeTableWithContext(ctx aws.Context, input *dynamodb.DescribeTableInput, opts ...request.Option) (*dynamodb.DescribeTableOutput, error)
	CreateTableWithContext(ctx aws.Context, input *dynamodb.CreateTableInput, opts ...request.Option) (*dynamodb.CreateTableOutput, error)
	WaitUntilTableExistsWithContext(ctx aws.Context, input *dynamodb.DescribeTableInput, opts ...request.WaiterOption) error
}

// DynamoMetadataRepository implements MetadataRepository on a single DynamoDB
// table keyed by message id.
type DynamoMetadataRepository struct {
	db      DynamoAPI
	table   string
	logger  *slog.Logger
	upserts metric.Int64Counter
}

type Option func(*DynamoMetadataRepository) error

func NewDynamoMetadataRepository(opts ...Option) (*DynamoMetadataRepository, error) {
	repo := DynamoMetadataRepository{table: DefaultTable}
	for _, opt := range opts {
		if err := opt(&repo); err != nil {
			return nil, err
		}
	}

	if repo.db == nil {
		return nil, errors.New("requires dynamodb client")
	}

	if repo.logger == nil {
		return nil, errors.New("requires slogger")
	}

	counter, err := otel.Meter(base.ServiceName).Int64Counter(
		"inboxpilot.mirror.upserts",
		metric.WithDescription("Metadata mirror upserts by outcome"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "creating upsert counter")
	}
	repo.upserts = counter

	return &repo, nil
}

func WithDynamo(db DynamoAPI) Option {
	return func(r *DynamoMetadataRepository) error {
		r.db = db
		return nil
	}
}

func WithTable(name string) Option {
	return func(r *DynamoMetadataRepository) error {
		if name == "" {
			return errors.New("table name must not be empty")
		}
		r.table = name
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *DynamoMetadataRepository) error {
		r.logger = logger
		return nil
	}
}

// Upsert sets exactly the non-nil fields on the record for id, creating the
// record if it does not exist. There is no merge beyond field overwrite, so
// repeating a call leaves the same state.
func (r *DynamoMetadataRepository) Upsert(ctx context.Context, id message.ID, fields message.MetadataFields) error {
	if id == "" {
		return errors.New("upsert requires a message id")
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key:       recordKey(id),
	}

	if !fields.IsEmpty() {
		expr, err := expression.NewBuilder().WithUpdate(updateFor(fields)).Build()
		if err != nil {
			return errors.Wrap(err, "building update expression")
		}
		input.UpdateExpression = expr.Update()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	if _, err := r.db.UpdateItemWithContext(ctx, input); err != nil {
		r.upserts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "error")))
		r.logger.ErrorContext(ctx, "Failed to upsert message metadata",
			slog.String("id", string(id)),
			slog.String("error", err.Error()))
		return errors.Wrapf(err, "upserting metadata for %s", id)
	}

	r.upserts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "ok")))
	r.logger.DebugContext(ctx, "Upserted message metadata", slog.String("id", string(id)))
	return nil
}

// Get is an exact id lookup. The bool is false when no record exists.
func (r *DynamoMetadataRepository) Get(ctx context.Context, id message.ID) (message.MetadataRecord, bool, error) {
	out, err := r.db.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            recordKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return message.MetadataRecord{}, false, errors.Wrapf(err, "reading metadata for %s", id)
	}
	if len(out.Item) == 0 {
		return message.MetadataRecord{}, false, nil
	}

	var rec message.MetadataRecord
	if err := dynamodbattribute.UnmarshalMap(out.Item, &rec); err != nil {
		return message.MetadataRecord{}, false, errors.Wrapf(err, "decoding metadata for %s", id)
	}
	return rec, true, nil
}

// EnsureTable creates the mirror table with on-demand billing if it is missing.
func (r *DynamoMetadataRepository) EnsureTable(ctx context.Context) error {
	describe := &dynamodb.DescribeTableInput{TableName: aws.String(r.table)}

	_, err := r.db.DescribeTableWithContext(ctx, describe)
	if err == nil {
		return nil
	}
	var aerr awserr.Error
	if !errors.As(err, &aerr) || aerr.Code() != dynamodb.ErrCodeResourceNotFoundException {
		return errors.Wrapf(err, "describing table %s", r.table)
	}

	r.logger.InfoContext(ctx, "Creating metadata table", slog.String("table", r.table))
	_, err = r.db.CreateTableWithContext(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(r.table),
		AttributeDefinitions: []*dynamodb.AttributeDefinition{{
			AttributeName: aws.String(attrID),
			AttributeType: aws.String(dynamodb.ScalarAttributeTypeS),
		}},
		KeySchema: []*dynamodb.KeySchemaElement{{
			AttributeName: aws.String(attrID),
			KeyType:       aws.String(dynamodb.KeyTypeHash),
		}},
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
	})
	if err != nil {
		return errors.Wrapf(err, "creating table %s", r.table)
	}

	if err := r.db.WaitUntilTableExistsWithContext(ctx, describe); err != nil {
		return errors.Wrapf(err, "waiting for table %s", r.table)
	}
	return nil
}

func recordKey(id message.ID) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		attrID: {S: aws.String(string(id))},
	}
}

func updateFor(fields message.MetadataFields) expression.UpdateBuilder {
	var update expression.UpdateBuilder
	if fields.Sender != nil {
		update = update.Set(expression.Name(attrSender), expression.Value(*fields.Sender))
	}
	if fields.Starred != nil {
		update = update.Set(expression.Name(attrStarred), expression.Value(*fields.Starred))
	}
	if fields.Spam != nil {
		update = update.Set(expression.Name(attrSpam), expression.Value(*fields.Spam))
	}
	return update
}

var _ MetadataRepository = (*DynamoMetadataRepository)(nil)
