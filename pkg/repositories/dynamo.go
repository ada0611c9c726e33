package repositories

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/pkg/errors"
)

// DynamoConfig locates the DynamoDB endpoint. Endpoint is only set for
// DynamoDB Local or other compatible stores; static keys are optional and the
// default AWS credential chain is used without them.
type DynamoConfig struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// NewDynamoClient returns a client that is safe to share across requests.
func NewDynamoClient(cfg DynamoConfig) (*dynamodb.DynamoDB, error) {
	awsCfg := aws.NewConfig().WithRegion(cfg.Region)
	if cfg.Endpoint != "" {
		awsCfg = awsCfg.WithEndpoint(cfg.Endpoint)
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg = awsCfg.WithCredentials(credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""))
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, errors.Wrap(err, "creating aws session")
	}
	return dynamodb.New(sess), nil
}
