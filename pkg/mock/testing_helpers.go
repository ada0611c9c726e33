package mock

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	gomock "go.uber.org/mock/gomock"
)

// setupLogger sets up a logger that only outputs if the test fails
func SetupLogger(t *testing.T) *slog.Logger {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	t.Cleanup(func() {
		if t.Failed() {
			os.Stdout.Write(buf.Bytes()) //nolint:errcheck
		}
	})

	return logger
}

// Custom matcher to check an UpdateItem targets the given table and id
type updateKeyMatcher struct {
	table string
	id    string
}

func (m updateKeyMatcher) Matches(x interface{}) bool {
	in, ok := x.(*dynamodb.UpdateItemInput)
	if !ok {
		return false
	}
	if aws.StringValue(in.TableName) != m.table {
		return false
	}
	key, ok := in.Key["id"]
	return ok && aws.StringValue(key.S) == m.id
}

func (m updateKeyMatcher) String() string {
	return "updates item " + m.id + " in " + m.table
}

// NewUpdateKeyMatcher returns a matcher for UpdateItem inputs keyed by id
func NewUpdateKeyMatcher(table, id string) gomock.Matcher {
	return updateKeyMatcher{table: table, id: id}
}
