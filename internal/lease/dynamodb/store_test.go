package dynamodb

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
)

func TestClassifyNil(t *testing.T) {
	assert.NoError(t, classify(nil))
}

func TestClassifyConditionFailed(t *testing.T) {
	err := classify(&types.ConditionalCheckFailedException{Message: awsString("nope")})
	assert.ErrorIs(t, err, ErrConditionFailed)
}

func TestClassifyTransientTypes(t *testing.T) {
	tests := []error{
		&types.ProvisionedThroughputExceededException{Message: awsString("throughput")},
		&types.RequestLimitExceeded{Message: awsString("limit")},
		&types.InternalServerError{Message: awsString("internal")},
	}
	for _, in := range tests {
		assert.ErrorIs(t, classify(in), ErrTransient)
	}
}

func TestClassifyResourceNotFoundIsFatal(t *testing.T) {
	err := classify(&types.ResourceNotFoundException{Message: awsString("no table")})
	assert.ErrorIs(t, err, ErrFatal)
}

type fakeAPIError struct {
	code string
}

func (e *fakeAPIError) Error() string                 { return "fake: " + e.code }
func (e *fakeAPIError) ErrorCode() string             { return e.code }
func (e *fakeAPIError) ErrorMessage() string          { return e.code }
func (e *fakeAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultUnknown }

func TestClassifySmithyAPIErrorCodes(t *testing.T) {
	tests := map[string]error{
		"ThrottlingException":       ErrTransient,
		"RequestLimitExceeded":      ErrTransient,
		"AccessDeniedException":     ErrFatal,
		"ResourceNotFoundException": ErrFatal,
	}
	for code, want := range tests {
		assert.ErrorIs(t, classify(&fakeAPIError{code: code}), want)
	}
}

func TestClassifyUnknownErrorDefaultsTransient(t *testing.T) {
	assert.ErrorIs(t, classify(errors.New("some network blip")), ErrTransient)
}

func awsString(s string) *string { return &s }
