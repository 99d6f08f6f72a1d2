package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestIsTransientGenerateError(t *testing.T) {
	assert.True(t, isTransientGenerateError(&googleapi.Error{Code: 429}))
	assert.True(t, isTransientGenerateError(&googleapi.Error{Code: 500}))
	assert.True(t, isTransientGenerateError(&googleapi.Error{Code: 503}))
	assert.True(t, isTransientGenerateError(fmt.Errorf("call failed: %w", &googleapi.Error{Code: 429})))

	assert.False(t, isTransientGenerateError(&googleapi.Error{Code: 400}))
	assert.False(t, isTransientGenerateError(&googleapi.Error{Code: 403}))
	assert.False(t, isTransientGenerateError(errors.New("context canceled")))
	assert.False(t, isTransientGenerateError(nil))
}
