package cerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSevereCodes(t *testing.T) {
	assert.False(t, InvalidArgument.Severe())
	assert.False(t, NotFound.Severe())
	assert.False(t, PermissionDenied.Severe())
	assert.False(t, FailedPrecondition.Severe())
	assert.True(t, Internal.Severe())
	assert.True(t, Unavailable.Severe())
	assert.True(t, Unknown.Severe())
}

func TestUserMessage(t *testing.T) {
	err := NewError(InvalidArgument, "please send a number", nil)
	assert.Equal(t, "please send a number", UserMessage(err))

	// Severe problems never leak internals to the user.
	severe := NewError(Internal, "storage exploded", errors.New("disk gone"))
	assert.Equal(t, "Something went wrong. Please try again later.", UserMessage(severe))

	plain := errors.New("plain")
	assert.Equal(t, "Something went wrong. Please try again later.", UserMessage(plain))
}

func TestCodeOfAndIsCode(t *testing.T) {
	err := NewError(NotFound, "missing", nil)
	assert.Equal(t, NotFound, CodeOf(err))
	assert.True(t, IsCode(err, NotFound))
	assert.False(t, IsCode(err, AlreadyExists))

	wrapped := NewError(PermissionDenied, "no access", err)
	assert.Equal(t, PermissionDenied, CodeOf(wrapped))

	assert.Equal(t, Unknown, CodeOf(errors.New("plain")))
	assert.False(t, IsCode(nil, NotFound))
}

func TestStackOnlyForSevere(t *testing.T) {
	benign := NewError(InvalidArgument, "nope", nil)
	var cErr *Error
	assert.True(t, errors.As(benign, &cErr))
	assert.Empty(t, cErr.Stack)

	severe := NewError(Internal, "boom", nil)
	assert.True(t, errors.As(severe, &cErr))
	assert.NotEmpty(t, cErr.Stack)
}
