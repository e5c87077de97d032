package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneMatchesByCode(t *testing.T) {
	err := Clone(ErrOverlap, "trainer busy on 2024-01-10")
	assert.True(t, errors.Is(err, ErrOverlap))
	assert.False(t, errors.Is(err, ErrInvalidRange))
	assert.Equal(t, "trainer busy on 2024-01-10", err.Error())
}

func TestWrappedErrorStillMatches(t *testing.T) {
	inner := Wrap(fmt.Errorf("boom"), ErrInternal.Code, ErrInternal.Status, "failed")
	outer := fmt.Errorf("outer: %w", inner)
	assert.True(t, errors.Is(outer, ErrInternal))
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(fmt.Errorf("plain"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)

	assert.Nil(t, FromError(nil))
	assert.Equal(t, ErrForbidden.Code, FromError(ErrForbidden).Code)
}
