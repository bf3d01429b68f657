package kdnn

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hupe1980/kdnn/index"
	"github.com/hupe1980/kdnn/index/kdtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	fe := &FormatError{Line: 3, Column: 2, Value: "abc", cause: errors.New("invalid syntax")}
	assert.Equal(t, `line 3, column 2: invalid value "abc": invalid syntax`, fe.Error())

	ie := &IndexError{Index: 7, Len: 5}
	assert.Equal(t, "index 7 out of range [0, 5)", ie.Error())

	ae := &InvalidArgumentError{Name: "k", Value: "-1", cause: index.ErrInvalidK}
	assert.Equal(t, "invalid argument k = -1: k must not be negative", ae.Error())
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))

	other := errors.New("boom")
	assert.Same(t, other, translateError(other))

	err := translateError(index.ValidateRadius(Coord{}, -1))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.ErrorIs(t, err, index.ErrInvalidRadius)

	for _, sentinel := range []error{kdtree.ErrInvalidLeafSize, kdtree.ErrNonFiniteCoord, kdtree.ErrTooManyPoints} {
		err := translateError(fmt.Errorf("%w: detail", sentinel))
		require.ErrorIs(t, err, ErrInvalidArgument)
		assert.ErrorIs(t, err, sentinel)
	}
}
