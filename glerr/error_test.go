package glerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorString(t *testing.T) {
	err := &Error{Kind: BadMatch, Op: "eglMakeCurrent", Code: 0x3009, CodeName: "EGL_BAD_MATCH"}
	assert.Equal(t, "eglMakeCurrent: bad match (EGL_BAD_MATCH 0x3009)", err.Error())

	err = &Error{Kind: NoAvailableConfig, Reason: "nothing matched", Err: errors.New("cause")}
	assert.Equal(t, "no available config: nothing matched: cause", err.Error())

	assert.Equal(t, "kind(99)", Kind(99).String())
}

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NotSupportedf("no %s", "pbuffers"))
	assert.ErrorIs(t, err, NotSupported)
	assert.ErrorIs(t, err, &Error{Kind: NotSupported})
	assert.NotErrorIs(t, err, BadMatch)
	assert.Equal(t, NotSupported, KindOf(err))
	assert.Equal(t, OSError, KindOf(errors.New("plain")))
}

func TestAppend(t *testing.T) {
	assert.Nil(t, Append(nil))
	assert.Nil(t, Append(nil, nil, nil))

	one := Append(nil, BadAPIUsagef("first"))
	assert.Equal(t, "bad api usage: first", one.Error())

	acc := Append(one, New(BadConfig, "op", "second"))
	acc = Append(acc, nil)
	require.Len(t, Errors(acc), 2, "nested accumulations flatten")
	assert.Equal(t, BadAPIUsage, KindOf(acc), "first entry decides the kind")
	assert.Equal(t, "2 errors: [bad api usage: first; op: bad config: second]", acc.Error())

	plain := errors.New("plain")
	assert.Equal(t, []error{plain}, Errors(plain))
	assert.Nil(t, Errors(nil))
}
