package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCancelRegistry_RegisterAndCancel(t *testing.T) {
	r := NewCancelRegistry()
	cancelled := false
	_, cancel := context.WithCancel(context.Background())
	_ = cancel

	r.Register("upload-1", func() { cancelled = true })

	ok := r.Cancel("upload-1")
	assert.True(t, ok)
	assert.True(t, cancelled)
}

func TestCancelRegistry_CancelUnknownUpload(t *testing.T) {
	r := NewCancelRegistry()
	assert.False(t, r.Cancel("missing"))
}

func TestCancelRegistry_UnregisterRemovesEntry(t *testing.T) {
	r := NewCancelRegistry()
	r.Register("upload-1", func() {})
	r.Unregister("upload-1")
	assert.False(t, r.Cancel("upload-1"))
}
