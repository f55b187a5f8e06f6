package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		isDev    bool
		contains string
		debug    bool
	}{
		{name: "development text", isDev: true, contains: "msg=hello", debug: true},
		{name: "production json", isDev: false, contains: `"msg":"hello"`, debug: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(&buf, tt.isDev, "")

			log.Info("hello", "user_id", "u1")
			log.Debug("verbose")

			assert.Contains(t, buf.String(), tt.contains)
			assert.Contains(t, buf.String(), "u1")
			assert.Equal(t, tt.debug, bytes.Contains(buf.Bytes(), []byte("verbose")))
		})
	}
}
