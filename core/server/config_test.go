package server_test

import (
	"testing"
	"time"

	"challan-reconciler/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_BodyLimit(t *testing.T) {
	tests := []struct {
		name string
		mb   int
		want int
	}{
		{"Configured", 8, 8 << 20},
		{"Zero", 0, 32 << 20},
		{"Negative", -1, 32 << 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := server.Config{BodyLimitMB: tt.mb}
			assert.Equal(t, tt.want, c.BodyLimit())
		})
	}
}

func TestConfig_Durations(t *testing.T) {
	c := server.Config{Port: "9090", ReadTimeoutSeconds: 5}
	assert.Equal(t, ":9090", c.Address())
	assert.Equal(t, 5*time.Second, c.ReadTimeout())
	assert.Equal(t, 10*time.Second, c.ShutdownTimeout())

	c.ShutdownTimeoutSeconds = 3
	assert.Equal(t, 3*time.Second, c.ShutdownTimeout())
}
