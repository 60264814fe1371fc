package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		in   string
		want Environment
	}{
		{"", Development},
		{"dev", Development},
		{" Production ", Production},
		{"prod", Production},
		{"STAGE", Staging},
		{"test", Testing},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEnvironment(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseEnvironment("prodution")
	assert.Error(t, err)
}

func TestEnvironment_Decode(t *testing.T) {
	var e Environment
	require.NoError(t, e.Decode("prod"))
	assert.True(t, e.IsProduction())

	assert.Error(t, e.Decode("nope"))
	assert.Equal(t, Production, e)
}
