package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"usuarios-api/internal/config"
)

func TestNewContainer_RejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "unknown driver",
			cfg:  config.Config{Store: config.StoreConfig{Driver: "cassandra"}, App: config.AppConfig{HTTPPort: "3000"}},
			want: "unsupported STORE_DRIVER",
		},
		{
			name: "mongo without uri",
			cfg:  config.Config{Store: config.StoreConfig{Driver: config.DriverMongo}, App: config.AppConfig{HTTPPort: "3000"}},
			want: "MONGO_URI is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewContainer(context.Background(), &tt.cfg, zaptest.NewLogger(t))
			require.Error(t, err)
			assert.Nil(t, c)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestContainer_CloseWithNothingOpen(t *testing.T) {
	c := &Container{Config: &config.Config{}, Logger: zaptest.NewLogger(t)}
	assert.NoError(t, c.Close())
}
