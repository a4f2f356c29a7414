package dsn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelinekit/example-addon/internal/config"
)

func TestCreate(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DB
		want string
	}{
		{
			name: "mysql",
			cfg:  config.DB{GormEngine: "mysql", User: "u", Password: "p", Host: "db", Port: 3306, Name: "addon", Extras: "parseTime=true"},
			want: "u:p@tcp(db:3306)/addon?parseTime=true",
		},
		{
			name: "postgres",
			cfg:  config.DB{GormEngine: "postgres", User: "u", Password: "p", Host: "db", Port: 5432, Name: "addon", Extras: "sslmode=disable"},
			want: "host=db port=5432 user=u password=p dbname=addon sslmode=disable",
		},
		{
			name: "sqlite",
			cfg:  config.DB{GormEngine: "sqlite", Name: "addon.db"},
			want: "addon.db",
		},
		{
			name: "sqlite with extras",
			cfg:  config.DB{GormEngine: "sqlite", Name: "addon.db", Extras: "_pragma=foreign_keys(1)"},
			want: "addon.db?_pragma=foreign_keys(1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Create(&tt.cfg))
		})
	}
}

func TestDialector(t *testing.T) {
	for _, engine := range []string{"postgres", "mysql", "sqlite"} {
		d, err := Dialector(&config.DB{GormEngine: engine, Name: "x"})
		require.NoError(t, err)
		assert.Equal(t, engine, d.Name())
	}

	_, err := Dialector(&config.DB{GormEngine: "oracle"})
	require.ErrorIs(t, err, config.ErrUnknownEngine)
}
