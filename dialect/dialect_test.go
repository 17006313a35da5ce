package dialect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/dbx/dialect"
)

func TestFeaturesFor(t *testing.T) {
	tests := []struct {
		name string
		want dialect.Features
	}{
		{
			name: dialect.MySQL,
			want: dialect.Features{Savepoints: true, OffsetLimit: true, SelectExists: true},
		},
		{
			name: dialect.Postgres,
			want: dialect.Features{Savepoints: true, OffsetLimit: true, Returning: true, SelectExists: true},
		},
		{
			name: dialect.SQLite,
			want: dialect.Features{Savepoints: true, OffsetLimit: true, Returning: true, SelectExists: true},
		},
		{
			name: dialect.Oracle,
			want: dialect.Features{Savepoints: true},
		},
		{
			name: "cockroach",
			want: dialect.Features{OffsetLimit: true, SelectExists: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dialect.FeaturesFor(tt.name))
		})
	}
}
