package sink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{name: "both stores", in: "mongo,postgres", want: []string{"mongo", "postgres"}},
		{name: "single", in: "mongo", want: []string{"mongo"}},
		{name: "all three", in: "mongo,postgres,csv", want: []string{"mongo", "postgres", "csv"}},
		{name: "spaces and case", in: " Mongo , POSTGRES ", want: []string{"mongo", "postgres"}},
		{name: "duplicates dropped", in: "mongo,mongo,postgres", want: []string{"mongo", "postgres"}},
		{name: "unknown", in: "mongo,hive", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "only commas", in: ",,", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseSelector(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSinkErrorsUnwrap(t *testing.T) {
	t.Parallel()

	cause := assert.AnError
	connErr := &ConnectivityError{Destination: NameMongo, Err: cause}
	assert.ErrorIs(t, connErr, cause)
	assert.Contains(t, connErr.Error(), "unreachable")

	schemaErr := &SchemaError{Destination: NamePostgres, Err: cause}
	assert.ErrorIs(t, schemaErr, cause)
	assert.Contains(t, schemaErr.Error(), "schema conflict")
}
