package ports

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookIDInput(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		isSet  bool
		wantID int
		wantOK bool
	}{
		{name: "absent", body: `{}`},
		{name: "null", body: `{"id":null}`},
		{name: "number", body: `{"id":5}`, isSet: true, wantID: 5, wantOK: true},
		{name: "integral float", body: `{"id":4.0}`, isSet: true},
		{name: "integral float string", body: `{"id":"4.0"}`, isSet: true},
		{name: "exponent", body: `{"id":1e2}`, isSet: true},
		{name: "numeric string", body: `{"id":"12"}`, isSet: true, wantID: 12, wantOK: true},
		{name: "largest 32-bit", body: `{"id":2147483647}`, isSet: true, wantID: 2147483647, wantOK: true},
		{name: "beyond 32-bit", body: `{"id":2147483648}`, isSet: true},
		{name: "beyond 64-bit string", body: `{"id":"9223372036854775807"}`, isSet: true},
		{name: "fraction", body: `{"id":2.5}`, isSet: true},
		{name: "word", body: `{"id":"abc"}`, isSet: true},
		{name: "bool", body: `{"id":true}`, isSet: true},
		{name: "empty string", body: `{"id":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req AddBookRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))

			assert.Equal(t, tt.isSet, req.ID.IsSet())

			id, ok := req.ID.Int()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, id)
			}
		})
	}
}

func TestAddBookRequestOptionalFields(t *testing.T) {
	var req AddBookRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Dune","description":null,"cover":""}`), &req))

	assert.Nil(t, req.Description)
	require.NotNil(t, req.Cover)
	assert.Equal(t, "", *req.Cover)
	assert.Nil(t, req.AddedBy)
}
