package timeline

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"
)

func TestValue_JSONRoundTrip(t *testing.T) {
	values := []Value{
		NumberValue(2.5),
		NumberValue(0),
		ColorValue("#336699"),
		VectorValue([]float64{1, 2, 3}),
		StringValue("fade"),
	}

	for _, want := range values {
		data, err := sonic.Marshal(want)
		require.NoError(t, err)

		var got Value
		require.NoError(t, sonic.Unmarshal(data, &got))
		require.Equal(t, want, got)
	}
}

func TestValue_UnmarshalRejectsUnknownKind(t *testing.T) {
	var v Value
	require.Error(t, sonic.Unmarshal([]byte(`{"kind":"matrix"}`), &v))
}

func TestValue_UnmarshalRequiresNumberPayload(t *testing.T) {
	var v Value
	require.Error(t, sonic.Unmarshal([]byte(`{"kind":"number"}`), &v))
}
