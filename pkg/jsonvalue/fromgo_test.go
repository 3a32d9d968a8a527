package jsonvalue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromGoRoundTripsThroughStringify(t *testing.T) {
	var decoded interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"a":1,"b":[true,null,"x"]}`), &decoded))

	z := NewZone("test")
	v, err := FromGo(z, decoded)
	require.NoError(t, err)

	require.Equal(t, `{"a":1,"b":[true,null,"x"]}`, v.Stringify())
}

func TestFromGoRejectsUnsupportedType(t *testing.T) {
	z := NewZone("test")
	_, err := FromGo(z, make(chan int))
	require.Error(t, err)
}
