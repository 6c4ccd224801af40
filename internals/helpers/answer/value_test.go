package answer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalPolymorphic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		kind Kind
		str  string
	}{
		{name: "null", in: `null`, kind: KindNull, str: ""},
		{name: "string", in: `"Yes"`, kind: KindString, str: "Yes"},
		{name: "integer number", in: `5`, kind: KindNumber, str: "5"},
		{name: "decimal number", in: `3.5`, kind: KindNumber, str: "3.5"},
		{name: "boolean", in: `true`, kind: KindBool, str: "true"},
		{name: "list", in: `["A", 2, false]`, kind: KindList, str: "A,2,false"},
		{name: "file", in: `{"file_id":"f-1","url":"https://cdn/x.png"}`, kind: KindFile, str: "https://cdn/x.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var v Value
			require.NoError(t, json.Unmarshal([]byte(tt.in), &v))
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.str, v.String())
		})
	}
}

func TestUnmarshalRejectsUnknownObject(t *testing.T) {
	t.Parallel()

	var v Value
	err := json.Unmarshal([]byte(`{"foo":"bar"}`), &v)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestNumberFailsClosed(t *testing.T) {
	t.Parallel()

	n, ok := NewString(" 4.5 ").Number()
	assert.True(t, ok)
	assert.InDelta(t, 4.5, n, 1e-9)

	for _, v := range []Value{NewString(""), NewString("abc"), NewBool(true), Null(), NewList("1"), NewString("NaN")} {
		_, ok := v.Number()
		assert.False(t, ok, "expected %v (%s) to be non-numeric", v, v.Kind())
	}
}

func TestStringsNormalization(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"A", "B"}, NewString("A, B").Strings())
	assert.Equal(t, []string{"A", "B"}, NewList("A", " B ").Strings())
	assert.Equal(t, []string{"5"}, NewNumber(5).Strings())
	assert.Nil(t, Null().Strings())
}

func TestLooseEqual(t *testing.T) {
	t.Parallel()

	assert.True(t, NewNumber(5).LooseEqual(NewString("5")))
	assert.False(t, NewNumber(5).Same(NewString("5")))
	assert.True(t, NewBool(true).LooseEqual(NewString("true")))
	assert.False(t, NewString("Yes").LooseEqual(NewString("yes")))
}

func TestMarshalRoundTripKeepsKind(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(NewList())
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(b))

	b, err = json.Marshal(NewFile(FileRef{URL: "https://cdn/a.pdf"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"https://cdn/a.pdf"}`, string(b))
}

func TestBlankAndEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, NewString("").IsEmpty())
	assert.False(t, NewString(" ").IsEmpty())
	assert.True(t, NewString(" ").IsBlank())
	assert.True(t, NewList().IsBlank())
	assert.False(t, NewList().IsEmpty())
	assert.False(t, NewBool(false).IsBlank())
}
