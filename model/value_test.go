package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unmarshalValue(t *testing.T, data string) Value {
	t.Helper()
	var v Value
	require.NoError(t, json.Unmarshal([]byte(data), &v))
	return v
}

func TestValueUnmarshal(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		v := unmarshalValue(t, `"hello"`)
		assert.Equal(t, KindText, v.Kind())
		assert.Equal(t, "hello", v.Text())
	})

	t.Run("null", func(t *testing.T) {
		v := unmarshalValue(t, `null`)
		assert.Equal(t, KindEmpty, v.Kind())
		assert.True(t, v.IsEmpty())
	})

	t.Run("number passes through unconverted", func(t *testing.T) {
		v := unmarshalValue(t, `30`)
		assert.Equal(t, KindText, v.Kind())
		assert.Equal(t, "30", v.Text())
	})

	t.Run("boolean", func(t *testing.T) {
		v := unmarshalValue(t, `true`)
		assert.Equal(t, KindText, v.Kind())
		assert.Equal(t, "true", v.Text())
	})

	t.Run("string array", func(t *testing.T) {
		v := unmarshalValue(t, `["a","b","c"]`)
		assert.Equal(t, KindMultiChoice, v.Kind())
		assert.Equal(t, []string{"a", "b", "c"}, v.Choices())
	})

	t.Run("file reference", func(t *testing.T) {
		v := unmarshalValue(t, `{"url":"https://x/f.pdf","name":"f.pdf","type":"application/pdf"}`)
		require.Equal(t, KindFile, v.Kind())
		assert.Equal(t, "https://x/f.pdf", v.File().URL)
		assert.Equal(t, "f.pdf", v.File().Name)
	})

	t.Run("object without url is opaque text", func(t *testing.T) {
		v := unmarshalValue(t, `{"foo":"bar"}`)
		assert.Equal(t, KindText, v.Kind())
		assert.Equal(t, `{"foo":"bar"}`, v.Text())
	})
}

func TestValueIsEmpty(t *testing.T) {
	assert.True(t, EmptyValue().IsEmpty())
	assert.True(t, TextValue("").IsEmpty())
	assert.True(t, TextValue("   \t ").IsEmpty())
	assert.True(t, ChoicesValue().IsEmpty())
	assert.True(t, unmarshalValue(t, `[]`).IsEmpty())

	assert.False(t, TextValue("x").IsEmpty())
	assert.False(t, ChoicesValue("a").IsEmpty())
	assert.False(t, FileValue(FileRef{URL: "https://x/f"}).IsEmpty())
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "Al ice", TextValue("Al ice").String())
	assert.Equal(t, "a; b", ChoicesValue("a", "b").String())
	assert.Equal(t, "https://x/f.pdf", FileValue(FileRef{URL: "https://x/f.pdf", Name: "f.pdf"}).String())
	assert.Equal(t, "", EmptyValue().String())
}

func TestValueMarshalRoundTrip(t *testing.T) {
	// values decoded from a submission re-encode byte for byte: no
	// coercion on the way to storage
	for _, raw := range []string{
		`"text"`,
		`30`,
		`["a","b"]`,
		`{"url":"https://x/f.pdf","name":"f.pdf","type":"application/pdf"}`,
	} {
		v := unmarshalValue(t, raw)
		out, err := json.Marshal(v)
		require.NoError(t, err)
		assert.JSONEq(t, raw, string(out))
	}
}

func TestValueMarshalConstructed(t *testing.T) {
	out, err := json.Marshal(ChoicesValue("a", "b"))
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(out))

	out, err = json.Marshal(EmptyValue())
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}
