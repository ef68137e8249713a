package formvalue

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"   ", []string{}},
		{"penicillin", []string{"penicillin"}},
		{"penicillin, peanuts , latex", []string{"penicillin", "peanuts", "latex"}},
		{"a,,b, ,", []string{"a", "b"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Split(tt.in), "Split(%q)", tt.in)
	}
}

func TestSplit_Idempotent(t *testing.T) {
	for _, in := range []string{"a, b ,c", " x ,, y", "", "single"} {
		once := Split(in)
		twice := Split(strings.Join(once, ","))
		assert.Equal(t, once, twice, in)
	}
}

func TestList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		json string
		want []string
	}{
		{"comma string", `{"l":"aspirin, ibuprofen"}`, []string{"aspirin", "ibuprofen"}},
		{"array", `{"l":[" aspirin ","", "ibuprofen"]}`, []string{"aspirin", "ibuprofen"}},
		{"null", `{"l":null}`, []string{}},
		{"empty string", `{"l":""}`, []string{}},
		{"absent", `{}`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v struct {
				L List `json:"l"`
			}
			require.NoError(t, json.Unmarshal([]byte(tt.json), &v))
			assert.Equal(t, tt.want, v.L.Strings())
		})
	}
}

func TestList_RejectsNumbers(t *testing.T) {
	var v struct {
		L List `json:"l"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"l":42}`), &v))
}

func TestText_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		json string
		want string
	}{
		{`{"t":"72"}`, "72"},
		{`{"t":72}`, "72"},
		{`{"t":36.6}`, "36.6"},
		{`{"t":" 120/80 "}`, "120/80"},
		{`{"t":null}`, ""},
		{`{}`, ""},
	}
	for _, tt := range tests {
		var v struct {
			T Text `json:"t"`
		}
		require.NoError(t, json.Unmarshal([]byte(tt.json), &v), tt.json)
		assert.Equal(t, tt.want, v.T.String(), tt.json)
	}
}

func TestText_RejectsObjects(t *testing.T) {
	var v struct {
		T Text `json:"t"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"t":{"a":1}}`), &v))
}

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"45", 45, true},
		{" 60 ", 60, true},
		{"45min", 45, true},
		{"12.9", 12, true},
		{"-5", -5, true},
		{"+30", 30, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-", 0, false},
		{"99999999999999", MaxLeadingInt, true},
		{"-3000000000", -MaxLeadingInt, true},
		{"2147483647", MaxLeadingInt, true},
	}
	for _, tt := range tests {
		got, ok := LeadingInt(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestOptional(t *testing.T) {
	assert.Nil(t, Optional(""))
	assert.Nil(t, Optional("   "))
	got := Optional(" follow-up ")
	require.NotNil(t, got)
	assert.Equal(t, "follow-up", *got)
}

func TestFlag_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		json string
		want bool
	}{
		{`{"f":true}`, true},
		{`{"f":false}`, false},
		{`{"f":null}`, false},
		{`{}`, false},
		{`{"f":"on"}`, true},
		{`{"f":"TRUE"}`, true},
		{`{"f":""}`, false},
		{`{"f":"off"}`, false},
	}
	for _, tt := range tests {
		var v struct {
			F Flag `json:"f"`
		}
		require.NoError(t, json.Unmarshal([]byte(tt.json), &v), tt.json)
		assert.Equal(t, tt.want, bool(v.F), tt.json)
	}

	var v struct {
		F Flag `json:"f"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"f":"maybe"}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"f":2}`), &v))
}
