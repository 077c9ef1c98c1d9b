package voiceagent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeVariants(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"UserStartedSpeaking"}`))
	require.NoError(t, err)
	assert.Equal(t, SpeechStarted{}, msg)

	msg, err = Decode([]byte(`{"type":"ConversationText","role":"user","content":" hi there "}`))
	require.NoError(t, err)
	assert.Equal(t, Transcript{Role: RoleUser, Content: " hi there "}, msg)

	msg, err = Decode([]byte(`{"type":"FunctionCallRequest","functions":[{"id":"fc_1","name":"lookup_complaint","arguments":"{\"complaint_no\":7}","client_side":true}]}`))
	require.NoError(t, err)
	req, ok := msg.(FunctionCallRequest)
	require.True(t, ok)
	require.Len(t, req.Functions, 1)
	assert.Equal(t, "fc_1", req.Functions[0].ID)
	assert.Equal(t, "lookup_complaint", req.Functions[0].Name)
	assert.True(t, req.Functions[0].RunsOnClient())

	msg, err = Decode([]byte(`{"type":"Error","description":"bad settings","code":"INVALID_SETTINGS"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeError, msg.Type())
	assert.Equal(t, "bad settings", msg.(Notice).Text())

	msg, err = Decode([]byte(`{"type":"Welcome","request_id":"r1"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeWelcome, msg.Type())
	assert.IsType(t, Unhandled{}, msg)
}

func TestRunsOnClient(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"FunctionCallRequest","functions":[
		{"id":"a","name":"raise_complaint","client_side":true},
		{"id":"b","name":"get_weather","client_side":false},
		{"id":"c","name":"lookup_complaint"}]}`))
	require.NoError(t, err)
	fns := msg.(FunctionCallRequest).Functions
	require.Len(t, fns, 3)
	assert.True(t, fns[0].RunsOnClient())
	assert.False(t, fns[1].RunsOnClient())
	assert.True(t, fns[2].RunsOnClient())
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"type":"FunctionCallRequest","functions":"oops"}`))
	assert.Error(t, err)
}

func TestArgumentJSON(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
		err  bool
	}{
		{"encoded string", `"{\"name\":\"Ravi\"}"`, `{"name":"Ravi"}`, false},
		{"bare object", `{"name":"Ravi"}`, `{"name":"Ravi"}`, false},
		{"missing", ``, `{}`, false},
		{"empty string", `""`, `{}`, false},
		{"null", `null`, `{}`, false},
		{"broken", `"{\"name\":"`, ``, true},
		{"array", `"[1,2]"`, ``, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FunctionCall{Arguments: json.RawMessage(tc.raw)}.ArgumentJSON()
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(got))
		})
	}
}

func TestFunctionCallResponseEncode(t *testing.T) {
	b, err := NewFunctionCallResponse("fc_1", "lookup_complaint", "Error: Complaint not found").Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FunctionCallResponse","id":"fc_1","name":"lookup_complaint","content":"Error: Complaint not found"}`, string(b))
}
