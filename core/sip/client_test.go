package sip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	req := &Request{
		Method:     MethodPublish,
		RequestURI: "sip:alice@example.com",
		To:         "sip:alice@example.com",
		From:       "sip:alice@example.com",
		RouteProxy: "sip:proxy.example.com:5070",
		Headers: []Header{
			{Name: "Max-Forwards", Value: "70"},
			{Name: "Event", Value: "dialog"},
			{Name: "Expires", Value: "125"},
			{Name: "Content-Type", Value: "application/dialog-info+xml"},
		},
		Extra: "X-BLA-Contact: sip:alice@10.0.0.5\r\n",
		Body:  []byte("<dialog-info/>"),
	}

	msg, err := buildMessage(req)
	require.NoError(t, err)

	assert.Equal(t, "PUBLISH", string(msg.Method))
	assert.Equal(t, "example.com", msg.Recipient.Host)
	assert.Equal(t, "proxy.example.com:5070", msg.Destination())
	assert.Equal(t, "dialog", msg.GetHeader("Event").Value())
	assert.Equal(t, "sip:alice@10.0.0.5", msg.GetHeader("X-BLA-Contact").Value())
	assert.Equal(t, "<sip:proxy.example.com:5070;lr>", msg.GetHeader("Route").Value())
	assert.Equal(t, []byte("<dialog-info/>"), msg.Body())

	from := msg.From()
	require.NotNil(t, from)
	tag, ok := from.Params.Get("tag")
	assert.True(t, ok)
	assert.Len(t, tag, 16)
}

func TestBuildMessage_Dialog(t *testing.T) {
	req := &Request{
		Method:     MethodSubscribe,
		RequestURI: "sip:b@1.2.3.4:5060;transport=udp",
		To:         "sip:a@example.com",
		From:       "sip:a@example.com",
		CallID:     "c0ffee@collator",
		FromTag:    "abc123",
	}

	msg, err := buildMessage(req)
	require.NoError(t, err)

	require.NotNil(t, msg.CallID())
	assert.Equal(t, "c0ffee@collator", msg.CallID().Value())
	tag, ok := msg.From().Params.Get("tag")
	assert.True(t, ok)
	assert.Equal(t, "abc123", tag)
}

func TestBuildMessage_Invalid(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"Bad request uri", Request{Method: MethodSubscribe, RequestURI: "", To: "sip:a@b", From: "sip:a@b"}},
		{"Bad max forwards", Request{
			Method: MethodSubscribe, RequestURI: "sip:a@b", To: "sip:a@b", From: "sip:a@b",
			Headers: []Header{{Name: "Max-Forwards", Value: "many"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildMessage(&tt.req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}
