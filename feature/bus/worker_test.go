package bus

import (
	"context"
	"testing"

	"dialog-collator/core/sip"
	"dialog-collator/core/sip/mocks"
	"dialog-collator/feature/subscription"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestWorker(transport sip.Transport) *Worker {
	emitter := subscription.NewEmitter(transport, subscription.Options{ServerAddress: "sip:10.0.0.1"}, nil, zap.NewNop())
	return NewWorker(emitter, nil, zap.NewNop())
}

func TestWorker_Handle(t *testing.T) {
	transport := new(mocks.Transport)
	transport.On("HasLiveSubscription", mock.Anything, "BLA_SUBSCRIBE.sip:b@1.2.3.4").Return(false, nil)
	transport.On("Submit", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	w := newTestWorker(transport)
	w.Handle(context.Background(), []byte(`{"aor":"sip:a@d","contact":"sip:b@1.2.3.4","duration":120}`))

	reqs := transport.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, sip.MethodSubscribe, reqs[0].Method)
	assert.Equal(t, "sip:b@1.2.3.4", reqs[0].RequestURI)
	assert.Equal(t, "sip:a@d", reqs[0].From)
	assert.Equal(t, 120, reqs[0].Expires)
	expires, _ := reqs[0].Header("Expires")
	assert.Equal(t, "120", expires)
}

func TestWorker_HandleDuration(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"Zero is passed through", `{"aor":"sip:a@d","contact":"sip:b@1.2.3.4","duration":0}`, "0"},
		{"Absent uses the default", `{"aor":"sip:a@d","contact":"sip:b@1.2.3.4"}`, "180"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(mocks.Transport)
			transport.On("HasLiveSubscription", mock.Anything, mock.Anything).Return(false, nil).Maybe()
			transport.On("Submit", mock.Anything, mock.Anything, mock.Anything).Return(nil)

			w := newTestWorker(transport)
			w.Handle(context.Background(), []byte(tt.payload))

			reqs := transport.Requests()
			require.Len(t, reqs, 1)
			expires, _ := reqs[0].Header("Expires")
			assert.Equal(t, tt.want, expires)
		})
	}
}

func TestWorker_DropsBadPayloads(t *testing.T) {
	payloads := []string{
		`{`,
		`{"aor":"sip:a@d"}`,
		`{"contact":"sip:b@1.2.3.4"}`,
		`{"aor":"sip:a@d","contact":"sip:1.2.3.4"}`,
		`{"aor":"sip:a@d","contact":"sip:b@1.2.3.4","duration":-1}`,
	}

	for _, p := range payloads {
		t.Run(p, func(t *testing.T) {
			transport := new(mocks.Transport)
			w := newTestWorker(transport)
			w.Handle(context.Background(), []byte(p))
			assert.Empty(t, transport.Requests())
		})
	}
}
