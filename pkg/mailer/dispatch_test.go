package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-board/pkg/mailer/templates"
)

type fakeSender struct {
	to, subject, text, html string
	err                     error
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	f.to, f.subject, f.text, f.html = to, subject, text, html
	return f.err
}

func TestDispatch_Template(t *testing.T) {
	body, err := json.Marshal(EmailJob{To: "a@example.com", Template: templates.Welcome,
		Data: templates.ToMap(templates.EmailData{UserID: "alice", AppName: "Board"})})
	require.NoError(t, err)

	s := &fakeSender{}
	require.NoError(t, Dispatch(context.Background(), body, s))
	assert.Equal(t, "a@example.com", s.to)
	assert.Equal(t, "Welcome to Board, alice", s.subject)
	assert.NotEmpty(t, s.html)
}

func TestDispatch_RawBodies(t *testing.T) {
	body, _ := json.Marshal(EmailJob{To: "a@example.com", Subject: "hi", Text: "plain"})
	s := &fakeSender{}
	require.NoError(t, Dispatch(context.Background(), body, s))
	assert.Equal(t, "hi", s.subject)
	assert.Equal(t, "plain", s.text)
}

func TestDispatch_PermanentFailures(t *testing.T) {
	for name, body := range map[string][]byte{
		"bad json":     []byte("{"),
		"no recipient": []byte(`{"subject":"x"}`),
		"bad template": []byte(`{"to":"a@example.com","template":"missing"}`),
	} {
		err := Dispatch(context.Background(), body, &fakeSender{})
		assert.ErrorIs(t, err, ErrPermanent, name)
	}
}

func TestDispatch_SendFailureIsRetryable(t *testing.T) {
	body, _ := json.Marshal(EmailJob{To: "a@example.com", Subject: "hi"})
	err := Dispatch(context.Background(), body, &fakeSender{err: errors.New("503")})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPermanent)
}

func TestSettle(t *testing.T) {
	sendErr := errors.New("503")
	permanent := fmt.Errorf("%w: decode", ErrPermanent)

	assert.Equal(t, Ack, Settle(nil, false))
	assert.Equal(t, Ack, Settle(nil, true))
	assert.Equal(t, Retry, Settle(sendErr, false))
	assert.Equal(t, Drop, Settle(sendErr, true), "one retry only")
	assert.Equal(t, Drop, Settle(permanent, false))
}
