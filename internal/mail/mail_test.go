package mail

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dealerhub/dealerhub/internal/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewSender(t *testing.T) {
	s := NewSender(config.MailConfig{}, nil)
	assert.IsType(t, &LogSender{}, s)

	s = NewSender(config.MailConfig{Enabled: true, Host: "smtp.example.test", Port: 587, From: "no-reply@example.test", TLSMode: "starttls"}, nil)
	require.IsType(t, &SMTPSender{}, s)
	d := s.(*SMTPSender).dialer()
	assert.Equal(t, "smtp.example.test", d.Host)
	assert.False(t, d.SSL)
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewLogSender(zap.New(core))
	require.NoError(t, s.Send(context.Background(), Message{To: []string{"a@x.test"}, Subject: "hi", Text: "body"}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "hi", logs.All()[0].ContextMap()["subject"])
}

func TestSMTPSender_Errors(t *testing.T) {
	// grab a free port and close it so the dial is refused
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	s := &SMTPSender{Host: "127.0.0.1", Port: port, From: "f@x.test", TLSMode: "none", Timeout: time.Second}
	assert.Error(t, s.Send(context.Background(), Message{To: []string{"a@x.test"}, Subject: "s", Text: "t"}))
	assert.Error(t, s.Send(context.Background(), Message{Subject: "no recipients"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, Message{To: []string{"a@x.test"}}), context.Canceled)
}
