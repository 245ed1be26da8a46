package mail

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"hostcompare/internal/app/config"
	"hostcompare/internal/app/ds"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, msg Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// smtpServer - минимальный SMTP-сервер на loopback. stall: сервер принимает
// соединение и молчит.
type smtpServer struct {
	stall bool

	mu       sync.Mutex
	commands []string
	data     string
}

func startSMTPServer(t *testing.T, stall bool) (*smtpServer, config.SMTPConfig) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	s := &smtpServer{stall: stall}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go s.serve(conn)
		}
	}()

	cfg := config.SMTPConfig{
		Host:    "127.0.0.1",
		Port:    ln.Addr().(*net.TCPAddr).Port,
		From:    "bot@local",
		Timeout: 5 * time.Second,
	}
	return s, cfg
}

func (s *smtpServer) serve(conn net.Conn) {
	defer conn.Close()
	if s.stall {
		_, _ = io.Copy(io.Discard, conn)
		return
	}

	r := bufio.NewReader(conn)
	reply := func(line string) { fmt.Fprintf(conn, "%s\r\n", line) }
	reply("220 fake ESMTP")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		s.mu.Lock()
		s.commands = append(s.commands, line)
		s.mu.Unlock()

		switch strings.ToUpper(strings.Fields(line + " ")[0]) {
		case "EHLO":
			reply("250-fake")
			reply("250 AUTH PLAIN")
		case "AUTH":
			reply("235 2.7.0 accepted")
		case "MAIL", "RCPT", "RSET", "NOOP":
			reply("250 ok")
		case "DATA":
			reply("354 go ahead")
			var body []string
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				l = strings.TrimRight(l, "\r\n")
				if l == "." {
					break
				}
				body = append(body, l)
			}
			s.mu.Lock()
			s.data = strings.Join(body, "\r\n")
			s.mu.Unlock()
			reply("250 queued")
		case "QUIT":
			reply("221 bye")
			return
		default:
			reply("502 not implemented")
		}
	}
}

func (s *smtpServer) received() ([]string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...), s.data
}

func TestSMTPMailerSend(t *testing.T) {
	srv, cfg := startSMTPServer(t, false)
	cfg.User, cfg.Password = "bot", "pw"
	m := NewSMTPMailer(cfg)

	err := m.Send(context.Background(), Message{To: []string{"a@b.c", "d@e.f"}, Subject: "Привет", Body: "line1\nline2"})
	require.NoError(t, err)

	commands, data := srv.received()
	joined := strings.Join(commands, "\n")
	assert.Contains(t, joined, "AUTH PLAIN ")
	assert.Contains(t, joined, "MAIL FROM:<bot@local>")
	assert.Contains(t, joined, "RCPT TO:<a@b.c>")
	assert.Contains(t, joined, "RCPT TO:<d@e.f>")
	assert.Equal(t, "QUIT", commands[len(commands)-1])

	assert.Contains(t, data, "From: bot@local\r\n")
	assert.Contains(t, data, "Subject: =?utf-8?q?")
	assert.True(t, strings.HasSuffix(data, "line1\r\nline2"))
}

func TestSMTPMailerTimeout(t *testing.T) {
	t.Run("server never greets", func(t *testing.T) {
		_, cfg := startSMTPServer(t, true)
		cfg.Timeout = 200 * time.Millisecond
		m := NewSMTPMailer(cfg)

		start := time.Now()
		err := m.Send(context.Background(), Message{To: []string{"x@y.z"}, Subject: "s"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeout")
		assert.Less(t, time.Since(start), 3*time.Second)
	})

	t.Run("caller cancels", func(t *testing.T) {
		_, cfg := startSMTPServer(t, true)
		m := NewSMTPMailer(cfg)

		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(100*time.Millisecond, cancel)

		start := time.Now()
		err := m.Send(ctx, Message{To: []string{"x@y.z"}, Subject: "s"})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), 3*time.Second)
	})
}

func TestSMTPMailerErrors(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	m := NewSMTPMailer(config.SMTPConfig{Host: "127.0.0.1", Port: port, Timeout: time.Second})

	assert.NoError(t, m.Send(context.Background(), Message{Subject: "nobody"}))
	assert.ErrorContains(t, m.Send(context.Background(), Message{To: []string{"x@y.z"}, Subject: "s"}), `send mail "s"`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Send(ctx, Message{To: []string{"x@y.z"}}), context.Canceled)
}

func TestBuildMessageHeaders(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	raw := string(buildMessage("from@x", Message{To: []string{"a@x", "b@x"}, Subject: "Hi", Body: "body"}, now))
	assert.Contains(t, raw, "To: a@x, b@x\r\n")
	assert.Contains(t, raw, "Date: Fri, 01 Mar 2024 12:00:00 +0000\r\n")
	assert.Contains(t, raw, "\r\n\r\nbody")
}

func TestNew(t *testing.T) {
	assert.IsType(t, LogMailer{}, New(config.SMTPConfig{}))
	assert.IsType(t, &SMTPMailer{}, New(config.SMTPConfig{Host: "smtp"}))
}

func TestNotifier(t *testing.T) {
	ctx := context.Background()
	hosting := &ds.Hosting{Name: "Beget", Slug: "beget"}

	t.Run("approved", func(t *testing.T) {
		m := new(mockMailer)
		m.On("Send", ctx, mock.MatchedBy(func(msg Message) bool {
			return msg.To[0] == "ann@example.com" && strings.Contains(msg.Body, "https://site/hostings/beget")
		})).Return(nil).Once()

		n := NewNotifier(m, "https://site/")
		n.ReviewApproved(ctx, &ds.Review{AuthorName: "Ann", AuthorEmail: "ann@example.com", Hosting: hosting})
		m.AssertExpectations(t)
	})

	t.Run("rejected with reason", func(t *testing.T) {
		m := new(mockMailer)
		m.On("Send", ctx, mock.MatchedBy(func(msg Message) bool {
			return strings.Contains(msg.Body, "Причина: spam")
		})).Return(errors.New("smtp down")).Once()

		n := NewNotifier(m, "https://site")
		n.ReviewRejected(ctx, &ds.Review{AuthorEmail: "eve@example.com", RejectionReason: "spam", Hosting: hosting})
		m.AssertExpectations(t)
	})

	t.Run("no author email", func(t *testing.T) {
		m := new(mockMailer)
		n := NewNotifier(m, "https://site")
		n.ReviewApproved(ctx, &ds.Review{AuthorName: "Anon"})
		n.ReviewSubmitted(ctx, nil, &ds.Review{})
		m.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("submitted goes to staff", func(t *testing.T) {
		m := new(mockMailer)
		m.On("Send", ctx, mock.MatchedBy(func(msg Message) bool {
			return len(msg.To) == 2 && strings.Contains(msg.Subject, "Beget")
		})).Return(nil).Once()

		n := NewNotifier(m, "https://site")
		n.ReviewSubmitted(ctx, []string{"m1@x", "m2@x"}, &ds.Review{ID: 7, Rating: 4, Hosting: hosting})
		m.AssertExpectations(t)
	})
}
