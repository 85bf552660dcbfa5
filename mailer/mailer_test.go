package mailer

import (
	"context"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/mhale/smtpd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mail "github.com/wneessen/go-mail"

	"github.com/jtuomist/massmail/types"
)

var columns = []string{"Firstname", "Lastname", "email"}

func rendered(firstname, lastname, email string) types.RenderedMail {
	return types.RenderedMail{
		Recipient: types.NewRecipient(columns, map[string]string{
			"Firstname": firstname,
			"Lastname":  lastname,
			"email":     email,
		}),
		To:      `"` + firstname + ` ` + lastname + `" <` + email + `>`,
		Subject: "Greetings " + firstname,
		Body:    "Dear " + firstname,
	}
}

type delivery struct {
	from string
	to   []string
	data []byte
}

// testServer runs a plaintext smtpd on a loopback port for the duration of
// the test. rejectRcpt addresses get a 550 at RCPT time.
func testServer(t *testing.T, rejectRcpt ...string) (port int, deliveries func() []delivery) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	var (
		mu       sync.Mutex
		received []delivery
	)
	srv := &smtpd.Server{
		Appname:  "massmail-test",
		Hostname: "localhost",
		Handler: func(remoteAddr net.Addr, from string, to []string, data []byte) error {
			mu.Lock()
			defer mu.Unlock()
			received = append(received, delivery{from: from, to: to, data: append([]byte(nil), data...)})
			return nil
		},
		HandlerRcpt: func(remoteAddr net.Addr, from string, to string) bool {
			for _, rejected := range rejectRcpt {
				if strings.EqualFold(to, rejected) {
					return false
				}
			}
			return true
		},
	}
	go srv.Serve(ln)

	return ln.Addr().(*net.TCPAddr).Port, func() []delivery {
		mu.Lock()
		defer mu.Unlock()
		return append([]delivery(nil), received...)
	}
}

func testMailer(t *testing.T, port int, options ...OptionFunc) *Mailer {
	t.Helper()
	cfg := &types.SMTPConfig{Server: "127.0.0.1", Port: port}
	msg := &types.Message{
		Subject: "s",
		From:    "sender@example.com",
		ReplyTo: "replies@example.com",
		Body:    "b",
	}
	options = append([]OptionFunc{WithTLSPolicy(mail.NoTLS)}, options...)
	m, err := New(cfg, msg, options...)
	require.NoError(t, err)
	return m
}

func TestSendAll(t *testing.T) {
	port, deliveries := testServer(t)
	m := testMailer(t, port)

	report, err := m.SendAll(context.Background(), []types.RenderedMail{
		rendered("Ann", "Lee", "ann@example.com"),
		rendered("Bo", "Kim", "bo@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Sent)
	assert.Empty(t, report.Failures)

	got := deliveries()
	require.Len(t, got, 2)
	assert.Equal(t, "sender@example.com", got[0].from)
	assert.Equal(t, []string{"ann@example.com"}, got[0].to)
	assert.Contains(t, string(got[0].data), "Dear Ann")
	assert.Contains(t, string(got[0].data), "Subject: Greetings Ann")
	assert.Contains(t, string(got[0].data), "replies@example.com")
}

func TestSendAllContinuesAfterRejectedRecipient(t *testing.T) {
	port, deliveries := testServer(t, "bo@example.com")
	m := testMailer(t, port)

	report, err := m.SendAll(context.Background(), []types.RenderedMail{
		rendered("Ann", "Lee", "ann@example.com"),
		rendered("Bo", "Kim", "bo@example.com"),
		rendered("Cy", "Day", "cy@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Sent)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "bo@example.com", report.Failures[0].Recipient)
	var deliveryErr *types.DeliveryError
	assert.ErrorAs(t, report.Failures[0].Err, &deliveryErr)

	got := deliveries()
	require.Len(t, got, 2)
	for _, d := range got {
		assert.NotContains(t, d.to, "bo@example.com")
	}
}

func TestSendAllConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	m := testMailer(t, port)
	_, err = m.SendAll(context.Background(), []types.RenderedMail{
		rendered("Ann", "Lee", "ann@example.com"),
	})
	var connectionErr *types.ConnectionError
	require.ErrorAs(t, err, &connectionErr)
}

func TestSendAllParallelWorkers(t *testing.T) {
	port, deliveries := testServer(t)
	m := testMailer(t, port, WithWorkers(3))

	mails := []types.RenderedMail{
		rendered("Ann", "Lee", "ann@example.com"),
		rendered("Bo", "Kim", "bo@example.com"),
		rendered("Cy", "Day", "cy@example.com"),
		rendered("Di", "Oz", "di@example.com"),
		rendered("Ed", "Fox", "ed@example.com"),
	}
	report, err := m.SendAll(context.Background(), mails)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Sent)
	assert.Empty(t, report.Failures)

	seen := map[string]int{}
	for _, d := range deliveries() {
		for _, to := range d.to {
			seen[to]++
		}
	}
	for _, rm := range mails {
		assert.Equal(t, 1, seen[rm.Recipient.Email()], rm.Recipient.Email())
	}
}
