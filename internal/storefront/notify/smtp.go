package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// Encryption selects how the SMTP connection is secured.
type Encryption string

const (
	EncryptionNone     Encryption = "NONE"
	EncryptionStartTLS Encryption = "STARTTLS"
	EncryptionTLS      Encryption = "SSL/TLS"
)

// ParseEncryption normalises a configured mode. Unknown values fall back to
// STARTTLS.
func ParseEncryption(s string) Encryption {
	switch mode := Encryption(strings.ToUpper(strings.TrimSpace(s))); mode {
	case EncryptionNone, EncryptionStartTLS, EncryptionTLS:
		return mode
	case "TLS", "SSL":
		return EncryptionTLS
	default:
		return EncryptionStartTLS
	}
}

const (
	defaultDialTimeout = 15 * time.Second

	// DefaultSendTimeout bounds one delivery when SendTimeout is unset.
	DefaultSendTimeout = 30 * time.Second
)

// ErrStartTLSUnsupported is returned in STARTTLS mode when the relay does not
// offer the extension. The message is never sent in the clear.
var ErrStartTLSUnsupported = errors.New("smtp: relay does not offer STARTTLS")

// SMTPDispatcher delivers plain text mail through an SMTP relay.
type SMTPDispatcher struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	Encryption Encryption

	// SendTimeout caps the whole exchange, including a relay that accepts
	// the connection and then stalls. An earlier ctx deadline wins.
	SendTimeout time.Duration

	// TLSConfig overrides the client TLS configuration. ServerName defaults
	// to Host.
	TLSConfig *tls.Config
}

func (d *SMTPDispatcher) addr() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

func (d *SMTPDispatcher) tlsConfig() *tls.Config {
	if d.TLSConfig != nil {
		return d.TLSConfig
	}
	return &tls.Config{ServerName: d.Host, MinVersion: tls.VersionTLS12}
}

// Dispatch sends message to address in one attempt. The exchange ends at the
// earlier of ctx's deadline and SendTimeout, and cancelling ctx aborts it.
func (d *SMTPDispatcher) Dispatch(ctx context.Context, address, message string) (err error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return ErrNoRecipient
	}

	timeout := d.SendTimeout
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := d.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	_ = conn.SetDeadline(deadline)

	// Closing the connection unblocks whatever read or write is pending.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	defer func() {
		if err != nil && ctx.Err() != nil {
			err = fmt.Errorf("%w: %w", err, ctx.Err())
		}
	}()

	c, err := smtp.NewClient(conn, d.Host)
	if err != nil {
		return fmt.Errorf("smtp: greeting: %w", err)
	}
	defer c.Close()

	if err := c.Hello("localhost"); err != nil {
		return fmt.Errorf("smtp: hello: %w", err)
	}

	if d.Encryption == EncryptionStartTLS {
		if ok, _ := c.Extension("STARTTLS"); !ok {
			return ErrStartTLSUnsupported
		}
		if err := c.StartTLS(d.tlsConfig()); err != nil {
			return fmt.Errorf("smtp: starttls: %w", err)
		}
	}

	if d.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", d.Username, d.Password, d.Host)); err != nil {
			return fmt.Errorf("smtp: auth: %w", err)
		}
	}

	if err := c.Mail(d.From); err != nil {
		return fmt.Errorf("smtp: mail from: %w", err)
	}
	if err := c.Rcpt(address); err != nil {
		return fmt.Errorf("smtp: rcpt to: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp: data: %w", err)
	}
	if _, err := w.Write(buildMessage(d.From, address, Subject, message)); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp: write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp: close data: %w", err)
	}

	return c.Quit()
}

func (d *SMTPDispatcher) dial(ctx context.Context) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: defaultDialTimeout}

	if d.Encryption == EncryptionTLS {
		td := &tls.Dialer{NetDialer: dialer, Config: d.tlsConfig()}
		conn, err := td.DialContext(ctx, "tcp", d.addr())
		if err != nil {
			return nil, fmt.Errorf("smtp: tls dial: %w", err)
		}
		return conn, nil
	}

	conn, err := dialer.DialContext(ctx, "tcp", d.addr())
	if err != nil {
		return nil, fmt.Errorf("smtp: dial: %w", err)
	}
	return conn, nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return b.Bytes()
}
