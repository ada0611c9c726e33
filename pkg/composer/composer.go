// Package composer assembles outgoing RFC 5322 messages.
package composer

import (
	"bytes"
	"io"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/pkg/errors"
)

var now = time.Now

// PlainText builds a single-part text/plain message.
func PlainText(recipient, subject, body string) ([]byte, error) {
	h := newHeader("", recipient, subject)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, errors.Wrap(err, "creating message writer")
	}
	if _, err := io.WriteString(w, body); err != nil {
		return nil, errors.Wrap(err, "writing body")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "closing message")
	}
	return buf.Bytes(), nil
}

// Multipart builds a multipart/mixed message with an explicit From whose only
// part is the text/plain body.
func Multipart(sender, recipient, subject, body string) ([]byte, error) {
	h := newHeader(sender, recipient, subject)

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, errors.Wrap(err, "creating multipart writer")
	}

	var th mail.InlineHeader
	th.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	pw, err := mw.CreateSingleInline(th)
	if err != nil {
		return nil, errors.Wrap(err, "creating text part")
	}
	if _, err := io.WriteString(pw, body); err != nil {
		return nil, errors.Wrap(err, "writing body")
	}

	if err := pw.Close(); err != nil {
		return nil, errors.Wrap(err, "closing text part")
	}
	if err := mw.Close(); err != nil {
		return nil, errors.Wrap(err, "closing message")
	}
	return buf.Bytes(), nil
}

func newHeader(sender, recipient, subject string) mail.Header {
	var h mail.Header
	h.SetDate(now())
	setAddress(&h, "From", sender)
	setAddress(&h, "To", recipient)
	h.SetSubject(subject)
	return h
}

// setAddress encodes parseable addresses properly and falls back to the raw
// value, which is what the client typed.
func setAddress(h *mail.Header, key, value string) {
	if value == "" {
		return
	}
	addrs, err := mail.ParseAddressList(value)
	if err != nil || len(addrs) == 0 {
		h.Set(key, value)
		return
	}
	h.SetAddressList(key, addrs)
}
