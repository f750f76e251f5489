// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io/ioutil"
	"net/url"
	"strconv"

	"github.com/moov-io/sepa/pkg/config"

	gomail "github.com/ory/mail/v3"
)

type Email struct {
	cfg    *config.Email
	dialer *gomail.Dialer
}

type EmailTemplateData struct {
	CompanyName string // e.g. Moov
	Verb        string // e.g. upload
	Filename    string // e.g. 20200529-131400-MOOV_1.xml

	MessageID            string
	NumberOfTransactions int
	ControlSum           string
}

var (
	// Ensure the default template validates against our data struct
	_ = config.DefaultEmailTemplate.Execute(ioutil.Discard, EmailTemplateData{})
)

func NewEmail(cfg *config.Email) (*Email, error) {
	if cfg == nil {
		return nil, errors.New("nil email config")
	}
	dialer, err := setupGoMailClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Email{
		cfg:    cfg,
		dialer: dialer,
	}, nil
}

func setupGoMailClient(cfg *config.Email) (*gomail.Dialer, error) {
	uri, err := url.Parse(cfg.ConnectionURI)
	if err != nil {
		return nil, fmt.Errorf("email: invalid connection uri: %v", err)
	}
	if uri.Hostname() == "" {
		return nil, errors.New("email: missing hostname")
	}

	port := 25
	if p := uri.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("email: invalid port %q", p)
		}
	}
	insecureSkipVerify, _ := strconv.ParseBool(uri.Query().Get("insecure_skip_verify"))

	var username, password string
	if uri.User != nil {
		username = uri.User.Username()
		password, _ = uri.User.Password()
	}

	dialer := gomail.NewDialer(uri.Hostname(), port, username, password)
	dialer.SSL = uri.Scheme == "smtps"
	dialer.TLSConfig = &tls.Config{
		InsecureSkipVerify: insecureSkipVerify,
		ServerName:         uri.Hostname(),
	}
	return dialer, nil
}

func (mailer *Email) Info(msg *Message) error {
	return mailer.send("pain.001 "+string(msg.Direction)+" of "+msg.Filename, msg)
}

func (mailer *Email) Critical(msg *Message) error {
	return mailer.send("FAILED pain.001 "+string(msg.Direction)+" of "+msg.Filename, msg)
}

func (mailer *Email) send(subject string, msg *Message) error {
	contents, err := marshalEmail(mailer.cfg, msg)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", mailer.cfg.From)
	m.SetHeader("To", mailer.cfg.To...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", contents)

	return mailer.dialer.DialAndSend(context.Background(), m)
}

func marshalEmail(cfg *config.Email, msg *Message) (string, error) {
	data := EmailTemplateData{
		CompanyName:          cfg.CompanyName,
		Verb:                 string(msg.Direction),
		Filename:             msg.Filename,
		MessageID:            msg.MessageID,
		NumberOfTransactions: msg.NumberOfTransactions,
		ControlSum:           msg.ControlSum,
	}

	var buf bytes.Buffer
	if err := cfg.Tmpl().Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
