// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package trace

import (
	"net/http"
	"testing"

	"github.com/go-kit/kit/log"
	"github.com/uber/jaeger-client-go"
)

func TestStartClientSpan(t *testing.T) {
	_, closer, err := NewConstantTracer(log.NewNopLogger(), "http-test")
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()

	req, _ := http.NewRequest("POST", "https://hooks.slack.com/services/T0/B0/X", nil)
	span := StartClientSpan("slack-webhook", req)
	defer span.Finish()

	if v := req.Header.Get(jaeger.TraceContextHeaderName); v == "" {
		t.Errorf("missing trace header: %#v", req.Header)
	}
}

func TestFromRequest(t *testing.T) {
	_, closer, err := NewConstantTracer(log.NewNopLogger(), "http-test")
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()

	// no incoming trace header
	req, _ := http.NewRequest("GET", "/ping", nil)
	span := FromRequest("service-ping", req)
	if span == nil {
		t.Fatal("nil Span")
	}
	if v := req.Header.Get(jaeger.TraceContextHeaderName); v != "" {
		t.Errorf("unexpected trace header: %#v", req.Header)
	}
	span.Finish()

	// a propagated parent is continued by the server span
	out, _ := http.NewRequest("GET", "/messages", nil)
	parent := StartClientSpan("client", out)
	defer parent.Finish()

	in, _ := http.NewRequest("GET", "/messages", nil)
	in.Header = out.Header
	child := FromRequest("get-messages", in)
	defer child.Finish()

	pc, ok := parent.Context().(jaeger.SpanContext)
	if !ok {
		t.Fatalf("unexpected parent context: %T", parent.Context())
	}
	cc, ok := child.Context().(jaeger.SpanContext)
	if !ok {
		t.Fatalf("unexpected child context: %T", child.Context())
	}
	if pc.TraceID() != cc.TraceID() {
		t.Errorf("trace IDs differ: %v vs %v", pc.TraceID(), cc.TraceID())
	}
}
