// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package agenttest

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/bureau-foundation/oidcagent/lib/codec"
	"github.com/bureau-foundation/oidcagent/lib/request"
)

// roundTrip sends raw bytes the way a client does and returns the
// decoded reply.
func roundTrip(t *testing.T, daemon *Daemon, wireCodec codec.Codec, value codec.Value) codec.Value {
	t.Helper()

	data, err := wireCodec.Encode(value)
	if err != nil {
		t.Fatal(err)
	}
	conn, err := net.Dial("unix", daemon.SocketPath())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write(data); err != nil {
		t.Fatalf("write: %v", err)
	}
	conn.(*net.UnixConn).CloseWrite()

	frame, err := wireCodec.ReadFrame(conn)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	reply, err := wireCodec.Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return reply
}

func field(t *testing.T, value codec.Value, key string) string {
	t.Helper()
	object, ok := value.AsObject()
	if !ok {
		t.Fatalf("reply is %s, want object", value.Kind())
	}
	fieldValue, _ := object.Get(key)
	text, _ := fieldValue.AsString()
	return text
}

func TestDaemonDispatchesByKind(t *testing.T) {
	for _, wireCodec := range []codec.Codec{codec.JSON, codec.CBOR} {
		t.Run(wireCodec.Name(), func(t *testing.T) {
			daemon := Start(t, wireCodec)
			daemon.Handle(request.KindLoadedAccounts, Reply(AccountsReply("egi")))
			daemon.Handle(request.KindAccessToken, func(_ context.Context, req *codec.Object) (codec.Value, error) {
				account, _ := req.Get("account")
				name, _ := account.AsString()
				return AccessTokenReply("token-for-"+name, "https://issuer.example", 1), nil
			})

			message := codec.ObjectValue(codec.NewObject().
				Set("request", codec.String("access_token")).
				Set("account", codec.String("egi")))
			reply := roundTrip(t, daemon, wireCodec, message)
			if got := field(t, reply, "access_token"); got != "token-for-egi" {
				t.Errorf("access_token = %q", got)
			}

			if len(daemon.Requests()) != 1 {
				t.Errorf("recorded %d requests, want 1", len(daemon.Requests()))
			}
		})
	}
}

func TestDaemonFailures(t *testing.T) {
	daemon := Start(t, codec.JSON)
	daemon.Handle(request.KindMyToken, Fail(&Failure{Message: "invalid_request", Description: "unknown account", Info: "hint"}))
	daemon.Handle(request.KindAccessToken, func(context.Context, *codec.Object) (codec.Value, error) {
		return codec.Value{}, errors.New("plain failure")
	})

	reply := roundTrip(t, daemon, codec.JSON, codec.ObjectValue(codec.NewObject().Set("request", codec.String("mytoken"))))
	if field(t, reply, "status") != "failure" || field(t, reply, "error_description") != "unknown account" || field(t, reply, "info") != "hint" {
		t.Errorf("unexpected mytoken failure reply")
	}

	reply = roundTrip(t, daemon, codec.JSON, codec.ObjectValue(codec.NewObject().Set("request", codec.String("access_token"))))
	if field(t, reply, "error") != "plain failure" {
		t.Errorf("error = %q", field(t, reply, "error"))
	}

	reply = roundTrip(t, daemon, codec.JSON, codec.ObjectValue(codec.NewObject().Set("request", codec.String("revoke"))))
	if field(t, reply, "status") != "failure" {
		t.Errorf("unknown request type got status %q", field(t, reply, "status"))
	}
}
