package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/definitions"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   []byte
	User   string
	Pass   string
}

// newTestClient starts a server that records every request and answers
// with handler. Paths passed to handler are escaped and relative to /api.
func newTestClient(t *testing.T, handler func(w http.ResponseWriter, method, path string, body []byte), opts ...Option) (*Client, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		user, pass, _ := r.BasicAuth()
		path := r.URL.EscapedPath()[len("/api/"):]
		requests = append(requests, recordedRequest{Method: r.Method, Path: path, Body: body, User: user, Pass: pass})
		handler(w, r.Method, path, body)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(append([]Option{WithEndpoint(srv.URL + "/api")}, opts...)...)
	require.NoError(t, err)
	return c, &requests
}

func respondJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient()
	require.NoError(t, err)
	assert.Equal(t, DefaultEndpoint, c.Endpoint())
	assert.Equal(t, DefaultUsername, c.username)

	_, err = NewClient(WithEndpoint("ftp://localhost:15672/api"))
	assert.Error(t, err)

	c, err = NewClient(WithEndpoint("https://rabbit.local:15671/api/"))
	require.NoError(t, err)
	assert.Equal(t, "https://rabbit.local:15671/api", c.Endpoint())
}

func TestWithTimeoutDoesNotModifyCallerClient(t *testing.T) {
	hc := &http.Client{}
	c, err := NewClient(WithHTTPClient(hc), WithTimeout(3*time.Second), WithRequestLogging())
	require.NoError(t, err)
	assert.Zero(t, hc.Timeout)
	assert.Nil(t, hc.Transport)
	assert.Equal(t, 3*time.Second, c.client.Timeout)
}

func TestDefaultVirtualHostIsPercentEncoded(t *testing.T) {
	c, reqs := newTestClient(t, func(w http.ResponseWriter, _, _ string, _ []byte) {
		respondJSON(w, http.StatusOK, `{"name":"orders","vhost":"/","type":"quorum","durable":true,"arguments":{"x-queue-type":"quorum"}}`)
	}, WithBasicAuth("ops", "s3cr3t"))

	q, err := c.GetQueueInfo(context.Background(), "/", "orders")
	require.NoError(t, err)
	assert.Equal(t, definitions.QueueTypeQuorum, q.QueueType())
	assert.True(t, definitions.ArgumentsOf(&q).ContainsAnyKeysOf("x-queue-type"))

	require.Len(t, *reqs, 1)
	assert.Equal(t, "queues/%2F/orders", (*reqs)[0].Path)
	assert.Equal(t, "ops", (*reqs)[0].User)
	assert.Equal(t, "s3cr3t", (*reqs)[0].Pass)
}

func TestDeclareQueue(t *testing.T) {
	c, reqs := newTestClient(t, func(w http.ResponseWriter, _, _ string, _ []byte) {
		w.WriteHeader(http.StatusCreated)
	})

	params := NewQuorumQueueParams("events.1")
	definitions.ArgumentsOf(&params).Insert("x-max-length", 1000)
	require.NoError(t, c.DeclareQueue(context.Background(), "events", params))

	req := (*reqs)[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "queues/events/events.1", req.Path)
	assert.JSONEq(t, `{"durable":true,"auto_delete":false,"exclusive":false,
		"arguments":{"x-queue-type":"quorum","x-max-length":1000}}`, string(req.Body))
}

func TestEmptyNamesAreRejectedBeforeRequest(t *testing.T) {
	c, reqs := newTestClient(t, func(w http.ResponseWriter, _, _ string, _ []byte) {
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()

	err := c.DeleteQueue(ctx, "/", "  ", false)
	assert.True(t, errdefs.IsInvalidArgument(err))
	assert.ErrorContains(t, err, "value is empty")

	err = c.DeclarePolicy(ctx, PolicyParams{VirtualHost: "", Name: "p"})
	assert.True(t, errdefs.IsInvalidArgument(err))

	_, err = c.GetUser(ctx, "")
	assert.True(t, errdefs.IsInvalidArgument(err))

	assert.Empty(t, *reqs)
}

func TestErrorResponsesAreClassified(t *testing.T) {
	cases := []struct {
		status int
		check  func(error) bool
		client bool
	}{
		{http.StatusBadRequest, errdefs.IsInvalidArgument, true},
		{http.StatusUnauthorized, errdefs.IsUnauthorized, true},
		{http.StatusForbidden, errdefs.IsPermissionDenied, true},
		{http.StatusNotFound, errdefs.IsNotFound, true},
		{http.StatusConflict, errdefs.IsConflict, true},
		{http.StatusInternalServerError, errdefs.IsInternal, false},
		{http.StatusServiceUnavailable, errdefs.IsUnavailable, false},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, _, _ string, _ []byte) {
				respondJSON(w, tc.status, `{"error":"bad_request","reason":"inequivalent arg 'x-queue-type'"}`)
			})

			_, err := c.ListQueuesIn(context.Background(), "/")
			require.Error(t, err)
			assert.True(t, tc.check(err), err.Error())
			assert.Equal(t, tc.client, IsClientError(err))
			assert.Equal(t, !tc.client, IsServerError(err))

			var re *ResponseError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tc.status, re.StatusCode)
			assert.Equal(t, "inequivalent arg 'x-queue-type'", re.Details.Reason)
			assert.Contains(t, err.Error(), "inequivalent arg")
		})
	}
}

func TestErrorResponseWithPlainTextBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _, _ string, _ []byte) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>Bad Gateway</html>")
	})

	_, err := c.Overview(context.Background())
	var re *ResponseError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "<html>Bad Gateway</html>", re.Body)
	assert.Empty(t, re.Details.Reason)
}

func TestIdempotentDelete(t *testing.T) {
	c, reqs := newTestClient(t, func(w http.ResponseWriter, _, _ string, _ []byte) {
		respondJSON(w, http.StatusNotFound, `{"error":"Object Not Found","reason":"Not Found"}`)
	})
	ctx := context.Background()

	assert.NoError(t, c.DeleteVirtualHost(ctx, "gone", true))
	err := c.DeleteVirtualHost(ctx, "gone", false)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, http.MethodDelete, (*reqs)[0].Method)
	assert.Equal(t, "vhosts/gone", (*reqs)[0].Path)
}

func TestRetriesOnUnavailable(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, _, _ string, _ []byte) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		respondJSON(w, http.StatusOK, `{"rabbitmq_version":"4.0.5","cluster_name":"rabbit@localhost"}`)
	}, WithRetrySettings(RetrySettings{MaxAttempts: 3, Delay: time.Millisecond}))

	v, err := c.ServerVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4.0.5", v)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetriesGiveUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, _, _ string, _ []byte) {
		calls.Add(1)
		w.WriteHeader(http.StatusGatewayTimeout)
	}, WithRetrySettings(RetrySettings{MaxAttempts: 2, Delay: time.Millisecond}))

	_, err := c.ListNodes(context.Background())
	assert.True(t, IsServerError(err))
	assert.Equal(t, int32(2), calls.Load())
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, _, _ string, _ []byte) {
		calls.Add(1)
		respondJSON(w, http.StatusBadRequest, `{"error":"bad_request","reason":"invalid"}`)
	}, WithRetrySettings(RetrySettings{MaxAttempts: 5, Delay: time.Millisecond}))

	err := c.CreateVirtualHost(context.Background(), VirtualHostParams{Name: "x"})
	assert.True(t, errdefs.IsInvalidArgument(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestTransportErrorsAreRequestErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL + "/api"
	srv.Close()

	c, err := NewClient(WithEndpoint(endpoint))
	require.NoError(t, err)
	_, err = c.Overview(context.Background())
	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.MethodGet, re.Method)
}

func TestContextErrorsAreNotDecorated(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _, _ string, _ []byte) {
		w.WriteHeader(http.StatusOK)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListUsers(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestMalformedResponse(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _, _ string, _ []byte) {
		respondJSON(w, http.StatusOK, `[{"name":`)
	})
	_, err := c.ListVirtualHosts(context.Background())
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestDeleteBindingUsesPropertiesKey(t *testing.T) {
	c, reqs := newTestClient(t, func(w http.ResponseWriter, method, path string, _ []byte) {
		if method == http.MethodGet {
			respondJSON(w, http.StatusOK, `[
				{"source":"","vhost":"/","destination":"orders","destination_type":"queue","routing_key":"orders","arguments":{},"properties_key":"orders"},
				{"source":"events","vhost":"/","destination":"orders","destination_type":"queue","routing_key":"eu.*","arguments":{},"properties_key":"eu.*"},
				{"source":"events","vhost":"/","destination":"orders","destination_type":"queue","routing_key":"us.*","arguments":{},"properties_key":"us.*"}
			]`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.DeleteBinding(context.Background(), BindingDeletionParams{
		VirtualHost:     "/",
		Source:          "events",
		Destination:     "orders",
		DestinationType: definitions.BindingDestinationQueue,
		RoutingKey:      "eu.*",
	}, false)
	require.NoError(t, err)

	require.Len(t, *reqs, 2)
	assert.Equal(t, "queues/%2F/orders/bindings", (*reqs)[0].Path)
	assert.Equal(t, http.MethodDelete, (*reqs)[1].Method)
	assert.Equal(t, "bindings/%2F/e/events/q/orders/eu.%2A", (*reqs)[1].Path)
}

func TestDeleteBindingWithoutMatches(t *testing.T) {
	c, reqs := newTestClient(t, func(w http.ResponseWriter, _, _ string, _ []byte) {
		respondJSON(w, http.StatusOK, `[]`)
	})
	params := BindingDeletionParams{
		VirtualHost:     "/",
		Source:          "events",
		Destination:     "audit",
		DestinationType: definitions.BindingDestinationExchange,
	}

	err := c.DeleteBinding(context.Background(), params, false)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, errdefs.IsNotFound(err))
	assert.NoError(t, c.DeleteBinding(context.Background(), params, true))
	assert.Equal(t, "exchanges/%2F/audit/bindings/destination", (*reqs)[0].Path)
}

func TestDeleteBindingWithSeveralMatches(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _, _ string, _ []byte) {
		respondJSON(w, http.StatusOK, `[
			{"source":"events","vhost":"/","destination":"orders","destination_type":"queue","routing_key":"","arguments":{},"properties_key":"~"},
			{"source":"events","vhost":"/","destination":"orders","destination_type":"queue","routing_key":"","arguments":{},"properties_key":"~"}
		]`)
	})

	err := c.DeleteBinding(context.Background(), BindingDeletionParams{
		VirtualHost:     "/",
		Source:          "events",
		Destination:     "orders",
		DestinationType: definitions.BindingDestinationQueue,
	}, true)
	assert.ErrorIs(t, err, ErrMultipleMatchingBindings)
}

func TestBindQueue(t *testing.T) {
	c, reqs := newTestClient(t, func(w http.ResponseWriter, _, _ string, _ []byte) {
		w.WriteHeader(http.StatusCreated)
	})
	err := c.BindQueue(context.Background(), "/", "orders", "events", "eu.*", definitions.XArguments{"x-match": "any"})
	require.NoError(t, err)

	req := (*reqs)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "bindings/%2F/e/events/q/orders", req.Path)
	assert.JSONEq(t, `{"routing_key":"eu.*","arguments":{"x-match":"any"}}`, string(req.Body))
}

func TestDeclarePolicyDefaultsToAll(t *testing.T) {
	c, reqs := newTestClient(t, func(w http.ResponseWriter, _, _ string, _ []byte) {
		w.WriteHeader(http.StatusCreated)
	})
	params := PolicyParams{VirtualHost: "/", Name: "ttl", Pattern: "^ttl\\."}
	definitions.ArgumentsOf(&params).Insert("message-ttl", 60000)
	require.NoError(t, c.DeclareOperatorPolicy(context.Background(), params))

	req := (*reqs)[0]
	assert.Equal(t, "operator-policies/%2F/ttl", req.Path)

	var body map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, "all", body["apply-to"])
	assert.Equal(t, map[string]any{"message-ttl": float64(60000)}, body["definition"])
}

func TestDeclareFederationUpstream(t *testing.T) {
	c, reqs := newTestClient(t, func(w http.ResponseWriter, _, _ string, _ []byte) {
		w.WriteHeader(http.StatusCreated)
	})
	params := NewFederationUpstreamParams("/", "up.1", "amqp://upstream.local")
	params.Queue = "orders"
	require.NoError(t, c.DeclareFederationUpstream(context.Background(), params))

	req := (*reqs)[0]
	assert.Equal(t, "parameters/federation-upstream/%2F/up.1", req.Path)
	assert.JSONEq(t, `{"name":"up.1","vhost":"/","component":"federation-upstream","value":{
		"uri":"amqp://upstream.local","prefetch-count":1000,"reconnect-delay":5,
		"trust-user-id":false,"ack-mode":"on-confirm","queue":"orders"}}`, string(req.Body))
}

func TestDeclareShovel(t *testing.T) {
	c, reqs := newTestClient(t, func(w http.ResponseWriter, _, _ string, _ []byte) {
		w.WriteHeader(http.StatusCreated)
	})
	require.NoError(t, c.DeclareAMQP091Shovel(context.Background(), Amqp091ShovelParams{
		Name:             "move.orders",
		VirtualHost:      "/",
		SourceURI:        "amqp://old.local",
		SourceQueue:      "orders",
		DestinationURI:   "amqp://new.local",
		DestinationQueue: "orders",
	}))

	req := (*reqs)[0]
	assert.Equal(t, "parameters/shovel/%2F/move.orders", req.Path)
	assert.JSONEq(t, `{"name":"move.orders","vhost":"/","component":"shovel","value":{
		"src-protocol":"amqp091","dest-protocol":"amqp091",
		"src-uri":"amqp://old.local","src-queue":"orders",
		"dest-uri":"amqp://new.local","dest-queue":"orders","ack-mode":"on-confirm"}}`, string(req.Body))
}

func TestHealthChecks(t *testing.T) {
	c, reqs := newTestClient(t, func(w http.ResponseWriter, _, path string, _ []byte) {
		switch path {
		case "health/checks/alarms":
			respondJSON(w, http.StatusOK, `{"status":"ok"}`)
		case "health/checks/local-alarms":
			respondJSON(w, http.StatusServiceUnavailable, `{"status":"failed","reason":"resource alarm(s) in effect",
				"alarms":[{"node":"rabbit@node1","resource":"disk"}]}`)
		case "health/checks/port-listener/5671":
			respondJSON(w, http.StatusServiceUnavailable, `{"status":"failed","reason":"no listener","missing":5671}`)
		default:
			respondJSON(w, http.StatusNotFound, `{}`)
		}
	}, WithRetrySettings(RetrySettings{MaxAttempts: 3, Delay: time.Millisecond}))
	ctx := context.Background()

	assert.NoError(t, c.HealthCheckClusterWideAlarms(ctx))

	err := c.HealthCheckLocalAlarms(ctx)
	var failed *HealthCheckFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "health/checks/local-alarms", failed.Path)
	assert.Equal(t, []ResourceAlarm{{Node: "rabbit@node1", Resource: "disk"}}, failed.Details.Alarms)
	assert.True(t, errdefs.IsUnavailable(err))

	err = c.HealthCheckPortListener(ctx, 5671)
	require.ErrorAs(t, err, &failed)
	assert.JSONEq(t, `5671`, string(failed.Details.Missing))

	// a failed check is an answer, it is not retried
	assert.Len(t, *reqs, 3)
}

func TestProbeReachability(t *testing.T) {
	c, reqs := newTestClient(t, func(w http.ResponseWriter, _, _ string, _ []byte) {
		respondJSON(w, http.StatusOK, `{"name":"guest","tags":["administrator"]}`)
	})
	outcome := c.ProbeReachability(context.Background())
	require.True(t, outcome.Reached())
	assert.Equal(t, "guest", outcome.CurrentUser.Name)
	assert.Equal(t, definitions.Tags{"administrator"}, outcome.CurrentUser.Tags)
	assert.Equal(t, "whoami", (*reqs)[0].Path)

	denied, _ := newTestClient(t, func(w http.ResponseWriter, _, _ string, _ []byte) {
		respondJSON(w, http.StatusUnauthorized, `{"error":"not_authorized","reason":"Login failed"}`)
	})
	outcome = denied.ProbeReachability(context.Background())
	assert.False(t, outcome.Reached())
	assert.True(t, errdefs.IsUnauthorized(outcome.Err))
}

func TestCurrentUserWithStringTags(t *testing.T) {
	var u CurrentUser
	require.NoError(t, json.Unmarshal([]byte(`{"name":"monitor","tags":"monitoring,management","extra":{"a":[1]}}`), &u))
	assert.Equal(t, "monitor", u.Name)
	assert.Equal(t, definitions.Tags{"monitoring", "management"}, u.Tags)

	out, err := json.Marshal(CurrentUser{Name: "monitor"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"monitor","tags":[]}`, string(out))
}

func TestExportAndImportDefinitions(t *testing.T) {
	c, reqs := newTestClient(t, func(w http.ResponseWriter, method, _ string, _ []byte) {
		if method == http.MethodGet {
			respondJSON(w, http.StatusOK, `{"rabbitmq_version":"3.13.7","policies":[
				{"vhost":"/","name":"cmq","pattern":".*","apply-to":"queues","priority":0,"definition":{"ha-mode":"all"}}]}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()

	defs, err := c.ExportClusterWideDefinitions(ctx)
	require.NoError(t, err)
	assert.Equal(t, "3.13.7", defs.Version())
	require.Len(t, defs.Policies, 1)
	assert.True(t, defs.Policies[0].HasCMQKeys())

	definitions.ArgumentsOf(&defs.Policies[0]).StripCMQKeys()
	require.NoError(t, c.ImportClusterWideDefinitions(ctx, defs))

	req := (*reqs)[1]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "definitions", req.Path)

	imported, err := definitions.ParseClusterDefinitionSet(req.Body)
	require.NoError(t, err)
	assert.Empty(t, imported.Policies[0].Definition)

	require.NoError(t, c.ImportVirtualHostDefinitions(ctx, "/", `{"queues":[]}`))
	assert.Equal(t, "definitions/%2F", (*reqs)[2].Path)
	assert.Equal(t, `{"queues":[]}`, string((*reqs)[2].Body))
}
