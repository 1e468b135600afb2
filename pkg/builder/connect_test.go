package builder

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/esclient-go/esclient/pkg/clienterr"
	"github.com/esclient-go/esclient/pkg/config"
	"github.com/esclient-go/esclient/pkg/telemetry/logging"
	"github.com/esclient-go/esclient/pkg/telemetry/metrics"
)

type fakeClient struct {
	version    string
	localNode  string
	masterNode string
	err        error

	versionCalls int
}

func (f *fakeClient) Version(context.Context) (string, error) {
	f.versionCalls++
	return f.version, f.err
}

func (f *fakeClient) LocalNodeID(context.Context) (string, error) {
	return f.localNode, f.err
}

func (f *fakeClient) MasterNodeID(context.Context) (string, error) {
	return f.masterNode, f.err
}

// factoryFor returns a factory handing out fc and counting its calls.
func factoryFor(fc *fakeClient, calls *int) ClientFactory {
	return func(args *config.ClientSettings, _ *logging.Logger) (Client, error) {
		*calls++
		return fc, nil
	}
}

func TestConnect(t *testing.T) {
	tests := []struct {
		name      string
		client    map[string]any
		other     map[string]any
		fake      fakeClient
		wantErr   func(error) bool
		wantCalls int
	}{
		{
			name:      "supported version",
			fake:      fakeClient{version: "8.11.3"},
			wantCalls: 1,
		},
		{
			name:      "snapshot suffix",
			fake:      fakeClient{version: "8.0.0-SNAPSHOT"},
			wantCalls: 1,
		},
		{
			name:      "below minimum",
			fake:      fakeClient{version: "7.17.9"},
			wantErr:   isClientError("Elasticsearch version 7.17.9 not supported"),
			wantCalls: 1,
		},
		{
			name:      "maximum is exclusive",
			fake:      fakeClient{version: "8.99.99"},
			wantErr:   isClientError("Elasticsearch version 8.99.99 not supported"),
			wantCalls: 1,
		},
		{
			name:      "skip version test",
			other:     map[string]any{"skip_version_test": true},
			fake:      fakeClient{version: "7.0.0"},
			wantCalls: 1,
		},
		{
			name:      "master only on master",
			other:     map[string]any{"master_only": true},
			fake:      fakeClient{version: "8.1.0", localNode: "n1", masterNode: "n1"},
			wantCalls: 1,
		},
		{
			name:      "master only on non-master",
			other:     map[string]any{"master_only": true},
			fake:      fakeClient{version: "8.1.0", localNode: "n1", masterNode: "n2"},
			wantErr:   isNotMaster,
			wantCalls: 1,
		},
		{
			name:   "master only with multiple hosts",
			client: map[string]any{"hosts": []any{"http://a:9200", "http://b:9200"}},
			other:  map[string]any{"master_only": true},
			fake:   fakeClient{version: "8.1.0", localNode: "n1", masterNode: "n1"},
			wantErr: func(err error) bool {
				return clienterr.IsConfiguration(err) &&
					strings.Contains(err.Error(), `"master_only" cannot be True if multiple hosts are specified`)
			},
			wantCalls: 0,
		},
		{
			name:      "multiple hosts without master only",
			client:    map[string]any{"hosts": []any{"http://a:9200", "http://b:9200"}},
			fake:      fakeClient{version: "8.1.0", localNode: "n1", masterNode: "n2"},
			wantCalls: 1,
		},
		{
			name:      "version call fails",
			fake:      fakeClient{err: errors.New("connection refused")},
			wantErr:   isClientError("Unable to determine Elasticsearch version"),
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := tt.fake
			calls := 0
			b := mustBuild(t, Options{
				ConfigDict:    esDoc(tt.client, tt.other),
				ClientFactory: factoryFor(&fake, &calls),
			})

			err := b.Connect(context.Background())
			if tt.wantErr != nil {
				if err == nil || !tt.wantErr(err) {
					t.Errorf("Connect() error = %v", err)
				}
			} else if err != nil {
				t.Errorf("Connect() error = %v", err)
			}
			if calls != tt.wantCalls {
				t.Errorf("factory calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func isClientError(msg string) func(error) bool {
	return func(err error) bool {
		var ce *clienterr.ClientError
		return errors.As(err, &ce) && strings.Contains(err.Error(), msg)
	}
}

func isNotMaster(err error) bool {
	var nm *clienterr.NotMaster
	return errors.As(err, &nm) && nm.LocalNode == "n1" && nm.MasterNode == "n2"
}

func TestConnect_SkipVersionDoesNotQuery(t *testing.T) {
	fake := &fakeClient{version: "1.0.0"}
	calls := 0
	b := mustBuild(t, Options{
		ConfigDict:    esDoc(nil, map[string]any{"skip_version_test": true}),
		ClientFactory: factoryFor(fake, &calls),
	})

	if err := b.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if fake.versionCalls != 0 {
		t.Errorf("Version() called %d times", fake.versionCalls)
	}
}

func TestConnect_CustomBounds(t *testing.T) {
	fake := &fakeClient{version: "7.10.2"}
	calls := 0
	b := mustBuild(t, Options{
		VersionMin:    "7.0.0",
		VersionMax:    "8.0.0",
		ClientFactory: factoryFor(fake, &calls),
	})

	if err := b.Connect(context.Background()); err != nil {
		t.Errorf("Connect() error = %v", err)
	}
}

func TestConnect_ReceivesSecrets(t *testing.T) {
	var got *config.ClientSettings
	factory := func(args *config.ClientSettings, _ *logging.Logger) (Client, error) {
		got = args
		return &fakeClient{version: "8.2.0"}, nil
	}

	b := mustBuild(t, Options{
		ConfigDict: esDoc(
			map[string]any{"hosts": "http://es01:9200"},
			map[string]any{
				"username": "elastic",
				"password": "changeme",
				"api_key":  map[string]any{"id": "x", "api_key": "y"},
			},
		),
		ClientFactory: factory,
	})
	if err := b.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if len(got.BasicAuth) != 2 || got.BasicAuth[1] != "changeme" {
		t.Errorf("basic_auth = %v", got.BasicAuth)
	}
	if len(got.APIKey) != 2 || got.APIKey[0] != "x" {
		t.Errorf("api_key = %v", got.APIKey)
	}
}

func TestConnect_FactoryError(t *testing.T) {
	factory := func(*config.ClientSettings, *logging.Logger) (Client, error) {
		return nil, errors.New("dial failed")
	}
	b := mustBuild(t, Options{ClientFactory: factory})

	err := b.Connect(context.Background())
	var ce *clienterr.ClientError
	if !errors.As(err, &ce) {
		t.Errorf("Connect() error = %v, want ClientError", err)
	}
}

func TestBuild_Autoconnect(t *testing.T) {
	fake := &fakeClient{version: "6.8.0"}
	calls := 0
	_, err := Build(context.Background(), Options{
		Autoconnect:   true,
		ClientFactory: factoryFor(fake, &calls),
	})
	if err == nil {
		t.Fatal("Build() with an unsupported version succeeded")
	}
	if calls != 1 {
		t.Errorf("factory calls = %d, want 1", calls)
	}
}

func TestConnect_Metrics(t *testing.T) {
	collector := metrics.NewCollector(metrics.Config{Enabled: true}, nil)
	calls := 0
	b := mustBuild(t, Options{
		ConfigDict:    esDoc(nil, map[string]any{"master_only": true}),
		ClientFactory: factoryFor(&fakeClient{version: "8.3.0", localNode: "a", masterNode: "b"}, &calls),
		Metrics:       collector,
	})

	if err := b.Connect(context.Background()); err == nil {
		t.Fatal("Connect() succeeded against a non-master node")
	}

	expected := `
# HELP esclient_connection_checks_total Total number of post-connection invariant checks
# TYPE esclient_connection_checks_total counter
esclient_connection_checks_total{check="connect",result="pass"} 1
esclient_connection_checks_total{check="master_only",result="fail"} 1
esclient_connection_checks_total{check="version",result="pass"} 1
`
	if err := testutil.GatherAndCompare(collector.Registry(), strings.NewReader(expected),
		"esclient_connection_checks_total"); err != nil {
		t.Error(err)
	}
	got, err := testutil.GatherAndCount(collector.Registry(), "esclient_builds_total")
	if err != nil {
		t.Fatalf("GatherAndCount() error = %v", err)
	}
	if got != 1 {
		t.Errorf("builds_total series = %d, want 1", got)
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"8.11.3", "8.11.3", false},
		{"8.0.0-SNAPSHOT", "8.0.0", false},
		{"8.1.2.4", "8.1.2", false},
		{"8.1", "8.1.0", false},
		{"8.x.0", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseVersion(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseVersion(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVersion(%q) error = %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseVersion(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}
