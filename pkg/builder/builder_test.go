package builder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/esclient-go/esclient/pkg/clienterr"
	"github.com/esclient-go/esclient/pkg/config"
	"github.com/esclient-go/esclient/pkg/security/secrets"
)

func esDoc(client, other map[string]any) map[string]any {
	block := map[string]any{}
	if client != nil {
		block["client"] = client
	}
	if other != nil {
		block["other_settings"] = other
	}
	return map[string]any{"elasticsearch": block}
}

func mustBuild(t *testing.T, opts Options) *Builder {
	t.Helper()
	b, err := Build(context.Background(), opts)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return b
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "es.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuild_Defaulting(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"no source", Options{}},
		{"empty dict", Options{ConfigDict: map[string]any{}}},
		{"empty block", Options{ConfigDict: esDoc(map[string]any{}, nil)}},
		{"null hosts", Options{ConfigDict: esDoc(map[string]any{"hosts": nil}, nil)}},
		{"empty file", Options{ConfigFile: writeFile(t, "elasticsearch:\n  other_settings:\n    master_only: false\n")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustBuild(t, tt.opts)
			if diff := cmp.Diff(config.DefaultHosts(), b.ClientArgs().Hosts); diff != "" {
				t.Errorf("hosts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuild_SourceSelection(t *testing.T) {
	file := writeFile(t, "elasticsearch:\n  client:\n    hosts: http://from-file:9200\n")
	dict := esDoc(map[string]any{"hosts": []any{"http://from-dict:9200"}}, nil)

	tests := []struct {
		name       string
		opts       Options
		wantHosts  []string
		wantSource string
	}{
		{"dict wins over file", Options{ConfigDict: dict, ConfigFile: file}, []string{"http://from-dict:9200"}, SourceDict},
		{"file", Options{ConfigFile: file}, []string{"http://from-file:9200"}, SourceFile},
		{"default", Options{}, config.DefaultHosts(), SourceDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustBuild(t, tt.opts)
			if diff := cmp.Diff(tt.wantHosts, b.ClientArgs().Hosts); diff != "" {
				t.Errorf("hosts mismatch (-want +got):\n%s", diff)
			}
			if b.Source() != tt.wantSource {
				t.Errorf("Source() = %q, want %q", b.Source(), tt.wantSource)
			}
		})
	}
}

func TestBuild_FileEnvSubstitution(t *testing.T) {
	t.Setenv("ESCLIENT_TEST_HOST", "http://env-host:9201")
	file := writeFile(t, `elasticsearch:
  client:
    hosts: ${ESCLIENT_TEST_HOST}
    request_timeout: ${ESCLIENT_TEST_UNSET:45}
`)

	b := mustBuild(t, Options{ConfigFile: file})

	if diff := cmp.Diff([]string{"http://env-host:9201"}, b.ClientArgs().Hosts); diff != "" {
		t.Errorf("hosts mismatch (-want +got):\n%s", diff)
	}
	if got := config.Deref(b.ClientArgs().RequestTimeout); got != 45 {
		t.Errorf("request_timeout = %v, want 45", got)
	}
}

func TestBuild_MissingFile(t *testing.T) {
	_, err := Build(context.Background(), Options{ConfigFile: filepath.Join(t.TempDir(), "missing.yml")})
	if !clienterr.IsConfiguration(err) {
		t.Errorf("Build() error = %v, want ConfigurationError", err)
	}
}

func TestBuild_ValidationFailure(t *testing.T) {
	_, err := Build(context.Background(), Options{
		ConfigDict: esDoc(map[string]any{"request_timeout": 0.0}, nil),
	})

	var fv *clienterr.FailedValidation
	if !errors.As(err, &fv) {
		t.Fatalf("Build() error = %v, want FailedValidation", err)
	}
	if fv.BadValue != 0.0 {
		t.Errorf("BadValue = %v, want 0", fv.BadValue)
	}
}

func TestBuild_HostNormalization(t *testing.T) {
	tests := []struct {
		name    string
		client  map[string]any
		want    []string
		wantErr string
	}{
		{
			name:   "default ports",
			client: map[string]any{"hosts": []any{"HTTPS://ES01", "http://es02"}},
			want:   []string{"https://es01:443", "http://es02:80"},
		},
		{
			name:   "explicit port kept",
			client: map[string]any{"hosts": "http://es01:9200"},
			want:   []string{"http://es01:9200"},
		},
		{
			name:   "client port replaces scheme default",
			client: map[string]any{"hosts": "http://es01", "port": 9201},
			want:   []string{"http://es01:9201"},
		},
		{
			name:    "bad scheme",
			client:  map[string]any{"hosts": "ftp://es01"},
			wantErr: "Invalid host schema: ftp://es01",
		},
		{
			name:    "too many colons",
			client:  map[string]any{"hosts": "http://es01:9200:1"},
			wantErr: "Invalid host schema",
		},
		{
			name:    "non-numeric port",
			client:  map[string]any{"hosts": "http://es01:abc"},
			wantErr: "Invalid host schema",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Build(context.Background(), Options{ConfigDict: esDoc(tt.client, nil)})
			if tt.wantErr != "" {
				if !clienterr.IsConfiguration(err) || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Build() error = %v, want ConfigurationError containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, b.ClientArgs().Hosts); diff != "" {
				t.Errorf("hosts mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(len(tt.want), len(b.Config()["client"].(map[string]any)["hosts"].([]any))); diff != "" {
				t.Errorf("validated hosts not rewritten: %s", diff)
			}
		})
	}
}

func TestBuild_CloudIDMutualExclusion(t *testing.T) {
	tests := []struct {
		name    string
		client  map[string]any
		wantErr bool
	}{
		{
			name:   "cloud id alone",
			client: map[string]any{"cloud_id": "c:abc"},
		},
		{
			name:   "cloud id with default hosts",
			client: map[string]any{"cloud_id": "c:abc", "hosts": []any{config.DefaultHost}},
		},
		{
			name:    "cloud id with explicit hosts",
			client:  map[string]any{"cloud_id": "c:abc", "hosts": []any{"http://es01:9200"}},
			wantErr: true,
		},
		{
			name:    "cloud id with default host among others",
			client:  map[string]any{"cloud_id": "c:abc", "hosts": []any{config.DefaultHost, "http://es01:9200"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Build(context.Background(), Options{ConfigDict: esDoc(tt.client, nil)})
			if tt.wantErr {
				if !clienterr.IsConfiguration(err) {
					t.Fatalf("Build() error = %v, want ConfigurationError", err)
				}
				if !strings.Contains(err.Error(), `Cannot populate both "hosts" and "cloud_id"`) {
					t.Errorf("error = %q", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if b.ClientArgs().Hosts != nil {
				t.Errorf("hosts = %v, want nil", b.ClientArgs().Hosts)
			}
			if got := config.Deref(b.ClientArgs().CloudID); got != "c:abc" {
				t.Errorf("cloud_id = %q", got)
			}
		})
	}
}

func TestBuild_BasicAuthCompleteness(t *testing.T) {
	tests := []struct {
		name     string
		other    map[string]any
		wantErr  bool
		wantPair []string
	}{
		{"neither", map[string]any{}, false, nil},
		{"both", map[string]any{"username": "elastic", "password": "changeme"}, false, []string{"elastic", "changeme"}},
		{"username only", map[string]any{"username": "elastic"}, true, nil},
		{"password only", map[string]any{"password": "changeme"}, true, nil},
		{"null password", map[string]any{"username": "elastic", "password": nil}, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Build(context.Background(), Options{ConfigDict: esDoc(nil, tt.other)})
			if tt.wantErr {
				if !clienterr.IsConfiguration(err) {
					t.Fatalf("Build() error = %v, want ConfigurationError", err)
				}
				if !strings.Contains(err.Error(), "Must populate both username and password, or neither") {
					t.Errorf("error = %q", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			pair, err := b.Secrets().Pair(secrets.BasicAuth)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.wantPair, pair); diff != "" {
				t.Errorf("basic_auth mismatch (-want +got):\n%s", diff)
			}
			if b.OtherArgs().Password != nil {
				t.Error("password left in other_settings")
			}
		})
	}
}

func TestBuild_APIKey(t *testing.T) {
	tests := []struct {
		name     string
		apiKey   map[string]any
		wantPair []string
		wantErr  string
	}{
		{
			name:     "token wins over id and api_key",
			apiKey:   map[string]any{"token": "Zm9vOmJhcg==", "id": "x", "api_key": "y"},
			wantPair: []string{"foo", "bar"},
		},
		{
			name:     "id and api_key",
			apiKey:   map[string]any{"id": "x", "api_key": "y"},
			wantPair: []string{"x", "y"},
		},
		{
			name:     "neither",
			apiKey:   map[string]any{},
			wantPair: nil,
		},
		{
			name:    "id only",
			apiKey:  map[string]any{"id": "x"},
			wantErr: "Must populate both id and api_key, or neither",
		},
		{
			name:    "api_key only",
			apiKey:  map[string]any{"api_key": "y"},
			wantErr: "Must populate both id and api_key, or neither",
		},
		{
			name:    "token not base64",
			apiKey:  map[string]any{"token": "not base64!"},
			wantErr: "Unable to parse base64 API Key Token",
		},
		{
			name:    "token without colon",
			apiKey:  map[string]any{"token": "Zm9vYmFy"},
			wantErr: "Unable to parse base64 API Key Token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Build(context.Background(), Options{
				ConfigDict: esDoc(nil, map[string]any{"api_key": tt.apiKey}),
			})
			if tt.wantErr != "" {
				if !clienterr.IsConfiguration(err) || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Build() error = %v, want ConfigurationError containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			pair, err := b.Secrets().Pair(secrets.APIKey)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.wantPair, pair); diff != "" {
				t.Errorf("api_key mismatch (-want +got):\n%s", diff)
			}

			raw := b.OtherArgs().APIKey
			if raw != nil && (raw.Token != nil || raw.ID != nil || raw.APIKey != nil) {
				t.Errorf("api key material left in other_settings: %+v", raw)
			}
		})
	}
}

func TestBuild_ClientAPIKeyKeptWhenOtherSettingsEmpty(t *testing.T) {
	b := mustBuild(t, Options{ConfigDict: esDoc(
		map[string]any{"api_key": []any{"cid", "ckey"}},
		map[string]any{"api_key": map[string]any{}},
	)})

	pair, err := b.Secrets().Pair(secrets.APIKey)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"cid", "ckey"}, pair); diff != "" {
		t.Errorf("api_key mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_SecretMigration(t *testing.T) {
	b := mustBuild(t, Options{ConfigDict: esDoc(
		map[string]any{
			"hosts":       []any{"http://es01:9200"},
			"basic_auth":  []any{"elastic", "changeme"},
			"bearer_auth": "tok",
		},
		nil,
	)})

	client := b.ClientArgs()
	if client.BasicAuth != nil || client.APIKey != nil || client.BearerAuth != nil {
		t.Errorf("credential slots not cleared: %+v", client)
	}
	validated := b.Config()["client"].(map[string]any)
	for _, k := range []string{"basic_auth", "bearer_auth"} {
		if validated[k] != nil {
			t.Errorf("validated client[%q] = %v, want nil", k, validated[k])
		}
	}
	args, err := b.ConnectionArgs()
	if err != nil {
		t.Fatalf("ConnectionArgs() error = %v", err)
	}
	if diff := cmp.Diff([]string{"elastic", "changeme"}, args.BasicAuth); diff != "" {
		t.Errorf("basic_auth mismatch (-want +got):\n%s", diff)
	}
	if got := config.Deref(args.BearerAuth); got != "tok" {
		t.Errorf("bearer_auth = %q", got)
	}
	if client.BasicAuth != nil {
		t.Error("ConnectionArgs() modified the working settings")
	}
}

func TestBuild_PasswordMigration(t *testing.T) {
	b := mustBuild(t, Options{ConfigDict: esDoc(
		map[string]any{
			"hosts":      []any{"http://es01:9200"},
			"basic_auth": []any{"client", "from-client"},
		},
		map[string]any{"username": "elastic", "password": "changeme"},
	)})

	if b.OtherArgs().Password != nil {
		t.Error("password slot not cleared")
	}
	if b.Config()["other_settings"].(map[string]any)["password"] != nil {
		t.Error("validated password not cleared")
	}
	if b.ClientArgs().BasicAuth != nil {
		t.Errorf("basic_auth slot = %v, want nil", b.ClientArgs().BasicAuth)
	}

	args, err := b.ConnectionArgs()
	if err != nil {
		t.Fatalf("ConnectionArgs() error = %v", err)
	}
	// other_settings credentials replace a client-level pair.
	if diff := cmp.Diff([]string{"elastic", "changeme"}, args.BasicAuth); diff != "" {
		t.Errorf("basic_auth mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Idempotence(t *testing.T) {
	b := mustBuild(t, Options{ConfigDict: esDoc(
		map[string]any{"hosts": []any{"http://es01"}, "bearer_auth": "tok"},
		map[string]any{
			"username": "elastic",
			"password": "changeme",
			"api_key":  map[string]any{"token": "Zm9vOmJhcg==", "id": "x", "api_key": "y"},
		},
	)})

	snapshot := func() map[string]any {
		out := map[string]any{}
		for _, name := range b.Secrets().Names() {
			var v any
			if _, err := b.Secrets().Retrieve(name, &v); err != nil {
				t.Fatal(err)
			}
			out[name] = v
		}
		return out
	}
	before := snapshot()
	hostsBefore := b.ClientArgs().Hosts

	for i := 0; i < 2; i++ {
		if err := b.Resolve(context.Background()); err != nil {
			t.Fatalf("Resolve() run %d error = %v", i+1, err)
		}
	}

	if diff := cmp.Diff(before, snapshot()); diff != "" {
		t.Errorf("secret store changed (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(hostsBefore, b.ClientArgs().Hosts); diff != "" {
		t.Errorf("hosts changed (-before +after):\n%s", diff)
	}
}

func TestBuild_TLS(t *testing.T) {
	t.Run("missing ca_certs", func(t *testing.T) {
		_, err := Build(context.Background(), Options{ConfigDict: esDoc(map[string]any{
			"hosts":    "https://es01:9200",
			"ca_certs": "/nonexistent/ca.pem",
		}, nil)})
		if !clienterr.IsConfiguration(err) {
			t.Fatalf("Build() error = %v, want ConfigurationError", err)
		}
		if !strings.Contains(err.Error(), `"ca_certs: /nonexistent/ca.pem" File not found!`) {
			t.Errorf("error = %q", err)
		}
	})

	t.Run("missing client_key", func(t *testing.T) {
		_, err := Build(context.Background(), Options{ConfigDict: esDoc(map[string]any{
			"hosts":      "http://es01:9200",
			"client_key": "/nonexistent/key.pem",
		}, nil)})
		if !clienterr.IsConfiguration(err) || !strings.Contains(err.Error(), "client_key") {
			t.Fatalf("Build() error = %v, want ConfigurationError naming client_key", err)
		}
	})

	t.Run("system bundle fallback", func(t *testing.T) {
		bundle := filepath.Join(t.TempDir(), "bundle.pem")
		if err := os.WriteFile(bundle, []byte("placeholder"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("SSL_CERT_FILE", bundle)

		b := mustBuild(t, Options{ConfigDict: esDoc(map[string]any{"hosts": "https://es01:9200"}, nil)})
		if got := config.Deref(b.ClientArgs().CACerts); got != bundle {
			t.Errorf("ca_certs = %q, want %q", got, bundle)
		}
	})

	t.Run("http keeps ca_certs unset", func(t *testing.T) {
		b := mustBuild(t, Options{ConfigDict: esDoc(map[string]any{"hosts": "http://es01:9200"}, nil)})
		if b.ClientArgs().CACerts != nil {
			t.Errorf("ca_certs = %q, want unset", *b.ClientArgs().CACerts)
		}
	})
}

func TestBuild_VersionBounds(t *testing.T) {
	if _, err := Build(context.Background(), Options{VersionMin: "eight"}); !clienterr.IsConfiguration(err) {
		t.Errorf("Build() error = %v, want ConfigurationError", err)
	}

	b := mustBuild(t, Options{})
	if b.VersionMin().String() != "8.0.0" || b.VersionMax().String() != "8.99.99" {
		t.Errorf("bounds = [%s, %s)", b.VersionMin(), b.VersionMax())
	}
}

func TestBuilder_String(t *testing.T) {
	b := mustBuild(t, Options{ConfigDict: esDoc(
		map[string]any{"hosts": "http://es01:9200"},
		map[string]any{"username": "elastic", "password": "s3cret"},
	)})

	s := b.String()
	if strings.Contains(s, "s3cret") {
		t.Errorf("String() leaks the password: %s", s)
	}
	if !strings.Contains(s, "http://es01:9200") || !strings.Contains(s, b.ID()) {
		t.Errorf("String() = %s", s)
	}
}

func TestBuild_IndependentStores(t *testing.T) {
	opts := Options{ConfigDict: esDoc(nil, map[string]any{"username": "u", "password": "p"})}
	a := mustBuild(t, opts)
	b := mustBuild(t, opts)

	if a.Secrets() == b.Secrets() || a.ID() == b.ID() {
		t.Error("builders share state")
	}
}
