package builder

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"

	"github.com/esclient-go/esclient/pkg/clienterr"
	"github.com/esclient-go/esclient/pkg/config"
	"github.com/esclient-go/esclient/pkg/security/secrets"
	"github.com/esclient-go/esclient/pkg/telemetry/logging"
	"github.com/esclient-go/esclient/pkg/telemetry/metrics"
	"github.com/esclient-go/esclient/pkg/transport"
)

// Error messages.
const (
	msgInvalidHostSchema  = "Invalid host schema: %s"
	msgBothAuth           = "Must populate both username and password, or neither"
	msgBothAPIKey         = "Must populate both id and api_key, or neither"
	msgBadToken           = "Unable to parse base64 API Key Token"
	msgHostsAndCloudID    = `Cannot populate both "hosts" and "cloud_id"`
	msgMultipleHostMaster = `"master_only" cannot be True if multiple hosts are specified. Hosts = %v`
	msgUnsupportedVersion = "Elasticsearch version %s not supported"
)

// Configuration sources, as reported to metrics.
const (
	SourceDict    = "dict"
	SourceFile    = "file"
	SourceDefault = "default"
)

// Client is the connection handle the invariant checks run against.
type Client interface {
	// Version returns the server's version string, e.g. "8.11.3".
	Version(ctx context.Context) (string, error)
	// LocalNodeID returns the ID of the node serving the connection.
	LocalNodeID(ctx context.Context) (string, error)
	// MasterNodeID returns the ID of the elected master node.
	MasterNodeID(ctx context.Context) (string, error)
}

// ClientFactory creates a Client from resolved connection arguments.
type ClientFactory func(args *config.ClientSettings, logger *logging.Logger) (Client, error)

// DefaultClientFactory connects over HTTP.
func DefaultClientFactory(args *config.ClientSettings, logger *logging.Logger) (Client, error) {
	return transport.New(args, transport.WithLogger(logger))
}

// Options configures Build.
type Options struct {
	// ConfigDict is an in-memory document. It takes precedence over
	// ConfigFile.
	ConfigDict map[string]any
	// ConfigFile is the path of a YAML document.
	ConfigFile string
	// Autoconnect runs Connect at the end of Build.
	Autoconnect bool

	// VersionMin is the lowest accepted server version (inclusive).
	// Default: 8.0.0
	VersionMin string
	// VersionMax bounds the accepted server versions (exclusive).
	// Default: 8.99.99
	VersionMax string

	ClientFactory ClientFactory
	Logger        *logging.Logger
	Metrics       *metrics.Collector
}

// Builder holds one resolved configuration.
type Builder struct {
	id     string
	source string

	// config is the validated document, holding "client" and
	// "other_settings". Migrated secrets are nulled here too.
	config map[string]any
	client *config.ClientSettings
	other  *config.OtherSettings

	secrets *secrets.Store

	versionMin *semver.Version
	versionMax *semver.Version

	factory  ClientFactory
	conn     Client
	isMaster bool

	// baseLogger is handed to the client factory so transport records are
	// named "transport" and not "builder.transport".
	baseLogger *logging.Logger
	logger     *logging.Logger
	metrics    *metrics.Collector
}

// Build resolves a configuration and, with Autoconnect, connects with it.
// Every failure is returned immediately; nothing is retried.
func Build(ctx context.Context, opts Options) (*Builder, error) {
	start := time.Now()

	b, err := newBuilder(opts)
	if err != nil {
		return nil, err
	}
	ctx = logging.WithBuilderID(ctx, b.id)

	err = b.build(ctx, opts)
	result := "success"
	if err != nil {
		result = "error"
	}
	b.metrics.RecordBuild(b.source, result, time.Since(start))
	if err != nil {
		return nil, err
	}

	if opts.Autoconnect {
		if err := b.Connect(ctx); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func newBuilder(opts Options) (*Builder, error) {
	store, err := secrets.NewStore()
	if err != nil {
		return nil, clienterr.WrapClient(err, "Unable to initialize secret store")
	}

	minText, maxText := opts.VersionMin, opts.VersionMax
	if minText == "" {
		minText = config.DefaultVersionMin
	}
	if maxText == "" {
		maxText = config.DefaultVersionMax
	}
	versionMin, err := semver.NewVersion(minText)
	if err != nil {
		return nil, clienterr.WrapConfig(err, "Invalid minimum version %q", minText)
	}
	versionMax, err := semver.NewVersion(maxText)
	if err != nil {
		return nil, clienterr.WrapConfig(err, "Invalid maximum version %q", maxText)
	}

	factory := opts.ClientFactory
	if factory == nil {
		factory = DefaultClientFactory
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Builder{
		id:         uuid.New().String(),
		client:     &config.ClientSettings{},
		other:      &config.OtherSettings{},
		secrets:    store,
		versionMin: versionMin,
		versionMax: versionMax,
		factory:    factory,
		baseLogger: logger,
		logger:     logger.Named("builder"),
		metrics:    opts.Metrics,
	}, nil
}

func (b *Builder) build(ctx context.Context, opts Options) error {
	raw, err := b.selectSource(ctx, opts)
	if err != nil {
		return err
	}

	validated, err := config.CheckConfig(raw)
	if err != nil {
		b.logger.ErrorContext(ctx, "configuration failed validation", "error", err)
		return err
	}
	b.config = validated

	client, err := config.ClientSettingsFromMap(b.block("client"))
	if err != nil {
		return clienterr.WrapConfig(err, "Unable to read client settings")
	}
	other, err := config.OtherSettingsFromMap(b.block("other_settings"))
	if err != nil {
		return clienterr.WrapConfig(err, "Unable to read other settings")
	}
	b.client.Update(*client)
	b.other.Update(*other)

	if err := b.Resolve(ctx); err != nil {
		return err
	}
	b.logger.DebugContext(ctx, "configuration resolved", "builder", b.String())
	return nil
}

// selectSource returns the single document that feeds validation.
func (b *Builder) selectSource(ctx context.Context, opts Options) (map[string]any, error) {
	var raw map[string]any
	switch {
	case opts.ConfigDict != nil:
		b.source = SourceDict
		b.logger.DebugContext(ctx, "using configuration from dict", "config", logging.Redact(opts.ConfigDict))
		raw = opts.ConfigDict
	case opts.ConfigFile != "":
		b.source = SourceFile
		b.logger.DebugContext(ctx, "using configuration from file", "path", opts.ConfigFile)
		doc, err := config.Load(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		raw = doc
	default:
		b.source = SourceDefault
		b.logger.DebugContext(ctx, "no configuration provided, using defaults")
		return config.DefaultConfig(), nil
	}

	if !config.HasBlock(raw) {
		b.logger.WarnContext(ctx, "no elasticsearch block found in configuration, using defaults",
			"source", b.source)
	}
	return raw, nil
}

// Resolve runs secret migration, host normalization, authentication
// composition, the cloud_id rule and TLS resolution over the current state.
// Running it again on a resolved Builder changes nothing.
func (b *Builder) Resolve(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"migrate_secrets", b.migrateSecrets},
		{"normalize_hosts", b.normalizeHosts},
		{"api_key", b.composeAPIKey},
		{"basic_auth", b.composeBasicAuth},
		{"cloud_id", b.checkCloudID},
		{"tls", b.resolveTLS},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			b.logger.DebugContext(ctx, "resolution step failed", "step", step.name, "error", err)
			return err
		}
	}
	return nil
}

// block returns a sub-map of the validated document, creating it if needed.
func (b *Builder) block(name string) map[string]any {
	m, ok := b.config[name].(map[string]any)
	if !ok {
		m = map[string]any{}
		b.config[name] = m
	}
	return m
}

// ID returns the Builder's unique ID, attached to its log records.
func (b *Builder) ID() string { return b.id }

// Source returns which source fed validation: dict, file or default.
func (b *Builder) Source() string { return b.source }

// ClientArgs returns the working client settings. Credential slots are
// empty once resolved; see ConnectionArgs.
func (b *Builder) ClientArgs() *config.ClientSettings { return b.client }

// OtherArgs returns the working other_settings.
func (b *Builder) OtherArgs() *config.OtherSettings { return b.other }

// Secrets returns the Builder's secret store.
func (b *Builder) Secrets() *secrets.Store { return b.secrets }

// Config returns the validated document with secrets nulled out.
func (b *Builder) Config() map[string]any { return b.config }

// Client returns the connection handle, nil before Connect.
func (b *Builder) Client() Client { return b.conn }

// IsMaster reports whether the master-only check passed.
func (b *Builder) IsMaster() bool { return b.isMaster }

// VersionMin returns the inclusive lower version bound.
func (b *Builder) VersionMin() *semver.Version { return b.versionMin }

// VersionMax returns the exclusive upper version bound.
func (b *Builder) VersionMax() *semver.Version { return b.versionMax }

// ConnectionArgs returns a copy of the client settings with the credential
// slots filled from the secret store, ready for the client constructor.
func (b *Builder) ConnectionArgs() (*config.ClientSettings, error) {
	args := b.client.Clone()

	basic, err := b.secrets.Pair(secrets.BasicAuth)
	if err != nil {
		return nil, clienterr.WrapClient(err, "Unable to read basic_auth")
	}
	apiKey, err := b.secrets.Pair(secrets.APIKey)
	if err != nil {
		return nil, clienterr.WrapClient(err, "Unable to read api_key")
	}
	bearer, err := b.secrets.Text(secrets.BearerAuth)
	if err != nil {
		return nil, clienterr.WrapClient(err, "Unable to read bearer_auth")
	}

	args.BasicAuth = basic
	args.APIKey = apiKey
	args.BearerAuth = bearer
	return args, nil
}

// String describes the Builder without any credential material.
func (b *Builder) String() string {
	s := fmt.Sprintf("Builder(id=%s, hosts=%v, master_only=%t, version_min=%s, version_max=%s",
		b.id, b.client.Hosts, config.Deref(b.other.MasterOnly), b.versionMin, b.versionMax)
	if b.client.CloudID != nil {
		s += fmt.Sprintf(", cloud_id=%q", *b.client.CloudID)
	}
	return s + ")"
}
