package builder

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/esclient-go/esclient/pkg/clienterr"
	"github.com/esclient-go/esclient/pkg/config"
	"github.com/esclient-go/esclient/pkg/telemetry/logging"
	"github.com/esclient-go/esclient/pkg/telemetry/metrics"
)

// Connect creates the client and runs the post-connection checks. Version
// and master-only failures are fatal and not retried; leader re-election
// between the check and later use is not detected.
func (b *Builder) Connect(ctx context.Context) error {
	ctx = logging.WithBuilderID(ctx, b.id)
	masterOnly := config.Deref(b.other.MasterOnly)

	// Affinity to "the" master is undefined with several hosts, so fail
	// before any network call.
	if masterOnly {
		if err := b.checkMultipleHosts(ctx); err != nil {
			b.metrics.RecordCheck(metrics.CheckMasterOnly, metrics.ResultFail)
			return err
		}
	}

	if err := b.connect(ctx); err != nil {
		b.metrics.RecordCheck(metrics.CheckConnect, metrics.ResultFail)
		return err
	}
	b.metrics.RecordCheck(metrics.CheckConnect, metrics.ResultPass)

	if err := b.checkVersion(ctx); err != nil {
		b.metrics.RecordCheck(metrics.CheckVersion, metrics.ResultFail)
		return err
	}

	if !masterOnly {
		b.metrics.RecordCheck(metrics.CheckMasterOnly, metrics.ResultSkipped)
		return nil
	}
	if err := b.checkMaster(ctx); err != nil {
		b.metrics.RecordCheck(metrics.CheckMasterOnly, metrics.ResultFail)
		return err
	}
	b.metrics.RecordCheck(metrics.CheckMasterOnly, metrics.ResultPass)
	return nil
}

func (b *Builder) connect(ctx context.Context) error {
	args, err := b.ConnectionArgs()
	if err != nil {
		return err
	}
	conn, err := b.factory(args, b.baseLogger)
	if err != nil {
		if errors.Is(err, clienterr.ErrClient) {
			return err
		}
		return clienterr.WrapClient(err, "Unable to create client")
	}
	b.conn = conn
	b.logger.DebugContext(ctx, "client created", "hosts", args.Hosts)
	return nil
}

func (b *Builder) checkMultipleHosts(ctx context.Context) error {
	if len(b.client.Hosts) > 1 {
		b.logger.ErrorContext(ctx, "master_only requires a single host", "hosts", b.client.Hosts)
		return clienterr.Configf(msgMultipleHostMaster, b.client.Hosts)
	}
	return nil
}

func (b *Builder) checkVersion(ctx context.Context) error {
	if config.Deref(b.other.SkipVersionTest) {
		b.logger.WarnContext(ctx, "Skipping Elasticsearch version checks")
		b.metrics.RecordCheck(metrics.CheckVersion, metrics.ResultSkipped)
		return nil
	}

	raw, err := b.conn.Version(ctx)
	if err != nil {
		return wrapClient(err, "Unable to determine Elasticsearch version")
	}
	v, err := ParseVersion(raw)
	if err != nil {
		return err
	}
	b.metrics.SetServerVersion(v.String())
	b.logger.DebugContext(ctx, "version detected", "version", v.String())

	if !InRange(v, b.versionMin, b.versionMax) {
		b.logger.ErrorContext(ctx, "unsupported Elasticsearch version",
			"version", v.String(), "min", b.versionMin.String(), "max", b.versionMax.String())
		return clienterr.Clientf(msgUnsupportedVersion, v.String())
	}
	b.metrics.RecordCheck(metrics.CheckVersion, metrics.ResultPass)
	return nil
}

func (b *Builder) checkMaster(ctx context.Context) error {
	local, err := b.conn.LocalNodeID(ctx)
	if err != nil {
		return wrapClient(err, "Unable to determine local node")
	}
	master, err := b.conn.MasterNodeID(ctx)
	if err != nil {
		return wrapClient(err, "Unable to determine master node")
	}

	b.isMaster = local == master
	if !b.isMaster {
		notMaster := &clienterr.NotMaster{LocalNode: local, MasterNode: master}
		b.logger.ErrorContext(ctx, notMaster.Error(), "local_node", local, "master_node", master)
		return notMaster
	}
	b.logger.DebugContext(ctx, "connected to the elected master", "node", local)
	return nil
}

func wrapClient(err error, msg string) error {
	if errors.Is(err, clienterr.ErrClient) {
		return err
	}
	return clienterr.WrapClient(err, "%s", msg)
}

// ParseVersion parses a server version string. Any "-suffix" is dropped and
// only the first three dot-separated integers are kept, so "8.11.3-SNAPSHOT"
// and "8.11.3.1" both parse as 8.11.3.
func ParseVersion(s string) (*semver.Version, error) {
	base, _, _ := strings.Cut(strings.TrimSpace(s), "-")
	parts := strings.Split(base, ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	for _, p := range parts {
		if _, err := strconv.Atoi(p); err != nil {
			return nil, clienterr.Clientf("Unable to parse Elasticsearch version %q", s)
		}
	}
	v, err := semver.NewVersion(strings.Join(parts, "."))
	if err != nil {
		return nil, clienterr.WrapClient(err, "Unable to parse Elasticsearch version %q", s)
	}
	return v, nil
}

// InRange reports whether min <= v < max.
func InRange(v, minVersion, maxVersion *semver.Version) bool {
	return !v.LessThan(minVersion) && v.LessThan(maxVersion)
}
