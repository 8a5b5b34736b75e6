// Package vectorutils selects a vector driver by provider name.
package vectorutils

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"

	"github.com/papercomputeco/clerk/pkg/vector"
	"github.com/papercomputeco/clerk/pkg/vector/badger"
	"github.com/papercomputeco/clerk/pkg/vector/chroma"
	"github.com/papercomputeco/clerk/pkg/vector/inmemory"
	"github.com/papercomputeco/clerk/pkg/vector/pgvector"
	"github.com/papercomputeco/clerk/pkg/vector/qdrant"
	"github.com/papercomputeco/clerk/pkg/vector/sqlitevec"
)

// Supported provider names.
const (
	ProviderMemory   = "memory"
	ProviderChroma   = "chroma"
	ProviderSQLite   = "sqlite"
	ProviderQdrant   = "qdrant"
	ProviderPgvector = "pgvector"
	ProviderBadger   = "badger"
)

type NewVectorDriverOpts struct {
	ProviderType string

	// Target is a URL, DSN, file or directory depending on the provider.
	Target string

	Collection string
	Dimensions uint
	APIKey     string
	Logger     *slog.Logger
}

func NewVectorDriver(ctx context.Context, o *NewVectorDriverOpts) (vector.Driver, error) {
	switch o.ProviderType {
	case ProviderMemory, "":
		return inmemory.NewDriver(), nil
	case ProviderChroma:
		return chroma.NewDriver(chroma.Config{
			URL:            o.Target,
			CollectionName: o.Collection,
		}, o.Logger)
	case ProviderSQLite:
		return sqlitevec.NewDriver(sqlitevec.Config{
			DBPath:     o.Target,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case ProviderQdrant:
		host, port, tls, err := splitQdrantTarget(o.Target)
		if err != nil {
			return nil, err
		}
		return qdrant.NewDriver(ctx, qdrant.Config{
			Host:           host,
			Port:           port,
			APIKey:         o.APIKey,
			UseTLS:         tls,
			CollectionName: o.Collection,
			Dimensions:     o.Dimensions,
		}, o.Logger)
	case ProviderPgvector:
		return pgvector.NewDriver(ctx, pgvector.Config{
			ConnString: o.Target,
			TableName:  o.Collection,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case ProviderBadger:
		return badger.NewDriver(badger.Config{
			Path: o.Target,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}

// splitQdrantTarget accepts "host", "host:port" or a URL whose https scheme
// turns on TLS.
func splitQdrantTarget(target string) (string, int, bool, error) {
	useTLS := false
	hostport := target
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		useTLS = u.Scheme == "https"
		hostport = u.Host
	}

	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		// no port given
		return hostport, 0, useTLS, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, false, fmt.Errorf("invalid qdrant port %q: %w", portStr, err)
	}
	return host, port, useTLS, nil
}
