// Package client builds franz-go clients from a config.Cluster.
package client

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl"
	"github.com/twmb/franz-go/pkg/sasl/plain"
	"github.com/twmb/franz-go/pkg/sasl/scram"
	"go.uber.org/zap"

	"github.com/birdayz/transcode/pkg/config"
)

const clientID = "transcode"

// Client wraps a franz-go kgo.Client and kadm.Client.
type Client struct {
	KGO   *kgo.Client
	Admin *kadm.Client

	logger *zap.Logger
}

// Close closes both the admin and kgo clients.
func (c *Client) Close() {
	if c.Admin != nil {
		c.Admin.Close()
	}
	if c.KGO != nil {
		c.KGO.Close()
	}
}

// Option customizes New.
type Option func(*options)

type options struct {
	logger *zap.Logger
	kgo    []kgo.Opt
}

// WithLogger sets the logger used for connection warnings.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithKgoOpts appends raw franz-go options, applied after the cluster ones.
func WithKgoOpts(opts ...kgo.Opt) Option {
	return func(o *options) { o.kgo = append(o.kgo, opts...) }
}

// New creates a new Client from a Cluster config.
func New(cluster *config.Cluster, kgoOpts ...kgo.Opt) (*Client, error) {
	return NewWithOptions(cluster, WithKgoOpts(kgoOpts...))
}

// NewWithOptions creates a new Client from a Cluster config.
func NewWithOptions(cluster *config.Cluster, opts ...Option) (*Client, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	if len(cluster.Brokers) == 0 {
		return nil, errors.New("no brokers configured")
	}

	baseOpts := []kgo.Opt{
		kgo.SeedBrokers(cluster.Brokers...),
		kgo.ClientID(clientID),
		kgo.DialTimeout(10 * time.Second),
		kgo.RequestTimeoutOverhead(10 * time.Second),
		kgo.ConnIdleTimeout(60 * time.Second),
	}

	tlsCfg, err := buildTLS(cluster, o.logger)
	if err != nil {
		return nil, fmt.Errorf("TLS config: %w", err)
	}
	if tlsCfg != nil {
		baseOpts = append(baseOpts, kgo.DialTLSConfig(tlsCfg))
	}

	saslMech, err := buildSASL(cluster)
	if err != nil {
		return nil, fmt.Errorf("SASL config: %w", err)
	}
	if saslMech != nil {
		if strings.EqualFold(cluster.SASL.Mechanism, "PLAIN") && tlsCfg == nil {
			o.logger.Warn("SASL PLAIN without TLS sends credentials in cleartext", zap.String("cluster", cluster.Name))
		}
		baseOpts = append(baseOpts, kgo.SASL(saslMech))
	}

	baseOpts = append(baseOpts, o.kgo...)

	cl, err := kgo.NewClient(baseOpts...)
	if err != nil {
		return nil, fmt.Errorf("create kgo client: %w", err)
	}

	return &Client{
		KGO:    cl,
		Admin:  kadm.NewClient(cl),
		logger: o.logger,
	}, nil
}

// EnsureTopics creates every topic that does not exist yet, using the
// broker defaults for partitions and replication.
func (c *Client) EnsureTopics(ctx context.Context, topics ...string) error {
	if len(topics) == 0 {
		return nil
	}
	resp, err := c.Admin.CreateTopics(ctx, -1, -1, nil, topics...)
	if err != nil {
		return fmt.Errorf("create topics: %w", err)
	}
	for _, t := range resp.Sorted() {
		if t.Err != nil && !errors.Is(t.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", t.Topic, t.Err)
		}
		if t.Err == nil {
			c.logger.Info("created topic", zap.String("topic", t.Topic))
		}
	}
	return nil
}

func buildTLS(cluster *config.Cluster, logger *zap.Logger) (*tls.Config, error) {
	needsTLS := cluster.TLS != nil ||
		cluster.SecurityProtocol == "SASL_SSL" ||
		cluster.SecurityProtocol == "SSL"

	if !needsTLS {
		return nil, nil
	}

	cfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}

	if cluster.TLS == nil {
		return cfg, nil
	}

	cfg.InsecureSkipVerify = cluster.TLS.Insecure
	if cluster.TLS.Insecure {
		logger.Warn("TLS certificate verification is disabled", zap.String("cluster", cluster.Name))
	}

	if cluster.TLS.Cafile != "" {
		caCert, err := os.ReadFile(cluster.TLS.Cafile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("no certificates found in CA file %s", cluster.TLS.Cafile)
		}
		cfg.RootCAs = pool
	}

	if cluster.TLS.Clientfile != "" && cluster.TLS.Clientkeyfile != "" {
		cert, err := tls.LoadX509KeyPair(cluster.TLS.Clientfile, cluster.TLS.Clientkeyfile)
		if err != nil {
			return nil, fmt.Errorf("load client cert: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	return cfg, nil
}

func buildSASL(cluster *config.Cluster) (sasl.Mechanism, error) {
	if cluster.SASL == nil {
		return nil, nil
	}
	s := cluster.SASL

	switch strings.ToUpper(s.Mechanism) {
	case "PLAIN":
		return plain.Auth{User: s.Username, Pass: s.Password}.AsMechanism(), nil
	case "SCRAM-SHA-256":
		return scram.Auth{User: s.Username, Pass: s.Password}.AsSha256Mechanism(), nil
	case "SCRAM-SHA-512":
		return scram.Auth{User: s.Username, Pass: s.Password}.AsSha512Mechanism(), nil
	case "OAUTHBEARER":
		return oauthMechanism(s), nil
	case "AWS_MSK_IAM":
		return awsMSKMechanism(), nil
	default:
		return nil, fmt.Errorf("unsupported SASL mechanism: %s", s.Mechanism)
	}
}
