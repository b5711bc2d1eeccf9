package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/birdayz/transcode/pkg/codec"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadConfig_YAML(t *testing.T) {
	path := writeFile(t, "config", `default-scheme: url
default-direction: decode
output: json
log:
  level: debug
  format: json
  outputs: [stderr]
server:
  addr: 0.0.0.0:9000
batch:
  workers: 4
current-cluster: local
clusters:
  - name: local
    brokers:
      - localhost:9092
    SASL:
      mechanism: PLAIN
      username: admin
      password: secret
    TLS:
      cafile: /etc/ssl/ca.pem
      insecure: true
    security-protocol: SASL_SSL
`)

	cfg, err := ReadConfig(path)
	require.NoError(t, err)
	require.Equal(t, path, cfg.Path())

	s, ok := cfg.Scheme()
	require.True(t, ok)
	require.Equal(t, codec.URL, s)
	require.Equal(t, codec.Decode, cfg.Direction())
	require.Equal(t, "json", cfg.Output)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, []string{"stderr"}, cfg.Log.Outputs)
	require.Equal(t, "0.0.0.0:9000", cfg.ServerAddr())
	require.Equal(t, 4, cfg.Workers())

	require.Len(t, cfg.Clusters, 1)
	c := cfg.Clusters[0]
	require.Equal(t, "local", c.Name)
	require.Equal(t, []string{"localhost:9092"}, c.Brokers)
	require.Equal(t, "SASL_SSL", c.SecurityProtocol)
	require.NotNil(t, c.SASL)
	require.Equal(t, "PLAIN", c.SASL.Mechanism)
	require.NotNil(t, c.TLS)
	require.Equal(t, "/etc/ssl/ca.pem", c.TLS.Cafile)
	require.True(t, c.TLS.Insecure)
}

func TestReadConfig_Empty(t *testing.T) {
	path := writeFile(t, "config", "")
	cfg, err := ReadConfig(path)
	require.NoError(t, err)

	_, ok := cfg.Scheme()
	require.False(t, ok)
	require.Equal(t, codec.Encode, cfg.Direction())
	require.Equal(t, DefaultServerAddr, cfg.ServerAddr())
	require.Equal(t, 1, cfg.Workers())
}

func TestReadConfig_RejectsUnknownScheme(t *testing.T) {
	path := writeFile(t, "config", "default-scheme: rot13\n")
	_, err := ReadConfig(path)
	require.ErrorContains(t, err, "default-scheme")
	require.ErrorIs(t, err, codec.UnknownScheme)
}

func TestReadConfig_ExplicitPathMustExist(t *testing.T) {
	_, err := ReadConfig(filepath.Join(t.TempDir(), "nonexistent"))
	require.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	path := writeFile(t, "config", "")
	cfg, err := ReadConfig(path)
	require.NoError(t, err)

	require.NoError(t, cfg.SetDefaultScheme("bootstring"))
	require.NoError(t, cfg.SetDefaultDirection("decode"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reread, err := ReadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "bootstring", reread.DefaultScheme)
	require.Equal(t, codec.Decode, reread.Direction())
}

func TestSetDefaultScheme_Invalid(t *testing.T) {
	path := writeFile(t, "config", "default-scheme: url\n")
	cfg, err := ReadConfig(path)
	require.NoError(t, err)

	require.ErrorIs(t, cfg.SetDefaultScheme("Base64"), codec.UnknownScheme)
	require.Equal(t, "url", cfg.DefaultScheme)
}

func TestHasCluster(t *testing.T) {
	cfg := Config{
		Clusters: []*Cluster{
			{Name: "a"},
			{Name: "b"},
		},
	}
	require.True(t, cfg.HasCluster("a"))
	require.True(t, cfg.HasCluster("b"))
	require.False(t, cfg.HasCluster("c"))
}

func TestActiveCluster(t *testing.T) {
	cfg := Config{
		CurrentCluster: "prod",
		Clusters: []*Cluster{
			{Name: "dev", Brokers: []string{"dev:9092"}},
			{Name: "prod", Brokers: []string{"prod:9092"}},
		},
	}

	c := cfg.ActiveCluster()
	require.NotNil(t, c)
	require.Equal(t, "prod", c.Name)

	// ClusterOverride takes precedence.
	cfg.ClusterOverride = "dev"
	c = cfg.ActiveCluster()
	require.NotNil(t, c)
	require.Equal(t, "dev", c.Name)

	c.Brokers = []string{"changed:1"}
	require.Equal(t, []string{"dev:9092"}, cfg.Clusters[0].Brokers)
}

func TestActiveCluster_NotFound(t *testing.T) {
	cfg := Config{
		CurrentCluster: "missing",
		Clusters:       []*Cluster{{Name: "other"}},
	}
	require.Nil(t, cfg.ActiveCluster())
}

func TestReadProperties(t *testing.T) {
	path := writeFile(t, "client.properties", `# exported from ccloud
transcode.scheme=punycode
transcode.direction=decode
transcode.batch.workers=8
bootstrap.servers=pkc-1.example.com:9092, pkc-2.example.com:9092
security.protocol=SASL_SSL
sasl.mechanism=PLAIN
sasl.jaas.config=org.apache.kafka.common.security.plain.PlainLoginModule required username="KEY" password="SECRET";
`)

	cfg, err := ReadProperties(path, "ccloud")
	require.NoError(t, err)
	require.Equal(t, "punycode", cfg.DefaultScheme)
	require.Equal(t, codec.Decode, cfg.Direction())
	require.Equal(t, 8, cfg.Workers())
	require.Equal(t, "ccloud", cfg.CurrentCluster)

	require.Len(t, cfg.Clusters, 1)
	c := cfg.Clusters[0]
	require.Equal(t, []string{"pkc-1.example.com:9092", "pkc-2.example.com:9092"}, c.Brokers)
	require.Equal(t, "SASL_SSL", c.SecurityProtocol)
	require.Equal(t, "KEY", c.SASL.Username)
	require.Equal(t, "SECRET", c.SASL.Password)
}

func TestReadProperties_BadWorkers(t *testing.T) {
	path := writeFile(t, "client.properties", "transcode.batch.workers=many\n")
	_, err := ReadProperties(path, "x")
	require.ErrorContains(t, err, PropWorkers)
}

func TestMerge(t *testing.T) {
	cfg := Config{
		DefaultScheme: "url",
		Clusters:      []*Cluster{{Name: "ccloud", Brokers: []string{"old:9092"}}},
	}
	cfg.Merge(Config{
		DefaultDirection: "decode",
		CurrentCluster:   "ccloud",
		Clusters:         []*Cluster{{Name: "ccloud", Brokers: []string{"new:9092"}}},
	})

	require.Equal(t, "url", cfg.DefaultScheme)
	require.Equal(t, "decode", cfg.DefaultDirection)
	require.Equal(t, "ccloud", cfg.CurrentCluster)
	require.Len(t, cfg.Clusters, 1)
	require.Equal(t, []string{"new:9092"}, cfg.Clusters[0].Brokers)
}

func TestAddRemoveCluster(t *testing.T) {
	path := writeFile(t, "config", "")
	cfg, err := ReadConfig(path)
	require.NoError(t, err)

	require.NoError(t, cfg.AddCluster(&Cluster{Name: "local", Brokers: []string{"localhost:9092"}}))
	require.NoError(t, cfg.AddCluster(&Cluster{Name: "remote", Brokers: []string{"remote:9092"}}))
	require.ErrorContains(t, cfg.AddCluster(&Cluster{Name: "local", Brokers: []string{"x:9092"}}), "exists already")
	require.ErrorContains(t, cfg.AddCluster(&Cluster{Name: "empty"}), "has no brokers")
	require.ErrorContains(t, cfg.AddCluster(&Cluster{Brokers: []string{"x:9092"}}), "name is required")
	require.Len(t, cfg.Clusters, 2)

	require.NoError(t, cfg.SetCurrentCluster("remote"))
	require.NoError(t, cfg.RemoveCluster("remote"))
	require.Empty(t, cfg.CurrentCluster)
	require.ErrorContains(t, cfg.RemoveCluster("remote"), "does not exist")

	reread, err := ReadConfig(path)
	require.NoError(t, err)
	require.Len(t, reread.Clusters, 1)
	require.Equal(t, "local", reread.Clusters[0].Name)
	require.Empty(t, reread.CurrentCluster)
}
