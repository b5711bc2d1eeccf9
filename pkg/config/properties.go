package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/magiconair/properties"
)

// Keys understood by ReadProperties. The Kafka keys follow the client
// property names used by librdkafka and the Java client.
const (
	PropScheme           = "transcode.scheme"
	PropDirection        = "transcode.direction"
	PropOutput           = "transcode.output"
	PropWorkers          = "transcode.batch.workers"
	PropServerAddr       = "transcode.server.addr"
	PropBootstrapServers = "bootstrap.servers"
	PropSecurityProtocol = "security.protocol"
	PropSASLMechanism    = "sasl.mechanism"
	PropSASLUsername     = "sasl.username"
	PropSASLPassword     = "sasl.password"
	PropSASLJAASConfig   = "sasl.jaas.config"
)

// ReadProperties loads defaults and an optional cluster from a Java style
// properties file. The cluster, if bootstrap.servers is present, is named
// clusterName.
func ReadProperties(path, clusterName string) (Config, error) {
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return Config{}, fmt.Errorf("load properties: %w", err)
	}

	c := Config{
		DefaultScheme:    p.GetString(PropScheme, ""),
		DefaultDirection: p.GetString(PropDirection, ""),
		Output:           p.GetString(PropOutput, ""),
		Server:           ServerConfig{Addr: p.GetString(PropServerAddr, "")},
	}
	if v, ok := p.Get(PropWorkers); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%s=%q: %w", PropWorkers, v, err)
		}
		c.Batch.Workers = int(n)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}

	brokers, ok := p.Get(PropBootstrapServers)
	if !ok {
		return c, nil
	}

	cluster := &Cluster{
		Name:             clusterName,
		Brokers:          splitBrokers(brokers),
		SecurityProtocol: p.GetString(PropSecurityProtocol, ""),
	}
	if mech, ok := p.Get(PropSASLMechanism); ok {
		s := &SASL{
			Mechanism: mech,
			Username:  p.GetString(PropSASLUsername, ""),
			Password:  p.GetString(PropSASLPassword, ""),
		}
		if jaas, ok := p.Get(PropSASLJAASConfig); ok && s.Username == "" {
			user, pass, err := parseJAAS(jaas)
			if err != nil {
				return Config{}, err
			}
			s.Username, s.Password = user, pass
		}
		cluster.SASL = s
	}
	c.Clusters = []*Cluster{cluster}
	c.CurrentCluster = clusterName
	return c, nil
}

// Merge copies every non-empty setting of other into c. Clusters with the
// same name are replaced.
func (c *Config) Merge(other Config) {
	if other.DefaultScheme != "" {
		c.DefaultScheme = other.DefaultScheme
	}
	if other.DefaultDirection != "" {
		c.DefaultDirection = other.DefaultDirection
	}
	if other.Output != "" {
		c.Output = other.Output
	}
	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Batch.Workers != 0 {
		c.Batch.Workers = other.Batch.Workers
	}
	for _, oc := range other.Clusters {
		replaced := false
		for i, existing := range c.Clusters {
			if existing.Name == oc.Name {
				c.Clusters[i] = oc
				replaced = true
				break
			}
		}
		if !replaced {
			c.Clusters = append(c.Clusters, oc)
		}
	}
	if c.CurrentCluster == "" {
		c.CurrentCluster = other.CurrentCluster
	}
}

func splitBrokers(v string) []string {
	var out []string
	for _, b := range strings.Split(v, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func extractValue(key, input string) (unquoted string, ok bool) {
	if strings.HasPrefix(input, key+"=") {
		return strings.TrimRight(strings.ReplaceAll(strings.TrimPrefix(input, key+"="), "\"", ""), ";"), true
	}
	return
}

// parseJAAS pulls username and password out of a PlainLoginModule line.
func parseJAAS(jaas string) (username, password string, err error) {
	for _, word := range strings.Fields(jaas) {
		if v, ok := extractValue("username", word); ok {
			username = v
		}
		if v, ok := extractValue("password", word); ok {
			password = v
		}
	}
	if username == "" || password == "" {
		return "", "", errors.New("could not parse sasl.jaas.config")
	}
	return username, password, nil
}
