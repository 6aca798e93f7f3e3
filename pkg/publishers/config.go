package publishers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sink types accepted in a publishers file.
const (
	TypeHTTP      = "http"
	TypeSQS       = "sqs"
	TypeSNS       = "sns"
	TypeGCPPubSub = "gcp_pubsub"
)

const (
	defaultWebhookMethod         = http.MethodPost
	defaultWebhookTimeoutSeconds = 5
)

// PublisherConfig declares one sink for auth-expired events. Only the block
// matching Type is read.
type PublisherConfig struct {
	ID      string               `yaml:"id"`
	Type    string               `yaml:"type"`
	Enabled *bool                `yaml:"enabled"`
	HTTP    *HTTPPublisherConfig `yaml:"http"`
	SQS     *SQSPublisherConfig  `yaml:"sqs"`
	SNS     *SNSPublisherConfig  `yaml:"sns"`
	GCP     *GCPQueueConfig      `yaml:"gcp_pubsub"`
}

// AWSCredentials pins static keys. Without them the default AWS chain applies.
type AWSCredentials struct {
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
}

// HTTPPublisherConfig posts the event as JSON to a webhook.
type HTTPPublisherConfig struct {
	URL            string            `yaml:"url"`
	Method         string            `yaml:"method"`
	Headers        map[string]string `yaml:"headers"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
}

type SQSPublisherConfig struct {
	QueueURL    string          `yaml:"queue_url"`
	Region      string          `yaml:"region"`
	Credentials *AWSCredentials `yaml:"credentials"`
}

type SNSPublisherConfig struct {
	TopicARN    string          `yaml:"topic_arn"`
	Region      string          `yaml:"region"`
	Credentials *AWSCredentials `yaml:"credentials"`
}

// GCPQueueConfig targets a Pub/Sub topic. CredentialsFile is optional; the
// default application credentials (or PUBSUB_EMULATOR_HOST) apply otherwise.
type GCPQueueConfig struct {
	ProjectID       string `yaml:"project_id"`
	Topic           string `yaml:"topic"`
	CredentialsFile string `yaml:"credentials_file"`
}

// sinkConfig is implemented by every type-specific block.
type sinkConfig interface {
	normalize()
	validate() error
}

func (c *HTTPPublisherConfig) normalize() {
	c.URL = strings.TrimSpace(c.URL)
	c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
	if c.Method == "" {
		c.Method = defaultWebhookMethod
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultWebhookTimeoutSeconds
	}
	headers := make(map[string]string, len(c.Headers))
	for k, v := range c.Headers {
		if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
			headers[k] = v
		}
	}
	c.Headers = headers
}

func (c *HTTPPublisherConfig) validate() error {
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("http.url %q must be an absolute http(s) URL", c.URL)
	}
	return nil
}

func (c *SQSPublisherConfig) normalize() {
	c.QueueURL = strings.TrimSpace(c.QueueURL)
	c.Region = strings.TrimSpace(c.Region)
}

func (c *SQSPublisherConfig) validate() error {
	if c.QueueURL == "" || c.Region == "" {
		return errors.New("sqs.queue_url and sqs.region are required")
	}
	return nil
}

func (c *SNSPublisherConfig) normalize() {
	c.TopicARN = strings.TrimSpace(c.TopicARN)
	c.Region = strings.TrimSpace(c.Region)
}

func (c *SNSPublisherConfig) validate() error {
	if !strings.HasPrefix(c.TopicARN, "arn:") || c.Region == "" {
		return errors.New("sns.topic_arn (an ARN) and sns.region are required")
	}
	return nil
}

func (c *GCPQueueConfig) normalize() {
	c.ProjectID = strings.TrimSpace(c.ProjectID)
	c.Topic = strings.TrimSpace(c.Topic)
	c.CredentialsFile = strings.TrimSpace(c.CredentialsFile)
}

func (c *GCPQueueConfig) validate() error {
	if c.ProjectID == "" || c.Topic == "" {
		return errors.New("gcp_pubsub.project_id and gcp_pubsub.topic are required")
	}
	return nil
}

// sink returns the block selected by Type; ok is false when it is missing.
func (c *PublisherConfig) sink() (sinkConfig, bool) {
	switch c.Type {
	case TypeHTTP:
		return c.HTTP, c.HTTP != nil
	case TypeSQS:
		return c.SQS, c.SQS != nil
	case TypeSNS:
		return c.SNS, c.SNS != nil
	case TypeGCPPubSub:
		return c.GCP, c.GCP != nil
	}
	return nil, false
}

// prepare normalizes c in place and reports the first configuration error.
func (c *PublisherConfig) prepare() error {
	c.ID = strings.TrimSpace(c.ID)
	c.Type = strings.ToLower(strings.TrimSpace(c.Type))
	if c.ID == "" {
		return errors.New("id is required")
	}
	switch c.Type {
	case TypeHTTP, TypeSQS, TypeSNS, TypeGCPPubSub:
	default:
		return fmt.Errorf("publisher %q: unsupported type %q", c.ID, c.Type)
	}

	sink, ok := c.sink()
	if !ok {
		return fmt.Errorf("publisher %q: %s block is required", c.ID, c.Type)
	}
	sink.normalize()
	if err := sink.validate(); err != nil {
		return fmt.Errorf("publisher %q: %w", c.ID, err)
	}
	return nil
}

// IsEnabled defaults to true when enabled is omitted.
func (c PublisherConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Set is the validated content of a publishers file.
type Set struct {
	publishers []PublisherConfig
	byID       map[string]int
}

// LoadFile reads a YAML or JSON publishers file. ${VAR} references are
// expanded from the environment so hook keys and AWS secrets can stay out of
// the file.
func LoadFile(path string) (*Set, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("publishers file path is empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}
	set, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Parse decodes publishers file content. JSON is accepted as YAML.
func Parse(raw []byte) (*Set, error) {
	var doc struct {
		Publishers []PublisherConfig `yaml:"publishers"`
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &doc); err != nil {
		return nil, fmt.Errorf("decode publishers: %w", err)
	}
	if len(doc.Publishers) == 0 {
		return nil, errors.New("no publishers declared")
	}

	set := &Set{byID: make(map[string]int, len(doc.Publishers))}
	for i := range doc.Publishers {
		cfg := doc.Publishers[i]
		if err := cfg.prepare(); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, dup := set.byID[cfg.ID]; dup {
			return nil, fmt.Errorf("publishers[%d]: duplicate id %q", i, cfg.ID)
		}
		set.byID[cfg.ID] = len(set.publishers)
		set.publishers = append(set.publishers, cfg)
	}
	return set, nil
}

// Enabled returns the enabled publishers in file order.
func (s *Set) Enabled() []PublisherConfig {
	if s == nil {
		return nil
	}
	out := make([]PublisherConfig, 0, len(s.publishers))
	for _, p := range s.publishers {
		if p.IsEnabled() {
			out = append(out, p)
		}
	}
	return out
}

// ByID looks a publisher up by id.
func (s *Set) ByID(id string) (PublisherConfig, bool) {
	if s == nil {
		return PublisherConfig{}, false
	}
	i, ok := s.byID[strings.TrimSpace(id)]
	if !ok {
		return PublisherConfig{}, false
	}
	return s.publishers[i], true
}

// Len reports how many publishers the file declares, enabled or not.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.publishers)
}
