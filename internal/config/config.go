package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DatabaseURL    string
	RedisURL       string
	KafkaBrokers   string
	NatsURL        string
	JaegerEndpoint string
	Port           string
	GRPCPort       string
	ConfigFile     string
	SignInRate     float64
	SignInBurst    int
	RequestTimeout time.Duration
	Methods        Methods
}

// MethodConfig declares one strategy available to every checkout session.
type MethodConfig struct {
	ID        string `yaml:"id"`
	Kind      string `yaml:"kind"`
	GatewayID string `yaml:"gateway,omitempty"`
}

// Methods is the content of the checkout configuration file.
type Methods struct {
	Customer   []MethodConfig `yaml:"customer"`
	Payment    []MethodConfig `yaml:"payment"`
	Containers []string       `yaml:"containers"`
}

const (
	KindDefault    = "default"
	KindGooglePay  = "googlepay"
	KindCreditCard = "creditcard"
	KindOffline    = "offline"
)

var (
	customerKinds = map[string]bool{KindDefault: true, KindGooglePay: true}
	paymentKinds  = map[string]bool{KindCreditCard: true, KindOffline: true, KindGooglePay: true}
)

func Load() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8082"
	}

	grpcPort := os.Getenv("GRPC_PORT")
	if grpcPort == "" {
		grpcPort = "9092"
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	signInRate, err := floatEnv("SIGN_IN_RATE", 5)
	if err != nil {
		return nil, err
	}
	signInBurst, err := intEnv("SIGN_IN_BURST", 10)
	if err != nil {
		return nil, err
	}
	timeout, err := durationEnv("REQUEST_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		KafkaBrokers:   os.Getenv("KAFKA_BROKERS"),
		NatsURL:        natsURL,
		JaegerEndpoint: os.Getenv("JAEGER_ENDPOINT"),
		Port:           port,
		GRPCPort:       grpcPort,
		ConfigFile:     os.Getenv("CHECKOUT_CONFIG_FILE"),
		SignInRate:     signInRate,
		SignInBurst:    signInBurst,
		RequestTimeout: timeout,
		Methods:        DefaultMethods(),
	}

	if cfg.ConfigFile != "" {
		methods, err := LoadMethods(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg.Methods = methods
	}
	return cfg, nil
}

// DefaultMethods is used when no configuration file is given.
func DefaultMethods() Methods {
	return Methods{
		Customer: []MethodConfig{
			{ID: "default", Kind: KindDefault},
			{ID: "googlepay", Kind: KindGooglePay},
		},
		Payment: []MethodConfig{
			{ID: "creditcard", Kind: KindCreditCard},
			{ID: "cheque", Kind: KindOffline},
			{ID: "googlepay", Kind: KindGooglePay},
		},
		Containers: []string{"googlePayCheckoutButton", "googlePayPaymentButton"},
	}
}

// LoadMethods reads and validates a YAML method declaration file.
func LoadMethods(path string) (Methods, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Methods{}, fmt.Errorf("failed to read checkout config: %w", err)
	}
	var m Methods
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return Methods{}, fmt.Errorf("failed to parse checkout config: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Methods{}, err
	}
	return m, nil
}

func (m Methods) Validate() error {
	if err := validateKinds("customer", m.Customer, customerKinds); err != nil {
		return err
	}
	return validateKinds("payment", m.Payment, paymentKinds)
}

func validateKinds(domain string, methods []MethodConfig, allowed map[string]bool) error {
	seen := make(map[string]bool, len(methods))
	for _, mc := range methods {
		if mc.ID == "" {
			return fmt.Errorf("%s method without id", domain)
		}
		if !allowed[mc.Kind] {
			return fmt.Errorf("%s method %q has unknown kind %q", domain, mc.ID, mc.Kind)
		}
		if seen[mc.ID] {
			return fmt.Errorf("%s method %q declared twice", domain, mc.ID)
		}
		seen[mc.ID] = true
	}
	return nil
}

func floatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
