package config

import (
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/openHPI/namestore/pkg/dto"
	"github.com/openHPI/namestore/pkg/logging"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// environmentPrefix prefixes all environment variables, e.g. NAMESTORE_STORE_INITIALNAMES.
const environmentPrefix = "NAMESTORE"

var (
	// Config holds the defaults until InitConfig merges the configuration file and the environment.
	Config = &configuration{
		Server: server{
			Address: "127.0.0.1",
			Port:    7300,
		},
		Store: Store{
			InitialNames: []string{},
		},
		Logger: Logger{
			Level:     "INFO",
			Formatter: dto.FormatterText,
		},
	}
	// TLSConfig is used by the server iff Server.TLS.Active is set.
	TLSConfig = &tls.Config{
		MinVersion:       tls.VersionTLS13,
		CurvePreferences: []tls.CurveID{tls.CurveP521, tls.CurveP384, tls.CurveP256},
	}
	ErrConfigInitialized = errors.New("configuration is already initialized")

	configurationFilePath    = "./configuration.yaml"
	configurationInitialized = false
	log                      = logging.GetLogger("config")
)

type server struct {
	Address string
	Port    int
	// Token protects the name routes. An empty token disables authentication.
	Token                   string
	TLS                     TLS
	SystemdSocketActivation bool
}

// URL returns the URL the server is reachable at.
func (s *server) URL() *url.URL {
	return parseURL(s.Address, s.Port, s.TLS.Active)
}

type TLS struct {
	Active   bool
	CAFile   string
	CertFile string
	KeyFile  string
}

// Store configures the name store itself.
type Store struct {
	// InitialNames are stored on startup. Environment variables separate them by commas
	// and replace the names of the configuration file.
	InitialNames []string
	// MonitoringInterval in seconds in which the number of names is reported. 0 disables the report.
	MonitoringInterval int
}

type Logger struct {
	Formatter dto.Formatter
	Level     string
}

// InfluxDB configures where monitoring data is written to. An empty URL disables monitoring.
type InfluxDB struct {
	URL          string
	Token        string
	Organization string
	Bucket       string
	Stage        string
}

type configuration struct {
	Server   server
	Store    Store
	Logger   Logger
	Sentry   sentry.ClientOptions
	InfluxDB InfluxDB
}

// InitConfig merges the yaml file given by the -config flag and then the NAMESTORE_* environment
// variables into the defaults. Only the first call has an effect; later calls return ErrConfigInitialized.
func InitConfig() error {
	if configurationInitialized {
		return ErrConfigInitialized
	}
	configurationInitialized = true
	Config.mergeYaml(readConfigFile())
	Config.mergeEnvironmentVariables()
	return nil
}

func parseURL(address string, port int, tlsEnabled bool) *url.URL {
	u := &url.URL{Scheme: "http", Host: fmt.Sprintf("%s:%d", address, port)}
	if tlsEnabled {
		u.Scheme = "https"
	}
	return u
}

func readConfigFile() []byte {
	if flag.Lookup("config") == nil {
		flag.StringVar(&configurationFilePath, "config", configurationFilePath, "path of the yaml config file")
	}
	flag.Parse()

	content, err := os.ReadFile(configurationFilePath)
	if err != nil {
		log.WithError(err).WithField("path", configurationFilePath).Info("Using default configuration")
		return nil
	}
	return content
}

func (c *configuration) mergeYaml(content []byte) {
	if err := yaml.Unmarshal(content, c); err != nil {
		log.WithError(err).Fatal("Could not parse configuration file")
	}
}

func (c *configuration) mergeEnvironmentVariables() {
	readFromEnvironment(environmentPrefix, reflect.ValueOf(c).Elem())
}

// readFromEnvironment walks the exported fields of value and overwrites every field
// for which an environment variable named <prefix>_<FIELD> exists.
func readFromEnvironment(prefix string, value reflect.Value) {
	if !value.CanSet() {
		log.WithField("prefix", prefix).Warn("Cannot overwrite struct field that can not be set")
		return
	}
	if value.Kind() != reflect.Struct {
		if content, ok := os.LookupEnv(prefix); ok {
			loadValue(value, content, log.WithField("variable", prefix))
		}
		return
	}
	for i := 0; i < value.NumField(); i++ {
		field := value.Type().Field(i)
		if field.IsExported() {
			readFromEnvironment(prefix+"_"+strings.ToUpper(field.Name), value.Field(i))
		}
	}
}

func loadValue(value reflect.Value, content string, logEntry *logrus.Entry) {
	var err error
	switch value.Kind() {
	case reflect.String:
		value.SetString(content)
	case reflect.Int:
		var number int
		if number, err = strconv.Atoi(content); err == nil {
			value.SetInt(int64(number))
		}
	case reflect.Bool:
		var boolean bool
		if boolean, err = strconv.ParseBool(content); err == nil {
			value.SetBool(boolean)
		}
	case reflect.Float64:
		var float float64
		if float, err = strconv.ParseFloat(content, 64); err == nil {
			value.SetFloat(float)
		}
	case reflect.Slice:
		if value.Type().Elem().Kind() != reflect.String {
			logEntry.Warn("Only lists of strings can be set via environment variables")
			return
		}
		parts := splitList(strings.Trim(content, `"`))
		value.Set(reflect.ValueOf(parts).Convert(value.Type()))
	default:
		logEntry.WithField("type", value.Type().String()).
			Warn("Setting configuration option via environment variables is not supported")
	}
	if err != nil {
		logEntry.WithError(err).WithField("content", content).Warn("Ignoring invalid environment variable")
	}
}

// splitList splits comma-separated content into trimmed, non-empty parts.
// Full names contain spaces, so only commas separate entries.
func splitList(content string) []string {
	parts := []string{}
	for _, part := range strings.Split(content, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
