package monitoring

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2API "github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/openHPI/namestore/internal/config"
	"github.com/openHPI/namestore/pkg/dto"
	"github.com/openHPI/namestore/pkg/logging"
)

const (
	// measurementPrefix groups all measurements of the name store.
	measurementPrefix = "namestore_"
	// MeasurementNames receives the events of the name store itself.
	MeasurementNames = measurementPrefix + "names"

	pointContextKey      dto.ContextKey = "influxdb point"
	influxKeyFullName                   = "full_name"
	influxKeyRequestSize                = "request_size"
)

var (
	log = logging.GetLogger("monitoring")
	// influxClient is nil while monitoring is disabled.
	influxClient influxdb2API.WriteAPI
)

// InitializeInfluxDB connects to the configured InfluxDB. Without a URL monitoring stays disabled.
// The returned function flushes pending points and closes the connection.
func InitializeInfluxDB(db *config.InfluxDB) (cancel func()) {
	if db.URL == "" {
		log.Debug("InfluxDB monitoring disabled")
		return func() {}
	}

	client := influxdb2.NewClient(db.URL, db.Token)
	writeAPI := client.WriteAPI(db.Organization, db.Bucket)
	go func(errors <-chan error) {
		for err := range errors {
			log.WithError(err).Warn("Failed writing to InfluxDB")
		}
	}(writeAPI.Errors())
	influxClient = writeAPI

	return func() {
		influxClient = nil
		writeAPI.Flush()
		client.Close()
	}
}

// InfluxDB2Middleware writes one point per request into the measurement of its route,
// e.g. namestore_add. Handlers enrich the point with AddNameMonitoringData and AddRequestSize.
func InfluxDB2Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		p := influxdb2.NewPointWithMeasurement(measurementPrefix + logging.RouteName(r)).SetTime(start)

		sw := logging.NewStatusWriter(w)
		next.ServeHTTP(sw, r.WithContext(context.WithValue(r.Context(), pointContextKey, p)))

		p.AddField("duration", time.Since(start).Nanoseconds())
		p.AddTag("status", strconv.Itoa(sw.StatusCode))
		WriteInfluxPoint(p)
	})
}

// AddNameMonitoringData tags the point of the request with the full name it operates on.
func AddNameMonitoringData(r *http.Request, fullName string) {
	if p := pointOf(r); p != nil {
		p.AddTag(influxKeyFullName, fullName)
	}
}

// AddRequestSize records the size of the request body. The body stays readable for the handler.
func AddRequestSize(r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.WithContext(r.Context()).WithError(err).Warn("Failed to read request body")
	}
	if err := r.Body.Close(); err != nil {
		log.WithContext(r.Context()).WithError(err).Debug("Failed to close request body")
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	if p := pointOf(r); p != nil {
		p.AddField(influxKeyRequestSize, len(body))
	}
}

// WriteInfluxPoint schedules the point for writing. It does nothing while monitoring is disabled.
func WriteInfluxPoint(p *write.Point) {
	if influxClient == nil {
		return
	}
	p.AddTag("stage", config.Config.InfluxDB.Stage)
	influxClient.WritePoint(p)
}

func pointOf(r *http.Request) *write.Point {
	p, ok := r.Context().Value(pointContextKey).(*write.Point)
	if !ok {
		log.WithContext(r.Context()).Warn("Request is not monitored")
	}
	return p
}
