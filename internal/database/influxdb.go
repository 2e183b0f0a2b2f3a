// Package database writes decoded measurement values to InfluxDB. The sink
// is optional; a nil *InfluxDB is a no-op.
package database

import (
	"context"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/config"
	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/vscp"
)

type InfluxDB struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
}

// NewInfluxDB returns nil when no URL is configured.
func NewInfluxDB(cfg *config.Collector) *InfluxDB {
	if cfg.InfluxURL == "" {
		return nil
	}
	client := influxdb2.NewClient(cfg.InfluxURL, cfg.InfluxToken)
	return &InfluxDB{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
	}
}

func (db *InfluxDB) Close() {
	if db != nil && db.client != nil {
		db.client.Close()
	}
}

// WriteMeasurement records one decoded value, tagged by source and
// class/type so dashboards can split per node and per quantity.
func (db *InfluxDB) WriteMeasurement(ctx context.Context, e vscp.Event, value float64, receivedAt time.Time) error {
	if db == nil {
		return nil
	}
	point := write.NewPoint(
		measurementName(e),
		map[string]string{
			"guid":  e.GUID.String(),
			"class": strconv.Itoa(int(e.Class)),
			"type":  strconv.Itoa(int(e.Type)),
		},
		map[string]interface{}{"value": value},
		receivedAt,
	)
	return db.writeAPI.WritePoint(ctx, point)
}

func measurementName(e vscp.Event) string {
	switch {
	case e.Class == vscp.ClassMeasurement && e.Type == vscp.TypeMeasurementElectricPotential:
		return "electric_potential"
	case e.Class == vscp.ClassData && e.Type == vscp.TypeDataSignalQuality:
		return "signal_quality"
	default:
		return "measurement"
	}
}
