package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "rabbitmq", cfg.EventsBackend)
	assert.Equal(t, "Asia/Kolkata", cfg.Store.Timezone)
	assert.False(t, cfg.Store.CODAutoPaidOnDelivery)
	assert.Equal(t, 5*time.Minute, cfg.Redis.ProductTTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 2*time.Second, cfg.PublishTimeout)
}

func TestLoadForService_Precedence(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("ORDERS_DB_NAME", "orders_override")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := LoadForService("ORDERS", WithPorts("8082", "50052"), WithDBName("orders_db"))
	require.NoError(t, err)

	assert.Equal(t, "orders", cfg.ServiceName)
	assert.Equal(t, "8082", cfg.HTTPPort)
	assert.Equal(t, "orders_override", cfg.DB.Name)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("EVENTS_BACKEND", "carrier-pigeon")

	_, err := Load()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DB: Database{Driver: "sqlite", Path: "file.db"}}
	assert.Equal(t, "file.db", cfg.DSN())

	cfg.DB = Database{Driver: "postgres", Host: "h", Port: "1", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=n sslmode=disable", cfg.DSN())
}

func TestLocation(t *testing.T) {
	cfg := &Config{Store: Store{Timezone: "Asia/Kolkata"}}
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
}
