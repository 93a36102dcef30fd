// config.go
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI       string
	MongoDBName    string
	RabbitURL      string
	Port           string
	RestaurantName string
	DeliveryFee    string
	AlertExchange  string
	// DesktopAlerts mirrors the operator-granted notification permission:
	// when false, alerts carry the audible cue only.
	DesktopAlerts bool
}

func Load() *Config {
	_ = godotenv.Load() // load .env if it exists

	return &Config{
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:    getEnv("MONGO_DB_NAME", "order_board_db"),
		RabbitURL:      getEnv("RABBIT_URL", "amqp://localhost"),
		Port:           getEnv("PORT", "8080"),
		RestaurantName: getEnv("RESTAURANT_NAME", "Quentinhas da Goi"),
		DeliveryFee:    getEnv("DELIVERY_FEE", "5.00"),
		AlertExchange:  getEnv("ALERT_EXCHANGE", "order_alerts"),
		DesktopAlerts:  getEnvBool("DESKTOP_ALERTS", false),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
