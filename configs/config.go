// configs/config.go
package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	MongoURI          string
	DBName            string
	JWTSecret         string
	AdminUsername     string
	AdminPassword     string
	LoanPeriodDays    int
	MaxLoansPerMember int
	OTLPEndpoint      string
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return Config{
		Port:              getenv("PORT", "5000"),
		MongoURI:          getenv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:            getenv("DB_NAME", "librekeep"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminUsername:     os.Getenv("ADMIN_USERNAME"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		LoanPeriodDays:    getenvInt("LOAN_PERIOD_DAYS", 14),
		MaxLoansPerMember: getenvInt("MAX_LOANS_PER_MEMBER", 5),
		OTLPEndpoint:      os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return n
}
