package config

import (
	"fmt"
	"os"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

var (
	API_ENV      = os.Getenv("API_ENV")
	GAPI_API_KEY = os.Getenv("GAPI_API_KEY")
)

const DATE_PARSE_FORMAT = "2006-01-02"
const CLOCK_PARSE_FORMAT = "15:04"
const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"

// CustomerCancelConfirmed gates whether a customer may cancel a booking the
// photographer has already confirmed. Photographers can always cancel.
func CustomerCancelConfirmed() bool {
	return os.Getenv("CUSTOMER_CANCEL_CONFIRMED") == "true"
}
