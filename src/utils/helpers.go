package utils

import (
	"fmt"
	"log"
	"os"
	"pbs/src/config"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gosimple/slug"
)

func IsProd() bool {
	return config.API_ENV == "production"
}

// SessionWindow resolves the stored calendar date, local time-of-day string
// and duration into concrete start/end instants.
func SessionWindow(scheduledDate, scheduledTime string, duration uint) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation(config.DATE_PARSE_FORMAT, scheduledDate, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid scheduled_date: %s", err.Error())
	}
	clock, err := time.Parse(config.CLOCK_PARSE_FORMAT, scheduledTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid scheduled_time: %s", err.Error())
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, time.Local)
	end := start.Add(time.Duration(duration) * time.Hour)
	return start, end, nil
}

// ResponseDeadline computes how long the photographer gets to answer a
// pending booking. The window shrinks with the lead time before the session:
// a same-day request expires fast so the customer's hold is released quickly.
func ResponseDeadline(now, sessionStart time.Time) time.Time {
	lead := sessionStart.Sub(now)
	var window time.Duration
	switch {
	case lead <= 2*time.Hour:
		window = 30 * time.Minute
	case lead <= 6*time.Hour:
		window = time.Hour
	case lead <= 24*time.Hour:
		window = 4 * time.Hour
	default:
		window = 24 * time.Hour
	}
	return now.Add(window)
}

// GalleryShareSlug builds the public path segment for a delivered gallery.
func GalleryShareSlug(photographerName string, bookingId uint) string {
	return slug.Make(fmt.Sprintf("%s-session-%d", photographerName, bookingId))
}

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func GenerateJWT(email string, userId uint, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":      fmt.Sprint(userId),
		"username": email,
		"role":     role,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtKey)
	if err != nil {
		log.Printf("Error signing token: %s\n", err.Error())
		return "", err
	}
	return signed, nil
}
