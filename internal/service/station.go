package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"solarweather/internal/config"
	"solarweather/internal/conversion"
	"solarweather/internal/logger"
	"solarweather/internal/models"
	"solarweather/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

// Upload errors. Handlers map them to 400, 401 and 429.
var (
	ErrBadUpload       = errors.New("malformed station upload")
	ErrStationRejected = errors.New("station credentials rejected")
	ErrRateLimited     = errors.New("station upload rate exceeded")
)

// dateutc as sent by the station, after query unescaping.
const stationDateLayout = "2006-01-02 15:04:05"

type StationService struct {
	repo         repository.WeatherRepo
	stats        *StatsService
	limiter      *rate.Limiter
	stationID    string
	passwordHash string
	loc          *time.Location
	log          *logger.Logger
	now          func() time.Time
}

func NewStationService(repo repository.WeatherRepo, stats *StatsService, cfg config.StationConfig, loc *time.Location, log *logger.Logger) *StationService {
	if log == nil {
		log = logger.Nop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &StationService{
		repo:         repo,
		stats:        stats,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		stationID:    cfg.ID,
		passwordHash: cfg.PasswordHash,
		loc:          loc,
		log:          log,
		now:          time.Now,
	}
}

// Ingest authenticates, converts and stores one upload, then refreshes
// the cached statistics. It returns the stored row ID.
func (s *StationService) Ingest(ctx context.Context, q url.Values) (int64, error) {
	if !s.limiter.Allow() {
		return 0, ErrRateLimited
	}
	if err := s.authenticate(q.Get("ID"), q.Get("PASSWORD")); err != nil {
		return 0, err
	}

	reading, err := ParseUpload(q, s.now(), s.loc)
	if err != nil {
		return 0, err
	}

	id, err := s.repo.Insert(ctx, reading)
	if err != nil {
		return 0, err
	}

	// The reading is stored; stale caches expire on their own.
	if err := s.stats.Record(ctx, reading.Values(), time.Unix(reading.TimeStamp, 0)); err != nil {
		s.log.Errorw("station_stats_update_failed", "id", id, "err", err)
	}
	s.log.Debugw("station_upload_stored", "id", id, "time_stamp", reading.TimeStamp)
	return id, nil
}

func (s *StationService) authenticate(id, password string) error {
	if s.stationID != "" && id != s.stationID {
		return fmt.Errorf("%w: unknown station %q", ErrStationRejected, id)
	}
	if s.passwordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
			return fmt.Errorf("%w: bad password", ErrStationRejected)
		}
	}
	return nil
}

// uploadParser collects the first conversion error so ParseUpload reads
// like a field list.
type uploadParser struct {
	q   url.Values
	err error
}

func (p *uploadParser) float(key string) float64 {
	raw := strings.TrimSpace(p.q.Get(key))
	if raw == "" || p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.err = fmt.Errorf("%w: %s=%q", ErrBadUpload, key, raw)
		return 0
	}
	return v
}

func (p *uploadParser) int(key string) int {
	return int(p.float(key))
}

// ParseUpload converts a Wunderground-style query into a metric reading.
// Absent numeric fields read as 0. dateutc may be "now" or omitted, in
// which case now is used.
func ParseUpload(q url.Values, now time.Time, loc *time.Location) (models.WeatherReading, error) {
	at, err := parseStationDate(q.Get("dateutc"), now)
	if err != nil {
		return models.WeatherReading{}, err
	}

	p := &uploadParser{q: q}
	const places = conversion.DefaultPlaces

	indoor := conversion.FToC(p.float("indoortempf"), places)
	outdoor := conversion.FToC(p.float("tempf"), places)
	indoorHum := p.float("indoorhumidity")
	outdoorHum := p.float("humidity")
	windKmh := conversion.MphToKmh(p.float("windspeedmph"), places)

	r := models.WeatherReading{
		IndoorTemp:       indoor,
		OutdoorTemp:      outdoor,
		IndoorFeelsTemp:  conversion.ApparentTemp(indoor, indoorHum, 0, places),
		OutdoorFeelsTemp: conversion.ApparentTemp(outdoor, outdoorHum, conversion.KmhToMs(windKmh), places),
		IndoorDewTemp:    conversion.DewPoint(indoor, indoorHum, places),
		OutdoorDewTemp:   conversion.DewPoint(outdoor, outdoorHum, places),
		DewPoint:         conversion.FToC(p.float("dewptf"), places),
		WindChill:        conversion.FToC(p.float("windchillf"), places),
		IndoorHumidity:   indoorHum,
		OutdoorHumidity:  outdoorHum,
		WindSpeed:        windKmh,
		WindGust:         conversion.MphToKmh(p.float("windgustmph"), places),
		WindDirection:    p.float("winddir"),
		AbsolutePressure: conversion.InHgToHPa(p.float("absbaromin"), places),
		Pressure:         conversion.InHgToHPa(p.float("baromin"), places),
		Rain:             conversion.InToCm(p.float("rainin"), places),
		DailyRain:        conversion.InToCm(p.float("dailyrainin"), places),
		WeeklyRain:       conversion.InToCm(p.float("weeklyrainin"), places),
		MonthlyRain:      conversion.InToCm(p.float("monthlyrainin"), places),
		SolarRadiation:   p.float("solarradiation"),
		UVIndex:          p.int("UV"),
		DateUTC:          at,
		TimeStamp:        at.Unix(),
		SoftwareType:     q.Get("softwaretype"),
		Action:           q.Get("action"),
		RealTime:         p.int("realtime"),
		RadioFreq:        p.int("rtfreq"),
	}
	if p.err != nil {
		return models.WeatherReading{}, p.err
	}

	local := at.In(loc)
	r.TimeYear, r.TimeMonth, r.TimeDay = local.Year(), int(local.Month()), local.Day()
	return r, nil
}

func parseStationDate(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "%20", " "))
	if raw == "" || strings.EqualFold(raw, "now") {
		return now.UTC().Truncate(time.Second), nil
	}
	t, err := time.ParseInLocation(stationDateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: dateutc=%q", ErrBadUpload, raw)
	}
	return t, nil
}
