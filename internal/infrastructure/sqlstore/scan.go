package sqlstore

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// flexTime acepta las distintas representaciones de fecha que deja cada motor:
// time.Time (MySQL con parseTime), texto ISO/SQL y milisegundos Unix (DateTime de Prisma en SQLite).
type flexTime struct {
	Time time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Scan implementa sql.Scanner. NULL deja el valor cero.
func (f *flexTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		f.Time = time.Time{}
	case time.Time:
		f.Time = v
	case int64:
		f.Time = time.UnixMilli(v).UTC()
	case float64:
		f.Time = time.UnixMilli(int64(v)).UTC()
	case []byte:
		return f.parse(string(v))
	case string:
		return f.parse(v)
	default:
		return fmt.Errorf("flexTime: tipo no soportado %T", src)
	}
	return nil
}

func (f *flexTime) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		f.Time = time.Time{}
		return nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		f.Time = time.UnixMilli(ms).UTC()
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			f.Time = t
			return nil
		}
	}
	return fmt.Errorf("flexTime: formato de fecha no reconocido %q", s)
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func int64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	n := ni.Int64
	return &n
}
