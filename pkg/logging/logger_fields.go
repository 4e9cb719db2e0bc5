package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Rupture-building field helpers

func Component(name string) Field {
	return String("component", name)
}

// Stage names a pipeline stage: subsections, connections, ruptures, attributes
func Stage(name string) Field {
	return String("stage", name)
}

func SectionID(id int) Field {
	return Int("section_id", id)
}

func ParentID(id int) Field {
	return Int("parent_id", id)
}

func RuptureID(id int) Field {
	return Int("rupture_id", id)
}

func Strategy(name string) Field {
	return String("strategy", name)
}

func Filter(name string) Field {
	return String("filter", name)
}

func Workers(n int) Field {
	return Int("workers", n)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}

func Path(p string) Field {
	return String("path", p)
}
