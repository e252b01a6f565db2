package config

import (
	"bytes"
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/fixkme/gotimer/errs"
	"github.com/fixkme/gotimer/mlog"
)

// TimerConfig 时间轮与 worker 的配置, 零值字段使用默认值
type TimerConfig struct {
	TickDuration    Duration `json:"tick_duration"`    // 时间轮精度
	ChannelCapacity int      `json:"channel_capacity"` // worker 请求通道容量
	InitialCapacity int      `json:"initial_capacity"` // 预分配的注册数量
	MaxCapacity     int      `json:"max_capacity"`     // 同时存在的注册上限
	MaxTimeout      Duration `json:"max_timeout"`      // Sleep 允许的最长时间
	WorkerName      string   `json:"worker_name"`
	LogConfig       `json:",inline"`
}

type LogConfig struct {
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"` // text, json, console
}

// LoadConfig reads configFile (JSON, or YAML by extension) and then lets
// loadConfigFromEnv override fields. An empty configFile skips the file.
func LoadConfig(configFile string, loadConfigFromEnv func(*TimerConfig) error) (*TimerConfig, error) {
	conf := new(TimerConfig)
	if len(configFile) != 0 {
		if err := loadConfigFromFile(configFile, conf); err != nil {
			return nil, err
		}
	}
	if loadConfigFromEnv != nil {
		if err := loadConfigFromEnv(conf); err != nil {
			return nil, err
		}
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func loadConfigFromFile(configFile string, conf *TimerConfig) error {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return err
	}
	data, _, err = coerceToJSONBytes(configFile, data)
	if err != nil {
		return errs.Unmarshal.Printf("%s", configFile).Wrap(err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err = dec.Decode(conf); err != nil {
		return errs.Unmarshal.Printf("%s", configFile).Wrap(err)
	}
	return nil
}

// LoadFromEnv overrides fields from TIMER_* environment variables.
func LoadFromEnv(conf *TimerConfig) error {
	durations := map[string]*Duration{
		"TIMER_TICK_DURATION": &conf.TickDuration,
		"TIMER_MAX_TIMEOUT":   &conf.MaxTimeout,
	}
	for key, dst := range durations {
		raw, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		d, err := ParseDurationField(key, raw)
		if err != nil {
			return errs.InvalidConfig.Wrap(err)
		}
		*dst = Duration(d)
	}

	ints := map[string]*int{
		"TIMER_CHANNEL_CAPACITY": &conf.ChannelCapacity,
		"TIMER_INITIAL_CAPACITY": &conf.InitialCapacity,
		"TIMER_MAX_CAPACITY":     &conf.MaxCapacity,
	}
	for key, dst := range ints {
		raw, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return errs.InvalidConfig.Printf("%s", key).Wrap(err)
		}
		*dst = n
	}

	if v, ok := os.LookupEnv("TIMER_WORKER_NAME"); ok {
		conf.WorkerName = v
	}
	if v, ok := os.LookupEnv("TIMER_LOG_LEVEL"); ok {
		conf.LogLevel = v
	}
	if v, ok := os.LookupEnv("TIMER_LOG_FORMAT"); ok {
		conf.LogFormat = v
	}
	return nil
}

func (conf *TimerConfig) Validate() error {
	switch {
	case conf.TickDuration < 0:
		return errs.InvalidConfig.Printf("tick_duration must be >= 0")
	case conf.MaxTimeout < 0:
		return errs.InvalidConfig.Printf("max_timeout must be >= 0")
	case conf.ChannelCapacity < 0:
		return errs.InvalidConfig.Printf("channel_capacity must be >= 0")
	case conf.InitialCapacity < 0:
		return errs.InvalidConfig.Printf("initial_capacity must be >= 0")
	case conf.MaxCapacity < 0:
		return errs.InvalidConfig.Printf("max_capacity must be >= 0")
	}
	switch strings.ToLower(conf.LogFormat) {
	case "", "text", "json", "console":
	default:
		return errs.InvalidConfig.Printf("unknown log_format %q", conf.LogFormat)
	}
	return nil
}

// SetupLogger installs the process logger described by the log fields.
func (conf *TimerConfig) SetupLogger() {
	level := mlog.ParseLevel(conf.LogLevel, mlog.InfoLevel)
	switch strings.ToLower(conf.LogFormat) {
	case "json":
		mlog.UseZerolog(os.Stdout, level, false)
	case "console":
		mlog.UseZerolog(os.Stdout, level, true)
	default:
		mlog.UseStdLogger(level)
	}
}

func (conf *TimerConfig) JsonFormat() string {
	if conf == nil {
		return "{}"
	}
	data, err := json.MarshalIndent(conf, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
