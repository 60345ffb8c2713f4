package main

import "time"

type Config struct {
	SupabaseURL       string        `env:"SUPABASE_URL,required=true"`
	SupabaseAnonKey   string        `env:"SUPABASE_ANON_KEY,required=true"`
	AccessToken       string        `env:"SUPABASE_ACCESS_TOKEN,required=true"`
	HeartbeatInterval time.Duration `env:"REALTIME_HEARTBEAT_INTERVAL,default=30s"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT,default=10s"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
}
