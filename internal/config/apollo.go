package config

import (
	"strconv"

	agollo "github.com/apolloconfig/agollo/v4"
	apconf "github.com/apolloconfig/agollo/v4/env/config"
	"github.com/apolloconfig/agollo/v4/storage"
	"go.uber.org/zap"
)

// apolloKeys maps Apollo keys onto config fields. The same keys are reported
// to watchers in the changed set.
var apolloKeys = map[string]func(cfg *Config, v string){
	"app.env":          func(cfg *Config, v string) { cfg.AppEnv = v },
	"server.addr":      func(cfg *Config, v string) { cfg.Server.Addr = v },
	"log.level":        func(cfg *Config, v string) { cfg.Log.Level = v },
	"log.format":       func(cfg *Config, v string) { cfg.Log.Format = v },
	"db.url":           func(cfg *Config, v string) { cfg.DB.URL = v },
	"db.max_open":      intSetter(func(cfg *Config, n int) { cfg.DB.MaxOpenConns = n }),
	"db.max_idle":      intSetter(func(cfg *Config, n int) { cfg.DB.MaxIdleConns = n }),
	"redis.addr":       func(cfg *Config, v string) { cfg.Redis.Addr = v },
	"redis.password":   func(cfg *Config, v string) { cfg.Redis.Password = v },
	"redis.db":         intSetter(func(cfg *Config, n int) { cfg.Redis.DB = n }),
	"mq.url":           func(cfg *Config, v string) { cfg.MQ.URL = v },
	"es.addrs":         func(cfg *Config, v string) { cfg.ES.Addrs = v },
	"es.username":      func(cfg *Config, v string) { cfg.ES.Username = v },
	"es.password":      func(cfg *Config, v string) { cfg.ES.Password = v },
	"ratelimit.window": intSetter(func(cfg *Config, n int) { cfg.RateLimit.WindowSec = n }),
	"ratelimit.max":    intSetter(func(cfg *Config, n int) { cfg.RateLimit.Max = n }),
	"jobs.audit_cron":  func(cfg *Config, v string) { cfg.Jobs.AuditCron = v },
}

func intSetter(set func(cfg *Config, n int)) func(cfg *Config, v string) {
	return func(cfg *Config, v string) {
		if n, err := strconv.Atoi(v); err == nil {
			set(cfg, n)
		}
	}
}

// applyOverrides copies every non-empty value returned by lookup into cfg.
func applyOverrides(cfg *Config, lookup func(key string) string) {
	for key, set := range apolloKeys {
		if v := lookup(key); v != "" {
			set(cfg, v)
		}
	}
}

// apolloAppConfig builds the agollo client config. IP takes the comma
// separated meta server list.
func apolloAppConfig(cfg *Config) *apconf.AppConfig {
	ns := cfg.Apollo.Namespace
	if ns == "" {
		ns = "application"
	}
	return &apconf.AppConfig{
		AppID:         cfg.Apollo.AppID,
		Cluster:       cfg.Apollo.Cluster,
		NamespaceName: ns,
		IP:            cfg.Apollo.Addrs,
		Secret:        cfg.Apollo.AccessKey,
	}
}

// overrideFromApollo starts Apollo client and overrides config values if present.
// Returns a closer to stop the Apollo client.
func overrideFromApollo(cfg *Config, store *Store) (func(), error) {
	if cfg.Apollo.Addrs == "" || cfg.Apollo.AppID == "" {
		configLogger.Warn("apollo: missing APOLLO_ADDRS or APOLLO_APP_ID; skip")
		return nil, nil
	}

	appCfg := apolloAppConfig(cfg)
	ns := appCfg.NamespaceName

	client, err := agollo.StartWithConfig(func() (*apconf.AppConfig, error) { return appCfg, nil })
	if err != nil {
		return nil, err
	}

	next := cloneConfig(cfg)
	applyOverrides(next, lookupIn(client, ns))
	if err := store.UpdateValidated(next, map[string]bool{"apollo.init": true}); err != nil {
		configLogger.Warn("apollo initial config rejected", zap.Error(err))
	}

	client.AddChangeListener(&changeListener{ns: ns, client: client, store: store})

	// agollo v4 has no public Stop.
	return func() {}, nil
}

func lookupIn(client agollo.Client, ns string) func(key string) string {
	return func(key string) string {
		c := client.GetConfig(ns)
		if c == nil {
			return ""
		}
		return c.GetStringValue(key, "")
	}
}

type changeListener struct {
	ns     string
	client agollo.Client
	store  *Store
}

func (c *changeListener) OnChange(e *storage.ChangeEvent) {
	configLogger.Info("apollo change", zap.String("namespace", e.Namespace), zap.Int("changes", len(e.Changes)))
	next := cloneConfig(c.store.Get())
	applyOverrides(next, lookupIn(c.client, c.ns))
	changed := map[string]bool{}
	for k := range e.Changes {
		changed[k] = true
	}
	if err := c.store.UpdateValidated(next, changed); err != nil {
		configLogger.Warn("apollo change rejected", zap.Error(err))
	}
}

func (c *changeListener) OnNewestChange(e *storage.FullChangeEvent) {
	configLogger.Debug("apollo snapshot", zap.String("namespace", e.Namespace), zap.Int("keys", len(e.Changes)))
}
