package container

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"pricestick/internal/application/port"
	"pricestick/internal/application/service"
	"pricestick/internal/application/usecase/display"
	"pricestick/internal/application/usecase/monitor"
	"pricestick/internal/domain"
	"pricestick/internal/infrastructure/config"
	"pricestick/internal/infrastructure/metrics"
	"pricestick/internal/infrastructure/mqtt"
	"pricestick/internal/infrastructure/network"
	"pricestick/internal/infrastructure/quote"
	"pricestick/internal/infrastructure/storage/composite"
	pgrepo "pricestick/internal/infrastructure/storage/postgres"
	redisrepo "pricestick/internal/infrastructure/storage/redis"
	sqliterepo "pricestick/internal/infrastructure/storage/sqlite"
	"pricestick/internal/interfaces/console"
	"pricestick/internal/interfaces/httpapi"
	"pricestick/internal/interfaces/wspanel"
)

// Container 包含所有应用依赖
type Container struct {
	cfg      *config.Config
	table    *domain.AssetTable
	registry *prometheus.Registry
	recorder *metrics.Recorder
	repo     *composite.Repo
	broker   *mqtt.Client
	panel    *wspanel.Panel
	monitor  *monitor.Service
	http     *httpapi.Server

	closeOnce   sync.Once
	closerChain []func() error
}

// New 按配置装配全部组件。失败时已初始化的资源会被释放。
func New(cfg *config.Config) (*Container, error) {
	c := &Container{
		cfg:         cfg,
		registry:    prometheus.NewRegistry(),
		closerChain: make([]func() error, 0),
	}
	c.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.recorder = metrics.New(c.registry)

	steps := []func() error{
		c.initTable,
		c.initStorage,
		c.initMQTT,
		c.initMonitor,
		c.initHTTP,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	return c, nil
}

// initTable 构建资产表：加密货币在前，股票在最后
func (c *Container) initTable() error {
	var recs []domain.AssetRecord
	if c.cfg.Crypto.Enabled {
		for _, sym := range c.cfg.Crypto.Symbols {
			recs = append(recs, domain.NewAssetRecord(domain.LookupInstrument(sym), c.cfg.Crypto.Convert, domain.GroupCrypto, ""))
		}
	}
	if c.cfg.Equity.Enabled {
		in := domain.LookupInstrument(c.cfg.Equity.Symbol)
		recs = append(recs, domain.NewAssetRecord(in, c.cfg.Equity.Currency, domain.GroupEquity, domain.MarketClosed))
	}
	table, err := domain.NewAssetTable(recs)
	if err != nil {
		return fmt.Errorf("asset table: %w", err)
	}
	c.table = table
	log.Info().Int("assets", table.Len()).Msg("asset table built")
	return nil
}

// initStorage 初始化存储层（Redis、SQLite、Postgres）
func (c *Container) initStorage() error {
	var repos []port.Repository
	st := c.cfg.Storage
	if st.Enabled {
		if st.Redis.Enabled {
			r, err := c.initRedis()
			if err != nil {
				return fmt.Errorf("redis init failed: %w", err)
			}
			repos = append(repos, r)
		}
		if st.SQLite.Enabled {
			r, err := c.initSQLite()
			if err != nil {
				return fmt.Errorf("sqlite init failed: %w", err)
			}
			repos = append(repos, r)
		}
		if st.Postgres.Enabled {
			r, err := pgrepo.New(st.Postgres.DSN)
			if err != nil {
				return fmt.Errorf("postgres init failed: %w", err)
			}
			c.addCloser("postgres", r.Close)
			repos = append(repos, r)
			log.Info().Msg("postgres initialized")
		}
	}
	c.repo = composite.New(repos...)
	return nil
}

// initRedis 初始化 Redis 连接
func (c *Container) initRedis() (*redisrepo.Repo, error) {
	rc := c.cfg.Storage.Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	c.addCloser("redis", rdb.Close)

	log.Info().Str("addr", rc.Addr).Int("db", rc.DB).Msg("redis initialized")
	return redisrepo.New(rdb, rc.Prefix, time.Duration(rc.TTLSeconds)*time.Second), nil
}

// initSQLite 初始化 SQLite 数据库
func (c *Container) initSQLite() (*sqliterepo.Repo, error) {
	path := c.cfg.Storage.SQLite.Path
	repo, err := sqliterepo.New(path)
	if err != nil {
		return nil, err
	}
	c.addCloser("sqlite", repo.Close)
	log.Info().Str("path", path).Msg("sqlite initialized")
	return repo, nil
}

// initMQTT 连接 broker；连接失败不阻止启动，客户端会自动重连
func (c *Container) initMQTT() error {
	mc := c.cfg.MQTT
	if !mc.Enabled {
		return nil
	}
	c.broker = mqtt.New(mqtt.Options{
		Host:          mc.Host,
		Port:          mc.Port,
		ClientID:      mc.ClientID,
		Username:      mc.Username,
		Password:      mc.Password,
		StatusTopic:   mc.TopicPrefix + "/status",
		RetryInterval: mc.RetryInterval,
	})
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Network.ConnectTimeout)
	defer cancel()
	if err := c.broker.Connect(ctx); err != nil {
		log.Warn().Err(err).Str("host", mc.Host).Msg("mqtt connect failed, retrying in background")
	}
	c.addCloser("mqtt", func() error {
		c.broker.Close()
		return nil
	})
	return nil
}

func (c *Container) initMonitor() error {
	market, err := domain.ParseMarketHours(c.cfg.Market.Timezone, c.cfg.Market.Open, c.cfg.Market.Close)
	if err != nil {
		return err
	}

	var groups []service.FetchGroup
	if c.cfg.Crypto.Enabled {
		cc := c.cfg.Crypto
		groups = append(groups, service.FetchGroup{
			Group:  domain.GroupCrypto,
			Source: quote.NewCoinMarketCap(cc.BaseURL, cc.APIKey, cc.Symbols, cc.Convert, cc.Timeout),
			Decode: quote.BatchDecoder(cc.Convert),
		})
	}
	if c.cfg.Equity.Enabled {
		ec := c.cfg.Equity
		groups = append(groups, service.FetchGroup{
			Group:  domain.GroupEquity,
			Source: quote.NewFMP(ec.BaseURL, ec.APIKey, ec.Symbol, ec.Timeout),
			Decode: quote.SingleDecoder(),
		})
	}

	fetcher := service.NewFetchService(service.FetchDeps{
		Table:           c.table,
		Link:            network.NewLink(c.cfg.Network.ProbeAddr, c.cfg.Network.ConnectTimeout),
		Groups:          groups,
		Market:          market,
		Metrics:         c.recorder,
		MaxLinkFailures: c.cfg.App.MaxLinkFailures,
	})

	var outs []port.Display
	if c.cfg.Display.Console {
		outs = append(outs, console.New(os.Stdout))
	}
	if c.cfg.Display.Panel && c.cfg.HTTP.Enabled {
		c.panel = wspanel.New()
		c.addCloser("panel", func() error {
			c.panel.Close()
			return nil
		})
		outs = append(outs, c.panel)
	}

	deps := monitor.ServiceDeps{
		Table:           c.table,
		Fetcher:         fetcher,
		Screen:          display.NewPresenter(display.Fold(outs...)),
		PollInterval:    c.cfg.App.PollInterval,
		DisplayDuration: c.cfg.App.DisplayDuration,
		TickInterval:    c.cfg.App.TickInterval,
		ErrorHold:       c.cfg.App.ErrorHold,
	}
	if c.repo.Len() > 0 {
		deps.Store = service.NewPriceService(c.repo)
	}
	if c.broker != nil {
		mc := c.cfg.MQTT
		deps.Publisher = service.NewPublishService(service.PublishDeps{
			Broker:          c.broker,
			Metrics:         c.recorder,
			DiscoveryPrefix: mc.DiscoveryPrefix,
			TopicPrefix:     mc.TopicPrefix,
			Device: service.Device{
				ID:           mc.Device.ID,
				Name:         mc.Device.Name,
				Model:        mc.Device.Model,
				Manufacturer: mc.Device.Manufacturer,
				SWVersion:    mc.Device.SWVersion,
			},
			Timeout: mc.PublishTimeout,
		})
	}
	c.monitor = monitor.NewService(deps)
	return nil
}

func (c *Container) initHTTP() error {
	if !c.cfg.HTTP.Enabled {
		return nil
	}
	deps := httpapi.Deps{
		Table:    c.table,
		Status:   c.monitor,
		Gatherer: c.registry,
	}
	if c.broker != nil {
		deps.Broker = c.broker
	}
	if c.panel != nil {
		deps.Panel = c.panel
	}
	c.http = httpapi.New(deps)

	c.http.Start(c.cfg.HTTP.Addr)
	c.addCloser("http", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return c.http.Stop(ctx)
	})
	return nil
}

func (c *Container) addCloser(name string, fn func() error) {
	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msgf("closing %s", name)
		return fn()
	})
}

// Config 获取配置
func (c *Container) Config() *config.Config { return c.cfg }

// Table 获取资产表
func (c *Container) Table() *domain.AssetTable { return c.table }

// Monitor 获取主循环
func (c *Container) Monitor() *monitor.Service { return c.monitor }

// Registry 获取指标注册表
func (c *Container) Registry() *prometheus.Registry { return c.registry }

// StorageBackends 返回已启用的存储后端数量
func (c *Container) StorageBackends() int { return c.repo.Len() }

// Close 关闭所有资源（按后进先出顺序）
func (c *Container) Close() error {
	var err error
	c.closeOnce.Do(func() {
		for i := len(c.closerChain) - 1; i >= 0; i-- {
			if cerr := c.closerChain[i](); cerr != nil {
				log.Error().Err(cerr).Msg("error closing resource")
				if err == nil {
					err = cerr
				}
			}
		}
	})
	return err
}
