package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"khatib-jumat/config"
)

// ErrCacheMiss 缓存未命中
var ErrCacheMiss = errors.New("缓存未命中")

// Client Redis 客户端封装
// 用于报名接口限流与报名列表缓存
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// NewFromClient 复用已有的 go-redis 客户端
func NewFromClient(rdb *goredis.Client, logger *zap.Logger) *Client {
	return &Client{rdb: rdb, logger: logger}
}

// ── 滑动窗口限流 ──

// CheckRateLimit 基于有序集合的滑动窗口计数
// 返回 true 表示本次请求允许通过
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window).UnixNano()
	member := strconv.FormatInt(now.UnixNano(), 10)

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixNano()), Member: member})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return count.Val() <= int64(limit), nil
}

// ── 报名列表缓存 ──
//
// 每个年份维护一个代数计数器：撤销 / 认领后 INCR，读取方在查库前记下代数，
// 回写时代数不变才写入，避免慢读把旧列表写回缓存。

const (
	registrationsKeyPrefix    = "khatib:registrations:"
	registrationsGenKeyPrefix = "khatib:registrations_gen:"
)

func registrationsKey(year int) string {
	return registrationsKeyPrefix + strconv.Itoa(year)
}

func registrationsGenKey(year int) string {
	return registrationsGenKeyPrefix + strconv.Itoa(year)
}

// KEYS[1] 代数键 KEYS[2] 数据键；ARGV[1] 期望代数 ARGV[2] 内容 ARGV[3] 过期毫秒
var setIfGenerationScript = goredis.NewScript(`
local cur = redis.call('GET', KEYS[1]) or '0'
if cur ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// GetRegistrations 读取某年份报名列表的缓存（JSON 原文）
func (c *Client) GetRegistrations(ctx context.Context, year int) ([]byte, error) {
	b, err := c.rdb.Get(ctx, registrationsKey(year)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrCacheMiss
	}
	return b, err
}

// RegistrationsGeneration 返回某年份当前的缓存代数，从未失效过时为 0
func (c *Client) RegistrationsGeneration(ctx context.Context, year int) (int64, error) {
	gen, err := c.rdb.Get(ctx, registrationsGenKey(year)).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetRegistrations 仅当代数仍为 gen 时写入缓存；返回是否写入
func (c *Client) SetRegistrations(ctx context.Context, year int, gen int64, payload []byte, ttl time.Duration) (bool, error) {
	n, err := setIfGenerationScript.Run(ctx, c.rdb,
		[]string{registrationsGenKey(year), registrationsKey(year)},
		strconv.FormatInt(gen, 10), payload, ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// InvalidateRegistrations 报名或撤销后推进代数并删除对应年份的缓存
func (c *Client) InvalidateRegistrations(ctx context.Context, year int) error {
	pipe := c.rdb.TxPipeline()
	pipe.Incr(ctx, registrationsGenKey(year))
	pipe.Del(ctx, registrationsKey(year))
	_, err := pipe.Exec(ctx)
	return err
}

// Ping 健康检查（/health 报告 Redis 状态）
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
